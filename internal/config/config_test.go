package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_MissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)

	assert.Equal(t, 3000, cfg.Server.Port)
	assert.Equal(t, "loopback", cfg.Server.Bind)
	assert.Equal(t, "claude", cfg.Vision.Provider)
	assert.Equal(t, 500, cfg.Vision.MaxTokens)
	assert.Equal(t, "sqlite", cfg.Ledger.Backend)
	assert.Equal(t, "00:00", cfg.Flush.At)
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestLoad_ParsesAndFillsDefaults(t *testing.T) {
	path := writeConfig(t, `
server:
  port: 8080
twilio:
  accountSid: ACxxx
  authToken: secret
  from: "whatsapp:+14155238886"
ledger:
  backend: webhook
  webhookUrl: https://example.com/log
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "ACxxx", cfg.Twilio.AccountSID)
	assert.Equal(t, "webhook", cfg.Ledger.Backend)
	// Unspecified sections keep defaults.
	assert.Equal(t, "loopback", cfg.Server.Bind)
	assert.Equal(t, "claude", cfg.Vision.Provider)
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := writeConfig(t, "server: [not: a: map")
	_, err := Load(path)
	require.Error(t, err)

	var cfgErr *ConfigError
	assert.ErrorAs(t, err, &cfgErr)
}

func TestLoad_ExpandsSensitiveFields(t *testing.T) {
	t.Setenv("TEST_MACROLOG_TOKEN", "tok-123")
	path := writeConfig(t, `
twilio:
  authToken: ${TEST_MACROLOG_TOKEN}
vision:
  apiKey: ${UNSET_MACROLOG_VAR}
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "tok-123", cfg.Twilio.AuthToken)
	// Unset variables are left as-is.
	assert.Equal(t, "${UNSET_MACROLOG_VAR}", cfg.Vision.APIKey)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("MACROLOG_PORT", "9999")
	t.Setenv("MACROLOG_LOG_LEVEL", "DEBUG")
	t.Setenv("ANTHROPIC_API_KEY", "sk-ant-test")

	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)

	assert.Equal(t, 9999, cfg.Server.Port)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "sk-ant-test", cfg.Vision.APIKey)
}

func TestFlushEnabled_DefaultsTrue(t *testing.T) {
	assert.True(t, FlushConfig{}.FlushEnabled())

	off := false
	assert.False(t, FlushConfig{Enabled: &off}.FlushEnabled())
}

func TestSaveRawRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	raw := map[string]any{"server": map[string]any{"port": 8080}}
	require.NoError(t, SaveRaw(path, raw))

	got, err := LoadRaw(path)
	require.NoError(t, err)

	val, ok := GetValueAtPath(got, []string{"server", "port"})
	require.True(t, ok)
	assert.Equal(t, 8080, val)
}
