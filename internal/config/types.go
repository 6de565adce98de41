package config

// Config is the root configuration for macrolog.
type Config struct {
	Server  ServerConfig  `yaml:"server,omitempty"`
	Twilio  TwilioConfig  `yaml:"twilio,omitempty"`
	Vision  VisionConfig  `yaml:"vision,omitempty"`
	Ledger  LedgerConfig  `yaml:"ledger,omitempty"`
	Flush   FlushConfig   `yaml:"flush,omitempty"`
	Logging LoggingConfig `yaml:"logging,omitempty"`
}

// ServerConfig controls the webhook HTTP server.
type ServerConfig struct {
	Port int    `yaml:"port,omitempty"`
	Bind string `yaml:"bind,omitempty"` // "loopback" | "all" | a literal host
}

// TwilioConfig holds the WhatsApp sender credentials.
type TwilioConfig struct {
	AccountSID string `yaml:"accountSid"`
	AuthToken  string `yaml:"authToken"`
	From       string `yaml:"from"` // e.g. "whatsapp:+14155238886"
}

// VisionConfig selects and configures the meal extraction model.
type VisionConfig struct {
	Provider  string `yaml:"provider,omitempty"` // "claude"
	APIKey    string `yaml:"apiKey"`
	Model     string `yaml:"model,omitempty"`
	MaxTokens int    `yaml:"maxTokens,omitempty"`
}

// LedgerConfig selects where daily logs are persisted.
type LedgerConfig struct {
	Backend    string       `yaml:"backend,omitempty"` // "sheets" | "webhook" | "sqlite"
	WebhookURL string       `yaml:"webhookUrl,omitempty"`
	Sheets     SheetsConfig `yaml:"sheets,omitempty"`
	SQLitePath string       `yaml:"sqlitePath,omitempty"`
}

// SheetsConfig configures the Google Sheets backend.
type SheetsConfig struct {
	SpreadsheetID   string `yaml:"spreadsheetId"`
	Sheet           string `yaml:"sheet,omitempty"`
	CredentialsFile string `yaml:"credentialsFile"`
}

// FlushConfig controls the daily auto-save.
type FlushConfig struct {
	Enabled *bool  `yaml:"enabled,omitempty"` // default true
	At      string `yaml:"at,omitempty"`      // "HH:MM", process-local timezone
}

// LoggingConfig controls logging behavior.
type LoggingConfig struct {
	Level string `yaml:"level,omitempty"` // "silent" | "fatal" | "error" | "warn" | "info" | "debug" | "trace"
}

// FlushEnabled reports whether the daily flush should run.
func (c FlushConfig) FlushEnabled() bool {
	return c.Enabled == nil || *c.Enabled
}
