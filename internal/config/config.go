// Package config loads and validates the macrolog configuration.
package config

import "fmt"

// ConfigError represents a configuration error.
type ConfigError struct {
	Message string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config: %s", e.Message)
}

// Defaults returns a Config with sensible defaults applied.
func Defaults() Config {
	return Config{
		Server: ServerConfig{
			Port: 3000,
			Bind: "loopback",
		},
		Vision: VisionConfig{
			Provider:  "claude",
			Model:     "claude-sonnet-4-20250514",
			MaxTokens: 500,
		},
		Ledger: LedgerConfig{
			Backend: "sqlite",
		},
		Flush: FlushConfig{
			At: "00:00",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}
