package config

import (
	"fmt"
	"slices"
	"time"
)

// ValidationIssue describes a problem with a config value.
type ValidationIssue struct {
	Path    string
	Message string
}

func (v ValidationIssue) String() string {
	return fmt.Sprintf("%s: %s", v.Path, v.Message)
}

// Validate checks a Config for issues. Returns nil if valid.
func Validate(cfg *Config) []ValidationIssue {
	var issues []ValidationIssue

	if cfg.Server.Port < 0 || cfg.Server.Port > 65535 {
		issues = append(issues, ValidationIssue{
			Path:    "server.port",
			Message: fmt.Sprintf("port must be 0-65535, got %d", cfg.Server.Port),
		})
	}

	if cfg.Twilio.AccountSID == "" {
		issues = append(issues, ValidationIssue{
			Path:    "twilio.accountSid",
			Message: "account SID is required",
		})
	}
	if cfg.Twilio.AuthToken == "" {
		issues = append(issues, ValidationIssue{
			Path:    "twilio.authToken",
			Message: "auth token is required",
		})
	}
	if cfg.Twilio.From == "" {
		issues = append(issues, ValidationIssue{
			Path:    "twilio.from",
			Message: "sender number is required",
		})
	}

	validProviders := []string{"claude"}
	if cfg.Vision.Provider != "" && !slices.Contains(validProviders, cfg.Vision.Provider) {
		issues = append(issues, ValidationIssue{
			Path:    "vision.provider",
			Message: fmt.Sprintf("must be one of %v, got %q", validProviders, cfg.Vision.Provider),
		})
	}
	if cfg.Vision.APIKey == "" {
		issues = append(issues, ValidationIssue{
			Path:    "vision.apiKey",
			Message: "API key is required",
		})
	}

	validBackends := []string{"sheets", "webhook", "sqlite"}
	if cfg.Ledger.Backend != "" && !slices.Contains(validBackends, cfg.Ledger.Backend) {
		issues = append(issues, ValidationIssue{
			Path:    "ledger.backend",
			Message: fmt.Sprintf("must be one of %v, got %q", validBackends, cfg.Ledger.Backend),
		})
	}
	switch cfg.Ledger.Backend {
	case "webhook":
		if cfg.Ledger.WebhookURL == "" {
			issues = append(issues, ValidationIssue{
				Path:    "ledger.webhookUrl",
				Message: "required for the webhook backend",
			})
		}
	case "sheets":
		if cfg.Ledger.Sheets.SpreadsheetID == "" {
			issues = append(issues, ValidationIssue{
				Path:    "ledger.sheets.spreadsheetId",
				Message: "required for the sheets backend",
			})
		}
		if cfg.Ledger.Sheets.CredentialsFile == "" {
			issues = append(issues, ValidationIssue{
				Path:    "ledger.sheets.credentialsFile",
				Message: "required for the sheets backend",
			})
		}
	}

	if cfg.Flush.At != "" {
		if _, err := time.Parse("15:04", cfg.Flush.At); err != nil {
			issues = append(issues, ValidationIssue{
				Path:    "flush.at",
				Message: fmt.Sprintf("must be HH:MM, got %q", cfg.Flush.At),
			})
		}
	}

	validLogLevels := []string{"silent", "fatal", "error", "warn", "info", "debug", "trace"}
	if cfg.Logging.Level != "" && !slices.Contains(validLogLevels, cfg.Logging.Level) {
		issues = append(issues, ValidationIssue{
			Path:    "logging.level",
			Message: fmt.Sprintf("must be one of %v, got %q", validLogLevels, cfg.Logging.Level),
		})
	}

	return issues
}
