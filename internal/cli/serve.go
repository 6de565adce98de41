package cli

import (
	"context"
	"fmt"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/soyeahso/macrolog/internal/bot"
	"github.com/soyeahso/macrolog/internal/channel/twilio"
	"github.com/soyeahso/macrolog/internal/config"
	"github.com/soyeahso/macrolog/internal/ledger"
	"github.com/soyeahso/macrolog/internal/logging"
	"github.com/soyeahso/macrolog/internal/scheduler"
	"github.com/soyeahso/macrolog/internal/server"
	"github.com/soyeahso/macrolog/internal/session"
	"github.com/soyeahso/macrolog/internal/vision"
	"github.com/spf13/cobra"
)

func newServeCmd() *cobra.Command {
	var (
		port int
		bind string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the webhook server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(paths.Config)
			if err != nil {
				return err
			}

			if port != 0 {
				cfg.Server.Port = port
			}
			if bind != "" {
				cfg.Server.Bind = bind
			}

			issues := config.Validate(&cfg)
			if len(issues) > 0 {
				for _, issue := range issues {
					log.Error().Str("path", issue.Path).Msg(issue.Message)
				}
				return fmt.Errorf("config validation failed with %d issue(s)", len(issues))
			}

			if err := paths.EnsureDirs(); err != nil {
				return err
			}

			// The --log-level flag wins over the config file.
			if logLevel == "" {
				log = logging.New(nil, cfg.Logging.Level)
			}

			// Block until SIGINT/SIGTERM
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			ldg, cleanup, err := buildLedger(ctx, cfg, log)
			if err != nil {
				return err
			}
			if cleanup != nil {
				defer cleanup()
			}
			log.Info().Str("backend", ldg.Name()).Msg("ledger ready")

			extractor := vision.NewClaudeExtractor(cfg.Vision.APIKey, cfg.Vision.Model, cfg.Vision.MaxTokens)
			messenger := twilio.NewClient(cfg.Twilio.AccountSID, cfg.Twilio.AuthToken, cfg.Twilio.From, log)
			sessions := session.NewStore(log)

			controller := bot.NewController(sessions, extractor, messenger, messenger, ldg, log)

			hub := server.NewEventHub(log)
			controller.SetEvents(hub)

			if cfg.Flush.FlushEnabled() {
				flusher, err := scheduler.New(sessions, ldg, messenger, cfg.Flush.At, log, scheduler.WithEvents(hub))
				if err != nil {
					return err
				}
				go flusher.Run(ctx)
			} else {
				log.Warn().Msg("daily flush disabled")
			}

			srv := server.New(cfg.Server, controller, log, server.WithEventHub(hub))
			return srv.Start(ctx)
		},
	}

	cmd.Flags().IntVar(&port, "port", 0, "listen port (overrides config)")
	cmd.Flags().StringVar(&bind, "bind", "", "bind address: loopback, all, or a host (overrides config)")

	return cmd
}

// buildLedger constructs the configured ledger backend. The returned
// cleanup closes backend resources and may be nil.
func buildLedger(ctx context.Context, cfg config.Config, log *logging.Logger) (ledger.Ledger, func(), error) {
	switch cfg.Ledger.Backend {
	case "sheets":
		l, err := ledger.NewSheetsLedger(ctx, cfg.Ledger.Sheets.SpreadsheetID, cfg.Ledger.Sheets.Sheet, cfg.Ledger.Sheets.CredentialsFile, log)
		if err != nil {
			return nil, nil, fmt.Errorf("opening sheets ledger: %w", err)
		}
		return l, nil, nil

	case "webhook":
		return ledger.NewWebhookLedger(cfg.Ledger.WebhookURL, log), nil, nil

	case "sqlite":
		path := cfg.Ledger.SQLitePath
		if path == "" {
			p, err := config.ResolvePaths()
			if err != nil {
				return nil, nil, err
			}
			path = filepath.Join(p.Data, "macrolog.db")
		}
		l, err := ledger.OpenSQLiteLedger(path, log)
		if err != nil {
			return nil, nil, fmt.Errorf("opening sqlite ledger: %w", err)
		}
		return l, func() { l.Close() }, nil

	default:
		return nil, nil, fmt.Errorf("unknown ledger backend %q", cfg.Ledger.Backend)
	}
}
