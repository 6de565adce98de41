package ledger

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite" // Pure-Go SQLite driver

	"github.com/soyeahso/macrolog/internal/logging"
)

// SQLiteLedger keeps daily logs in a local SQLite database. Useful for
// deployments without a spreadsheet backend, and for tests.
type SQLiteLedger struct {
	db  *sql.DB
	log *logging.Logger
}

// OpenSQLiteLedger opens (or creates) the database at path and runs
// migrations. Use ":memory:" for tests.
func OpenSQLiteLedger(path string, log *logging.Logger) (*SQLiteLedger, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
			return nil, fmt.Errorf("creating db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting WAL mode: %w", err)
	}

	l := &SQLiteLedger{db: db, log: log.Sub("ledger")}
	if err := l.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	l.log.Info().Str("path", path).Msg("ledger database opened")
	return l, nil
}

// Close closes the database connection.
func (l *SQLiteLedger) Close() error {
	return l.db.Close()
}

// Name returns the backend name.
func (l *SQLiteLedger) Name() string { return "sqlite" }

// Upsert overwrites the row for (date, sender) or inserts a new one.
func (l *SQLiteLedger) Upsert(ctx context.Context, entry DailyLog) error {
	_, err := l.db.ExecContext(ctx,
		`INSERT INTO daily_logs (date, sender, calories, protein, carbs, fat, fiber, meals, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, datetime('now'))
		 ON CONFLICT(date, sender) DO UPDATE SET
		   calories = excluded.calories,
		   protein  = excluded.protein,
		   carbs    = excluded.carbs,
		   fat      = excluded.fat,
		   fiber    = excluded.fiber,
		   meals    = excluded.meals,
		   updated_at = excluded.updated_at`,
		entry.Date, entry.Sender, entry.Calories, entry.Protein,
		entry.Carbs, entry.Fat, entry.Fiber, entry.Meals,
	)
	if err != nil {
		return fmt.Errorf("upserting daily log: %w", err)
	}
	return nil
}

// Get returns the stored log for (date, sender), or nil if none exists.
func (l *SQLiteLedger) Get(ctx context.Context, date, sender string) (*DailyLog, error) {
	var entry DailyLog
	err := l.db.QueryRowContext(ctx,
		`SELECT date, sender, calories, protein, carbs, fat, fiber, meals
		 FROM daily_logs WHERE date = ? AND sender = ?`, date, sender,
	).Scan(&entry.Date, &entry.Sender, &entry.Calories, &entry.Protein,
		&entry.Carbs, &entry.Fat, &entry.Fiber, &entry.Meals)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading daily log: %w", err)
	}
	return &entry, nil
}

// migrate runs all pending migrations.
func (l *SQLiteLedger) migrate() error {
	if _, err := l.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at TEXT NOT NULL DEFAULT (datetime('now'))
		)
	`); err != nil {
		return fmt.Errorf("creating migrations table: %w", err)
	}

	for _, m := range migrations {
		var count int
		if err := l.db.QueryRow(
			"SELECT COUNT(*) FROM schema_migrations WHERE version = ?", m.Version,
		).Scan(&count); err != nil {
			return fmt.Errorf("checking migration %d: %w", m.Version, err)
		}
		if count > 0 {
			continue
		}

		l.log.Info().Int("version", m.Version).Str("name", m.Name).Msg("applying migration")

		tx, err := l.db.Begin()
		if err != nil {
			return fmt.Errorf("begin migration %d: %w", m.Version, err)
		}
		if _, err := tx.Exec(m.SQL); err != nil {
			tx.Rollback()
			return fmt.Errorf("migration %d (%s): %w", m.Version, m.Name, err)
		}
		if _, err := tx.Exec("INSERT INTO schema_migrations (version) VALUES (?)", m.Version); err != nil {
			tx.Rollback()
			return fmt.Errorf("recording migration %d: %w", m.Version, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit migration %d: %w", m.Version, err)
		}
	}

	return nil
}
