package ledger

// migration represents a single schema migration.
type migration struct {
	Version int
	Name    string
	SQL     string
}

// migrations is the ordered list of all schema migrations.
var migrations = []migration{
	{
		Version: 1,
		Name:    "create daily_logs",
		SQL: `
			CREATE TABLE daily_logs (
				id          INTEGER PRIMARY KEY AUTOINCREMENT,
				date        TEXT NOT NULL,
				sender      TEXT NOT NULL DEFAULT '',
				calories    INTEGER NOT NULL DEFAULT 0,
				protein     INTEGER NOT NULL DEFAULT 0,
				carbs       INTEGER NOT NULL DEFAULT 0,
				fat         INTEGER NOT NULL DEFAULT 0,
				fiber       INTEGER NOT NULL DEFAULT 0,
				meals       TEXT NOT NULL DEFAULT '',
				updated_at  TEXT NOT NULL DEFAULT (datetime('now'))
			);

			CREATE UNIQUE INDEX idx_daily_logs_date_sender ON daily_logs (date, sender);
		`,
	},
}
