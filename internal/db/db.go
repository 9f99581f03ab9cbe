package db

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

// Connect opens a pool for driver ("postgres" or "sqlite") and verifies it.
func Connect(ctx context.Context, driver, dsn string) (*sql.DB, error) {
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, err
	}

	// a single writer avoids SQLITE_BUSY under concurrent requests
	if driver == "sqlite" {
		db.SetMaxOpenConns(1)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, err
	}

	return db, nil
}

// Migrate creates the tables this service needs if they do not exist yet.
func Migrate(ctx context.Context, db *sql.DB, driver string) error {
	ts := "TIMESTAMPTZ"
	if driver == "sqlite" {
		ts = "TIMESTAMP"
	}

	stmts := []string{
		fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS tasks (
			id            TEXT PRIMARY KEY,
			title         TEXT NOT NULL CHECK (title <> ''),
			description   TEXT,
			status        TEXT NOT NULL DEFAULT 'TODO',
			priority      TEXT NOT NULL DEFAULT 'MEDIUM',
			due_date      %[1]s NULL,
			created_at    %[1]s NOT NULL,
			updated_at    %[1]s NOT NULL,
			parent_id     TEXT NULL,
			ai_suggestion TEXT,
			roadmap       TEXT
		)`, ts),
		`CREATE INDEX IF NOT EXISTS tasks_status_idx ON tasks (status)`,
		`CREATE INDEX IF NOT EXISTS tasks_created_at_idx ON tasks (created_at)`,
		fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS analytics_events (
			id               TEXT PRIMARY KEY,
			event_name       TEXT NOT NULL,
			event_time       %s NOT NULL,
			session_id       TEXT,
			platform         TEXT NOT NULL,
			app_version      TEXT NOT NULL,
			device_locale    TEXT,
			source_event_key TEXT UNIQUE,
			properties       TEXT NOT NULL
		)`, ts),
	}

	for _, stmt := range stmts {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}
