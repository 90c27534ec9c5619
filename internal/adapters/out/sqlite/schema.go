package sqlite

import (
	"context"
	"database/sql"
	"fmt"
)

// schemaVersion is bumped whenever migrations gain a statement.
const schemaVersion = 1

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS submissions (
		id                TEXT PRIMARY KEY,
		metadata          TEXT NOT NULL DEFAULT '{}',
		aggregated_status TEXT NOT NULL,
		version           INTEGER NOT NULL DEFAULT 1,
		submitted_at      TEXT NOT NULL,
		updated_at        TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS submission_files (
		submission_id TEXT NOT NULL REFERENCES submissions(id) ON DELETE CASCADE,
		position      INTEGER NOT NULL,
		name          TEXT NOT NULL,
		location      TEXT NOT NULL,
		content_type  TEXT NOT NULL DEFAULT '',
		PRIMARY KEY (submission_id, position)
	)`,
	`CREATE TABLE IF NOT EXISTS deposits (
		id             TEXT PRIMARY KEY,
		submission_id  TEXT NOT NULL REFERENCES submissions(id) ON DELETE CASCADE,
		repository_key TEXT NOT NULL,
		status         TEXT NOT NULL,
		receipt        TEXT NOT NULL DEFAULT '',
		version        INTEGER NOT NULL DEFAULT 1,
		updated_at     TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_deposits_submission ON deposits(submission_id)`,
}

func migrate(ctx context.Context, db *sql.DB) error {
	var current int
	if err := db.QueryRowContext(ctx, `PRAGMA user_version`).Scan(&current); err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}
	if current >= schemaVersion {
		return nil
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin migration: %w", err)
	}
	defer tx.Rollback()

	for _, stmt := range migrations {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply migration: %w", err)
		}
	}
	if _, err := tx.ExecContext(ctx, fmt.Sprintf(`PRAGMA user_version = %d`, schemaVersion)); err != nil {
		return fmt.Errorf("failed to set schema version: %w", err)
	}
	return tx.Commit()
}
