package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// InitSqliteSchema creates the result_cache table in a SQLite database.
func InitSqliteSchema(db *sql.DB) error {
	if db == nil {
		return errors.New("init sqlite schema: DB is nil")
	}

	statements := []string{
		`
	CREATE TABLE IF NOT EXISTS result_cache (
		cache_key TEXT PRIMARY KEY,
		entry BLOB NOT NULL,
		updated_at TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%fZ', 'now'))
	);
	`,
	}

	return execSchema(context.Background(), db, "init sqlite schema", statements)
}

// InitPostgresSchema creates the result_cache table in a Postgres database.
func InitPostgresSchema(ctx context.Context, db *sql.DB) error {
	if db == nil {
		return errors.New("init postgres schema: DB is nil")
	}

	statements := []string{
		`
	CREATE TABLE IF NOT EXISTS result_cache (
		cache_key TEXT PRIMARY KEY,
		entry BYTEA NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);
	`,
	}

	return execSchema(ctx, db, "init postgres schema", statements)
}

func execSchema(ctx context.Context, db *sql.DB, op string, statements []string) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%s: begin tx: %w", op, err)
	}
	defer func() { _ = tx.Rollback() }()

	for i, stmt := range statements {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("%s: exec statement #%d: %w", op, i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%s: commit tx: %w", op, err)
	}

	return nil
}
