// Copyright (c) 2026 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// Migration is one schema step of a module. Versions start at 1 and must be
// strictly increasing within a module.
type Migration struct {
	Version int
	SQL     string
}

const historyDDL = `
CREATE TABLE IF NOT EXISTS schema_history (
	module TEXT PRIMARY KEY,
	version INTEGER NOT NULL,
	migrated_at_ms INTEGER NOT NULL
);`

// Migrate applies every migration of module newer than the recorded version
// in a single transaction. Several modules share one database file, so the
// version is tracked per module rather than through PRAGMA user_version.
func Migrate(ctx context.Context, db *sql.DB, module string, steps []Migration) error {
	if _, err := db.ExecContext(ctx, historyDDL); err != nil {
		return fmt.Errorf("sqlite: create schema_history: %w", err)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	var current int
	err = tx.QueryRowContext(ctx, "SELECT version FROM schema_history WHERE module = ?", module).Scan(&current)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("sqlite: read %s schema version: %w", module, err)
	}

	applied := current
	for _, m := range steps {
		if m.Version <= current {
			continue
		}
		if m.Version <= applied {
			return fmt.Errorf("sqlite: %s migration %d out of order", module, m.Version)
		}
		if _, err := tx.ExecContext(ctx, m.SQL); err != nil {
			return fmt.Errorf("sqlite: %s migration %d: %w", module, m.Version, err)
		}
		applied = m.Version
	}
	if applied == current {
		return nil
	}

	_, err = tx.ExecContext(ctx, `
	INSERT INTO schema_history (module, version, migrated_at_ms) VALUES (?, ?, ?)
	ON CONFLICT(module) DO UPDATE SET version = excluded.version, migrated_at_ms = excluded.migrated_at_ms`,
		module, applied, time.Now().UnixMilli())
	if err != nil {
		return fmt.Errorf("sqlite: record %s schema version: %w", module, err)
	}
	return tx.Commit()
}

// SchemaVersion returns the recorded version of module, 0 if never migrated.
func SchemaVersion(ctx context.Context, db *sql.DB, module string) (int, error) {
	var v int
	err := db.QueryRowContext(ctx, "SELECT version FROM schema_history WHERE module = ?", module).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	return v, err
}
