// Copyright (c) 2026 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package session

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/bonitasoft/bonita-engine-sub001/internal/persistence/sqlite"
)

var sessionMigrations = []sqlite.Migration{
	{Version: 1, SQL: `
	CREATE TABLE IF NOT EXISTS sessions (
		id TEXT PRIMARY KEY,
		kind TEXT NOT NULL,
		tenant_id INTEGER NOT NULL,
		user_id INTEGER NOT NULL,
		user_name TEXT NOT NULL,
		created_at_ms INTEGER NOT NULL,
		duration_ms INTEGER NOT NULL,
		expires_at_ms INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_sessions_expires ON sessions(expires_at_ms);`},
}

// SQLiteStore implements Store on SQLite. The database handle is shared and
// owned by the caller; Close does not close it.
type SQLiteStore struct {
	DB *sql.DB
}

// NewSQLiteStore migrates the sessions schema and returns the store.
func NewSQLiteStore(ctx context.Context, db *sql.DB) (*SQLiteStore, error) {
	if err := sqlite.Migrate(ctx, db, "sessions", sessionMigrations); err != nil {
		return nil, fmt.Errorf("session store: migration failed: %w", err)
	}
	return &SQLiteStore{DB: db}, nil
}

func (s *SQLiteStore) Close() error { return nil }

func (s *SQLiteStore) Put(ctx context.Context, rec Record) error {
	_, err := s.DB.ExecContext(ctx, `
	INSERT INTO sessions (id, kind, tenant_id, user_id, user_name, created_at_ms, duration_ms, expires_at_ms)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(id) DO UPDATE SET
		kind = excluded.kind,
		tenant_id = excluded.tenant_id,
		user_id = excluded.user_id,
		user_name = excluded.user_name,
		created_at_ms = excluded.created_at_ms,
		duration_ms = excluded.duration_ms,
		expires_at_ms = excluded.expires_at_ms`,
		rec.ID, string(rec.Kind), rec.TenantID, rec.UserID, rec.UserName,
		rec.CreatedAt.UnixMilli(), rec.Duration.Milliseconds(), rec.ExpiresAt.UnixMilli())
	return err
}

func (s *SQLiteStore) Get(ctx context.Context, id string) (Record, error) {
	var (
		rec                            Record
		kind                           string
		createdMS, durationMS, expires int64
	)
	err := s.DB.QueryRowContext(ctx, `
	SELECT id, kind, tenant_id, user_id, user_name, created_at_ms, duration_ms, expires_at_ms
	FROM sessions WHERE id = ?`, id).Scan(
		&rec.ID, &kind, &rec.TenantID, &rec.UserID, &rec.UserName, &createdMS, &durationMS, &expires)
	if errors.Is(err, sql.ErrNoRows) {
		return Record{}, ErrNotFound
	}
	if err != nil {
		return Record{}, err
	}
	rec.Kind = Kind(kind)
	rec.CreatedAt = time.UnixMilli(createdMS).UTC()
	rec.Duration = time.Duration(durationMS) * time.Millisecond
	rec.ExpiresAt = time.UnixMilli(expires).UTC()
	return rec, nil
}

func (s *SQLiteStore) Touch(ctx context.Context, id string, now time.Time) (Record, error) {
	nowMS := now.UnixMilli()
	res, err := s.DB.ExecContext(ctx, `
	UPDATE sessions SET expires_at_ms = ? + duration_ms
	WHERE id = ? AND expires_at_ms > ?`, nowMS, id, nowMS)
	if err != nil {
		return Record{}, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return Record{}, err
	}
	if n == 0 {
		return Record{}, ErrNotFound
	}
	return s.Get(ctx, id)
}

func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	_, err := s.DB.ExecContext(ctx, `DELETE FROM sessions WHERE id = ?`, id)
	return err
}

func (s *SQLiteStore) DeleteExpired(ctx context.Context, now time.Time) (int, error) {
	res, err := s.DB.ExecContext(ctx, `DELETE FROM sessions WHERE expires_at_ms <= ?`, now.UnixMilli())
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	return int(n), err
}
