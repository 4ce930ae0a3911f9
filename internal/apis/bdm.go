// Copyright (c) 2026 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package apis

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/bonitasoft/bonita-engine-sub001/internal/persistence/sqlite"
	"github.com/bonitasoft/bonita-engine-sub001/internal/txn"
)

// BDMStore records the installed business data model version per tenant.
type BDMStore interface {
	Version(ctx context.Context, tenantID int64) (string, error)
	SetVersion(ctx context.Context, tenantID int64, version string) error
}

// MemoryBDMStore is a BDMStore for tests and in-memory deployments.
type MemoryBDMStore struct {
	mu       sync.RWMutex
	versions map[int64]string
}

func NewMemoryBDMStore() *MemoryBDMStore {
	return &MemoryBDMStore{versions: make(map[int64]string)}
}

func (m *MemoryBDMStore) Version(_ context.Context, tenantID int64) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.versions[tenantID], nil
}

func (m *MemoryBDMStore) SetVersion(_ context.Context, tenantID int64, version string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.versions[tenantID] = version
	return nil
}

var bdmMigrations = []sqlite.Migration{
	{Version: 1, SQL: `
	CREATE TABLE IF NOT EXISTS business_data_models (
		tenant_id INTEGER PRIMARY KEY,
		version TEXT NOT NULL,
		installed_at_ms INTEGER NOT NULL
	);`},
}

// SQLBDMStore stores versions in SQLite, joining the transaction bound to ctx.
type SQLBDMStore struct {
	DB *sql.DB
}

// NewSQLBDMStore migrates the schema and returns the store.
func NewSQLBDMStore(ctx context.Context, db *sql.DB) (*SQLBDMStore, error) {
	if err := sqlite.Migrate(ctx, db, "bdm", bdmMigrations); err != nil {
		return nil, fmt.Errorf("bdm store: migration failed: %w", err)
	}
	return &SQLBDMStore{DB: db}, nil
}

func (s *SQLBDMStore) Version(ctx context.Context, tenantID int64) (string, error) {
	var v string
	err := txn.QuerierFor(ctx, s.DB).
		QueryRowContext(ctx, `SELECT version FROM business_data_models WHERE tenant_id = ?`, tenantID).
		Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	return v, err
}

func (s *SQLBDMStore) SetVersion(ctx context.Context, tenantID int64, version string) error {
	_, err := txn.QuerierFor(ctx, s.DB).ExecContext(ctx, `
		INSERT INTO business_data_models (tenant_id, version, installed_at_ms) VALUES (?, ?, ?)
		ON CONFLICT(tenant_id) DO UPDATE SET version = excluded.version, installed_at_ms = excluded.installed_at_ms`,
		tenantID, version, time.Now().UnixMilli())
	return err
}
