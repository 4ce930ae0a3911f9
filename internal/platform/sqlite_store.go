// Copyright (c) 2026 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package platform

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bonitasoft/bonita-engine-sub001/internal/persistence/sqlite"
	"github.com/bonitasoft/bonita-engine-sub001/internal/txn"
)

var tenantMigrations = []sqlite.Migration{
	{Version: 1, SQL: `
	CREATE TABLE IF NOT EXISTS tenants (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL UNIQUE,
		status TEXT NOT NULL,
		created_at_ms INTEGER NOT NULL,
		updated_at_ms INTEGER NOT NULL
	);`},
}

// SQLTenantStore implements TenantStore on SQLite. Every query joins the
// transaction bound to ctx, if any.
type SQLTenantStore struct {
	DB *sql.DB
}

// NewSQLTenantStore migrates the tenants schema and returns the store.
func NewSQLTenantStore(ctx context.Context, db *sql.DB) (*SQLTenantStore, error) {
	if err := sqlite.Migrate(ctx, db, "tenants", tenantMigrations); err != nil {
		return nil, fmt.Errorf("tenant store: migration failed: %w", err)
	}
	return &SQLTenantStore{DB: db}, nil
}

func (s *SQLTenantStore) q(ctx context.Context) txn.Querier {
	return txn.QuerierFor(ctx, s.DB)
}

func (s *SQLTenantStore) Create(ctx context.Context, name string) (Tenant, error) {
	name, err := validateName(name)
	if err != nil {
		return Tenant{}, err
	}
	now := time.Now().UTC().Truncate(time.Millisecond)
	res, err := s.q(ctx).ExecContext(ctx,
		`INSERT INTO tenants (name, status, created_at_ms, updated_at_ms) VALUES (?, ?, ?, ?)`,
		name, string(TenantRunning), now.UnixMilli(), now.UnixMilli())
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE") {
			return Tenant{}, fmt.Errorf("%w: %s", ErrTenantExists, name)
		}
		return Tenant{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return Tenant{}, err
	}
	return Tenant{ID: id, Name: name, Status: TenantRunning, CreatedAt: now, UpdatedAt: now}, nil
}

const tenantColumns = `id, name, status, created_at_ms, updated_at_ms`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTenant(r rowScanner) (Tenant, error) {
	var (
		t                  Tenant
		status             string
		createdMS, updated int64
	)
	if err := r.Scan(&t.ID, &t.Name, &status, &createdMS, &updated); err != nil {
		return Tenant{}, err
	}
	t.Status = TenantStatus(status)
	t.CreatedAt = time.UnixMilli(createdMS).UTC()
	t.UpdatedAt = time.UnixMilli(updated).UTC()
	return t, nil
}

func (s *SQLTenantStore) Get(ctx context.Context, id int64) (Tenant, error) {
	t, err := scanTenant(s.q(ctx).QueryRowContext(ctx, `SELECT `+tenantColumns+` FROM tenants WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return Tenant{}, fmt.Errorf("%w: %d", ErrTenantNotFound, id)
	}
	return t, err
}

func (s *SQLTenantStore) GetByName(ctx context.Context, name string) (Tenant, error) {
	t, err := scanTenant(s.q(ctx).QueryRowContext(ctx, `SELECT `+tenantColumns+` FROM tenants WHERE name = ?`, name))
	if errors.Is(err, sql.ErrNoRows) {
		return Tenant{}, fmt.Errorf("%w: %s", ErrTenantNotFound, name)
	}
	return t, err
}

func (s *SQLTenantStore) List(ctx context.Context) ([]Tenant, error) {
	rows, err := s.q(ctx).QueryContext(ctx, `SELECT `+tenantColumns+` FROM tenants ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []Tenant
	for rows.Next() {
		t, err := scanTenant(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, t)
	}
	return list, rows.Err()
}

func (s *SQLTenantStore) SetStatus(ctx context.Context, id int64, status TenantStatus) error {
	if !status.Valid() {
		return fmt.Errorf("%w: status %q", ErrInvalidTenant, status)
	}
	res, err := s.q(ctx).ExecContext(ctx,
		`UPDATE tenants SET status = ?, updated_at_ms = ? WHERE id = ?`,
		string(status), time.Now().UnixMilli(), id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: %d", ErrTenantNotFound, id)
	}
	return nil
}

func (s *SQLTenantStore) IsPaused(ctx context.Context, id int64) (bool, error) {
	var status string
	err := s.q(ctx).QueryRowContext(ctx, `SELECT status FROM tenants WHERE id = ?`, id).Scan(&status)
	if errors.Is(err, sql.ErrNoRows) {
		return false, fmt.Errorf("%w: %d", ErrTenantNotFound, id)
	}
	if err != nil {
		return false, err
	}
	return TenantStatus(status) == TenantPaused, nil
}
