// Copyright (c) 2026 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package platform

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

// TenantStatus is the activation status of a tenant.
type TenantStatus string

const (
	TenantRunning TenantStatus = "running"
	TenantPaused  TenantStatus = "paused"
)

// Valid reports whether s is a known status.
func (s TenantStatus) Valid() bool {
	return s == TenantRunning || s == TenantPaused
}

var (
	ErrTenantNotFound = errors.New("tenant not found")
	ErrTenantExists   = errors.New("tenant already exists")
	ErrInvalidTenant  = errors.New("invalid tenant")
)

// Tenant is one isolated organization served by the platform.
type Tenant struct {
	ID        int64        `json:"id"`
	Name      string       `json:"name"`
	Status    TenantStatus `json:"status"`
	CreatedAt time.Time    `json:"createdAt"`
	UpdatedAt time.Time    `json:"updatedAt"`
}

// Paused reports whether the tenant is paused.
func (t Tenant) Paused() bool { return t.Status == TenantPaused }

// TenantStore is the tenant registry. Implementations join the transaction
// bound to ctx when they are database backed.
type TenantStore interface {
	Create(ctx context.Context, name string) (Tenant, error)
	Get(ctx context.Context, id int64) (Tenant, error)
	GetByName(ctx context.Context, name string) (Tenant, error)
	List(ctx context.Context) ([]Tenant, error)
	SetStatus(ctx context.Context, id int64, status TenantStatus) error
	IsPaused(ctx context.Context, id int64) (bool, error)
}

func validateName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", fmt.Errorf("%w: empty name", ErrInvalidTenant)
	}
	if len(name) > 64 {
		return "", fmt.Errorf("%w: name longer than 64 characters", ErrInvalidTenant)
	}
	return name, nil
}

// Provision creates every named tenant that does not exist yet and returns
// all of them in the given order.
func Provision(ctx context.Context, store TenantStore, names []string) ([]Tenant, error) {
	out := make([]Tenant, 0, len(names))
	for _, name := range names {
		t, err := store.GetByName(ctx, name)
		if errors.Is(err, ErrTenantNotFound) {
			t, err = store.Create(ctx, name)
		}
		if err != nil {
			return nil, fmt.Errorf("provision tenant %q: %w", name, err)
		}
		out = append(out, t)
	}
	return out, nil
}
