// Copyright (c) 2026 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package platform

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"
)

// MemoryTenantStore is an in-memory TenantStore for tests and local iteration.
// Not durable.
type MemoryTenantStore struct {
	mu     sync.RWMutex
	nextID int64
	byID   map[int64]Tenant
}

// NewMemoryTenantStore creates an empty store. Ids start at 1.
func NewMemoryTenantStore() *MemoryTenantStore {
	return &MemoryTenantStore{nextID: 1, byID: make(map[int64]Tenant)}
}

func (m *MemoryTenantStore) Create(ctx context.Context, name string) (Tenant, error) {
	name, err := validateName(name)
	if err != nil {
		return Tenant{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, t := range m.byID {
		if t.Name == name {
			return Tenant{}, fmt.Errorf("%w: %s", ErrTenantExists, name)
		}
	}
	now := time.Now().UTC()
	t := Tenant{ID: m.nextID, Name: name, Status: TenantRunning, CreatedAt: now, UpdatedAt: now}
	m.byID[t.ID] = t
	m.nextID++
	return t, nil
}

func (m *MemoryTenantStore) Get(ctx context.Context, id int64) (Tenant, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	t, ok := m.byID[id]
	if !ok {
		return Tenant{}, fmt.Errorf("%w: %d", ErrTenantNotFound, id)
	}
	return t, nil
}

func (m *MemoryTenantStore) GetByName(ctx context.Context, name string) (Tenant, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, t := range m.byID {
		if t.Name == name {
			return t, nil
		}
	}
	return Tenant{}, fmt.Errorf("%w: %s", ErrTenantNotFound, name)
}

func (m *MemoryTenantStore) List(ctx context.Context) ([]Tenant, error) {
	m.mu.RLock()
	list := make([]Tenant, 0, len(m.byID))
	for _, t := range m.byID {
		list = append(list, t)
	}
	m.mu.RUnlock()
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	return list, nil
}

func (m *MemoryTenantStore) SetStatus(ctx context.Context, id int64, status TenantStatus) error {
	if !status.Valid() {
		return fmt.Errorf("%w: status %q", ErrInvalidTenant, status)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.byID[id]
	if !ok {
		return fmt.Errorf("%w: %d", ErrTenantNotFound, id)
	}
	t.Status = status
	t.UpdatedAt = time.Now().UTC()
	m.byID[id] = t
	return nil
}

func (m *MemoryTenantStore) IsPaused(ctx context.Context, id int64) (bool, error) {
	t, err := m.Get(ctx, id)
	if err != nil {
		return false, err
	}
	return t.Paused(), nil
}
