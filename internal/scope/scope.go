// Copyright (c) 2026 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

// Package scope resolves the execution scope of a call: the global scope for
// platform-level calls, or a per-tenant scope whose API factories may override
// the global ones. Scopes are created lazily and shared between calls.
package scope

import (
	"errors"
	"fmt"
	"sync"
)

// ErrUnknownAPI is returned when no factory is registered for an API name.
var ErrUnknownAPI = errors.New("unknown api")

// Kind identifies the scope level.
type Kind int

const (
	KindGlobal Kind = iota
	KindTenant
)

func (k Kind) String() string {
	switch k {
	case KindGlobal:
		return "global"
	case KindTenant:
		return "tenant"
	default:
		return "unknown"
	}
}

// ID identifies a scope.
type ID struct {
	Kind     Kind
	TenantID int64
}

func (id ID) String() string {
	if id.Kind == KindTenant {
		return fmt.Sprintf("tenant:%d", id.TenantID)
	}
	return id.Kind.String()
}

// Factory creates a fresh API implementation instance.
type Factory func() any

// Scope holds API factories and delegates unknown names to its parent.
type Scope struct {
	id     ID
	parent *Scope

	mu        sync.RWMutex
	factories map[string]Factory
}

func newScope(id ID, parent *Scope) *Scope {
	return &Scope{id: id, parent: parent, factories: make(map[string]Factory)}
}

// ID returns the scope identifier.
func (s *Scope) ID() ID { return s.id }

// Override installs a factory for api in this scope only.
func (s *Scope) Override(api string, f Factory) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if f == nil {
		delete(s.factories, api)
		return
	}
	s.factories[api] = f
}

// Lookup returns the factory for api, walking up to the parent scope.
func (s *Scope) Lookup(api string) (Factory, bool) {
	for cur := s; cur != nil; cur = cur.parent {
		cur.mu.RLock()
		f, ok := cur.factories[api]
		cur.mu.RUnlock()
		if ok {
			return f, true
		}
	}
	return nil, false
}

// Instantiate creates a new instance of api from the nearest factory.
func (s *Scope) Instantiate(api string) (any, error) {
	f, ok := s.Lookup(api)
	if !ok {
		return nil, fmt.Errorf("%w: %s (scope %s)", ErrUnknownAPI, api, s.id)
	}
	return f(), nil
}

// Resolver owns the global scope and the lazily created tenant scopes.
type Resolver struct {
	global *Scope

	mu      sync.RWMutex
	tenants map[int64]*Scope
}

// NewResolver creates a resolver with an empty global scope.
func NewResolver() *Resolver {
	return &Resolver{
		global:  newScope(ID{Kind: KindGlobal}, nil),
		tenants: make(map[int64]*Scope),
	}
}

// Global returns the platform-wide scope.
func (r *Resolver) Global() *Scope { return r.global }

// Tenant returns the scope of tenantID, creating it on first use.
func (r *Resolver) Tenant(tenantID int64) *Scope {
	r.mu.RLock()
	s, ok := r.tenants[tenantID]
	r.mu.RUnlock()
	if ok {
		return s
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.tenants[tenantID]; ok {
		return s
	}
	s = newScope(ID{Kind: KindTenant, TenantID: tenantID}, r.global)
	r.tenants[tenantID] = s
	return s
}

// Resolve returns the scope for id.
func (r *Resolver) Resolve(id ID) *Scope {
	if id.Kind == KindTenant {
		return r.Tenant(id.TenantID)
	}
	return r.global
}

// Drop discards the scope of a removed tenant.
func (r *Resolver) Drop(tenantID int64) {
	r.mu.Lock()
	delete(r.tenants, tenantID)
	r.mu.Unlock()
}
