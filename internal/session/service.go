// Copyright (c) 2026 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package session

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/bonitasoft/bonita-engine-sub001/internal/log"
	"github.com/bonitasoft/bonita-engine-sub001/internal/metrics"
	"github.com/bonitasoft/bonita-engine-sub001/internal/platform"
	"github.com/google/uuid"
)

// DefaultTTL is the session duration when none is configured.
const DefaultTTL = time.Hour

// TenantDirectory resolves tenants by name at login.
type TenantDirectory interface {
	GetByName(ctx context.Context, name string) (platform.Tenant, error)
}

// Service is the login registry used by the LoginAPI and the dispatcher.
type Service struct {
	store   Store
	auth    Authenticator
	tenants TenantDirectory
	ttl     atomic.Int64
	now     func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithClock replaces the wall clock.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithTTL sets the initial session duration.
func WithTTL(d time.Duration) Option {
	return func(s *Service) { s.SetTTL(d) }
}

// NewService creates a Service.
func NewService(store Store, auth Authenticator, tenants TenantDirectory, opts ...Option) *Service {
	s := &Service{store: store, auth: auth, tenants: tenants, now: time.Now}
	s.ttl.Store(int64(DefaultTTL))
	for _, o := range opts {
		o(s)
	}
	return s
}

// SetTTL changes the duration of sessions created from now on.
func (s *Service) SetTTL(d time.Duration) {
	if d > 0 {
		s.ttl.Store(int64(d))
	}
}

// TTL returns the current session duration.
func (s *Service) TTL() time.Duration { return time.Duration(s.ttl.Load()) }

// Store returns the underlying store.
func (s *Service) Store() Store { return s.store }

func (s *Service) newRecord(kind Kind, tenantID, userID int64, user string) Record {
	now := s.now().UTC()
	d := s.TTL()
	return Record{
		ID:        uuid.NewString(),
		Kind:      kind,
		TenantID:  tenantID,
		UserID:    userID,
		UserName:  user,
		CreatedAt: now,
		Duration:  d,
		ExpiresAt: now.Add(d),
	}
}

// LoginPlatform opens a platform session.
func (s *Service) LoginPlatform(ctx context.Context, user, password string) (PlatformSession, error) {
	userID, err := s.auth.AuthenticatePlatform(ctx, user, password)
	metrics.RecordLogin(string(KindPlatform), err == nil)
	if err != nil {
		return PlatformSession{}, err
	}
	rec := s.newRecord(KindPlatform, platformTenantID, userID, user)
	if err := s.store.Put(ctx, rec); err != nil {
		return PlatformSession{}, fmt.Errorf("store platform session: %w", err)
	}
	logger := log.WithComponentFromContext(ctx, "session")
	logger.Info().
		Str(log.FieldEvent, "session.login").
		Str(log.FieldSessionKind, string(KindPlatform)).
		Str(log.FieldUserName, user).
		Msg("platform login")
	return rec.Session().(PlatformSession), nil
}

// LoginTenant opens a session on the named tenant.
func (s *Service) LoginTenant(ctx context.Context, tenantName, user, password string) (TenantSession, error) {
	tenant, err := s.tenants.GetByName(ctx, tenantName)
	if err != nil {
		metrics.RecordLogin(string(KindTenant), false)
		if errors.Is(err, platform.ErrTenantNotFound) {
			return TenantSession{}, ErrBadLogin
		}
		return TenantSession{}, err
	}
	userID, err := s.auth.AuthenticateTenant(ctx, tenant, user, password)
	metrics.RecordLogin(string(KindTenant), err == nil)
	if err != nil {
		return TenantSession{}, err
	}
	rec := s.newRecord(KindTenant, tenant.ID, userID, user)
	if err := s.store.Put(ctx, rec); err != nil {
		return TenantSession{}, fmt.Errorf("store tenant session: %w", err)
	}
	logger := log.WithComponentFromContext(ctx, "session")
	logger.Info().
		Str(log.FieldEvent, "session.login").
		Str(log.FieldSessionKind, string(KindTenant)).
		Int64(log.FieldTenantID, tenant.ID).
		Str(log.FieldUserName, user).
		Msg("tenant login")
	return rec.Session().(TenantSession), nil
}

// Logout deletes the session. Unknown sessions are ignored.
func (s *Service) Logout(ctx context.Context, id string) error {
	if err := s.store.Delete(ctx, id); err != nil {
		return err
	}
	metrics.RecordLogout()
	return nil
}

// ValidatePlatform checks that id is a live platform session and renews it.
func (s *Service) ValidatePlatform(ctx context.Context, id string) (PlatformSession, error) {
	rec, err := s.validate(ctx, id, KindPlatform, platformTenantID)
	if err != nil {
		return PlatformSession{}, err
	}
	return rec.Session().(PlatformSession), nil
}

// ValidateTenant checks that id is a live session of tenantID and renews it.
func (s *Service) ValidateTenant(ctx context.Context, tenantID int64, id string) (TenantSession, error) {
	rec, err := s.validate(ctx, id, KindTenant, tenantID)
	if err != nil {
		return TenantSession{}, err
	}
	return rec.Session().(TenantSession), nil
}

func (s *Service) validate(ctx context.Context, id string, kind Kind, tenantID int64) (Record, error) {
	rec, err := s.check(ctx, id, kind, tenantID)
	metrics.RecordValidation(string(kind), err == nil)
	return rec, err
}

func (s *Service) check(ctx context.Context, id string, kind Kind, tenantID int64) (Record, error) {
	if id == "" {
		return Record{}, ErrNotFound
	}
	rec, err := s.store.Get(ctx, id)
	if err != nil {
		return Record{}, err
	}
	if rec.Kind != kind || rec.TenantID != tenantID {
		return Record{}, ErrKindMismatch
	}
	return s.store.Touch(ctx, id, s.now().UTC())
}

// Sweep removes expired sessions and returns how many were removed.
func (s *Service) Sweep(ctx context.Context) (int, error) {
	n, err := s.store.DeleteExpired(ctx, s.now().UTC())
	if err != nil {
		return n, err
	}
	metrics.RecordExpired(n)
	return n, nil
}

// platformTenantID is stored in the tenant column of platform sessions.
const platformTenantID int64 = -1
