// Copyright (c) 2026 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

// Package session implements the platform and tenant login registries.
package session

import (
	"time"
)

// Kind distinguishes platform sessions from tenant sessions.
type Kind string

const (
	KindPlatform Kind = "platform"
	KindTenant   Kind = "tenant"
)

// TechnicalUserID is the user id of configured technical users.
const TechnicalUserID int64 = -1

// Session is the caller identity presented with a call. The dispatcher
// understands PlatformSession and TenantSession; any other implementation
// is rejected.
type Session interface {
	SessionID() string
	User() string
}

// PlatformSession is a session opened against the platform login registry.
type PlatformSession struct {
	ID        string        `json:"id"`
	CreatedAt time.Time     `json:"createdAt"`
	Duration  time.Duration `json:"duration"`
	UserID    int64         `json:"userId"`
	UserName  string        `json:"userName"`
}

func (s PlatformSession) SessionID() string { return s.ID }
func (s PlatformSession) User() string      { return s.UserName }

// TenantSession is a session opened against one tenant's login registry.
type TenantSession struct {
	ID        string        `json:"id"`
	TenantID  int64         `json:"tenantId"`
	CreatedAt time.Time     `json:"createdAt"`
	Duration  time.Duration `json:"duration"`
	UserID    int64         `json:"userId"`
	UserName  string        `json:"userName"`
}

func (s TenantSession) SessionID() string { return s.ID }
func (s TenantSession) User() string      { return s.UserName }

// Record is the stored form of a session.
type Record struct {
	ID        string        `json:"id"`
	Kind      Kind          `json:"kind"`
	TenantID  int64         `json:"tenantId"`
	UserID    int64         `json:"userId"`
	UserName  string        `json:"userName"`
	CreatedAt time.Time     `json:"createdAt"`
	Duration  time.Duration `json:"duration"`
	ExpiresAt time.Time     `json:"expiresAt"`
}

// Expired reports whether the record is no longer valid at now.
func (r Record) Expired(now time.Time) bool {
	return !now.Before(r.ExpiresAt)
}

// Session converts the record into its session variant.
func (r Record) Session() Session {
	if r.Kind == KindTenant {
		return TenantSession{
			ID:        r.ID,
			TenantID:  r.TenantID,
			CreatedAt: r.CreatedAt,
			Duration:  r.Duration,
			UserID:    r.UserID,
			UserName:  r.UserName,
		}
	}
	return PlatformSession{
		ID:        r.ID,
		CreatedAt: r.CreatedAt,
		Duration:  r.Duration,
		UserID:    r.UserID,
		UserName:  r.UserName,
	}
}

func renewed(r Record, now time.Time) Record {
	r.ExpiresAt = now.Add(r.Duration)
	return r
}
