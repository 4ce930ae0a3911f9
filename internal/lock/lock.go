// Copyright (c) 2026 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

// Package lock provides named functional locks keyed by (scope, tenant).
// Acquisition is bounded by a timeout; callers fail fast instead of queueing.
package lock

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// PlatformTenantID is the tenant id used for locks taken by platform calls.
const PlatformTenantID int64 = -1

var (
	ErrTimeout = errors.New("lock acquisition timed out")
	ErrNotHeld = errors.New("lock not held")
)

// Key identifies a functional lock.
type Key struct {
	Scope    string
	TenantID int64
}

func (k Key) String() string {
	if k.TenantID == PlatformTenantID {
		return k.Scope + "@platform"
	}
	return fmt.Sprintf("%s@tenant:%d", k.Scope, k.TenantID)
}

// Handle is a held lock.
type Handle interface {
	Key() Key
	Token() string
	// Release frees the lock. Releasing twice returns ErrNotHeld.
	Release(ctx context.Context) error
}

// Service acquires functional locks.
type Service interface {
	// TryLock waits at most timeout for key. It returns ErrTimeout when the
	// lock stays held by someone else.
	TryLock(ctx context.Context, key Key, timeout time.Duration) (Handle, error)
}

func resultLabel(err error) string {
	switch {
	case err == nil:
		return "acquired"
	case errors.Is(err, ErrTimeout):
		return "timeout"
	default:
		return "error"
	}
}
