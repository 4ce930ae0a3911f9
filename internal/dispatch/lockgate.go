// Copyright (c) 2026 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package dispatch

import (
	"context"
	"errors"
	"time"

	"github.com/bonitasoft/bonita-engine-sub001/internal/apierr"
	"github.com/bonitasoft/bonita-engine-sub001/internal/lock"
	"github.com/bonitasoft/bonita-engine-sub001/internal/log"
)

// DefaultLockTimeout bounds functional lock acquisition.
const DefaultLockTimeout = 100 * time.Millisecond

func noRelease() {}

// withLock acquires the functional lock declared on the method, if any. The
// returned release func is always non-nil and must run on every exit path.
func (d *Dispatcher) withLock(ctx context.Context, c *call) (func(), error) {
	scopeName := c.facts.LockScope
	if scopeName == "" {
		return noRelease, nil
	}

	key := lock.Key{Scope: scopeName, TenantID: lock.PlatformTenantID}
	if c.hasTenant {
		key.TenantID = c.tenantID
	}
	timeout := d.LockTimeout()

	h, err := d.locks.TryLock(ctx, key, timeout)
	if errors.Is(err, lock.ErrTimeout) {
		return noRelease, apierr.LockUnavailable("unable to acquire lock %s for %s within %s", key, c.target(), timeout)
	}
	if err != nil {
		return noRelease, apierr.Unexpected(err, "acquire lock %s for %s: %v", key, c.target(), err)
	}

	return func() {
		// Release must not be skipped because the call's ctx was cancelled.
		if err := h.Release(context.WithoutCancel(ctx)); err != nil {
			logger := log.WithComponentFromContext(ctx, "dispatch")
			logger.Warn().Err(err).
				Str(log.FieldLockScope, key.String()).
				Str(log.FieldAPI, c.api).
				Str(log.FieldMethod, c.method).
				Msg("lock release failed")
		}
	}, nil
}
