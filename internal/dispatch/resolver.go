// Copyright (c) 2026 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package dispatch

import (
	"context"

	"github.com/bonitasoft/bonita-engine-sub001/internal/apierr"
	"github.com/bonitasoft/bonita-engine-sub001/internal/callctx"
	"github.com/bonitasoft/bonita-engine-sub001/internal/scope"
	"github.com/bonitasoft/bonita-engine-sub001/internal/session"
)

// SessionValidator validates and renews sessions against the login registries.
type SessionValidator interface {
	ValidatePlatform(ctx context.Context, id string) (session.PlatformSession, error)
	ValidateTenant(ctx context.Context, tenantID int64, id string) (session.TenantSession, error)
}

// resolveSession validates the caller's session and returns the derived
// context carrying the tenant binding and execution scope. The caller's ctx
// is never modified, so the previous binding is restored on every exit path.
func (d *Dispatcher) resolveSession(ctx context.Context, c *call) (context.Context, error) {
	switch s := c.opts.Session.(type) {
	case nil:
		if c.facts.NoSessionRequired {
			return ctx, nil
		}
		return ctx, apierr.InvalidSession("Session is null")

	case session.PlatformSession:
		return d.resolvePlatform(ctx, c, s)
	case *session.PlatformSession:
		if s == nil {
			return d.resolveSession(ctx, withSession(c, nil))
		}
		return d.resolvePlatform(ctx, c, *s)

	case session.TenantSession:
		return d.resolveTenant(ctx, c, s)
	case *session.TenantSession:
		if s == nil {
			return d.resolveSession(ctx, withSession(c, nil))
		}
		return d.resolveTenant(ctx, c, *s)

	default:
		return ctx, apierr.InvalidSession("unknown session type %T", s)
	}
}

func withSession(c *call, s session.Session) *call {
	c.opts.Session = s
	return c
}

// The claimed user name is kept only until validation succeeds; afterwards
// the stored session's name is authoritative.
func (d *Dispatcher) resolvePlatform(ctx context.Context, c *call, s session.PlatformSession) (context.Context, error) {
	c.userName = s.UserName
	valid, err := d.sessions.ValidatePlatform(ctx, s.ID)
	if err != nil {
		return ctx, apierr.InvalidSession("invalid platform session %s: %v", s.ID, err)
	}
	c.session = valid
	c.userName = valid.UserName
	c.tenantID = callctx.NoTenant

	ctx = callctx.WithTenant(ctx, callctx.NoTenant)
	ctx = callctx.WithSession(ctx, valid)
	if d.node.IsStarted() {
		c.scope = d.scopes.Global()
		ctx = callctx.WithScope(ctx, c.scope)
	}
	return ctx, nil
}

func (d *Dispatcher) resolveTenant(ctx context.Context, c *call, s session.TenantSession) (context.Context, error) {
	c.userName = s.UserName
	valid, err := d.sessions.ValidateTenant(ctx, s.TenantID, s.ID)
	if err != nil {
		return ctx, apierr.InvalidSession("invalid session %s for tenant %d: %v", s.ID, s.TenantID, err)
	}
	c.session = valid
	c.userName = valid.UserName
	c.tenantID = valid.TenantID
	c.hasTenant = true
	c.scope = d.scopes.Resolve(scope.ID{Kind: scope.KindTenant, TenantID: valid.TenantID})

	ctx = callctx.WithTenant(ctx, valid.TenantID)
	ctx = callctx.WithSession(ctx, valid)
	ctx = callctx.WithScope(ctx, c.scope)
	return ctx, nil
}
