// Copyright (c) 2026 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package apis

import (
	"context"
	"errors"

	"github.com/bonitasoft/bonita-engine-sub001/internal/apierr"
	"github.com/bonitasoft/bonita-engine-sub001/internal/audit"
	"github.com/bonitasoft/bonita-engine-sub001/internal/ratelimit"
	"github.com/bonitasoft/bonita-engine-sub001/internal/session"
)

// LoginAPI opens and closes sessions. It needs no session itself.
type LoginAPI struct {
	sessions *session.Service
	audit    *audit.Logger
	throttle *ratelimit.Limiter
}

func (a *LoginAPI) admit(ctx context.Context, tenant, user string) error {
	if a.throttle.Allow(ratelimit.AccountKey(tenant, user)) {
		return nil
	}
	a.audit.Login(ctx, user, tenant, false)
	return apierr.Business(codeLoginThrottle, "too many login attempts for %s", user)
}

func loginError(err error) error {
	if errors.Is(err, session.ErrBadLogin) {
		return apierr.Business(codeLoginFailed, "bad credentials")
	}
	return err
}

// LoginPlatform opens a platform session. It works on a stopped node so the
// node can be started remotely.
func (a *LoginAPI) LoginPlatform(ctx context.Context, user, password string) (session.PlatformSession, error) {
	if err := a.admit(ctx, "", user); err != nil {
		return session.PlatformSession{}, err
	}
	s, err := a.sessions.LoginPlatform(ctx, user, password)
	a.audit.Login(ctx, user, "", err == nil)
	if err != nil {
		return session.PlatformSession{}, loginError(err)
	}
	return s, nil
}

// LoginTenant opens a session on the named tenant.
func (a *LoginAPI) LoginTenant(ctx context.Context, tenant, user, password string) (session.TenantSession, error) {
	if err := a.admit(ctx, tenant, user); err != nil {
		return session.TenantSession{}, err
	}
	s, err := a.sessions.LoginTenant(ctx, tenant, user, password)
	a.audit.Login(ctx, user, tenant, err == nil)
	if err != nil {
		return session.TenantSession{}, loginError(err)
	}
	return s, nil
}

// Logout closes the session. Unknown ids are ignored.
func (a *LoginAPI) Logout(ctx context.Context, sessionID string) error {
	if err := a.sessions.Logout(ctx, sessionID); err != nil {
		return err
	}
	a.audit.Logout(ctx, sessionID)
	return nil
}
