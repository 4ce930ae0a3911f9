// Copyright (c) 2026 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package session

import (
	"context"
	"crypto/subtle"

	"github.com/bonitasoft/bonita-engine-sub001/internal/platform"
)

// Authenticator checks login credentials and returns the user id.
type Authenticator interface {
	AuthenticatePlatform(ctx context.Context, user, password string) (int64, error)
	AuthenticateTenant(ctx context.Context, tenant platform.Tenant, user, password string) (int64, error)
}

// Credential is a user name and password pair.
type Credential struct {
	User     string
	Password string
}

// Empty reports whether no user is configured.
func (c Credential) Empty() bool { return c.User == "" }

// TechnicalAuthenticator authenticates the configured technical users.
// Tenants without their own credential fall back to TenantDefault.
type TechnicalAuthenticator struct {
	Platform      Credential
	TenantDefault Credential
	Tenants       map[string]Credential // by tenant name
}

func (a *TechnicalAuthenticator) AuthenticatePlatform(ctx context.Context, user, password string) (int64, error) {
	if !matches(a.Platform, user, password) {
		return 0, ErrBadLogin
	}
	return TechnicalUserID, nil
}

func (a *TechnicalAuthenticator) AuthenticateTenant(ctx context.Context, tenant platform.Tenant, user, password string) (int64, error) {
	cred, ok := a.Tenants[tenant.Name]
	if !ok {
		cred = a.TenantDefault
	}
	if !matches(cred, user, password) {
		return 0, ErrBadLogin
	}
	return TechnicalUserID, nil
}

func matches(c Credential, user, password string) bool {
	if c.Empty() {
		return false
	}
	u := subtle.ConstantTimeCompare([]byte(c.User), []byte(user))
	p := subtle.ConstantTimeCompare([]byte(c.Password), []byte(password))
	return u&p == 1
}
