// Copyright (c) 2026 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

// Package apis contains the API surfaces served through the dispatcher. Each
// API is a plain Go type whose exported methods are callable remotely; the
// lifecycle facts of every method are declared in Register.
package apis

import (
	"context"
	"errors"

	"github.com/bonitasoft/bonita-engine-sub001/internal/apierr"
	"github.com/bonitasoft/bonita-engine-sub001/internal/audit"
	"github.com/bonitasoft/bonita-engine-sub001/internal/callctx"
	"github.com/bonitasoft/bonita-engine-sub001/internal/platform"
	"github.com/bonitasoft/bonita-engine-sub001/internal/ratelimit"
	"github.com/bonitasoft/bonita-engine-sub001/internal/registry"
	"github.com/bonitasoft/bonita-engine-sub001/internal/session"
)

// API names as seen by remote callers.
const (
	LoginAPIName       = "LoginAPI"
	PlatformAPIName    = "PlatformAPI"
	TenantAdminAPIName = "TenantAdministrationAPI"
	ProfileAPIName     = "ProfileAPI"
)

// BDMLockScope serializes business data model installs per tenant.
const BDMLockScope = "bdm"

const (
	codeLoginFailed   = "login.failed"
	codeLoginThrottle = "login.throttled"
	codeTenantMissing = "tenant.not_found"
)

// Deps are the services the APIs operate on.
type Deps struct {
	Sessions *session.Service
	Node     *platform.Node
	Tenants  platform.TenantStore
	BDM      BDMStore
	Audit    *audit.Logger
	Throttle *ratelimit.Limiter // nil disables login throttling
}

var (
	whenPaused = &registry.PauseAvailability{}
	onlyPaused = &registry.PauseAvailability{OnlyWhenPaused: true}
)

// Register declares every API on r.
func Register(r *registry.Registry, d Deps) error {
	if d.BDM == nil {
		d.BDM = NewMemoryBDMStore()
	}
	if d.Audit == nil {
		d.Audit = audit.NewLogger()
	}
	errs := []error{
		registry.Register(r, registry.Definition[*LoginAPI]{
			Name: LoginAPIName,
			Type: registry.TypeMeta{NoSessionRequired: true},
			Methods: map[string]registry.MethodMeta{
				"LoginPlatform": {AvailableOnStoppedNode: true},
				"Logout":        {AvailableOnStoppedNode: true},
			},
			New: func() *LoginAPI { return &LoginAPI{sessions: d.Sessions, audit: d.Audit, throttle: d.Throttle} },
		}),
		registry.Register(r, registry.Definition[*PlatformAPI]{
			Name: PlatformAPIName,
			Methods: map[string]registry.MethodMeta{
				"StartNode":    {AvailableOnStoppedNode: true, CustomTransactions: true},
				"StopNode":     {AvailableOnStoppedNode: true, CustomTransactions: true},
				"GetNodeState": {AvailableOnStoppedNode: true, CustomTransactions: true},
			},
			New: func() *PlatformAPI { return &PlatformAPI{node: d.Node, tenants: d.Tenants, audit: d.Audit} },
		}),
		registry.Register(r, registry.Definition[*TenantAdministrationAPI]{
			Name: TenantAdminAPIName,
			Type: registry.TypeMeta{AvailableWhenTenantPaused: whenPaused},
			Methods: map[string]registry.MethodMeta{
				"Pause":                    {CustomTransactions: true},
				"Resume":                   {CustomTransactions: true},
				"InstallBusinessDataModel": {LockScope: BDMLockScope, AvailableWhenTenantPaused: onlyPaused},
			},
			New: func() *TenantAdministrationAPI { return &TenantAdministrationAPI{tenants: d.Tenants, bdm: d.BDM, audit: d.Audit} },
		}),
		registry.Register(r, registry.Definition[*ProfileAPI]{
			Name: ProfileAPIName,
			Methods: map[string]registry.MethodMeta{
				"GetProfile":     {AvailableWhenTenantPaused: whenPaused},
				"GetProfileByID": {Deprecated: true},
			},
			New: func() *ProfileAPI { return &ProfileAPI{} },
		}),
	}
	return errors.Join(errs...)
}

// boundTenant returns the tenant of the calling session.
func boundTenant(ctx context.Context) (int64, error) {
	id, ok := callctx.Tenant(ctx)
	if !ok || id == callctx.NoTenant {
		return 0, apierr.Business("session.tenant_required", "a tenant session is required")
	}
	return id, nil
}

// requirePlatform rejects calls made with a tenant session.
func requirePlatform(ctx context.Context) error {
	if id, ok := callctx.Tenant(ctx); ok && id != callctx.NoTenant {
		return apierr.Business("session.platform_required", "a platform session is required")
	}
	return nil
}

// actor names the user of the calling session for audit records.
func actor(ctx context.Context) string {
	if s, ok := callctx.Session(ctx).(session.Session); ok {
		return s.User()
	}
	return "anonymous"
}

func tenantError(err error, format string, args ...any) error {
	if errors.Is(err, platform.ErrTenantNotFound) {
		return apierr.Business(codeTenantMissing, format, args...)
	}
	return err
}
