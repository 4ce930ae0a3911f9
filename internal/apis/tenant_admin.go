// Copyright (c) 2026 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package apis

import (
	"context"
	"strings"

	"github.com/bonitasoft/bonita-engine-sub001/internal/apierr"
	"github.com/bonitasoft/bonita-engine-sub001/internal/audit"
	"github.com/bonitasoft/bonita-engine-sub001/internal/log"
	"github.com/bonitasoft/bonita-engine-sub001/internal/platform"
)

// TenantAdministrationAPI pauses and resumes the caller's tenant and installs
// its business data model. Every method works while the tenant is paused.
type TenantAdministrationAPI struct {
	tenants platform.TenantStore
	bdm     BDMStore
	audit   *audit.Logger
}

// Pause is idempotent: pausing a paused tenant succeeds.
func (a *TenantAdministrationAPI) Pause(ctx context.Context) error {
	return a.setStatus(ctx, platform.TenantPaused)
}

// Resume is idempotent: resuming a running tenant succeeds.
func (a *TenantAdministrationAPI) Resume(ctx context.Context) error {
	return a.setStatus(ctx, platform.TenantRunning)
}

func (a *TenantAdministrationAPI) setStatus(ctx context.Context, status platform.TenantStatus) error {
	id, err := boundTenant(ctx)
	if err != nil {
		return err
	}
	t, err := a.tenants.Get(ctx, id)
	if err != nil {
		return tenantError(err, "tenant %d not found", id)
	}
	if t.Status == status {
		return nil
	}
	if err := a.tenants.SetStatus(ctx, id, status); err != nil {
		return err
	}
	logger := log.WithComponentFromContext(ctx, "tenant")
	logger.Info().
		Str(log.FieldEvent, "tenant.status").
		Int64(log.FieldTenantID, id).
		Str(log.FieldOldState, string(t.Status)).
		Str(log.FieldNewState, string(status)).
		Msg("tenant status changed")
	ev := audit.EventTenantResume
	if status == platform.TenantPaused {
		ev = audit.EventTenantPause
	}
	a.audit.Tenant(ctx, actor(ctx), ev, id, nil, nil)
	return nil
}

func (a *TenantAdministrationAPI) IsPaused(ctx context.Context) (bool, error) {
	id, err := boundTenant(ctx)
	if err != nil {
		return false, err
	}
	paused, err := a.tenants.IsPaused(ctx, id)
	if err != nil {
		return false, tenantError(err, "tenant %d not found", id)
	}
	return paused, nil
}

// InstallBusinessDataModel replaces the tenant's business data model. It
// only runs on a paused tenant, one install per tenant at a time.
func (a *TenantAdministrationAPI) InstallBusinessDataModel(ctx context.Context, version string) (string, error) {
	id, err := boundTenant(ctx)
	if err != nil {
		return "", err
	}
	version = strings.TrimSpace(version)
	if version == "" {
		return "", apierr.Business("bdm.invalid_version", "business data model version is empty")
	}
	err = a.bdm.SetVersion(ctx, id, version)
	a.audit.Tenant(ctx, actor(ctx), audit.EventBDMInstall, id, map[string]string{"version": version}, err)
	if err != nil {
		return "", err
	}
	return version, nil
}

// GetBusinessDataModelVersion returns "" when no model is installed.
func (a *TenantAdministrationAPI) GetBusinessDataModelVersion(ctx context.Context) (string, error) {
	id, err := boundTenant(ctx)
	if err != nil {
		return "", err
	}
	return a.bdm.Version(ctx, id)
}
