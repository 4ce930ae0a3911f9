// Copyright (c) 2026 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package apis

import (
	"context"
	"errors"

	"github.com/bonitasoft/bonita-engine-sub001/internal/apierr"
	"github.com/bonitasoft/bonita-engine-sub001/internal/audit"
	"github.com/bonitasoft/bonita-engine-sub001/internal/platform"
)

// PlatformAPI manages the node and the tenant registry.
type PlatformAPI struct {
	node    *platform.Node
	tenants platform.TenantStore
	audit   *audit.Logger
}

func (a *PlatformAPI) StartNode(ctx context.Context) error {
	if err := requirePlatform(ctx); err != nil {
		return err
	}
	err := a.node.Start(ctx)
	a.audit.Node(ctx, actor(ctx), audit.EventNodeStart, err)
	return err
}

func (a *PlatformAPI) StopNode(ctx context.Context) error {
	if err := requirePlatform(ctx); err != nil {
		return err
	}
	err := a.node.Stop(ctx)
	a.audit.Node(ctx, actor(ctx), audit.EventNodeStop, err)
	return err
}

func (a *PlatformAPI) GetNodeState() string {
	return a.node.State().String()
}

func (a *PlatformAPI) ListTenants(ctx context.Context) ([]platform.Tenant, error) {
	if err := requirePlatform(ctx); err != nil {
		return nil, err
	}
	return a.tenants.List(ctx)
}

func (a *PlatformAPI) CreateTenant(ctx context.Context, name string) (platform.Tenant, error) {
	if err := requirePlatform(ctx); err != nil {
		return platform.Tenant{}, err
	}
	t, err := a.tenants.Create(ctx, name)
	if err == nil {
		a.audit.Tenant(ctx, actor(ctx), audit.EventTenantCreate, t.ID, map[string]string{"name": name}, nil)
	}
	switch {
	case errors.Is(err, platform.ErrTenantExists):
		return platform.Tenant{}, apierr.Business("tenant.exists", "tenant %s already exists", name)
	case errors.Is(err, platform.ErrInvalidTenant):
		return platform.Tenant{}, apierr.Business("tenant.invalid", "%v", err)
	}
	return t, err
}
