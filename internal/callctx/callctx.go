// Copyright (c) 2026 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

// Package callctx carries per-call dispatch state (tenant binding, execution
// scope, acting session) in a context.Context. Values are only ever added to
// derived contexts, so the caller's context is unchanged once a call returns.
package callctx

import "context"

// NoTenant is the tenant binding used for platform-level calls.
const NoTenant int64 = -1

type ctxKey int

const (
	tenantKey ctxKey = iota
	scopeKey
	sessionKey
)

// WithTenant binds a tenant id to the derived context.
func WithTenant(ctx context.Context, tenantID int64) context.Context {
	return context.WithValue(ctx, tenantKey, tenantID)
}

// Tenant returns the bound tenant id. ok is false when no binding exists.
func Tenant(ctx context.Context) (int64, bool) {
	if ctx == nil {
		return 0, false
	}
	id, ok := ctx.Value(tenantKey).(int64)
	return id, ok
}

// TenantOrNone returns the bound tenant, or NoTenant when unbound or platform-level.
func TenantOrNone(ctx context.Context) int64 {
	if id, ok := Tenant(ctx); ok {
		return id
	}
	return NoTenant
}

// WithScope stores the execution scope for the call. The value type is owned
// by package scope; callctx stays dependency free.
func WithScope(ctx context.Context, s any) context.Context {
	return context.WithValue(ctx, scopeKey, s)
}

// Scope returns the stored execution scope.
func Scope(ctx context.Context) any {
	if ctx == nil {
		return nil
	}
	return ctx.Value(scopeKey)
}

// WithSession stores the validated session of the call.
func WithSession(ctx context.Context, s any) context.Context {
	return context.WithValue(ctx, sessionKey, s)
}

// Session returns the validated session of the call, if any.
func Session(ctx context.Context) any {
	if ctx == nil {
		return nil
	}
	return ctx.Value(sessionKey)
}
