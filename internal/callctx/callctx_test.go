// Copyright (c) 2026 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package callctx

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTenantBinding(t *testing.T) {
	parent := context.Background()
	_, ok := Tenant(parent)
	assert.False(t, ok)
	assert.Equal(t, NoTenant, TenantOrNone(parent))

	child := WithTenant(parent, 12)
	id, ok := Tenant(child)
	assert.True(t, ok)
	assert.Equal(t, int64(12), id)

	// The parent is never modified by binding a child.
	_, ok = Tenant(parent)
	assert.False(t, ok)
}

func TestScopeAndSession(t *testing.T) {
	ctx := WithScope(context.Background(), "scope")
	ctx = WithSession(ctx, 42)
	assert.Equal(t, "scope", Scope(ctx))
	assert.Equal(t, 42, Session(ctx))
	assert.Nil(t, Scope(context.Background()))
}
