// Copyright (c) 2026 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package client

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/bonitasoft/bonita-engine-sub001/internal/api"
	"github.com/bonitasoft/bonita-engine-sub001/internal/apierr"
	"github.com/bonitasoft/bonita-engine-sub001/internal/apis"
	"github.com/bonitasoft/bonita-engine-sub001/internal/dispatch"
	"github.com/bonitasoft/bonita-engine-sub001/internal/platform"
	"github.com/bonitasoft/bonita-engine-sub001/internal/registry"
	"github.com/bonitasoft/bonita-engine-sub001/internal/scope"
	"github.com/bonitasoft/bonita-engine-sub001/internal/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRemote(t *testing.T) *Client {
	t.Helper()
	ctx := context.Background()

	tenants := platform.NewMemoryTenantStore()
	_, err := platform.Provision(ctx, tenants, []string{"acme"})
	require.NoError(t, err)

	auth := &session.TechnicalAuthenticator{
		Platform:      session.Credential{User: "platformAdmin", Password: "platform"},
		TenantDefault: session.Credential{User: "install", Password: "install"},
	}
	sessions := session.NewService(session.NewMemoryStore(), auth, tenants)
	node := platform.NewNode()

	reg := registry.New()
	require.NoError(t, apis.Register(reg, apis.Deps{Sessions: sessions, Node: node, Tenants: tenants}))
	scopes := scope.NewResolver()
	reg.Install(scopes.Global())

	d := dispatch.New(dispatch.Deps{Registry: reg, Scopes: scopes, Sessions: sessions, Node: node, Tenants: tenants})
	srv := httptest.NewServer(api.New(api.Config{}, d, nil).Handler())
	t.Cleanup(srv.Close)

	c, err := New(srv.URL, WithHTTPClient(srv.Client()))
	require.NoError(t, err)
	return c
}

func kindOf(t *testing.T, err error) apierr.Kind {
	t.Helper()
	require.Error(t, err)
	var w *apierr.Wrapped
	require.True(t, errors.As(err, &w), "got %T", err)
	return w.Kind()
}

func TestRemoteTenantLifecycle(t *testing.T) {
	ctx := context.Background()
	c := newRemote(t)

	_, err := c.LoginTenant(ctx, "acme", "install", "install")
	assert.Equal(t, apierr.KindNodeNotStarted, kindOf(t, err))

	ps, err := c.LoginPlatform(ctx, "platformAdmin", "platform")
	require.NoError(t, err)
	assert.Equal(t, "platformAdmin", ps.UserName)
	require.NoError(t, c.Invoke(ctx, ps, apis.PlatformAPIName, "StartNode", nil, nil, nil))

	var state string
	require.NoError(t, c.Invoke(ctx, ps, apis.PlatformAPIName, "GetNodeState", nil, nil, &state))
	assert.Equal(t, "started", state)

	ts, err := c.LoginTenant(ctx, "acme", "install", "install")
	require.NoError(t, err)
	assert.NotZero(t, ts.TenantID)

	require.NoError(t, c.Invoke(ctx, ts, apis.TenantAdminAPIName, "Pause", nil, nil, nil))

	var profile apis.Profile
	require.NoError(t, c.Invoke(ctx, ts, apis.ProfileAPIName, "GetProfile", []string{"string"}, []any{"User"}, &profile))
	assert.Equal(t, "User", profile.Name)

	var version string
	require.NoError(t, c.Invoke(ctx, ts, apis.TenantAdminAPIName, "InstallBusinessDataModel", []string{"string"}, []any{"1.0"}, &version))
	assert.Equal(t, "1.0", version)

	require.NoError(t, c.Invoke(ctx, ts, apis.TenantAdminAPIName, "Resume", nil, nil, nil))

	err = c.Invoke(ctx, ts, apis.TenantAdminAPIName, "InstallBusinessDataModel", []string{"string"}, []any{"2.0"}, &version)
	assert.Equal(t, apierr.KindTenantStatus, kindOf(t, err))
}

func TestRemoteFailuresCarryContext(t *testing.T) {
	ctx := context.Background()
	c := newRemote(t)

	_, err := c.LoginPlatform(ctx, "platformAdmin", "wrong")
	require.Equal(t, apierr.KindBusiness, kindOf(t, err))
	var w *apierr.Wrapped
	require.True(t, errors.As(err, &w))
	assert.Equal(t, "login.failed", w.Cause().Code)
	assert.ErrorIs(t, err, apierr.ErrBusiness)

	stale := session.TenantSession{ID: "gone", TenantID: 1, UserName: "walter"}
	err = c.Invoke(ctx, stale, apis.ProfileAPIName, "ListProfiles", nil, nil, nil)
	require.Equal(t, apierr.KindInvalidSession, kindOf(t, err))
	require.True(t, errors.As(err, &w))
	assert.Equal(t, "walter", w.Cause().UserName())
}

func TestRemoteLogout(t *testing.T) {
	ctx := context.Background()
	c := newRemote(t)

	ps, err := c.LoginPlatform(ctx, "platformAdmin", "platform")
	require.NoError(t, err)
	require.NoError(t, c.Logout(ctx, ps))

	err = c.Invoke(ctx, ps, apis.PlatformAPIName, "GetNodeState", nil, nil, nil)
	assert.Equal(t, apierr.KindInvalidSession, kindOf(t, err))
}

type strangeSession struct{}

func (strangeSession) SessionID() string { return "?" }
func (strangeSession) User() string      { return "?" }

func TestInvoke_RejectsUnknownSessionLocally(t *testing.T) {
	c, err := New("http://127.0.0.1:1")
	require.NoError(t, err)
	err = c.Invoke(context.Background(), strangeSession{}, "A", "M", nil, nil, nil)
	assert.Equal(t, apierr.KindInvalidSession, kindOf(t, err))
}

func TestInvoke_NonJSONAnswer(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "bad gateway", http.StatusBadGateway)
	}))
	defer srv.Close()

	c, err := New(srv.URL)
	require.NoError(t, err)
	err = c.Invoke(context.Background(), nil, "A", "M", nil, nil, nil)
	assert.Equal(t, apierr.KindUnexpected, kindOf(t, err))
}

func TestNew_RejectsBadURL(t *testing.T) {
	_, err := New("ftp://example.com")
	assert.Error(t, err)
	_, err = New("://")
	assert.Error(t, err)
}
