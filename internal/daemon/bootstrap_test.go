// Copyright (c) 2026 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package daemon

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/bonitasoft/bonita-engine-sub001/internal/apierr"
	"github.com/bonitasoft/bonita-engine-sub001/internal/apis"
	"github.com/bonitasoft/bonita-engine-sub001/internal/config"
	"github.com/bonitasoft/bonita-engine-sub001/internal/dispatch"
	"github.com/bonitasoft/bonita-engine-sub001/internal/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(t *testing.T) config.AppConfig {
	t.Helper()
	cfg := config.Defaults()
	cfg.Version = "test"
	cfg.Listen = "127.0.0.1:0"
	cfg.DataDir = t.TempDir()
	cfg.ShutdownTimeout = 2 * time.Second
	cfg.Tenants = []config.TenantSettings{
		{Name: "default"},
		{Name: "acme", Admin: config.Credential{User: "acme-admin", Password: "s3cret"}},
	}
	return cfg
}

func bootstrap(t *testing.T, cfg config.AppConfig) *Runtime {
	t.Helper()
	rt, err := Bootstrap(context.Background(), cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = rt.Close(context.Background()) })
	return rt
}

func TestBootstrap_ProvisionsAndStarts(t *testing.T) {
	ctx := context.Background()
	rt := bootstrap(t, testConfig(t))

	assert.True(t, rt.Node.IsStarted())
	list, err := rt.Tenants.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 2)

	_, err = rt.Sessions.LoginTenant(ctx, "acme", "install", "install")
	assert.ErrorIs(t, err, session.ErrBadLogin, "acme has its own admin")
	ts, err := rt.Sessions.LoginTenant(ctx, "acme", "acme-admin", "s3cret")
	require.NoError(t, err)

	_, err = rt.Dispatcher.Invoke(ctx, dispatch.Options{Session: ts}, apis.TenantAdminAPIName, "Pause", nil, nil)
	require.NoError(t, err)
	paused, err := rt.Tenants.IsPaused(ctx, ts.TenantID)
	require.NoError(t, err)
	assert.True(t, paused)

	got, err := rt.Dispatcher.Invoke(ctx, dispatch.Options{Session: ts}, apis.TenantAdminAPIName, "InstallBusinessDataModel", []string{"string"}, []any{"1.2"})
	require.NoError(t, err)
	assert.Equal(t, "1.2", got)
}

func TestBootstrap_StateSurvivesRestart(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig(t)

	rt, err := Bootstrap(ctx, cfg)
	require.NoError(t, err)
	ps, err := rt.Sessions.LoginPlatform(ctx, "platformAdmin", "platform")
	require.NoError(t, err)
	require.NoError(t, rt.Close(ctx))

	rt = bootstrap(t, cfg)
	list, err := rt.Tenants.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 2, "provisioning is idempotent")

	_, err = rt.Dispatcher.Invoke(ctx, dispatch.Options{Session: ps}, apis.PlatformAPIName, "GetNodeState", nil, nil)
	assert.NoError(t, err, "sqlite sessions outlive the process")
}

func TestBootstrap_ManualNodeStart(t *testing.T) {
	cfg := testConfig(t)
	cfg.AutoStartNode = false
	rt := bootstrap(t, cfg)

	assert.False(t, rt.Node.IsStarted())
	ts, err := rt.Sessions.LoginTenant(context.Background(), "default", "install", "install")
	require.NoError(t, err)

	_, err = rt.Dispatcher.Invoke(context.Background(), dispatch.Options{Session: ts}, apis.ProfileAPIName, "ListProfiles", nil, nil)
	assert.ErrorIs(t, err, apierr.ErrNodeNotStarted)
}

func TestBootstrap_RedisBackends(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := testConfig(t)
	cfg.Session.Backend = config.BackendRedis
	cfg.Lock.Backend = config.BackendRedis
	cfg.Redis.Addr = mr.Addr()

	ctx := context.Background()
	rt := bootstrap(t, cfg)

	ts, err := rt.Sessions.LoginTenant(ctx, "default", "install", "install")
	require.NoError(t, err)
	_, err = rt.Dispatcher.Invoke(ctx, dispatch.Options{Session: ts}, apis.TenantAdminAPIName, "Pause", nil, nil)
	require.NoError(t, err)
	_, err = rt.Dispatcher.Invoke(ctx, dispatch.Options{Session: ts}, apis.TenantAdminAPIName, "InstallBusinessDataModel", []string{"string"}, []any{"3"})
	require.NoError(t, err)

	assert.NotEmpty(t, mr.Keys(), "sessions are stored in redis")
}

func TestBootstrap_BadgerSessions(t *testing.T) {
	cfg := testConfig(t)
	cfg.Session.Backend = config.BackendBadger
	rt := bootstrap(t, cfg)

	ps, err := rt.Sessions.LoginPlatform(context.Background(), "platformAdmin", "platform")
	require.NoError(t, err)
	_, err = rt.Sessions.ValidatePlatform(context.Background(), ps.ID)
	assert.NoError(t, err)
}

func TestBootstrap_UnreachableRedisFails(t *testing.T) {
	cfg := testConfig(t)
	cfg.Lock.Backend = config.BackendRedis
	cfg.Redis.Addr = "127.0.0.1:1"

	_, err := Bootstrap(context.Background(), cfg)
	assert.Error(t, err)
}

func TestRuntime_Apply(t *testing.T) {
	rt := bootstrap(t, testConfig(t))

	next := testConfig(t)
	next.LogLevel = "debug"
	next.Lock.Timeout = 3 * time.Second
	next.Session.TTL = 5 * time.Minute
	rt.Apply(next)

	assert.Equal(t, 3*time.Second, rt.Dispatcher.LockTimeout())
	assert.Equal(t, 5*time.Minute, rt.Sessions.TTL())
}
