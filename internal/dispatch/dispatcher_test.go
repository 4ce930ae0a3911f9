// Copyright (c) 2026 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package dispatch

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/bonitasoft/bonita-engine-sub001/internal/apierr"
	"github.com/bonitasoft/bonita-engine-sub001/internal/callctx"
	"github.com/bonitasoft/bonita-engine-sub001/internal/lock"
	"github.com/bonitasoft/bonita-engine-sub001/internal/metrics"
	"github.com/bonitasoft/bonita-engine-sub001/internal/platform"
	"github.com/bonitasoft/bonita-engine-sub001/internal/registry"
	"github.com/bonitasoft/bonita-engine-sub001/internal/scope"
	"github.com/bonitasoft/bonita-engine-sub001/internal/session"
	"github.com/bonitasoft/bonita-engine-sub001/internal/txn"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type tracker struct {
	tenants  platform.TenantStore
	invoked  atomic.Int32
	inside   atomic.Int32
	maxInner atomic.Int32
	entered  chan struct{}
	release  chan struct{}
}

type testAPI struct{ p *tracker }

func (a *testAPI) Echo(ctx context.Context, s string) (string, error) {
	a.p.invoked.Add(1)
	return s, nil
}

func (a *testAPI) BoundTenant(ctx context.Context) (int64, error) {
	id, ok := callctx.Tenant(ctx)
	if !ok {
		return 0, errors.New("no tenant bound")
	}
	return id, nil
}

func (a *testAPI) InTx(ctx context.Context) bool { return txn.Active(ctx) }

func (a *testAPI) GetProfile(name string) string {
	a.p.invoked.Add(1)
	return "profile:" + name
}

func (a *testAPI) Maintain() { a.p.invoked.Add(1) }

func (a *testAPI) Pause(ctx context.Context) error {
	a.p.invoked.Add(1)
	id, _ := callctx.Tenant(ctx)
	return a.p.tenants.SetStatus(ctx, id, platform.TenantPaused)
}

func (a *testAPI) Guarded(ctx context.Context) error {
	n := a.p.inside.Add(1)
	defer a.p.inside.Add(-1)
	for {
		m := a.p.maxInner.Load()
		if n <= m || a.p.maxInner.CompareAndSwap(m, n) {
			break
		}
	}
	if a.p.entered != nil {
		a.p.entered <- struct{}{}
		<-a.p.release
	}
	return nil
}

func (a *testAPI) Fail() error { return errors.New("profile admin not found") }

func (a *testAPI) Typed() error {
	return apierr.Business("profile.not_found", "profile %s not found", "admin")
}

var errSharedNotFound = apierr.Business("profile.not_found", "profile not found")

func (a *testAPI) Shared() error { return errSharedNotFound }

func (a *testAPI) Boom() { panic("boom") }

func (a *testAPI) Status() string { return "up" }

func (a *testAPI) Old() {}

type publicAPI struct{}

func (publicAPI) Ping(ctx context.Context) bool { return txn.Active(ctx) }

type countingLocks struct {
	lock.Service
	calls atomic.Int32
}

func (c *countingLocks) TryLock(ctx context.Context, key lock.Key, timeout time.Duration) (lock.Handle, error) {
	c.calls.Add(1)
	return c.Service.TryLock(ctx, key, timeout)
}

type countingTx struct {
	txn.Manager
	runs atomic.Int32
}

func (c *countingTx) Run(ctx context.Context, fn func(ctx context.Context) error) error {
	c.runs.Add(1)
	return c.Manager.Run(ctx, fn)
}

type countingTenants struct {
	*platform.MemoryTenantStore
	queries atomic.Int32
}

func (c *countingTenants) IsPaused(ctx context.Context, id int64) (bool, error) {
	c.queries.Add(1)
	return c.MemoryTenantStore.IsPaused(ctx, id)
}

type fixture struct {
	d        *Dispatcher
	node     *platform.Node
	tenants  *countingTenants
	locks    *countingLocks
	tx       *countingTx
	sessions *session.Service
	tracker  *tracker
	acme     platform.Tenant
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()

	tenants := &countingTenants{MemoryTenantStore: platform.NewMemoryTenantStore()}
	acme, err := tenants.Create(ctx, "acme")
	require.NoError(t, err)

	auth := &session.TechnicalAuthenticator{
		Platform:      session.Credential{User: "platformAdmin", Password: "platform"},
		TenantDefault: session.Credential{User: "install", Password: "install"},
	}
	sessions := session.NewService(session.NewMemoryStore(), auth, tenants)

	p := &tracker{tenants: tenants}
	reg := registry.New()
	registry.MustRegister(reg, registry.Definition[*testAPI]{
		Name: "TestAPI",
		Methods: map[string]registry.MethodMeta{
			"GetProfile": {AvailableWhenTenantPaused: &registry.PauseAvailability{}},
			"Maintain":   {AvailableWhenTenantPaused: &registry.PauseAvailability{OnlyWhenPaused: true}},
			"Pause":      {CustomTransactions: true, AvailableWhenTenantPaused: &registry.PauseAvailability{}},
			"Guarded":    {LockScope: "bdm", AvailableWhenTenantPaused: &registry.PauseAvailability{}},
			"Status":     {AvailableOnStoppedNode: true},
			"Old":        {Deprecated: true},
		},
		New: func() *testAPI { return &testAPI{p: p} },
	})
	registry.MustRegister(reg, registry.Definition[publicAPI]{
		Name: "PublicAPI",
		Type: registry.TypeMeta{NoSessionRequired: true},
		New:  func() publicAPI { return publicAPI{} },
	})

	scopes := scope.NewResolver()
	reg.Install(scopes.Global())

	node := platform.NewNode()
	require.NoError(t, node.Start(ctx))

	f := &fixture{
		node:     node,
		tenants:  tenants,
		locks:    &countingLocks{Service: lock.NewMemoryService()},
		tx:       &countingTx{Manager: txn.NopManager{}},
		sessions: sessions,
		tracker:  p,
		acme:     acme,
	}
	f.d = New(Deps{
		Registry: reg,
		Scopes:   scopes,
		Sessions: sessions,
		Node:     node,
		Tenants:  tenants,
		Locks:    f.locks,
		Tx:       f.tx,
	})
	return f
}

func (f *fixture) tenantSession(t *testing.T) session.TenantSession {
	t.Helper()
	s, err := f.sessions.LoginTenant(context.Background(), "acme", "install", "install")
	require.NoError(t, err)
	return s
}

func (f *fixture) platformSession(t *testing.T) session.PlatformSession {
	t.Helper()
	s, err := f.sessions.LoginPlatform(context.Background(), "platformAdmin", "platform")
	require.NoError(t, err)
	return s
}

func (f *fixture) pause(t *testing.T) {
	t.Helper()
	require.NoError(t, f.tenants.SetStatus(context.Background(), f.acme.ID, platform.TenantPaused))
}

func requireKind(t *testing.T, err error, kind apierr.Kind) *apierr.Wrapped {
	t.Helper()
	require.Error(t, err)
	w, ok := err.(*apierr.Wrapped)
	require.True(t, ok, "error %T is not *apierr.Wrapped", err)
	assert.Equal(t, kind, w.Kind(), w.Error())
	return w
}

func TestInvoke_NoSessionIsRejectedBeforeLockAndTx(t *testing.T) {
	f := newFixture(t)
	for _, method := range []string{"Echo", "Guarded", "Pause"} {
		t.Run(method, func(t *testing.T) {
			var types []string
			var args []any
			if method == "Echo" {
				types, args = []string{"string"}, []any{"x"}
			}
			_, err := f.d.Invoke(context.Background(), Options{}, "TestAPI", method, types, args)
			w := requireKind(t, err, apierr.KindInvalidSession)
			assert.Equal(t, "Session is null", w.Cause().Message)
		})
	}
	assert.Zero(t, f.locks.calls.Load())
	assert.Zero(t, f.tx.runs.Load())
	assert.Zero(t, f.tracker.invoked.Load())
}

func TestInvoke_NoSessionAllowedRunsDirect(t *testing.T) {
	f := newFixture(t)
	got, err := f.d.Invoke(context.Background(), Options{}, "PublicAPI", "Ping", nil, nil)
	require.NoError(t, err)
	assert.Equal(t, false, got)
	assert.Zero(t, f.tx.runs.Load())
}

func TestInvoke_UnknownSessionType(t *testing.T) {
	f := newFixture(t)
	_, err := f.d.Invoke(context.Background(), Options{Session: foreignSession{}}, "TestAPI", "Status", nil, nil)
	w := requireKind(t, err, apierr.KindInvalidSession)
	assert.Contains(t, w.Error(), "unknown session type")
}

type foreignSession struct{}

func (foreignSession) SessionID() string { return "x" }
func (foreignSession) User() string      { return "mallory" }

func TestInvoke_InvalidSessionCarriesUserName(t *testing.T) {
	f := newFixture(t)
	bogus := session.TenantSession{ID: "nope", TenantID: f.acme.ID, UserName: "walter"}
	_, err := f.d.Invoke(context.Background(), Options{Session: bogus}, "TestAPI", "Status", nil, nil)
	w := requireKind(t, err, apierr.KindInvalidSession)
	assert.Equal(t, "walter", w.Cause().UserName())
	id, ok := w.Cause().TenantID()
	assert.False(t, ok, "tenant is not bound before the session validates (got %d)", id)
}

func TestInvoke_FailureCarriesStoredUserName(t *testing.T) {
	f := newFixture(t)
	ts := f.tenantSession(t)
	ts.UserName = "mallory"

	_, err := f.d.Invoke(context.Background(), Options{Session: ts}, "TestAPI", "Fail", nil, nil)
	w := requireKind(t, err, apierr.KindBusiness)
	assert.Equal(t, "install", w.Cause().UserName())

	ps := f.platformSession(t)
	ps.UserName = "mallory"
	_, err = f.d.Invoke(context.Background(), Options{Session: ps}, "TestAPI", "Fail", nil, nil)
	w = requireKind(t, err, apierr.KindBusiness)
	assert.Equal(t, "platformAdmin", w.Cause().UserName())
}

func TestInvoke_SharedErrorStaysClean(t *testing.T) {
	f := newFixture(t)
	ts := f.tenantSession(t)
	ps := f.platformSession(t)

	var wg sync.WaitGroup
	for _, sess := range []session.Session{ts, ps} {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.d.Invoke(context.Background(), Options{Session: sess}, "TestAPI", "Shared", nil, nil)
			w, ok := apierr.AsWrapped(err)
			if assert.True(t, ok) {
				assert.Equal(t, sess.User(), w.Cause().UserName())
			}
		}()
	}
	wg.Wait()

	assert.Empty(t, errSharedNotFound.UserName())
	_, ok := errSharedNotFound.TenantID()
	assert.False(t, ok)
}

func TestInvoke_StoppedNode(t *testing.T) {
	f := newFixture(t)
	ts := f.tenantSession(t)
	ps := f.platformSession(t)
	require.NoError(t, f.node.Stop(context.Background()))

	for _, sess := range []session.Session{nil, ts, ps} {
		_, err := f.d.Invoke(context.Background(), Options{Session: sess}, "PublicAPI", "Ping", nil, nil)
		requireKind(t, err, apierr.KindNodeNotStarted)
	}
	for _, sess := range []session.Session{ts, ps} {
		_, err := f.d.Invoke(context.Background(), Options{Session: sess}, "TestAPI", "Echo", []string{"string"}, []any{"x"})
		requireKind(t, err, apierr.KindNodeNotStarted)

		got, err := f.d.Invoke(context.Background(), Options{Session: sess}, "TestAPI", "Status", nil, nil)
		require.NoError(t, err)
		assert.Equal(t, "up", got)
	}
	assert.Zero(t, f.tracker.invoked.Load())
}

func TestInvoke_PauseAvailability(t *testing.T) {
	tests := []struct {
		name   string
		method string
		paused bool
		want   apierr.Kind
	}{
		{name: "unannotated running", method: "Echo"},
		{name: "unannotated paused", method: "Echo", paused: true, want: apierr.KindTenantPaused},
		{name: "available running", method: "GetProfile"},
		{name: "available paused", method: "GetProfile", paused: true},
		{name: "only paused running", method: "Maintain", want: apierr.KindTenantStatus},
		{name: "only paused paused", method: "Maintain", paused: true},
	}
	args := map[string][]any{"Echo": {"x"}, "GetProfile": {"admin"}}
	types := map[string][]string{"Echo": {"string"}, "GetProfile": {"string"}}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			sess := f.tenantSession(t)
			if tt.paused {
				f.pause(t)
			}
			_, err := f.d.Invoke(context.Background(), Options{Session: sess}, "TestAPI", tt.method, types[tt.method], args[tt.method])
			if tt.want == "" {
				require.NoError(t, err)
				assert.EqualValues(t, 1, f.tracker.invoked.Load())
				return
			}
			requireKind(t, err, tt.want)
			assert.Zero(t, f.tracker.invoked.Load())
		})
	}
}

func TestInvoke_PlatformSessionIgnoresTenantStatus(t *testing.T) {
	f := newFixture(t)
	f.pause(t)
	got, err := f.d.Invoke(context.Background(), Options{Session: f.platformSession(t)}, "TestAPI", "BoundTenant", nil, nil)
	require.NoError(t, err)
	assert.Equal(t, callctx.NoTenant, got)
	assert.Zero(t, f.tenants.queries.Load())
}

func TestInvoke_GetProfileWhilePausedSkipsLiveQuery(t *testing.T) {
	f := newFixture(t)
	sess := f.tenantSession(t)
	f.pause(t)
	before := f.tenants.queries.Load()

	got, err := f.d.Invoke(context.Background(), Options{Session: &sess}, "TestAPI", "GetProfile", []string{"string"}, []any{"admin"})
	require.NoError(t, err)
	assert.Equal(t, "profile:admin", got)
	assert.Equal(t, before, f.tenants.queries.Load())
}

func TestInvoke_PauseTwice(t *testing.T) {
	f := newFixture(t)
	sess := f.tenantSession(t)
	for i := 0; i < 2; i++ {
		_, err := f.d.Invoke(context.Background(), Options{Session: sess}, "TestAPI", "Pause", nil, nil)
		require.NoError(t, err, "call %d", i)
	}
	paused, err := f.tenants.MemoryTenantStore.IsPaused(context.Background(), f.acme.ID)
	require.NoError(t, err)
	assert.True(t, paused)
	assert.EqualValues(t, 2, f.tracker.invoked.Load())
}

func TestInvoke_TransactionScoping(t *testing.T) {
	f := newFixture(t)
	sess := f.tenantSession(t)

	got, err := f.d.Invoke(context.Background(), Options{Session: sess}, "TestAPI", "InTx", nil, nil)
	require.NoError(t, err)
	assert.Equal(t, true, got)
	assert.EqualValues(t, 1, f.tx.runs.Load())

	// custom transactions run directly
	_, err = f.d.Invoke(context.Background(), Options{Session: sess}, "TestAPI", "Pause", nil, nil)
	require.NoError(t, err)
	assert.EqualValues(t, 1, f.tx.runs.Load())
}

func TestInvoke_TenantBindingIsRestored(t *testing.T) {
	f := newFixture(t)
	sess := f.tenantSession(t)
	ctx := callctx.WithTenant(context.Background(), 99)

	got, err := f.d.Invoke(ctx, Options{Session: sess}, "TestAPI", "BoundTenant", nil, nil)
	require.NoError(t, err)
	assert.Equal(t, f.acme.ID, got)

	_, err = f.d.Invoke(ctx, Options{Session: sess}, "TestAPI", "Boom", nil, nil)
	requireKind(t, err, apierr.KindUnexpected)

	id, ok := callctx.Tenant(ctx)
	require.True(t, ok)
	assert.EqualValues(t, 99, id)
	assert.Nil(t, callctx.Scope(ctx))
}

func TestInvoke_SessionRenewalTwice(t *testing.T) {
	f := newFixture(t)
	sess := f.tenantSession(t)
	for i := 0; i < 2; i++ {
		_, err := f.d.Invoke(context.Background(), Options{Session: sess}, "TestAPI", "Echo", []string{"string"}, []any{"x"})
		require.NoError(t, err, "call %d", i)
	}
}

func TestInvoke_BusinessFailurePassthrough(t *testing.T) {
	f := newFixture(t)
	sess := f.tenantSession(t)

	_, err := f.d.Invoke(context.Background(), Options{Session: sess}, "TestAPI", "Fail", nil, nil)
	w := requireKind(t, err, apierr.KindBusiness)
	assert.Equal(t, "profile admin not found", w.Cause().Message)
	assert.Equal(t, "install", w.Cause().UserName())
	id, ok := w.Cause().TenantID()
	require.True(t, ok)
	assert.Equal(t, f.acme.ID, id)

	_, err = f.d.Invoke(context.Background(), Options{Session: sess}, "TestAPI", "Typed", nil, nil)
	w = requireKind(t, err, apierr.KindBusiness)
	assert.Equal(t, "profile.not_found", w.Cause().Code)
	assert.ErrorIs(t, err, apierr.ErrBusiness)
}

func TestInvoke_PanicIsUnexpected(t *testing.T) {
	f := newFixture(t)
	_, err := f.d.Invoke(context.Background(), Options{Session: f.tenantSession(t)}, "TestAPI", "Boom", nil, nil)
	requireKind(t, err, apierr.KindUnexpected)
	var pe *apierr.PanicError
	assert.True(t, errors.As(err, &pe))
}

func TestInvoke_UnknownAPIAndMethod(t *testing.T) {
	f := newFixture(t)
	sess := f.tenantSession(t)

	_, err := f.d.Invoke(context.Background(), Options{Session: sess}, "NoSuchAPI", "Echo", nil, nil)
	requireKind(t, err, apierr.KindUnexpected)

	_, err = f.d.Invoke(context.Background(), Options{}, "NoSuchAPI", "Echo", nil, nil)
	requireKind(t, err, apierr.KindInvalidSession)

	_, err = f.d.Invoke(context.Background(), Options{Session: sess}, "TestAPI", "Echo", []string{"long"}, []any{1})
	requireKind(t, err, apierr.KindUnexpected)
}

func TestInvoke_DeprecatedStillRuns(t *testing.T) {
	f := newFixture(t)
	counter := metrics.DeprecatedCallsTotal.WithLabelValues("TestAPI", "Old")
	before := testutil.ToFloat64(counter)

	_, err := f.d.Invoke(context.Background(), Options{Session: f.tenantSession(t)}, "TestAPI", "Old", nil, nil)
	require.NoError(t, err)
	assert.Equal(t, before+1, testutil.ToFloat64(counter))
}

func TestInvoke_TenantScopeOverride(t *testing.T) {
	f := newFixture(t)
	sess := f.tenantSession(t)
	overridden := &tracker{tenants: f.tenants}
	f.d.Scopes().Tenant(f.acme.ID).Override("TestAPI", func() any { return &testAPI{p: overridden} })

	_, err := f.d.Invoke(context.Background(), Options{Session: sess}, "TestAPI", "Echo", []string{"string"}, []any{"x"})
	require.NoError(t, err)
	assert.EqualValues(t, 1, overridden.invoked.Load())
	assert.Zero(t, f.tracker.invoked.Load())
}

func TestInvoke_LockUnavailable(t *testing.T) {
	f := newFixture(t)
	f.d.SetLockTimeout(20 * time.Millisecond)
	f.tracker.entered = make(chan struct{})
	f.tracker.release = make(chan struct{})
	sess := f.tenantSession(t)

	done := make(chan error, 1)
	go func() {
		_, err := f.d.Invoke(context.Background(), Options{Session: sess}, "TestAPI", "Guarded", nil, nil)
		done <- err
	}()
	<-f.tracker.entered

	_, err := f.d.Invoke(context.Background(), Options{Session: sess}, "TestAPI", "Guarded", nil, nil)
	w := requireKind(t, err, apierr.KindLockUnavailable)
	assert.Contains(t, w.Error(), "TestAPI.Guarded")
	assert.Contains(t, w.Error(), "bdm")

	close(f.tracker.release)
	require.NoError(t, <-done)

	// released: the next call acquires
	f.tracker.entered = nil
	_, err = f.d.Invoke(context.Background(), Options{Session: sess}, "TestAPI", "Guarded", nil, nil)
	require.NoError(t, err)
}

func TestInvoke_LockMutualExclusion(t *testing.T) {
	f := newFixture(t)
	f.d.SetLockTimeout(2 * time.Second)
	sess := f.tenantSession(t)

	var wg sync.WaitGroup
	errs := make(chan error, 16)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.d.Invoke(context.Background(), Options{Session: sess}, "TestAPI", "Guarded", nil, nil)
			if err != nil {
				errs <- err
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		requireKind(t, err, apierr.KindLockUnavailable)
	}
	assert.EqualValues(t, 1, f.tracker.maxInner.Load())
}

func TestInvoke_LockIsPerTenant(t *testing.T) {
	f := newFixture(t)
	f.d.SetLockTimeout(20 * time.Millisecond)
	f.tracker.entered = make(chan struct{}, 2)
	f.tracker.release = make(chan struct{})

	_, err := f.tenants.Create(context.Background(), "globex")
	require.NoError(t, err)
	acme := f.tenantSession(t)
	globex, err := f.sessions.LoginTenant(context.Background(), "globex", "install", "install")
	require.NoError(t, err)

	done := make(chan error, 2)
	for _, s := range []session.Session{acme, globex} {
		go func(s session.Session) {
			_, err := f.d.Invoke(context.Background(), Options{Session: s}, "TestAPI", "Guarded", nil, nil)
			done <- err
		}(s)
	}
	<-f.tracker.entered
	<-f.tracker.entered
	close(f.tracker.release)
	require.NoError(t, <-done)
	require.NoError(t, <-done)
	assert.EqualValues(t, 2, f.tracker.maxInner.Load())
}
