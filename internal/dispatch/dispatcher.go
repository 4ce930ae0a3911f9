// Copyright (c) 2026 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

// Package dispatch is the server-side call dispatcher. For every call it
// resolves the session and execution scope, takes the method's functional
// lock, checks lifecycle availability, scopes the transaction, invokes the
// API implementation and normalizes every failure into *apierr.Wrapped.
package dispatch

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/bonitasoft/bonita-engine-sub001/internal/apierr"
	"github.com/bonitasoft/bonita-engine-sub001/internal/lock"
	"github.com/bonitasoft/bonita-engine-sub001/internal/log"
	"github.com/bonitasoft/bonita-engine-sub001/internal/metrics"
	"github.com/bonitasoft/bonita-engine-sub001/internal/registry"
	"github.com/bonitasoft/bonita-engine-sub001/internal/scope"
	"github.com/bonitasoft/bonita-engine-sub001/internal/session"
	"github.com/bonitasoft/bonita-engine-sub001/internal/telemetry"
	"github.com/bonitasoft/bonita-engine-sub001/internal/txn"
	"go.opentelemetry.io/otel/trace"
)

// Options is the caller-supplied options bag of a call.
type Options struct {
	Session session.Session
}

// NodeState reports the platform node lifecycle.
type NodeState interface {
	IsStarted() bool
}

// TenantState reports the live tenant status.
type TenantState interface {
	IsPaused(ctx context.Context, tenantID int64) (bool, error)
}

// Deps are the collaborators of a Dispatcher. Registry, Sessions, Node and
// Tenants are required.
type Deps struct {
	Registry    *registry.Registry
	Scopes      *scope.Resolver
	Sessions    SessionValidator
	Node        NodeState
	Tenants     TenantState
	Locks       lock.Service
	Tx          txn.Manager
	LockTimeout time.Duration
}

// Dispatcher is safe for concurrent use; it keeps no per-call state.
type Dispatcher struct {
	registry    *registry.Registry
	scopes      *scope.Resolver
	sessions    SessionValidator
	node        NodeState
	tenants     TenantState
	locks       lock.Service
	txm         txn.Manager
	lockTimeout atomic.Int64
}

// New creates a Dispatcher. Missing optional collaborators default to an
// empty scope resolver, in-process locks and a NopManager.
func New(d Deps) *Dispatcher {
	if d.Registry == nil || d.Sessions == nil || d.Node == nil || d.Tenants == nil {
		panic("dispatch: Registry, Sessions, Node and Tenants are required")
	}
	if d.Scopes == nil {
		d.Scopes = scope.NewResolver()
	}
	if d.Locks == nil {
		d.Locks = lock.NewMemoryService()
	}
	if d.Tx == nil {
		d.Tx = txn.NopManager{}
	}
	disp := &Dispatcher{
		registry: d.Registry,
		scopes:   d.Scopes,
		sessions: d.Sessions,
		node:     d.Node,
		tenants:  d.Tenants,
		locks:    d.Locks,
		txm:      d.Tx,
	}
	if d.LockTimeout <= 0 {
		d.LockTimeout = DefaultLockTimeout
	}
	disp.SetLockTimeout(d.LockTimeout)
	return disp
}

// SetLockTimeout changes the functional lock timeout for subsequent calls.
func (d *Dispatcher) SetLockTimeout(t time.Duration) {
	if t > 0 {
		d.lockTimeout.Store(int64(t))
	}
}

// LockTimeout returns the current functional lock timeout.
func (d *Dispatcher) LockTimeout() time.Duration {
	return time.Duration(d.lockTimeout.Load())
}

// Scopes returns the scope resolver used to instantiate APIs.
func (d *Dispatcher) Scopes() *scope.Resolver { return d.scopes }

type call struct {
	api        string
	method     string
	paramTypes []string
	args       []any
	opts       Options

	facts     registry.Facts
	session   session.Session
	userName  string
	tenantID  int64
	hasTenant bool
	scope     *scope.Scope
	mode      string
}

func (c *call) target() string { return c.api + "." + c.method }

func (c *call) callContext() apierr.CallContext {
	cc := apierr.CallContext{UserName: c.userName}
	if c.hasTenant {
		id := c.tenantID
		cc.TenantID = &id
	}
	return cc
}

// Invoke dispatches one call. The returned error is always *apierr.Wrapped.
func (d *Dispatcher) Invoke(ctx context.Context, opts Options, api, method string, paramTypes []string, args []any) (any, error) {
	start := time.Now()
	metrics.DispatchInFlight.Inc()
	defer metrics.DispatchInFlight.Dec()

	ctx, span := telemetry.Tracer(telemetry.TracerName).Start(ctx, "dispatch "+api+"."+method,
		trace.WithAttributes(telemetry.DispatchAttributes(api, method)...))
	defer span.End()

	c := &call{api: api, method: method, paramTypes: paramTypes, args: args, opts: opts, mode: modeDirect}
	result, err := d.dispatch(ctx, c)
	if c.session != nil {
		kind := string(session.KindPlatform)
		if c.hasTenant {
			kind = string(session.KindTenant)
		}
		span.SetAttributes(telemetry.SessionAttributes(kind, c.tenantID)...)
	}

	if err != nil {
		w := apierr.Normalize(err, c.callContext())
		kind := string(w.Kind())
		telemetry.RecordError(span, w, kind)
		metrics.RecordDispatch(api, method, kind, c.mode, time.Since(start))
		d.logFailure(ctx, c, w)
		return nil, w
	}
	metrics.RecordDispatch(api, method, metrics.OutcomeOK, c.mode, time.Since(start))
	return result, nil
}

func (d *Dispatcher) dispatch(ctx context.Context, c *call) (any, error) {
	// Unknown APIs resolve with zero facts, so a session is still required
	// and session failures win over the lookup failure.
	a, ok := d.registry.Lookup(c.api)
	if ok {
		c.facts = a.Facts(c.method)
	}

	// Idle -> SessionResolved
	ctx, err := d.resolveSession(ctx, c)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apierr.Unexpected(nil, "unknown API %s", c.api)
	}
	if c.facts.Deprecated {
		d.warnDeprecated(ctx, c)
	}

	// SessionResolved -> Locked
	release, err := d.withLock(ctx, c)
	if err != nil {
		return nil, err
	}
	defer release()

	// Locked -> Authorized, deferring live tenant checks into the transaction.
	decision, err := d.authorize(ctx, c, false)
	if err != nil {
		return nil, err
	}

	// Authorized -> InTransaction | Direct -> Invoked
	return d.execute(ctx, c, decision)
}

func (d *Dispatcher) warnDeprecated(ctx context.Context, c *call) {
	metrics.RecordDeprecatedCall(c.api, c.method)
	logger := log.WithComponentFromContext(ctx, "dispatch")
	logger.Warn().
		Str(log.FieldEvent, "dispatch.deprecated").
		Str(log.FieldAPI, c.api).
		Str(log.FieldMethod, c.method).
		Str(log.FieldUserName, c.userName).
		Msg("deprecated API method called")
}

func (d *Dispatcher) recordDenial(ctx context.Context, c *call, err error) {
	kind := apierr.KindOf(err)
	if kind == apierr.KindUnexpected {
		return
	}
	metrics.RecordAvailabilityDenied(string(kind))
}

func (d *Dispatcher) logFailure(ctx context.Context, c *call, w *apierr.Wrapped) {
	logger := log.WithComponentFromContext(ctx, "dispatch")
	var ev = logger.Debug()
	switch w.Kind() {
	case apierr.KindUnexpected:
		ev = logger.Error()
		var pe *apierr.PanicError
		if errors.As(w, &pe) {
			ev = ev.Str("stack", pe.Stack)
		}
	case apierr.KindLockUnavailable:
		ev = logger.Warn()
	case apierr.KindNodeNotStarted, apierr.KindTenantPaused, apierr.KindTenantStatus, apierr.KindInvalidSession:
		ev = logger.Info()
	}
	ev = ev.Str(log.FieldEvent, "dispatch.failed").
		Str(log.FieldAPI, c.api).
		Str(log.FieldMethod, c.method).
		Str(log.FieldKind, string(w.Kind())).
		Str(log.FieldMode, c.mode)
	if c.hasTenant {
		ev = ev.Int64(log.FieldTenantID, c.tenantID)
	}
	if c.userName != "" {
		ev = ev.Str(log.FieldUserName, c.userName)
	}
	ev.Err(w.Cause()).Msg("call failed")
}
