// Copyright (c) 2026 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package dispatch

import (
	"context"

	"github.com/bonitasoft/bonita-engine-sub001/internal/apierr"
	"github.com/bonitasoft/bonita-engine-sub001/internal/registry"
	"github.com/bonitasoft/bonita-engine-sub001/internal/txn"
)

const (
	modeDirect = "direct"
	modeTx     = "tx"
)

// managedTransaction reports whether the dispatcher opens the transaction.
// Methods with custom transactions and session-less APIs run directly.
func managedTransaction(f registry.Facts) bool {
	return !f.CustomTransactions && !f.NoSessionRequired
}

// livePaused queries the tenant status, joining the transaction bound to
// ctx or opening a short one when there is none.
func (d *Dispatcher) livePaused(ctx context.Context, tenantID int64) (bool, error) {
	if txn.Active(ctx) {
		return d.tenants.IsPaused(ctx, tenantID)
	}
	return txn.Do(ctx, d.txm, func(ctx context.Context) (bool, error) {
		return d.tenants.IsPaused(ctx, tenantID)
	})
}

// authorize runs the availability policy. Without live, decisions that need
// the tenant status are deferred with NeedsLiveState.
func (d *Dispatcher) authorize(ctx context.Context, c *call, live bool) (Decision, error) {
	var paused PausedFunc
	if live {
		paused = func() (bool, error) { return d.livePaused(ctx, c.tenantID) }
	}
	decision, err := Evaluate(c.target(), c.facts, d.node.IsStarted(), c.session, paused)
	if err != nil {
		d.recordDenial(ctx, c, err)
	}
	return decision, err
}

// execute runs the authorized call either directly or in a transaction.
func (d *Dispatcher) execute(ctx context.Context, c *call, decision Decision) (any, error) {
	if !managedTransaction(c.facts) {
		c.mode = modeDirect
		if decision == NeedsLiveState {
			if _, err := d.authorize(ctx, c, true); err != nil {
				return nil, err
			}
		}
		return d.invoke(ctx, c)
	}

	c.mode = modeTx
	return txn.Do(ctx, d.txm, func(ctx context.Context) (any, error) {
		if _, err := d.authorize(ctx, c, true); err != nil {
			return nil, err
		}
		return d.invoke(ctx, c)
	})
}

// invoke instantiates the API from the resolved scope and calls the method.
func (d *Dispatcher) invoke(ctx context.Context, c *call) (any, error) {
	s := c.scope
	if s == nil {
		s = d.scopes.Global()
	}
	instance, err := s.Instantiate(c.api)
	if err != nil {
		return nil, apierr.Unexpected(err, "instantiate %s in scope %s: %v", c.api, s.ID(), err)
	}
	return registry.Invoke(ctx, instance, c.method, c.paramTypes, c.args)
}
