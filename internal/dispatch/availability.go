// Copyright (c) 2026 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package dispatch

import (
	"github.com/bonitasoft/bonita-engine-sub001/internal/apierr"
	"github.com/bonitasoft/bonita-engine-sub001/internal/registry"
	"github.com/bonitasoft/bonita-engine-sub001/internal/session"
)

// Decision is the outcome of an availability evaluation that did not deny.
type Decision int

const (
	// Allowed means the call may proceed.
	Allowed Decision = iota
	// NeedsLiveState means the decision depends on the live tenant status,
	// which was not queried because no query function was supplied.
	NeedsLiveState
)

// PausedFunc reports whether the session's tenant is paused.
type PausedFunc func() (bool, error)

// Evaluate decides whether target may be called now. tenantPaused is only
// called when the pause availability of the method is not unconditional; a
// nil tenantPaused defers that decision with NeedsLiveState.
func Evaluate(target string, facts registry.Facts, nodeStarted bool, sess session.Session, tenantPaused PausedFunc) (Decision, error) {
	if !nodeStarted && !facts.AvailableOnStoppedNode {
		return Allowed, apierr.NodeNotStarted("node not started: %s cannot be called until the node is started", target)
	}

	ts, ok := sess.(session.TenantSession)
	if !ok {
		return Allowed, nil
	}

	whenRunning, whenPaused := facts.PauseFlags()
	if whenRunning && whenPaused {
		return Allowed, nil
	}
	if tenantPaused == nil {
		return NeedsLiveState, nil
	}

	paused, err := tenantPaused()
	if err != nil {
		return Allowed, apierr.Unexpected(err, "read status of tenant %d: %v", ts.TenantID, err)
	}
	switch {
	case paused && !whenPaused:
		return Allowed, apierr.TenantPaused("tenant %d is paused: %s cannot be called while the tenant is paused", ts.TenantID, target)
	case !paused && !whenRunning:
		return Allowed, apierr.TenantStatus("tenant %d is running: %s can only be called while the tenant is paused", ts.TenantID, target)
	}
	return Allowed, nil
}
