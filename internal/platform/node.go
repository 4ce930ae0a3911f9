// Copyright (c) 2026 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

// Package platform holds the node lifecycle and the tenant registry read by
// the dispatcher.
package platform

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/bonitasoft/bonita-engine-sub001/internal/log"
)

// NodeState is the lifecycle state of the platform node.
type NodeState int32

const (
	NodeStopped NodeState = iota
	NodeStarting
	NodeStarted
)

func (s NodeState) String() string {
	switch s {
	case NodeStopped:
		return "stopped"
	case NodeStarting:
		return "starting"
	case NodeStarted:
		return "started"
	default:
		return "unknown"
	}
}

// ErrTransitionInProgress is returned when Start or Stop races another transition.
var ErrTransitionInProgress = errors.New("node state transition in progress")

// Hook runs during node start or stop.
type Hook func(ctx context.Context) error

// Node tracks whether the platform node is started. Start and Stop are
// idempotent; a failing start hook leaves the node stopped.
type Node struct {
	state atomic.Int32

	mu         sync.Mutex
	startHooks []Hook
	stopHooks  []Hook
}

// NewNode returns a stopped node.
func NewNode() *Node {
	return &Node{}
}

// OnStart registers a hook run in registration order on every start.
func (n *Node) OnStart(h Hook) {
	n.mu.Lock()
	n.startHooks = append(n.startHooks, h)
	n.mu.Unlock()
}

// OnStop registers a hook run in reverse registration order on every stop.
func (n *Node) OnStop(h Hook) {
	n.mu.Lock()
	n.stopHooks = append(n.stopHooks, h)
	n.mu.Unlock()
}

// State returns the current state.
func (n *Node) State() NodeState {
	return NodeState(n.state.Load())
}

// IsStarted reports whether the node is started.
func (n *Node) IsStarted() bool {
	return n.State() == NodeStarted
}

// Start moves the node from stopped to started.
func (n *Node) Start(ctx context.Context) error {
	if n.IsStarted() {
		return nil
	}
	if !n.state.CompareAndSwap(int32(NodeStopped), int32(NodeStarting)) {
		return ErrTransitionInProgress
	}

	n.mu.Lock()
	hooks := append([]Hook(nil), n.startHooks...)
	n.mu.Unlock()

	for _, h := range hooks {
		if err := h(ctx); err != nil {
			n.state.Store(int32(NodeStopped))
			return fmt.Errorf("platform: start hook: %w", err)
		}
	}
	n.state.Store(int32(NodeStarted))
	logger := log.WithComponentFromContext(ctx, "platform")
	logger.Info().
		Str(log.FieldEvent, "node.started").
		Str(log.FieldOldState, NodeStopped.String()).
		Str(log.FieldNewState, NodeStarted.String()).
		Msg("node started")
	return nil
}

// Stop moves the node from started to stopped. Stop hooks run while the node
// is still reported as starting so no new calls are admitted.
func (n *Node) Stop(ctx context.Context) error {
	if n.State() == NodeStopped {
		return nil
	}
	if !n.state.CompareAndSwap(int32(NodeStarted), int32(NodeStarting)) {
		return ErrTransitionInProgress
	}

	n.mu.Lock()
	hooks := append([]Hook(nil), n.stopHooks...)
	n.mu.Unlock()

	var errs []error
	for i := len(hooks) - 1; i >= 0; i-- {
		if err := hooks[i](ctx); err != nil {
			errs = append(errs, err)
		}
	}
	n.state.Store(int32(NodeStopped))
	logger := log.WithComponentFromContext(ctx, "platform")
	logger.Info().
		Str(log.FieldEvent, "node.stopped").
		Str(log.FieldOldState, NodeStarted.String()).
		Str(log.FieldNewState, NodeStopped.String()).
		Msg("node stopped")
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("platform: stop hook: %w", err)
	}
	return nil
}
