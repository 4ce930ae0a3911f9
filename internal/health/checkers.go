// Copyright (c) 2026 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package health

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// NodeState reports the platform node lifecycle.
type NodeState interface {
	IsStarted() bool
}

type nodeChecker struct{ node NodeState }

// NewNodeChecker reports unhealthy while the platform node is not started.
func NewNodeChecker(node NodeState) Checker { return nodeChecker{node: node} }

func (nodeChecker) Name() string { return "node" }

func (c nodeChecker) Check(context.Context) CheckResult {
	if c.node.IsStarted() {
		return CheckResult{Status: StatusHealthy, Message: "started"}
	}
	return CheckResult{Status: StatusUnhealthy, Message: "node not started"}
}

// PingFunc probes a dependency.
type PingFunc func(ctx context.Context) error

type pingChecker struct {
	name     string
	ping     PingFunc
	optional bool
}

// NewPingChecker reports unhealthy when ping fails.
func NewPingChecker(name string, ping PingFunc) Checker {
	return pingChecker{name: name, ping: ping}
}

// Informational wraps a ping so that failures only degrade the status.
func Informational(name string, ping PingFunc) Checker {
	return pingChecker{name: name, ping: ping, optional: true}
}

func (c pingChecker) Name() string { return c.name }

func (c pingChecker) Check(ctx context.Context) CheckResult {
	if err := c.ping(ctx); err != nil {
		status := StatusUnhealthy
		if c.optional {
			status = StatusDegraded
		}
		return CheckResult{Status: status, Error: err.Error()}
	}
	return CheckResult{Status: StatusHealthy}
}

// CheckWritableDir verifies that path is an existing, writable directory.
func CheckWritableDir(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("directory does not exist: %s", path)
		}
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("path is not a directory: %s", path)
	}

	f, err := os.CreateTemp(path, ".write_test-*")
	if err != nil {
		return fmt.Errorf("directory is not writable: %s: %w", path, err)
	}
	name := f.Name()
	_ = f.Close()
	_ = os.Remove(filepath.Clean(name))
	return nil
}
