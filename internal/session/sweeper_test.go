// Copyright (c) 2026 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package session

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestSweeperRunStopsOnCancel(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	svc, _, _ := newTestService(t)
	sw := &Sweeper{Service: svc, Interval: 5 * time.Millisecond}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- sw.Run(ctx) }()

	time.Sleep(20 * time.Millisecond)
	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("sweeper did not stop")
	}
}

func TestSweepOnce(t *testing.T) {
	ctx := context.Background()
	svc, clock, _ := newTestService(t)
	_, err := svc.LoginPlatform(ctx, "platformAdmin", "platform")
	require.NoError(t, err)

	sw := &Sweeper{Service: svc}
	assert.Equal(t, 0, sw.SweepOnce(ctx))
	clock.Advance(time.Hour)
	assert.Equal(t, 1, sw.SweepOnce(ctx))

	// Disabled interval returns immediately.
	require.NoError(t, sw.Run(ctx))
}
