// Copyright (c) 2026 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// LockAcquireTotal counts lock attempts by scope and result (acquired/timeout/error).
	LockAcquireTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "apigate_lock_acquire_total",
		Help: "Total number of functional lock acquisition attempts, by scope and result.",
	}, []string{"backend", "scope", "result"})

	// LockWaitDuration observes time spent waiting for a lock.
	LockWaitDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "apigate_lock_wait_seconds",
		Help:    "Time spent waiting for functional locks, by backend.",
		Buckets: []float64{.0001, .0005, .001, .005, .01, .025, .05, .1, .25, .5, 1},
	}, []string{"backend"})

	// LocksHeld tracks currently held locks.
	LocksHeld = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "apigate_locks_held",
		Help: "Current number of held functional locks, by backend.",
	}, []string{"backend"})
)

// RecordLockAcquire records one acquisition attempt.
func RecordLockAcquire(backend, scope, result string, wait time.Duration) {
	LockAcquireTotal.WithLabelValues(backend, scope, result).Inc()
	LockWaitDuration.WithLabelValues(backend).Observe(wait.Seconds())
	if result == "acquired" {
		LocksHeld.WithLabelValues(backend).Inc()
	}
}

// RecordLockRelease decrements the held gauge.
func RecordLockRelease(backend string) {
	LocksHeld.WithLabelValues(backend).Dec()
}
