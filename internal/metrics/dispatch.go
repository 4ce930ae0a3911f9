// Copyright (c) 2026 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

// Package metrics provides Prometheus metrics for the apigate dispatch core.
// Labels never carry session ids, request ids or user names.
package metrics

import (
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// DispatchTotal counts dispatched calls by api, method and outcome kind.
	DispatchTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "apigate_dispatch_total",
		Help: "Total number of dispatched API calls, by api, method and outcome.",
	}, []string{"api", "method", "outcome"})

	// DispatchDuration observes end-to-end dispatch latency.
	DispatchDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "apigate_dispatch_duration_seconds",
		Help:    "Dispatch latency in seconds, by api and transaction mode.",
		Buckets: prometheus.ExponentialBuckets(0.0005, 2, 14),
	}, []string{"api", "mode"})

	// DispatchInFlight tracks calls currently inside the dispatcher.
	DispatchInFlight = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "apigate_dispatch_in_flight",
		Help: "Current number of calls inside the dispatcher.",
	})

	// DeprecatedCallsTotal counts calls to deprecated methods.
	DeprecatedCallsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "apigate_deprecated_calls_total",
		Help: "Total number of calls to deprecated API methods.",
	}, []string{"api", "method"})

	// AvailabilityDeniedTotal counts calls rejected by the availability policy.
	AvailabilityDeniedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "apigate_availability_denied_total",
		Help: "Total number of calls denied by lifecycle availability, by reason.",
	}, []string{"reason"})
)

// OutcomeOK is the outcome label of successful calls.
const OutcomeOK = "ok"

// RecordDispatch records one dispatched call.
func RecordDispatch(api, method, outcome, mode string, d time.Duration) {
	DispatchTotal.WithLabelValues(api, method, normalizeOutcome(outcome)).Inc()
	DispatchDuration.WithLabelValues(api, mode).Observe(d.Seconds())
}

// RecordDeprecatedCall increments the deprecated call counter.
func RecordDeprecatedCall(api, method string) {
	DeprecatedCallsTotal.WithLabelValues(api, method).Inc()
}

// RecordAvailabilityDenied increments the denial counter.
func RecordAvailabilityDenied(reason string) {
	AvailabilityDeniedTotal.WithLabelValues(normalizeOutcome(reason)).Inc()
}

func normalizeOutcome(o string) string {
	switch o = strings.ToLower(strings.TrimSpace(o)); o {
	case OutcomeOK, "invalid_session", "node_not_started", "tenant_paused", "tenant_status",
		"lock_unavailable", "business", "unexpected":
		return o
	default:
		return "unknown"
	}
}
