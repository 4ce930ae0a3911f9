// Copyright (c) 2026 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "apigate_http_requests_total",
		Help: "Total number of HTTP requests, by route pattern, method and status.",
	}, []string{"route", "method", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "apigate_http_request_duration_seconds",
		Help:    "HTTP request latency in seconds, by route pattern.",
		Buckets: prometheus.DefBuckets,
	}, []string{"route"})

	httpRateLimitedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "apigate_http_rate_limited_total",
		Help: "Total number of HTTP requests rejected by the rate limiter.",
	})
)

// RecordHTTPRequest records one finished HTTP request. route must be the chi
// route pattern, never the raw path.
func RecordHTTPRequest(route, method string, status int, d time.Duration) {
	if route == "" {
		route = "unmatched"
	}
	httpRequestsTotal.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	httpRequestDuration.WithLabelValues(route).Observe(d.Seconds())
}

// RecordRateLimited increments the rate-limit rejection counter.
func RecordRateLimited() {
	httpRateLimitedTotal.Inc()
}
