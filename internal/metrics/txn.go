// Copyright (c) 2026 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// TxTotal counts finished transactions by result (commit/rollback/begin_error).
	TxTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "apigate_tx_total",
		Help: "Total number of dispatcher transactions, by result.",
	}, []string{"result"})

	// TxDuration observes transaction lifetime.
	TxDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "apigate_tx_duration_seconds",
		Help:    "Lifetime of dispatcher transactions in seconds.",
		Buckets: prometheus.DefBuckets,
	})
)

// RecordTx records one finished transaction.
func RecordTx(result string, d time.Duration) {
	TxTotal.WithLabelValues(result).Inc()
	TxDuration.Observe(d.Seconds())
}
