// Copyright (c) 2026 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// SessionLoginTotal counts login attempts by session kind and result.
	SessionLoginTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "apigate_session_login_total",
		Help: "Total number of login attempts, by session kind and result.",
	}, []string{"kind", "result"})

	// SessionValidationTotal counts session validations by kind and result.
	SessionValidationTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "apigate_session_validation_total",
		Help: "Total number of session validations, by session kind and result.",
	}, []string{"kind", "result"})

	// SessionLogoutTotal counts logouts.
	SessionLogoutTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "apigate_session_logout_total",
		Help: "Total number of logouts.",
	})

	// SessionsExpiredTotal counts sessions removed by the sweeper.
	SessionsExpiredTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "apigate_sessions_expired_total",
		Help: "Total number of expired sessions removed by the sweeper.",
	})
)

// RecordLogin records one login attempt.
func RecordLogin(kind string, ok bool) {
	SessionLoginTotal.WithLabelValues(kind, result(ok)).Inc()
}

// RecordValidation records one session validation.
func RecordValidation(kind string, ok bool) {
	SessionValidationTotal.WithLabelValues(kind, result(ok)).Inc()
}

// RecordLogout increments the logout counter.
func RecordLogout() {
	SessionLogoutTotal.Inc()
}

// RecordExpired adds n swept sessions.
func RecordExpired(n int) {
	if n > 0 {
		SessionsExpiredTotal.Add(float64(n))
	}
}

func result(ok bool) string {
	if ok {
		return "ok"
	}
	return "rejected"
}
