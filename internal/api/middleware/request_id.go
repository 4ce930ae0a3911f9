// Copyright (c) 2026 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package middleware

import (
	"net/http"

	"github.com/bonitasoft/bonita-engine-sub001/internal/log"
	"github.com/google/uuid"
)

// Correlation headers.
const (
	HeaderRequestID     = "X-Request-ID"
	HeaderCorrelationID = "X-Correlation-ID"
)

// RequestID adds a unique ID to every request and carries an optional
// caller-supplied correlation id into the request context.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID := r.Header.Get(HeaderRequestID)
		if reqID == "" || len(reqID) > 128 {
			reqID = uuid.New().String()
		}
		w.Header().Set(HeaderRequestID, reqID)
		ctx := log.ContextWithRequestID(r.Context(), reqID)
		if corr := r.Header.Get(HeaderCorrelationID); corr != "" && len(corr) <= 128 {
			ctx = log.ContextWithCorrelationID(ctx, corr)
		}
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
