// Copyright (c) 2026 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package telemetry

import (
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Common attribute keys for consistent tracing across the application.
const (
	// HTTP attributes
	HTTPMethodKey     = "http.method"
	HTTPStatusCodeKey = "http.status_code"
	HTTPRouteKey      = "http.route"

	// Dispatch attributes
	APIKey          = "apigate.api"
	MethodKey       = "apigate.method"
	TenantIDKey     = "apigate.tenant_id"
	SessionKindKey  = "apigate.session_kind"
	TxModeKey       = "apigate.tx_mode"
	LockScopeKey    = "apigate.lock_scope"
	DeprecatedKey   = "apigate.deprecated"
	ErrorKindKey    = "apigate.error_kind"
	LockWaitTimeKey = "apigate.lock_wait_ms"
)

// HTTPAttributes creates common HTTP span attributes.
func HTTPAttributes(method, route string, statusCode int) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String(HTTPMethodKey, method),
		attribute.String(HTTPRouteKey, route),
		attribute.Int(HTTPStatusCodeKey, statusCode),
	}
}

// DispatchAttributes creates the attributes of a dispatch span.
func DispatchAttributes(api, method string) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String(APIKey, api),
		attribute.String(MethodKey, method),
	}
}

// SessionAttributes describes the resolved session. tenantID < 0 is omitted.
func SessionAttributes(kind string, tenantID int64) []attribute.KeyValue {
	attrs := make([]attribute.KeyValue, 0, 2)
	if kind != "" {
		attrs = append(attrs, attribute.String(SessionKindKey, kind))
	}
	if tenantID >= 0 {
		attrs = append(attrs, attribute.Int64(TenantIDKey, tenantID))
	}
	return attrs
}

// RecordError marks span as failed with the error kind.
func RecordError(span trace.Span, err error, kind string) {
	if err == nil {
		return
	}
	span.RecordError(err)
	span.SetAttributes(attribute.String(ErrorKindKey, kind))
	span.SetStatus(codes.Error, kind)
}
