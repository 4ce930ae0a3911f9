// Copyright (c) 2026 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package log

// Canonical field name constants for structured logging.
const (
	// Identity fields
	FieldSessionID     = "session_id"
	FieldSessionKind   = "session_kind"
	FieldTenantID      = "tenant_id"
	FieldUserName      = "user_name"
	FieldCorrelationID = "correlation_id"
	FieldRequestID     = "request_id"

	// Dispatch fields
	FieldEvent     = "event"
	FieldComponent = "component"
	FieldAPI       = "api"
	FieldMethod    = "method"
	FieldMode      = "mode"
	FieldKind      = "kind"
	FieldLockScope = "lock_scope"

	// State fields
	FieldOldState = "old_state"
	FieldNewState = "new_state"

	// HTTP fields
	FieldPath       = "path"
	FieldStatus     = "status"
	FieldDurationMS = "duration_ms"
	FieldRemoteAddr = "remote_addr"
)
