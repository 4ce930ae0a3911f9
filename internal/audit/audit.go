// Copyright (c) 2026 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

// Package audit writes structured audit records for logins and
// administrative operations. Records answer who did what to which resource.
package audit

import (
	"context"
	"strconv"
	"time"

	"github.com/bonitasoft/bonita-engine-sub001/internal/log"
	"github.com/rs/zerolog"
)

// EventType represents the type of audit event.
type EventType string

const (
	EventLoginSuccess EventType = "login.success"
	EventLoginFailure EventType = "login.failure"
	EventLogout       EventType = "logout"

	EventNodeStart EventType = "node.start"
	EventNodeStop  EventType = "node.stop"

	EventTenantCreate EventType = "tenant.create"
	EventTenantPause  EventType = "tenant.pause"
	EventTenantResume EventType = "tenant.resume"
	EventBDMInstall   EventType = "bdm.install"

	EventConfigReload      EventType = "config.reload"
	EventConfigReloadError EventType = "config.reload.error"
)

// Results.
const (
	ResultSuccess = "success"
	ResultFailure = "failure"
)

// Event represents a structured audit event.
type Event struct {
	Timestamp time.Time
	Type      EventType
	Actor     string // user name or "system"
	Resource  string // tenant, node, config file
	Result    string
	TenantID  *int64
	Details   map[string]string
}

// Logger provides audit logging functionality.
type Logger struct {
	logger zerolog.Logger
}

// NewLogger creates an audit logger on the "audit" component.
func NewLogger() *Logger {
	return &Logger{
		logger: log.WithComponent("audit").With().Str("log_type", "audit").Logger(),
	}
}

// NewLoggerWith creates an audit logger writing to l.
func NewLoggerWith(l zerolog.Logger) *Logger {
	return &Logger{logger: l.With().Str("log_type", "audit").Logger()}
}

// Log writes an audit event. Request and correlation ids are taken from ctx.
func (l *Logger) Log(ctx context.Context, event Event) {
	if l == nil {
		return
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	e := l.logger.Info().
		Time("timestamp", event.Timestamp).
		Str(log.FieldEvent, string(event.Type)).
		Str("actor", event.Actor).
		Str("resource", event.Resource).
		Str("result", event.Result)
	if event.TenantID != nil {
		e.Int64(log.FieldTenantID, *event.TenantID)
	}
	if id := log.RequestIDFromContext(ctx); id != "" {
		e.Str(log.FieldRequestID, id)
	}
	if id := log.CorrelationIDFromContext(ctx); id != "" {
		e.Str(log.FieldCorrelationID, id)
	}
	for k, v := range event.Details {
		e.Str(k, v)
	}
	e.Msg("audit event")
}

// Login records a login attempt. tenant is empty for platform logins.
func (l *Logger) Login(ctx context.Context, user, tenant string, ok bool) {
	ev := Event{Type: EventLoginSuccess, Actor: user, Resource: resourceOf(tenant), Result: ResultSuccess}
	if !ok {
		ev.Type = EventLoginFailure
		ev.Result = ResultFailure
	}
	l.Log(ctx, ev)
}

// Logout records a logout.
func (l *Logger) Logout(ctx context.Context, sessionID string) {
	l.Log(ctx, Event{Type: EventLogout, Actor: "session", Resource: "session", Result: ResultSuccess,
		Details: map[string]string{"session_id": sessionID}})
}

// Node records a node lifecycle transition.
func (l *Logger) Node(ctx context.Context, actor string, t EventType, err error) {
	l.Log(ctx, withError(Event{Type: t, Actor: actor, Resource: "node"}, err))
}

// Tenant records an administrative operation on a tenant.
func (l *Logger) Tenant(ctx context.Context, actor string, t EventType, tenantID int64, details map[string]string, err error) {
	l.Log(ctx, withError(Event{Type: t, Actor: actor, Resource: "tenant:" + strconv.FormatInt(tenantID, 10), TenantID: &tenantID, Details: details}, err))
}

// ConfigReload records a configuration reload.
func (l *Logger) ConfigReload(ctx context.Context, path string, err error) {
	ev := withError(Event{Type: EventConfigReload, Actor: "system", Resource: path}, err)
	if err != nil {
		ev.Type = EventConfigReloadError
	}
	l.Log(ctx, ev)
}

func resourceOf(tenant string) string {
	if tenant == "" {
		return "platform"
	}
	return "tenant:" + tenant
}

func withError(ev Event, err error) Event {
	ev.Result = ResultSuccess
	if err != nil {
		ev.Result = ResultFailure
		if ev.Details == nil {
			ev.Details = map[string]string{}
		}
		ev.Details["error"] = err.Error()
	}
	return ev
}
