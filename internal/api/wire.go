// Copyright (c) 2026 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package api

import (
	"encoding/json"
	"time"

	"github.com/bonitasoft/bonita-engine-sub001/internal/apierr"
	"github.com/bonitasoft/bonita-engine-sub001/internal/session"
)

// InvokePath is the route of the invoke endpoint.
const InvokePath = "/api/v1/invoke/{api}/{method}"

// SessionRef is the wire form of a session presented with a call.
type SessionRef struct {
	Kind      session.Kind  `json:"kind"`
	ID        string        `json:"id"`
	TenantID  int64         `json:"tenantId,omitempty"`
	UserID    int64         `json:"userId,omitempty"`
	UserName  string        `json:"userName,omitempty"`
	CreatedAt time.Time     `json:"createdAt,omitzero"`
	Duration  time.Duration `json:"duration,omitempty"`
}

// RefOf renders s for transport. It returns nil for sessions it does not know.
func RefOf(s session.Session) *SessionRef {
	switch v := s.(type) {
	case session.PlatformSession:
		return &SessionRef{Kind: session.KindPlatform, ID: v.ID, UserID: v.UserID, UserName: v.UserName, CreatedAt: v.CreatedAt, Duration: v.Duration}
	case session.TenantSession:
		return &SessionRef{Kind: session.KindTenant, ID: v.ID, TenantID: v.TenantID, UserID: v.UserID, UserName: v.UserName, CreatedAt: v.CreatedAt, Duration: v.Duration}
	default:
		return nil
	}
}

// Session converts the reference back into a session variant.
func (r *SessionRef) Session() (session.Session, error) {
	switch r.Kind {
	case session.KindPlatform:
		return session.PlatformSession{ID: r.ID, UserID: r.UserID, UserName: r.UserName, CreatedAt: r.CreatedAt, Duration: r.Duration}, nil
	case session.KindTenant:
		return session.TenantSession{ID: r.ID, TenantID: r.TenantID, UserID: r.UserID, UserName: r.UserName, CreatedAt: r.CreatedAt, Duration: r.Duration}, nil
	default:
		return nil, apierr.InvalidSession("unknown session kind %q", r.Kind)
	}
}

// InvokeRequest is the body of an invoke call.
type InvokeRequest struct {
	Session        *SessionRef       `json:"session,omitempty"`
	ParameterTypes []string          `json:"parameterTypes"`
	Args           []json.RawMessage `json:"args"`
}

// InvokeResponse is the body of an invoke answer. Exactly one field is set.
type InvokeResponse struct {
	Result json.RawMessage `json:"result,omitempty"`
	Error  *apierr.Payload `json:"error,omitempty"`
}
