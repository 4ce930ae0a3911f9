// Copyright (c) 2026 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package apierr

// Payload is the wire representation of an envelope.
type Payload struct {
	Kind     Kind   `json:"kind"`
	Code     string `json:"code,omitempty"`
	Message  string `json:"message"`
	UserName string `json:"userName,omitempty"`
	TenantID *int64 `json:"tenantId,omitempty"`
}

// ToPayload renders the envelope for transport.
func ToPayload(w *Wrapped) Payload {
	c := w.Cause()
	if c == nil {
		return Payload{Kind: KindUnexpected, Message: "unknown failure"}
	}
	p := Payload{
		Kind:     c.Kind,
		Code:     c.Code,
		Message:  c.Error(),
		UserName: c.UserName(),
	}
	if id, ok := c.TenantID(); ok {
		p.TenantID = &id
	}
	return p
}

// FromPayload rebuilds an envelope received from a remote server.
func FromPayload(p Payload) *Wrapped {
	kind := p.Kind
	if !kind.Valid() {
		kind = KindUnexpected
	}
	e := &Error{Kind: kind, Code: p.Code, Message: p.Message}
	e.SetUserName(p.UserName)
	if p.TenantID != nil {
		e.SetTenantID(*p.TenantID)
	}
	return Wrap(e)
}
