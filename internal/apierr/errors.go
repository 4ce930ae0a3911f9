// Copyright (c) 2026 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

// Package apierr defines the failure taxonomy of the dispatch core and the
// single envelope type that crosses the API boundary.
package apierr

import (
	"errors"
	"fmt"
)

// Kind classifies a dispatch failure. Values are lowercase and stable because
// they are used as metric labels and on the wire.
type Kind string

const (
	KindInvalidSession  Kind = "invalid_session"
	KindNodeNotStarted  Kind = "node_not_started"
	KindTenantPaused    Kind = "tenant_paused"
	KindTenantStatus    Kind = "tenant_status"
	KindLockUnavailable Kind = "lock_unavailable"
	KindBusiness        Kind = "business"
	KindUnexpected      Kind = "unexpected"
)

// Sentinel errors, one per kind, for errors.Is checks.
var (
	ErrInvalidSession  = errors.New("invalid session")
	ErrNodeNotStarted  = errors.New("node not started")
	ErrTenantPaused    = errors.New("tenant paused")
	ErrTenantStatus    = errors.New("tenant in wrong state")
	ErrLockUnavailable = errors.New("lock unavailable")
	ErrBusiness        = errors.New("business failure")
	ErrUnexpected      = errors.New("unexpected failure")
)

var kindSentinels = map[Kind]error{
	KindInvalidSession:  ErrInvalidSession,
	KindNodeNotStarted:  ErrNodeNotStarted,
	KindTenantPaused:    ErrTenantPaused,
	KindTenantStatus:    ErrTenantStatus,
	KindLockUnavailable: ErrLockUnavailable,
	KindBusiness:        ErrBusiness,
	KindUnexpected:      ErrUnexpected,
}

// Sentinel returns the sentinel error of the kind, or nil for unknown kinds.
func (k Kind) Sentinel() error {
	return kindSentinels[k]
}

// Valid reports whether k is part of the taxonomy.
func (k Kind) Valid() bool {
	_, ok := kindSentinels[k]
	return ok
}

// Contextual is implemented by failures that carry caller context. The
// normalizer fills the acting user name without overwriting an existing value.
type Contextual interface {
	error
	UserName() string
	SetUserName(name string)
}

// Error is the single typed failure produced by dispatch components and by
// business APIs that want to expose a stable code.
type Error struct {
	Kind    Kind
	Code    string // optional machine readable code, e.g. "tenant.not_found"
	Message string
	Err     error

	userName string
	tenantID *int64
}

var _ Contextual = (*Error)(nil)

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return string(e.Kind)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches the sentinel of the error's kind.
func (e *Error) Is(target error) bool {
	if e == nil || target == nil {
		return false
	}
	s := e.Kind.Sentinel()
	return s != nil && target == s
}

// UserName returns the acting user attached by the normalizer.
func (e *Error) UserName() string { return e.userName }

// SetUserName attaches the acting user if none is set yet.
func (e *Error) SetUserName(name string) {
	if e.userName == "" {
		e.userName = name
	}
}

// TenantID returns the tenant the failure happened in, if known.
func (e *Error) TenantID() (int64, bool) {
	if e.tenantID == nil {
		return 0, false
	}
	return *e.tenantID, true
}

// SetTenantID attaches the tenant if none is set yet.
func (e *Error) SetTenantID(id int64) {
	if e.tenantID == nil {
		e.tenantID = &id
	}
}

func newError(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// InvalidSession reports a missing, expired or unknown session.
func InvalidSession(format string, args ...any) *Error {
	return newError(KindInvalidSession, format, args...)
}

// NodeNotStarted reports a call issued while the platform node is not started.
func NodeNotStarted(format string, args ...any) *Error {
	return newError(KindNodeNotStarted, format, args...)
}

// TenantPaused reports a call to a method unavailable while the tenant is paused.
func TenantPaused(format string, args ...any) *Error {
	return newError(KindTenantPaused, format, args...)
}

// TenantStatus reports a call to a method only available while the tenant is paused.
func TenantStatus(format string, args ...any) *Error {
	return newError(KindTenantStatus, format, args...)
}

// LockUnavailable reports functional lock contention after the acquisition timeout.
func LockUnavailable(format string, args ...any) *Error {
	return newError(KindLockUnavailable, format, args...)
}

// Business builds a declared business failure with a stable code.
func Business(code, format string, args ...any) *Error {
	e := newError(KindBusiness, format, args...)
	e.Code = code
	return e
}

// Unexpected wraps an unexpected failure.
func Unexpected(err error, format string, args ...any) *Error {
	e := newError(KindUnexpected, format, args...)
	e.Err = err
	return e
}

// KindOf returns the kind of the first *Error in err's chain, or
// KindUnexpected when there is none.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnexpected
}
