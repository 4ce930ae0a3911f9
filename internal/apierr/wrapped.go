// Copyright (c) 2026 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package apierr

import (
	"errors"
	"net/http"
)

// Wrapped is the transportable envelope returned for every failed dispatch.
// Callers unwrap it with Cause, errors.As or errors.Is.
type Wrapped struct {
	cause *Error
}

func (w *Wrapped) Error() string {
	if w == nil || w.cause == nil {
		return "server wrapped error"
	}
	return "server wrapped error: " + w.cause.Error()
}

// Unwrap exposes the original failure.
func (w *Wrapped) Unwrap() error {
	if w == nil || w.cause == nil {
		return nil
	}
	return w.cause
}

// Cause returns the original failure.
func (w *Wrapped) Cause() *Error {
	if w == nil {
		return nil
	}
	return w.cause
}

// Kind returns the kind of the wrapped failure.
func (w *Wrapped) Kind() Kind {
	if w == nil || w.cause == nil {
		return KindUnexpected
	}
	return w.cause.Kind
}

// Wrap builds an envelope around an already classified failure.
func Wrap(cause *Error) *Wrapped {
	return &Wrapped{cause: cause}
}

// AsWrapped returns the envelope in err's chain, if any.
func AsWrapped(err error) (*Wrapped, bool) {
	var w *Wrapped
	if errors.As(err, &w) {
		return w, true
	}
	return nil, false
}

// HTTPStatus maps a kind onto the status code used by the HTTP transport.
func HTTPStatus(k Kind) int {
	switch k {
	case KindInvalidSession:
		return http.StatusUnauthorized
	case KindNodeNotStarted, KindTenantPaused:
		return http.StatusServiceUnavailable
	case KindTenantStatus, KindLockUnavailable:
		return http.StatusConflict
	case KindBusiness:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
