// Copyright (c) 2026 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package apierr

import (
	"errors"
	"fmt"
)

// PanicError carries a value recovered from a panic in invoked code.
type PanicError struct {
	Value any
	Stack string
}

func (p *PanicError) Error() string {
	return fmt.Sprintf("panic: %v", p.Value)
}

// CallContext is the caller context attached to contextual failures.
type CallContext struct {
	UserName string
	TenantID *int64
}

// Normalize converts any failure into the envelope. Already classified
// failures keep their kind, code and message; anything else becomes an
// unexpected failure. A nil error yields nil. Caller context is attached to
// a copy, so errors shared between calls are never modified.
func Normalize(err error, cc CallContext) *Wrapped {
	if err == nil {
		return nil
	}
	if w, ok := AsWrapped(err); ok {
		if w.cause == nil {
			return w
		}
		return Wrap(withContext(w.cause, cc))
	}

	var e *Error
	if !errors.As(err, &e) {
		return Wrap(withContext(Unexpected(err, "%s", err.Error()), cc))
	}
	return Wrap(withContext(e, cc))
}

// AsBusiness classifies an error returned by an invoked method. Errors that
// are already typed keep their kind; plain errors become business failures
// with the original message and cause chain.
func AsBusiness(err error) error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return err
	}
	return &Error{Kind: KindBusiness, Message: err.Error(), Err: err}
}

// withContext returns a shallow copy of e carrying the caller context.
func withContext(e *Error, cc CallContext) *Error {
	cp := *e
	if cc.UserName != "" {
		cp.SetUserName(cc.UserName)
	}
	if cc.TenantID != nil {
		cp.SetTenantID(*cc.TenantID)
	}
	return &cp
}
