// Copyright (c) 2026 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package apierr

import (
	"errors"
	"fmt"
	"net/http"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize_Nil(t *testing.T) {
	assert.Nil(t, Normalize(nil, CallContext{UserName: "walter"}))
}

func TestNormalize_KeepsClassifiedKind(t *testing.T) {
	tests := []struct {
		name string
		err  error
		kind Kind
		is   error
	}{
		{"invalid session", InvalidSession("Session is null"), KindInvalidSession, ErrInvalidSession},
		{"node", NodeNotStarted("node not started"), KindNodeNotStarted, ErrNodeNotStarted},
		{"paused", TenantPaused("paused"), KindTenantPaused, ErrTenantPaused},
		{"status", TenantStatus("running"), KindTenantStatus, ErrTenantStatus},
		{"lock", LockUnavailable("busy"), KindLockUnavailable, ErrLockUnavailable},
		{"business", Business("profile.not_found", "no profile %q", "admin"), KindBusiness, ErrBusiness},
		{"wrapped business", fmt.Errorf("outer: %w", Business("x", "inner")), KindBusiness, ErrBusiness},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := Normalize(tt.err, CallContext{})
			require.NotNil(t, w)
			assert.Equal(t, tt.kind, w.Kind())
			assert.ErrorIs(t, w, tt.is)
		})
	}
}

func TestNormalize_PlainErrorBecomesUnexpected(t *testing.T) {
	cause := errors.New("boom")
	w := Normalize(cause, CallContext{})
	require.NotNil(t, w)
	assert.Equal(t, KindUnexpected, w.Kind())
	assert.Equal(t, "boom", w.Cause().Message)
	assert.ErrorIs(t, w, cause)
	assert.ErrorIs(t, w, ErrUnexpected)
}

func TestNormalize_AttachesUserNameWithoutOverwriting(t *testing.T) {
	fresh := Business("c", "m")
	w := Normalize(fresh, CallContext{UserName: "walter"})
	assert.Equal(t, "walter", w.Cause().UserName())

	preset := Business("c", "m")
	preset.SetUserName("jesse")
	w = Normalize(preset, CallContext{UserName: "walter"})
	assert.Equal(t, "jesse", w.Cause().UserName())
}

func TestNormalize_AttachesTenant(t *testing.T) {
	id := int64(7)
	w := Normalize(TenantPaused("p"), CallContext{TenantID: &id})
	got, ok := w.Cause().TenantID()
	require.True(t, ok)
	assert.Equal(t, int64(7), got)
}

func TestNormalize_AlreadyWrapped(t *testing.T) {
	inner := Wrap(LockUnavailable("busy"))
	w := Normalize(fmt.Errorf("ctx: %w", inner), CallContext{UserName: "u"})
	assert.Equal(t, KindLockUnavailable, w.Kind())
	assert.Equal(t, "u", w.Cause().UserName())
	assert.Empty(t, inner.Cause().UserName())
}

var errSharedProfile = Business("profile.not_found", "no such profile")

func TestNormalize_SharedErrorIsNotModified(t *testing.T) {
	var wg sync.WaitGroup
	for _, user := range []string{"alice", "bob"} {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tid := int64(len(user))
			w := Normalize(errSharedProfile, CallContext{UserName: user, TenantID: &tid})
			assert.Equal(t, user, w.Cause().UserName())
		}()
	}
	wg.Wait()

	assert.Empty(t, errSharedProfile.UserName())
	_, ok := errSharedProfile.TenantID()
	assert.False(t, ok)

	w := Normalize(errSharedProfile, CallContext{UserName: "carol"})
	assert.Equal(t, "carol", w.Cause().UserName())
	assert.ErrorIs(t, w, ErrBusiness)
	assert.Equal(t, "profile.not_found", w.Cause().Code)
}

func TestAsBusiness(t *testing.T) {
	assert.NoError(t, AsBusiness(nil))

	plain := errors.New("duplicate name")
	got := AsBusiness(plain)
	assert.Equal(t, KindBusiness, KindOf(got))
	assert.ErrorIs(t, got, plain)
	assert.Equal(t, "duplicate name", got.Error())

	typed := TenantStatus("x")
	assert.Same(t, typed, AsBusiness(typed))
}

func TestPayloadRoundTrip(t *testing.T) {
	e := Business("bdm.invalid", "invalid model")
	e.SetUserName("install")
	e.SetTenantID(3)

	p := ToPayload(Wrap(e))
	tid := int64(3)
	want := Payload{Kind: KindBusiness, Code: "bdm.invalid", Message: "invalid model", UserName: "install", TenantID: &tid}
	if diff := cmp.Diff(want, p); diff != "" {
		t.Fatalf("payload mismatch (-want +got):\n%s", diff)
	}

	back := FromPayload(p)
	assert.Equal(t, KindBusiness, back.Kind())
	assert.Equal(t, "invalid model", back.Cause().Message)
	assert.Equal(t, "install", back.Cause().UserName())
	assert.ErrorIs(t, back, ErrBusiness)
}

func TestFromPayload_UnknownKind(t *testing.T) {
	w := FromPayload(Payload{Kind: "martian", Message: "?"})
	assert.Equal(t, KindUnexpected, w.Kind())
}

func TestHTTPStatus(t *testing.T) {
	assert.Equal(t, http.StatusUnauthorized, HTTPStatus(KindInvalidSession))
	assert.Equal(t, http.StatusServiceUnavailable, HTTPStatus(KindNodeNotStarted))
	assert.Equal(t, http.StatusServiceUnavailable, HTTPStatus(KindTenantPaused))
	assert.Equal(t, http.StatusConflict, HTTPStatus(KindTenantStatus))
	assert.Equal(t, http.StatusConflict, HTTPStatus(KindLockUnavailable))
	assert.Equal(t, http.StatusUnprocessableEntity, HTTPStatus(KindBusiness))
	assert.Equal(t, http.StatusInternalServerError, HTTPStatus(KindUnexpected))
}
