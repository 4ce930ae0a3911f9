// Copyright (c) 2026 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package audit

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/bonitasoft/bonita-engine-sub001/internal/log"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func capture(t *testing.T) (*Logger, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	return NewLoggerWith(zerolog.New(&buf)), &buf
}

func lastRecord(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	var rec map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[len(lines)-1]), &rec))
	return rec
}

func TestLogin(t *testing.T) {
	l, buf := capture(t)
	ctx := log.ContextWithRequestID(context.Background(), "req-9")

	l.Login(ctx, "install", "acme", false)
	rec := lastRecord(t, buf)
	assert.Equal(t, string(EventLoginFailure), rec[log.FieldEvent])
	assert.Equal(t, "tenant:acme", rec["resource"])
	assert.Equal(t, ResultFailure, rec["result"])
	assert.Equal(t, "req-9", rec[log.FieldRequestID])
	assert.Equal(t, "audit", rec["log_type"])

	l.Login(ctx, "platformAdmin", "", true)
	rec = lastRecord(t, buf)
	assert.Equal(t, "platform", rec["resource"])
	assert.Equal(t, ResultSuccess, rec["result"])
}

func TestTenantAndConfigEvents(t *testing.T) {
	l, buf := capture(t)

	l.Tenant(context.Background(), "install", EventBDMInstall, 3, map[string]string{"version": "1.0"}, nil)
	rec := lastRecord(t, buf)
	assert.Equal(t, "tenant:3", rec["resource"])
	assert.Equal(t, "1.0", rec["version"])
	assert.EqualValues(t, 3, rec[log.FieldTenantID])

	l.ConfigReload(context.Background(), "/etc/apigate.yaml", errors.New("bad yaml"))
	rec = lastRecord(t, buf)
	assert.Equal(t, string(EventConfigReloadError), rec[log.FieldEvent])
	assert.Equal(t, "bad yaml", rec["error"])
}

func TestNilLoggerIsSilent(t *testing.T) {
	var l *Logger
	assert.NotPanics(t, func() { l.Logout(context.Background(), "s") })
}
