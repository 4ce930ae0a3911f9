// Copyright (c) 2026 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package main

import (
	"bytes"
	"context"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/bonitasoft/bonita-engine-sub001/internal/config"
	"github.com/bonitasoft/bonita-engine-sub001/internal/daemon"
	"github.com/bonitasoft/bonita-engine-sub001/internal/version"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestVersion(t *testing.T) {
	out, err := run(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, version.Version)
}

func TestConfigInitValidateDump(t *testing.T) {
	t.Setenv(config.EnvDataDir, t.TempDir())
	path := filepath.Join(t.TempDir(), "config.yaml")

	out, err := run(t, "config", "init", "--out", path)
	require.NoError(t, err)
	assert.Contains(t, out, path)

	_, err = run(t, "config", "init", "--out", path)
	assert.ErrorContains(t, err, "already exists")

	out, err = run(t, "config", "validate", "--file", path)
	require.NoError(t, err)
	assert.Contains(t, out, "is valid")

	out, err = run(t, "config", "dump", "--file", path)
	require.NoError(t, err)
	assert.Contains(t, out, "platformAdmin")
	assert.NotContains(t, out, "password: platform")
	assert.Contains(t, out, redacted)

	out, err = run(t, "config", "dump", "--file", path, "--format", "json")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(strings.TrimSpace(out), "{"))

	_, err = run(t, "config", "dump", "--file", path, "--format", "toml")
	assert.Error(t, err)
}

func TestConfigValidate_ReportsErrors(t *testing.T) {
	t.Setenv(config.EnvDataDir, t.TempDir())
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("lock:\n  backend: zookeeper\n"), 0o600))

	_, err := run(t, "config", "validate", "--file", path)
	assert.ErrorContains(t, err, "configuration error")
}

func TestStorageVerify(t *testing.T) {
	cfg := config.Defaults()
	cfg.DataDir = t.TempDir()
	cfg.Session.Backend = config.BackendMemory
	rt, err := daemon.Bootstrap(context.Background(), cfg)
	require.NoError(t, err)
	require.NoError(t, rt.Close(context.Background()))

	out, err := run(t, "storage", "verify", "--path", filepath.Join(cfg.DataDir, daemon.DatabaseFile), "--mode", "full")
	require.NoError(t, err)
	assert.Contains(t, out, "ok (full)")

	_, err = run(t, "storage", "verify", "--path", filepath.Join(cfg.DataDir, "missing.db"))
	assert.Error(t, err)

	_, err = run(t, "storage", "verify", "--path", "x", "--mode", "deep")
	assert.ErrorContains(t, err, "invalid mode")
}

func TestNodeCommands(t *testing.T) {
	cfg := config.Defaults()
	cfg.DataDir = t.TempDir()
	cfg.AutoStartNode = false
	rt, err := daemon.Bootstrap(context.Background(), cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = rt.Close(context.Background()) })

	srv := httptest.NewServer(rt.Server.Handler())
	t.Cleanup(srv.Close)

	out, err := run(t, "node", "state", "--server", srv.URL)
	require.NoError(t, err)
	assert.Equal(t, "stopped", strings.TrimSpace(out))

	out, err = run(t, "node", "start", "--server", srv.URL)
	require.NoError(t, err)
	assert.Equal(t, "started", strings.TrimSpace(out))
	assert.True(t, rt.Node.IsStarted())

	_, err = run(t, "node", "state", "--server", srv.URL, "--password", "wrong")
	assert.ErrorContains(t, err, "login")
}
