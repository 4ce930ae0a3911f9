// Copyright (c) 2026 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/bonitasoft/bonita-engine-sub001/internal/validate"
)

var (
	sessionBackends  = []string{BackendMemory, BackendSQLite, BackendRedis, BackendBadger}
	lockBackends     = []string{BackendMemory, BackendRedis}
	tracingExporters = []string{"grpc", "http"}
)

// Validate validates an AppConfig using the centralized validation package
func Validate(cfg AppConfig) error {
	v := validate.New()

	v.ListenAddr("Listen", cfg.Listen)
	v.Directory("DataDir", cfg.DataDir, false)
	v.OneOf("LogLevel", strings.ToLower(cfg.LogLevel), validate.LogLevels)
	v.MinDuration("ShutdownTimeout", cfg.ShutdownTimeout, time.Second)
	v.NonNegative("RateLimitRPS", cfg.RateLimitRPS)

	v.OneOf("Session.Backend", cfg.Session.Backend, sessionBackends)
	v.MinDuration("Session.TTL", cfg.Session.TTL, time.Second)
	v.MinDuration("Session.SweepInterval", cfg.Session.SweepInterval, time.Second)

	v.OneOf("Lock.Backend", cfg.Lock.Backend, lockBackends)
	v.MinDuration("Lock.Timeout", cfg.Lock.Timeout, time.Millisecond)
	if cfg.Lock.Backend == BackendRedis {
		v.MinDuration("Lock.LeaseTTL", cfg.Lock.LeaseTTL, time.Second)
	}

	if cfg.UsesRedis() {
		v.HostPort("Redis.Addr", cfg.Redis.Addr)
		v.Range("Redis.DB", cfg.Redis.DB, 0, 15)
	}

	if cfg.Tracing.Enabled {
		v.OneOf("Tracing.Exporter", cfg.Tracing.Exporter, tracingExporters)
		v.NotEmpty("Tracing.Endpoint", cfg.Tracing.Endpoint)
		v.FloatRange("Tracing.SamplingRate", cfg.Tracing.SamplingRate, 0, 1)
	}

	v.NotEmpty("Platform.User", cfg.Platform.User)
	v.NotEmpty("Platform.Password", cfg.Platform.Password)

	seen := make(map[string]struct{}, len(cfg.Tenants))
	for i, t := range cfg.Tenants {
		field := fmt.Sprintf("Tenants[%d].Name", i)
		name := strings.TrimSpace(t.Name)
		if name == "" {
			v.AddError(field, "tenant name cannot be empty", t.Name)
			continue
		}
		if _, dup := seen[name]; dup {
			v.AddError(field, "duplicate tenant name", t.Name)
		}
		seen[name] = struct{}{}
		if t.Admin.User == "" && cfg.TenantDefault.User == "" {
			v.AddError(fmt.Sprintf("Tenants[%d].Admin", i), "no admin credential and no tenant default", t.Name)
		}
	}
	return v.Err()
}
