// Copyright (c) 2026 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package config

import (
	"fmt"
	"time"
)

// Defaults returns the built-in configuration.
func Defaults() AppConfig {
	return AppConfig{
		Listen:          ":8080",
		DataDir:         "data",
		LogLevel:        "info",
		LogService:      "apigate",
		ShutdownTimeout: 10 * time.Second,
		RateLimitRPS:    100,
		AutoStartNode:   true,
		Session: SessionSettings{
			Backend:       BackendSQLite,
			TTL:           time.Hour,
			SweepInterval: time.Minute,
		},
		Lock: LockSettings{
			Backend:  BackendMemory,
			Timeout:  100 * time.Millisecond,
			LeaseTTL: 5 * time.Minute,
		},
		Redis: RedisSettings{Addr: "localhost:6379"},
		Tracing: TracingSettings{
			Exporter:     "grpc",
			Endpoint:     "localhost:4317",
			SamplingRate: 1.0,
			Environment:  "production",
		},
		Platform:      Credential{User: "platformAdmin", Password: "platform"},
		TenantDefault: Credential{User: "install", Password: "install"},
		Tenants:       []TenantSettings{{Name: "default"}},
	}
}

func parseDuration(field, s string, dst *time.Duration) error {
	if s == "" {
		return nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("%w: %s=%q", ErrInvalidDuration, field, s)
	}
	*dst = d
	return nil
}

func mergeCredential(dst *Credential, src CredentialConfig) {
	if src.User != "" {
		dst.User = expandEnv(src.User)
	}
	if src.Password != "" {
		dst.Password = expandEnv(src.Password)
	}
}

// mergeFileConfig merges file configuration into dst.
func mergeFileConfig(dst *AppConfig, src *FileConfig) error {
	if src.Listen != "" {
		dst.Listen = src.Listen
	}
	if src.DataDir != "" {
		dst.DataDir = expandEnv(src.DataDir)
	}
	if src.LogLevel != "" {
		dst.LogLevel = src.LogLevel
	}
	if src.LogService != "" {
		dst.LogService = src.LogService
	}
	if src.AutoStartNode != nil {
		dst.AutoStartNode = *src.AutoStartNode
	}
	if src.RateLimit.RPS != nil {
		dst.RateLimitRPS = *src.RateLimit.RPS
	}

	for _, d := range []struct {
		field string
		value string
		dst   *time.Duration
	}{
		{"shutdownTimeout", src.ShutdownTimeout, &dst.ShutdownTimeout},
		{"session.ttl", src.Session.TTL, &dst.Session.TTL},
		{"session.sweepInterval", src.Session.SweepInterval, &dst.Session.SweepInterval},
		{"lock.timeout", src.Lock.Timeout, &dst.Lock.Timeout},
		{"lock.leaseTTL", src.Lock.LeaseTTL, &dst.Lock.LeaseTTL},
	} {
		if err := parseDuration(d.field, d.value, d.dst); err != nil {
			return err
		}
	}

	if src.Session.Backend != "" {
		dst.Session.Backend = src.Session.Backend
	}
	if src.Lock.Backend != "" {
		dst.Lock.Backend = src.Lock.Backend
	}

	if src.Redis.Addr != "" {
		dst.Redis.Addr = src.Redis.Addr
	}
	if src.Redis.Password != "" {
		dst.Redis.Password = expandEnv(src.Redis.Password)
	}
	if src.Redis.DB != nil {
		dst.Redis.DB = *src.Redis.DB
	}

	if src.Tracing.Enabled != nil {
		dst.Tracing.Enabled = *src.Tracing.Enabled
	}
	if src.Tracing.Exporter != "" {
		dst.Tracing.Exporter = src.Tracing.Exporter
	}
	if src.Tracing.Endpoint != "" {
		dst.Tracing.Endpoint = src.Tracing.Endpoint
	}
	if src.Tracing.SamplingRate != nil {
		dst.Tracing.SamplingRate = *src.Tracing.SamplingRate
	}
	if src.Tracing.Environment != "" {
		dst.Tracing.Environment = src.Tracing.Environment
	}

	mergeCredential(&dst.Platform, src.Platform)
	mergeCredential(&dst.TenantDefault, src.Tenants.Default)
	if len(src.Tenants.Items) > 0 {
		dst.Tenants = make([]TenantSettings, 0, len(src.Tenants.Items))
		for _, t := range src.Tenants.Items {
			ts := TenantSettings{Name: t.Name}
			mergeCredential(&ts.Admin, t.Admin)
			dst.Tenants = append(dst.Tenants, ts)
		}
	}
	return nil
}

// mergeEnvConfig merges environment variables into cfg.
// ENV variables have the highest precedence.
func (l *Loader) mergeEnvConfig(cfg *AppConfig) {
	cfg.Listen = l.envString(EnvListen, cfg.Listen)
	cfg.DataDir = l.envString(EnvDataDir, cfg.DataDir)
	cfg.LogLevel = l.envString(EnvLogLevel, cfg.LogLevel)
	cfg.LogService = l.envString(EnvLogService, cfg.LogService)
	cfg.ShutdownTimeout = l.envDuration(EnvShutdownTimeout, cfg.ShutdownTimeout)
	cfg.AutoStartNode = l.envBool(EnvAutoStartNode, cfg.AutoStartNode)
	cfg.RateLimitRPS = l.envInt(EnvRateLimitRPS, cfg.RateLimitRPS)

	cfg.Session.Backend = l.envString(EnvSessionBackend, cfg.Session.Backend)
	cfg.Session.TTL = l.envDuration(EnvSessionTTL, cfg.Session.TTL)
	cfg.Session.SweepInterval = l.envDuration(EnvSessionSweep, cfg.Session.SweepInterval)

	cfg.Lock.Backend = l.envString(EnvLockBackend, cfg.Lock.Backend)
	cfg.Lock.Timeout = l.envDuration(EnvLockTimeout, cfg.Lock.Timeout)
	cfg.Lock.LeaseTTL = l.envDuration(EnvLockLeaseTTL, cfg.Lock.LeaseTTL)

	cfg.Redis.Addr = l.envString(EnvRedisAddr, cfg.Redis.Addr)
	cfg.Redis.Password = l.envString(EnvRedisPassword, cfg.Redis.Password)
	cfg.Redis.DB = l.envInt(EnvRedisDB, cfg.Redis.DB)

	cfg.Tracing.Enabled = l.envBool(EnvTracingEnabled, cfg.Tracing.Enabled)
	cfg.Tracing.Exporter = l.envString(EnvTracingExporter, cfg.Tracing.Exporter)
	cfg.Tracing.Endpoint = l.envString(EnvTracingEndpoint, cfg.Tracing.Endpoint)
	cfg.Tracing.SamplingRate = l.envFloat(EnvTracingSampling, cfg.Tracing.SamplingRate)
	cfg.Tracing.Environment = l.envString(EnvTracingEnvironment, cfg.Tracing.Environment)

	cfg.Platform.User = l.envString(EnvPlatformUser, cfg.Platform.User)
	cfg.Platform.Password = l.envString(EnvPlatformPassword, cfg.Platform.Password)
}

// ToFile maps cfg back to its YAML representation.
func ToFile(cfg AppConfig) FileConfig {
	autoStart := cfg.AutoStartNode
	rps := cfg.RateLimitRPS
	db := cfg.Redis.DB
	tracing := cfg.Tracing.Enabled
	rate := cfg.Tracing.SamplingRate

	fc := FileConfig{
		Listen:          cfg.Listen,
		DataDir:         cfg.DataDir,
		LogLevel:        cfg.LogLevel,
		LogService:      cfg.LogService,
		ShutdownTimeout: cfg.ShutdownTimeout.String(),
		AutoStartNode:   &autoStart,
		RateLimit:       RateLimitConfig{RPS: &rps},
		Session: SessionConfig{
			Backend:       cfg.Session.Backend,
			TTL:           cfg.Session.TTL.String(),
			SweepInterval: cfg.Session.SweepInterval.String(),
		},
		Lock: LockConfig{
			Backend:  cfg.Lock.Backend,
			Timeout:  cfg.Lock.Timeout.String(),
			LeaseTTL: cfg.Lock.LeaseTTL.String(),
		},
		Redis: RedisConfig{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: &db},
		Tracing: TracingConfig{
			Enabled:      &tracing,
			Exporter:     cfg.Tracing.Exporter,
			Endpoint:     cfg.Tracing.Endpoint,
			SamplingRate: &rate,
			Environment:  cfg.Tracing.Environment,
		},
		Platform: CredentialConfig{User: cfg.Platform.User, Password: cfg.Platform.Password},
		Tenants: TenantsConfig{
			Default: CredentialConfig{User: cfg.TenantDefault.User, Password: cfg.TenantDefault.Password},
		},
	}
	for _, t := range cfg.Tenants {
		fc.Tenants.Items = append(fc.Tenants.Items, TenantConfig{
			Name:  t.Name,
			Admin: CredentialConfig{User: t.Admin.User, Password: t.Admin.Password},
		})
	}
	return fc
}
