// Copyright (c) 2026 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package config

import "time"

// Backend names shared by sessions and locks.
const (
	BackendMemory = "memory"
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
	BackendBadger = "badger"
)

// AppConfig is the effective, validated runtime configuration.
type AppConfig struct {
	Version string

	Listen          string
	DataDir         string
	LogLevel        string
	LogService      string
	ShutdownTimeout time.Duration
	RateLimitRPS    int
	AutoStartNode   bool

	Session       SessionSettings
	Lock          LockSettings
	Redis         RedisSettings
	Tracing       TracingSettings
	Platform      Credential
	TenantDefault Credential
	Tenants       []TenantSettings
}

// SessionSettings configures the login registries.
type SessionSettings struct {
	Backend       string
	TTL           time.Duration
	SweepInterval time.Duration
}

// LockSettings configures functional locks.
type LockSettings struct {
	Backend  string
	Timeout  time.Duration
	LeaseTTL time.Duration
}

// RedisSettings is shared by the redis session and lock backends.
type RedisSettings struct {
	Addr     string
	Password string
	DB       int
}

// TracingSettings configures OpenTelemetry export.
type TracingSettings struct {
	Enabled      bool
	Exporter     string
	Endpoint     string
	SamplingRate float64
	Environment  string
}

// Credential is a technical user.
type Credential struct {
	User     string
	Password string
}

// TenantSettings provisions a tenant at startup. An empty Admin falls back to
// the TenantDefault credential.
type TenantSettings struct {
	Name  string
	Admin Credential
}

// UsesRedis reports whether any backend needs the redis connection.
func (c AppConfig) UsesRedis() bool {
	return c.Session.Backend == BackendRedis || c.Lock.Backend == BackendRedis
}

// FileConfig is the YAML representation. Durations are strings in Go
// duration syntax; pointers distinguish "unset" from zero values.
type FileConfig struct {
	Listen          string `yaml:"listen,omitempty"`
	DataDir         string `yaml:"dataDir,omitempty"`
	LogLevel        string `yaml:"logLevel,omitempty"`
	LogService      string `yaml:"logService,omitempty"`
	ShutdownTimeout string `yaml:"shutdownTimeout,omitempty"`
	AutoStartNode   *bool  `yaml:"autoStartNode,omitempty"`

	RateLimit RateLimitConfig  `yaml:"rateLimit,omitempty"`
	Session   SessionConfig    `yaml:"session,omitempty"`
	Lock      LockConfig       `yaml:"lock,omitempty"`
	Redis     RedisConfig      `yaml:"redis,omitempty"`
	Tracing   TracingConfig    `yaml:"tracing,omitempty"`
	Platform  CredentialConfig `yaml:"platform,omitempty"`
	Tenants   TenantsConfig    `yaml:"tenants,omitempty"`
}

// RateLimitConfig is the YAML form of the HTTP rate limit.
type RateLimitConfig struct {
	RPS *int `yaml:"rps,omitempty"`
}

// SessionConfig is the YAML form of SessionSettings.
type SessionConfig struct {
	Backend       string `yaml:"backend,omitempty"`
	TTL           string `yaml:"ttl,omitempty"`
	SweepInterval string `yaml:"sweepInterval,omitempty"`
}

// LockConfig is the YAML form of LockSettings.
type LockConfig struct {
	Backend  string `yaml:"backend,omitempty"`
	Timeout  string `yaml:"timeout,omitempty"`
	LeaseTTL string `yaml:"leaseTTL,omitempty"`
}

// RedisConfig is the YAML form of RedisSettings.
type RedisConfig struct {
	Addr     string `yaml:"addr,omitempty"`
	Password string `yaml:"password,omitempty"`
	DB       *int   `yaml:"db,omitempty"`
}

// TracingConfig is the YAML form of TracingSettings.
type TracingConfig struct {
	Enabled      *bool    `yaml:"enabled,omitempty"`
	Exporter     string   `yaml:"exporter,omitempty"`
	Endpoint     string   `yaml:"endpoint,omitempty"`
	SamplingRate *float64 `yaml:"samplingRate,omitempty"`
	Environment  string   `yaml:"environment,omitempty"`
}

// CredentialConfig is the YAML form of Credential.
type CredentialConfig struct {
	User     string `yaml:"user,omitempty"`
	Password string `yaml:"password,omitempty"`
}

// TenantsConfig lists the tenants to provision.
type TenantsConfig struct {
	Default CredentialConfig `yaml:"default,omitempty"`
	Items   []TenantConfig   `yaml:"items,omitempty"`
}

// TenantConfig is the YAML form of TenantSettings.
type TenantConfig struct {
	Name  string           `yaml:"name"`
	Admin CredentialConfig `yaml:"admin,omitempty"`
}
