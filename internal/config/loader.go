// Copyright (c) 2026 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Env keys.
const (
	EnvListen             = "APIGATE_LISTEN"
	EnvLogLevel           = "APIGATE_LOG_LEVEL"
	EnvLogService         = "APIGATE_LOG_SERVICE"
	EnvDataDir            = "APIGATE_DATA_DIR"
	EnvShutdownTimeout    = "APIGATE_SHUTDOWN_TIMEOUT"
	EnvAutoStartNode      = "APIGATE_AUTO_START_NODE"
	EnvSessionBackend     = "APIGATE_SESSION_BACKEND"
	EnvSessionTTL         = "APIGATE_SESSION_TTL"
	EnvSessionSweep       = "APIGATE_SESSION_SWEEP_INTERVAL"
	EnvLockBackend        = "APIGATE_LOCK_BACKEND"
	EnvLockTimeout        = "APIGATE_LOCK_TIMEOUT"
	EnvLockLeaseTTL       = "APIGATE_LOCK_LEASE_TTL"
	EnvRedisAddr          = "APIGATE_REDIS_ADDR"
	EnvRedisPassword      = "APIGATE_REDIS_PASSWORD"
	EnvRedisDB            = "APIGATE_REDIS_DB"
	EnvTracingEnabled     = "APIGATE_TRACING_ENABLED"
	EnvTracingExporter    = "APIGATE_TRACING_EXPORTER"
	EnvTracingEndpoint    = "APIGATE_TRACING_ENDPOINT"
	EnvTracingSampling    = "APIGATE_TRACING_SAMPLING_RATE"
	EnvTracingEnvironment = "APIGATE_TRACING_ENVIRONMENT"
	EnvPlatformUser       = "APIGATE_PLATFORM_USER"
	EnvPlatformPassword   = "APIGATE_PLATFORM_PASSWORD"
	EnvRateLimitRPS       = "APIGATE_RATE_LIMIT_RPS"
)

// Loader handles configuration loading with precedence
type Loader struct {
	configPath      string
	version         string
	ConsumedEnvKeys map[string]struct{}
}

// NewLoader creates a new configuration loader
func NewLoader(configPath, version string) *Loader {
	return &Loader{
		configPath:      configPath,
		version:         version,
		ConsumedEnvKeys: make(map[string]struct{}),
	}
}

// Path returns the config file path, empty for ENV-only configuration.
func (l *Loader) Path() string { return l.configPath }

func (l *Loader) envString(key, defaultVal string) string {
	l.ConsumedEnvKeys[key] = struct{}{}
	return ParseString(key, defaultVal)
}

func (l *Loader) envBool(key string, defaultVal bool) bool {
	l.ConsumedEnvKeys[key] = struct{}{}
	return ParseBool(key, defaultVal)
}

func (l *Loader) envInt(key string, defaultVal int) int {
	l.ConsumedEnvKeys[key] = struct{}{}
	return ParseInt(key, defaultVal)
}

func (l *Loader) envDuration(key string, defaultVal time.Duration) time.Duration {
	l.ConsumedEnvKeys[key] = struct{}{}
	return ParseDuration(key, defaultVal)
}

func (l *Loader) envFloat(key string, defaultVal float64) float64 {
	l.ConsumedEnvKeys[key] = struct{}{}
	return ParseFloat(key, defaultVal)
}

// Load loads configuration with precedence: ENV > File > Defaults, then validates.
func (l *Loader) Load() (AppConfig, error) {
	cfg := Defaults()

	if l.configPath != "" {
		fileCfg, err := l.loadFile(l.configPath)
		if err != nil {
			return cfg, fmt.Errorf("load config file: %w", err)
		}
		if err := mergeFileConfig(&cfg, fileCfg); err != nil {
			return cfg, fmt.Errorf("merge file config: %w", err)
		}
	}

	l.mergeEnvConfig(&cfg)

	if abs, err := filepath.Abs(cfg.DataDir); err == nil {
		cfg.DataDir = abs
	}
	cfg.Version = l.version

	if err := Validate(cfg); err != nil {
		return cfg, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

// loadFile loads configuration from a YAML file with STRICT parsing.
// Unknown fields will cause a fatal error to prevent misconfiguration.
func (l *Loader) loadFile(path string) (*FileConfig, error) {
	path = filepath.Clean(path)

	ext := strings.ToLower(filepath.Ext(path))
	if ext != ".yaml" && ext != ".yml" {
		return nil, fmt.Errorf("unsupported config format: %s (only YAML supported)", ext)
	}

	// #nosec G304 -- configuration file paths are provided by the operator via CLI/ENV
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}
	return ParseFile(data)
}

// ParseFile decodes a single strict YAML document.
func ParseFile(data []byte) (*FileConfig, error) {
	var fileCfg FileConfig
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	if err := dec.Decode(&fileCfg); err != nil {
		if errors.Is(err, io.EOF) {
			return &FileConfig{}, nil
		}
		if strings.Contains(err.Error(), "field") && strings.Contains(err.Error(), "not found") {
			return nil, fmt.Errorf("%w: %w", ErrUnknownConfigField, err)
		}
		return nil, fmt.Errorf("strict config parse error: %w", err)
	}

	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("config file contains multiple documents or trailing content")
	}
	return &fileCfg, nil
}

// LoadFileConfig loads a YAML config file without applying defaults or env overrides.
func LoadFileConfig(path string) (*FileConfig, error) {
	return NewLoader(path, "").loadFile(path)
}
