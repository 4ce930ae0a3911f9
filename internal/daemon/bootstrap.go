// Copyright (c) 2026 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

// Package daemon wires the configured stores, the dispatcher and the HTTP
// server together and owns their lifecycle.
package daemon

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/bonitasoft/bonita-engine-sub001/internal/api"
	"github.com/bonitasoft/bonita-engine-sub001/internal/apis"
	"github.com/bonitasoft/bonita-engine-sub001/internal/audit"
	"github.com/bonitasoft/bonita-engine-sub001/internal/config"
	"github.com/bonitasoft/bonita-engine-sub001/internal/dispatch"
	"github.com/bonitasoft/bonita-engine-sub001/internal/health"
	"github.com/bonitasoft/bonita-engine-sub001/internal/lock"
	"github.com/bonitasoft/bonita-engine-sub001/internal/log"
	"github.com/bonitasoft/bonita-engine-sub001/internal/persistence/sqlite"
	"github.com/bonitasoft/bonita-engine-sub001/internal/platform"
	"github.com/bonitasoft/bonita-engine-sub001/internal/ratelimit"
	"github.com/bonitasoft/bonita-engine-sub001/internal/registry"
	"github.com/bonitasoft/bonita-engine-sub001/internal/scope"
	"github.com/bonitasoft/bonita-engine-sub001/internal/session"
	"github.com/bonitasoft/bonita-engine-sub001/internal/telemetry"
	"github.com/bonitasoft/bonita-engine-sub001/internal/txn"
)

// DatabaseFile is the name of the sqlite database inside the data directory.
const DatabaseFile = "apigate.db"

// Runtime holds the wired services of one daemon instance.
type Runtime struct {
	DB         *sql.DB
	Node       *platform.Node
	Tenants    platform.TenantStore
	Sessions   *session.Service
	Scopes     *scope.Resolver
	Dispatcher *dispatch.Dispatcher
	Server     *api.Server
	Audit      *audit.Logger

	closers []namedHook
}

func (rt *Runtime) onClose(name string, hook ShutdownHook) {
	rt.closers = append(rt.closers, namedHook{name: name, hook: hook})
}

// Close releases every resource in reverse acquisition order.
func (rt *Runtime) Close(ctx context.Context) error {
	var first error
	for i := len(rt.closers) - 1; i >= 0; i-- {
		if err := rt.closers[i].hook(ctx); err != nil && first == nil {
			first = fmt.Errorf("%s: %w", rt.closers[i].name, err)
		}
	}
	rt.closers = nil
	return first
}

// Bootstrap builds the runtime described by cfg. On failure every resource
// acquired so far is released.
func Bootstrap(ctx context.Context, cfg config.AppConfig) (rt *Runtime, err error) {
	logger := log.WithComponentFromContext(ctx, "daemon")
	rt = &Runtime{}
	defer func() {
		if err != nil {
			_ = rt.Close(context.WithoutCancel(ctx))
			rt = nil
		}
	}()

	provider, err := telemetry.NewProvider(ctx, telemetry.Config{
		Enabled:        cfg.Tracing.Enabled,
		ServiceName:    cfg.LogService,
		ServiceVersion: cfg.Version,
		Environment:    cfg.Tracing.Environment,
		ExporterType:   cfg.Tracing.Exporter,
		Endpoint:       cfg.Tracing.Endpoint,
		SamplingRate:   cfg.Tracing.SamplingRate,
	})
	if err != nil {
		return nil, fmt.Errorf("telemetry: %w", err)
	}
	rt.onClose("telemetry", provider.Shutdown)

	if err := os.MkdirAll(cfg.DataDir, 0o750); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	if err := health.CheckWritableDir(cfg.DataDir); err != nil {
		return nil, fmt.Errorf("data directory check failed: %w", err)
	}
	hm := health.NewManager(cfg.Version)
	db, err := sqlite.Open(filepath.Join(cfg.DataDir, DatabaseFile), sqlite.DefaultConfig())
	if err != nil {
		return nil, err
	}
	rt.DB = db
	rt.onClose("sqlite", func(context.Context) error { return db.Close() })
	hm.RegisterChecker(health.NewPingChecker("sqlite", db.PingContext))

	tenants, err := platform.NewSQLTenantStore(ctx, db)
	if err != nil {
		return nil, fmt.Errorf("tenant store: %w", err)
	}
	rt.Tenants = tenants

	names := make([]string, 0, len(cfg.Tenants))
	for _, t := range cfg.Tenants {
		names = append(names, t.Name)
	}
	provisioned, err := platform.Provision(ctx, tenants, names)
	if err != nil {
		return nil, fmt.Errorf("provision tenants: %w", err)
	}

	store, err := session.OpenStore(ctx, session.StoreConfig{
		Backend:   cfg.Session.Backend,
		DB:        db,
		BadgerDir: filepath.Join(cfg.DataDir, "sessions"),
		Redis:     redisConfig(cfg),
	})
	if err != nil {
		return nil, fmt.Errorf("session store: %w", err)
	}
	rt.onClose("session-store", func(context.Context) error { return store.Close() })

	rt.Sessions = session.NewService(store, authenticator(cfg), tenants, session.WithTTL(cfg.Session.TTL))

	locks, err := lockService(ctx, rt, hm, cfg)
	if err != nil {
		return nil, err
	}

	bdm, err := apis.NewSQLBDMStore(ctx, db)
	if err != nil {
		return nil, fmt.Errorf("bdm store: %w", err)
	}

	rt.Node = platform.NewNode()
	rt.Scopes = scope.NewResolver()

	rt.Audit = audit.NewLogger()
	reg := registry.New()
	err = apis.Register(reg, apis.Deps{
		Sessions: rt.Sessions,
		Node:     rt.Node,
		Tenants:  tenants,
		BDM:      bdm,
		Audit:    rt.Audit,
		Throttle: ratelimit.New(ratelimit.DefaultConfig()),
	})
	if err != nil {
		return nil, fmt.Errorf("register apis: %w", err)
	}
	reg.Install(rt.Scopes.Global())

	// Tenant scopes are rebuilt from the global scope after a restart.
	rt.Node.OnStop(func(ctx context.Context) error {
		list, err := tenants.List(ctx)
		if err != nil {
			return err
		}
		for _, t := range list {
			rt.Scopes.Drop(t.ID)
		}
		return nil
	})

	rt.Dispatcher = dispatch.New(dispatch.Deps{
		Registry:    reg,
		Scopes:      rt.Scopes,
		Sessions:    rt.Sessions,
		Node:        rt.Node,
		Tenants:     tenants,
		Locks:       locks,
		Tx:          txn.NewSQLManager(db, nil),
		LockTimeout: cfg.Lock.Timeout,
	})

	hm.RegisterChecker(health.NewNodeChecker(rt.Node))
	rt.Server = api.New(api.Config{
		Service:      cfg.LogService,
		RateLimitRPS: cfg.RateLimitRPS,
	}, rt.Dispatcher, hm)

	if cfg.AutoStartNode {
		if err := rt.Node.Start(ctx); err != nil {
			return nil, fmt.Errorf("start node: %w", err)
		}
	}
	rt.onClose("node", rt.Node.Stop)

	logger.Info().
		Str("data_dir", cfg.DataDir).
		Str("session_backend", cfg.Session.Backend).
		Str("lock_backend", cfg.Lock.Backend).
		Int("tenants", len(provisioned)).
		Bool("node_started", rt.Node.IsStarted()).
		Msg("runtime ready")
	return rt, nil
}

func redisConfig(cfg config.AppConfig) session.RedisConfig {
	return session.RedisConfig{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB}
}

func authenticator(cfg config.AppConfig) *session.TechnicalAuthenticator {
	auth := &session.TechnicalAuthenticator{
		Platform:      session.Credential{User: cfg.Platform.User, Password: cfg.Platform.Password},
		TenantDefault: session.Credential{User: cfg.TenantDefault.User, Password: cfg.TenantDefault.Password},
		Tenants:       make(map[string]session.Credential),
	}
	for _, t := range cfg.Tenants {
		if t.Admin.User != "" {
			auth.Tenants[t.Name] = session.Credential{User: t.Admin.User, Password: t.Admin.Password}
		}
	}
	return auth
}

func lockService(ctx context.Context, rt *Runtime, hm *health.Manager, cfg config.AppConfig) (lock.Service, error) {
	if cfg.Lock.Backend != config.BackendRedis {
		return lock.NewMemoryService(), nil
	}
	client, err := session.NewRedisClient(ctx, redisConfig(cfg))
	if err != nil {
		return nil, fmt.Errorf("lock redis: %w", err)
	}
	rt.onClose("lock-redis", func(context.Context) error { return client.Close() })
	hm.RegisterChecker(health.NewPingChecker("redis", func(ctx context.Context) error {
		return client.Ping(ctx).Err()
	}))
	return lock.NewRedisService(client, lock.WithLeaseTTL(cfg.Lock.LeaseTTL)), nil
}

// Apply pushes the reloadable settings of cfg into the running services.
func (rt *Runtime) Apply(cfg config.AppConfig) {
	logger := log.WithComponent("daemon")
	if err := log.SetLevel(cfg.LogLevel); err != nil {
		logger.Warn().Err(err).Str("level", cfg.LogLevel).Msg("ignoring invalid log level")
	}
	rt.Dispatcher.SetLockTimeout(cfg.Lock.Timeout)
	rt.Sessions.SetTTL(cfg.Session.TTL)
	logger.Info().
		Str(log.FieldEvent, "config.applied").
		Str("log_level", cfg.LogLevel).
		Dur("lock_timeout", cfg.Lock.Timeout).
		Dur("session_ttl", cfg.Session.TTL).
		Msg("reloadable settings applied")
}
