// Copyright (c) 2026 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package daemon

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/bonitasoft/bonita-engine-sub001/internal/config"
	"github.com/bonitasoft/bonita-engine-sub001/internal/log"
	"github.com/bonitasoft/bonita-engine-sub001/internal/session"
	"github.com/rs/zerolog"
)

// App owns the long-lived runtime lifecycle (config watcher, reload wiring,
// session sweeper) and delegates server management to Manager.
type App struct {
	logger       zerolog.Logger
	manager      *Manager
	runtime      *Runtime
	holder       *config.Holder
	sweepEvery   time.Duration
	reloadSignal os.Signal
}

// New bootstraps the runtime for the holder's current configuration and
// prepares the HTTP manager. The runtime is released by the manager's
// shutdown hooks.
func New(ctx context.Context, holder *config.Holder) (*App, error) {
	cfg := holder.Get()
	rt, err := Bootstrap(ctx, cfg)
	if err != nil {
		return nil, err
	}

	mgr, err := NewManager(ServerConfig{
		ListenAddr:      cfg.Listen,
		ReadTimeout:     30 * time.Second,
		IdleTimeout:     2 * time.Minute,
		MaxHeaderBytes:  1 << 20,
		ShutdownTimeout: cfg.ShutdownTimeout,
	}, rt.Server.Handler())
	if err != nil {
		_ = rt.Close(ctx)
		return nil, err
	}
	mgr.RegisterShutdownHook("runtime", rt.Close)
	holder.SetAudit(rt.Audit)

	return &App{
		logger:       log.WithComponent("daemon"),
		manager:      mgr,
		runtime:      rt,
		holder:       holder,
		sweepEvery:   cfg.Session.SweepInterval,
		reloadSignal: syscall.SIGHUP,
	}, nil
}

// Runtime returns the wired services.
func (a *App) Runtime() *Runtime { return a.runtime }

// Manager returns the HTTP server manager.
func (a *App) Manager() *Manager { return a.manager }

// Run starts all owned background subsystems and blocks until ctx is
// cancelled or a fatal error occurs.
func (a *App) Run(ctx context.Context) error {
	if a.manager == nil {
		return ErrMissingManager
	}

	g, ctx := errgroup.WithContext(ctx)

	if a.holder != nil {
		applyCh := make(chan config.AppConfig, 1)
		a.holder.Subscribe(applyCh)

		g.Go(func() error {
			if err := a.holder.Watch(ctx); err != nil {
				a.logger.Warn().Err(err).Str(log.FieldEvent, "config.watcher_failed").Msg("config watcher stopped")
			}
			return nil
		})

		g.Go(func() error {
			for {
				select {
				case <-ctx.Done():
					return nil
				case cfg := <-applyCh:
					a.runtime.Apply(cfg)
				}
			}
		})

		if a.reloadSignal != nil {
			g.Go(func() error {
				hupChan := make(chan os.Signal, 1)
				signal.Notify(hupChan, a.reloadSignal)
				defer signal.Stop(hupChan)

				for {
					select {
					case <-ctx.Done():
						return nil
					case <-hupChan:
						a.logger.Info().
							Str(log.FieldEvent, "config.reload_signal").
							Str("signal", a.reloadSignal.String()).
							Msg("received reload signal, reloading config")
						if err := a.holder.Reload(ctx); err != nil {
							a.logger.Warn().Err(err).Str(log.FieldEvent, "config.reload_failed").Msg("config reload failed")
						}
					}
				}
			})
		}
	}

	sweeper := &session.Sweeper{Service: a.runtime.Sessions, Interval: a.sweepEvery}
	g.Go(func() error { return sweeper.Run(ctx) })

	g.Go(func() error { return a.manager.Start(ctx) })

	return g.Wait()
}
