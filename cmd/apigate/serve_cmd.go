// Copyright (c) 2026 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/bonitasoft/bonita-engine-sub001/internal/config"
	"github.com/bonitasoft/bonita-engine-sub001/internal/daemon"
	"github.com/bonitasoft/bonita-engine-sub001/internal/log"
	"github.com/bonitasoft/bonita-engine-sub001/internal/version"
	"github.com/spf13/cobra"
)

func newServeCmd() *cobra.Command {
	var configPath string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the API server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return serve(ctx, configPath)
		},
	}
	cmd.Flags().StringVarP(&configPath, "config", "c", "", "path to config file (YAML)")
	return cmd
}

func serve(ctx context.Context, configPath string) error {
	// Safe defaults until the configuration is loaded.
	log.Configure(log.Config{
		Level:   "info",
		Output:  os.Stdout,
		Service: "apigate",
		Version: version.Version,
	})
	logger := log.WithComponent("daemon")

	loader := config.NewLoader(resolveConfigPath(configPath), version.Version)
	cfg, err := loader.Load()
	if err != nil {
		logger.Error().
			Err(err).
			Str(log.FieldEvent, "config.load_failed").
			Str("config_path", loader.Path()).
			Msg("failed to load configuration")
		return err
	}

	log.Configure(log.Config{
		Level:   cfg.LogLevel,
		Output:  os.Stdout,
		Service: cfg.LogService,
		Version: cfg.Version,
	})
	logger = log.WithComponent("daemon")
	logger.Info().
		Str(log.FieldEvent, "startup").
		Str("version", version.String()).
		Str("config_path", loader.Path()).
		Str("listen", cfg.Listen).
		Msg("starting apigate")

	app, err := daemon.New(ctx, config.NewHolder(cfg, loader))
	if err != nil {
		logger.Error().Err(err).Str(log.FieldEvent, "bootstrap.failed").Msg("failed to bootstrap runtime")
		return err
	}
	if err := app.Run(ctx); err != nil {
		logger.Error().Err(err).Str(log.FieldEvent, "daemon.failed").Msg("daemon stopped with error")
		return err
	}
	logger.Info().Str(log.FieldEvent, "shutdown").Msg("apigate stopped")
	return nil
}
