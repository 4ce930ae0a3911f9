// Copyright (c) 2026 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/bonitasoft/bonita-engine-sub001/internal/config"
	"github.com/bonitasoft/bonita-engine-sub001/internal/daemon"
	"github.com/bonitasoft/bonita-engine-sub001/internal/persistence/sqlite"
	"github.com/spf13/cobra"
)

func newStorageCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "storage",
		Short: "Database maintenance",
	}
	cmd.AddCommand(newStorageVerifyCmd())
	return cmd
}

func newStorageVerifyCmd() *cobra.Command {
	var (
		path string
		mode string
	)
	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Check database integrity",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			mode = strings.ToLower(strings.TrimSpace(mode))
			if mode != "quick" && mode != "full" {
				return fmt.Errorf("invalid mode %q, use quick or full", mode)
			}
			if path == "" {
				dataDir := os.Getenv(config.EnvDataDir)
				if dataDir == "" {
					return fmt.Errorf("--path is required when $%s is not set", config.EnvDataDir)
				}
				path = filepath.Join(dataDir, daemon.DatabaseFile)
			}
			if _, err := os.Stat(path); err != nil {
				return fmt.Errorf("database %s: %w", path, err)
			}

			problems, err := sqlite.VerifyIntegrity(path, mode)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(problems) > 0 {
				for _, p := range problems {
					_, _ = fmt.Fprintf(out, "  %s\n", p)
				}
				return fmt.Errorf("%s: %d integrity problem(s)", path, len(problems))
			}
			_, err = fmt.Fprintf(out, "%s: ok (%s)\n", path, mode)
			return err
		},
	}
	cmd.Flags().StringVar(&path, "path", "", "path to the SQLite database file")
	cmd.Flags().StringVar(&mode, "mode", "quick", "verification mode: quick or full")
	return cmd
}
