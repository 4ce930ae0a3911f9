// Copyright (c) 2026 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package main

import (
	"fmt"
	"time"

	"github.com/bonitasoft/bonita-engine-sub001/internal/apis"
	"github.com/bonitasoft/bonita-engine-sub001/pkg/client"
	"github.com/spf13/cobra"
)

type remoteFlags struct {
	server   string
	user     string
	password string
	timeout  time.Duration
}

func (f *remoteFlags) bind(cmd *cobra.Command) {
	cmd.PersistentFlags().StringVar(&f.server, "server", "http://localhost:8080", "apigate base URL")
	cmd.PersistentFlags().StringVar(&f.user, "user", "platformAdmin", "platform technical user")
	cmd.PersistentFlags().StringVar(&f.password, "password", "platform", "platform technical user password")
	cmd.PersistentFlags().DurationVar(&f.timeout, "timeout", 30*time.Second, "request timeout")
}

func newNodeCmd() *cobra.Command {
	var flags remoteFlags
	cmd := &cobra.Command{
		Use:   "node",
		Short: "Control the platform node of a running server",
	}
	flags.bind(cmd)

	for _, op := range []struct {
		use, short, method string
	}{
		{"start", "Start the platform node", "StartNode"},
		{"stop", "Stop the platform node", "StopNode"},
		{"state", "Print the platform node state", "GetNodeState"},
	} {
		cmd.AddCommand(&cobra.Command{
			Use:   op.use,
			Short: op.short,
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				c, err := client.New(flags.server, client.WithTimeout(flags.timeout))
				if err != nil {
					return err
				}
				ctx := cmd.Context()
				sess, err := c.LoginPlatform(ctx, flags.user, flags.password)
				if err != nil {
					return fmt.Errorf("login: %w", err)
				}
				defer func() { _ = c.Logout(ctx, sess) }()

				if err := c.Invoke(ctx, sess, apis.PlatformAPIName, op.method, nil, nil, nil); err != nil {
					return err
				}
				var state string
				if err := c.Invoke(ctx, sess, apis.PlatformAPIName, "GetNodeState", nil, nil, &state); err != nil {
					return err
				}
				_, err = fmt.Fprintln(cmd.OutOrStdout(), state)
				return err
			},
		})
	}
	return cmd
}
