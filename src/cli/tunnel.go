// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/H0llyW00dzZ/tls-cert-issuer/src/internal/tunnel"
	"github.com/H0llyW00dzZ/tls-cert-issuer/src/logger"
)

// ExecuteTunnel runs the tls-tunnel command with the process arguments.
func ExecuteTunnel(ctx context.Context, version string, log logger.Logger) error {
	cmd := NewTunnelCommand(version, log)
	cmd.SetArgs(os.Args[1:])
	return cmd.ExecuteContext(ctx)
}

// NewTunnelCommand builds the tls-tunnel command. It runs the gateway or the
// tunneler described by the config file until the command context is cancelled.
func NewTunnelCommand(version string, log logger.Logger) *cobra.Command {
	if log == nil {
		log = logger.Nop()
	}

	var (
		path  string
		check bool
	)

	cmd := &cobra.Command{
		Use:           "tls-tunnel",
		Short:         "Carry TCP over mutual TLS with the issued certificates",
		Version:       version,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := tunnel.LoadConfig(path)
			if err != nil {
				return err
			}

			p, err := tunnel.New(cfg, log)
			if err != nil {
				return err
			}

			if check {
				fmt.Fprintf(cmd.OutOrStdout(), "%s configuration is valid (listen %s, target %s)\n",
					cfg.Mode, cfg.ListenAddr(), cfg.TargetAddr())
				return nil
			}
			return p.ListenAndServe(cmd.Context())
		},
	}
	cmd.CompletionOptions.DisableDefaultCmd = true

	f := cmd.Flags()
	f.StringVarP(&path, "config", "c", tunnel.DefaultConfigFile, "tunnel config file; created with gateway defaults when missing")
	f.BoolVar(&check, "check", false, "load the config and TLS material, then exit")
	return cmd
}
