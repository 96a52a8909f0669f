// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package mcpserver

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/mark3labs/mcp-go/server"

	"github.com/H0llyW00dzZ/tls-cert-issuer/src/internal/config"
	"github.com/H0llyW00dzZ/tls-cert-issuer/src/logger"
	"github.com/H0llyW00dzZ/tls-cert-issuer/src/version"
)

var appVersion = version.Version // default version

// GetVersion returns the current version of the MCP server.
func GetVersion() string {
	return appVersion
}

// instructions is sent to clients on initialize.
const instructions = `This server issues a private TLS certificate hierarchy.

Call issue_ca first: it writes ca, inter and end keys and certificates plus end.chain and end.fullchain.
Then call issue_client for each client; it reuses the intermediate CA from the same directory.
Use describe_chain to render any chain file as a tree, a markdown table or JSON.`

// Run starts the MCP server over stdio.
//
// Parameters:
//   - version: Version string to report (e.g., "0.1.0")
//
// Returns:
//   - error: Configuration, build or transport error; nil on signal shutdown
//
// Configuration:
//   - Loads config from the TLS_CERT_ISSUER_CONFIG environment variable
//   - Falls back to defaults when it is not set
func Run(version string) error {
	appVersion = version

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return serve(ctx, version, os.Stdin, os.Stdout, os.Stderr)
}

// serve runs the stdio server until ctx is cancelled or stdin closes.
func serve(ctx context.Context, version string, in io.Reader, out, logOut io.Writer) error {
	cfg, err := config.Load("")
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	log := logger.NewStructuredLogger(logOut, false).WithComponent("mcp-server")

	s, err := NewServerBuilder().
		WithConfig(cfg).
		WithVersion(version).
		WithLogger(log.WithComponent("issuer")).
		WithDefaultTools().
		WithResources(createResources(cfg, version)...).
		WithPrompts(createPrompts()...).
		WithInstructions(instructions).
		Build()
	if err != nil {
		return fmt.Errorf("failed to build server: %w", err)
	}

	log.Printf("%s %s started (engine %s, directory %s)", serverName, version, cfg.Engine.Name, cfg.Directory)

	stdio := server.NewStdioServer(s)
	if err := stdio.Listen(ctx, in, out); err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, io.EOF) {
		return err
	}

	log.Printf("%s stopped", serverName)
	return nil
}
