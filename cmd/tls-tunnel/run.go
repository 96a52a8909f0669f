// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/H0llyW00dzZ/tls-cert-issuer/src/cli"
	"github.com/H0llyW00dzZ/tls-cert-issuer/src/logger"
	verpkg "github.com/H0llyW00dzZ/tls-cert-issuer/src/version"
)

var version string // set by ldflags or defaults to imported version

func init() {
	if version == "" {
		version = verpkg.Version
	}
}

func main() {
	log := logger.NewCLILogger()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cli.ExecuteTunnel(ctx, version, log); err != nil {
		log.Printf("Error: %v", err)
		os.Exit(1)
	}
	if ctx.Err() != nil {
		log.Println("Tunnel stopped by signal.")
	}
}
