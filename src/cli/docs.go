// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

// Package cli provides the command-line interface for the TLS certificate issuer.
// It implements a Cobra-based CLI with two modes: "ca" issues a root CA, an
// intermediate CA and a server certificate, and "client" issues a client
// certificate from the existing intermediate. Missing names are prompted for on
// standard input. After each run the produced full chain is verified and shown
// as an ASCII tree or a markdown table.
//
// [NewTunnelCommand] builds the separate tls-tunnel command, which serves the
// issued certificates as a mutual TLS gateway or tunneler.
package cli
