// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

// tls-tunnel forwards TCP connections over mutual TLS using the files written
// by tls-cert-issuer.
//
// # Usage
//
//	tls-tunnel [--config config.toml] [--check]
//
// In gateway mode it listens on all interfaces, serves keys/end.fullchain with
// keys/end.rsa, requires a client certificate chaining to keys/client.chain and
// forwards to target_host:target_port. In tunneler mode it listens on loopback
// and dials the gateway over TLS with a client chain and key.
//
// A missing config file is created with the gateway defaults.
package main
