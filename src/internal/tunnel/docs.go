// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

// Package tunnel carries TCP traffic over mutual TLS using the artifacts
// written by the issuer.
//
// A [Proxy] runs in one of two modes:
//
//   - gateway: accepts TLS on 0.0.0.0:<listen_port>, presents end.fullchain
//     with end.rsa, requires a client certificate that chains to the
//     certificates in client.chain, and forwards plain TCP to the target.
//   - tunneler: accepts plain TCP on 127.0.0.1:<listen_port> and dials the
//     gateway over TLS, presenting a client chain and key and trusting the
//     certificates in the server certificates file.
//
// Settings live in a TOML file. When the file is missing, [LoadConfig] writes
// the gateway defaults to it:
//
//	mode = "gateway"
//
//	[config]
//	server_certificates_file = "keys/end.fullchain"
//	key_file = "keys/end.rsa"
//	client_certificates_file = "keys/client.chain"
//	listen_port = 20443
//	target_host = "localhost"
//	target_port = 20000
//
// A tunneler typically points client_certificates_file at client.fullchain,
// key_file at client.rsa and server_certificates_file at ca.cert.
package tunnel
