// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

// tls-cert-issuer creates a private TLS certificate hierarchy: a self-signed
// root CA, an intermediate CA, a server certificate and client certificates,
// together with their chain bundles.
//
// # Installation
//
// Install with Go 1.25.5 or later:
//
//	go install github.com/H0llyW00dzZ/tls-cert-issuer/cmd/tls-cert-issuer@latest
//
// # Usage
//
//	tls-cert-issuer [ca|client] [FLAGS]
//
// # Flags
//
//	-c, --config               Config file (.json, .yaml, .yml, .toml)
//	-d, --dir                  Artifact directory (default: keys)
//	-e, --engine               Crypto engine: native or openssl (default: native)
//	-k, --key-type             rsa4096, rsa8192, p256 or p384 (default: rsa4096)
//	    --digest               sha256, sha384 or sha512 (default: sha256)
//	    --table                Display the issued chain as a markdown table
//
// ca flags:
//
//	--authority                Authority name (prompted when missing)
//	--server                   Server name (prompted when missing)
//	--serial-intermediate      Intermediate serial (default: 123)
//	--serial-end               Server certificate serial (default: 456)
//
// client flags:
//
//	--name                     Client name (prompted when missing)
//	--serial                   Client serial (default: 789)
//
// # Artifacts
//
// Every run writes into the artifact directory: <role>.key (PKCS#8),
// <role>.req, <role>.rsa (PKCS#1 or SEC1), <role>.cert for the roles ca,
// inter, end and client, plus end.chain, end.fullchain, client.chain,
// client.fullchain, policy.yaml and serials.yaml.
//
// # Examples
//
// Issue the authority and the server certificate:
//
//	tls-cert-issuer ca --authority "Example Org" --server example.org
//
// Issue a client certificate from the same directory:
//
//	tls-cert-issuer client --name example
//
// Verify the server chain with OpenSSL:
//
//	openssl verify -CAfile keys/ca.cert -untrusted keys/inter.cert keys/end.cert
package main
