// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

// Package config loads issuer settings from JSON, YAML or TOML files.
//
// Loading starts from built-in defaults, then reads the file named by the
// caller or by the TLS_CERT_ISSUER_CONFIG environment variable. The format is
// chosen by file extension. Invalid numeric values fall back to their defaults,
// while invalid names (key type, digest, engine, serials) are reported by
// [Config.Validate].
//
// Example YAML:
//
//	directory: keys
//	engine:
//	  name: openssl
//	  binary: /usr/bin/openssl
//	  timeoutSeconds: 60
//	keys:
//	  type: rsa4096
//	  digest: sha256
//	serials:
//	  intermediate: "123"
//	  end: "456"
//	  client: random
package config
