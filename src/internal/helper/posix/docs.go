// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

// Package posix provides [POSIX]-compliant helper functions for cross-platform compatibility.
//
// The issuer CLI uses it to render usage lines with the name it was invoked as,
// so that "Usage: tls-cert-issuer [ca|client]" reads the same on every platform:
//
//	fmt.Fprintln(os.Stderr, posix.Usage("ca", "client"))
//
// Cross-platform behavior of GetExecutableName:
//
//   - Linux/macOS: "/usr/bin/tls-cert-issuer" → "tls-cert-issuer"
//   - Windows: "C:\bin\tls-cert-issuer.exe" → "tls-cert-issuer"
//   - Fallback: Empty args → "tls-cert-issuer"
//
// [POSIX]: https://grokipedia.com/page/POSIX
package posix
