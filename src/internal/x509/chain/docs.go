// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

// Package x509chain implements [X.509] certificate chain validation and rendering
// for the bundles the issuer writes. It provides capabilities to:
//   - Check that each certificate in a bundle is signed by the next one.
//   - Verify a leaf against the bundle's own root for a given extended key usage.
//   - Render a chain as an ASCII tree, a markdown table, or structured JSON.
//
// [X.509]: https://grokipedia.com/page/X.509
package x509chain
