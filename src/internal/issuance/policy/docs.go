// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

// Package policy materializes the extension policy document used when signing
// certificates. A document declares exactly three named extension profiles:
//   - end: server leaf, CA:false, carries the subject alternative names.
//   - client: client leaf, CA:false, extended key usage restricted to clientAuth.
//   - inter: intermediate CA, CA:true, serverAuth and clientAuth.
//
// Usage names follow OpenSSL's configuration vocabulary so the same document can be
// rendered verbatim into an OpenSSL extension file by the process-backed engine.
// The self-signed root is driven by [RootProfile], which is never selectable by name.
package policy
