// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

// Package x509certs provides the encoding and decoding operations for the [X.509]
// artifacts the issuer writes: certificates and bundles ([PEM], DER or [PKCS7]),
// private keys and certificate signing requests.
//
// Private keys are written as PKCS#8 and can be normalized into their traditional
// single-algorithm container (PKCS#1 for RSA, SEC1 for ECDSA) without any
// cryptographic change.
//
// [X.509]: https://grokipedia.com/page/X.509
// [PKCS7]: https://grokipedia.com/page/PKCS_7
// [PEM]: https://grokipedia.com/page/PEM#privacy-enhanced-mail
package x509certs
