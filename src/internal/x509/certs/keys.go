// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package x509certs

import (
	"crypto"
	"crypto/ecdsa"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"

	"github.com/cloudflare/cfssl/helpers"
	"github.com/go-acme/lego/v4/certcrypto"
)

var (
	// ErrParsePrivateKey indicates a failure to parse a private key in any supported container.
	ErrParsePrivateKey = errors.New("x509certs: failed to parse private key")

	// ErrParseRequest indicates a failure to parse a certificate signing request or
	// to verify its self-signature.
	ErrParseRequest = errors.New("x509certs: failed to parse certificate request")

	// ErrUnsupportedKey indicates a key algorithm that has no traditional PEM container.
	ErrUnsupportedKey = errors.New("x509certs: unsupported key algorithm")
)

const (
	privateKeyBlockType = "PRIVATE KEY"
	requestBlockType    = "CERTIFICATE REQUEST"
)

// DecodePrivateKey parses a PEM private key in PKCS#8, PKCS#1 or SEC1 form.
func DecodePrivateKey(data []byte) (crypto.Signer, error) {
	key, err := helpers.ParsePrivateKeyPEM(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrParsePrivateKey, err)
	}
	return key, nil
}

// EncodePrivateKey encodes a private key as a PKCS#8 PEM block.
func EncodePrivateKey(key crypto.PrivateKey) ([]byte, error) {
	der, err := x509.MarshalPKCS8PrivateKey(key)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnsupportedKey, err)
	}

	return pem.EncodeToMemory(&pem.Block{Type: privateKeyBlockType, Bytes: der}), nil
}

// NormalizePrivateKey re-encodes a PEM private key into its traditional container:
// "RSA PRIVATE KEY" (PKCS#1) for RSA and "EC PRIVATE KEY" (SEC1) for ECDSA.
// The key material itself is untouched.
func NormalizePrivateKey(data []byte) ([]byte, error) {
	key, err := DecodePrivateKey(data)
	if err != nil {
		return nil, err
	}

	switch key.(type) {
	case *rsa.PrivateKey, *ecdsa.PrivateKey:
		return certcrypto.PEMEncode(key), nil
	default:
		return nil, fmt.Errorf("%w: %T", ErrUnsupportedKey, key)
	}
}

// DecodeRequest parses a PEM or DER certificate signing request and checks its signature.
func DecodeRequest(data []byte) (*x509.CertificateRequest, error) {
	csr, _, err := helpers.ParseCSR(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrParseRequest, err)
	}
	return csr, nil
}

// EncodeRequestPEM wraps raw certificate request DER bytes into a PEM block.
func EncodeRequestPEM(der []byte) []byte {
	return pem.EncodeToMemory(&pem.Block{Type: requestBlockType, Bytes: der})
}

// KeyMatches reports whether the private key belongs to the given public key.
func KeyMatches(key crypto.Signer, pub crypto.PublicKey) bool {
	k, ok := key.Public().(interface{ Equal(crypto.PublicKey) bool })
	return ok && k.Equal(pub)
}
