// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package engine

import (
	"crypto"
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrWeakKey indicates a key type below RSA-4096 strength.
	ErrWeakKey = errors.New("engine: key type too weak")

	// ErrUnknownKeyType indicates an unrecognized key type name.
	ErrUnknownKeyType = errors.New("engine: unknown key type")

	// ErrWeakDigest indicates a digest weaker than SHA-256.
	ErrWeakDigest = errors.New("engine: digest too weak")

	// ErrUnknownDigest indicates an unrecognized digest name.
	ErrUnknownDigest = errors.New("engine: unknown digest")
)

// KeyType selects the algorithm and size of generated keys.
type KeyType string

// Supported key types.
const (
	RSA4096 KeyType = "rsa4096"
	RSA8192 KeyType = "rsa8192"
	P256    KeyType = "p256"
	P384    KeyType = "p384"

	DefaultKeyType = RSA4096
)

var weakKeyTypes = []string{"rsa1024", "rsa2048", "rsa3072"}

// ParseKeyType parses a key type name case-insensitively. An empty name selects
// [DefaultKeyType].
func ParseKeyType(s string) (KeyType, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	switch KeyType(s) {
	case "":
		return DefaultKeyType, nil
	case RSA4096, RSA8192, P256, P384:
		return KeyType(s), nil
	}

	for _, weak := range weakKeyTypes {
		if s == weak {
			return "", fmt.Errorf("%w: %s", ErrWeakKey, s)
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownKeyType, s)
}

// IsRSA reports whether the key type is an RSA size.
func (k KeyType) IsRSA() bool { return k == RSA4096 || k == RSA8192 }

// Label is the algorithm label used in authority subjects: "RSA" or "ECDSA".
func (k KeyType) Label() string {
	if k.IsRSA() {
		return "RSA"
	}
	return "ECDSA"
}

// RSABits returns the modulus size of RSA key types, or 0.
func (k KeyType) RSABits() int {
	switch k {
	case RSA4096:
		return 4096
	case RSA8192:
		return 8192
	default:
		return 0
	}
}

// Curve returns the NIST curve name of EC key types ("P-256", "P-384"), or "".
func (k KeyType) Curve() string {
	switch k {
	case P256:
		return "P-256"
	case P384:
		return "P-384"
	default:
		return ""
	}
}

// Digest selects the hash used for signatures.
type Digest string

// Supported digests.
const (
	SHA256 Digest = "sha256"
	SHA384 Digest = "sha384"
	SHA512 Digest = "sha512"

	DefaultDigest = SHA256
)

var weakDigests = []string{"md5", "sha1", "sha224"}

// ParseDigest parses a digest name case-insensitively, with or without a dash.
// An empty name selects [DefaultDigest].
func ParseDigest(s string) (Digest, error) {
	s = strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "-", "")
	switch Digest(s) {
	case "":
		return DefaultDigest, nil
	case SHA256, SHA384, SHA512:
		return Digest(s), nil
	}

	for _, weak := range weakDigests {
		if s == weak {
			return "", fmt.Errorf("%w: %s", ErrWeakDigest, s)
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownDigest, s)
}

// Hash returns the crypto.Hash of the digest.
func (d Digest) Hash() crypto.Hash {
	switch d {
	case SHA384:
		return crypto.SHA384
	case SHA512:
		return crypto.SHA512
	default:
		return crypto.SHA256
	}
}
