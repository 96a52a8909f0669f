// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

// Package engine defines the cryptographic capabilities the issuance pipeline
// depends on, independent of how they are provided.
//
// An [Engine] can create a self-signed root, create a key with its signing
// request, sign a request with an issuer's key and certificate, and normalize a
// private key's container. All artifacts cross the interface as PEM bytes.
package engine

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	"github.com/H0llyW00dzZ/tls-cert-issuer/src/internal/issuance/policy"
)

var (
	// ErrNotCA indicates an issuer certificate that is not a certificate authority.
	ErrNotCA = errors.New("engine: issuer certificate is not a CA")

	// ErrKeyMismatch indicates an issuer key that does not belong to the issuer certificate.
	ErrKeyMismatch = errors.New("engine: issuer key does not match issuer certificate")

	// ErrInvalidRequest indicates missing or malformed request parameters.
	ErrInvalidRequest = errors.New("engine: invalid request")
)

// RootRequest describes a self-signed root certificate.
type RootRequest struct {
	CommonName string
	KeyType    KeyType
	Digest     Digest
	Serial     *big.Int
	Days       int
	Profile    policy.Profile
}

// KeyRequest describes a key pair and its certificate signing request.
type KeyRequest struct {
	CommonName string
	KeyType    KeyType
	Digest     Digest
}

// SignRequest describes the signing of a certificate request by an issuer.
type SignRequest struct {
	Request    []byte // requester CSR, PEM
	IssuerKey  []byte // issuer private key, PEM
	IssuerCert []byte // issuer certificate, PEM
	Serial     *big.Int
	Profile    policy.Profile
	AltNames   []string
	Days       int
	Digest     Digest
}

// KeyMaterial carries the PEM artifacts an operation produced. Fields an
// operation does not produce are nil.
type KeyMaterial struct {
	Key         []byte
	Request     []byte
	Certificate []byte
}

// Engine provides the four cryptographic capabilities of the pipeline.
type Engine interface {
	// Name identifies the engine in errors and logs.
	Name() string
	// CreateRoot generates a key and a self-signed certificate.
	CreateRoot(ctx context.Context, req RootRequest) (*KeyMaterial, error)
	// CreateRequest generates a key and a certificate signing request.
	CreateRequest(ctx context.Context, req KeyRequest) (*KeyMaterial, error)
	// Sign issues a certificate for a signing request.
	Sign(ctx context.Context, req SignRequest) ([]byte, error)
	// NormalizeKey re-encodes a private key into its traditional container.
	NormalizeKey(ctx context.Context, key []byte) ([]byte, error)
}

// Validate checks the parameters common to every engine.
func (r RootRequest) Validate() error {
	switch {
	case r.CommonName == "":
		return fmt.Errorf("%w: empty common name", ErrInvalidRequest)
	case r.Days <= 0:
		return fmt.Errorf("%w: validity must be positive, got %d days", ErrInvalidRequest, r.Days)
	case r.Serial == nil || r.Serial.Sign() <= 0:
		return fmt.Errorf("%w: serial must be positive", ErrInvalidRequest)
	}
	return nil
}

// Validate checks the parameters common to every engine.
func (r KeyRequest) Validate() error {
	if r.CommonName == "" {
		return fmt.Errorf("%w: empty common name", ErrInvalidRequest)
	}
	return nil
}

// Validate checks the parameters common to every engine.
func (r SignRequest) Validate() error {
	switch {
	case len(r.Request) == 0, len(r.IssuerKey) == 0, len(r.IssuerCert) == 0:
		return fmt.Errorf("%w: request, issuer key and issuer certificate are required", ErrInvalidRequest)
	case r.Days <= 0:
		return fmt.Errorf("%w: validity must be positive, got %d days", ErrInvalidRequest, r.Days)
	case r.Serial == nil || r.Serial.Sign() <= 0:
		return fmt.Errorf("%w: serial must be positive", ErrInvalidRequest)
	case r.Profile.Name == "":
		return fmt.Errorf("%w: missing extension profile", ErrInvalidRequest)
	}
	return nil
}
