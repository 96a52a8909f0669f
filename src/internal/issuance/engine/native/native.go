// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

// Package native implements the issuance engine in-process with crypto/x509.
// Keys are generated through lego's certcrypto and stored as PKCS#8.
package native

import (
	"context"
	"crypto"
	"crypto/rand"
	"crypto/x509"
	"crypto/x509/pkix"
	"fmt"
	"io"
	"time"

	"github.com/go-acme/lego/v4/certcrypto"

	"github.com/H0llyW00dzZ/tls-cert-issuer/src/internal/issuance/engine"
	x509certs "github.com/H0llyW00dzZ/tls-cert-issuer/src/internal/x509/certs"
)

// Name identifies this engine.
const Name = "native"

// Engine is the library-backed [engine.Engine].
type Engine struct {
	now   func() time.Time
	rand  io.Reader
	codec *x509certs.Certificate
}

// Option configures an [Engine].
type Option func(*Engine)

// WithClock sets the clock used for validity windows.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithRand sets the randomness source used for signatures.
// Key generation always draws from crypto/rand.
func WithRand(r io.Reader) Option {
	return func(e *Engine) { e.rand = r }
}

// New returns a native engine.
func New(opts ...Option) *Engine {
	e := &Engine{
		now:   time.Now,
		rand:  rand.Reader,
		codec: x509certs.New(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

var _ engine.Engine = (*Engine)(nil)

// Name implements [engine.Engine].
func (e *Engine) Name() string { return Name }

// CreateRoot implements [engine.Engine].
func (e *Engine) CreateRoot(ctx context.Context, req engine.RootRequest) (*engine.KeyMaterial, error) {
	const op = "create root"

	if err := req.Validate(); err != nil {
		return nil, engine.Wrap(Name, op, err)
	}

	key, err := e.generateKey(ctx, req.KeyType)
	if err != nil {
		return nil, engine.Wrap(Name, op, err)
	}

	notBefore := e.now()
	tmpl := &x509.Certificate{
		SerialNumber:       req.Serial,
		Subject:            pkix.Name{CommonName: req.CommonName},
		NotBefore:          notBefore,
		NotAfter:           notBefore.AddDate(0, 0, req.Days),
		SignatureAlgorithm: signatureAlgorithm(key.Public(), req.Digest),
	}
	if err := applyProfile(tmpl, req.Profile, nil, key.Public()); err != nil {
		return nil, engine.Wrap(Name, op, err)
	}

	der, err := x509.CreateCertificate(e.rand, tmpl, tmpl, key.Public(), key)
	if err != nil {
		return nil, engine.Wrap(Name, op, err)
	}

	keyPEM, err := x509certs.EncodePrivateKey(key)
	if err != nil {
		return nil, engine.Wrap(Name, op, err)
	}

	return &engine.KeyMaterial{
		Key:         keyPEM,
		Certificate: e.codec.EncodeDERToPEM(der),
	}, nil
}

// CreateRequest implements [engine.Engine].
func (e *Engine) CreateRequest(ctx context.Context, req engine.KeyRequest) (*engine.KeyMaterial, error) {
	const op = "create request"

	if err := req.Validate(); err != nil {
		return nil, engine.Wrap(Name, op, err)
	}

	key, err := e.generateKey(ctx, req.KeyType)
	if err != nil {
		return nil, engine.Wrap(Name, op, err)
	}

	der, err := x509.CreateCertificateRequest(e.rand, &x509.CertificateRequest{
		Subject:            pkix.Name{CommonName: req.CommonName},
		SignatureAlgorithm: signatureAlgorithm(key.Public(), req.Digest),
	}, key)
	if err != nil {
		return nil, engine.Wrap(Name, op, err)
	}

	keyPEM, err := x509certs.EncodePrivateKey(key)
	if err != nil {
		return nil, engine.Wrap(Name, op, err)
	}

	return &engine.KeyMaterial{
		Key:     keyPEM,
		Request: x509certs.EncodeRequestPEM(der),
	}, nil
}

// Sign implements [engine.Engine].
//
// The subject is copied from the request; extensions requested inside the CSR
// are ignored and the profile alone decides the certificate's extensions.
func (e *Engine) Sign(ctx context.Context, req engine.SignRequest) ([]byte, error) {
	const op = "sign"

	if err := ctx.Err(); err != nil {
		return nil, engine.Wrap(Name, op, err)
	}
	if err := req.Validate(); err != nil {
		return nil, engine.Wrap(Name, op, err)
	}

	csr, err := x509certs.DecodeRequest(req.Request)
	if err != nil {
		return nil, engine.Wrap(Name, op, err)
	}
	issuer, err := e.codec.Decode(req.IssuerCert)
	if err != nil {
		return nil, engine.Wrap(Name, op, err)
	}
	issuerKey, err := x509certs.DecodePrivateKey(req.IssuerKey)
	if err != nil {
		return nil, engine.Wrap(Name, op, err)
	}

	if !issuer.IsCA {
		return nil, engine.Wrap(Name, op, fmt.Errorf("%w: %s", engine.ErrNotCA, issuer.Subject.CommonName))
	}
	if !x509certs.KeyMatches(issuerKey, issuer.PublicKey) {
		return nil, engine.Wrap(Name, op, engine.ErrKeyMismatch)
	}

	notBefore := e.now()
	tmpl := &x509.Certificate{
		SerialNumber:       req.Serial,
		Subject:            csr.Subject,
		NotBefore:          notBefore,
		NotAfter:           notBefore.AddDate(0, 0, req.Days),
		SignatureAlgorithm: signatureAlgorithm(issuerKey.Public(), req.Digest),
	}
	if err := applyProfile(tmpl, req.Profile, req.AltNames, csr.PublicKey); err != nil {
		return nil, engine.Wrap(Name, op, err)
	}

	der, err := x509.CreateCertificate(e.rand, tmpl, issuer, csr.PublicKey, issuerKey)
	if err != nil {
		return nil, engine.Wrap(Name, op, err)
	}

	return e.codec.EncodeDERToPEM(der), nil
}

// NormalizeKey implements [engine.Engine].
func (e *Engine) NormalizeKey(ctx context.Context, key []byte) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, engine.Wrap(Name, "normalize key", err)
	}

	out, err := x509certs.NormalizePrivateKey(key)
	return out, engine.Wrap(Name, "normalize key", err)
}

type keyResult struct {
	key crypto.Signer
	err error
}

// generateKey runs key generation off the caller's goroutine so that a
// cancelled context returns promptly even for RSA-8192.
func (e *Engine) generateKey(ctx context.Context, kt engine.KeyType) (crypto.Signer, error) {
	var lego certcrypto.KeyType
	switch kt {
	case engine.RSA4096, "":
		lego = certcrypto.RSA4096
	case engine.RSA8192:
		lego = certcrypto.RSA8192
	case engine.P256:
		lego = certcrypto.EC256
	case engine.P384:
		lego = certcrypto.EC384
	default:
		return nil, fmt.Errorf("%w: %q", engine.ErrUnknownKeyType, kt)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	done := make(chan keyResult, 1)
	go func() {
		key, err := certcrypto.GeneratePrivateKey(lego)
		if err != nil {
			done <- keyResult{err: err}
			return
		}
		signer, ok := key.(crypto.Signer)
		if !ok {
			done <- keyResult{err: fmt.Errorf("%w: %T", x509certs.ErrUnsupportedKey, key)}
			return
		}
		done <- keyResult{key: signer}
	}()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case r := <-done:
		return r.key, r.err
	}
}
