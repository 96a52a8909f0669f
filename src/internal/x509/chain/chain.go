// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package x509chain

import (
	"crypto/x509"
	"errors"
	"fmt"
	"sync"
	"time"

	x509certs "github.com/H0llyW00dzZ/tls-cert-issuer/src/internal/x509/certs"
)

var (
	// ErrEmptyChain indicates a chain without any certificate.
	ErrEmptyChain = errors.New("x509chain: chain is empty")

	// ErrUnanchored indicates that the last certificate of a chain is not self-signed.
	ErrUnanchored = errors.New("x509chain: chain does not end at a self-signed root")
)

// BrokenLinkError reports a certificate that was not signed by its successor.
type BrokenLinkError struct {
	Index   int    // position of the certificate whose signature did not verify
	Subject string // its common name
	Err     error
}

// Error implements the error interface.
func (e *BrokenLinkError) Error() string {
	return fmt.Sprintf("x509chain: certificate %d (%s) is not signed by its successor: %v", e.Index, e.Subject, e.Err)
}

// Unwrap returns the underlying signature error.
func (e *BrokenLinkError) Unwrap() error { return e.Err }

// Chain manages an ordered [X.509] certificate bundle, leaf first and root last.
//
// [X.509]: https://grokipedia.com/page/X.509
type Chain struct {
	mu    sync.RWMutex
	Certs []*x509.Certificate
	*x509certs.Certificate

	// now is the verification time; zero means time.Now.
	now time.Time
}

// New creates a new Chain from certificates in bundle order.
func New(certs ...*x509.Certificate) *Chain {
	return &Chain{
		Certs:       certs,
		Certificate: x509certs.New(),
	}
}

// Parse decodes a PEM, DER or PKCS7 bundle into a Chain.
//
// Parameters:
//   - data: Bundle bytes as written by the chain builder
//
// Returns:
//   - *Chain: Chain in file order
//   - error: Error if the bundle cannot be decoded
func Parse(data []byte) (*Chain, error) {
	codec := x509certs.New()
	certs, err := codec.DecodeBundle(data)
	if err != nil {
		return nil, err
	}

	return &Chain{Certs: certs, Certificate: codec}, nil
}

// At pins the time used by [Chain.VerifyChain].
func (ch *Chain) At(t time.Time) *Chain {
	ch.mu.Lock()
	defer ch.mu.Unlock()

	ch.now = t
	return ch
}

// Leaf returns the first certificate, or nil for an empty chain.
func (ch *Chain) Leaf() *x509.Certificate {
	ch.mu.RLock()
	defer ch.mu.RUnlock()

	if len(ch.Certs) == 0 {
		return nil
	}
	return ch.Certs[0]
}

// Bundle encodes the chain back to concatenated PEM.
func (ch *Chain) Bundle() []byte {
	ch.mu.RLock()
	defer ch.mu.RUnlock()

	return ch.EncodeBundlePEM(ch.Certs)
}

// IsSelfSigned checks if a certificate is self-signed.
//
// It verifies the certificate's signature against itself.
func (ch *Chain) IsSelfSigned(cert *x509.Certificate) bool {
	return cert.CheckSignatureFrom(cert) == nil
}

// IsRootNode determines if a certificate is a root node in the chain.
func (ch *Chain) IsRootNode(cert *x509.Certificate) bool {
	return ch.IsSelfSigned(cert)
}

// FilterIntermediates filters out the root and leaf certificates, returning only intermediates.
//
// Returns:
//   - []*x509.Certificate: Slice of intermediate certificates, or nil if none
//
// Thread Safety: Safe for concurrent use.
func (ch *Chain) FilterIntermediates() []*x509.Certificate {
	ch.mu.RLock()
	defer ch.mu.RUnlock()

	if len(ch.Certs) <= 2 {
		return nil
	}
	return ch.Certs[1 : len(ch.Certs)-1]
}

// VerifyOrder checks that every certificate is signed by the one that follows it
// and that the last one is a self-signed root.
//
// Returns:
//   - error: [ErrEmptyChain], [*BrokenLinkError] or [ErrUnanchored]
//
// Thread Safety: Safe for concurrent use.
func (ch *Chain) VerifyOrder() error {
	ch.mu.RLock()
	defer ch.mu.RUnlock()

	if len(ch.Certs) == 0 {
		return ErrEmptyChain
	}

	for i := 0; i < len(ch.Certs)-1; i++ {
		if err := ch.Certs[i].CheckSignatureFrom(ch.Certs[i+1]); err != nil {
			return &BrokenLinkError{Index: i, Subject: ch.Certs[i].Subject.CommonName, Err: err}
		}
	}

	if !ch.IsRootNode(ch.Certs[len(ch.Certs)-1]) {
		return ErrUnanchored
	}

	return nil
}

// VerifyChain checks link order and then verifies the leaf through the chain's own
// intermediates up to its own root, for the requested extended key usages.
//
// An empty usages list means any usage is accepted.
//
// Parameters:
//   - usages: Extended key usages the leaf must be valid for
//
// Returns:
//   - error: Error if ordering or path verification fails
func (ch *Chain) VerifyChain(usages ...x509.ExtKeyUsage) error {
	if err := ch.VerifyOrder(); err != nil {
		return err
	}

	ch.mu.RLock()
	defer ch.mu.RUnlock()

	roots := x509.NewCertPool()
	intermediates := x509.NewCertPool()
	for i, cert := range ch.Certs {
		if i == len(ch.Certs)-1 {
			roots.AddCert(cert)
		} else {
			intermediates.AddCert(cert)
		}
	}

	if len(usages) == 0 {
		usages = []x509.ExtKeyUsage{x509.ExtKeyUsageAny}
	}

	opts := x509.VerifyOptions{
		Roots:         roots,
		Intermediates: intermediates,
		KeyUsages:     usages,
		CurrentTime:   ch.now,
	}

	if _, err := ch.Certs[0].Verify(opts); err != nil {
		// Return the original error to preserve detailed diagnostic information
		// (e.g., expiration, incompatible usage).
		return err
	}

	return nil
}

// findIssuerForCertificate finds the certificate that issued the given cert in the chain.
//
// It iterates backwards through the chain to find a certificate that has signed
// the provided certificate.
//
// Returns:
//   - int: Index of the issuer, or -1 if not found
//
// Thread Safety: Caller must hold at least a read lock.
func (ch *Chain) findIssuerForCertificate(cert *x509.Certificate) int {
	for i := len(ch.Certs) - 1; i >= 0; i-- {
		potentialIssuer := ch.Certs[i]
		if potentialIssuer == cert && !ch.IsSelfSigned(cert) {
			continue
		}
		if err := cert.CheckSignatureFrom(potentialIssuer); err == nil {
			return i
		}
	}
	return -1
}
