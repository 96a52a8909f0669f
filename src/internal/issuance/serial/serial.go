// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

// Package serial tracks the serial numbers each issuer has used, so that no
// issuer signs two certificates with the same serial.
//
// Issuers are keyed by the SHA-256 fingerprint of their certificate. A
// regenerated CA therefore starts with an empty serial space.
package serial

import (
	"context"
	"crypto/rand"
	"crypto/x509"
	"errors"
	"fmt"
	"io"
	"math/big"
	"slices"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/H0llyW00dzZ/tls-cert-issuer/src/internal/issuance/store"
	x509certs "github.com/H0llyW00dzZ/tls-cert-issuer/src/internal/x509/certs"
)

var (
	// ErrSerialCollision indicates a serial already issued by the same issuer.
	ErrSerialCollision = errors.New("serial: serial number already issued by this issuer")

	// ErrInvalidSerial indicates a serial that is not a positive integer of at most 20 octets.
	ErrInvalidSerial = errors.New("serial: invalid serial number")
)

// maxSerial is the exclusive upper bound of a 20-octet positive serial.
var maxSerial = new(big.Int).Lsh(big.NewInt(1), 159)

// Issuer is the registry entry of one issuing certificate.
type Issuer struct {
	Subject string   `yaml:"subject"`
	Serials []string `yaml:"serials"`
}

// Registry records serials per issuer.
//
// Registry is safe for concurrent use by multiple goroutines.
type Registry struct {
	mu      sync.Mutex
	Issuers map[string]*Issuer `yaml:"issuers"`
}

// New returns an empty registry.
func New() *Registry {
	return &Registry{Issuers: make(map[string]*Issuer)}
}

// Load reads the registry from the store. A missing registry yields an empty one.
func Load(ctx context.Context, s store.Store) (*Registry, error) {
	data, err := s.Get(ctx, store.SerialsName)
	if errors.Is(err, store.ErrNotFound) {
		return New(), nil
	}
	if err != nil {
		return nil, err
	}

	r := New()
	if err := yaml.Unmarshal(data, r); err != nil {
		return nil, fmt.Errorf("serial: decode %s: %w", store.SerialsName, err)
	}
	if r.Issuers == nil {
		r.Issuers = make(map[string]*Issuer)
	}
	return r, nil
}

// Save writes the registry to the store.
func (r *Registry) Save(ctx context.Context, s store.Store) error {
	r.mu.Lock()
	data, err := yaml.Marshal(r)
	r.mu.Unlock()
	if err != nil {
		return err
	}
	return s.Put(ctx, store.SerialsName, data, store.PublicMode)
}

// Contains reports whether the issuer already used the serial.
func (r *Registry) Contains(issuer *x509.Certificate, serial *big.Int) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry, ok := r.Issuers[x509certs.Fingerprint(issuer)]
	return ok && slices.Contains(entry.Serials, serial.String())
}

// Record claims the serial for the issuer, failing with [ErrSerialCollision] if
// it was already claimed.
func (r *Registry) Record(issuer *x509.Certificate, serial *big.Int) error {
	if err := Validate(serial); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	fp := x509certs.Fingerprint(issuer)
	entry, ok := r.Issuers[fp]
	if !ok {
		entry = &Issuer{Subject: issuer.Subject.CommonName}
		r.Issuers[fp] = entry
	}

	s := serial.String()
	if slices.Contains(entry.Serials, s) {
		return fmt.Errorf("%w: %s (issuer %q)", ErrSerialCollision, s, entry.Subject)
	}

	entry.Serials = append(entry.Serials, s)
	return nil
}

// Issued returns the serials recorded for the issuer, in issuance order.
func (r *Registry) Issued(issuer *x509.Certificate) []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry, ok := r.Issuers[x509certs.Fingerprint(issuer)]
	if !ok {
		return nil
	}
	return slices.Clone(entry.Serials)
}

// Parse parses a decimal or 0x-prefixed hexadecimal serial.
func Parse(s string) (*big.Int, error) {
	s = strings.TrimSpace(s)

	base := 10
	if rest, ok := strings.CutPrefix(strings.ToLower(s), "0x"); ok {
		s, base = rest, 16
	}

	n, ok := new(big.Int).SetString(s, base)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrInvalidSerial, s)
	}
	if err := Validate(n); err != nil {
		return nil, err
	}
	return n, nil
}

// Validate checks that the serial is positive and fits in 20 octets.
func Validate(n *big.Int) error {
	if n == nil || n.Sign() <= 0 || n.Cmp(maxSerial) >= 0 {
		return fmt.Errorf("%w: %v", ErrInvalidSerial, n)
	}
	return nil
}

// Random returns a uniformly random positive 128-bit serial.
func Random(rnd io.Reader) (*big.Int, error) {
	if rnd == nil {
		rnd = rand.Reader
	}

	limit := new(big.Int).Lsh(big.NewInt(1), 128)
	for {
		n, err := rand.Int(rnd, limit)
		if err != nil {
			return nil, err
		}
		if n.Sign() > 0 {
			return n, nil
		}
	}
}
