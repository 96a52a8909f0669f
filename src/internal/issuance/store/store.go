// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package store

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
)

var (
	// ErrNotFound indicates that an artifact does not exist in the store.
	ErrNotFound = errors.New("store: artifact not found")

	// ErrLocked indicates that another issuance run holds the store.
	ErrLocked = errors.New("store: locked by another run")

	// ErrInvalidName indicates an artifact name that would escape the store.
	ErrInvalidName = errors.New("store: invalid artifact name")
)

// Role names the owner of a key pair and its certificate.
type Role string

// Roles issued by the pipeline.
const (
	RoleCA     Role = "ca"
	RoleInter  Role = "inter"
	RoleEnd    Role = "end"
	RoleClient Role = "client"
)

// Artifact names shared by a run.
const (
	PolicyName  = "policy.yaml"
	SerialsName = "serials.yaml"
)

// Permission bits for stored artifacts.
const (
	SecretMode fs.FileMode = 0o600
	PublicMode fs.FileMode = 0o644
)

// Key is the PKCS#8 private key artifact of the role.
func (r Role) Key() string { return string(r) + ".key" }

// Request is the certificate signing request artifact of the role.
func (r Role) Request() string { return string(r) + ".req" }

// NormalizedKey is the traditional-container private key artifact of the role.
func (r Role) NormalizedKey() string { return string(r) + ".rsa" }

// Cert is the signed certificate artifact of the role.
func (r Role) Cert() string { return string(r) + ".cert" }

// Chain is the trust chain bundle of the role, excluding its own certificate.
func (r Role) Chain() string { return string(r) + ".chain" }

// FullChain is the full chain bundle of the role, leaf first.
func (r Role) FullChain() string { return string(r) + ".fullchain" }

// Store is a flat artifact store. Implementations must make Put all-or-nothing.
type Store interface {
	// Get returns the artifact bytes or an error wrapping ErrNotFound.
	Get(ctx context.Context, name string) ([]byte, error)
	// Put replaces the artifact atomically.
	Put(ctx context.Context, name string, data []byte, mode fs.FileMode) error
	// Exists reports whether the artifact is present.
	Exists(ctx context.Context, name string) (bool, error)
}

// MissingArtifactError names an artifact that a step depends on but that was
// never created.
type MissingArtifactError struct {
	Name string
}

// Error implements the error interface.
func (e *MissingArtifactError) Error() string {
	return fmt.Sprintf("store: missing artifact %q", e.Name)
}

// Unwrap makes errors.Is(err, ErrNotFound) hold.
func (e *MissingArtifactError) Unwrap() error { return ErrNotFound }

// Require returns the artifact or a [*MissingArtifactError] naming it.
func Require(ctx context.Context, s Store, name string) ([]byte, error) {
	data, err := s.Get(ctx, name)
	if errors.Is(err, ErrNotFound) {
		return nil, &MissingArtifactError{Name: name}
	}
	return data, err
}

// RequireAll fails on the first missing artifact, in order, without reading contents.
func RequireAll(ctx context.Context, s Store, names ...string) error {
	for _, name := range names {
		ok, err := s.Exists(ctx, name)
		if err != nil {
			return err
		}
		if !ok {
			return &MissingArtifactError{Name: name}
		}
	}
	return nil
}
