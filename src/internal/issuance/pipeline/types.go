// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package pipeline

import (
	"crypto/x509"
	"math/big"

	"github.com/H0llyW00dzZ/tls-cert-issuer/src/internal/issuance/store"
)

// AuthorityRequest is the input of [Issuer.IssueAuthority].
type AuthorityRequest struct {
	AuthorityName string // e.g. "Example Org"
	ServerName    string // e.g. "example.org"

	// Optional serial overrides; nil falls back to the issuer options.
	InterSerial *big.Int
	EndSerial   *big.Int
}

// ClientRequest is the input of [Issuer.IssueClient].
type ClientRequest struct {
	ClientName string // e.g. "example"

	// Serial overrides the issuer options when set.
	Serial *big.Int
}

// SignSpec is the input of [Issuer.Sign].
type SignSpec struct {
	Role    store.Role // requester whose CSR is signed
	Issuer  store.Role // issuer whose key and certificate sign it
	Serial  *big.Int   // nil draws a random serial
	Profile string     // declared extension profile name
	Days    int
}

// KeyPair is the output of [Issuer.GenerateKeyPair].
type KeyPair struct {
	Role    store.Role
	Key     []byte // PKCS#8 PEM
	Request []byte // CSR PEM
}

// Certificate is a signed certificate held by the store.
type Certificate struct {
	Role store.Role
	PEM  []byte
	Cert *x509.Certificate
}

// Chain is a bundle file built from role certificates.
type Chain struct {
	Name  string
	Roles []store.Role
	PEM   []byte
	Certs []*x509.Certificate
}

// Issuance collects the results of a flow, in issuance order.
type Issuance struct {
	Certificates []*Certificate
	Chains       []*Chain
}

// Certificate returns the issued certificate of a role, or nil.
func (is *Issuance) Certificate(role store.Role) *Certificate {
	for _, c := range is.Certificates {
		if c.Role == role {
			return c
		}
	}
	return nil
}

// Chain returns the built chain with the given file name, or nil.
func (is *Issuance) Chain(name string) *Chain {
	for _, c := range is.Chains {
		if c.Name == name {
			return c
		}
	}
	return nil
}
