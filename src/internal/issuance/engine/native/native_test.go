// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package native_test

import (
	"bytes"
	"context"
	"crypto/x509"
	"encoding/asn1"
	"encoding/pem"
	"math/big"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/H0llyW00dzZ/tls-cert-issuer/src/internal/issuance/engine"
	"github.com/H0llyW00dzZ/tls-cert-issuer/src/internal/issuance/engine/native"
	"github.com/H0llyW00dzZ/tls-cert-issuer/src/internal/issuance/policy"
	x509certs "github.com/H0llyW00dzZ/tls-cert-issuer/src/internal/x509/certs"
)

var fixedNow = time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

type fixture struct {
	eng   *native.Engine
	doc   *policy.Document
	root  *engine.KeyMaterial
	inter *engine.KeyMaterial
}

func parseCert(t *testing.T, data []byte) *x509.Certificate {
	t.Helper()
	cert, err := x509certs.New().Decode(data)
	require.NoError(t, err)
	return cert
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()

	eng := native.New(native.WithClock(func() time.Time { return fixedNow }))
	doc, err := policy.Materialize("example.org")
	require.NoError(t, err)

	root, err := eng.CreateRoot(ctx, engine.RootRequest{
		CommonName: "Example Org ECDSA CA",
		KeyType:    engine.P256,
		Digest:     engine.SHA256,
		Serial:     big.NewInt(1),
		Days:       3650,
		Profile:    policy.RootProfile(),
	})
	require.NoError(t, err)

	interReq, err := eng.CreateRequest(ctx, engine.KeyRequest{
		CommonName: "Example Org ECDSA level 2 intermediate",
		KeyType:    engine.P256,
		Digest:     engine.SHA256,
	})
	require.NoError(t, err)

	interProfile, err := doc.Profile(policy.Inter)
	require.NoError(t, err)

	interCert, err := eng.Sign(ctx, engine.SignRequest{
		Request:    interReq.Request,
		IssuerKey:  root.Key,
		IssuerCert: root.Certificate,
		Serial:     big.NewInt(123),
		Profile:    interProfile,
		AltNames:   doc.AltNames,
		Days:       3650,
		Digest:     engine.SHA256,
	})
	require.NoError(t, err)

	return &fixture{
		eng:   eng,
		doc:   doc,
		root:  root,
		inter: &engine.KeyMaterial{Key: interReq.Key, Request: interReq.Request, Certificate: interCert},
	}
}

func (f *fixture) signLeaf(t *testing.T, cn, profile string, serial int64) ([]byte, error) {
	t.Helper()
	ctx := context.Background()

	req, err := f.eng.CreateRequest(ctx, engine.KeyRequest{CommonName: cn, KeyType: engine.P256})
	require.NoError(t, err)

	p, err := f.doc.Profile(profile)
	require.NoError(t, err)

	return f.eng.Sign(ctx, engine.SignRequest{
		Request:    req.Request,
		IssuerKey:  f.inter.Key,
		IssuerCert: f.inter.Certificate,
		Serial:     big.NewInt(serial),
		Profile:    p,
		AltNames:   f.doc.AltNames,
		Days:       2000,
		Digest:     engine.SHA384,
	})
}

func findExtension(cert *x509.Certificate, oid asn1.ObjectIdentifier) (critical, ok bool) {
	for _, ext := range cert.Extensions {
		if ext.Id.Equal(oid) {
			return ext.Critical, true
		}
	}
	return false, false
}

var oidEKU = asn1.ObjectIdentifier{2, 5, 29, 37}

func TestCreateRoot(t *testing.T) {
	f := newFixture(t)
	root := parseCert(t, f.root.Certificate)

	assert.Equal(t, "Example Org ECDSA CA", root.Subject.CommonName)
	assert.Equal(t, root.Subject.String(), root.Issuer.String())
	assert.True(t, root.IsCA)
	assert.NotEmpty(t, root.SubjectKeyId)
	assert.Empty(t, root.AuthorityKeyId)
	assert.True(t, fixedNow.Equal(root.NotBefore))
	assert.True(t, fixedNow.AddDate(0, 0, 3650).Equal(root.NotAfter))
	assert.NoError(t, root.CheckSignatureFrom(root))

	block, _ := pem.Decode(f.root.Key)
	require.NotNil(t, block)
	assert.Equal(t, "PRIVATE KEY", block.Type)
	assert.Nil(t, f.root.Request)
}

func TestSign_Intermediate(t *testing.T) {
	f := newFixture(t)
	root := parseCert(t, f.root.Certificate)
	inter := parseCert(t, f.inter.Certificate)

	assert.Equal(t, "Example Org ECDSA level 2 intermediate", inter.Subject.CommonName)
	assert.Equal(t, root.Subject.CommonName, inter.Issuer.CommonName)
	assert.Equal(t, "123", inter.SerialNumber.String())
	assert.True(t, inter.IsCA)
	assert.Equal(t, []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth, x509.ExtKeyUsageClientAuth}, inter.ExtKeyUsage)
	assert.NotZero(t, inter.KeyUsage&x509.KeyUsageCertSign)
	assert.Equal(t, root.SubjectKeyId, inter.AuthorityKeyId)
	assert.NoError(t, inter.CheckSignatureFrom(root))

	critical, ok := findExtension(inter, oidEKU)
	require.True(t, ok)
	assert.True(t, critical, "extended key usage is critical")
}

func TestSign_End(t *testing.T) {
	f := newFixture(t)
	inter := parseCert(t, f.inter.Certificate)

	out, err := f.signLeaf(t, "example.org", policy.End, 456)
	require.NoError(t, err)
	end := parseCert(t, out)

	assert.Equal(t, "example.org", end.Subject.CommonName)
	assert.Equal(t, []string{"example.org"}, end.DNSNames)
	assert.False(t, end.IsCA)
	assert.True(t, end.BasicConstraintsValid)
	assert.Equal(t, x509.KeyUsageDigitalSignature|x509.KeyUsageContentCommitment, end.KeyUsage)
	assert.Empty(t, end.ExtKeyUsage)
	assert.Equal(t, inter.SubjectKeyId, end.AuthorityKeyId)
	assert.Equal(t, x509.ECDSAWithSHA384, end.SignatureAlgorithm)
	assert.True(t, fixedNow.AddDate(0, 0, 2000).Equal(end.NotAfter))
	assert.NoError(t, end.CheckSignatureFrom(inter))

	_, ok := findExtension(end, oidEKU)
	assert.False(t, ok)
}

func TestSign_Client(t *testing.T) {
	f := newFixture(t)

	out, err := f.signLeaf(t, "example client", policy.Client, 789)
	require.NoError(t, err)
	client := parseCert(t, out)

	assert.Equal(t, "example client", client.Subject.CommonName)
	assert.Equal(t, []x509.ExtKeyUsage{x509.ExtKeyUsageClientAuth}, client.ExtKeyUsage)
	assert.Empty(t, client.DNSNames, "client profile carries no SAN")

	critical, ok := findExtension(client, oidEKU)
	require.True(t, ok)
	assert.True(t, critical)
}

func TestSign_Failures(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	req, err := f.eng.CreateRequest(ctx, engine.KeyRequest{CommonName: "example.org", KeyType: engine.P256})
	require.NoError(t, err)
	end, err := f.doc.Profile(policy.End)
	require.NoError(t, err)

	leaf, err := f.signLeaf(t, "leaf", policy.End, 456)
	require.NoError(t, err)

	tampered := bytes.Clone(req.Request)
	block, _ := pem.Decode(tampered)
	block.Bytes[len(block.Bytes)-1] ^= 0xff
	tampered = pem.EncodeToMemory(block)

	base := engine.SignRequest{
		Request:    req.Request,
		IssuerKey:  f.inter.Key,
		IssuerCert: f.inter.Certificate,
		Serial:     big.NewInt(1000),
		Profile:    end,
		AltNames:   f.doc.AltNames,
		Days:       2000,
	}

	tests := []struct {
		name    string
		mutate  func(r *engine.SignRequest)
		wantErr error
	}{
		{
			name:    "Issuer Not CA",
			mutate:  func(r *engine.SignRequest) { r.IssuerCert = leaf },
			wantErr: engine.ErrNotCA,
		},
		{
			name:    "Issuer Key Mismatch",
			mutate:  func(r *engine.SignRequest) { r.IssuerKey = f.root.Key },
			wantErr: engine.ErrKeyMismatch,
		},
		{
			name:    "Tampered Request",
			mutate:  func(r *engine.SignRequest) { r.Request = tampered },
			wantErr: x509certs.ErrParseRequest,
		},
		{
			name:    "Unknown Usage In Profile",
			mutate:  func(r *engine.SignRequest) { r.Profile.KeyUsage = []string{"everything"} },
			wantErr: policy.ErrUnknownUsage,
		},
		{
			name:    "Missing Issuer Key",
			mutate:  func(r *engine.SignRequest) { r.IssuerKey = nil },
			wantErr: engine.ErrInvalidRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := base
			tt.mutate(&r)

			out, err := f.eng.Sign(ctx, r)
			assert.Nil(t, out)
			assert.ErrorIs(t, err, tt.wantErr)

			var engErr *engine.Error
			require.ErrorAs(t, err, &engErr)
			assert.Equal(t, native.Name, engErr.Engine)
			assert.Equal(t, "sign", engErr.Op)
		})
	}
}

func TestNormalizeKey(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	out, err := f.eng.NormalizeKey(ctx, f.inter.Key)
	require.NoError(t, err)

	block, _ := pem.Decode(out)
	require.NotNil(t, block)
	assert.Equal(t, "EC PRIVATE KEY", block.Type)

	normalized, err := x509certs.DecodePrivateKey(out)
	require.NoError(t, err)
	assert.True(t, x509certs.KeyMatches(normalized, parseCert(t, f.inter.Certificate).PublicKey))

	_, err = f.eng.NormalizeKey(ctx, []byte("nope"))
	assert.ErrorIs(t, err, x509certs.ErrParsePrivateKey)
}

func TestCancelledContext(t *testing.T) {
	eng := native.New()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := eng.CreateRequest(ctx, engine.KeyRequest{CommonName: "x", KeyType: engine.RSA8192})
	assert.ErrorIs(t, err, context.Canceled)

	_, err = eng.NormalizeKey(ctx, nil)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestCreateRequest_RSA(t *testing.T) {
	if testing.Short() {
		t.Skip("RSA-4096 key generation is slow")
	}

	req, err := native.New().CreateRequest(context.Background(), engine.KeyRequest{
		CommonName: "example.org",
		KeyType:    engine.RSA4096,
		Digest:     engine.SHA512,
	})
	require.NoError(t, err)

	csr, err := x509certs.DecodeRequest(req.Request)
	require.NoError(t, err)
	assert.Equal(t, x509.SHA512WithRSA, csr.SignatureAlgorithm)

	out, err := native.New().NormalizeKey(context.Background(), req.Key)
	require.NoError(t, err)
	assert.Contains(t, string(out), "BEGIN RSA PRIVATE KEY")
}
