// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package serial_test

import (
	"context"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/x509"
	"crypto/x509/pkix"
	"math/big"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/H0llyW00dzZ/tls-cert-issuer/src/internal/issuance/serial"
	"github.com/H0llyW00dzZ/tls-cert-issuer/src/internal/issuance/store"
)

func newIssuer(t *testing.T, cn string) *x509.Certificate {
	t.Helper()

	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)

	tmpl := &x509.Certificate{
		SerialNumber:          big.NewInt(1),
		Subject:               pkix.Name{CommonName: cn},
		NotBefore:             time.Now(),
		NotAfter:              time.Now().Add(time.Hour),
		IsCA:                  true,
		BasicConstraintsValid: true,
	}
	der, err := x509.CreateCertificate(rand.Reader, tmpl, tmpl, key.Public(), key)
	require.NoError(t, err)

	cert, err := x509.ParseCertificate(der)
	require.NoError(t, err)
	return cert
}

func TestRegistry_Record(t *testing.T) {
	ca := newIssuer(t, "Example Org ECDSA CA")
	inter := newIssuer(t, "Example Org ECDSA level 2 intermediate")
	r := serial.New()

	require.NoError(t, r.Record(ca, big.NewInt(123)))
	require.NoError(t, r.Record(inter, big.NewInt(456)))
	require.NoError(t, r.Record(inter, big.NewInt(789)), "distinct serials from one issuer are fine")
	require.NoError(t, r.Record(ca, big.NewInt(456)), "serial spaces are per issuer")

	err := r.Record(inter, big.NewInt(456))
	assert.ErrorIs(t, err, serial.ErrSerialCollision)
	assert.Contains(t, err.Error(), "level 2 intermediate")

	assert.True(t, r.Contains(inter, big.NewInt(789)))
	assert.False(t, r.Contains(inter, big.NewInt(123)))
	assert.Equal(t, []string{"456", "789"}, r.Issued(inter))
	assert.Nil(t, r.Issued(newIssuer(t, "stranger")))

	assert.ErrorIs(t, r.Record(ca, big.NewInt(0)), serial.ErrInvalidSerial)
}

func TestRegistry_RegeneratedIssuer(t *testing.T) {
	r := serial.New()

	require.NoError(t, r.Record(newIssuer(t, "Example Org ECDSA CA"), big.NewInt(123)))
	assert.NoError(t, r.Record(newIssuer(t, "Example Org ECDSA CA"), big.NewInt(123)),
		"a new key under the same name is a new issuer")
}

func TestRegistry_LoadSave(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemoryStore()
	ca := newIssuer(t, "Example Org ECDSA CA")

	r, err := serial.Load(ctx, s)
	require.NoError(t, err)
	assert.Empty(t, r.Issuers)

	require.NoError(t, r.Record(ca, big.NewInt(123)))
	require.NoError(t, r.Save(ctx, s))

	reloaded, err := serial.Load(ctx, s)
	require.NoError(t, err)
	assert.ErrorIs(t, reloaded.Record(ca, big.NewInt(123)), serial.ErrSerialCollision,
		"collisions are detected across runs")

	require.NoError(t, s.Put(ctx, store.SerialsName, []byte("issuers: [broken"), store.PublicMode))
	_, err = serial.Load(ctx, s)
	assert.Error(t, err)

	require.NoError(t, s.Put(ctx, store.SerialsName, []byte("{}\n"), store.PublicMode))
	r, err = serial.Load(ctx, s)
	require.NoError(t, err)
	assert.NoError(t, r.Record(ca, big.NewInt(1)), "empty document yields a usable registry")
}

func TestParse(t *testing.T) {
	tests := []struct {
		input   string
		want    string
		wantErr bool
	}{
		{input: "123", want: "123"},
		{input: " 456 ", want: "456"},
		{input: "0x1F", want: "31"},
		{input: "0XfF", want: "255"},
		{input: "0", wantErr: true},
		{input: "-5", wantErr: true},
		{input: "abc", wantErr: true},
		{input: "", wantErr: true},
		{input: "0x" + "80" + "00000000000000000000000000000000000000", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			n, err := serial.Parse(tt.input)
			if tt.wantErr {
				assert.ErrorIs(t, err, serial.ErrInvalidSerial)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, n.String())
		})
	}
}

func TestRandom(t *testing.T) {
	seen := make(map[string]bool)
	for range 32 {
		n, err := serial.Random(nil)
		require.NoError(t, err)
		require.NoError(t, serial.Validate(n))
		assert.LessOrEqual(t, n.BitLen(), 128)
		assert.False(t, seen[n.String()])
		seen[n.String()] = true
	}
}
