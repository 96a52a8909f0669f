// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package x509chain_test

import (
	"crypto/x509"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	x509chain "github.com/H0llyW00dzZ/tls-cert-issuer/src/internal/x509/chain"
)

func TestRenderASCIITree(t *testing.T) {
	root, inter, server, client := hierarchy(t)

	tests := []struct {
		name     string
		chain    *x509chain.Chain
		expected []string
	}{
		{
			name:  "Server Fullchain",
			chain: x509chain.New(server.cert, inter.cert, root.cert),
			expected: []string{
				"├── [✓] example.org (" + x509chain.RoleServer + ")",
				"├── [✓] Example Org ECDSA level 2 intermediate (" + x509chain.RoleIntermediate + ")",
				"└── [✓] Example Org ECDSA CA (" + x509chain.RoleRoot + ")",
			},
		},
		{
			name:  "Client Fullchain",
			chain: x509chain.New(client.cert, inter.cert, root.cert),
			expected: []string{
				"├── [✓] example client (" + x509chain.RoleClient + ")",
			},
		},
		{
			name:  "Single Root",
			chain: x509chain.New(root.cert),
			expected: []string{
				"└── [✓] Example Org ECDSA CA (" + x509chain.RoleSelfSigned + ")",
			},
		},
		{
			name:     "Expired",
			chain:    x509chain.New(server.cert).At(time.Now().Add(72 * time.Hour)),
			expected: []string{"└── [✗] example.org"},
		},
		{
			name:     "Empty",
			chain:    x509chain.New(),
			expected: []string{"No certificates in chain"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := tt.chain.RenderASCIITree()
			for _, want := range tt.expected {
				assert.Contains(t, out, want)
			}
		})
	}
}

func TestRenderTable(t *testing.T) {
	root, inter, _, client := hierarchy(t)

	out := x509chain.New(client.cert, inter.cert, root.cert).RenderTable()

	assert.Contains(t, out, "|")
	assert.Contains(t, out, "Valid Until")
	assert.Contains(t, out, "Extended Key Usage")
	assert.NotContains(t, out, "EXTENDED KEY USAGE")
	assert.Contains(t, out, "example client")
	assert.Contains(t, out, "789")
	assert.Contains(t, out, "P-256 ECDSA")
	assert.Contains(t, out, "serverAuth, clientAuth")

	assert.Equal(t, "No certificates to display", x509chain.New().RenderTable())
}

func TestToVisualizationJSON(t *testing.T) {
	root, inter, server, _ := hierarchy(t)

	raw, err := x509chain.New(server.cert, inter.cert, root.cert).ToVisualizationJSON()
	require.NoError(t, err)

	var data struct {
		ChainLength  int `json:"chainLength"`
		Certificates []struct {
			Role               string   `json:"role"`
			Subject            string   `json:"subject"`
			PublicKeyAlgorithm string   `json:"publicKeyAlgorithm"`
			KeySize            int      `json:"keySize"`
			IsCA               bool     `json:"isCA"`
			DNSNames           []string `json:"dnsNames"`
		} `json:"certificates"`
		Relationships []struct {
			FromIndex int    `json:"fromIndex"`
			ToIndex   int    `json:"toIndex"`
			Type      string `json:"type"`
		} `json:"relationships"`
	}
	require.NoError(t, json.Unmarshal(raw, &data))

	assert.Equal(t, 3, data.ChainLength)
	require.Len(t, data.Certificates, 3)
	assert.Equal(t, []string{"example.org"}, data.Certificates[0].DNSNames)
	assert.Equal(t, "ECDSA", data.Certificates[0].PublicKeyAlgorithm)
	assert.Equal(t, 256, data.Certificates[0].KeySize)
	assert.True(t, data.Certificates[2].IsCA)

	require.Len(t, data.Relationships, 3)
	assert.Equal(t, "signed_by", data.Relationships[0].Type)
	assert.Equal(t, 1, data.Relationships[0].ToIndex)
	assert.Equal(t, 2, data.Relationships[1].ToIndex)
	assert.Equal(t, "self_signed", data.Relationships[2].Type)
}

func TestExtKeyUsageNames(t *testing.T) {
	cert := &x509.Certificate{ExtKeyUsage: []x509.ExtKeyUsage{
		x509.ExtKeyUsageServerAuth,
		x509.ExtKeyUsageClientAuth,
		x509.ExtKeyUsageOCSPSigning,
	}}

	assert.Equal(t, []string{"serverAuth", "clientAuth", "OCSPSigning"}, x509chain.ExtKeyUsageNames(cert))
	assert.Empty(t, x509chain.ExtKeyUsageNames(&x509.Certificate{}))
}
