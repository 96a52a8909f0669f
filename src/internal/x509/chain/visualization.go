// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package x509chain

import (
	"crypto/ecdsa"
	"crypto/rsa"
	"crypto/x509"
	"encoding/json"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/renderer"
	"github.com/olekukonko/tablewriter/tw"
)

// Roles reported by the renderers.
const (
	RoleSelfSigned   = "Self-Signed Certificate"
	RoleRoot         = "Root CA Certificate"
	RoleIntermediate = "Intermediate CA Certificate"
	RoleServer       = "End-Entity (Server) Certificate"
	RoleClient       = "Client Certificate"
)

// RenderASCIITree renders the certificate chain as an ASCII tree diagram.
//
// Each line carries a validity marker: [✓] when the certificate is inside its
// validity window, [✗] otherwise.
//
// Thread Safety: Safe for concurrent use.
func (ch *Chain) RenderASCIITree() string {
	ch.mu.RLock()
	defer ch.mu.RUnlock()

	if len(ch.Certs) == 0 {
		return "No certificates in chain"
	}

	now := ch.clock()

	var result strings.Builder
	for i, cert := range ch.Certs {
		connector := "├── "
		if i == len(ch.Certs)-1 {
			connector = "└── "
		}

		statusIcon := "✓"
		if now.Before(cert.NotBefore) || now.After(cert.NotAfter) {
			statusIcon = "✗"
		}

		fmt.Fprintf(&result, "%s[%s] %s (%s)\n", connector, statusIcon, cert.Subject.CommonName, ch.getCertificateRole(i))
	}

	return result.String()
}

// RenderTable renders the certificate chain as a formatted markdown table.
//
// It displays role, subject, issuer, serial, expiry, key and extended key usage
// for every certificate using tablewriter.
//
// Thread Safety: Safe for concurrent use.
func (ch *Chain) RenderTable() string {
	ch.mu.RLock()
	defer ch.mu.RUnlock()

	if len(ch.Certs) == 0 {
		return "No certificates to display"
	}

	var buf strings.Builder
	table := tablewriter.NewTable(&buf,
		tablewriter.WithRenderer(renderer.NewMarkdown(tw.Rendition{Streaming: true})),
		tablewriter.WithHeaderAutoFormat(tw.Off),
	)

	table.Header([]string{"#", "Role", "Subject", "Issuer", "Serial", "Valid Until", "Key", "Extended Key Usage"})

	var rows [][]string
	for i, cert := range ch.Certs {
		_, keyDesc := describeKey(cert)
		rows = append(rows, []string{
			fmt.Sprintf("%d", i+1),
			ch.getCertificateRole(i),
			cert.Subject.CommonName,
			cert.Issuer.CommonName,
			cert.SerialNumber.String(),
			cert.NotAfter.Format("2006-01-02"),
			keyDesc,
			strings.Join(ExtKeyUsageNames(cert), ", "),
		})
	}

	table.Bulk(rows)
	table.Render()
	return buf.String()
}

// ToVisualizationJSON converts the certificate chain to structured JSON for external tools.
//
// Relationships are derived from signatures, not from positions, so a misordered
// bundle shows up as such.
//
// Returns:
//   - []byte: JSON representation of the certificate chain
//   - error: Error if JSON marshaling fails
//
// Thread Safety: Safe for concurrent use.
func (ch *Chain) ToVisualizationJSON() ([]byte, error) {
	ch.mu.RLock()
	defer ch.mu.RUnlock()

	type CertificateVizData struct {
		Index              int       `json:"index"`
		Role               string    `json:"role"`
		Subject            string    `json:"subject"`
		Issuer             string    `json:"issuer"`
		SerialNumber       string    `json:"serialNumber"`
		SignatureAlgorithm string    `json:"signatureAlgorithm"`
		PublicKeyAlgorithm string    `json:"publicKeyAlgorithm"`
		KeySize            int       `json:"keySize"`
		NotBefore          time.Time `json:"notBefore"`
		NotAfter           time.Time `json:"notAfter"`
		IsCA               bool      `json:"isCA"`
		DNSNames           []string  `json:"dnsNames,omitempty"`
		ExtKeyUsage        []string  `json:"extKeyUsage,omitempty"`
	}

	type RelationshipData struct {
		FromIndex int    `json:"fromIndex"`
		ToIndex   int    `json:"toIndex"`
		Type      string `json:"type"`
	}

	type VisualizationData struct {
		Timestamp     string               `json:"timestamp"`
		ChainLength   int                  `json:"chainLength"`
		Certificates  []CertificateVizData `json:"certificates"`
		Relationships []RelationshipData   `json:"relationships"`
	}

	data := VisualizationData{
		Timestamp:     ch.clock().UTC().Format(time.RFC3339),
		ChainLength:   len(ch.Certs),
		Certificates:  make([]CertificateVizData, len(ch.Certs)),
		Relationships: make([]RelationshipData, 0, len(ch.Certs)),
	}

	for i, cert := range ch.Certs {
		algo, _ := describeKey(cert)
		keySize := 0
		switch pub := cert.PublicKey.(type) {
		case *rsa.PublicKey:
			keySize = pub.Size() * 8
		case *ecdsa.PublicKey:
			keySize = pub.Curve.Params().BitSize
		}

		data.Certificates[i] = CertificateVizData{
			Index:              i,
			Role:               ch.getCertificateRole(i),
			Subject:            cert.Subject.CommonName,
			Issuer:             cert.Issuer.CommonName,
			SerialNumber:       cert.SerialNumber.String(),
			SignatureAlgorithm: cert.SignatureAlgorithm.String(),
			PublicKeyAlgorithm: algo,
			KeySize:            keySize,
			NotBefore:          cert.NotBefore,
			NotAfter:           cert.NotAfter,
			IsCA:               cert.IsCA,
			DNSNames:           cert.DNSNames,
			ExtKeyUsage:        ExtKeyUsageNames(cert),
		}

		switch issuer := ch.findIssuerForCertificate(cert); {
		case issuer == i:
			data.Relationships = append(data.Relationships, RelationshipData{FromIndex: i, ToIndex: i, Type: "self_signed"})
		case issuer >= 0:
			data.Relationships = append(data.Relationships, RelationshipData{FromIndex: i, ToIndex: issuer, Type: "signed_by"})
		}
	}

	return json.MarshalIndent(data, "", "  ")
}

// ExtKeyUsageNames returns the OpenSSL short names of the certificate's extended key usages.
func ExtKeyUsageNames(cert *x509.Certificate) []string {
	names := make([]string, 0, len(cert.ExtKeyUsage))
	for _, u := range cert.ExtKeyUsage {
		switch u {
		case x509.ExtKeyUsageServerAuth:
			names = append(names, "serverAuth")
		case x509.ExtKeyUsageClientAuth:
			names = append(names, "clientAuth")
		case x509.ExtKeyUsageCodeSigning:
			names = append(names, "codeSigning")
		case x509.ExtKeyUsageEmailProtection:
			names = append(names, "emailProtection")
		case x509.ExtKeyUsageTimeStamping:
			names = append(names, "timeStamping")
		case x509.ExtKeyUsageOCSPSigning:
			names = append(names, "OCSPSigning")
		case x509.ExtKeyUsageAny:
			names = append(names, "anyExtendedKeyUsage")
		default:
			names = append(names, fmt.Sprintf("unknown(%d)", u))
		}
	}
	return names
}

func describeKey(cert *x509.Certificate) (algo, desc string) {
	switch pub := cert.PublicKey.(type) {
	case *rsa.PublicKey:
		return "RSA", fmt.Sprintf("%d-bit RSA", pub.Size()*8)
	case *ecdsa.PublicKey:
		return "ECDSA", fmt.Sprintf("%s ECDSA", pub.Curve.Params().Name)
	default:
		return "unknown", "unknown"
	}
}

func (ch *Chain) clock() time.Time {
	if ch.now.IsZero() {
		return time.Now()
	}
	return ch.now
}

// getCertificateRole classifies a certificate from its own extensions rather than
// its position, so trust chains that start at an intermediate render correctly.
//
// Thread Safety: Caller must hold at least a read lock.
func (ch *Chain) getCertificateRole(index int) string {
	cert := ch.Certs[index]
	switch {
	case len(ch.Certs) == 1 && ch.IsSelfSigned(cert):
		return RoleSelfSigned
	case cert.IsCA && ch.IsSelfSigned(cert):
		return RoleRoot
	case cert.IsCA:
		return RoleIntermediate
	case slices.Contains(cert.ExtKeyUsage, x509.ExtKeyUsageClientAuth) &&
		!slices.Contains(cert.ExtKeyUsage, x509.ExtKeyUsageServerAuth):
		return RoleClient
	default:
		return RoleServer
	}
}
