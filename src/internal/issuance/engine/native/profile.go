// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package native

import (
	"crypto"
	"crypto/ecdsa"
	"crypto/rsa"
	"crypto/sha1"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/asn1"

	"github.com/H0llyW00dzZ/tls-cert-issuer/src/internal/issuance/engine"
	"github.com/H0llyW00dzZ/tls-cert-issuer/src/internal/issuance/policy"
)

var oidExtKeyUsage = asn1.ObjectIdentifier{2, 5, 29, 37}

// applyProfile translates an extension profile onto a certificate template.
//
// crypto/x509 always marks basic constraints and key usage critical. The
// authority key identifier is filled in from the issuer's subject key identifier
// whenever the certificate is not self-signed.
func applyProfile(tmpl *x509.Certificate, p policy.Profile, altNames []string, pub crypto.PublicKey) error {
	ku, err := p.X509KeyUsage()
	if err != nil {
		return err
	}
	eku, err := p.X509ExtKeyUsage()
	if err != nil {
		return err
	}

	tmpl.BasicConstraintsValid = true
	tmpl.IsCA = p.CA
	tmpl.KeyUsage = ku

	if p.ExtKeyUsageCritical && len(eku) > 0 {
		// An explicit extension takes precedence over tmpl.ExtKeyUsage.
		oids, err := p.ExtKeyUsageOIDs()
		if err != nil {
			return err
		}
		value, err := asn1.Marshal(oids)
		if err != nil {
			return err
		}
		tmpl.ExtraExtensions = append(tmpl.ExtraExtensions, pkix.Extension{
			Id:       oidExtKeyUsage,
			Critical: true,
			Value:    value,
		})
	}
	tmpl.ExtKeyUsage = eku

	if p.SubjectKeyID {
		ski, err := subjectKeyID(pub)
		if err != nil {
			return err
		}
		tmpl.SubjectKeyId = ski
	}

	if p.SubjectAltNames {
		doc := policy.Document{AltNames: altNames}
		tmpl.DNSNames, tmpl.IPAddresses = doc.SplitAltNames()
	}

	return nil
}

// subjectKeyID is the RFC 5280 method 1 identifier: the SHA-1 hash of the
// subjectPublicKey bit string.
func subjectKeyID(pub crypto.PublicKey) ([]byte, error) {
	b, err := x509.MarshalPKIXPublicKey(pub)
	if err != nil {
		return nil, err
	}

	var info struct {
		Algorithm        pkix.AlgorithmIdentifier
		SubjectPublicKey asn1.BitString
	}
	if _, err := asn1.Unmarshal(b, &info); err != nil {
		return nil, err
	}

	sum := sha1.Sum(info.SubjectPublicKey.Bytes)
	return sum[:], nil
}

// signatureAlgorithm picks the signature algorithm for a signing key and digest.
func signatureAlgorithm(pub crypto.PublicKey, d engine.Digest) x509.SignatureAlgorithm {
	switch pub.(type) {
	case *rsa.PublicKey:
		switch d {
		case engine.SHA384:
			return x509.SHA384WithRSA
		case engine.SHA512:
			return x509.SHA512WithRSA
		default:
			return x509.SHA256WithRSA
		}
	case *ecdsa.PublicKey:
		switch d {
		case engine.SHA384:
			return x509.ECDSAWithSHA384
		case engine.SHA512:
			return x509.ECDSAWithSHA512
		default:
			return x509.ECDSAWithSHA256
		}
	default:
		return x509.UnknownSignatureAlgorithm
	}
}
