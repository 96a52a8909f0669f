// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package policy

import (
	"crypto/x509"
	"encoding/asn1"
	"fmt"
)

var keyUsages = map[string]x509.KeyUsage{
	"digitalSignature": x509.KeyUsageDigitalSignature,
	"nonRepudiation":   x509.KeyUsageContentCommitment,
	"keyEncipherment":  x509.KeyUsageKeyEncipherment,
	"dataEncipherment": x509.KeyUsageDataEncipherment,
	"keyAgreement":     x509.KeyUsageKeyAgreement,
	"keyCertSign":      x509.KeyUsageCertSign,
	"cRLSign":          x509.KeyUsageCRLSign,
	"encipherOnly":     x509.KeyUsageEncipherOnly,
	"decipherOnly":     x509.KeyUsageDecipherOnly,
}

var extKeyUsages = map[string]x509.ExtKeyUsage{
	"serverAuth":      x509.ExtKeyUsageServerAuth,
	"clientAuth":      x509.ExtKeyUsageClientAuth,
	"codeSigning":     x509.ExtKeyUsageCodeSigning,
	"emailProtection": x509.ExtKeyUsageEmailProtection,
	"timeStamping":    x509.ExtKeyUsageTimeStamping,
	"OCSPSigning":     x509.ExtKeyUsageOCSPSigning,
}

var extKeyUsageOIDs = map[string]asn1.ObjectIdentifier{
	"serverAuth":      {1, 3, 6, 1, 5, 5, 7, 3, 1},
	"clientAuth":      {1, 3, 6, 1, 5, 5, 7, 3, 2},
	"codeSigning":     {1, 3, 6, 1, 5, 5, 7, 3, 3},
	"emailProtection": {1, 3, 6, 1, 5, 5, 7, 3, 4},
	"timeStamping":    {1, 3, 6, 1, 5, 5, 7, 3, 8},
	"OCSPSigning":     {1, 3, 6, 1, 5, 5, 7, 3, 9},
}

// X509KeyUsage folds the profile's key usage names into a bit set.
func (p Profile) X509KeyUsage() (x509.KeyUsage, error) {
	var ku x509.KeyUsage
	for _, name := range p.KeyUsage {
		bit, ok := keyUsages[name]
		if !ok {
			return 0, fmt.Errorf("%w: %q", ErrUnknownUsage, name)
		}
		ku |= bit
	}
	return ku, nil
}

// X509ExtKeyUsage maps the profile's extended key usage names, keeping their order.
func (p Profile) X509ExtKeyUsage() ([]x509.ExtKeyUsage, error) {
	if len(p.ExtKeyUsage) == 0 {
		return nil, nil
	}

	out := make([]x509.ExtKeyUsage, 0, len(p.ExtKeyUsage))
	for _, name := range p.ExtKeyUsage {
		eku, ok := extKeyUsages[name]
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownExtUsage, name)
		}
		out = append(out, eku)
	}
	return out, nil
}

// ExtKeyUsageOIDs maps the profile's extended key usage names to their object identifiers.
func (p Profile) ExtKeyUsageOIDs() ([]asn1.ObjectIdentifier, error) {
	out := make([]asn1.ObjectIdentifier, 0, len(p.ExtKeyUsage))
	for _, name := range p.ExtKeyUsage {
		oid, ok := extKeyUsageOIDs[name]
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownExtUsage, name)
		}
		out = append(out, oid)
	}
	return out, nil
}
