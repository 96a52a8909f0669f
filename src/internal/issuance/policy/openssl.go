// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package policy

import (
	"fmt"
	"net"
	"strings"
)

// SectionName returns the OpenSSL extension section name of a profile.
func SectionName(profile string) string { return "v3_" + profile }

// OpenSSLConfig renders the whole document in OpenSSL extension file syntax:
// one v3_<name> section per profile followed by an alt_names section.
func (d *Document) OpenSSLConfig() string {
	var b strings.Builder
	for _, p := range d.Profiles {
		b.WriteString(RenderOpenSSL(p))
		b.WriteByte('\n')
	}

	b.WriteString("[ alt_names ]\n")
	var dnsN, ipN int
	for _, name := range d.AltNames {
		if net.ParseIP(name) != nil {
			ipN++
			fmt.Fprintf(&b, "IP.%d = %s\n", ipN, name)
			continue
		}
		dnsN++
		fmt.Fprintf(&b, "DNS.%d = %s\n", dnsN, name)
	}

	return b.String()
}

// RenderOpenSSL renders one profile as an OpenSSL extension section.
func RenderOpenSSL(p Profile) string {
	var b strings.Builder
	fmt.Fprintf(&b, "[ %s ]\n", SectionName(p.Name))

	bc := "CA:false"
	if p.CA {
		bc = "CA:true"
	}
	if p.BasicConstraintsCritical {
		bc = "critical," + bc
	}
	fmt.Fprintf(&b, "basicConstraints = %s\n", bc)

	if len(p.KeyUsage) > 0 {
		fmt.Fprintf(&b, "keyUsage = %s\n", strings.Join(p.KeyUsage, ", "))
	}

	if len(p.ExtKeyUsage) > 0 {
		eku := strings.Join(p.ExtKeyUsage, ", ")
		if p.ExtKeyUsageCritical {
			eku = "critical, " + eku
		}
		fmt.Fprintf(&b, "extendedKeyUsage = %s\n", eku)
	}

	if p.SubjectKeyID {
		b.WriteString("subjectKeyIdentifier = hash\n")
	}
	if p.AuthorityKeyID {
		b.WriteString("authorityKeyIdentifier = keyid:always,issuer:always\n")
	}
	if p.SubjectAltNames {
		b.WriteString("subjectAltName = @alt_names\n")
	}

	return b.String()
}
