// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package policy

import (
	"errors"
	"fmt"
	"net"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"
)

var (
	// ErrUnknownProfile indicates a profile name that the document does not declare.
	ErrUnknownProfile = errors.New("policy: unknown extension profile")

	// ErrUnknownUsage indicates a key usage name outside the OpenSSL vocabulary.
	ErrUnknownUsage = errors.New("policy: unknown key usage")

	// ErrUnknownExtUsage indicates an extended key usage name outside the OpenSSL vocabulary.
	ErrUnknownExtUsage = errors.New("policy: unknown extended key usage")

	// ErrNoAltNames indicates a document whose alternative name list is empty
	// while a profile asks for subject alternative names.
	ErrNoAltNames = errors.New("policy: no subject alternative names")

	// ErrInvalidDocument indicates a document that cannot be decoded.
	ErrInvalidDocument = errors.New("policy: invalid document")
)

// Names of the declared profiles.
const (
	End    = "end"
	Client = "client"
	Inter  = "inter"

	root = "root"
)

// Profile is a named extension policy applied at signing time.
type Profile struct {
	Name                     string   `yaml:"name"`
	CA                       bool     `yaml:"ca"`
	BasicConstraintsCritical bool     `yaml:"basic_constraints_critical"`
	KeyUsage                 []string `yaml:"key_usage"`
	ExtKeyUsage              []string `yaml:"ext_key_usage,omitempty"`
	ExtKeyUsageCritical      bool     `yaml:"ext_key_usage_critical,omitempty"`
	SubjectKeyID             bool     `yaml:"subject_key_identifier"`
	AuthorityKeyID           bool     `yaml:"authority_key_identifier"`
	SubjectAltNames          bool     `yaml:"subject_alt_names"`
}

// Document is the policy document persisted once per issuance run.
type Document struct {
	Profiles []Profile `yaml:"profiles"`
	AltNames []string  `yaml:"alt_names"`
}

// Materialize builds the policy document for a server name. The returned document
// declares the end, client and inter profiles and one alternative name.
func Materialize(serverName string) (*Document, error) {
	serverName = strings.TrimSpace(serverName)
	if serverName == "" {
		return nil, ErrNoAltNames
	}

	doc := &Document{
		Profiles: []Profile{
			{
				Name:                     End,
				BasicConstraintsCritical: true,
				KeyUsage:                 []string{"nonRepudiation", "digitalSignature"},
				SubjectKeyID:             true,
				AuthorityKeyID:           true,
				SubjectAltNames:          true,
			},
			{
				Name:                     Client,
				BasicConstraintsCritical: true,
				KeyUsage:                 []string{"nonRepudiation", "digitalSignature"},
				ExtKeyUsage:              []string{"clientAuth"},
				ExtKeyUsageCritical:      true,
				SubjectKeyID:             true,
				AuthorityKeyID:           true,
			},
			{
				Name:                Inter,
				CA:                  true,
				ExtKeyUsage:         []string{"serverAuth", "clientAuth"},
				ExtKeyUsageCritical: true,
				KeyUsage: []string{
					"cRLSign", "keyCertSign", "digitalSignature", "nonRepudiation",
					"keyEncipherment", "dataEncipherment", "keyAgreement",
				},
				SubjectKeyID: true,
			},
		},
		AltNames: []string{serverName},
	}

	return doc, doc.Validate()
}

// RootProfile returns the extension profile for the self-signed root.
func RootProfile() Profile {
	return Profile{
		Name:                     root,
		CA:                       true,
		BasicConstraintsCritical: true,
		KeyUsage:                 []string{"keyCertSign", "cRLSign", "digitalSignature"},
		SubjectKeyID:             true,
	}
}

// Profile returns the declared profile with the given name.
func (d *Document) Profile(name string) (Profile, error) {
	i := slices.IndexFunc(d.Profiles, func(p Profile) bool { return p.Name == name })
	if i < 0 || name == root {
		return Profile{}, fmt.Errorf("%w: %q", ErrUnknownProfile, name)
	}
	return d.Profiles[i], nil
}

// Validate checks every profile's usage names and the alternative names.
func (d *Document) Validate() error {
	for _, p := range d.Profiles {
		if err := p.Validate(); err != nil {
			return err
		}
		if p.SubjectAltNames && len(d.AltNames) == 0 {
			return fmt.Errorf("%w: profile %q", ErrNoAltNames, p.Name)
		}
	}
	return nil
}

// Validate checks that every usage name is known.
func (p Profile) Validate() error {
	if _, err := p.X509KeyUsage(); err != nil {
		return fmt.Errorf("profile %q: %w", p.Name, err)
	}
	if _, err := p.X509ExtKeyUsage(); err != nil {
		return fmt.Errorf("profile %q: %w", p.Name, err)
	}
	return nil
}

// SplitAltNames partitions the alternative names into DNS names and IP addresses.
func (d *Document) SplitAltNames() (dns []string, ips []net.IP) {
	for _, name := range d.AltNames {
		if ip := net.ParseIP(name); ip != nil {
			ips = append(ips, ip)
			continue
		}
		dns = append(dns, name)
	}
	return dns, ips
}

// Marshal encodes the document as YAML.
func (d *Document) Marshal() ([]byte, error) { return yaml.Marshal(d) }

// Unmarshal decodes and validates a YAML document.
func Unmarshal(data []byte) (*Document, error) {
	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidDocument, err)
	}
	if err := doc.Validate(); err != nil {
		return nil, err
	}
	return &doc, nil
}
