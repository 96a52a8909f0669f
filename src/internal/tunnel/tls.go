// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package tunnel

import (
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"os"

	x509certs "github.com/H0llyW00dzZ/tls-cert-issuer/src/internal/x509/certs"
)

// ErrKeyPair indicates a certificate chain and key that do not form a usable pair.
var ErrKeyPair = errors.New("tunnel: invalid certificate/key pair")

// ServerTLSConfig builds the gateway side: the server certificate chain and key,
// with client certificates required and verified against the client chain file.
func ServerTLSConfig(c Common) (*tls.Config, error) {
	cert, err := loadKeyPair(c.ServerCertificatesFile, c.KeyFile)
	if err != nil {
		return nil, err
	}
	clientCAs, err := loadPool(c.ClientCertificatesFile)
	if err != nil {
		return nil, err
	}

	return &tls.Config{
		Certificates: []tls.Certificate{cert},
		ClientAuth:   tls.RequireAndVerifyClientCert,
		ClientCAs:    clientCAs,
		MinVersion:   tls.VersionTLS12,
	}, nil
}

// ClientTLSConfig builds the tunneler side: the client certificate chain and
// key, trusting the certificates in the server certificates file and checking
// the gateway name against the target host.
func ClientTLSConfig(c Common) (*tls.Config, error) {
	cert, err := loadKeyPair(c.ClientCertificatesFile, c.KeyFile)
	if err != nil {
		return nil, err
	}
	roots, err := loadPool(c.ServerCertificatesFile)
	if err != nil {
		return nil, err
	}

	return &tls.Config{
		Certificates: []tls.Certificate{cert},
		RootCAs:      roots,
		ServerName:   c.TargetHost,
		MinVersion:   tls.VersionTLS12,
	}, nil
}

func loadKeyPair(certFile, keyFile string) (tls.Certificate, error) {
	certPEM, err := os.ReadFile(certFile)
	if err != nil {
		return tls.Certificate{}, err
	}
	keyPEM, err := os.ReadFile(keyFile)
	if err != nil {
		return tls.Certificate{}, err
	}

	cert, err := tls.X509KeyPair(certPEM, keyPEM)
	if err != nil {
		return tls.Certificate{}, fmt.Errorf("%w: %s / %s: %v", ErrKeyPair, certFile, keyFile, err)
	}
	return cert, nil
}

// loadPool trusts every certificate in a PEM bundle, intermediates included.
func loadPool(path string) (*x509.CertPool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	certs, err := x509certs.New().DecodeBundle(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	pool := x509.NewCertPool()
	for _, cert := range certs {
		pool.AddCert(cert)
	}
	return pool, nil
}
