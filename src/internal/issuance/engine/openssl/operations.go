// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package openssl

import (
	"context"
	"crypto/ecdsa"
	"crypto/rsa"
	"fmt"
	"strconv"
	"strings"

	"github.com/H0llyW00dzZ/tls-cert-issuer/src/internal/issuance/engine"
	"github.com/H0llyW00dzZ/tls-cert-issuer/src/internal/issuance/policy"
	x509certs "github.com/H0llyW00dzZ/tls-cert-issuer/src/internal/x509/certs"
)

// reqConfig is a self-contained "openssl req" configuration so the system
// openssl.cnf never leaks extensions into the output.
const reqConfig = `[ req ]
distinguished_name = req_dn
prompt = no

[ req_dn ]
`

// CreateRoot implements [engine.Engine] with "openssl req -x509".
func (e *Engine) CreateRoot(ctx context.Context, req engine.RootRequest) (km *engine.KeyMaterial, err error) {
	const op = "create root"
	defer func() { err = engine.Wrap(Name, op, err) }()

	if err := req.Validate(); err != nil {
		return nil, err
	}

	newKey, err := newKeyArgs(req.KeyType)
	if err != nil {
		return nil, err
	}

	ws, err := newWorkspace()
	if err != nil {
		return nil, err
	}
	defer ws.close()

	cnf := reqConfig + "\n" + policy.RenderOpenSSL(req.Profile)
	if err := ws.write("req.cnf", []byte(cnf)); err != nil {
		return nil, err
	}

	args := []string{"req", "-nodes", "-x509",
		"-days", strconv.Itoa(req.Days),
		"-keyout", "key.pem",
		"-out", "cert.pem",
		"-" + string(digestOrDefault(req.Digest)),
		"-batch",
		"-set_serial", req.Serial.String(),
		"-subj", subject(req.CommonName),
		"-config", "req.cnf",
		"-extensions", policy.SectionName(req.Profile.Name),
	}
	args = append(args, newKey...)

	if _, err := e.run(ctx, ws.dir, args...); err != nil {
		return nil, err
	}

	key, err := ws.read("key.pem")
	if err != nil {
		return nil, err
	}
	cert, err := ws.read("cert.pem")
	if err != nil {
		return nil, err
	}

	return &engine.KeyMaterial{Key: key, Certificate: cert}, nil
}

// CreateRequest implements [engine.Engine] with "openssl req".
func (e *Engine) CreateRequest(ctx context.Context, req engine.KeyRequest) (km *engine.KeyMaterial, err error) {
	const op = "create request"
	defer func() { err = engine.Wrap(Name, op, err) }()

	if err := req.Validate(); err != nil {
		return nil, err
	}

	newKey, err := newKeyArgs(req.KeyType)
	if err != nil {
		return nil, err
	}

	ws, err := newWorkspace()
	if err != nil {
		return nil, err
	}
	defer ws.close()

	if err := ws.write("req.cnf", []byte(reqConfig)); err != nil {
		return nil, err
	}

	args := []string{"req", "-nodes",
		"-keyout", "key.pem",
		"-out", "req.pem",
		"-" + string(digestOrDefault(req.Digest)),
		"-batch",
		"-subj", subject(req.CommonName),
		"-config", "req.cnf",
	}
	args = append(args, newKey...)

	if _, err := e.run(ctx, ws.dir, args...); err != nil {
		return nil, err
	}

	key, err := ws.read("key.pem")
	if err != nil {
		return nil, err
	}
	csr, err := ws.read("req.pem")
	if err != nil {
		return nil, err
	}

	return &engine.KeyMaterial{Key: key, Request: csr}, nil
}

// Sign implements [engine.Engine] with "openssl x509 -req".
func (e *Engine) Sign(ctx context.Context, req engine.SignRequest) (cert []byte, err error) {
	const op = "sign"
	defer func() { err = engine.Wrap(Name, op, err) }()

	if err := req.Validate(); err != nil {
		return nil, err
	}
	if err := req.Profile.Validate(); err != nil {
		return nil, err
	}

	ws, err := newWorkspace()
	if err != nil {
		return nil, err
	}
	defer ws.close()

	doc := &policy.Document{Profiles: []policy.Profile{req.Profile}, AltNames: req.AltNames}
	files := map[string][]byte{
		"req.pem": req.Request,
		"ca.cert": req.IssuerCert,
		"ca.key":  req.IssuerKey,
		"ext.cnf": []byte(doc.OpenSSLConfig()),
	}
	for name, data := range files {
		if err := ws.write(name, data); err != nil {
			return nil, err
		}
	}

	if _, err := e.run(ctx, ws.dir, "x509", "-req",
		"-in", "req.pem",
		"-out", "cert.pem",
		"-CA", "ca.cert",
		"-CAkey", "ca.key",
		"-"+string(digestOrDefault(req.Digest)),
		"-days", strconv.Itoa(req.Days),
		"-set_serial", req.Serial.String(),
		"-extensions", policy.SectionName(req.Profile.Name),
		"-extfile", "ext.cnf",
	); err != nil {
		return nil, err
	}

	return ws.read("cert.pem")
}

// NormalizeKey implements [engine.Engine] with "openssl rsa" or "openssl ec".
//
// The result is checked to carry the same public key as the input.
func (e *Engine) NormalizeKey(ctx context.Context, key []byte) (out []byte, err error) {
	const op = "normalize key"
	defer func() { err = engine.Wrap(Name, op, err) }()

	parsed, err := x509certs.DecodePrivateKey(key)
	if err != nil {
		return nil, err
	}

	var args []string
	switch parsed.(type) {
	case *rsa.PrivateKey:
		args = []string{"rsa"}
		if v, err := e.Version(ctx); err == nil && strings.HasPrefix(v, "OpenSSL 3") {
			args = append(args, "-traditional")
		}
	case *ecdsa.PrivateKey:
		args = []string{"ec"}
	default:
		return nil, fmt.Errorf("%w: %T", x509certs.ErrUnsupportedKey, parsed)
	}

	ws, err := newWorkspace()
	if err != nil {
		return nil, err
	}
	defer ws.close()

	if err := ws.write("in.pem", key); err != nil {
		return nil, err
	}

	args = append(args, "-in", "in.pem", "-out", "out.pem")
	if _, err := e.run(ctx, ws.dir, args...); err != nil {
		return nil, err
	}

	out, err = ws.read("out.pem")
	if err != nil {
		return nil, err
	}

	normalized, err := x509certs.DecodePrivateKey(out)
	if err != nil {
		return nil, err
	}
	if !x509certs.KeyMatches(normalized, parsed.Public()) {
		return nil, engine.ErrKeyMismatch
	}

	return out, nil
}

// newKeyArgs returns the "-newkey" arguments for a key type.
func newKeyArgs(kt engine.KeyType) ([]string, error) {
	if kt == "" {
		kt = engine.DefaultKeyType
	}

	switch {
	case kt.IsRSA():
		return []string{"-newkey", fmt.Sprintf("rsa:%d", kt.RSABits())}, nil
	case kt.Curve() != "":
		return []string{"-newkey", "ec", "-pkeyopt", "ec_paramgen_curve:" + kt.Curve()}, nil
	default:
		return nil, fmt.Errorf("%w: %q", engine.ErrUnknownKeyType, kt)
	}
}

func digestOrDefault(d engine.Digest) engine.Digest {
	if d == "" {
		return engine.DefaultDigest
	}
	return d
}

var subjectEscaper = strings.NewReplacer(`\`, `\\`, `/`, `\/`, `+`, `\+`)

// subject renders a common name in "-subj" syntax.
func subject(cn string) string {
	return "/CN=" + subjectEscaper.Replace(cn)
}
