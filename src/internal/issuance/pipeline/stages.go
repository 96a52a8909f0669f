// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package pipeline

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"slices"
	"sync"

	"github.com/H0llyW00dzZ/tls-cert-issuer/src/internal/helper/gc"
	"github.com/H0llyW00dzZ/tls-cert-issuer/src/internal/issuance/engine"
	"github.com/H0llyW00dzZ/tls-cert-issuer/src/internal/issuance/policy"
	"github.com/H0llyW00dzZ/tls-cert-issuer/src/internal/issuance/serial"
	"github.com/H0llyW00dzZ/tls-cert-issuer/src/internal/issuance/store"
	x509certs "github.com/H0llyW00dzZ/tls-cert-issuer/src/internal/x509/certs"
	"github.com/H0llyW00dzZ/tls-cert-issuer/src/logger"
)

// ErrEmptyName indicates an empty authority, server or client name.
var ErrEmptyName = errors.New("pipeline: empty name")

// declaredProfiles are the only profile names Sign accepts.
var declaredProfiles = []string{policy.End, policy.Client, policy.Inter}

// locker is implemented by stores that can be claimed for one run.
type locker interface {
	Lock() (unlock func() error, err error)
}

// Issuer runs issuance stages against a store with an engine.
//
// Flows on one Issuer are serialized. When the store is a [locker] (such as
// [store.DirStore]) each flow also claims it, so concurrent processes targeting
// the same directory fail with [store.ErrLocked].
type Issuer struct {
	mu     sync.Mutex
	store  store.Store
	engine engine.Engine
	log    logger.Logger
	opts   Options
	codec  *x509certs.Certificate
}

// New returns an Issuer. A nil logger discards output.
func New(s store.Store, e engine.Engine, log logger.Logger, opts Options) *Issuer {
	if log == nil {
		log = logger.Nop()
	}
	return &Issuer{
		store:  s,
		engine: e,
		log:    log,
		opts:   opts.withDefaults(),
		codec:  x509certs.New(),
	}
}

// Options returns the effective options.
func (i *Issuer) Options() Options { return i.opts }

// MaterializePolicy writes the policy document for the server name, replacing
// any previous one.
func (i *Issuer) MaterializePolicy(ctx context.Context, serverName string) (*policy.Document, error) {
	doc, err := policy.Materialize(serverName)
	if err != nil {
		return nil, err
	}

	data, err := doc.Marshal()
	if err != nil {
		return nil, err
	}

	if err := i.store.Put(ctx, store.PolicyName, data, store.PublicMode); err != nil {
		return nil, err
	}
	return doc, nil
}

// GenerateRoot creates the self-signed root key and certificate under the ca role.
// Its random serial is recorded in the root's own serial space.
func (i *Issuer) GenerateRoot(ctx context.Context, commonName string) (*Certificate, error) {
	sn, err := serial.Random(i.opts.Rand)
	if err != nil {
		return nil, err
	}

	km, err := i.engine.CreateRoot(ctx, engine.RootRequest{
		CommonName: commonName,
		KeyType:    i.opts.KeyType,
		Digest:     i.opts.Digest,
		Serial:     sn,
		Days:       i.opts.Validity.Root,
		Profile:    policy.RootProfile(),
	})
	if err != nil {
		return nil, err
	}

	cert, err := i.codec.Decode(km.Certificate)
	if err != nil {
		return nil, err
	}

	reg, err := serial.Load(ctx, i.store)
	if err != nil {
		return nil, err
	}
	if err := reg.Record(cert, sn); err != nil {
		return nil, err
	}
	if err := reg.Save(ctx, i.store); err != nil {
		return nil, err
	}

	if err := i.store.Put(ctx, store.RoleCA.Key(), km.Key, store.SecretMode); err != nil {
		return nil, err
	}
	if err := i.store.Put(ctx, store.RoleCA.Cert(), km.Certificate, store.PublicMode); err != nil {
		return nil, err
	}

	return &Certificate{Role: store.RoleCA, PEM: km.Certificate, Cert: cert}, nil
}

// GenerateKeyPair creates a key and signing request for the role, overwriting
// any previous material of that role.
func (i *Issuer) GenerateKeyPair(ctx context.Context, role store.Role, commonName string) (*KeyPair, error) {
	km, err := i.engine.CreateRequest(ctx, engine.KeyRequest{
		CommonName: commonName,
		KeyType:    i.opts.KeyType,
		Digest:     i.opts.Digest,
	})
	if err != nil {
		return nil, err
	}

	if err := i.store.Put(ctx, role.Key(), km.Key, store.SecretMode); err != nil {
		return nil, err
	}
	if err := i.store.Put(ctx, role.Request(), km.Request, store.PublicMode); err != nil {
		return nil, err
	}

	return &KeyPair{Role: role, Key: km.Key, Request: km.Request}, nil
}

// ExtractKey writes the role's key in its traditional container (<role>.rsa).
func (i *Issuer) ExtractKey(ctx context.Context, role store.Role) ([]byte, error) {
	key, err := store.Require(ctx, i.store, role.Key())
	if err != nil {
		return nil, err
	}

	out, err := i.engine.NormalizeKey(ctx, key)
	if err != nil {
		return nil, err
	}

	if err := i.store.Put(ctx, role.NormalizedKey(), out, store.SecretMode); err != nil {
		return nil, err
	}
	return out, nil
}

// Sign issues the certificate of spec.Role with the key and certificate of
// spec.Issuer.
//
// All checks run before anything is written: the profile must be declared, the
// policy document, the requester CSR and the issuer key and certificate must
// exist, the issuer must be a CA holding the matching key, and the serial must
// be unused by this issuer. The serial is recorded before the certificate is
// written, so a failure after that point burns the serial.
func (i *Issuer) Sign(ctx context.Context, spec SignSpec) (*Certificate, error) {
	if !slices.Contains(declaredProfiles, spec.Profile) {
		return nil, fmt.Errorf("%w: %q", policy.ErrUnknownProfile, spec.Profile)
	}

	docData, err := store.Require(ctx, i.store, store.PolicyName)
	if err != nil {
		return nil, err
	}
	doc, err := policy.Unmarshal(docData)
	if err != nil {
		return nil, err
	}
	profile, err := doc.Profile(spec.Profile)
	if err != nil {
		return nil, err
	}

	csr, err := store.Require(ctx, i.store, spec.Role.Request())
	if err != nil {
		return nil, err
	}
	issuerKeyPEM, err := store.Require(ctx, i.store, spec.Issuer.Key())
	if err != nil {
		return nil, err
	}
	issuerCertPEM, err := store.Require(ctx, i.store, spec.Issuer.Cert())
	if err != nil {
		return nil, err
	}

	issuerCert, err := i.codec.Decode(issuerCertPEM)
	if err != nil {
		return nil, err
	}
	if !issuerCert.IsCA {
		return nil, fmt.Errorf("%w: %s", engine.ErrNotCA, spec.Issuer.Cert())
	}
	issuerKey, err := x509certs.DecodePrivateKey(issuerKeyPEM)
	if err != nil {
		return nil, err
	}
	if !x509certs.KeyMatches(issuerKey, issuerCert.PublicKey) {
		return nil, fmt.Errorf("%w: %s / %s", engine.ErrKeyMismatch, spec.Issuer.Key(), spec.Issuer.Cert())
	}

	sn := spec.Serial
	if sn == nil {
		if sn, err = serial.Random(i.opts.Rand); err != nil {
			return nil, err
		}
	}

	reg, err := serial.Load(ctx, i.store)
	if err != nil {
		return nil, err
	}
	if err := reg.Record(issuerCert, sn); err != nil {
		return nil, err
	}
	if err := reg.Save(ctx, i.store); err != nil {
		return nil, err
	}

	certPEM, err := i.engine.Sign(ctx, engine.SignRequest{
		Request:    csr,
		IssuerKey:  issuerKeyPEM,
		IssuerCert: issuerCertPEM,
		Serial:     sn,
		Profile:    profile,
		AltNames:   doc.AltNames,
		Days:       spec.Days,
		Digest:     i.opts.Digest,
	})
	if err != nil {
		return nil, err
	}

	cert, err := i.codec.Decode(certPEM)
	if err != nil {
		return nil, err
	}

	if err := i.store.Put(ctx, spec.Role.Cert(), certPEM, store.PublicMode); err != nil {
		return nil, err
	}

	return &Certificate{Role: spec.Role, PEM: certPEM, Cert: cert}, nil
}

// BuildChain concatenates the certificates of roles, in the given order, into
// the named bundle. Certificates are not re-validated. Building the same chain
// twice yields identical bytes.
func (i *Issuer) BuildChain(ctx context.Context, name string, roles ...store.Role) (*Chain, error) {
	buf := gc.Default.Get()
	defer func() {
		buf.Reset()
		gc.Default.Put(buf)
	}()

	for _, role := range roles {
		data, err := store.Require(ctx, i.store, role.Cert())
		if err != nil {
			return nil, err
		}
		buf.Write(data)
	}

	bundle := gc.Copy(buf)
	if err := i.store.Put(ctx, name, bundle, store.PublicMode); err != nil {
		return nil, err
	}

	certs, err := i.codec.DecodeBundle(bundle)
	if err != nil {
		return nil, err
	}

	return &Chain{Name: name, Roles: slices.Clone(roles), PEM: bundle, Certs: certs}, nil
}

// CheckSerial fails with [serial.ErrSerialCollision] when the issuer already
// used sn. A nil sn is drawn at random when signing and always passes.
func (i *Issuer) CheckSerial(ctx context.Context, issuer store.Role, sn *big.Int) error {
	if sn == nil {
		return nil
	}

	certPEM, err := store.Require(ctx, i.store, issuer.Cert())
	if err != nil {
		return err
	}
	cert, err := i.codec.Decode(certPEM)
	if err != nil {
		return err
	}

	reg, err := serial.Load(ctx, i.store)
	if err != nil {
		return err
	}
	if reg.Contains(cert, sn) {
		return fmt.Errorf("%w: %s (issuer %q)", serial.ErrSerialCollision, sn, cert.Subject.CommonName)
	}
	return nil
}

func (i *Issuer) serialOr(override, fallback *big.Int) *big.Int {
	if override != nil {
		return override
	}
	return fallback
}
