// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package pipeline

import (
	"context"
	"fmt"
	"strings"

	"github.com/H0llyW00dzZ/tls-cert-issuer/src/internal/issuance/policy"
	"github.com/H0llyW00dzZ/tls-cert-issuer/src/internal/issuance/store"
)

// step is one named stage of a flow.
type step struct {
	name string
	run  func(ctx context.Context) error
}

// StepError reports the flow step that failed.
type StepError struct {
	Step string
	Err  error
}

// Error implements the error interface.
func (e *StepError) Error() string { return fmt.Sprintf("%s: %v", e.Step, e.Err) }

// Unwrap returns the underlying error.
func (e *StepError) Unwrap() error { return e.Err }

// run executes steps in order, checking for cancellation between them.
func (i *Issuer) run(ctx context.Context, steps []step) error {
	for n, s := range steps {
		if err := ctx.Err(); err != nil {
			return &StepError{Step: s.name, Err: err}
		}

		i.log.Printf("[%d/%d] %s", n+1, len(steps), s.name)
		if err := s.run(ctx); err != nil {
			return &StepError{Step: s.name, Err: err}
		}
	}
	return nil
}

// claim serializes flows and locks the store when it supports it.
func (i *Issuer) claim() (release func(), err error) {
	i.mu.Lock()

	l, ok := i.store.(locker)
	if !ok {
		return i.mu.Unlock, nil
	}

	unlock, err := l.Lock()
	if err != nil {
		i.mu.Unlock()
		return nil, err
	}

	return func() {
		if err := unlock(); err != nil {
			i.log.Printf("release store lock: %v", err)
		}
		i.mu.Unlock()
	}, nil
}

// Subject names derived from the flow inputs.
func (i *Issuer) rootSubject(authority string) string {
	return fmt.Sprintf("%s %s CA", authority, i.opts.KeyType.Label())
}

func (i *Issuer) interSubject(authority string) string {
	return fmt.Sprintf("%s %s level 2 intermediate", authority, i.opts.KeyType.Label())
}

func clientSubject(client string) string { return client + " client" }

// IssueAuthority runs the CA and server flow: policy, root, intermediate and
// end keys with their normalized forms, the intermediate and end certificates,
// then end.chain (inter, ca) and end.fullchain (end, inter, ca).
func (i *Issuer) IssueAuthority(ctx context.Context, req AuthorityRequest) (*Issuance, error) {
	authority := strings.TrimSpace(req.AuthorityName)
	server := strings.TrimSpace(req.ServerName)
	if authority == "" || server == "" {
		return nil, fmt.Errorf("%w: authority and server names are required", ErrEmptyName)
	}

	release, err := i.claim()
	if err != nil {
		return nil, err
	}
	defer release()

	out := &Issuance{}
	addCert := func(c *Certificate) { out.Certificates = append(out.Certificates, c) }
	addChain := func(c *Chain) { out.Chains = append(out.Chains, c) }

	steps := []step{
		{"materialize policy", func(ctx context.Context) error {
			_, err := i.MaterializePolicy(ctx, server)
			return err
		}},
		{"generate root ca", func(ctx context.Context) error {
			c, err := i.GenerateRoot(ctx, i.rootSubject(authority))
			if err == nil {
				addCert(c)
			}
			return err
		}},
		{"extract key ca", i.extractStep(store.RoleCA)},
		{"generate key pair inter", i.keyPairStep(store.RoleInter, i.interSubject(authority))},
		{"extract key inter", i.extractStep(store.RoleInter)},
		{"generate key pair end", i.keyPairStep(store.RoleEnd, server)},
		{"extract key end", i.extractStep(store.RoleEnd)},
		{"sign inter", i.signStep(SignSpec{
			Role:    store.RoleInter,
			Issuer:  store.RoleCA,
			Serial:  i.serialOr(req.InterSerial, i.opts.Serials.Inter),
			Profile: policy.Inter,
			Days:    i.opts.Validity.Inter,
		}, addCert)},
		{"sign end", i.signStep(SignSpec{
			Role:    store.RoleEnd,
			Issuer:  store.RoleInter,
			Serial:  i.serialOr(req.EndSerial, i.opts.Serials.End),
			Profile: policy.End,
			Days:    i.opts.Validity.End,
		}, addCert)},
		{"build " + store.RoleEnd.Chain(), i.chainStep(store.RoleEnd.Chain(), addChain, store.RoleInter, store.RoleCA)},
		{"build " + store.RoleEnd.FullChain(), i.chainStep(store.RoleEnd.FullChain(), addChain, store.RoleEnd, store.RoleInter, store.RoleCA)},
	}

	if err := i.run(ctx, steps); err != nil {
		return nil, err
	}
	return out, nil
}

// IssueClient runs the client flow. It requires the policy document and the
// intermediate and root material from a previous [Issuer.IssueAuthority], and
// checks for them and for a reused serial before writing anything.
func (i *Issuer) IssueClient(ctx context.Context, req ClientRequest) (*Issuance, error) {
	client := strings.TrimSpace(req.ClientName)
	if client == "" {
		return nil, fmt.Errorf("%w: client name is required", ErrEmptyName)
	}

	release, err := i.claim()
	if err != nil {
		return nil, err
	}
	defer release()

	out := &Issuance{}
	addCert := func(c *Certificate) { out.Certificates = append(out.Certificates, c) }
	addChain := func(c *Chain) { out.Chains = append(out.Chains, c) }
	sn := i.serialOr(req.Serial, i.opts.Serials.Client)

	steps := []step{
		{"check authority artifacts", func(ctx context.Context) error {
			if err := store.RequireAll(ctx, i.store,
				store.PolicyName,
				store.RoleCA.Cert(),
				store.RoleInter.Cert(),
				store.RoleInter.Key(),
			); err != nil {
				return err
			}
			// The previous client key must stay paired with its certificate.
			return i.CheckSerial(ctx, store.RoleInter, sn)
		}},
		{"generate key pair client", i.keyPairStep(store.RoleClient, clientSubject(client))},
		{"extract key client", i.extractStep(store.RoleClient)},
		{"sign client", i.signStep(SignSpec{
			Role:    store.RoleClient,
			Issuer:  store.RoleInter,
			Serial:  sn,
			Profile: policy.Client,
			Days:    i.opts.Validity.Client,
		}, addCert)},
		{"build " + store.RoleClient.Chain(), i.chainStep(store.RoleClient.Chain(), addChain, store.RoleInter, store.RoleCA)},
		{"build " + store.RoleClient.FullChain(), i.chainStep(store.RoleClient.FullChain(), addChain, store.RoleClient, store.RoleInter, store.RoleCA)},
	}

	if err := i.run(ctx, steps); err != nil {
		return nil, err
	}
	return out, nil
}

func (i *Issuer) keyPairStep(role store.Role, cn string) func(context.Context) error {
	return func(ctx context.Context) error {
		_, err := i.GenerateKeyPair(ctx, role, cn)
		return err
	}
}

func (i *Issuer) extractStep(role store.Role) func(context.Context) error {
	return func(ctx context.Context) error {
		_, err := i.ExtractKey(ctx, role)
		return err
	}
}

func (i *Issuer) signStep(spec SignSpec, add func(*Certificate)) func(context.Context) error {
	return func(ctx context.Context) error {
		c, err := i.Sign(ctx, spec)
		if err == nil {
			add(c)
		}
		return err
	}
}

func (i *Issuer) chainStep(name string, add func(*Chain), roles ...store.Role) func(context.Context) error {
	return func(ctx context.Context) error {
		c, err := i.BuildChain(ctx, name, roles...)
		if err == nil {
			add(c)
		}
		return err
	}
}
