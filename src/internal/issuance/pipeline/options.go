// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package pipeline

import (
	"io"
	"math/big"

	"github.com/H0llyW00dzZ/tls-cert-issuer/src/internal/issuance/engine"
)

// Validity holds certificate lifetimes in days per role.
type Validity struct {
	Root   int
	Inter  int
	End    int
	Client int
}

// DefaultValidity returns ten years for the authorities and 2000 days for leaves.
func DefaultValidity() Validity {
	return Validity{Root: 3650, Inter: 3650, End: 2000, Client: 2000}
}

// Serials holds the serial numbers assigned per role. A nil serial is drawn at
// random when the certificate is signed.
type Serials struct {
	Inter  *big.Int
	End    *big.Int
	Client *big.Int
}

// DefaultSerials returns the conventional fixed serials 123, 456 and 789.
func DefaultSerials() Serials {
	return Serials{Inter: big.NewInt(123), End: big.NewInt(456), Client: big.NewInt(789)}
}

// Options tune an [Issuer].
type Options struct {
	KeyType  engine.KeyType
	Digest   engine.Digest
	Validity Validity
	Serials  Serials
	// Rand is the source of random serials; nil means crypto/rand.
	Rand io.Reader
}

// DefaultOptions returns RSA-4096 keys, SHA-256, default validity and default serials.
func DefaultOptions() Options {
	return Options{
		KeyType:  engine.DefaultKeyType,
		Digest:   engine.DefaultDigest,
		Validity: DefaultValidity(),
		Serials:  DefaultSerials(),
	}
}

func (o Options) withDefaults() Options {
	if o.KeyType == "" {
		o.KeyType = engine.DefaultKeyType
	}
	if o.Digest == "" {
		o.Digest = engine.DefaultDigest
	}

	def := DefaultValidity()
	if o.Validity.Root <= 0 {
		o.Validity.Root = def.Root
	}
	if o.Validity.Inter <= 0 {
		o.Validity.Inter = def.Inter
	}
	if o.Validity.End <= 0 {
		o.Validity.End = def.End
	}
	if o.Validity.Client <= 0 {
		o.Validity.Client = def.Client
	}
	return o
}
