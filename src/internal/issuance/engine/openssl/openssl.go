// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

// Package openssl implements the issuance engine by running the openssl
// command line tool.
//
// Every operation runs in its own private temporary directory that is removed
// afterwards, and every command is bounded by a timeout so that a hung process
// surfaces as an error instead of blocking the run.
package openssl

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/H0llyW00dzZ/tls-cert-issuer/src/internal/issuance/engine"
)

// Name identifies this engine.
const Name = "openssl"

// Defaults.
const (
	DefaultBinary  = "openssl"
	DefaultTimeout = 2 * time.Minute
)

// ErrUnavailable indicates that the openssl binary cannot be found.
var ErrUnavailable = errors.New("openssl: binary not available")

// Engine is the process-backed [engine.Engine].
type Engine struct {
	binary  string
	timeout time.Duration

	versionOnce sync.Once
	version     string
	versionErr  error
}

// Option configures an [Engine].
type Option func(*Engine)

// WithBinary sets the openssl executable name or path.
func WithBinary(path string) Option {
	return func(e *Engine) {
		if path != "" {
			e.binary = path
		}
	}
}

// WithTimeout bounds every single openssl invocation.
func WithTimeout(d time.Duration) Option {
	return func(e *Engine) {
		if d > 0 {
			e.timeout = d
		}
	}
}

// New returns an openssl engine.
func New(opts ...Option) *Engine {
	e := &Engine{
		binary:  DefaultBinary,
		timeout: DefaultTimeout,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

var _ engine.Engine = (*Engine)(nil)

// Name implements [engine.Engine].
func (e *Engine) Name() string { return Name }

// Available reports whether the configured binary can be resolved.
func (e *Engine) Available() error {
	if _, err := exec.LookPath(e.binary); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrUnavailable, e.binary, err)
	}
	return nil
}

// Version returns the first line of "openssl version", cached after the first call.
func (e *Engine) Version(ctx context.Context) (string, error) {
	e.versionOnce.Do(func() {
		out, err := e.run(ctx, "", "version")
		e.version, e.versionErr = strings.TrimSpace(string(out)), err
	})
	return e.version, e.versionErr
}

// run executes openssl with args in dir and returns its combined output.
func (e *Engine) run(ctx context.Context, dir string, args ...string) ([]byte, error) {
	if err := e.Available(); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, e.binary, args...)
	cmd.Dir = dir
	cmd.WaitDelay = time.Second

	out, err := cmd.CombinedOutput()
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, fmt.Errorf("command %s: %w", cmd.String(), ctxErr)
	}
	if err != nil {
		return nil, fmt.Errorf("command %s failed: %q %w", cmd.String(), string(out), err)
	}
	return out, nil
}

// workspace is a private scratch directory for one operation.
type workspace struct {
	dir string
}

func newWorkspace() (*workspace, error) {
	dir, err := os.MkdirTemp("", "tls-cert-issuer-*")
	if err != nil {
		return nil, err
	}
	return &workspace{dir: dir}, nil
}

func (w *workspace) path(name string) string { return filepath.Join(w.dir, name) }

func (w *workspace) write(name string, data []byte) error {
	return os.WriteFile(w.path(name), data, 0o600)
}

func (w *workspace) read(name string) ([]byte, error) {
	return os.ReadFile(w.path(name))
}

func (w *workspace) close() error { return os.RemoveAll(w.dir) }
