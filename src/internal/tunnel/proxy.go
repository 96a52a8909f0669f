// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package tunnel

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"net"
	"sync"
	"time"

	"github.com/H0llyW00dzZ/tls-cert-issuer/src/logger"
)

// handshakeTimeout bounds the TLS handshake of an accepted gateway connection.
const handshakeTimeout = 10 * time.Second

// Proxy forwards accepted connections to the configured target.
type Proxy struct {
	cfg    Config
	log    logger.Logger
	server *tls.Config
	client *tls.Config
	dialer net.Dialer
	conns  sync.WaitGroup
}

// New validates cfg and loads the TLS material for its mode. A nil log
// discards output.
func New(cfg *Config, log logger.Logger) (*Proxy, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if log == nil {
		log = logger.Nop()
	}

	p := &Proxy{cfg: *cfg, log: log}

	var err error
	switch cfg.Mode {
	case ModeGateway:
		p.server, err = ServerTLSConfig(cfg.Common)
	case ModeTunneler:
		p.client, err = ClientTLSConfig(cfg.Common)
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

// Mode reports the side this proxy runs.
func (p *Proxy) Mode() Mode { return p.cfg.Mode }

// ListenAndServe binds [Config.ListenAddr] and serves until ctx is cancelled.
func (p *Proxy) ListenAndServe(ctx context.Context) error {
	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, "tcp", p.cfg.ListenAddr())
	if err != nil {
		return err
	}
	p.log.Printf("%s listening on %s, forwarding to %s", p.cfg.Mode, ln.Addr(), p.cfg.TargetAddr())
	return p.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is cancelled, then closes ln and
// every open connection and waits for their handlers. A gateway wraps ln in TLS.
func (p *Proxy) Serve(ctx context.Context, ln net.Listener) error {
	if p.server != nil {
		ln = tls.NewListener(ln, p.server)
	}

	defer p.conns.Wait()
	defer ln.Close()
	stop := context.AfterFunc(ctx, func() { ln.Close() })
	defer stop()

	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				return nil
			}
			return err
		}

		p.log.Printf("new connection from %s", conn.RemoteAddr())
		p.conns.Add(1)
		go func() {
			defer p.conns.Done()
			if err := p.handle(ctx, conn); err != nil {
				p.log.Printf("connection %s: %v", conn.RemoteAddr(), err)
			}
		}()
	}
}

func (p *Proxy) handle(ctx context.Context, conn net.Conn) error {
	defer conn.Close()

	if tc, ok := conn.(*tls.Conn); ok {
		hctx, cancel := context.WithTimeout(ctx, handshakeTimeout)
		err := tc.HandshakeContext(hctx)
		cancel()
		if err != nil {
			return fmt.Errorf("handshake: %w", err)
		}
		if peers := tc.ConnectionState().PeerCertificates; len(peers) > 0 {
			p.log.Printf("client %q authenticated", peers[0].Subject.CommonName)
		}
	}

	backend, err := p.dial(ctx)
	if err != nil {
		return fmt.Errorf("dial %s: %w", p.cfg.TargetAddr(), err)
	}
	defer backend.Close()

	stop := context.AfterFunc(ctx, func() {
		conn.Close()
		backend.Close()
	})
	defer stop()

	p.pipe(conn, backend)
	return nil
}

func (p *Proxy) dial(ctx context.Context) (net.Conn, error) {
	if p.client == nil {
		return p.dialer.DialContext(ctx, "tcp", p.cfg.TargetAddr())
	}

	d := tls.Dialer{NetDialer: &p.dialer, Config: p.client}
	return d.DialContext(ctx, "tcp", p.cfg.TargetAddr())
}

// pipe copies both directions and tears the pair down as soon as either
// direction ends.
func (p *Proxy) pipe(a, b net.Conn) {
	done := make(chan struct{}, 2)
	cp := func(dst, src net.Conn, dir string) {
		if _, err := io.Copy(dst, src); err != nil && !errors.Is(err, net.ErrClosed) {
			p.log.Printf("%s error: %v", dir, err)
		}
		done <- struct{}{}
	}

	go cp(b, a, "c->b")
	go cp(a, b, "b->c")

	<-done
	a.Close()
	b.Close()
	<-done
}
