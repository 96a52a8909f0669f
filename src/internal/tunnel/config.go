// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package tunnel

import (
	"errors"
	"fmt"
	"io/fs"
	"net"
	"os"
	"strconv"

	"github.com/BurntSushi/toml"

	"github.com/H0llyW00dzZ/tls-cert-issuer/src/internal/helper/gc"
)

// Mode selects which side of the tunnel a [Proxy] runs.
type Mode string

// Supported modes.
const (
	ModeGateway  Mode = "gateway"
	ModeTunneler Mode = "tunneler"
)

// DefaultConfigFile is read from the working directory when no path is given.
const DefaultConfigFile = "config.toml"

var (
	// ErrUnknownMode indicates a mode other than gateway or tunneler.
	ErrUnknownMode = errors.New("tunnel: unknown mode")

	// ErrInvalidConfig indicates a config file that cannot be decoded or is incomplete.
	ErrInvalidConfig = errors.New("tunnel: invalid config")
)

// Config is the tunnel configuration file.
type Config struct {
	Mode   Mode   `toml:"mode"`
	Common Common `toml:"config"`
}

// Common holds the settings shared by both modes.
type Common struct {
	ServerCertificatesFile string `toml:"server_certificates_file"`
	KeyFile                string `toml:"key_file"`
	ClientCertificatesFile string `toml:"client_certificates_file"`

	ListenPort uint16 `toml:"listen_port"`

	TargetHost string `toml:"target_host"`
	TargetPort uint16 `toml:"target_port"`
}

// Default returns the gateway configuration for artifacts in ./keys.
func Default() *Config {
	return &Config{
		Mode: ModeGateway,
		Common: Common{
			ServerCertificatesFile: "keys/end.fullchain",
			KeyFile:                "keys/end.rsa",
			ClientCertificatesFile: "keys/client.chain",
			ListenPort:             20443,
			TargetHost:             "localhost",
			TargetPort:             20000,
		},
	}
}

// LoadConfig reads the TOML file at path, or [DefaultConfigFile] when path is
// empty. A missing file is created with [Default] and the defaults are returned.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		path = DefaultConfigFile
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		cfg := Default()
		if err := cfg.Save(path); err != nil {
			return nil, fmt.Errorf("write default config: %w", err)
		}
		return cfg, nil
	}
	if err != nil {
		return nil, err
	}

	cfg := &Config{}
	if _, err := toml.Decode(string(data), cfg); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidConfig, path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes the configuration as TOML.
func (c *Config) Save(path string) error {
	buf := gc.Default.Get()
	defer func() {
		buf.Reset()
		gc.Default.Put(buf)
	}()

	if err := toml.NewEncoder(buf).Encode(c); err != nil {
		return err
	}
	return os.WriteFile(path, buf.Bytes(), 0o644)
}

// Validate checks the mode, the file paths and the ports.
func (c *Config) Validate() error {
	switch c.Mode {
	case ModeGateway, ModeTunneler:
	default:
		return fmt.Errorf("%w: %q", ErrUnknownMode, c.Mode)
	}

	cc := c.Common
	switch {
	case cc.ServerCertificatesFile == "", cc.KeyFile == "", cc.ClientCertificatesFile == "":
		return fmt.Errorf("%w: certificate and key files are required", ErrInvalidConfig)
	case cc.ListenPort == 0, cc.TargetPort == 0:
		return fmt.Errorf("%w: listen_port and target_port must be set", ErrInvalidConfig)
	case cc.TargetHost == "":
		return fmt.Errorf("%w: target_host is required", ErrInvalidConfig)
	}
	return nil
}

// ListenAddr is 0.0.0.0 for a gateway and loopback for a tunneler.
func (c *Config) ListenAddr() string {
	host := "0.0.0.0"
	if c.Mode == ModeTunneler {
		host = "127.0.0.1"
	}
	return net.JoinHostPort(host, strconv.Itoa(int(c.Common.ListenPort)))
}

// TargetAddr is the address every accepted connection is forwarded to.
func (c *Config) TargetAddr() string {
	return net.JoinHostPort(c.Common.TargetHost, strconv.Itoa(int(c.Common.TargetPort)))
}
