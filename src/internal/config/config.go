// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/H0llyW00dzZ/tls-cert-issuer/src/internal/issuance/engine"
	"github.com/H0llyW00dzZ/tls-cert-issuer/src/internal/issuance/engine/native"
	"github.com/H0llyW00dzZ/tls-cert-issuer/src/internal/issuance/engine/openssl"
	"github.com/H0llyW00dzZ/tls-cert-issuer/src/internal/issuance/pipeline"
	"github.com/H0llyW00dzZ/tls-cert-issuer/src/internal/issuance/serial"
)

// EnvFile names the environment variable holding the config file path.
const EnvFile = "TLS_CERT_ISSUER_CONFIG"

// RandomSerial selects a random serial for a role.
const RandomSerial = "random"

// Defaults.
const (
	DefaultDirectory = "keys"
	DefaultEngine    = native.Name
	DefaultTimeout   = 120
)

// ErrUnknownEngine indicates an engine name other than native or openssl.
var ErrUnknownEngine = errors.New("config: unknown engine")

// format is a supported configuration file format.
type format int

const (
	formatJSON format = iota
	formatYAML
	formatTOML
)

// Config holds issuer settings.
type Config struct {
	// Directory receives all artifacts of a run.
	Directory string `json:"directory" yaml:"directory" toml:"directory"`

	Engine struct {
		// Name is native or openssl.
		Name string `json:"name" yaml:"name" toml:"name"`
		// Binary is the openssl executable used by the openssl engine.
		Binary string `json:"binary,omitempty" yaml:"binary,omitempty" toml:"binary,omitempty"`
		// Timeout bounds each openssl invocation, in seconds.
		Timeout int `json:"timeoutSeconds" yaml:"timeoutSeconds" toml:"timeoutSeconds"`
	} `json:"engine" yaml:"engine" toml:"engine"`

	Keys struct {
		Type   string `json:"type" yaml:"type" toml:"type"`
		Digest string `json:"digest" yaml:"digest" toml:"digest"`
	} `json:"keys" yaml:"keys" toml:"keys"`

	// Validity in days per role.
	Validity struct {
		Root   int `json:"root" yaml:"root" toml:"root"`
		Inter  int `json:"intermediate" yaml:"intermediate" toml:"intermediate"`
		End    int `json:"end" yaml:"end" toml:"end"`
		Client int `json:"client" yaml:"client" toml:"client"`
	} `json:"validityDays" yaml:"validityDays" toml:"validityDays"`

	// Serials per role, decimal or 0x-prefixed hex, or "random".
	Serials struct {
		Inter  string `json:"intermediate" yaml:"intermediate" toml:"intermediate"`
		End    string `json:"end" yaml:"end" toml:"end"`
		Client string `json:"client" yaml:"client" toml:"client"`
	} `json:"serials" yaml:"serials" toml:"serials"`
}

// Default returns the built-in configuration.
func Default() *Config {
	c := &Config{Directory: DefaultDirectory}
	c.Engine.Name = DefaultEngine
	c.Engine.Binary = openssl.DefaultBinary
	c.Engine.Timeout = DefaultTimeout
	c.Keys.Type = string(engine.DefaultKeyType)
	c.Keys.Digest = string(engine.DefaultDigest)

	v := pipeline.DefaultValidity()
	c.Validity.Root, c.Validity.Inter, c.Validity.End, c.Validity.Client = v.Root, v.Inter, v.End, v.Client

	s := pipeline.DefaultSerials()
	c.Serials.Inter, c.Serials.End, c.Serials.Client = s.Inter.String(), s.End.String(), s.Client.String()
	return c
}

// detectFormat picks the format from the file extension, defaulting to JSON.
func detectFormat(path string) format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return formatYAML
	case ".toml":
		return formatTOML
	default:
		return formatJSON
	}
}

func unmarshal(data []byte, c *Config, f format) error {
	switch f {
	case formatYAML:
		if err := yaml.Unmarshal(data, c); err != nil {
			return fmt.Errorf("failed to parse YAML config file: %w", err)
		}
	case formatTOML:
		if err := toml.Unmarshal(data, c); err != nil {
			return fmt.Errorf("failed to parse TOML config file: %w", err)
		}
	default:
		if err := json.Unmarshal(data, c); err != nil {
			return fmt.Errorf("failed to parse JSON config file: %w", err)
		}
	}
	return nil
}

// Load loads the configuration from a file or applies defaults.
//
// Parameters:
//   - path: Path to the configuration file (optional, can be empty)
//     Supported formats: .json, .yaml, .yml, .toml
//
// Returns:
//   - *Config: Loaded configuration with defaults applied
//   - error: Error if the file cannot be read or parsed
//
// Configuration Priority:
//  1. Default values are set
//  2. TLS_CERT_ISSUER_CONFIG is checked if path is empty
//  3. File values override defaults
func Load(path string) (*Config, error) {
	c := Default()

	if path == "" {
		path = os.Getenv(EnvFile)
	}
	if path == "" {
		return c, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := unmarshal(data, c, detectFormat(path)); err != nil {
		return nil, err
	}

	c.fixInvalid()
	return c, nil
}

// fixInvalid restores defaults for empty or non-positive values.
func (c *Config) fixInvalid() {
	def := Default()
	if strings.TrimSpace(c.Directory) == "" {
		c.Directory = def.Directory
	}
	if c.Engine.Name == "" {
		c.Engine.Name = def.Engine.Name
	}
	if c.Engine.Binary == "" {
		c.Engine.Binary = def.Engine.Binary
	}
	if c.Engine.Timeout <= 0 {
		c.Engine.Timeout = def.Engine.Timeout
	}
	if c.Validity.Root <= 0 {
		c.Validity.Root = def.Validity.Root
	}
	if c.Validity.Inter <= 0 {
		c.Validity.Inter = def.Validity.Inter
	}
	if c.Validity.End <= 0 {
		c.Validity.End = def.Validity.End
	}
	if c.Validity.Client <= 0 {
		c.Validity.Client = def.Validity.Client
	}
}

// Validate reports the first invalid name or serial.
func (c *Config) Validate() error {
	if _, err := engine.ParseKeyType(c.Keys.Type); err != nil {
		return err
	}
	if _, err := engine.ParseDigest(c.Keys.Digest); err != nil {
		return err
	}
	switch c.Engine.Name {
	case native.Name, openssl.Name:
	default:
		return fmt.Errorf("%w: %q", ErrUnknownEngine, c.Engine.Name)
	}

	for _, s := range []string{c.Serials.Inter, c.Serials.End, c.Serials.Client} {
		if _, err := ParseSerial(s); err != nil {
			return err
		}
	}
	return nil
}

// ParseSerial parses a configured serial. An empty value or "random" yields nil.
func ParseSerial(s string) (*big.Int, error) {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, RandomSerial) {
		return nil, nil
	}
	return serial.Parse(s)
}

// OverrideSerial parses a per-run serial override. An empty value yields nil so
// the configured serial applies, "random" draws a random serial now.
func OverrideSerial(s string) (*big.Int, error) {
	s = strings.TrimSpace(s)
	switch {
	case s == "":
		return nil, nil
	case strings.EqualFold(s, RandomSerial):
		return serial.Random(nil)
	default:
		return serial.Parse(s)
	}
}

// IssuerOptions converts the configuration into pipeline options.
func (c *Config) IssuerOptions() (pipeline.Options, error) {
	if err := c.Validate(); err != nil {
		return pipeline.Options{}, err
	}

	kt, _ := engine.ParseKeyType(c.Keys.Type)
	dg, _ := engine.ParseDigest(c.Keys.Digest)
	inter, _ := ParseSerial(c.Serials.Inter)
	end, _ := ParseSerial(c.Serials.End)
	client, _ := ParseSerial(c.Serials.Client)

	return pipeline.Options{
		KeyType: kt,
		Digest:  dg,
		Validity: pipeline.Validity{
			Root:   c.Validity.Root,
			Inter:  c.Validity.Inter,
			End:    c.Validity.End,
			Client: c.Validity.Client,
		},
		Serials: pipeline.Serials{Inter: inter, End: end, Client: client},
	}, nil
}

// NewEngine builds the configured engine. The openssl engine fails with
// [openssl.ErrUnavailable] when its binary cannot be found.
func (c *Config) NewEngine() (engine.Engine, error) {
	switch c.Engine.Name {
	case native.Name:
		return native.New(), nil
	case openssl.Name:
		e := openssl.New(
			openssl.WithBinary(c.Engine.Binary),
			openssl.WithTimeout(time.Duration(c.Engine.Timeout)*time.Second),
		)
		if err := e.Available(); err != nil {
			return nil, err
		}
		return e, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownEngine, c.Engine.Name)
	}
}
