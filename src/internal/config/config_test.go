// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package config_test

import (
	"math/big"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/H0llyW00dzZ/tls-cert-issuer/src/internal/config"
	"github.com/H0llyW00dzZ/tls-cert-issuer/src/internal/issuance/engine"
	"github.com/H0llyW00dzZ/tls-cert-issuer/src/internal/issuance/engine/native"
	"github.com/H0llyW00dzZ/tls-cert-issuer/src/internal/issuance/engine/openssl"
	"github.com/H0llyW00dzZ/tls-cert-issuer/src/internal/issuance/serial"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv(config.EnvFile, "")

	c, err := config.Load("")
	require.NoError(t, err)
	assert.Equal(t, "keys", c.Directory)
	assert.Equal(t, native.Name, c.Engine.Name)
	assert.Equal(t, "rsa4096", c.Keys.Type)
	assert.Equal(t, "sha256", c.Keys.Digest)
	assert.Equal(t, 3650, c.Validity.Root)
	assert.Equal(t, 2000, c.Validity.Client)
	assert.Equal(t, "123", c.Serials.Inter)
	assert.NoError(t, c.Validate())

	opts, err := c.IssuerOptions()
	require.NoError(t, err)
	assert.Equal(t, engine.RSA4096, opts.KeyType)
	assert.Equal(t, 0, big.NewInt(456).Cmp(opts.Serials.End))
}

func TestLoadFormats(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
	}{
		{
			name: "json",
			file: "issuer.json",
			content: `{"directory":"out","engine":{"name":"openssl","timeoutSeconds":30},
"keys":{"type":"p256","digest":"sha384"},"validityDays":{"end":90},
"serials":{"intermediate":"0x10","end":"random","client":"7"}}`,
		},
		{
			name: "yaml",
			file: "issuer.yml",
			content: `directory: out
engine:
  name: openssl
  timeoutSeconds: 30
keys:
  type: p256
  digest: sha384
validityDays:
  end: 90
serials:
  intermediate: "0x10"
  end: random
  client: "7"
`,
		},
		{
			name: "toml",
			file: "issuer.toml",
			content: `directory = "out"

[engine]
name = "openssl"
timeoutSeconds = 30

[keys]
type = "p256"
digest = "sha384"

[validityDays]
end = 90

[serials]
intermediate = "0x10"
end = "random"
client = "7"
`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := config.Load(writeFile(t, tt.file, tt.content))
			require.NoError(t, err)

			assert.Equal(t, "out", c.Directory)
			assert.Equal(t, openssl.Name, c.Engine.Name)
			assert.Equal(t, openssl.DefaultBinary, c.Engine.Binary)
			assert.Equal(t, 30, c.Engine.Timeout)
			assert.Equal(t, 90, c.Validity.End)
			assert.Equal(t, 3650, c.Validity.Root)

			opts, err := c.IssuerOptions()
			require.NoError(t, err)
			assert.Equal(t, engine.P256, opts.KeyType)
			assert.Equal(t, engine.SHA384, opts.Digest)
			assert.Equal(t, 0, big.NewInt(16).Cmp(opts.Serials.Inter))
			assert.Nil(t, opts.Serials.End)
			assert.Equal(t, 0, big.NewInt(7).Cmp(opts.Serials.Client))
		})
	}
}

func TestLoadFromEnv(t *testing.T) {
	path := writeFile(t, "env.yaml", "directory: from-env\n")
	t.Setenv(config.EnvFile, path)

	c, err := config.Load("")
	require.NoError(t, err)
	assert.Equal(t, "from-env", c.Directory)
}

func TestLoadInvalidValuesFallBack(t *testing.T) {
	path := writeFile(t, "bad.json", `{"directory":"","engine":{"timeoutSeconds":-1},"validityDays":{"root":0,"client":-5}}`)

	c, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, config.DefaultDirectory, c.Directory)
	assert.Equal(t, config.DefaultTimeout, c.Engine.Timeout)
	assert.Equal(t, 3650, c.Validity.Root)
	assert.Equal(t, 2000, c.Validity.Client)
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name string
		path func(t *testing.T) string
	}{
		{"missing file", func(t *testing.T) string { return filepath.Join(t.TempDir(), "nope.yaml") }},
		{"broken json", func(t *testing.T) string { return writeFile(t, "c.json", "{") }},
		{"broken yaml", func(t *testing.T) string { return writeFile(t, "c.yaml", "directory: [") }},
		{"broken toml", func(t *testing.T) string { return writeFile(t, "c.toml", "directory = ") }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := config.Load(tt.path(t))
			assert.Error(t, err)
		})
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *config.Config)
		wantErr error
	}{
		{"defaults", func(c *config.Config) {}, nil},
		{"weak key", func(c *config.Config) { c.Keys.Type = "rsa2048" }, engine.ErrWeakKey},
		{"unknown key", func(c *config.Config) { c.Keys.Type = "dsa" }, engine.ErrUnknownKeyType},
		{"weak digest", func(c *config.Config) { c.Keys.Digest = "sha1" }, engine.ErrWeakDigest},
		{"unknown engine", func(c *config.Config) { c.Engine.Name = "hsm" }, config.ErrUnknownEngine},
		{"zero serial", func(c *config.Config) { c.Serials.End = "0" }, serial.ErrInvalidSerial},
		{"random serial", func(c *config.Config) { c.Serials.Client = "RANDOM" }, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := config.Default()
			tt.mutate(c)

			err := c.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)

			_, err = c.IssuerOptions()
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestNewEngine(t *testing.T) {
	c := config.Default()
	e, err := c.NewEngine()
	require.NoError(t, err)
	assert.Equal(t, native.Name, e.Name())

	c.Engine.Name = openssl.Name
	c.Engine.Binary = filepath.Join(t.TempDir(), "no-openssl-here")
	_, err = c.NewEngine()
	assert.ErrorIs(t, err, openssl.ErrUnavailable)

	c.Engine.Name = "hsm"
	_, err = c.NewEngine()
	assert.ErrorIs(t, err, config.ErrUnknownEngine)
}

func TestOverrideSerial(t *testing.T) {
	n, err := config.OverrideSerial("")
	require.NoError(t, err)
	assert.Nil(t, n)

	n, err = config.OverrideSerial("0x7b")
	require.NoError(t, err)
	assert.Equal(t, int64(123), n.Int64())

	n, err = config.OverrideSerial("Random")
	require.NoError(t, err)
	require.NotNil(t, n)
	assert.Positive(t, n.Sign())

	_, err = config.OverrideSerial("abc")
	assert.ErrorIs(t, err, serial.ErrInvalidSerial)
}
