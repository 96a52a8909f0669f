// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package posix

import (
	"os"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
)

func withArgs(t *testing.T, args []string) {
	t.Helper()
	orig := os.Args
	os.Args = args
	t.Cleanup(func() { os.Args = orig })
}

func TestGetExecutableName(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		expected string
	}{
		{name: "Relative path", args: []string{"./tls-cert-issuer"}, expected: "tls-cert-issuer"},
		{name: "Just filename", args: []string{"issuer"}, expected: "issuer"},
		{name: "Empty args", args: []string{}, expected: DefaultExecutableName},
		{name: "Empty first arg", args: []string{""}, expected: DefaultExecutableName},
		{name: "Foreign windows separators", args: []string{"C:\\tools\\pki\\issuer.exe"}, expected: "issuer"},
	}

	if runtime.GOOS != "windows" {
		tests = append(tests,
			struct {
				name     string
				args     []string
				expected string
			}{name: "Unix absolute path", args: []string{"/usr/local/bin/tls-cert-issuer"}, expected: "tls-cert-issuer"},
		)
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			withArgs(t, tt.args)
			assert.Equal(t, tt.expected, GetExecutableName())
		})
	}
}

func TestUsage(t *testing.T) {
	withArgs(t, []string{"/opt/bin/tls-cert-issuer"})

	assert.Equal(t, "Usage: tls-cert-issuer [ca|client]", Usage("ca", "client"))
	assert.Equal(t, "Usage: tls-cert-issuer []", Usage())
}
