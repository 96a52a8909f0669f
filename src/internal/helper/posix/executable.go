// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package posix

import (
	"os"
	"path/filepath"
	"strings"
)

// DefaultExecutableName is reported when os.Args carries no usable program name.
const DefaultExecutableName = "tls-cert-issuer"

// GetExecutableName returns the executable name without extension, cross-platform compatible.
// It extracts the base name from os.Args[0] and removes the .exe suffix so usage
// strings look identical on Windows and Unix-like systems.
func GetExecutableName() string {
	if len(os.Args) == 0 || os.Args[0] == "" {
		return DefaultExecutableName
	}

	name := filepath.Base(os.Args[0])

	// A Windows path seen on a Unix host (or the reverse) is not split by filepath.Base.
	if strings.Contains(name, "\\") || (strings.Contains(name, "/") && !strings.Contains(name, string(filepath.Separator))) {
		parts := strings.FieldsFunc(name, func(r rune) bool {
			return r == '/' || r == '\\'
		})
		if len(parts) > 0 {
			name = parts[len(parts)-1]
		}
	}

	name = strings.TrimSuffix(name, ".exe")
	if name == "" || name == "." || name == string(filepath.Separator) {
		return DefaultExecutableName
	}

	return name
}

// Usage renders the one-line usage string for a command that takes exactly one
// of the given modes, e.g. "Usage: tls-cert-issuer [ca|client]".
func Usage(modes ...string) string {
	return "Usage: " + GetExecutableName() + " [" + strings.Join(modes, "|") + "]"
}
