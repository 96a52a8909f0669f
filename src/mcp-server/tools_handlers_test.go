// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package mcpserver

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/H0llyW00dzZ/tls-cert-issuer/src/internal/config"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.Directory = t.TempDir()
	cfg.Keys.Type = "p256"
	return cfg
}

func callTool(t *testing.T, handler ToolHandler, args map[string]any) *mcp.CallToolResult {
	t.Helper()
	req := mcp.CallToolRequest{}
	req.Params.Arguments = args

	result, err := handler(context.Background(), req)
	require.NoError(t, err)
	require.NotNil(t, result)
	return result
}

func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	var b strings.Builder
	for _, c := range result.Content {
		if tc, ok := c.(mcp.TextContent); ok {
			b.WriteString(tc.Text)
		}
	}
	return b.String()
}

func TestHandleIssueCA(t *testing.T) {
	cfg := testConfig(t)
	h := newToolHandlers(cfg, nil)

	result := callTool(t, h.handleIssueCA, map[string]any{
		"authority_name": "Example Org",
		"server_name":    "example.org",
	})
	require.False(t, result.IsError, resultText(t, result))

	text := resultText(t, result)
	assert.Contains(t, text, "Issued into "+cfg.Directory)
	assert.Contains(t, text, "inter.cert: Example Org ECDSA level 2 intermediate (serial 123")
	assert.Contains(t, text, "end.cert: example.org (serial 456")
	assert.Contains(t, text, "end.fullchain (3 certificates)")
	assert.FileExists(t, filepath.Join(cfg.Directory, "end.fullchain"))
}

func TestHandleIssueClient(t *testing.T) {
	cfg := testConfig(t)
	h := newToolHandlers(cfg, nil)

	result := callTool(t, h.handleIssueClient, map[string]any{"client_name": "example"})
	require.True(t, result.IsError)
	assert.Contains(t, resultText(t, result), "policy.yaml")

	result = callTool(t, h.handleIssueCA, map[string]any{
		"authority_name": "Example Org",
		"server_name":    "example.org",
	})
	require.False(t, result.IsError, resultText(t, result))

	result = callTool(t, h.handleIssueClient, map[string]any{"client_name": "example"})
	require.False(t, result.IsError, resultText(t, result))
	assert.Contains(t, resultText(t, result), "client.cert: example client (serial 789")

	result = callTool(t, h.handleIssueClient, map[string]any{"client_name": "second"})
	require.True(t, result.IsError)
	assert.Contains(t, resultText(t, result), "already issued")

	result = callTool(t, h.handleIssueClient, map[string]any{"client_name": "second", "serial": "random"})
	assert.False(t, result.IsError, resultText(t, result))
}

func TestHandleDescribeChain(t *testing.T) {
	cfg := testConfig(t)
	h := newToolHandlers(cfg, nil)

	result := callTool(t, h.handleIssueCA, map[string]any{
		"authority_name": "Example Org",
		"server_name":    "example.org",
	})
	require.False(t, result.IsError, resultText(t, result))

	tests := []struct {
		name        string
		args        map[string]any
		expectError bool
		contains    []string
	}{
		{
			name:     "default tree",
			args:     map[string]any{},
			contains: []string{"end.fullchain (3 certificates, order valid)", "└── [✓] Example Org ECDSA CA"},
		},
		{
			name:     "table",
			args:     map[string]any{"chain": "end.chain", "format": "table"},
			contains: []string{"end.chain (2 certificates", "Extended Key Usage"},
		},
		{
			name:     "json",
			args:     map[string]any{"format": "json"},
			contains: []string{`"signed_by"`, `"self_signed"`},
		},
		{
			name:        "unknown format",
			args:        map[string]any{"format": "der"},
			expectError: true,
			contains:    []string{"unsupported format"},
		},
		{
			name:        "missing chain",
			args:        map[string]any{"chain": "client.fullchain"},
			expectError: true,
			contains:    []string{"client.fullchain"},
		},
		{
			name:        "path traversal",
			args:        map[string]any{"chain": "../end.fullchain"},
			expectError: true,
			contains:    []string{"failed to read chain"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := callTool(t, h.handleDescribeChain, tt.args)
			assert.Equal(t, tt.expectError, result.IsError)

			text := resultText(t, result)
			for _, want := range tt.contains {
				assert.Contains(t, text, want)
			}
		})
	}

	result = callTool(t, h.handleDescribeChain, map[string]any{"format": "json"})
	var decoded map[string]any
	assert.NoError(t, json.Unmarshal([]byte(resultText(t, result)), &decoded))
}

func TestHandlerErrorPaths(t *testing.T) {
	cfg := testConfig(t)
	h := newToolHandlers(cfg, nil)

	badCfg := testConfig(t)
	badCfg.Keys.Type = "rsa2048"
	bad := newToolHandlers(badCfg, nil)

	tests := []struct {
		name          string
		handler       ToolHandler
		args          map[string]any
		errorContains string
	}{
		{"issue_ca missing authority", h.handleIssueCA, map[string]any{"server_name": "example.org"}, "authority_name parameter required"},
		{"issue_ca missing server", h.handleIssueCA, map[string]any{"authority_name": "Example Org"}, "server_name parameter required"},
		{"issue_ca blank names", h.handleIssueCA, map[string]any{"authority_name": " ", "server_name": "example.org"}, "empty name"},
		{"issue_ca weak key", bad.handleIssueCA, map[string]any{"authority_name": "A", "server_name": "a.example"}, "invalid issuer configuration"},
		{"issue_client missing name", h.handleIssueClient, map[string]any{}, "client_name parameter required"},
		{"issue_client bad serial", h.handleIssueClient, map[string]any{"client_name": "x", "serial": "-1"}, "invalid serial"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := callTool(t, tt.handler, tt.args)
			assert.True(t, result.IsError)
			assert.Contains(t, resultText(t, result), tt.errorContains)
		})
	}

	entries, err := os.ReadDir(badCfg.Directory)
	require.NoError(t, err)
	assert.Empty(t, entries)
}
