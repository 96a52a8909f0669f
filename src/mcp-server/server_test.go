// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package mcpserver

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/mcptest"
	"github.com/mark3labs/mcp-go/server"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/H0llyW00dzZ/tls-cert-issuer/src/internal/config"
)

func startTestServer(t *testing.T, cfg *config.Config) *mcptest.Server {
	t.Helper()

	srv := mcptest.NewUnstartedServer(t)
	for _, def := range createTools(newToolHandlers(cfg, nil)) {
		srv.AddTools(server.ServerTool{Tool: def.Tool, Handler: def.Handler})
	}
	srv.AddResources(createResources(cfg, "test-version")...)
	srv.AddPrompts(createPrompts()...)

	require.NoError(t, srv.Start(context.Background()))
	t.Cleanup(srv.Close)
	return srv
}

func TestServerBuilder(t *testing.T) {
	_, err := NewServerBuilder().WithVersion("test").Build()
	assert.ErrorIs(t, err, ErrNoConfig)

	s, err := NewServerBuilder().
		WithConfig(testConfig(t)).
		WithVersion("test").
		WithDefaultTools().
		WithResources(createResources(config.Default(), "test")...).
		WithPrompts(createPrompts()...).
		WithInstructions(instructions).
		Build()
	require.NoError(t, err)
	require.NotNil(t, s)

	tools := s.ListTools()
	assert.Len(t, tools, 3)
	for _, name := range []string{toolIssueCA, toolIssueClient, toolDescribeChain} {
		assert.Contains(t, tools, name)
	}
}

func TestMCPTools(t *testing.T) {
	cfg := testConfig(t)
	srv := startTestServer(t, cfg)
	client := srv.Client()
	ctx := context.Background()

	list, err := client.ListTools(ctx, mcp.ListToolsRequest{})
	require.NoError(t, err)
	assert.Len(t, list.Tools, 3)

	tests := []struct {
		name           string
		toolName       string
		args           map[string]any
		expectError    bool
		expectContains []string
	}{
		{
			name:           "issue_ca",
			toolName:       toolIssueCA,
			args:           map[string]any{"authority_name": "Example Org", "server_name": "example.org"},
			expectContains: []string{"end.fullchain (3 certificates)"},
		},
		{
			name:           "issue_client",
			toolName:       toolIssueClient,
			args:           map[string]any{"client_name": "example"},
			expectContains: []string{"example client"},
		},
		{
			name:           "describe_chain",
			toolName:       toolDescribeChain,
			args:           map[string]any{"chain": "client.fullchain", "format": "table"},
			expectContains: []string{"clientAuth"},
		},
		{
			name:           "issue_client serial collision",
			toolName:       toolIssueClient,
			args:           map[string]any{"client_name": "again"},
			expectError:    true,
			expectContains: []string{"serial"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := mcp.CallToolRequest{}
			req.Params.Name = tt.toolName
			req.Params.Arguments = tt.args

			result, err := client.CallTool(ctx, req)
			require.NoError(t, err)
			assert.Equal(t, tt.expectError, result.IsError)

			text := resultText(t, result)
			for _, want := range tt.expectContains {
				assert.Contains(t, text, want)
			}
		})
	}
}

func TestResources(t *testing.T) {
	srv := startTestServer(t, testConfig(t))
	client := srv.Client()

	tests := []struct {
		uri      string
		contains []string
	}{
		{uriConfig, []string{`"directory"`, `"p256"`}},
		{uriVersion, []string{"test-version", serverName}},
		{uriProfiles, []string{"[ v3_end ]", "[ v3_client ]", "[ v3_inter ]", "DNS.1 = example.org"}},
	}

	for _, tt := range tests {
		t.Run(tt.uri, func(t *testing.T) {
			req := mcp.ReadResourceRequest{}
			req.Params.URI = tt.uri

			result, err := client.ReadResource(context.Background(), req)
			require.NoError(t, err)
			require.Len(t, result.Contents, 1)

			text, ok := result.Contents[0].(mcp.TextResourceContents)
			require.True(t, ok)
			for _, want := range tt.contains {
				assert.Contains(t, text.Text, want)
			}
		})
	}
}

func TestIssueHierarchyPrompt(t *testing.T) {
	tests := []struct {
		name        string
		args        map[string]string
		expectError bool
		messages    int
	}{
		{"with client", map[string]string{"authority_name": "Example Org", "server_name": "example.org", "client_name": "example"}, false, 5},
		{"without client", map[string]string{"authority_name": "Example Org", "server_name": "example.org"}, false, 4},
		{"missing server", map[string]string{"authority_name": "Example Org"}, true, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := mcp.GetPromptRequest{}
			req.Params.Arguments = tt.args

			result, err := handleIssueHierarchyPrompt(context.Background(), req)
			if tt.expectError {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Len(t, result.Messages, tt.messages)
		})
	}
}

func TestServeInvalidConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("keys:\n  type: rsa1024\n"), 0o600))
	t.Setenv(config.EnvFile, path)

	var out, logs bytes.Buffer
	err := serve(context.Background(), "test", strings.NewReader(""), &out, &logs)
	assert.ErrorContains(t, err, "invalid config")
	assert.Empty(t, out.String())
}

func TestGetVersion(t *testing.T) {
	assert.NotEmpty(t, GetVersion())
}
