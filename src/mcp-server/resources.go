// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"runtime"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/H0llyW00dzZ/tls-cert-issuer/src/internal/config"
	"github.com/H0llyW00dzZ/tls-cert-issuer/src/internal/issuance/policy"
)

// Resource URIs.
const (
	uriConfig   = "config://issuer"
	uriVersion  = "info://version"
	uriProfiles = "policy://profiles"
)

// profileExampleServer fills the alt_names section of the profiles resource.
const profileExampleServer = "example.org"

// createResources returns the static resources: effective configuration,
// version information and the extension profiles in OpenSSL syntax.
func createResources(cfg *config.Config, version string) []server.ServerResource {
	return []server.ServerResource{
		{
			Resource: mcp.NewResource(uriConfig, "Issuer configuration",
				mcp.WithResourceDescription("Effective issuer configuration (directory, engine, key type, validity, serials)"),
				mcp.WithMIMEType("application/json"),
			),
			Handler: func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
				return handleConfigResource(cfg)
			},
		},
		{
			Resource: mcp.NewResource(uriVersion, "Server version",
				mcp.WithResourceDescription("Server name, version and Go runtime"),
				mcp.WithMIMEType("application/json"),
			),
			Handler: func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
				return handleVersionResource(version)
			},
		},
		{
			Resource: mcp.NewResource(uriProfiles, "Extension profiles",
				mcp.WithResourceDescription("Certificate extension profiles (end, client, inter) as an OpenSSL extension file"),
				mcp.WithMIMEType("text/plain"),
			),
			Handler: func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
				return handleProfilesResource()
			},
		},
	}
}

// handleConfigResource returns the effective configuration as JSON.
func handleConfigResource(cfg *config.Config) ([]mcp.ResourceContents, error) {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal config: %w", err)
	}

	return []mcp.ResourceContents{
		mcp.TextResourceContents{URI: uriConfig, MIMEType: "application/json", Text: string(data)},
	}, nil
}

// handleVersionResource returns version information as JSON.
func handleVersionResource(version string) ([]mcp.ResourceContents, error) {
	data, err := json.MarshalIndent(map[string]string{
		"name":      serverName,
		"version":   version,
		"goVersion": runtime.Version(),
	}, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal version info: %w", err)
	}

	return []mcp.ResourceContents{
		mcp.TextResourceContents{URI: uriVersion, MIMEType: "application/json", Text: string(data)},
	}, nil
}

// handleProfilesResource renders the declared profiles for an example server.
func handleProfilesResource() ([]mcp.ResourceContents, error) {
	doc, err := policy.Materialize(profileExampleServer)
	if err != nil {
		return nil, err
	}

	return []mcp.ResourceContents{
		mcp.TextResourceContents{URI: uriProfiles, MIMEType: "text/plain", Text: doc.OpenSSLConfig()},
	}, nil
}
