// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package mcpserver

import (
	"context"
	"crypto/x509"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/H0llyW00dzZ/tls-cert-issuer/src/internal/config"
	"github.com/H0llyW00dzZ/tls-cert-issuer/src/internal/issuance/pipeline"
	"github.com/H0llyW00dzZ/tls-cert-issuer/src/internal/issuance/store"
	x509chain "github.com/H0llyW00dzZ/tls-cert-issuer/src/internal/x509/chain"
	"github.com/H0llyW00dzZ/tls-cert-issuer/src/logger"
)

// toolHandlers carries the settings shared by the tool handlers.
type toolHandlers struct {
	cfg *config.Config
	log logger.Logger
}

func newToolHandlers(cfg *config.Config, log logger.Logger) *toolHandlers {
	if cfg == nil {
		cfg = config.Default()
	}
	if log == nil {
		log = logger.Nop()
	}
	return &toolHandlers{cfg: cfg, log: log}
}

// issuer builds an Issuer over the directory, or the configured one when empty.
func (h *toolHandlers) issuer(dir string) (*pipeline.Issuer, string, error) {
	if dir = strings.TrimSpace(dir); dir == "" {
		dir = h.cfg.Directory
	}

	opts, err := h.cfg.IssuerOptions()
	if err != nil {
		return nil, "", err
	}
	eng, err := h.cfg.NewEngine()
	if err != nil {
		return nil, "", err
	}

	return pipeline.New(store.NewDirStore(dir), eng, h.log, opts), dir, nil
}

// handleIssueCA runs the authority flow.
//
// Parameters:
//   - ctx: Context for cancellation
//   - request: Call carrying authority_name, server_name and optional directory
//
// Returns:
//   - *mcp.CallToolResult: Summary and chain tree, or an error result
//   - error: Always nil; failures are reported in the result
func (h *toolHandlers) handleIssueCA(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	authority, err := request.RequireString("authority_name")
	if err != nil {
		return mcp.NewToolResultError("authority_name parameter required"), nil
	}
	server, err := request.RequireString("server_name")
	if err != nil {
		return mcp.NewToolResultError("server_name parameter required"), nil
	}

	iss, dir, err := h.issuer(request.GetString("directory", ""))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid issuer configuration: %v", err)), nil
	}

	out, err := iss.IssueAuthority(ctx, pipeline.AuthorityRequest{AuthorityName: authority, ServerName: server})
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to issue authority: %v", err)), nil
	}

	text, err := summarize(dir, out, store.RoleEnd.FullChain(), x509.ExtKeyUsageServerAuth)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(text), nil
}

// handleIssueClient runs the client flow.
func (h *toolHandlers) handleIssueClient(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := request.RequireString("client_name")
	if err != nil {
		return mcp.NewToolResultError("client_name parameter required"), nil
	}

	sn, err := config.OverrideSerial(request.GetString("serial", ""))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid serial: %v", err)), nil
	}

	iss, dir, err := h.issuer(request.GetString("directory", ""))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid issuer configuration: %v", err)), nil
	}

	out, err := iss.IssueClient(ctx, pipeline.ClientRequest{ClientName: name, Serial: sn})
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to issue client: %v", err)), nil
	}

	text, err := summarize(dir, out, store.RoleClient.FullChain(), x509.ExtKeyUsageClientAuth)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(text), nil
}

// handleDescribeChain renders a chain file.
func (h *toolHandlers) handleDescribeChain(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	dir := strings.TrimSpace(request.GetString("directory", ""))
	if dir == "" {
		dir = h.cfg.Directory
	}
	name := request.GetString("chain", store.RoleEnd.FullChain())
	format := strings.ToLower(request.GetString("format", formatTree))

	data, err := store.Require(ctx, store.NewDirStore(dir), name)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to read chain: %v", err)), nil
	}

	ch, err := x509chain.Parse(data)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to decode chain: %v", err)), nil
	}

	switch format {
	case formatJSON:
		out, err := ch.ToVisualizationJSON()
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to encode chain: %v", err)), nil
		}
		return mcp.NewToolResultText(string(out)), nil
	case formatTable:
		return mcp.NewToolResultText(describeHeader(name, ch) + ch.RenderTable()), nil
	case formatTree:
		return mcp.NewToolResultText(describeHeader(name, ch) + ch.RenderASCIITree()), nil
	default:
		return mcp.NewToolResultError(fmt.Sprintf("unsupported format %q: use tree, table or json", format)), nil
	}
}

// describeHeader reports the chain name and its structural status.
func describeHeader(name string, ch *x509chain.Chain) string {
	status := "valid"
	if err := ch.VerifyOrder(); err != nil {
		status = "invalid: " + err.Error()
	}
	return fmt.Sprintf("%s (%d certificates, order %s)\n\n", name, len(ch.Certs), status)
}

// summarize verifies the full chain for usage and lists the issued artifacts.
func summarize(dir string, out *pipeline.Issuance, fullchain string, usage x509.ExtKeyUsage) (string, error) {
	full := out.Chain(fullchain)
	if full == nil {
		return "", fmt.Errorf("%s was not built", fullchain)
	}

	ch := x509chain.New(full.Certs...)
	if err := ch.VerifyChain(usage); err != nil {
		return "", fmt.Errorf("issued chain failed verification: %w", err)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Issued into %s\n\nCertificates:\n", dir)
	for _, c := range out.Certificates {
		fmt.Fprintf(&b, "- %s: %s (serial %s, expires %s)\n",
			c.Role.Cert(), c.Cert.Subject.CommonName, c.Cert.SerialNumber, c.Cert.NotAfter.Format("2006-01-02"))
	}
	b.WriteString("\nChains:\n")
	for _, c := range out.Chains {
		fmt.Fprintf(&b, "- %s (%d certificates)\n", c.Name, len(c.Certs))
	}
	b.WriteString("\n")
	b.WriteString(ch.RenderASCIITree())
	return b.String(), nil
}
