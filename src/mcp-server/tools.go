// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package mcpserver

import (
	"github.com/mark3labs/mcp-go/mcp"
)

// Tool names.
const (
	toolIssueCA       = "issue_ca"
	toolIssueClient   = "issue_client"
	toolDescribeChain = "describe_chain"
)

// Output formats of describe_chain.
const (
	formatTree  = "tree"
	formatTable = "table"
	formatJSON  = "json"
)

// createTools returns the issuance tool definitions bound to h.
//
// The function defines the following tools:
//   - issue_ca: root CA, intermediate CA, server certificate and their chains
//   - issue_client: client certificate signed by the existing intermediate
//   - describe_chain: renders a chain file from an artifact directory
func createTools(h *toolHandlers) []ToolDefinition {
	return []ToolDefinition{
		{
			Tool: mcp.NewTool(toolIssueCA,
				mcp.WithDescription("Issue a root CA, an intermediate CA and a server certificate with end.chain and end.fullchain"),
				mcp.WithString("authority_name",
					mcp.Required(),
					mcp.Description("Authority name used in the CA subjects, e.g. 'Example Org'"),
				),
				mcp.WithString("server_name",
					mcp.Required(),
					mcp.Description("Server name used as subject and subject alternative name, e.g. 'example.org'"),
				),
				mcp.WithString("directory",
					mcp.Description("Artifact directory (default: "+h.cfg.Directory+")"),
				),
			),
			Handler: h.handleIssueCA,
		},
		{
			Tool: mcp.NewTool(toolIssueClient,
				mcp.WithDescription("Issue a client certificate from the intermediate CA created by issue_ca"),
				mcp.WithString("client_name",
					mcp.Required(),
					mcp.Description("Client name; the subject becomes '<client_name> client'"),
				),
				mcp.WithString("directory",
					mcp.Description("Artifact directory (default: "+h.cfg.Directory+")"),
				),
				mcp.WithString("serial",
					mcp.Description("Client serial: decimal, 0x-prefixed hex or 'random' (default: "+h.cfg.Serials.Client+")"),
				),
			),
			Handler: h.handleIssueClient,
		},
		{
			Tool: mcp.NewTool(toolDescribeChain,
				mcp.WithDescription("Verify and render an issued certificate chain"),
				mcp.WithString("directory",
					mcp.Description("Artifact directory (default: "+h.cfg.Directory+")"),
				),
				mcp.WithString("chain",
					mcp.Description("Chain file name (default: end.fullchain)"),
					mcp.DefaultString("end.fullchain"),
				),
				mcp.WithString("format",
					mcp.Description("Output format: 'tree', 'table' or 'json' (default: tree)"),
					mcp.DefaultString(formatTree),
					mcp.Enum(formatTree, formatTable, formatJSON),
				),
			),
			Handler: h.handleDescribeChain,
		},
	}
}
