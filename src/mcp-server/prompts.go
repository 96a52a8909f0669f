// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package mcpserver

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// createPrompts returns the guided workflows.
func createPrompts() []server.ServerPrompt {
	return []server.ServerPrompt{
		{
			Prompt: mcp.NewPrompt("issue-hierarchy",
				mcp.WithPromptDescription("Issue a private CA hierarchy with a server and a client certificate"),
				mcp.WithArgument("authority_name",
					mcp.ArgumentDescription("Authority name, e.g. 'Example Org'"),
					mcp.RequiredArgument(),
				),
				mcp.WithArgument("server_name",
					mcp.ArgumentDescription("Server name, e.g. 'example.org'"),
					mcp.RequiredArgument(),
				),
				mcp.WithArgument("client_name",
					mcp.ArgumentDescription("Client name (default: skip the client certificate)"),
				),
			),
			Handler: handleIssueHierarchyPrompt,
		},
	}
}

// handleIssueHierarchyPrompt walks through issue_ca, issue_client and describe_chain.
func handleIssueHierarchyPrompt(ctx context.Context, request mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	authority := request.Params.Arguments["authority_name"]
	serverName := request.Params.Arguments["server_name"]
	client := request.Params.Arguments["client_name"]

	if authority == "" || serverName == "" {
		return nil, fmt.Errorf("authority_name and server_name are required")
	}

	messages := []mcp.PromptMessage{
		mcp.NewPromptMessage(
			mcp.RoleAssistant,
			mcp.NewTextContent(fmt.Sprintf("I'll issue a certificate hierarchy for %q with the server certificate %q.", authority, serverName)),
		),
		mcp.NewPromptMessage(
			mcp.RoleUser,
			mcp.NewTextContent(fmt.Sprintf(`1. Use the "%s" tool with authority_name=%q and server_name=%q.`, toolIssueCA, authority, serverName)),
		),
	}

	step := 2
	if client != "" {
		messages = append(messages, mcp.NewPromptMessage(
			mcp.RoleUser,
			mcp.NewTextContent(fmt.Sprintf(`%d. Use the "%s" tool with client_name=%q in the same directory.`, step, toolIssueClient, client)),
		))
		step++
	}

	messages = append(messages,
		mcp.NewPromptMessage(
			mcp.RoleUser,
			mcp.NewTextContent(fmt.Sprintf(`%d. Use the "%s" tool with format "table" to review end.fullchain.`, step, toolDescribeChain)),
		),
		mcp.NewPromptMessage(
			mcp.RoleAssistant,
			mcp.NewTextContent("Finally, distribute ca.cert as the trust anchor and keep every *.key and *.rsa file private."),
		),
	)

	return mcp.NewGetPromptResult("Certificate Hierarchy Issuance Workflow", messages), nil
}
