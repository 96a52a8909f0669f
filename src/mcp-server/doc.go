// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

// Package mcpserver exposes the certificate issuance flows as [MCP] tools.
//
// Tools:
//   - issue_ca: issue the root CA, the intermediate CA and the server certificate
//   - issue_client: issue a client certificate from an existing intermediate
//   - describe_chain: render an issued chain as a tree, a table or JSON
//
// The server speaks MCP over stdio, so all logging goes to stderr as JSON lines.
// Tool failures are reported as MCP error results, never as protocol errors.
//
// [MCP]: https://modelcontextprotocol.io/docs/getting-started/intro
package mcpserver
