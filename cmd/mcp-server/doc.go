// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

// mcp-server serves the certificate issuance flows as MCP tools over stdio.
//
// # Usage
//
//	TLS_CERT_ISSUER_CONFIG=issuer.yaml mcp-server
//
// # Tools
//
//	issue_ca        authority_name, server_name, directory
//	issue_client    client_name, directory, serial
//	describe_chain  directory, chain, format (tree|table|json)
//
// Logs are written to stderr as JSON lines; stdout carries the protocol.
package main
