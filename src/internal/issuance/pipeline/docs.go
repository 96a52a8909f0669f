// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

// Package pipeline sequences the issuance of a certificate hierarchy.
//
// The stages are exposed individually on [Issuer]:
//
//	MaterializePolicy -> GenerateRoot -> GenerateKeyPair -> ExtractKey -> Sign -> BuildChain
//
// and composed into two fixed flows. [Issuer.IssueAuthority] creates the root CA,
// the intermediate CA and the server certificate with their chain files.
// [Issuer.IssueClient] adds a client certificate signed by the existing
// intermediate. Each flow is an ordered list of named steps; the first failing
// step aborts the flow and already written artifacts are left in place.
//
// All artifacts live in a [store.Store] and all cryptography is delegated to an
// [engine.Engine], so a flow can run in memory against any engine.
package pipeline
