// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

// Package store provides the flat key store that owns every artifact of an
// issuance run, keyed by artifact name ("inter.key", "end.fullchain", ...).
//
// [DirStore] persists artifacts into one directory with atomic writes and an
// exclusive run lock; [MemoryStore] keeps them in memory for tests.
package store
