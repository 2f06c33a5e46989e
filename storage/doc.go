// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package storage provides the storage abstraction for the local knowledge index.
//
// The knowledge index holds filing fragments that were ingested for earlier
// queries, together with their embedding vectors, so later questions about the
// same company can reuse them instead of fetching the filing again.
//
// # Constructor Return Type Pattern
//
// Public constructors in backend packages return the interfaces defined here:
//
//	repo, err := badger.NewFragmentRepository(backend)  // returns storage.FragmentRepository
//
// Consumers (the search index, the reembed command) only see
// FragmentRepository, and tests swap in the in-memory badger backend.
//
// # Idempotency
//
// Fragments are keyed by a hash of their string ID. Writing a fragment whose
// ID already exists replaces it and keeps the original InsertedAt, so
// re-ingesting the same filing never duplicates knowledge.
//
// # Thread Safety
//
// All repository implementations must be thread-safe and support
// concurrent access from multiple goroutines.
package storage
