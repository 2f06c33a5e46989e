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

// Package search provides the local knowledge index over stored filing fragments.
//
// Index embeds text with an ai.Embedder and keeps fragments in a
// storage.FragmentRepository. It serves both sides of the cache:
//
//   - Search embeds a lookup key and returns the closest fragments with
//     cosine similarity scores clamped to [0,1]
//   - Store embeds a freshly ingested fragment and upserts it by ID
//
// Fragment text is embedded with its identifier prefix ("AAPL: ...") so
// lookups keyed on identifier plus question land near the right company.
package search
