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

// Package agents provides HTTP clients for the remote collaborator services.
//
// Each client adapts one service to the interface its consumer declares:
//
//   - QuoteClient: GET /stock_data?symbol= (orchestrator.QuoteSource)
//   - FilingClient: POST /process (ingestion.FilingProcessor), paced by a rate limiter
//   - RetrieverClient: POST /query and POST /store (orchestrator.KnowledgeSearcher
//     and ingestion.FragmentStore) for deployments that keep the similarity
//     index in a separate service
//
// All clients share one pooled http.Transport. Per-call deadlines come from the
// caller's context; the client timeout is only an upper bound.
package agents
