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

// Package mock provides test double implementations of AI service interfaces.
//
// This package contains mock implementations of ai.Embedder, ai.TickerExtractor,
// ai.NarrativeGenerator and ai.AIProvider for use in unit tests. The mocks let
// tests run without model servers and give controlled, deterministic behavior.
//
// Call counters are atomic because the orchestrator calls collaborators from
// several goroutines per query.
//
// # Usage in Tests
//
//	mockProvider := mock.NewMockProvider()
//	raw, err := mockProvider.TickerExtractor().ExtractTicker(ctx, "How is Apple doing?") // "AAPL"
//
//	gen := mock.NewMockNarrativeGenerator()
//	gen.GenerateFunc = func(ctx context.Context, gc *core.GenerationContext) (string, error) {
//	    return "", errors.New("HTTP 500")
//	}
//
// # Default Behavior
//
//   - MockEmbedder: returns deterministic unit vectors based on a text hash
//   - MockTickerExtractor: maps well-known company names to tickers, else "NONE"
//   - MockNarrativeGenerator: returns a one-line brief built from the context
package mock
