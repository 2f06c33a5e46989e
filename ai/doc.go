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

// Package ai provides abstractions for the model-backed collaborators used by stockbrief.
//
// Three services sit behind interfaces here:
//
//   - TickerExtractor: maps a free-text question to a raw ticker answer
//   - NarrativeGenerator: writes the short market brief from an assembled context
//   - Embedder: produces vectors for the local knowledge index
//
// AIProvider aggregates them for convenient initialization.
//
// # Implementation Packages
//
//   - ai/openai: production implementation using OpenAI-compatible APIs via langchaingo
//   - ai/mock: test doubles for unit testing without external services
//
// # Constructor Return Type Pattern
//
// Public constructors (openai.NewProvider, openai.NewEmbedder, etc.) return
// interface types. Mock constructors return concrete types so tests can inject
// behavior and assert on call counts:
//
//	gen := mock.NewMockNarrativeGenerator()
//	gen.GenerateFunc = func(ctx context.Context, gc *core.GenerationContext) (string, error) {
//	    return "", errors.New("model offline")
//	}
//	count := gen.CallCount()
//
// # Usage Example
//
//	cfg := ai.NewConfig(ai.WithHost("http://localhost:11434/v1"))
//	provider, err := openai.NewProvider(cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer provider.Close()
//
//	raw, err := provider.TickerExtractor().ExtractTicker(ctx, "How is Apple doing?")
package ai
