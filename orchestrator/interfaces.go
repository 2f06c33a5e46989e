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

package orchestrator

import (
	"context"

	"github.com/poiesic/stockbrief/core"
	"github.com/poiesic/stockbrief/ingestion"
)

// QuoteSource returns the current market quote for an identifier.
type QuoteSource interface {
	GetQuote(ctx context.Context, id core.Identifier) (*core.QuoteSnapshot, error)
}

// KnowledgeSearcher runs a similarity search over previously stored fragments.
type KnowledgeSearcher interface {
	Search(ctx context.Context, key string, topK int) ([]core.KnowledgeFragment, error)
}

// Ingester fetches a filing on demand and stores its fragments.
type Ingester interface {
	IngestAndStore(ctx context.Context, id core.Identifier, filingKind string) (*ingestion.Result, error)
}
