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
	"log/slog"
	"strings"
	"time"

	"github.com/poiesic/stockbrief/ai"
	"github.com/poiesic/stockbrief/core"
)

// Resolver turns a free-text query into a company identifier.
type Resolver struct {
	extractor ai.TickerExtractor
	timeout   time.Duration
	logger    *slog.Logger
}

// NewResolver creates a Resolver that gives the extractor at most timeout per query.
func NewResolver(extractor ai.TickerExtractor, timeout time.Duration, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{extractor: extractor, timeout: timeout, logger: logger}
}

// Resolve returns the identifier named by query, or core.NoIdentifier.
// Extractor failures resolve to core.NoIdentifier.
func (r *Resolver) Resolve(ctx context.Context, query string) core.Identifier {
	id, _ := r.resolve(ctx, query)
	return id
}

// resolve also reports whether the extractor itself failed.
func (r *Resolver) resolve(ctx context.Context, query string) (core.Identifier, error) {
	if strings.TrimSpace(query) == "" {
		return core.NoIdentifier, nil
	}

	callCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	raw, err := r.extractor.ExtractTicker(callCtx, query)
	if err != nil {
		err = core.Unavailable(core.CollaboratorIdentifier, err)
		r.logger.Warn("identifier extraction failed", "err", err)
		return core.NoIdentifier, err
	}

	id, err := core.NormalizeIdentifier(raw)
	if err != nil {
		r.logger.Debug("discarding extracted identifier", "raw", raw, "err", err)
		return core.NoIdentifier, nil
	}
	return id, nil
}
