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
	"cmp"
	"context"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/poiesic/stockbrief/core"
)

// CacheLookup decides whether previously stored knowledge can answer a query.
type CacheLookup struct {
	searcher  KnowledgeSearcher
	threshold float32
	topK      int
	timeout   time.Duration
	logger    *slog.Logger
}

// NewCacheLookup creates a CacheLookup using the threshold, topK and search
// timeout from cfg.
func NewCacheLookup(searcher KnowledgeSearcher, cfg *Config, logger *slog.Logger) *CacheLookup {
	if logger == nil {
		logger = slog.Default()
	}
	return &CacheLookup{
		searcher:  searcher,
		threshold: cfg.RelevanceThreshold,
		topK:      cfg.TopK,
		timeout:   cfg.SearchTimeout,
		logger:    logger,
	}
}

// CompositeKey builds the similarity search key for an identifier and query.
func CompositeKey(id core.Identifier, query string) string {
	return core.CollapseWhitespace(id.String() + " " + query)
}

// Lookup returns the cached fragments, highest score first, and whether they
// were accepted. Search failures count as a miss.
func (c *CacheLookup) Lookup(ctx context.Context, id core.Identifier, query string) ([]core.KnowledgeFragment, bool) {
	fragments, hit, _ := c.lookup(ctx, id, query)
	return fragments, hit
}

func (c *CacheLookup) lookup(ctx context.Context, id core.Identifier, query string) ([]core.KnowledgeFragment, bool, error) {
	callCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	fragments, err := c.searcher.Search(callCtx, CompositeKey(id, query), c.topK)
	if err != nil {
		err = core.Unavailable(core.CollaboratorSimilarity, err)
		c.logger.Warn("similarity search failed, treating as miss", "identifier", id, "err", err)
		return nil, false, err
	}

	sorted := slices.Clone(fragments)
	slices.SortStableFunc(sorted, func(a, b core.KnowledgeFragment) int {
		return cmp.Compare(b.Score, a.Score)
	})

	if len(sorted) == 0 || sorted[0].Score <= c.threshold {
		best := float32(0)
		if len(sorted) > 0 {
			best = sorted[0].Score
		}
		c.logger.Debug("cache miss", "identifier", id, "results", len(sorted), "best_score", best)
		return sorted, false, nil
	}

	c.logger.Debug("cache hit", "identifier", id, "results", len(sorted), "best_score", sorted[0].Score)
	return sorted, true, nil
}

// joinFragments concatenates fragment texts in relevance order.
func joinFragments(fragments []core.KnowledgeFragment) string {
	texts := make([]string, 0, len(fragments))
	for _, f := range fragments {
		if text := strings.TrimSpace(f.Text); text != "" {
			texts = append(texts, text)
		}
	}
	return strings.Join(texts, "\n\n")
}
