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

package reembed

import (
	"context"
	"fmt"
	"time"

	"github.com/poiesic/stockbrief/ai"
	"github.com/poiesic/stockbrief/core"
	"github.com/poiesic/stockbrief/search"
	"github.com/poiesic/stockbrief/storage"
)

// BatchProcessor re-embeds one batch of fragments and writes them back.
type BatchProcessor struct {
	repo       storage.FragmentRepository
	embedder   ai.Embedder
	maxRetries int
	retryDelay time.Duration
}

// NewBatchProcessor creates a new batch processor.
func NewBatchProcessor(repo storage.FragmentRepository, embedder ai.Embedder, maxRetries int, retryDelay time.Duration) *BatchProcessor {
	return &BatchProcessor{
		repo:       repo,
		embedder:   embedder,
		maxRetries: maxRetries,
		retryDelay: retryDelay,
	}
}

// Process embeds the batch with the same text the knowledge index uses and
// stores the normalized vectors.
func (bp *BatchProcessor) Process(ctx context.Context, fragments []*core.StoredFragment) error {
	if len(fragments) == 0 {
		return nil
	}

	texts := make([]string, len(fragments))
	for i, f := range fragments {
		texts[i] = search.EmbeddingText(f)
	}

	var vectors [][]float32
	err := RetryWithBackoff(ctx, func() error {
		var err error
		vectors, err = bp.embedder.EmbedTexts(ctx, texts)
		return err
	}, bp.maxRetries, bp.retryDelay)
	if err != nil {
		return fmt.Errorf("embedding %d fragments: %w", len(fragments), err)
	}
	if len(vectors) != len(fragments) {
		return fmt.Errorf("embedding count mismatch: expected %d, got %d", len(fragments), len(vectors))
	}

	for i, f := range fragments {
		f.Vector = core.NormalizeVector(vectors[i])
	}

	if err := bp.repo.PutFragments(ctx, fragments...); err != nil {
		return fmt.Errorf("storing fragments: %w", err)
	}
	return nil
}
