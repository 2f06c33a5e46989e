package search

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/poiesic/stockbrief/ai"
	"github.com/poiesic/stockbrief/core"
	"github.com/poiesic/stockbrief/storage"
)

// Index is a similarity index over stored filing fragments.
type Index struct {
	repository    storage.FragmentRepository
	embedder      ai.Embedder
	minSimilarity float32
	logger        *slog.Logger
}

// Option configures an Index.
type Option func(*Index) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(i *Index) error {
		if logger == nil {
			logger = slog.Default()
		}
		i.logger = logger
		return nil
	}
}

// WithMinSimilarity drops matches scoring below threshold before they are returned.
// Default is 0, which leaves relevance decisions to the caller.
func WithMinSimilarity(threshold float32) Option {
	return func(i *Index) error {
		if threshold < 0 || threshold > 1 {
			return fmt.Errorf("min similarity must be in [0,1], got %v", threshold)
		}
		i.minSimilarity = threshold
		return nil
	}
}

// NewIndex creates a new index.
func NewIndex(repository storage.FragmentRepository, embedder ai.Embedder, opts ...Option) (*Index, error) {
	if repository == nil {
		return nil, ErrRepositoryRequired
	}
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}

	i := &Index{
		repository: repository,
		embedder:   embedder,
		logger:     slog.Default(),
	}

	for _, opt := range opts {
		if err := opt(i); err != nil {
			return nil, err
		}
	}
	i.logger = i.logger.With("component", "knowledge-index")

	return i, nil
}

// Search returns up to topK fragments similar to key, highest score first.
func (i *Index) Search(ctx context.Context, key string, topK int) ([]core.KnowledgeFragment, error) {
	if strings.TrimSpace(key) == "" {
		return nil, ErrEmptyText
	}

	embedding, err := i.embedder.EmbedText(ctx, key)
	if err != nil {
		i.logger.Error("error generating embedding for key", "key", key, "err", err)
		return nil, err
	}
	if len(embedding) == 0 {
		return nil, ErrEmptyEmbedding
	}

	matches, err := i.repository.FindSimilar(ctx, core.NormalizeVector(embedding), i.minSimilarity, topK)
	if err != nil {
		i.logger.Error("error querying for similar fragments", "err", err)
		return nil, err
	}

	fragments := make([]core.KnowledgeFragment, 0, len(matches))
	for _, match := range matches {
		fragments = append(fragments, core.KnowledgeFragment{
			ID:    match.Fragment.ID,
			Text:  match.Fragment.Text,
			Score: min(max(match.Score, 0), 1),
		})
	}

	i.logger.Debug("searched knowledge index", "key", key, "matches", len(fragments))
	return fragments, nil
}

// Store embeds fragment and upserts it. Identifier, filing kind and chunk
// type are read from the fragment metadata when present.
func (i *Index) Store(ctx context.Context, fragment core.Fragment) error {
	if strings.TrimSpace(fragment.Text) == "" {
		return ErrEmptyText
	}

	stored := &core.StoredFragment{
		ID:         fragment.ID,
		Identifier: core.Identifier(fragment.Metadata[core.MetaIdentifier]),
		FilingKind: fragment.Metadata[core.MetaFilingKind],
		ChunkType:  fragment.Metadata[core.MetaChunkType],
		Text:       fragment.Text,
	}

	embedding, err := i.embedder.EmbedText(ctx, EmbeddingText(stored))
	if err != nil {
		return fmt.Errorf("embed fragment %s: %w", fragment.ID, err)
	}
	if len(embedding) == 0 {
		return ErrEmptyEmbedding
	}
	stored.Vector = core.NormalizeVector(embedding)

	if err := i.repository.PutFragments(ctx, stored); err != nil {
		return fmt.Errorf("store fragment %s: %w", fragment.ID, err)
	}
	return nil
}

// EmbeddingText is the text a stored fragment is embedded from.
func EmbeddingText(f *core.StoredFragment) string {
	if f.Identifier.IsNone() {
		return f.Text
	}
	return f.Identifier.String() + ": " + f.Text
}
