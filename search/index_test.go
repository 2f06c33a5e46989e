package search

import (
	"context"
	"errors"
	"testing"

	"github.com/poiesic/stockbrief/ai/mock"
	"github.com/poiesic/stockbrief/core"
	"github.com/poiesic/stockbrief/storage"
	"github.com/poiesic/stockbrief/storage/badger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestIndex(t *testing.T, embedder *mock.MockEmbedder) (*Index, storage.FragmentRepository) {
	t.Helper()
	repo, backend, err := badger.NewMemoryRepository()
	require.NoError(t, err)
	t.Cleanup(func() {
		repo.Close()
		backend.Close()
	})

	index, err := NewIndex(repo, embedder)
	require.NoError(t, err)
	return index, repo
}

// axisEmbedder maps known texts onto fixed directions so similarity is predictable.
func axisEmbedder(axes map[string][]float32) *mock.MockEmbedder {
	m := mock.NewMockEmbedder()
	m.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
		if v, ok := axes[text]; ok {
			return v, nil
		}
		return []float32{0, 0, 1}, nil
	}
	return m
}

func TestNewIndex_Validation(t *testing.T) {
	_, err := NewIndex(nil, mock.NewMockEmbedder())
	assert.ErrorIs(t, err, ErrRepositoryRequired)

	repo, backend, err := badger.NewMemoryRepository()
	require.NoError(t, err)
	defer backend.Close()

	_, err = NewIndex(repo, nil)
	assert.ErrorIs(t, err, ErrEmbedderRequired)

	_, err = NewIndex(repo, mock.NewMockEmbedder(), WithMinSimilarity(1.5))
	assert.Error(t, err)
}

func TestIndex_StoreAndSearch(t *testing.T) {
	embedder := axisEmbedder(map[string][]float32{
		"AAPL: Apple revenue grew":   {1, 0, 0},
		"MSFT: Microsoft cloud grew": {0, 1, 0},
		"AAPL how is apple doing":    {0.9, 0.1, 0},
	})
	index, repo := setupTestIndex(t, embedder)
	ctx := context.Background()

	require.NoError(t, index.Store(ctx, core.Fragment{
		ID:   "AAPL_10-K_summary",
		Text: "Apple revenue grew",
		Metadata: map[string]string{
			core.MetaIdentifier: "AAPL",
			core.MetaFilingKind: "10-K",
			core.MetaChunkType:  "summary",
		},
	}))
	require.NoError(t, index.Store(ctx, core.Fragment{
		ID:       "MSFT_10-K_summary",
		Text:     "Microsoft cloud grew",
		Metadata: map[string]string{core.MetaIdentifier: "MSFT"},
	}))

	stored, err := repo.GetFragment(ctx, "AAPL_10-K_summary")
	require.NoError(t, err)
	assert.Equal(t, core.Identifier("AAPL"), stored.Identifier)
	assert.Equal(t, "10-K", stored.FilingKind)
	assert.Equal(t, "summary", stored.ChunkType)

	results, err := index.Search(ctx, "AAPL how is apple doing", 5)
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.Equal(t, "AAPL_10-K_summary", results[0].ID)
	assert.Equal(t, "Apple revenue grew", results[0].Text)
	assert.Greater(t, results[0].Score, float32(0.9))
	assert.GreaterOrEqual(t, results[0].Score, results[1].Score)
	for _, r := range results {
		assert.GreaterOrEqual(t, r.Score, float32(0))
		assert.LessOrEqual(t, r.Score, float32(1))
	}
}

func TestIndex_SearchExcludesOppositeVectors(t *testing.T) {
	embedder := axisEmbedder(map[string][]float32{
		"AAPL: up":   {1, 0, 0},
		"AAPL query": {-1, 0, 0},
	})
	index, _ := setupTestIndex(t, embedder)
	ctx := context.Background()

	require.NoError(t, index.Store(ctx, core.Fragment{ID: "a", Text: "up", Metadata: map[string]string{core.MetaIdentifier: "AAPL"}}))

	results, err := index.Search(ctx, "AAPL query", 5)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestIndex_SearchTopK(t *testing.T) {
	index, _ := setupTestIndex(t, mock.NewMockEmbedder())
	ctx := context.Background()

	for _, text := range []string{"one", "two", "three", "four"} {
		require.NoError(t, index.Store(ctx, core.Fragment{ID: text, Text: text}))
	}

	results, err := index.Search(ctx, "anything", 2)
	require.NoError(t, err)
	assert.LessOrEqual(t, len(results), 2)
}

func TestIndex_StoreIdempotent(t *testing.T) {
	index, repo := setupTestIndex(t, mock.NewMockEmbedder())
	ctx := context.Background()

	fragment := core.Fragment{ID: "TSLA_10-K_summary", Text: "Deliveries rose"}
	require.NoError(t, index.Store(ctx, fragment))
	require.NoError(t, index.Store(ctx, fragment))

	count, err := repo.CountFragments(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestIndex_Errors(t *testing.T) {
	embedder := mock.NewMockEmbedder()
	index, _ := setupTestIndex(t, embedder)
	ctx := context.Background()

	assert.ErrorIs(t, index.Store(ctx, core.Fragment{ID: "x", Text: "  "}), ErrEmptyText)

	_, err := index.Search(ctx, "", 5)
	assert.ErrorIs(t, err, ErrEmptyText)

	embedErr := errors.New("embedding server down")
	embedder.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
		return nil, embedErr
	}
	_, err = index.Search(ctx, "AAPL", 5)
	assert.ErrorIs(t, err, embedErr)
	assert.ErrorIs(t, index.Store(ctx, core.Fragment{ID: "x", Text: "y"}), embedErr)

	embedder.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
		return []float32{}, nil
	}
	_, err = index.Search(ctx, "AAPL", 5)
	assert.ErrorIs(t, err, ErrEmptyEmbedding)
}

func TestEmbeddingText(t *testing.T) {
	assert.Equal(t, "AAPL: text", EmbeddingText(&core.StoredFragment{Identifier: "AAPL", Text: "text"}))
	assert.Equal(t, "text", EmbeddingText(&core.StoredFragment{Text: "text"}))
}
