package badger

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/poiesic/stockbrief/core"
	"github.com/poiesic/stockbrief/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestRepository(t *testing.T) storage.FragmentRepository {
	t.Helper()
	repo, backend, err := NewMemoryRepository()
	require.NoError(t, err)
	t.Cleanup(func() {
		repo.Close()
		backend.Close()
	})
	return repo
}

func TestPutFragments_GetFragment(t *testing.T) {
	repo := setupTestRepository(t)
	ctx := context.Background()

	fragment := &core.StoredFragment{
		ID:         "AAPL_10-K_summary",
		Identifier: "AAPL",
		FilingKind: "10-K",
		ChunkType:  "summary",
		Text:       "Apple reported revenue of $383B.",
		Vector:     []float32{0.6, 0.8},
	}
	require.NoError(t, repo.PutFragments(ctx, fragment))
	assert.False(t, fragment.InsertedAt.IsZero())
	assert.False(t, fragment.UpdatedAt.IsZero())

	got, err := repo.GetFragment(ctx, "AAPL_10-K_summary")
	require.NoError(t, err)
	assert.Equal(t, fragment.Text, got.Text)
	assert.Equal(t, core.Identifier("AAPL"), got.Identifier)
	assert.Equal(t, fragment.Vector, got.Vector)
}

func TestGetFragment_NotFound(t *testing.T) {
	repo := setupTestRepository(t)

	_, err := repo.GetFragment(context.Background(), "missing")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestPutFragments_Idempotent(t *testing.T) {
	repo := setupTestRepository(t)
	ctx := context.Background()

	first := &core.StoredFragment{ID: "MSFT_10-K_summary", Text: "v1"}
	require.NoError(t, repo.PutFragments(ctx, first))
	insertedAt := first.InsertedAt

	time.Sleep(2 * time.Millisecond)
	second := &core.StoredFragment{ID: "MSFT_10-K_summary", Text: "v2"}
	require.NoError(t, repo.PutFragments(ctx, second))

	count, err := repo.CountFragments(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	got, err := repo.GetFragment(ctx, "MSFT_10-K_summary")
	require.NoError(t, err)
	assert.Equal(t, "v2", got.Text)
	assert.True(t, got.InsertedAt.Equal(insertedAt.Truncate(time.Microsecond)))
	assert.True(t, got.UpdatedAt.After(got.InsertedAt))
}

func TestPutFragments_EmptyID(t *testing.T) {
	repo := setupTestRepository(t)

	err := repo.PutFragments(context.Background(), &core.StoredFragment{Text: "orphan"})
	assert.ErrorIs(t, err, storage.ErrInvalidQuery)
}

func TestForEachFragment(t *testing.T) {
	repo := setupTestRepository(t)
	ctx := context.Background()

	for i := 0; i < 7; i++ {
		require.NoError(t, repo.PutFragments(ctx, &core.StoredFragment{
			ID:   fmt.Sprintf("NVDA_10-K_%d", i),
			Text: fmt.Sprintf("chunk %d", i),
		}))
	}

	var sizes []int
	seen := map[string]bool{}
	err := repo.ForEachFragment(ctx, 3, func(batch []*core.StoredFragment) error {
		sizes = append(sizes, len(batch))
		for _, f := range batch {
			seen[f.ID] = true
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []int{3, 3, 1}, sizes)
	assert.Len(t, seen, 7)
}

func TestForEachFragment_StopsOnError(t *testing.T) {
	repo := setupTestRepository(t)
	ctx := context.Background()

	for i := 0; i < 4; i++ {
		require.NoError(t, repo.PutFragments(ctx, &core.StoredFragment{ID: fmt.Sprintf("META_10-K_%d", i), Text: "x"}))
	}

	calls := 0
	err := repo.ForEachFragment(ctx, 2, func(batch []*core.StoredFragment) error {
		calls++
		return assert.AnError
	})
	assert.ErrorIs(t, err, assert.AnError)
	assert.Equal(t, 1, calls)
}

func TestForEachFragment_WritesDuringIteration(t *testing.T) {
	repo := setupTestRepository(t)
	ctx := context.Background()

	require.NoError(t, repo.PutFragments(ctx, &core.StoredFragment{ID: "AMZN_10-K_summary", Text: "x"}))

	err := repo.ForEachFragment(ctx, 10, func(batch []*core.StoredFragment) error {
		for _, f := range batch {
			f.Vector = []float32{1}
		}
		return repo.PutFragments(ctx, batch...)
	})
	require.NoError(t, err)

	got, err := repo.GetFragment(ctx, "AMZN_10-K_summary")
	require.NoError(t, err)
	assert.Equal(t, []float32{1}, got.Vector)
}

func TestForEachFragment_InvalidBatchSize(t *testing.T) {
	repo := setupTestRepository(t)

	err := repo.ForEachFragment(context.Background(), 0, func([]*core.StoredFragment) error { return nil })
	assert.ErrorIs(t, err, storage.ErrInvalidQuery)
}

func TestRepository_ClosedBackend(t *testing.T) {
	repo, backend, err := NewMemoryRepository()
	require.NoError(t, err)
	require.NoError(t, backend.Close())

	_, err = repo.CountFragments(context.Background())
	assert.ErrorIs(t, err, storage.ErrStorageClosed)

	_, err = NewFragmentRepository(backend)
	assert.ErrorIs(t, err, storage.ErrStorageClosed)
}
