package storage

import (
	"context"

	"github.com/poiesic/stockbrief/core"
)

// FragmentRepository provides operations for managing stored filing fragments.
// Implementations must be thread-safe and support concurrent access.
type FragmentRepository interface {
	// PutFragments inserts or replaces fragments by ID.
	// Sets InsertedAt on first write and UpdatedAt on every write.
	PutFragments(ctx context.Context, fragments ...*core.StoredFragment) error

	// GetFragment retrieves a single fragment by ID.
	// Returns ErrNotFound if the fragment doesn't exist.
	GetFragment(ctx context.Context, id string) (*core.StoredFragment, error)

	// FindSimilar finds fragments similar to the given unit vector.
	// Returns fragments with similarity >= minSimilarity, up to limit results,
	// ordered by similarity score (highest first).
	FindSimilar(ctx context.Context, vector []float32, minSimilarity float32, limit int) ([]*core.ScoredFragment, error)

	// ForEachFragment calls fn with batches of at most batchSize fragments in key order.
	// Iteration stops at the first error returned by fn or when ctx is done.
	ForEachFragment(ctx context.Context, batchSize int, fn func(batch []*core.StoredFragment) error) error

	// CountFragments returns the number of stored fragments.
	CountFragments(ctx context.Context) (int, error)

	// Close releases repository resources. The backend is closed separately.
	Close() error
}
