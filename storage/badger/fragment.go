package badger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/stockbrief/core"
	"github.com/poiesic/stockbrief/storage"
)

// FragmentRepository implements storage.FragmentRepository for BadgerDB.
type FragmentRepository struct {
	backend *Backend
}

var _ storage.FragmentRepository = (*FragmentRepository)(nil)

// NewFragmentRepository creates a fragment repository on an open backend.
func NewFragmentRepository(backend *Backend) (storage.FragmentRepository, error) {
	if backend == nil || backend.IsClosed() {
		return nil, storage.ErrStorageClosed
	}
	return &FragmentRepository{backend: backend}, nil
}

// Close is a no-op; the backend owns the database handle.
func (r *FragmentRepository) Close() error {
	return nil
}

// FindSimilar delegates to the backend.
func (r *FragmentRepository) FindSimilar(ctx context.Context, vector []float32, minSimilarity float32, limit int) ([]*core.ScoredFragment, error) {
	if r.backend.IsClosed() {
		return nil, storage.ErrStorageClosed
	}
	return r.backend.FindSimilar(ctx, vector, minSimilarity, limit)
}

// PutFragments inserts or replaces fragments by ID.
func (r *FragmentRepository) PutFragments(ctx context.Context, fragments ...*core.StoredFragment) error {
	if r.backend.IsClosed() {
		return storage.ErrStorageClosed
	}
	return r.backend.WithTx(func(tx *badger.Txn) error {
		now := time.Now().UTC()
		for _, fragment := range fragments {
			if fragment.ID == "" {
				return fmt.Errorf("%w: fragment ID is empty", storage.ErrInvalidQuery)
			}
			key := makeFragmentKey(fragment.Key())

			old, err := readFragment(tx, key)
			if err != nil && !errors.Is(err, storage.ErrNotFound) {
				return err
			}
			if old != nil && !old.InsertedAt.IsZero() {
				fragment.InsertedAt = old.InsertedAt
			} else if fragment.InsertedAt.IsZero() {
				fragment.InsertedAt = now
			}
			fragment.UpdatedAt = now

			if err := tx.Set(key, storage.MarshalStoredFragment(fragment)); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
}

// GetFragment retrieves a single fragment by ID.
func (r *FragmentRepository) GetFragment(ctx context.Context, id string) (*core.StoredFragment, error) {
	if r.backend.IsClosed() {
		return nil, storage.ErrStorageClosed
	}
	var fragment *core.StoredFragment
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		var err error
		fragment, err = readFragment(tx, makeFragmentKey(core.IDFromContent(id)))
		return err
	}, false)
	if err != nil {
		return nil, err
	}
	// Hash collisions surface as a different stored ID
	if fragment.ID != id {
		return nil, storage.ErrNotFound
	}
	return fragment, nil
}

// ForEachFragment walks all fragments in key order in batches.
func (r *FragmentRepository) ForEachFragment(ctx context.Context, batchSize int, fn func(batch []*core.StoredFragment) error) error {
	if batchSize <= 0 {
		return fmt.Errorf("%w: batch size must be positive", storage.ErrInvalidQuery)
	}
	if r.backend.IsClosed() {
		return storage.ErrStorageClosed
	}

	// Collect keys first so fn may write fragments without holding the read transaction.
	var keys [][]byte
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = []byte(fragmentPrefix + ":")
		iter := tx.NewIterator(opts)
		defer iter.Close()
		for iter.Rewind(); iter.Valid(); iter.Next() {
			keys = append(keys, iter.Item().KeyCopy(nil))
		}
		return nil
	}, false)
	if err != nil {
		return err
	}

	for start := 0; start < len(keys); start += batchSize {
		if err := ctx.Err(); err != nil {
			return err
		}
		end := min(start+batchSize, len(keys))

		batch := make([]*core.StoredFragment, 0, end-start)
		err := r.backend.WithTx(func(tx *badger.Txn) error {
			for _, key := range keys[start:end] {
				fragment, err := readFragment(tx, key)
				if errors.Is(err, storage.ErrNotFound) {
					continue
				}
				if err != nil {
					return err
				}
				batch = append(batch, fragment)
			}
			return nil
		}, false)
		if err != nil {
			return err
		}
		if len(batch) == 0 {
			continue
		}
		if err := fn(batch); err != nil {
			return err
		}
	}
	return nil
}

// CountFragments returns the number of stored fragments.
func (r *FragmentRepository) CountFragments(ctx context.Context) (int, error) {
	if r.backend.IsClosed() {
		return 0, storage.ErrStorageClosed
	}
	count := 0
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = []byte(fragmentPrefix + ":")
		iter := tx.NewIterator(opts)
		defer iter.Close()
		for iter.Rewind(); iter.Valid(); iter.Next() {
			count++
		}
		return nil
	}, false)
	return count, err
}

// readFragment reads and decodes one fragment, mapping a missing key to storage.ErrNotFound.
func readFragment(tx *badger.Txn, key []byte) (*core.StoredFragment, error) {
	item, err := tx.Get(key)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	var fragment *core.StoredFragment
	err = item.Value(func(val []byte) error {
		var err error
		fragment, err = storage.UnmarshalStoredFragment(val)
		return err
	})
	return fragment, err
}
