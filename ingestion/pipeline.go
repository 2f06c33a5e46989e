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

package ingestion

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/stockbrief/core"
)

// DefaultStoreTimeout bounds a single fragment store call.
const DefaultStoreTimeout = 15 * time.Second

// FilingProcessor fetches a filing and extracts its summary and fragments.
type FilingProcessor interface {
	Process(ctx context.Context, id core.Identifier, filingKind string) (*core.FilingPayload, error)
}

// FragmentStore persists a single knowledge fragment.
type FragmentStore interface {
	Store(ctx context.Context, fragment core.Fragment) error
}

// Result reports the outcome of a successful ingestion.
type Result struct {
	Summary   string
	Attempted int
	Stored    int
	Failed    int
}

// Pipeline runs fetch+extract and stores the resulting fragments.
type Pipeline struct {
	processor    FilingProcessor
	store        FragmentStore
	pool         *ants.Pool
	storeTimeout time.Duration
	logger       *slog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline) error

// WithPoolSize sets the worker pool size for concurrent fragment storage.
// Default is runtime.NumCPU() / 2, with a minimum of 1.
func WithPoolSize(size int) Option {
	return func(p *Pipeline) error {
		if size < 1 {
			size = 1
		}

		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}
		if p.pool != nil {
			p.pool.Release()
		}
		p.pool = pool
		return nil
	}
}

// WithStoreTimeout sets the timeout applied to each fragment store call.
func WithStoreTimeout(timeout time.Duration) Option {
	return func(p *Pipeline) error {
		if timeout <= 0 {
			return ErrInvalidStoreTimeout
		}
		p.storeTimeout = timeout
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) error {
		if logger == nil {
			logger = slog.Default()
		}
		p.logger = logger
		return nil
	}
}

// NewPipeline creates a new ingestion pipeline.
func NewPipeline(processor FilingProcessor, store FragmentStore, opts ...Option) (*Pipeline, error) {
	if processor == nil {
		return nil, ErrProcessorRequired
	}
	if store == nil {
		return nil, ErrStoreRequired
	}

	poolSize := runtime.NumCPU() / 2
	if poolSize < 1 {
		poolSize = 1
	}

	pool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, err
	}

	p := &Pipeline{
		processor:    processor,
		store:        store,
		pool:         pool,
		storeTimeout: DefaultStoreTimeout,
		logger:       slog.Default(),
	}

	for _, opt := range opts {
		if optErr := opt(p); optErr != nil {
			p.Release()
			return nil, optErr
		}
	}

	p.logger = p.logger.With("component", "ingestion")
	return p, nil
}

// IngestAndStore fetches the filing for id and stores each extracted fragment.
// Any failure to obtain a successful payload is reported as a
// *core.IngestionFailedError. Individual store failures are not errors.
func (p *Pipeline) IngestAndStore(ctx context.Context, id core.Identifier, filingKind string) (*Result, error) {
	if err := core.ValidateIdentifier(id); err != nil {
		return nil, &core.IngestionFailedError{Reason: "invalid identifier", Err: err}
	}

	payload, err := p.processor.Process(ctx, id, filingKind)
	if err != nil {
		return nil, &core.IngestionFailedError{Reason: "fetch+extract call failed", Err: err}
	}
	if payload == nil {
		return nil, &core.IngestionFailedError{Reason: "empty payload"}
	}
	if !payload.Succeeded() {
		reason := fmt.Sprintf("status %q", payload.Status)
		if payload.Message != "" {
			reason += ": " + payload.Message
		}
		return nil, &core.IngestionFailedError{Reason: reason}
	}

	fragments := p.prepare(id, filingKind, payload.Fragments)
	stored, failed := p.storeAll(ctx, fragments)

	p.logger.Info("ingestion complete",
		"identifier", id,
		"filing_kind", filingKind,
		"fragments", len(fragments),
		"stored", stored,
		"failed", failed)

	return &Result{
		Summary:   payload.Summary,
		Attempted: len(fragments),
		Stored:    stored,
		Failed:    failed,
	}, nil
}

// prepare drops empty fragments and fills in IDs and metadata.
func (p *Pipeline) prepare(id core.Identifier, filingKind string, fragments []core.Fragment) []core.Fragment {
	prepared := make([]core.Fragment, 0, len(fragments))
	for _, f := range fragments {
		if core.CollapseWhitespace(f.Text) == "" {
			p.logger.Debug("skipping empty fragment", "identifier", id, "fragment_id", f.ID)
			continue
		}

		meta := make(map[string]string, len(f.Metadata)+3)
		for k, v := range f.Metadata {
			meta[k] = v
		}
		if meta[core.MetaIdentifier] == "" {
			meta[core.MetaIdentifier] = id.String()
		}
		if meta[core.MetaFilingKind] == "" {
			meta[core.MetaFilingKind] = filingKind
		}
		if meta[core.MetaChunkType] == "" {
			meta[core.MetaChunkType] = "text"
		}

		fragmentID := f.ID
		if fragmentID == "" {
			fragmentID = core.FragmentID(id, filingKind, f.Text)
		}

		prepared = append(prepared, core.Fragment{ID: fragmentID, Text: f.Text, Metadata: meta})
	}
	return prepared
}

func (p *Pipeline) storeAll(ctx context.Context, fragments []core.Fragment) (int, int) {
	var (
		wg     sync.WaitGroup
		stored atomic.Int64
		failed atomic.Int64
	)

	for _, fragment := range fragments {
		wg.Add(1)
		task := func() {
			defer wg.Done()
			if err := p.storeOne(ctx, fragment); err != nil {
				failed.Add(1)
				p.logger.Warn("error storing fragment", "fragment_id", fragment.ID, "err", err)
				return
			}
			stored.Add(1)
		}
		if err := p.pool.Submit(task); err != nil {
			wg.Done()
			failed.Add(1)
			p.logger.Warn("error submitting fragment", "fragment_id", fragment.ID, "err", err)
		}
	}

	wg.Wait()
	return int(stored.Load()), int(failed.Load())
}

func (p *Pipeline) storeOne(ctx context.Context, fragment core.Fragment) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	storeCtx, cancel := context.WithTimeout(ctx, p.storeTimeout)
	defer cancel()

	if err := p.store.Store(storeCtx, fragment); err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return core.Unavailable(core.CollaboratorStorage, err)
		}
		return err
	}
	return nil
}

// Release releases the worker pool.
// The pipeline should not be used after calling Release.
func (p *Pipeline) Release() {
	if p.pool != nil {
		p.pool.Release()
	}
}
