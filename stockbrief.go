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

// Package stockbrief wires storage, model providers, the agent clients and the
// orchestration pipeline into a single Service.
package stockbrief

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"github.com/poiesic/stockbrief/agents"
	"github.com/poiesic/stockbrief/ai"
	"github.com/poiesic/stockbrief/ai/openai"
	"github.com/poiesic/stockbrief/config"
	"github.com/poiesic/stockbrief/core"
	"github.com/poiesic/stockbrief/ingestion"
	"github.com/poiesic/stockbrief/orchestrator"
	"github.com/poiesic/stockbrief/reembed"
	"github.com/poiesic/stockbrief/search"
	"github.com/poiesic/stockbrief/storage"
	"github.com/poiesic/stockbrief/storage/badger"
	"go.opentelemetry.io/otel/trace"
)

// knowledgeStore is both halves of the retrieval collaborator.
type knowledgeStore interface {
	orchestrator.KnowledgeSearcher
	ingestion.FragmentStore
}

type Service struct {
	backend      *badger.Backend
	repo         storage.FragmentRepository
	provider     ai.AIProvider
	pipeline     *ingestion.Pipeline
	orchestrator *orchestrator.Orchestrator
	logger       *slog.Logger
}

// ServiceOption configures a Service.
type ServiceOption func(*serviceOptions)

type serviceOptions struct {
	provider       ai.AIProvider
	quotes         orchestrator.QuoteSource
	filings        ingestion.FilingProcessor
	tracerProvider trace.TracerProvider
	logger         *slog.Logger
}

// WithAIProvider replaces the OpenAI-compatible provider built from the config.
func WithAIProvider(provider ai.AIProvider) ServiceOption {
	return func(o *serviceOptions) {
		o.provider = provider
	}
}

// WithQuoteSource replaces the HTTP quote client.
func WithQuoteSource(quotes orchestrator.QuoteSource) ServiceOption {
	return func(o *serviceOptions) {
		o.quotes = quotes
	}
}

// WithFilingProcessor replaces the HTTP fetch+extract client.
func WithFilingProcessor(filings ingestion.FilingProcessor) ServiceOption {
	return func(o *serviceOptions) {
		o.filings = filings
	}
}

// WithTracerProvider sets the tracer provider for pipeline spans.
func WithTracerProvider(tp trace.TracerProvider) ServiceOption {
	return func(o *serviceOptions) {
		o.tracerProvider = tp
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) ServiceOption {
	return func(o *serviceOptions) {
		o.logger = logger
	}
}

// NewService opens storage and builds the answer pipeline described by cfg.
// A nil cfg uses config.Default().
func NewService(cfg *config.Config, opts ...ServiceOption) (*Service, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	options := &serviceOptions{}
	for _, opt := range opts {
		opt(options)
	}
	logger := options.logger
	if logger == nil {
		logger = slog.Default()
	}

	var closers []func() error
	fail := func(err error) (*Service, error) {
		for i := len(closers) - 1; i >= 0; i-- {
			if cerr := closers[i](); cerr != nil {
				logger.Error("error releasing resources", "err", cerr)
			}
		}
		return nil, err
	}

	backend, err := badger.OpenBackend(cfg.Storage.Path, cfg.Storage.InMemory, badger.WithBackendLogger(logger))
	if err != nil {
		return nil, err
	}
	closers = append(closers, backend.Close)

	repo, err := badger.NewFragmentRepository(backend)
	if err != nil {
		return fail(err)
	}
	closers = append(closers, repo.Close)

	provider := options.provider
	if provider == nil {
		provider, err = openai.NewProvider(cfg.AIConfig())
		if err != nil {
			return fail(err)
		}
	}
	closers = append(closers, provider.Close)

	httpClient := agents.NewPooledClient(cfg.Agents.Timeout.Duration)
	clientOpts := []agents.Option{agents.WithHTTPClient(httpClient), agents.WithLogger(logger)}

	quotes := options.quotes
	if quotes == nil {
		quotes, err = agents.NewQuoteClient(cfg.Agents.QuoteURL, clientOpts...)
		if err != nil {
			return fail(err)
		}
	}

	filings := options.filings
	if filings == nil {
		filings, err = agents.NewFilingClient(cfg.Agents.FilingURL, cfg.Agents.FilingInterval.Duration, clientOpts...)
		if err != nil {
			return fail(err)
		}
	}

	var knowledge knowledgeStore
	switch cfg.Retrieval.Mode {
	case config.RetrievalRemote:
		knowledge, err = agents.NewRetrieverClient(cfg.Agents.RetrieverURL, clientOpts...)
	default:
		knowledge, err = search.NewIndex(repo, provider.Embedder(), search.WithLogger(logger))
	}
	if err != nil {
		return fail(err)
	}

	pipelineOpts := []ingestion.Option{
		ingestion.WithStoreTimeout(cfg.Ingestion.StoreTimeout.Duration),
		ingestion.WithLogger(logger),
	}
	if cfg.Ingestion.PoolSize > 0 {
		pipelineOpts = append(pipelineOpts, ingestion.WithPoolSize(cfg.Ingestion.PoolSize))
	}
	pipeline, err := ingestion.NewPipeline(filings, knowledge, pipelineOpts...)
	if err != nil {
		return fail(err)
	}
	closers = append(closers, func() error { pipeline.Release(); return nil })

	orch, err := orchestrator.New(
		provider.TickerExtractor(),
		quotes,
		knowledge,
		pipeline,
		provider.NarrativeGenerator(),
		orchestrator.WithConfig(cfg.OrchestratorConfig()),
		orchestrator.WithLogger(logger),
		orchestrator.WithTracerProvider(options.tracerProvider),
	)
	if err != nil {
		return fail(err)
	}

	logger.Info("service ready",
		"storage", cfg.Storage.Path,
		"in_memory", cfg.Storage.InMemory,
		"retrieval", cfg.Retrieval.Mode)

	return &Service{
		backend:      backend,
		repo:         repo,
		provider:     provider,
		pipeline:     pipeline,
		orchestrator: orch,
		logger:       logger,
	}, nil
}

// Answer answers a single question.
func (s *Service) Answer(ctx context.Context, query string) (*core.OrchestrationResult, error) {
	return s.orchestrator.Answer(ctx, query)
}

// AnswerWithMonitor answers a single question, reporting each stage to monitor.
func (s *Service) AnswerWithMonitor(ctx context.Context, query string, monitor orchestrator.Monitor) (*core.OrchestrationResult, error) {
	return s.orchestrator.AnswerWithMonitor(ctx, query, monitor)
}

// Fragments returns the stored fragments for id, or every fragment when id is none.
func (s *Service) Fragments(ctx context.Context, id core.Identifier) ([]*core.StoredFragment, error) {
	var out []*core.StoredFragment
	err := s.repo.ForEachFragment(ctx, 256, func(batch []*core.StoredFragment) error {
		for _, f := range batch {
			if id.IsNone() || f.Identifier == id {
				out = append(out, f)
			}
		}
		return nil
	})
	return out, err
}

// NewReembedder returns a reembedder over the local fragment store using the
// configured embedder.
func (s *Service) NewReembedder(cfg *reembed.Config, progress io.Writer) (*reembed.Reembedder, error) {
	return reembed.NewReembedder(s.repo, s.provider.Embedder(), cfg, progress)
}

// Close releases the pipeline, provider and storage.
func (s *Service) Close() error {
	s.pipeline.Release()

	var errs []error
	if err := s.provider.Close(); err != nil {
		s.logger.Error("error closing AI provider", "err", err)
		errs = append(errs, err)
	}
	if err := s.repo.Close(); err != nil {
		s.logger.Error("error closing fragment repository", "err", err)
		errs = append(errs, err)
	}
	if err := s.backend.Close(); err != nil {
		s.logger.Error("error closing backend storage", "err", err)
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}
