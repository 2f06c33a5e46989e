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
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/poiesic/stockbrief/ai"
	"github.com/poiesic/stockbrief/core"
	"github.com/poiesic/stockbrief/ingestion"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
)

const tracerName = "github.com/poiesic/stockbrief/orchestrator"

// Orchestrator answers questions about publicly traded companies.
type Orchestrator struct {
	resolver  *Resolver
	cache     *CacheLookup
	quotes    QuoteSource
	ingester  Ingester
	assembler *Assembler
	generator *ResponseGenerator

	config *Config
	tracer trace.Tracer
	logger *slog.Logger
}

// Option configures an Orchestrator.
type Option func(*Orchestrator) error

// WithConfig sets the orchestration policy. The config is validated.
func WithConfig(cfg *Config) Option {
	return func(o *Orchestrator) error {
		if cfg == nil {
			cfg = DefaultConfig()
		}
		if err := cfg.Validate(); err != nil {
			return err
		}
		o.config = cfg
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(o *Orchestrator) error {
		if logger == nil {
			logger = slog.Default()
		}
		o.logger = logger
		return nil
	}
}

// WithTracerProvider sets the tracer provider used for pipeline spans.
// Default is the global provider.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(o *Orchestrator) error {
		if tp == nil {
			tp = otel.GetTracerProvider()
		}
		o.tracer = tp.Tracer(tracerName)
		return nil
	}
}

// New creates an Orchestrator over the given collaborators.
func New(
	extractor ai.TickerExtractor,
	quotes QuoteSource,
	searcher KnowledgeSearcher,
	ingester Ingester,
	generator ai.NarrativeGenerator,
	opts ...Option,
) (*Orchestrator, error) {
	switch {
	case extractor == nil:
		return nil, ErrExtractorRequired
	case quotes == nil:
		return nil, ErrQuoteSourceRequired
	case searcher == nil:
		return nil, ErrSearcherRequired
	case ingester == nil:
		return nil, ErrIngesterRequired
	case generator == nil:
		return nil, ErrGeneratorRequired
	}

	o := &Orchestrator{
		quotes:   quotes,
		ingester: ingester,
		config:   DefaultConfig(),
		tracer:   otel.Tracer(tracerName),
		logger:   slog.Default(),
	}

	for _, opt := range opts {
		if err := opt(o); err != nil {
			return nil, err
		}
	}

	o.logger = o.logger.With("component", "orchestrator")
	o.resolver = NewResolver(extractor, o.config.ResolveTimeout, o.logger)
	o.cache = NewCacheLookup(searcher, o.config, o.logger)
	o.assembler = NewAssembler(o.config)
	o.generator = NewResponseGenerator(generator, o.config, o.logger)

	return o, nil
}

// Answer runs the full pipeline for query.
func (o *Orchestrator) Answer(ctx context.Context, query string) (*core.OrchestrationResult, error) {
	return o.AnswerWithMonitor(ctx, query, nil)
}

// AnswerWithMonitor runs the full pipeline for query, reporting each stage to monitor.
// It returns an error only for an internal contract violation or when ctx ends.
func (o *Orchestrator) AnswerWithMonitor(ctx context.Context, query string, monitor Monitor) (*core.OrchestrationResult, error) {
	if monitor == nil {
		monitor = &noopMonitor{}
	}

	requestID := uuid.NewString()
	logger := o.logger.With("request_id", requestID)

	ctx, span := o.tracer.Start(ctx, "orchestrator.answer",
		trace.WithAttributes(attribute.String("request.id", requestID)))
	defer span.End()

	monitor.Start(query)
	var unavailable []string

	id, err := o.resolve(ctx, query)
	if err != nil {
		unavailable = append(unavailable, core.CollaboratorIdentifier)
	}
	if cerr := cancelled(ctx); cerr != nil {
		span.SetStatus(codes.Error, cerr.Error())
		return nil, cerr
	}

	if id.IsNone() {
		monitor.NoIdentifier()
		result := &core.OrchestrationResult{
			RequestID:     requestID,
			Narrative:     o.config.ClarificationMessage,
			Identifier:    core.NoIdentifier,
			Source:        core.SourceUnavailable,
			Clarification: true,
			Unavailable:   unavailable,
		}
		span.SetAttributes(attribute.Bool("clarification", true))
		logger.Info("no identifier resolved", "query", query)
		monitor.Finish(result)
		return result, nil
	}

	monitor.Resolved(id)
	span.SetAttributes(attribute.String("identifier", id.String()))

	var (
		quote     *core.QuoteSnapshot
		quoteErr  error
		fragments []core.KnowledgeFragment
		hit       bool
		cacheErr  error
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		quote, quoteErr = o.fetchQuote(gctx, id)
		return nil
	})
	g.Go(func() error {
		fragments, hit, cacheErr = o.lookup(gctx, id, query)
		return nil
	})
	_ = g.Wait()

	monitor.AfterQuote(quote, quoteErr)
	monitor.AfterCacheLookup(fragments, hit, cacheErr)
	if quoteErr != nil {
		unavailable = append(unavailable, core.CollaboratorQuote)
	}
	if cacheErr != nil {
		unavailable = append(unavailable, core.CollaboratorSimilarity)
	}
	if cerr := cancelled(ctx); cerr != nil {
		span.SetStatus(codes.Error, cerr.Error())
		return nil, cerr
	}

	var (
		summary string
		source  = core.SourceUnavailable
		stored  int
	)
	if hit {
		summary = joinFragments(fragments)
		source = core.SourceCache
	} else {
		monitor.BeforeIngest(id, o.config.FilingKind)
		result, ingestErr := o.ingest(ctx, id)
		monitor.AfterIngest(result, ingestErr)
		if ingestErr != nil {
			unavailable = append(unavailable, core.CollaboratorIngestion)
			logger.Warn("ingestion failed, continuing without filing summary", "identifier", id, "err", ingestErr)
		} else {
			summary = result.Summary
			source = core.SourceFreshIngest
			stored = result.Stored
		}
		if cerr := cancelled(ctx); cerr != nil {
			span.SetStatus(codes.Error, cerr.Error())
			return nil, cerr
		}
	}

	gc := o.assembler.Assemble(query, id, quote, summary, source)
	monitor.Assembled(gc)

	result, err := o.generate(ctx, gc)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		logger.Error("internal contract violation", "identifier", id, "err", err)
		return nil, err
	}
	if cerr := cancelled(ctx); cerr != nil {
		span.SetStatus(codes.Error, cerr.Error())
		return nil, cerr
	}
	if result.Degraded {
		unavailable = append(unavailable, core.CollaboratorGeneration)
	}

	result.RequestID = requestID
	result.FragmentsStored = stored
	result.Unavailable = unavailable

	span.SetAttributes(
		attribute.String("summary.source", string(result.Source)),
		attribute.Bool("degraded", result.Degraded),
	)
	logger.Info("answered query",
		"identifier", id,
		"source", result.Source,
		"degraded", result.Degraded,
		"fragments_stored", stored,
		"unavailable", unavailable)

	monitor.Finish(result)
	return result, nil
}

func (o *Orchestrator) resolve(ctx context.Context, query string) (core.Identifier, error) {
	ctx, span := o.tracer.Start(ctx, "orchestrator.resolve")
	defer span.End()

	id, err := o.resolver.resolve(ctx, query)
	if err != nil {
		span.RecordError(err)
	}
	span.SetAttributes(attribute.String("identifier", id.String()))
	return id, err
}

func (o *Orchestrator) fetchQuote(ctx context.Context, id core.Identifier) (*core.QuoteSnapshot, error) {
	ctx, span := o.tracer.Start(ctx, "orchestrator.quote")
	defer span.End()

	callCtx, cancel := context.WithTimeout(ctx, o.config.QuoteTimeout)
	defer cancel()

	quote, err := o.quotes.GetQuote(callCtx, id)
	if err != nil {
		err = core.Unavailable(core.CollaboratorQuote, err)
		span.RecordError(err)
		o.logger.Warn("quote unavailable", "identifier", id, "err", err)
		return nil, err
	}
	return quote, nil
}

func (o *Orchestrator) lookup(ctx context.Context, id core.Identifier, query string) ([]core.KnowledgeFragment, bool, error) {
	ctx, span := o.tracer.Start(ctx, "orchestrator.cache_lookup")
	defer span.End()

	fragments, hit, err := o.cache.lookup(ctx, id, query)
	if err != nil {
		span.RecordError(err)
	}
	span.SetAttributes(
		attribute.Bool("cache.hit", hit),
		attribute.Int("cache.results", len(fragments)),
	)
	return fragments, hit, err
}

func (o *Orchestrator) ingest(ctx context.Context, id core.Identifier) (*ingestion.Result, error) {
	ctx, span := o.tracer.Start(ctx, "orchestrator.ingest",
		trace.WithAttributes(attribute.String("filing.kind", o.config.FilingKind)))
	defer span.End()

	callCtx, cancel := context.WithTimeout(ctx, o.config.IngestTimeout)
	defer cancel()

	result, err := o.ingester.IngestAndStore(callCtx, id, o.config.FilingKind)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	if result == nil {
		err = &core.IngestionFailedError{Reason: "no result"}
		span.RecordError(err)
		return nil, err
	}
	span.SetAttributes(
		attribute.Int("fragments.attempted", result.Attempted),
		attribute.Int("fragments.stored", result.Stored),
	)
	return result, nil
}

func (o *Orchestrator) generate(ctx context.Context, gc *core.GenerationContext) (*core.OrchestrationResult, error) {
	ctx, span := o.tracer.Start(ctx, "orchestrator.generate")
	defer span.End()

	result, err := o.generator.Generate(ctx, gc)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	span.SetAttributes(attribute.Bool("degraded", result.Degraded))
	return result, nil
}

func cancelled(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %w", ErrAnswerCancelled, err)
	}
	return nil
}
