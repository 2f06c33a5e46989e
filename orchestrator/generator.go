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
	"strings"
	"time"

	"github.com/poiesic/stockbrief/ai"
	"github.com/poiesic/stockbrief/core"
)

const fallbackExcerptLength = 600

// ResponseGenerator produces the narrative, falling back to a template when
// the generator is unavailable.
type ResponseGenerator struct {
	generator  ai.NarrativeGenerator
	summaryCap int
	timeout    time.Duration
	logger     *slog.Logger
}

// NewResponseGenerator creates a ResponseGenerator from cfg.
func NewResponseGenerator(generator ai.NarrativeGenerator, cfg *Config, logger *slog.Logger) *ResponseGenerator {
	if logger == nil {
		logger = slog.Default()
	}
	return &ResponseGenerator{
		generator:  generator,
		summaryCap: cfg.SummaryCap,
		timeout:    cfg.GenerateTimeout,
		logger:     logger,
	}
}

// Generate returns a result for gc. The only error is an invalid context,
// reported as core.ErrInternalContractViolation.
func (g *ResponseGenerator) Generate(ctx context.Context, gc *core.GenerationContext) (*core.OrchestrationResult, error) {
	if err := core.ValidateGenerationContext(gc, g.summaryCap); err != nil {
		return nil, fmt.Errorf("%w: %w", core.ErrInternalContractViolation, err)
	}

	result := &core.OrchestrationResult{
		Identifier: gc.Identifier,
		Source:     gc.Source,
	}

	narrative, err := g.generate(ctx, gc)
	if err != nil {
		g.logger.Warn("narrative generation failed, using fallback",
			"identifier", gc.Identifier,
			"err", core.Unavailable(core.CollaboratorGeneration, err))
		result.Narrative = FallbackNarrative(gc)
		result.Degraded = true
		return result, nil
	}

	result.Narrative = narrative
	return result, nil
}

func (g *ResponseGenerator) generate(ctx context.Context, gc *core.GenerationContext) (string, error) {
	callCtx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	narrative, err := g.generator.Generate(callCtx, gc)
	if err != nil {
		return "", fmt.Errorf("%w: %w", core.ErrGenerationFailed, err)
	}
	narrative = strings.TrimSpace(narrative)
	if narrative == "" {
		return "", fmt.Errorf("%w: empty narrative", core.ErrGenerationFailed)
	}
	return narrative, nil
}

// FallbackNarrative renders a deterministic brief from the raw quote fields
// and an excerpt of the summary.
func FallbackNarrative(gc *core.GenerationContext) string {
	var b strings.Builder

	fmt.Fprintf(&b, "%s (automated summary, narrative generation unavailable). ", gc.Identifier)

	fmt.Fprintf(&b, "Market data: %s. ", gc.Quote.Describe())

	kind := gc.FilingKind
	if kind == "" {
		kind = "filing"
	}
	excerpt := core.CollapseWhitespace(gc.Summary.Text)
	if truncated := core.TruncateRunes(excerpt, fallbackExcerptLength); truncated != excerpt {
		excerpt = strings.TrimSpace(truncated) + "..."
	}
	fmt.Fprintf(&b, "%s summary (%s): %s", kind, gc.Source, excerpt)

	return b.String()
}
