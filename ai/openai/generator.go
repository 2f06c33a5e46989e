package openai

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/poiesic/stockbrief/ai"
	"github.com/poiesic/stockbrief/core"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

// ErrEmptyNarrative indicates the model answered with blank text.
var ErrEmptyNarrative = errors.New("model returned an empty narrative")

// NarrativeGenerator implements ai.NarrativeGenerator using OpenAI-compatible chat APIs.
type NarrativeGenerator struct {
	client      llms.Model
	temperature float64
	maxTokens   int
	logger      *slog.Logger
}

func newNarrativeGenerator(config *ai.Config) (*NarrativeGenerator, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	client, err := openai.New(
		openai.WithBaseURL(config.ChatHost),
		openai.WithToken(token(config)),
		openai.WithModel(config.GenerationModel),
	)
	if err != nil {
		return nil, err
	}

	return &NarrativeGenerator{
		client:      client,
		temperature: config.Temperature,
		maxTokens:   config.MaxTokens,
		logger:      slog.Default().With("component", "openai-generator"),
	}, nil
}

// NewNarrativeGenerator creates a brief generator using the provided configuration.
//
// Returns ai.NarrativeGenerator interface to enforce abstraction.
func NewNarrativeGenerator(config *ai.Config) (ai.NarrativeGenerator, error) {
	return newNarrativeGenerator(config)
}

// Generate writes a short brief for gc.
func (g *NarrativeGenerator) Generate(ctx context.Context, gc *core.GenerationContext) (string, error) {
	prompt, err := formatBriefPrompt(gc)
	if err != nil {
		return "", err
	}

	content := []llms.MessageContent{
		{
			Role:  llms.ChatMessageTypeHuman,
			Parts: []llms.ContentPart{llms.TextPart(prompt)},
		},
	}

	response, err := g.client.GenerateContent(ctx, content,
		llms.WithTemperature(g.temperature),
		llms.WithMaxTokens(g.maxTokens))
	if err != nil {
		g.logger.Error("failed to generate brief", "identifier", gc.Identifier, "err", err)
		return "", err
	}
	if len(response.Choices) < 1 {
		return "", ErrNoChoices
	}

	narrative := strings.TrimSpace(response.Choices[0].Content)
	if narrative == "" {
		return "", ErrEmptyNarrative
	}
	return narrative, nil
}

// formatBriefPrompt fills the brief template from gc.
func formatBriefPrompt(gc *core.GenerationContext) (string, error) {
	return briefPrompt.Format(map[string]any{
		"query":          gc.Query,
		"ticker":         gc.Identifier.String(),
		"stock_data":     gc.Quote.Describe(),
		"filing_summary": gc.Summary.Text,
		"filing_type":    gc.FilingKind,
		"data_source":    string(gc.Source),
	})
}
