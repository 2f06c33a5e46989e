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

package openai

import (
	"context"
	"errors"
	"log/slog"

	"github.com/poiesic/stockbrief/ai"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

// ErrNoChoices indicates the model returned no completion choices.
var ErrNoChoices = errors.New("model returned no choices")

// TickerExtractor implements ai.TickerExtractor using OpenAI-compatible chat APIs.
type TickerExtractor struct {
	client llms.Model
	logger *slog.Logger
}

// newTickerExtractor is an internal constructor that returns the concrete type.
// Used by Provider to manage the instance.
func newTickerExtractor(config *ai.Config) (*TickerExtractor, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	client, err := openai.New(
		openai.WithBaseURL(config.ChatHost),
		openai.WithToken(token(config)),
		openai.WithModel(config.ExtractionModel),
	)
	if err != nil {
		return nil, err
	}

	return &TickerExtractor{
		client: client,
		logger: slog.Default().With("component", "openai-extractor"),
	}, nil
}

// NewTickerExtractor creates a new ticker extractor using the provided configuration.
//
// Returns ai.TickerExtractor interface to enforce abstraction.
func NewTickerExtractor(config *ai.Config) (ai.TickerExtractor, error) {
	return newTickerExtractor(config)
}

// ExtractTicker asks the model which ticker query is about. The answer is
// returned raw apart from code fences and extra lines; normalization is the
// caller's job.
func (e *TickerExtractor) ExtractTicker(ctx context.Context, query string) (string, error) {
	prompt, err := tickerPrompt.Format(map[string]any{"query": query})
	if err != nil {
		return "", err
	}

	content := []llms.MessageContent{
		{
			Role:  llms.ChatMessageTypeHuman,
			Parts: []llms.ContentPart{llms.TextPart(prompt)},
		},
	}

	response, err := e.client.GenerateContent(ctx, content, llms.WithTemperature(0.0), llms.WithMaxTokens(16))
	if err != nil {
		e.logger.Error("failed to generate content", "err", err)
		return "", err
	}
	if len(response.Choices) < 1 {
		return "", ErrNoChoices
	}

	answer := firstLine(stripCodeFences(response.Choices[0].Content))
	e.logger.Debug("extracted ticker", "answer", answer)
	return answer, nil
}
