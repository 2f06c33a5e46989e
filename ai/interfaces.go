package ai

import (
	"context"

	"github.com/poiesic/stockbrief/core"
)

// Embedder generates vector embeddings for text.
// Implementations must be safe for concurrent use.
type Embedder interface {
	// EmbedText generates a vector embedding for a single text string.
	EmbedText(ctx context.Context, text string) ([]float32, error)

	// EmbedTexts generates vector embeddings for multiple text strings in a batch.
	// The returned slice contains embeddings in the same order as the input texts.
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// TickerExtractor names the company a question is about.
type TickerExtractor interface {
	// ExtractTicker returns the model's raw answer for query: a ticker symbol,
	// "NONE", or anything else the model produced. Callers normalize it.
	ExtractTicker(ctx context.Context, query string) (string, error)
}

// NarrativeGenerator writes the user-facing brief.
type NarrativeGenerator interface {
	// Generate returns narrative text for gc. An empty string is a failure
	// the caller must handle.
	Generate(ctx context.Context, gc *core.GenerationContext) (string, error)
}

// AIProvider aggregates the model-backed services.
type AIProvider interface {
	// Embedder returns the text embedding service.
	Embedder() Embedder

	// TickerExtractor returns the identifier extraction service.
	TickerExtractor() TickerExtractor

	// NarrativeGenerator returns the brief generation service.
	NarrativeGenerator() NarrativeGenerator

	// Close releases resources held by the provider and its services.
	Close() error
}
