package mock

import (
	"context"
	"strings"
	"sync/atomic"
)

// knownCompanies mirrors the mappings the production prompt teaches the model.
var knownCompanies = map[string]string{
	"apple":     "AAPL",
	"microsoft": "MSFT",
	"google":    "GOOGL",
	"alphabet":  "GOOGL",
	"amazon":    "AMZN",
	"tesla":     "TSLA",
	"meta":      "META",
	"facebook":  "META",
	"nvidia":    "NVDA",
}

// MockTickerExtractor is a test double for ai.TickerExtractor.
type MockTickerExtractor struct {
	// ExtractTickerFunc is called by ExtractTicker if set.
	// If nil, uses the known-company lookup.
	ExtractTickerFunc func(ctx context.Context, query string) (string, error)

	callCount atomic.Int64
}

// NewMockTickerExtractor creates a mock extractor with default behavior.
func NewMockTickerExtractor() *MockTickerExtractor {
	return &MockTickerExtractor{}
}

// ExtractTicker returns the ticker of the first well-known company named in
// query, or "NONE".
func (m *MockTickerExtractor) ExtractTicker(ctx context.Context, query string) (string, error) {
	m.callCount.Add(1)

	if m.ExtractTickerFunc != nil {
		return m.ExtractTickerFunc(ctx, query)
	}

	for _, word := range strings.Fields(strings.ToLower(query)) {
		word = strings.Trim(word, ".,!?;:'\"()")
		word = strings.TrimSuffix(word, "'s")
		if ticker, ok := knownCompanies[word]; ok {
			return ticker, nil
		}
	}
	return "NONE", nil
}

// CallCount returns the number of ExtractTicker calls.
func (m *MockTickerExtractor) CallCount() int {
	return int(m.callCount.Load())
}

// Reset clears the call count and injected behavior.
func (m *MockTickerExtractor) Reset() {
	m.callCount.Store(0)
	m.ExtractTickerFunc = nil
}
