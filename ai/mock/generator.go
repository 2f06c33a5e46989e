package mock

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/poiesic/stockbrief/core"
)

// MockNarrativeGenerator is a test double for ai.NarrativeGenerator.
type MockNarrativeGenerator struct {
	// GenerateFunc is called by Generate if set.
	GenerateFunc func(ctx context.Context, gc *core.GenerationContext) (string, error)

	callCount atomic.Int64
	last      atomic.Pointer[core.GenerationContext]
}

// NewMockNarrativeGenerator creates a mock generator with default behavior.
func NewMockNarrativeGenerator() *MockNarrativeGenerator {
	return &MockNarrativeGenerator{}
}

// Generate returns a one-line brief naming the identifier, quote and source.
func (m *MockNarrativeGenerator) Generate(ctx context.Context, gc *core.GenerationContext) (string, error) {
	m.callCount.Add(1)
	m.last.Store(gc)

	if m.GenerateFunc != nil {
		return m.GenerateFunc(ctx, gc)
	}

	return fmt.Sprintf("%s brief (%s): %s.", gc.Identifier, gc.Source, gc.Quote.Describe()), nil
}

// CallCount returns the number of Generate calls.
func (m *MockNarrativeGenerator) CallCount() int {
	return int(m.callCount.Load())
}

// LastContext returns the context passed to the most recent Generate call.
func (m *MockNarrativeGenerator) LastContext() *core.GenerationContext {
	return m.last.Load()
}

// Reset clears the call count and injected behavior.
func (m *MockNarrativeGenerator) Reset() {
	m.callCount.Store(0)
	m.last.Store(nil)
	m.GenerateFunc = nil
}
