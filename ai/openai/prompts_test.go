package openai

import (
	"testing"

	"github.com/poiesic/stockbrief/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTickerPrompt(t *testing.T) {
	prompt, err := tickerPrompt.Format(map[string]any{"query": "How is Apple doing?"})
	require.NoError(t, err)

	assert.Contains(t, prompt, `this query: "How is Apple doing?"`)
	assert.Contains(t, prompt, "Apple->AAPL")
	assert.Contains(t, prompt, `return "NONE"`)
}

func TestFormatBriefPrompt(t *testing.T) {
	price := 190.12
	gc := &core.GenerationContext{
		Query:      "How is Apple doing?",
		Identifier: "AAPL",
		Quote:      &core.QuoteSnapshot{Identifier: "AAPL", Price: &price},
		Summary:    core.FilingSummary{Text: "Services revenue grew.", Source: core.SourceFreshIngest},
		Source:     core.SourceFreshIngest,
		FilingKind: "10-K",
	}

	prompt, err := formatBriefPrompt(gc)
	require.NoError(t, err)

	assert.Contains(t, prompt, "Company Ticker: AAPL")
	assert.Contains(t, prompt, "Stock Data: price 190.12")
	assert.Contains(t, prompt, "Filing Summary: Services revenue grew.")
	assert.Contains(t, prompt, "Filing Type: 10-K")
	assert.Contains(t, prompt, "Data Source: fresh_ingest")
}

func TestStripCodeFences(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"AAPL", "AAPL"},
		{"```\nAAPL\n```", "AAPL"},
		{"```text\nMSFT```", "MSFT"},
		{"  NONE  ", "NONE"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, stripCodeFences(tt.input))
	}
}

func TestFirstLine(t *testing.T) {
	assert.Equal(t, "TSLA", firstLine("\n\nTSLA\nbecause Tesla"))
	assert.Equal(t, "", firstLine("  \n "))
}
