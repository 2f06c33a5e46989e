package main

import (
	"fmt"
	"io"
	"time"
	"unicode/utf8"

	"github.com/poiesic/stockbrief/core"
	"github.com/poiesic/stockbrief/ingestion"
	"github.com/poiesic/stockbrief/orchestrator"
)

// traceMonitor prints each pipeline stage as it completes.
type traceMonitor struct {
	w     io.Writer
	start time.Time
}

var _ orchestrator.Monitor = (*traceMonitor)(nil)

func newTraceMonitor(w io.Writer) *traceMonitor {
	return &traceMonitor{w: w}
}

func (m *traceMonitor) Start(query string) {
	m.start = time.Now()
	fmt.Fprintf(m.w, "[query] %s\n", query)
}

func (m *traceMonitor) Resolved(id core.Identifier) {
	fmt.Fprintf(m.w, "[resolve] %s\n", id)
}

func (m *traceMonitor) NoIdentifier() {
	fmt.Fprintln(m.w, "[resolve] no company identified")
}

func (m *traceMonitor) AfterQuote(quote *core.QuoteSnapshot, err error) {
	if err != nil {
		fmt.Fprintf(m.w, "[quote] unavailable: %v\n", err)
		return
	}
	fmt.Fprintf(m.w, "[quote] %s\n", quote.Describe())
}

func (m *traceMonitor) AfterCacheLookup(fragments []core.KnowledgeFragment, hit bool, err error) {
	if err != nil {
		fmt.Fprintf(m.w, "[cache] unavailable: %v\n", err)
		return
	}
	var top float32
	if len(fragments) > 0 {
		top = fragments[0].Score
	}
	fmt.Fprintf(m.w, "[cache] hit=%t fragments=%d top=%.3f\n", hit, len(fragments), top)
}

func (m *traceMonitor) BeforeIngest(id core.Identifier, filingKind string) {
	fmt.Fprintf(m.w, "[ingest] fetching %s %s\n", id, filingKind)
}

func (m *traceMonitor) AfterIngest(result *ingestion.Result, err error) {
	if err != nil {
		fmt.Fprintf(m.w, "[ingest] failed: %v\n", err)
		return
	}
	fmt.Fprintf(m.w, "[ingest] stored %d/%d fragments\n", result.Stored, result.Attempted)
}

func (m *traceMonitor) Assembled(gc *core.GenerationContext) {
	fmt.Fprintf(m.w, "[context] source=%s summary=%d chars\n", gc.Source, utf8.RuneCountInString(gc.Summary.Text))
}

func (m *traceMonitor) Finish(result *core.OrchestrationResult) {
	fmt.Fprintf(m.w, "[done] %s degraded=%t\n", time.Since(m.start).Round(time.Millisecond), result.Degraded)
}
