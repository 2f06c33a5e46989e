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
	"strings"

	"github.com/poiesic/stockbrief/core"
)

// Assembler builds the generation context. It performs no I/O.
type Assembler struct {
	summaryCap  int
	filingKind  string
	placeholder string
}

// NewAssembler creates an Assembler from cfg.
func NewAssembler(cfg *Config) *Assembler {
	return &Assembler{
		summaryCap:  cfg.SummaryCap,
		filingKind:  cfg.FilingKind,
		placeholder: cfg.UnavailablePlaceholder,
	}
}

// Assemble packages the query, identifier, quote and summary text. Summary
// text is truncated to the cap; a blank summary becomes the placeholder with
// source unavailable.
func (a *Assembler) Assemble(query string, id core.Identifier, quote *core.QuoteSnapshot, text string, source core.SummarySource) *core.GenerationContext {
	if quote == nil {
		quote = &core.QuoteSnapshot{Identifier: id}
	}

	text = strings.TrimSpace(text)
	if text == "" || source == core.SourceUnavailable || !source.Valid() {
		text = a.placeholder
		source = core.SourceUnavailable
	}

	summary := core.FilingSummary{
		Text:   core.TruncateRunes(text, a.summaryCap),
		Source: source,
	}

	return &core.GenerationContext{
		Query:      query,
		Identifier: id,
		Quote:      quote,
		Summary:    summary,
		Source:     source,
		FilingKind: a.filingKind,
	}
}
