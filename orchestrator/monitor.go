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
	"github.com/poiesic/stockbrief/core"
	"github.com/poiesic/stockbrief/ingestion"
)

// Monitor observes the stages of a single answer.
type Monitor interface {
	Start(query string)
	Resolved(id core.Identifier)
	NoIdentifier()
	AfterQuote(quote *core.QuoteSnapshot, err error)
	AfterCacheLookup(fragments []core.KnowledgeFragment, hit bool, err error)
	BeforeIngest(id core.Identifier, filingKind string)
	AfterIngest(result *ingestion.Result, err error)
	Assembled(gc *core.GenerationContext)
	Finish(result *core.OrchestrationResult)
}

// noopMonitor is a no-op implementation of Monitor
type noopMonitor struct{}

var _ Monitor = (*noopMonitor)(nil)

func (n *noopMonitor) Start(_ string)                                               {}
func (n *noopMonitor) Resolved(_ core.Identifier)                                   {}
func (n *noopMonitor) NoIdentifier()                                                {}
func (n *noopMonitor) AfterQuote(_ *core.QuoteSnapshot, _ error)                    {}
func (n *noopMonitor) AfterCacheLookup(_ []core.KnowledgeFragment, _ bool, _ error) {}
func (n *noopMonitor) BeforeIngest(_ core.Identifier, _ string)                     {}
func (n *noopMonitor) AfterIngest(_ *ingestion.Result, _ error)                     {}
func (n *noopMonitor) Assembled(_ *core.GenerationContext)                          {}
func (n *noopMonitor) Finish(_ *core.OrchestrationResult)                           {}
