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

package core

import (
	"encoding/binary"
	"fmt"
	"math"
	"time"

	"github.com/go-crypt/x/blake2b"
)

// ID is a content-derived key for stored entities.
type ID uint64

// IDFromContent generates a deterministic ID from text content using BLAKE2b hashing.
// This ensures that identical content produces identical IDs.
func IDFromContent(text string) ID {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(text))
	sum := h.Sum(nil)
	return ID(binary.LittleEndian.Uint64(sum))
}

// Hex renders the ID as a fixed-width hexadecimal string.
func (id ID) Hex() string {
	return fmt.Sprintf("%016x", uint64(id))
}

// Identifier is a canonical exchange ticker symbol such as "AAPL".
// The zero value is not a valid identifier; use NoIdentifier for "none".
type Identifier string

// NoIdentifier is the sentinel returned when no company could be resolved.
const NoIdentifier Identifier = "none"

// IsNone reports whether the identifier is the "none" sentinel or empty.
func (i Identifier) IsNone() bool {
	return i == NoIdentifier || i == ""
}

// String returns the identifier text.
func (i Identifier) String() string {
	return string(i)
}

// KnowledgeFragment is a previously stored piece of filing text returned by
// similarity search. Score is in [0,1], higher is more relevant.
type KnowledgeFragment struct {
	ID    string
	Text  string
	Score float32
}

// QuoteSnapshot is the most recent market data for an identifier.
// Every field but Identifier is optional; nil means the quote service
// did not report it.
type QuoteSnapshot struct {
	Identifier    Identifier
	Price         *float64
	PreviousClose *float64
	ChangePercent *float64
	Volume        *int64
	MarketCap     *float64
	Currency      *string
}

// Change returns the percent change for the snapshot. When ChangePercent is
// not reported it is derived from Price and PreviousClose and rounded to two
// decimal places. ok is false when neither is possible.
func (q *QuoteSnapshot) Change() (pct float64, ok bool) {
	if q == nil {
		return 0, false
	}
	if q.ChangePercent != nil {
		return *q.ChangePercent, true
	}
	if q.Price == nil || q.PreviousClose == nil || *q.PreviousClose == 0 {
		return 0, false
	}
	return PercentChange(*q.Price, *q.PreviousClose), true
}

// IsEmpty reports whether the snapshot carries no market data at all.
func (q *QuoteSnapshot) IsEmpty() bool {
	return q == nil || (q.Price == nil && q.PreviousClose == nil && q.ChangePercent == nil &&
		q.Volume == nil && q.MarketCap == nil)
}

// PercentChange computes (price-previous)/previous*100 rounded to two decimals.
func PercentChange(price, previous float64) float64 {
	if previous == 0 {
		return 0
	}
	pct := (price - previous) / previous * 100
	return math.Round(pct*100) / 100
}

// SummarySource records where the filing summary used for a response came from.
type SummarySource string

const (
	// SourceCache means the summary was built from reused stored fragments.
	SourceCache SummarySource = "cache"
	// SourceFreshIngest means the summary came from an ingestion run for this query.
	SourceFreshIngest SummarySource = "fresh_ingest"
	// SourceUnavailable means no filing summary could be obtained.
	SourceUnavailable SummarySource = "unavailable"
)

// Valid reports whether s is one of the known sources.
func (s SummarySource) Valid() bool {
	switch s {
	case SourceCache, SourceFreshIngest, SourceUnavailable:
		return true
	}
	return false
}

// FilingSummary is bounded filing text tagged with its provenance.
type FilingSummary struct {
	Text   string
	Source SummarySource
}

// GenerationContext is everything the narrative generator receives.
type GenerationContext struct {
	Query      string
	Identifier Identifier
	Quote      *QuoteSnapshot
	Summary    FilingSummary
	Source     SummarySource
	FilingKind string
}

// OrchestrationResult is the outcome of answering one query.
type OrchestrationResult struct {
	RequestID       string
	Narrative       string
	Identifier      Identifier
	Source          SummarySource
	Degraded        bool
	Clarification   bool
	FragmentsStored int
	// Unavailable names the collaborators whose failures were absorbed.
	Unavailable []string
}

// Fragment is an indexable piece of filing text produced by fetch+extract.
type Fragment struct {
	ID       string
	Text     string
	Metadata map[string]string
}

// FilingPayload is the response of the fetch+extract collaborator.
type FilingPayload struct {
	Status     string
	Identifier Identifier
	FilingKind string
	Summary    string
	Fragments  []Fragment
	Message    string
}

// StatusSuccess is the payload status reported by a successful fetch+extract run.
const StatusSuccess = "success"

// Succeeded reports whether the payload represents a successful run.
func (p *FilingPayload) Succeeded() bool {
	return p != nil && p.Status == StatusSuccess
}

// StoredFragment is the persisted form of a Fragment in the local knowledge index.
type StoredFragment struct {
	ID         string
	Identifier Identifier
	FilingKind string
	ChunkType  string
	Text       string
	Vector     []float32 // Embedding vector, normalized to unit length
	InsertedAt time.Time
	UpdatedAt  time.Time
}

// Key returns the storage key for the fragment.
func (f *StoredFragment) Key() ID {
	return IDFromContent(f.ID)
}

// ScoredFragment is a stored fragment matched by vector similarity.
type ScoredFragment struct {
	Fragment *StoredFragment
	Score    float32
}

// FragmentID builds a deterministic fragment ID from its owner and content.
func FragmentID(identifier Identifier, filingKind, text string) string {
	return fmt.Sprintf("%s_%s_%s", identifier, filingKind, IDFromContent(text).Hex())
}

// Fragment metadata keys understood by the knowledge index.
const (
	MetaIdentifier = "ticker"
	MetaFilingKind = "filing_type"
	MetaChunkType  = "chunk_type"
)
