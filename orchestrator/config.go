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
	"errors"
	"fmt"
	"time"
	"unicode/utf8"
)

// Default policy values.
const (
	DefaultRelevanceThreshold float32 = 0.7
	DefaultSummaryCap                 = 3000
	DefaultTopK                       = 5
	DefaultFilingKind                 = "10-K"

	DefaultResolveTimeout  = 20 * time.Second
	DefaultQuoteTimeout    = 10 * time.Second
	DefaultSearchTimeout   = 10 * time.Second
	DefaultIngestTimeout   = 120 * time.Second
	DefaultGenerateTimeout = 60 * time.Second

	DefaultClarificationMessage = "I couldn't tell which company you're asking about. " +
		"Please mention a company name or ticker symbol, for example \"How is AAPL doing today?\""
	DefaultUnavailablePlaceholder = "Filing data not available."
)

// Config holds the orchestration policy.
type Config struct {
	// RelevanceThreshold is the score the best cached fragment must exceed
	// for the cache to be used.
	RelevanceThreshold float32

	// SummaryCap is the maximum summary length in characters (runes).
	SummaryCap int

	// TopK is the result limit for the similarity search.
	TopK int

	// FilingKind is the regulatory filing requested on a cache miss.
	FilingKind string

	ResolveTimeout  time.Duration
	QuoteTimeout    time.Duration
	SearchTimeout   time.Duration
	IngestTimeout   time.Duration
	GenerateTimeout time.Duration

	// ClarificationMessage is returned when no identifier can be resolved.
	ClarificationMessage string

	// UnavailablePlaceholder stands in for the summary when none could be obtained.
	UnavailablePlaceholder string
}

// ConfigOption is a functional option for configuring the orchestrator.
type ConfigOption func(*Config)

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		RelevanceThreshold:     DefaultRelevanceThreshold,
		SummaryCap:             DefaultSummaryCap,
		TopK:                   DefaultTopK,
		FilingKind:             DefaultFilingKind,
		ResolveTimeout:         DefaultResolveTimeout,
		QuoteTimeout:           DefaultQuoteTimeout,
		SearchTimeout:          DefaultSearchTimeout,
		IngestTimeout:          DefaultIngestTimeout,
		GenerateTimeout:        DefaultGenerateTimeout,
		ClarificationMessage:   DefaultClarificationMessage,
		UnavailablePlaceholder: DefaultUnavailablePlaceholder,
	}
}

// NewConfig creates a new Config with the given options applied.
func NewConfig(opts ...ConfigOption) *Config {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// WithRelevanceThreshold sets the cache acceptance threshold.
func WithRelevanceThreshold(threshold float32) ConfigOption {
	return func(c *Config) {
		c.RelevanceThreshold = threshold
	}
}

// WithSummaryCap sets the summary length cap.
func WithSummaryCap(limit int) ConfigOption {
	return func(c *Config) {
		c.SummaryCap = limit
	}
}

// WithTopK sets the similarity search result limit.
func WithTopK(k int) ConfigOption {
	return func(c *Config) {
		c.TopK = k
	}
}

// WithFilingKind sets the filing kind requested on ingestion.
func WithFilingKind(kind string) ConfigOption {
	return func(c *Config) {
		c.FilingKind = kind
	}
}

// WithTimeouts sets the per-call timeouts. Zero values keep the current setting.
func WithTimeouts(resolve, quote, search, ingest, generate time.Duration) ConfigOption {
	return func(c *Config) {
		if resolve > 0 {
			c.ResolveTimeout = resolve
		}
		if quote > 0 {
			c.QuoteTimeout = quote
		}
		if search > 0 {
			c.SearchTimeout = search
		}
		if ingest > 0 {
			c.IngestTimeout = ingest
		}
		if generate > 0 {
			c.GenerateTimeout = generate
		}
	}
}

// WithClarificationMessage sets the response for queries without an identifier.
func WithClarificationMessage(msg string) ConfigOption {
	return func(c *Config) {
		c.ClarificationMessage = msg
	}
}

// WithUnavailablePlaceholder sets the summary placeholder.
func WithUnavailablePlaceholder(text string) ConfigOption {
	return func(c *Config) {
		c.UnavailablePlaceholder = text
	}
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	var errs []error
	if c.RelevanceThreshold < 0 || c.RelevanceThreshold > 1 {
		errs = append(errs, fmt.Errorf("RelevanceThreshold must be between 0 and 1, got %v", c.RelevanceThreshold))
	}
	if c.SummaryCap < 1 {
		errs = append(errs, fmt.Errorf("SummaryCap must be positive, got %d", c.SummaryCap))
	}
	if c.TopK < 1 {
		errs = append(errs, fmt.Errorf("TopK must be positive, got %d", c.TopK))
	}
	if c.FilingKind == "" {
		errs = append(errs, errors.New("FilingKind is required"))
	}
	for name, d := range map[string]time.Duration{
		"ResolveTimeout":  c.ResolveTimeout,
		"QuoteTimeout":    c.QuoteTimeout,
		"SearchTimeout":   c.SearchTimeout,
		"IngestTimeout":   c.IngestTimeout,
		"GenerateTimeout": c.GenerateTimeout,
	} {
		if d <= 0 {
			errs = append(errs, fmt.Errorf("%s must be positive, got %v", name, d))
		}
	}
	if c.ClarificationMessage == "" {
		errs = append(errs, errors.New("ClarificationMessage is required"))
	}
	if c.UnavailablePlaceholder == "" {
		errs = append(errs, errors.New("UnavailablePlaceholder is required"))
	}
	if c.SummaryCap > 0 && utf8.RuneCountInString(c.UnavailablePlaceholder) > c.SummaryCap {
		errs = append(errs, errors.New("UnavailablePlaceholder exceeds SummaryCap"))
	}
	return errors.Join(errs...)
}
