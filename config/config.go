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

// Package config loads the stockbrief application configuration from TOML.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/pelletier/go-toml/v2"
	"github.com/poiesic/stockbrief/ai"
	"github.com/poiesic/stockbrief/orchestrator"
)

// Retrieval modes.
const (
	RetrievalLocal  = "local"
	RetrievalRemote = "remote"
)

// Duration is a time.Duration written as a string ("20s") in TOML.
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", text, err)
	}
	d.Duration = parsed
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// Config is the complete application configuration.
type Config struct {
	Server       ServerConfig       `toml:"server"`
	Storage      StorageConfig      `toml:"storage"`
	AI           AIConfig           `toml:"ai"`
	Agents       AgentsConfig       `toml:"agents"`
	Retrieval    RetrievalConfig    `toml:"retrieval"`
	Orchestrator OrchestratorConfig `toml:"orchestrator"`
	Ingestion    IngestionConfig    `toml:"ingestion"`
	Telemetry    TelemetryConfig    `toml:"telemetry"`
	Log          LogConfig          `toml:"log"`
}

type ServerConfig struct {
	Addr            string   `toml:"addr"`
	ShutdownTimeout Duration `toml:"shutdown_timeout"`
}

type StorageConfig struct {
	Path     string `toml:"path"`
	InMemory bool   `toml:"in_memory"`
}

type AIConfig struct {
	EmbeddingHost   string  `toml:"embedding_host"`
	ChatHost        string  `toml:"chat_host"`
	EmbeddingModel  string  `toml:"embedding_model"`
	ExtractionModel string  `toml:"extraction_model"`
	GenerationModel string  `toml:"generation_model"`
	APIToken        string  `toml:"api_token"`
	Temperature     float64 `toml:"temperature"`
	MaxTokens       int     `toml:"max_tokens"`
}

type AgentsConfig struct {
	QuoteURL       string   `toml:"quote_url"`
	FilingURL      string   `toml:"filing_url"`
	RetrieverURL   string   `toml:"retriever_url"`
	Timeout        Duration `toml:"timeout"`
	FilingInterval Duration `toml:"filing_interval"`
}

type RetrievalConfig struct {
	// Mode is "local" (embedded index) or "remote" (retriever service).
	Mode string `toml:"mode"`
}

type OrchestratorConfig struct {
	RelevanceThreshold     float32  `toml:"relevance_threshold"`
	SummaryCap             int      `toml:"summary_cap"`
	TopK                   int      `toml:"top_k"`
	FilingKind             string   `toml:"filing_kind"`
	ResolveTimeout         Duration `toml:"resolve_timeout"`
	QuoteTimeout           Duration `toml:"quote_timeout"`
	SearchTimeout          Duration `toml:"search_timeout"`
	IngestTimeout          Duration `toml:"ingest_timeout"`
	GenerateTimeout        Duration `toml:"generate_timeout"`
	ClarificationMessage   string   `toml:"clarification_message"`
	UnavailablePlaceholder string   `toml:"unavailable_placeholder"`
}

type IngestionConfig struct {
	PoolSize     int      `toml:"pool_size"`
	StoreTimeout Duration `toml:"store_timeout"`
}

type TelemetryConfig struct {
	Enabled     bool    `toml:"enabled"`
	Endpoint    string  `toml:"endpoint"`
	ServiceName string  `toml:"service_name"`
	SampleRatio float64 `toml:"sample_ratio"`
}

type LogConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	aiCfg := ai.DefaultConfig()
	orch := orchestrator.DefaultConfig()

	return &Config{
		Server: ServerConfig{
			Addr:            ":8000",
			ShutdownTimeout: Duration{10 * time.Second},
		},
		Storage: StorageConfig{
			Path: "stockbrief.db",
		},
		AI: AIConfig{
			EmbeddingHost:   aiCfg.EmbeddingHost,
			ChatHost:        aiCfg.ChatHost,
			EmbeddingModel:  aiCfg.EmbeddingModel,
			ExtractionModel: aiCfg.ExtractionModel,
			GenerationModel: aiCfg.GenerationModel,
			APIToken:        aiCfg.APIToken,
			Temperature:     aiCfg.Temperature,
			MaxTokens:       aiCfg.MaxTokens,
		},
		Agents: AgentsConfig{
			QuoteURL:       "http://localhost:8001",
			FilingURL:      "http://localhost:8005",
			RetrieverURL:   "http://localhost:8004",
			Timeout:        Duration{30 * time.Second},
			FilingInterval: Duration{200 * time.Millisecond},
		},
		Retrieval: RetrievalConfig{
			Mode: RetrievalLocal,
		},
		Orchestrator: OrchestratorConfig{
			RelevanceThreshold:     orch.RelevanceThreshold,
			SummaryCap:             orch.SummaryCap,
			TopK:                   orch.TopK,
			FilingKind:             orch.FilingKind,
			ResolveTimeout:         Duration{orch.ResolveTimeout},
			QuoteTimeout:           Duration{orch.QuoteTimeout},
			SearchTimeout:          Duration{orch.SearchTimeout},
			IngestTimeout:          Duration{orch.IngestTimeout},
			GenerateTimeout:        Duration{orch.GenerateTimeout},
			ClarificationMessage:   orch.ClarificationMessage,
			UnavailablePlaceholder: orch.UnavailablePlaceholder,
		},
		Ingestion: IngestionConfig{
			StoreTimeout: Duration{15 * time.Second},
		},
		Telemetry: TelemetryConfig{
			Endpoint:    "http://localhost:4318",
			ServiceName: "stockbrief",
			SampleRatio: 1.0,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load reads the TOML file at path over the defaults. An empty path returns
// the defaults.
func Load(path string) (*Config, error) {
	if path == "" {
		return Default(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	return Parse(data)
}

// Parse decodes TOML data over the defaults and validates the result.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration for consistency.
func (c *Config) Validate() error {
	var errs []error

	if c.Server.Addr == "" {
		errs = append(errs, errors.New("server.addr is required"))
	}
	if !c.Storage.InMemory && c.Storage.Path == "" {
		errs = append(errs, errors.New("storage.path is required unless storage.in_memory is set"))
	}
	if c.Agents.QuoteURL == "" {
		errs = append(errs, errors.New("agents.quote_url is required"))
	}
	if c.Agents.FilingURL == "" {
		errs = append(errs, errors.New("agents.filing_url is required"))
	}

	switch c.Retrieval.Mode {
	case RetrievalLocal:
	case RetrievalRemote:
		if c.Agents.RetrieverURL == "" {
			errs = append(errs, errors.New("agents.retriever_url is required for remote retrieval"))
		}
	default:
		errs = append(errs, fmt.Errorf("retrieval.mode must be %q or %q, got %q", RetrievalLocal, RetrievalRemote, c.Retrieval.Mode))
	}

	if c.Telemetry.Enabled && c.Telemetry.Endpoint == "" {
		errs = append(errs, errors.New("telemetry.endpoint is required when telemetry is enabled"))
	}
	if c.Telemetry.SampleRatio < 0 || c.Telemetry.SampleRatio > 1 {
		errs = append(errs, fmt.Errorf("telemetry.sample_ratio must be between 0 and 1, got %v", c.Telemetry.SampleRatio))
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(c.Log.Level)); err != nil {
		errs = append(errs, fmt.Errorf("log.level: %w", err))
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("log.format must be text or json, got %q", c.Log.Format))
	}

	if err := c.AIConfig().Validate(); err != nil {
		errs = append(errs, err)
	}
	if err := c.OrchestratorConfig().Validate(); err != nil {
		errs = append(errs, fmt.Errorf("orchestrator: %w", err))
	}

	return errors.Join(errs...)
}

// AIConfig converts the [ai] section into an ai.Config.
func (c *Config) AIConfig() *ai.Config {
	return ai.NewConfig(
		ai.WithEmbeddingHost(c.AI.EmbeddingHost),
		ai.WithChatHost(c.AI.ChatHost),
		ai.WithEmbeddingModel(c.AI.EmbeddingModel),
		ai.WithExtractionModel(c.AI.ExtractionModel),
		ai.WithGenerationModel(c.AI.GenerationModel),
		ai.WithAPIToken(c.AI.APIToken),
		ai.WithTemperature(c.AI.Temperature),
		ai.WithMaxTokens(c.AI.MaxTokens),
	)
}

// OrchestratorConfig converts the [orchestrator] section into an orchestrator.Config.
func (c *Config) OrchestratorConfig() *orchestrator.Config {
	o := c.Orchestrator
	return orchestrator.NewConfig(
		orchestrator.WithRelevanceThreshold(o.RelevanceThreshold),
		orchestrator.WithSummaryCap(o.SummaryCap),
		orchestrator.WithTopK(o.TopK),
		orchestrator.WithFilingKind(o.FilingKind),
		orchestrator.WithTimeouts(
			o.ResolveTimeout.Duration,
			o.QuoteTimeout.Duration,
			o.SearchTimeout.Duration,
			o.IngestTimeout.Duration,
			o.GenerateTimeout.Duration,
		),
		orchestrator.WithClarificationMessage(o.ClarificationMessage),
		orchestrator.WithUnavailablePlaceholder(o.UnavailablePlaceholder),
	)
}
