package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/poiesic/stockbrief/orchestrator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, ":8000", cfg.Server.Addr)
	assert.Equal(t, RetrievalLocal, cfg.Retrieval.Mode)
	assert.Equal(t, orchestrator.DefaultConfig(), cfg.OrchestratorConfig())
	assert.Equal(t, 15*time.Second, cfg.Ingestion.StoreTimeout.Duration)
}

func TestLoad_EmptyPath(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)
}

func TestLoad_OverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stockbrief.toml")
	data := `
[server]
addr = ":9000"

[storage]
in_memory = true

[ai]
chat_host = "http://gpu-box:11434"
generation_model = "gpt-4o-mini"

[agents]
quote_url = "http://quotes:8001"
filing_interval = "1s"

[retrieval]
mode = "remote"

[orchestrator]
relevance_threshold = 0.8
summary_cap = 2000
ingest_timeout = "90s"
filing_kind = "10-Q"

[telemetry]
enabled = true
sample_ratio = 0.25

[log]
level = "debug"
format = "json"
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":9000", cfg.Server.Addr)
	assert.True(t, cfg.Storage.InMemory)
	assert.Equal(t, "gpt-4o-mini", cfg.AI.GenerationModel)
	assert.Equal(t, "http://quotes:8001", cfg.Agents.QuoteURL)
	assert.Equal(t, time.Second, cfg.Agents.FilingInterval.Duration)
	assert.Equal(t, RetrievalRemote, cfg.Retrieval.Mode)
	assert.True(t, cfg.Telemetry.Enabled)
	assert.Equal(t, "json", cfg.Log.Format)

	// untouched values keep their defaults
	assert.Equal(t, "http://localhost:8005", cfg.Agents.FilingURL)
	assert.Equal(t, 5, cfg.Orchestrator.TopK)

	orch := cfg.OrchestratorConfig()
	assert.Equal(t, float32(0.8), orch.RelevanceThreshold)
	assert.Equal(t, 2000, orch.SummaryCap)
	assert.Equal(t, 90*time.Second, orch.IngestTimeout)
	assert.Equal(t, "10-Q", orch.FilingKind)
	assert.Equal(t, orchestrator.DefaultGenerateTimeout, orch.GenerateTimeout)

	aiCfg := cfg.AIConfig()
	require.NoError(t, aiCfg.Validate())
	assert.Equal(t, "http://gpu-box:11434/v1", aiCfg.ChatHost)
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		wantMsg string
	}{
		{name: "bad duration", data: "[orchestrator]\nquote_timeout = \"soon\"", wantMsg: "invalid duration"},
		{name: "bad retrieval mode", data: "[retrieval]\nmode = \"hybrid\"", wantMsg: "retrieval.mode"},
		{name: "bad log level", data: "[log]\nlevel = \"loud\"", wantMsg: "log.level"},
		{name: "bad log format", data: "[log]\nformat = \"xml\"", wantMsg: "log.format"},
		{name: "bad threshold", data: "[orchestrator]\nrelevance_threshold = 2.0", wantMsg: "RelevanceThreshold"},
		{name: "bad sample ratio", data: "[telemetry]\nsample_ratio = 3.0", wantMsg: "sample_ratio"},
		{name: "remote without url", data: "[retrieval]\nmode = \"remote\"\n[agents]\nretriever_url = \"\"", wantMsg: "retriever_url"},
		{name: "not toml", data: "this is = = not toml", wantMsg: "parsing config"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.data))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantMsg)
		})
	}
}

func TestDuration_MarshalText(t *testing.T) {
	d := Duration{90 * time.Second}
	text, err := d.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "1m30s", string(text))

	var back Duration
	require.NoError(t, back.UnmarshalText(text))
	assert.Equal(t, d, back)
}
