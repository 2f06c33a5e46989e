package main

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/poiesic/stockbrief/config"
	"github.com/poiesic/stockbrief/core"
	"github.com/poiesic/stockbrief/ingestion"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"
)

func testApp() (*cli.App, *bytes.Buffer) {
	app := newApp()
	out := &bytes.Buffer{}
	app.Writer = out
	app.ErrWriter = io.Discard
	return app, out
}

func findFlag[T cli.Flag](t *testing.T, cmd *cli.Command, name string) T {
	t.Helper()
	for _, flag := range cmd.Flags {
		if f, ok := flag.(T); ok && flag.Names()[0] == name {
			return f
		}
	}
	t.Fatalf("flag %q not found on %s", name, cmd.Name)
	var zero T
	return zero
}

func TestReembedCommandFlags(t *testing.T) {
	app := newApp()
	cmd := app.Command("reembed")
	require.NotNil(t, cmd)

	t.Run("defaults", func(t *testing.T) {
		assert.Equal(t, 100, findFlag[*cli.IntFlag](t, cmd, "batch-size").Value)
		assert.Equal(t, 100, findFlag[*cli.IntFlag](t, cmd, "report-interval").Value)
		assert.Equal(t, 3, findFlag[*cli.IntFlag](t, cmd, "max-retries").Value)
		assert.Equal(t, 1*time.Second, findFlag[*cli.DurationFlag](t, cmd, "retry-delay").Value)
	})

	t.Run("embedding-model falls back to config", func(t *testing.T) {
		modelFlag := findFlag[*cli.StringFlag](t, cmd, "embedding-model")
		assert.Empty(t, modelFlag.Value)
		assert.False(t, modelFlag.Required)
	})

	tests := []struct {
		name    string
		args    []string
		wantMsg string
	}{
		{name: "zero batch size", args: []string{"--batch-size", "0"}, wantMsg: "batch-size"},
		{name: "negative report interval", args: []string{"--report-interval", "-1"}, wantMsg: "report-interval"},
		{name: "zero retries", args: []string{"--max-retries", "0"}, wantMsg: "max-retries"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app, _ := testApp()
			args := append([]string{"stockbrief", "--in-memory", "reembed"}, tt.args...)
			err := app.Run(args)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantMsg)
		})
	}
}

func TestSetupLogger(t *testing.T) {
	tests := []struct {
		name    string
		cfg     config.LogConfig
		wantErr string
	}{
		{name: "debug text", cfg: config.LogConfig{Level: "debug", Format: "text"}},
		{name: "uppercase level", cfg: config.LogConfig{Level: "WARN", Format: "json"}},
		{name: "empty format", cfg: config.LogConfig{Level: "error"}},
		{name: "invalid level", cfg: config.LogConfig{Level: "verbose"}, wantErr: "invalid log level"},
		{name: "invalid format", cfg: config.LogConfig{Level: "info", Format: "xml"}, wantErr: "invalid log format"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := setupLogger(io.Discard, tt.cfg)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestSetup_ConfigFileAndOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stockbrief.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[server]
addr = ":9000"

[storage]
in_memory = true

[log]
level = "debug"
`), 0o600))

	app, out := testApp()
	err := app.Run([]string{"stockbrief", "--config", path, "--log-level", "warn", "fragments"})
	require.NoError(t, err)

	cfg, ok := app.Metadata[configKey].(*config.Config)
	require.True(t, ok)
	assert.Equal(t, ":9000", cfg.Server.Addr)
	assert.True(t, cfg.Storage.InMemory)
	assert.Equal(t, "warn", cfg.Log.Level)
	assert.Contains(t, out.String(), "No fragments stored.")
}

func TestSetup_MissingConfigFile(t *testing.T) {
	app, _ := testApp()
	err := app.Run([]string{"stockbrief", "--config", filepath.Join(t.TempDir(), "missing.toml"), "fragments"})
	assert.Error(t, err)
}

func TestAskCommand_RequiresQuestion(t *testing.T) {
	app, _ := testApp()
	err := app.Run([]string{"stockbrief", "--in-memory", "ask", "   "})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "question is required")
}

func TestFragmentsCommand_InvalidTicker(t *testing.T) {
	app, _ := testApp()
	err := app.Run([]string{"stockbrief", "--in-memory", "fragments", "--ticker", "not a ticker"})
	assert.Error(t, err)
}

func TestTraceMonitor(t *testing.T) {
	var buf bytes.Buffer
	m := newTraceMonitor(&buf)
	price := 190.12
	prev := 188.0

	m.Start("How is Apple doing?")
	m.Resolved("AAPL")
	m.AfterQuote(&core.QuoteSnapshot{Identifier: "AAPL", Price: &price, PreviousClose: &prev}, nil)
	m.AfterCacheLookup([]core.KnowledgeFragment{{ID: "a", Score: 0.42}}, false, nil)
	m.BeforeIngest("AAPL", "10-K")
	m.AfterIngest(&ingestion.Result{Attempted: 3, Stored: 2, Failed: 1}, nil)
	m.Assembled(&core.GenerationContext{Source: core.SourceFreshIngest, Summary: core.FilingSummary{Text: "Revenue grew."}})
	m.Finish(&core.OrchestrationResult{Degraded: false})

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 8)
	assert.Equal(t, "[query] How is Apple doing?", lines[0])
	assert.Equal(t, "[resolve] AAPL", lines[1])
	assert.True(t, strings.HasPrefix(lines[2], "[quote] "))
	assert.Equal(t, "[cache] hit=false fragments=1 top=0.420", lines[3])
	assert.Equal(t, "[ingest] fetching AAPL 10-K", lines[4])
	assert.Equal(t, "[ingest] stored 2/3 fragments", lines[5])
	assert.Equal(t, "[context] source=fresh_ingest summary=13 chars", lines[6])
	assert.True(t, strings.HasPrefix(lines[7], "[done] "))
}

func TestTraceMonitor_Failures(t *testing.T) {
	var buf bytes.Buffer
	m := newTraceMonitor(&buf)
	cause := errors.New("connection refused")

	m.NoIdentifier()
	m.AfterQuote(nil, cause)
	m.AfterCacheLookup(nil, false, cause)
	m.AfterIngest(nil, cause)

	out := buf.String()
	assert.Contains(t, out, "[resolve] no company identified")
	assert.Contains(t, out, "[quote] unavailable: connection refused")
	assert.Contains(t, out, "[cache] unavailable: connection refused")
	assert.Contains(t, out, "[ingest] failed: connection refused")
}

func TestPreview(t *testing.T) {
	assert.Equal(t, "short text", preview("short\n  text", 60))
	assert.Equal(t, "abcde...", preview("abcdefghij", 5))
}
