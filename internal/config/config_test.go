// SPDX-License-Identifier: Apache-2.0

package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sofproj/sof-mcp/internal/config"
	"github.com/sofproj/sof-mcp/internal/errors"
	"github.com/sofproj/sof-mcp/internal/sof/score"
	"github.com/sofproj/sof-mcp/internal/sof/timeref"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

// ---------------------------------------------------------------------------
// Load
// ---------------------------------------------------------------------------

func TestLoad_Defaults(t *testing.T) {
	cfg, err := config.Load("")
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "day_first", cfg.Extraction.DateOrder)
	assert.Equal(t, 80, cfg.Extraction.ContextWindow)
	assert.Equal(t, 0.5, cfg.Extraction.MergeOverlap)
	assert.Equal(t, 500, cfg.Extraction.PairingProximity)
	assert.True(t, cfg.Extraction.ContextSweep)
	assert.Equal(t, score.DefaultWeights(), cfg.Extraction.Weights)
	assert.True(t, cfg.Export.IncludeConfidence)
	assert.False(t, cfg.Export.IncludeMetadata)
	assert.Empty(t, cfg.Server.MetricsAddr)
}

func TestLoad_Files(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
	}{
		{
			name: "toml",
			file: "sof.toml",
			content: `[log]
level = "debug"

[extraction]
date_order = "month_first"
context_window = 120

[extraction.weights]
time_bonus = 0.1

[server]
metrics_addr = ":9100"
`,
		},
		{
			name: "yaml",
			file: "sof.yaml",
			content: `log:
  level: debug
extraction:
  date_order: month_first
  context_window: 120
  weights:
    time_bonus: 0.1
server:
  metrics_addr: ":9100"
`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := config.Load(writeFile(t, tt.file, tt.content))
			require.NoError(t, err)
			assert.Equal(t, "debug", cfg.Log.Level)
			assert.Equal(t, "month_first", cfg.Extraction.DateOrder)
			assert.Equal(t, 120, cfg.Extraction.ContextWindow)
			assert.Equal(t, 0.1, cfg.Extraction.Weights.TimeBonus)
			assert.Equal(t, score.DefaultWeights().PairedBonus, cfg.Extraction.Weights.PairedBonus)
			assert.Equal(t, ":9100", cfg.Server.MetricsAddr)
		})
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("SOF_EXTRACTION_DATE_ORDER", "month_first")
	t.Setenv("SOF_BATCH_WORKERS", "3")

	cfg, err := config.Load("")
	require.NoError(t, err)
	assert.Equal(t, "month_first", cfg.Extraction.DateOrder)
	assert.Equal(t, 3, cfg.Batch.Workers)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
	}{
		{name: "bad log level", file: "a.yaml", content: "log:\n  level: loud\n"},
		{name: "bad date order", file: "b.yaml", content: "extraction:\n  date_order: year_first\n"},
		{name: "zero window", file: "c.yaml", content: "extraction:\n  context_window: 0\n"},
		{name: "negative workers", file: "d.yaml", content: "batch:\n  workers: -1\n"},
		{name: "unparseable", file: "e.toml", content: "[log\nlevel ="},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := config.Load(writeFile(t, tt.file, tt.content))
			require.Error(t, err)
			assert.True(t, errors.IsConfigError(err), "got %v", err)
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "absent.toml"))
	require.Error(t, err)
	assert.True(t, errors.IsConfigError(err))
}

// ---------------------------------------------------------------------------
// Build
// ---------------------------------------------------------------------------

func TestExtractionConfig_Build(t *testing.T) {
	cfg, err := config.Load("")
	require.NoError(t, err)

	ext, err := cfg.Extraction.Build()
	require.NoError(t, err)
	assert.Equal(t, timeref.DayFirst, ext.DateOrder)
	assert.Nil(t, ext.Catalog)
}

func TestExtractionConfig_BuildWithCatalog(t *testing.T) {
	cfg, err := config.Load("")
	require.NoError(t, err)

	cfg.Extraction.CatalogPath = writeFile(t, "catalog.yaml", `version: test
rules:
  - name: pilot_on_board
    event_type: pilot
    label: Pilot On Board
    keywords: [pilot on board]
    base_confidence: 0.9
`)
	ext, err := cfg.Extraction.Build()
	require.NoError(t, err)
	require.NotNil(t, ext.Catalog)
	assert.Equal(t, "test", ext.Catalog.Version)

	cfg.Extraction.CatalogPath = writeFile(t, "broken.yaml", "version: test\nrules: []\n")
	_, err = cfg.Extraction.Build()
	require.Error(t, err)
	assert.True(t, errors.IsCatalogError(err))
}

func TestLogConfig_Logger(t *testing.T) {
	lc := config.LogConfig{Level: "warn", JSON: true}
	assert.Equal(t, "warn", lc.Logger().Level)
	assert.True(t, lc.Logger().JSON)
}
