// SPDX-License-Identifier: Apache-2.0

// Package config loads sof-mcp settings from defaults, an optional config
// file and SOF_* environment variables, in increasing precedence.
package config

import (
	"github.com/sofproj/sof-mcp/internal/logger"
	"github.com/sofproj/sof-mcp/internal/sof/catalog"
	"github.com/sofproj/sof-mcp/internal/sof/export"
	"github.com/sofproj/sof-mcp/internal/sof/extract"
	"github.com/sofproj/sof-mcp/internal/sof/score"
	"github.com/sofproj/sof-mcp/internal/sof/timeref"
)

// Config is the application configuration.
type Config struct {
	Log        LogConfig        `mapstructure:"log"`
	Extraction ExtractionConfig `mapstructure:"extraction"`
	Export     export.Options   `mapstructure:"export"`
	Server     ServerConfig     `mapstructure:"server"`
	Batch      BatchConfig      `mapstructure:"batch"`
}

// LogConfig configures the global logger.
type LogConfig struct {
	Level string `mapstructure:"level"` // debug, info, warn, error
	JSON  bool   `mapstructure:"json"`
}

// Logger converts to the logger package configuration.
func (c LogConfig) Logger() logger.Config {
	return logger.Config{Level: c.Level, JSON: c.JSON}
}

// ExtractionConfig mirrors extract.Config with a catalog file path in place
// of a loaded catalog.
type ExtractionConfig struct {
	DateOrder        string        `mapstructure:"date_order"`
	ContextWindow    int           `mapstructure:"context_window"`
	MergeOverlap     float64       `mapstructure:"merge_overlap"`
	PairingProximity int           `mapstructure:"pairing_proximity"`
	ContextSweep     bool          `mapstructure:"context_sweep"`
	CatalogPath      string        `mapstructure:"catalog_path"` // empty = built-in catalog
	Weights          score.Weights `mapstructure:"weights"`
}

// ServerConfig configures the MCP server.
type ServerConfig struct {
	MetricsAddr string `mapstructure:"metrics_addr"` // empty = no metrics endpoint
}

// BatchConfig configures batch extraction.
type BatchConfig struct {
	Workers int `mapstructure:"workers"` // 0 = one per CPU
}

// Build converts the settings into a pipeline configuration, loading the
// catalog file when one is configured.
func (c ExtractionConfig) Build() (extract.Config, error) {
	cfg := extract.Config{
		DateOrder:        timeref.DateOrder(c.DateOrder),
		ContextWindow:    c.ContextWindow,
		MergeOverlap:     c.MergeOverlap,
		PairingProximity: c.PairingProximity,
		ContextSweep:     c.ContextSweep,
		Weights:          c.Weights,
	}
	if c.CatalogPath != "" {
		cat, err := catalog.LoadFile(c.CatalogPath)
		if err != nil {
			return extract.Config{}, err
		}
		cfg.Catalog = cat
	}
	return cfg, cfg.Validate()
}
