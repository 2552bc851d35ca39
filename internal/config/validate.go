// SPDX-License-Identifier: Apache-2.0

package config

import (
	"strings"

	"github.com/sofproj/sof-mcp/internal/errors"
	"github.com/sofproj/sof-mcp/internal/sof/extract"
	"github.com/sofproj/sof-mcp/internal/sof/timeref"
)

// Validate checks that the configuration is valid. The catalog file is not
// read here; Build does that.
func (c *Config) Validate() error {
	switch strings.ToLower(c.Log.Level) {
	case "", "debug", "info", "warn", "warning", "error":
	default:
		return errors.NewConfigError("log.level must be debug, info, warn or error, got %q", c.Log.Level)
	}

	ext := extract.Config{
		DateOrder:        timeref.DateOrder(c.Extraction.DateOrder),
		ContextWindow:    c.Extraction.ContextWindow,
		MergeOverlap:     c.Extraction.MergeOverlap,
		PairingProximity: c.Extraction.PairingProximity,
		Weights:          c.Extraction.Weights,
	}
	if err := ext.Validate(); err != nil {
		return errors.Wrap(err, "extraction")
	}

	if c.Batch.Workers < 0 {
		return errors.NewConfigError("batch.workers must be >= 0, got %d", c.Batch.Workers)
	}
	return nil
}
