// SPDX-License-Identifier: Apache-2.0

package extract

import (
	"github.com/sofproj/sof-mcp/internal/errors"
	"github.com/sofproj/sof-mcp/internal/sof/assemble"
	"github.com/sofproj/sof-mcp/internal/sof/catalog"
	"github.com/sofproj/sof-mcp/internal/sof/match"
	"github.com/sofproj/sof-mcp/internal/sof/score"
	"github.com/sofproj/sof-mcp/internal/sof/timeref"
)

// Config holds the options of one extraction pipeline.
type Config struct {
	// DateOrder decides how all-numeric dates such as 03/04/2024 are read.
	DateOrder timeref.DateOrder
	// ContextWindow is the radius in characters searched around a trigger.
	ContextWindow int
	// MergeOverlap is the window overlap ratio above which duplicate
	// mentions merge.
	MergeOverlap float64
	// PairingProximity is the maximum distance in characters between a
	// start trigger and its end trigger.
	PairingProximity int
	// ContextSweep enables low-confidence matches on lines no rule caught.
	ContextSweep bool
	Weights      score.Weights
	// Catalog is the pattern catalog. Nil means the built-in catalog.
	Catalog *catalog.Catalog
}

// DefaultConfig returns the stock configuration with the built-in catalog.
func DefaultConfig() Config {
	return Config{
		DateOrder:        timeref.DayFirst,
		ContextWindow:    match.DefaultWindow,
		MergeOverlap:     assemble.DefaultMergeOverlap,
		PairingProximity: assemble.DefaultPairingProximity,
		ContextSweep:     true,
		Weights:          score.DefaultWeights(),
	}
}

// Validate checks that every option is in range.
func (c Config) Validate() error {
	if _, err := timeref.ParseDateOrder(string(c.DateOrder)); err != nil {
		return errors.Wrap(errors.ErrInvalidConfig, err.Error())
	}
	if c.ContextWindow <= 0 {
		return errors.NewConfigError("context window must be positive, got %d", c.ContextWindow)
	}
	if c.MergeOverlap <= 0 || c.MergeOverlap > 1 {
		return errors.NewConfigError("merge overlap threshold must be in (0, 1], got %g", c.MergeOverlap)
	}
	if c.PairingProximity <= 0 {
		return errors.NewConfigError("pairing proximity must be positive, got %d", c.PairingProximity)
	}
	w := c.Weights
	for name, v := range map[string]float64{
		"time_bonus":                w.TimeBonus,
		"context_bonus":             w.ContextBonus,
		"completeness_bonus":        w.CompletenessBonus,
		"paired_bonus":              w.PairedBonus,
		"unresolved_penalty":        w.UnresolvedPenalty,
		"missing_time_penalty":      w.MissingTimePenalty,
		"partial_penalty":           w.PartialPenalty,
		"ambiguity_penalty":         w.AmbiguityPenalty,
		"negative_duration_penalty": w.NegativeDurationPenalty,
	} {
		if v < 0 || v > 1 {
			return errors.NewConfigError("weight %s must be in [0, 1], got %g", name, v)
		}
	}
	if c.Catalog != nil && len(c.Catalog.Rules) == 0 {
		return errors.NewCatalogError("catalog %q has no rules", c.Catalog.Version)
	}
	return nil
}
