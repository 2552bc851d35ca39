// SPDX-License-Identifier: Apache-2.0

package config

import (
	"github.com/spf13/viper"

	"github.com/sofproj/sof-mcp/internal/sof/extract"
)

// SetDefaults configures default values for all configuration options.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "info")
	v.SetDefault("log.json", false)

	ext := extract.DefaultConfig()
	v.SetDefault("extraction.date_order", string(ext.DateOrder))
	v.SetDefault("extraction.context_window", ext.ContextWindow)
	v.SetDefault("extraction.merge_overlap", ext.MergeOverlap)
	v.SetDefault("extraction.pairing_proximity", ext.PairingProximity)
	v.SetDefault("extraction.context_sweep", ext.ContextSweep)
	v.SetDefault("extraction.catalog_path", "")

	w := ext.Weights
	v.SetDefault("extraction.weights.time_bonus", w.TimeBonus)
	v.SetDefault("extraction.weights.context_bonus", w.ContextBonus)
	v.SetDefault("extraction.weights.completeness_bonus", w.CompletenessBonus)
	v.SetDefault("extraction.weights.paired_bonus", w.PairedBonus)
	v.SetDefault("extraction.weights.unresolved_penalty", w.UnresolvedPenalty)
	v.SetDefault("extraction.weights.missing_time_penalty", w.MissingTimePenalty)
	v.SetDefault("extraction.weights.partial_penalty", w.PartialPenalty)
	v.SetDefault("extraction.weights.ambiguity_penalty", w.AmbiguityPenalty)
	v.SetDefault("extraction.weights.negative_duration_penalty", w.NegativeDurationPenalty)

	v.SetDefault("export.include_confidence", true)
	v.SetDefault("export.include_remarks", true)
	v.SetDefault("export.include_metadata", false)

	v.SetDefault("server.metrics_addr", "")
	v.SetDefault("batch.workers", 0)
}
