// SPDX-License-Identifier: Apache-2.0

// Package score computes match and event confidence from small signal
// structs. Every function is pure and every result lies in [0, 1].
package score

import "math"

// Weights are the bonuses and penalties applied on top of a rule's base
// confidence.
type Weights struct {
	TimeBonus               float64 `json:"time_bonus" yaml:"time_bonus" mapstructure:"time_bonus"`
	ContextBonus            float64 `json:"context_bonus" yaml:"context_bonus" mapstructure:"context_bonus"`
	CompletenessBonus       float64 `json:"completeness_bonus" yaml:"completeness_bonus" mapstructure:"completeness_bonus"`
	PairedBonus             float64 `json:"paired_bonus" yaml:"paired_bonus" mapstructure:"paired_bonus"`
	UnresolvedPenalty       float64 `json:"unresolved_penalty" yaml:"unresolved_penalty" mapstructure:"unresolved_penalty"`
	MissingTimePenalty      float64 `json:"missing_time_penalty" yaml:"missing_time_penalty" mapstructure:"missing_time_penalty"`
	PartialPenalty          float64 `json:"partial_penalty" yaml:"partial_penalty" mapstructure:"partial_penalty"`
	AmbiguityPenalty        float64 `json:"ambiguity_penalty" yaml:"ambiguity_penalty" mapstructure:"ambiguity_penalty"`
	NegativeDurationPenalty float64 `json:"negative_duration_penalty" yaml:"negative_duration_penalty" mapstructure:"negative_duration_penalty"`
}

// DefaultWeights returns the stock weights.
func DefaultWeights() Weights {
	return Weights{
		TimeBonus:               0.05,
		ContextBonus:            0.05,
		CompletenessBonus:       0.05,
		PairedBonus:             0.03,
		UnresolvedPenalty:       0.25,
		MissingTimePenalty:      0.15,
		PartialPenalty:          0.05,
		AmbiguityPenalty:        0.02,
		NegativeDurationPenalty: 0.4,
	}
}

// MatchSignals describe a single trigger match.
type MatchSignals struct {
	Base float64
	// TimeInWindow is set when a time expression was found within reach.
	TimeInWindow bool
	// ContextSatisfied is set when the rule's required context was met.
	// It only earns a bonus for rules that declare a constraint.
	HasRequiredContext bool
	ContextSatisfied   bool
}

// MatchConfidence is base + time bonus + required-context bonus, capped at 1.
func MatchConfidence(s MatchSignals, w Weights) float64 {
	c := s.Base
	if s.TimeInWindow {
		c += w.TimeBonus
	}
	if s.HasRequiredContext && s.ContextSatisfied {
		c += w.ContextBonus
	}
	return clamp(c)
}

// EventSignals describe an assembled event.
type EventSignals struct {
	Match float64

	HasTimestamp bool
	HasLocation  bool
	Paired       bool

	// Unresolved is set when a time expression was found but could not be read.
	Unresolved bool
	// MissingTime is set when no time expression was found at all.
	MissingTime      bool
	Partial          bool
	Ambiguous        bool
	NegativeDuration bool
}

// EventConfidence combines the match confidence with completeness and
// degradation signals.
func EventConfidence(s EventSignals, w Weights) float64 {
	c := s.Match
	if s.HasTimestamp && s.HasLocation {
		c += w.CompletenessBonus
	}
	if s.Paired {
		c += w.PairedBonus
	}
	if s.Unresolved {
		c -= w.UnresolvedPenalty
	}
	if s.MissingTime {
		c -= w.MissingTimePenalty
	}
	if s.Partial {
		c -= w.PartialPenalty
	}
	if s.Ambiguous {
		c -= w.AmbiguityPenalty
	}
	if s.NegativeDuration {
		c -= w.NegativeDurationPenalty
	}
	return clamp(c)
}

// Confidence levels returned by Level.
const (
	LevelHigh    = "high"
	LevelMedium  = "medium"
	LevelLow     = "low"
	LevelVeryLow = "very_low"
)

// Level buckets a confidence value for display.
func Level(c float64) string {
	switch {
	case c >= 0.9:
		return LevelHigh
	case c >= 0.75:
		return LevelMedium
	case c >= 0.5:
		return LevelLow
	default:
		return LevelVeryLow
	}
}

// Round rounds c to three decimal places so results compare stably.
func Round(c float64) float64 {
	return math.Round(c*1000) / 1000
}

func clamp(c float64) float64 {
	if math.IsNaN(c) || c < 0 {
		return 0
	}
	if c > 1 {
		return 1
	}
	return Round(c)
}
