// SPDX-License-Identifier: Apache-2.0

package score_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sofproj/sof-mcp/internal/sof/score"
)

func TestMatchConfidence(t *testing.T) {
	w := score.DefaultWeights()

	tests := []struct {
		name string
		in   score.MatchSignals
		want float64
	}{
		{"base only", score.MatchSignals{Base: 0.8}, 0.8},
		{"time bonus", score.MatchSignals{Base: 0.8, TimeInWindow: true}, 0.85},
		{"context bonus", score.MatchSignals{Base: 0.8, HasRequiredContext: true, ContextSatisfied: true}, 0.85},
		{"context unmet", score.MatchSignals{Base: 0.8, HasRequiredContext: true}, 0.8},
		{"satisfied without constraint earns nothing", score.MatchSignals{Base: 0.8, ContextSatisfied: true}, 0.8},
		{"capped", score.MatchSignals{Base: 0.98, TimeInWindow: true, HasRequiredContext: true, ContextSatisfied: true}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, score.MatchConfidence(tt.in, w), 1e-9)
		})
	}
}

func TestEventConfidence(t *testing.T) {
	w := score.DefaultWeights()

	tests := []struct {
		name string
		in   score.EventSignals
		want float64
	}{
		{"complete", score.EventSignals{Match: 0.9, HasTimestamp: true, HasLocation: true}, 0.95},
		{"timestamp only", score.EventSignals{Match: 0.9, HasTimestamp: true}, 0.9},
		{"paired", score.EventSignals{Match: 0.9, HasTimestamp: true, Paired: true}, 0.93},
		{"unresolved", score.EventSignals{Match: 0.9, Unresolved: true}, 0.65},
		{"missing time", score.EventSignals{Match: 0.9, MissingTime: true}, 0.75},
		{"partial and ambiguous", score.EventSignals{Match: 0.9, HasTimestamp: true, Partial: true, Ambiguous: true}, 0.83},
		{"negative duration", score.EventSignals{Match: 0.9, HasTimestamp: true, NegativeDuration: true}, 0.5},
		{"floored", score.EventSignals{Match: 0.1, Unresolved: true, NegativeDuration: true}, 0},
		{"capped", score.EventSignals{Match: 1, HasTimestamp: true, HasLocation: true, Paired: true}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, score.EventConfidence(tt.in, w), 1e-9)
		})
	}
}

func TestConfidenceBounds(t *testing.T) {
	w := score.DefaultWeights()
	for _, base := range []float64{-1, 0, 0.5, 1, 2, math.NaN()} {
		for mask := 0; mask < 1<<8; mask++ {
			s := score.EventSignals{
				Match:            base,
				HasTimestamp:     mask&1 != 0,
				HasLocation:      mask&2 != 0,
				Paired:           mask&4 != 0,
				Unresolved:       mask&8 != 0,
				MissingTime:      mask&16 != 0,
				Partial:          mask&32 != 0,
				Ambiguous:        mask&64 != 0,
				NegativeDuration: mask&128 != 0,
			}
			c := score.EventConfidence(s, w)
			assert.GreaterOrEqual(t, c, 0.0)
			assert.LessOrEqual(t, c, 1.0)
		}
	}
}

func TestLevel(t *testing.T) {
	assert.Equal(t, "high", score.Level(0.95))
	assert.Equal(t, "medium", score.Level(0.8))
	assert.Equal(t, "low", score.Level(0.6))
	assert.Equal(t, "very_low", score.Level(0.2))
}
