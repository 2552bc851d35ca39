// SPDX-License-Identifier: Apache-2.0

package sof

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/sofproj/sof-mcp/internal/errors"
)

// Warning kinds attached to a Result.
const (
	WarnDegradedText   = "degraded_text"
	WarnLowQualityText = "low_quality_text"
	WarnAmbiguousDate  = "ambiguous_date"
	WarnSkippedRule    = "skipped_rule"
)

// Warning is a non-fatal advisory produced during extraction.
type Warning struct {
	Kind    string `json:"kind" yaml:"kind"`
	Message string `json:"message" yaml:"message"`
	Offset  int    `json:"offset" yaml:"offset"`
}

// Summary aggregates an extraction result.
type Summary struct {
	TotalEvents          int               `json:"total_events" yaml:"total_events"`
	EventCounts          map[EventType]int `json:"event_counts" yaml:"event_counts"`
	FirstEventTime       *string           `json:"first_event_time" yaml:"first_event_time"`
	LastEventTime        *string           `json:"last_event_time" yaml:"last_event_time"`
	TotalSpanMinutes     int               `json:"total_span_minutes" yaml:"total_span_minutes"`
	TotalDurationMinutes int               `json:"total_duration_minutes" yaml:"total_duration_minutes"`
	DelayMinutes         int               `json:"delay_minutes" yaml:"delay_minutes"`
	OperationalMinutes   int               `json:"operational_minutes" yaml:"operational_minutes"`
	AverageConfidence    float64           `json:"average_confidence" yaml:"average_confidence"`
	TimeUnknownEvents    int               `json:"time_unknown_events" yaml:"time_unknown_events"`
}

// EmptySummary returns a summary with every event type counted as zero.
func EmptySummary() Summary {
	counts := make(map[EventType]int, len(AllEventTypes()))
	for _, t := range AllEventTypes() {
		counts[t] = 0
	}
	return Summary{EventCounts: counts}
}

// Result is the output of one extraction run. Events are ordered
// chronologically; events without a resolved start time follow in document
// order.
type Result struct {
	DocumentID string    `json:"document_id" yaml:"document_id"`
	Events     []Event   `json:"events" yaml:"events"`
	Summary    Summary   `json:"summary" yaml:"summary"`
	Warnings   []Warning `json:"warnings,omitempty" yaml:"warnings,omitempty"`
}

// FormatDuration renders d as "1d 3h 20m", "8h", "45m" or "0m".
// Seconds are dropped and negative durations render as "0m".
func FormatDuration(d time.Duration) string {
	if d <= 0 {
		return "0m"
	}
	total := int(d / time.Minute)
	days := total / (24 * 60)
	hours := (total % (24 * 60)) / 60
	minutes := total % 60

	var parts []string
	if days > 0 {
		parts = append(parts, fmt.Sprintf("%dd", days))
	}
	if hours > 0 {
		parts = append(parts, fmt.Sprintf("%dh", hours))
	}
	if minutes > 0 {
		parts = append(parts, fmt.Sprintf("%dm", minutes))
	}
	if len(parts) == 0 {
		return "0m"
	}
	return strings.Join(parts, " ")
}

var (
	clockDurationRe = regexp.MustCompile(`^(\d+):(\d{2})(?::(\d{2}))?$`)
	unitDurationRe  = regexp.MustCompile(`(\d+)\s*([dhms])`)
)

// ParseDuration parses the FormatDuration form as well as "H:MM[:SS]".
func ParseDuration(s string) (time.Duration, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return 0, errors.New("empty duration")
	}
	if m := clockDurationRe.FindStringSubmatch(s); m != nil {
		h, _ := strconv.Atoi(m[1])
		mins, _ := strconv.Atoi(m[2])
		d := time.Duration(h)*time.Hour + time.Duration(mins)*time.Minute
		if m[3] != "" {
			sec, _ := strconv.Atoi(m[3])
			d += time.Duration(sec) * time.Second
		}
		return d, nil
	}

	matches := unitDurationRe.FindAllStringSubmatch(s, -1)
	if len(matches) == 0 {
		return 0, errors.Newf("invalid duration %q", s)
	}
	var d time.Duration
	for _, m := range matches {
		n, _ := strconv.Atoi(m[1])
		switch m[2] {
		case "d":
			d += time.Duration(n) * 24 * time.Hour
		case "h":
			d += time.Duration(n) * time.Hour
		case "m":
			d += time.Duration(n) * time.Minute
		case "s":
			d += time.Duration(n) * time.Second
		}
	}
	return d, nil
}
