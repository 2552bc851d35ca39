// SPDX-License-Identifier: Apache-2.0

package assemble

import (
	"time"

	"github.com/sofproj/sof-mcp/internal/sof"
	"github.com/sofproj/sof-mcp/internal/sof/score"
)

// Summarize aggregates events. An empty list yields all-zero aggregates with
// every event type present in the counts.
func Summarize(events []sof.Event) sof.Summary {
	sum := sof.EmptySummary()
	sum.TotalEvents = len(events)
	if len(events) == 0 {
		return sum
	}

	var (
		first, last     time.Time
		haveSpan        bool
		total, delay    time.Duration
		confidenceTotal float64
	)
	for _, ev := range events {
		sum.EventCounts[ev.Type]++
		confidenceTotal += ev.Confidence
		if ev.TimeUnknown() {
			sum.TimeUnknownEvents++
		}

		if start, ok := parseAbsolute(ev.StartTime); ok {
			end := start
			if e, ok := parseAbsolute(ev.EndTime); ok && e.After(start) {
				end = e
			}
			if !haveSpan || start.Before(first) {
				first = start
			}
			if !haveSpan || end.After(last) {
				last = end
			}
			haveSpan = true
		}

		if ev.Duration != nil {
			d, err := sof.ParseDuration(*ev.Duration)
			if err != nil {
				continue
			}
			total += d
			if ev.Type.IsDelay() {
				delay += d
			}
		}
	}

	if haveSpan {
		sum.FirstEventTime = sof.StringPtr(first.Format(AbsoluteLayout))
		sum.LastEventTime = sof.StringPtr(last.Format(AbsoluteLayout))
		sum.TotalSpanMinutes = int(last.Sub(first) / time.Minute)
	}
	sum.TotalDurationMinutes = int(total / time.Minute)
	sum.DelayMinutes = int(delay / time.Minute)
	sum.OperationalMinutes = max(0, int((total-delay-delay)/time.Minute))
	sum.AverageConfidence = score.Round(confidenceTotal / float64(len(events)))
	return sum
}
