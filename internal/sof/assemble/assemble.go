// SPDX-License-Identifier: Apache-2.0

// Package assemble turns matches and resolved timestamps into the final,
// ordered event list.
//
// Assembly runs in four passes: duplicate mentions of the same occurrence
// are merged, start and end triggers of duration events are paired,
// timestamps and durations are rendered with their confidence, and the
// events are ordered chronologically.
package assemble

import (
	"sort"
	"strings"
	"time"

	"github.com/sofproj/sof-mcp/internal/sof"
	"github.com/sofproj/sof-mcp/internal/sof/catalog"
	"github.com/sofproj/sof-mcp/internal/sof/match"
	"github.com/sofproj/sof-mcp/internal/sof/normalize"
	"github.com/sofproj/sof-mcp/internal/sof/score"
	"github.com/sofproj/sof-mcp/internal/sof/timeref"
)

// Defaults for Options.
const (
	DefaultMergeOverlap     = 0.5
	DefaultPairingProximity = 500
)

// Options tune merging and pairing.
type Options struct {
	// MergeOverlap is the minimum share of the shorter context window two
	// mentions must have in common to be merged.
	MergeOverlap float64
	// PairingProximity is the maximum distance in characters between a
	// start trigger and the end trigger it pairs with.
	PairingProximity int
	Weights          score.Weights
}

// Input is everything the assembler needs for one document.
type Input struct {
	Text    *normalize.Text
	Tokens  []timeref.Token
	Times   []timeref.Timestamp
	Matches []match.Match
}

type draft struct {
	primary match.Match
	rules   []string
	offset  int

	start, end timeref.Timestamp
	hasStart   bool
	hasEnd     bool

	locations []string
	remarks   []string
	method    sof.ExtractionMethod
	conf      float64
	paired    bool
}

// Assemble merges, pairs, scores and orders the matches of one document.
func Assemble(in Input, opts Options) []sof.Event {
	if opts.MergeOverlap <= 0 {
		opts.MergeOverlap = DefaultMergeOverlap
	}
	if opts.PairingProximity <= 0 {
		opts.PairingProximity = DefaultPairingProximity
	}

	drafts := make([]*draft, 0, len(in.Matches))
	for _, m := range in.Matches {
		drafts = append(drafts, newDraft(m, in.Times))
	}
	drafts = merge(drafts, opts.MergeOverlap)
	drafts = pair(drafts, opts.PairingProximity)

	events := make([]sof.Event, 0, len(drafts))
	for _, d := range drafts {
		events = append(events, render(d, in.Text, opts.Weights))
	}
	return order(events)
}

func newDraft(m match.Match, times []timeref.Timestamp) *draft {
	d := &draft{
		primary: m,
		rules:   []string{m.RuleName},
		offset:  m.Start,
		method:  m.Method,
		conf:    m.Confidence,
	}
	if m.Token >= 0 && m.Token < len(times) {
		d.start, d.hasStart = times[m.Token], true
	}
	if m.EndToken >= 0 && m.EndToken < len(times) {
		d.end, d.hasEnd = times[m.EndToken], true
	}
	d.locations = appendDistinct(d.locations, m.Location)
	d.remarks = appendDistinct(d.remarks, m.Remarks)
	return d
}

// merge folds mentions of the same occurrence into one draft: same event
// type and label, sufficiently overlapping windows, compatible timestamps.
func merge(drafts []*draft, threshold float64) []*draft {
	var out []*draft
	for _, d := range drafts {
		var into *draft
		for i := len(out) - 1; i >= 0; i-- {
			g := out[i]
			if g.primary.Type == d.primary.Type && g.primary.Label == d.primary.Label &&
				overlapRatio(g.primary, d.primary) >= threshold && g.start.Compatible(d.start) {
				into = g
				break
			}
		}
		if into == nil {
			out = append(out, d)
			continue
		}
		absorb(into, d)
	}
	return out
}

// absorb merges d into g. The higher-confidence mention becomes primary and
// contributes its remark first.
func absorb(g, d *draft) {
	if d.conf > g.conf {
		g.primary, g.conf = d.primary, d.conf
		g.remarks = append(appendDistinct(nil, d.primary.Remarks), g.remarks...)
		g.remarks = dedupe(g.remarks)
		if d.hasStart {
			g.start, g.hasStart = d.start, true
		}
		if d.hasEnd {
			g.end, g.hasEnd = d.end, true
		}
	} else {
		if !g.hasStart && d.hasStart {
			g.start, g.hasStart = d.start, true
		}
		if !g.hasEnd && d.hasEnd {
			g.end, g.hasEnd = d.end, true
		}
		for _, r := range d.remarks {
			g.remarks = appendDistinct(g.remarks, r)
		}
	}
	for _, l := range d.locations {
		g.locations = appendDistinct(g.locations, l)
	}
	g.rules = appendDistinct(g.rules, d.primary.RuleName)
	g.method = sof.MethodCombined
}

// overlapRatio is the intersection of two context windows over the shorter
// window.
func overlapRatio(a, b match.Match) float64 {
	inter := min(a.WindowEnd, b.WindowEnd) - max(a.WindowStart, b.WindowStart)
	if inter <= 0 {
		return 0
	}
	shorter := min(a.WindowEnd-a.WindowStart, b.WindowEnd-b.WindowStart)
	if shorter <= 0 {
		return 0
	}
	return float64(inter) / float64(shorter)
}

// pair joins each end trigger of a duration type to the latest open start
// trigger of the same type before it, within proximity.
func pair(drafts []*draft, proximity int) []*draft {
	consumed := make(map[*draft]bool)
	for i, d := range drafts {
		if !d.primary.Type.HasDuration() || d.primary.Phase != catalog.PhaseEnd {
			continue
		}
		for j := i - 1; j >= 0; j-- {
			s := drafts[j]
			if consumed[s] || s.paired || s.hasEnd || s.primary.Type != d.primary.Type || s.primary.Phase != catalog.PhaseStart {
				continue
			}
			if d.primary.Start-s.primary.End > proximity {
				break
			}
			s.end, s.hasEnd = d.start, d.hasStart
			s.paired = true
			s.method = sof.MethodCombined
			s.conf = (s.conf + d.conf) / 2
			s.rules = appendDistinct(s.rules, d.primary.RuleName)
			for _, l := range d.locations {
				s.locations = appendDistinct(s.locations, l)
			}
			for _, r := range d.remarks {
				s.remarks = appendDistinct(s.remarks, r)
			}
			consumed[d] = true
			break
		}
	}

	out := drafts[:0]
	for _, d := range drafts {
		if !consumed[d] {
			out = append(out, d)
		}
	}
	return out
}

func render(d *draft, text *normalize.Text, w score.Weights) sof.Event {
	ev := sof.Event{
		Type:         d.primary.Type,
		Name:         d.primary.Label,
		Location:     sof.StringPtr(strings.Join(d.locations, "; ")),
		Remarks:      strings.Join(d.remarks, "; "),
		Method:       d.method,
		Pattern:      strings.Join(d.rules, "+"),
		SourceOffset: text.Original(d.offset),
	}
	if d.paired {
		ev.Name = d.primary.Type.DisplayName()
	}

	sig := score.EventSignals{
		Match:       d.conf,
		HasLocation: len(d.locations) > 0,
		Paired:      d.paired,
	}

	switch {
	case !d.hasStart:
		sig.MissingTime = true
		ev.Flags = append(ev.Flags, sof.FlagTimeUnknown)
	case d.start.Kind == timeref.Unresolved:
		sig.Unresolved = true
		ev.StartTime = sof.StringPtr(d.start.String())
		ev.Flags = append(ev.Flags, sof.FlagTimeUnknown)
	case d.start.Kind == timeref.Partial:
		sig.HasTimestamp = true
		sig.Partial = true
		ev.StartTime = sof.StringPtr(d.start.String())
		ev.Flags = append(ev.Flags, sof.FlagPartialTimestamp)
	default:
		sig.HasTimestamp = true
		ev.StartTime = sof.StringPtr(d.start.String())
	}
	if d.hasEnd {
		ev.EndTime = sof.StringPtr(d.end.String())
	}
	if (d.hasStart && d.start.Ambiguous) || (d.hasEnd && d.end.Ambiguous) {
		sig.Ambiguous = true
		ev.Flags = append(ev.Flags, sof.FlagAmbiguousDate)
	}

	if d.hasStart && d.hasEnd {
		if dur, ok := duration(d.start, d.end); ok {
			if dur < 0 {
				sig.NegativeDuration = true
				ev.Flags = append(ev.Flags, sof.FlagNegativeDuration)
			} else {
				ev.Duration = sof.StringPtr(sof.FormatDuration(dur))
			}
		}
	}

	ev.Confidence = score.EventConfidence(sig, w)
	return ev
}

// duration computes end - start when both carry a time of day and the same
// known parts. Time-only pairs roll over midnight.
func duration(start, end timeref.Timestamp) (time.Duration, bool) {
	if !start.HasTime() || !end.HasTime() || start.Missing != end.Missing {
		return 0, false
	}
	d := end.Time.Sub(start.Time)
	if d < 0 && start.Missing&timeref.MissingDate != 0 {
		d += 24 * time.Hour
	}
	return d, true
}

// order sorts events with an absolute start time chronologically and
// appends the rest in document order.
func order(events []sof.Event) []sof.Event {
	var timed, untimed []sof.Event
	for _, ev := range events {
		if _, ok := absoluteStart(ev); ok {
			timed = append(timed, ev)
		} else {
			untimed = append(untimed, ev)
		}
	}
	sort.SliceStable(timed, func(i, j int) bool {
		ti, _ := absoluteStart(timed[i])
		tj, _ := absoluteStart(timed[j])
		if !ti.Equal(tj) {
			return ti.Before(tj)
		}
		return timed[i].SourceOffset < timed[j].SourceOffset
	})
	sort.SliceStable(untimed, func(i, j int) bool { return untimed[i].SourceOffset < untimed[j].SourceOffset })
	return append(timed, untimed...)
}

// absoluteStart parses the canonical absolute start time of ev.
func absoluteStart(ev sof.Event) (time.Time, bool) {
	return parseAbsolute(ev.StartTime)
}

func parseAbsolute(s *string) (time.Time, bool) {
	if s == nil {
		return time.Time{}, false
	}
	t, err := time.Parse(AbsoluteLayout, *s)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// AbsoluteLayout is the rendering of an absolute timestamp.
const AbsoluteLayout = "2006-01-02T15:04"

func appendDistinct(list []string, s string) []string {
	s = strings.TrimSpace(s)
	if s == "" {
		return list
	}
	for _, x := range list {
		if strings.EqualFold(x, s) {
			return list
		}
	}
	return append(list, s)
}

func dedupe(list []string) []string {
	var out []string
	for _, s := range list {
		out = appendDistinct(out, s)
	}
	return out
}
