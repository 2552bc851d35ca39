// SPDX-License-Identifier: Apache-2.0

// Package match finds catalog rule triggers in normalized text and attaches
// to each accepted trigger its nearest time expression, a location and a
// remark taken from the surrounding context window.
package match

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/sofproj/sof-mcp/internal/sof"
	"github.com/sofproj/sof-mcp/internal/sof/catalog"
	"github.com/sofproj/sof-mcp/internal/sof/normalize"
	"github.com/sofproj/sof-mcp/internal/sof/score"
	"github.com/sofproj/sof-mcp/internal/sof/timeref"
)

// SweepConfidence is the base confidence of a context-sweep match.
const SweepConfidence = 0.6

// DefaultWindow is the context radius in characters.
const DefaultWindow = 80

// Match is a transient trigger hit, consumed by the assembler.
type Match struct {
	RuleName string
	Type     sof.EventType
	Label    string
	Phase    catalog.Phase
	Priority int
	Method   sof.ExtractionMethod

	// Start and End bound the trigger in normalized text.
	Start, End int
	// WindowStart and WindowEnd bound the context window.
	WindowStart, WindowEnd int

	// Token is the index of the chosen time expression, or -1.
	Token int
	// EndToken is the index of the expression closing a range, or -1.
	EndToken int
	// TokenDistance is the gap in characters between trigger and Token.
	TokenDistance int

	Location   string
	Remarks    string
	Confidence float64
}

// Options tune the matcher.
type Options struct {
	// Window is the context radius around a trigger in characters.
	Window int
	// Sweep enables the lower-confidence pass over lines no rule matched.
	Sweep   bool
	Weights score.Weights
}

// Matcher applies a catalog to normalized text. It holds no per-document
// state and is safe for concurrent use.
type Matcher struct {
	cat   *catalog.Catalog
	opts  Options
	ports *regexp.Regexp
	log   *zap.SugaredLogger
}

// New creates a matcher over cat. A nil log discards output.
func New(cat *catalog.Catalog, opts Options, log *zap.SugaredLogger) *Matcher {
	if opts.Window <= 0 {
		opts.Window = DefaultWindow
	}
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	m := &Matcher{cat: cat, opts: opts, log: log}
	if len(cat.Ports) > 0 {
		names := make([]string, len(cat.Ports))
		for i, p := range cat.Ports {
			names[i] = strings.Join(strings.Fields(regexp.QuoteMeta(p)), `\s+`)
		}
		m.ports = regexp.MustCompile(`(?i)\b(?:` + strings.Join(names, "|") + `)\b`)
	}
	return m
}

// Result is the matcher output for one document.
type Result struct {
	Matches  []Match
	Warnings []sof.Warning
}

type hit struct {
	rule  int
	start int
	end   int
}

// Match scans the folded view of text for every rule and returns the
// accepted matches in document order. Offsets are shared with the
// normalized text.
func (m *Matcher) Match(text *normalize.Text, tokens []timeref.Token) Result {
	var res Result
	folded := text.Folded

	var hits []hit
	for i := range m.cat.Rules {
		r := &m.cat.Rules[i]
		re := r.Trigger()
		if re == nil {
			m.log.Warnw("Skipping rule without a compiled trigger", "rule", r.Name)
			res.Warnings = append(res.Warnings, sof.Warning{
				Kind:    sof.WarnSkippedRule,
				Message: fmt.Sprintf("rule %q has no compiled trigger", r.Name),
			})
			continue
		}
		for _, loc := range re.FindAllStringIndex(folded, -1) {
			if loc[1] > loc[0] {
				hits = append(hits, hit{rule: i, start: loc[0], end: loc[1]})
			}
		}
	}

	for _, h := range m.resolveOverlaps(hits) {
		r := &m.cat.Rules[h.rule]
		mt := m.build(text, tokens, h.start, h.end)
		mt.RuleName = r.Name
		mt.Type = r.Type
		mt.Label = r.Label
		mt.Phase = r.Phase
		mt.Priority = r.Priority
		mt.Method = sof.MethodPatternMatch

		hasTime := mt.Token >= 0
		contextOK := r.ContextSatisfied(folded[mt.WindowStart:mt.WindowEnd])
		if r.RequiredContext != nil && r.RequiredContext.TimeWithin > 0 {
			contextOK = contextOK && hasTime && mt.TokenDistance <= r.RequiredContext.TimeWithin
		}
		mt.Confidence = score.MatchConfidence(score.MatchSignals{
			Base:               r.BaseConfidence,
			TimeInWindow:       hasTime,
			HasRequiredContext: r.HasRequiredContext(),
			ContextSatisfied:   contextOK,
		}, m.opts.Weights)
		res.Matches = append(res.Matches, mt)
	}

	if m.opts.Sweep {
		res.Matches = append(res.Matches, m.sweep(text, tokens, res.Matches)...)
		sort.SliceStable(res.Matches, func(i, j int) bool { return res.Matches[i].Start < res.Matches[j].Start })
	}
	return res
}

// resolveOverlaps keeps, among overlapping hits, the one with the higher
// priority, then the longer span, then the earlier position.
func (m *Matcher) resolveOverlaps(hits []hit) []hit {
	sort.SliceStable(hits, func(i, j int) bool {
		pi, pj := m.cat.Rules[hits[i].rule].Priority, m.cat.Rules[hits[j].rule].Priority
		if pi != pj {
			return pi > pj
		}
		li, lj := hits[i].end-hits[i].start, hits[j].end-hits[j].start
		if li != lj {
			return li > lj
		}
		if hits[i].start != hits[j].start {
			return hits[i].start < hits[j].start
		}
		return hits[i].rule < hits[j].rule
	})

	var kept []hit
	for _, h := range hits {
		free := true
		for _, k := range kept {
			if h.start < k.end && k.start < h.end {
				free = false
				break
			}
		}
		if free {
			kept = append(kept, h)
		}
	}
	sort.Slice(kept, func(i, j int) bool { return kept[i].start < kept[j].start })
	return kept
}

// build fills the window, time expression, location and remarks for a
// trigger at [start, end).
func (m *Matcher) build(text *normalize.Text, tokens []timeref.Token, start, end int) Match {
	s := text.Normalized
	ws, we := snapWindow(s, start, end, m.opts.Window)
	ls, _ := text.LineBounds(start)
	_, le := text.LineBounds(max(start, end-1))
	zs, ze := max(ws, ls), min(we, le)

	mt := Match{
		Start: start, End: end,
		WindowStart: ws, WindowEnd: we,
		Token: -1, EndToken: -1,
	}
	mt.Token, mt.TokenDistance = nearestToken(tokens, start, end, zs, ze)
	if mt.Token >= 0 {
		tok := tokens[mt.Token]
		switch {
		case tok.RangeEnd >= 0:
			mt.EndToken = tok.RangeEnd
		case tok.RangeStart >= 0:
			mt.EndToken = mt.Token
			mt.Token = tok.RangeStart
		}
	}
	mt.Location = m.location(s, zs, ze)
	mt.Remarks = remarks(s, end, zs, ze, ws, we)
	return mt
}

// snapWindow widens [start, end) by radius and shrinks the result to whole
// words.
func snapWindow(s string, start, end, radius int) (int, int) {
	ws := max(0, start-radius)
	we := min(len(s), end+radius)
	if ws > 0 && !isSpace(s[ws-1]) {
		for ws < start && !isSpace(s[ws]) {
			ws++
		}
	}
	if we < len(s) && !isSpace(s[we]) {
		for we > end && !isSpace(s[we-1]) {
			we--
		}
	}
	return ws, we
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\n'
}

// nearestToken returns the index of the token inside [zs, ze) closest to the
// trigger, preferring the preceding token on ties, and its distance.
func nearestToken(tokens []timeref.Token, start, end, zs, ze int) (int, int) {
	best, bestDist, bestBefore := -1, 0, false
	for i, tok := range tokens {
		if tok.Start < zs || tok.End > ze {
			continue
		}
		var dist int
		before := tok.End <= start
		switch {
		case before:
			dist = start - tok.End
		case tok.Start >= end:
			dist = tok.Start - end
		}
		if best < 0 || dist < bestDist || (dist == bestDist && before && !bestBefore) {
			best, bestDist, bestBefore = i, dist, before
		}
	}
	return best, bestDist
}

var (
	facilityIDRe    = regexp.MustCompile(`(?i)\b(?:berth|pier|wharf|dock|jetty|quay|buoy|anchorage|terminal|dolphin)\s*(?:no\.?\s*)?[a-z]?\d{1,4}[a-z]?\b`)
	namedFacilityRe = regexp.MustCompile(`\b[A-Z][A-Za-z]+(?:\s+[A-Z][A-Za-z]+){0,2}\s+(?i:anchorage|port|terminal|roads|harbou?r|refinery)\b`)
	portNameRe      = regexp.MustCompile(`\bPort\s+(?:of\s+)?[A-Z][A-Za-z]+(?:\s+[A-Z][A-Za-z]+)?\b`)
	atLocationRe    = regexp.MustCompile(`\b(?i:at|off)\s+([A-Z][A-Za-z]+(?:\s+[A-Z][A-Za-z]+){0,2})\b`)
	remarksLabelRe  = regexp.MustCompile(`(?i)\b(?:remarks?|rmks?)\s*[:\-]\s*([^\n|]+)`)
)

// location looks in the zone for a facility with an identifier, a named
// facility, "Port <Name>", a known port and finally "at <Name>".
func (m *Matcher) location(s string, zs, ze int) string {
	zone := s[zs:ze]
	patterns := []*regexp.Regexp{facilityIDRe, namedFacilityRe, portNameRe}
	if m.ports != nil {
		patterns = append(patterns, m.ports)
	}
	for _, re := range patterns {
		if loc := re.FindString(zone); loc != "" {
			return strings.Join(strings.Fields(loc), " ")
		}
	}
	if sm := atLocationRe.FindStringSubmatch(zone); sm != nil {
		return strings.Join(strings.Fields(sm[1]), " ")
	}
	return ""
}

// remarks prefers an explicit "Remarks:" label, then the clause after a
// comma following the trigger, then the zone text itself.
func remarks(s string, end, zs, ze, ws, we int) string {
	for _, span := range [][2]int{{zs, ze}, {ws, we}} {
		if sm := remarksLabelRe.FindStringSubmatch(s[span[0]:span[1]]); sm != nil {
			if r := cleanRemark(sm[1]); r != "" {
				return r
			}
		}
	}
	if end < ze {
		if i := strings.IndexByte(s[end:ze], ','); i >= 0 {
			if r := cleanRemark(s[end+i+1 : ze]); r != "" {
				return r
			}
		}
	}
	return cleanRemark(s[zs:ze])
}

func cleanRemark(r string) string {
	r = strings.Join(strings.Fields(r), " ")
	return strings.Trim(r, " |,;.:-")
}

// sweep proposes low-confidence matches on lines that carry a context keyword
// and a time expression but no accepted rule match.
func (m *Matcher) sweep(text *normalize.Text, tokens []timeref.Token, matched []Match) []Match {
	ctx := m.cat.Context()
	if len(ctx) == 0 {
		return nil
	}
	folded := text.Folded
	var out []Match

	for _, line := range text.Lines() {
		covered := false
		for _, mt := range matched {
			if mt.Start < line.End && line.Start < mt.End {
				covered = true
				break
			}
		}
		if covered {
			continue
		}

		bestType, bestLoc := sof.EventType(""), []int(nil)
		for _, t := range sof.AllEventTypes() {
			re, ok := ctx[t]
			if !ok {
				continue
			}
			loc := re.FindStringIndex(folded[line.Start:line.End])
			if loc != nil && (bestLoc == nil || loc[0] < bestLoc[0]) {
				bestType, bestLoc = t, loc
			}
		}
		if bestLoc == nil {
			continue
		}

		start, end := line.Start+bestLoc[0], line.Start+bestLoc[1]
		mt := m.build(text, tokens, start, end)
		if mt.Token < 0 {
			continue
		}
		mt.RuleName = "context:" + string(bestType)
		mt.Type = bestType
		mt.Label = bestType.DisplayName()
		mt.Phase = catalog.PhasePoint
		mt.Method = sof.MethodNLPContext
		mt.Confidence = score.MatchConfidence(score.MatchSignals{Base: SweepConfidence, TimeInWindow: true}, m.opts.Weights)
		m.log.Debugw("Context sweep match", "event_type", bestType, "offset", start)
		out = append(out, mt)
	}
	return out
}
