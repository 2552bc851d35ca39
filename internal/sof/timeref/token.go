// SPDX-License-Identifier: Apache-2.0

package timeref

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// TokenKind classifies what a token carries.
type TokenKind int

const (
	TokenDate TokenKind = iota
	TokenTime
	TokenDateTime
)

// Token is a date and/or time expression found in text. Date parts are kept
// as written; the Resolver decides day/month order and plausibility.
type Token struct {
	Start, End int
	Text       string
	Template   string

	HasDate bool
	// Numeric dates carry their first two fields as written in First and
	// Second. Otherwise First is the day and Second the month.
	Numeric       bool
	First, Second int
	// Year is a four-digit year, or 0 when the expression has none.
	Year int
	// DateInherited marks a date copied from the other side of a range.
	DateInherited bool

	HasTime      bool
	Hour, Minute int

	// RangeEnd is the index of the token closing a "1400 to 1630" range, or -1.
	RangeEnd int
	// RangeStart is the index of the token opening the range this token closes, or -1.
	RangeStart int
}

// Kind reports whether the token holds a date, a time, or both.
func (t Token) Kind() TokenKind {
	switch {
	case t.HasDate && t.HasTime:
		return TokenDateTime
	case t.HasDate:
		return TokenDate
	default:
		return TokenTime
	}
}

const monthAlt = `jan(?:uary)?|feb(?:ruary)?|mar(?:ch)?|apr(?:il)?|may|june?|july?|aug(?:ust)?|sep(?:t(?:ember)?)?|oct(?:ober)?|nov(?:ember)?|dec(?:ember)?`

var months = map[string]int{
	"jan": 1, "feb": 2, "mar": 3, "apr": 4, "may": 5, "jun": 6,
	"jul": 7, "aug": 8, "sep": 9, "oct": 10, "nov": 11, "dec": 12,
}

var (
	yearThenHoursRe = regexp.MustCompile(`(?i)^[ ]*(?:hrs|hr|h|lt)\b`)
	mergeGapRe      = regexp.MustCompile(`(?i)^[ ,]*(?:(?:at|on|@|hrs|hr|h|lt|dated)[ ,.]*)*$`)
	rangeGapRe      = regexp.MustCompile(`(?i)^[ ]*(?:to|till|until|and|-|–|—)[ ]*$`)
)

// maxMergeGap bounds the separator between a date and a time that form one
// expression.
const maxMergeGap = 12

// bareContextWords may precede a bare four-digit time such as "from 1400".
var bareContextWords = map[string]bool{
	"at": true, "from": true, "to": true, "till": true, "until": true,
	"fm": true, "by": true, "between": true, "and": true, "time": true, "on": true,
}

// bareBlockWords mark a following four-digit number as an identifier.
var bareBlockWords = map[string]bool{
	"berth": true, "pier": true, "wharf": true, "jetty": true, "quay": true,
	"buoy": true, "terminal": true, "no": true, "no.": true, "#": true, "voy": true, "voyage": true,
}

type template struct {
	name  string
	re    *regexp.Regexp
	build func(s string, m []int) (Token, bool)
	bare  bool
}

// templates are listed in preference order for equally long overlapping matches.
var templates = []template{
	{
		name: "iso",
		re:   regexp.MustCompile(`\b(\d{4})-(\d{2})-(\d{2})(?:[T ](\d{2}):(\d{2}))?\b`),
		build: func(s string, m []int) (Token, bool) {
			tok := Token{HasDate: true, Year: atoi(s, m, 1), Second: atoi(s, m, 2), First: atoi(s, m, 3)}
			if m[8] >= 0 {
				tok.HasTime = true
				tok.Hour, tok.Minute = atoi(s, m, 4), atoi(s, m, 5)
				if tok.Hour > 23 || tok.Minute > 59 {
					return tok, false
				}
			}
			return tok, true
		},
	},
	{
		name: "numeric",
		re:   regexp.MustCompile(`\b(\d{1,2})[/.\-](\d{1,2})[/.\-](\d{4}|\d{2})\b`),
		build: func(s string, m []int) (Token, bool) {
			return Token{
				HasDate: true, Numeric: true,
				First: atoi(s, m, 1), Second: atoi(s, m, 2),
				Year: expandYear(s[m[6]:m[7]]),
			}, true
		},
	},
	{
		name: "day_month",
		re:   regexp.MustCompile(`(?i)\b(\d{1,2})(?:st|nd|rd|th)?[ \-]?(` + monthAlt + `)(\.?)(?:,?[ ]+(19\d{2}|20\d{2})|-(\d{2}))?\b`),
		build: func(s string, m []int) (Token, bool) {
			tok := Token{HasDate: true, First: atoi(s, m, 1), Second: monthIndex(s[m[4]:m[5]])}
			switch {
			case m[8] >= 0 && yearThenHoursRe.MatchString(s[m[9]:]):
				tok.End = m[7]
			case m[8] >= 0:
				tok.Year = atoi(s, m, 4)
			case m[10] >= 0:
				tok.Year = expandYear(s[m[10]:m[11]])
			}
			return tok, true
		},
	},
	{
		name: "month_day",
		re:   regexp.MustCompile(`(?i)\b(` + monthAlt + `)\.?[ ]+(\d{1,2})((?:st|nd|rd|th)?)\b(?:,?[ ]+(19\d{2}|20\d{2})\b)?`),
		build: func(s string, m []int) (Token, bool) {
			tok := Token{HasDate: true, First: atoi(s, m, 2), Second: monthIndex(s[m[2]:m[3]])}
			if m[8] >= 0 {
				if yearThenHoursRe.MatchString(s[m[9]:]) {
					tok.End = m[7]
				} else {
					tok.Year = atoi(s, m, 4)
				}
			}
			return tok, true
		},
	},
	{
		name: "short_numeric",
		re:   regexp.MustCompile(`\b(\d{1,2})/(\d{1,2})\b`),
		build: func(s string, m []int) (Token, bool) {
			return Token{HasDate: true, Numeric: true, First: atoi(s, m, 1), Second: atoi(s, m, 2)}, true
		},
	},
	{
		name:  "clock",
		re:    regexp.MustCompile(`(?i)\b([01]?\d|2[0-3]):([0-5]\d)(?::[0-5]\d)?(?:[ ]?(?:hrs|hr|h|lt)\b)?`),
		build: timeBuilder,
	},
	{
		name:  "dotted",
		re:    regexp.MustCompile(`(?i)\b([01]?\d|2[0-3])\.([0-5]\d)[ ]?(?:hrs|hr|h|lt)\b`),
		build: timeBuilder,
	},
	{
		name:  "hours",
		re:    regexp.MustCompile(`(?i)\b([01]\d|2[0-3])([0-5]\d)[ ]?(?:hrs|hr|h|lt|lmt)\b`),
		build: timeBuilder,
	},
	{
		name:  "bare",
		re:    regexp.MustCompile(`\b([01]\d|2[0-3])([0-5]\d)\b`),
		build: timeBuilder,
		bare:  true,
	},
}

func timeBuilder(s string, m []int) (Token, bool) {
	return Token{HasTime: true, Hour: atoi(s, m, 1), Minute: atoi(s, m, 2)}, true
}

type candidate struct {
	tok  Token
	tpl  int
	bare bool
}

// Scan finds every date and time expression in text, in document order.
// Adjacent date and time expressions are merged into one token and
// "1400 to 1630" style ranges are linked through RangeEnd/RangeStart.
func Scan(text string) []Token {
	var cands []candidate
	for i, tpl := range templates {
		for _, m := range tpl.re.FindAllStringSubmatchIndex(text, -1) {
			tok, ok := tpl.build(text, m)
			if !ok {
				continue
			}
			tok.Start = m[0]
			if tok.End == 0 {
				tok.End = m[1]
			}
			tok.Template = tpl.name
			cands = append(cands, candidate{tok: tok, tpl: i, bare: tpl.bare})
		}
	}

	sort.SliceStable(cands, func(i, j int) bool {
		li := cands[i].tok.End - cands[i].tok.Start
		lj := cands[j].tok.End - cands[j].tok.Start
		if li != lj {
			return li > lj
		}
		if cands[i].tpl != cands[j].tpl {
			return cands[i].tpl < cands[j].tpl
		}
		return cands[i].tok.Start < cands[j].tok.Start
	})

	var accepted []candidate
	for _, c := range cands {
		overlaps := false
		for _, a := range accepted {
			if c.tok.Start < a.tok.End && a.tok.Start < c.tok.End {
				overlaps = true
				break
			}
		}
		if !overlaps {
			accepted = append(accepted, c)
		}
	}
	sort.Slice(accepted, func(i, j int) bool { return accepted[i].tok.Start < accepted[j].tok.Start })

	var kept []Token
	for _, c := range accepted {
		if c.bare {
			var prev *Token
			if len(kept) > 0 {
				prev = &kept[len(kept)-1]
			}
			if !bareContextOK(text, c.tok.Start, c.tok.End, prev) {
				continue
			}
		}
		kept = append(kept, c.tok)
	}

	tokens := mergeDateTime(text, kept)
	linkRanges(text, tokens)
	for i := range tokens {
		tokens[i].Text = text[tokens[i].Start:tokens[i].End]
	}
	return tokens
}

// bareContextOK accepts a bare four-digit time at a line or table-cell
// start, after a connective such as "from", right after a date, or at the
// end of an entry.
func bareContextOK(text string, start, end int, prev *Token) bool {
	lineStart := strings.LastIndexByte(text[:start], '\n') + 1
	before := strings.TrimRight(text[lineStart:start], " ")
	if before == "" {
		return true
	}
	if strings.HasSuffix(before, "|") || strings.HasSuffix(before, "-") ||
		strings.HasSuffix(before, ":") || strings.HasSuffix(before, "–") {
		return true
	}
	word := before
	if i := strings.LastIndexAny(word, " |"); i >= 0 {
		word = word[i+1:]
	}
	word = strings.ToLower(word)
	if bareContextWords[word] {
		return true
	}
	if bareBlockWords[word] {
		return false
	}
	if prev != nil && prev.HasDate && !prev.HasTime && prev.End <= start &&
		!strings.Contains(text[prev.End:start], "\n") && mergeGapRe.MatchString(text[prev.End:start]) {
		return true
	}
	after := strings.TrimLeft(text[end:], " ")
	return after == "" || strings.IndexAny(after[:1], "\n,;|)") == 0
}

func mergeDateTime(text string, toks []Token) []Token {
	var out []Token
	for i := 0; i < len(toks); i++ {
		cur := toks[i]
		if i+1 < len(toks) {
			next := toks[i+1]
			gap := text[cur.End:next.Start]
			complementary := (cur.Kind() == TokenDate && next.Kind() == TokenTime) ||
				(cur.Kind() == TokenTime && next.Kind() == TokenDate)
			if complementary && len(gap) <= maxMergeGap && !strings.Contains(gap, "\n") && mergeGapRe.MatchString(gap) {
				date, clock := cur, next
				if cur.Kind() == TokenTime {
					date, clock = next, cur
				}
				date.HasTime = true
				date.Hour, date.Minute = clock.Hour, clock.Minute
				date.Start, date.End = cur.Start, next.End
				out = append(out, date)
				i++
				continue
			}
		}
		out = append(out, cur)
	}
	for i := range out {
		out[i].RangeEnd, out[i].RangeStart = -1, -1
	}
	return out
}

func linkRanges(text string, toks []Token) {
	for i := 0; i+1 < len(toks); i++ {
		a, b := &toks[i], &toks[i+1]
		if !a.HasTime || !b.HasTime || a.RangeStart >= 0 {
			continue
		}
		if !rangeGapRe.MatchString(text[a.End:b.Start]) {
			continue
		}
		a.RangeEnd, b.RangeStart = i+1, i
		switch {
		case a.HasDate && !b.HasDate:
			inheritDate(b, *a)
		case b.HasDate && !a.HasDate:
			inheritDate(a, *b)
		}
	}
}

func inheritDate(dst *Token, src Token) {
	dst.HasDate = true
	dst.Numeric = src.Numeric
	dst.First, dst.Second, dst.Year = src.First, src.Second, src.Year
	dst.DateInherited = true
}

func atoi(s string, m []int, group int) int {
	if m[2*group] < 0 {
		return 0
	}
	n, _ := strconv.Atoi(s[m[2*group]:m[2*group+1]])
	return n
}

func monthIndex(name string) int {
	name = strings.ToLower(name)
	if len(name) > 3 {
		name = name[:3]
	}
	return months[name]
}

// expandYear turns a two-digit year into a four-digit one, pivoting at 50.
func expandYear(y string) int {
	n, _ := strconv.Atoi(y)
	if len(y) == 2 {
		if n < 50 {
			return 2000 + n
		}
		return 1900 + n
	}
	return n
}
