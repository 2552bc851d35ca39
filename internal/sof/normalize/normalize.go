// SPDX-License-Identifier: Apache-2.0

// Package normalize cleans raw extracted document text while keeping a map
// from every normalized byte offset back to the original text.
//
// Line breaks survive normalization: Statement-of-Facts entries are line
// delimited and later stages use the enclosing line to bound their search.
package normalize

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// Issues reported on a Text.
const (
	IssueDegraded         = "degraded_text"
	IssueLowQuality       = "low_quality_text"
	IssueEncodingRepaired = "encoding_repaired"
)

// lowQualityRatio is the share of stripped runes above which the text is
// reported as low quality.
const lowQualityRatio = 0.2

// Text is normalized document text. It is immutable once returned.
type Text struct {
	Raw        string
	Normalized string
	// Folded is an ASCII lower-cased view of Normalized with identical byte offsets.
	Folded   string
	Degraded bool
	Issues   []string

	offsets []int // len(Normalized)+1 entries
}

// Len returns the length of the normalized text in bytes.
func (t *Text) Len() int {
	return len(t.Normalized)
}

// Original maps a normalized byte offset to the original text offset.
func (t *Text) Original(i int) int {
	if len(t.offsets) == 0 {
		return 0
	}
	if i < 0 {
		i = 0
	}
	if i >= len(t.offsets) {
		return t.offsets[len(t.offsets)-1]
	}
	return t.offsets[i]
}

// LineBounds returns the [start, end) bounds of the line containing offset i.
func (t *Text) LineBounds(i int) (int, int) {
	s := t.Normalized
	if i < 0 {
		i = 0
	}
	if i > len(s) {
		i = len(s)
	}
	start := strings.LastIndexByte(s[:i], '\n') + 1
	end := len(s)
	if j := strings.IndexByte(s[i:], '\n'); j >= 0 {
		end = i + j
	}
	return start, end
}

// Span is a [Start, End) byte range of the normalized text.
type Span struct {
	Start, End int
}

// Lines returns the non-empty lines of the normalized text.
func (t *Text) Lines() []Span {
	var spans []Span
	start := 0
	s := t.Normalized
	for start <= len(s) {
		end := len(s)
		if j := strings.IndexByte(s[start:], '\n'); j >= 0 {
			end = start + j
		}
		if strings.TrimSpace(s[start:end]) != "" {
			spans = append(spans, Span{Start: start, End: end})
		}
		start = end + 1
	}
	return spans
}

// HasIssue reports whether issue was recorded during normalization.
func (t *Text) HasIssue(issue string) bool {
	for _, i := range t.Issues {
		if i == issue {
			return true
		}
	}
	return false
}

var (
	markerRe     = regexp.MustCompile(`(?im)^[ ]*-{2,}[ ]*(?:page[ ]+\d+|table)[ ]*-{2,}[ ]*$`)
	hyphenWrapRe = regexp.MustCompile(`-[ ]*\n[ ]*`)
	softWrapRe   = regexp.MustCompile(`[ ]*\n[ ]*`)
	spaceRunRe   = regexp.MustCompile(`[ \n]+`)
	edgeSpaceRe  = regexp.MustCompile(`^[ \n]+|[ \n]+$`)
)

// Normalize cleans raw text. It never fails: when cleaning leaves nothing
// usable the raw text is passed through and the result is marked Degraded.
func Normalize(raw string) *Text {
	var issues []string

	in, repaired := repairEncoding(raw)
	if repaired {
		issues = append(issues, IssueEncodingRepaired)
	}
	in = compat(in)

	in, stripped, total := cleanRunes(in)
	if total > 0 && float64(stripped)/float64(total) > lowQualityRatio {
		issues = append(issues, IssueLowQuality)
	}

	in = rewrite(in, markerRe, func(string, []int) (string, bool) { return "", true })
	in = rewrite(in, hyphenWrapRe, func(s string, loc []int) (string, bool) {
		if loc[0] == 0 || loc[1] >= len(s) {
			return "", false
		}
		return "", isASCIILetter(s[loc[0]-1]) && isLowerASCII(s[loc[1]])
	})
	in = rewrite(in, softWrapRe, func(s string, loc []int) (string, bool) {
		if loc[0] == 0 || loc[1] >= len(s) {
			return "", false
		}
		prev := s[loc[0]-1]
		return " ", (isLowerASCII(prev) || prev == ',') && isLowerASCII(s[loc[1]])
	})
	in = rewrite(in, spaceRunRe, func(s string, loc []int) (string, bool) {
		run := s[loc[0]:loc[1]]
		switch strings.Count(run, "\n") {
		case 0:
			return " ", len(run) > 1
		case 1:
			return "\n", run != "\n"
		default:
			return "\n\n", run != "\n\n"
		}
	})
	in = rewrite(in, edgeSpaceRe, func(string, []int) (string, bool) { return "", true })

	if strings.TrimSpace(in.text) == "" && strings.TrimSpace(raw) != "" {
		pass := identity(raw)
		return &Text{
			Raw:        raw,
			Normalized: raw,
			Folded:     foldASCII(raw),
			Degraded:   true,
			Issues:     append(issues, IssueDegraded),
			offsets:    pass.m,
		}
	}

	return &Text{
		Raw:        raw,
		Normalized: in.text,
		Folded:     foldASCII(in.text),
		Issues:     issues,
		offsets:    in.m,
	}
}

// mapped is text plus, for every byte, its offset in the raw input.
// m has len(text)+1 entries; the last one is the end offset.
type mapped struct {
	text string
	m    []int
}

func identity(s string) mapped {
	m := make([]int, len(s)+1)
	for i := range m {
		m[i] = i
	}
	return mapped{text: s, m: m}
}

type builder struct {
	b strings.Builder
	m []int
}

// copyFrom copies in.text[from:to] keeping its offsets.
func (b *builder) copyFrom(in mapped, from, to int) {
	b.b.WriteString(in.text[from:to])
	b.m = append(b.m, in.m[from:to]...)
}

// emit writes replacement text whose bytes all map to src.
func (b *builder) emit(s string, src int) {
	b.b.WriteString(s)
	for i := 0; i < len(s); i++ {
		b.m = append(b.m, src)
	}
}

func (b *builder) finish(end int) mapped {
	return mapped{text: b.b.String(), m: append(b.m, end)}
}

// rewrite replaces regexp matches for which fn returns ok, keeping offsets.
func rewrite(in mapped, re *regexp.Regexp, fn func(s string, loc []int) (string, bool)) mapped {
	locs := re.FindAllStringIndex(in.text, -1)
	if len(locs) == 0 {
		return in
	}
	var b builder
	prev := 0
	changed := false
	for _, loc := range locs {
		repl, ok := fn(in.text, loc)
		if !ok {
			continue
		}
		changed = true
		b.copyFrom(in, prev, loc[0])
		b.emit(repl, in.m[loc[0]])
		prev = loc[1]
	}
	if !changed {
		return in
	}
	b.copyFrom(in, prev, len(in.text))
	return b.finish(in.m[len(in.text)])
}

// repairEncoding reads invalid UTF-8 bytes as Latin-1.
func repairEncoding(raw string) (mapped, bool) {
	if utf8.ValidString(raw) {
		return identity(raw), false
	}
	var b builder
	for i := 0; i < len(raw); {
		r, size := utf8.DecodeRuneInString(raw[i:])
		if r == utf8.RuneError && size == 1 {
			b.emit(string(rune(raw[i])), i)
		} else {
			b.b.WriteString(raw[i : i+size])
			for k := 0; k < size; k++ {
				b.m = append(b.m, i+k)
			}
		}
		i += size
	}
	return b.finish(len(raw)), true
}

// compat applies NFKC so ligatures, full-width digits and non-breaking
// spaces become their plain equivalents.
func compat(in mapped) mapped {
	if norm.NFKC.IsNormalString(in.text) {
		return in
	}
	var b builder
	var it norm.Iter
	it.InitString(norm.NFKC, in.text)
	for !it.Done() {
		start := it.Pos()
		seg := string(it.Next())
		end := it.Pos()
		if seg == in.text[start:end] {
			b.copyFrom(in, start, end)
		} else {
			b.emit(seg, in.m[start])
		}
	}
	return b.finish(in.m[len(in.text)])
}

// cleanRunes unifies line endings and whitespace and drops control and
// format characters. It returns the number of stripped and total runes.
func cleanRunes(in mapped) (mapped, int, int) {
	var b builder
	stripped, total := 0, 0
	s := in.text
	for i := 0; i < len(s); {
		r, size := utf8.DecodeRuneInString(s[i:])
		total++
		switch {
		case r == '\r':
			if i+1 < len(s) && s[i+1] == '\n' {
				break
			}
			b.emit("\n", in.m[i])
		case r == '\n':
			b.copyFrom(in, i, i+1)
		case r == '\f' || r == '\u2028' || r == '\u2029':
			b.emit("\n", in.m[i])
		case unicode.IsSpace(r):
			b.emit(" ", in.m[i])
		case r == utf8.RuneError || unicode.IsControl(r) || unicode.Is(unicode.Cf, r):
			stripped++
		default:
			b.copyFrom(in, i, i+size)
		}
		i += size
	}
	return b.finish(in.m[len(s)]), stripped, total
}

func foldASCII(s string) string {
	buf := []byte(s)
	for i, c := range buf {
		if c >= 'A' && c <= 'Z' {
			buf[i] = c + ('a' - 'A')
		}
	}
	return string(buf)
}

func isASCIILetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isLowerASCII(c byte) bool {
	return c >= 'a' && c <= 'z'
}
