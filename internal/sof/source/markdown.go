// SPDX-License-Identifier: Apache-2.0

package source

import (
	"context"
	"regexp"
	"strings"

	"github.com/sofproj/sof-mcp/internal/sof/extract"
)

var (
	tableSeparatorRe = regexp.MustCompile(`^\|?\s*:?-{3,}:?\s*(?:\|\s*:?-{3,}:?\s*)*\|?$`)
	imageRe          = regexp.MustCompile(`^!\[[^\]]*\]\([^)]*\)$`)
	emphasisRe       = regexp.MustCompile(`\*\*|__`)
)

// MarkdownDecoder flattens the markdown produced by PDF-to-markdown
// converters into one Statement-of-Facts entry per line. Headings lose their
// markers, table rows become "a | b | c" lines and separator rows, images
// and emphasis are dropped.
type MarkdownDecoder struct{}

// NewMarkdownDecoder creates a new MarkdownDecoder.
func NewMarkdownDecoder() *MarkdownDecoder {
	return &MarkdownDecoder{}
}

func (d *MarkdownDecoder) Name() string {
	return "markdown"
}

// CanHandle returns true for the "markdown" format hint, or for content
// that starts with a heading or contains a pipe table.
func (d *MarkdownDecoder) CanHandle(src Source) bool {
	if strings.EqualFold(src.Format, "markdown") || strings.EqualFold(src.Format, "md") {
		return true
	}
	if src.Format != "" {
		return false
	}
	content := strings.TrimSpace(string(src.Content))
	if strings.HasPrefix(content, "#") || strings.Contains(content, "\n#") {
		return true
	}
	for _, line := range strings.Split(content, "\n") {
		if tableSeparatorRe.MatchString(strings.TrimSpace(line)) {
			return true
		}
	}
	return false
}

func (d *MarkdownDecoder) Decode(_ context.Context, src Source) (extract.Document, error) {
	lines := strings.Split(string(src.Content), "\n")
	out := make([]string, 0, len(lines))

	for _, line := range lines {
		line = strings.TrimSpace(line)
		switch {
		case line == "":
			out = append(out, "")
			continue
		case tableSeparatorRe.MatchString(line), imageRe.MatchString(line):
			continue
		case strings.HasPrefix(line, "#"):
			line = strings.TrimSpace(strings.TrimLeft(line, "#"))
		case strings.HasPrefix(line, "|"):
			line = tableRow(line)
		case strings.HasPrefix(line, "- "), strings.HasPrefix(line, "* "):
			line = strings.TrimSpace(line[2:])
		}
		line = emphasisRe.ReplaceAllString(line, "")
		if line != "" {
			out = append(out, line)
		}
	}

	return extract.Document{Text: strings.TrimSpace(strings.Join(out, "\n"))}, nil
}

// tableRow renders "| a | b |" as "a | b", dropping empty cells.
func tableRow(line string) string {
	cells := strings.Split(strings.Trim(line, "|"), "|")
	kept := cells[:0]
	for _, c := range cells {
		if c = strings.TrimSpace(c); c != "" {
			kept = append(kept, c)
		}
	}
	return strings.Join(kept, " | ")
}
