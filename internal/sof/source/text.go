// SPDX-License-Identifier: Apache-2.0

package source

import (
	"context"
	"strings"

	"github.com/sofproj/sof-mcp/internal/sof/extract"
)

// PlainTextDecoder passes text through unchanged.
type PlainTextDecoder struct{}

func NewPlainTextDecoder() *PlainTextDecoder {
	return &PlainTextDecoder{}
}

func (d *PlainTextDecoder) Name() string {
	return "text"
}

func (d *PlainTextDecoder) CanHandle(src Source) bool {
	switch strings.ToLower(src.Format) {
	case "", "text", "txt", "plain":
		return true
	}
	return false
}

func (d *PlainTextDecoder) Decode(_ context.Context, src Source) (extract.Document, error) {
	return extract.Document{Text: string(src.Content)}, nil
}
