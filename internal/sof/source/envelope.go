// SPDX-License-Identifier: Apache-2.0

package source

import (
	"bytes"
	"context"
	"strings"

	"github.com/goccy/go-yaml"

	"github.com/sofproj/sof-mcp/internal/errors"
	"github.com/sofproj/sof-mcp/internal/sof/extract"
)

// envelope is the YAML or JSON wrapper some extractors emit around the text.
type envelope struct {
	DocumentID string   `yaml:"document_id"`
	Text       string   `yaml:"text"`
	Pages      []string `yaml:"pages"`
}

// EnvelopeDecoder reads YAML and JSON envelopes of the form
// {document_id, text} or {document_id, pages: [...]}.
type EnvelopeDecoder struct{}

func NewEnvelopeDecoder() *EnvelopeDecoder {
	return &EnvelopeDecoder{}
}

func (d *EnvelopeDecoder) Name() string {
	return "envelope"
}

func (d *EnvelopeDecoder) CanHandle(src Source) bool {
	switch strings.ToLower(src.Format) {
	case "yaml", "yml", "json":
		return true
	case "":
	default:
		return false
	}
	content := bytes.TrimSpace(src.Content)
	if bytes.HasPrefix(content, []byte("{")) {
		return true
	}
	first, _, _ := bytes.Cut(content, []byte("\n"))
	for _, key := range []string{"document_id:", "text:", "pages:"} {
		if bytes.HasPrefix(first, []byte(key)) {
			return true
		}
	}
	return false
}

func (d *EnvelopeDecoder) Decode(_ context.Context, src Source) (extract.Document, error) {
	var env envelope
	if err := yaml.Unmarshal(src.Content, &env); err != nil {
		return extract.Document{}, errors.Wrap(errors.ErrInput, "unmarshal envelope: "+err.Error())
	}

	parts := make([]string, 0, len(env.Pages)+1)
	if t := strings.TrimSpace(env.Text); t != "" {
		parts = append(parts, t)
	}
	for _, page := range env.Pages {
		if t := strings.TrimSpace(page); t != "" {
			parts = append(parts, t)
		}
	}
	if len(parts) == 0 {
		return extract.Document{}, errors.WithHint(
			errors.NewInputError("envelope %q carries no text", src.ID),
			"set the text field or a non-empty pages list",
		)
	}

	return extract.Document{
		ID:   env.DocumentID,
		Text: strings.Join(parts, "\n\n"),
	}, nil
}
