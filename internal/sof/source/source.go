// SPDX-License-Identifier: Apache-2.0

// Package source turns raw document bytes handed over by the text
// extraction collaborator into a Document for the extraction pipeline.
package source

import (
	"context"
	"strings"

	"github.com/sofproj/sof-mcp/internal/errors"
	"github.com/sofproj/sof-mcp/internal/sof/extract"
)

// Source describes raw input.
type Source struct {
	// Content is the raw document content.
	Content []byte
	// Format is an optional hint such as "markdown", "json" or "text".
	Format string
	ID     string
}

// Decoder turns a Source into a Document.
type Decoder interface {
	CanHandle(src Source) bool
	Decode(ctx context.Context, src Source) (extract.Document, error)
	Name() string
}

// Reader picks the first registered decoder that can handle a source.
type Reader struct {
	decoders []Decoder
}

// NewReader creates a Reader with the provided decoders, tried in order.
func NewReader(decoders ...Decoder) *Reader {
	return &Reader{decoders: decoders}
}

// DefaultReader registers the envelope, markdown and plain-text decoders.
// Plain text comes last as the catch-all.
func DefaultReader() *Reader {
	return NewReader(
		NewEnvelopeDecoder(),
		NewMarkdownDecoder(),
		NewPlainTextDecoder(),
	)
}

// ReadResult is the output of a successful Read.
type ReadResult struct {
	Document    extract.Document
	DecoderUsed string
}

// Read decodes src with the first decoder that accepts it.
func (r *Reader) Read(ctx context.Context, src Source) (ReadResult, error) {
	dec, err := r.selectDecoder(src)
	if err != nil {
		return ReadResult{}, err
	}

	doc, err := dec.Decode(ctx, src)
	if err != nil {
		return ReadResult{}, errors.Wrapf(err, "decoder %q failed", dec.Name())
	}
	if doc.ID == "" {
		doc.ID = src.ID
	}
	return ReadResult{Document: doc, DecoderUsed: dec.Name()}, nil
}

func (r *Reader) selectDecoder(src Source) (Decoder, error) {
	for _, dec := range r.decoders {
		if dec.CanHandle(src) {
			return dec, nil
		}
	}
	return nil, errors.WithHint(
		errors.Wrapf(errors.ErrUnsupportedFormat, "no decoder for source %q (format hint %q)", src.ID, src.Format),
		"supported formats: "+strings.Join(r.RegisteredDecoders(), ", "),
	)
}

// RegisteredDecoders returns the names of the registered decoders.
func (r *Reader) RegisteredDecoders() []string {
	names := make([]string, len(r.decoders))
	for i, dec := range r.decoders {
		names[i] = dec.Name()
	}
	return names
}
