// SPDX-License-Identifier: Apache-2.0

package tool

import (
	"context"

	"go.uber.org/zap"

	"github.com/sofproj/sof-mcp/internal/errors"
	"github.com/sofproj/sof-mcp/internal/sof"
	"github.com/sofproj/sof-mcp/internal/sof/export"
	"github.com/sofproj/sof-mcp/internal/sof/extract"
	"github.com/sofproj/sof-mcp/internal/sof/source"
	"github.com/sofproj/sof-mcp/internal/sof/timeref"
)

// Toolset holds the shared state behind the MCP tools. It is safe for
// concurrent use.
type Toolset struct {
	pipeline *extract.Pipeline
	reader   *source.Reader
	export   export.Options
	log      *zap.SugaredLogger
}

// NewToolset creates a toolset around pipeline. A nil log discards output.
func NewToolset(pipeline *extract.Pipeline, exportOpts export.Options, log *zap.SugaredLogger) *Toolset {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Toolset{
		pipeline: pipeline,
		reader:   source.DefaultReader(),
		export:   exportOpts,
		log:      log,
	}
}

// document is a decoded tool input.
type document struct {
	result      sof.Result
	decoderUsed string
}

// run decodes content and extracts its events. A date order that differs
// from the configured one gets a derived pipeline for this call.
func (ts *Toolset) run(ctx context.Context, content, format, sourceID, dateOrder string) (document, error) {
	if content == "" {
		return document{}, errors.NewInputError("content is required")
	}

	read, err := ts.reader.Read(ctx, source.Source{
		Content: []byte(content),
		Format:  format,
		ID:      sourceID,
	})
	if err != nil {
		return document{}, err
	}

	p := ts.pipeline
	if dateOrder != "" {
		order, err := timeref.ParseDateOrder(dateOrder)
		if err != nil {
			return document{}, errors.Wrap(errors.ErrInvalidConfig, err.Error())
		}
		if p, err = p.WithDateOrder(order); err != nil {
			return document{}, err
		}
	}

	res, err := p.ExtractDocument(read.Document)
	if err != nil {
		return document{}, err
	}
	ts.log.Infow("Extracted Statement of Facts",
		"document_id", res.DocumentID,
		"decoder", read.DecoderUsed,
		"events", len(res.Events),
		"warnings", len(res.Warnings),
	)
	return document{result: res, decoderUsed: read.DecoderUsed}, nil
}
