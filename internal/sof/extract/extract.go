// SPDX-License-Identifier: Apache-2.0

// Package extract runs the full event extraction pipeline over one document:
// normalize, scan and resolve time expressions, match catalog rules, then
// assemble, score and summarize events.
package extract

import (
	"context"
	"fmt"
	"runtime"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sofproj/sof-mcp/internal/errors"
	"github.com/sofproj/sof-mcp/internal/metrics"
	"github.com/sofproj/sof-mcp/internal/sof"
	"github.com/sofproj/sof-mcp/internal/sof/assemble"
	"github.com/sofproj/sof-mcp/internal/sof/catalog"
	"github.com/sofproj/sof-mcp/internal/sof/match"
	"github.com/sofproj/sof-mcp/internal/sof/normalize"
	"github.com/sofproj/sof-mcp/internal/sof/timeref"
)

// documentNamespace seeds name-based document IDs.
var documentNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("urn:sof-mcp:document"))

// Document is one text to extract from.
type Document struct {
	// ID overrides the content-derived document ID when set.
	ID   string
	Text string
}

// Pipeline extracts events with a fixed configuration. It holds no
// per-document state and is safe for concurrent use.
type Pipeline struct {
	cfg      Config
	resolver *timeref.Resolver
	matcher  *match.Matcher
	log      *zap.SugaredLogger
	metrics  *metrics.Metrics
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets the pipeline logger.
func WithLogger(l *zap.SugaredLogger) Option {
	return func(p *Pipeline) {
		if l != nil {
			p.log = l
		}
	}
}

// WithMetrics records every extraction on m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(p *Pipeline) { p.metrics = m }
}

// New validates cfg and builds a pipeline. A nil catalog is replaced by the
// built-in one.
func New(cfg Config, opts ...Option) (*Pipeline, error) {
	if cfg.Catalog == nil {
		cat, err := catalog.Default()
		if err != nil {
			return nil, err
		}
		cfg.Catalog = cat
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	order, _ := timeref.ParseDateOrder(string(cfg.DateOrder))
	cfg.DateOrder = order

	p := &Pipeline{
		cfg:      cfg,
		resolver: timeref.NewResolver(order),
		log:      zap.NewNop().Sugar(),
	}
	for _, opt := range opts {
		opt(p)
	}
	p.matcher = match.New(cfg.Catalog, match.Options{
		Window:  cfg.ContextWindow,
		Sweep:   cfg.ContextSweep,
		Weights: cfg.Weights,
	}, p.log)
	return p, nil
}

// Config returns the effective configuration.
func (p *Pipeline) Config() Config {
	return p.cfg
}

// WithDateOrder returns a pipeline that reads all-numeric dates in order
// and otherwise shares p's configuration, logger and metrics. p itself is
// returned when it already uses order.
func (p *Pipeline) WithDateOrder(order timeref.DateOrder) (*Pipeline, error) {
	if order == p.cfg.DateOrder {
		return p, nil
	}
	cfg := p.cfg
	cfg.DateOrder = order
	return New(cfg, WithLogger(p.log), WithMetrics(p.metrics))
}

// Extract runs the pipeline over text with a content-derived document ID.
func Extract(text string, cfg Config) (sof.Result, error) {
	p, err := New(cfg)
	if err != nil {
		return sof.Result{}, err
	}
	return p.Extract(text)
}

// Extract runs the pipeline over text.
func (p *Pipeline) Extract(text string) (sof.Result, error) {
	return p.ExtractDocument(Document{Text: text})
}

// ExtractDocument runs the pipeline over one document. Only blank text is
// an error; a document without recognizable events yields an empty result.
func (p *Pipeline) ExtractDocument(doc Document) (sof.Result, error) {
	started := time.Now()
	res, misses, err := p.run(doc)
	if p.metrics != nil {
		status := metrics.StatusOK
		switch {
		case errors.IsInputError(err):
			status = metrics.StatusInvalid
		case err != nil:
			status = metrics.StatusError
		}
		p.metrics.RecordDocument(status, time.Since(started))
		if err == nil {
			p.metrics.RecordResult(res, misses)
		}
	}
	return res, err
}

func (p *Pipeline) run(doc Document) (sof.Result, int, error) {
	if strings.TrimSpace(doc.Text) == "" {
		return sof.Result{}, 0, errors.WithHint(
			errors.NewInputError("document text is empty"),
			"pass the text extracted from the Statement of Facts",
		)
	}

	id := doc.ID
	if id == "" {
		id = DocumentID(doc.Text)
	}
	log := p.log.With("document_id", id)

	text := normalize.Normalize(doc.Text)
	var warnings []sof.Warning
	if text.HasIssue(normalize.IssueDegraded) {
		warnings = append(warnings, sof.Warning{
			Kind:    sof.WarnDegradedText,
			Message: "normalization left no text; the raw text was used",
		})
	}
	if text.HasIssue(normalize.IssueLowQuality) {
		warnings = append(warnings, sof.Warning{
			Kind:    sof.WarnLowQualityText,
			Message: "a large share of the text was control or invisible characters",
		})
	}

	tokens := timeref.Scan(text.Normalized)
	times := p.resolver.ResolveAll(tokens)

	misses := 0
	for i, ts := range times {
		offset := text.Original(tokens[i].Start)
		switch {
		case ts.Kind == timeref.Unresolved:
			misses++
			log.Debugw("Unresolved time expression", "raw", ts.Raw, "offset", offset)
		case ts.Ambiguous:
			warnings = append(warnings, sof.Warning{
				Kind:    sof.WarnAmbiguousDate,
				Message: fmt.Sprintf("date %q read as %s (%s)", ts.Raw, ts.String(), p.cfg.DateOrder),
				Offset:  offset,
			})
		}
	}

	matched := p.matcher.Match(text, tokens)
	warnings = append(warnings, matched.Warnings...)

	events := assemble.Assemble(assemble.Input{
		Text:    text,
		Tokens:  tokens,
		Times:   times,
		Matches: matched.Matches,
	}, assemble.Options{
		MergeOverlap:     p.cfg.MergeOverlap,
		PairingProximity: p.cfg.PairingProximity,
		Weights:          p.cfg.Weights,
	})
	if events == nil {
		events = []sof.Event{}
	}

	log.Debugw("Extracted events",
		"events", len(events),
		"matches", len(matched.Matches),
		"time_expressions", len(tokens),
		"resolution_misses", misses,
	)

	return sof.Result{
		DocumentID: id,
		Events:     events,
		Summary:    assemble.Summarize(events),
		Warnings:   warnings,
	}, misses, nil
}

// DocumentID derives a stable ID from document text.
func DocumentID(text string) string {
	return uuid.NewSHA1(documentNamespace, []byte(text)).String()
}

// BatchResult is the outcome of one document in a batch.
type BatchResult struct {
	ID     string
	Result sof.Result
	Err    error
}

// ExtractBatch extracts docs with up to workers goroutines. Per-document
// failures are reported in the matching BatchResult; the returned error is
// set only when ctx is done before every document ran. Results keep the
// order of docs.
func (p *Pipeline) ExtractBatch(ctx context.Context, docs []Document, workers int) ([]BatchResult, error) {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	out := make([]BatchResult, len(docs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, doc := range docs {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			res, err := p.ExtractDocument(doc)
			id := doc.ID
			if id == "" {
				id = res.DocumentID
			}
			out[i] = BatchResult{ID: id, Result: res, Err: err}
			if err != nil {
				p.log.Warnw("Document extraction failed", "index", i, "document_id", id, "error", err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return out, err
	}
	return out, ctx.Err()
}
