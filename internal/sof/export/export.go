// SPDX-License-Identifier: Apache-2.0

// Package export renders extraction results as CSV, JSON or YAML with
// optional confidence, remarks and metadata fields.
package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-yaml"

	"github.com/sofproj/sof-mcp/internal/errors"
	"github.com/sofproj/sof-mcp/internal/sof"
)

// Supported formats.
const (
	FormatCSV  = "csv"
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// Options toggle optional export fields.
type Options struct {
	IncludeConfidence bool `json:"include_confidence" mapstructure:"include_confidence"`
	IncludeRemarks    bool `json:"include_remarks" mapstructure:"include_remarks"`
	IncludeMetadata   bool `json:"include_metadata" mapstructure:"include_metadata"`
}

// DefaultOptions include confidence and remarks but no metadata.
func DefaultOptions() Options {
	return Options{IncludeConfidence: true, IncludeRemarks: true}
}

// Record is one exported event. It carries the event wire keys; timing
// and location fields are always present and null when unknown.
type Record struct {
	EventType  string   `json:"event_type" yaml:"event_type"`
	EventName  string   `json:"event_name" yaml:"event_name"`
	StartTime  *string  `json:"start_time" yaml:"start_time"`
	EndTime    *string  `json:"end_time" yaml:"end_time"`
	Duration   *string  `json:"duration" yaml:"duration"`
	Location   *string  `json:"location" yaml:"location"`
	Remarks    *string  `json:"remarks,omitempty" yaml:"remarks,omitempty"`
	Confidence *float64 `json:"confidence,omitempty" yaml:"confidence,omitempty"`
	Method     string   `json:"extraction_method" yaml:"extraction_method"`
	Pattern    string   `json:"pattern,omitempty" yaml:"pattern,omitempty"`
	Flags      []string `json:"flags,omitempty" yaml:"flags,omitempty"`
	Offset     int      `json:"source_offset" yaml:"source_offset"`
}

// Metadata describes the exported document.
type Metadata struct {
	DocumentID           string  `json:"document_id" yaml:"document_id"`
	TotalEvents          int     `json:"total_events" yaml:"total_events"`
	TotalDurationMinutes int     `json:"total_duration_minutes" yaml:"total_duration_minutes"`
	DelayMinutes         int     `json:"delay_minutes" yaml:"delay_minutes"`
	AverageConfidence    float64 `json:"average_confidence" yaml:"average_confidence"`
	Warnings             int     `json:"warnings" yaml:"warnings"`
}

// Document is the JSON and YAML export shape.
type Document struct {
	Events   []Record  `json:"events" yaml:"events"`
	Metadata *Metadata `json:"metadata,omitempty" yaml:"metadata,omitempty"`
}

// Build converts a result into its export shape.
func Build(res sof.Result, opts Options) Document {
	doc := Document{Events: make([]Record, 0, len(res.Events))}
	for _, ev := range res.Events {
		rec := Record{
			EventType: string(ev.Type),
			EventName: ev.Name,
			StartTime: ev.StartTime,
			EndTime:   ev.EndTime,
			Duration:  ev.Duration,
			Location:  ev.Location,
			Method:    string(ev.Method),
			Pattern:   ev.Pattern,
			Flags:     ev.Flags,
			Offset:    ev.SourceOffset,
		}
		if opts.IncludeConfidence {
			c := ev.Confidence
			rec.Confidence = &c
		}
		if opts.IncludeRemarks {
			rec.Remarks = sof.StringPtr(ev.Remarks)
		}
		doc.Events = append(doc.Events, rec)
	}
	if opts.IncludeMetadata {
		doc.Metadata = &Metadata{
			DocumentID:           res.DocumentID,
			TotalEvents:          len(res.Events),
			TotalDurationMinutes: res.Summary.TotalDurationMinutes,
			DelayMinutes:         res.Summary.DelayMinutes,
			AverageConfidence:    res.Summary.AverageConfidence,
			Warnings:             len(res.Warnings),
		}
	}
	return doc
}

// Render writes res in format to w.
func Render(w io.Writer, format string, res sof.Result, opts Options) error {
	switch strings.ToLower(format) {
	case FormatCSV:
		return CSV(w, res, opts)
	case FormatJSON, "":
		return JSON(w, res, opts)
	case FormatYAML, "yml":
		return YAML(w, res, opts)
	}
	return errors.WithHint(
		errors.Wrapf(errors.ErrUnsupportedFormat, "export format %q", format),
		"use csv, json or yaml",
	)
}

// RenderString renders res in format.
func RenderString(format string, res sof.Result, opts Options) (string, error) {
	var buf bytes.Buffer
	if err := Render(&buf, format, res, opts); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// CSV writes one row per event. Confidence is rendered as a percentage and
// the metadata block follows a blank row.
func CSV(w io.Writer, res sof.Result, opts Options) error {
	cw := csv.NewWriter(w)

	header := []string{"Event", "Event Type", "Start Time", "End Time", "Duration", "Location"}
	if opts.IncludeConfidence {
		header = append(header, "Confidence")
	}
	if opts.IncludeRemarks {
		header = append(header, "Remarks")
	}
	rows := [][]string{header}

	for _, ev := range res.Events {
		row := []string{
			ev.Name,
			string(ev.Type),
			sof.Deref(ev.StartTime),
			sof.Deref(ev.EndTime),
			sof.Deref(ev.Duration),
			sof.Deref(ev.Location),
		}
		if opts.IncludeConfidence {
			row = append(row, fmt.Sprintf("%.0f%%", ev.Confidence*100))
		}
		if opts.IncludeRemarks {
			row = append(row, ev.Remarks)
		}
		rows = append(rows, row)
	}

	if opts.IncludeMetadata {
		rows = append(rows,
			[]string{},
			[]string{"Document Metadata:"},
			[]string{"Document ID", res.DocumentID},
			[]string{"Total Events", strconv.Itoa(len(res.Events))},
			[]string{"Total Duration", sof.FormatDuration(minutes(res.Summary.TotalDurationMinutes))},
			[]string{"Weather Delay", sof.FormatDuration(minutes(res.Summary.DelayMinutes))},
			[]string{"Average Confidence", fmt.Sprintf("%.0f%%", res.Summary.AverageConfidence*100)},
		)
	}

	if err := cw.WriteAll(rows); err != nil {
		return errors.Wrap(err, "write csv")
	}
	return nil
}

// JSON writes the export document as indented JSON.
func JSON(w io.Writer, res sof.Result, opts Options) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(Build(res, opts)); err != nil {
		return errors.Wrap(err, "encode json")
	}
	return nil
}

// YAML writes the export document as YAML.
func YAML(w io.Writer, res sof.Result, opts Options) error {
	out, err := yaml.Marshal(Build(res, opts))
	if err != nil {
		return errors.Wrap(err, "encode yaml")
	}
	_, err = w.Write(out)
	return err
}

// ParseJSON reads events back from a JSON export.
func ParseJSON(data []byte) ([]sof.Event, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, errors.Wrap(errors.ErrInput, "decode json export: "+err.Error())
	}

	events := make([]sof.Event, 0, len(doc.Events))
	for i, rec := range doc.Events {
		typ, err := sof.ParseEventType(rec.EventType)
		if err != nil {
			return nil, errors.Wrapf(errors.ErrInput, "event %d: %v", i, err)
		}
		method, err := parseMethod(rec.Method)
		if err != nil {
			return nil, errors.Wrapf(errors.ErrInput, "event %d: %v", i, err)
		}
		ev := sof.Event{
			Type:         typ,
			Name:         rec.EventName,
			StartTime:    rec.StartTime,
			EndTime:      rec.EndTime,
			Duration:     rec.Duration,
			Location:     rec.Location,
			Remarks:      sof.Deref(rec.Remarks),
			Method:       method,
			Pattern:      rec.Pattern,
			Flags:        rec.Flags,
			SourceOffset: rec.Offset,
		}
		if rec.Confidence != nil {
			ev.Confidence = *rec.Confidence
		}
		events = append(events, ev)
	}
	return events, nil
}

func parseMethod(s string) (sof.ExtractionMethod, error) {
	switch m := sof.ExtractionMethod(s); m {
	case "", sof.MethodPatternMatch, sof.MethodNLPContext, sof.MethodCombined:
		return m, nil
	}
	return "", errors.Newf("unknown extraction method %q", s)
}

func minutes(n int) time.Duration {
	return time.Duration(n) * time.Minute
}
