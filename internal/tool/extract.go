// SPDX-License-Identifier: Apache-2.0

package tool

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/sofproj/sof-mcp/internal/sof"
)

// contentProperties are the input properties shared by every tool.
func contentProperties() map[string]interface{} {
	return map[string]interface{}{
		"content": map[string]interface{}{
			"type":        "string",
			"description": "Text of the Statement of Facts as produced by the PDF/DOC extractor",
		},
		"input_format": map[string]interface{}{
			"type":        "string",
			"description": "Format hint for the content. One of: text, markdown, json, yaml. If omitted, auto-detection is used.",
			"enum":        []string{"text", "markdown", "json", "yaml"},
		},
		"source_id": map[string]interface{}{
			"type":        "string",
			"description": "Optional identifier for the document (file name, URL, etc.) used as the document ID.",
		},
		"date_order": map[string]interface{}{
			"type":        "string",
			"description": "How to read all-numeric dates such as 03/04/2024. Defaults to the server setting.",
			"enum":        []string{"day_first", "month_first"},
		},
	}
}

// MetadataExtractSoFEvents describes the extract_sof_events tool.
var MetadataExtractSoFEvents = &mcp.Tool{
	Name: "extract_sof_events",
	Description: "Extract typed, time-stamped maritime events (arrival, berthing, loading, discharging, " +
		"pilot, departure, weather, other) from Statement of Facts text. " +
		"Each event carries its start and end time, duration, location, remarks, the rule that matched " +
		"and a confidence score. Events at or above 0.75 confidence are usually reliable; lower ones " +
		"and events flagged time_unknown or ambiguous_date should be reviewed by a human.",
	InputSchema: map[string]interface{}{
		"type":       "object",
		"required":   []string{"content"},
		"properties": contentProperties(),
	},
}

// InputExtractSoFEvents is the input for the ExtractSoFEvents tool.
type InputExtractSoFEvents struct {
	Content     string `json:"content"`
	InputFormat string `json:"input_format"`
	SourceID    string `json:"source_id"`
	DateOrder   string `json:"date_order"`
}

// OutputExtractSoFEvents is the output for the ExtractSoFEvents tool.
type OutputExtractSoFEvents struct {
	DocumentID string        `json:"document_id"`
	Events     []sof.Event   `json:"events"`
	Summary    sof.Summary   `json:"summary"`
	Warnings   []sof.Warning `json:"warnings,omitempty"`
	// DecoderUsed is the name of the decoder that read the content.
	DecoderUsed string `json:"decoder_used"`
}

// ExtractSoFEvents runs the extraction pipeline over the provided document.
func (ts *Toolset) ExtractSoFEvents(ctx context.Context, _ *mcp.CallToolRequest, input InputExtractSoFEvents) (*mcp.CallToolResult, OutputExtractSoFEvents, error) {
	doc, err := ts.run(ctx, input.Content, input.InputFormat, input.SourceID, input.DateOrder)
	if err != nil {
		return nil, OutputExtractSoFEvents{}, err
	}

	return nil, OutputExtractSoFEvents{
		DocumentID:  doc.result.DocumentID,
		Events:      doc.result.Events,
		Summary:     doc.result.Summary,
		Warnings:    doc.result.Warnings,
		DecoderUsed: doc.decoderUsed,
	}, nil
}
