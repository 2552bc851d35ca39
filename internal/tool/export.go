// SPDX-License-Identifier: Apache-2.0

package tool

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/sofproj/sof-mcp/internal/sof/export"
)

// MetadataExportSoFEvents describes the export_sof_events tool.
var MetadataExportSoFEvents = &mcp.Tool{
	Name: "export_sof_events",
	Description: "Extract events from Statement of Facts text and render them as CSV, JSON or YAML. " +
		"Confidence (as a percentage in CSV), remarks and a document metadata block can be toggled.",
	InputSchema: map[string]interface{}{
		"type":     "object",
		"required": []string{"content"},
		"properties": withProperties(contentProperties(), map[string]interface{}{
			"format": map[string]interface{}{
				"type":        "string",
				"description": "Output format. Defaults to csv.",
				"enum":        []string{"csv", "json", "yaml"},
			},
			"include_confidence": map[string]interface{}{"type": "boolean"},
			"include_remarks":    map[string]interface{}{"type": "boolean"},
			"include_metadata":   map[string]interface{}{"type": "boolean"},
		}),
	},
}

// InputExportSoFEvents is the input for the ExportSoFEvents tool. Unset
// include flags fall back to the server settings.
type InputExportSoFEvents struct {
	Content           string `json:"content"`
	InputFormat       string `json:"input_format"`
	SourceID          string `json:"source_id"`
	DateOrder         string `json:"date_order"`
	Format            string `json:"format"`
	IncludeConfidence *bool  `json:"include_confidence"`
	IncludeRemarks    *bool  `json:"include_remarks"`
	IncludeMetadata   *bool  `json:"include_metadata"`
}

// OutputExportSoFEvents is the output for the ExportSoFEvents tool.
type OutputExportSoFEvents struct {
	DocumentID string `json:"document_id"`
	Format     string `json:"format"`
	Content    string `json:"content"`
	EventCount int    `json:"event_count"`
}

// ExportSoFEvents extracts events and renders them in the requested format.
func (ts *Toolset) ExportSoFEvents(ctx context.Context, _ *mcp.CallToolRequest, input InputExportSoFEvents) (*mcp.CallToolResult, OutputExportSoFEvents, error) {
	doc, err := ts.run(ctx, input.Content, input.InputFormat, input.SourceID, input.DateOrder)
	if err != nil {
		return nil, OutputExportSoFEvents{}, err
	}

	opts := ts.export
	if input.IncludeConfidence != nil {
		opts.IncludeConfidence = *input.IncludeConfidence
	}
	if input.IncludeRemarks != nil {
		opts.IncludeRemarks = *input.IncludeRemarks
	}
	if input.IncludeMetadata != nil {
		opts.IncludeMetadata = *input.IncludeMetadata
	}
	format := input.Format
	if format == "" {
		format = export.FormatCSV
	}

	rendered, err := export.RenderString(format, doc.result, opts)
	if err != nil {
		return nil, OutputExportSoFEvents{}, err
	}
	return nil, OutputExportSoFEvents{
		DocumentID: doc.result.DocumentID,
		Format:     format,
		Content:    rendered,
		EventCount: len(doc.result.Events),
	}, nil
}

func withProperties(base, extra map[string]interface{}) map[string]interface{} {
	for k, v := range extra {
		base[k] = v
	}
	return base
}
