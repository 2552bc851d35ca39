// SPDX-License-Identifier: Apache-2.0

package tool

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/sofproj/sof-mcp/internal/errors"
	"github.com/sofproj/sof-mcp/internal/sof"
	"github.com/sofproj/sof-mcp/internal/sof/query"
)

// DefaultReviewThreshold is the confidence below which events are listed
// for human review.
const DefaultReviewThreshold = 0.75

// MetadataQuerySoFEvents describes the query_sof_events tool.
var MetadataQuerySoFEvents = &mcp.Tool{
	Name: "query_sof_events",
	Description: "Answer laytime questions about a Statement of Facts: port time, loading and discharging " +
		"time, weather delays, waiting time and operational time in minutes, plus the events of one type, " +
		"the events below a confidence threshold and the events whose time could not be resolved.",
	InputSchema: map[string]interface{}{
		"type":     "object",
		"required": []string{"content"},
		"properties": withProperties(contentProperties(), map[string]interface{}{
			"event_type": map[string]interface{}{
				"type":        "string",
				"description": "Restrict the listed events to one type.",
				"enum":        []string{"arrival", "berthing", "loading", "discharging", "pilot", "departure", "weather", "other"},
			},
			"low_confidence_threshold": map[string]interface{}{
				"type":        "number",
				"description": "Events below this confidence are listed for review. Defaults to 0.75.",
				"minimum":     0,
				"maximum":     1,
			},
		}),
	},
}

// InputQuerySoFEvents is the input for the QuerySoFEvents tool.
type InputQuerySoFEvents struct {
	Content                string   `json:"content"`
	InputFormat            string   `json:"input_format"`
	SourceID               string   `json:"source_id"`
	DateOrder              string   `json:"date_order"`
	EventType              string   `json:"event_type"`
	LowConfidenceThreshold *float64 `json:"low_confidence_threshold"`
}

// OutputQuerySoFEvents is the output for the QuerySoFEvents tool.
type OutputQuerySoFEvents struct {
	DocumentID    string        `json:"document_id"`
	Laytime       query.Laytime `json:"laytime"`
	Events        []sof.Event   `json:"events"`
	LowConfidence []sof.Event   `json:"low_confidence"`
	TimeUnknown   []sof.Event   `json:"time_unknown"`

	// ConfidenceLevels counts all events per level: high, medium, low, very_low.
	ConfidenceLevels map[string]int `json:"confidence_levels"`
}

// QuerySoFEvents extracts events and returns laytime figures and filtered
// event lists.
func (ts *Toolset) QuerySoFEvents(ctx context.Context, _ *mcp.CallToolRequest, input InputQuerySoFEvents) (*mcp.CallToolResult, OutputQuerySoFEvents, error) {
	threshold := DefaultReviewThreshold
	if input.LowConfidenceThreshold != nil {
		threshold = *input.LowConfidenceThreshold
	}
	if threshold < 0 || threshold > 1 {
		return nil, OutputQuerySoFEvents{}, errors.NewInputError("low_confidence_threshold must be in [0, 1], got %g", threshold)
	}
	var eventType sof.EventType
	if input.EventType != "" {
		t, err := sof.ParseEventType(input.EventType)
		if err != nil {
			return nil, OutputQuerySoFEvents{}, errors.Wrap(errors.ErrInput, err.Error())
		}
		eventType = t
	}

	doc, err := ts.run(ctx, input.Content, input.InputFormat, input.SourceID, input.DateOrder)
	if err != nil {
		return nil, OutputQuerySoFEvents{}, err
	}
	res := doc.result

	events := res.Events
	if eventType != "" {
		events = query.ByType(events, eventType)
	}
	return nil, OutputQuerySoFEvents{
		DocumentID:    res.DocumentID,
		Laytime:       query.ComputeLaytime(res),
		Events:        nonNil(events),
		LowConfidence: nonNil(query.LowConfidence(res.Events, threshold)),
		TimeUnknown:   nonNil(query.TimeUnknown(res.Events)),

		ConfidenceLevels: query.ConfidenceLevels(res.Events),
	}, nil
}

func nonNil(events []sof.Event) []sof.Event {
	if events == nil {
		return []sof.Event{}
	}
	return events
}
