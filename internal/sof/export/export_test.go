// SPDX-License-Identifier: Apache-2.0

package export_test

import (
	"bytes"
	"testing"

	"github.com/goccy/go-yaml"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sofproj/sof-mcp/internal/errors"
	"github.com/sofproj/sof-mcp/internal/sof"
	"github.com/sofproj/sof-mcp/internal/sof/export"
	"github.com/sofproj/sof-mcp/internal/sof/extract"
)

func fixtureResult() sof.Result {
	return sof.Result{
		DocumentID: "doc-1",
		Events: []sof.Event{
			{
				Type:         sof.EventLoading,
				Name:         "Loading Operations",
				StartTime:    sof.StringPtr("2024-03-14T13:00"),
				EndTime:      sof.StringPtr("2024-03-14T22:00"),
				Duration:     sof.StringPtr("9h"),
				Location:     sof.StringPtr("Berth No. 4"),
				Confidence:   0.97,
				Remarks:      "cargo, hold 3",
				Method:       sof.MethodCombined,
				Pattern:      "loading_commenced+loading_completed",
				SourceOffset: 12,
			},
			{
				Type:         sof.EventPilot,
				Name:         "Pilot On Board",
				StartTime:    sof.StringPtr("2024-03-14T08:30"),
				Confidence:   1,
				Method:       sof.MethodPatternMatch,
				Pattern:      "pilot_on_board",
				Flags:        []string{sof.FlagAmbiguousDate},
				SourceOffset: 80,
			},
		},
		Summary: sof.Summary{
			TotalEvents:          2,
			TotalDurationMinutes: 540,
			AverageConfidence:    0.99,
		},
	}
}

// ---------------------------------------------------------------------------
// CSV
// ---------------------------------------------------------------------------

func TestCSV(t *testing.T) {
	tests := []struct {
		name string
		opts export.Options
		want string
	}{
		{
			name: "default columns",
			opts: export.DefaultOptions(),
			want: "Event,Event Type,Start Time,End Time,Duration,Location,Confidence,Remarks\n" +
				"Loading Operations,loading,2024-03-14T13:00,2024-03-14T22:00,9h,Berth No. 4,97%,\"cargo, hold 3\"\n" +
				"Pilot On Board,pilot,2024-03-14T08:30,,,,100%,\n",
		},
		{
			name: "bare columns",
			opts: export.Options{},
			want: "Event,Event Type,Start Time,End Time,Duration,Location\n" +
				"Loading Operations,loading,2024-03-14T13:00,2024-03-14T22:00,9h,Berth No. 4\n" +
				"Pilot On Board,pilot,2024-03-14T08:30,,,\n",
		},
		{
			name: "metadata block",
			opts: export.Options{IncludeMetadata: true},
			want: "Event,Event Type,Start Time,End Time,Duration,Location\n" +
				"Loading Operations,loading,2024-03-14T13:00,2024-03-14T22:00,9h,Berth No. 4\n" +
				"Pilot On Board,pilot,2024-03-14T08:30,,,\n" +
				"\n" +
				"Document Metadata:\n" +
				"Document ID,doc-1\n" +
				"Total Events,2\n" +
				"Total Duration,9h\n" +
				"Weather Delay,0m\n" +
				"Average Confidence,99%\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, export.CSV(&buf, fixtureResult(), tt.opts))
			assert.Equal(t, tt.want, buf.String())
		})
	}
}

// ---------------------------------------------------------------------------
// JSON and YAML
// ---------------------------------------------------------------------------

func TestJSON_RoundTrip(t *testing.T) {
	res := fixtureResult()
	out, err := export.RenderString(export.FormatJSON, res, export.DefaultOptions())
	require.NoError(t, err)

	events, err := export.ParseJSON([]byte(out))
	require.NoError(t, err)
	assert.Equal(t, res.Events, events)
}

func TestJSON_WireShape(t *testing.T) {
	out, err := export.RenderString(export.FormatJSON, fixtureResult(), export.DefaultOptions())
	require.NoError(t, err)
	assert.Contains(t, out, `"event_name": "Pilot On Board"`)
	assert.Contains(t, out, `"extraction_method": "pattern_match"`)
	assert.Contains(t, out, `"end_time": null`)
	assert.Contains(t, out, `"duration": null`)
	assert.Contains(t, out, `"location": null`)
	assert.NotContains(t, out, `"event":`)
}

func TestJSON_RoundTripExtracted(t *testing.T) {
	res, err := extract.Extract("Pilot on board 0830 hrs 14/03/2024\n"+
		"Loading commenced 1000 hrs 14/03/2024\n"+
		"Loading completed 1800 hrs 14/03/2024\n"+
		"Surveyor attended 1900\n"+
		"Vessel sailed", extract.DefaultConfig())
	require.NoError(t, err)
	require.NotEmpty(t, res.Events)

	out, err := export.RenderString(export.FormatJSON, res, export.DefaultOptions())
	require.NoError(t, err)

	events, err := export.ParseJSON([]byte(out))
	require.NoError(t, err)
	assert.Equal(t, res.Events, events)
	for _, ev := range events {
		assert.NotEmpty(t, ev.Method)
	}
}

func TestJSON_Toggles(t *testing.T) {
	out, err := export.RenderString(export.FormatJSON, fixtureResult(), export.Options{})
	require.NoError(t, err)
	assert.NotContains(t, out, `"confidence"`)
	assert.NotContains(t, out, `"remarks"`)
	assert.NotContains(t, out, `"metadata"`)

	out, err = export.RenderString(export.FormatJSON, fixtureResult(), export.Options{IncludeMetadata: true})
	require.NoError(t, err)
	assert.Contains(t, out, `"document_id": "doc-1"`)
	assert.Contains(t, out, `"total_events": 2`)
}

func TestYAML(t *testing.T) {
	out, err := export.RenderString("yml", fixtureResult(), export.DefaultOptions())
	require.NoError(t, err)
	assert.Contains(t, out, "event_type: loading")

	var doc export.Document
	require.NoError(t, yaml.Unmarshal([]byte(out), &doc))
	require.Len(t, doc.Events, 2)
	assert.Equal(t, "Pilot On Board", doc.Events[1].EventName)
	assert.Equal(t, "pattern_match", doc.Events[1].Method)
	assert.Nil(t, doc.Events[1].EndTime)
	require.NotNil(t, doc.Events[0].Confidence)
	assert.InDelta(t, 0.97, *doc.Events[0].Confidence, 1e-9)
}

func TestRender_UnsupportedFormat(t *testing.T) {
	_, err := export.RenderString("xlsx", fixtureResult(), export.DefaultOptions())
	require.Error(t, err)
	assert.True(t, errors.IsUnsupportedFormatError(err))
}

func TestParseJSON_Errors(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{name: "malformed", data: `{"events": [`},
		{name: "unknown event type", data: `{"events": [{"event_name": "x", "event_type": "bunkering"}]}`},
		{name: "unknown method", data: `{"events": [{"event_name": "x", "event_type": "pilot", "extraction_method": "ml"}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := export.ParseJSON([]byte(tt.data))
			require.Error(t, err)
			assert.True(t, errors.IsInputError(err))
		})
	}
}

func TestBuild_EmptyResult(t *testing.T) {
	doc := export.Build(sof.Result{}, export.DefaultOptions())
	assert.NotNil(t, doc.Events)
	assert.Empty(t, doc.Events)
}
