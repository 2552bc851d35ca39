// SPDX-License-Identifier: Apache-2.0

package tool

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sofproj/sof-mcp/internal/errors"
	"github.com/sofproj/sof-mcp/internal/metrics"
	"github.com/sofproj/sof-mcp/internal/sof"
	"github.com/sofproj/sof-mcp/internal/sof/export"
	"github.com/sofproj/sof-mcp/internal/sof/extract"
)

const portCall = `14/03/2024
EOSP 0600 hrs
Pilot on board 0830 hrs
All fast 1130 hrs
Loading commenced 1300 hrs
Loading stopped due to rain 1500 hrs
Loading resumed 1630 hrs
Loading completed 2200 hrs
Vessel sailed 2330 hrs`

func newToolset(t *testing.T) *Toolset {
	t.Helper()
	p, err := extract.New(extract.DefaultConfig())
	require.NoError(t, err)
	return NewToolset(p, export.DefaultOptions(), nil)
}

func boolPtr(b bool) *bool { return &b }

// ---------------------------------------------------------------------------
// extract_sof_events
// ---------------------------------------------------------------------------

func TestExtractSoFEvents(t *testing.T) {
	ctx := context.Background()
	req := &mcp.CallToolRequest{}
	ts := newToolset(t)

	tests := []struct {
		name           string
		input          InputExtractSoFEvents
		wantErr        func(error) bool
		validateOutput func(t *testing.T, output OutputExtractSoFEvents)
	}{
		{
			name:    "empty content returns error",
			input:   InputExtractSoFEvents{Content: ""},
			wantErr: errors.IsInputError,
		},
		{
			name:  "plain text port call",
			input: InputExtractSoFEvents{Content: portCall, SourceID: "mv-star.txt"},
			validateOutput: func(t *testing.T, output OutputExtractSoFEvents) {
				assert.Equal(t, "text", output.DecoderUsed)
				assert.Equal(t, "mv-star.txt", output.DocumentID)
				assert.Len(t, output.Events, 6)
				assert.Equal(t, 6, output.Summary.TotalEvents)
				for _, ev := range output.Events {
					assert.NotEmpty(t, ev.Name, "event must have a name")
					assert.True(t, ev.Type.Valid())
					assert.GreaterOrEqual(t, ev.Confidence, 0.0)
					assert.LessOrEqual(t, ev.Confidence, 1.0)
				}
			},
		},
		{
			name: "markdown table",
			input: InputExtractSoFEvents{
				Content:     "# Statement of Facts\n\n| Date | Time | Event |\n|---|---|---|\n| 14/03/2024 | 0830 | Pilot on board |",
				InputFormat: "markdown",
			},
			validateOutput: func(t *testing.T, output OutputExtractSoFEvents) {
				assert.Equal(t, "markdown", output.DecoderUsed)
				require.Len(t, output.Events, 1)
				assert.Equal(t, sof.EventPilot, output.Events[0].Type)
				assert.Equal(t, "2024-03-14T08:30", sof.Deref(output.Events[0].StartTime))
			},
		},
		{
			name:  "date order override",
			input: InputExtractSoFEvents{Content: "Pilot on board 03/04/2024 0830", DateOrder: "month_first"},
			validateOutput: func(t *testing.T, output OutputExtractSoFEvents) {
				require.Len(t, output.Events, 1)
				assert.Equal(t, "2024-03-04T08:30", sof.Deref(output.Events[0].StartTime))
				assert.NotEmpty(t, output.Warnings)
			},
		},
		{
			name:    "invalid date order",
			input:   InputExtractSoFEvents{Content: portCall, DateOrder: "year_first"},
			wantErr: errors.IsConfigError,
		},
		{
			name:    "unsupported format returns error",
			input:   InputExtractSoFEvents{Content: "%PDF-1.7", InputFormat: "pdf"},
			wantErr: errors.IsUnsupportedFormatError,
		},
		{
			name:  "text without events is not an error",
			input: InputExtractSoFEvents{Content: "Master's compliments"},
			validateOutput: func(t *testing.T, output OutputExtractSoFEvents) {
				assert.Empty(t, output.Events)
				assert.Equal(t, 0, output.Summary.TotalEvents)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, output, err := ts.ExtractSoFEvents(ctx, req, tt.input)

			if tt.wantErr != nil {
				require.Error(t, err)
				assert.True(t, tt.wantErr(err), "unexpected error class: %v", err)
				return
			}

			require.NoError(t, err)
			if tt.validateOutput != nil {
				tt.validateOutput(t, output)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// export_sof_events
// ---------------------------------------------------------------------------

func TestExportSoFEvents(t *testing.T) {
	ctx := context.Background()
	ts := newToolset(t)

	_, out, err := ts.ExportSoFEvents(ctx, nil, InputExportSoFEvents{Content: portCall})
	require.NoError(t, err)
	assert.Equal(t, "csv", out.Format)
	assert.Equal(t, 6, out.EventCount)
	assert.Contains(t, out.Content, "Event,Event Type,Start Time,End Time,Duration,Location,Confidence,Remarks\n")
	assert.Contains(t, out.Content, "Loading Operations,loading,2024-03-14T13:00,2024-03-14T22:00,9h,")

	_, out, err = ts.ExportSoFEvents(ctx, nil, InputExportSoFEvents{
		Content:           portCall,
		Format:            "json",
		IncludeConfidence: boolPtr(false),
		IncludeMetadata:   boolPtr(true),
	})
	require.NoError(t, err)
	events, err := export.ParseJSON([]byte(out.Content))
	require.NoError(t, err)
	assert.Len(t, events, 6)
	assert.NotContains(t, out.Content, `"confidence"`)
	assert.Contains(t, out.Content, `"metadata"`)

	_, _, err = ts.ExportSoFEvents(ctx, nil, InputExportSoFEvents{Content: portCall, Format: "pdf"})
	require.Error(t, err)
	assert.True(t, errors.IsUnsupportedFormatError(err))
}

// ---------------------------------------------------------------------------
// query_sof_events
// ---------------------------------------------------------------------------

func TestQuerySoFEvents(t *testing.T) {
	ctx := context.Background()
	ts := newToolset(t)

	_, out, err := ts.QuerySoFEvents(ctx, nil, InputQuerySoFEvents{Content: portCall, EventType: "weather"})
	require.NoError(t, err)
	assert.Equal(t, 540, out.Laytime.LoadingMinutes)
	assert.Equal(t, 90, out.Laytime.WeatherDelayMinutes)
	assert.Equal(t, 1050, out.Laytime.PortMinutes)
	assert.Equal(t, 1, out.Laytime.WeatherDelays)
	require.Len(t, out.Events, 1)
	assert.Equal(t, sof.EventWeather, out.Events[0].Type)
	assert.NotNil(t, out.TimeUnknown)
	assert.Empty(t, out.TimeUnknown)
	total := 0
	for _, n := range out.ConfidenceLevels {
		total += n
	}
	assert.Equal(t, 6, total)

	threshold := 0.0
	_, out, err = ts.QuerySoFEvents(ctx, nil, InputQuerySoFEvents{Content: portCall, LowConfidenceThreshold: &threshold})
	require.NoError(t, err)
	assert.Len(t, out.Events, 6)
	assert.NotNil(t, out.LowConfidence)
	assert.Empty(t, out.LowConfidence)

	tests := []struct {
		name  string
		input InputQuerySoFEvents
	}{
		{name: "unknown event type", input: InputQuerySoFEvents{Content: portCall, EventType: "bunkering"}},
		{name: "threshold out of range", input: InputQuerySoFEvents{Content: portCall, LowConfidenceThreshold: func() *float64 { f := 1.5; return &f }()}},
		{name: "empty content", input: InputQuerySoFEvents{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := ts.QuerySoFEvents(ctx, nil, tt.input)
			require.Error(t, err)
			assert.True(t, errors.IsInputError(err))
		})
	}
}

func TestDateOrderOverrideRecordsMetrics(t *testing.T) {
	m := metrics.New(prometheus.NewRegistry())
	p, err := extract.New(extract.DefaultConfig(), extract.WithMetrics(m))
	require.NoError(t, err)
	ts := NewToolset(p, export.DefaultOptions(), nil)

	_, out, err := ts.ExtractSoFEvents(context.Background(), nil, InputExtractSoFEvents{
		Content:   "Pilot on board 03/04/2024 0830",
		DateOrder: "month_first",
	})
	require.NoError(t, err)
	require.Len(t, out.Events, 1)
	assert.Equal(t, "2024-03-04T08:30", sof.Deref(out.Events[0].StartTime))

	assert.InDelta(t, 1, testutil.ToFloat64(m.DocumentsTotal.WithLabelValues(metrics.StatusOK)), 1e-9)
	assert.InDelta(t, 1, testutil.ToFloat64(m.EventsTotal.WithLabelValues(string(sof.EventPilot))), 1e-9)
}

// ---------------------------------------------------------------------------
// Server
// ---------------------------------------------------------------------------

func TestNewServer_ListAndCall(t *testing.T) {
	ctx := context.Background()
	server := NewServer("test", newToolset(t))

	serverTransport, clientTransport := mcp.NewInMemoryTransports()
	serverSession, err := server.Connect(ctx, serverTransport, nil)
	require.NoError(t, err)
	defer serverSession.Close()

	client := mcp.NewClient(&mcp.Implementation{Name: "test-client", Version: "test"}, nil)
	session, err := client.Connect(ctx, clientTransport, nil)
	require.NoError(t, err)
	defer session.Close()

	tools, err := session.ListTools(ctx, nil)
	require.NoError(t, err)
	var names []string
	for _, tl := range tools.Tools {
		names = append(names, tl.Name)
	}
	assert.ElementsMatch(t, []string{"extract_sof_events", "export_sof_events", "query_sof_events"}, names)

	res, err := session.CallTool(ctx, &mcp.CallToolParams{
		Name:      "extract_sof_events",
		Arguments: map[string]any{"content": "Pilot on board 0830 hrs 14/03/2024"},
	})
	require.NoError(t, err)
	require.False(t, res.IsError)

	raw, err := json.Marshal(res.StructuredContent)
	require.NoError(t, err)
	var out OutputExtractSoFEvents
	require.NoError(t, json.Unmarshal(raw, &out))
	require.Len(t, out.Events, 1)
	assert.Equal(t, "2024-03-14T08:30", sof.Deref(out.Events[0].StartTime))
}
