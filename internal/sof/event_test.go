// SPDX-License-Identifier: Apache-2.0

package sof_test

import (
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sofproj/sof-mcp/internal/sof"
)

func TestEventType_Valid(t *testing.T) {
	for _, et := range sof.AllEventTypes() {
		assert.True(t, et.Valid(), et)
	}
	assert.False(t, sof.EventType("bunkering").Valid())
	assert.False(t, sof.EventType("").Valid())
}

func TestParseEventType(t *testing.T) {
	et, err := sof.ParseEventType("  Loading ")
	require.NoError(t, err)
	assert.Equal(t, sof.EventLoading, et)

	_, err = sof.ParseEventType("bunkering")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown event type "bunkering"`)
	assert.Contains(t, fmt.Sprintf("%+v", err), "ParseEventType")
}

func TestEventType_Classification(t *testing.T) {
	assert.True(t, sof.EventLoading.HasDuration())
	assert.True(t, sof.EventWeather.HasDuration())
	assert.False(t, sof.EventPilot.HasDuration())
	assert.True(t, sof.EventWeather.IsDelay())
	assert.False(t, sof.EventLoading.IsDelay())
	assert.Equal(t, "Loading Operations", sof.EventLoading.DisplayName())
}

func TestEvent_WireShape(t *testing.T) {
	ev := sof.Event{
		Type:       sof.EventPilot,
		Name:       "Pilot On Board",
		StartTime:  sof.StringPtr("2024-03-14T08:30"),
		Remarks:    "pilot boarded from launch",
		Confidence: 0.95,
		Method:     sof.MethodPatternMatch,
	}
	raw, err := json.Marshal(ev)
	require.NoError(t, err)

	var wire map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &wire))
	for _, key := range []string{"event_type", "event_name", "start_time", "end_time", "duration", "location", "remarks", "confidence", "extraction_method"} {
		assert.Contains(t, wire, key)
	}
	assert.Nil(t, wire["end_time"])
	assert.Nil(t, wire["location"])
	assert.Equal(t, "pattern_match", wire["extraction_method"])
}

func TestEvent_Flags(t *testing.T) {
	ev := sof.Event{Flags: []string{sof.FlagTimeUnknown}}
	assert.True(t, ev.TimeUnknown())
	assert.False(t, ev.HasFlag(sof.FlagAmbiguousDate))
}

func TestStringPtr(t *testing.T) {
	assert.Nil(t, sof.StringPtr(""))
	assert.Equal(t, "x", sof.Deref(sof.StringPtr("x")))
	assert.Equal(t, "", sof.Deref(nil))
}

func TestEmptySummary(t *testing.T) {
	s := sof.EmptySummary()
	assert.Len(t, s.EventCounts, len(sof.AllEventTypes()))
	for _, n := range s.EventCounts {
		assert.Zero(t, n)
	}
	assert.Zero(t, s.TotalEvents)
	assert.Nil(t, s.FirstEventTime)
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		in   time.Duration
		want string
	}{
		{8 * time.Hour, "8h"},
		{90 * time.Minute, "1h 30m"},
		{45 * time.Minute, "45m"},
		{27*time.Hour + 20*time.Minute, "1d 3h 20m"},
		{0, "0m"},
		{-time.Hour, "0m"},
		{30 * time.Second, "0m"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, sof.FormatDuration(tt.in))
		})
	}
}

func TestParseDuration(t *testing.T) {
	tests := []struct {
		in      string
		want    time.Duration
		wantErr bool
	}{
		{in: "8h", want: 8 * time.Hour},
		{in: "1d 3h 20m", want: 27*time.Hour + 20*time.Minute},
		{in: "1:30:00", want: 90 * time.Minute},
		{in: "2:05", want: 2*time.Hour + 5*time.Minute},
		{in: "", wantErr: true},
		{in: "soon", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := sof.ParseDuration(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
