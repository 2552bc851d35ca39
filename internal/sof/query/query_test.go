// SPDX-License-Identifier: Apache-2.0

package query_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/sofproj/sof-mcp/internal/sof"
	"github.com/sofproj/sof-mcp/internal/sof/query"
)

func fixtureEvents() []sof.Event {
	return []sof.Event{
		{Type: sof.EventPilot, Name: "Pilot On Board", StartTime: sof.StringPtr("2024-03-14T08:30"), Confidence: 1},
		{Type: sof.EventLoading, Name: "Loading Operations", Duration: sof.StringPtr("9h"), Confidence: 0.97},
		{Type: sof.EventWeather, Name: "Weather Delay", Duration: sof.StringPtr("1h 30m"), Confidence: 0.9},
		{Type: sof.EventLoading, Name: "Loading Commenced", Confidence: 0.6},
		{Type: sof.EventOther, Name: "Customs", Flags: []string{sof.FlagTimeUnknown}, Confidence: 0.45},
	}
}

func TestByType(t *testing.T) {
	got := query.ByType(fixtureEvents(), sof.EventLoading)
	assert.Len(t, got, 2)
	assert.Equal(t, "Loading Operations", got[0].Name)
	assert.Empty(t, query.ByType(fixtureEvents(), sof.EventDischarging))
}

func TestTotalDuration(t *testing.T) {
	assert.Equal(t, 9*time.Hour, query.TotalDuration(fixtureEvents(), sof.EventLoading))
	assert.Equal(t, 90*time.Minute, query.TotalDuration(fixtureEvents(), sof.EventWeather))
	assert.Zero(t, query.TotalDuration(fixtureEvents(), sof.EventPilot))
}

func TestLowConfidence(t *testing.T) {
	tests := []struct {
		name      string
		threshold float64
		want      []string
	}{
		{name: "default review band", threshold: 0.75, want: []string{"Loading Commenced", "Customs"}},
		{name: "strict", threshold: 0.5, want: []string{"Customs"}},
		{name: "zero", threshold: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var names []string
			for _, ev := range query.LowConfidence(fixtureEvents(), tt.threshold) {
				names = append(names, ev.Name)
			}
			assert.Equal(t, tt.want, names)
		})
	}
}

func TestTimeUnknown(t *testing.T) {
	got := query.TimeUnknown(fixtureEvents())
	assert.Len(t, got, 1)
	assert.Equal(t, "Customs", got[0].Name)
}

func TestComputeLaytime(t *testing.T) {
	res := sof.Result{
		Events:  fixtureEvents(),
		Summary: sof.Summary{TotalSpanMinutes: 900, OperationalMinutes: 360},
	}

	lt := query.ComputeLaytime(res)
	assert.Equal(t, query.Laytime{
		PortMinutes:         900,
		CargoMinutes:        540,
		LoadingMinutes:      540,
		WeatherDelayMinutes: 90,
		OperationalMinutes:  360,
		WaitingMinutes:      270,
		CargoOperations:     2,
		WeatherDelays:       1,
		PilotOperations:     1,
		Incomplete:          1,
	}, lt)
}

func TestComputeLaytime_Empty(t *testing.T) {
	assert.Equal(t, query.Laytime{}, query.ComputeLaytime(sof.Result{}))
}

func TestConfidenceLevels(t *testing.T) {
	got := query.ConfidenceLevels(fixtureEvents())
	assert.Equal(t, map[string]int{"high": 3, "medium": 0, "low": 1, "very_low": 1}, got)

	empty := query.ConfidenceLevels(nil)
	assert.Len(t, empty, 4)
	assert.Zero(t, empty["high"])
}
