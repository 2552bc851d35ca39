// SPDX-License-Identifier: Apache-2.0

// Package query answers structured questions about extracted events, such as
// loading time, weather delays and laytime figures.
package query

import (
	"time"

	"github.com/sofproj/sof-mcp/internal/sof"
	"github.com/sofproj/sof-mcp/internal/sof/score"
)

// ByType returns the events of type t in their original order.
func ByType(events []sof.Event, t sof.EventType) []sof.Event {
	var out []sof.Event
	for _, ev := range events {
		if ev.Type == t {
			out = append(out, ev)
		}
	}
	return out
}

// TotalDuration sums the durations of events of type t. Events without a
// duration are skipped.
func TotalDuration(events []sof.Event, t sof.EventType) time.Duration {
	var total time.Duration
	for _, ev := range events {
		if ev.Type != t || ev.Duration == nil {
			continue
		}
		if d, err := sof.ParseDuration(*ev.Duration); err == nil {
			total += d
		}
	}
	return total
}

// LowConfidence returns the events whose confidence is below threshold.
func LowConfidence(events []sof.Event, threshold float64) []sof.Event {
	var out []sof.Event
	for _, ev := range events {
		if ev.Confidence < threshold {
			out = append(out, ev)
		}
	}
	return out
}

// ConfidenceLevels counts events per confidence level. Every level is
// present, zeros included.
func ConfidenceLevels(events []sof.Event) map[string]int {
	counts := map[string]int{
		score.LevelHigh:    0,
		score.LevelMedium:  0,
		score.LevelLow:     0,
		score.LevelVeryLow: 0,
	}
	for _, ev := range events {
		counts[score.Level(ev.Confidence)]++
	}
	return counts
}

// TimeUnknown returns the events without a usable start time.
func TimeUnknown(events []sof.Event) []sof.Event {
	var out []sof.Event
	for _, ev := range events {
		if ev.TimeUnknown() {
			out = append(out, ev)
		}
	}
	return out
}

// Laytime holds the figures a laytime statement is built from. All values
// are minutes except the counts.
type Laytime struct {
	PortMinutes         int `json:"port_minutes"`
	CargoMinutes        int `json:"cargo_minutes"`
	LoadingMinutes      int `json:"loading_minutes"`
	DischargingMinutes  int `json:"discharging_minutes"`
	WeatherDelayMinutes int `json:"weather_delay_minutes"`
	OperationalMinutes  int `json:"operational_minutes"`
	// WaitingMinutes is port time not covered by cargo work or weather.
	WaitingMinutes  int `json:"waiting_minutes"`
	CargoOperations int `json:"cargo_operations"`
	WeatherDelays   int `json:"weather_delays"`
	PilotOperations int `json:"pilot_operations"`
	// Incomplete counts cargo events without a derived duration.
	Incomplete int `json:"incomplete"`
}

// ComputeLaytime derives laytime figures from a result.
func ComputeLaytime(res sof.Result) Laytime {
	loading := TotalDuration(res.Events, sof.EventLoading)
	discharging := TotalDuration(res.Events, sof.EventDischarging)
	weather := TotalDuration(res.Events, sof.EventWeather)

	lt := Laytime{
		PortMinutes:         res.Summary.TotalSpanMinutes,
		LoadingMinutes:      int(loading / time.Minute),
		DischargingMinutes:  int(discharging / time.Minute),
		CargoMinutes:        int((loading + discharging) / time.Minute),
		WeatherDelayMinutes: int(weather / time.Minute),
		OperationalMinutes:  res.Summary.OperationalMinutes,
		WeatherDelays:       len(ByType(res.Events, sof.EventWeather)),
		PilotOperations:     len(ByType(res.Events, sof.EventPilot)),
	}
	for _, ev := range res.Events {
		if ev.Type != sof.EventLoading && ev.Type != sof.EventDischarging {
			continue
		}
		lt.CargoOperations++
		if ev.Duration == nil {
			lt.Incomplete++
		}
	}
	lt.WaitingMinutes = max(0, lt.PortMinutes-lt.CargoMinutes-lt.WeatherDelayMinutes)
	return lt
}
