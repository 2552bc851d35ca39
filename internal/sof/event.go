// SPDX-License-Identifier: Apache-2.0

// Package sof defines the Statement-of-Facts domain types produced by the
// extraction engine and consumed by export, query and the MCP tools.
package sof

import (
	"strings"

	"github.com/sofproj/sof-mcp/internal/errors"
)

// EventType is the fixed category of a maritime occurrence.
type EventType string

const (
	EventArrival     EventType = "arrival"
	EventBerthing    EventType = "berthing"
	EventLoading     EventType = "loading"
	EventDischarging EventType = "discharging"
	EventPilot       EventType = "pilot"
	EventDeparture   EventType = "departure"
	EventWeather     EventType = "weather"
	EventOther       EventType = "other"
)

// AllEventTypes lists every event type in display order.
func AllEventTypes() []EventType {
	return []EventType{
		EventArrival, EventBerthing, EventLoading, EventDischarging,
		EventPilot, EventDeparture, EventWeather, EventOther,
	}
}

// Valid reports whether t is one of the fixed event types.
func (t EventType) Valid() bool {
	switch t {
	case EventArrival, EventBerthing, EventLoading, EventDischarging,
		EventPilot, EventDeparture, EventWeather, EventOther:
		return true
	}
	return false
}

// ParseEventType parses a case-insensitive event type name.
func ParseEventType(s string) (EventType, error) {
	t := EventType(strings.ToLower(strings.TrimSpace(s)))
	if !t.Valid() {
		return "", errors.Newf("unknown event type %q", s)
	}
	return t, nil
}

// DisplayName is the human label used for paired (start/end) events.
func (t EventType) DisplayName() string {
	switch t {
	case EventArrival:
		return "Vessel Arrived"
	case EventBerthing:
		return "Berthing"
	case EventLoading:
		return "Loading Operations"
	case EventDischarging:
		return "Discharging Operations"
	case EventPilot:
		return "Pilot Operations"
	case EventDeparture:
		return "Vessel Departed"
	case EventWeather:
		return "Weather Delay"
	default:
		return "Maritime Event"
	}
}

// HasDuration reports whether events of this type span a period and take
// part in start/end pairing.
func (t EventType) HasDuration() bool {
	switch t {
	case EventLoading, EventDischarging, EventBerthing, EventWeather:
		return true
	}
	return false
}

// IsDelay reports whether time spent in events of this type counts against
// operational time.
func (t EventType) IsDelay() bool {
	return t == EventWeather
}

// ExtractionMethod records how an event was found.
type ExtractionMethod string

const (
	MethodPatternMatch ExtractionMethod = "pattern_match"
	MethodNLPContext   ExtractionMethod = "nlp_context"
	MethodCombined     ExtractionMethod = "combined"
)

// Event flags.
const (
	FlagTimeUnknown      = "time_unknown"
	FlagPartialTimestamp = "partial_timestamp"
	FlagAmbiguousDate    = "ambiguous_date"
	FlagNegativeDuration = "negative_duration"
)

// Event is the durable output unit of an extraction run.
type Event struct {
	Type       EventType        `json:"event_type" yaml:"event_type"`
	Name       string           `json:"event_name" yaml:"event_name"`
	StartTime  *string          `json:"start_time" yaml:"start_time"`
	EndTime    *string          `json:"end_time" yaml:"end_time"`
	Duration   *string          `json:"duration" yaml:"duration"`
	Location   *string          `json:"location" yaml:"location"`
	Remarks    string           `json:"remarks" yaml:"remarks"`
	Confidence float64          `json:"confidence" yaml:"confidence"`
	Method     ExtractionMethod `json:"extraction_method" yaml:"extraction_method"`

	// Pattern names the catalog rule (or rules, joined by "+") that produced the event.
	Pattern string `json:"pattern,omitempty" yaml:"pattern,omitempty"`
	// Flags marks degraded signals such as an unknown time or an ambiguous date.
	Flags []string `json:"flags,omitempty" yaml:"flags,omitempty"`
	// SourceOffset is the byte offset of the trigger in the original document text.
	SourceOffset int `json:"source_offset" yaml:"source_offset"`
}

// HasFlag reports whether the event carries flag f.
func (e Event) HasFlag(f string) bool {
	for _, x := range e.Flags {
		if x == f {
			return true
		}
	}
	return false
}

// TimeUnknown reports whether the event has no resolved start time.
func (e Event) TimeUnknown() bool {
	return e.HasFlag(FlagTimeUnknown)
}

// StringPtr returns a pointer to s, or nil when s is empty.
func StringPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// Deref returns the pointed-to string or "".
func Deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
