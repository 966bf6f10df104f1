package enums

import (
	"fmt"
	"strings"
)

// TrackEvent is a product telemetry signal.
type TrackEvent string

const (
	TrackEventView  TrackEvent = "view"
	TrackEventClick TrackEvent = "click"
)

// IsValid reports whether the value is a known TrackEvent.
func (e TrackEvent) IsValid() bool {
	return e == TrackEventView || e == TrackEventClick
}

// ParseTrackEvent converts raw input into a TrackEvent.
func ParseTrackEvent(value string) (TrackEvent, error) {
	event := TrackEvent(strings.ToLower(strings.TrimSpace(value)))
	if !event.IsValid() {
		return "", fmt.Errorf("invalid track event %q", value)
	}
	return event, nil
}
