// Package timeparse handles the loosely formatted time strings the
// itinerary suppliers hand us: elapsed times like "4h 30m", wall
// clocks like "08:00" and departure dates like "2025-02-15".
package timeparse

import (
	"errors"
	"strconv"
	"strings"
	"time"
)

var ErrUnparsable = errors.New("timeparse: unable to parse time string")

// ParseElapsed converts strings like "4h 30m", "10h 15m", "3h" or
// "45m" into fractional hours. Minutes count: "4h 45m" is 4.75, not 4.
func ParseElapsed(s string) (float64, error) {
	fields := strings.Fields(strings.TrimSpace(s))
	if len(fields) == 0 {
		return 0, ErrUnparsable
	}

	var hours float64
	matched := false
	for _, f := range fields {
		switch {
		case strings.HasSuffix(f, "h"):
			v, err := strconv.ParseFloat(strings.TrimSuffix(f, "h"), 64)
			if err != nil {
				return 0, ErrUnparsable
			}
			hours += v
			matched = true
		case strings.HasSuffix(f, "m"):
			v, err := strconv.ParseFloat(strings.TrimSuffix(f, "m"), 64)
			if err != nil {
				return 0, ErrUnparsable
			}
			hours += v / 60
			matched = true
		default:
			return 0, ErrUnparsable
		}
	}
	if !matched {
		return 0, ErrUnparsable
	}
	return hours, nil
}

// ParseClock converts "HH:MM" into minutes past midnight.
func ParseClock(s string) (int, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, ErrUnparsable
	}
	return t.Hour()*60 + t.Minute(), nil
}

type DayPart string

const (
	Morning   DayPart = "morning"   // 06:00-12:00
	Afternoon DayPart = "afternoon" // 12:00-18:00
	Evening   DayPart = "evening"   // 18:00-24:00
	Night     DayPart = "night"     // 00:00-06:00
)

// PartOfDay buckets minutes past midnight into the four departure-time
// slots the refinement surface offers.
func PartOfDay(minutes int) DayPart {
	switch {
	case minutes >= 6*60 && minutes < 12*60:
		return Morning
	case minutes >= 12*60 && minutes < 18*60:
		return Afternoon
	case minutes >= 18*60:
		return Evening
	default:
		return Night
	}
}

var departureLayouts = []string{
	"2006-01-02 15:04",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ComposeDeparture joins an itinerary date and a segment clock into a
// sortable timestamp.
func ComposeDeparture(date, clock string) (time.Time, error) {
	candidate := strings.TrimSpace(date)
	if clock != "" {
		candidate = candidate + " " + clock
	}
	for _, layout := range departureLayouts {
		if t, err := time.Parse(layout, candidate); err == nil {
			return t, nil
		}
	}
	return time.Time{}, ErrUnparsable
}

// ParseDate parses the plain YYYY-MM-DD dates used throughout the
// itinerary data.
func ParseDate(date string) (time.Time, error) {
	t, err := time.Parse("2006-01-02", strings.TrimSpace(date))
	if err != nil {
		return time.Time{}, ErrUnparsable
	}
	return t, nil
}
