package models

import (
	"strings"
	"time"
)

const dateLayout = "2006-01-02"

type TripType string

const (
	TripOneWay    TripType = "one_way"
	TripRoundTrip TripType = "round_trip"
)

type FlightType string

const (
	FlightDirect   FlightType = "direct"
	FlightOneStop  FlightType = "one_stop"
	FlightTwoStops FlightType = "two_stops"
	FlightCheapest FlightType = "cheapest"
)

type Weekday string

const (
	Sunday    Weekday = "sunday"
	Monday    Weekday = "monday"
	Tuesday   Weekday = "tuesday"
	Wednesday Weekday = "wednesday"
	Thursday  Weekday = "thursday"
	Friday    Weekday = "friday"
	Saturday  Weekday = "saturday"
)

func WeekdayOf(t time.Time) Weekday {
	switch t.Weekday() {
	case time.Sunday:
		return Sunday
	case time.Monday:
		return Monday
	case time.Tuesday:
		return Tuesday
	case time.Wednesday:
		return Wednesday
	case time.Thursday:
		return Thursday
	case time.Friday:
		return Friday
	default:
		return Saturday
	}
}

// Stopover governs acceptable layover length. MaxDays is only
// meaningful while Allowed is true.
type Stopover struct {
	Allowed bool `json:"allowed"`
	MaxDays int  `json:"max_days"`
}

// SearchCriteria is one user search request. It is built by the form
// wizard, lives for a single results view and is never persisted.
//
// MixedAirlines and Stopovers are collected by the form and carried in
// the notification payload, but no filter consults them.
type SearchCriteria struct {
	Origin              string     `json:"origin"`
	Destination         string     `json:"destination"`
	TripType            TripType   `json:"trip_type"`
	DepartureDate       string     `json:"departure_date"`
	ReturnDate          *string    `json:"return_date,omitempty"`
	DateFlexibility     int        `json:"date_flexibility"`
	FlightType          FlightType `json:"flight_type"`
	MaxBudget           float64    `json:"max_budget"`
	TripDuration        *int       `json:"trip_duration,omitempty"`
	DurationFlexibility *int       `json:"duration_flexibility,omitempty"`
	BlockedDays         []Weekday  `json:"blocked_days"`
	PreferredAirlines   []string   `json:"preferred_airlines"`
	BlockedAirlines     []string   `json:"blocked_airlines"`
	MixedAirlines       bool       `json:"mixed_airlines"`
	Stopovers           Stopover   `json:"stopovers"`
}

type ValidationError string

func (e ValidationError) Error() string {
	return string(e)
}

const (
	ErrMissingOrigin         ValidationError = "origin is required"
	ErrMissingDestination    ValidationError = "destination is required"
	ErrMissingDepartureDate  ValidationError = "departure_date is required"
	ErrInvalidDate           ValidationError = "date must be formatted as YYYY-MM-DD"
	ErrDepartureInPast       ValidationError = "departure_date must not be in the past"
	ErrMissingReturnDate     ValidationError = "return_date is required for round trips"
	ErrReturnBeforeDeparture ValidationError = "return_date must not precede departure_date"
)

// FieldErrors maps a criteria field name to its validation failure.
// An empty map means the criteria are submittable.
type FieldErrors map[string]ValidationError

// Normalize fills defaults and clamps ranges without rejecting anything.
func (c *SearchCriteria) Normalize() {
	if c.TripType == "" {
		c.TripType = TripRoundTrip
	}
	if c.FlightType == "" {
		c.FlightType = FlightCheapest
	}
	if c.DateFlexibility < 0 {
		c.DateFlexibility = 0
	}
	if c.DateFlexibility > 7 {
		c.DateFlexibility = 7
	}
	if c.ReturnDate != nil && *c.ReturnDate == "" {
		c.ReturnDate = nil
	}
	c.Origin = strings.TrimSpace(c.Origin)
	c.Destination = strings.TrimSpace(c.Destination)
}

// Validate checks the required-field and date-ordering rules at
// submission time. Errors attach to individual fields and never abort
// anything before final submission.
func (c *SearchCriteria) Validate(now time.Time) FieldErrors {
	errs := FieldErrors{}

	if strings.TrimSpace(c.Origin) == "" {
		errs["origin"] = ErrMissingOrigin
	}
	if strings.TrimSpace(c.Destination) == "" {
		errs["destination"] = ErrMissingDestination
	}

	var departure time.Time
	if c.DepartureDate == "" {
		errs["departure_date"] = ErrMissingDepartureDate
	} else {
		parsed, err := time.Parse(dateLayout, c.DepartureDate)
		if err != nil {
			errs["departure_date"] = ErrInvalidDate
		} else {
			departure = parsed
			today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
			if parsed.Before(today) {
				errs["departure_date"] = ErrDepartureInPast
			}
		}
	}

	if c.TripType == TripRoundTrip {
		if c.ReturnDate == nil || *c.ReturnDate == "" {
			errs["return_date"] = ErrMissingReturnDate
		} else {
			returned, err := time.Parse(dateLayout, *c.ReturnDate)
			switch {
			case err != nil:
				errs["return_date"] = ErrInvalidDate
			case !departure.IsZero() && returned.Before(departure):
				errs["return_date"] = ErrReturnBeforeDeparture
			}
		}
	}

	return errs
}
