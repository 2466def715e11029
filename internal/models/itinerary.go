package models

import "strings"

type Endpoint struct {
	Airport     string `json:"airport"`
	AirportCode string `json:"airport_code"`
	Time        string `json:"time"`
	Date        string `json:"date"`
}

// Segment is one non-stop leg. Segments within an itinerary are kept
// in chronological flight order.
type Segment struct {
	Airline      string   `json:"airline"`
	AirlineCode  string   `json:"airline_code"`
	FlightNumber string   `json:"flight_number"`
	Departure    Endpoint `json:"departure"`
	Arrival      Endpoint `json:"arrival"`
	Duration     string   `json:"duration"`
	Stops        int      `json:"stops"`
	Aircraft     string   `json:"aircraft"`
}

// Itinerary is one bookable option. The core never mutates these; it
// only filters and reorders references to them.
//
// TotalStops is stored rather than derived from len(Segments)-1 and
// the filters trust the stored value. TotalDuration is the supplier's
// formatted elapsed time and may include layover time.
type Itinerary struct {
	ID              string    `json:"id"`
	Price           float64   `json:"price"`
	PriceFormatted  string    `json:"price_formatted,omitempty"`
	Currency        string    `json:"currency"`
	TotalDuration   string    `json:"total_duration"`
	Segments        []Segment `json:"segments"`
	IsDirect        bool      `json:"is_direct"`
	TotalStops      int       `json:"total_stops"`
	DepartureDate   string    `json:"departure_date"`
	ReturnDate      *string   `json:"return_date,omitempty"`
	BookingURL      string    `json:"booking_url"`
	AirlineLogos    []string  `json:"airline_logos"`
	PricePerPerson  bool      `json:"price_per_person"`
	CabinClass      string    `json:"cabin_class"`
	Refundable      bool      `json:"refundable"`
	Changeable      bool      `json:"changeable"`
	BaggageIncluded bool      `json:"baggage_included"`
}

func (it Itinerary) HasAirline(code string) bool {
	for _, seg := range it.Segments {
		if strings.EqualFold(seg.AirlineCode, code) {
			return true
		}
	}
	return false
}

// FirstSegment returns the opening leg, or a zero Segment for
// malformed data so callers can stay branch-free.
func (it Itinerary) FirstSegment() Segment {
	if len(it.Segments) == 0 {
		return Segment{}
	}
	return it.Segments[0]
}
