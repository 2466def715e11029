// Package dataset supplies the candidate itineraries. The single
// static provider loads a bundled fixture at startup and hands out
// read-only copies in a fixed order.
package dataset

import (
	_ "embed"
	"encoding/json"

	"github.com/shaharavr/flightscout/internal/models"
	"github.com/shaharavr/flightscout/pkg/currency"
)

//go:embed data/flights.json
var flightData []byte

//go:embed data/catalog.json
var catalogData []byte

type Provider interface {
	Candidates() []models.Itinerary
}

// The raw types mirror the supplier's JSON schema; normalize maps them
// onto our models.

type rawFile struct {
	Flights []rawItinerary `json:"flights"`
}

type rawItinerary struct {
	ID              string       `json:"id"`
	Price           float64      `json:"price"`
	Currency        string       `json:"currency"`
	TotalDuration   string       `json:"totalDuration"`
	Segments        []rawSegment `json:"segments"`
	IsDirect        bool         `json:"isDirect"`
	TotalStops      int          `json:"totalStops"`
	DepartureDate   string       `json:"departureDate"`
	ReturnDate      *string      `json:"returnDate,omitempty"`
	BookingURL      string       `json:"bookingUrl"`
	AirlineLogos    []string     `json:"airlineLogos"`
	PricePerPerson  bool         `json:"pricePerPerson"`
	CabinClass      string       `json:"cabinClass"`
	Refundable      bool         `json:"refundable"`
	Changeable      bool         `json:"changeable"`
	BaggageIncluded bool         `json:"baggageIncluded"`
}

type rawSegment struct {
	Airline      string      `json:"airline"`
	AirlineCode  string      `json:"airlineCode"`
	FlightNumber string      `json:"flightNumber"`
	Departure    rawEndpoint `json:"departure"`
	Arrival      rawEndpoint `json:"arrival"`
	Duration     string      `json:"duration"`
	Stops        int         `json:"stops"`
	Aircraft     string      `json:"aircraft"`
}

type rawEndpoint struct {
	Airport     string `json:"airport"`
	AirportCode string `json:"airportCode"`
	Time        string `json:"time"`
	Date        string `json:"date"`
}

type StaticProvider struct {
	flights []models.Itinerary
}

func NewStaticProvider() (*StaticProvider, error) {
	var file rawFile
	if err := json.Unmarshal(flightData, &file); err != nil {
		return nil, err
	}

	flights := make([]models.Itinerary, len(file.Flights))
	for i, raw := range file.Flights {
		flights[i] = normalize(raw)
	}
	return &StaticProvider{flights: flights}, nil
}

// Candidates returns a fresh slice each call so callers can filter and
// reorder without touching the source ordering.
func (p *StaticProvider) Candidates() []models.Itinerary {
	out := make([]models.Itinerary, len(p.flights))
	copy(out, p.flights)
	return out
}

func normalize(raw rawItinerary) models.Itinerary {
	segments := make([]models.Segment, len(raw.Segments))
	for i, s := range raw.Segments {
		segments[i] = models.Segment{
			Airline:      s.Airline,
			AirlineCode:  s.AirlineCode,
			FlightNumber: s.FlightNumber,
			Departure: models.Endpoint{
				Airport:     s.Departure.Airport,
				AirportCode: s.Departure.AirportCode,
				Time:        s.Departure.Time,
				Date:        s.Departure.Date,
			},
			Arrival: models.Endpoint{
				Airport:     s.Arrival.Airport,
				AirportCode: s.Arrival.AirportCode,
				Time:        s.Arrival.Time,
				Date:        s.Arrival.Date,
			},
			Duration: s.Duration,
			Stops:    s.Stops,
			Aircraft: s.Aircraft,
		}
	}

	return models.Itinerary{
		ID:              raw.ID,
		Price:           raw.Price,
		PriceFormatted:  currency.FormatUSD(raw.Price),
		Currency:        raw.Currency,
		TotalDuration:   raw.TotalDuration,
		Segments:        segments,
		IsDirect:        raw.IsDirect,
		TotalStops:      raw.TotalStops,
		DepartureDate:   raw.DepartureDate,
		ReturnDate:      raw.ReturnDate,
		BookingURL:      raw.BookingURL,
		AirlineLogos:    raw.AirlineLogos,
		PricePerPerson:  raw.PricePerPerson,
		CabinClass:      raw.CabinClass,
		Refundable:      raw.Refundable,
		Changeable:      raw.Changeable,
		BaggageIncluded: raw.BaggageIncluded,
	}
}
