// Package refine is the interactive second stage: user-adjustable
// filters and sorting applied to a search's result set (or directly to
// the raw candidate set). The output is a derived value, recomputed on
// every call and never mutated in place.
package refine

import (
	"math"
	"sort"
	"strings"

	"github.com/shaharavr/flightscout/internal/models"
	"github.com/shaharavr/flightscout/internal/timeparse"
)

type SortKey string

const (
	SortPrice     SortKey = "price"
	SortDuration  SortKey = "duration"
	SortDeparture SortKey = "departure"
	SortAirline   SortKey = "airline"
)

type SortDirection string

const (
	Ascending  SortDirection = "asc"
	Descending SortDirection = "desc"
)

type Sort struct {
	Key       SortKey       `json:"key"`
	Direction SortDirection `json:"direction"`
}

func DefaultSort() Sort {
	return Sort{Key: SortPrice, Direction: Ascending}
}

// Options are the refinement filters. Empty sets disable their
// predicate; the ranges are inclusive. DurationRange is measured in
// hours and compared minute-accurately against the parsed
// total-duration string.
type Options struct {
	PriceRange     [2]float64          `json:"price_range"`
	DurationRange  [2]float64          `json:"duration_range"`
	MaxStops       int                 `json:"max_stops"`
	Airlines       []string            `json:"airlines"`
	DepartureTimes []timeparse.DayPart `json:"departure_times"`
	CabinClasses   []string            `json:"cabin_classes"`
}

// Unbounded returns options that pass every itinerary through
// untouched.
func Unbounded() Options {
	return Options{
		PriceRange:    [2]float64{0, math.MaxFloat64},
		DurationRange: [2]float64{0, math.MaxFloat64},
		MaxStops:      math.MaxInt,
	}
}

// Apply filters then stably sorts. The input slice is left untouched.
func Apply(in []models.Itinerary, opts Options, s Sort) []models.Itinerary {
	filtered := make([]models.Itinerary, 0, len(in))
	for _, it := range in {
		if keep(it, opts) {
			filtered = append(filtered, it)
		}
	}
	applySort(filtered, s)
	return filtered
}

func keep(it models.Itinerary, opts Options) bool {
	if it.Price < opts.PriceRange[0] || it.Price > opts.PriceRange[1] {
		return false
	}

	// An unparsable duration string skips the duration bound rather
	// than excluding the itinerary.
	if hours, err := timeparse.ParseElapsed(it.TotalDuration); err == nil {
		if hours < opts.DurationRange[0] || hours > opts.DurationRange[1] {
			return false
		}
	}

	if it.TotalStops > opts.MaxStops {
		return false
	}

	if len(opts.Airlines) > 0 {
		found := false
		for _, code := range opts.Airlines {
			if it.HasAirline(code) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}

	if len(opts.CabinClasses) > 0 {
		found := false
		for _, class := range opts.CabinClasses {
			if strings.EqualFold(it.CabinClass, class) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}

	if len(opts.DepartureTimes) > 0 {
		minutes, err := timeparse.ParseClock(it.FirstSegment().Departure.Time)
		if err != nil {
			return false
		}
		part := timeparse.PartOfDay(minutes)
		found := false
		for _, p := range opts.DepartureTimes {
			if p == part {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}

	return true
}

// Stable sort so equal values keep their original relative order and
// the result list does not jump around between recomputes.
func applySort(flights []models.Itinerary, s Sort) {
	if len(flights) < 2 {
		return
	}

	ascending := s.Direction != Descending

	switch s.Key {
	case SortDuration:
		sort.SliceStable(flights, func(i, j int) bool {
			a, _ := timeparse.ParseElapsed(flights[i].TotalDuration)
			b, _ := timeparse.ParseElapsed(flights[j].TotalDuration)
			if ascending {
				return a < b
			}
			return a > b
		})

	case SortDeparture:
		sort.SliceStable(flights, func(i, j int) bool {
			a, _ := timeparse.ComposeDeparture(flights[i].DepartureDate, flights[i].FirstSegment().Departure.Time)
			b, _ := timeparse.ComposeDeparture(flights[j].DepartureDate, flights[j].FirstSegment().Departure.Time)
			if ascending {
				return a.Before(b)
			}
			return a.After(b)
		})

	case SortAirline:
		sort.SliceStable(flights, func(i, j int) bool {
			a := flights[i].FirstSegment().Airline
			b := flights[j].FirstSegment().Airline
			if ascending {
				return a < b
			}
			return a > b
		})

	default: // SortPrice
		sort.SliceStable(flights, func(i, j int) bool {
			if ascending {
				return flights[i].Price < flights[j].Price
			}
			return flights[i].Price > flights[j].Price
		})
	}
}
