// Package engine is the first-pass match between a submitted search
// criteria and the candidate itinerary set. It only removes
// candidates; ordering and interactive narrowing belong to the
// refinement layer.
package engine

import (
	"github.com/shaharavr/flightscout/internal/models"
	"github.com/shaharavr/flightscout/internal/timeparse"
)

// Match returns the candidates satisfying every criteria predicate, in
// their original relative order. An empty candidate list or an empty
// match is a normal result, not an error.
func Match(criteria models.SearchCriteria, candidates []models.Itinerary) []models.Itinerary {
	result := make([]models.Itinerary, 0, len(candidates))
	for _, it := range candidates {
		if matches(criteria, it) {
			result = append(result, it)
		}
	}
	return result
}

func matches(c models.SearchCriteria, it models.Itinerary) bool {
	// A zero budget means no budget constraint.
	if c.MaxBudget > 0 && it.Price > c.MaxBudget {
		return false
	}

	switch c.FlightType {
	case models.FlightDirect:
		if !it.IsDirect {
			return false
		}
	case models.FlightOneStop:
		if it.TotalStops > 1 {
			return false
		}
	case models.FlightTwoStops:
		if it.TotalStops > 2 {
			return false
		}
	}

	if len(c.PreferredAirlines) > 0 {
		found := false
		for _, code := range c.PreferredAirlines {
			if it.HasAirline(code) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}

	for _, code := range c.BlockedAirlines {
		if it.HasAirline(code) {
			return false
		}
	}

	return true
}

// ExcludeBlockedDays drops itineraries departing on one of the
// criteria's blocked weekdays. It runs over the computed result set,
// after Match, rather than inside the match predicate. Itineraries
// with an unparsable departure date pass through.
func ExcludeBlockedDays(criteria models.SearchCriteria, matched []models.Itinerary) []models.Itinerary {
	if len(criteria.BlockedDays) == 0 {
		return matched
	}

	blocked := make(map[models.Weekday]bool, len(criteria.BlockedDays))
	for _, d := range criteria.BlockedDays {
		blocked[d] = true
	}

	result := make([]models.Itinerary, 0, len(matched))
	for _, it := range matched {
		date := it.DepartureDate
		if date == "" {
			date = it.FirstSegment().Departure.Date
		}
		if t, err := timeparse.ParseDate(date); err == nil && blocked[models.WeekdayOf(t)] {
			continue
		}
		result = append(result, it)
	}
	return result
}
