package refine

import "github.com/shaharavr/flightscout/internal/models"

// Facets are the selectable filter values present in the current
// candidate set, in first-seen order.
type Facets struct {
	Airlines     []string `json:"airlines"`
	CabinClasses []string `json:"cabin_classes"`
}

func CollectFacets(flights []models.Itinerary) Facets {
	var f Facets
	seenAirlines := make(map[string]bool)
	seenClasses := make(map[string]bool)

	for _, it := range flights {
		for _, seg := range it.Segments {
			if !seenAirlines[seg.AirlineCode] {
				seenAirlines[seg.AirlineCode] = true
				f.Airlines = append(f.Airlines, seg.AirlineCode)
			}
		}
		if !seenClasses[it.CabinClass] {
			seenClasses[it.CabinClass] = true
			f.CabinClasses = append(f.CabinClasses, it.CabinClass)
		}
	}
	return f
}
