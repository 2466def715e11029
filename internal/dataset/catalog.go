package dataset

import "encoding/json"

// Catalog is the static reference data behind the quick-pick
// destination chips and the airline preference checkboxes.
type Catalog struct {
	PopularDestinations []Destination `json:"popularDestinations"`
	Airlines            []Airline     `json:"airlines"`
}

type Destination struct {
	Name    string `json:"name"`
	Code    string `json:"code"`
	Country string `json:"country"`
}

type Airline struct {
	Name   string  `json:"name"`
	Code   string  `json:"code"`
	Rating float64 `json:"rating"`
}

func LoadCatalog() (*Catalog, error) {
	var c Catalog
	if err := json.Unmarshal(catalogData, &c); err != nil {
		return nil, err
	}
	return &c, nil
}
