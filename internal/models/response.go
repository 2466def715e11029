package models

type SearchMetadata struct {
	TotalResults   int   `json:"total_results"`
	CandidateCount int   `json:"candidate_count"`
	SearchTimeMs   int64 `json:"search_time_ms"`
}

type SearchResponse struct {
	SearchID       string         `json:"search_id"`
	SearchCriteria SearchCriteria `json:"search_criteria"`
	Metadata       SearchMetadata `json:"metadata"`
	Flights        []Itinerary    `json:"flights"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    int    `json:"code"`
}
