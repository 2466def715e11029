package handler

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/shaharavr/flightscout/internal/models"
	"github.com/shaharavr/flightscout/internal/notify"
	"github.com/shaharavr/flightscout/internal/ratelimit"
	"github.com/shaharavr/flightscout/internal/refine"
	"github.com/shaharavr/flightscout/internal/search"
	"github.com/shaharavr/flightscout/internal/store"
	"github.com/shaharavr/flightscout/internal/timeparse"
)

type SearchHandler struct {
	search   *search.Service
	store    store.Store
	notifier *notify.Dispatcher
	limiter  *ratelimit.ClientLimiter
}

func NewSearchHandler(svc *search.Service, st store.Store, notifier *notify.Dispatcher, limiter *ratelimit.ClientLimiter) *SearchHandler {
	return &SearchHandler{
		search:   svc,
		store:    st,
		notifier: notifier,
		limiter:  limiter,
	}
}

// Search runs a one-shot criteria search without a wizard session.
func (h *SearchHandler) Search(c echo.Context) error {
	startTime := time.Now()
	ctx := c.Request().Context()

	if h.limiter != nil && !h.limiter.Allow(c.RealIP()) {
		return c.JSON(http.StatusTooManyRequests, models.ErrorResponse{
			Error:   "rate_limited",
			Message: "Too many searches, slow down",
			Code:    http.StatusTooManyRequests,
		})
	}

	var criteria models.SearchCriteria
	if err := c.Bind(&criteria); err != nil {
		return badRequest(c, "invalid_request", "Failed to parse request body: "+err.Error())
	}
	criteria.Normalize()

	if errs := criteria.Validate(time.Now()); len(errs) > 0 {
		fields := make(map[string]string, len(errs))
		for field, err := range errs {
			fields[field] = err.Error()
		}
		return c.JSON(http.StatusUnprocessableEntity, struct {
			models.ErrorResponse
			Fields map[string]string `json:"fields"`
		}{
			ErrorResponse: models.ErrorResponse{
				Error:   "validation_error",
				Message: "criteria failed validation",
				Code:    http.StatusUnprocessableEntity,
			},
			Fields: fields,
		})
	}

	rec, err := h.search.Submit(ctx, uuid.NewString(), criteria)
	if err != nil {
		return internalError(c, "search_error", err)
	}

	return c.JSON(http.StatusOK, models.SearchResponse{
		SearchID:       rec.ID,
		SearchCriteria: rec.Criteria,
		Metadata: models.SearchMetadata{
			TotalResults:   len(rec.Flights),
			CandidateCount: rec.CandidateCount,
			SearchTimeMs:   time.Since(startTime).Milliseconds(),
		},
		Flights: rec.Flights,
	})
}

type refineResponse struct {
	SearchID       string                `json:"search_id"`
	SearchCriteria models.SearchCriteria `json:"search_criteria"`
	Options        refine.Options        `json:"options"`
	Sort           refine.Sort           `json:"sort"`
	Facets         refine.Facets         `json:"facets"`
	TotalResults   int                   `json:"total_results"`
	Flights        []models.Itinerary    `json:"flights"`
}

// View applies refinement filters and sorting from query parameters to
// a stored result set. The view is recomputed on every request; the
// stored set is never touched.
func (h *SearchHandler) View(c echo.Context) error {
	rec, ok := h.store.GetResult(c.Request().Context(), c.Param("id"))
	if !ok {
		return resultNotFound(c)
	}

	opts, err := parseOptions(c)
	if err != nil {
		return badRequest(c, "invalid_filter", err.Error())
	}
	sortState := parseSort(c)

	flights := refine.Apply(rec.Flights, opts, sortState)

	return c.JSON(http.StatusOK, refineResponse{
		SearchID:       rec.ID,
		SearchCriteria: rec.Criteria,
		Options:        opts,
		Sort:           sortState,
		Facets:         refine.CollectFacets(rec.Flights),
		TotalResults:   len(flights),
		Flights:        flights,
	})
}

type exportResponse struct {
	Payload notify.Payload `json:"payload"`
	Status  notify.Status  `json:"notification_status,omitempty"`
}

// Export hands the notification payload back as a downloadable JSON
// document, the manual fallback when background delivery fails.
func (h *SearchHandler) Export(c echo.Context) error {
	rec, ok := h.store.GetResult(c.Request().Context(), c.Param("id"))
	if !ok {
		return resultNotFound(c)
	}

	resp := exportResponse{
		Payload: notify.BuildPayload(rec.Criteria, rec.Flights, rec.CreatedAt),
	}
	if h.notifier != nil {
		if status, ok := h.notifier.Outcome(rec.ID); ok {
			resp.Status = status
		}
	}

	c.Response().Header().Set(echo.HeaderContentDisposition,
		fmt.Sprintf("attachment; filename=%q", "flight-search-"+rec.ID+".json"))
	return c.JSON(http.StatusOK, resp)
}

func parseOptions(c echo.Context) (refine.Options, error) {
	opts := refine.Unbounded()

	var err error
	if opts.PriceRange[0], err = floatParam(c, "price_min", opts.PriceRange[0]); err != nil {
		return opts, err
	}
	if opts.PriceRange[1], err = floatParam(c, "price_max", opts.PriceRange[1]); err != nil {
		return opts, err
	}
	if opts.DurationRange[0], err = floatParam(c, "duration_min", opts.DurationRange[0]); err != nil {
		return opts, err
	}
	if opts.DurationRange[1], err = floatParam(c, "duration_max", opts.DurationRange[1]); err != nil {
		return opts, err
	}
	if raw := c.QueryParam("max_stops"); raw != "" {
		stops, convErr := strconv.Atoi(raw)
		if convErr != nil {
			return opts, fmt.Errorf("max_stops must be an integer")
		}
		opts.MaxStops = stops
	}

	opts.Airlines = csvParam(c, "airlines")
	opts.CabinClasses = csvParam(c, "cabin_classes")
	for _, part := range csvParam(c, "departure_times") {
		opts.DepartureTimes = append(opts.DepartureTimes, timeparse.DayPart(part))
	}

	return opts, nil
}

func parseSort(c echo.Context) refine.Sort {
	s := refine.DefaultSort()
	if key := c.QueryParam("sort_by"); key != "" {
		s.Key = refine.SortKey(key)
	}
	if strings.EqualFold(c.QueryParam("sort_order"), string(refine.Descending)) {
		s.Direction = refine.Descending
	}
	return s
}

func floatParam(c echo.Context, name string, fallback float64) (float64, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("%s must be a number", name)
	}
	return v, nil
}

func csvParam(c echo.Context, name string) []string {
	raw := c.QueryParam(name)
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func resultNotFound(c echo.Context) error {
	return c.JSON(http.StatusNotFound, models.ErrorResponse{
		Error:   "search_not_found",
		Message: "No search results with that id",
		Code:    http.StatusNotFound,
	})
}

func HealthHandler(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status": "ok",
	})
}
