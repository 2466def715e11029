package handler

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/shaharavr/flightscout/internal/form"
	"github.com/shaharavr/flightscout/internal/models"
	"github.com/shaharavr/flightscout/internal/search"
	"github.com/shaharavr/flightscout/internal/store"
)

type WizardHandler struct {
	store  store.Store
	search *search.Service
}

func NewWizardHandler(st store.Store, svc *search.Service) *WizardHandler {
	return &WizardHandler{store: st, search: svc}
}

type wizardResponse struct {
	ID     string                `json:"id"`
	Step   int                   `json:"step"`
	Steps  []form.Step           `json:"steps"`
	Draft  models.SearchCriteria `json:"draft"`
	Errors map[string]string     `json:"errors,omitempty"`
}

func wizardView(w *form.Wizard) wizardResponse {
	return wizardResponse{
		ID:     w.ID,
		Step:   w.Step,
		Steps:  w.Steps(),
		Draft:  w.Draft,
		Errors: w.Errors,
	}
}

func (h *WizardHandler) Create(c echo.Context) error {
	w := form.New(uuid.NewString())
	if err := h.store.SaveSession(c.Request().Context(), w); err != nil {
		return internalError(c, "session_error", err)
	}
	return c.JSON(http.StatusCreated, wizardView(w))
}

func (h *WizardHandler) Get(c echo.Context) error {
	w, ok := h.store.GetSession(c.Request().Context(), c.Param("id"))
	if !ok {
		return sessionNotFound(c)
	}
	return c.JSON(http.StatusOK, wizardView(w))
}

func (h *WizardHandler) Patch(c echo.Context) error {
	ctx := c.Request().Context()
	w, ok := h.store.GetSession(ctx, c.Param("id"))
	if !ok {
		return sessionNotFound(c)
	}

	var patch form.Patch
	if err := c.Bind(&patch); err != nil {
		return badRequest(c, "invalid_request", "Failed to parse request body: "+err.Error())
	}

	w.Apply(patch)
	if err := h.store.SaveSession(ctx, w); err != nil {
		return internalError(c, "session_error", err)
	}
	return c.JSON(http.StatusOK, wizardView(w))
}

func (h *WizardHandler) Next(c echo.Context) error {
	return h.navigate(c, func(w *form.Wizard) { w.Next() })
}

func (h *WizardHandler) Prev(c echo.Context) error {
	return h.navigate(c, func(w *form.Wizard) { w.Prev() })
}

func (h *WizardHandler) navigate(c echo.Context, move func(*form.Wizard)) error {
	ctx := c.Request().Context()
	w, ok := h.store.GetSession(ctx, c.Param("id"))
	if !ok {
		return sessionNotFound(c)
	}
	move(w)
	if err := h.store.SaveSession(ctx, w); err != nil {
		return internalError(c, "session_error", err)
	}
	return c.JSON(http.StatusOK, wizardView(w))
}

type pickRequest struct {
	Destination string `json:"destination"`
}

// PickDestination is the quick-pick shortcut from the popular
// destinations strip.
func (h *WizardHandler) PickDestination(c echo.Context) error {
	ctx := c.Request().Context()
	w, ok := h.store.GetSession(ctx, c.Param("id"))
	if !ok {
		return sessionNotFound(c)
	}

	var req pickRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid_request", "Failed to parse request body: "+err.Error())
	}

	w.PickDestination(req.Destination)
	if err := h.store.SaveSession(ctx, w); err != nil {
		return internalError(c, "session_error", err)
	}
	return c.JSON(http.StatusOK, wizardView(w))
}

// Submit validates the draft and, when clean, runs the search. A
// validation failure returns the per-field errors and keeps the
// session at the final step.
func (h *WizardHandler) Submit(c echo.Context) error {
	startTime := time.Now()
	ctx := c.Request().Context()

	w, ok := h.store.GetSession(ctx, c.Param("id"))
	if !ok {
		return sessionNotFound(c)
	}

	criteria, err := w.Submit(time.Now())
	if err != nil {
		_ = h.store.SaveSession(ctx, w)
		status := http.StatusUnprocessableEntity
		if err == form.ErrNotFinalStep {
			status = http.StatusConflict
		}
		return c.JSON(status, struct {
			models.ErrorResponse
			Fields map[string]string `json:"fields,omitempty"`
		}{
			ErrorResponse: models.ErrorResponse{
				Error:   "validation_error",
				Message: err.Error(),
				Code:    status,
			},
			Fields: w.Errors,
		})
	}
	_ = h.store.SaveSession(ctx, w)

	rec, err := h.search.Submit(ctx, w.ID, criteria)
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

func sessionNotFound(c echo.Context) error {
	return c.JSON(http.StatusNotFound, models.ErrorResponse{
		Error:   "session_not_found",
		Message: "No wizard session with that id",
		Code:    http.StatusNotFound,
	})
}

func badRequest(c echo.Context, kind, msg string) error {
	return c.JSON(http.StatusBadRequest, models.ErrorResponse{
		Error:   kind,
		Message: msg,
		Code:    http.StatusBadRequest,
	})
}

func internalError(c echo.Context, kind string, err error) error {
	return c.JSON(http.StatusInternalServerError, models.ErrorResponse{
		Error:   kind,
		Message: err.Error(),
		Code:    http.StatusInternalServerError,
	})
}
