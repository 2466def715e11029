// Package form is the step-gated collector that builds a valid
// SearchCriteria. Navigation is free in both directions and the draft
// survives it; validation only gates the final submit.
package form

import (
	"errors"
	"time"

	"github.com/shaharavr/flightscout/internal/models"
)

const StepCount = 4

var (
	ErrNotFinalStep = errors.New("form: submit is only available at the final step")
	ErrInvalidDraft = errors.New("form: draft failed validation")
)

// Step metadata for the progress header. Title and Description are
// translation keys.
type Step struct {
	ID          int    `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Completed   bool   `json:"completed"`
}

var stepDefs = [StepCount]struct{ title, description string }{
	{"step.basic", "destination.placeholder"},
	{"departure.date", "return.date"},
	{"step.preferences", "flight.type"},
	{"step.advanced", "blocked.days"},
}

// Wizard accumulates a criteria draft across the four steps. It is
// JSON-serializable so the session store can hold it between requests.
type Wizard struct {
	ID     string                `json:"id"`
	Step   int                   `json:"step"`
	Draft  models.SearchCriteria `json:"draft"`
	Errors map[string]string     `json:"errors,omitempty"`
}

// New starts a wizard at step 1 with the stock defaults.
func New(id string) *Wizard {
	tripDuration := 7
	durationFlex := 2
	return &Wizard{
		ID:   id,
		Step: 1,
		Draft: models.SearchCriteria{
			TripType:            models.TripRoundTrip,
			DateFlexibility:     1,
			FlightType:          models.FlightCheapest,
			MaxBudget:           1000,
			TripDuration:        &tripDuration,
			DurationFlexibility: &durationFlex,
			BlockedDays:         []models.Weekday{},
			PreferredAirlines:   []string{},
			BlockedAirlines:     []string{},
			Stopovers:           models.Stopover{Allowed: false, MaxDays: 3},
		},
	}
}

// Next advances one step. There is no per-step validation gate; only
// submit validates. The final step clamps.
func (w *Wizard) Next() {
	if w.Step < StepCount {
		w.Step++
	}
}

// Prev retreats one step without discarding entered values. Step 1
// clamps.
func (w *Wizard) Prev() {
	if w.Step > 1 {
		w.Step--
	}
}

func (w *Wizard) Steps() []Step {
	steps := make([]Step, StepCount)
	for i := range steps {
		steps[i] = Step{
			ID:          i + 1,
			Title:       stepDefs[i].title,
			Description: stepDefs[i].description,
			Completed:   w.Step > i+1,
		}
	}
	return steps
}

// Patch carries partial field updates; nil fields keep their current
// draft value.
type Patch struct {
	Origin              *string            `json:"origin,omitempty"`
	Destination         *string            `json:"destination,omitempty"`
	TripType            *models.TripType   `json:"trip_type,omitempty"`
	DepartureDate       *string            `json:"departure_date,omitempty"`
	ReturnDate          *string            `json:"return_date,omitempty"`
	DateFlexibility     *int               `json:"date_flexibility,omitempty"`
	FlightType          *models.FlightType `json:"flight_type,omitempty"`
	MaxBudget           *float64           `json:"max_budget,omitempty"`
	TripDuration        *int               `json:"trip_duration,omitempty"`
	DurationFlexibility *int               `json:"duration_flexibility,omitempty"`
	BlockedDays         *[]models.Weekday  `json:"blocked_days,omitempty"`
	PreferredAirlines   *[]string          `json:"preferred_airlines,omitempty"`
	BlockedAirlines     *[]string          `json:"blocked_airlines,omitempty"`
	MixedAirlines       *bool              `json:"mixed_airlines,omitempty"`
	Stopovers           *models.Stopover   `json:"stopovers,omitempty"`
}

// Apply merges a patch into the draft. It never changes the current
// step.
func (w *Wizard) Apply(p Patch) {
	if p.Origin != nil {
		w.Draft.Origin = *p.Origin
	}
	if p.Destination != nil {
		w.Draft.Destination = *p.Destination
	}
	if p.TripType != nil {
		w.Draft.TripType = *p.TripType
	}
	if p.DepartureDate != nil {
		w.Draft.DepartureDate = *p.DepartureDate
	}
	if p.ReturnDate != nil {
		w.Draft.ReturnDate = p.ReturnDate
	}
	if p.DateFlexibility != nil {
		w.Draft.DateFlexibility = *p.DateFlexibility
	}
	if p.FlightType != nil {
		w.Draft.FlightType = *p.FlightType
	}
	if p.MaxBudget != nil {
		w.Draft.MaxBudget = *p.MaxBudget
	}
	if p.TripDuration != nil {
		w.Draft.TripDuration = p.TripDuration
	}
	if p.DurationFlexibility != nil {
		w.Draft.DurationFlexibility = p.DurationFlexibility
	}
	if p.BlockedDays != nil {
		w.Draft.BlockedDays = *p.BlockedDays
	}
	if p.PreferredAirlines != nil {
		w.Draft.PreferredAirlines = *p.PreferredAirlines
	}
	if p.BlockedAirlines != nil {
		w.Draft.BlockedAirlines = *p.BlockedAirlines
	}
	if p.MixedAirlines != nil {
		w.Draft.MixedAirlines = *p.MixedAirlines
	}
	if p.Stopovers != nil {
		w.Draft.Stopovers = *p.Stopovers
	}
}

// PickDestination is the quick-pick shortcut: it overwrites the
// destination field in place without changing the current step.
func (w *Wizard) PickDestination(name string) {
	w.Draft.Destination = name
}

// Submit validates the accumulated draft and, when clean, hands back a
// complete criteria value. Conditional fields irrelevant to the chosen
// trip type are cleared so downstream consumers see a uniform shape.
func (w *Wizard) Submit(now time.Time) (models.SearchCriteria, error) {
	if w.Step != StepCount {
		return models.SearchCriteria{}, ErrNotFinalStep
	}

	criteria := w.Draft
	criteria.Normalize()

	if errs := criteria.Validate(now); len(errs) > 0 {
		w.Errors = make(map[string]string, len(errs))
		for field, err := range errs {
			w.Errors[field] = err.Error()
		}
		return models.SearchCriteria{}, ErrInvalidDraft
	}
	w.Errors = nil

	if criteria.TripType == models.TripOneWay {
		criteria.ReturnDate = nil
		criteria.TripDuration = nil
		criteria.DurationFlexibility = nil
	}

	return criteria, nil
}
