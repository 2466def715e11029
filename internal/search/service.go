// Package search orchestrates one submission: simulated lookup
// latency, the first-pass match, the blocked-day pass and the
// fire-and-forget notification.
package search

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/shaharavr/flightscout/internal/dataset"
	"github.com/shaharavr/flightscout/internal/engine"
	"github.com/shaharavr/flightscout/internal/models"
	"github.com/shaharavr/flightscout/internal/notify"
	"github.com/shaharavr/flightscout/internal/store"
)

type Service struct {
	provider dataset.Provider
	store    store.Store
	notifier *notify.Dispatcher
	latency  time.Duration
	now      func() time.Time
}

func NewService(provider dataset.Provider, st store.Store, notifier *notify.Dispatcher, latency time.Duration) *Service {
	return &Service{
		provider: provider,
		store:    st,
		notifier: notifier,
		latency:  latency,
		now:      time.Now,
	}
}

// Submit runs one search. The simulated latency select respects ctx,
// so a caller that navigates away cancels the wait and the computation
// is discarded instead of being applied to stale state. Each search is
// independent; nothing here is shared across submissions.
func (s *Service) Submit(ctx context.Context, sessionKey string, criteria models.SearchCriteria) (*store.SearchRecord, error) {
	if s.latency > 0 {
		select {
		case <-time.After(s.latency):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	candidates := s.provider.Candidates()
	matched := engine.Match(criteria, candidates)
	matched = engine.ExcludeBlockedDays(criteria, matched)

	rec := &store.SearchRecord{
		ID:             uuid.NewString(),
		SessionID:      sessionKey,
		Criteria:       criteria,
		Flights:        matched,
		CandidateCount: len(candidates),
		CreatedAt:      s.now(),
	}
	if err := s.store.SaveResult(ctx, rec); err != nil {
		return nil, err
	}

	// Results are already computed and stored; delivery runs behind
	// the scenes and must not delay the response.
	if s.notifier != nil {
		s.notifier.Dispatch(sessionKey, rec.ID, notify.BuildPayload(criteria, matched, rec.CreatedAt))
	}

	return rec, nil
}
