// Package notify is the fire-and-forget results notification. The
// current sink only logs the payload; delivery never blocks or delays
// the results view, and a completion that has been superseded by a
// newer search for the same session is discarded instead of applied.
package notify

import (
	"context"
	"encoding/json"
	"log"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/shaharavr/flightscout/internal/models"
)

type FlightSummary struct {
	ID            string  `json:"id"`
	Price         float64 `json:"price"`
	Airline       string  `json:"airline"`
	Duration      string  `json:"duration"`
	IsDirect      bool    `json:"is_direct"`
	TotalStops    int     `json:"total_stops"`
	DepartureDate string  `json:"departure_date"`
	BookingURL    string  `json:"booking_url"`
}

type Payload struct {
	SearchCriteria models.SearchCriteria `json:"search_criteria"`
	Flights        []FlightSummary       `json:"flights"`
	Timestamp      time.Time             `json:"timestamp"`
	TotalResults   int                   `json:"total_results"`
}

func BuildPayload(criteria models.SearchCriteria, flights []models.Itinerary, ts time.Time) Payload {
	summaries := make([]FlightSummary, len(flights))
	for i, f := range flights {
		summaries[i] = FlightSummary{
			ID:            f.ID,
			Price:         f.Price,
			Airline:       f.FirstSegment().Airline,
			Duration:      f.TotalDuration,
			IsDirect:      f.IsDirect,
			TotalStops:    f.TotalStops,
			DepartureDate: f.DepartureDate,
			BookingURL:    f.BookingURL,
		}
	}
	return Payload{
		SearchCriteria: criteria,
		Flights:        summaries,
		Timestamp:      ts,
		TotalResults:   len(flights),
	}
}

type Sink interface {
	Deliver(ctx context.Context, p Payload) error
}

// LogSink writes the payload to the process log instead of sending
// anything anywhere.
type LogSink struct {
	Recipient string
}

func (s *LogSink) Deliver(ctx context.Context, p Payload) error {
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return err
	}
	log.Printf("sending results email to %s", s.Recipient)
	log.Printf("email payload: %s", data)
	log.Printf("results email delivered")
	return nil
}

type Status string

const (
	StatusPending    Status = "pending"
	StatusSent       Status = "sent"
	StatusFailed     Status = "failed"
	StatusSuperseded Status = "superseded"
)

type job struct {
	sessionKey string
	token      uint64
	searchID   string
	payload    Payload
}

type Config struct {
	Delay     time.Duration
	QueueSize int
	RPS       float64
	Burst     int
}

func DefaultConfig() Config {
	return Config{
		Delay:     time.Second,
		QueueSize: 64,
		RPS:       5,
		Burst:     10,
	}
}

// Dispatcher runs deliveries on a single background worker. Each
// dispatch takes a token; a later dispatch for the same session key
// invalidates earlier tokens, so a stale completion can never be
// reported over a newer search.
type Dispatcher struct {
	sink    Sink
	delay   time.Duration
	limiter *rate.Limiter
	jobs    chan job

	mu       sync.Mutex
	latest   map[string]uint64
	outcomes map[string]Status

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewDispatcher(sink Sink, cfg Config) *Dispatcher {
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 64
	}
	ctx, cancel := context.WithCancel(context.Background())
	d := &Dispatcher{
		sink:     sink,
		delay:    cfg.Delay,
		limiter:  rate.NewLimiter(rate.Limit(cfg.RPS), cfg.Burst),
		jobs:     make(chan job, cfg.QueueSize),
		latest:   make(map[string]uint64),
		outcomes: make(map[string]Status),
		ctx:      ctx,
		cancel:   cancel,
	}
	d.wg.Add(1)
	go d.worker()
	return d
}

// Dispatch enqueues a delivery without blocking the caller. A full
// queue records a failure rather than waiting.
func (d *Dispatcher) Dispatch(sessionKey, searchID string, p Payload) {
	d.mu.Lock()
	d.latest[sessionKey]++
	token := d.latest[sessionKey]
	d.outcomes[searchID] = StatusPending
	d.mu.Unlock()

	select {
	case d.jobs <- job{sessionKey: sessionKey, token: token, searchID: searchID, payload: p}:
	default:
		log.Printf("notification queue full, dropping dispatch for search %s", searchID)
		d.setOutcome(searchID, StatusFailed)
	}
}

// Outcome reports the delivery status for a search id.
func (d *Dispatcher) Outcome(searchID string) (Status, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	s, ok := d.outcomes[searchID]
	return s, ok
}

func (d *Dispatcher) Close() {
	d.cancel()
	d.wg.Wait()
}

func (d *Dispatcher) worker() {
	defer d.wg.Done()
	for {
		select {
		case <-d.ctx.Done():
			return
		case j := <-d.jobs:
			d.process(j)
		}
	}
}

func (d *Dispatcher) process(j job) {
	if d.delay > 0 {
		select {
		case <-time.After(d.delay):
		case <-d.ctx.Done():
			return
		}
	}

	if d.superseded(j) {
		d.setOutcome(j.searchID, StatusSuperseded)
		return
	}

	if err := d.limiter.Wait(d.ctx); err != nil {
		return
	}

	if err := d.sink.Deliver(d.ctx, j.payload); err != nil {
		log.Printf("notification delivery failed for search %s: %v", j.searchID, err)
		d.setOutcome(j.searchID, StatusFailed)
		return
	}
	d.setOutcome(j.searchID, StatusSent)
}

func (d *Dispatcher) superseded(j job) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.latest[j.sessionKey] != j.token
}

func (d *Dispatcher) setOutcome(searchID string, s Status) {
	d.mu.Lock()
	d.outcomes[searchID] = s
	d.mu.Unlock()
}
