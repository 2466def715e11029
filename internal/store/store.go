// Package store holds wizard sessions and computed search results for
// the duration of one results view. Redis is optional; the in-memory
// store is the default and the only state either backend holds is
// TTL-bound.
package store

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/shaharavr/flightscout/internal/form"
	"github.com/shaharavr/flightscout/internal/models"
)

// SearchRecord is one completed search: the submitted criteria and the
// matched result set, kept so the refinement view can recompute over
// it.
type SearchRecord struct {
	ID             string                `json:"id"`
	SessionID      string                `json:"session_id"`
	Criteria       models.SearchCriteria `json:"criteria"`
	Flights        []models.Itinerary    `json:"flights"`
	CandidateCount int                   `json:"candidate_count"`
	CreatedAt      time.Time             `json:"created_at"`
}

type Store interface {
	SaveSession(ctx context.Context, w *form.Wizard) error
	GetSession(ctx context.Context, id string) (*form.Wizard, bool)
	SaveResult(ctx context.Context, rec *SearchRecord) error
	GetResult(ctx context.Context, id string) (*SearchRecord, bool)
	Close() error
}

type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
	TTL      time.Duration
}

func NewRedisStore(cfg RedisConfig) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Host + ":" + cfg.Port,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return &RedisStore{client: client, ttl: cfg.TTL}, nil
}

func (s *RedisStore) SaveSession(ctx context.Context, w *form.Wizard) error {
	data, err := json.Marshal(w)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, "wizard:"+w.ID, data, s.ttl).Err()
}

func (s *RedisStore) GetSession(ctx context.Context, id string) (*form.Wizard, bool) {
	data, err := s.client.Get(ctx, "wizard:"+id).Bytes()
	if err != nil {
		return nil, false
	}
	var w form.Wizard
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, false
	}
	return &w, true
}

func (s *RedisStore) SaveResult(ctx context.Context, rec *SearchRecord) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, "search:"+rec.ID, data, s.ttl).Err()
}

func (s *RedisStore) GetResult(ctx context.Context, id string) (*SearchRecord, bool) {
	data, err := s.client.Get(ctx, "search:"+id).Bytes()
	if err != nil {
		return nil, false
	}
	var rec SearchRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, false
	}
	return &rec, true
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}

type memoryEntry struct {
	data      []byte
	expiresAt time.Time
}

// MemoryStore is the zero-infrastructure default. Entries expire
// lazily on read.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	ttl     time.Duration
	now     func() time.Time
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]memoryEntry),
		ttl:     ttl,
		now:     time.Now,
	}
}

func (s *MemoryStore) set(key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = memoryEntry{data: data, expiresAt: s.now().Add(s.ttl)}
	return nil
}

func (s *MemoryStore) get(key string, v any) bool {
	s.mu.RLock()
	entry, ok := s.entries[key]
	s.mu.RUnlock()
	if !ok {
		return false
	}
	if s.now().After(entry.expiresAt) {
		s.mu.Lock()
		delete(s.entries, key)
		s.mu.Unlock()
		return false
	}
	return json.Unmarshal(entry.data, v) == nil
}

func (s *MemoryStore) SaveSession(ctx context.Context, w *form.Wizard) error {
	return s.set("wizard:"+w.ID, w)
}

func (s *MemoryStore) GetSession(ctx context.Context, id string) (*form.Wizard, bool) {
	var w form.Wizard
	if !s.get("wizard:"+id, &w) {
		return nil, false
	}
	return &w, true
}

func (s *MemoryStore) SaveResult(ctx context.Context, rec *SearchRecord) error {
	return s.set("search:"+rec.ID, rec)
}

func (s *MemoryStore) GetResult(ctx context.Context, id string) (*SearchRecord, bool) {
	var rec SearchRecord
	if !s.get("search:"+id, &rec) {
		return nil, false
	}
	return &rec, true
}

func (s *MemoryStore) Close() error {
	return nil
}
