package lockout

import (
	"context"
	"sync"
	"time"
)

type failureRecord struct {
	count       int
	windowEnds  time.Time
	lockedUntil time.Time
}

// InMemoryStore tracks failures per identifier for single-instance
// deployments and tests. The Redis store is the distributed equivalent.
type InMemoryStore struct {
	mu      sync.Mutex
	records map[string]*failureRecord
	now     func() time.Time
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		records: make(map[string]*failureRecord),
		now:     time.Now,
	}
}

// WithClock overrides the time source. Test hook.
func (s *InMemoryStore) WithClock(now func() time.Time) *InMemoryStore {
	s.now = now
	return s
}

func (s *InMemoryStore) RecordFailure(_ context.Context, key string, window time.Duration) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	rec, ok := s.records[key]
	if !ok || now.After(rec.windowEnds) {
		rec = &failureRecord{windowEnds: now.Add(window)}
		s.records[key] = rec
	}
	rec.count++
	return rec.count, nil
}

func (s *InMemoryStore) Lock(_ context.Context, key string, duration time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.records[key]
	if !ok {
		rec = &failureRecord{}
		s.records[key] = rec
	}
	rec.lockedUntil = s.now().Add(duration)
	return nil
}

func (s *InMemoryStore) IsLocked(_ context.Context, key string) (bool, time.Duration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.records[key]
	if !ok {
		return false, 0, nil
	}
	remaining := rec.lockedUntil.Sub(s.now())
	if remaining <= 0 {
		return false, 0, nil
	}
	return true, remaining, nil
}

func (s *InMemoryStore) Clear(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.records, key)
	return nil
}
