package audit

import (
	"context"
	"sync"
)

// InMemory is an append-only in-memory event store used in tests and as a
// default when no durable sink is configured.
type InMemory struct {
	mu     sync.RWMutex
	events []Event
}

func NewInMemory() *InMemory {
	return &InMemory{}
}

func (s *InMemory) Append(_ context.Context, event Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
	return nil
}

func (s *InMemory) ListByOrganization(_ context.Context, name string) ([]Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []Event
	for _, e := range s.events {
		if e.OrganizationName == name {
			out = append(out, e)
		}
	}
	return out, nil
}

// All returns every recorded event in append order.
func (s *InMemory) All() []Event {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Event, len(s.events))
	copy(out, s.events)
	return out
}
