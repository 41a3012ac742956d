package tenantcoll

import (
	"context"
	"sort"
	"sync"
)

// Document is an opaque tenant payload. The registry only moves documents
// between collections; it never inspects them.
type Document []byte

// InMemory keeps tenant collections as named document slices. It mirrors the
// Postgres adapter's contract (idempotent create/drop, destination-clearing
// copy) so service tests can observe migration effects directly.
type InMemory struct {
	mu          sync.RWMutex
	collections map[string][]Document
}

func NewInMemory() *InMemory {
	return &InMemory{collections: make(map[string][]Document)}
}

func (s *InMemory) Exists(_ context.Context, name string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.collections[name]
	return ok, nil
}

// Create provisions an empty collection. Creating an existing collection is
// a no-op so partial retries stay safe.
func (s *InMemory) Create(_ context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.collections[name]; !ok {
		s.collections[name] = nil
	}
	return nil
}

// Drop removes a collection and its documents. Dropping a missing collection
// is a no-op.
func (s *InMemory) Drop(_ context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.collections, name)
	return nil
}

// CopyAll clears the destination, then copies every document from the source.
// Clearing first tolerates a previous partial migration.
func (s *InMemory) CopyAll(_ context.Context, from, to string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	src := s.collections[from]
	dst := make([]Document, len(src))
	copy(dst, src)
	s.collections[to] = dst
	return nil
}

func (s *InMemory) List(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	names := make([]string, 0, len(s.collections))
	for name := range s.collections {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// Insert appends a document to a collection. Used to seed tenant data.
func (s *InMemory) Insert(_ context.Context, name string, doc Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.collections[name] = append(s.collections[name], doc)
	return nil
}

// Documents returns a copy of a collection's contents.
func (s *InMemory) Documents(_ context.Context, name string) ([]Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	src := s.collections[name]
	out := make([]Document, len(src))
	copy(out, src)
	return out, nil
}
