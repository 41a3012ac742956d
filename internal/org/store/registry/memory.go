package registry

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"orghub/internal/org/models"
	"orghub/pkg/platform/sentinel"
)

// InMemory keeps the registry in a map. It mirrors the Postgres store's
// contract so service tests run without infrastructure.
type InMemory struct {
	mu   sync.RWMutex
	orgs map[uuid.UUID]models.Organization
}

func NewInMemory() *InMemory {
	return &InMemory{orgs: make(map[uuid.UUID]models.Organization)}
}

func (s *InMemory) CreateIfNameAvailable(_ context.Context, org *models.Organization) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.orgs {
		if existing.NameNormalized == org.NameNormalized {
			return sentinel.ErrAlreadyUsed
		}
	}
	s.orgs[org.ID] = *org
	return nil
}

func (s *InMemory) FindByName(_ context.Context, name string) (*models.Organization, error) {
	normalized := models.NormalizeName(name)
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, org := range s.orgs {
		if org.NameNormalized == normalized {
			found := org
			return &found, nil
		}
	}
	return nil, sentinel.ErrNotFound
}

func (s *InMemory) FindByEmail(_ context.Context, email string) (*models.Organization, error) {
	normalized := models.NormalizeEmail(email)
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, org := range s.orgs {
		if org.Email == normalized {
			found := org
			return &found, nil
		}
	}
	return nil, sentinel.ErrNotFound
}

// Update replaces the whole record. The new normalized name must not belong
// to another record.
func (s *InMemory) Update(_ context.Context, org *models.Organization) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.orgs[org.ID]; !ok {
		return sentinel.ErrNotFound
	}
	for id, existing := range s.orgs {
		if id != org.ID && existing.NameNormalized == org.NameNormalized {
			return sentinel.ErrAlreadyUsed
		}
	}
	s.orgs[org.ID] = *org
	return nil
}

func (s *InMemory) Delete(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.orgs[id]; !ok {
		return sentinel.ErrNotFound
	}
	delete(s.orgs, id)
	return nil
}

func (s *InMemory) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.orgs), nil
}
