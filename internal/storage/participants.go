package storage

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/nfrund/batepapo/internal/domain"
)

// ParticipantStore is an in-memory implementation of domain.ParticipantRepository.
// It keeps join order so listings and sweeps are deterministic.
type ParticipantStore struct {
	mu     sync.RWMutex
	order  []string
	byName map[string]*domain.Participant
}

// NewParticipantStore creates an empty ParticipantStore.
func NewParticipantStore() *ParticipantStore {
	return &ParticipantStore{byName: make(map[string]*domain.Participant)}
}

// Create inserts a participant, failing with ErrConflict if the name is taken.
func (s *ParticipantStore) Create(ctx context.Context, p *domain.Participant) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byName[p.Name]; exists {
		return fmt.Errorf("participant %q: %w", p.Name, domain.ErrConflict)
	}
	stored := *p
	s.byName[p.Name] = &stored
	s.order = append(s.order, p.Name)
	return nil
}

// FindByName returns a copy of the named participant.
func (s *ParticipantStore) FindByName(ctx context.Context, name string) (*domain.Participant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.byName[name]
	if !ok {
		return nil, fmt.Errorf("participant %q: %w", name, domain.ErrNotFound)
	}
	found := *p
	return &found, nil
}

// List returns copies of all participants in join order.
func (s *ParticipantStore) List(ctx context.Context) ([]*domain.Participant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*domain.Participant, 0, len(s.order))
	for _, name := range s.order {
		p := *s.byName[name]
		result = append(result, &p)
	}
	return result, nil
}

// Touch refreshes the participant's LastStatus.
func (s *ParticipantStore) Touch(ctx context.Context, name string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.byName[name]
	if !ok {
		return fmt.Errorf("participant %q: %w", name, domain.ErrNotFound)
	}
	p.LastStatus = at
	return nil
}

// Delete removes the participant.
func (s *ParticipantStore) Delete(ctx context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byName[name]; !ok {
		return fmt.Errorf("participant %q: %w", name, domain.ErrNotFound)
	}
	delete(s.byName, name)
	for i, n := range s.order {
		if n == name {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}
