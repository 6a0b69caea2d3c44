package storage

import (
	"context"
	"fmt"
	"sync"

	"github.com/nfrund/batepapo/internal/domain"
)

// MessageStore is an in-memory implementation of domain.MessageRepository.
type MessageStore struct {
	mu       sync.RWMutex
	messages []*domain.Message
}

// NewMessageStore creates an empty MessageStore.
func NewMessageStore() *MessageStore {
	return &MessageStore{}
}

// Append stores a copy of m at the end of the log.
func (s *MessageStore) Append(ctx context.Context, m *domain.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := *m
	s.messages = append(s.messages, &stored)
	return nil
}

// List returns copies of every message in insertion order.
func (s *MessageStore) List(ctx context.Context) ([]*domain.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*domain.Message, len(s.messages))
	for i, m := range s.messages {
		c := *m
		result[i] = &c
	}
	return result, nil
}

// FindByID returns a copy of the message with the given id.
func (s *MessageStore) FindByID(ctx context.Context, id string) (*domain.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if i := s.indexOf(id); i >= 0 {
		found := *s.messages[i]
		return &found, nil
	}
	return nil, fmt.Errorf("message %q: %w", id, domain.ErrNotFound)
}

// Update replaces the text and time of the stored message, keeping its position.
func (s *MessageStore) Update(ctx context.Context, m *domain.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(m.ID)
	if i < 0 {
		return fmt.Errorf("message %q: %w", m.ID, domain.ErrNotFound)
	}
	s.messages[i].Text = m.Text
	s.messages[i].Time = m.Time
	return nil
}

// Delete removes the message from the log.
func (s *MessageStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return fmt.Errorf("message %q: %w", id, domain.ErrNotFound)
	}
	s.messages = append(s.messages[:i], s.messages[i+1:]...)
	return nil
}

// indexOf must be called with the lock held.
func (s *MessageStore) indexOf(id string) int {
	for i, m := range s.messages {
		if m.ID == id {
			return i
		}
	}
	return -1
}
