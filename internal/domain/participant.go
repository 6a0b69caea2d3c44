package domain

import (
	"context"
	"time"
)

// Participant is a chat user currently present in the room.
// The name is the unique key; LastStatus is refreshed by every heartbeat.
type Participant struct {
	Name       string    `json:"name" validate:"required,notblank"`
	LastStatus time.Time `json:"lastStatus"`
}

// Validate runs validation checks on the Participant using the defined tags.
func (p *Participant) Validate() error {
	return Validate(p)
}

// IdleFor returns how long the participant has gone without a heartbeat.
func (p *Participant) IdleFor(now time.Time) time.Duration {
	return now.Sub(p.LastStatus)
}

// ParticipantRepository defines the contract for participant storage.
// Implementations return ErrConflict and ErrNotFound for the cases named
// below and wrap any other failure with ErrUnavailable.
type ParticipantRepository interface {
	// Create inserts a new participant. Returns ErrConflict if the name is taken.
	Create(ctx context.Context, p *Participant) error

	// FindByName returns the participant or ErrNotFound.
	FindByName(ctx context.Context, name string) (*Participant, error)

	// List returns every participant in join order.
	List(ctx context.Context) ([]*Participant, error)

	// Touch sets LastStatus for the named participant. Returns ErrNotFound if absent.
	Touch(ctx context.Context, name string, at time.Time) error

	// Delete removes the named participant. Returns ErrNotFound if absent.
	Delete(ctx context.Context, name string) error
}
