package domain

import (
	"context"
	"strings"

	"golang.org/x/text/cases"
)

// Kind classifies a chat message. It travels as the "type" field on the wire.
type Kind string

const (
	KindMessage        Kind = "message"
	KindPrivateMessage Kind = "private_message"
	KindStatus         Kind = "status"
)

const (
	// BroadcastRecipient is the reserved addressee meaning "everyone".
	// Comparison is case-insensitive, so "todos" is accepted as well.
	BroadcastRecipient = "Todos"

	JoinText  = "entra na sala..."
	LeaveText = "sai da sala..."

	// TimeLayout formats Message.Time as HH:mm:ss.
	TimeLayout = "15:04:05"
)

var broadcastKey = cases.Fold().String(BroadcastRecipient)

// Message is a single entry in the room log.
type Message struct {
	ID   string `json:"id"`
	From string `json:"from" validate:"required,notblank"`
	To   string `json:"to" validate:"required,notblank"`
	Text string `json:"text" validate:"required,notblank"`
	Kind Kind   `json:"type" validate:"required,oneof=message private_message status"`
	Time string `json:"time"`

	// CreatedAt is the insertion time in unix nanoseconds. It orders the log
	// and is not part of the public representation.
	CreatedAt int64 `json:"-"`
}

// Validate runs validation checks on the Message using the defined tags.
func (m *Message) Validate() error {
	return Validate(m)
}

// IsBroadcast reports whether the message is addressed to everyone.
func (m *Message) IsBroadcast() bool {
	return IsBroadcastRecipient(m.To)
}

// OwnedBy reports whether user authored the message.
func (m *Message) OwnedBy(user string) bool {
	return user != "" && m.From == user
}

// IsBroadcastRecipient reports whether to names the broadcast sentinel.
func IsBroadcastRecipient(to string) bool {
	// A Caser is stateful, so each call gets its own.
	return cases.Fold().String(strings.TrimSpace(to)) == broadcastKey
}

// MessageRepository defines the contract for the message log.
// Implementations return ErrNotFound for missing ids and wrap any other
// failure with ErrUnavailable.
type MessageRepository interface {
	// Append stores a fully populated message at the end of the log.
	Append(ctx context.Context, m *Message) error

	// List returns the whole log in insertion order.
	List(ctx context.Context) ([]*Message, error)

	// FindByID returns the message or ErrNotFound.
	FindByID(ctx context.Context, id string) (*Message, error)

	// Update replaces the text and time of an existing message.
	Update(ctx context.Context, m *Message) error

	// Delete removes the message. Returns ErrNotFound if absent.
	Delete(ctx context.Context, id string) error
}
