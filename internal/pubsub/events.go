package pubsub

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// Event[T] binds a topic name to the payload type published on it.
type Event[T any] struct {
	topicName string
}

// NewEvent creates a typed event for the given topic.
func NewEvent[T any](name string) Event[T] {
	return Event[T]{topicName: name}
}

// Name returns the topic name.
func (e Event[T]) Name() string {
	return e.topicName
}

// Publish encodes payload as JSON and publishes it on the event's topic.
func (e Event[T]) Publish(ctx context.Context, pub Publisher, userID string, payload T) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal %s payload: %w", e.topicName, err)
	}
	return pub.Publish(ctx, Message{Topic: e.topicName, UserID: userID, Payload: data})
}

// Decode unmarshals a received message into the event's payload type.
func (e Event[T]) Decode(msg Message) (T, error) {
	var payload T
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		return payload, fmt.Errorf("unmarshal %s payload: %w", e.topicName, err)
	}
	return payload, nil
}

// RoomEvent describes a change in the chat room.
type RoomEvent struct {
	Participant string    `json:"participant"`
	MessageID   string    `json:"message_id,omitempty"`
	At          time.Time `json:"at"`
}

// Room topics.
var (
	ParticipantJoined = NewEvent[RoomEvent]("room.participant.joined")
	ParticipantLeft   = NewEvent[RoomEvent]("room.participant.left")
	MessagePosted     = NewEvent[RoomEvent]("room.message.posted")
	MessageEdited     = NewEvent[RoomEvent]("room.message.edited")
	MessageDeleted    = NewEvent[RoomEvent]("room.message.deleted")
)

// RoomEvents lists every room topic, in lifecycle order.
var RoomEvents = []Event[RoomEvent]{
	ParticipantJoined,
	ParticipantLeft,
	MessagePosted,
	MessageEdited,
	MessageDeleted,
}
