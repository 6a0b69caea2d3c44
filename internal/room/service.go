package room

import (
	"context"
	"errors"
	"fmt"
	"html"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
	"github.com/nfrund/batepapo/internal/domain"
	"github.com/nfrund/batepapo/internal/pubsub"
)

type sanitizer interface {
	Sanitize(s string) string
}

// Service owns the presence list and the message log of the chat room.
// It is safe for concurrent use by request handlers and the sweeper.
type Service struct {
	participants domain.ParticipantRepository
	messages     domain.MessageRepository
	publisher    pubsub.Publisher
	clock        Clock
	policy       VisibilityPolicy
	sanitizer    sanitizer
	newID        func() string
	logger       *slog.Logger

	// presenceMu serialises join, heartbeat and the sweeper's evict decision.
	presenceMu sync.Mutex
	// messageMu makes an ownership check and the mutation it guards one step.
	messageMu sync.Mutex
}

// Option is a function that configures a Service.
type Option func(*Service)

// WithClock replaces the wall clock.
func WithClock(c Clock) Option {
	return func(s *Service) {
		s.clock = c
	}
}

// WithPublisher sets the bus that receives room events.
func WithPublisher(p pubsub.Publisher) Option {
	return func(s *Service) {
		s.publisher = p
	}
}

// WithVisibilityPolicy sets the message visibility policy.
func WithVisibilityPolicy(p VisibilityPolicy) Option {
	return func(s *Service) {
		s.policy = p
	}
}

// WithIDGenerator replaces the message id generator.
func WithIDGenerator(fn func() string) Option {
	return func(s *Service) {
		s.newID = fn
	}
}

// WithLogger sets the service logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) {
		s.logger = l
	}
}

// NewService creates a room service backed by the given repositories.
func NewService(participants domain.ParticipantRepository, messages domain.MessageRepository, opts ...Option) *Service {
	svc := &Service{
		participants: participants,
		messages:     messages,
		publisher:    pubsub.NopPublisher{},
		clock:        SystemClock{},
		policy:       PolicyAddressedPublic,
		sanitizer:    bluemonday.StrictPolicy(),
		newID:        uuid.NewString,
		logger:       slog.Default().With("service", "room"),
	}

	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

// PostInput holds the fields a participant supplies when posting a message.
type PostInput struct {
	To   string      `validate:"required,notblank"`
	Text string      `validate:"required,notblank"`
	Kind domain.Kind `validate:"required,oneof=message private_message"`
}

// Join registers name as a participant and records a join status message.
//
// The two writes are not atomic. If the join message cannot be stored the
// participant stays online and the failure is only logged.
func (s *Service) Join(ctx context.Context, name string) (*domain.Participant, error) {
	name = s.clean(name)
	p := &domain.Participant{Name: name}
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("join: %w", err)
	}

	s.presenceMu.Lock()
	defer s.presenceMu.Unlock()

	_, err := s.participants.FindByName(ctx, name)
	if err == nil {
		return nil, fmt.Errorf("join %q: %w", name, domain.ErrConflict)
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, storeErr("join", err)
	}

	now := s.clock.Now()
	p.LastStatus = now
	if err := s.participants.Create(ctx, p); err != nil {
		return nil, storeErr("join", err)
	}

	if _, err := s.appendStatus(ctx, name, domain.JoinText, now); err != nil {
		s.logger.WarnContext(ctx, "Participant joined without a join message",
			"participant", name,
			"error", err)
	}

	s.logger.InfoContext(ctx, "Participant joined", "participant", name)
	s.publish(ctx, pubsub.ParticipantJoined, pubsub.RoomEvent{Participant: name, At: now})
	return p, nil
}

// Participants returns everyone currently in the room, in join order.
func (s *Service) Participants(ctx context.Context) ([]*domain.Participant, error) {
	list, err := s.participants.List(ctx)
	if err != nil {
		return nil, storeErr("list participants", err)
	}
	return list, nil
}

// Heartbeat refreshes the participant's presence.
func (s *Service) Heartbeat(ctx context.Context, name string) error {
	name = s.clean(name)
	if name == "" {
		return fmt.Errorf("heartbeat: user is required: %w", domain.ErrNotFound)
	}

	s.presenceMu.Lock()
	defer s.presenceMu.Unlock()

	if err := s.participants.Touch(ctx, name, s.clock.Now()); err != nil {
		return storeErr("heartbeat", err)
	}
	return nil
}

// IsOnline reports whether name is currently in the room.
func (s *Service) IsOnline(ctx context.Context, name string) (bool, error) {
	name = s.clean(name)
	_, err := s.participants.FindByName(ctx, name)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, domain.ErrNotFound):
		return false, nil
	}
	return false, storeErr("presence lookup", err)
}

// PostMessage appends a message authored by user. The sender must be online.
func (s *Service) PostMessage(ctx context.Context, user string, in PostInput) (*domain.Message, error) {
	in.To = s.clean(in.To)
	in.Text = s.clean(in.Text)
	if err := domain.Validate(in); err != nil {
		return nil, fmt.Errorf("post message: %w", err)
	}

	user = s.clean(user)
	if user == "" {
		return nil, fmt.Errorf("post message: user is required: %w", domain.ErrUnprocessable)
	}
	online, err := s.IsOnline(ctx, user)
	if err != nil {
		return nil, err
	}
	if !online {
		return nil, fmt.Errorf("post message: %q is not in the room: %w", user, domain.ErrUnprocessable)
	}

	now := s.clock.Now()
	m := s.newMessage(user, in.To, in.Text, in.Kind, now)
	if err := s.messages.Append(ctx, m); err != nil {
		return nil, storeErr("post message", err)
	}

	s.publish(ctx, pubsub.MessagePosted, pubsub.RoomEvent{Participant: user, MessageID: m.ID, At: now})
	return m, nil
}

// Messages returns the messages viewer may read, truncated to the last
// *limit entries when limit is set.
func (s *Service) Messages(ctx context.Context, viewer string, limit *int) ([]*domain.Message, error) {
	viewer = s.clean(viewer)
	if viewer == "" {
		return nil, fmt.Errorf("list messages: user is required: %w", domain.ErrUnprocessable)
	}

	all, err := s.messages.List(ctx)
	if err != nil {
		return nil, storeErr("list messages", err)
	}
	return Last(VisibleTo(all, viewer, s.policy), limit), nil
}

// Message returns a single message by id.
func (s *Service) Message(ctx context.Context, id string) (*domain.Message, error) {
	m, err := s.messages.FindByID(ctx, id)
	if err != nil {
		return nil, storeErr("find message", err)
	}
	return m, nil
}

// EditMessage replaces the text of a message owned by user and refreshes its time.
func (s *Service) EditMessage(ctx context.Context, id, text, user string) (*domain.Message, error) {
	text = s.clean(text)
	if text == "" {
		return nil, fmt.Errorf("edit message: text is required: %w", domain.ErrUnprocessable)
	}

	s.messageMu.Lock()
	defer s.messageMu.Unlock()

	m, err := s.ownedMessage(ctx, "edit message", id, user)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	m.Text = text
	m.Time = now.Format(domain.TimeLayout)
	if err := s.messages.Update(ctx, m); err != nil {
		return nil, storeErr("edit message", err)
	}

	s.publish(ctx, pubsub.MessageEdited, pubsub.RoomEvent{Participant: user, MessageID: id, At: now})
	return m, nil
}

// DeleteMessage removes a message owned by user.
func (s *Service) DeleteMessage(ctx context.Context, id, user string) error {
	s.messageMu.Lock()
	defer s.messageMu.Unlock()

	if _, err := s.ownedMessage(ctx, "delete message", id, user); err != nil {
		return err
	}
	if err := s.messages.Delete(ctx, id); err != nil {
		return storeErr("delete message", err)
	}

	s.publish(ctx, pubsub.MessageDeleted, pubsub.RoomEvent{Participant: user, MessageID: id, At: s.clock.Now()})
	return nil
}

// evictIfStale removes name when it has been idle for longer than threshold.
// The idle check runs under presenceMu, so a heartbeat that got the lock
// first keeps the participant.
func (s *Service) evictIfStale(ctx context.Context, name string, threshold time.Duration) (bool, error) {
	s.presenceMu.Lock()
	defer s.presenceMu.Unlock()

	p, err := s.participants.FindByName(ctx, name)
	if errors.Is(err, domain.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, storeErr("sweep", err)
	}

	now := s.clock.Now()
	if p.IdleFor(now) <= threshold {
		return false, nil
	}

	if err := s.participants.Delete(ctx, name); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return false, nil
		}
		return false, storeErr("sweep", err)
	}
	if _, err := s.appendStatus(ctx, name, domain.LeaveText, now); err != nil {
		return true, fmt.Errorf("record departure of %q: %w", name, err)
	}

	s.publish(ctx, pubsub.ParticipantLeft, pubsub.RoomEvent{Participant: name, At: now})
	return true, nil
}

// ownedMessage loads id and checks that user may change it.
// Status messages belong to the room and are never editable.
func (s *Service) ownedMessage(ctx context.Context, op, id, user string) (*domain.Message, error) {
	m, err := s.messages.FindByID(ctx, id)
	if err != nil {
		return nil, storeErr(op, err)
	}
	if m.Kind == domain.KindStatus {
		return nil, fmt.Errorf("%s: status messages cannot be changed: %w", op, domain.ErrForbidden)
	}
	if !m.OwnedBy(s.clean(user)) {
		return nil, fmt.Errorf("%s: %q does not own message %s: %w", op, user, id, domain.ErrForbidden)
	}
	return m, nil
}

func (s *Service) appendStatus(ctx context.Context, name, text string, now time.Time) (*domain.Message, error) {
	m := s.newMessage(name, domain.BroadcastRecipient, text, domain.KindStatus, now)
	if err := s.messages.Append(ctx, m); err != nil {
		return nil, storeErr("append status", err)
	}
	return m, nil
}

func (s *Service) newMessage(from, to, text string, kind domain.Kind, now time.Time) *domain.Message {
	return &domain.Message{
		ID:        s.newID(),
		From:      from,
		To:        to,
		Text:      text,
		Kind:      kind,
		Time:      now.Format(domain.TimeLayout),
		CreatedAt: now.UnixNano(),
	}
}

// clean strips markup and surrounding whitespace from user-supplied text.
// The sanitizer escapes entities; they are decoded again so plain text such
// as "O'Brien" or "a & b" is stored as typed. Every name, whether from a body
// or the User header, goes through here so they compare equal.
func (s *Service) clean(v string) string {
	return strings.TrimSpace(html.UnescapeString(s.sanitizer.Sanitize(v)))
}

// publish is best effort: a bus failure never fails the room operation.
func (s *Service) publish(ctx context.Context, event pubsub.Event[pubsub.RoomEvent], payload pubsub.RoomEvent) {
	if err := event.Publish(ctx, s.publisher, payload.Participant, payload); err != nil {
		s.logger.WarnContext(ctx, "Failed to publish room event",
			"topic", event.Name(),
			"participant", payload.Participant,
			"error", err)
	}
}

// storeErr keeps domain errors as they are and reports anything else as
// the backing store being unavailable.
func storeErr(op string, err error) error {
	if domain.IsKnown(err) {
		return fmt.Errorf("%s: %w", op, err)
	}
	return fmt.Errorf("%s: %w: %v", op, domain.ErrUnavailable, err)
}
