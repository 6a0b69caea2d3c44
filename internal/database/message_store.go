package database

import (
	"context"
	"fmt"

	"github.com/nfrund/batepapo/internal/domain"
	"github.com/surrealdb/surrealdb.go/pkg/models"
)

const messageTable = "message"

var _ domain.MessageRepository = (*MessageStore)(nil)

// messageRecord is the stored shape of a message. Column names avoid
// SurrealQL keywords such as FROM.
type messageRecord struct {
	ID        *models.RecordID `json:"id,omitempty"`
	MessageID string           `json:"message_id"`
	Sender    string           `json:"sender"`
	Recipient string           `json:"recipient"`
	Text      string           `json:"text"`
	Kind      string           `json:"kind"`
	SentTime  string           `json:"sent_time"`
	CreatedAt int64            `json:"created_at"`
}

func (r *messageRecord) toDomain() *domain.Message {
	return &domain.Message{
		ID:        r.MessageID,
		From:      r.Sender,
		To:        r.Recipient,
		Text:      r.Text,
		Kind:      domain.Kind(r.Kind),
		Time:      r.SentTime,
		CreatedAt: r.CreatedAt,
	}
}

// MessageStore implements domain.MessageRepository on SurrealDB.
// Insertion order is kept by the created_at column.
type MessageStore struct {
	conn *Connection
}

// NewMessageStore creates a MessageStore on the given connection.
func NewMessageStore(conn *Connection) *MessageStore {
	return &MessageStore{conn: conn}
}

// Append stores m as a new record keyed by its id.
func (s *MessageStore) Append(ctx context.Context, m *domain.Message) error {
	const query = "CREATE type::thing($table, $id) CONTENT $data"

	db, err := s.conn.DB()
	if err != nil {
		return unavailable(err, "append message", query)
	}
	ctx, cancel := s.conn.executeContext(ctx)
	defer cancel()

	data := map[string]any{
		"message_id": m.ID,
		"sender":     m.From,
		"recipient":  m.To,
		"text":       m.Text,
		"kind":       string(m.Kind),
		"sent_time":  m.Time,
		"created_at": m.CreatedAt,
	}
	if err := Execute(ctx, db, query, map[string]any{"table": messageTable, "id": m.ID, "data": data}); err != nil {
		return unavailable(err, "append message", query)
	}
	return nil
}

// List returns the whole log in insertion order.
func (s *MessageStore) List(ctx context.Context) ([]*domain.Message, error) {
	const query = "SELECT * FROM message ORDER BY created_at ASC"

	db, err := s.conn.DB()
	if err != nil {
		return nil, unavailable(err, "list messages", query)
	}
	ctx, cancel := s.conn.queryContext(ctx)
	defer cancel()

	recs, err := Query[messageRecord](ctx, db, query, nil)
	if err != nil {
		return nil, unavailable(err, "list messages", query)
	}

	result := make([]*domain.Message, 0, len(recs))
	for i := range recs {
		result = append(result, recs[i].toDomain())
	}
	return result, nil
}

// FindByID returns the message with the given id.
func (s *MessageStore) FindByID(ctx context.Context, id string) (*domain.Message, error) {
	const query = "SELECT * FROM message WHERE message_id = $id"

	db, err := s.conn.DB()
	if err != nil {
		return nil, unavailable(err, "find message", query)
	}
	ctx, cancel := s.conn.queryContext(ctx)
	defer cancel()

	rec, err := QueryOne[messageRecord](ctx, db, query, map[string]any{"id": id})
	if err != nil {
		return nil, unavailable(err, "find message", query)
	}
	if rec == nil {
		return nil, fmt.Errorf("message %q: %w", id, domain.ErrNotFound)
	}
	return rec.toDomain(), nil
}

// Update replaces the text and time of an existing message.
func (s *MessageStore) Update(ctx context.Context, m *domain.Message) error {
	const query = "UPDATE message SET text = $text, sent_time = $time WHERE message_id = $id RETURN AFTER"

	db, err := s.conn.DB()
	if err != nil {
		return unavailable(err, "update message", query)
	}
	ctx, cancel := s.conn.executeContext(ctx)
	defer cancel()

	recs, err := Query[messageRecord](ctx, db, query, map[string]any{"id": m.ID, "text": m.Text, "time": m.Time})
	if err != nil {
		return unavailable(err, "update message", query)
	}
	if len(recs) == 0 {
		return fmt.Errorf("message %q: %w", m.ID, domain.ErrNotFound)
	}
	return nil
}

// Delete removes the message with the given id.
func (s *MessageStore) Delete(ctx context.Context, id string) error {
	const query = "DELETE message WHERE message_id = $id RETURN BEFORE"

	db, err := s.conn.DB()
	if err != nil {
		return unavailable(err, "delete message", query)
	}
	ctx, cancel := s.conn.executeContext(ctx)
	defer cancel()

	recs, err := Query[messageRecord](ctx, db, query, map[string]any{"id": id})
	if err != nil {
		return unavailable(err, "delete message", query)
	}
	if len(recs) == 0 {
		return fmt.Errorf("message %q: %w", id, domain.ErrNotFound)
	}
	return nil
}
