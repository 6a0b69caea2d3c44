package database

import (
	"context"
	"fmt"
	"time"

	"github.com/nfrund/batepapo/internal/domain"
	"github.com/surrealdb/surrealdb.go/pkg/models"
)

const participantTable = "participant"

// var _ ensures that ParticipantStore implements the domain.ParticipantRepository interface at compile time.
var _ domain.ParticipantRepository = (*ParticipantStore)(nil)

// participantRecord is the stored shape of a participant. The record id is
// participant:<name>, so a second CREATE for the same name is rejected by
// the database itself.
type participantRecord struct {
	ID         *models.RecordID `json:"id,omitempty"`
	Name       string           `json:"name"`
	LastStatus int64            `json:"last_status"`
	JoinedAt   int64            `json:"joined_at"`
}

func (r *participantRecord) toDomain() *domain.Participant {
	return &domain.Participant{
		Name:       r.Name,
		LastStatus: time.Unix(0, r.LastStatus).UTC(),
	}
}

// ParticipantStore implements domain.ParticipantRepository on SurrealDB.
type ParticipantStore struct {
	conn *Connection
}

// NewParticipantStore creates a ParticipantStore on the given connection.
func NewParticipantStore(conn *Connection) *ParticipantStore {
	return &ParticipantStore{conn: conn}
}

// Create inserts a new participant record.
func (s *ParticipantStore) Create(ctx context.Context, p *domain.Participant) error {
	const query = "CREATE type::thing($table, $name) CONTENT $data"

	db, err := s.conn.DB()
	if err != nil {
		return unavailable(err, "create participant", query)
	}
	ctx, cancel := s.conn.executeContext(ctx)
	defer cancel()

	data := map[string]any{
		"name":        p.Name,
		"last_status": p.LastStatus.UnixNano(),
		"joined_at":   time.Now().UnixNano(),
	}
	err = Execute(ctx, db, query, map[string]any{"table": participantTable, "name": p.Name, "data": data})
	if isAlreadyExists(err) {
		return fmt.Errorf("participant %q: %w", p.Name, domain.ErrConflict)
	}
	if err != nil {
		return unavailable(err, "create participant", query)
	}
	return nil
}

// FindByName returns the named participant.
func (s *ParticipantStore) FindByName(ctx context.Context, name string) (*domain.Participant, error) {
	const query = "SELECT * FROM type::thing($table, $name)"

	db, err := s.conn.DB()
	if err != nil {
		return nil, unavailable(err, "find participant", query)
	}
	ctx, cancel := s.conn.queryContext(ctx)
	defer cancel()

	rec, err := QueryOne[participantRecord](ctx, db, query, map[string]any{"table": participantTable, "name": name})
	if err != nil {
		return nil, unavailable(err, "find participant", query)
	}
	if rec == nil {
		return nil, fmt.Errorf("participant %q: %w", name, domain.ErrNotFound)
	}
	return rec.toDomain(), nil
}

// List returns every participant in join order.
func (s *ParticipantStore) List(ctx context.Context) ([]*domain.Participant, error) {
	const query = "SELECT * FROM participant ORDER BY joined_at ASC"

	db, err := s.conn.DB()
	if err != nil {
		return nil, unavailable(err, "list participants", query)
	}
	ctx, cancel := s.conn.queryContext(ctx)
	defer cancel()

	recs, err := Query[participantRecord](ctx, db, query, nil)
	if err != nil {
		return nil, unavailable(err, "list participants", query)
	}

	result := make([]*domain.Participant, 0, len(recs))
	for i := range recs {
		result = append(result, recs[i].toDomain())
	}
	return result, nil
}

// Touch sets the last heartbeat of the named participant. A plain UPDATE on
// a record id would create it, so the statement filters the table instead.
func (s *ParticipantStore) Touch(ctx context.Context, name string, at time.Time) error {
	const query = "UPDATE participant SET last_status = $at WHERE name = $name RETURN AFTER"

	db, err := s.conn.DB()
	if err != nil {
		return unavailable(err, "touch participant", query)
	}
	ctx, cancel := s.conn.executeContext(ctx)
	defer cancel()

	recs, err := Query[participantRecord](ctx, db, query, map[string]any{"name": name, "at": at.UnixNano()})
	if err != nil {
		return unavailable(err, "touch participant", query)
	}
	if len(recs) == 0 {
		return fmt.Errorf("participant %q: %w", name, domain.ErrNotFound)
	}
	return nil
}

// Delete removes the named participant.
func (s *ParticipantStore) Delete(ctx context.Context, name string) error {
	const query = "DELETE participant WHERE name = $name RETURN BEFORE"

	db, err := s.conn.DB()
	if err != nil {
		return unavailable(err, "delete participant", query)
	}
	ctx, cancel := s.conn.executeContext(ctx)
	defer cancel()

	recs, err := Query[participantRecord](ctx, db, query, map[string]any{"name": name})
	if err != nil {
		return unavailable(err, "delete participant", query)
	}
	if len(recs) == 0 {
		return fmt.Errorf("participant %q: %w", name, domain.ErrNotFound)
	}
	return nil
}
