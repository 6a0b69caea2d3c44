package database

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/nfrund/batepapo/internal/config"
	"github.com/nfrund/batepapo/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDBError(t *testing.T) {
	base := errors.New("socket closed")
	err := NewDBError(base, "list messages").WithQuery("SELECT * FROM message")

	assert.Equal(t, "list messages (query: SELECT * FROM message): socket closed", err.Error())
	assert.ErrorIs(t, err, base)

	wrapped := WrapError(err, "room")
	var dbErr *DBError
	require.ErrorAs(t, wrapped, &dbErr)
	assert.Contains(t, wrapped.Error(), "room: list messages")

	assert.Nil(t, WrapError(nil, "noop"))
}

func TestUnavailable(t *testing.T) {
	err := unavailable(errors.New("i/o timeout"), "find participant", "SELECT 1")

	assert.ErrorIs(t, err, domain.ErrUnavailable)
	assert.True(t, domain.IsKnown(err))

	var dbErr *DBError
	require.ErrorAs(t, err, &dbErr)
	assert.Equal(t, "SELECT 1", dbErr.query)

	t.Run("extends an existing DBError", func(t *testing.T) {
		err := unavailable(NewDBError(ErrNotConnected, "open session"), "list messages", "SELECT * FROM message")

		assert.ErrorIs(t, err, domain.ErrUnavailable)
		assert.ErrorIs(t, err, ErrNotConnected)
		assert.Equal(t,
			"list messages: open session (query: SELECT * FROM message): backing store unavailable: database not connected",
			err.Error())

		var outer *DBError
		require.ErrorAs(t, err, &outer)
		var inner *DBError
		assert.False(t, errors.As(outer.err, &inner), "DBError must not be nested")
	})
}

func TestIsAlreadyExists(t *testing.T) {
	assert.True(t, isAlreadyExists(errors.New("Database record `participant:alice` already exists")))
	assert.False(t, isAlreadyExists(errors.New("connection refused")))
	assert.False(t, isAlreadyExists(nil))
}

func TestHasLimitClause(t *testing.T) {
	assert.True(t, hasLimitClause("SELECT * FROM message LIMIT 5"))
	assert.True(t, hasLimitClause("select * from message limit 1"))
	assert.False(t, hasLimitClause("SELECT * FROM message WHERE text = 'unlimited'"))
}

func TestGetTimeoutFromContext(t *testing.T) {
	ctx, cancel := getTimeoutFromContext(context.Background(), time.Hour, ContextKeyQueryTimeout)
	defer cancel()
	deadline, ok := ctx.Deadline()
	require.True(t, ok)
	assert.WithinDuration(t, time.Now().Add(time.Hour), deadline, time.Minute)

	override := WithQueryTimeout(context.Background(), time.Second)
	ctx2, cancel2 := getTimeoutFromContext(override, time.Hour, ContextKeyQueryTimeout)
	defer cancel2()
	deadline, ok = ctx2.Deadline()
	require.True(t, ok)
	assert.WithinDuration(t, time.Now().Add(time.Second), deadline, 500*time.Millisecond)
}

func TestStores_NotConnected(t *testing.T) {
	ctx := context.Background()
	conn := NewConnection(&config.Config{
		DBQueryTimeout:   time.Second,
		DBExecuteTimeout: time.Second,
	})

	participants := NewParticipantStore(conn)
	messages := NewMessageStore(conn)

	_, err := participants.FindByName(ctx, "Alice")
	assert.ErrorIs(t, err, domain.ErrUnavailable)
	assert.ErrorIs(t, err, ErrNotConnected)

	_, err = messages.List(ctx)
	assert.ErrorIs(t, err, domain.ErrUnavailable)

	assert.ErrorIs(t, conn.Ping(ctx), domain.ErrUnavailable)
	assert.NoError(t, conn.Close(ctx))
}
