package database

import (
	"context"
	"testing"

	"github.com/nfrund/batepapo/internal/testutils"
	"github.com/stretchr/testify/require"
)

// setupTestConnection connects to the test database and wipes the chat tables
// before and after the test. It skips when no database is configured.
func setupTestConnection(t *testing.T) *Connection {
	t.Helper()

	cfg := testutils.SurrealConfigForTests(t)

	conn := NewConnection(cfg)
	require.NoError(t, conn.Connect(context.Background()), "failed to connect to test database")

	wipe := func() {
		db, err := conn.DB()
		if err != nil {
			return
		}
		_ = Execute(context.Background(), db, "DELETE participant; DELETE message;", nil)
	}
	wipe()

	t.Cleanup(func() {
		wipe()
		_ = conn.Close(context.Background())
	})
	return conn
}
