package database

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/nfrund/batepapo/internal/config"
	"github.com/surrealdb/surrealdb.go"
)

// Connection owns the SurrealDB session shared by the stores and applies the
// configured per-call timeouts. Calls are not retried.
type Connection struct {
	cfg config.Provider

	mu sync.RWMutex
	db *surrealdb.DB
}

// NewConnection creates a connection manager. Call Connect before use.
func NewConnection(cfg config.Provider) *Connection {
	return &Connection{cfg: cfg}
}

// Connect establishes the database session. It is a no-op when already connected.
func (c *Connection) Connect(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.db != nil {
		return nil
	}

	ctx, cancel := getTimeoutFromContext(ctx, c.cfg.GetDBExecuteTimeout(), ContextKeyExecuteTimeout)
	defer cancel()

	db, err := NewDB(ctx, c.cfg)
	if err != nil {
		slog.ErrorContext(ctx, "Failed to connect to database",
			"db_url", redactDBURL(c.cfg.GetDBURL()),
			"error", err)
		return err
	}
	c.db = db
	return nil
}

// DB returns the live session or ErrNotConnected.
func (c *Connection) DB() (*surrealdb.DB, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.db == nil {
		return nil, NewDBError(ErrNotConnected, "open session")
	}
	return c.db, nil
}

// Ping asks the server for its version, which is the cheapest round trip
// the driver offers.
func (c *Connection) Ping(ctx context.Context) error {
	db, err := c.DB()
	if err != nil {
		return unavailable(err, "ping", "")
	}

	ctx, cancel := c.queryContext(ctx)
	defer cancel()

	if _, err := db.Version(ctx); err != nil {
		return unavailable(err, fmt.Sprintf("ping %s", redactDBURL(c.cfg.GetDBURL())), "")
	}
	return nil
}

// Close ends the session.
func (c *Connection) Close(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.db == nil {
		return nil
	}
	err := c.db.Close(ctx)
	c.db = nil
	return err
}

func (c *Connection) queryContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return getTimeoutFromContext(ctx, c.cfg.GetDBQueryTimeout(), ContextKeyQueryTimeout)
}

func (c *Connection) executeContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return getTimeoutFromContext(ctx, c.cfg.GetDBExecuteTimeout(), ContextKeyExecuteTimeout)
}
