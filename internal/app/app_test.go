package app

import (
	"context"
	"testing"
	"time"

	"github.com/nfrund/batepapo/internal/config"
	"github.com/nfrund/batepapo/internal/database"
	"github.com/nfrund/batepapo/internal/storage"
	"github.com/nfrund/batepapo/internal/testutils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func memoryConfig() *config.Config {
	return &config.Config{
		ServerAddr:         ":0",
		StoreBackend:       config.BackendMemory,
		SweepInterval:      time.Second,
		StaleThreshold:     time.Second,
		RateLimitPerMinute: 60,
	}
}

func TestNew_MemoryBackend(t *testing.T) {
	a, err := New(memoryConfig())
	require.NoError(t, err)

	require.NotNil(t, a.Room)
	require.NotNil(t, a.Sweeper)
	require.NotNil(t, a.Server)
	require.NotNil(t, a.Bus)
	assert.Nil(t, a.repos.Conn)
	assert.IsType(t, &storage.ParticipantStore{}, a.repos.Participants)

	ctx := context.Background()
	_, err = a.Room.Join(ctx, "Alice")
	require.NoError(t, err)

	online, err := a.Room.IsOnline(ctx, "Alice")
	require.NoError(t, err)
	assert.True(t, online)

	shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	assert.NoError(t, a.Shutdown(shutdownCtx))
}

func TestNew_InvalidVisibilityPolicy(t *testing.T) {
	cfg := memoryConfig()
	cfg.VisibilityPolicy = "everyone"

	_, err := New(cfg)
	assert.Error(t, err)
}

func TestNew_UnknownBackend(t *testing.T) {
	cfg := memoryConfig()
	cfg.StoreBackend = "redis"

	_, err := New(cfg)
	assert.Error(t, err)
}

func TestNew_SurrealBackend(t *testing.T) {
	cfg := testutils.SurrealConfigForTests(t)
	cfg.ServerAddr = ":0"

	a, err := New(cfg)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	defer func() { assert.NoError(t, a.Shutdown(ctx)) }()

	require.NotNil(t, a.repos.Conn)
	assert.IsType(t, &database.ParticipantStore{}, a.repos.Participants)
	assert.NoError(t, a.repos.Conn.Ping(ctx))
}
