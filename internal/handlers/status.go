package handlers

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/nfrund/batepapo/internal/middleware"
)

// Heartbeat handles POST /status for the participant named by the User header.
func (h *RoomHandler) Heartbeat(c echo.Context) error {
	if err := h.room.Heartbeat(c.Request().Context(), middleware.UserFromContext(c)); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, StatusResponse{Status: "ok"})
}

// Pinger checks a backing dependency.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler reports liveness of the process and its store.
type HealthHandler struct {
	store Pinger
}

// NewHealthHandler creates a HealthHandler. store may be nil for the memory backend.
func NewHealthHandler(store Pinger) *HealthHandler {
	return &HealthHandler{store: store}
}

// Health handles GET /health.
func (h *HealthHandler) Health(c echo.Context) error {
	if h.store != nil {
		if err := h.store.Ping(c.Request().Context()); err != nil {
			return err
		}
	}
	return c.JSON(http.StatusOK, StatusResponse{Status: "ok"})
}
