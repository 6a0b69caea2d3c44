package handlers

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/nfrund/batepapo/internal/domain"
	"github.com/nfrund/batepapo/internal/room"
)

// RoomHandler serves the chat room API.
type RoomHandler struct {
	room *room.Service
}

// NewRoomHandler creates a RoomHandler on the given room.
func NewRoomHandler(svc *room.Service) *RoomHandler {
	return &RoomHandler{room: svc}
}

// bindAndValidate decodes the JSON body into req and validates it.
func bindAndValidate(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return fmt.Errorf("%w: malformed request body", domain.ErrUnprocessable)
	}
	return c.Validate(req)
}

// Join handles POST /participants.
func (h *RoomHandler) Join(c echo.Context) error {
	var req JoinRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	p, err := h.room.Join(c.Request().Context(), req.Name)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, p)
}

// ListParticipants handles GET /participants.
func (h *RoomHandler) ListParticipants(c echo.Context) error {
	list, err := h.room.Participants(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, list)
}
