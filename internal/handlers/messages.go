package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/nfrund/batepapo/internal/domain"
	"github.com/nfrund/batepapo/internal/middleware"
	"github.com/nfrund/batepapo/internal/room"
)

// PostMessage handles POST /messages. The sender comes from the User header.
func (h *RoomHandler) PostMessage(c echo.Context) error {
	var req PostMessageRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	m, err := h.room.PostMessage(c.Request().Context(), middleware.UserFromContext(c), room.PostInput{
		To:   req.To,
		Text: req.Text,
		Kind: req.Type,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, m)
}

// ListMessages handles GET /messages?limit=N.
func (h *RoomHandler) ListMessages(c echo.Context) error {
	limit, err := parseLimit(c.QueryParam("limit"))
	if err != nil {
		return err
	}

	messages, err := h.room.Messages(c.Request().Context(), middleware.UserFromContext(c), limit)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, messages)
}

// EditMessage handles PUT /messages/:id.
func (h *RoomHandler) EditMessage(c echo.Context) error {
	var req EditMessageRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	m, err := h.room.EditMessage(c.Request().Context(), c.Param("id"), req.Text, middleware.UserFromContext(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, m)
}

// DeleteMessage handles DELETE /messages/:id.
func (h *RoomHandler) DeleteMessage(c echo.Context) error {
	if err := h.room.DeleteMessage(c.Request().Context(), c.Param("id"), middleware.UserFromContext(c)); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, StatusResponse{Status: "deleted"})
}

// parseLimit reads the optional limit query parameter. Absent means no limit.
func parseLimit(raw string) (*int, error) {
	if raw == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: limit must be an integer", domain.ErrUnprocessable)
	}
	return &n, nil
}
