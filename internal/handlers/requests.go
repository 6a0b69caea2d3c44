package handlers

import (
	"github.com/go-playground/validator/v10"
	"github.com/nfrund/batepapo/internal/domain"
)

// CustomValidator wraps the go-playground/validator library to implement Echo's Validator interface.
type CustomValidator struct {
	validator *validator.Validate
}

// NewValidator creates a new CustomValidator sharing the domain's rules and custom tags.
func NewValidator() *CustomValidator {
	return &CustomValidator{validator: domain.Validator()}
}

// Validate implements the echo.Validator interface. Failures wrap
// domain.ErrUnprocessable so they render as 422.
func (cv *CustomValidator) Validate(i interface{}) error {
	return domain.Validate(i)
}

// JoinRequest is the body of POST /participants.
type JoinRequest struct {
	Name string `json:"name" validate:"required,notblank"`
}

// PostMessageRequest is the body of POST /messages.
type PostMessageRequest struct {
	To   string      `json:"to" validate:"required,notblank"`
	Text string      `json:"text" validate:"required,notblank"`
	Type domain.Kind `json:"type" validate:"required,oneof=message private_message"`
}

// EditMessageRequest is the body of PUT /messages/:id.
type EditMessageRequest struct {
	Text string `json:"text" validate:"required,notblank"`
}
