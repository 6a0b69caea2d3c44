package domain

import "errors"

// Sentinel errors for the domain layer. Every failure surfaced by the room
// service wraps exactly one of these, so callers branch with errors.Is and
// the HTTP layer can map each kind to a stable status code.
var (
	ErrConflict      = errors.New("resource already exists")
	ErrNotFound      = errors.New("requested resource not found")
	ErrForbidden     = errors.New("operation not permitted for this user")
	ErrUnprocessable = errors.New("unprocessable input")
	ErrUnavailable   = errors.New("backing store unavailable")
)

// IsKnown reports whether err wraps one of the domain sentinel errors.
func IsKnown(err error) bool {
	return errors.Is(err, ErrConflict) ||
		errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrForbidden) ||
		errors.Is(err, ErrUnprocessable) ||
		errors.Is(err, ErrUnavailable)
}
