package database

import (
	"errors"
	"fmt"
	"strings"

	"github.com/nfrund/batepapo/internal/domain"
)

// ErrNotConnected is returned when a store is used without a live connection.
var ErrNotConnected = errors.New("database not connected")

// DBError represents a database error with additional context.
type DBError struct {
	// The underlying error that was returned by the database driver.
	err error

	// Additional context about where the error occurred.
	context string

	// The query that was being executed when the error occurred.
	query string
}

// NewDBError creates a new DBError with the given error and context.
// The context should describe what operation was being performed when the error occurred.
func NewDBError(err error, context string) *DBError {
	return &DBError{
		err:     err,
		context: context,
	}
}

// WithQuery adds query information to the error.
func (e *DBError) WithQuery(query string) *DBError {
	e.query = query
	return e
}

// Error returns the error message.
func (e *DBError) Error() string {
	msg := e.context
	if e.query != "" {
		msg = fmt.Sprintf("%s (query: %s)", msg, e.query)
	}
	if e.err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.err)
	}
	return msg
}

// Unwrap returns the underlying error.
func (e *DBError) Unwrap() error {
	return e.err
}

// WrapError wraps an error with additional context.
// If the error is already a DBError, it adds the context to the existing error.
func WrapError(err error, context string) error {
	if err == nil {
		return nil
	}

	var dbErr *DBError
	if errors.As(err, &dbErr) {
		if dbErr.context != "" {
			context = fmt.Sprintf("%s: %s", context, dbErr.context)
		}
		dbErr.context = context
		return dbErr
	}
	return NewDBError(err, context)
}

// unavailable reports a driver failure as domain.ErrUnavailable, keeping the
// driver error and the query for logs.
// A DBError already in the chain, such as the one from Connection.DB, is
// extended rather than nested.
func unavailable(err error, context, query string) error {
	var dbErr *DBError
	if !errors.As(WrapError(err, context), &dbErr) {
		return fmt.Errorf("%s: %w: %w", context, domain.ErrUnavailable, err)
	}
	if !errors.Is(dbErr.err, domain.ErrUnavailable) {
		dbErr.err = fmt.Errorf("%w: %w", domain.ErrUnavailable, dbErr.err)
	}
	if query != "" {
		dbErr.query = query
	}
	return dbErr
}

// isAlreadyExists recognises SurrealDB's duplicate record id failure.
func isAlreadyExists(err error) bool {
	return err != nil && strings.Contains(err.Error(), "already exists")
}
