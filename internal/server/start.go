package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
)

// Start runs the HTTP server on the configured address and blocks until it
// stops. A clean Shutdown is not an error.
func (s *Server) Start() error {
	addr := s.Cfg.GetServerAddr()
	slog.Info("HTTP server listening", "addr", addr)

	if err := s.E.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops accepting requests and waits for in-flight ones until ctx ends.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.E.Shutdown(ctx)
}
