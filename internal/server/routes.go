package server

import (
	"github.com/nfrund/batepapo/internal/middleware"
)

// RegisterRoutes sets up all the application routes.
func (s *Server) RegisterRoutes() {
	s.E.GET("/health", s.healthHandler.Health)

	api := s.E.Group("", middleware.RateLimiter(s.Cfg.GetRateLimitPerMinute()), middleware.Identity)

	api.POST("/participants", s.roomHandler.Join)
	api.GET("/participants", s.roomHandler.ListParticipants)

	api.POST("/messages", s.roomHandler.PostMessage)
	api.GET("/messages", s.roomHandler.ListMessages)
	api.PUT("/messages/:id", s.roomHandler.EditMessage)
	api.DELETE("/messages/:id", s.roomHandler.DeleteMessage)

	api.POST("/status", s.roomHandler.Heartbeat)
}
