package server

import (
	"log/slog"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/nfrund/batepapo/internal/config"
	"github.com/nfrund/batepapo/internal/handlers"
	appmiddleware "github.com/nfrund/batepapo/internal/middleware"
	"github.com/nfrund/batepapo/internal/room"
)

// Server holds the dependencies for the HTTP server.
type Server struct {
	E             *echo.Echo
	Cfg           config.Provider
	roomHandler   *handlers.RoomHandler
	healthHandler *handlers.HealthHandler
}

// New creates a Server for the given room. store is pinged by the health
// endpoint and may be nil.
func New(cfg config.Provider, svc *room.Service, store handlers.Pinger) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handlers.NewValidator()
	setupErrorHandling(e)

	e.Use(middleware.RequestID())
	e.Use(appmiddleware.Logger)
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogStatus:   true,
		LogLatency:  true,
		HandleError: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			appmiddleware.FromContext(c.Request().Context()).Info("Request handled",
				slog.Int("status", v.Status),
				slog.Duration("latency", v.Latency))
			return nil
		},
	}))
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())

	s := &Server{
		E:             e,
		Cfg:           cfg,
		roomHandler:   handlers.NewRoomHandler(svc),
		healthHandler: handlers.NewHealthHandler(store),
	}
	s.RegisterRoutes()
	return s
}
