package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/nfrund/batepapo/internal/config"
	"github.com/nfrund/batepapo/internal/database"
	"github.com/nfrund/batepapo/internal/domain"
	"github.com/nfrund/batepapo/internal/handlers"
	"github.com/nfrund/batepapo/internal/pubsub"
	"github.com/nfrund/batepapo/internal/room"
	"github.com/nfrund/batepapo/internal/server"
	"github.com/nfrund/batepapo/internal/storage"
	"github.com/samber/do/v2"
)

// Repositories groups the storage backend selected by configuration.
type Repositories struct {
	Participants domain.ParticipantRepository
	Messages     domain.MessageRepository

	// Conn is set for the surreal backend only.
	Conn *database.Connection
}

// Application holds the wired services of a running chat room.
type Application struct {
	Config  config.Provider
	Bus     *pubsub.WatermillBridge
	Room    *room.Service
	Sweeper *room.Sweeper
	Server  *server.Server

	repos *Repositories
}

// New wires the application from cfg. Nothing is started.
func New(cfg config.Provider) (*Application, error) {
	// Checked up front so a bad setting never leaves a database session open.
	if _, err := room.ParseVisibilityPolicy(cfg.GetVisibilityPolicy()); err != nil {
		return nil, err
	}

	injector := do.New()

	do.ProvideValue(injector, cfg)
	do.Provide(injector, provideBus)
	do.Provide(injector, provideRepositories)
	do.Provide(injector, provideRoom)
	do.Provide(injector, provideSweeper)
	do.Provide(injector, provideServer)
	do.Provide(injector, provideApplication)

	a, err := do.Invoke[*Application](injector)
	if err != nil {
		return nil, fmt.Errorf("wire application: %w", err)
	}
	return a, nil
}

func provideBus(i do.Injector) (*pubsub.WatermillBridge, error) {
	return pubsub.NewWatermillBridge(), nil
}

func provideRepositories(i do.Injector) (*Repositories, error) {
	cfg := do.MustInvoke[config.Provider](i)

	switch cfg.GetStoreBackend() {
	case config.BackendSurreal:
		conn := database.NewConnection(cfg)
		if err := conn.Connect(context.Background()); err != nil {
			return nil, fmt.Errorf("connect to surrealdb: %w", err)
		}
		return &Repositories{
			Participants: database.NewParticipantStore(conn),
			Messages:     database.NewMessageStore(conn),
			Conn:         conn,
		}, nil
	case config.BackendMemory, "":
		return &Repositories{
			Participants: storage.NewParticipantStore(),
			Messages:     storage.NewMessageStore(),
		}, nil
	}
	return nil, fmt.Errorf("unknown store backend %q", cfg.GetStoreBackend())
}

func provideRoom(i do.Injector) (*room.Service, error) {
	cfg := do.MustInvoke[config.Provider](i)
	repos, err := do.Invoke[*Repositories](i)
	if err != nil {
		return nil, err
	}

	policy, err := room.ParseVisibilityPolicy(cfg.GetVisibilityPolicy())
	if err != nil {
		return nil, err
	}

	return room.NewService(repos.Participants, repos.Messages,
		room.WithPublisher(do.MustInvoke[*pubsub.WatermillBridge](i)),
		room.WithVisibilityPolicy(policy),
	), nil
}

func provideSweeper(i do.Injector) (*room.Sweeper, error) {
	cfg := do.MustInvoke[config.Provider](i)
	svc, err := do.Invoke[*room.Service](i)
	if err != nil {
		return nil, err
	}
	return room.NewSweeper(svc,
		room.WithInterval(cfg.GetSweepInterval()),
		room.WithStaleThreshold(cfg.GetStaleThreshold()),
	), nil
}

func provideServer(i do.Injector) (*server.Server, error) {
	cfg := do.MustInvoke[config.Provider](i)
	svc, err := do.Invoke[*room.Service](i)
	if err != nil {
		return nil, err
	}
	repos := do.MustInvoke[*Repositories](i)

	// A nil *Connection inside the interface would not read as nil.
	var pinger handlers.Pinger
	if repos.Conn != nil {
		pinger = repos.Conn
	}
	return server.New(cfg, svc, pinger), nil
}

func provideApplication(i do.Injector) (*Application, error) {
	srv, err := do.Invoke[*server.Server](i)
	if err != nil {
		return nil, err
	}
	sweeper, err := do.Invoke[*room.Sweeper](i)
	if err != nil {
		return nil, err
	}
	return &Application{
		Config:  do.MustInvoke[config.Provider](i),
		Bus:     do.MustInvoke[*pubsub.WatermillBridge](i),
		Room:    do.MustInvoke[*room.Service](i),
		Sweeper: sweeper,
		Server:  srv,
		repos:   do.MustInvoke[*Repositories](i),
	}, nil
}

// Shutdown stops the HTTP server, then the sweeper, then the event bus and
// finally the store connection. It reports every failure.
func (a *Application) Shutdown(ctx context.Context) error {
	var errs []error

	if err := a.Server.Shutdown(ctx); err != nil {
		errs = append(errs, fmt.Errorf("http server: %w", err))
	}
	a.Sweeper.Stop()
	if err := a.Bus.Close(); err != nil {
		errs = append(errs, fmt.Errorf("event bus: %w", err))
	}
	if a.repos.Conn != nil {
		if err := a.repos.Conn.Close(ctx); err != nil {
			errs = append(errs, fmt.Errorf("database: %w", err))
		}
	}

	if err := errors.Join(errs...); err != nil {
		return err
	}
	slog.Info("Application stopped")
	return nil
}
