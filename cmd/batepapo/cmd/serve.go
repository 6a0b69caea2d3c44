package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	gfshutdown "github.com/gelmium/graceful-shutdown"
	"github.com/nfrund/batepapo/internal/app"
	"github.com/nfrund/batepapo/internal/pubsub"
	"github.com/spf13/cobra"
)

var (
	serveAddr       string
	shutdownTimeout time.Duration
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API and the presence sweeper",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (overrides SERVER_ADDR)")
	serveCmd.Flags().DurationVar(&shutdownTimeout, "shutdown-timeout", 10*time.Second, "time allowed for a graceful shutdown")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if serveAddr != "" {
		cfg.ServerAddr = serveAddr
	}

	a, err := app.New(cfg)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := pubsub.SubscribeAudit(ctx, a.Bus, slog.Default().With("service", "audit")); err != nil {
		return fmt.Errorf("subscribe audit log: %w", err)
	}
	a.Sweeper.Start(ctx)

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- a.Server.Start()
	}()

	wait := gfshutdown.GracefulShutdown(
		context.Background(),
		shutdownTimeout,
		map[string]gfshutdown.Operation{
			"batepapo": func(ctx context.Context) error {
				slog.Info("Graceful shutdown initiated")
				cancel()
				return a.Shutdown(ctx)
			},
		},
	)

	select {
	case exitCode := <-wait:
		if exitCode != 0 {
			return fmt.Errorf("shutdown finished with exit code %d", exitCode)
		}
		return nil
	case err := <-serverErr:
		// The listener stopped on its own, which only happens on failure
		// since Shutdown is driven from the signal path above.
		cancel()
		stopCtx, stop := context.WithTimeout(context.Background(), shutdownTimeout)
		defer stop()
		if shutdownErr := a.Shutdown(stopCtx); shutdownErr != nil {
			slog.Error("Shutdown after server failure", "error", shutdownErr)
		}
		if err == nil {
			return fmt.Errorf("http server stopped unexpectedly")
		}
		return fmt.Errorf("http server: %w", err)
	}
}
