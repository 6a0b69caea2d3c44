package cmd

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/nfrund/batepapo/internal/app"
	"github.com/spf13/cobra"
)

var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Evict idle participants once and exit",
	Long: `sweep runs a single presence sweep against the configured store.

It is meant for the surreal backend, where the room outlives any one
process; with the memory backend the room is always empty.`,
	RunE: runSweep,
}

func init() {
	rootCmd.AddCommand(sweepCmd)
}

func runSweep(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	a, err := app.New(cfg)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	defer func() { _ = a.Shutdown(ctx) }()

	evicted, sweepErr := a.Sweeper.SweepOnce(ctx)
	if len(evicted) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No idle participants.")
	} else {
		fmt.Fprintf(cmd.OutOrStdout(), "Evicted %d participant(s): %s\n", len(evicted), strings.Join(evicted, ", "))
	}
	return sweepErr
}
