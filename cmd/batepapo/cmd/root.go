package cmd

import (
	"os"

	"github.com/nfrund/batepapo/internal/config"
	"github.com/nfrund/batepapo/internal/logging"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "batepapo",
	Short: "Bate-papo chat room server",
	Long: `batepapo runs a small polling chat room over HTTP.

Available commands:
  serve      Start the HTTP API and the presence sweeper
  sweep      Evict idle participants once and exit
  version    Print the version

Configuration is read from the environment and an optional .env file.`,
	SilenceUsage: true,
}

// Execute executes the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// loadConfig reads the configuration and installs the default logger.
func loadConfig() (*config.Config, error) {
	cfg, err := config.New()
	if err != nil {
		return nil, err
	}
	logging.New(cfg.GetLogFormat(), cfg.GetLogLevel())
	return cfg, nil
}
