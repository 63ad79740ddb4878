// Package cmd holds the cobra subcommands attached to the winevat CLI.
package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/winevat/winevat/internal/config"
	"github.com/winevat/winevat/internal/logging"
	"github.com/winevat/winevat/internal/process"
	"github.com/winevat/winevat/internal/wine"
)

// setupRunner initializes logging, loads the config file, and builds a
// Runner for one-shot CLI invocations.
func setupRunner(configFile string, logJSON bool) (config.Config, *wine.Runner, error) {
	format := "text"
	if logJSON {
		format = "json"
	}
	logging.Initialize(logging.Config{Level: "info", Format: format})

	cfg, err := config.Load(configFile)
	if err != nil {
		return config.Config{}, nil, err
	}

	logger := logging.GetLogger("wine")
	runner := wine.NewRunner(wine.Options{
		Config:  cfg,
		Logger:  logger,
		Tracker: process.NewTracker(logger),
	})
	return cfg, runner, nil
}

// signalContext returns a context cancelled on SIGINT or SIGTERM, so an
// interrupted command terminates its child before exiting.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}
