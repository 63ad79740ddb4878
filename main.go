package main

import (
	"errors"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/danielgtaylor/huma/v2/humacli"

	"github.com/winevat/winevat/cmd"
	"github.com/winevat/winevat/internal/api"
	"github.com/winevat/winevat/internal/config"
	"github.com/winevat/winevat/internal/events"
	"github.com/winevat/winevat/internal/logging"
	"github.com/winevat/winevat/internal/metrics"
	"github.com/winevat/winevat/internal/process"
	"github.com/winevat/winevat/internal/registry"
	"github.com/winevat/winevat/internal/systemd"
	"github.com/winevat/winevat/internal/wine"
)

// Options for the CLI - flat structure with toml mapping.
type Options struct {
	Config string `help:"Path to configuration file" short:"c" default:"config.toml"`

	// Server settings
	Port string `help:"Port to listen on" short:"p" default:":8070" toml:"server.port" env:"SERVER_PORT"`

	// Wine distribution settings; empty values keep the config file/defaults.
	WineRoot  string `help:"Wine distribution root" default:"" toml:"wine.root" env:"WINEVAT_WINE_ROOT"`
	Prefix    string `help:"Wine prefix (bottle) path" default:"" toml:"wine.prefix" env:"WINEVAT_PREFIX"`
	LogDir    string `help:"Per-run log file directory" default:"" toml:"wine.log_dir" env:"WINEVAT_LOG_DIR"`
	WineDebug string `help:"WINEDEBUG channel spec" default:"" toml:"wine.debug" env:"WINEVAT_WINE_DEBUG"`

	// Auth settings
	AuthUsername string `help:"Basic auth username" default:"" toml:"auth.username" env:"AUTH_USERNAME"`
	AuthPassword string `help:"Basic auth password" default:"" toml:"auth.password" env:"AUTH_PASSWORD"`

	// Logging settings
	LoggingLevel    string `help:"Global logging level (debug, info, warn, error)" default:"info" toml:"logging.level" env:"LOGGING_LEVEL"`
	LoggingFormat   string `help:"Logging format (text, json)" default:"text" toml:"logging.format" env:"LOGGING_FORMAT"`
	LoggingProcess  string `help:"Process supervision logging level" default:"info" toml:"logging.process" env:"LOGGING_PROCESS"`
	LoggingWine     string `help:"Wine runner logging level" default:"info" toml:"logging.wine" env:"LOGGING_WINE"`
	LoggingRegistry string `help:"Registry logging level" default:"info" toml:"logging.registry" env:"LOGGING_REGISTRY"`
	LoggingAPI      string `help:"API logging level" default:"info" toml:"logging.api" env:"LOGGING_API"`
}

func main() {
	cli := humacli.New(func(hooks humacli.Hooks, opts *Options) {
		logging.Initialize(logging.Config{
			Level:  opts.LoggingLevel,
			Format: opts.LoggingFormat,
			Modules: map[string]string{
				"process":  opts.LoggingProcess,
				"wine":     opts.LoggingWine,
				"registry": opts.LoggingRegistry,
				"api":      opts.LoggingAPI,
			},
		})
		logger := logging.GetLogger("main")

		cfg, err := config.Load(opts.Config)
		if err != nil {
			slog.Error("Failed to load config", "error", err)
			os.Exit(1)
		}
		applyFlagOverrides(&cfg, opts)

		// Event bus for in-process event handling.
		eventBus := events.New()
		unwireMetrics := metrics.Wire(eventBus)

		tracker := process.NewTracker(logging.GetLogger("process"))
		runner := wine.NewRunner(wine.Options{
			Config:  cfg,
			Logger:  logging.GetLogger("wine"),
			Bus:     eventBus,
			Tracker: tracker,
		})
		regClient := registry.NewClient(runner, logging.GetLogger("registry"), eventBus)

		server := api.NewServer(&api.Options{
			AuthUsername:      opts.AuthUsername,
			AuthPassword:      opts.AuthPassword,
			Runner:            runner,
			Tracker:           tracker,
			Registry:          regClient,
			PrometheusHandler: metrics.Handler(),
		})

		// Config file changes are surfaced on the bus; components holding a
		// Config by value are not retargeted mid-run.
		watcher := config.NewWatcher(opts.Config, 0, logging.GetLogger("config"))
		watcher.OnReload(func(config.Config) {
			eventBus.Publish(events.ConfigReloadedEvent{
				Path:      opts.Config,
				Timestamp: time.Now().UTC().Format(time.RFC3339),
			})
		})

		hooks.OnStart(func() {
			if watchErr := watcher.Start(); watchErr != nil {
				logger.Warn("Config watcher not started", "error", watchErr)
			}

			systemd.NotifyReady(logger)

			logger.Info("Starting HTTP server", "port", opts.Port)
			if startErr := server.Start(opts.Port); startErr != nil && !errors.Is(startErr, http.ErrServerClosed) {
				logger.Error("Failed to start HTTP server", "error", startErr)
				os.Exit(1)
			}
		})

		hooks.OnStop(func() {
			systemd.NotifyStopping(logger)
			logger.Info("Shutting down")
			if stopErr := server.Stop(); stopErr != nil {
				logger.Error("Error stopping HTTP server", "error", stopErr)
			}

			// No wine process outlives the daemon.
			tracker.CancelAll()

			if stopErr := watcher.Stop(); stopErr != nil {
				logger.Warn("Error stopping config watcher", "error", stopErr)
			}
			unwireMetrics()
		})
	})

	cli.Root().Use = "winevat"
	cli.Root().AddCommand(
		cmd.CreateRunCmd(),
		cmd.CreateRegCmd(),
		cmd.CreateKillCmd(),
		cmd.CreateVersionCmd(),
		cmd.CreateUpdateCmd(),
	)

	cli.Run()
}

// applyFlagOverrides overlays non-empty CLI/env settings on the file config.
func applyFlagOverrides(cfg *config.Config, opts *Options) {
	if opts.WineRoot != "" {
		cfg.WineRoot = opts.WineRoot
	}
	if opts.Prefix != "" {
		cfg.Prefix = opts.Prefix
	}
	if opts.LogDir != "" {
		cfg.LogDir = opts.LogDir
	}
	if opts.WineDebug != "" {
		cfg.WineDebug = opts.WineDebug
	}
}
