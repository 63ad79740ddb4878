// Package logging provides structured logging with per-module log level
// configuration.
//
// The logging system uses Go's slog package with automatic output routing:
//   - Logs to systemd journal when available (Linux systems with journald)
//   - Logs to stdout when a terminal, pipe, or file is connected
//   - Logs to an in-memory ring buffer, served by the HTTP API's /api/logs
//
// Initialize the logging system once at startup:
//
//	logging.Initialize(logging.Config{
//		Level:  "info",      // Global log level: debug, info, warn, error
//		Format: "text",      // Output format: text or json
//		Modules: map[string]string{
//			"process": "debug",  // Per-module overrides
//			"api":     "warn",
//		},
//	})
//
// Get a logger for your module:
//
//	logger := logging.GetLogger("wine")
//	logger.Info("Starting run", "run_id", id)
//
// Module-specific levels override the global level for that module only and
// can be changed at runtime via Initialize. When running under systemd:
//
//	journalctl -t winevat -f
//	journalctl -t winevat MODULE=process
package logging
