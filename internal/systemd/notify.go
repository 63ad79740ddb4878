// Package systemd integrates the daemon with the systemd service manager.
package systemd

import (
	"github.com/coreos/go-systemd/v22/daemon"

	"github.com/winevat/winevat/internal/logging"
)

// NotifyReady tells the service manager the daemon is ready to serve.
// A no-op outside a Type=notify unit.
func NotifyReady(logger logging.Logger) {
	sent, err := daemon.SdNotify(false, daemon.SdNotifyReady)
	if err != nil {
		logger.Warn("Failed to notify systemd", "error", err)
		return
	}
	if sent {
		logger.Debug("Notified systemd: ready")
	}
}

// NotifyStopping tells the service manager the daemon has begun shutting
// down.
func NotifyStopping(logger logging.Logger) {
	sent, err := daemon.SdNotify(false, daemon.SdNotifyStopping)
	if err != nil {
		logger.Warn("Failed to notify systemd", "error", err)
		return
	}
	if sent {
		logger.Debug("Notified systemd: stopping")
	}
}
