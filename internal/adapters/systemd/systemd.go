// Package systemd integrates the server with systemd: socket activation,
// readiness notification and the service watchdog. Outside systemd every
// call is a no-op.
package systemd

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/coreos/go-systemd/v22/activation"
	"github.com/coreos/go-systemd/v22/daemon"

	"github.com/okian/vcdash/pkg/logger"
)

// ListenerName is the FileDescriptorName= of the HTTP socket in vcdash.socket.
const ListenerName = "http"

// Listener returns the socket-activated HTTP listener, or nil when the
// process was not started by socket activation. An unnamed single socket is
// accepted as well.
func Listener() (net.Listener, error) {
	named, err := activation.ListenersWithNames()
	if err != nil {
		return nil, fmt.Errorf("systemd listeners: %w", err)
	}
	if lns := named[ListenerName]; len(lns) > 0 {
		return lns[0], nil
	}
	for _, lns := range named {
		if len(lns) == 1 {
			return lns[0], nil
		}
	}
	return nil, nil
}

// NotifyReady sends READY=1. sent is false when NOTIFY_SOCKET is unset.
func NotifyReady() (sent bool, err error) {
	sent, err = daemon.SdNotify(false, daemon.SdNotifyReady)
	if err != nil {
		return false, fmt.Errorf("sd_notify ready: %w", err)
	}
	return sent, nil
}

// NotifyStopping sends STOPPING=1.
func NotifyStopping() (sent bool, err error) {
	sent, err = daemon.SdNotify(false, daemon.SdNotifyStopping)
	if err != nil {
		return false, fmt.Errorf("sd_notify stopping: %w", err)
	}
	return sent, nil
}

// Watchdog pings the systemd watchdog at half its timeout until ctx ends.
// It returns at once when WatchdogSec= is not configured for the unit.
func Watchdog(ctx context.Context, log logger.Logger) {
	interval, err := daemon.SdWatchdogEnabled(false)
	if err != nil {
		log.Warn(ctx, "systemd watchdog disabled", logger.Error(err))
		return
	}
	if interval <= 0 {
		return
	}
	period := interval / 2
	log.Debug(ctx, "systemd watchdog enabled", logger.String("period", period.String()))

	ticker := time.NewTicker(period)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := daemon.SdNotify(false, daemon.SdNotifyWatchdog); err != nil {
				log.Warn(ctx, "systemd watchdog ping failed", logger.Error(err))
			}
		}
	}
}
