package redis

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	backend "github.com/redis/go-redis/v9"
)

const notifyKeyspaceEvents = "notify-keyspace-events"

// Status is the outcome of EnsureKeyspaceNotifications.
type Status string

const (
	// StatusConfigured means keyspace expiry events are enabled.
	StatusConfigured Status = "CONFIGURED"
	// StatusNotConfigured means the server could not be checked or
	// configured and must be set up manually.
	StatusNotConfigured Status = "NOT CONFIGURED"
)

const keyspaceWarning = `could not check and "set notify-keyspace-events Kx"`

// EnsureKeyspaceNotifications enables keyspace ("K") and expired ("x")
// notifications, keeping any flags already set.
//
// Managed servers often disable CONFIG; in that case a warning is logged
// and StatusNotConfigured is returned without error.
func EnsureKeyspaceNotifications(ctx context.Context, client backend.UniversalClient, logger *slog.Logger) (Status, error) {
	cfg, err := client.ConfigGet(ctx, notifyKeyspaceEvents).Result()
	if err != nil {
		if isRestricted(err) {
			logger.Warn(keyspaceWarning+"; configure it manually for this Redis instance", "err", err)
			return StatusNotConfigured, nil
		}
		return "", fmt.Errorf("failed to read %s: %w", notifyKeyspaceEvents, err)
	}

	flags, ok := cfg[notifyKeyspaceEvents]
	if !ok {
		logger.Warn(keyspaceWarning + "; this feature requires Redis >= 2.8.0")
		return StatusNotConfigured, nil
	}

	want := mergeFlags(flags)
	if want == flags {
		return StatusConfigured, nil
	}

	if err := client.ConfigSet(ctx, notifyKeyspaceEvents, want).Err(); err != nil {
		if isRestricted(err) {
			logger.Warn(keyspaceWarning+"; configure it manually for this Redis instance", "err", err)
			return StatusNotConfigured, nil
		}
		return "", fmt.Errorf("failed to set %s: %w", notifyKeyspaceEvents, err)
	}
	return StatusConfigured, nil
}

// mergeFlags adds K (keyspace events) and x (expired events) to flags.
// "A" already includes "x".
func mergeFlags(flags string) string {
	if !strings.Contains(flags, "K") {
		flags += "K"
	}
	if !strings.Contains(flags, "x") && !strings.Contains(flags, "A") {
		flags += "x"
	}
	return flags
}

func isRestricted(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unknown command") ||
		strings.Contains(msg, "noperm") ||
		strings.Contains(msg, "not allowed")
}
