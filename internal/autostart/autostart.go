// Package autostart manages the login-launch entry for the daemon.
package autostart

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// Apply reconciles the login entry with the desired state. Disabling an
// entry that is already absent is tolerated, so toggling the setting off
// twice never surfaces an error.
func Apply(log *slog.Logger, enabled bool) error {
	if log == nil {
		log = slog.Default()
	}
	exe, err := os.Executable()
	if err != nil {
		return fmt.Errorf("failed to resolve executable path: %w", err)
	}
	if resolved, err := filepath.EvalSymlinks(exe); err == nil {
		exe = resolved
	}

	if enabled {
		if err := install(exe); err != nil {
			return fmt.Errorf("failed to enable auto-launch: %w", err)
		}
		return nil
	}
	if err := uninstall(); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			log.Info("auto-launch entry already absent, continuing", "error", err)
			return nil
		}
		return fmt.Errorf("failed to disable auto-launch: %w", err)
	}
	return nil
}
