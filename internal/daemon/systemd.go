package daemon

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"tomat/internal/logging"
)

const unitTemplate = `[Unit]
Description=Tomat Pomodoro Timer Daemon
After=graphical-session.target

[Service]
Type=simple
ExecStart=%s daemon run
Restart=always
RestartSec=5

[Install]
WantedBy=default.target
`

// UnitName is the systemd user unit managed by install/uninstall
const UnitName = "tomat.service"

// Systemctl runs `systemctl --user <args>`; replaced in tests
var Systemctl = func(ctx context.Context, args ...string) error {
	cmd := exec.CommandContext(ctx, "systemctl", append([]string{"--user"}, args...)...)
	out, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("systemctl --user %s: %w: %s", strings.Join(args, " "), err, strings.TrimSpace(string(out)))
	}
	return nil
}

// UnitContent renders the unit file for the given executable
func UnitContent(executable string) string {
	return fmt.Sprintf(unitTemplate, executable)
}

// InstallUnit writes the unit file, reloads systemd and enables the service
func InstallUnit(ctx context.Context, unitPath, executable string) error {
	if err := os.MkdirAll(filepath.Dir(unitPath), 0755); err != nil {
		return fmt.Errorf("failed to create unit directory: %w", err)
	}
	if err := os.WriteFile(unitPath, []byte(UnitContent(executable)), 0644); err != nil {
		return fmt.Errorf("failed to write unit file: %w", err)
	}
	logging.Logger.Info("Wrote systemd unit", "path", unitPath)

	if err := Systemctl(ctx, "daemon-reload"); err != nil {
		return err
	}
	return Systemctl(ctx, "enable", "--now", UnitName)
}

// UninstallUnit disables the service and removes the unit file
func UninstallUnit(ctx context.Context, unitPath string) error {
	if err := Systemctl(ctx, "disable", "--now", UnitName); err != nil {
		logging.Logger.Warn("Failed to disable unit", "error", err)
	}

	if err := os.Remove(unitPath); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("unit file not found: %s", unitPath)
		}
		return fmt.Errorf("failed to remove unit file: %w", err)
	}
	return Systemctl(ctx, "daemon-reload")
}
