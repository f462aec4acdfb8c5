package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"tomat/internal/client"
	"tomat/internal/daemon"
	"tomat/internal/logging"
	"tomat/internal/paths"
)

// DaemonCmd manages the background daemon
type DaemonCmd struct {
	Install   DaemonInstallCmd   `cmd:"install" help:"Install and enable the systemd user service"`
	Run       DaemonRunCmd       `cmd:"run" help:"Run the daemon in the foreground" hidden:""`
	Start     DaemonStartCmd     `cmd:"start" help:"Start the daemon in the background"`
	Status    DaemonStatusCmd    `cmd:"status" help:"Show whether the daemon is running"`
	Stop      DaemonStopCmd      `cmd:"stop" help:"Stop the daemon"`
	Uninstall DaemonUninstallCmd `cmd:"uninstall" help:"Disable and remove the systemd user service"`
}

// DaemonRunCmd runs the daemon in the current process
type DaemonRunCmd struct{}

// Run executes the daemon until a signal or a shutdown request arrives
func (d *DaemonRunCmd) Run(cli *CLI) error {
	logging.MirrorToStderr(os.Stderr, slog.LevelWarn)

	container, err := NewContainer(cli.Settings())
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	defer container.Close()

	p := cli.RuntimePaths()
	instance, err := daemon.Start(daemon.Options{
		Effects:    container.Transitions,
		Hooks:      container.Hooks,
		PIDPath:    p.PIDPath,
		Server:     container.Server,
		SocketPath: p.SocketPath,
	})
	if err != nil {
		return err
	}

	return instance.Run(context.Background())
}

// DaemonStartCmd spawns a detached daemon
type DaemonStartCmd struct{}

// Run executes the start command
func (d *DaemonStartCmd) Run(cli *CLI) error {
	exe, err := os.Executable()
	if err != nil {
		return fmt.Errorf("failed to resolve executable: %w", err)
	}

	pid, err := daemon.Spawn(context.Background(), cli.RuntimePaths(), cli.Inspector(), daemon.SpawnOptions{
		Args:       []string{"daemon", "run"},
		Executable: exe,
	})
	if errors.Is(err, daemon.ErrAlreadyRunning) {
		fmt.Printf("Daemon is already running (PID: %d). Use 'tomat daemon stop' to stop it first.\n", pid)
		return nil
	}
	if err != nil {
		return err
	}

	fmt.Printf("Daemon started (PID: %d)\n", pid)
	return nil
}

// DaemonStopCmd stops a running daemon
type DaemonStopCmd struct{}

// Run executes the stop command
func (d *DaemonStopCmd) Run(cli *CLI) error {
	pid, err := daemon.Stop(context.Background(), cli.RuntimePaths(), cli.Inspector(), daemon.DefaultStopOptions())
	if errors.Is(err, daemon.ErrNotRunning) {
		fmt.Println("Daemon is not running")
		return nil
	}
	if err != nil {
		return err
	}

	fmt.Printf("Daemon stopped (PID: %d)\n", pid)
	return nil
}

// DaemonStatusCmd reports whether the daemon is running
type DaemonStatusCmd struct{}

// Run executes the status command
func (d *DaemonStatusCmd) Run(cli *CLI) error {
	p := cli.RuntimePaths()
	info := daemon.Status(p, cli.Inspector())

	switch {
	case info.PID == 0:
		fmt.Println("Status: Not running")
	case !info.Running:
		fmt.Println("Status: Not running (stale PID file)")
	case client.New(p.SocketPath).Ping(context.Background()):
		fmt.Printf("Status: Running (PID: %d, socket: %s)\n", info.PID, p.SocketPath)
	default:
		fmt.Printf("Status: Running but unresponsive (PID: %d)\n", info.PID)
	}
	return nil
}

// DaemonInstallCmd installs the systemd user unit
type DaemonInstallCmd struct{}

// Run executes the install command
func (d *DaemonInstallCmd) Run(cli *CLI) error {
	exe, err := os.Executable()
	if err != nil {
		return fmt.Errorf("failed to resolve executable: %w", err)
	}

	unitPath := paths.SystemdUnitPath()
	if err := daemon.InstallUnit(context.Background(), unitPath, exe); err != nil {
		return err
	}

	fmt.Printf("Installed %s\n", unitPath)
	fmt.Println("The daemon starts automatically with your session.")
	return nil
}

// DaemonUninstallCmd removes the systemd user unit
type DaemonUninstallCmd struct{}

// Run executes the uninstall command
func (d *DaemonUninstallCmd) Run(cli *CLI) error {
	unitPath := paths.SystemdUnitPath()
	if err := daemon.UninstallUnit(context.Background(), unitPath); err != nil {
		return err
	}

	fmt.Printf("Removed %s\n", unitPath)
	return nil
}
