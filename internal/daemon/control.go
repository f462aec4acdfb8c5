package daemon

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"syscall"
	"time"

	"tomat/internal/client"
	"tomat/internal/logging"
	"tomat/internal/ports"
	"tomat/internal/protocol"
)

// ErrNotRunning is returned by Stop when no daemon is alive
var ErrNotRunning = errors.New("daemon is not running")

// Paths locates a daemon's runtime files
type Paths struct {
	PIDPath    string
	SocketPath string
}

// Info describes a daemon as seen from the outside
type Info struct {
	PID     int
	Running bool
}

// Status inspects the PID file and probes the recorded process
func Status(p Paths, inspector ports.ProcessInspector) Info {
	pid, err := ReadPID(p.PIDPath)
	if err != nil {
		return Info{}
	}
	return Info{PID: pid, Running: inspector.IsAlive(pid)}
}

// SpawnOptions configures a detached daemon launch
type SpawnOptions struct {
	Args       []string // arguments after the executable, e.g. "daemon", "run"
	Executable string
	ReadyWait  time.Duration
}

// Spawn launches the daemon in its own session with stdio detached, then
// waits until its socket answers
func Spawn(ctx context.Context, p Paths, inspector ports.ProcessInspector, opts SpawnOptions) (int, error) {
	if info := Status(p, inspector); info.Running {
		return info.PID, &AlreadyRunningError{PID: info.PID}
	}

	devNull, err := os.OpenFile(os.DevNull, os.O_RDWR, 0)
	if err != nil {
		return 0, fmt.Errorf("failed to open %s: %w", os.DevNull, err)
	}
	defer devNull.Close()

	cmd := exec.Command(opts.Executable, opts.Args...)
	cmd.Stdin = devNull
	cmd.Stdout = devNull
	cmd.Stderr = devNull
	cmd.SysProcAttr = &syscall.SysProcAttr{Setsid: true}

	if err := cmd.Start(); err != nil {
		return 0, fmt.Errorf("failed to start daemon: %w", err)
	}
	pid := cmd.Process.Pid

	// Reap the child if it exits early so it does not linger as a zombie
	exited := make(chan error, 1)
	go func() { exited <- cmd.Wait() }()

	readyWait := opts.ReadyWait
	if readyWait <= 0 {
		readyWait = 500 * time.Millisecond
	}
	deadline := time.Now().Add(readyWait)
	c := client.New(p.SocketPath)

	for {
		select {
		case err := <-exited:
			if info := Status(p, inspector); info.Running {
				return info.PID, &AlreadyRunningError{PID: info.PID}
			}
			return 0, fmt.Errorf("daemon exited during startup: %v", err)
		case <-ctx.Done():
			return pid, ctx.Err()
		case <-time.After(50 * time.Millisecond):
		}

		if c.Ping(ctx) {
			logging.Logger.Info("Daemon spawned", "pid", pid)
			return pid, nil
		}
		if time.Now().After(deadline) {
			return pid, fmt.Errorf("daemon did not answer within %s", readyWait)
		}
	}
}

// StopOptions configures the shutdown escalation
type StopOptions struct {
	GracePolls   int // polls after the shutdown request before SIGTERM
	PollInterval time.Duration
	TermPolls    int // polls after SIGTERM before SIGKILL
}

// DefaultStopOptions waits up to 1s for a requested shutdown and 5s after SIGTERM
func DefaultStopOptions() StopOptions {
	return StopOptions{GracePolls: 10, PollInterval: 100 * time.Millisecond, TermPolls: 50}
}

// Stop asks the daemon to exit over its socket, then escalates to SIGTERM
// and finally SIGKILL. Leftover runtime files are removed after a kill.
func Stop(ctx context.Context, p Paths, inspector ports.ProcessInspector, opts StopOptions) (int, error) {
	info := Status(p, inspector)
	if !info.Running {
		cleanupFiles(p)
		return 0, ErrNotRunning
	}
	pid := info.PID

	if _, err := client.New(p.SocketPath).WithTimeout(2*time.Second).Command(ctx, protocol.CommandShutdown, nil); err != nil {
		logging.Logger.Debug("Shutdown request failed", "error", err)
	}
	if waitExit(ctx, pid, inspector, opts.GracePolls, opts.PollInterval) {
		return pid, nil
	}

	logging.Logger.Info("Sending SIGTERM to daemon", "pid", pid)
	if err := inspector.Terminate(pid); err != nil {
		logging.Logger.Warn("SIGTERM failed", "pid", pid, "error", err)
	}
	if waitExit(ctx, pid, inspector, opts.TermPolls, opts.PollInterval) {
		return pid, nil
	}

	logging.Logger.Warn("Daemon did not exit, sending SIGKILL", "pid", pid)
	if err := inspector.Kill(pid); err != nil {
		return pid, fmt.Errorf("failed to kill daemon: %w", err)
	}
	waitExit(ctx, pid, inspector, opts.GracePolls, opts.PollInterval)
	cleanupFiles(p)
	return pid, nil
}

func waitExit(ctx context.Context, pid int, inspector ports.ProcessInspector, polls int, interval time.Duration) bool {
	for i := 0; i < polls; i++ {
		if !inspector.IsAlive(pid) {
			return true
		}
		select {
		case <-ctx.Done():
			return false
		case <-time.After(interval):
		}
	}
	return !inspector.IsAlive(pid)
}

func cleanupFiles(p Paths) {
	for _, path := range []string{p.SocketPath, p.PIDPath} {
		if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			logging.Logger.Warn("Failed to remove runtime file", "path", path, "error", err)
		}
	}
}
