package harness

import (
	"bytes"
	"errors"
	"net"
	"os/exec"
	"sync"
	"syscall"
	"testing"
	"time"
)

const (
	daemonReadyTimeout = 5 * time.Second
	daemonStopTimeout  = 10 * time.Second
)

// DaemonProcess is a `tomat daemon run` child owned by one test
type DaemonProcess struct {
	cmd    *exec.Cmd
	done   chan struct{}
	err    error
	mu     sync.Mutex
	stderr bytes.Buffer
}

// StartDaemon runs the daemon in the foreground of a child process and
// waits until its socket accepts connections. The daemon is stopped when
// the test completes.
func StartDaemon(tb testing.TB, env *TestEnvironment) *DaemonProcess {
	tb.Helper()

	d := &DaemonProcess{done: make(chan struct{})}
	d.cmd = exec.Command(binaryPath, "daemon", "run")
	d.cmd.Env = env.Environ()
	d.cmd.Stderr = &lockedWriter{mu: &d.mu, buf: &d.stderr}

	if err := d.cmd.Start(); err != nil {
		tb.Fatalf("Failed to start daemon: %v", err)
	}
	go func() {
		d.err = d.cmd.Wait()
		close(d.done)
	}()
	tb.Cleanup(func() { d.Stop(tb) })

	deadline := time.Now().Add(daemonReadyTimeout)
	for {
		if conn, err := net.Dial("unix", env.SocketPath()); err == nil {
			conn.Close()
			return d
		}
		select {
		case <-d.done:
			tb.Fatalf("Daemon exited during startup: %v\nStderr: %s", d.err, d.Stderr())
		case <-time.After(20 * time.Millisecond):
		}
		if time.Now().After(deadline) {
			tb.Fatalf("Daemon socket not ready after %v\nStderr: %s", daemonReadyTimeout, d.Stderr())
		}
	}
}

// PID returns the daemon's process id
func (d *DaemonProcess) PID() int {
	return d.cmd.Process.Pid
}

// Stderr returns everything the daemon wrote to stderr so far
func (d *DaemonProcess) Stderr() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.stderr.String()
}

// Done is closed once the daemon process exited
func (d *DaemonProcess) Done() <-chan struct{} {
	return d.done
}

// ExitCode returns the exit status; only valid after Done is closed
func (d *DaemonProcess) ExitCode() int {
	var exitErr *exec.ExitError
	if errors.As(d.err, &exitErr) {
		return exitErr.ExitCode()
	}
	if d.err != nil {
		return -1
	}
	return 0
}

// Stop sends SIGTERM and waits for the daemon to exit, killing it on timeout
func (d *DaemonProcess) Stop(tb testing.TB) {
	tb.Helper()

	select {
	case <-d.done:
		return
	default:
	}

	_ = d.cmd.Process.Signal(syscall.SIGTERM)
	select {
	case <-d.done:
	case <-time.After(daemonStopTimeout):
		tb.Errorf("Daemon did not exit after SIGTERM\nStderr: %s", d.Stderr())
		_ = d.cmd.Process.Kill()
		<-d.done
	}
}

// WaitExit waits for the daemon to exit on its own
func (d *DaemonProcess) WaitExit(tb testing.TB, timeout time.Duration) {
	tb.Helper()
	select {
	case <-d.done:
	case <-time.After(timeout):
		tb.Fatalf("Daemon still running after %v\nStderr: %s", timeout, d.Stderr())
	}
}

// lockedWriter lets tests read stderr while the process is still writing it
type lockedWriter struct {
	buf *bytes.Buffer
	mu  *sync.Mutex
}

func (w *lockedWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.buf.Write(p)
}
