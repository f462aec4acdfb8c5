// Package daemon owns the daemon process lifecycle: the single-instance
// lock, the listening socket, the tick loop and the shutdown sequence.
package daemon

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"tomat/internal/logging"
	"tomat/internal/server"
)

const (
	// DefaultTickInterval bounds how long the loop sleeps between checks
	DefaultTickInterval = time.Second

	// ShutdownTimeout bounds on_stop plus the wait for in-flight effects
	ShutdownTimeout = 10 * time.Second

	// HookGracePeriod bounds the wait for hook children before they are killed
	HookGracePeriod = 5 * time.Second
)

// Shutdowner finishes background work before exit
type Shutdowner interface {
	Shutdown(ctx context.Context) error
}

// Waiter blocks until fire-and-forget work has finished
type Waiter interface {
	Wait(ctx context.Context) error
}

// Options configures a Daemon
type Options struct {
	Effects      Waiter     // optional
	Hooks        Shutdowner // optional
	PIDPath      string
	Server       *server.Server
	SocketPath   string
	TickInterval time.Duration
}

// Daemon is a running instance holding the lock and the socket
type Daemon struct {
	id       string
	listener net.Listener
	lock     *Lock
	opts     Options
}

// Start acquires the lock and opens the socket. The stale socket of an
// unclean shutdown is only removed once the lock is held.
func Start(opts Options) (*Daemon, error) {
	if opts.TickInterval <= 0 {
		opts.TickInterval = DefaultTickInterval
	}

	lock, err := AcquireLock(opts.PIDPath)
	if err != nil {
		return nil, err
	}

	if err := removeStaleSocket(opts.SocketPath); err != nil {
		_ = lock.Release()
		return nil, err
	}

	ln, err := net.Listen("unix", opts.SocketPath)
	if err != nil {
		_ = lock.Release()
		return nil, fmt.Errorf("failed to listen on %s: %w", opts.SocketPath, err)
	}
	if err := os.Chmod(opts.SocketPath, 0600); err != nil {
		ln.Close()
		_ = lock.Release()
		return nil, fmt.Errorf("failed to chmod socket: %w", err)
	}

	d := &Daemon{
		id:       uuid.NewString(),
		listener: ln,
		lock:     lock,
		opts:     opts,
	}
	logging.Logger.Info("Daemon started",
		"id", d.id, "pid", os.Getpid(), "socket", opts.SocketPath, "pid_file", opts.PIDPath)
	return d, nil
}

func removeStaleSocket(path string) error {
	info, err := os.Lstat(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to stat socket path: %w", err)
	}
	if info.Mode()&os.ModeSocket == 0 {
		return fmt.Errorf("socket path exists and is not a socket: %s", path)
	}

	logging.Logger.Warn("Removing stale socket", "path", path)
	if err := os.Remove(path); err != nil {
		return fmt.Errorf("failed to remove stale socket: %w", err)
	}
	return nil
}

// Run serves clients and drives the tick loop until ctx is cancelled, a
// termination signal arrives, or a client requests shutdown. It always
// runs the shutdown sequence before returning.
func (d *Daemon) Run(ctx context.Context) error {
	ctx, stopSignals := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stopSignals()

	runCtx, cancelRun := context.WithCancel(ctx)
	defer cancelRun()

	// Watch streams outlive runCtx until the listener is closed
	streamCtx, cancelStreams := context.WithCancel(context.Background())
	defer cancelStreams()

	g := new(errgroup.Group)

	g.Go(func() error {
		return d.opts.Server.Serve(streamCtx, d.listener)
	})

	g.Go(func() error {
		d.tickLoop(runCtx)
		return nil
	})

	g.Go(func() error {
		select {
		case <-runCtx.Done():
			logging.Logger.Info("Shutdown signal received")
		case <-d.opts.Server.ShutdownRequested():
			logging.Logger.Info("Shutdown requested by client")
		}
		cancelRun()
		if err := d.listener.Close(); err != nil && !errors.Is(err, net.ErrClosed) {
			logging.Logger.Warn("Failed to close listener", "error", err)
		}
		cancelStreams()
		return nil
	})

	runErr := g.Wait()
	if err := d.shutdown(); err != nil {
		logging.Logger.Warn("Shutdown finished with errors", "error", err)
	}
	return runErr
}

func (d *Daemon) tickLoop(ctx context.Context) {
	timer := time.NewTimer(d.opts.Server.NextWake(d.opts.TickInterval))
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
		}
		d.opts.Server.Tick()
		timer.Reset(d.opts.Server.NextWake(d.opts.TickInterval))
	}
}

// shutdown runs after the listener is closed and streams are cancelled.
// Errors are collected and logged; they never keep the process alive.
func (d *Daemon) shutdown() error {
	var errs []error

	ctx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
	defer cancel()

	if err := d.opts.Server.Close(ctx); err != nil {
		errs = append(errs, fmt.Errorf("session close: %w", err))
	}

	if d.opts.Hooks != nil {
		hookCtx, hookCancel := context.WithTimeout(context.Background(), HookGracePeriod)
		if err := d.opts.Hooks.Shutdown(hookCtx); err != nil {
			errs = append(errs, fmt.Errorf("hooks: %w", err))
		}
		hookCancel()
	}

	if d.opts.Effects != nil {
		if err := d.opts.Effects.Wait(ctx); err != nil {
			errs = append(errs, fmt.Errorf("effects: %w", err))
		}
	}

	if err := d.opts.Server.WaitConnections(ctx); err != nil {
		errs = append(errs, fmt.Errorf("connections: %w", err))
	}

	if err := os.Remove(d.opts.SocketPath); err != nil && !errors.Is(err, os.ErrNotExist) {
		errs = append(errs, fmt.Errorf("failed to remove socket: %w", err))
	}
	if err := d.lock.Release(); err != nil {
		errs = append(errs, err)
	}

	logging.Logger.Info("Daemon stopped", "id", d.id)
	return errors.Join(errs...)
}
