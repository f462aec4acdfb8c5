package process

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"sync"
	"syscall"
	"time"

	"golang.org/x/sys/unix"

	"tomat/internal/domain"
	"tomat/internal/logging"
	"tomat/internal/ports"
)

// waitDelay bounds how long Wait keeps draining pipes after the child is gone
const waitDelay = time.Second

// HookExecutor runs configured hook commands with a timeout
type HookExecutor struct {
	closed   bool
	inFlight sync.WaitGroup
	mu       sync.Mutex
	specs    map[domain.HookEvent]domain.HookSpec
	stopOnce sync.Once
	stopping chan struct{}
}

// Compile-time interface verification
var _ ports.HookRunner = (*HookExecutor)(nil)

// NewHookExecutor creates an executor for a fixed set of hook specs
func NewHookExecutor(specs map[domain.HookEvent]domain.HookSpec) *HookExecutor {
	if specs == nil {
		specs = map[domain.HookEvent]domain.HookSpec{}
	}
	return &HookExecutor{
		specs:    specs,
		stopping: make(chan struct{}),
	}
}

// Run spawns the hook for call.Event and waits for it to exit, time out,
// or be cancelled. Events without a configured hook are a no-op.
func (e *HookExecutor) Run(ctx context.Context, call domain.HookCall) domain.HookResult {
	result := domain.HookResult{Event: call.Event}

	spec, ok := e.specs[call.Event]
	if !ok {
		return result
	}

	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		logging.Logger.Debug("Executor shut down, not running hook", "event", call.Event)
		return result
	}
	e.inFlight.Add(1)
	e.mu.Unlock()
	defer e.inFlight.Done()

	result.Ran = true
	started := time.Now()

	cmd := exec.Command(spec.Command, spec.Args...)
	cmd.Dir = spec.Dir
	cmd.Env = append(os.Environ(), hookEnv(call)...)
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	cmd.WaitDelay = waitDelay

	var stdout, stderr bytes.Buffer
	if spec.CaptureOutput {
		cmd.Stdout = &stdout
		cmd.Stderr = &stderr
	}

	if err := cmd.Start(); err != nil {
		result.Duration = time.Since(started)
		result.Err = fmt.Errorf("failed to start hook: %w", err)
		result.ExitCode = -1
		logging.Logger.Warn("Hook failed to start",
			"event", call.Event, "cmd", spec.Command, "error", err)
		return result
	}

	logging.Logger.Debug("Hook started",
		"event", call.Event, "cmd", spec.Command, "pid", cmd.Process.Pid)

	done := make(chan error, 1)
	go func() { done <- cmd.Wait() }()

	var timeout <-chan time.Time
	if spec.Timeout > 0 {
		timer := time.NewTimer(spec.Timeout)
		defer timer.Stop()
		timeout = timer.C
	}

	var waitErr error
	select {
	case waitErr = <-done:
	case <-timeout:
		result.TimedOut = true
		killGroup(cmd)
		waitErr = <-done
	case <-ctx.Done():
		killGroup(cmd)
		waitErr = <-done
	case <-e.stopping:
		killGroup(cmd)
		waitErr = <-done
	}

	result.Duration = time.Since(started)
	result.Stdout = stdout.String()
	result.Stderr = stderr.String()
	result.ExitCode = exitCode(cmd, waitErr)

	switch {
	case result.TimedOut:
		result.Err = fmt.Errorf("hook timed out after %s", spec.Timeout)
	case waitErr != nil:
		result.Err = waitErr
	}

	e.log(call.Event, spec, result)
	return result
}

// Shutdown waits for in-flight hooks until ctx expires, then kills the rest
func (e *HookExecutor) Shutdown(ctx context.Context) error {
	e.mu.Lock()
	e.closed = true
	e.mu.Unlock()

	done := make(chan struct{})
	go func() {
		e.inFlight.Wait()
		close(done)
	}()

	select {
	case <-done:
		e.stop()
		return nil
	case <-ctx.Done():
		e.stop()
		<-done
		return fmt.Errorf("hooks still running at shutdown were killed: %w", ctx.Err())
	}
}

func (e *HookExecutor) stop() {
	e.stopOnce.Do(func() { close(e.stopping) })
}

func (e *HookExecutor) log(event domain.HookEvent, spec domain.HookSpec, result domain.HookResult) {
	attrs := []any{
		"event", event,
		"cmd", spec.Command,
		"exit_code", result.ExitCode,
		"duration", result.Duration,
	}
	if spec.CaptureOutput && (result.Err != nil || result.TimedOut) {
		attrs = append(attrs, "stdout", result.Stdout, "stderr", result.Stderr)
	}

	switch {
	case result.TimedOut:
		logging.Logger.Warn("Hook timed out and was killed", append(attrs, "timeout", spec.Timeout)...)
	case result.Err != nil:
		logging.Logger.Warn("Hook failed", append(attrs, "error", result.Err)...)
	default:
		logging.Logger.Debug("Hook finished", attrs...)
	}
}

// hookEnv exposes the observed state to the child process
func hookEnv(call domain.HookCall) []string {
	values := []struct {
		name  string
		value string
	}{
		{"EVENT", string(call.Event)},
		{"PHASE", string(call.Status.Phase)},
		{"REMAINING_SECONDS", strconv.FormatInt(call.Status.RemainingSeconds, 10)},
		{"SESSION_COUNT", strconv.Itoa(call.Status.SessionCount)},
		{"AUTO_ADVANCE", string(call.Status.AutoAdvance)},
	}

	env := make([]string, 0, len(values)*2)
	for _, v := range values {
		env = append(env, "TOMAT_"+v.name+"="+v.value, v.name+"="+v.value)
	}
	return env
}

// killGroup kills the hook and anything it spawned
func killGroup(cmd *exec.Cmd) {
	if cmd.Process == nil {
		return
	}
	if err := unix.Kill(-cmd.Process.Pid, unix.SIGKILL); err != nil {
		_ = cmd.Process.Kill()
	}
}

func exitCode(cmd *exec.Cmd, err error) int {
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode()
	}
	if cmd.ProcessState != nil {
		return cmd.ProcessState.ExitCode()
	}
	return -1
}
