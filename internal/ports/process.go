package ports

import (
	"context"

	"tomat/internal/domain"
)

// HookRunner runs the user command configured for a timer event
type HookRunner interface {
	// Run executes the hook for call.Event and waits for it, bounded by the
	// hook's timeout. Failures are reported in the result, never as panics.
	Run(ctx context.Context, call domain.HookCall) domain.HookResult
}

// ProcessInspector probes and signals other processes by PID
type ProcessInspector interface {
	// IsAlive reports whether a process with the given PID exists
	IsAlive(pid int) bool

	// Terminate asks the process to exit (SIGTERM)
	Terminate(pid int) error

	// Kill forcibly ends the process (SIGKILL)
	Kill(pid int) error
}
