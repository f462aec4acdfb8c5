package process

import (
	"errors"

	"golang.org/x/sys/unix"

	"tomat/internal/ports"
)

// OSProcessInspector implements ProcessInspector with unix signals
type OSProcessInspector struct{}

// Compile-time interface verification
var _ ports.ProcessInspector = (*OSProcessInspector)(nil)

// NewOSProcessInspector creates a new OS process inspector
func NewOSProcessInspector() *OSProcessInspector {
	return &OSProcessInspector{}
}

// IsAlive sends signal 0; EPERM still means the process exists
func (i *OSProcessInspector) IsAlive(pid int) bool {
	if pid <= 0 {
		return false
	}
	err := unix.Kill(pid, 0)
	return err == nil || errors.Is(err, unix.EPERM)
}

// Terminate sends SIGTERM
func (i *OSProcessInspector) Terminate(pid int) error {
	return unix.Kill(pid, unix.SIGTERM)
}

// Kill sends SIGKILL
func (i *OSProcessInspector) Kill(pid int) error {
	return unix.Kill(pid, unix.SIGKILL)
}
