package daemon

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"golang.org/x/sys/unix"

	"tomat/internal/logging"
)

// ExitAlreadyRunning is the exit status of `daemon run` when another
// instance holds the lock
const ExitAlreadyRunning = 3

// ErrAlreadyRunning reports that a live daemon holds the lock
var ErrAlreadyRunning = errors.New("daemon already running")

// AlreadyRunningError carries the PID of the running daemon
type AlreadyRunningError struct {
	PID int
}

func (e *AlreadyRunningError) Error() string {
	if e.PID > 0 {
		return fmt.Sprintf("daemon already running (PID %d)", e.PID)
	}
	return ErrAlreadyRunning.Error()
}

// Is makes errors.Is(err, ErrAlreadyRunning) match
func (e *AlreadyRunningError) Is(target error) bool { return target == ErrAlreadyRunning }

// ExitCode is picked up by main
func (e *AlreadyRunningError) ExitCode() int { return ExitAlreadyRunning }

// Lock is the single-instance guard: an exclusive flock on the PID file
type Lock struct {
	file *os.File
	path string
}

// AcquireLock takes the lock at path and writes the current PID into it.
// A held flock always means a live owner, even while its PID is still
// unwritten; the kernel drops the flock of a dead process, so a leftover
// file is simply reused and overwritten.
func AcquireLock(path string) (*Lock, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("failed to create runtime directory: %w", err)
	}

	for {
		lock, err := tryLock(path)
		if errors.Is(err, unix.EWOULDBLOCK) {
			pid, _ := ReadPID(path)
			return nil, &AlreadyRunningError{PID: pid}
		}
		if err != nil {
			return nil, err
		}

		// The previous owner may have unlinked the file between our open
		// and flock; a lock on a removed inode guards nothing
		if !lock.current() {
			logging.Logger.Debug("Lock file replaced while locking, retrying", "path", path)
			lock.close()
			continue
		}

		if err := lock.writePID(os.Getpid()); err != nil {
			_ = lock.Release()
			return nil, err
		}
		return lock, nil
	}
}

func tryLock(path string) (*Lock, error) {
	file, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0600)
	if err != nil {
		return nil, fmt.Errorf("failed to open lock file: %w", err)
	}
	if err := unix.Flock(int(file.Fd()), unix.LOCK_EX|unix.LOCK_NB); err != nil {
		file.Close()
		return nil, err
	}
	return &Lock{file: file, path: path}, nil
}

// current reports whether path still names the locked file
func (l *Lock) current() bool {
	var held, named unix.Stat_t
	if err := unix.Fstat(int(l.file.Fd()), &held); err != nil {
		return false
	}
	if err := unix.Stat(l.path, &named); err != nil {
		return false
	}
	return held.Dev == named.Dev && held.Ino == named.Ino
}

// close drops the descriptor, and with it the flock, leaving the file alone
func (l *Lock) close() {
	_ = l.file.Close()
	l.file = nil
}

func (l *Lock) writePID(pid int) error {
	if err := l.file.Truncate(0); err != nil {
		return fmt.Errorf("failed to truncate lock file: %w", err)
	}
	if _, err := l.file.WriteAt([]byte(strconv.Itoa(pid)+"\n"), 0); err != nil {
		return fmt.Errorf("failed to write PID: %w", err)
	}
	return l.file.Sync()
}

// Path returns the lock file path
func (l *Lock) Path() string { return l.path }

// Release removes the file and drops the lock
func (l *Lock) Release() error {
	if l.file == nil {
		return nil
	}

	var errs []error
	if err := os.Remove(l.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		errs = append(errs, fmt.Errorf("failed to remove lock file: %w", err))
	}
	if err := unix.Flock(int(l.file.Fd()), unix.LOCK_UN); err != nil {
		errs = append(errs, fmt.Errorf("failed to unlock: %w", err))
	}
	if err := l.file.Close(); err != nil {
		errs = append(errs, err)
	}
	l.file = nil
	return errors.Join(errs...)
}

// ReadPID returns the PID recorded in the lock file
func ReadPID(path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil || pid <= 0 {
		return 0, fmt.Errorf("invalid PID file %s", path)
	}
	return pid, nil
}
