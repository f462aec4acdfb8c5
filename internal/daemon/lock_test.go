package daemon

import (
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"
)

type fakeInspector struct {
	mu         sync.Mutex
	alive      map[int]bool
	ignoreTerm bool
	killed     []int
	terminated []int
}

func newFakeInspector(alive ...int) *fakeInspector {
	f := &fakeInspector{alive: map[int]bool{}}
	for _, pid := range alive {
		f.alive[pid] = true
	}
	return f
}

func (f *fakeInspector) IsAlive(pid int) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.alive[pid]
}

func (f *fakeInspector) Terminate(pid int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.terminated = append(f.terminated, pid)
	if !f.ignoreTerm {
		delete(f.alive, pid)
	}
	return nil
}

func (f *fakeInspector) Kill(pid int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.killed = append(f.killed, pid)
	delete(f.alive, pid)
	return nil
}

func TestAcquireLock(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run", "tomat.pid")

	lock, err := AcquireLock(path)
	require.NoError(t, err)

	pid, err := ReadPID(path)
	require.NoError(t, err)
	assert.Equal(t, os.Getpid(), pid)

	require.NoError(t, lock.Release())
	assert.NoFileExists(t, path)
	assert.NoError(t, lock.Release(), "release is idempotent")
}

func TestAcquireLock_AlreadyRunning(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tomat.pid")

	first, err := AcquireLock(path)
	require.NoError(t, err)
	defer first.Release()

	_, err = AcquireLock(path)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrAlreadyRunning)

	var running *AlreadyRunningError
	require.True(t, errors.As(err, &running))
	assert.Equal(t, os.Getpid(), running.PID)
	assert.Equal(t, ExitAlreadyRunning, running.ExitCode())

	// The holder is undisturbed
	pid, err := ReadPID(path)
	require.NoError(t, err)
	assert.Equal(t, os.Getpid(), pid)
}

func TestAcquireLock_StaleFileWithoutLock(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tomat.pid")
	require.NoError(t, os.WriteFile(path, []byte("999999\n"), 0600))

	lock, err := AcquireLock(path)
	require.NoError(t, err)
	defer lock.Release()

	pid, err := ReadPID(path)
	require.NoError(t, err)
	assert.Equal(t, os.Getpid(), pid)
}

func TestAcquireLock_HeldBeforePIDWritten(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tomat.pid")

	// A starting daemon holds the flock but has not written its PID yet
	starting, err := tryLock(path)
	require.NoError(t, err)
	defer starting.Release()

	_, err = AcquireLock(path)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrAlreadyRunning)

	var running *AlreadyRunningError
	require.True(t, errors.As(err, &running))
	assert.Zero(t, running.PID)

	// The holder keeps its file, and can still record its PID
	require.FileExists(t, path)
	require.NoError(t, starting.writePID(os.Getpid()))
	pid, err := ReadPID(path)
	require.NoError(t, err)
	assert.Equal(t, os.Getpid(), pid)
}

func TestAcquireLock_HeldWithUnknownPID(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tomat.pid")
	require.NoError(t, os.WriteFile(path, []byte("424242\n"), 0600))

	// Whoever holds the descriptor is alive, whatever the file says
	holder, err := os.OpenFile(path, os.O_RDWR, 0600)
	require.NoError(t, err)
	defer holder.Close()
	require.NoError(t, unix.Flock(int(holder.Fd()), unix.LOCK_EX|unix.LOCK_NB))

	_, err = AcquireLock(path)
	assert.ErrorIs(t, err, ErrAlreadyRunning)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "424242\n", string(data))
}

func TestAcquireLock_AfterHolderReleased(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tomat.pid")

	first, err := AcquireLock(path)
	require.NoError(t, err)
	require.NoError(t, first.Release())

	second, err := AcquireLock(path)
	require.NoError(t, err)
	defer second.Release()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, strconv.Itoa(os.Getpid())+"\n", string(data))
}

func TestLock_CurrentDetectsReplacedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tomat.pid")

	stale, err := tryLock(path)
	require.NoError(t, err)
	defer stale.close()
	assert.True(t, stale.current())

	require.NoError(t, os.Remove(path))
	assert.False(t, stale.current())

	require.NoError(t, os.WriteFile(path, nil, 0600))
	assert.False(t, stale.current())
}

func TestReadPID(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name    string
		content string
		want    int
		wantErr bool
	}{
		{"valid", "1234\n", 1234, false},
		{"no newline", "77", 77, false},
		{"garbage", "tomat", 0, true},
		{"empty", "", 0, true},
		{"negative", "-5", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(dir, tt.name)
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0600))

			got, err := ReadPID(path)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := ReadPID(filepath.Join(dir, "missing"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
