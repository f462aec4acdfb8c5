package daemon

import (
	"context"
	"net"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tomat/internal/client"
	"tomat/internal/domain"
	"tomat/internal/protocol"
	"tomat/internal/server"
)

func testPaths(t *testing.T) Paths {
	t.Helper()
	// Unix socket paths are length-limited, keep them short
	dir, err := os.MkdirTemp("", "tomat")
	require.NoError(t, err)
	t.Cleanup(func() { os.RemoveAll(dir) })
	return Paths{
		PIDPath:    filepath.Join(dir, "tomat.pid"),
		SocketPath: filepath.Join(dir, "tomat.sock"),
	}
}

type shutdownRecorder struct {
	called chan struct{}
}

func (s *shutdownRecorder) Shutdown(ctx context.Context) error {
	close(s.called)
	return nil
}

func startDaemon(t *testing.T, p Paths, hooks Shutdowner) (*Daemon, *server.Server) {
	t.Helper()
	srv := server.New(server.Options{Defaults: domain.DefaultTimerConfig()})
	d, err := Start(Options{
		Hooks:        hooks,
		PIDPath:      p.PIDPath,
		Server:       srv,
		SocketPath:   p.SocketPath,
		TickInterval: 50 * time.Millisecond,
	})
	require.NoError(t, err)
	return d, srv
}

func TestDaemon_Lifecycle(t *testing.T) {
	p := testPaths(t)
	hooks := &shutdownRecorder{called: make(chan struct{})}
	d, _ := startDaemon(t, p, hooks)

	info, err := os.Stat(p.SocketPath)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	done := make(chan error, 1)
	go func() { done <- d.Run(context.Background()) }()

	c := client.New(p.SocketPath)
	resp, err := c.Command(context.Background(), protocol.CommandStart, map[string]any{"work": 0.01, "auto_advance": "all"})
	require.NoError(t, err)
	require.True(t, resp.Success)

	// The tick loop completes the 0.6s work phase without any client polling
	time.Sleep(900 * time.Millisecond)
	resp, err = c.Command(context.Background(), protocol.CommandStatus, nil)
	require.NoError(t, err)
	require.NotNil(t, resp.Data)
	assert.Equal(t, domain.PhaseBreak, resp.Data.Phase)

	resp, err = c.Command(context.Background(), protocol.CommandShutdown, nil)
	require.NoError(t, err)
	assert.True(t, resp.Success)

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("daemon did not shut down")
	}

	<-hooks.called
	assert.NoFileExists(t, p.SocketPath)
	assert.NoFileExists(t, p.PIDPath)
}

func TestDaemon_ContextCancelShutsDown(t *testing.T) {
	p := testPaths(t)
	d, _ := startDaemon(t, p, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- d.Run(ctx) }()

	require.Eventually(t, func() bool {
		return client.New(p.SocketPath).Ping(context.Background())
	}, 2*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("daemon did not shut down")
	}
	assert.NoFileExists(t, p.SocketPath)
	assert.NoFileExists(t, p.PIDPath)
}

func TestDaemon_SecondInstanceRefused(t *testing.T) {
	p := testPaths(t)
	d, _ := startDaemon(t, p, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- d.Run(ctx) }()
	defer func() {
		cancel()
		<-done
	}()

	c := client.New(p.SocketPath)
	resp, err := c.Command(context.Background(), protocol.CommandStart, nil)
	require.NoError(t, err)
	require.True(t, resp.Success)

	_, err = Start(Options{
		PIDPath:    p.PIDPath,
		Server:     server.New(server.Options{Defaults: domain.DefaultTimerConfig()}),
		SocketPath: p.SocketPath,
	})
	assert.ErrorIs(t, err, ErrAlreadyRunning)

	// The running instance keeps its socket and its session
	resp, err = c.Command(context.Background(), protocol.CommandStatus, nil)
	require.NoError(t, err)
	require.NotNil(t, resp.Data)
	assert.Equal(t, domain.PhaseWork, resp.Data.Phase)
}

func TestStart_RemovesStaleSocket(t *testing.T) {
	p := testPaths(t)

	ln, err := net.Listen("unix", p.SocketPath)
	require.NoError(t, err)
	ln.(*net.UnixListener).SetUnlinkOnClose(false)
	require.NoError(t, ln.Close())
	require.FileExists(t, p.SocketPath)

	d, _ := startDaemon(t, p, nil)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- d.Run(ctx) }()

	assert.True(t, client.New(p.SocketPath).Ping(context.Background()))
	cancel()
	<-done
}

func TestStart_RefusesNonSocketPath(t *testing.T) {
	p := testPaths(t)
	require.NoError(t, os.WriteFile(p.SocketPath, []byte("not a socket"), 0600))

	_, err := Start(Options{
		PIDPath:    p.PIDPath,
		Server:     server.New(server.Options{}),
		SocketPath: p.SocketPath,
	})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "not a socket")
	assert.NoFileExists(t, p.PIDPath, "the lock is released on failure")
	assert.FileExists(t, p.SocketPath, "a regular file is never removed")
}
