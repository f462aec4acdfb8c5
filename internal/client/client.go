// Package client talks to the daemon over its unix socket.
package client

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"syscall"
	"time"

	"tomat/internal/logging"
	"tomat/internal/protocol"
)

// DefaultTimeout bounds one request/response exchange. Command hooks run
// before the daemon answers, so this is generous.
const DefaultTimeout = 60 * time.Second

// ErrDaemonNotRunning is returned when nothing listens on the socket
var ErrDaemonNotRunning = errors.New("daemon is not running (start it with 'tomat daemon start')")

// Client sends requests to the daemon
type Client struct {
	socketPath string
	timeout    time.Duration
}

// New creates a client for the socket at socketPath
func New(socketPath string) *Client {
	return &Client{socketPath: socketPath, timeout: DefaultTimeout}
}

// WithTimeout returns a copy using timeout for each exchange
func (c *Client) WithTimeout(timeout time.Duration) *Client {
	clone := *c
	clone.timeout = timeout
	return &clone
}

// Send performs one request/response exchange
func (c *Client) Send(ctx context.Context, req protocol.Request) (protocol.Response, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	conn, err := c.dial(ctx)
	if err != nil {
		return protocol.Response{}, err
	}
	defer conn.Close()

	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}
	stop := context.AfterFunc(ctx, func() { conn.Close() })
	defer stop()

	if err := protocol.Write(conn, req); err != nil {
		return protocol.Response{}, fmt.Errorf("failed to send %s: %w", req.Command, err)
	}

	reader := bufio.NewReaderSize(conn, 4096)
	var resp protocol.Response
	if err := readResponse(reader, &resp); err != nil {
		return protocol.Response{}, fmt.Errorf("failed to read %s response: %w", req.Command, err)
	}

	logging.Logger.Debug("Daemon responded", "command", req.Command, "success", resp.Success)
	return resp, nil
}

// Command is a shorthand for Send with encoded args
func (c *Client) Command(ctx context.Context, command string, args any) (protocol.Response, error) {
	req, err := protocol.NewRequest(command, args)
	if err != nil {
		return protocol.Response{}, err
	}
	return c.Send(ctx, req)
}

// Watch opens a status stream and calls fn for every pushed line until
// ctx is cancelled, the daemon closes the stream, or fn returns an error.
func (c *Client) Watch(ctx context.Context, args protocol.WatchArgs, fn func(protocol.Response) error) error {
	req, err := protocol.NewRequest(protocol.CommandWatch, args)
	if err != nil {
		return err
	}

	conn, err := c.dial(ctx)
	if err != nil {
		return err
	}
	defer conn.Close()

	stop := context.AfterFunc(ctx, func() { conn.Close() })
	defer stop()

	if err := protocol.Write(conn, req); err != nil {
		return fmt.Errorf("failed to send watch: %w", err)
	}

	reader := bufio.NewReaderSize(conn, 4096)
	for {
		var resp protocol.Response
		if err := readResponse(reader, &resp); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			if errors.Is(err, io.EOF) {
				return ErrDaemonNotRunning
			}
			return fmt.Errorf("watch stream failed: %w", err)
		}
		if err := fn(resp); err != nil {
			return err
		}
	}
}

// Ping reports whether the daemon answers on the socket
func (c *Client) Ping(ctx context.Context) bool {
	_, err := c.WithTimeout(time.Second).Command(ctx, protocol.CommandStatus, nil)
	return err == nil
}

func (c *Client) dial(ctx context.Context) (net.Conn, error) {
	var d net.Dialer
	conn, err := d.DialContext(ctx, "unix", c.socketPath)
	if err != nil {
		if errors.Is(err, syscall.ENOENT) || errors.Is(err, syscall.ECONNREFUSED) {
			return nil, ErrDaemonNotRunning
		}
		return nil, fmt.Errorf("failed to connect to daemon: %w", err)
	}
	return conn, nil
}

func readResponse(reader *bufio.Reader, resp *protocol.Response) error {
	line, err := reader.ReadBytes('\n')
	if err != nil && len(line) == 0 {
		return err
	}
	return json.Unmarshal(line, resp)
}
