// Package server serializes client commands against the daemon's timer.
package server

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"sync"
	"time"

	"tomat/internal/domain"
	"tomat/internal/format"
	"tomat/internal/logging"
	"tomat/internal/protocol"
)

const (
	readTimeout  = 5 * time.Second
	writeTimeout = 5 * time.Second
	minWake      = 10 * time.Millisecond
)

// MsgNoActiveSession is returned for commands that need a running session
var MsgNoActiveSession = domain.ErrNoActiveSession.Error()

// EffectHandler applies the side effects of a state change
type EffectHandler interface {
	Apply(ctx context.Context, effects domain.Effects) []domain.HookResult
}

// Options configures a Server
type Options struct {
	Defaults   domain.TimerConfig // used for start args left unset
	Effects    EffectHandler
	Now        func() time.Time
	TextFormat string
}

// Server owns the timer. Every read and write of it happens under mu,
// so ticks and client commands are linearized. Effects are queued under
// mu too and applied one batch at a time in that same order.
type Server struct {
	defaults   domain.TimerConfig
	effects    EffectHandler
	now        func() time.Time
	textFormat string

	mu       sync.Mutex
	lastSync time.Time
	timer    *domain.Timer

	async        sync.WaitGroup // effects dispatched off the request path
	tail         chan struct{}  // closed once the last queued batch applied; guarded by mu
	conns        sync.WaitGroup
	shutdown     chan struct{}
	shutdownOnce sync.Once
}

// New creates a server in the idle state
func New(opts Options) *Server {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	textFormat := opts.TextFormat
	if textFormat == "" {
		textFormat = "{icon} {time} {state}"
	}
	return &Server{
		defaults:   opts.Defaults,
		effects:    opts.Effects,
		now:        now,
		shutdown:   make(chan struct{}),
		textFormat: textFormat,
	}
}

// ShutdownRequested is closed once a client asked the daemon to exit
func (s *Server) ShutdownRequested() <-chan struct{} {
	return s.shutdown
}

// Serve accepts connections until ln is closed. Cancelling ctx ends
// open watch streams.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	for {
		conn, err := ln.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) || ctx.Err() != nil {
				return nil
			}
			logging.Logger.Warn("Accept failed", "error", err)
			continue
		}

		s.conns.Add(1)
		go func() {
			defer s.conns.Done()
			s.handleConn(ctx, conn)
		}()
	}
}

// WaitConnections blocks until every connection handler returned or ctx expires
func (s *Server) WaitConnections(ctx context.Context) error {
	return waitGroup(ctx, &s.conns)
}

func (s *Server) handleConn(ctx context.Context, conn net.Conn) {
	defer conn.Close()

	_ = conn.SetReadDeadline(time.Now().Add(readTimeout))
	scanner := bufio.NewScanner(conn)
	scanner.Buffer(make([]byte, 0, 4096), protocol.MaxLineBytes)
	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			logging.Logger.Debug("Failed to read request", "error", err)
			if errors.Is(err, bufio.ErrTooLong) {
				s.write(conn, protocol.Failure("Request too large"))
			}
		}
		return
	}
	_ = conn.SetReadDeadline(time.Time{})

	req, err := protocol.ParseRequest(scanner.Bytes())
	if err != nil {
		logging.Logger.Debug("Rejected request", "error", err)
		s.write(conn, protocol.Failure(err.Error()))
		return
	}

	if req.Command == protocol.CommandWatch {
		s.watch(ctx, conn, req)
		return
	}

	resp := s.Handle(ctx, req)
	if !s.write(conn, resp) {
		return
	}

	if req.Command == protocol.CommandShutdown && resp.Success {
		s.shutdownOnce.Do(func() { close(s.shutdown) })
	}
}

func (s *Server) write(conn net.Conn, v any) bool {
	_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	if err := protocol.Write(conn, v); err != nil {
		logging.Logger.Debug("Failed to write response", "error", err)
		return false
	}
	return true
}

// Handle executes one non-streaming command. Effects of the command,
// hooks included, have finished when it returns.
func (s *Server) Handle(ctx context.Context, req protocol.Request) protocol.Response {
	logging.Logger.Debug("Handling command", "command", req.Command)

	switch req.Command {
	case protocol.CommandStart:
		return s.start(ctx, req)
	case protocol.CommandStatus:
		return s.status(req)
	case protocol.CommandShutdown:
		return protocol.Success("Daemon shutting down", nil)
	case protocol.CommandStop:
		return s.stop(ctx)
	case protocol.CommandSkip:
		return s.control(ctx, "Skipped to next phase", func(t *domain.Timer) (domain.Effects, string) {
			return t.Skip(), ""
		})
	case protocol.CommandPause:
		return s.control(ctx, "Timer paused", func(t *domain.Timer) (domain.Effects, string) {
			if t.IsPaused() {
				return domain.Effects{}, "Timer is already paused"
			}
			return t.Pause(), ""
		})
	case protocol.CommandResume:
		return s.control(ctx, "Timer resumed", func(t *domain.Timer) (domain.Effects, string) {
			if !t.IsPaused() {
				return domain.Effects{}, "Timer is already running"
			}
			return t.Resume(), ""
		})
	case protocol.CommandToggle:
		return s.control(ctx, "", func(t *domain.Timer) (domain.Effects, string) {
			if t.IsPaused() {
				return t.Resume(), "Timer resumed"
			}
			return t.Pause(), "Timer paused"
		})
	default:
		return protocol.Failure(fmt.Sprintf("Unknown command: %s", req.Command))
	}
}

func (s *Server) start(ctx context.Context, req protocol.Request) protocol.Response {
	var args protocol.StartArgs
	if err := req.DecodeArgs(&args); err != nil {
		return protocol.Failure(err.Error())
	}
	cfg, err := args.Resolve(s.defaults)
	if err != nil {
		return protocol.Failure(err.Error())
	}

	s.mu.Lock()
	var effects domain.Effects
	if s.timer != nil {
		// The replaced session is recorded but does not fire on_stop
		effects.Ended = s.timer.Stop().Ended
	}
	timer, started, err := domain.NewTimer(cfg)
	if err != nil {
		s.mu.Unlock()
		return protocol.Failure(err.Error())
	}
	s.timer = timer
	s.lastSync = s.now()
	status := timer.Status()
	batch := s.enqueueLocked(effects.Merge(started))
	s.mu.Unlock()

	s.apply(ctx, batch)

	logging.Logger.Info("Session started",
		"work", cfg.Work, "break", cfg.Break, "long_break", cfg.LongBreak,
		"sessions", cfg.SessionsUntilLongBreak, "auto_advance", cfg.AutoAdvance)

	return protocol.Success(fmt.Sprintf(
		"Pomodoro started: %.1fmin work, %.1fmin break, %.1fmin long break every %d sessions",
		cfg.Work.Minutes(), cfg.Break.Minutes(), cfg.LongBreak.Minutes(), cfg.SessionsUntilLongBreak,
	), &status)
}

// control runs op against the active timer. A non-empty message from op
// replaces the default one.
func (s *Server) control(ctx context.Context, message string, op func(*domain.Timer) (domain.Effects, string)) protocol.Response {
	s.mu.Lock()
	if s.timer == nil {
		s.mu.Unlock()
		return protocol.Failure(MsgNoActiveSession)
	}

	effects := s.syncLocked()
	changed, override := op(s.timer)
	effects = effects.Merge(changed)
	if override != "" {
		message = override
	}

	status := s.timer.Status()
	batch := s.enqueueLocked(effects)
	s.mu.Unlock()

	s.apply(ctx, batch)
	return protocol.Success(message, &status)
}

func (s *Server) stop(ctx context.Context) protocol.Response {
	s.mu.Lock()
	if s.timer == nil {
		s.mu.Unlock()
		return protocol.Failure(MsgNoActiveSession)
	}
	batch := s.enqueueLocked(s.syncLocked().Merge(s.timer.Stop()))
	s.timer = nil
	s.mu.Unlock()

	s.apply(ctx, batch)
	logging.Logger.Info("Session stopped")
	return protocol.Success("Timer stopped", nil)
}

func (s *Server) status(req protocol.Request) protocol.Response {
	var args protocol.DisplayArgs
	if err := req.DecodeArgs(&args); err != nil {
		return protocol.Failure(err.Error())
	}
	kind, err := format.ParseKind(args.Output)
	if err != nil {
		return protocol.Failure(err.Error())
	}

	status := s.Snapshot()
	return s.statusResponse(status, kind, args.Format)
}

func (s *Server) statusResponse(status *domain.Status, kind format.Kind, template string) protocol.Response {
	if template == "" {
		template = s.textFormat
	}

	resp := protocol.Success("Status retrieved", status)
	if status == nil {
		resp.Message = MsgNoActiveSession
	}

	out, err := json.Marshal(format.Render(kind, status, template))
	if err == nil {
		resp.Output = out
	}
	return resp
}

// Snapshot brings the timer up to date and returns its status, nil when idle.
// Completions noticed here are dispatched like tick completions.
func (s *Server) Snapshot() *domain.Status {
	s.mu.Lock()
	if s.timer == nil {
		s.mu.Unlock()
		return nil
	}
	batch := s.enqueueLocked(s.syncLocked())
	status := s.timer.Status()
	s.mu.Unlock()

	s.dispatch(batch)
	return &status
}

// Tick advances the timer by the wall time since the last sync
func (s *Server) Tick() {
	s.mu.Lock()
	if s.timer == nil {
		s.mu.Unlock()
		return
	}
	batch := s.enqueueLocked(s.syncLocked())
	s.mu.Unlock()

	s.dispatch(batch)
}

// NextWake returns how long the tick loop may sleep, at most limit
func (s *Server) NextWake(limit time.Duration) time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.timer == nil {
		return limit
	}
	until, running := s.timer.UntilCompletion()
	if !running {
		return limit
	}
	until -= s.now().Sub(s.lastSync)
	if until < minWake {
		return minWake
	}
	if until > limit {
		return limit
	}
	return until
}

// Close ends the active session with on_stop and waits for effects still
// in flight. Called once the listener is closed.
func (s *Server) Close(ctx context.Context) error {
	s.mu.Lock()
	var batch *effectBatch
	if s.timer != nil {
		batch = s.enqueueLocked(s.syncLocked().Merge(s.timer.Stop()))
		s.timer = nil
	}
	s.mu.Unlock()

	if batch != nil {
		logging.Logger.Info("Stopping active session for shutdown")
		s.apply(ctx, batch)
	}
	return waitGroup(ctx, &s.async)
}

func (s *Server) syncLocked() domain.Effects {
	now := s.now()
	elapsed := now.Sub(s.lastSync)
	s.lastSync = now
	return s.timer.Advance(elapsed)
}

// effectBatch is one state change's effects waiting on the batch queued
// before it
type effectBatch struct {
	after   <-chan struct{}
	done    chan struct{}
	effects domain.Effects
}

// enqueueLocked appends effects to the apply queue and returns nil when
// there is nothing to apply. Callers hold mu and must pass the batch to
// apply or dispatch, or every later batch waits forever.
func (s *Server) enqueueLocked(effects domain.Effects) *effectBatch {
	if s.effects == nil || effects.IsEmpty() {
		return nil
	}
	batch := &effectBatch{after: s.tail, done: make(chan struct{}), effects: effects}
	s.tail = batch.done
	return batch
}

// apply runs batch on the caller's goroutine once its predecessor is done
func (s *Server) apply(ctx context.Context, batch *effectBatch) {
	if batch == nil {
		return
	}
	defer close(batch.done)
	if batch.after != nil {
		<-batch.after
	}
	s.effects.Apply(ctx, batch.effects)
}

// dispatch applies batch off the caller's path so a slow hook never
// delays the tick or a status read
func (s *Server) dispatch(batch *effectBatch) {
	if batch == nil {
		return
	}
	s.async.Add(1)
	go func() {
		defer s.async.Done()
		s.apply(context.Background(), batch)
	}()
}

func waitGroup(ctx context.Context, wg *sync.WaitGroup) error {
	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
