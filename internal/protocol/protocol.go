// Package protocol defines the line-delimited JSON exchanged over the daemon socket.
package protocol

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"time"

	"tomat/internal/domain"
)

// Commands understood by the daemon
const (
	CommandPause    = "pause"
	CommandResume   = "resume"
	CommandShutdown = "shutdown"
	CommandSkip     = "skip"
	CommandStart    = "start"
	CommandStatus   = "status"
	CommandStop     = "stop"
	CommandToggle   = "toggle"
	CommandWatch    = "watch"
)

// Watch interval limits
const (
	DefaultWatchInterval = time.Second
	MaxWatchInterval     = time.Hour
	MinWatchInterval     = 10 * time.Millisecond
)

// MaxLineBytes bounds a single request line
const MaxLineBytes = 64 * 1024

// ErrBadRequest marks malformed or out-of-range requests
var ErrBadRequest = errors.New("bad request")

// Request is one client command
type Request struct {
	Args    json.RawMessage `json:"args,omitempty"`
	Command string          `json:"command"`
}

// Response is one daemon reply. Data is null while no session is active.
type Response struct {
	Data    *domain.Status  `json:"data"`
	Message string          `json:"message"`
	Output  json.RawMessage `json:"output,omitempty"`
	Success bool            `json:"success"`
}

// StartArgs carries the timer configuration for a new session.
// Durations are fractional minutes; unset fields fall back to the daemon's config.
type StartArgs struct {
	AutoAdvance *domain.AutoAdvance `json:"auto_advance,omitempty"`
	Break       *float64            `json:"break,omitempty"`
	LongBreak   *float64            `json:"long_break,omitempty"`
	Sessions    *int                `json:"sessions,omitempty"`
	Work        *float64            `json:"work,omitempty"`
}

// DisplayArgs selects how status is rendered into Response.Output
type DisplayArgs struct {
	Format string `json:"format,omitempty"`
	Output string `json:"output,omitempty"`
}

// WatchArgs configures a status stream. Interval is in seconds.
type WatchArgs struct {
	DisplayArgs
	Interval *float64 `json:"interval,omitempty"`
}

// NewRequest builds a request, encoding args when given
func NewRequest(command string, args any) (Request, error) {
	req := Request{Command: command}
	if args == nil {
		return req, nil
	}
	raw, err := json.Marshal(args)
	if err != nil {
		return Request{}, fmt.Errorf("failed to encode %s args: %w", command, err)
	}
	req.Args = raw
	return req, nil
}

// ParseRequest decodes one request line
func ParseRequest(line []byte) (Request, error) {
	var req Request
	if err := json.Unmarshal(bytes.TrimSpace(line), &req); err != nil {
		return Request{}, fmt.Errorf("%w: invalid JSON: %v", ErrBadRequest, err)
	}
	if req.Command == "" {
		return Request{}, fmt.Errorf("%w: missing command", ErrBadRequest)
	}
	return req, nil
}

// DecodeArgs unmarshals the request args into v. Missing args leave v untouched.
func (r Request) DecodeArgs(v any) error {
	raw := bytes.TrimSpace(r.Args)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("%w: invalid %s args: %v", ErrBadRequest, r.Command, err)
	}
	return nil
}

// Resolve overlays the args onto defaults and validates the result
func (a StartArgs) Resolve(defaults domain.TimerConfig) (domain.TimerConfig, error) {
	cfg := defaults

	minutes := []struct {
		field string
		value *float64
		dest  *time.Duration
	}{
		{"work", a.Work, &cfg.Work},
		{"break", a.Break, &cfg.Break},
		{"long_break", a.LongBreak, &cfg.LongBreak},
	}
	for _, m := range minutes {
		if m.value == nil {
			continue
		}
		if err := domain.ValidateMinutes(m.field, *m.value); err != nil {
			return domain.TimerConfig{}, err
		}
		*m.dest = domain.Minutes(*m.value)
	}

	if a.Sessions != nil {
		if err := domain.ValidateSessions(*a.Sessions); err != nil {
			return domain.TimerConfig{}, err
		}
		cfg.SessionsUntilLongBreak = *a.Sessions
	}
	if a.AutoAdvance != nil {
		cfg.AutoAdvance = *a.AutoAdvance
	}

	return cfg, cfg.Validate()
}

// IntervalDuration returns the push interval, defaulting to one second
func (a WatchArgs) IntervalDuration() (time.Duration, error) {
	if a.Interval == nil {
		return DefaultWatchInterval, nil
	}
	v := *a.Interval
	if math.IsNaN(v) || v <= 0 {
		return 0, fmt.Errorf("%w: interval must be greater than 0 seconds", ErrBadRequest)
	}
	// Bound in seconds first; huge values overflow the conversion
	if v > MaxWatchInterval.Seconds() {
		return 0, fmt.Errorf("%w: interval must be at most %d seconds", ErrBadRequest, int(MaxWatchInterval.Seconds()))
	}
	d := time.Duration(v * float64(time.Second))
	if d < MinWatchInterval {
		return 0, fmt.Errorf("%w: interval must be at least %s", ErrBadRequest, MinWatchInterval)
	}
	return d, nil
}

// Success builds a successful response
func Success(message string, status *domain.Status) Response {
	return Response{Data: status, Message: message, Success: true}
}

// Failure builds a failed response
func Failure(message string) Response {
	return Response{Message: message}
}

// Write encodes v as one JSON line
func Write(w io.Writer, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	data = append(data, '\n')
	_, err = w.Write(data)
	return err
}
