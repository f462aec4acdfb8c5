package domain

import "time"

// HookEvent names a timer event that can trigger a user command
type HookEvent string

const (
	HookBreakEnd       HookEvent = "on_break_end"
	HookBreakStart     HookEvent = "on_break_start"
	HookComplete       HookEvent = "on_complete"
	HookLongBreakEnd   HookEvent = "on_long_break_end"
	HookLongBreakStart HookEvent = "on_long_break_start"
	HookPause          HookEvent = "on_pause"
	HookResume         HookEvent = "on_resume"
	HookSkip           HookEvent = "on_skip"
	HookStop           HookEvent = "on_stop"
	HookWorkEnd        HookEvent = "on_work_end"
	HookWorkStart      HookEvent = "on_work_start"
)

const (
	// DefaultHookTimeout applies when a hook does not set one
	DefaultHookTimeout = 5 * time.Second

	// MaxHookTimeout bounds a configured hook timeout
	MaxHookTimeout = 24 * time.Hour
)

// HookEvents returns every recognized event name
func HookEvents() []HookEvent {
	return []HookEvent{
		HookWorkStart, HookWorkEnd,
		HookBreakStart, HookBreakEnd,
		HookLongBreakStart, HookLongBreakEnd,
		HookPause, HookResume,
		HookStop, HookComplete, HookSkip,
	}
}

// ParseHookEvent reports whether name is a recognized event
func ParseHookEvent(name string) (HookEvent, bool) {
	for _, event := range HookEvents() {
		if string(event) == name {
			return event, true
		}
	}
	return "", false
}

// StartHookFor returns the event fired when a phase starts running
func StartHookFor(p Phase) HookEvent {
	switch p {
	case PhaseBreak:
		return HookBreakStart
	case PhaseLongBreak:
		return HookLongBreakStart
	default:
		return HookWorkStart
	}
}

// EndHookFor returns the event fired when a phase ends
func EndHookFor(p Phase) HookEvent {
	switch p {
	case PhaseBreak:
		return HookBreakEnd
	case PhaseLongBreak:
		return HookLongBreakEnd
	default:
		return HookWorkEnd
	}
}

// HookSpec describes the command configured for one event
type HookSpec struct {
	Args          []string
	CaptureOutput bool
	Command       string
	Dir           string
	Timeout       time.Duration // 0 means unbounded
}

// HookCall is one hook invocation with the state it observed
type HookCall struct {
	Event  HookEvent
	Status Status
}

// HookResult reports how one hook invocation ended
type HookResult struct {
	Duration time.Duration
	Err      error // spawn failure or non-zero exit
	Event    HookEvent
	ExitCode int
	Ran      bool // false when no hook is configured for the event
	Stderr   string
	Stdout   string
	TimedOut bool
}
