package domain

import "time"

// Status is the pure state snapshot sent to clients and hooks
type Status struct {
	AutoAdvance            AutoAdvance `json:"auto_advance"`
	DurationSeconds        int64       `json:"duration_seconds"`
	IsPaused               bool        `json:"is_paused"`
	Phase                  Phase       `json:"phase"`
	RemainingSeconds       int64       `json:"remaining_seconds"`
	SessionCount           int         `json:"session_count"`
	SessionsUntilLongBreak int         `json:"sessions_until_long_break"`
}

// ElapsedSeconds returns how much of the phase has run
func (s Status) ElapsedSeconds() int64 {
	if s.RemainingSeconds >= s.DurationSeconds {
		return 0
	}
	return s.DurationSeconds - s.RemainingSeconds
}

// ceilSeconds rounds up so a fresh 3s phase reads 3 rather than 2
func ceilSeconds(d time.Duration) int64 {
	if d <= 0 {
		return 0
	}
	return int64((d + time.Second - 1) / time.Second)
}
