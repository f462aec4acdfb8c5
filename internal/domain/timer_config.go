package domain

import (
	"fmt"
	"math"
	"time"
)

// Limits enforced on every timer configuration
const (
	MaxPhaseMinutes = 600
	MaxSessions     = 100
	MinSessions     = 1
)

// Built-in defaults
const (
	DefaultBreakMinutes     = 5.0
	DefaultLongBreakMinutes = 15.0
	DefaultSessions         = 4
	DefaultWorkMinutes      = 25.0
)

// TimerConfig holds the durations and policy fixed for one session
type TimerConfig struct {
	AutoAdvance            AutoAdvance
	Break                  time.Duration
	LongBreak              time.Duration
	SessionsUntilLongBreak int
	Work                   time.Duration
}

// DefaultTimerConfig returns 25/5/15 minutes, 4 sessions, no auto-advance
func DefaultTimerConfig() TimerConfig {
	return TimerConfig{
		AutoAdvance:            AutoAdvanceNone,
		Break:                  Minutes(DefaultBreakMinutes),
		LongBreak:              Minutes(DefaultLongBreakMinutes),
		SessionsUntilLongBreak: DefaultSessions,
		Work:                   Minutes(DefaultWorkMinutes),
	}
}

// Minutes converts fractional minutes to a duration
func Minutes(m float64) time.Duration {
	return time.Duration(math.Round(m * float64(time.Minute)))
}

// ValidateMinutes checks 0 < m <= MaxPhaseMinutes
func ValidateMinutes(field string, m float64) error {
	if math.IsNaN(m) || m <= 0 {
		return fmt.Errorf("%w: %s must be greater than 0 minutes", ErrInvalidConfig, field)
	}
	if m > MaxPhaseMinutes {
		return fmt.Errorf("%w: %s must be at most %d minutes", ErrInvalidConfig, field, MaxPhaseMinutes)
	}
	return nil
}

// ValidateSessions checks MinSessions <= n <= MaxSessions
func ValidateSessions(n int) error {
	if n < MinSessions || n > MaxSessions {
		return fmt.Errorf("%w: sessions must be between %d and %d", ErrInvalidConfig, MinSessions, MaxSessions)
	}
	return nil
}

// Validate checks every field against the configured limits
func (c TimerConfig) Validate() error {
	durations := []struct {
		field string
		value time.Duration
	}{
		{"work", c.Work},
		{"break", c.Break},
		{"long_break", c.LongBreak},
	}
	for _, d := range durations {
		if err := ValidateMinutes(d.field, d.value.Minutes()); err != nil {
			return err
		}
	}
	if err := ValidateSessions(c.SessionsUntilLongBreak); err != nil {
		return err
	}
	if !c.AutoAdvance.Valid() {
		return fmt.Errorf("%w: unknown auto_advance mode %q", ErrInvalidConfig, c.AutoAdvance)
	}
	return nil
}

// DurationFor returns the configured length of a phase
func (c TimerConfig) DurationFor(p Phase) time.Duration {
	switch p {
	case PhaseBreak:
		return c.Break
	case PhaseLongBreak:
		return c.LongBreak
	default:
		return c.Work
	}
}
