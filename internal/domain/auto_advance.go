package domain

import (
	"encoding/json"
	"fmt"
	"strings"
)

// AutoAdvance decides whether a new phase starts running or paused
type AutoAdvance string

const (
	AutoAdvanceAll     AutoAdvance = "all"
	AutoAdvanceNone    AutoAdvance = "none"
	AutoAdvanceToBreak AutoAdvance = "to-break"
	AutoAdvanceToWork  AutoAdvance = "to-work"
)

// ParseAutoAdvance accepts the four mode tokens plus the legacy
// boolean spellings ("true" = all, "false" = none).
func ParseAutoAdvance(s string) (AutoAdvance, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "none", "false":
		return AutoAdvanceNone, nil
	case "all", "true":
		return AutoAdvanceAll, nil
	case "to-break":
		return AutoAdvanceToBreak, nil
	case "to-work":
		return AutoAdvanceToWork, nil
	}
	return "", fmt.Errorf("%w: unknown auto_advance mode %q (expected none, all, to-break or to-work)",
		ErrInvalidConfig, s)
}

// AutoAdvanceFromBool maps the legacy boolean setting onto a mode
func AutoAdvanceFromBool(b bool) AutoAdvance {
	if b {
		return AutoAdvanceAll
	}
	return AutoAdvanceNone
}

// Valid reports whether a is one of the recognized modes
func (a AutoAdvance) Valid() bool {
	switch a {
	case AutoAdvanceNone, AutoAdvanceAll, AutoAdvanceToBreak, AutoAdvanceToWork:
		return true
	}
	return false
}

// StartsRunning reports whether a phase entered by a transition runs immediately
func (a AutoAdvance) StartsRunning(next Phase) bool {
	switch a {
	case AutoAdvanceAll:
		return true
	case AutoAdvanceToBreak:
		return next.IsBreak()
	case AutoAdvanceToWork:
		return next == PhaseWork
	default:
		return false
	}
}

// UnmarshalJSON accepts either a boolean or a mode string
func (a *AutoAdvance) UnmarshalJSON(data []byte) error {
	var b bool
	if err := json.Unmarshal(data, &b); err == nil {
		*a = AutoAdvanceFromBool(b)
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("%w: auto_advance must be a boolean or a string", ErrInvalidConfig)
	}
	parsed, err := ParseAutoAdvance(s)
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

// UnmarshalTOML accepts either a boolean or a mode string
func (a *AutoAdvance) UnmarshalTOML(v any) error {
	switch value := v.(type) {
	case bool:
		*a = AutoAdvanceFromBool(value)
		return nil
	case string:
		parsed, err := ParseAutoAdvance(value)
		if err != nil {
			return err
		}
		*a = parsed
		return nil
	default:
		return fmt.Errorf("%w: auto_advance must be a boolean or a string, got %T", ErrInvalidConfig, v)
	}
}
