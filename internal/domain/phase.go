package domain

// Phase is the timer's current activity segment
type Phase string

const (
	PhaseBreak     Phase = "break"
	PhaseLongBreak Phase = "long_break"
	PhaseWork      Phase = "work"
)

// IsBreak reports whether the phase is a short or long break
func (p Phase) IsBreak() bool {
	return p == PhaseBreak || p == PhaseLongBreak
}

// DisplayName returns the phase name shown to users
func (p Phase) DisplayName() string {
	switch p {
	case PhaseWork:
		return "Work"
	case PhaseBreak:
		return "Break"
	case PhaseLongBreak:
		return "Long Break"
	default:
		return string(p)
	}
}
