package domain

import "time"

// Outcome records how a phase ended
type Outcome string

const (
	OutcomeCompleted Outcome = "completed"
	OutcomeSkipped   Outcome = "skipped"
	OutcomeStopped   Outcome = "stopped"
)

// PhaseRecord describes a phase that has ended
type PhaseRecord struct {
	Elapsed      time.Duration
	Outcome      Outcome
	Phase        Phase
	Planned      time.Duration
	SessionCount int
}

// Transition describes a change from one phase to the next
type Transition struct {
	From    Phase
	Paused  bool
	Skipped bool
	To      Phase
}

// Effects collects the side effects of a state change in firing order
type Effects struct {
	Ended       []PhaseRecord
	Hooks       []HookCall
	Transitions []Transition
}

// Merge appends other after e
func (e Effects) Merge(other Effects) Effects {
	return Effects{
		Ended:       append(e.Ended, other.Ended...),
		Hooks:       append(e.Hooks, other.Hooks...),
		Transitions: append(e.Transitions, other.Transitions...),
	}
}

// IsEmpty reports whether the change had no observable effect
func (e Effects) IsEmpty() bool {
	return len(e.Ended) == 0 && len(e.Hooks) == 0 && len(e.Transitions) == 0
}
