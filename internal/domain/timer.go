package domain

import "time"

// Timer is the phase state machine for one pomodoro session.
// It is not safe for concurrent use; the owner serializes every call.
type Timer struct {
	config       TimerConfig
	paused       bool
	pending      HookEvent // start hook deferred until the phase first runs
	phase        Phase
	remaining    time.Duration
	sessionCount int
}

// NewTimer starts a running work phase with session_count 1
func NewTimer(cfg TimerConfig) (*Timer, Effects, error) {
	if err := cfg.Validate(); err != nil {
		return nil, Effects{}, err
	}

	t := &Timer{
		config:       cfg,
		phase:        PhaseWork,
		remaining:    cfg.Work,
		sessionCount: 1,
	}
	return t, Effects{Hooks: []HookCall{t.call(HookWorkStart)}}, nil
}

// Config returns the configuration fixed at start
func (t *Timer) Config() TimerConfig { return t.config }

// IsPaused reports whether the countdown is frozen
func (t *Timer) IsPaused() bool { return t.paused }

// Phase returns the current phase
func (t *Timer) Phase() Phase { return t.phase }

// Remaining returns the time left in the current phase
func (t *Timer) Remaining() time.Duration { return t.remaining }

// SessionCount returns the 1-based work session counter
func (t *Timer) SessionCount() int { return t.sessionCount }

// UntilCompletion returns the time until the phase completes on its own.
// The second result is false while paused.
func (t *Timer) UntilCompletion() (time.Duration, bool) {
	if t.paused {
		return 0, false
	}
	return t.remaining, true
}

// Advance subtracts elapsed running time and completes the phase at zero
func (t *Timer) Advance(elapsed time.Duration) Effects {
	if t.paused || elapsed <= 0 {
		return Effects{}
	}

	t.remaining -= elapsed
	if t.remaining > 0 {
		return Effects{}
	}
	t.remaining = 0
	return t.complete(false)
}

// Skip ends the current phase immediately
func (t *Timer) Skip() Effects {
	eff := Effects{Hooks: []HookCall{t.call(HookSkip)}}
	return eff.Merge(t.complete(true))
}

// Pause freezes the countdown. Pausing a paused timer has no effect.
func (t *Timer) Pause() Effects {
	if t.paused {
		return Effects{}
	}
	t.paused = true
	return Effects{Hooks: []HookCall{t.call(HookPause)}}
}

// Resume restarts the countdown and fires any deferred start hook.
// Resuming a running timer has no effect.
func (t *Timer) Resume() Effects {
	if !t.paused {
		return Effects{}
	}
	t.paused = false

	eff := Effects{Hooks: []HookCall{t.call(HookResume)}}
	if t.pending != "" {
		eff.Hooks = append(eff.Hooks, t.call(t.pending))
		t.pending = ""
	}
	return eff
}

// Toggle pauses a running timer or resumes a paused one
func (t *Timer) Toggle() Effects {
	if t.paused {
		return t.Resume()
	}
	return t.Pause()
}

// Stop ends the session. The caller discards the timer afterwards.
func (t *Timer) Stop() Effects {
	return Effects{
		Ended: []PhaseRecord{t.record(OutcomeStopped)},
		Hooks: []HookCall{t.call(HookStop)},
	}
}

// Status returns the current snapshot
func (t *Timer) Status() Status {
	return Status{
		AutoAdvance:            t.config.AutoAdvance,
		DurationSeconds:        ceilSeconds(t.config.DurationFor(t.phase)),
		IsPaused:               t.paused,
		Phase:                  t.phase,
		RemainingSeconds:       ceilSeconds(t.remaining),
		SessionCount:           t.sessionCount,
		SessionsUntilLongBreak: t.config.SessionsUntilLongBreak,
	}
}

func (t *Timer) complete(skipped bool) Effects {
	from := t.phase
	outcome := OutcomeCompleted
	if skipped {
		outcome = OutcomeSkipped
	}

	eff := Effects{Ended: []PhaseRecord{t.record(outcome)}}
	eff.Hooks = append(eff.Hooks, t.call(EndHookFor(from)))
	if !skipped {
		eff.Hooks = append(eff.Hooks, t.call(HookComplete))
	}

	next := t.nextPhase()
	switch {
	case from == PhaseWork && next == PhaseBreak:
		t.sessionCount++
	case from == PhaseLongBreak:
		t.sessionCount = 1
	}

	t.phase = next
	t.remaining = t.config.DurationFor(next)
	t.paused = !t.config.AutoAdvance.StartsRunning(next)
	t.pending = ""

	start := StartHookFor(next)
	if t.paused {
		t.pending = start
	} else {
		eff.Hooks = append(eff.Hooks, t.call(start))
	}

	eff.Transitions = append(eff.Transitions, Transition{
		From:    from,
		Paused:  t.paused,
		Skipped: skipped,
		To:      next,
	})
	return eff
}

func (t *Timer) nextPhase() Phase {
	if t.phase != PhaseWork {
		return PhaseWork
	}
	if t.sessionCount >= t.config.SessionsUntilLongBreak {
		return PhaseLongBreak
	}
	return PhaseBreak
}

func (t *Timer) record(outcome Outcome) PhaseRecord {
	planned := t.config.DurationFor(t.phase)
	return PhaseRecord{
		Elapsed:      planned - t.remaining,
		Outcome:      outcome,
		Phase:        t.phase,
		Planned:      planned,
		SessionCount: t.sessionCount,
	}
}

func (t *Timer) call(event HookEvent) HookCall {
	return HookCall{Event: event, Status: t.Status()}
}
