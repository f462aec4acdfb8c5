package services

import (
	"context"
	"sync"
	"time"

	"tomat/internal/domain"
	"tomat/internal/logging"
	"tomat/internal/ports"
)

// TransitionService applies the side effects of timer state changes:
// user hooks, transition sounds, desktop notifications and phase history.
// Sound, notifier and history are optional; nil disables them.
type TransitionService struct {
	history  ports.HistoryWriter
	hooks    ports.HookRunner
	messages func(domain.Phase) string
	notifier ports.Notifier
	now      func() time.Time
	sound    ports.SoundPlayer
	wg       sync.WaitGroup
}

// TransitionOptions wires the optional side-effect adapters
type TransitionOptions struct {
	History  ports.HistoryWriter
	Messages func(domain.Phase) string
	Notifier ports.Notifier
	Sound    ports.SoundPlayer
}

// NewTransitionService creates a new TransitionService
func NewTransitionService(hooks ports.HookRunner, opts TransitionOptions) *TransitionService {
	messages := opts.Messages
	if messages == nil {
		messages = func(p domain.Phase) string { return p.DisplayName() }
	}
	return &TransitionService{
		history:  opts.History,
		hooks:    hooks,
		messages: messages,
		notifier: opts.Notifier,
		now:      time.Now,
		sound:    opts.Sound,
	}
}

// Apply runs the effects of one state change. Hooks run sequentially in
// firing order and Apply returns once the last one finished. Sounds and
// notifications are fire-and-forget; Wait blocks until they are done.
func (s *TransitionService) Apply(ctx context.Context, effects domain.Effects) []domain.HookResult {
	endedAt := s.now()
	for _, record := range effects.Ended {
		s.record(ctx, record, endedAt)
	}

	for _, transition := range effects.Transitions {
		s.announce(transition)
	}

	results := make([]domain.HookResult, 0, len(effects.Hooks))
	for _, call := range effects.Hooks {
		results = append(results, s.hooks.Run(ctx, call))
	}
	return results
}

// Wait blocks until pending sounds and notifications finished or ctx expires
func (s *TransitionService) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *TransitionService) record(ctx context.Context, record domain.PhaseRecord, endedAt time.Time) {
	if s.history == nil {
		return
	}
	if err := s.history.Record(ctx, record, endedAt); err != nil {
		logging.Logger.Warn("Failed to record phase history", "phase", record.Phase, "error", err)
	}
}

func (s *TransitionService) announce(t domain.Transition) {
	if s.sound == nil && s.notifier == nil {
		return
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		if s.sound != nil {
			if err := s.sound.PlaySoundForEvent(SoundFor(t)); err != nil {
				logging.Logger.Warn("Failed to play transition sound", "error", err)
			}
		}

		if s.notifier != nil {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := s.notifier.Notify(ctx, "Pomodoro Timer", s.messages(t.To)); err != nil {
				logging.Logger.Warn("Failed to send notification", "error", err)
			}
		}
	}()
}

// SoundFor maps a transition to its sound event type
func SoundFor(t domain.Transition) string {
	switch t.To {
	case domain.PhaseLongBreak:
		return ports.SoundWorkToLongBreak
	case domain.PhaseBreak:
		return ports.SoundWorkToBreak
	default:
		return ports.SoundBreakToWork
	}
}
