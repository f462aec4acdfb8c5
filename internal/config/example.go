package config

import (
	"tomat/internal/domain"
)

// ExampleSettings returns a Settings with every section filled in, used by
// `tomat config example`. Values are the built-in defaults so the output
// can be pasted as-is.
func ExampleSettings() *Settings {
	timer := domain.DefaultTimerConfig()
	work := timer.Work.Minutes()
	brk := timer.Break.Minutes()
	longBreak := timer.LongBreak.Minutes()
	sessions := timer.SessionsUntilLongBreak
	mode := timer.AutoAdvance

	enabled := true
	beep := false
	volume := DefaultVolume
	notifyTimeout := DefaultNotificationTimeout
	hookTimeout := domain.DefaultHookTimeout.Seconds()

	return &Settings{
		Display: DisplaySettings{TextFormat: DefaultTextFormat},
		History: HistorySettings{Enabled: &enabled},
		Hooks: map[string]HookSettings{
			string(domain.HookWorkStart): {
				Cmd:     "notify-send",
				Args:    []string{"tomat", "Focus time"},
				Timeout: &hookTimeout,
			},
			string(domain.HookBreakStart): {
				Cmd:  "sh",
				Args: []string{"-c", "echo \"$TOMAT_PHASE\" >> ~/tomat.log"},
			},
		},
		Notification: NotificationSettings{
			BreakMessage:     defaultBreakMessage,
			Enabled:          &enabled,
			Icon:             "appointment-soon",
			LongBreakMessage: defaultLongBreakMessage,
			Timeout:          &notifyTimeout,
			WorkMessage:      defaultWorkMessage,
		},
		Sound: SoundSettings{
			Enabled:    &enabled,
			SystemBeep: &beep,
			Volume:     &volume,
		},
		Timer: TimerSettings{
			AutoAdvance: &mode,
			Break:       &brk,
			LongBreak:   &longBreak,
			Sessions:    &sessions,
			Work:        &work,
		},
	}
}
