package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"tomat/internal/domain"
	"tomat/internal/logging"
	"tomat/internal/paths"
)

// DefaultTextFormat is the status text template used when none is configured
const DefaultTextFormat = "{icon} {time} {state}"

// Defaults for the side-effect sections
const (
	DefaultNotificationTimeout = 3000 // milliseconds
	DefaultVolume              = 0.5
)

const (
	defaultBreakMessage     = "Break time! Take a short rest ☕"
	defaultLongBreakMessage = "Long break time! Take a well-deserved rest 🏖️"
	defaultWorkMessage      = "Back to work! Let's focus 🍅"
)

// Settings represents the structure of config.toml.
// Unset values stay nil so defaults can be applied per field.
type Settings struct {
	Display      DisplaySettings         `toml:"display"`
	History      HistorySettings         `toml:"history"`
	Hooks        map[string]HookSettings `toml:"hooks,omitempty"`
	Notification NotificationSettings    `toml:"notification"`
	Sound        SoundSettings           `toml:"sound"`
	Timer        TimerSettings           `toml:"timer"`
}

// TimerSettings holds durations in fractional minutes
type TimerSettings struct {
	AutoAdvance *domain.AutoAdvance `toml:"auto_advance,omitempty"`
	Break       *float64            `toml:"break,omitempty"`
	LongBreak   *float64            `toml:"long_break,omitempty"`
	Sessions    *int                `toml:"sessions,omitempty"`
	Work        *float64            `toml:"work,omitempty"`
}

// SoundSettings controls transition sounds
type SoundSettings struct {
	BreakToWork     string   `toml:"break_to_work,omitempty"`
	Enabled         *bool    `toml:"enabled,omitempty"`
	SystemBeep      *bool    `toml:"system_beep,omitempty"`
	Volume          *float64 `toml:"volume,omitempty"`
	WorkToBreak     string   `toml:"work_to_break,omitempty"`
	WorkToLongBreak string   `toml:"work_to_long_break,omitempty"`
}

// NotificationSettings controls desktop notifications
type NotificationSettings struct {
	BreakMessage     string `toml:"break_message,omitempty"`
	Enabled          *bool  `toml:"enabled,omitempty"`
	Icon             string `toml:"icon,omitempty"`
	LongBreakMessage string `toml:"long_break_message,omitempty"`
	Timeout          *int   `toml:"timeout,omitempty"`
	WorkMessage      string `toml:"work_message,omitempty"`
}

// DisplaySettings controls status rendering
type DisplaySettings struct {
	TextFormat string `toml:"text_format,omitempty"`
}

// HistorySettings controls the phase history database
type HistorySettings struct {
	Enabled *bool  `toml:"enabled,omitempty"`
	Path    string `toml:"path,omitempty"`
}

// HookSettings is one [hooks.on_*] table
type HookSettings struct {
	Args          []string `toml:"args,omitempty"`
	CaptureOutput bool     `toml:"capture_output,omitempty"`
	Cmd           string   `toml:"cmd"`
	Cwd           string   `toml:"cwd,omitempty"`
	Timeout       *float64 `toml:"timeout,omitempty"` // seconds
}

// LoadSettings loads config.toml from paths.ConfigPath().
// Returns empty Settings if the file doesn't exist (not an error).
func LoadSettings() (*Settings, error) {
	return LoadSettingsFrom(paths.ConfigPath())
}

// LoadSettingsFrom loads settings from an explicit path
func LoadSettingsFrom(path string) (*Settings, error) {
	var settings Settings
	meta, err := toml.DecodeFile(path, &settings)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &Settings{}, nil
		}
		return nil, fmt.Errorf("invalid config file %s: %w", path, err)
	}

	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, 0, len(undecoded))
		for _, key := range undecoded {
			keys = append(keys, key.String())
		}
		logging.Logger.Warn("Ignoring unknown config keys", "path", path, "keys", keys)
	}

	return &settings, nil
}

// SaveSettings writes settings as TOML, creating the directory if needed
func SaveSettings(path string, settings *Settings) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer file.Close()

	if err := toml.NewEncoder(file).Encode(settings); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return nil
}

// TimerConfig resolves the timer section against built-in defaults
func (s *Settings) TimerConfig() (domain.TimerConfig, error) {
	cfg := domain.DefaultTimerConfig()
	t := s.Timer

	minutes := []struct {
		field string
		value *float64
		dest  *time.Duration
	}{
		{"timer.work", t.Work, &cfg.Work},
		{"timer.break", t.Break, &cfg.Break},
		{"timer.long_break", t.LongBreak, &cfg.LongBreak},
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

	if t.Sessions != nil {
		if err := domain.ValidateSessions(*t.Sessions); err != nil {
			return domain.TimerConfig{}, fmt.Errorf("timer.sessions: %w", err)
		}
		cfg.SessionsUntilLongBreak = *t.Sessions
	}
	if t.AutoAdvance != nil {
		cfg.AutoAdvance = *t.AutoAdvance
	}

	return cfg, cfg.Validate()
}

// HookSpecs converts the [hooks] tables into executor specs.
// Unknown event names and empty commands are configuration errors.
func (s *Settings) HookSpecs() (map[domain.HookEvent]domain.HookSpec, error) {
	specs := make(map[domain.HookEvent]domain.HookSpec, len(s.Hooks))

	names := make([]string, 0, len(s.Hooks))
	for name := range s.Hooks {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		hook := s.Hooks[name]
		event, ok := domain.ParseHookEvent(name)
		if !ok {
			return nil, fmt.Errorf("unknown hook event %q", name)
		}
		if strings.TrimSpace(hook.Cmd) == "" {
			return nil, fmt.Errorf("hooks.%s: cmd is required", name)
		}

		timeout := domain.DefaultHookTimeout
		if hook.Timeout != nil {
			seconds := *hook.Timeout
			if math.IsNaN(seconds) || seconds < 0 {
				return nil, fmt.Errorf("hooks.%s: timeout must not be negative", name)
			}
			if seconds > domain.MaxHookTimeout.Seconds() {
				return nil, fmt.Errorf("hooks.%s: timeout must be at most %d seconds", name, int(domain.MaxHookTimeout.Seconds()))
			}
			timeout = time.Duration(seconds * float64(time.Second))
		}

		dir := paths.ExpandPath(hook.Cwd)
		if dir == "" {
			if home, err := os.UserHomeDir(); err == nil {
				dir = home
			}
		}

		specs[event] = domain.HookSpec{
			Args:          hook.Args,
			CaptureOutput: hook.CaptureOutput,
			Command:       paths.ExpandPath(hook.Cmd),
			Dir:           dir,
			Timeout:       timeout,
		}
	}

	return specs, nil
}

// TextFormat returns the configured status template or the default
func (s *Settings) TextFormat() string {
	if s.Display.TextFormat != "" {
		return s.Display.TextFormat
	}
	return DefaultTextFormat
}

// SoundEnabled defaults to true
func (s *Settings) SoundEnabled() bool {
	return s.Sound.Enabled == nil || *s.Sound.Enabled
}

// SystemBeep defaults to false
func (s *Settings) SystemBeep() bool {
	return s.Sound.SystemBeep != nil && *s.Sound.SystemBeep
}

// Volume returns the configured volume clamped to [0, 1]
func (s *Settings) Volume() float64 {
	if s.Sound.Volume == nil {
		return DefaultVolume
	}
	v := *s.Sound.Volume
	if v < 0 || v > 1 {
		logging.Logger.Warn("Volume out of range, using default", "volume", v, "default", DefaultVolume)
		return DefaultVolume
	}
	return v
}

// NotificationsEnabled defaults to true
func (s *Settings) NotificationsEnabled() bool {
	return s.Notification.Enabled == nil || *s.Notification.Enabled
}

// NotificationTimeout returns the timeout in milliseconds
func (s *Settings) NotificationTimeout() int {
	if s.Notification.Timeout == nil {
		return DefaultNotificationTimeout
	}
	return *s.Notification.Timeout
}

// NotificationMessage returns the message shown when phase starts
func (s *Settings) NotificationMessage(p domain.Phase) string {
	switch p {
	case domain.PhaseBreak:
		return orDefault(s.Notification.BreakMessage, defaultBreakMessage)
	case domain.PhaseLongBreak:
		return orDefault(s.Notification.LongBreakMessage, defaultLongBreakMessage)
	default:
		return orDefault(s.Notification.WorkMessage, defaultWorkMessage)
	}
}

// HistoryEnabled defaults to true
func (s *Settings) HistoryEnabled() bool {
	return s.History.Enabled == nil || *s.History.Enabled
}

// HistoryPath returns the configured database path or the default
func (s *Settings) HistoryPath() string {
	if s.History.Path != "" {
		return paths.ExpandPath(s.History.Path)
	}
	return paths.HistoryPath()
}

func orDefault(value, fallback string) string {
	if value != "" {
		return value
	}
	return fallback
}
