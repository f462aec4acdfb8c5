package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tomat/internal/domain"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadSettingsFrom_MissingFileUsesDefaults(t *testing.T) {
	settings, err := LoadSettingsFrom(filepath.Join(t.TempDir(), "absent.toml"))
	require.NoError(t, err)

	cfg, err := settings.TimerConfig()
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultTimerConfig(), cfg)
	assert.Equal(t, DefaultTextFormat, settings.TextFormat())
	assert.True(t, settings.SoundEnabled())
	assert.True(t, settings.NotificationsEnabled())
	assert.True(t, settings.HistoryEnabled())
	assert.Equal(t, DefaultVolume, settings.Volume())
	assert.Equal(t, DefaultNotificationTimeout, settings.NotificationTimeout())
}

func TestLoadSettingsFrom_InvalidTOML(t *testing.T) {
	path := writeConfig(t, "[timer\nwork = ")
	_, err := LoadSettingsFrom(path)
	assert.Error(t, err)
}

func TestTimerConfig(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    func(*domain.TimerConfig)
		wantErr bool
	}{
		{
			name: "all fields",
			content: `[timer]
work = 50
break = 10
long_break = 30
sessions = 3
auto_advance = "to-break"`,
			want: func(c *domain.TimerConfig) {
				c.Work = 50 * time.Minute
				c.Break = 10 * time.Minute
				c.LongBreak = 30 * time.Minute
				c.SessionsUntilLongBreak = 3
				c.AutoAdvance = domain.AutoAdvanceToBreak
			},
		},
		{
			name:    "legacy boolean auto advance",
			content: "[timer]\nauto_advance = true",
			want:    func(c *domain.TimerConfig) { c.AutoAdvance = domain.AutoAdvanceAll },
		},
		{
			name:    "fractional minutes",
			content: "[timer]\nwork = 0.5",
			want:    func(c *domain.TimerConfig) { c.Work = 30 * time.Second },
		},
		{name: "zero work", content: "[timer]\nwork = 0", wantErr: true},
		{name: "too long", content: "[timer]\nlong_break = 601", wantErr: true},
		{name: "too many sessions", content: "[timer]\nsessions = 101", wantErr: true},
		{name: "unknown mode", content: "[timer]\nauto_advance = \"maybe\"", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			settings, err := LoadSettingsFrom(writeConfig(t, tt.content))
			if err == nil {
				var cfg domain.TimerConfig
				cfg, err = settings.TimerConfig()
				if !tt.wantErr {
					require.NoError(t, err)
					want := domain.DefaultTimerConfig()
					tt.want(&want)
					assert.Equal(t, want, cfg)
					return
				}
			}
			assert.Error(t, err)
		})
	}
}

func TestHookSpecs(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	path := writeConfig(t, `
[hooks.on_work_start]
cmd = "notify-send"
args = ["-t", "1000", "Work"]

[hooks.on_pause]
cmd = "sh"
args = ["-c", "echo paused"]
timeout = 0
cwd = "/tmp"
capture_output = true

[hooks.on_complete]
cmd = "true"
timeout = 1.5
`)
	settings, err := LoadSettingsFrom(path)
	require.NoError(t, err)

	specs, err := settings.HookSpecs()
	require.NoError(t, err)
	require.Len(t, specs, 3)

	work := specs[domain.HookWorkStart]
	assert.Equal(t, "notify-send", work.Command)
	assert.Equal(t, []string{"-t", "1000", "Work"}, work.Args)
	assert.Equal(t, domain.DefaultHookTimeout, work.Timeout)
	assert.Equal(t, home, work.Dir)
	assert.False(t, work.CaptureOutput)

	pause := specs[domain.HookPause]
	assert.Equal(t, time.Duration(0), pause.Timeout, "0 means unbounded")
	assert.Equal(t, "/tmp", pause.Dir)
	assert.True(t, pause.CaptureOutput)

	assert.Equal(t, 1500*time.Millisecond, specs[domain.HookComplete].Timeout)
}

func TestHookSpecs_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"unknown event", "[hooks.on_lunch]\ncmd = \"true\""},
		{"empty command", "[hooks.on_pause]\ncmd = \"\""},
		{"negative timeout", "[hooks.on_pause]\ncmd = \"true\"\ntimeout = -1"},
		{"timeout past a day", "[hooks.on_pause]\ncmd = \"true\"\ntimeout = 86401"},
		{"huge timeout", "[hooks.on_pause]\ncmd = \"true\"\ntimeout = 1e300"},
		{"infinite timeout", "[hooks.on_pause]\ncmd = \"true\"\ntimeout = inf"},
		{"nan timeout", "[hooks.on_pause]\ncmd = \"true\"\ntimeout = nan"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			settings, err := LoadSettingsFrom(writeConfig(t, tt.content))
			require.NoError(t, err)
			_, err = settings.HookSpecs()
			assert.Error(t, err)
		})
	}
}

func TestHookSpecs_TimeoutBounds(t *testing.T) {
	settings, err := LoadSettingsFrom(writeConfig(t, `
[hooks.on_pause]
cmd = "true"
timeout = 86400

[hooks.on_resume]
cmd = "true"
timeout = 0
`))
	require.NoError(t, err)

	specs, err := settings.HookSpecs()
	require.NoError(t, err)

	assert.Equal(t, domain.MaxHookTimeout, specs[domain.HookPause].Timeout)
	assert.Zero(t, specs[domain.HookResume].Timeout, "zero leaves the hook unbounded")
}

func TestSideEffectSettings(t *testing.T) {
	path := writeConfig(t, `
[sound]
enabled = false
system_beep = true
volume = 2.0

[notification]
enabled = false
timeout = 500
break_message = "rest"

[display]
text_format = "{phase} {time}"

[history]
enabled = false
path = "/var/tmp/tomat.db"
`)
	settings, err := LoadSettingsFrom(path)
	require.NoError(t, err)

	assert.False(t, settings.SoundEnabled())
	assert.True(t, settings.SystemBeep())
	assert.Equal(t, DefaultVolume, settings.Volume(), "out-of-range volume falls back to default")
	assert.False(t, settings.NotificationsEnabled())
	assert.Equal(t, 500, settings.NotificationTimeout())
	assert.Equal(t, "rest", settings.NotificationMessage(domain.PhaseBreak))
	assert.Contains(t, settings.NotificationMessage(domain.PhaseWork), "work")
	assert.Equal(t, "{phase} {time}", settings.TextFormat())
	assert.False(t, settings.HistoryEnabled())
	assert.Equal(t, "/var/tmp/tomat.db", settings.HistoryPath())
}

func TestSaveSettingsRoundTrip(t *testing.T) {
	work := 45.0
	sessions := 6
	mode := domain.AutoAdvanceToWork
	original := &Settings{
		Timer: TimerSettings{Work: &work, Sessions: &sessions, AutoAdvance: &mode},
	}

	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	require.NoError(t, SaveSettings(path, original))

	loaded, err := LoadSettingsFrom(path)
	require.NoError(t, err)
	cfg, err := loaded.TimerConfig()
	require.NoError(t, err)
	assert.Equal(t, 45*time.Minute, cfg.Work)
	assert.Equal(t, 6, cfg.SessionsUntilLongBreak)
	assert.Equal(t, domain.AutoAdvanceToWork, cfg.AutoAdvance)
	assert.Equal(t, domain.Minutes(domain.DefaultBreakMinutes), cfg.Break)
}

func TestExampleSettings(t *testing.T) {
	example := ExampleSettings()

	cfg, err := example.TimerConfig()
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultTimerConfig(), cfg)

	specs, err := example.HookSpecs()
	require.NoError(t, err)
	assert.Contains(t, specs, domain.HookWorkStart)
	assert.Contains(t, specs, domain.HookBreakStart)

	// The printed example must load back without unknown keys
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, SaveSettings(path, example))
	loaded, err := LoadSettingsFrom(path)
	require.NoError(t, err)
	assert.Equal(t, example.TextFormat(), loaded.TextFormat())
	assert.Equal(t, example.Volume(), loaded.Volume())
	assert.Equal(t, example.NotificationMessage(domain.PhaseLongBreak), loaded.NotificationMessage(domain.PhaseLongBreak))
}
