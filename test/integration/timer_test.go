package integration_test

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"tomat/test/integration/harness"
)

func TestStatus_Idle(t *testing.T) {
	env := harness.NewTestEnvironment(t)
	harness.StartDaemon(t, env)

	result := harness.RunCommand(t, env, "status")

	harness.AssertSuccess(t, result)
	harness.AssertJSONContains(t, result, "class", "idle")
	harness.AssertJSONContains(t, result, "text", "🍅 --:--")
	harness.AssertJSONContains(t, result, "tooltip", "No active session")
}

func TestStart_DefaultsAndOverrides(t *testing.T) {
	env := harness.NewTestEnvironment(t)
	harness.StartDaemon(t, env)

	result := harness.RunCommand(t, env, "start")
	harness.AssertSuccess(t, result)
	harness.AssertStdoutContains(t, result, "Pomodoro started: 25.0min work, 5.0min break, 15.0min long break every 4 sessions")

	result = harness.RunCommand(t, env, "status")
	harness.AssertSuccess(t, result)
	harness.AssertJSONContains(t, result, "class", "work")
	harness.AssertJSONContains(t, result, "tooltip", "Work (1/4) - 25.0min")

	// A second start replaces the session
	result = harness.RunCommand(t, env, "start", "--work", "50", "--sessions", "2")
	harness.AssertSuccess(t, result)
	harness.AssertStdoutContains(t, result, "50.0min work")

	result = harness.RunCommand(t, env, "status")
	harness.AssertJSONContains(t, result, "tooltip", "Work (1/2) - 50.0min")
}

func TestStart_ConfigDefaults(t *testing.T) {
	env := harness.NewTestEnvironment(t)
	env.WriteConfig(`
[timer]
work = 45
break = 10
sessions = 3
`)
	harness.StartDaemon(t, env)

	result := harness.RunCommand(t, env, "start")

	harness.AssertSuccess(t, result)
	harness.AssertStdoutContains(t, result, "45.0min work, 10.0min break, 15.0min long break every 3 sessions")
}

func TestStart_InvalidFlags(t *testing.T) {
	env := harness.NewTestEnvironment(t)
	harness.StartDaemon(t, env)

	tests := []struct {
		name string
		args []string
	}{
		{"zero work", []string{"start", "--work", "0"}},
		{"sessions out of range", []string{"start", "--sessions", "0"}},
		{"unknown auto-advance", []string{"start", "--auto-advance", "sometimes"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			harness.AssertFailure(t, harness.RunCommand(t, env, tt.args...))
		})
	}

	// Nothing was started
	result := harness.RunCommand(t, env, "status")
	harness.AssertJSONContains(t, result, "class", "idle")
}

func TestTimerControls(t *testing.T) {
	env := harness.NewTestEnvironment(t)
	harness.StartDaemon(t, env)
	harness.AssertSuccess(t, harness.RunCommand(t, env, "start"))

	result := harness.RunCommand(t, env, "pause")
	harness.AssertSuccess(t, result)
	harness.AssertStdoutContains(t, result, "Timer paused")

	result = harness.RunCommand(t, env, "pause")
	harness.AssertSuccess(t, result)
	harness.AssertStdoutContains(t, result, "Timer is already paused")

	result = harness.RunCommand(t, env, "status")
	harness.AssertJSONContains(t, result, "class", "work-paused")
	harness.AssertJSONContains(t, result, "text", "🍅 25:00 ⏸")

	result = harness.RunCommand(t, env, "resume")
	harness.AssertSuccess(t, result)
	harness.AssertStdoutContains(t, result, "Timer resumed")

	result = harness.RunCommand(t, env, "resume")
	harness.AssertSuccess(t, result)
	harness.AssertStdoutContains(t, result, "Timer is already running")

	result = harness.RunCommand(t, env, "toggle")
	harness.AssertSuccess(t, result)
	harness.AssertStdoutContains(t, result, "Timer paused")

	result = harness.RunCommand(t, env, "toggle")
	harness.AssertSuccess(t, result)
	harness.AssertStdoutContains(t, result, "Timer resumed")

	result = harness.RunCommand(t, env, "skip")
	harness.AssertSuccess(t, result)
	harness.AssertStdoutContains(t, result, "Skipped to next phase")

	// Without auto-advance the break waits for resume
	result = harness.RunCommand(t, env, "status")
	harness.AssertJSONContains(t, result, "class", "break-paused")
	harness.AssertJSONContains(t, result, "text", "☕ 05:00 ⏸")

	result = harness.RunCommand(t, env, "stop")
	harness.AssertSuccess(t, result)
	harness.AssertStdoutContains(t, result, "Timer stopped")

	result = harness.RunCommand(t, env, "status")
	harness.AssertJSONContains(t, result, "class", "idle")
}

func TestControls_NoActiveSession(t *testing.T) {
	env := harness.NewTestEnvironment(t)
	harness.StartDaemon(t, env)

	for _, command := range []string{"stop", "skip", "pause", "resume", "toggle"} {
		t.Run(command, func(t *testing.T) {
			result := harness.RunCommand(t, env, command)
			harness.AssertExitCode(t, result, 1)
			harness.AssertStderrContains(t, result, "No active session")
		})
	}
}

func TestStatus_OutputFormats(t *testing.T) {
	env := harness.NewTestEnvironment(t)
	harness.StartDaemon(t, env)
	harness.AssertSuccess(t, harness.RunCommand(t, env, "start", "--auto-advance", "none"))
	harness.AssertSuccess(t, harness.RunCommand(t, env, "pause"))

	t.Run("plain", func(t *testing.T) {
		result := harness.RunCommand(t, env, "status", "--output", "plain")
		harness.AssertSuccess(t, result)
		assert.Equal(t, "🍅 25:00 ⏸", strings.TrimSpace(result.Stdout))
	})

	t.Run("i3status-rs", func(t *testing.T) {
		result := harness.RunCommand(t, env, "status", "--output", "i3status-rs")
		harness.AssertSuccess(t, result)
		harness.AssertJSONContains(t, result, "state", "Info")
		harness.AssertJSONContains(t, result, "text", "🍅 25:00 ⏸")
	})

	t.Run("custom template", func(t *testing.T) {
		result := harness.RunCommand(t, env, "status", "--output", "plain", "--format", "{phase} {session} {time}")
		harness.AssertSuccess(t, result)
		assert.Equal(t, "Work 1/4 25:00", strings.TrimSpace(result.Stdout))
	})

	t.Run("configured template", func(t *testing.T) {
		other := harness.NewTestEnvironment(t)
		other.WriteConfig("[display]\ntext_format = \"[{time}]\"\n")
		harness.StartDaemon(t, other)
		harness.AssertSuccess(t, harness.RunCommand(t, other, "start"))
		harness.AssertSuccess(t, harness.RunCommand(t, other, "pause"))

		result := harness.RunCommand(t, other, "status", "--output", "plain")
		assert.Equal(t, "[25:00]", strings.TrimSpace(result.Stdout))
	})
}

func TestAutoAdvance_FractionalMinutes(t *testing.T) {
	env := harness.NewTestEnvironment(t)
	harness.StartDaemon(t, env)

	// 1.2s of work then 1.2s of break, running continuously
	result := harness.RunCommand(t, env, "start", "--work", "0.02", "--break", "0.02", "--auto-advance", "all")
	harness.AssertSuccess(t, result)

	result = harness.AssertEventuallyStdout(t, env, 5*time.Second, `"class":"break"`, "status")
	harness.AssertStdoutNotContains(t, result, "paused")

	// Back to work, now in session 2
	result = harness.AssertEventuallyStdout(t, env, 5*time.Second, `"class":"work"`, "status")
	harness.AssertStdoutContains(t, result, "2/4")
}

func TestAutoAdvance_NoneWaitsAtBoundary(t *testing.T) {
	env := harness.NewTestEnvironment(t)
	harness.StartDaemon(t, env)

	harness.AssertSuccess(t, harness.RunCommand(t, env, "start", "--work", "0.01"))

	harness.AssertEventuallyStdout(t, env, 5*time.Second, `"class":"break-paused"`, "status")

	// The paused break does not count down
	time.Sleep(1500 * time.Millisecond)
	result := harness.RunCommand(t, env, "status", "--output", "plain")
	assert.Equal(t, "☕ 05:00 ⏸", strings.TrimSpace(result.Stdout))
}

func TestWatch_StreamsUntilDaemonStops(t *testing.T) {
	env := harness.NewTestEnvironment(t)
	daemon := harness.StartDaemon(t, env)
	harness.AssertSuccess(t, harness.RunCommand(t, env, "start"))

	done := make(chan harness.CommandResult, 1)
	go func() {
		done <- harness.RunCommandWithTimeout(t, env, 10*time.Second, "watch", "--output", "plain", "--interval", "0.2")
	}()

	time.Sleep(time.Second)
	daemon.Stop(t)

	select {
	case result := <-done:
		lines := strings.Split(strings.TrimSpace(result.Stdout), "\n")
		assert.GreaterOrEqual(t, len(lines), 2, "stdout: %s", result.Stdout)
		assert.True(t, strings.HasPrefix(lines[0], "🍅 "), lines[0])
	case <-time.After(10 * time.Second):
		t.Fatal("watch did not exit after the daemon stopped")
	}
}
