package process

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tomat/internal/domain"
)

func testCall(event domain.HookEvent) domain.HookCall {
	return domain.HookCall{
		Event: event,
		Status: domain.Status{
			AutoAdvance:            domain.AutoAdvanceToBreak,
			IsPaused:               false,
			Phase:                  domain.PhaseWork,
			RemainingSeconds:       1499,
			SessionCount:           2,
			SessionsUntilLongBreak: 4,
		},
	}
}

func shellHook(script string, timeout time.Duration, capture bool) domain.HookSpec {
	return domain.HookSpec{
		Args:          []string{"-c", script},
		CaptureOutput: capture,
		Command:       "sh",
		Timeout:       timeout,
	}
}

func TestHookExecutor_NoHookConfigured(t *testing.T) {
	executor := NewHookExecutor(nil)

	result := executor.Run(context.Background(), testCall(domain.HookPause))

	assert.False(t, result.Ran)
	assert.NoError(t, result.Err)
}

func TestHookExecutor_Environment(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "env.txt")
	script := `printf "%s|%s|%s|%s|%s|%s\n" "$TOMAT_EVENT" "$TOMAT_PHASE" "$TOMAT_REMAINING_SECONDS" "$TOMAT_SESSION_COUNT" "$TOMAT_AUTO_ADVANCE" "$EVENT" > ` + out
	executor := NewHookExecutor(map[domain.HookEvent]domain.HookSpec{
		domain.HookWorkStart: shellHook(script, 5*time.Second, false),
	})

	result := executor.Run(context.Background(), testCall(domain.HookWorkStart))

	require.True(t, result.Ran)
	require.NoError(t, result.Err)
	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "on_work_start|work|1499|2|to-break|on_work_start", strings.TrimSpace(string(data)))
}

func TestHookExecutor_WorkingDirectory(t *testing.T) {
	dir := t.TempDir()
	spec := shellHook("pwd", 5*time.Second, true)
	spec.Dir = dir
	executor := NewHookExecutor(map[domain.HookEvent]domain.HookSpec{domain.HookResume: spec})

	result := executor.Run(context.Background(), testCall(domain.HookResume))

	require.NoError(t, result.Err)
	want, err := filepath.EvalSymlinks(dir)
	require.NoError(t, err)
	got, err := filepath.EvalSymlinks(strings.TrimSpace(result.Stdout))
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestHookExecutor_Failures(t *testing.T) {
	tests := []struct {
		name         string
		spec         domain.HookSpec
		wantExitCode int
		wantTimeout  bool
		wantStderr   string
	}{
		{
			name:         "non-zero exit captures output",
			spec:         shellHook("echo boom >&2; exit 3", 5*time.Second, true),
			wantExitCode: 3,
			wantStderr:   "boom",
		},
		{
			name:         "output discarded without capture",
			spec:         shellHook("echo boom >&2; exit 2", 5*time.Second, false),
			wantExitCode: 2,
		},
		{
			name:         "missing binary",
			spec:         domain.HookSpec{Command: "/nonexistent/tomat-hook", Timeout: time.Second},
			wantExitCode: -1,
		},
		{
			name:         "timeout kills child",
			spec:         shellHook("sleep 5", 300*time.Millisecond, false),
			wantExitCode: -1,
			wantTimeout:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			executor := NewHookExecutor(map[domain.HookEvent]domain.HookSpec{domain.HookSkip: tt.spec})

			result := executor.Run(context.Background(), testCall(domain.HookSkip))

			assert.True(t, result.Ran)
			assert.Error(t, result.Err)
			assert.Equal(t, tt.wantExitCode, result.ExitCode)
			assert.Equal(t, tt.wantTimeout, result.TimedOut)
			if tt.wantStderr != "" {
				assert.Contains(t, result.Stderr, tt.wantStderr)
			} else {
				assert.Empty(t, result.Stderr)
			}
		})
	}
}

func TestHookExecutor_TimeoutIsBounded(t *testing.T) {
	// Background grandchild keeps the pipes open; killing the group must still return promptly
	spec := shellHook("sleep 5 & sleep 5", time.Second, true)
	executor := NewHookExecutor(map[domain.HookEvent]domain.HookSpec{domain.HookComplete: spec})

	started := time.Now()
	result := executor.Run(context.Background(), testCall(domain.HookComplete))
	elapsed := time.Since(started)

	assert.True(t, result.TimedOut)
	assert.GreaterOrEqual(t, elapsed, time.Second)
	assert.Less(t, elapsed, 3*time.Second, "timed-out hook must not run to completion")
}

func TestHookExecutor_ZeroTimeoutIsUnbounded(t *testing.T) {
	spec := shellHook("sleep 0.3", 0, false)
	executor := NewHookExecutor(map[domain.HookEvent]domain.HookSpec{domain.HookStop: spec})

	result := executor.Run(context.Background(), testCall(domain.HookStop))

	assert.NoError(t, result.Err)
	assert.False(t, result.TimedOut)
	assert.Equal(t, 0, result.ExitCode)
}

func TestHookExecutor_ContextCancelKills(t *testing.T) {
	spec := shellHook("sleep 5", 0, false)
	executor := NewHookExecutor(map[domain.HookEvent]domain.HookSpec{domain.HookPause: spec})

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	started := time.Now()
	result := executor.Run(ctx, testCall(domain.HookPause))

	assert.Error(t, result.Err)
	assert.Less(t, time.Since(started), 3*time.Second)
}

func TestHookExecutor_ShutdownKillsInFlight(t *testing.T) {
	spec := shellHook("sleep 5", 0, false)
	executor := NewHookExecutor(map[domain.HookEvent]domain.HookSpec{domain.HookPause: spec})

	results := make(chan domain.HookResult, 1)
	go func() { results <- executor.Run(context.Background(), testCall(domain.HookPause)) }()

	// Let the hook start before shutting down
	time.Sleep(200 * time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	err := executor.Shutdown(ctx)
	assert.Error(t, err, "a hook outliving the grace period is reported")

	select {
	case result := <-results:
		assert.Error(t, result.Err)
	case <-time.After(3 * time.Second):
		t.Fatal("hook was not killed at shutdown")
	}

	// After shutdown no new hooks are started
	after := executor.Run(context.Background(), testCall(domain.HookPause))
	assert.False(t, after.Ran)
}

func TestHookEnv(t *testing.T) {
	env := hookEnv(testCall(domain.HookSkip))

	assert.Contains(t, env, "TOMAT_EVENT=on_skip")
	assert.Contains(t, env, "TOMAT_PHASE=work")
	assert.Contains(t, env, "TOMAT_REMAINING_SECONDS=1499")
	assert.Contains(t, env, "TOMAT_SESSION_COUNT=2")
	assert.Contains(t, env, "TOMAT_AUTO_ADVANCE=to-break")
	assert.Contains(t, env, "PHASE=work")
	assert.Contains(t, env, "SESSION_COUNT=2")
}

func TestOSProcessInspector(t *testing.T) {
	inspector := NewOSProcessInspector()

	assert.True(t, inspector.IsAlive(os.Getpid()))
	assert.False(t, inspector.IsAlive(0))
	assert.False(t, inspector.IsAlive(-1))
}
