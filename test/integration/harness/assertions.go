package harness

import (
	"encoding/json"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// dump formats a result for failure messages
func dump(result CommandResult) string {
	return fmt.Sprintf("exit=%d\nstdout: %s\nstderr: %s", result.ExitCode, result.Stdout, result.Stderr)
}

// AssertSuccess verifies the command exited 0
func AssertSuccess(tb testing.TB, result CommandResult) {
	tb.Helper()
	assert.Zero(tb, result.ExitCode, "expected success\n%s", dump(result))
}

// AssertFailure verifies the command exited non-zero
func AssertFailure(tb testing.TB, result CommandResult) {
	tb.Helper()
	assert.NotZero(tb, result.ExitCode, "expected failure\n%s", dump(result))
}

// AssertExitCode verifies the exact exit status
func AssertExitCode(tb testing.TB, result CommandResult, expected int) {
	tb.Helper()
	assert.Equal(tb, expected, result.ExitCode, dump(result))
}

// AssertStdoutContains verifies stdout contains expected
func AssertStdoutContains(tb testing.TB, result CommandResult, expected string) {
	tb.Helper()
	assert.Contains(tb, result.Stdout, expected, dump(result))
}

// AssertStdoutNotContains verifies stdout does not contain unexpected
func AssertStdoutNotContains(tb testing.TB, result CommandResult, unexpected string) {
	tb.Helper()
	assert.NotContains(tb, result.Stdout, unexpected, dump(result))
}

// AssertStderrContains verifies stderr contains expected
func AssertStderrContains(tb testing.TB, result CommandResult, expected string) {
	tb.Helper()
	assert.Contains(tb, result.Stderr, expected, dump(result))
}

// AssertValidJSON unmarshals stdout into target
func AssertValidJSON(tb testing.TB, result CommandResult, target any) {
	tb.Helper()
	require.NoError(tb, json.Unmarshal([]byte(result.Stdout), target), dump(result))
}

// AssertJSONContains verifies stdout is a JSON object with key set to expected
func AssertJSONContains(tb testing.TB, result CommandResult, key string, expected any) {
	tb.Helper()
	assert.Equal(tb, expected, StatusField(tb, result, key), "key %q\n%s", key, dump(result))
}

// StatusField returns one field of a JSON status line (waybar or i3status-rs)
func StatusField(tb testing.TB, result CommandResult, key string) any {
	tb.Helper()
	var line map[string]any
	AssertValidJSON(tb, result, &line)
	return line[key]
}

// AssertEventuallyStdout reruns the command until it succeeds with stdout
// containing expected, and returns the last result
func AssertEventuallyStdout(tb testing.TB, env *TestEnvironment, timeout time.Duration, expected string, args ...string) CommandResult {
	tb.Helper()

	var last CommandResult
	deadline := time.Now().Add(timeout)
	for {
		last = RunCommand(tb, env, args...)
		if last.ExitCode == 0 && strings.Contains(last.Stdout, expected) {
			return last
		}
		if time.Now().After(deadline) {
			break
		}
		time.Sleep(100 * time.Millisecond)
	}

	assert.Failf(tb, "condition not met", "tomat %v never printed %q within %v\n%s",
		args, expected, timeout, dump(last))
	return last
}
