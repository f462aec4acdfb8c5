package harness

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"
)

const (
	defaultTimeout = 15 * time.Second

	// binaryEnv points the tests at a prebuilt binary instead of compiling one
	binaryEnv = "TOMAT_TEST_BINARY"

	testVersion = "integration"
)

var (
	binaryPath string
	buildDir   string
)

// CommandResult holds the outcome of one tomat invocation
type CommandResult struct {
	ExitCode int
	Stderr   string
	Stdout   string
}

// BuildBinary compiles tomat into a temp dir, or uses $TOMAT_TEST_BINARY
// when set. Call it once from TestMain.
func BuildBinary() (string, error) {
	if prebuilt := os.Getenv(binaryEnv); prebuilt != "" {
		if _, err := os.Stat(prebuilt); err != nil {
			return "", fmt.Errorf("%s: %w", binaryEnv, err)
		}
		binaryPath = prebuilt
		return binaryPath, nil
	}

	root, err := moduleRoot()
	if err != nil {
		return "", err
	}

	buildDir, err = os.MkdirTemp("", "tomat-integration-*")
	if err != nil {
		return "", err
	}
	out := filepath.Join(buildDir, "tomat")

	cmd := exec.Command("go", "build",
		"-ldflags", "-X tomat/internal/version.Version="+testVersion,
		"-o", out, ".")
	cmd.Dir = root
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("go build failed: %w", err)
	}

	binaryPath = out
	return binaryPath, nil
}

// CleanupBinary removes a binary compiled by BuildBinary
func CleanupBinary() {
	if buildDir == "" {
		return
	}
	if err := os.RemoveAll(buildDir); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to remove %s: %v\n", buildDir, err)
	}
}

// RunCommand runs tomat with args in env and the default timeout
func RunCommand(tb testing.TB, env *TestEnvironment, args ...string) CommandResult {
	tb.Helper()
	return RunCommandWithTimeout(tb, env, defaultTimeout, args...)
}

// RunCommandWithTimeout runs tomat with args in env. A timed out command
// reports exit code -1.
func RunCommandWithTimeout(tb testing.TB, env *TestEnvironment, timeout time.Duration, args ...string) CommandResult {
	tb.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, binaryPath, args...)
	cmd.Env = env.Environ()
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	result := CommandResult{}
	err := cmd.Run()

	var exitErr *exec.ExitError
	switch {
	case errors.Is(ctx.Err(), context.DeadlineExceeded):
		tb.Logf("tomat %v timed out after %v", args, timeout)
		result.ExitCode = -1
	case errors.As(err, &exitErr):
		result.ExitCode = exitErr.ExitCode()
	case err != nil:
		tb.Logf("tomat %v failed to run: %v", args, err)
		result.ExitCode = -1
	}

	result.Stdout = stdout.String()
	result.Stderr = stderr.String()
	return result
}

// moduleRoot walks up from the working directory to the go.mod
func moduleRoot() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", errors.New("go.mod not found above the test directory")
		}
		dir = parent
	}
}
