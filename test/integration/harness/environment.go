package harness

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// TestEnvironment provides an isolated runtime, config and data directory
type TestEnvironment struct {
	ConfigDir  string
	DataDir    string
	RuntimeDir string
	extraEnv   map[string]string
	tb         testing.TB
}

// NewTestEnvironment creates an isolated test environment.
// The temp directories are automatically cleaned up when the test completes.
func NewTestEnvironment(tb testing.TB) *TestEnvironment {
	tb.Helper()

	// Unix socket paths are limited to ~100 bytes, so the runtime dir
	// cannot live under the (long) per-test TempDir
	runtimeDir, err := os.MkdirTemp("", "tomat-it-")
	if err != nil {
		tb.Fatalf("Failed to create runtime directory: %v", err)
	}
	tb.Cleanup(func() { os.RemoveAll(runtimeDir) })

	root := tb.TempDir()
	env := &TestEnvironment{
		ConfigDir:  filepath.Join(root, "config"),
		DataDir:    filepath.Join(root, "data"),
		RuntimeDir: runtimeDir,
		extraEnv:   make(map[string]string),
		tb:         tb,
	}
	for _, dir := range []string{env.ConfigDir, env.DataDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			tb.Fatalf("Failed to create %s: %v", dir, err)
		}
	}
	return env
}

// Environ returns environment variables configured for test isolation.
// It filters out TOMAT_* and XDG_* variables and points every directory
// at the test's temp dirs.
func (e *TestEnvironment) Environ() []string {
	env := make([]string, 0, len(os.Environ())+8+len(e.extraEnv))

	for _, kv := range os.Environ() {
		key, _, _ := strings.Cut(kv, "=")
		if strings.HasPrefix(key, "TOMAT_") || strings.HasPrefix(key, "XDG_") {
			continue
		}
		if _, overridden := e.extraEnv[key]; overridden {
			continue
		}
		env = append(env, kv)
	}

	env = append(env,
		"XDG_RUNTIME_DIR="+e.RuntimeDir,
		"XDG_CONFIG_HOME="+e.ConfigDir,
		"XDG_DATA_HOME="+e.DataDir,
		"XDG_STATE_HOME="+filepath.Join(e.DataDir, "state"),
		"TOMAT_CONFIG="+e.ConfigPath(),
		"TOMAT_TESTING=1",
		"TOMAT_DEBUG=",
	)

	for k, v := range e.extraEnv {
		env = append(env, k+"="+v)
	}

	return env
}

// ConfigPath returns the path of the test's config.toml
func (e *TestEnvironment) ConfigPath() string {
	return filepath.Join(e.ConfigDir, "tomat", "config.toml")
}

// SocketPath returns the daemon socket inside the isolated runtime dir
func (e *TestEnvironment) SocketPath() string {
	return filepath.Join(e.RuntimeDir, "tomat.sock")
}

// PIDPath returns the daemon pid file inside the isolated runtime dir
func (e *TestEnvironment) PIDPath() string {
	return filepath.Join(e.RuntimeDir, "tomat.pid")
}

// WriteConfig writes config.toml for this environment
func (e *TestEnvironment) WriteConfig(content string) {
	e.tb.Helper()
	if err := os.MkdirAll(filepath.Dir(e.ConfigPath()), 0755); err != nil {
		e.tb.Fatalf("Failed to create config directory: %v", err)
	}
	if err := os.WriteFile(e.ConfigPath(), []byte(content), 0644); err != nil {
		e.tb.Fatalf("Failed to write config: %v", err)
	}
}

// TempFile returns a path for a scratch file, e.g. a hook's output
func (e *TestEnvironment) TempFile(name string) string {
	return filepath.Join(filepath.Dir(e.ConfigDir), name)
}

// SetEnv sets an additional environment variable for this test environment.
func (e *TestEnvironment) SetEnv(key, value string) {
	if e.extraEnv == nil {
		e.extraEnv = make(map[string]string)
	}
	e.extraEnv[key] = value
}
