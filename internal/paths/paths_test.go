package paths

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRuntimePaths(t *testing.T) {
	t.Run("uses XDG_RUNTIME_DIR", func(t *testing.T) {
		dir := t.TempDir()
		t.Setenv("XDG_RUNTIME_DIR", dir)

		assert.Equal(t, dir, RuntimeDir())
		assert.Equal(t, filepath.Join(dir, "tomat.sock"), SocketPath())
		assert.Equal(t, filepath.Join(dir, "tomat.pid"), PIDPath())
	})

	t.Run("falls back to /run/user", func(t *testing.T) {
		t.Setenv("XDG_RUNTIME_DIR", "")
		assert.Equal(t, fmt.Sprintf("/run/user/%d", os.Getuid()), RuntimeDir())
	})
}

func TestConfigPath(t *testing.T) {
	tests := []struct {
		name       string
		envConfig  string
		xdgConfig  string
		wantSuffix string
	}{
		{"explicit override", "/etc/tomat.toml", "", "/etc/tomat.toml"},
		{"xdg config home", "", "/xdg", "/xdg/tomat/config.toml"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("TOMAT_CONFIG", tt.envConfig)
			t.Setenv("XDG_CONFIG_HOME", tt.xdgConfig)
			assert.Equal(t, tt.wantSuffix, ConfigPath())
		})
	}
}

func TestDataPaths(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", "/data")
	assert.Equal(t, "/data/tomat", DataDir())
	assert.Equal(t, "/data/tomat/history.db", HistoryPath())

	t.Setenv("XDG_CONFIG_HOME", "/cfg")
	assert.Equal(t, "/cfg/systemd/user/tomat.service", SystemdUnitPath())

	t.Setenv("XDG_STATE_HOME", "/state")
	assert.Equal(t, "/state/tomat", LogDir())
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}

	tests := []struct {
		in   string
		want string
	}{
		{"~", home},
		{"~/hooks", filepath.Join(home, "hooks")},
		{"/abs/path", "/abs/path"},
		{"relative", "relative"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ExpandPath(tt.in))
		})
	}
}
