package paths

import (
	"fmt"
	"os"
	"path/filepath"
)

const (
	socketName = "tomat.sock"
	pidName    = "tomat.pid"
)

// RuntimeDir returns $XDG_RUNTIME_DIR or /run/user/<uid>
func RuntimeDir() string {
	if dir := os.Getenv("XDG_RUNTIME_DIR"); dir != "" {
		return dir
	}
	return fmt.Sprintf("/run/user/%d", os.Getuid())
}

// SocketPath returns the daemon's unix socket path
func SocketPath() string {
	return filepath.Join(RuntimeDir(), socketName)
}

// PIDPath returns the daemon's lock/pid file path
func PIDPath() string {
	return filepath.Join(RuntimeDir(), pidName)
}

// ConfigDir returns $XDG_CONFIG_HOME or ~/.config
func ConfigDir() string {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return ExpandPath(dir)
	}
	return filepath.Join(homeDir(), ".config")
}

// ConfigPath returns TOMAT_CONFIG or <config dir>/tomat/config.toml
func ConfigPath() string {
	if path := os.Getenv("TOMAT_CONFIG"); path != "" {
		return ExpandPath(path)
	}
	return filepath.Join(ConfigDir(), "tomat", "config.toml")
}

// DataDir returns $XDG_DATA_HOME/tomat or ~/.local/share/tomat
func DataDir() string {
	if dir := os.Getenv("XDG_DATA_HOME"); dir != "" {
		return filepath.Join(ExpandPath(dir), "tomat")
	}
	return filepath.Join(homeDir(), ".local", "share", "tomat")
}

// LogDir returns $XDG_STATE_HOME/tomat or ~/.local/state/tomat
func LogDir() string {
	if dir := os.Getenv("XDG_STATE_HOME"); dir != "" {
		return filepath.Join(ExpandPath(dir), "tomat")
	}
	return filepath.Join(homeDir(), ".local", "state", "tomat")
}

// HistoryPath returns <data dir>/history.db
func HistoryPath() string {
	return filepath.Join(DataDir(), "history.db")
}

// SystemdUnitPath returns the user unit path for the daemon service
func SystemdUnitPath() string {
	return filepath.Join(ConfigDir(), "systemd", "user", "tomat.service")
}

// ExpandPath expands ~ to home directory
func ExpandPath(path string) string {
	if len(path) > 0 && path[0] == '~' {
		homeDir, err := os.UserHomeDir()
		if err == nil {
			if len(path) == 1 {
				return homeDir
			}
			return filepath.Join(homeDir, path[1:])
		}
	}
	return path
}

func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}
