package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/alecthomas/kong"

	"tomat/internal/adapters/process"
	"tomat/internal/client"
	"tomat/internal/config"
	"tomat/internal/daemon"
	"tomat/internal/domain"
	"tomat/internal/logging"
	"tomat/internal/paths"
	"tomat/internal/protocol"
)

// CLI represents the command-line interface structure
type CLI struct {
	Version     kong.VersionFlag `help:"Show version information"`
	Debug       bool             `help:"Enable debug logging to file" short:"d"`
	DebugFile   string           `help:"Custom path for debug log file (disables automatic cleanup)"`
	MaxLogFiles int              `help:"Maximum number of log files to keep (0 = unlimited)" default:"1000"`

	Config    ConfigCmd    `cmd:"config" help:"Manage the configuration file"`
	Daemon    DaemonCmd    `cmd:"daemon" help:"Manage the background daemon"`
	Dashboard DashboardCmd `cmd:"dashboard" help:"Show a live dashboard of the current session"`
	History   HistoryCmd   `cmd:"history" help:"Show completed sessions per day"`
	Pause     PauseCmd     `cmd:"pause" help:"Pause the current phase"`
	PlaySound PlaySoundCmd `cmd:"play-sound" help:"Play a transition sound (checks the audio setup)" hidden:""`
	Resume    ResumeCmd    `cmd:"resume" help:"Resume a paused phase"`
	Skip      SkipCmd      `cmd:"skip" help:"Skip to the next phase"`
	Start     StartCmd     `cmd:"start" help:"Start a new Pomodoro session"`
	Status    StatusCmd    `cmd:"status" help:"Print the timer status for a status bar"`
	Stop      StopCmd      `cmd:"stop" help:"Stop the current session"`
	Toggle    ToggleCmd    `cmd:"toggle" help:"Pause or resume the current phase"`
	Watch     WatchCmd     `cmd:"watch" help:"Stream the timer status, one line per update"`

	// Internal fields (not flags)
	settings *config.Settings `kong:"-"`
}

// SetSettings sets the settings on the CLI struct
func (c *CLI) SetSettings(settings *config.Settings) {
	c.settings = settings
}

// Settings returns the loaded settings, or empty settings when none were set
func (c *CLI) Settings() *config.Settings {
	if c.settings == nil {
		return &config.Settings{}
	}
	return c.settings
}

// AfterApply initializes logging after CLI parsing
func (c *CLI) AfterApply() error {
	logFilePath, err := logging.Initialize(c.Debug, c.DebugFile, c.MaxLogFiles)
	if err != nil {
		return err
	}

	// Child processes (the spawned daemon, hooks) log to the same file
	if c.Debug || c.DebugFile != "" {
		os.Setenv("TOMAT_DEBUG", "1")
		if logFilePath != "" {
			os.Setenv("TOMAT_DEBUG_FILE", logFilePath)
		}
	}
	if c.MaxLogFiles != logging.DefaultMaxLogFiles {
		os.Setenv("TOMAT_MAX_LOG_FILES", fmt.Sprintf("%d", c.MaxLogFiles))
	}

	return nil
}

// Client returns a socket client for the daemon of this user
func (c *CLI) Client() *client.Client {
	return client.New(paths.SocketPath())
}

// RuntimePaths returns the daemon's socket and pid file
func (c *CLI) RuntimePaths() daemon.Paths {
	return daemon.Paths{PIDPath: paths.PIDPath(), SocketPath: paths.SocketPath()}
}

// Inspector returns the process inspector used for daemon supervision
func (c *CLI) Inspector() *process.OSProcessInspector {
	return process.NewOSProcessInspector()
}

// send runs one command and turns a failure response into an error
func (c *CLI) send(command string, args any) (protocol.Response, error) {
	resp, err := c.Client().Command(context.Background(), command, args)
	if err != nil {
		return resp, err
	}
	if !resp.Success {
		if resp.Message == domain.ErrNoActiveSession.Error() {
			return resp, domain.ErrNoActiveSession
		}
		return resp, errors.New(resp.Message)
	}
	return resp, nil
}
