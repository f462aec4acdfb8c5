package cmd

import (
	"os"

	adapternotify "tomat/internal/adapters/notify"
	adapterprocess "tomat/internal/adapters/process"
	adaptersound "tomat/internal/adapters/sound"
	adapterstorage "tomat/internal/adapters/storage"
	"tomat/internal/config"
	"tomat/internal/logging"
	"tomat/internal/paths"
	"tomat/internal/ports"
	"tomat/internal/server"
	"tomat/internal/services"
)

// Container holds the daemon's dependencies
type Container struct {
	Hooks       *adapterprocess.HookExecutor
	Server      *server.Server
	Transitions *services.TransitionService

	// Internal - for cleanup only
	history *adapterstorage.SQLiteRepository
}

// NewContainer creates a Container with all dependencies wired from settings.
// With TOMAT_TESTING=1 sounds, notifications and history are disabled.
func NewContainer(settings *config.Settings) (*Container, error) {
	timerConfig, err := settings.TimerConfig()
	if err != nil {
		return nil, err
	}
	hookSpecs, err := settings.HookSpecs()
	if err != nil {
		return nil, err
	}

	hooks := adapterprocess.NewHookExecutor(hookSpecs)
	opts := services.TransitionOptions{Messages: settings.NotificationMessage}

	var history *adapterstorage.SQLiteRepository
	if os.Getenv("TOMAT_TESTING") == "1" {
		logging.Logger.Info("Testing mode, transition sounds, notifications and history disabled")
	} else {
		if settings.SoundEnabled() {
			opts.Sound = NewSoundPlayer(settings)
		}
		if settings.NotificationsEnabled() {
			opts.Notifier = adapternotify.NewDBusNotifier(settings.Notification.Icon, settings.NotificationTimeout())
		}
		if settings.HistoryEnabled() {
			repo, err := adapterstorage.NewSQLiteRepository(settings.HistoryPath())
			if err != nil {
				logging.Logger.Warn("History disabled, database unavailable", "path", settings.HistoryPath(), "error", err)
			} else {
				history = repo
				opts.History = repo
			}
		}
	}

	transitions := services.NewTransitionService(hooks, opts)
	srv := server.New(server.Options{
		Defaults:   timerConfig,
		Effects:    transitions,
		TextFormat: settings.TextFormat(),
	})

	logging.Logger.Debug("Container created",
		"hooks", len(hookSpecs),
		"sound", opts.Sound != nil,
		"notifications", opts.Notifier != nil,
		"history", opts.History != nil)

	return &Container{
		Hooks:       hooks,
		Server:      srv,
		Transitions: transitions,
		history:     history,
	}, nil
}

// Close closes all resources held by the container
func (c *Container) Close() error {
	if c.history != nil {
		return c.history.Close()
	}
	return nil
}

// NewSoundPlayer creates the transition sound player from the [sound] section
func NewSoundPlayer(settings *config.Settings) ports.SoundPlayer {
	return adaptersound.NewPlayer(adaptersound.Options{
		Files: map[string]string{
			ports.SoundBreakToWork:     paths.ExpandPath(settings.Sound.BreakToWork),
			ports.SoundWorkToBreak:     paths.ExpandPath(settings.Sound.WorkToBreak),
			ports.SoundWorkToLongBreak: paths.ExpandPath(settings.Sound.WorkToLongBreak),
		},
		SystemBeep: settings.SystemBeep(),
		Volume:     settings.Volume(),
	})
}
