package cmd

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/charmbracelet/huh"

	"tomat/internal/config"
	"tomat/internal/domain"
	"tomat/internal/paths"
)

// ConfigCmd manages the configuration file
type ConfigCmd struct {
	Example ConfigExampleCmd `cmd:"example" help:"Print a config.toml with every option set"`
	Init    ConfigInitCmd    `cmd:"init" help:"Write a config.toml interactively"`
	Path    ConfigPathCmd    `cmd:"path" help:"Print the config file location"`
}

// ConfigExampleCmd prints a complete example configuration
type ConfigExampleCmd struct{}

// Run executes the example command
func (c *ConfigExampleCmd) Run(cli *CLI) error {
	fmt.Printf("# Example configuration for %s\n\n", paths.ConfigPath())
	if err := toml.NewEncoder(os.Stdout).Encode(config.ExampleSettings()); err != nil {
		return fmt.Errorf("failed to encode example: %w", err)
	}
	return nil
}

// ConfigPathCmd prints where the config file is read from
type ConfigPathCmd struct{}

// Run executes the path command
func (c *ConfigPathCmd) Run(cli *CLI) error {
	fmt.Println(paths.ConfigPath())
	return nil
}

// ConfigInitCmd writes the [timer] section of config.toml
type ConfigInitCmd struct {
	Defaults bool `help:"Write the built-in defaults without asking"`
	Force    bool `help:"Overwrite an existing config file"`
}

// Run executes the init command
func (c *ConfigInitCmd) Run(cli *CLI) error {
	path := paths.ConfigPath()
	if _, err := os.Stat(path); err == nil && !c.Force {
		return fmt.Errorf("%s already exists (use --force to overwrite)", path)
	}

	values := newTimerFormValues(domain.DefaultTimerConfig())
	if !c.Defaults {
		if err := newTimerForm(values).Run(); err != nil {
			if errors.Is(err, huh.ErrUserAborted) {
				fmt.Println("Cancelled")
				return nil
			}
			return fmt.Errorf("config form failed: %w", err)
		}
	}

	settings, err := values.Settings()
	if err != nil {
		return err
	}
	if err := config.SaveSettings(path, settings); err != nil {
		return err
	}

	fmt.Printf("Wrote %s\n", path)
	return nil
}

// timerFormValues holds the form fields as the user typed them
type timerFormValues struct {
	AutoAdvance string
	Break       string
	LongBreak   string
	Sessions    string
	Work        string
}

func newTimerFormValues(cfg domain.TimerConfig) *timerFormValues {
	return &timerFormValues{
		AutoAdvance: string(cfg.AutoAdvance),
		Break:       formatFloat(cfg.Break.Minutes()),
		LongBreak:   formatFloat(cfg.LongBreak.Minutes()),
		Sessions:    strconv.Itoa(cfg.SessionsUntilLongBreak),
		Work:        formatFloat(cfg.Work.Minutes()),
	}
}

func newTimerForm(v *timerFormValues) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Work duration (minutes)").
				Value(&v.Work).
				Validate(validateMinutes("work")),
			huh.NewInput().
				Title("Break duration (minutes)").
				Value(&v.Break).
				Validate(validateMinutes("break")),
			huh.NewInput().
				Title("Long break duration (minutes)").
				Value(&v.LongBreak).
				Validate(validateMinutes("long_break")),
			huh.NewInput().
				Title("Work sessions before a long break").
				Value(&v.Sessions).
				Validate(func(s string) error {
					_, err := parseSessions(s)
					return err
				}),
			huh.NewSelect[string]().
				Title("Auto-advance").
				Description("Which phases start running on their own").
				Options(
					huh.NewOption("none - every phase waits for resume", string(domain.AutoAdvanceNone)),
					huh.NewOption("all - run continuously", string(domain.AutoAdvanceAll)),
					huh.NewOption("to-break - breaks start automatically", string(domain.AutoAdvanceToBreak)),
					huh.NewOption("to-work - work starts automatically", string(domain.AutoAdvanceToWork)),
				).
				Value(&v.AutoAdvance),
		),
	)
}

// Settings converts the form values into a validated [timer] section
func (v *timerFormValues) Settings() (*config.Settings, error) {
	work, err := parseMinutes("work", v.Work)
	if err != nil {
		return nil, err
	}
	brk, err := parseMinutes("break", v.Break)
	if err != nil {
		return nil, err
	}
	longBreak, err := parseMinutes("long_break", v.LongBreak)
	if err != nil {
		return nil, err
	}
	sessions, err := parseSessions(v.Sessions)
	if err != nil {
		return nil, err
	}
	mode, err := domain.ParseAutoAdvance(v.AutoAdvance)
	if err != nil {
		return nil, err
	}

	return &config.Settings{
		Timer: config.TimerSettings{
			AutoAdvance: &mode,
			Break:       &brk,
			LongBreak:   &longBreak,
			Sessions:    &sessions,
			Work:        &work,
		},
	}, nil
}

func validateMinutes(field string) func(string) error {
	return func(s string) error {
		_, err := parseMinutes(field, s)
		return err
	}
}

func parseMinutes(field, s string) (float64, error) {
	m, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, fmt.Errorf("%s: %q is not a number", field, s)
	}
	if err := domain.ValidateMinutes(field, m); err != nil {
		return 0, err
	}
	return m, nil
}

func parseSessions(s string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("sessions: %q is not a whole number", s)
	}
	if err := domain.ValidateSessions(n); err != nil {
		return 0, err
	}
	return n, nil
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
