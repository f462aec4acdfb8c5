package cmd

import (
	"fmt"

	"tomat/internal/domain"
	"tomat/internal/logging"
	"tomat/internal/protocol"
)

// StartCmd starts a new session, replacing the active one
type StartCmd struct {
	AutoAdvance *string  `help:"Auto-advance mode: none, all, to-break or to-work (default: from config or none)" short:"a"`
	Break       *float64 `help:"Break duration in minutes (default: from config or 5)" short:"b" name:"break"`
	LongBreak   *float64 `help:"Long break duration in minutes (default: from config or 15)" short:"l"`
	Sessions    *int     `help:"Work sessions before a long break (default: from config or 4)" short:"s"`
	Work        *float64 `help:"Work duration in minutes (default: from config or 25)" short:"w"`
}

// Run executes the start command
func (s *StartCmd) Run(cli *CLI) error {
	defaults, err := cli.Settings().TimerConfig()
	if err != nil {
		return err
	}

	args, err := s.Args(defaults)
	if err != nil {
		return err
	}
	logging.Logger.Debug("Starting session", "work", *args.Work, "break", *args.Break,
		"long_break", *args.LongBreak, "sessions", *args.Sessions, "auto_advance", *args.AutoAdvance)

	resp, err := cli.send(protocol.CommandStart, args)
	if err != nil {
		return err
	}
	fmt.Println(resp.Message)
	return nil
}

// Args overlays the flags onto defaults and returns fully populated start args
func (s *StartCmd) Args(defaults domain.TimerConfig) (protocol.StartArgs, error) {
	overrides := protocol.StartArgs{
		Break:     s.Break,
		LongBreak: s.LongBreak,
		Sessions:  s.Sessions,
		Work:      s.Work,
	}
	if s.AutoAdvance != nil {
		mode, err := domain.ParseAutoAdvance(*s.AutoAdvance)
		if err != nil {
			return protocol.StartArgs{}, err
		}
		overrides.AutoAdvance = &mode
	}

	cfg, err := overrides.Resolve(defaults)
	if err != nil {
		return protocol.StartArgs{}, err
	}

	work := cfg.Work.Minutes()
	brk := cfg.Break.Minutes()
	longBreak := cfg.LongBreak.Minutes()
	sessions := cfg.SessionsUntilLongBreak
	mode := cfg.AutoAdvance
	return protocol.StartArgs{
		AutoAdvance: &mode,
		Break:       &brk,
		LongBreak:   &longBreak,
		Sessions:    &sessions,
		Work:        &work,
	}, nil
}

// StopCmd stops the current session
type StopCmd struct{}

// Run executes the stop command
func (s *StopCmd) Run(cli *CLI) error {
	return printMessage(cli, protocol.CommandStop)
}

// SkipCmd skips to the next phase
type SkipCmd struct{}

// Run executes the skip command
func (s *SkipCmd) Run(cli *CLI) error {
	return printMessage(cli, protocol.CommandSkip)
}

// PauseCmd pauses the current phase
type PauseCmd struct{}

// Run executes the pause command
func (p *PauseCmd) Run(cli *CLI) error {
	return printMessage(cli, protocol.CommandPause)
}

// ResumeCmd resumes a paused phase
type ResumeCmd struct{}

// Run executes the resume command
func (r *ResumeCmd) Run(cli *CLI) error {
	return printMessage(cli, protocol.CommandResume)
}

// ToggleCmd flips between paused and running
type ToggleCmd struct{}

// Run executes the toggle command
func (t *ToggleCmd) Run(cli *CLI) error {
	return printMessage(cli, protocol.CommandToggle)
}

func printMessage(cli *CLI, command string) error {
	resp, err := cli.send(command, nil)
	if err != nil {
		return err
	}
	fmt.Println(resp.Message)
	return nil
}
