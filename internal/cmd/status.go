package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"tomat/internal/protocol"
)

// StatusCmd prints the rendered status for a status bar
type StatusCmd struct {
	Format string `help:"Text template, e.g. '{icon} {time} {state}' (default: from config)" short:"f"`
	Output string `help:"Output format" short:"o" enum:"waybar,plain,i3status-rs" default:"waybar"`
}

// Run executes the status command
func (s *StatusCmd) Run(cli *CLI) error {
	resp, err := cli.send(protocol.CommandStatus, protocol.DisplayArgs{Format: s.Format, Output: s.Output})
	if err != nil {
		return err
	}
	return printOutput(os.Stdout, resp)
}

// WatchCmd streams the rendered status until interrupted
type WatchCmd struct {
	Format   string  `help:"Text template (default: from config)" short:"f"`
	Interval float64 `help:"Seconds between updates" short:"i" default:"1"`
	Output   string  `help:"Output format" short:"o" enum:"waybar,plain,i3status-rs" default:"waybar"`
}

// Run executes the watch command
func (w *WatchCmd) Run(cli *CLI) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	interval := w.Interval
	args := protocol.WatchArgs{
		DisplayArgs: protocol.DisplayArgs{Format: w.Format, Output: w.Output},
		Interval:    &interval,
	}
	if _, err := args.IntervalDuration(); err != nil {
		return err
	}

	return cli.Client().Watch(ctx, args, func(resp protocol.Response) error {
		if !resp.Success {
			return errors.New(resp.Message)
		}
		return printOutput(os.Stdout, resp)
	})
}

// printOutput writes the rendered status. Plain output is printed unquoted.
func printOutput(w io.Writer, resp protocol.Response) error {
	if len(resp.Output) == 0 {
		_, err := fmt.Fprintln(w, resp.Message)
		return err
	}

	var text string
	if err := json.Unmarshal(resp.Output, &text); err == nil {
		_, err := fmt.Fprintln(w, text)
		return err
	}
	_, err := fmt.Fprintln(w, string(resp.Output))
	return err
}
