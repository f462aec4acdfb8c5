package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/alecthomas/kong"

	"tomat/internal/cmd"
	"tomat/internal/config"
	"tomat/internal/version"
)

// exitCoder is implemented by errors that map to a specific exit status
type exitCoder interface {
	ExitCode() int
}

func main() {
	// Load settings from config.toml; a broken file falls back to defaults
	settings, err := config.LoadSettings()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to load config: %v\n", err)
		settings = &config.Settings{}
	}

	var cli cmd.CLI
	cli.SetSettings(settings) // Set settings before parsing
	ctx := kong.Parse(&cli,
		kong.Name("tomat"),
		kong.Description(version.Tagline),
		kong.Vars{
			"version": version.Info(),
		},
		kong.UsageOnError(),
		kong.Bind(&cli),
	)

	// Execute the selected command
	if err := ctx.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		var coder exitCoder
		if errors.As(err, &coder) {
			os.Exit(coder.ExitCode())
		}
		os.Exit(1)
	}
}
