package cmd

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"tomat/internal/client"
	"tomat/internal/logging"
	"tomat/internal/ui"
)

// DashboardCmd runs the interactive dashboard
type DashboardCmd struct{}

// Run executes the dashboard
func (d *DashboardCmd) Run(cli *CLI) error {
	c := cli.Client()
	if !c.Ping(context.Background()) {
		return client.ErrDaemonNotRunning
	}

	logging.Logger.Info("Starting dashboard")
	p := tea.NewProgram(ui.NewModel(context.Background(), c), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		logging.Logger.Error("Dashboard error", "error", err)
		return fmt.Errorf("error running dashboard: %w", err)
	}

	logging.Logger.Info("Dashboard exited normally")
	return nil
}
