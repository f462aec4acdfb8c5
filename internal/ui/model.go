package ui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"

	"tomat/internal/domain"
	"tomat/internal/format"
	"tomat/internal/logging"
	"tomat/internal/protocol"
	"tomat/internal/theme"
)

const (
	commandTimeout = 5 * time.Second
	maxBarWidth    = 60
	minBarWidth    = 10
)

// Controller is the part of the socket client the dashboard drives
type Controller interface {
	Command(ctx context.Context, command string, args any) (protocol.Response, error)
	Watch(ctx context.Context, args protocol.WatchArgs, fn func(protocol.Response) error) error
}

// Model is the live dashboard
type Model struct {
	cancel   context.CancelFunc
	ctrl     Controller
	ctx      context.Context
	err      error
	help     help.Model
	keys     KeyMap
	message  string
	progress progress.Model
	status   *domain.Status
	updates  chan tea.Msg
}

// NewModel creates a dashboard bound to ctrl. The watch stream starts on Init.
func NewModel(ctx context.Context, ctrl Controller) *Model {
	ctx, cancel := context.WithCancel(ctx)
	return &Model{
		cancel:   cancel,
		ctrl:     ctrl,
		ctx:      ctx,
		help:     help.New(),
		keys:     NewKeyMap(),
		progress: progress.New(progress.WithGradient(theme.ColorWorkGradientStart, theme.ColorWorkGradientEnd), progress.WithoutPercentage()),
		updates:  make(chan tea.Msg, 8),
	}
}

func (m *Model) Init() tea.Cmd {
	go m.watch()
	return m.waitForUpdate()
}

// watch forwards every pushed status into the update channel
func (m *Model) watch() {
	err := m.ctrl.Watch(m.ctx, protocol.WatchArgs{}, func(resp protocol.Response) error {
		select {
		case m.updates <- StatusMsg{Response: resp}:
			return nil
		case <-m.ctx.Done():
			return m.ctx.Err()
		}
	})
	if errors.Is(err, context.Canceled) {
		err = nil
	}

	select {
	case m.updates <- StreamClosedMsg{Err: err}:
	case <-m.ctx.Done():
	}
}

func (m *Model) waitForUpdate() tea.Cmd {
	return func() tea.Msg {
		select {
		case msg := <-m.updates:
			return msg
		case <-m.ctx.Done():
			return nil
		}
	}
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.help.Width = msg.Width
		m.progress.Width = min(max(msg.Width-4, minBarWidth), maxBarWidth)
		return m, nil

	case StatusMsg:
		m.status = msg.Response.Data
		m.err = nil
		m.applyGradient()
		return m, m.waitForUpdate()

	case StreamClosedMsg:
		m.err = msg.Err
		if m.err == nil {
			m.err = errors.New("status stream closed")
		}
		logging.Logger.Warn("Dashboard watch stream closed", "error", msg.Err)
		return m, nil

	case CommandResultMsg:
		switch {
		case msg.Err != nil:
			m.err = msg.Err
		case !msg.Response.Success:
			m.message = msg.Response.Message
		default:
			m.message = msg.Response.Message
			if msg.Response.Data != nil || msg.Command == protocol.CommandStop {
				m.status = msg.Response.Data
			}
		}
		return m, nil
	}

	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.cancel()
		return m, tea.Quit
	case key.Matches(msg, m.keys.Toggle):
		return m, m.send(protocol.CommandToggle)
	case key.Matches(msg, m.keys.Skip):
		return m, m.send(protocol.CommandSkip)
	case key.Matches(msg, m.keys.Stop):
		return m, m.send(protocol.CommandStop)
	}
	return m, nil
}

func (m *Model) send(command string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(m.ctx, commandTimeout)
		defer cancel()

		resp, err := m.ctrl.Command(ctx, command, nil)
		if err != nil {
			logging.Logger.Error("Dashboard command failed", "command", command, "error", err)
		}
		return CommandResultMsg{Command: command, Err: err, Response: resp}
	}
}

func (m *Model) applyGradient() {
	if m.status == nil {
		return
	}
	width := m.progress.Width
	if m.status.Phase.IsBreak() {
		m.progress = progress.New(progress.WithGradient(theme.ColorBreakGradientStart, theme.ColorBreakGradientEnd), progress.WithoutPercentage())
	} else {
		m.progress = progress.New(progress.WithGradient(theme.ColorWorkGradientStart, theme.ColorWorkGradientEnd), progress.WithoutPercentage())
	}
	m.progress.Width = width
}

func (m *Model) View() string {
	var b strings.Builder

	b.WriteString(theme.TitleStyle.Render("🍅 tomat"))
	b.WriteString("\n")

	if m.status == nil {
		b.WriteString(theme.PhaseStyle("").Render("No active session"))
		b.WriteString("\n")
		b.WriteString(theme.LabelStyle.Render("Start one with 'tomat start'"))
		b.WriteString("\n")
	} else {
		b.WriteString(m.renderStatus(*m.status))
	}

	if m.err != nil {
		b.WriteString("\n")
		b.WriteString(theme.ErrorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
		b.WriteString("\n")
	} else if m.message != "" {
		b.WriteString("\n")
		b.WriteString(theme.LabelStyle.Render(m.message))
		b.WriteString("\n")
	}

	b.WriteString(theme.HelpStyle.Render(m.help.View(m.keys)))
	return b.String()
}

func (m *Model) renderStatus(status domain.Status) string {
	var b strings.Builder

	phase := theme.PhaseStyle(status.Phase).Render(format.Icon(status.Phase) + " " + status.Phase.DisplayName())
	b.WriteString(phase)
	if status.IsPaused {
		b.WriteString("  ")
		b.WriteString(theme.PausedStyle.Render("⏸ paused"))
	}
	b.WriteString("\n\n")

	b.WriteString(theme.ClockStyle.Render(format.Clock(status.RemainingSeconds)))
	b.WriteString("\n")
	b.WriteString(m.progress.ViewAs(Percent(status)))
	b.WriteString("\n\n")

	b.WriteString(theme.SessionStyle.Render(fmt.Sprintf("Session %d/%d", status.SessionCount, status.SessionsUntilLongBreak)))
	b.WriteString(theme.LabelStyle.Render("  auto-advance: " + string(status.AutoAdvance)))
	b.WriteString("\n")
	return b.String()
}

// Percent returns the elapsed share of the phase in [0, 1]
func Percent(status domain.Status) float64 {
	if status.DurationSeconds <= 0 {
		return 0
	}
	p := float64(status.ElapsedSeconds()) / float64(status.DurationSeconds)
	return min(max(p, 0), 1)
}
