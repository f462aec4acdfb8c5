package theme

import (
	"github.com/charmbracelet/lipgloss"

	"tomat/internal/domain"
)

// Main UI styles
var (
	HelpStyle = lipgloss.NewStyle().
			Foreground(ColorMuted).
			Padding(1, 0)

	NormalStyle = lipgloss.NewStyle().
			Foreground(ColorNormal)

	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorPrimary).
			Padding(1, 0)
)

// Dashboard styles
var (
	ClockStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorHighlight)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(ColorError)

	LabelStyle = lipgloss.NewStyle().
			Foreground(ColorSubtle)

	PausedStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorPaused)

	SessionStyle = lipgloss.NewStyle().
			Foreground(ColorSecondary)
)

// History table styles
var (
	HeaderStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorPrimary)

	MutedStyle = lipgloss.NewStyle().
			Foreground(ColorMuted)
)

// PhaseStyle returns the bold style used for a phase name
func PhaseStyle(p domain.Phase) lipgloss.Style {
	return lipgloss.NewStyle().Bold(true).Foreground(PhaseColor(p))
}

// PhaseColor returns the accent color of a phase
func PhaseColor(p domain.Phase) Color {
	switch p {
	case domain.PhaseWork:
		return ColorWork
	case domain.PhaseBreak:
		return ColorBreak
	case domain.PhaseLongBreak:
		return ColorLongBreak
	default:
		return ColorIdle
	}
}
