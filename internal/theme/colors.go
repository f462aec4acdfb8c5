package theme

import "github.com/charmbracelet/lipgloss"

// Color is an alias for lipgloss.Color for convenience
type Color = lipgloss.Color

// Brand colors
const (
	ColorPrimary   Color = "203" // Tomato - app name, titles
	ColorSecondary Color = "86"  // Cyan - subtitles
)

// Phase colors
const (
	ColorBreak     Color = "2"  // Green - short break
	ColorIdle      Color = "8"  // Gray - no session
	ColorLongBreak Color = "33" // Blue - long break
	ColorPaused    Color = "3"  // Yellow - paused
	ColorWork      Color = "1"  // Red - work
)

// UI semantic colors
const (
	ColorError     Color = "196" // Bright red
	ColorHighlight Color = "255" // White - emphasis
	ColorMuted     Color = "241" // Gray - secondary text
	ColorNormal    Color = "250" // Default text
	ColorSubtle    Color = "245" // Light gray - labels
)

// Progress bar gradients
const (
	ColorBreakGradientEnd   = "#A8E6A3"
	ColorBreakGradientStart = "#2E8B57"
	ColorWorkGradientEnd    = "#FFB199"
	ColorWorkGradientStart  = "#E5533D"
)
