package theme

import "github.com/charmbracelet/lipgloss"

// Adaptive color pairs (dark terminal value, light terminal value).
var (
	ColorBlue   = lipgloss.AdaptiveColor{Dark: "#5B9BD5", Light: "#2B6CB0"}
	ColorGreen  = lipgloss.AdaptiveColor{Dark: "#6BCB77", Light: "#2F855A"}
	ColorBorder = lipgloss.AdaptiveColor{Dark: "#495057", Light: "#E2E8F0"}
)

// TableHeaderStyle is used for the header row of aggregate tables.
var TableHeaderStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(ColorBlue).
	Padding(0, 1)

// TableCellStyle is the base style for aggregate table cells.
var TableCellStyle = lipgloss.NewStyle().
	Padding(0, 1)

// TableCountStyle highlights the count column of aggregate tables.
var TableCountStyle = lipgloss.NewStyle().
	Foreground(ColorGreen).
	Padding(0, 1)

// TableBorderStyle colors the frame around aggregate tables.
var TableBorderStyle = lipgloss.NewStyle().
	Foreground(ColorBorder)
