package tui

import (
	"charm.land/lipgloss/v2"
)

// Color palette, muted and readable on dark terminals.
var (
	primary = lipgloss.Color("#38BDF8") // Sky
	success = lipgloss.Color("#22C55E") // Green
	warn    = lipgloss.Color("#F59E0B") // Amber
	failure = lipgloss.Color("#F43F5E") // Rose
	text    = lipgloss.Color("#F8FAFC") // White
	textDim = lipgloss.Color("#94A3B8") // Slate
	border  = lipgloss.Color("#334155") // Slate
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(primary)

	crumbStyle = lipgloss.NewStyle().
			Foreground(textDim)

	questionStyle = lipgloss.NewStyle().
			Foreground(text).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(border).
			Padding(1, 2)

	feedbackStyle = lipgloss.NewStyle().
			Foreground(text).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(primary).
			Padding(1, 2)

	scoreGoodStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(success)

	scoreMidStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(warn)

	scoreLowStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(failure)

	hintStyle = lipgloss.NewStyle().
			Foreground(textDim).
			Italic(true)

	errStyle = lipgloss.NewStyle().
			Foreground(failure)
)

// scoreStyle picks a style for a 0-100 score.
func scoreStyle(score int) lipgloss.Style {
	switch {
	case score >= 70:
		return scoreGoodStyle
	case score >= 40:
		return scoreMidStyle
	default:
		return scoreLowStyle
	}
}
