package cmd

import (
	"strings"

	"charm.land/lipgloss/v2"
)

var (
	colorPrimary = lipgloss.Color("#8B5CF6")
	colorSuccess = lipgloss.Color("#22C55E")
	colorError   = lipgloss.Color("#F43F5E")
	colorWarn    = lipgloss.Color("#F97316")
	colorDim     = lipgloss.Color("#94A3B8")
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(colorPrimary)
	dimStyle   = lipgloss.NewStyle().Foreground(colorDim)
	okStyle    = lipgloss.NewStyle().Foreground(colorSuccess)
	errStyle   = lipgloss.NewStyle().Foreground(colorError)
	warnStyle  = lipgloss.NewStyle().Foreground(colorWarn)
)

func rule(width int) string {
	return dimStyle.Render(strings.Repeat("─", width))
}

// bar renders v in [0, 1] as a fixed-width meter.
func bar(v float64, width int) string {
	filled := int(v*float64(width) + 0.5)
	filled = min(width, max(0, filled))
	return okStyle.Render(strings.Repeat("█", filled)) + dimStyle.Render(strings.Repeat("░", width-filled))
}
