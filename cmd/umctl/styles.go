package main

import "github.com/charmbracelet/lipgloss"

var (
	primaryColor = lipgloss.Color("#7D56F4")
	mutedColor   = lipgloss.Color("#666666")
	errorColor   = lipgloss.Color("#FF4B4B")

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(primaryColor)

	tableHeaderStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(primaryColor)

	mutedStyle = lipgloss.NewStyle().
			Foreground(mutedColor)

	badStyle = lipgloss.NewStyle().
			Foreground(errorColor)
)

// styled renders s with st unless colour is disabled. lipgloss already drops
// escape codes when stdout is not a terminal.
func styled(st lipgloss.Style, s string) string {
	if noColor {
		return s
	}
	return st.Render(s)
}
