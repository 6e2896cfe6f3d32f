package ui

import "github.com/charmbracelet/lipgloss"

var (
	TitleStyle = lipgloss.NewStyle().
			MarginLeft(2).
			Foreground(lipgloss.Color("#FFFDF5")).
			Background(lipgloss.Color("#D35400")).
			Padding(0, 1)

	PaginationStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#D35400"))

	HelpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#D35400"))

	DocStyle = lipgloss.NewStyle().
			Margin(1, 2)
)
