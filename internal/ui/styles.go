package ui

import "github.com/charmbracelet/lipgloss"

var (
	// Heading colours table headers and prompt questions.
	Heading = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))

	// Accent marks note paths and the active choice.
	Accent = lipgloss.NewStyle().Foreground(lipgloss.Color("#A78BFA"))

	// Muted is for hints, defaults and table borders.
	Muted = lipgloss.NewStyle().Foreground(lipgloss.Color("#6C7086"))

	Failure = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
)
