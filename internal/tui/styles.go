package tui

import "github.com/charmbracelet/lipgloss"

var (
	// HeaderStyle styles the column header row.
	HeaderStyle = lipgloss.NewStyle().Bold(true)

	statusStyles = map[string]lipgloss.Style{
		// Terminal states
		"verified": lipgloss.NewStyle().Foreground(lipgloss.Color("2")),
		"valid":    lipgloss.NewStyle().Foreground(lipgloss.Color("2")),
		"complete": lipgloss.NewStyle().Foreground(lipgloss.Color("2")),

		// Active states
		"checking":   lipgloss.NewStyle().Foreground(lipgloss.Color("4")),
		"fetching":   lipgloss.NewStyle().Foreground(lipgloss.Color("4")),
		"validating": lipgloss.NewStyle().Foreground(lipgloss.Color("4")),

		// Needs attention
		"conditional":  lipgloss.NewStyle().Foreground(lipgloss.Color("3")),
		"needs_review": lipgloss.NewStyle().Foreground(lipgloss.Color("3")),
		"skipped":      lipgloss.NewStyle().Foreground(lipgloss.Color("3")),

		// Error
		"failed": lipgloss.NewStyle().Foreground(lipgloss.Color("1")),
		"error":  lipgloss.NewStyle().Foreground(lipgloss.Color("1")),

		// Pending
		"pending": lipgloss.NewStyle().Faint(true),
	}
)

// StatusStyle returns the lipgloss style for the given status string.
func StatusStyle(status string) lipgloss.Style {
	if s, ok := statusStyles[status]; ok {
		return s
	}
	return lipgloss.NewStyle()
}
