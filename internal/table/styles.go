package table

import "github.com/charmbracelet/lipgloss"

// CursorMarker is the prefix shown on the selected row.
const CursorMarker = "▸ "

var (
	headerStyle = lipgloss.NewStyle().Bold(true)

	mutedText = lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "240", Dark: "245"})

	errorText = lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "1", Dark: "9"})

	focusedLabel = lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "4", Dark: "12"}).
			Bold(true)

	highlightChoice = lipgloss.NewStyle().Underline(true)

	buttonStyle = lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "4", Dark: "12"})

	modalStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.AdaptiveColor{Light: "4", Dark: "12"}).
			Padding(0, 1)
)
