package components

import (
	"strings"

	"github.com/theirongolddev/cbudget/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
)

// RenderStatusBar renders the bottom bar: hints on the left, a message on
// the right. isErr colors the message as an error.
func RenderStatusBar(width int, hints, message string, isErr bool) string {
	t := theme.Active

	msgColor := t.Green
	if isErr {
		msgColor = t.Red
	}
	left := lipgloss.NewStyle().Foreground(t.TextMuted).Render(" " + hints)
	right := lipgloss.NewStyle().Foreground(msgColor).Render(message + " ")

	padding := width - lipgloss.Width(left) - lipgloss.Width(right)
	if padding < 1 {
		padding = 1
	}
	return left + strings.Repeat(" ", padding) + right
}
