package components

import (
	"strings"

	"github.com/theirongolddev/cbudget/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
)

// AllLabel is the filter bar item for "no filter".
const AllLabel = "All"

// FilterOptions returns the filter choices: "" (all) followed by categories.
func FilterOptions(categories []string) []string {
	return append([]string{""}, categories...)
}

// NextFilter returns the option after current, wrapping to "" (all).
func NextFilter(categories []string, current string) string {
	opts := FilterOptions(categories)
	for i, o := range opts {
		if o == current {
			return opts[(i+1)%len(opts)]
		}
	}
	return ""
}

// RenderFilterBar renders the category filter choices with active highlighted.
// Items that do not fit in width are elided.
func RenderFilterBar(categories []string, active string, width int) string {
	t := theme.Active

	activeStyle := lipgloss.NewStyle().Foreground(t.Accent).Bold(true).Underline(true)
	inactiveStyle := lipgloss.NewStyle().Foreground(t.TextMuted)
	keyStyle := lipgloss.NewStyle().Foreground(t.TextDim)

	prefix := keyStyle.Render(" [f]ilter ")
	used := lipgloss.Width(prefix)

	var parts []string
	for _, opt := range FilterOptions(categories) {
		label := opt
		if label == "" {
			label = AllLabel
		}
		style := inactiveStyle
		if opt == active {
			style = activeStyle
		}
		rendered := style.Render(label)
		if used+lipgloss.Width(rendered)+2 > width && len(parts) > 0 {
			parts = append(parts, inactiveStyle.Render("…"))
			break
		}
		used += lipgloss.Width(rendered) + 2
		parts = append(parts, rendered)
	}

	return prefix + strings.Join(parts, "  ")
}
