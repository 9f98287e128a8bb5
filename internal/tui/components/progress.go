package components

import (
	"fmt"

	"github.com/theirongolddev/cbudget/internal/tui/theme"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"
)

// BudgetBar renders the spent fraction of the budget with a percentage.
// pct may exceed 1; the bar saturates and the label keeps the real value.
func BudgetBar(pct float64, width int) string {
	t := theme.Active
	if pct < 0 {
		pct = 0
	}
	color := t.ForUsage(pct)

	barW := width - 6
	if barW < 4 {
		barW = 4
	}
	bar := progress.New(
		progress.WithSolidFill(string(color)),
		progress.WithWidth(barW),
		progress.WithoutPercentage(),
	)
	bar.EmptyColor = string(t.TextDim)

	shown := pct
	if shown > 1 {
		shown = 1
	}
	pctStyle := lipgloss.NewStyle().Foreground(color).Bold(true)
	return bar.ViewAs(shown) + " " + pctStyle.Render(fmt.Sprintf("%3.0f%%", pct*100))
}
