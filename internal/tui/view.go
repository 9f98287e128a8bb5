package tui

import (
	"fmt"
	"strings"

	"github.com/theirongolddev/cbudget/internal/cli"
	"github.com/theirongolddev/cbudget/internal/model"
	"github.com/theirongolddev/cbudget/internal/tui/components"
	"github.com/theirongolddev/cbudget/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
)

// View implements tea.Model.
func (a App) View() string {
	if a.quitting {
		return ""
	}
	if a.width > 0 && a.width < minTerminalWidth {
		return fmt.Sprintf("\n  Terminal too narrow (%d cols, need %d).\n", a.width, minTerminalWidth)
	}
	if a.form != nil {
		return a.viewForm()
	}
	return a.viewMain()
}

func (a App) viewForm() string {
	t := theme.Active
	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(lipgloss.NewStyle().Foreground(t.Accent).Bold(true).Render("  cbudget"))
	b.WriteString("\n\n")
	if a.formKind == formBudget && !a.store.Budget().IsSet {
		b.WriteString(lipgloss.NewStyle().Foreground(t.TextMuted).Render("  Set a budget to start tracking expenses."))
		b.WriteString("\n\n")
	}
	b.WriteString(a.form.View())
	if a.status != "" {
		b.WriteString("\n\n")
		b.WriteString(components.RenderStatusBar(a.contentWidth(), "esc cancel", a.status, a.statusErr))
	}
	return b.String()
}

func (a App) viewMain() string {
	t := theme.Active
	w := a.contentWidth()
	if w == 0 {
		w = 80
	}

	snap := a.store.Snapshot()
	sum := a.store.Summary()

	var b strings.Builder
	b.WriteString(lipgloss.NewStyle().Foreground(t.Accent).Bold(true).Render(" cbudget"))
	b.WriteString("\n")
	b.WriteString(a.viewSummary(sum, w))
	b.WriteString("\n")
	b.WriteString(components.RenderFilterBar(a.store.Categories(), snap.Filter, w))
	b.WriteString("\n")
	b.WriteString(a.viewEntries(snap, w))
	b.WriteString("\n")
	b.WriteString(components.RenderStatusBar(w, a.help.View(a.keys), a.status, a.statusErr))
	return b.String()
}

func (a App) viewSummary(sum model.Summary, w int) string {
	t := theme.Active

	availColor := t.Green
	if sum.Overspent() {
		availColor = t.Red
	}
	metrics := []components.Metric{
		{Label: "Budget", Value: cli.FormatAmount(sum.Budget.Amount)},
		{Label: "Spent", Value: cli.FormatAmount(sum.Spent), Note: fmt.Sprintf("%d expenses", sum.Count)},
		{Label: "Available", Value: cli.FormatAmount(sum.Available), Color: availColor},
	}

	out := components.MetricCardRow(metrics, w) + "\n"
	out += " " + components.BudgetBar(sum.UsedPercent, w-2)
	return out
}

func (a App) viewEntries(snap model.Ledger, w int) string {
	t := theme.Active
	inner := components.CardInnerWidth(w)

	title := "Expenses"
	if snap.Filter != "" {
		title = fmt.Sprintf("Expenses in %s (%d of %d)", snap.Filter, len(snap.Filtered), len(snap.Entries))
	}

	if len(snap.Filtered) == 0 {
		empty := "No expenses"
		if snap.Filter != "" {
			empty = "No expenses in " + snap.Filter
		}
		body := lipgloss.NewStyle().Foreground(t.TextDim).Render(empty) + "\n" +
			lipgloss.NewStyle().Foreground(t.TextDim).Render("press n to add one")
		return components.ContentCard(title, body, w, false)
	}

	// Columns: name, category, amount, date.
	amountW, dateW, catW := 12, 11, 14
	nameW := inner - amountW - dateW - catW - 3
	if nameW < 8 {
		nameW = 8
	}

	rows := a.visibleRows(len(snap.Filtered))
	var lines []string
	for i := rows.start; i < rows.end; i++ {
		e := snap.Filtered[i]
		line := fmt.Sprintf("%-*s %-*s %*s %*s",
			nameW, truncate(e.Name, nameW),
			catW, truncate(e.Category, catW),
			amountW, cli.FormatAmount(e.Amount),
			dateW, cli.FormatDate(e.CreatedAt),
		)
		style := lipgloss.NewStyle().Foreground(t.TextPrimary)
		if i == a.cursor {
			style = style.Background(t.SurfaceHover).Bold(true)
		}
		lines = append(lines, style.Render(line))
	}
	if rows.start > 0 || rows.end < len(snap.Filtered) {
		lines = append(lines, lipgloss.NewStyle().Foreground(t.TextDim).
			Render(fmt.Sprintf("%d-%d of %d", rows.start+1, rows.end, len(snap.Filtered))))
	}

	return components.ContentCard(title, strings.Join(lines, "\n"), w, true)
}

type rowRange struct{ start, end int }

// visibleRows picks the window of list rows that fits the terminal and
// keeps the cursor on screen.
func (a App) visibleRows(n int) rowRange {
	// title, cards, bar, filter line, card borders and status take ~14 lines
	avail := a.height - 14
	if a.height == 0 || avail > n {
		return rowRange{0, n}
	}
	if avail < 3 {
		avail = 3
	}
	start := a.cursor - avail/2
	if start < 0 {
		start = 0
	}
	end := start + avail
	if end > n {
		end = n
		start = end - avail
		if start < 0 {
			start = 0
		}
	}
	return rowRange{start, end}
}

func truncate(s string, w int) string {
	if lipgloss.Width(s) <= w {
		return s
	}
	r := []rune(s)
	if w <= 1 {
		return string(r[:min(len(r), max(w, 0))])
	}
	if len(r) > w-1 {
		r = r[:w-1]
	}
	return string(r) + "…"
}
