package cmd

import (
	"fmt"

	"github.com/theirongolddev/cbudget/internal/cli"

	"github.com/spf13/cobra"
)

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Budget, spending, and what is left",
	RunE:  runSummary,
}

func init() {
	rootCmd.AddCommand(summaryCmd)
}

func runSummary(cmd *cobra.Command, _ []string) error {
	return withSession(cmd, func(s *session) error {
		sum := s.ledger.Summary()
		out := cmd.OutOrStdout()

		fmt.Fprintln(out)
		fmt.Fprint(out, cli.RenderTitle("BUDGET"))
		fmt.Fprintln(out)
		fmt.Fprint(out, cli.RenderSummary(sum))
		fmt.Fprintln(out)

		if sum.Count == 0 {
			fmt.Fprintln(out, cli.Muted("  No expenses yet. Add one with `cbudget add`."))
			fmt.Fprintln(out)
			return nil
		}

		rows := make([][]string, 0, len(sum.ByCategory)+2)
		for _, ct := range sum.ByCategory {
			rows = append(rows, []string{
				ct.Category,
				cli.FormatNumber(int64(ct.Count)),
				cli.FormatAmount(ct.Amount),
				cli.FormatPercent(ct.Share),
			})
		}
		rows = append(rows, []string{"---"})
		rows = append(rows, []string{
			"Total",
			cli.FormatNumber(int64(sum.Count)),
			cli.FormatAmount(sum.Spent),
			"",
		})

		fmt.Fprint(out, cli.RenderTable(cli.Table{
			Title:   "By Category",
			Headers: []string{"Category", "Entries", "Spent", "Share"},
			Rows:    rows,
			Right:   []bool{false, true, true, true},
		}))
		fmt.Fprintln(out)
		return nil
	})
}
