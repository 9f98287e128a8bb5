package cmd

import (
	"fmt"

	"github.com/theirongolddev/cbudget/internal/cli"

	"github.com/spf13/cobra"
)

var listCategory string

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List expenses, optionally for one category",
	Args:    cobra.NoArgs,
	RunE:    runList,
}

func init() {
	listCmd.Flags().StringVarP(&listCategory, "category", "c", "", "Only show this category")
	rootCmd.AddCommand(listCmd)
}

func runList(cmd *cobra.Command, _ []string) error {
	return withSession(cmd, func(s *session) error {
		s.ledger.SetFilter(listCategory)
		entries := s.ledger.Filtered()
		out := cmd.OutOrStdout()

		if len(entries) == 0 {
			if listCategory != "" {
				fmt.Fprintf(out, "  No expenses in %s.\n", listCategory)
			} else {
				fmt.Fprintln(out, "  No expenses.")
			}
			return nil
		}

		var total float64
		for _, e := range entries {
			total += e.Amount
		}
		rows := cli.EntryRows(entries)
		rows = append(rows, []string{"---"})
		rows = append(rows, []string{"", "Total", "", cli.FormatAmount(total), ""})

		title := "Expenses"
		if listCategory != "" {
			title = fmt.Sprintf("Expenses in %s", listCategory)
		}

		fmt.Fprintln(out)
		fmt.Fprint(out, cli.RenderTable(cli.Table{
			Title:   title,
			Headers: []string{"ID", "Name", "Category", "Amount", "Date"},
			Rows:    rows,
			Right:   []bool{false, false, false, true, false},
		}))
		fmt.Fprintln(out)
		return nil
	})
}
