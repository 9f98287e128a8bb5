package cmd

import (
	"fmt"

	"github.com/theirongolddev/cbudget/internal/cli"
	"github.com/theirongolddev/cbudget/internal/model"

	"github.com/spf13/cobra"
)

var categoriesCmd = &cobra.Command{
	Use:   "categories",
	Short: "Configured categories and what has been spent in each",
	Args:  cobra.NoArgs,
	RunE:  runCategories,
}

func init() {
	rootCmd.AddCommand(categoriesCmd)
}

func runCategories(cmd *cobra.Command, _ []string) error {
	return withSession(cmd, func(s *session) error {
		totals := make(map[string]model.CategoryTotal)
		for _, ct := range s.ledger.Summary().ByCategory {
			totals[ct.Category] = ct
		}

		names := s.cfg.Categories()
		for _, c := range s.ledger.Categories() {
			if !containsString(names, c) {
				names = append(names, c)
			}
		}

		rows := make([][]string, 0, len(names))
		for _, c := range names {
			ct := totals[c]
			rows = append(rows, []string{
				c,
				cli.FormatNumber(int64(ct.Count)),
				cli.FormatAmount(ct.Amount),
			})
		}

		out := cmd.OutOrStdout()
		fmt.Fprintln(out)
		fmt.Fprint(out, cli.RenderTable(cli.Table{
			Title:   "Categories",
			Headers: []string{"Category", "Entries", "Spent"},
			Rows:    rows,
			Right:   []bool{false, true, true},
		}))
		fmt.Fprintln(out)
		return nil
	})
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
