package cmd

import (
	"github.com/theirongolddev/cbudget/internal/cli"
	"github.com/theirongolddev/cbudget/internal/ledger"
	"github.com/theirongolddev/cbudget/internal/model"

	"github.com/spf13/cobra"
)

var (
	addName     string
	addCategory string
	addAmount   string
)

var addCmd = &cobra.Command{
	Use:   "add",
	Short: "Record an expense",
	Example: `  cbudget add --name Groceries --category food --amount 42.50
  cbudget add -n Rent -c home -a 900`,
	Args: cobra.NoArgs,
	RunE: runAdd,
}

func init() {
	addCmd.Flags().StringVarP(&addName, "name", "n", "", "What the money went on")
	addCmd.Flags().StringVarP(&addCategory, "category", "c", "", "Expense category")
	addCmd.Flags().StringVarP(&addAmount, "amount", "a", "", "Amount spent")
	rootCmd.AddCommand(addCmd)
}

func runAdd(cmd *cobra.Command, _ []string) error {
	return withSession(cmd, func(s *session) error {
		var amount float64
		if addAmount != "" {
			v, err := ledger.ParseAmount(addAmount)
			if err != nil {
				return err
			}
			amount = v
		}

		e, err := s.ledger.UpsertExpense(model.Entry{
			Name:     addName,
			Category: addCategory,
			Amount:   amount,
		})
		if err != nil {
			return err
		}
		infof(cmd, "  Added %s  %s (%s) %s\n",
			cli.ShortID(e.ID), e.Name, e.Category, cli.FormatAmount(e.Amount))
		return nil
	})
}
