package cmd

import (
	"github.com/theirongolddev/cbudget/internal/cli"
	"github.com/theirongolddev/cbudget/internal/ledger"

	"github.com/spf13/cobra"
)

var (
	editName     string
	editCategory string
	editAmount   string
)

var editCmd = &cobra.Command{
	Use:   "edit <id>",
	Short: "Change an existing expense",
	Long:  "Change the name, category, or amount of an expense. Unset flags keep their current value.",
	Args:  cobra.ExactArgs(1),
	RunE:  runEdit,
}

func init() {
	editCmd.Flags().StringVarP(&editName, "name", "n", "", "New name")
	editCmd.Flags().StringVarP(&editCategory, "category", "c", "", "New category")
	editCmd.Flags().StringVarP(&editAmount, "amount", "a", "", "New amount")
	rootCmd.AddCommand(editCmd)
}

func runEdit(cmd *cobra.Command, args []string) error {
	return withSession(cmd, func(s *session) error {
		id, err := resolveID(s, args[0])
		if err != nil {
			return err
		}
		e, _ := s.ledger.Entry(id)

		if cmd.Flags().Changed("name") {
			e.Name = editName
		}
		if cmd.Flags().Changed("category") {
			e.Category = editCategory
		}
		if cmd.Flags().Changed("amount") {
			v, err := ledger.ParseAmount(editAmount)
			if err != nil {
				return err
			}
			e.Amount = v
		}

		updated, err := s.ledger.UpsertExpense(e)
		if err != nil {
			return err
		}
		infof(cmd, "  Updated %s  %s (%s) %s\n",
			cli.ShortID(updated.ID), updated.Name, updated.Category, cli.FormatAmount(updated.Amount))
		return nil
	})
}
