package cmd

import (
	"github.com/theirongolddev/cbudget/internal/cli"

	"github.com/spf13/cobra"
)

var deleteForce bool

var deleteCmd = &cobra.Command{
	Use:     "delete <id>",
	Aliases: []string{"rm"},
	Short:   "Delete an expense",
	Args:    cobra.ExactArgs(1),
	RunE:    runDelete,
}

func init() {
	deleteCmd.Flags().BoolVarP(&deleteForce, "force", "f", false, "Skip the confirmation prompt")
	rootCmd.AddCommand(deleteCmd)
}

func runDelete(cmd *cobra.Command, args []string) error {
	return withSession(cmd, func(s *session) error {
		id, err := resolveID(s, args[0])
		if err != nil {
			return err
		}
		e, _ := s.ledger.Entry(id)

		if err := s.ledger.DeleteExpense(cmd.Context(), gateFor(cmd, deleteForce), id); err != nil {
			return declined(cmd, err)
		}
		infof(cmd, "  Deleted %s  %s\n", cli.ShortID(id), e.Name)
		return nil
	})
}
