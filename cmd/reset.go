package cmd

import (
	"github.com/spf13/cobra"
)

var resetForce bool

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Delete the budget and every expense",
	Args:  cobra.NoArgs,
	RunE:  runReset,
}

func init() {
	resetCmd.Flags().BoolVarP(&resetForce, "force", "f", false, "Skip the confirmation prompt")
	rootCmd.AddCommand(resetCmd)
}

func runReset(cmd *cobra.Command, _ []string) error {
	return withSession(cmd, func(s *session) error {
		if err := s.ledger.ResetAll(cmd.Context(), gateFor(cmd, resetForce)); err != nil {
			return declined(cmd, err)
		}
		infof(cmd, "  Planner reset.\n")
		return nil
	})
}
