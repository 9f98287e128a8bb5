package cmd

import (
	"fmt"
	"strings"

	"github.com/theirongolddev/cbudget/internal/cli"
	"github.com/theirongolddev/cbudget/internal/ledger"

	"github.com/spf13/cobra"
)

var budgetCmd = &cobra.Command{
	Use:   "budget [amount]",
	Short: "Show or set the budget",
	Long:  "Without an argument, print the current budget. With one, replace it.",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runBudget,
}

func init() {
	budgetCmd.SetFlagErrorFunc(budgetFlagError)
	rootCmd.AddCommand(budgetCmd)
}

// budgetFlagError reports a negative amount such as "-5", which the flag
// parser reads as an unknown shorthand, as the validation error it is.
func budgetFlagError(_ *cobra.Command, err error) error {
	msg, ok := strings.CutPrefix(err.Error(), "unknown shorthand flag: ")
	if !ok {
		return err
	}
	_, arg, ok := strings.Cut(msg, " in ")
	if !ok {
		return err
	}
	if v, perr := ledger.ParseAmount(arg); perr == nil && v <= 0 {
		return &ledger.ValidationError{Reason: ledger.ReasonBudgetNotPositive}
	}
	return err
}

func runBudget(cmd *cobra.Command, args []string) error {
	return withSession(cmd, func(s *session) error {
		if len(args) == 0 {
			b := s.ledger.Budget()
			if !b.IsSet {
				fmt.Fprintln(cmd.OutOrStdout(), "  No budget set.")
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "  Budget: %s\n", cli.FormatAmount(b.Amount))
			return nil
		}

		amount, err := ledger.ParseAmount(strings.Join(args, " "))
		if err != nil {
			return err
		}
		if err := s.ledger.SetBudget(amount); err != nil {
			return err
		}
		infof(cmd, "  Budget set to %s\n", cli.FormatAmount(amount))
		return nil
	})
}
