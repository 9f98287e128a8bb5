package tui

import (
	"errors"
	"strings"

	"github.com/theirongolddev/cbudget/internal/cli"
	"github.com/theirongolddev/cbudget/internal/ledger"
	"github.com/theirongolddev/cbudget/internal/model"

	"github.com/charmbracelet/huh"
)

type formKind int

const (
	formNone formKind = iota
	formBudget
	formExpense
	formDelete
	formReset
)

// formValues backs the open huh form. It lives on the heap so the
// pointers huh holds stay valid while App is copied by value.
type formValues struct {
	budget    string
	name      string
	category  string
	amount    string
	confirmed bool
	entryID   string // entry being edited or deleted
}

func validateBudget(s string) error {
	v, err := ledger.ParseAmount(s)
	if err != nil {
		return err
	}
	if v <= 0 {
		return &ledger.ValidationError{Reason: ledger.ReasonBudgetNotPositive}
	}
	return nil
}

func validateAmount(s string) error {
	v, err := ledger.ParseAmount(s)
	if err != nil {
		return err
	}
	if v <= 0 {
		return &ledger.ValidationError{Reason: ledger.ReasonAmountNotPositive}
	}
	return nil
}

func required(s string) error {
	if strings.TrimSpace(s) == "" {
		return errors.New("required")
	}
	return nil
}

func newBudgetForm(vals *formValues, current model.Budget) *huh.Form {
	if current.IsSet {
		vals.budget = cli.FormatAmount(current.Amount)
		vals.budget = strings.ReplaceAll(vals.budget, ",", "")
	}
	return huh.NewForm(huh.NewGroup(
		huh.NewInput().
			Title("Budget").
			Description("Total you plan to spend.").
			Placeholder("e.g. 1500").
			Value(&vals.budget).
			Validate(validateBudget),
	)).WithShowHelp(true)
}

// newExpenseForm builds the add/edit form. A non-empty entry.ID means edit.
func newExpenseForm(vals *formValues, entry model.Entry, categories []string) *huh.Form {
	vals.entryID = entry.ID
	vals.name = entry.Name
	vals.category = entry.Category
	vals.amount = ""
	if entry.ID != "" {
		vals.amount = strings.ReplaceAll(cli.FormatAmount(entry.Amount), ",", "")
	}

	options := categories
	if vals.category != "" && !contains(options, vals.category) {
		options = append([]string{vals.category}, options...)
	}
	if vals.category == "" && len(options) > 0 {
		vals.category = options[0]
	}

	title := "New expense"
	if entry.ID != "" {
		title = "Edit expense"
	}

	return huh.NewForm(huh.NewGroup(
		huh.NewInput().
			Title(title).
			Description("Name").
			Value(&vals.name).
			Validate(required),
		huh.NewSelect[string]().
			Title("Category").
			Options(huh.NewOptions(options...)...).
			Value(&vals.category),
		huh.NewInput().
			Title("Amount").
			Placeholder("0.00").
			Value(&vals.amount).
			Validate(validateAmount),
	)).WithShowHelp(true)
}

func newConfirmForm(vals *formValues, title, description, affirmative string) *huh.Form {
	vals.confirmed = false
	return huh.NewForm(huh.NewGroup(
		huh.NewConfirm().
			Title(title).
			Description(description).
			Affirmative(affirmative).
			Negative("No").
			Value(&vals.confirmed),
	))
}

// expenseFromForm converts the submitted form into an upsert candidate.
func expenseFromForm(vals *formValues) (model.Entry, error) {
	amount, err := ledger.ParseAmount(vals.amount)
	if err != nil {
		return model.Entry{}, err
	}
	return model.Entry{
		ID:       vals.entryID,
		Name:     vals.name,
		Category: vals.category,
		Amount:   amount,
	}, nil
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
