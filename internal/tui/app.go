// Package tui provides the interactive Bubble Tea interface for cbudget.
package tui

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/theirongolddev/cbudget/internal/confirm"
	"github.com/theirongolddev/cbudget/internal/ledger"
	"github.com/theirongolddev/cbudget/internal/model"
	"github.com/theirongolddev/cbudget/internal/tui/components"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
)

// commandTimeout bounds a store command started from the UI.
const commandTimeout = 10 * time.Second

// CommandDoneMsg reports the outcome of a store command.
type CommandDoneMsg struct {
	Status string
	Err    error
}

// PersistFailedMsg carries a background persistence failure.
type PersistFailedMsg struct {
	Err *ledger.PersistenceError
}

// Options configures the App.
type Options struct {
	Categories []string
	// PersistErrors delivers background write failures; may be nil.
	PersistErrors <-chan *ledger.PersistenceError
	Logger        *slog.Logger
}

// App is the root Bubble Tea model.
type App struct {
	store *ledger.Store
	opts  Options
	log   *slog.Logger

	// UI state
	width  int
	height int
	cursor int
	keys   keyMap
	help   help.Model

	// Open huh form, if any
	form     *huh.Form
	formKind formKind
	vals     *formValues

	status    string
	statusErr bool
	quitting  bool
}

const (
	minTerminalWidth = 60
	maxContentWidth  = 110
)

// NewApp returns the root model over store.
func NewApp(store *ledger.Store, opts Options) App {
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	a := App{
		store: store,
		opts:  opts,
		log:   log,
		keys:  defaultKeys(),
		help:  help.New(),
		vals:  &formValues{},
	}
	a.askBudget()
	return a
}

// Init implements tea.Model.
func (a App) Init() tea.Cmd {
	cmds := []tea.Cmd{a.waitForPersistError()}
	if a.form != nil {
		cmds = append(cmds, a.form.Init())
	}
	return tea.Batch(cmds...)
}

// askBudget opens the budget form when no budget is set, as on first run
// or after a reset.
func (a *App) askBudget() tea.Cmd {
	if a.form != nil || a.store.Budget().IsSet {
		return nil
	}
	a.openForm(formBudget, newBudgetForm(a.vals, model.Budget{}))
	return a.form.Init()
}

func (a App) waitForPersistError() tea.Cmd {
	ch := a.opts.PersistErrors
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		pe, ok := <-ch
		if !ok {
			return nil
		}
		return PersistFailedMsg{Err: pe}
	}
}

// Update implements tea.Model.
func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.help.Width = msg.Width
		if a.form != nil {
			a.form = a.form.WithWidth(a.contentWidth())
		}

	case CommandDoneMsg:
		if msg.Err != nil {
			a.log.Debug("command failed", "err", msg.Err)
		}
		a.setStatus(msg.Status, msg.Err)
		a.clampCursor()
		if errors.Is(msg.Err, ledger.ErrClosed) {
			return a, tea.Quit
		}
		return a, a.askBudget()

	case PersistFailedMsg:
		a.setStatus("", msg.Err)
		return a, a.waitForPersistError()
	}

	if a.form != nil {
		return a.updateForm(msg)
	}

	if msg, ok := msg.(tea.KeyMsg); ok {
		return a.handleKey(msg)
	}
	return a, nil
}

func (a App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	visible := a.store.Filtered()

	switch {
	case key.Matches(msg, a.keys.Quit):
		a.quitting = true
		return a, tea.Quit

	case key.Matches(msg, a.keys.Help):
		a.help.ShowAll = !a.help.ShowAll

	case key.Matches(msg, a.keys.Up):
		if a.cursor > 0 {
			a.cursor--
		}

	case key.Matches(msg, a.keys.Down):
		if a.cursor < len(visible)-1 {
			a.cursor++
		}

	case key.Matches(msg, a.keys.New):
		a.openForm(formExpense, newExpenseForm(a.vals, model.Entry{Category: a.store.Filter()}, a.categories()))
		return a, a.form.Init()

	case key.Matches(msg, a.keys.Edit):
		if e, ok := a.selected(visible); ok {
			a.openForm(formExpense, newExpenseForm(a.vals, e, a.categories()))
			return a, a.form.Init()
		}

	case key.Matches(msg, a.keys.Delete):
		if e, ok := a.selected(visible); ok {
			a.vals.entryID = e.ID
			a.openForm(formDelete, newConfirmForm(a.vals,
				"Delete this expense?",
				fmt.Sprintf("%s (%s) will be removed.", e.Name, e.Category),
				"Yes, delete"))
			return a, a.form.Init()
		}

	case key.Matches(msg, a.keys.Filter):
		next := components.NextFilter(a.store.Categories(), a.store.Filter())
		a.store.SetFilter(next)
		a.cursor = 0

	case key.Matches(msg, a.keys.Clear):
		a.store.SetFilter("")
		a.cursor = 0

	case key.Matches(msg, a.keys.Budget):
		a.openForm(formBudget, newBudgetForm(a.vals, a.store.Budget()))
		return a, a.form.Init()

	case key.Matches(msg, a.keys.Reset):
		a.openForm(formReset, newConfirmForm(a.vals,
			"Reset the planner?",
			"The budget and every expense will be deleted.",
			"Yes, reset"))
		return a, a.form.Init()
	}

	return a, nil
}

func (a App) updateForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	if km, ok := msg.(tea.KeyMsg); ok && km.String() == "esc" {
		return a.abortForm()
	}

	form, cmd := a.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		a.form = f
	}

	switch a.form.State {
	case huh.StateCompleted:
		kind := a.formKind
		a.closeForm()
		return a, tea.Batch(cmd, a.submit(kind))
	case huh.StateAborted:
		return a.abortForm()
	}
	return a, cmd
}

func (a App) abortForm() (tea.Model, tea.Cmd) {
	kind := a.formKind
	a.closeForm()
	// No budget yet and the first-run form was dismissed: nothing to show.
	if kind == formBudget && !a.store.Budget().IsSet {
		a.quitting = true
		return a, tea.Quit
	}
	return a, nil
}

// submit turns a completed form into a store command.
func (a App) submit(kind formKind) tea.Cmd {
	vals := *a.vals
	store := a.store

	switch kind {
	case formBudget:
		return run(func(context.Context) (string, error) {
			amount, err := ledger.ParseAmount(vals.budget)
			if err != nil {
				return "", err
			}
			if err := store.SetBudget(amount); err != nil {
				return "", err
			}
			return "Budget saved", nil
		})

	case formExpense:
		return run(func(context.Context) (string, error) {
			candidate, err := expenseFromForm(&vals)
			if err != nil {
				return "", err
			}
			e, err := store.UpsertExpense(candidate)
			if err != nil {
				return "", err
			}
			if vals.entryID != "" {
				return "Updated " + e.Name, nil
			}
			return "Added " + e.Name, nil
		})

	case formDelete:
		if !vals.confirmed {
			return nil
		}
		return run(func(ctx context.Context) (string, error) {
			// The dialog above was the confirmation.
			if err := store.DeleteExpense(ctx, confirm.Always, vals.entryID); err != nil {
				return "", err
			}
			return "Expense deleted", nil
		})

	case formReset:
		if !vals.confirmed {
			return nil
		}
		return run(func(ctx context.Context) (string, error) {
			if err := store.ResetAll(ctx, confirm.Always); err != nil {
				return "", err
			}
			return "Planner reset", nil
		})
	}
	return nil
}

func run(fn func(ctx context.Context) (string, error)) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
		defer cancel()
		status, err := fn(ctx)
		return CommandDoneMsg{Status: status, Err: err}
	}
}

func (a *App) openForm(kind formKind, f *huh.Form) {
	a.formKind = kind
	a.form = f
	if a.width > 0 {
		a.form = a.form.WithWidth(a.contentWidth())
	}
}

func (a *App) closeForm() {
	a.form = nil
	a.formKind = formNone
}

func (a *App) setStatus(status string, err error) {
	if err != nil {
		a.status = err.Error()
		a.statusErr = true
		var pe *ledger.PersistenceError
		if errors.As(err, &pe) {
			a.status = "not saved: " + pe.Error()
		}
		return
	}
	a.status = status
	a.statusErr = false
}

func (a *App) clampCursor() {
	n := len(a.store.Filtered())
	if a.cursor >= n {
		a.cursor = n - 1
	}
	if a.cursor < 0 {
		a.cursor = 0
	}
}

func (a App) selected(visible []model.Entry) (model.Entry, bool) {
	if a.cursor < 0 || a.cursor >= len(visible) {
		return model.Entry{}, false
	}
	return visible[a.cursor], true
}

// categories merges configured categories with ones already in use.
func (a App) categories() []string {
	cats := append([]string(nil), a.opts.Categories...)
	for _, c := range a.store.Categories() {
		if !contains(cats, c) {
			cats = append(cats, c)
		}
	}
	return cats
}

func (a App) contentWidth() int {
	w := a.width
	if w > maxContentWidth {
		w = maxContentWidth
	}
	return w
}
