package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/theirongolddev/cbudget/internal/config"
	"github.com/theirongolddev/cbudget/internal/ledger"
	"github.com/theirongolddev/cbudget/internal/logging"
	"github.com/theirongolddev/cbudget/internal/tui"
	"github.com/theirongolddev/cbudget/internal/tui/theme"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Launch the interactive planner",
	Args:  cobra.NoArgs,
	RunE:  runTUI,
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(cmd *cobra.Command, _ []string) (err error) {
	// The TUI owns the terminal, so logs go to a file.
	logFile, err := logging.OpenFile(filepath.Join(config.DataDir(), "cbudget.log"))
	if err != nil {
		return err
	}

	persistErrs := make(chan *ledger.PersistenceError, 16)
	s, err := openSession(cmd.Context(), sessionOptions{
		logOutput: logFile,
		notices:   cmd.ErrOrStderr(),
		onError: func(pe *ledger.PersistenceError) {
			select {
			case persistErrs <- pe:
			default:
				// UI is behind; the error is already in the log.
			}
		},
	})
	if err != nil {
		_ = logFile.Close()
		return err
	}
	s.closeLog = logFile.Close
	defer func() {
		if cerr := s.Close(); err == nil {
			err = cerr
		}
	}()

	theme.SetActive(s.cfg.Appearance.Theme)

	// Force TrueColor so background styling produces ANSI codes.
	lipgloss.SetColorProfile(termenv.TrueColor)

	app := tui.NewApp(s.ledger, tui.Options{
		Categories:    s.cfg.Categories(),
		PersistErrors: persistErrs,
		Logger:        logging.Component(s.log, "tui"),
	})
	p := tea.NewProgram(app, tea.WithAltScreen(), tea.WithContext(cmd.Context()))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}
