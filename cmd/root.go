// Package cmd implements the cbudget CLI commands.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/theirongolddev/cbudget/internal/config"
	"github.com/theirongolddev/cbudget/internal/confirm"
	"github.com/theirongolddev/cbudget/internal/ledger"
	"github.com/theirongolddev/cbudget/internal/logging"
	"github.com/theirongolddev/cbudget/internal/store"

	"github.com/spf13/cobra"
)

var (
	flagConfig   string
	flagDB       string
	flagMemory   bool
	flagQuiet    bool
	flagLogLevel string
)

var rootCmd = &cobra.Command{
	Use:           "cbudget",
	Short:         "Budget planner for the terminal",
	Long:          "Set a budget, record expenses against it, and see what is left.",
	RunE:          runSummary,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute is the main entry point called from main.go.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintf(os.Stderr, "  Error: %s\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Config file (default "+config.Path()+")")
	rootCmd.PersistentFlags().StringVar(&flagDB, "db", "", "Ledger database path (overrides config)")
	rootCmd.PersistentFlags().BoolVar(&flagMemory, "memory", false, "Use a throwaway in-memory ledger")
	rootCmd.PersistentFlags().BoolVarP(&flagQuiet, "quiet", "q", false, "Suppress informational output")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "Log level: debug, info, warn, error")
}

// loadConfig reads the config file and applies command-line overrides.
func loadConfig() (config.Config, error) {
	path := flagConfig
	if path == "" {
		path = config.Path()
	}
	cfg, err := config.LoadFile(path)
	if err != nil {
		return cfg, err
	}
	if flagDB != "" {
		cfg.Storage.Path = flagDB
	}
	if flagMemory {
		cfg.Storage.Backend = "memory"
	}
	if flagLogLevel != "" {
		cfg.Log.Level = flagLogLevel
	}
	return cfg, cfg.Validate()
}

// session is an open ledger plus everything needed to shut it down.
type session struct {
	cfg    config.Config
	log    *slog.Logger
	ledger *ledger.Store
	memory *store.Memory // set for the in-memory backend
	notify io.Writer

	closeBackend func() error
	closeLog     func() error
}

type sessionOptions struct {
	logOutput io.Writer
	notices   io.Writer // end-of-run warnings; defaults to stderr
	onError   func(*ledger.PersistenceError)
}

// openSession loads config, sets up logging, opens the backend, and
// bootstraps the ledger from it.
func openSession(ctx context.Context, so sessionOptions) (*session, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	out := so.logOutput
	if out == nil {
		out = os.Stderr
	}
	log, err := logging.New(logging.Options{Level: cfg.Log.Level, Format: cfg.Log.Format, Output: out})
	if err != nil {
		return nil, err
	}

	s := &session{cfg: cfg, log: log, notify: so.notices}
	if s.notify == nil {
		s.notify = os.Stderr
	}

	var backend ledger.Backend
	switch cfg.Storage.Backend {
	case "memory":
		s.memory = store.NewMemory(nil)
		backend = s.memory
		log.Debug("using in-memory ledger")
	default:
		db, err := store.Open(cfg.DBPath())
		if err != nil {
			return nil, fmt.Errorf("opening ledger: %w", err)
		}
		backend = db
		s.closeBackend = db.Close
		log.Debug("opened ledger", "path", db.Path())
	}

	opts := []ledger.Option{
		ledger.WithLogger(logging.Component(log, "ledger")),
		ledger.WithTimeout(cfg.Timeout()),
	}
	if so.onError != nil {
		opts = append(opts, ledger.WithErrorHook(so.onError))
	}
	s.ledger = ledger.Open(ctx, backend, opts...)
	return s, nil
}

// Close flushes pending writes and closes the backend.
func (s *session) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.Timeout()+time.Second)
	defer cancel()

	err := s.ledger.Close(ctx)
	s.report()
	if s.closeBackend != nil {
		if cerr := s.closeBackend(); err == nil {
			err = cerr
		}
	}
	if s.closeLog != nil {
		_ = s.closeLog()
	}
	return err
}

// report logs the run's persistence counters and warns about lost changes.
func (s *session) report() {
	st := s.ledger.Stats()
	s.log.Debug("ledger closed",
		"writes", st.Writes,
		"write_failed", st.WriteFailed,
		"load_failed", st.LoadFailed,
		"pending", st.Pending,
	)
	if st.WriteFailed > 0 {
		fmt.Fprintf(s.notify, "  Warning: %d write(s) failed; recent changes may not be saved.\n", st.WriteFailed)
	}
	if s.memory != nil && s.memory.Writes() > 0 && !flagQuiet {
		fmt.Fprintln(s.notify, "  Note: in-memory ledger; changes are discarded on exit.")
	}
}

// withSession runs fn against an open ledger and always closes it.
func withSession(cmd *cobra.Command, fn func(s *session) error) (err error) {
	s, err := openSession(cmd.Context(), sessionOptions{
		logOutput: cmd.ErrOrStderr(),
		notices:   cmd.ErrOrStderr(),
	})
	if err != nil {
		return err
	}
	defer func() {
		if cerr := s.Close(); err == nil {
			err = cerr
		}
	}()
	return fn(s)
}

// gateFor returns the confirmation gate for a destructive command.
func gateFor(cmd *cobra.Command, force bool) ledger.Gate {
	if force {
		return confirm.Always
	}
	in, ok := cmd.InOrStdin().(*os.File)
	if !ok {
		return confirm.Func(func(ctx context.Context, p ledger.Prompt) (bool, error) {
			return confirm.Line(ctx, cmd.InOrStdin(), cmd.ErrOrStderr(), p)
		})
	}
	out, ok := cmd.ErrOrStderr().(*os.File)
	if !ok {
		out = os.Stderr
	}
	return &confirm.Terminal{In: in, Out: out}
}

// declined prints the cancellation notice for a refused confirmation.
func declined(cmd *cobra.Command, err error) error {
	if errors.Is(err, ledger.ErrDeclined) {
		fmt.Fprintln(cmd.OutOrStdout(), "  Cancelled.")
		return nil
	}
	return err
}

// resolveID expands an id prefix typed on the command line.
func resolveID(s *session, prefix string) (string, error) {
	id, err := s.ledger.Resolve(prefix)
	if errors.Is(err, ledger.ErrUnknownEntry) {
		return "", fmt.Errorf("no expense with id %q (see `cbudget list`)", prefix)
	}
	return id, err
}

func infof(cmd *cobra.Command, format string, args ...any) {
	if flagQuiet {
		return
	}
	fmt.Fprintf(cmd.OutOrStdout(), format, args...)
}
