package cmd

import (
	"bufio"
	"fmt"
	"strconv"
	"strings"

	"github.com/theirongolddev/cbudget/internal/config"
	"github.com/theirongolddev/cbudget/internal/tui/theme"

	"github.com/spf13/cobra"
)

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "First-time setup wizard",
	Args:  cobra.NoArgs,
	RunE:  runSetup,
}

func init() {
	rootCmd.AddCommand(setupCmd)
}

func runSetup(cmd *cobra.Command, _ []string) error {
	reader := bufio.NewReader(cmd.InOrStdin())
	out := cmd.OutOrStdout()
	path := configPath()

	// Start from the existing file so unasked settings survive.
	cfg, err := config.LoadFile(path)
	if err != nil {
		cfg = config.DefaultConfig()
	}

	ask := func() string {
		fmt.Fprint(out, "     > ")
		line, _ := reader.ReadString('\n')
		return strings.TrimSpace(line)
	}

	fmt.Fprintln(out)
	fmt.Fprintln(out, "  Welcome to cbudget!")
	fmt.Fprintln(out)

	// 1. Database location
	fmt.Fprintln(out, "  1. Ledger database")
	fmt.Fprintf(out, "     Current: %s (enter to keep)\n", cfg.DBPath())
	if p := ask(); p != "" {
		cfg.Storage.Path = p
	}
	fmt.Fprintln(out)

	// 2. Categories
	fmt.Fprintln(out, "  2. Expense categories, comma separated")
	fmt.Fprintf(out, "     Current: %s (enter to keep)\n", strings.Join(cfg.Categories(), ", "))
	if line := ask(); line != "" {
		var cats []string
		for _, c := range strings.Split(line, ",") {
			if c = strings.TrimSpace(c); c != "" && !containsString(cats, c) {
				cats = append(cats, c)
			}
		}
		if len(cats) > 0 {
			cfg.Ledger.Categories = cats
		}
	}
	fmt.Fprintln(out)

	// 3. Theme
	fmt.Fprintln(out, "  3. Color theme")
	names := theme.Names()
	for i, name := range names {
		marker := ""
		if name == cfg.Appearance.Theme {
			marker = " [current]"
		}
		fmt.Fprintf(out, "     (%d) %s%s\n", i+1, name, marker)
	}
	if n, err := strconv.Atoi(ask()); err == nil && n >= 1 && n <= len(names) {
		cfg.Appearance.Theme = names[n-1]
	}

	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := config.Save(cfg, path); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}

	fmt.Fprintln(out)
	fmt.Fprintf(out, "  Saved to %s\n", path)
	fmt.Fprintln(out, "  Run `cbudget setup` anytime to reconfigure.")
	fmt.Fprintln(out)
	return nil
}
