package cmd

import (
	"fmt"
	"strings"

	"github.com/theirongolddev/cbudget/internal/config"

	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show current configuration",
	Args:  cobra.NoArgs,
	RunE:  runConfig,
}

func init() {
	rootCmd.AddCommand(configCmd)
}

func configPath() string {
	if flagConfig != "" {
		return flagConfig
	}
	return config.Path()
}

func runConfig(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()

	path := configPath()
	fmt.Fprintf(out, "  Config file: %s\n", path)
	if config.Exists(path) {
		fmt.Fprintln(out, "  Status: loaded")
	} else {
		fmt.Fprintln(out, "  Status: using defaults (no config file)")
	}
	fmt.Fprintln(out)

	fmt.Fprintln(out, "  [Storage]")
	fmt.Fprintf(out, "    Backend:  %s\n", cfg.Storage.Backend)
	if cfg.Storage.Backend != "memory" {
		fmt.Fprintf(out, "    Database: %s\n", cfg.DBPath())
	}
	fmt.Fprintf(out, "    Timeout:  %s\n", cfg.Timeout())
	fmt.Fprintln(out)

	fmt.Fprintln(out, "  [Ledger]")
	fmt.Fprintf(out, "    Categories: %s\n", strings.Join(cfg.Categories(), ", "))
	fmt.Fprintln(out)

	fmt.Fprintln(out, "  [Appearance]")
	fmt.Fprintf(out, "    Theme: %s\n", cfg.Appearance.Theme)
	fmt.Fprintln(out)

	fmt.Fprintln(out, "  [Log]")
	fmt.Fprintf(out, "    Level:  %s\n", cfg.Log.Level)
	fmt.Fprintf(out, "    Format: %s\n", cfg.Log.Format)
	fmt.Fprintln(out)

	fmt.Fprintln(out, "  Run `cbudget setup` to reconfigure.")
	return nil
}
