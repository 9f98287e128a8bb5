// Package config loads and saves cbudget's TOML configuration.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Config holds all cbudget configuration.
type Config struct {
	Storage    StorageConfig    `toml:"storage"`
	Ledger     LedgerConfig     `toml:"ledger"`
	Appearance AppearanceConfig `toml:"appearance"`
	Log        LogConfig        `toml:"log"`
}

// StorageConfig selects and tunes the persistence backend.
type StorageConfig struct {
	Backend   string `toml:"backend"` // "sqlite" or "memory"
	Path      string `toml:"path,omitempty"`
	TimeoutMS int    `toml:"timeout_ms"`
}

// LedgerConfig holds ledger preferences.
type LedgerConfig struct {
	Categories []string `toml:"categories"`
}

// AppearanceConfig holds theme settings.
type AppearanceConfig struct {
	Theme string `toml:"theme"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"` // "text" or "json"
}

// DefaultCategories are offered by the expense form when none are configured.
var DefaultCategories = []string{
	"savings", "food", "home", "misc", "leisure", "health", "subscriptions",
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		Storage: StorageConfig{
			Backend:   "sqlite",
			TimeoutMS: 5000,
		},
		Ledger: LedgerConfig{
			Categories: append([]string(nil), DefaultCategories...),
		},
		Appearance: AppearanceConfig{
			Theme: "flexoki-dark",
		},
		Log: LogConfig{
			Level:  "warn",
			Format: "text",
		},
	}
}

// Dir returns the XDG-compliant config directory.
func Dir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "cbudget")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "cbudget")
}

// Path returns the full path to the config file.
func Path() string {
	return filepath.Join(Dir(), "config.toml")
}

// DataDir returns the XDG-compliant data directory.
func DataDir() string {
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, "cbudget")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".local", "share", "cbudget")
}

// LoadFile reads the config at path, returning defaults if it doesn't exist.
// A .env file in the working directory and CBUDGET_* variables override
// file values. The result is not validated: callers apply their own
// overrides first and then call Validate.
func LoadFile(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path) //nolint:gosec // user-chosen config path
	switch {
	case err == nil:
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parsing config: %w", err)
		}
	case os.IsNotExist(err):
	default:
		return cfg, fmt.Errorf("reading config: %w", err)
	}

	// A missing .env is the normal case.
	_ = godotenv.Load()
	applyEnv(&cfg)
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("CBUDGET_DB"); v != "" {
		cfg.Storage.Path = v
	}
	if v := os.Getenv("CBUDGET_BACKEND"); v != "" {
		cfg.Storage.Backend = v
	}
	if v := os.Getenv("CBUDGET_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("CBUDGET_THEME"); v != "" {
		cfg.Appearance.Theme = v
	}
}

// Validate reports every invalid setting at once.
func (c Config) Validate() error {
	var errs []string

	switch c.Storage.Backend {
	case "sqlite", "memory":
	default:
		errs = append(errs, fmt.Sprintf("storage.backend %q must be \"sqlite\" or \"memory\"", c.Storage.Backend))
	}
	if c.Storage.TimeoutMS <= 0 {
		errs = append(errs, "storage.timeout_ms must be positive")
	}
	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Sprintf("log.level %q is not one of debug, info, warn, error", c.Log.Level))
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		errs = append(errs, fmt.Sprintf("log.format %q must be \"text\" or \"json\"", c.Log.Format))
	}
	for _, cat := range c.Ledger.Categories {
		if strings.TrimSpace(cat) == "" {
			errs = append(errs, "ledger.categories must not contain empty names")
			break
		}
	}

	if len(errs) > 0 {
		return errors.New("invalid config:\n- " + strings.Join(errs, "\n- "))
	}
	return nil
}

// DBPath returns the configured database path or the default under DataDir.
func (c Config) DBPath() string {
	if c.Storage.Path != "" {
		return expandHome(c.Storage.Path)
	}
	return filepath.Join(DataDir(), "ledger.db")
}

// Timeout returns the persistence timeout.
func (c Config) Timeout() time.Duration {
	return time.Duration(c.Storage.TimeoutMS) * time.Millisecond
}

// Categories returns the configured categories, or the defaults.
func (c Config) Categories() []string {
	if len(c.Ledger.Categories) == 0 {
		return append([]string(nil), DefaultCategories...)
	}
	return append([]string(nil), c.Ledger.Categories...)
}

func expandHome(p string) string {
	if p == "~" || strings.HasPrefix(p, "~/") {
		home, err := os.UserHomeDir()
		if err == nil {
			return filepath.Join(home, strings.TrimPrefix(p, "~"))
		}
	}
	return p
}

// Save writes the config to path.
func Save(cfg Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600) //nolint:gosec // user-chosen config path
	if err != nil {
		return fmt.Errorf("creating config file: %w", err)
	}
	defer f.Close()

	enc := toml.NewEncoder(f)
	return enc.Encode(cfg)
}

// Exists returns true if a config file exists at path.
func Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
