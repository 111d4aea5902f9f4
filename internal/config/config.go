package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Config holds all famfin configuration.
type Config struct {
	Backend     BackendConfig     `toml:"backend"`
	Credentials CredentialsConfig `toml:"credentials"`
	Logging     LoggingConfig     `toml:"logging"`
	Appearance  AppearanceConfig  `toml:"appearance"`
	TUI         TUIConfig         `toml:"tui"`
	Daemon      DaemonConfig      `toml:"daemon"`
}

// BackendConfig locates the REST backend.
type BackendConfig struct {
	URL        string `toml:"url"`
	TimeoutSec int    `toml:"timeout_sec"`
}

// CredentialsConfig selects where tokens are kept.
type CredentialsConfig struct {
	Backend string `toml:"backend"` // "sqlite" or "memory"
	Path    string `toml:"path,omitempty"`
}

// LoggingConfig holds log settings.
type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"` // "text" or "json"
}

// AppearanceConfig holds theme settings.
type AppearanceConfig struct {
	Theme string `toml:"theme"`
}

// TUIConfig holds dashboard settings.
type TUIConfig struct {
	AutoRefresh        bool `toml:"auto_refresh"`
	RefreshIntervalSec int  `toml:"refresh_interval_sec"`
}

// DaemonConfig holds background poller settings. An empty CheckinSchedule
// disables the scheduled streak check-in.
type DaemonConfig struct {
	Addr            string `toml:"addr"`
	IntervalSec     int    `toml:"interval_sec"`
	EventsBuffer    int    `toml:"events_buffer"`
	CheckinSchedule string `toml:"checkin_schedule,omitempty"`
}

// Credential backends.
const (
	CredentialsSQLite = "sqlite"
	CredentialsMemory = "memory"
)

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		Backend: BackendConfig{
			URL:        "http://localhost:8000",
			TimeoutSec: 15,
		},
		Credentials: CredentialsConfig{
			Backend: CredentialsSQLite,
		},
		Logging: LoggingConfig{
			Level:  "warn",
			Format: "text",
		},
		Appearance: AppearanceConfig{
			Theme: "flexoki-dark",
		},
		TUI: TUIConfig{
			AutoRefresh:        true,
			RefreshIntervalSec: 60,
		},
		Daemon: DaemonConfig{
			Addr:         "127.0.0.1:8787",
			IntervalSec:  300,
			EventsBuffer: 200,
		},
	}
}

// ConfigDir returns the XDG-compliant config directory.
func ConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "famfin")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "famfin")
}

// ConfigPath returns the full path to the config file.
func ConfigPath() string {
	return filepath.Join(ConfigDir(), "config.toml")
}

// DataDir returns the XDG-compliant data directory.
func DataDir() string {
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, "famfin")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".local", "share", "famfin")
}

// CredentialsPath returns the credential database path.
func CredentialsPath(cfg Config) string {
	if cfg.Credentials.Path != "" {
		return cfg.Credentials.Path
	}
	return filepath.Join(DataDir(), "credentials.db")
}

// LoadDotEnv loads a .env file from the working directory if one exists.
// Variables already set in the environment win.
func LoadDotEnv() error {
	err := godotenv.Load()
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("loading .env: %w", err)
	}
	return nil
}

// Load reads the config file, returning defaults if it doesn't exist.
// Environment overrides are applied on top.
func Load() (Config, error) {
	return LoadFrom(ConfigPath())
}

// LoadFrom reads the config at path.
func LoadFrom(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path) //nolint:gosec // path is the user's config file
	if err != nil {
		if os.IsNotExist(err) {
			return ApplyEnv(cfg), nil
		}
		return cfg, fmt.Errorf("reading config: %w", err)
	}

	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config: %w", err)
	}

	return ApplyEnv(cfg), nil
}

// ApplyEnv overlays FAMFIN_* environment variables on cfg.
func ApplyEnv(cfg Config) Config {
	if v := strings.TrimSpace(os.Getenv("FAMFIN_BACKEND_URL")); v != "" {
		cfg.Backend.URL = v
	}
	if v := strings.TrimSpace(os.Getenv("FAMFIN_TIMEOUT")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Backend.TimeoutSec = n
		}
	}
	if v := strings.TrimSpace(os.Getenv("FAMFIN_LOG_LEVEL")); v != "" {
		cfg.Logging.Level = v
	} else if v := strings.TrimSpace(os.Getenv("LOG_LEVEL")); v != "" {
		cfg.Logging.Level = v
	}
	if v := strings.TrimSpace(os.Getenv("FAMFIN_LOG_FORMAT")); v != "" {
		cfg.Logging.Format = v
	}
	return cfg
}

// Save writes the config to disk.
func Save(cfg Config) error {
	return SaveTo(ConfigPath(), cfg)
}

// SaveTo writes the config to path with owner-only permissions.
func SaveTo(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600) //nolint:gosec // path is the user's config file
	if err != nil {
		return fmt.Errorf("creating config file: %w", err)
	}
	defer func() { _ = f.Close() }()

	return toml.NewEncoder(f).Encode(cfg)
}

// Exists returns true if a config file exists on disk.
func Exists() bool {
	_, err := os.Stat(ConfigPath())
	return err == nil
}

// Timeout returns the backend request timeout.
func (c Config) Timeout() time.Duration {
	if c.Backend.TimeoutSec <= 0 {
		return 15 * time.Second
	}
	return time.Duration(c.Backend.TimeoutSec) * time.Second
}

// RefreshInterval returns the TUI auto-refresh interval.
func (c Config) RefreshInterval() time.Duration {
	if c.TUI.RefreshIntervalSec <= 0 {
		return time.Minute
	}
	return time.Duration(c.TUI.RefreshIntervalSec) * time.Second
}

// Validate reports configuration that cannot work.
func (c Config) Validate() error {
	u := strings.TrimSpace(c.Backend.URL)
	if u == "" {
		return errors.New("backend.url is empty")
	}
	if !strings.HasPrefix(u, "http://") && !strings.HasPrefix(u, "https://") {
		return fmt.Errorf("backend.url %q must start with http:// or https://", u)
	}
	switch c.Credentials.Backend {
	case CredentialsSQLite, CredentialsMemory:
	default:
		return fmt.Errorf("credentials.backend %q must be %q or %q", c.Credentials.Backend, CredentialsSQLite, CredentialsMemory)
	}
	return nil
}
