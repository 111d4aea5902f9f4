package cmd

import (
	"fmt"

	"github.com/theirongolddev/famfin/internal/config"

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

func runConfig(_ *cobra.Command, _ []string) error {
	cfg := rt.cfg

	fmt.Printf("  Config file: %s\n", config.ConfigPath())
	if config.Exists() {
		fmt.Println("  Status: loaded")
	} else {
		fmt.Println("  Status: using defaults (no config file)")
	}
	fmt.Println()

	fmt.Println("  [Backend]")
	fmt.Printf("    URL:     %s\n", cfg.Backend.URL)
	fmt.Printf("    Timeout: %s\n", cfg.Timeout())
	fmt.Println()

	fmt.Println("  [Credentials]")
	fmt.Printf("    Backend: %s\n", cfg.Credentials.Backend)
	if cfg.Credentials.Backend == config.CredentialsSQLite {
		fmt.Printf("    Path:    %s\n", config.CredentialsPath(cfg))
	}
	fmt.Println()

	fmt.Println("  [Logging]")
	fmt.Printf("    Level:  %s\n", cfg.Logging.Level)
	fmt.Printf("    Format: %s\n", cfg.Logging.Format)
	fmt.Println()

	fmt.Println("  [Appearance]")
	fmt.Printf("    Theme: %s\n", cfg.Appearance.Theme)
	fmt.Println()

	fmt.Println("  [TUI]")
	fmt.Printf("    Auto-refresh: %v (every %s)\n", cfg.TUI.AutoRefresh, cfg.RefreshInterval())
	fmt.Println()

	fmt.Println("  [Daemon]")
	fmt.Printf("    Address:  %s\n", cfg.Daemon.Addr)
	fmt.Printf("    Interval: %ds\n", cfg.Daemon.IntervalSec)
	if cfg.Daemon.CheckinSchedule != "" {
		fmt.Printf("    Check-in: %s\n", cfg.Daemon.CheckinSchedule)
	} else {
		fmt.Println("    Check-in: disabled")
	}
	fmt.Println()

	fmt.Println("  Run `famfin setup` to reconfigure.")
	return nil
}
