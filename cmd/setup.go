package cmd

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/theirongolddev/famfin/internal/config"
	"github.com/theirongolddev/famfin/internal/logging"
	"github.com/theirongolddev/famfin/internal/tui/theme"

	"github.com/charmbracelet/huh"
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

func runSetup(_ *cobra.Command, _ []string) error {
	// Start from the file and environment, not this run's flag overrides.
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	interval := strconv.Itoa(cfg.TUI.RefreshIntervalSec)
	themeOpts := make([]huh.Option[string], 0, len(theme.Names()))
	for _, name := range theme.Names() {
		themeOpts = append(themeOpts, huh.NewOption(name, name))
	}

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewNote().
				Title("Welcome to famfin").
				Description("Point famfin at your family-finance backend.\nEverything here can be changed later in "+config.ConfigPath()+"."),
			huh.NewInput().
				Title("Backend URL").
				Value(&cfg.Backend.URL).
				Validate(func(s string) error {
					c := cfg
					c.Backend.URL = strings.TrimSpace(s)
					return c.Validate()
				}),
		),
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Color theme").
				Options(themeOpts...).
				Value(&cfg.Appearance.Theme),
			huh.NewConfirm().
				Title("Auto-refresh the dashboard?").
				Value(&cfg.TUI.AutoRefresh),
			huh.NewInput().
				Title("Refresh interval (seconds)").
				Value(&interval).
				Validate(func(s string) error {
					n, err := strconv.Atoi(strings.TrimSpace(s))
					if err != nil || n < 10 {
						return errors.New("enter a whole number of seconds, 10 or more")
					}
					return nil
				}),
			huh.NewSelect[string]().
				Title("Log level").
				Options(huh.NewOptions("debug", "info", "warn", "error")...).
				Value(&cfg.Logging.Level),
		),
	)
	if err := form.Run(); err != nil {
		return err
	}

	cfg.Backend.URL = strings.TrimSpace(cfg.Backend.URL)
	cfg.TUI.RefreshIntervalSec, _ = strconv.Atoi(strings.TrimSpace(interval))
	if !logging.ValidLevel(cfg.Logging.Level) {
		cfg.Logging.Level = config.DefaultConfig().Logging.Level
	}

	if err := config.Save(cfg); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}

	fmt.Println()
	fmt.Printf("  Saved to %s\n", config.ConfigPath())
	fmt.Println("  Run `famfin login` to sign in, or `famfin setup` anytime to reconfigure.")
	fmt.Println()
	return nil
}
