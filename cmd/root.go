// Package cmd implements the famfin CLI commands.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"time"

	"github.com/theirongolddev/famfin/internal/api"
	"github.com/theirongolddev/famfin/internal/auth"
	"github.com/theirongolddev/famfin/internal/config"
	"github.com/theirongolddev/famfin/internal/logging"
	"github.com/theirongolddev/famfin/internal/model"
	"github.com/theirongolddev/famfin/internal/store"
	"github.com/theirongolddev/famfin/internal/tui/theme"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	flagQuiet     bool
	flagBackend   string
	flagTimeout   time.Duration
	flagLogLevel  string
	flagEphemeral bool
)

// runtime is what commands share once the root pre-run hook has loaded
// config. The credential store and client are opened on first use.
type runtime struct {
	cfg    config.Config
	log    *logrus.Logger
	kv     store.KV
	closer func() error
	client *api.Client
}

var rt runtime

var rootCmd = &cobra.Command{
	Use:               "famfin",
	Short:             "Family finance from the terminal",
	Long:              "Track expenses, budgets, savings goals and your streak against the family-finance backend.",
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: initRuntime,
	RunE:              runSummary,
}

// Execute is the main entry point called from main.go.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	rt.close()
	if err != nil {
		fmt.Fprintf(os.Stderr, "  Error: %s\n", describeError(err))
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&flagQuiet, "quiet", "q", false, "Suppress progress output")
	rootCmd.PersistentFlags().StringVar(&flagBackend, "backend", "", "Backend URL (overrides config and FAMFIN_BACKEND_URL)")
	rootCmd.PersistentFlags().DurationVar(&flagTimeout, "timeout", 0, "Per-request timeout (e.g. 10s)")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().BoolVar(&flagEphemeral, "ephemeral", false, "Keep tokens in memory only for this run")
}

// initRuntime loads .env, the config file, environment and flag overrides,
// in that order, and builds the logger.
func initRuntime(cmd *cobra.Command, _ []string) error {
	if err := config.LoadDotEnv(); err != nil {
		return err
	}
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if flagBackend != "" {
		cfg.Backend.URL = flagBackend
	}
	if flagTimeout > 0 {
		cfg.Backend.TimeoutSec = int(flagTimeout.Round(time.Second) / time.Second)
	}
	if flagLogLevel != "" {
		cfg.Logging.Level = flagLogLevel
	}
	if flagEphemeral {
		cfg.Credentials.Backend = config.CredentialsMemory
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	rt.cfg = cfg
	rt.log = logging.New(cfg.Logging.Level, cfg.Logging.Format, os.Stderr)
	theme.SetActive(cfg.Appearance.Theme)
	rt.log.WithFields(logrus.Fields{
		"command": cmd.CommandPath(),
		"backend": cfg.Backend.URL,
	}).Debug("config loaded")
	return nil
}

// apiClient opens the credential store and returns the shared client.
func apiClient() (*api.Client, error) {
	if rt.client != nil {
		return rt.client, nil
	}
	switch rt.cfg.Credentials.Backend {
	case config.CredentialsMemory:
		rt.kv = store.NewMemory()
	default:
		db, err := store.Open(config.CredentialsPath(rt.cfg))
		if err != nil {
			return nil, fmt.Errorf("opening credential store: %w", err)
		}
		rt.kv = db
		rt.closer = db.Close
	}

	creds := auth.NewStore(rt.kv, rt.log)
	rt.client = api.New(api.Options{
		BaseURL: rt.cfg.Backend.URL,
		Timeout: rt.cfg.Timeout(),
	}, creds, rt.log)
	return rt.client, nil
}

// requireLogin returns the client, failing early when no tokens are stored.
func requireLogin(ctx context.Context) (*api.Client, error) {
	c, err := apiClient()
	if err != nil {
		return nil, err
	}
	if !c.IsLoggedIn(ctx) {
		return nil, auth.ErrNotLoggedIn
	}
	return c, nil
}

func (r *runtime) close() {
	if r.closer != nil {
		if err := r.closer(); err != nil && r.log != nil {
			r.log.WithError(err).Warn("closing credential store")
		}
		r.closer = nil
	}
}

// describeError turns client errors into something a user can act on.
func describeError(err error) string {
	var (
		ne *api.NetworkError
		ve *api.ValidationError
		se *api.ServerError
	)
	switch {
	case errors.Is(err, auth.ErrNotLoggedIn):
		return "not logged in; run `famfin login`"
	case api.IsAuth(err):
		return err.Error() + "; run `famfin login`"
	case errors.As(err, &ne):
		return fmt.Sprintf("cannot reach the backend at %s (%v)", rt.cfg.Backend.URL, ne.Err)
	case errors.As(err, &ve):
		if len(ve.Fields) > 1 {
			lines := make([]string, len(ve.Fields))
			for i, f := range ve.Fields {
				lines[i] = "    " + f.Field + ": " + f.Message
			}
			return ve.Op + " was rejected:\n" + strings.Join(lines, "\n")
		}
		return ve.Message
	case errors.As(err, &se):
		return se.Message
	}
	return err.Error()
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimPrefix(s, "#"), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", s)
	}
	return id, nil
}

func parseAmountArg(s string) (float64, error) {
	v, err := model.ParseAmount(s)
	if err != nil {
		return 0, err
	}
	if v < 0 {
		return 0, fmt.Errorf("amount must not be negative: %s", s)
	}
	return v, nil
}

func progressf(format string, args ...any) {
	if !flagQuiet {
		fmt.Fprintf(os.Stderr, format, args...)
	}
}

// optionalID parses an optional id flag; empty means unset.
func optionalID(s string) (*int64, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	id, err := parseID(s)
	if err != nil {
		return nil, err
	}
	return &id, nil
}

func printMessage(msg *model.Message, fallback string) {
	if msg != nil && msg.Message != "" {
		fmt.Println("  " + msg.Message)
		return
	}
	fmt.Println("  " + fallback)
}

// today returns the local calendar date at UTC midnight, the form expense
// dates decode to.
func today() time.Time {
	y, m, d := time.Now().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
