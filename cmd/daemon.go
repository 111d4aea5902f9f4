package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/theirongolddev/famfin/internal/cli"
	"github.com/theirongolddev/famfin/internal/config"
	"github.com/theirongolddev/famfin/internal/daemon"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	flagDaemonAddr         string
	flagDaemonInterval     time.Duration
	flagDaemonDetach       bool
	flagDaemonPIDFile      string
	flagDaemonLogFile      string
	flagDaemonEventsBuffer int
	flagDaemonChild        bool
	flagDaemonCheckin      string
)

var daemonCmd = &cobra.Command{
	Use:   "daemon",
	Short: "Poll the backend in the background and serve HTTP/SSE endpoints",
	Long: "Poll the backend on an interval and serve the latest finance snapshot at /v1/status and " +
		"changes as server-sent events at /v1/stream. With a check-in schedule (cron syntax) the " +
		"daemon also checks in to the streak automatically.",
	Args: cobra.NoArgs,
	RunE: runDaemon,
}

var daemonStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show daemon process and API status",
	Args:  cobra.NoArgs,
	RunE:  runDaemonStatus,
}

var daemonStopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop the running daemon",
	Args:  cobra.NoArgs,
	RunE:  runDaemonStop,
}

func init() {
	defaultPID := filepath.Join(config.DataDir(), "famfind.pid")
	defaultLog := filepath.Join(config.DataDir(), "famfind.log")

	// Zero values fall back to the [daemon] config section.
	pf := daemonCmd.PersistentFlags()
	pf.StringVar(&flagDaemonAddr, "addr", "", "HTTP listen address (default from config)")
	pf.DurationVar(&flagDaemonInterval, "interval", 0, "Polling interval (default from config)")
	pf.StringVar(&flagDaemonPIDFile, "pid-file", defaultPID, "PID file path")
	pf.StringVar(&flagDaemonLogFile, "log-file", defaultLog, "Log file path for detached mode")
	pf.IntVar(&flagDaemonEventsBuffer, "events-buffer", 0, "Max in-memory events retained (default from config)")

	daemonCmd.Flags().StringVar(&flagDaemonCheckin, "checkin", "", `Streak check-in cron schedule, e.g. "0 9 * * *" (default from config)`)
	daemonCmd.Flags().BoolVar(&flagDaemonDetach, "detach", false, "Run daemon as a background process")
	daemonCmd.Flags().BoolVar(&flagDaemonChild, "child", false, "Internal: mark detached child process")
	_ = daemonCmd.Flags().MarkHidden("child")

	daemonCmd.AddCommand(daemonStatusCmd, daemonStopCmd)
	rootCmd.AddCommand(daemonCmd)
}

func runDaemon(cmd *cobra.Command, _ []string) error {
	if flagDaemonDetach && flagDaemonChild {
		return errors.New("invalid daemon launch mode")
	}

	// Fail before detaching so the user sees it.
	if _, err := requireLogin(cmd.Context()); err != nil {
		return err
	}

	if flagDaemonDetach {
		return startDaemonDetached()
	}
	return runDaemonForeground(cmd.Context())
}

// daemonConfig merges daemon flags over the [daemon] config section.
func daemonConfig() daemon.Config {
	d := rt.cfg.Daemon
	cfg := daemon.Config{
		BackendURL:      rt.cfg.Backend.URL,
		Interval:        time.Duration(d.IntervalSec) * time.Second,
		Addr:            d.Addr,
		EventsBuffer:    d.EventsBuffer,
		CheckinSchedule: d.CheckinSchedule,
		Logger:          rt.log,
	}
	if flagDaemonAddr != "" {
		cfg.Addr = flagDaemonAddr
	}
	if flagDaemonInterval > 0 {
		cfg.Interval = flagDaemonInterval
	}
	if flagDaemonEventsBuffer > 0 {
		cfg.EventsBuffer = flagDaemonEventsBuffer
	}
	if flagDaemonCheckin != "" {
		cfg.CheckinSchedule = flagDaemonCheckin
	}
	return cfg
}

func startDaemonDetached() error {
	if err := pidFile(flagDaemonPIDFile).ensureFree(); err != nil {
		return err
	}

	exe, err := os.Executable()
	if err != nil {
		return fmt.Errorf("resolve executable: %w", err)
	}
	args := append(filterDetachArg(os.Args[1:]), "--child")

	if err := os.MkdirAll(filepath.Dir(flagDaemonLogFile), 0o750); err != nil {
		return fmt.Errorf("create daemon log directory: %w", err)
	}
	//nolint:gosec // daemon log path is configured by the local user
	logf, err := os.OpenFile(flagDaemonLogFile, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o600)
	if err != nil {
		return fmt.Errorf("open daemon log file: %w", err)
	}
	defer func() { _ = logf.Close() }()

	child := exec.Command(exe, args...) //nolint:gosec // exe/args come from current process invocation
	child.Stdout = logf
	child.Stderr = logf
	child.Env = os.Environ()
	if err := child.Start(); err != nil {
		return fmt.Errorf("start detached daemon: %w", err)
	}

	fmt.Printf("  Started daemon (pid %d)\n", child.Process.Pid)
	fmt.Printf("  PID file: %s\n", flagDaemonPIDFile)
	fmt.Printf("  API: http://%s/v1/status\n", daemonConfig().Addr)
	fmt.Printf("  Log: %s\n", flagDaemonLogFile)
	return nil
}

func runDaemonForeground(parent context.Context) error {
	cfg := daemonConfig()
	pf := pidFile(flagDaemonPIDFile)
	if err := pf.claim(daemonState{
		PID:       os.Getpid(),
		Addr:      cfg.Addr,
		Backend:   cfg.BackendURL,
		StartedAt: time.Now(),
	}); err != nil {
		return err
	}
	defer pf.release()

	// The daemon is long-running; log polls unless a level was chosen.
	if flagLogLevel == "" && rt.cfg.Logging.Level == config.DefaultConfig().Logging.Level {
		rt.log.SetLevel(logrus.InfoLevel)
	}

	client, err := apiClient()
	if err != nil {
		return err
	}
	svc := daemon.New(cfg, client)

	fmt.Printf("  famfin daemon listening on http://%s\n", cfg.Addr)
	fmt.Printf("  Polling %s every %s\n", cfg.BackendURL, cfg.Interval)
	if cfg.CheckinSchedule != "" {
		fmt.Printf("  Streak check-in: %s\n", cfg.CheckinSchedule)
	}
	fmt.Printf("  Stop with: famfin daemon stop --pid-file %s\n", flagDaemonPIDFile)

	ctx, cancel := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := svc.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func runDaemonStatus(cmd *cobra.Command, _ []string) error {
	pf := pidFile(flagDaemonPIDFile)
	pid, err := pf.pid()
	if err != nil {
		fmt.Println("  Daemon: not running (pid file not found)")
		return nil
	}
	if !processAlive(pid) {
		fmt.Printf("  Daemon: stale pid file (pid %d not alive)\n", pid)
		return nil
	}

	addr := daemonConfig().Addr
	if st, err := pf.state(); err == nil && st.Addr != "" {
		addr = st.Addr
	}
	fmt.Printf("  Daemon PID: %d\n", pid)
	fmt.Printf("  Address: http://%s\n", addr)

	st, err := fetchDaemonStatus(cmd.Context(), addr)
	if err != nil {
		fmt.Printf("  API status: %v\n", err)
		return nil
	}

	if st.LastPollAt.IsZero() {
		fmt.Println("  Last poll: pending")
	} else {
		fmt.Printf("  Last poll: %s\n", st.LastPollAt.Local().Format(time.RFC3339))
	}
	fmt.Printf("  Poll count: %d\n", st.PollCount)
	fmt.Printf("  Backend: %s\n", st.Backend)
	if !st.LastCheckinAt.IsZero() {
		fmt.Printf("  Last check-in: %s\n", st.LastCheckinAt.Local().Format(time.RFC3339))
	}
	fmt.Printf("  Subscribers: %d  Events: %d\n", st.SubscriberCount, st.EventCount)

	if sum := st.Summary; !sum.At.IsZero() {
		fmt.Println()
		fmt.Println(cli.RenderTable(cli.Table{
			Title: "Latest Snapshot",
			Rows: [][]string{
				{"User", sum.Username},
				{"Budgets", fmt.Sprintf("%d (%d over)", sum.Budgets, sum.OverBudget)},
				{"Spent", fmt.Sprintf("%s of %s", cli.FormatCurrency(sum.BudgetSpent), cli.FormatCurrency(sum.BudgetTotal))},
				{"Remaining", cli.FormatCurrency(sum.BudgetRemaining)},
				{"Goals", fmt.Sprintf("%d  (saving %s, spending %s)", sum.Goals, cli.FormatPercent(sum.SavingPct), cli.FormatPercent(sum.SpendingPct))},
				{"Streak", fmt.Sprintf("%s, %s", cli.FormatDays(sum.StreakCount), sum.Tier)},
			},
			LeftCols: 2,
		}))
	}
	for _, w := range st.Warnings {
		fmt.Println("  " + cli.Warn("partial data: "+w))
	}
	if st.LastError != "" {
		fmt.Printf("  Last error: %s\n", st.LastError)
	}
	return nil
}

func fetchDaemonStatus(ctx context.Context, addr string) (*daemon.Status, error) {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, "http://"+addr+"/v1/status", nil)
	if err != nil {
		return nil, err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("unreachable (%w)", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP %d", resp.StatusCode)
	}
	var st daemon.Status
	if err := json.NewDecoder(resp.Body).Decode(&st); err != nil {
		return nil, fmt.Errorf("malformed response (%w)", err)
	}
	return &st, nil
}

func runDaemonStop(_ *cobra.Command, _ []string) error {
	pf := pidFile(flagDaemonPIDFile)
	pid, err := pf.pid()
	if err != nil {
		return errors.New("daemon is not running")
	}

	proc, err := os.FindProcess(pid)
	if err != nil {
		return fmt.Errorf("find daemon process: %w", err)
	}
	if err := proc.Signal(syscall.SIGTERM); err != nil {
		return fmt.Errorf("signal daemon process: %w", err)
	}

	deadline := time.Now().Add(8 * time.Second)
	for time.Now().Before(deadline) {
		if !processAlive(pid) {
			pf.release()
			fmt.Printf("  Stopped daemon (pid %d)\n", pid)
			return nil
		}
		time.Sleep(150 * time.Millisecond)
	}
	return fmt.Errorf("daemon (pid %d) did not exit in time", pid)
}

func filterDetachArg(args []string) []string {
	out := make([]string, 0, len(args))
	for _, a := range args {
		if a == "--detach" || strings.HasPrefix(a, "--detach=") {
			continue
		}
		out = append(out, a)
	}
	return out
}
