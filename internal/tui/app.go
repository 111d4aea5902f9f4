// Package tui provides the interactive Bubble Tea dashboard for famfin.
package tui

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/theirongolddev/famfin/internal/api"
	"github.com/theirongolddev/famfin/internal/config"
	"github.com/theirongolddev/famfin/internal/model"
	"github.com/theirongolddev/famfin/internal/pipeline"
	"github.com/theirongolddev/famfin/internal/tui/components"
	"github.com/theirongolddev/famfin/internal/tui/theme"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
)

// Backend is the slice of the API client the dashboard uses.
type Backend interface {
	pipeline.OverviewSource
	IsLoggedIn(ctx context.Context) bool
	Login(ctx context.Context, creds model.Credentials) (*model.TokenPair, error)
	FamilyBudgets(ctx context.Context) ([]model.Budget, error)
	Contributions(ctx context.Context) ([]model.Contribution, error)
	PinGoal(ctx context.Context, id int64) (*model.Message, error)
	UnpinGoal(ctx context.Context, id int64) (*model.Message, error)
	EnsureStreak(ctx context.Context) (*model.Streak, error)
	SetMonthlyIncome(ctx context.Context, income float64) (*model.Profile, error)
}

// DataLoadedMsg is sent when the first overview load finishes.
type DataLoadedMsg struct {
	Overview *pipeline.Overview
	Err      error
	LoadTime time.Duration
}

// RefreshDataMsg is sent when a background refresh completes.
type RefreshDataMsg struct {
	Overview *pipeline.Overview
	Err      error
	LoadTime time.Duration
}

// LoginResultMsg reports the outcome of the login form.
type LoginResultMsg struct {
	Err error
}

// tabDataMsg carries data only one tab shows. It is dropped when the user
// has already moved to another tab.
type tabDataMsg struct {
	Tab           int
	FamilyBudgets []model.Budget
	Contributions []model.Contribution
	Err           error
}

// actionDoneMsg reports a mutation (pin, check-in) and triggers a refresh.
type actionDoneMsg struct {
	Status string
	Err    error
}

// Tab indexes, matching components.Tabs.
const (
	tabHome = iota
	tabBudgets
	tabGoals
	tabFamily
	tabStreak
	tabSettings
)

const (
	minTerminalWidth = 80
	compactWidth     = 120
	maxContentWidth  = 180
	minContentHeight = 5

	requestTimeout = 30 * time.Second
	chartDays      = 14
)

// App is the root Bubble Tea model.
type App struct {
	backend   Backend
	backendID string
	cfg       config.Config
	save      func(config.Config) error

	// Data
	ov       *pipeline.Overview
	loaded   bool
	loadErr  error
	loadTime time.Duration

	// Tab-scoped data
	familyBudgets []model.Budget
	contributions []model.Contribution
	tabErr        error

	// Auto-refresh state
	autoRefresh     bool
	refreshInterval time.Duration
	lastRefresh     time.Time
	refreshing      bool

	// UI state
	width     int
	height    int
	activeTab int
	showHelp  bool
	flash     string

	// Per-tab state
	goals    goalsState
	settings settingsState

	// Login (huh form)
	loginForm *huh.Form
	loginVals *loginValues
	needLogin bool
	loggingIn bool
	loginErr  error

	spinner spinner.Model
}

// NewApp creates the dashboard model. backendURL is only displayed.
func NewApp(backend Backend, backendURL string, cfg config.Config) App {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(theme.Active.Accent).Background(theme.Active.Surface)

	refreshInterval := cfg.RefreshInterval()
	if refreshInterval < 10*time.Second {
		refreshInterval = 10 * time.Second
	}

	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	a := App{
		backend:         backend,
		backendID:       strings.TrimPrefix(strings.TrimPrefix(backendURL, "https://"), "http://"),
		cfg:             cfg,
		save:            config.Save,
		autoRefresh:     cfg.TUI.AutoRefresh,
		refreshInterval: refreshInterval,
		spinner:         sp,
		settings:        newSettingsState(),
		needLogin:       !backend.IsLoggedIn(ctx),
		loginVals:       &loginValues{},
	}
	if a.needLogin {
		a.loginForm = newLoginForm(a.loginVals)
	}
	return a
}

// Init implements tea.Model.
func (a App) Init() tea.Cmd {
	cmds := []tea.Cmd{
		tea.EnableMouseCellMotion,
		a.spinner.Tick,
		tickCmd(),
	}
	if a.needLogin {
		cmds = append(cmds, a.loginForm.Init())
	} else {
		cmds = append(cmds, loadDataCmd(a.backend))
	}
	return tea.Batch(cmds...)
}

// Update implements tea.Model.
func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		if a.loginForm != nil {
			a.loginForm = a.loginForm.WithWidth(min(msg.Width, 60))
		}
		return a, nil

	case tea.MouseMsg:
		if !a.loaded || a.showHelp || a.needLogin {
			return a, nil
		}
		switch msg.Button {
		case tea.MouseButtonWheelUp:
			if a.activeTab == tabGoals && a.ov != nil {
				a.goals.move(-1, len(a.ov.Goals))
			}
			return a, nil
		case tea.MouseButtonWheelDown:
			if a.activeTab == tabGoals && a.ov != nil {
				a.goals.move(1, len(a.ov.Goals))
			}
			return a, nil
		case tea.MouseButtonLeft:
			// Tab bar is the first line.
			if msg.Y == 0 {
				if tab := a.tabAtX(msg.X); tab >= 0 {
					return a.switchTab(tab)
				}
			}
		}
		return a, nil

	case tea.KeyMsg:
		key := msg.String()

		if key == "ctrl+c" {
			return a, tea.Quit
		}

		// Login form intercepts all keys
		if a.needLogin && a.loginForm != nil {
			return a.updateLoginForm(msg)
		}

		if !a.loaded {
			return a, nil
		}

		if a.activeTab == tabSettings && a.settings.editing {
			return a.updateSettingsInput(msg)
		}

		if key == "?" {
			a.showHelp = !a.showHelp
			return a, nil
		}
		if a.showHelp {
			a.showHelp = false
			return a, nil
		}

		if next, cmd, handled := a.updateTabKeys(key); handled {
			return next, cmd
		}

		switch key {
		case "q":
			return a, tea.Quit
		case "r":
			if !a.refreshing {
				a.refreshing = true
				return a, tea.Batch(refreshDataCmd(a.backend), a.tabDataCmd(a.activeTab))
			}
			return a, nil
		case "R":
			a.autoRefresh = !a.autoRefresh
			a.cfg.TUI.AutoRefresh = a.autoRefresh
			// Best effort: the toggle still applies to this session.
			_ = a.save(a.cfg)
			return a, nil
		case "left":
			return a.switchTab((a.activeTab - 1 + len(components.Tabs)) % len(components.Tabs))
		case "right", "tab":
			return a.switchTab((a.activeTab + 1) % len(components.Tabs))
		}
		if len(key) == 1 {
			if idx := components.TabIdxByKey(rune(key[0])); idx >= 0 {
				return a.switchTab(idx)
			}
		}
		return a, nil

	case LoginResultMsg:
		a.loggingIn = false
		if msg.Err != nil {
			a.loginErr = msg.Err
			a.loginVals.password = ""
			a.loginForm = newLoginForm(a.loginVals)
			return a, a.loginForm.Init()
		}
		a.needLogin = false
		a.loginForm = nil
		a.loginErr = nil
		a.loaded = false
		return a, loadDataCmd(a.backend)

	case DataLoadedMsg:
		a.loaded = true
		a.loadTime = msg.LoadTime
		a.lastRefresh = time.Now()
		return a.applyOverview(msg.Overview, msg.Err)

	case RefreshDataMsg:
		a.refreshing = false
		a.lastRefresh = time.Now()
		a.loadTime = msg.LoadTime
		return a.applyOverview(msg.Overview, msg.Err)

	case tabDataMsg:
		if msg.Tab != a.activeTab {
			return a, nil
		}
		a.tabErr = msg.Err
		if msg.Err == nil {
			switch msg.Tab {
			case tabBudgets, tabFamily:
				a.familyBudgets = msg.FamilyBudgets
			case tabGoals:
				a.contributions = msg.Contributions
			}
		}
		return a, nil

	case actionDoneMsg:
		if msg.Err != nil {
			a.flash = msg.Err.Error()
			if api.IsAuth(msg.Err) {
				return a.requireLogin(msg.Err)
			}
			return a, nil
		}
		a.flash = msg.Status
		a.refreshing = true
		return a, refreshDataCmd(a.backend)

	case spinner.TickMsg:
		if !a.loaded || a.loggingIn {
			var cmd tea.Cmd
			a.spinner, cmd = a.spinner.Update(msg)
			return a, cmd
		}
		return a, nil

	case tickMsg:
		cmds := []tea.Cmd{tickCmd()}
		if a.loaded && !a.needLogin && a.autoRefresh && !a.refreshing {
			if time.Since(a.lastRefresh) >= a.refreshInterval {
				a.refreshing = true
				cmds = append(cmds, refreshDataCmd(a.backend))
			}
		}
		return a, tea.Batch(cmds...)
	}

	// Forward unhandled messages to the login form (cursor blinks, etc.)
	if a.needLogin && a.loginForm != nil {
		return a.updateLoginForm(msg)
	}
	return a, nil
}

// applyOverview stores a load result. An authentication failure sends the
// user back to the login form; other errors keep the previous data.
func (a App) applyOverview(ov *pipeline.Overview, err error) (tea.Model, tea.Cmd) {
	if err != nil {
		if api.IsAuth(err) {
			return a.requireLogin(err)
		}
		a.loadErr = err
		return a, nil
	}
	a.loadErr = nil
	a.ov = ov
	a.goals.clamp(len(ov.Goals))
	return a, nil
}

func (a App) requireLogin(err error) (tea.Model, tea.Cmd) {
	a.needLogin = true
	a.loaded = true
	a.refreshing = false
	a.loginErr = err
	a.loginForm = newLoginForm(a.loginVals)
	if a.width > 0 {
		a.loginForm = a.loginForm.WithWidth(min(a.width, 60))
	}
	return a, a.loginForm.Init()
}

func (a App) updateLoginForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	form, cmd := a.loginForm.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		a.loginForm = f
	}

	switch a.loginForm.State {
	case huh.StateCompleted:
		if a.loggingIn {
			return a, nil
		}
		a.loggingIn = true
		return a, tea.Batch(a.spinner.Tick, loginCmd(a.backend, a.loginVals.credentials()))
	case huh.StateAborted:
		return a, tea.Quit
	}
	return a, cmd
}

// switchTab activates tab idx and starts any fetch that tab needs.
func (a App) switchTab(idx int) (tea.Model, tea.Cmd) {
	if idx == a.activeTab {
		return a, nil
	}
	a.activeTab = idx
	a.tabErr = nil
	a.flash = ""
	return a, a.tabDataCmd(idx)
}

// tabDataCmd fetches the data only tab idx shows, or nil.
func (a App) tabDataCmd(idx int) tea.Cmd {
	b := a.backend
	switch idx {
	case tabBudgets, tabFamily:
		if idx == tabFamily && (a.ov == nil || a.ov.Family == nil) {
			return nil
		}
		return func() tea.Msg {
			ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
			defer cancel()
			bs, err := b.FamilyBudgets(ctx)
			return tabDataMsg{Tab: idx, FamilyBudgets: bs, Err: err}
		}
	case tabGoals:
		return func() tea.Msg {
			ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
			defer cancel()
			cs, err := b.Contributions(ctx)
			return tabDataMsg{Tab: idx, Contributions: cs, Err: err}
		}
	}
	return nil
}

// updateTabKeys handles keys that belong to the active tab.
func (a App) updateTabKeys(key string) (tea.Model, tea.Cmd, bool) {
	switch a.activeTab {
	case tabGoals:
		if a.ov == nil {
			return a, nil, false
		}
		switch key {
		case "j", "down":
			a.goals.move(1, len(a.ov.Goals))
			return a, nil, true
		case "k", "up":
			a.goals.move(-1, len(a.ov.Goals))
			return a, nil, true
		case "p", "enter":
			if g, ok := a.selectedGoal(); ok {
				return a, togglePinCmd(a.backend, g), true
			}
			return a, nil, true
		}
	case tabStreak:
		if key == "c" {
			a.flash = "checking in…"
			return a, checkInCmd(a.backend), true
		}
	case tabSettings:
		switch key {
		case "j", "down":
			if a.settings.cursor < settingsFieldCount-1 {
				a.settings.cursor++
			}
			return a, nil, true
		case "k", "up":
			if a.settings.cursor > 0 {
				a.settings.cursor--
			}
			return a, nil, true
		case "enter":
			next, cmd := a.settingsStartEdit()
			return next, cmd, true
		}
	}
	return a, nil, false
}

func (a App) contentWidth() int {
	return min(a.width, maxContentWidth)
}

func (a App) isCompactLayout() bool {
	return a.contentWidth() < compactWidth
}

// View implements tea.Model.
func (a App) View() string {
	if a.width == 0 {
		return ""
	}
	if a.width < minTerminalWidth {
		return a.viewTooNarrow()
	}
	if a.needLogin && a.loginForm != nil {
		return a.viewLogin()
	}
	if !a.loaded {
		return a.viewLoading()
	}
	if a.showHelp {
		return a.viewHelp()
	}
	return a.viewMain()
}

func (a App) viewTooNarrow() string {
	h := max(a.height, 5)
	msg := fmt.Sprintf(
		"\n  Terminal too narrow (%d cols)\n\n  famfin needs at least %d columns.\n",
		a.width,
		minTerminalWidth,
	)
	return padHeight(truncateHeight(msg, h), h)
}

func (a App) viewLoading() string {
	t := theme.Active

	cardStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.BorderAccent).
		Background(t.Surface).
		Padding(2, 4)
	logoStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.Surface).Bold(true)
	subtitleStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	spinnerStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface)

	var b strings.Builder
	b.WriteString(logoStyle.Render("◈ famfin"))
	b.WriteString(subtitleStyle.Render(" · Family Finance"))
	b.WriteString("\n\n")
	b.WriteString(spinnerStyle.Render(a.spinner.View()))
	b.WriteString(subtitleStyle.Render(" Loading your finances from " + a.backendID))

	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, cardStyle.Render(b.String()),
		lipgloss.WithWhitespaceBackground(t.Background))
}

func (a App) viewHelp() string {
	t := theme.Active

	cardStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.BorderAccent).
		Background(t.Surface).
		Padding(1, 3)
	titleStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.Surface).Bold(true)
	sectionStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)
	keyStyle := lipgloss.NewStyle().Foreground(t.Cyan).Background(t.Surface).Bold(true)
	descStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	dimStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)

	sections := []struct {
		title    string
		bindings []struct{ key, desc string }
	}{
		{"Navigation", []struct{ key, desc string }{
			{"h b g f s x", "Jump to tab"},
			{"← →", "Previous / Next tab"},
			{"j k", "Move in lists"},
		}},
		{"Actions", []struct{ key, desc string }{
			{"p", "Pin / unpin goal"},
			{"c", "Streak check-in"},
			{"Enter", "Edit setting"},
			{"r", "Refresh data"},
			{"R", "Toggle auto-refresh"},
			{"?", "Toggle help"},
			{"q", "Quit"},
		}},
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("◈ Keyboard Shortcuts"))
	b.WriteString("\n")
	for _, sec := range sections {
		b.WriteString("\n")
		b.WriteString(sectionStyle.Render(sec.title))
		b.WriteString("\n")
		for _, bind := range sec.bindings {
			fmt.Fprintf(&b, "  %s  %s\n",
				keyStyle.Render(fmt.Sprintf("%-12s", bind.key)),
				descStyle.Render(bind.desc))
		}
	}
	b.WriteString("\n")
	b.WriteString(dimStyle.Render("Press any key to close"))

	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, cardStyle.Render(b.String()),
		lipgloss.WithWhitespaceBackground(t.Background))
}

func (a App) viewMain() string {
	t := theme.Active
	w := a.width
	cw := a.contentWidth()
	h := a.height

	header := components.RenderTabBar(a.activeTab, w)

	info := components.StatusInfo{
		Backend:     a.backendID,
		Refreshing:  a.refreshing,
		AutoRefresh: a.autoRefresh,
	}
	if a.ov != nil {
		info.User = a.ov.Profile.Username
		info.Warnings = len(a.ov.Warnings)
		info.DataAge = formatAge(time.Since(a.ov.FetchedAt))
	}
	statusBar := components.RenderStatusBar(w, info)

	contentH := max(h-lipgloss.Height(header)-lipgloss.Height(statusBar), minContentHeight)

	var content string
	switch {
	case a.ov == nil && a.loadErr != nil:
		content = components.ContentCard("Could not load data", errorText(a.loadErr)+"\n\nPress r to retry.", cw)
	case a.ov == nil:
		content = ""
	default:
		switch a.activeTab {
		case tabHome:
			content = a.renderHomeTab(cw)
		case tabBudgets:
			content = a.renderBudgetsTab(cw)
		case tabGoals:
			content = a.renderGoalsTab(cw)
		case tabFamily:
			content = a.renderFamilyTab(cw)
		case tabStreak:
			content = a.renderStreakTab(cw)
		case tabSettings:
			content = a.renderSettingsTab(cw)
		}
		if a.loadErr != nil {
			content = errorText(fmt.Errorf("refresh failed: %w", a.loadErr)) + "\n" + content
		}
	}

	content = padHeight(truncateHeight(content, contentH), contentH)
	content = fillLinesWithBackground(content, cw, t.Background)
	content = lipgloss.Place(w, contentH, lipgloss.Center, lipgloss.Top, content,
		lipgloss.WithWhitespaceBackground(t.Background))

	output := lipgloss.JoinVertical(lipgloss.Left, header, content, statusBar)
	return lipgloss.Place(w, h, lipgloss.Left, lipgloss.Top, output,
		lipgloss.WithWhitespaceBackground(t.Background))
}

// ─── Commands ───────────────────────────────────────────────────

type tickMsg struct{}

func tickCmd() tea.Cmd {
	return tea.Tick(250*time.Millisecond, func(time.Time) tea.Msg {
		return tickMsg{}
	})
}

func fetchOverview(b Backend) (*pipeline.Overview, time.Duration, error) {
	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()
	start := time.Now()
	ov, err := pipeline.LoadOverview(ctx, b)
	return ov, time.Since(start), err
}

func loadDataCmd(b Backend) tea.Cmd {
	return func() tea.Msg {
		ov, took, err := fetchOverview(b)
		return DataLoadedMsg{Overview: ov, Err: err, LoadTime: took}
	}
}

func refreshDataCmd(b Backend) tea.Cmd {
	return func() tea.Msg {
		ov, took, err := fetchOverview(b)
		return RefreshDataMsg{Overview: ov, Err: err, LoadTime: took}
	}
}

func loginCmd(b Backend, creds model.Credentials) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		_, err := b.Login(ctx, creds)
		return LoginResultMsg{Err: err}
	}
}

func togglePinCmd(b Backend, g model.Goal) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		var (
			msg *model.Message
			err error
		)
		if g.Pinned {
			msg, err = b.UnpinGoal(ctx, g.ID)
		} else {
			msg, err = b.PinGoal(ctx, g.ID)
		}
		if err != nil {
			return actionDoneMsg{Err: err}
		}
		status := msg.Message
		if status == "" {
			status = "updated " + g.Name
		}
		return actionDoneMsg{Status: status}
	}
}

func checkInCmd(b Backend) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		s, err := b.EnsureStreak(ctx)
		if err != nil {
			return actionDoneMsg{Err: err}
		}
		status := fmt.Sprintf("Checked in: %d day streak", s.Count)
		if pipeline.IsMilestone(s.Count) {
			status += " · milestone!"
		}
		return actionDoneMsg{Status: status}
	}
}

// ─── Helpers ────────────────────────────────────────────────────

// chartDateLabels builds compact X-axis labels for a date series.
// First label and month boundaries show the month abbreviation; the rest
// show the day number. days is newest-first; labels are oldest-left.
func chartDateLabels(days []pipeline.DailySpend) []string {
	n := len(days)
	labels := make([]string, n)
	prevMonth := time.Month(0)
	for i := 0; i < n; i++ {
		dt := days[n-1-i].Date
		switch {
		case i == 0, i < n-1 && dt.Month() != prevMonth:
			labels[i] = dt.Format("Jan")
		default:
			labels[i] = strconv.Itoa(dt.Day())
		}
		prevMonth = dt.Month()
	}
	return labels
}

func formatAge(d time.Duration) string {
	switch {
	case d < 5*time.Second:
		return "just now"
	case d < time.Minute:
		return fmt.Sprintf("%ds ago", int(d.Seconds()))
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	default:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	}
}

func errorText(err error) string {
	return lipgloss.NewStyle().
		Foreground(theme.Active.Red).
		Background(theme.Active.Surface).
		Render(err.Error())
}

func truncStr(s string, limit int) string {
	if limit <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit-1]) + "…"
}

func truncateHeight(s string, limit int) string {
	lines := strings.Split(s, "\n")
	if len(lines) <= limit {
		return s
	}
	return strings.Join(lines[:limit], "\n")
}

func padHeight(s string, h int) string {
	lines := strings.Split(s, "\n")
	if len(lines) >= h {
		return s
	}
	return s + strings.Repeat("\n", h-len(lines))
}

// fillLinesWithBackground pads each line to width w with background color.
func fillLinesWithBackground(s string, w int, bg lipgloss.Color) string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = lipgloss.PlaceHorizontal(w, lipgloss.Left, line,
			lipgloss.WithWhitespaceBackground(bg))
	}
	return strings.Join(lines, "\n")
}

// tabAtX returns the tab index at the given X coordinate, or -1 if none.
// Hitboxes use the same widths as RenderTabBar.
func (a App) tabAtX(x int) int {
	pos := 0
	for i, tab := range components.Tabs {
		tabW := components.TabVisualWidth(tab, i == a.activeTab)
		if x >= pos && x < pos+tabW {
			return i
		}
		pos += tabW + 1 // separator
	}
	return -1
}
