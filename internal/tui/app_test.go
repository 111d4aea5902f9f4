package tui

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/theirongolddev/famfin/internal/api"
	"github.com/theirongolddev/famfin/internal/config"
	"github.com/theirongolddev/famfin/internal/model"
	"github.com/theirongolddev/famfin/internal/pipeline"
	"github.com/theirongolddev/famfin/internal/tui/components"

	tea "github.com/charmbracelet/bubbletea"
)

type fakeBackend struct {
	mu       sync.Mutex
	loggedIn bool
	loginErr error
	profErr  error
	pinned   []int64
	unpinned []int64
	income   float64
	checkins int
}

func (f *fakeBackend) IsLoggedIn(context.Context) bool { return f.loggedIn }

func (f *fakeBackend) Login(_ context.Context, creds model.Credentials) (*model.TokenPair, error) {
	if f.loginErr != nil {
		return nil, f.loginErr
	}
	f.loggedIn = true
	return &model.TokenPair{Access: "A1", Refresh: "R1"}, nil
}

func (f *fakeBackend) Profile(context.Context) (*model.Profile, error) {
	if f.profErr != nil {
		return nil, f.profErr
	}
	return &model.Profile{Username: "alice", Email: "alice@example.com", MonthlyIncome: 4000, Family: model.RefTo(3)}, nil
}

func (f *fakeBackend) RecentExpenses(context.Context) ([]model.Expense, error) {
	now := time.Now()
	return []model.Expense{
		{ID: 1, Description: "Groceries", Amount: 82.5, Date: model.DateOf(now)},
		{ID: 2, Description: "Bus pass", Amount: 40, Date: model.DateOf(now.AddDate(0, 0, -2))},
	}, nil
}

func (f *fakeBackend) Budgets(context.Context) ([]model.Budget, error) {
	return []model.Budget{
		{ID: 1, Name: "Food", Category: "Living", Amount: 500, UsedAmount: 410},
		{ID: 2, Name: "Fun", Category: "", Amount: 100, UsedAmount: 20},
	}, nil
}

func (f *fakeBackend) Goals(context.Context) ([]model.Goal, error) {
	return []model.Goal{
		{ID: 7, Name: "Vacation", Amount: 2000, Progress: 500, GoalType: model.GoalSaving, Family: model.RefTo(3)},
		{ID: 8, Name: "Laptop", Amount: 1500, Progress: 1500, GoalType: model.GoalSaving, IsPersonal: true, Pinned: true},
	}, nil
}

func (f *fakeBackend) CurrentFamily(context.Context) (*model.Family, error) {
	return &model.Family{ID: 3, Name: "Smiths", Members: []model.Member{{ID: 1, Username: "alice"}, {ID: 2, Username: "bob"}}}, nil
}

func (f *fakeBackend) Streak(context.Context) (*model.Streak, error) {
	return &model.Streak{ID: 1, Count: 12, LastUpdated: model.DateOf(time.Now())}, nil
}

func (f *fakeBackend) FamilyBudgets(context.Context) ([]model.Budget, error) {
	return []model.Budget{{ID: 9, Name: "Rent", Category: "Housing", Amount: 1200, UsedAmount: 1200, IsFamily: true}}, nil
}

func (f *fakeBackend) Contributions(context.Context) ([]model.Contribution, error) {
	return []model.Contribution{{ID: 1, Goal: model.RefTo(8), Amount: 100}, {ID: 2, Goal: model.RefTo(8), Amount: 50}}, nil
}

func (f *fakeBackend) PinGoal(_ context.Context, id int64) (*model.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pinned = append(f.pinned, id)
	return &model.Message{Message: "Goal pinned"}, nil
}

func (f *fakeBackend) UnpinGoal(_ context.Context, id int64) (*model.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.unpinned = append(f.unpinned, id)
	return &model.Message{Message: "Goal unpinned"}, nil
}

func (f *fakeBackend) EnsureStreak(context.Context) (*model.Streak, error) {
	f.checkins++
	return &model.Streak{ID: 1, Count: 30}, nil
}

func (f *fakeBackend) SetMonthlyIncome(_ context.Context, income float64) (*model.Profile, error) {
	f.income = income
	return &model.Profile{MonthlyIncome: model.Amount(income)}, nil
}

func keyRune(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

// loadedApp returns an app that has already received its first overview.
func loadedApp(t *testing.T, fb *fakeBackend) App {
	t.Helper()
	fb.loggedIn = true
	a := NewApp(fb, "http://localhost:8000", config.DefaultConfig())
	a.save = func(config.Config) error { return nil }
	ov, err := pipeline.LoadOverview(context.Background(), fb)
	if err != nil {
		t.Fatalf("LoadOverview: %v", err)
	}
	m, _ := a.Update(tea.WindowSizeMsg{Width: 140, Height: 50})
	m, _ = m.(App).Update(DataLoadedMsg{Overview: ov})
	return m.(App)
}

func TestTabAtXMatchesTabWidths(t *testing.T) {
	for active := range components.Tabs {
		a := App{activeTab: active}
		pos := 0
		for i, tab := range components.Tabs {
			w := components.TabVisualWidth(tab, i == active)
			if got := a.tabAtX(pos + w/2); got != i {
				t.Fatalf("active=%d x=%d -> tab=%d, want %d", active, pos+w/2, got, i)
			}
			pos += w + 1
		}
		if got := a.tabAtX(pos + 50); got != -1 {
			t.Fatalf("past the last tab should be -1, got %d", got)
		}
	}
}

func TestNewAppShowsLoginWhenLoggedOut(t *testing.T) {
	a := NewApp(&fakeBackend{}, "http://localhost:8000", config.DefaultConfig())
	if !a.needLogin || a.loginForm == nil {
		t.Fatal("logged-out app should start on the login form")
	}
	m, _ := a.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	if !strings.Contains(m.View(), "sign in") {
		t.Fatal("login view should be rendered")
	}
}

func TestLoginResultLoadsData(t *testing.T) {
	fb := &fakeBackend{}
	a := NewApp(fb, "http://localhost:8000", config.DefaultConfig())

	m, cmd := a.Update(LoginResultMsg{})
	app := m.(App)
	if app.needLogin || app.loginForm != nil {
		t.Fatal("successful login should close the form")
	}
	if cmd == nil {
		t.Fatal("expected a load command")
	}
	msg, ok := cmd().(DataLoadedMsg)
	if !ok {
		t.Fatalf("expected DataLoadedMsg, got %T", cmd())
	}
	if msg.Err != nil || msg.Overview.Profile.Username != "alice" {
		t.Fatalf("unexpected load result: %+v", msg)
	}
}

func TestLoginFailureKeepsForm(t *testing.T) {
	a := NewApp(&fakeBackend{}, "http://localhost:8000", config.DefaultConfig())
	a.loginVals.username = "alice"
	a.loginVals.password = "wrong"

	m, _ := a.Update(LoginResultMsg{Err: errors.New("No active account found")})
	app := m.(App)
	if !app.needLogin || app.loginForm == nil {
		t.Fatal("failed login should show the form again")
	}
	if app.loginVals.password != "" || app.loginVals.username != "alice" {
		t.Fatalf("password should be cleared and username kept: %+v", app.loginVals)
	}
}

func TestAuthErrorReturnsToLogin(t *testing.T) {
	a := loadedApp(t, &fakeBackend{})
	m, _ := a.Update(RefreshDataMsg{Err: &api.AuthenticationError{Message: "Session expired"}})
	app := m.(App)
	if !app.needLogin || app.loginForm == nil {
		t.Fatal("auth failure should require login")
	}
	if app.ov == nil {
		t.Fatal("previous data should be kept")
	}
}

func TestRefreshErrorKeepsData(t *testing.T) {
	a := loadedApp(t, &fakeBackend{})
	m, _ := a.Update(RefreshDataMsg{Err: &api.NetworkError{Op: "Profile", Err: errors.New("refused")}})
	app := m.(App)
	if app.needLogin {
		t.Fatal("network errors should not log out")
	}
	if app.ov == nil || app.loadErr == nil {
		t.Fatal("expected old data plus a load error")
	}
	if !strings.Contains(app.View(), "refresh failed") {
		t.Fatal("refresh error should be visible")
	}
}

func TestSwitchTabFetchesTabData(t *testing.T) {
	a := loadedApp(t, &fakeBackend{})

	m, cmd := a.Update(keyRune('g'))
	app := m.(App)
	if app.activeTab != tabGoals {
		t.Fatalf("activeTab = %d, want goals", app.activeTab)
	}
	if cmd == nil {
		t.Fatal("goals tab should fetch contributions")
	}
	m, _ = app.Update(cmd())
	app = m.(App)
	if len(app.contributions) != 2 {
		t.Fatalf("contributions = %d", len(app.contributions))
	}
	if !strings.Contains(app.View(), "$150.00") {
		t.Fatal("selected goal should show its contribution total")
	}
}

func TestLateTabDataIgnored(t *testing.T) {
	a := loadedApp(t, &fakeBackend{})
	m, _ := a.Update(tabDataMsg{Tab: tabGoals, Contributions: []model.Contribution{{ID: 1}}})
	if m.(App).contributions != nil {
		t.Fatal("data for a tab the user left should be dropped")
	}
}

func TestToggleAutoRefreshPersists(t *testing.T) {
	a := loadedApp(t, &fakeBackend{})
	var saved []config.Config
	a.save = func(c config.Config) error {
		saved = append(saved, c)
		return nil
	}
	before := a.autoRefresh

	m, _ := a.Update(keyRune('R'))
	app := m.(App)
	if app.autoRefresh == before {
		t.Fatal("R should toggle auto-refresh")
	}
	if len(saved) != 1 || saved[0].TUI.AutoRefresh != app.autoRefresh {
		t.Fatalf("config not persisted: %+v", saved)
	}
}

func TestPinSelectedGoal(t *testing.T) {
	fb := &fakeBackend{}
	a := loadedApp(t, fb)
	m, _ := a.Update(keyRune('g'))

	// Pinned goals sort first: Laptop (pinned), then Vacation.
	m, _ = m.(App).Update(keyRune('j'))
	m, cmd := m.(App).Update(keyRune('p'))
	if cmd == nil {
		t.Fatal("expected pin command")
	}
	done, ok := cmd().(actionDoneMsg)
	if !ok || done.Err != nil {
		t.Fatalf("unexpected result %+v", done)
	}
	if len(fb.pinned) != 1 || fb.pinned[0] != 7 {
		t.Fatalf("pinned = %v, want [7]", fb.pinned)
	}

	m, cmd = m.(App).Update(done)
	if m.(App).flash != "Goal pinned" || cmd == nil {
		t.Fatal("action should flash and refresh")
	}
}

func TestStreakCheckIn(t *testing.T) {
	fb := &fakeBackend{}
	a := loadedApp(t, fb)
	m, _ := a.Update(keyRune('s'))
	_, cmd := m.(App).Update(keyRune('c'))
	if cmd == nil {
		t.Fatal("expected check-in command")
	}
	done := cmd().(actionDoneMsg)
	if fb.checkins != 1 || !strings.Contains(done.Status, "milestone") {
		t.Fatalf("check-in result %+v", done)
	}
}

func TestSettingsValidation(t *testing.T) {
	a := loadedApp(t, &fakeBackend{})
	a.activeTab = tabSettings
	a.settings.cursor = settingsFieldRefreshInterval
	a.settings.input.SetValue("5")
	a.settingsSave()
	if a.settings.saveErr == nil {
		t.Fatal("interval below 10s should be rejected")
	}

	a.settings.input.SetValue("45")
	a.settingsSave()
	if a.settings.saveErr != nil || a.refreshInterval != 45*time.Second || a.cfg.TUI.RefreshIntervalSec != 45 {
		t.Fatalf("interval not applied: %v %v", a.settings.saveErr, a.refreshInterval)
	}
}

func TestSaveIncome(t *testing.T) {
	fb := &fakeBackend{}
	a := loadedApp(t, fb)
	_, cmd := a.saveIncome("$5,250.50")
	if cmd == nil {
		t.Fatal("expected income command")
	}
	if done := cmd().(actionDoneMsg); done.Err != nil {
		t.Fatal(done.Err)
	}
	if fb.income != 5250.50 {
		t.Fatalf("income = %v", fb.income)
	}

	m, cmd := a.saveIncome("lots")
	if cmd != nil || m.(App).settings.saveErr == nil {
		t.Fatal("non-numeric income should be rejected locally")
	}
}

func TestViewRendersEveryTab(t *testing.T) {
	a := loadedApp(t, &fakeBackend{})
	for i, tab := range components.Tabs {
		a.activeTab = i
		a.familyBudgets = []model.Budget{{ID: 9, Name: "Rent", Category: "Housing", Amount: 1200, UsedAmount: 1200}}
		out := a.View()
		if out == "" {
			t.Fatalf("%s tab rendered nothing", tab.Name)
		}
		if !strings.Contains(out, "alice") {
			t.Fatalf("%s tab: status bar should show the user", tab.Name)
		}
	}
}

func TestViewTooNarrow(t *testing.T) {
	a := loadedApp(t, &fakeBackend{})
	m, _ := a.Update(tea.WindowSizeMsg{Width: 60, Height: 20})
	if !strings.Contains(m.View(), "too narrow") {
		t.Fatal("expected narrow-terminal message")
	}
}

func TestChartDateLabels(t *testing.T) {
	since := time.Date(2025, 1, 30, 0, 0, 0, 0, time.UTC)
	days := pipeline.AggregateDays(nil, since, since.AddDate(0, 0, 4))
	got := chartDateLabels(days)
	want := []string{"Jan", "31", "Feb", "2"}
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Fatalf("labels = %v, want %v", got, want)
	}
}
