package pipeline

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/theirongolddev/famfin/internal/model"
)

func approx(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func TestBudgetRemaining(t *testing.T) {
	b := model.Budget{Amount: 100, UsedAmount: 40}
	if got := BudgetRemaining(b); got != 60 {
		t.Fatalf("derived remaining = %v, want 60", got)
	}

	b.RemainingAmount = model.AmountPtr(55)
	if got := BudgetRemaining(b); got != 55 {
		t.Fatalf("server remaining = %v, want 55", got)
	}

	over := model.Budget{Amount: 50, UsedAmount: 80}
	if got := BudgetRemaining(over); got != -30 {
		t.Fatalf("overspent remaining = %v, want -30", got)
	}
}

func TestBudgetUsage(t *testing.T) {
	if got := BudgetUsage(model.Budget{Amount: 200, UsedAmount: 50}); got != 25 {
		t.Fatalf("usage = %v, want 25", got)
	}
	if got := BudgetUsage(model.Budget{Amount: 0, UsedAmount: 50}); got != 0 {
		t.Fatalf("zero budget usage = %v, want 0", got)
	}
	b := model.Budget{Amount: 200, UsedAmount: 50, UsagePercentage: model.AmountPtr(30)}
	if got := BudgetUsage(b); got != 30 {
		t.Fatalf("server usage = %v, want 30", got)
	}
}

func TestAggregateAndGroupBudgets(t *testing.T) {
	budgets := []model.Budget{
		{ID: 1, Category: "groceries", Amount: 300, UsedAmount: 120},
		{ID: 2, Category: "Bills", Amount: 500, UsedAmount: 500},
		{ID: 3, Category: "groceries", Amount: 100, UsedAmount: 10},
		{ID: 4, Category: "", Amount: 20},
	}

	totals := AggregateBudgets(budgets)
	if totals.Total != 920 || totals.Spent != 630 || totals.Remaining != 290 || totals.Count != 4 {
		t.Fatalf("totals = %+v", totals)
	}

	groups := GroupBudgetsByCategory(budgets)
	if len(groups) != 3 {
		t.Fatalf("groups = %d, want 3", len(groups))
	}
	if groups[0].Category != "Bills" || groups[1].Category != "groceries" || groups[2].Category != "Other" {
		t.Fatalf("order = %s, %s, %s", groups[0].Category, groups[1].Category, groups[2].Category)
	}
	if groups[1].Totals.Total != 400 || len(groups[1].Budgets) != 2 {
		t.Fatalf("groceries = %+v", groups[1].Totals)
	}
}

func TestGroupBudgetsByCategoryCaseVariantsOrdered(t *testing.T) {
	budgets := []model.Budget{
		{ID: 1, Category: "food", Amount: 10},
		{ID: 2, Category: "Food", Amount: 20},
		{ID: 3, Category: "FOOD", Amount: 30},
		{ID: 4, Category: "bills", Amount: 40},
	}
	want := []string{"bills", "FOOD", "Food", "food"}

	for range 20 {
		groups := GroupBudgetsByCategory(budgets)
		if len(groups) != len(want) {
			t.Fatalf("groups = %d, want %d", len(groups), len(want))
		}
		for i, cat := range want {
			if groups[i].Category != cat {
				t.Fatalf("group %d = %q, want %q", i, groups[i].Category, cat)
			}
		}
	}
}

func TestBudgetLevel(t *testing.T) {
	cases := map[float64]string{0: "ok", 74.9: "ok", 75: "warn", 89.9: "warn", 90: "danger", 130: "danger"}
	for pct, want := range cases {
		if got := BudgetLevel(pct); got != want {
			t.Fatalf("BudgetLevel(%v) = %s, want %s", pct, got, want)
		}
	}
}

func TestGoalDisplayPercentageClamped(t *testing.T) {
	cases := []struct {
		goal model.Goal
		want float64
	}{
		{model.Goal{Amount: 100, ProgressPercentage: model.AmountPtr(150)}, 100},
		{model.Goal{Amount: 100, ProgressPercentage: model.AmountPtr(42.5)}, 42.5},
		{model.Goal{Amount: 200, Progress: 50}, 25},
		{model.Goal{Amount: 0, Progress: 50}, 0},
	}
	for _, tc := range cases {
		if got := GoalDisplayPercentage(tc.goal); got != tc.want {
			t.Fatalf("GoalDisplayPercentage(%+v) = %v, want %v", tc.goal, got, tc.want)
		}
	}

	if ProgressBarWidth(-5) != 0 || ProgressBarWidth(150) != 100 || ProgressBarWidth(33) != 33 {
		t.Fatal("ProgressBarWidth does not clamp to [0, 100]")
	}
}

func TestGoalFilters(t *testing.T) {
	goals := []model.Goal{
		{ID: 1, Family: model.RefTo(5), IsPersonal: false, GoalType: model.GoalSaving},
		{ID: 2, Family: model.RefTo(5), IsPersonal: true, GoalType: model.GoalSpending},
		{ID: 3, IsPersonal: true, GoalType: model.GoalSaving},
		{ID: 9, Family: model.RefTo(5), IsPersonal: false, GoalType: model.GoalSpending},
		{ID: 10, Family: model.RefTo(6), IsPersonal: false},
	}

	fam := FamilyGoals(goals, 5)
	if len(fam) != 2 || fam[0].ID != 1 || fam[1].ID != 9 {
		t.Fatalf("family goals = %+v", fam)
	}

	personal := PersonalGoals(goals)
	if len(personal) != 2 || personal[0].ID != 2 || personal[1].ID != 3 {
		t.Fatalf("personal goals = %+v", personal)
	}

	if got := FilterGoalsByType(goals, model.GoalSaving); len(got) != 2 {
		t.Fatalf("saving goals = %d, want 2", len(got))
	}
	if got := FilterGoalsByType(goals, ""); len(got) != len(goals) {
		t.Fatal("empty type should keep all goals")
	}
}

func TestGoalTypeProgress(t *testing.T) {
	goals := []model.Goal{
		{GoalType: model.GoalSaving, Amount: 1000, RemainingAmount: model.AmountPtr(750)},
		{GoalType: model.GoalSaving, Amount: 1000, Progress: 250},
		{GoalType: model.GoalSpending, Amount: 400, Progress: 100},
	}
	tp := GoalTypeProgress(goals, model.GoalSaving)
	if tp.Goals != 2 || tp.Current != 500 || tp.Total != 2000 || tp.Percentage != 25 {
		t.Fatalf("saving progress = %+v", tp)
	}
	if empty := GoalTypeProgress(nil, model.GoalSaving); empty.Percentage != 0 {
		t.Fatalf("empty progress = %+v", empty)
	}
}

func TestSortGoalsPinnedFirst(t *testing.T) {
	day := func(d int) model.Date { return model.DateOf(time.Date(2025, 1, d, 0, 0, 0, 0, time.UTC)) }
	goals := []model.Goal{
		{ID: 1, CreatedAt: day(1)},
		{ID: 2, CreatedAt: day(5)},
		{ID: 3, CreatedAt: day(2), Pinned: true},
	}
	SortGoals(goals)
	if goals[0].ID != 3 || goals[1].ID != 2 || goals[2].ID != 1 {
		t.Fatalf("order = %d, %d, %d", goals[0].ID, goals[1].ID, goals[2].ID)
	}
}

func TestTierBoundaries(t *testing.T) {
	cases := []struct {
		count    int
		name     string
		discount float64
		next     int
	}{
		{0, "Beginner", 0, 7},
		{6, "Beginner", 0, 1},
		{7, "Bronze", 1, 23},
		{29, "Bronze", 1, 1},
		{30, "Silver", 2.5, 60},
		{90, "Gold", 5, 90},
		{179, "Gold", 5, 1},
		{180, "Platinum", 7.5, 185},
		{364, "Platinum", 7.5, 1},
		{365, "Diamond", 10, 0},
		{1000, "Diamond", 10, 0},
	}
	for _, tc := range cases {
		tier := TierFor(tc.count)
		if tier.Name != tc.name || tier.Discount != tc.discount {
			t.Fatalf("TierFor(%d) = %s/%v, want %s/%v", tc.count, tier.Name, tier.Discount, tc.name, tc.discount)
		}
		if got := DaysToNextTier(tc.count); got != tc.next {
			t.Fatalf("DaysToNextTier(%d) = %d, want %d", tc.count, got, tc.next)
		}
	}

	next, ok := NextTier(29)
	if !ok || next.Name != "Silver" {
		t.Fatalf("NextTier(29) = %v, %v", next.Name, ok)
	}
	if _, ok := NextTier(365); ok {
		t.Fatal("NextTier(365) reported a next tier")
	}
}

func TestStreakDates(t *testing.T) {
	last := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	if got := StreakStartDate(5, last); !got.Equal(time.Date(2025, 3, 6, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("StreakStartDate = %v, want 2025-03-06", got)
	}
	if got := StreakStartDate(1, last); !got.Equal(last) {
		t.Fatalf("StreakStartDate(1) = %v", got)
	}

	s := model.Streak{Count: 5, LastUpdated: model.DateOf(last)}
	if !UpdatedToday(s, time.Date(2025, 3, 10, 23, 0, 0, 0, time.Local)) {
		t.Fatal("UpdatedToday = false on the same day")
	}
	if UpdatedToday(s, time.Date(2025, 3, 11, 1, 0, 0, 0, time.Local)) {
		t.Fatal("UpdatedToday = true on the next day")
	}
	if UpdatedToday(model.Streak{}, time.Now()) {
		t.Fatal("UpdatedToday = true for a streak never updated")
	}

	for _, c := range []int{7, 30, 100, 365} {
		if !IsMilestone(c) {
			t.Fatalf("IsMilestone(%d) = false", c)
		}
	}
	if IsMilestone(90) {
		t.Fatal("IsMilestone(90) = true")
	}
}

func TestTotalContributionForGoal(t *testing.T) {
	contribs := []model.Contribution{
		{Goal: model.RefTo(1), Amount: 50},
		{Goal: model.RefTo(2), Amount: 30},
		{Goal: model.RefTo(1), Amount: 75},
	}
	if got := TotalContributionForGoal(contribs, 1); got != 125 {
		t.Fatalf("total = %v, want 125", got)
	}
	if got := TotalContributionForGoal(contribs, 3); got != 0 {
		t.Fatalf("total for unknown goal = %v, want 0", got)
	}
}

func TestAggregateDays(t *testing.T) {
	d := func(day int) model.Date { return model.DateOf(time.Date(2025, 3, day, 0, 0, 0, 0, time.UTC)) }
	expenses := []model.Expense{
		{Amount: 10, Date: d(1)},
		{Amount: 5.5, Date: d(1)},
		{Amount: 20, Date: d(3)},
		{Amount: 99, Date: d(9)},
	}
	since := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	until := time.Date(2025, 3, 4, 0, 0, 0, 0, time.UTC)

	days := AggregateDays(expenses, since, until)
	if len(days) != 3 {
		t.Fatalf("days = %d, want 3", len(days))
	}
	if days[0].Date.Day() != 3 || days[0].Total != 20 {
		t.Fatalf("newest day = %+v", days[0])
	}
	if days[1].Total != 0 || days[1].Count != 0 {
		t.Fatalf("gap day = %+v", days[1])
	}
	if !approx(days[2].Total, 15.5) || days[2].Count != 2 {
		t.Fatalf("first day = %+v", days[2])
	}
	if got := SpendingTotal(expenses); !approx(got, 134.5) {
		t.Fatalf("SpendingTotal = %v", got)
	}
}

type fakeSource struct {
	profileErr error
	budgetErr  error
}

func (f fakeSource) Profile(context.Context) (*model.Profile, error) {
	if f.profileErr != nil {
		return nil, f.profileErr
	}
	return &model.Profile{Username: "alice", MonthlyIncome: 4000}, nil
}

func (f fakeSource) RecentExpenses(context.Context) ([]model.Expense, error) {
	return []model.Expense{{ID: 1, Amount: 12}}, nil
}

func (f fakeSource) Budgets(context.Context) ([]model.Budget, error) {
	if f.budgetErr != nil {
		return nil, f.budgetErr
	}
	return []model.Budget{{Amount: 500, UsedAmount: 200}}, nil
}

func (f fakeSource) Goals(context.Context) ([]model.Goal, error) {
	return []model.Goal{
		{ID: 1, Family: model.RefTo(3), GoalType: model.GoalSaving, Amount: 100, Progress: 40},
		{ID: 2, IsPersonal: true, GoalType: model.GoalSaving, Amount: 100, Progress: 10},
	}, nil
}

func (f fakeSource) CurrentFamily(context.Context) (*model.Family, error) {
	return &model.Family{ID: 3, Name: "Smiths"}, nil
}

func (f fakeSource) Streak(context.Context) (*model.Streak, error) {
	return &model.Streak{ID: 1, Count: 31}, nil
}

func TestLoadOverview(t *testing.T) {
	ov, err := LoadOverview(context.Background(), fakeSource{})
	if err != nil {
		t.Fatalf("LoadOverview: %v", err)
	}
	if ov.MonthlyIncome != 4000 || ov.BudgetTotals.Remaining != 300 {
		t.Fatalf("overview = %+v", ov)
	}
	if ov.Tier.Name != "Silver" || ov.DaysToNextTier != 59 {
		t.Fatalf("tier = %s, next = %d", ov.Tier.Name, ov.DaysToNextTier)
	}
	if fg := ov.FamilyGoals(); len(fg) != 1 || fg[0].ID != 1 {
		t.Fatalf("family goals = %+v", fg)
	}
	if ov.Saving.Percentage != 25 {
		t.Fatalf("saving = %+v", ov.Saving)
	}
	if len(ov.Warnings) != 0 {
		t.Fatalf("warnings = %v", ov.Warnings)
	}
}

func TestLoadOverviewDegrades(t *testing.T) {
	ov, err := LoadOverview(context.Background(), fakeSource{budgetErr: errors.New("boom")})
	if err != nil {
		t.Fatalf("LoadOverview: %v", err)
	}
	if len(ov.Warnings) != 1 || ov.BudgetTotals.Total != 0 {
		t.Fatalf("warnings = %v, totals = %+v", ov.Warnings, ov.BudgetTotals)
	}

	if _, err := LoadOverview(context.Background(), fakeSource{profileErr: errors.New("down")}); err == nil {
		t.Fatal("expected error when profile fails")
	}
}
