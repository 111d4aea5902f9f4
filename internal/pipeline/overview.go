package pipeline

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/theirongolddev/famfin/internal/model"
)

// OverviewSource is the subset of the backend client the overview needs.
type OverviewSource interface {
	Profile(ctx context.Context) (*model.Profile, error)
	RecentExpenses(ctx context.Context) ([]model.Expense, error)
	Budgets(ctx context.Context) ([]model.Budget, error)
	Goals(ctx context.Context) ([]model.Goal, error)
	CurrentFamily(ctx context.Context) (*model.Family, error)
	Streak(ctx context.Context) (*model.Streak, error)
}

// Overview is the home-screen summary.
type Overview struct {
	Profile        model.Profile
	MonthlyIncome  float64
	RecentExpenses []model.Expense
	Budgets        []model.Budget
	BudgetTotals   BudgetTotals
	Goals          []model.Goal
	Saving         TypeProgress
	Spending       TypeProgress
	Family         *model.Family
	Streak         *model.Streak
	Tier           Tier
	DaysToNextTier int
	Warnings       []string
	FetchedAt      time.Time
}

// FamilyGoals returns the overview's shared family goals.
func (o *Overview) FamilyGoals() []model.Goal {
	if o.Family == nil {
		return nil
	}
	return FamilyGoals(o.Goals, o.Family.ID)
}

// LoadOverview fetches every section concurrently. The profile is
// required; a failure in any other section leaves it empty and adds a
// warning.
func LoadOverview(ctx context.Context, src OverviewSource) (*Overview, error) {
	ov := &Overview{FetchedAt: time.Now()}
	var mu sync.Mutex
	warn := func(section string, err error) {
		mu.Lock()
		defer mu.Unlock()
		ov.Warnings = append(ov.Warnings, fmt.Sprintf("%s: %v", section, err))
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		p, err := src.Profile(gctx)
		if err != nil {
			return err
		}
		ov.Profile = *p
		ov.MonthlyIncome = p.MonthlyIncome.Float64()
		return nil
	})
	g.Go(func() error {
		exps, err := src.RecentExpenses(gctx)
		if err != nil {
			warn("recent expenses", err)
			return nil
		}
		ov.RecentExpenses = exps
		return nil
	})
	g.Go(func() error {
		bs, err := src.Budgets(gctx)
		if err != nil {
			warn("budgets", err)
			return nil
		}
		ov.Budgets = bs
		ov.BudgetTotals = AggregateBudgets(bs)
		return nil
	})
	g.Go(func() error {
		goals, err := src.Goals(gctx)
		if err != nil {
			warn("goals", err)
			return nil
		}
		SortGoals(goals)
		ov.Goals = goals
		ov.Saving = GoalTypeProgress(goals, model.GoalSaving)
		ov.Spending = GoalTypeProgress(goals, model.GoalSpending)
		return nil
	})
	g.Go(func() error {
		f, err := src.CurrentFamily(gctx)
		if err != nil {
			warn("family", err)
			return nil
		}
		ov.Family = f
		return nil
	})
	g.Go(func() error {
		s, err := src.Streak(gctx)
		if err != nil {
			warn("streak", err)
			return nil
		}
		ov.Streak = s
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	sort.Strings(ov.Warnings)

	count := 0
	if ov.Streak != nil {
		count = ov.Streak.Count
	}
	ov.Tier = TierFor(count)
	ov.DaysToNextTier = DaysToNextTier(count)
	return ov, nil
}
