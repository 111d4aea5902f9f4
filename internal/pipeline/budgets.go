// Package pipeline computes the derived figures shown for budgets, goals,
// streaks and contributions. Everything here is pure.
package pipeline

import (
	"sort"
	"strings"

	"github.com/theirongolddev/famfin/internal/model"
)

// BudgetView is a budget with its derived figures filled in.
type BudgetView struct {
	Budget     model.Budget
	Amount     float64
	Used       float64
	Remaining  float64
	Percentage float64
}

// BudgetRemaining returns the server's remaining_amount when present,
// otherwise amount - used_amount.
func BudgetRemaining(b model.Budget) float64 {
	if b.RemainingAmount != nil {
		return b.RemainingAmount.Float64()
	}
	return b.Amount.Float64() - b.UsedAmount.Float64()
}

// BudgetUsage returns the server's usage_percentage when present,
// otherwise used/amount*100. A zero budget reports 0.
func BudgetUsage(b model.Budget) float64 {
	if b.UsagePercentage != nil {
		return b.UsagePercentage.Float64()
	}
	if b.Amount <= 0 {
		return 0
	}
	return b.UsedAmount.Float64() / b.Amount.Float64() * 100
}

// DeriveBudget fills in the derived figures for b.
func DeriveBudget(b model.Budget) BudgetView {
	return BudgetView{
		Budget:     b,
		Amount:     b.Amount.Float64(),
		Used:       b.UsedAmount.Float64(),
		Remaining:  BudgetRemaining(b),
		Percentage: BudgetUsage(b),
	}
}

// BudgetTotals sums a set of budgets. Remaining is Total - Spent.
type BudgetTotals struct {
	Count     int
	Total     float64
	Spent     float64
	Remaining float64
}

// Percentage returns Spent as a share of Total, 0-100+.
func (t BudgetTotals) Percentage() float64 {
	if t.Total <= 0 {
		return 0
	}
	return t.Spent / t.Total * 100
}

// AggregateBudgets totals budgets.
func AggregateBudgets(budgets []model.Budget) BudgetTotals {
	var t BudgetTotals
	for _, b := range budgets {
		t.Count++
		t.Total += b.Amount.Float64()
		t.Spent += b.UsedAmount.Float64()
	}
	t.Remaining = t.Total - t.Spent
	return t
}

// CategoryBudgets is the set of budgets sharing a category.
type CategoryBudgets struct {
	Category string
	Budgets  []BudgetView
	Totals   BudgetTotals
}

// GroupBudgetsByCategory groups budgets by category, sorted by name.
// Budgets without a category land in "Other".
func GroupBudgetsByCategory(budgets []model.Budget) []CategoryBudgets {
	groups := make(map[string][]model.Budget)
	for _, b := range budgets {
		cat := strings.TrimSpace(b.Category)
		if cat == "" {
			cat = "Other"
		}
		groups[cat] = append(groups[cat], b)
	}

	out := make([]CategoryBudgets, 0, len(groups))
	for cat, bs := range groups {
		views := make([]BudgetView, len(bs))
		for i, b := range bs {
			views[i] = DeriveBudget(b)
		}
		out = append(out, CategoryBudgets{Category: cat, Budgets: views, Totals: AggregateBudgets(bs)})
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := strings.ToLower(out[i].Category), strings.ToLower(out[j].Category)
		if a != b {
			return a < b
		}
		return out[i].Category < out[j].Category
	})
	return out
}

// Budget usage bands used for coloring.
const (
	BudgetWarnPct   = 75.0
	BudgetDangerPct = 90.0
)

// BudgetLevel classifies a usage percentage as "ok", "warn" or "danger".
func BudgetLevel(pct float64) string {
	switch {
	case pct >= BudgetDangerPct:
		return "danger"
	case pct >= BudgetWarnPct:
		return "warn"
	default:
		return "ok"
	}
}
