package pipeline

import (
	"sort"

	"github.com/theirongolddev/famfin/internal/model"
)

// GoalPercentage returns the raw progress percentage: the server's
// progress_percentage when present, otherwise progress/amount*100.
func GoalPercentage(g model.Goal) float64 {
	if g.ProgressPercentage != nil {
		return g.ProgressPercentage.Float64()
	}
	if g.Amount <= 0 {
		return 0
	}
	return g.Progress.Float64() / g.Amount.Float64() * 100
}

// GoalDisplayPercentage caps the progress percentage at 100.
func GoalDisplayPercentage(g model.Goal) float64 {
	return min(GoalPercentage(g), 100)
}

// ProgressBarWidth clamps a percentage to [0, 100].
func ProgressBarWidth(pct float64) float64 {
	return max(0, min(pct, 100))
}

// GoalCurrentAmount returns how much has been saved or spent toward g.
func GoalCurrentAmount(g model.Goal) float64 {
	if g.RemainingAmount != nil {
		return g.Amount.Float64() - g.RemainingAmount.Float64()
	}
	return g.Progress.Float64()
}

// GoalRemaining returns what is left to reach g, never negative.
func GoalRemaining(g model.Goal) float64 {
	if g.RemainingAmount != nil {
		return max(0, g.RemainingAmount.Float64())
	}
	return max(0, g.Amount.Float64()-g.Progress.Float64())
}

// FamilyGoals returns the shared goals of the given family.
func FamilyGoals(goals []model.Goal, familyID int64) []model.Goal {
	var out []model.Goal
	for _, g := range goals {
		if g.Family.Is(familyID) && !g.IsPersonal {
			out = append(out, g)
		}
	}
	return out
}

// PersonalGoals returns the goals marked personal.
func PersonalGoals(goals []model.Goal) []model.Goal {
	var out []model.Goal
	for _, g := range goals {
		if g.IsPersonal {
			out = append(out, g)
		}
	}
	return out
}

// FilterGoalsByType keeps goals of goalType ("saving" or "spending").
// An empty type keeps everything.
func FilterGoalsByType(goals []model.Goal, goalType string) []model.Goal {
	if goalType == "" {
		return goals
	}
	var out []model.Goal
	for _, g := range goals {
		if g.GoalType == goalType {
			out = append(out, g)
		}
	}
	return out
}

// SortGoals orders pinned goals first, then newest first.
func SortGoals(goals []model.Goal) {
	sort.SliceStable(goals, func(i, j int) bool {
		if goals[i].Pinned != goals[j].Pinned {
			return goals[i].Pinned
		}
		return goals[i].CreatedAt.After(goals[j].CreatedAt.Time)
	})
}

// TypeProgress is the combined progress across goals of one type.
type TypeProgress struct {
	GoalType   string
	Goals      int
	Current    float64
	Total      float64
	Percentage float64
}

// GoalTypeProgress sums progress for goals of goalType.
func GoalTypeProgress(goals []model.Goal, goalType string) TypeProgress {
	tp := TypeProgress{GoalType: goalType}
	for _, g := range FilterGoalsByType(goals, goalType) {
		tp.Goals++
		tp.Current += GoalCurrentAmount(g)
		tp.Total += g.Amount.Float64()
	}
	if tp.Total > 0 {
		tp.Percentage = min(tp.Current/tp.Total*100, 100)
	}
	return tp
}

// TotalContributionForGoal sums the contributions made to goalID.
func TotalContributionForGoal(contributions []model.Contribution, goalID int64) float64 {
	var total float64
	for _, c := range contributions {
		if c.Goal.Is(goalID) {
			total += c.Amount.Float64()
		}
	}
	return total
}
