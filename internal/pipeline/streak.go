package pipeline

import (
	"time"

	"github.com/theirongolddev/famfin/internal/model"
)

// Tier is a streak reward bracket.
type Tier struct {
	Name      string
	Threshold int
	Discount  float64 // percent
	Color     string  // hex
}

// Tiers from highest to lowest.
var Tiers = []Tier{
	{Name: "Diamond", Threshold: 365, Discount: 10, Color: "#B9F2FF"},
	{Name: "Platinum", Threshold: 180, Discount: 7.5, Color: "#E5E4E2"},
	{Name: "Gold", Threshold: 90, Discount: 5, Color: "#FFD700"},
	{Name: "Silver", Threshold: 30, Discount: 2.5, Color: "#C0C0C0"},
	{Name: "Bronze", Threshold: 7, Discount: 1, Color: "#CD7F32"},
	{Name: "Beginner", Threshold: 0, Discount: 0, Color: "#4CAF50"},
}

var tierThresholds = []int{7, 30, 90, 180, 365}

// Milestones are the streak counts worth celebrating.
var Milestones = []int{7, 30, 100, 365}

// TierFor returns the tier earned by a streak of count days.
func TierFor(count int) Tier {
	for _, t := range Tiers {
		if count >= t.Threshold {
			return t
		}
	}
	return Tiers[len(Tiers)-1]
}

// DaysToNextTier returns how many more days reach the next tier, or 0 at
// the top tier.
func DaysToNextTier(count int) int {
	for _, th := range tierThresholds {
		if count < th {
			return th - count
		}
	}
	return 0
}

// NextTier returns the tier after the current one and whether one exists.
func NextTier(count int) (Tier, bool) {
	days := DaysToNextTier(count)
	if days == 0 {
		return Tier{}, false
	}
	return TierFor(count + days), true
}

// IsMilestone reports whether count is a celebrated milestone.
func IsMilestone(count int) bool {
	for _, m := range Milestones {
		if count == m {
			return true
		}
	}
	return false
}

// StreakStartDate returns the first day of a streak of count days that
// was last extended on lastUpdated.
func StreakStartDate(count int, lastUpdated time.Time) time.Time {
	if count <= 1 {
		return lastUpdated
	}
	return lastUpdated.AddDate(0, 0, -(count - 1))
}

// UpdatedToday reports whether the streak was extended on now's calendar day.
func UpdatedToday(s model.Streak, now time.Time) bool {
	if s.LastUpdated.IsZero() {
		return false
	}
	last := s.LastUpdated.Time
	// Bare dates decode as UTC midnight and are compared as calendar days.
	if !isBareDate(last) {
		last = last.In(now.Location())
	}
	y1, m1, d1 := last.Date()
	y2, m2, d2 := now.Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}

func isBareDate(t time.Time) bool {
	return t.Location() == time.UTC && t.Hour() == 0 && t.Minute() == 0 && t.Second() == 0 && t.Nanosecond() == 0
}
