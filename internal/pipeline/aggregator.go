package pipeline

import (
	"sort"
	"time"

	"github.com/theirongolddev/famfin/internal/model"
)

// DailySpend is the spending recorded on one calendar day.
type DailySpend struct {
	Date  time.Time
	Total float64
	Count int
}

// FilterExpensesByTime keeps expenses dated within [since, until).
// A zero bound is open.
func FilterExpensesByTime(expenses []model.Expense, since, until time.Time) []model.Expense {
	var out []model.Expense
	for _, e := range expenses {
		if e.Date.IsZero() {
			continue
		}
		if !since.IsZero() && e.Date.Before(since) {
			continue
		}
		if !until.IsZero() && !e.Date.Before(until) {
			continue
		}
		out = append(out, e)
	}
	return out
}

// SpendingTotal sums expense amounts.
func SpendingTotal(expenses []model.Expense) float64 {
	var total float64
	for _, e := range expenses {
		total += e.Amount.Float64()
	}
	return total
}

// AggregateDays buckets expenses per calendar day, newest first. Days in
// [since, until) with no expenses are included with a zero total.
func AggregateDays(expenses []model.Expense, since, until time.Time) []DailySpend {
	days := make(map[string]*DailySpend)
	for _, e := range FilterExpensesByTime(expenses, since, until) {
		key := e.Date.Format(time.DateOnly)
		d, ok := days[key]
		if !ok {
			y, m, dd := e.Date.Date()
			d = &DailySpend{Date: time.Date(y, m, dd, 0, 0, 0, 0, time.UTC)}
			days[key] = d
		}
		d.Total += e.Amount.Float64()
		d.Count++
	}

	if !since.IsZero() && !until.IsZero() {
		y, m, dd := since.Date()
		for day := time.Date(y, m, dd, 0, 0, 0, 0, time.UTC); day.Before(until); day = day.AddDate(0, 0, 1) {
			key := day.Format(time.DateOnly)
			if _, ok := days[key]; !ok {
				days[key] = &DailySpend{Date: day}
			}
		}
	}

	out := make([]DailySpend, 0, len(days))
	for _, d := range days {
		out = append(out, *d)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Date.After(out[j].Date)
	})
	return out
}
