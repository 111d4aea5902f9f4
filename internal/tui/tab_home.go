package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/theirongolddev/famfin/internal/cli"
	"github.com/theirongolddev/famfin/internal/model"
	"github.com/theirongolddev/famfin/internal/pipeline"
	"github.com/theirongolddev/famfin/internal/tui/components"
	"github.com/theirongolddev/famfin/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
)

func (a App) renderHomeTab(cw int) string {
	t := theme.Active
	ov := a.ov
	var b strings.Builder

	if a.flash != "" {
		b.WriteString(lipgloss.NewStyle().Foreground(t.Accent).Render(" " + a.flash))
		b.WriteString("\n")
	}

	// Row 1: metric cards
	totals := ov.BudgetTotals
	streakDays := 0
	if ov.Streak != nil {
		streakDays = ov.Streak.Count
	}
	metrics := []components.Metric{
		{Label: "Monthly Income", Value: cli.FormatCurrency(ov.MonthlyIncome), Delta: incomeDelta(ov)},
		{Label: "Budgeted", Value: cli.FormatCurrency(totals.Total), Delta: fmt.Sprintf("%d budgets", totals.Count)},
		{Label: "Spent", Value: cli.FormatCurrency(totals.Spent), Delta: cli.FormatPercent(roundPct(totals.Percentage())) + " of budget"},
		{Label: "Streak", Value: cli.FormatDays(streakDays), Delta: ov.Tier.Name},
	}
	b.WriteString(components.MetricCardRow(metrics, cw))
	b.WriteString("\n")

	// Row 2: daily spending chart
	now := time.Now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	days := pipeline.AggregateDays(ov.RecentExpenses, today.AddDate(0, 0, -(chartDays-1)), today.AddDate(0, 0, 1))
	if len(days) > 0 {
		vals := make([]float64, len(days))
		var total float64
		for i, d := range days {
			vals[len(days)-1-i] = d.Total
			total += d.Total
		}
		b.WriteString(components.ContentCard(
			fmt.Sprintf("Daily Spending (%dd, %s)", chartDays, cli.FormatCurrency(total)),
			components.BarChart(vals, chartDateLabels(days), t.Blue, components.CardInnerWidth(cw), 8),
			cw,
		))
		b.WriteString("\n")
	}

	// Row 3: recent expenses | goal progress
	if a.isCompactLayout() {
		b.WriteString(components.ContentCard("Recent Expenses", a.renderRecentExpenses(cw), cw))
		b.WriteString("\n")
		b.WriteString(components.ContentCard("Goal Progress", a.renderTypeProgress(cw), cw))
	} else {
		halves := components.LayoutRow(cw, 2)
		b.WriteString(components.CardRow([]string{
			components.ContentCard("Recent Expenses", a.renderRecentExpenses(halves[0]), halves[0]),
			components.ContentCard("Goal Progress", a.renderTypeProgress(halves[1]), halves[1]),
		}))
	}

	if len(ov.Warnings) > 0 {
		b.WriteString("\n")
		warn := lipgloss.NewStyle().Foreground(t.Orange).Background(t.Surface)
		lines := make([]string, len(ov.Warnings))
		for i, w := range ov.Warnings {
			lines[i] = warn.Render(truncStr(w, components.CardInnerWidth(cw)))
		}
		b.WriteString(components.ContentCard("Partial Data", strings.Join(lines, "\n"), cw))
	}

	return b.String()
}

func incomeDelta(ov *pipeline.Overview) string {
	if ov.MonthlyIncome <= 0 {
		return "not set"
	}
	left := ov.MonthlyIncome - ov.BudgetTotals.Total
	if left < 0 {
		return cli.FormatCurrency(-left) + " over-budgeted"
	}
	return cli.FormatCurrency(left) + " unbudgeted"
}

func roundPct(p float64) float64 {
	return float64(int(p*10+0.5)) / 10
}

func (a App) renderRecentExpenses(outerW int) string {
	t := theme.Active
	ov := a.ov
	innerW := components.CardInnerWidth(outerW)

	muted := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	text := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	amount := lipgloss.NewStyle().Foreground(t.Orange).Background(t.Surface)

	if len(ov.RecentExpenses) == 0 {
		return muted.Render("No expenses yet.")
	}

	const dateW, amountW = 7, 11
	descW := max(8, innerW-dateW-amountW-2)

	var lines []string
	for i, e := range ov.RecentExpenses {
		if i == 8 {
			break
		}
		date := "-"
		if !e.Date.IsZero() {
			date = e.Date.Format("Jan 02")
		}
		lines = append(lines,
			muted.Render(fmt.Sprintf("%-*s", dateW, date))+
				text.Render(fmt.Sprintf(" %-*s ", descW, truncStr(e.Description, descW)))+
				amount.Render(fmt.Sprintf("%*s", amountW, cli.FormatCurrency(e.Amount.Float64()))))
	}
	return strings.Join(lines, "\n")
}

func (a App) renderTypeProgress(outerW int) string {
	t := theme.Active
	ov := a.ov
	innerW := components.CardInnerWidth(outerW)
	labelW := 9
	barW := max(10, innerW-labelW-24)

	var lines []string
	for _, tp := range []pipeline.TypeProgress{ov.Saving, ov.Spending} {
		label := "Saving"
		if tp.GoalType == model.GoalSpending {
			label = "Spending"
		}
		color := t.GoalColor(tp.GoalType)
		note := fmt.Sprintf("%s of %s", cli.FormatCompactCurrency(tp.Current), cli.FormatCompactCurrency(tp.Total))
		lines = append(lines, components.LabeledBar(label, tp.Percentage, color, note, labelW, barW))
	}
	pinned := 0
	for _, g := range ov.Goals {
		if g.Pinned {
			pinned++
		}
	}
	lines = append(lines, "",
		lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface).
			Render(fmt.Sprintf("%d goals · %d pinned", len(ov.Goals), pinned)))
	return strings.Join(lines, "\n")
}
