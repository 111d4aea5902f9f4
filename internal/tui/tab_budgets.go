package tui

import (
	"fmt"
	"strings"

	"github.com/theirongolddev/famfin/internal/cli"
	"github.com/theirongolddev/famfin/internal/model"
	"github.com/theirongolddev/famfin/internal/pipeline"
	"github.com/theirongolddev/famfin/internal/tui/components"
	"github.com/theirongolddev/famfin/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
)

func (a App) renderBudgetsTab(cw int) string {
	ov := a.ov
	var b strings.Builder

	totals := ov.BudgetTotals
	b.WriteString(components.MetricCardRow([]components.Metric{
		{Label: "Budgeted", Value: cli.FormatCurrency(totals.Total), Delta: fmt.Sprintf("%d budgets", totals.Count)},
		{Label: "Spent", Value: cli.FormatCurrency(totals.Spent), Delta: cli.FormatPercent(roundPct(totals.Percentage()))},
		{Label: "Remaining", Value: cli.FormatCurrency(totals.Remaining)},
	}, cw))
	b.WriteString("\n")

	b.WriteString(components.ContentCard("Personal Budgets", renderBudgetGroups(ov.Budgets, cw), cw))
	b.WriteString("\n")

	title := "Family Budgets"
	var body string
	switch {
	case ov.Family == nil:
		body = mutedText("Not in a family.")
	case a.tabErr != nil:
		body = errorText(a.tabErr)
	case a.familyBudgets == nil:
		body = mutedText("Loading…")
	default:
		title = fmt.Sprintf("Family Budgets · %s", ov.Family.Name)
		body = renderBudgetGroups(a.familyBudgets, cw)
	}
	b.WriteString(components.ContentCard(title, body, cw))
	return b.String()
}

// renderBudgetGroups lists budgets by category with a usage bar each.
func renderBudgetGroups(budgets []model.Budget, outerW int) string {
	if len(budgets) == 0 {
		return mutedText("No budgets.")
	}
	t := theme.Active
	innerW := components.CardInnerWidth(outerW)
	labelW := min(24, innerW/4)
	barW := max(10, innerW-labelW-32)

	catStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)
	totalStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)

	var lines []string
	for _, group := range pipeline.GroupBudgetsByCategory(budgets) {
		lines = append(lines, catStyle.Render(group.Category)+
			totalStyle.Render(fmt.Sprintf("  %s of %s",
				cli.FormatCurrency(group.Totals.Spent), cli.FormatCurrency(group.Totals.Total))))
		for _, v := range group.Budgets {
			note := fmt.Sprintf("%s / %s", cli.FormatCurrency(v.Used), cli.FormatCurrency(v.Amount))
			color := components.LevelColor(pipeline.BudgetLevel(v.Percentage))
			lines = append(lines, "  "+components.LabeledBar(v.Budget.Name, v.Percentage, color, note, labelW, barW))
		}
	}
	return strings.Join(lines, "\n")
}

func mutedText(s string) string {
	t := theme.Active
	return lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface).Render(s)
}
