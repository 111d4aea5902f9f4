package tui

import (
	"fmt"
	"strings"

	"github.com/theirongolddev/famfin/internal/cli"
	"github.com/theirongolddev/famfin/internal/pipeline"
	"github.com/theirongolddev/famfin/internal/tui/components"
	"github.com/theirongolddev/famfin/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
)

func (a App) renderFamilyTab(cw int) string {
	t := theme.Active
	ov := a.ov

	if ov.Family == nil {
		return components.ContentCard("Family",
			mutedText("You are not part of a family.\nCreate one with `famfin family create <name>`."), cw)
	}
	fam := ov.Family
	var b strings.Builder

	shared := ov.FamilyGoals()
	b.WriteString(components.MetricCardRow([]components.Metric{
		{Label: "Family", Value: fam.Name, Delta: fmt.Sprintf("#%d", fam.ID)},
		{Label: "Members", Value: cli.FormatNumber(int64(len(fam.Members)))},
		{Label: "Shared Goals", Value: cli.FormatNumber(int64(len(shared)))},
	}, cw))
	b.WriteString("\n")

	me := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.Surface).Bold(true)
	other := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	var members []string
	for _, m := range fam.Members {
		if m.Username != "" && m.Username == ov.Profile.Username {
			members = append(members, me.Render("● "+m.Label()+" (you)"))
			continue
		}
		members = append(members, other.Render("○ "+m.Label()))
	}
	if len(members) == 0 {
		members = append(members, mutedText("No members listed."))
	}

	var goals []string
	innerW := components.CardInnerWidth(cw / 2)
	labelW := min(20, innerW/3)
	barW := max(8, innerW-labelW-24)
	for _, g := range shared {
		note := cli.FormatCompactCurrency(pipeline.GoalRemaining(g)) + " left"
		goals = append(goals, components.LabeledBar(g.Name, pipeline.GoalPercentage(g), t.Green, note, labelW, barW))
	}
	if len(goals) == 0 {
		goals = append(goals, mutedText("No shared goals."))
	}

	if a.isCompactLayout() {
		b.WriteString(components.ContentCard("Members", strings.Join(members, "\n"), cw))
		b.WriteString("\n")
		b.WriteString(components.ContentCard("Shared Goals", strings.Join(goals, "\n"), cw))
	} else {
		halves := components.LayoutRow(cw, 2)
		b.WriteString(components.CardRow([]string{
			components.ContentCard("Members", strings.Join(members, "\n"), halves[0]),
			components.ContentCard("Shared Goals", strings.Join(goals, "\n"), halves[1]),
		}))
	}
	b.WriteString("\n")

	var budgets string
	switch {
	case a.tabErr != nil:
		budgets = errorText(a.tabErr)
	case a.familyBudgets == nil:
		budgets = mutedText("Loading…")
	default:
		budgets = renderBudgetGroups(a.familyBudgets, cw)
	}
	b.WriteString(components.ContentCard("Family Budgets", budgets, cw))
	return b.String()
}
