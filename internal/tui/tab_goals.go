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

// goalsState tracks the selected row of the goals list.
type goalsState struct {
	cursor int
}

func (s *goalsState) move(delta, n int) {
	s.cursor += delta
	s.clamp(n)
}

func (s *goalsState) clamp(n int) {
	if s.cursor >= n {
		s.cursor = n - 1
	}
	if s.cursor < 0 {
		s.cursor = 0
	}
}

func (a App) selectedGoal() (model.Goal, bool) {
	if a.ov == nil || a.goals.cursor >= len(a.ov.Goals) {
		return model.Goal{}, false
	}
	return a.ov.Goals[a.goals.cursor], true
}

func (a App) renderGoalsTab(cw int) string {
	t := theme.Active
	ov := a.ov
	var b strings.Builder

	if a.flash != "" {
		b.WriteString(lipgloss.NewStyle().Foreground(t.Accent).Render(" " + a.flash))
		b.WriteString("\n")
	}

	b.WriteString(components.MetricCardRow([]components.Metric{
		{Label: "Saving", Value: cli.FormatPercent(roundPct(ov.Saving.Percentage)),
			Delta: fmt.Sprintf("%s of %s", cli.FormatCompactCurrency(ov.Saving.Current), cli.FormatCompactCurrency(ov.Saving.Total))},
		{Label: "Spending", Value: cli.FormatPercent(roundPct(ov.Spending.Percentage)),
			Delta: fmt.Sprintf("%s of %s", cli.FormatCompactCurrency(ov.Spending.Current), cli.FormatCompactCurrency(ov.Spending.Total))},
		{Label: "Goals", Value: cli.FormatNumber(int64(len(ov.Goals))), Delta: fmt.Sprintf("%d shared", len(ov.FamilyGoals()))},
	}, cw))
	b.WriteString("\n")

	if len(ov.Goals) == 0 {
		b.WriteString(components.ContentCard("Goals", mutedText("No goals yet. Add one with `famfin goals add`."), cw))
		return b.String()
	}

	innerW := components.CardInnerWidth(cw)
	labelW := min(28, innerW/3)
	barW := max(10, innerW-labelW-34)

	cursorStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.Surface).Bold(true)
	pinStyle := lipgloss.NewStyle().Foreground(t.Yellow).Background(t.Surface)
	space := lipgloss.NewStyle().Background(t.Surface)

	var rows []string
	for i, g := range ov.Goals {
		marker := space.Render("  ")
		if i == a.goals.cursor {
			marker = cursorStyle.Render("▸ ")
		}
		pin := space.Render("  ")
		if g.Pinned {
			pin = pinStyle.Render("★ ")
		}
		color := t.GoalColor(g.GoalType)
		note := fmt.Sprintf("%s / %s", cli.FormatCurrency(pipeline.GoalCurrentAmount(g)), cli.FormatCurrency(g.Amount.Float64()))
		rows = append(rows, marker+pin+components.LabeledBar(g.Name, pipeline.GoalPercentage(g), color, note, labelW, barW))
	}
	b.WriteString(components.ContentCard("Goals  [j/k] select  [p] pin", strings.Join(rows, "\n"), cw))
	b.WriteString("\n")

	if g, ok := a.selectedGoal(); ok {
		b.WriteString(components.ContentCard(g.Name, a.renderGoalDetail(g), cw))
	}
	return b.String()
}

func (a App) renderGoalDetail(g model.Goal) string {
	t := theme.Active
	label := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	value := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)

	scope := "personal"
	if !g.IsPersonal {
		scope = "family"
	}
	contributed := "…"
	if a.tabErr != nil {
		contributed = "unavailable"
	} else if a.contributions != nil {
		contributed = cli.FormatCurrency(pipeline.TotalContributionForGoal(a.contributions, g.ID))
	}

	pairs := []struct{ k, v string }{
		{"Type", g.GoalType + " · " + scope},
		{"Target", cli.FormatCurrency(g.Amount.Float64())},
		{"Remaining", cli.FormatCurrency(pipeline.GoalRemaining(g))},
		{"Contributed", contributed},
		{"Created", cli.FormatDate(g.CreatedAt.Time)},
	}
	lines := make([]string, len(pairs))
	for i, p := range pairs {
		lines[i] = label.Render(fmt.Sprintf("%-12s", p.k)) + value.Render(p.v)
	}
	return strings.Join(lines, "\n")
}
