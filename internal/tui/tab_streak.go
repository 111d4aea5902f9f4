package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/theirongolddev/famfin/internal/cli"
	"github.com/theirongolddev/famfin/internal/pipeline"
	"github.com/theirongolddev/famfin/internal/tui/components"
	"github.com/theirongolddev/famfin/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
)

func (a App) renderStreakTab(cw int) string {
	t := theme.Active
	ov := a.ov
	var b strings.Builder

	if a.flash != "" {
		b.WriteString(lipgloss.NewStyle().Foreground(t.Accent).Render(" " + a.flash))
		b.WriteString("\n")
	}

	count := 0
	started := "-"
	checkedIn := "no"
	if s := ov.Streak; s != nil {
		count = s.Count
		if !s.LastUpdated.IsZero() {
			started = cli.FormatDate(pipeline.StreakStartDate(s.Count, s.LastUpdated.Time))
		}
		if pipeline.UpdatedToday(*s, time.Now()) {
			checkedIn = "yes"
		}
	}

	next := "top tier"
	if nt, ok := pipeline.NextTier(count); ok {
		next = fmt.Sprintf("%s in %s", nt.Name, cli.FormatDays(ov.DaysToNextTier))
	}

	b.WriteString(components.MetricCardRow([]components.Metric{
		{Label: "Current Streak", Value: cli.FormatDays(count), Delta: "since " + started},
		{Label: "Tier", Value: ov.Tier.Name, Delta: cli.FormatDiscount(ov.Tier.Discount)},
		{Label: "Next", Value: next},
		{Label: "Checked In Today", Value: checkedIn, Delta: "[c] check in"},
	}, cw))
	b.WriteString("\n")

	b.WriteString(components.ContentCard("Tiers", renderTierLadder(count, cw), cw))
	return b.String()
}

// renderTierLadder lists tiers lowest first, marking the current one and
// showing progress toward each threshold.
func renderTierLadder(count, outerW int) string {
	t := theme.Active
	innerW := components.CardInnerWidth(outerW)
	barW := max(10, innerW-40)
	current := pipeline.TierFor(count)

	var lines []string
	for i := len(pipeline.Tiers) - 1; i >= 0; i-- {
		tier := pipeline.Tiers[i]
		nameStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(tier.Color)).Background(t.Surface)
		marker := "  "
		if tier.Name == current.Name {
			nameStyle = nameStyle.Bold(true)
			marker = "▸ "
		}
		pct := 100.0
		if tier.Threshold > 0 {
			pct = min(100, float64(count)/float64(tier.Threshold)*100)
		}
		lines = append(lines,
			nameStyle.Render(fmt.Sprintf("%s%-9s", marker, tier.Name))+
				mutedText(fmt.Sprintf(" %4dd %-12s ", tier.Threshold, cli.FormatDiscount(tier.Discount)))+
				components.ProgressBar(pct, barW, lipgloss.Color(tier.Color)))
	}
	return strings.Join(lines, "\n")
}
