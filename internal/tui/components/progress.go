package components

import (
	"fmt"
	"strings"

	"github.com/theirongolddev/famfin/internal/tui/theme"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"
)

// LevelColor maps a budget level ("ok", "warn", "danger") to a theme color.
func LevelColor(level string) lipgloss.Color {
	return theme.Active.Level(level)
}

// ProgressBar renders a block bar for a 0-100 percentage followed by the
// percentage itself. Values outside the range are clamped for drawing
// only; the printed percentage stays exact.
func ProgressBar(pct float64, width int, color lipgloss.Color) string {
	t := theme.Active
	filled := int(clampPct(pct) / 100 * float64(width))

	filledStyle := lipgloss.NewStyle().Foreground(color).Background(t.Surface)
	emptyStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)
	pctStyle := lipgloss.NewStyle().Foreground(color).Background(t.Surface).Bold(true)

	return filledStyle.Render(strings.Repeat("█", filled)) +
		emptyStyle.Render(strings.Repeat("░", width-filled)) +
		lipgloss.NewStyle().Background(t.Surface).Render(" ") +
		pctStyle.Render(fmt.Sprintf("%.0f%%", pct))
}

// LabeledBar renders "label  [bar]  pct  note" on one line using the
// bubbles progress model for the bar.
func LabeledBar(label string, pct float64, color lipgloss.Color, note string, labelW, barW int) string {
	t := theme.Active

	bar := progress.New(
		progress.WithSolidFill(string(color)),
		progress.WithWidth(barW),
		progress.WithoutPercentage(),
	)
	bar.EmptyColor = string(t.TextDim)

	labelStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	pctStyle := lipgloss.NewStyle().Foreground(color).Background(t.Surface).Bold(true)
	noteStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	space := lipgloss.NewStyle().Background(t.Surface)

	return labelStyle.Render(fmt.Sprintf("%-*s", labelW, truncate(label, labelW))) +
		space.Render(" ") +
		bar.ViewAs(clampPct(pct)/100) +
		space.Render(" ") +
		pctStyle.Render(fmt.Sprintf("%4.0f%%", pct)) +
		space.Render("  ") +
		noteStyle.Render(note)
}

func clampPct(pct float64) float64 {
	switch {
	case pct < 0:
		return 0
	case pct > 100:
		return 100
	default:
		return pct
	}
}

func truncate(s string, limit int) string {
	r := []rune(s)
	if limit <= 0 {
		return ""
	}
	if len(r) <= limit {
		return s
	}
	return string(r[:limit-1]) + "…"
}
