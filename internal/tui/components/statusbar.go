package components

import (
	"fmt"
	"strings"

	"github.com/theirongolddev/famfin/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
)

// StatusInfo is what the bottom bar reports about the session.
type StatusInfo struct {
	Backend     string
	User        string
	DataAge     string
	Refreshing  bool
	AutoRefresh bool
	Warnings    int
}

// RenderStatusBar renders the bottom status bar.
func RenderStatusBar(width int, info StatusInfo) string {
	t := theme.Active

	base := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	accent := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface)
	warn := lipgloss.NewStyle().Foreground(t.Orange).Background(t.Surface)

	left := base.Render(" [?]help  [r]efresh  [q]uit")
	if info.User != "" {
		left += base.Render("  │ ") + accent.Render(info.User)
	}

	var right []string
	if info.Warnings > 0 {
		right = append(right, warn.Render(fmt.Sprintf("%d warning(s)", info.Warnings)))
	}
	switch {
	case info.Refreshing:
		right = append(right, accent.Render("refreshing…"))
	case info.DataAge != "":
		right = append(right, base.Render("updated "+info.DataAge))
	}
	if info.AutoRefresh {
		right = append(right, accent.Render("auto"))
	}
	if info.Backend != "" {
		right = append(right, base.Render(info.Backend))
	}
	r := strings.Join(right, base.Render("  "))
	if r != "" {
		r += base.Render(" ")
	}

	padding := width - lipgloss.Width(left) - lipgloss.Width(r)
	if padding < 1 {
		padding = 1
	}

	bar := left + base.Render(strings.Repeat(" ", padding)) + r
	return lipgloss.NewStyle().Background(t.Surface).Width(width).MaxWidth(width).Render(bar)
}
