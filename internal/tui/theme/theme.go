// Package theme defines color themes for the famfin dashboard and CLI.
package theme

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/famfin/internal/model"
)

// Theme holds the color roles used throughout the TUI. The surface and
// text roles shape the layout; the hue roles carry meaning (budget
// levels, goal kinds) through Level and GoalColor.
type Theme struct {
	Name  string
	Light bool

	Background    lipgloss.Color
	Surface       lipgloss.Color // cards and panels
	SurfaceHover  lipgloss.Color // active tab, selected row
	SurfaceBright lipgloss.Color
	Border        lipgloss.Color
	BorderAccent  lipgloss.Color // focused card

	TextDim     lipgloss.Color // hints
	TextMuted   lipgloss.Color // labels
	TextPrimary lipgloss.Color

	Accent       lipgloss.Color
	AccentBright lipgloss.Color

	Green       lipgloss.Color
	GreenBright lipgloss.Color
	Orange      lipgloss.Color
	Red         lipgloss.Color
	Blue        lipgloss.Color
	Yellow      lipgloss.Color
	Cyan        lipgloss.Color
}

// Level returns the color for a budget level ("ok", "warn", "danger").
func (t Theme) Level(level string) lipgloss.Color {
	switch level {
	case "danger":
		return t.Red
	case "warn":
		return t.Orange
	default:
		return t.Green
	}
}

// GoalColor returns the bar color for a goal type.
func (t Theme) GoalColor(goalType string) lipgloss.Color {
	if goalType == model.GoalSpending {
		return t.Blue
	}
	return t.Green
}

// palette lists a theme's raw colors in role order: background, surface,
// hover, bright surface, border, accent border, dim text, muted text,
// text, accent, bright accent, then the hues.
type palette [18]string

func (p palette) theme(name string, light bool) Theme {
	c := func(i int) lipgloss.Color { return lipgloss.Color(p[i]) }
	return Theme{
		Name:          name,
		Light:         light,
		Background:    c(0),
		Surface:       c(1),
		SurfaceHover:  c(2),
		SurfaceBright: c(3),
		Border:        c(4),
		BorderAccent:  c(5),
		TextDim:       c(6),
		TextMuted:     c(7),
		TextPrimary:   c(8),
		Accent:        c(9),
		AccentBright:  c(10),
		Green:         c(11),
		GreenBright:   c(12),
		Orange:        c(13),
		Red:           c(14),
		Blue:          c(15),
		Yellow:        c(16),
		Cyan:          c(17),
	}
}

var (
	// FlexokiDark is the default: warm, paper-inspired and dark.
	FlexokiDark = palette{
		"#100F0F", "#1C1B1A", "#282726", "#343331", "#403E3C", "#3AA99F",
		"#575653", "#878580", "#FFFCF0", "#3AA99F", "#5BC8BE",
		"#879A39", "#A3B859", "#DA702C", "#D14D41", "#4385BE", "#D0A215", "#24837B",
	}.theme("flexoki-dark", false)

	// FlexokiLight is the same palette on paper.
	FlexokiLight = palette{
		"#FFFCF0", "#F2F0E5", "#E6E4D9", "#DAD8CE", "#CECDC3", "#24837B",
		"#B7B5AC", "#6F6E69", "#100F0F", "#24837B", "#3AA99F",
		"#66800B", "#879A39", "#BC5215", "#AF3029", "#205EA6", "#AD8301", "#24837B",
	}.theme("flexoki-light", true)

	CatppuccinMocha = palette{
		"#1E1E2E", "#313244", "#45475A", "#585B70", "#585B70", "#89B4FA",
		"#6C7086", "#A6ADC8", "#CDD6F4", "#89B4FA", "#B4D0FB",
		"#A6E3A1", "#C6F6C1", "#FAB387", "#F38BA8", "#89B4FA", "#F9E2AF", "#94E2D5",
	}.theme("catppuccin-mocha", false)

	TokyoNight = palette{
		"#1A1B26", "#24283B", "#343A52", "#414868", "#565F89", "#7AA2F7",
		"#565F89", "#A9B1D6", "#C0CAF5", "#7AA2F7", "#A9C1FF",
		"#9ECE6A", "#B9E87A", "#FF9E64", "#F7768E", "#7AA2F7", "#E0AF68", "#7DCFFF",
	}.theme("tokyo-night", false)

	// Terminal sticks to the ANSI 16 colors.
	Terminal = palette{
		"0", "0", "8", "8", "8", "6",
		"8", "7", "15", "6", "14",
		"2", "10", "3", "1", "4", "3", "6",
	}.theme("terminal", false)
)

// All lists the themes in the order settings cycles through them.
var All = []Theme{FlexokiDark, FlexokiLight, CatppuccinMocha, TokyoNight, Terminal}

// Active is the currently selected theme.
var Active = FlexokiDark

// ByName returns the named theme, or FlexokiDark.
func ByName(name string) Theme {
	if t, ok := lookup(name); ok {
		return t
	}
	return FlexokiDark
}

// Names lists the available theme names.
func Names() []string {
	names := make([]string, len(All))
	for i, t := range All {
		names[i] = t.Name
	}
	return names
}

// Valid reports whether name is a known theme.
func Valid(name string) bool {
	_, ok := lookup(name)
	return ok
}

// SetActive sets the active theme by name.
func SetActive(name string) {
	Active = ByName(name)
}

func lookup(name string) (Theme, bool) {
	for _, t := range All {
		if t.Name == name {
			return t, true
		}
	}
	return Theme{}, false
}
