package components

import (
	"fmt"
	"math"
	"strings"

	"github.com/theirongolddev/famfin/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
)

var sparkBlocks = []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

// Sparkline renders a one-line unicode sparkline scaled to the largest value.
func Sparkline(values []float64, color lipgloss.Color) string {
	if len(values) == 0 {
		return ""
	}
	peak := maxOf(values)
	if peak <= 0 {
		peak = 1
	}

	var buf strings.Builder
	for _, v := range values {
		idx := int(v / peak * float64(len(sparkBlocks)-1))
		idx = clampInt(idx, 0, len(sparkBlocks)-1)
		buf.WriteRune(sparkBlocks[idx])
	}
	return lipgloss.NewStyle().Foreground(color).Background(theme.Active.Surface).Render(buf.String())
}

// BarChart renders a vertical bar chart of values with a currency Y axis.
// labels, when the same length as values, are written under the X axis.
// Too many values for the width are sampled down; a chart too small to
// draw falls back to a sparkline.
func BarChart(values []float64, labels []string, color lipgloss.Color, width, height int) string {
	if len(values) == 0 {
		return ""
	}
	if width < 15 || height < 3 {
		return Sparkline(values, color)
	}
	t := theme.Active

	step := axisStep(maxOf(values), height/2)
	ceiling := math.Max(step, math.Ceil(maxOf(values)/step)*step)
	ticks := int(math.Round(ceiling / step))
	rowsPerTick := max(1, height/ticks)
	chartH := rowsPerTick * ticks

	labelW := max(4, len(FormatAxisAmount(ceiling))+1)
	plotW := max(5, width-labelW-1)

	values, labels = sampleSeries(values, labels, (plotW+1)/3)
	n := len(values)
	barW := 2
	if n == 1 {
		barW = plotW
	} else if w := (plotW - (n - 1)) / n; w > barW {
		barW = w
	}
	barW = min(barW, 6)
	axisLen := n*barW + max(0, n-1)

	axis := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)
	blank := lipgloss.NewStyle().Background(t.Surface)
	bar := lipgloss.NewStyle().Foreground(color).Background(t.Surface)
	peakBar := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.Surface)

	var b strings.Builder
	for row := chartH; row >= 1; row-- {
		top := ceiling * float64(row) / float64(chartH)
		bottom := ceiling * float64(row-1) / float64(chartH)
		style := bar
		if float64(row)/float64(chartH) > 0.8 {
			style = peakBar
		}

		label := ""
		if row%rowsPerTick == 0 {
			label = FormatAxisAmount(step * float64(row/rowsPerTick))
		}
		b.WriteString(axis.Render(fmt.Sprintf("%*s│", labelW, label)))

		for i, v := range values {
			if i > 0 {
				b.WriteString(blank.Render(" "))
			}
			switch {
			case v >= top:
				b.WriteString(style.Render(strings.Repeat("█", barW)))
			case v > bottom:
				idx := clampInt(int((v-bottom)/(top-bottom)*8), 1, 8)
				b.WriteString(style.Render(strings.Repeat(string(sparkBlocks[idx-1]), barW)))
			default:
				b.WriteString(blank.Render(strings.Repeat(" ", barW)))
			}
		}
		b.WriteString("\n")
	}
	b.WriteString(axis.Render(fmt.Sprintf("%*s└", labelW, "0") + strings.Repeat("─", axisLen)))

	if len(labels) == n {
		b.WriteString("\n")
		b.WriteString(blank.Render(strings.Repeat(" ", labelW+1)))
		b.WriteString(axis.Render(strings.TrimRight(placeLabels(labels, barW+1, axisLen), " ")))
	}
	return b.String()
}

// placeLabels lays labels out at their bar positions, skipping any that
// would collide with the previous one. The last label is always attempted.
func placeLabels(labels []string, pitch, width int) string {
	buf := []byte(strings.Repeat(" ", width))
	lastEnd := -1
	put := func(pos int, lbl string) {
		if pos+len(lbl) > width {
			pos = width - len(lbl)
		}
		if pos < 0 || pos <= lastEnd {
			return
		}
		copy(buf[pos:], lbl)
		lastEnd = pos + len(lbl)
	}
	every := max(1, 6/pitch)
	for i := 0; i < len(labels)-1; i += every {
		put(i*pitch, labels[i])
	}
	if len(labels) > 0 {
		put((len(labels)-1)*pitch, labels[len(labels)-1])
	}
	return string(buf)
}

// sampleSeries reduces values (and matching labels) to at most limit points.
func sampleSeries(values []float64, labels []string, limit int) ([]float64, []string) {
	n := len(values)
	if limit < 2 {
		limit = 2
	}
	if n <= limit {
		return values, labels
	}
	outV := make([]float64, limit)
	var outL []string
	if len(labels) == n {
		outL = make([]string, limit)
	}
	for i := range outV {
		src := i * (n - 1) / (limit - 1)
		outV[i] = values[src]
		if outL != nil {
			outL[i] = labels[src]
		}
	}
	return outV, outL
}

// axisStep picks a 1/2/5 tick interval giving at most maxTicks ticks.
func axisStep(peak float64, maxTicks int) float64 {
	if peak <= 0 {
		return 1
	}
	maxTicks = max(2, maxTicks)
	exp := math.Pow(10, math.Floor(math.Log10(peak/5)))
	for _, m := range []float64{1, 2, 5, 10, 20, 50, 100} {
		step := m * exp
		if math.Ceil(peak/step) <= float64(maxTicks) {
			return step
		}
	}
	return math.Ceil(peak / float64(maxTicks))
}

// FormatAxisAmount renders a chart tick as compact dollars: $0.50, $40, $1.5k.
func FormatAxisAmount(v float64) string {
	switch {
	case v >= 1e6:
		return trimZero(fmt.Sprintf("$%.1fM", v/1e6))
	case v >= 1e3:
		return trimZero(fmt.Sprintf("$%.1fk", v/1e3))
	case v >= 1:
		return fmt.Sprintf("$%.0f", v)
	default:
		return fmt.Sprintf("$%.2f", v)
	}
}

func trimZero(s string) string {
	return strings.Replace(s, ".0", "", 1)
}

func maxOf(values []float64) float64 {
	peak := 0.0
	for _, v := range values {
		if v > peak {
			peak = v
		}
	}
	return peak
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
