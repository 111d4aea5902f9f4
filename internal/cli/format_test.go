package cli

import (
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/lipgloss"
)

func TestFormatCurrency(t *testing.T) {
	cases := map[float64]string{
		0:         "$0.00",
		12.5:      "$12.50",
		1234.567:  "$1,234.57",
		-20:       "-$20.00",
		1000000.1: "$1,000,000.10",
	}
	for in, want := range cases {
		if got := FormatCurrency(in); got != want {
			t.Fatalf("FormatCurrency(%v) = %q, want %q", in, got, want)
		}
	}
	if got := FormatCompactCurrency(1234.5); got != "$1,235" {
		t.Fatalf("FormatCompactCurrency = %q", got)
	}
}

func TestFormatPercentAndDays(t *testing.T) {
	if FormatPercent(42) != "42%" || FormatPercent(42.5) != "42.5%" {
		t.Fatalf("FormatPercent = %q, %q", FormatPercent(42), FormatPercent(42.5))
	}
	if FormatDiscount(2.5) != "2.5% off" || FormatDiscount(0) != "no discount" {
		t.Fatal("FormatDiscount mismatch")
	}
	if FormatDays(1) != "1 day" || FormatDays(3) != "3 days" {
		t.Fatal("FormatDays mismatch")
	}
	if FormatDate(time.Time{}) != "-" {
		t.Fatal("zero date should render as -")
	}
	if Truncate("groceries", 5) != "groc…" || Truncate("food", 5) != "food" {
		t.Fatal("Truncate mismatch")
	}
}

func TestRenderPercentBarClamps(t *testing.T) {
	for _, pct := range []float64{-20, 0, 55, 100, 250} {
		bar := RenderPercentBar(pct, 10, okStyle)
		if w := lipgloss.Width(bar); w != 10 {
			t.Fatalf("RenderPercentBar(%v) width = %d, want 10", pct, w)
		}
	}
}

func TestRenderTableAlignment(t *testing.T) {
	out := RenderTable(Table{
		Headers: []string{"Budget", "Amount"},
		Rows: [][]string{
			{"Food", "$1.00"},
			{"---"},
			{"Total", "$100.00"},
		},
	})
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if len(lines) != 7 {
		t.Fatalf("lines = %d, want 7:\n%s", len(lines), out)
	}
	width := lipgloss.Width(lines[0])
	for i, l := range lines {
		if lipgloss.Width(l) != width {
			t.Fatalf("line %d width = %d, want %d", i, lipgloss.Width(l), width)
		}
	}
	if !strings.Contains(out, "   $1.00") {
		t.Fatalf("amount column not right-aligned:\n%s", out)
	}
}
