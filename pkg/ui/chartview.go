package ui

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/mehaktrehan/titanic/pkg/charts"
)

const (
	barRune     = '█'
	boxRune     = '▒'
	whiskerRune = '─'
	medianRune  = '┃'
	capLowRune  = '├'
	capHighRune = '┤'
	outlierRune = '•'
)

// barLen scales v against maxV onto width cells. Non-zero values always get
// at least one cell.
func barLen(v, maxV float64, width int) int {
	if v <= 0 || maxV <= 0 || width <= 0 {
		return 0
	}
	n := int(math.Round(v / maxV * float64(width)))
	return min(max(n, 1), width)
}

func (t Theme) bar(n int, c lipgloss.AdaptiveColor) string {
	if n <= 0 {
		return ""
	}
	return t.Renderer.NewStyle().Foreground(c).Render(strings.Repeat(string(barRune), n))
}

func (t Theme) legend(names []string) string {
	parts := make([]string, len(names))
	for i, n := range names {
		parts[i] = t.bar(1, t.SeriesColor(i)) + " " + n
	}
	return t.MutedText.Render(strings.Join(parts, "  "))
}

func maxWidth(values []string) int {
	w := 0
	for _, v := range values {
		w = max(w, runewidth.StringWidth(v))
	}
	return w
}

func (t Theme) chartTitle(m charts.Meta, width int) string {
	return t.Title.Render(truncate(m.Title, width))
}

// renderGenderChart draws grouped horizontal bars: one group per survival
// label, one bar per sex.
func renderGenderChart(g charts.GenderSurvival, width int, t Theme) string {
	var b strings.Builder
	b.WriteString(t.chartTitle(g.Meta, width))
	b.WriteString("\n")
	b.WriteString(t.legend(g.Series))
	b.WriteString("\n")

	nameW := maxWidth(g.Series)
	countW := len(fmt.Sprint(g.Max()))
	barW := max(width-nameW-countW-4, 1)
	top := float64(g.Max())

	for i, cat := range g.Categories {
		b.WriteString("\n")
		b.WriteString(t.Label.Render(truncate(cat, width)))
		for j, s := range g.Series {
			n := g.Counts[i][j]
			fmt.Fprintf(&b, "\n  %s %s %d", padRight(s, nameW), t.bar(barLen(float64(n), top, barW), t.SeriesColor(j)), n)
		}
	}
	b.WriteString("\n")
	b.WriteString(t.MutedText.Render(fmt.Sprintf("%s by %s", g.YLabel, g.XLabel)))
	return b.String()
}

// renderAgeChart draws one horizontal bar per bin, stacked by survival label.
func renderAgeChart(h charts.AgeHistogram, width int, t Theme) string {
	var b strings.Builder
	b.WriteString(t.chartTitle(h.Meta, width))
	b.WriteString("\n")
	if h.Empty() {
		b.WriteString(t.MutedText.Render("No age data"))
		return b.String()
	}
	b.WriteString(t.legend(h.Labels))
	b.WriteString("\n")

	labels := make([]string, len(h.Bins))
	for i, bin := range h.Bins {
		labels[i] = formatNumber(bin.Low) + "–" + formatNumber(bin.High)
	}
	labelW := maxWidth(labels)
	countW := len(fmt.Sprint(h.MaxTotal()))
	barW := max(width-labelW-countW-3, 1)
	top := float64(h.MaxTotal())

	for i, bin := range h.Bins {
		b.WriteString("\n")
		b.WriteString(padLeft(labels[i], labelW))
		b.WriteString(" ")
		// Stack by cumulative length so rounding never overshoots the total.
		drawn, cum := 0, 0
		for li, c := range bin.Counts {
			cum += c
			end := barLen(float64(cum), top, barW)
			if c > 0 && end > drawn {
				b.WriteString(t.bar(end-drawn, t.SeriesColor(li)))
				drawn = end
			}
		}
		fmt.Fprintf(&b, " %d", bin.Total())
	}
	b.WriteString("\n")
	note := fmt.Sprintf("%s (%d bins)", h.XLabel, len(h.Bins))
	if h.Missing > 0 {
		note += fmt.Sprintf(", %d without age", h.Missing)
	}
	b.WriteString(t.MutedText.Render(note))
	return b.String()
}

// boxLine lays one box plot out on a width-cell axis spanning [lo, hi].
func boxLine(box charts.Box, lo, hi float64, width int) string {
	if width < 2 {
		width = 2
	}
	pos := func(v float64) int {
		if hi <= lo {
			return 0
		}
		p := int(math.Round((v - lo) / (hi - lo) * float64(width-1)))
		return min(max(p, 0), width-1)
	}
	line := []rune(strings.Repeat(" ", width))
	for i := pos(box.LowWhisk); i <= pos(box.HighWhisk); i++ {
		line[i] = whiskerRune
	}
	for i := pos(box.Q1); i <= pos(box.Q3); i++ {
		line[i] = boxRune
	}
	line[pos(box.LowWhisk)] = capLowRune
	line[pos(box.HighWhisk)] = capHighRune
	line[pos(box.Median)] = medianRune
	for _, o := range box.Outliers {
		line[pos(o)] = outlierRune
	}
	return string(line)
}

// renderFareChart draws one horizontal box plot per class on a shared axis.
func renderFareChart(f charts.FareBoxPlot, width int, t Theme) string {
	var b strings.Builder
	b.WriteString(t.chartTitle(f.Meta, width))
	b.WriteString("\n")

	lo, hi := f.Range()
	classW := maxWidth(classNames(f.Boxes))
	axisW := max(width-classW-1, 2)

	for i, box := range f.Boxes {
		b.WriteString("\n")
		b.WriteString(t.Label.Render(padLeft(box.Class, classW)))
		b.WriteString(" ")
		b.WriteString(t.Renderer.NewStyle().Foreground(t.SeriesColor(i)).Render(boxLine(box, lo, hi, axisW)))
		b.WriteString("\n")
		b.WriteString(t.MutedText.Render(padRight("", classW+1) + truncate(
			fmt.Sprintf("med %s  IQR %s–%s  n=%d", formatNumber(box.Median), formatNumber(box.Q1), formatNumber(box.Q3), box.N),
			axisW)))
	}

	b.WriteString("\n")
	loS, hiS := formatNumber(lo), formatNumber(hi)
	gap := max(axisW-runewidth.StringWidth(loS)-runewidth.StringWidth(hiS), 1)
	b.WriteString(t.MutedText.Render(padRight("", classW+1) + loS + strings.Repeat(" ", gap) + hiS))
	b.WriteString("\n")
	b.WriteString(t.MutedText.Render(fmt.Sprintf("%s by %s", f.YLabel, f.XLabel)))
	return b.String()
}

func classNames(boxes []charts.Box) []string {
	out := make([]string, len(boxes))
	for i, b := range boxes {
		out[i] = b.Class
	}
	return out
}

// renderChartPanels lays the three charts out side by side, or stacked when
// width is too narrow.
func renderChartPanels(set *charts.Set, width int, t Theme) string {
	if width < StackedBreakout {
		inner := max(width-4, MinPanelWidth)
		return lipgloss.JoinVertical(lipgloss.Left,
			t.Panel.Width(inner+2).Render(renderGenderChart(set.Gender, inner, t)),
			t.Panel.Width(inner+2).Render(renderAgeChart(set.Age, inner, t)),
			t.Panel.Width(inner+2).Render(renderFareChart(set.Fare, inner, t)),
		)
	}
	// Each panel spends 4 cells on border and padding.
	inner := width/3 - 4
	return lipgloss.JoinHorizontal(lipgloss.Top,
		t.Panel.Width(inner+2).Render(renderGenderChart(set.Gender, inner, t)),
		t.Panel.Width(inner+2).Render(renderAgeChart(set.Age, inner, t)),
		t.Panel.Width(inner+2).Render(renderFareChart(set.Fare, inner, t)),
	)
}
