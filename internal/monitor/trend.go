package monitor

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/rileyhilliard/envdash/internal/feed"
	"github.com/rileyhilliard/envdash/internal/threshold"
)

const trendHeight = 6

// rightAxisMetrics share the right-hand axis; the rest use the left.
var rightAxisMetrics = map[threshold.Metric]bool{
	threshold.Pressure:   true,
	threshold.AirQuality: true,
}

// trendSeries builds one Series per metric over the window.
func (m Model) trendSeries() []Series {
	series := make([]Series, 0, len(threshold.All))
	for _, metric := range threshold.All {
		slot := m.slots[metric]
		series = append(series, Series{
			Name:   slot.Title,
			Values: m.snapshot.Series(metric, feed.WindowSize),
			Color:  slot.Color,
			Right:  rightAxisMetrics[metric],
		})
	}
	return series
}

// renderTrend renders the trend section: dual-axis chart, time labels and
// legend, framed like the other sections.
func (m Model) renderTrend(width int) string {
	if m.snapshot.Empty() {
		return ""
	}
	series := m.trendSeries()
	left, _ := axisFor(series, false)
	right, _ := axisFor(series, true)

	leftLabels := [2]string{axisLabel(left.Max), axisLabel(left.Min)}
	rightLabels := [2]string{axisLabel(right.Max), axisLabel(right.Min)}
	labelW := max(lipgloss.Width(leftLabels[0]), lipgloss.Width(leftLabels[1]))
	rightW := max(lipgloss.Width(rightLabels[0]), lipgloss.Width(rightLabels[1]))

	// "│ " + label + " " + chart + " " + label + " │"
	chartW := width - 4 - labelW - rightW - 2
	if chartW < 10 {
		chartW = 10
	}
	chart := RenderTrendChart(series, chartW, trendHeight)

	n := len(m.snapshot.Window(feed.WindowSize))
	header := SectionHeader("Trend", fmt.Sprintf("last %d readings", n), width)

	lines := []string{header}
	for i, row := range chart {
		l, r := strings.Repeat(" ", labelW), strings.Repeat(" ", rightW)
		switch i {
		case 0:
			l, r = padLeft(leftLabels[0], labelW), padRight(rightLabels[0], rightW)
		case len(chart) - 1:
			l, r = padLeft(leftLabels[1], labelW), padRight(rightLabels[1], rightW)
		}
		content := MutedStyle.Render(l) + " " + row + " " + MutedStyle.Render(r)
		lines = append(lines, SectionContentLine(content, width))
	}

	if axis := m.timeAxis(chartW); axis != "" {
		pad := strings.Repeat(" ", labelW+1)
		lines = append(lines, SectionContentLine(pad+axis, width))
	}
	lines = append(lines, SectionContentLine(m.renderLegend(), width))
	lines = append(lines, SectionFooter(width))
	return strings.Join(lines, "\n")
}

// renderLegend lists left-axis series, a separator, then right-axis series.
func (m Model) renderLegend() string {
	var left, right []string
	for _, metric := range threshold.All {
		slot := m.slots[metric]
		entry := lipgloss.NewStyle().Foreground(slot.Color).Render(StatusDot) + " " +
			LabelStyle.Render(fmt.Sprintf("%s %s", slot.Title, slot.Unit))
		if rightAxisMetrics[metric] {
			right = append(right, entry)
		} else {
			left = append(left, entry)
		}
	}
	return strings.Join(left, "  ") + MutedStyle.Render("  │  ") + strings.Join(right, "  ")
}

// timeAxis renders the first and last reading times at either end of width.
func (m Model) timeAxis(width int) string {
	window := m.snapshot.Window(feed.WindowSize)
	if len(window) == 0 {
		return ""
	}
	first := window[0].Time.Local().Format("15:04")
	last := window[len(window)-1].Time.Local().Format("15:04")
	if len(window) == 1 {
		return MutedStyle.Render(padLeft(last, width))
	}
	gap := width - len(first) - len(last)
	if gap < 1 {
		gap = 1
	}
	return MutedStyle.Render(first + strings.Repeat(" ", gap) + last)
}

func axisLabel(v float64) string {
	return fmt.Sprintf("%.0f", v)
}

func padLeft(s string, width int) string {
	if w := lipgloss.Width(s); w < width {
		return strings.Repeat(" ", width-w) + s
	}
	return s
}
