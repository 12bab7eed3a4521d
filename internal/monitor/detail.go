package monitor

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/rileyhilliard/envdash/internal/feed"
	"github.com/rileyhilliard/envdash/internal/threshold"
)

// DetailPhase is the state of the detail modal.
type DetailPhase int

const (
	DetailClosed DetailPhase = iota
	DetailOpening
	DetailOpen
	DetailClosing
)

func (p DetailPhase) String() string {
	switch p {
	case DetailClosed:
		return "closed"
	case DetailOpening:
		return "opening"
	case DetailOpen:
		return "open"
	case DetailClosing:
		return "closing"
	default:
		return "unknown"
	}
}

const (
	detailGraphHeight = 6
	detailMinWidth    = 40
)

// detailState drives the modal through closed -> opening -> open -> closing.
// scale runs 0..1 and sizes the box during transitions.
type detailState struct {
	phase  DetailPhase
	metric threshold.Metric
	scale  float64
	vel    float64
}

// open shows metric. Opening while visible only swaps the content.
func (d *detailState) open(metric threshold.Metric, animate bool) {
	d.metric = metric
	switch d.phase {
	case DetailOpen, DetailOpening:
		return
	}
	if !animate {
		d.phase, d.scale, d.vel = DetailOpen, 1, 0
		return
	}
	d.phase = DetailOpening
}

// close starts the exit transition. Closing a closed modal does nothing.
func (d *detailState) close(animate bool) {
	if d.phase == DetailClosed || d.phase == DetailClosing {
		return
	}
	if !animate {
		d.phase, d.scale, d.vel = DetailClosed, 0, 0
		return
	}
	d.phase = DetailClosing
}

// step advances a transition by one frame.
func (d *detailState) step() {
	var target float64
	switch d.phase {
	case DetailOpening:
		target = 1
	case DetailClosing:
		target = 0
	default:
		return
	}

	d.scale, d.vel = modalSpring.Update(d.scale, d.vel, target)
	if math.Abs(d.scale-target) < 0.02 && math.Abs(d.vel) < 0.05 {
		d.scale, d.vel = target, 0
		if d.phase == DetailOpening {
			d.phase = DetailOpen
		} else {
			d.phase = DetailClosed
		}
	}
}

func (d detailState) visible() bool { return d.phase != DetailClosed }

func (d detailState) transitioning() bool {
	return d.phase == DetailOpening || d.phase == DetailClosing
}

var (
	detailBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorAccent).
			Padding(0, 1)

	detailTitleStyle = lipgloss.NewStyle().
				Foreground(ColorAccent).
				Bold(true)

	detailStatLabelStyle = lipgloss.NewStyle().
				Foreground(ColorTextMuted).
				Width(6)
)

// detailBoxSize is the full-size modal, border included.
func (m Model) detailBoxSize() (int, int) {
	w := m.width - 4
	if w < detailMinWidth {
		w = detailMinWidth
	}
	h := m.height - 2
	if h < 10 {
		h = 10
	}
	return w, h
}

// detailViewportSize is the scrollable area inside the open modal.
func (m Model) detailViewportSize() (int, int) {
	w, h := m.detailBoxSize()
	// border + padding, title + blank line, hint line
	return w - 4, h - 2 - 2 - 1
}

// renderDetailContent renders the scrollable body for metric.
func (m Model) renderDetailContent(metric threshold.Metric, width int) string {
	slot := m.slots[metric]

	st, err := m.snapshot.WindowStats(metric, feed.WindowSize)
	if err != nil {
		return LabelStyle.Render("Waiting for readings...")
	}
	status := threshold.Classify(metric, st.Current)

	var lines []string

	current := ValueStyle.Foreground(slot.Color).Render(formatValue(st.Current, slot.Unit))
	lines = append(lines, current+"   "+StatusBadge(status))
	lines = append(lines, "")

	lines = append(lines,
		detailStatLabelStyle.Render("Min")+formatValue(st.Min, slot.Unit),
		detailStatLabelStyle.Render("Max")+formatValue(st.Max, slot.Unit),
		detailStatLabelStyle.Render("Mean")+formatValue(st.Mean, slot.Unit),
	)
	lines = append(lines, MutedStyle.Render(fmt.Sprintf("over the last %d readings", st.Count)))
	lines = append(lines, "")

	graphWidth := width
	if graphWidth < 10 {
		graphWidth = 10
	}
	lo, hi := st.Min, st.Max
	if hi == lo {
		lo, hi = lo-1, hi+1
	}
	lines = append(lines, RenderBrailleArea(st.Values, graphWidth, detailGraphHeight, lo, hi, slot.Color))
	if axis := m.timeAxis(graphWidth); axis != "" {
		lines = append(lines, axis)
	}

	if tbl, ok := threshold.Tables[metric]; ok {
		lines = append(lines, "")
		if metric == threshold.AirQuality {
			lines = append(lines, MutedStyle.Render(fmt.Sprintf("light pollution > %d, warning > %d, danger > %d",
				threshold.AQILightPollution, threshold.AQIWarning, threshold.AQIDanger)))
		} else {
			lines = append(lines, MutedStyle.Render(fmt.Sprintf("normal %g-%g %s, danger at or beyond %g / %g",
				tbl.WarnMin, tbl.WarnMax, slot.Unit, tbl.Min, tbl.Max)))
		}
	}

	return strings.Join(lines, "\n")
}

// updateDetailViewport refreshes the viewport after data, size or metric changes.
func (m *Model) updateDetailViewport() {
	if !m.viewportReady || !m.detail.visible() {
		return
	}
	m.viewport.SetContent(m.renderDetailContent(m.detail.metric, m.viewport.Width))
}

// renderDetail renders the modal centred on screen. During transitions the
// box grows or shrinks with the spring and only shows the title.
func (m Model) renderDetail() string {
	fullW, fullH := m.detailBoxSize()
	slot := m.slots[m.detail.metric]
	title := detailTitleStyle.Render(slot.Title)

	var box string
	if m.detail.phase == DetailOpen {
		body := title + "\n\n" + m.viewport.View() + "\n" +
			MutedStyle.Render("esc close  ←/→ switch metric  ↑/↓ scroll")
		box = detailBoxStyle.Width(fullW - 2).Render(body)
	} else {
		scale := math.Max(0, math.Min(1, m.detail.scale))
		w := int(float64(fullW-2) * scale)
		if w < 4 {
			w = 4
		}
		h := int(float64(fullH-2) * scale)
		if h < 1 {
			h = 1
		}
		box = detailBoxStyle.Width(w).Height(h).Render(truncate(slot.Title, w-2))
	}

	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box)
}

// formatValue renders a value with one decimal and its unit.
func formatValue(v float64, unit string) string {
	if !isFinite(v) {
		return "--"
	}
	if unit == "" {
		return fmt.Sprintf("%.1f", v)
	}
	return fmt.Sprintf("%.1f %s", v, unit)
}

// truncate cuts s to maxLen runes, adding an ellipsis.
func truncate(s string, maxLen int) string {
	r := []rune(s)
	if maxLen <= 0 {
		return ""
	}
	if len(r) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(r[:maxLen])
	}
	return string(r[:maxLen-3]) + "..."
}
