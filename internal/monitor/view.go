package monitor

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

const defaultTitle = "envdash"

// renderDashboard renders the card grid, trend and chrome.
func (m Model) renderDashboard() string {
	var b strings.Builder

	b.WriteString(m.renderHeader())
	b.WriteString("\n")
	if m.showParticles && m.particles != nil {
		b.WriteString(m.particles.Render())
	}
	b.WriteString("\n")

	if m.banner != "" {
		b.WriteString(BannerStyle.Render(truncate(m.banner, max(m.width-2, 10))))
		b.WriteString("\n\n")
	}

	b.WriteString(m.layoutCards())

	if m.opts.ShowTrend {
		if trend := m.renderTrend(m.sectionWidth()); trend != "" {
			b.WriteString("\n")
			b.WriteString(trend)
		}
	}

	b.WriteString("\n")
	b.WriteString(m.renderFooter())
	return b.String()
}

// sectionWidth is the width of full-row sections such as the trend.
func (m Model) sectionWidth() int {
	width, columns := m.cardLayout()
	w := columns*(width+3) - 1
	if m.width > 0 && w > m.width {
		w = m.width
	}
	return w
}

// renderHeader renders the channel name and update times.
func (m Model) renderHeader() string {
	name := defaultTitle
	if m.snapshot != nil && m.snapshot.Channel.Name != "" {
		name = m.snapshot.Channel.Name
	}
	title := lipgloss.NewStyle().
		Foreground(ColorAccent).
		Bold(true).
		Render(name)

	var parts []string
	if latest, ok := m.snapshot.Latest(); ok && !latest.Time.IsZero() {
		parts = append(parts, "reading "+latest.Time.Local().Format("15:04:05"))
	}
	if !m.lastFetch.IsZero() {
		parts = append(parts, "fetched "+formatAgo(m.SecondsSinceUpdate()))
	} else {
		parts = append(parts, "connecting...")
	}
	if m.opts.Interval > 0 {
		parts = append(parts, "every "+m.opts.Interval.String())
	}

	stats := lipgloss.NewStyle().
		Foreground(ColorTextSecondary).
		Render(" | " + strings.Join(parts, " | "))

	return HeaderStyle.Render(title + stats)
}

func formatAgo(seconds int) string {
	switch seconds {
	case 0:
		return "just now"
	case 1:
		return "1s ago"
	default:
		return fmt.Sprintf("%ds ago", seconds)
	}
}

// renderFooter renders the short help line.
func (m Model) renderFooter() string {
	return FooterStyle.Render(m.help.ShortHelpView(m.keys.ShortHelp()))
}
