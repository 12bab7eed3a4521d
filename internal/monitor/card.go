package monitor

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/rileyhilliard/envdash/internal/feed"
	"github.com/rileyhilliard/envdash/internal/threshold"
)

// Card layout constants
const (
	cardMinWidth  = 22
	cardMaxWidth  = 38
	cardMaxColumn = 4
)

// cardState is the displayed state of one metric card.
type cardState struct {
	value   easedValue
	status  threshold.Status
	visible bool
}

var cardDividerStyle = lipgloss.NewStyle().
	Foreground(ColorBorder)

func renderCardDivider(width int) string {
	return cardDividerStyle.Render(strings.Repeat("─", width))
}

// padRight pads content to width display cells.
func padRight(content string, width int) string {
	if w := lipgloss.Width(content); w < width {
		return content + strings.Repeat(" ", width-w)
	}
	return content
}

// renderCard renders one metric card.
func (m Model) renderCard(idx int, width int, selected bool) string {
	metric := threshold.All[idx]
	slot := m.slots[metric]
	card := m.cards[idx]

	style := CardStyle.Width(width)
	if selected {
		style = CardSelectedStyle.Width(width)
	}
	innerWidth := width - 2

	title := CardTitleStyle.Render(slot.Title)
	if slot.Key != "" {
		hint := MutedStyle.Render("[" + slot.Key + "]")
		gap := innerWidth - lipgloss.Width(title) - lipgloss.Width(hint)
		if gap < 1 {
			gap = 1
		}
		title = title + strings.Repeat(" ", gap) + hint
	}

	lines := []string{title, renderCardDivider(innerWidth)}

	if !card.value.set || !card.visible {
		lines = append(lines,
			MutedStyle.Render(StatusPending+" waiting for data"),
			"",
			"",
		)
		return style.Render(strings.Join(lines, "\n"))
	}

	value := ValueStyle.Foreground(slot.Color).Render(formatValue(card.value.Value(), slot.Unit))
	lines = append(lines, value)
	lines = append(lines, StatusBadge(card.status))

	spark := RenderMiniSparkline(m.snapshot.Series(metric, feed.WindowSize), innerWidth)
	lines = append(lines, lipgloss.NewStyle().Foreground(slot.Color).Render(spark))

	for i := range lines {
		lines[i] = padRight(lines[i], innerWidth)
	}
	return style.Render(strings.Join(lines, "\n"))
}

// cardLayout returns the card width and the number of cards per row.
func (m Model) cardLayout() (width, columns int) {
	n := len(threshold.All)
	avail := m.width - 2
	if avail < cardMinWidth {
		return cardMinWidth, 1
	}

	// Each card adds 2 border columns and a right margin.
	columns = avail / (cardMinWidth + 3)
	if columns > cardMaxColumn {
		columns = cardMaxColumn
	}
	if columns > n {
		columns = n
	}
	if columns == 3 {
		columns = 2 // keep the grid balanced
	}
	if columns < 1 {
		columns = 1
	}

	width = avail/columns - 3
	if width > cardMaxWidth {
		width = cardMaxWidth
	}
	if width < cardMinWidth {
		width = cardMinWidth
	}
	return width, columns
}

// layoutCards arranges the cards into rows.
func (m Model) layoutCards() string {
	width, columns := m.cardLayout()

	var rows []string
	var row []string
	for i := range threshold.All {
		row = append(row, m.renderCard(i, width, i == m.selected))
		if len(row) == columns {
			rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, row...))
			row = nil
		}
	}
	if len(row) > 0 {
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, row...))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}
