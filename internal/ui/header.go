package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// HeaderInfo contains information to display in the header.
type HeaderInfo struct {
	Title    string // defaults to "envdash"
	Subtitle string // e.g. the channel name
	Detail   string // muted line under the subtitle
}

// HeaderWidth is the default width of the header divider
const HeaderWidth = 50

// RenderHeader renders a title line, optional subtitle and detail, and a divider.
func RenderHeader(info HeaderInfo) string {
	title := info.Title
	if title == "" {
		title = "envdash"
	}

	var b strings.Builder
	b.WriteString(lipgloss.NewStyle().Foreground(ColorNeonPink).Bold(true).Render(title))
	if info.Subtitle != "" {
		b.WriteString(" ")
		b.WriteString(lipgloss.NewStyle().Foreground(ColorNeonCyan).Render(info.Subtitle))
	}
	b.WriteString("\n")

	if info.Detail != "" {
		b.WriteString(MutedStyle().Render(info.Detail))
		b.WriteString("\n")
	}

	b.WriteString(lipgloss.NewStyle().Foreground(ColorGlassBorder).Render(strings.Repeat("━", HeaderWidth)))
	b.WriteString("\n")
	return b.String()
}
