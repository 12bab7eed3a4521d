package ui

import (
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"
)

// TableColumn defines a table column with name and width.
type TableColumn struct {
	Title string
	Width int
}

// NewTable creates a non-focused bubbles table sized to its rows.
func NewTable(columns []TableColumn, rows []table.Row) table.Model {
	cols := make([]table.Column, len(columns))
	for i, c := range columns {
		cols[i] = table.Column{Title: c.Title, Width: c.Width}
	}

	t := table.New(
		table.WithColumns(cols),
		table.WithRows(rows),
		table.WithFocused(false),
		table.WithHeight(len(rows)+1),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(ColorMuted).
		BorderBottom(true).
		Bold(true).
		Foreground(ColorPrimary)
	s.Cell = s.Cell.Foreground(ColorPrimary)
	// Nothing is focused, so the selected row must look like any other.
	s.Selected = s.Cell
	t.SetStyles(s)
	return t
}

// RenderSimpleTable renders rows as a static table for CLI output.
func RenderSimpleTable(columns []TableColumn, rows [][]string) string {
	if len(rows) == 0 {
		return ""
	}
	tableRows := make([]table.Row, len(rows))
	for i, row := range rows {
		tableRows[i] = table.Row(row)
	}
	return NewTable(columns, tableRows).View()
}

// MetricRow is one line of the snapshot table. Cells are plain text; the
// table truncates to column width and would cut through escape codes.
type MetricRow struct {
	Metric string
	Value  string
	Status string
	Min    string
	Max    string
	Mean   string
}

// MetricColumns are the snapshot table's columns.
var MetricColumns = []TableColumn{
	{Title: "METRIC", Width: 13},
	{Title: "VALUE", Width: 13},
	{Title: "STATUS", Width: 18},
	{Title: "MIN", Width: 10},
	{Title: "MAX", Width: 10},
	{Title: "MEAN", Width: 10},
}

// RenderMetricTable renders the current reading and window statistics.
func RenderMetricTable(rows []MetricRow) string {
	cells := make([][]string, len(rows))
	for i, r := range rows {
		cells[i] = []string{r.Metric, r.Value, r.Status, r.Min, r.Max, r.Mean}
	}
	return RenderSimpleTable(MetricColumns, cells)
}
