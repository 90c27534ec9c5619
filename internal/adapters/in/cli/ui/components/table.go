// Package components holds reusable CLI output components.
package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/mattn/go-runewidth"
	"github.com/rivo/uniseg"

	"github.com/bnema/ferry/internal/adapters/in/cli/ui/styles"
)

// Column is a table column. A zero Width leaves the column unbounded.
type Column struct {
	Title string
	Width int
}

// Table renders rows under columns with a rounded border.
type Table struct {
	columns     []Column
	rows        [][]string
	headerStyle lipgloss.Style
	cellStyle   lipgloss.Style
}

// NewTable creates a table with ferry's default styles.
func NewTable(columns []Column, rows [][]string) *Table {
	return &Table{
		columns: columns,
		rows:    rows,
		headerStyle: lipgloss.NewStyle().
			Bold(true).
			Foreground(styles.ColorPrimary).
			Padding(0, 1),
		cellStyle: lipgloss.NewStyle().
			Foreground(styles.ColorText).
			Padding(0, 1),
	}
}

// Plain drops colors and padding styles, for piping output.
func (t *Table) Plain() *Table {
	t.headerStyle = lipgloss.NewStyle().Padding(0, 1)
	t.cellStyle = lipgloss.NewStyle().Padding(0, 1)
	return t
}

// Render renders the table as a string.
func (t *Table) Render() string {
	if len(t.columns) == 0 {
		return ""
	}

	headers := make([]string, len(t.columns))
	for i, col := range t.columns {
		headers[i] = truncateCell(col.Title, col.Width)
	}

	rows := make([][]string, len(t.rows))
	for r, row := range t.rows {
		rows[r] = make([]string, len(row))
		for c, cell := range row {
			rows[r][c] = truncateCell(cell, t.width(c))
		}
	}

	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(styles.ColorBorder)).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			s := t.cellStyle
			if row == table.HeaderRow {
				s = t.headerStyle
			}
			if w := t.width(col); w > 0 {
				// Padding is inside the width.
				s = s.Width(w + 2).MaxWidth(w + 2)
			}
			return s
		}).
		String()
}

func (t *Table) width(col int) int {
	if col < 0 || col >= len(t.columns) {
		return 0
	}
	return t.columns[col].Width
}

// truncateCell shortens value to maxWidth display columns, ending in "...".
// Styled (ANSI) values are left untouched.
func truncateCell(value string, maxWidth int) string {
	if strings.Contains(value, "\x1b[") {
		return value
	}
	if maxWidth <= 0 || runewidth.StringWidth(value) <= maxWidth {
		return value
	}
	if maxWidth <= 3 {
		return strings.Repeat(".", maxWidth)
	}

	target := maxWidth - 3
	var b strings.Builder
	width := 0
	g := uniseg.NewGraphemes(value)
	for g.Next() {
		grapheme := g.Str()
		w := runewidth.StringWidth(grapheme)
		if width+w > target {
			break
		}
		b.WriteString(grapheme)
		width += w
	}

	if b.Len() == 0 {
		return strings.Repeat(".", maxWidth)
	}
	return b.String() + "..."
}
