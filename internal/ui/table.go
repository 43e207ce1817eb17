package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Column defines a table column. A zero Width sizes the column to its
// widest cell.
type Column struct {
	Title string
	Width int
}

// Row is a slice of cell values.
type Row []string

// Table renders a lipgloss-styled table.
type Table struct {
	Columns []Column
	Rows    []Row
	SelIdx  int // -1 = none
}

// NewTable creates a new table.
func NewTable(cols ...Column) *Table {
	return &Table{Columns: cols, SelIdx: -1}
}

// AddRow appends a row.
func (t *Table) AddRow(cells ...string) {
	t.Rows = append(t.Rows, Row(cells))
}

var (
	headerStyle = lipgloss.NewStyle().Foreground(ColorHighlight).Bold(true)
	cellStyle   = lipgloss.NewStyle().Foreground(ColorValue)
)

// Render returns the full table as a string. Cells are padded by hand so a
// long value is cut at the column width instead of wrapping.
func (t *Table) Render() string {
	widths := t.widths()
	var sb strings.Builder

	line := func(cells []string, style func(i int) lipgloss.Style) {
		parts := make([]string, len(widths))
		for i, w := range widths {
			v := ""
			if i < len(cells) {
				v = cells[i]
			}
			parts[i] = style(i).Render(pad(v, w))
		}
		sb.WriteString(strings.TrimRight(strings.Join(parts, " "), " "))
		sb.WriteString("\n")
	}

	titles := make([]string, len(t.Columns))
	dividers := make([]string, len(t.Columns))
	for i, col := range t.Columns {
		titles[i] = col.Title
		dividers[i] = strings.Repeat("-", widths[i])
	}
	line(titles, func(int) lipgloss.Style { return headerStyle })
	line(dividers, func(int) lipgloss.Style { return StyleMeta })

	for r, row := range t.Rows {
		style := cellStyle
		if r == t.SelIdx {
			style = StyleSelected
		}
		line(row, func(int) lipgloss.Style { return style })
	}
	return sb.String()
}

func (t *Table) widths() []int {
	out := make([]int, len(t.Columns))
	for i, col := range t.Columns {
		if col.Width > 0 {
			out[i] = col.Width
			continue
		}
		w := len([]rune(col.Title))
		for _, row := range t.Rows {
			if i < len(row) && len([]rune(row[i])) > w {
				w = len([]rune(row[i]))
			}
		}
		out[i] = w
	}
	return out
}

// pad returns s left-aligned in exactly width runes, truncating with "…".
func pad(s string, width int) string {
	r := []rune(s)
	switch {
	case width <= 0:
		return ""
	case len(r) > width:
		return string(r[:width-1]) + "…"
	default:
		return s + strings.Repeat(" ", width-len(r))
	}
}

// KeyValueBlock renders key-value pairs in a bordered box.
func KeyValueBlock(title string, pairs [][2]string) string {
	var sb strings.Builder
	if title != "" {
		sb.WriteString(StyleTitle.Render(title))
		sb.WriteString("\n")
	}
	for _, p := range pairs {
		key := StyleMeta.Render(fmt.Sprintf("%-22s", p[0]+":"))
		sb.WriteString("  " + key + " " + StyleValue.Render(p[1]) + "\n")
	}
	return StyleBorder.Render(sb.String())
}
