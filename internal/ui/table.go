package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Align selects how a column pads its cells.
type Align uint8

const (
	AlignLeft Align = iota
	AlignRight
)

// Column describes one table column.
type Column struct {
	Title string
	Align Align
}

// Table collects rows and renders them with columns padded to the widest
// cell. Widths are measured in display cells, not bytes.
type Table struct {
	Columns []Column
	rows    [][]string
	color   bool
	printer *message.Printer
}

// NewTable returns a table. color enables a bold header.
func NewTable(color bool, cols ...Column) *Table {
	return &Table{
		Columns: cols,
		color:   color,
		printer: message.NewPrinter(language.English),
	}
}

// Row appends a row. Missing cells are blank; extra cells are dropped.
func (t *Table) Row(cells ...string) {
	row := make([]string, len(t.Columns))
	copy(row, cells)
	t.rows = append(t.rows, row)
}

// Len is the number of rows added so far.
func (t *Table) Len() int { return len(t.rows) }

// Number formats n with thousands separators.
func (t *Table) Number(n uint64) string { return t.printer.Sprintf("%d", n) }

// Hex formats an address.
func (t *Table) Hex(n uint64) string { return fmt.Sprintf("%#x", n) }

func (t *Table) widths() []int {
	w := make([]int, len(t.Columns))
	for i, c := range t.Columns {
		w[i] = runewidth.StringWidth(c.Title)
	}
	for _, row := range t.rows {
		for i, cell := range row {
			w[i] = max(w[i], runewidth.StringWidth(cell))
		}
	}
	return w
}

// Render writes the table to w.
func (t *Table) Render(w io.Writer) error {
	widths := t.widths()
	var b strings.Builder

	header := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		header[i] = pad(c.Title, widths[i], c.Align)
	}
	line := strings.TrimRight(strings.Join(header, "  "), " ")
	if t.color {
		line = lipgloss.NewStyle().Bold(true).Render(line)
	}
	b.WriteString(line)
	b.WriteByte('\n')

	for _, row := range t.rows {
		cells := make([]string, len(row))
		for i, cell := range row {
			cells[i] = pad(cell, widths[i], t.Columns[i].Align)
		}
		b.WriteString(strings.TrimRight(strings.Join(cells, "  "), " "))
		b.WriteByte('\n')
	}
	_, err := io.WriteString(w, b.String())
	return err
}

func pad(s string, width int, align Align) string {
	gap := width - runewidth.StringWidth(s)
	if gap <= 0 {
		return s
	}
	if align == AlignRight {
		return strings.Repeat(" ", gap) + s
	}
	return s + strings.Repeat(" ", gap)
}
