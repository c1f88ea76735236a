package report

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/fatih/color"
)

// Alignment controls how a column's content is justified.
type Alignment int

const (
	// AlignLeft pads on the right (default).
	AlignLeft Alignment = iota
	// AlignRight pads on the left.
	AlignRight
)

// ColorFunc maps a cell value to a colored string. If nil, no color is applied.
type ColorFunc func(value string) string

// Column describes a single table column.
type Column struct {
	Header string
	Align  Alignment
	Color  ColorFunc
}

// Table renders aligned text tables to an io.Writer.
type Table struct {
	columns []Column
	rows    [][]string
}

// NewTable creates a table with the given column definitions.
func NewTable(columns ...Column) *Table {
	return &Table{columns: columns}
}

// AddRow appends a row. Values beyond the column count are ignored;
// missing values are treated as empty strings.
func (t *Table) AddRow(values ...string) {
	row := make([]string, len(t.columns))
	for i := range row {
		if i < len(values) {
			row[i] = values[i]
		}
	}
	t.rows = append(t.rows, row)
}

// Len returns the number of data rows.
func (t *Table) Len() int {
	return len(t.rows)
}

// width counts runes so currency symbols and accented names pad correctly.
func width(s string) int {
	return utf8.RuneCountInString(s)
}

// Render writes the table to w with computed column widths.
func (t *Table) Render(w io.Writer) error {
	if len(t.columns) == 0 {
		return nil
	}

	widths := make([]int, len(t.columns))
	for i, col := range t.columns {
		widths[i] = width(col.Header)
	}
	for _, row := range t.rows {
		for i, cell := range row {
			widths[i] = max(widths[i], width(cell))
		}
	}

	bold := color.New(color.Bold)
	header := make([]string, len(t.columns))
	for i, col := range t.columns {
		header[i] = bold.Sprint(pad(col.Header, widths[i], col.Align))
	}
	if err := writeLine(w, header); err != nil {
		return err
	}

	sep := make([]string, len(t.columns))
	for i, n := range widths {
		sep[i] = strings.Repeat("-", n)
	}
	if err := writeLine(w, sep); err != nil {
		return err
	}

	for _, row := range t.rows {
		parts := make([]string, len(t.columns))
		for i, col := range t.columns {
			display := row[i]
			if col.Color != nil {
				display = col.Color(row[i])
			}
			// Padding is based on the raw value, not the ANSI-colored one.
			parts[i] = padDisplay(display, widths[i]-width(row[i]), col.Align)
		}
		if err := writeLine(w, parts); err != nil {
			return err
		}
	}
	return nil
}

func pad(s string, n int, align Alignment) string {
	return padDisplay(s, n-width(s), align)
}

func padDisplay(display string, n int, align Alignment) string {
	if n < 0 {
		n = 0
	}
	if align == AlignRight {
		return strings.Repeat(" ", n) + display
	}
	return display + strings.Repeat(" ", n)
}

func writeLine(w io.Writer, parts []string) error {
	if _, err := fmt.Fprintf(w, "  %s\n", strings.TrimRight(strings.Join(parts, "  "), " ")); err != nil {
		return fmt.Errorf("render table: %w", err)
	}
	return nil
}
