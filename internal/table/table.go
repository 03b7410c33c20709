// Package table renders bordered text tables whose cells may carry ANSI
// color sequences.
package table

import (
	"io"
	"regexp"
	"strings"
	"unicode/utf8"
)

// Alignment controls how a cell is padded within its column.
type Alignment int

const (
	AlignLeft Alignment = iota
	AlignRight
	AlignCenter
)

var ansiPattern = regexp.MustCompile("\x1b\\[[0-9;]*m")

func stripAnsi(s string) string {
	return ansiPattern.ReplaceAllString(s, "")
}

func visibleWidth(s string) int {
	return utf8.RuneCountInString(stripAnsi(s))
}

// Table accumulates a header and rows and writes them on Render.
type Table struct {
	writer          io.Writer
	header          []string
	rows            [][]string
	alignment       []Alignment
	headerAlignment []Alignment
}

// NewTable returns an empty table that renders to w.
func NewTable(w io.Writer) *Table {
	return &Table{writer: w}
}

func (t *Table) WithHeader(header []string) *Table {
	t.header = header
	return t
}

func (t *Table) WithColumnAlignment(alignment []Alignment) *Table {
	t.alignment = alignment
	return t
}

func (t *Table) WithHeaderAlignment(alignment []Alignment) *Table {
	t.headerAlignment = alignment
	return t
}

func (t *Table) WithRows(rows [][]string) *Table {
	t.rows = append(t.rows, rows...)
	return t
}

// Append adds a single row.
func (t *Table) Append(row []string) *Table {
	t.rows = append(t.rows, row)
	return t
}

func (t *Table) columnCount() int {
	n := len(t.header)
	for _, row := range t.rows {
		if len(row) > n {
			n = len(row)
		}
	}
	return n
}

func (t *Table) widths(columns int) []int {
	widths := make([]int, columns)
	measure := func(row []string) {
		for i, cell := range row {
			if w := visibleWidth(cell); w > widths[i] {
				widths[i] = w
			}
		}
	}
	measure(t.header)
	for _, row := range t.rows {
		measure(row)
	}
	return widths
}

// Render writes the table. Write errors are ignored.
func (t *Table) Render() {
	columns := t.columnCount()
	if columns == 0 {
		return
	}
	widths := t.widths(columns)
	var sb strings.Builder
	sb.WriteString(separator(widths))
	if len(t.header) > 0 {
		sb.WriteString(line(t.header, widths, t.headerAlignment))
		sb.WriteString(separator(widths))
	}
	for _, row := range t.rows {
		sb.WriteString(line(row, widths, t.alignment))
	}
	sb.WriteString(separator(widths))
	io.WriteString(t.writer, sb.String())
}

func separator(widths []int) string {
	var sb strings.Builder
	sb.WriteByte('+')
	for _, w := range widths {
		sb.WriteString(strings.Repeat("-", w+2))
		sb.WriteByte('+')
	}
	sb.WriteByte('\n')
	return sb.String()
}

func line(row []string, widths []int, alignment []Alignment) string {
	var sb strings.Builder
	sb.WriteByte('|')
	for i, w := range widths {
		var cell string
		if i < len(row) {
			cell = row[i]
		}
		align := AlignLeft
		if i < len(alignment) {
			align = alignment[i]
		}
		sb.WriteByte(' ')
		sb.WriteString(pad(cell, w, align))
		sb.WriteString(" |")
	}
	sb.WriteByte('\n')
	return sb.String()
}

func pad(cell string, width int, align Alignment) string {
	extra := width - visibleWidth(cell)
	if extra <= 0 {
		return cell
	}
	switch align {
	case AlignRight:
		return strings.Repeat(" ", extra) + cell
	case AlignCenter:
		left := extra / 2
		return strings.Repeat(" ", left) + cell + strings.Repeat(" ", extra-left)
	default:
		return cell + strings.Repeat(" ", extra)
	}
}
