// Package sheet reads the first worksheet of an uploaded spreadsheet into raw cell text.
package sheet

import (
	"io"
	"strings"
)

// Table holds the raw cell values of a worksheet, row by row.
// Numeric cells keep their unformatted value, so a time of day arrives
// as a fraction ("0.5") and a date as a serial number ("45356").
type Table struct {
	Rows [][]string
}

// Cell returns the trimmed value at (row, col), or "" when out of range.
func (t *Table) Cell(row, col int) string {
	if row < 0 || row >= len(t.Rows) {
		return ""
	}
	r := t.Rows[row]
	if col < 0 || col >= len(r) {
		return ""
	}
	return strings.TrimSpace(r[col])
}

// Width returns the length of the longest row.
func (t *Table) Width() int {
	w := 0
	for _, r := range t.Rows {
		if len(r) > w {
			w = len(r)
		}
	}
	return w
}

// Reader defines the interface for spreadsheet readers.
type Reader interface {
	// Name returns the unique name of the reader.
	Name() string
	// CanRead reports whether this reader handles the given file name.
	CanRead(filename string) bool
	// Read loads the first worksheet.
	Read(r io.Reader) (*Table, error)
}
