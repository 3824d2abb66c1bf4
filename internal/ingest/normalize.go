package ingest

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/swipe-attendance/backend/internal/sheet"
)

const unnamedPrefix = "Unnamed: "

// MissingColumnsError is returned when renaming did not produce every required column.
type MissingColumnsError struct {
	Missing []string
}

func (e *MissingColumnsError) Error() string {
	return fmt.Sprintf("required columns missing after rename: %s", strings.Join(e.Missing, ", "))
}

// Frame is the projection of a table onto the required logical columns.
type Frame struct {
	Columns []string   // logical names, in the order of the column list
	Rows    [][]string // one value per column
	Source  []int      // sheet row index of each frame row
}

// Value returns the cell of row i for the named column.
func (f *Frame) Value(i int, column string) string {
	for j, c := range f.Columns {
		if c == column {
			return f.Rows[i][j]
		}
	}
	return ""
}

// Normalize re-reads the table below the detected header row, renames matched
// headers to logical names, drops unnamed columns and keeps only the required ones.
func Normalize(table *sheet.Table, match HeaderMatch, columns []Column) (*Frame, error) {
	if match.Row < 0 || match.Row >= len(table.Rows) {
		return nil, fmt.Errorf("header row %d out of range", match.Row)
	}

	labels := headerLabels(table.Rows[match.Row], table.Width())

	// Later columns overwrite earlier ones when two share a literal header,
	// which leaves the earlier logical column missing.
	rename := make(map[string]string, len(columns))
	for _, col := range columns {
		if literal, ok := match.Mapping[col.Name]; ok {
			rename[literal] = col.Name
		}
	}

	index := make(map[string]int, len(columns))
	for i, label := range labels {
		if strings.HasPrefix(label, unnamedPrefix) {
			continue
		}
		if logical, ok := rename[label]; ok {
			if _, seen := index[logical]; !seen {
				index[logical] = i
			}
		}
	}

	var missing []string
	names := make([]string, len(columns))
	for i, col := range columns {
		names[i] = col.Name
		if _, ok := index[col.Name]; !ok {
			missing = append(missing, col.Name)
		}
	}
	if len(missing) > 0 {
		return nil, &MissingColumnsError{Missing: missing}
	}

	frame := &Frame{Columns: names}
	for r := match.Row + 1; r < len(table.Rows); r++ {
		values := make([]string, len(columns))
		blank := true
		for i, col := range columns {
			values[i] = table.Cell(r, index[col.Name])
			if values[i] != "" {
				blank = false
			}
		}
		if blank {
			continue
		}
		frame.Rows = append(frame.Rows, values)
		frame.Source = append(frame.Source, r)
	}

	return frame, nil
}

// headerLabels names every column of the header row: blank cells become
// "Unnamed: N" and repeated names get ".1", ".2" suffixes.
func headerLabels(row []string, width int) []string {
	labels := make([]string, width)
	seen := make(map[string]int, width)
	for i := 0; i < width; i++ {
		label := ""
		if i < len(row) {
			label = row[i]
		}
		if strings.TrimSpace(label) == "" {
			labels[i] = unnamedPrefix + strconv.Itoa(i)
			continue
		}
		if n, dup := seen[label]; dup {
			seen[label] = n + 1
			labels[i] = label + "." + strconv.Itoa(n+1)
			continue
		}
		seen[label] = 0
		labels[i] = label
	}
	return labels
}
