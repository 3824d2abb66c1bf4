// Package ingest turns an uploaded spreadsheet into a batch of attendance records.
//
// Ingestion runs in three steps: DetectHeader finds the header row by fuzzy
// column names, Normalize renames and projects the columns, and the date/time
// normalizer coerces cell values into canonical forms.
package ingest

import (
	"fmt"
	"strings"

	"github.com/swipe-attendance/backend/internal/sheet"
)

// DefaultHeaderScanRows is how many leading rows may hold the header.
const DefaultHeaderScanRows = 5

// Logical column names.
const (
	Employee   = "employee"
	Date       = "date"
	Time       = "time"
	CardNumber = "card_number"
)

// Column describes a required logical column and the substrings that identify its header.
type Column struct {
	Name       string
	Substrings []string
}

// DefaultColumns are the columns every import must provide, in mapping order.
var DefaultColumns = []Column{
	{Name: Employee, Substrings: []string{"Сотрудник", "Employee"}},
	{Name: Date, Substrings: []string{"Дата", "Date"}},
	{Name: Time, Substrings: []string{"Время", "Time"}},
	{Name: CardNumber, Substrings: []string{"Карта", "Card"}},
}

// HeaderMatch is a detected header row.
type HeaderMatch struct {
	Row     int               // zero-based row index
	Mapping map[string]string // logical name -> literal header text
}

// HeaderError is returned when no header row qualifies.
type HeaderError struct {
	Reason  string
	Scanned int
}

func (e *HeaderError) Error() string {
	return fmt.Sprintf("header not found (%s): no row among the first %d contains all required columns", e.Reason, e.Scanned)
}

// ReasonNoHeaderRow is the HeaderError reason for a failed scan.
const ReasonNoHeaderRow = "no_header_row"

// DetectHeader scans the first maxRows rows for a row in which every column
// finds a cell containing one of its substrings, case-insensitively.
// Within a row the first matching cell wins for each column.
func DetectHeader(table *sheet.Table, columns []Column, maxRows int) (HeaderMatch, error) {
	if maxRows <= 0 {
		maxRows = DefaultHeaderScanRows
	}
	scanned := min(maxRows, len(table.Rows))

	for i := 0; i < scanned; i++ {
		mapping := matchRow(table.Rows[i], columns)
		if len(mapping) == len(columns) {
			return HeaderMatch{Row: i, Mapping: mapping}, nil
		}
	}

	return HeaderMatch{}, &HeaderError{Reason: ReasonNoHeaderRow, Scanned: scanned}
}

func matchRow(row []string, columns []Column) map[string]string {
	mapping := make(map[string]string, len(columns))
	for _, col := range columns {
		for _, cell := range row {
			if containsAny(cell, col.Substrings) {
				mapping[col.Name] = cell
				break
			}
		}
	}
	return mapping
}

func containsAny(cell string, substrings []string) bool {
	lower := strings.ToLower(cell)
	for _, sub := range substrings {
		if strings.Contains(lower, strings.ToLower(sub)) {
			return true
		}
	}
	return false
}
