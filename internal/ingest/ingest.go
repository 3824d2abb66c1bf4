package ingest

import (
	"errors"
	"fmt"
	"io"

	"github.com/swipe-attendance/backend/internal/models"
	"github.com/swipe-attendance/backend/internal/sheet"
)

// ReadError wraps a failure to read the uploaded file itself.
type ReadError struct {
	Filename string
	Err      error
}

func (e *ReadError) Error() string {
	return fmt.Sprintf("reading %s: %v", e.Filename, e.Err)
}

func (e *ReadError) Unwrap() error {
	return e.Err
}

// IsStructural reports whether err aborts an import because of the file's layout.
func IsStructural(err error) bool {
	var headerErr *HeaderError
	var missingErr *MissingColumnsError
	return errors.As(err, &headerErr) || errors.As(err, &missingErr)
}

// Options configures ingestion.
type Options struct {
	Columns        []Column
	HeaderScanRows int
	Registry       *sheet.Registry
}

func (o Options) withDefaults() Options {
	if len(o.Columns) == 0 {
		o.Columns = DefaultColumns
	}
	if o.HeaderScanRows <= 0 {
		o.HeaderScanRows = DefaultHeaderScanRows
	}
	if o.Registry == nil {
		o.Registry = sheet.GetGlobalRegistry()
	}
	return o
}

// Batch is the normalized content of one uploaded document.
type Batch struct {
	Document     string
	Header       HeaderMatch
	Records      []models.Record
	SkippedRows  int // rows without an employee
	InvalidDates int
	InvalidTimes int
}

// ReadFile reads an uploaded file and normalizes it into a batch tagged with document.
func ReadFile(filename string, r io.Reader, document string, opts Options) (*Batch, error) {
	opts = opts.withDefaults()

	table, err := opts.Registry.ReadFile(filename, r)
	if err != nil {
		return nil, &ReadError{Filename: filename, Err: err}
	}
	return ProcessTable(table, document, opts)
}

// ProcessTable detects the header, normalizes columns and coerces values.
// No records are produced when the layout is rejected.
func ProcessTable(table *sheet.Table, document string, opts Options) (*Batch, error) {
	opts = opts.withDefaults()

	match, err := DetectHeader(table, opts.Columns, opts.HeaderScanRows)
	if err != nil {
		return nil, err
	}

	frame, err := Normalize(table, match, opts.Columns)
	if err != nil {
		return nil, err
	}

	batch := &Batch{
		Document: document,
		Header:   match,
		Records:  make([]models.Record, 0, len(frame.Rows)),
	}

	for i := range frame.Rows {
		employee := frame.Value(i, Employee)
		if employee == "" {
			batch.SkippedRows++
			continue
		}

		rawDate := frame.Value(i, Date)
		date := ParseDate(rawDate)
		if !date.Valid && rawDate != "" {
			batch.InvalidDates++
		}

		rawTime := frame.Value(i, Time)
		tod := ParseTime(rawTime)
		if !tod.Valid && rawTime != "" {
			batch.InvalidTimes++
		}

		batch.Records = append(batch.Records, models.Record{
			Employee:   employee,
			Date:       date,
			Time:       tod,
			CardNumber: frame.Value(i, CardNumber),
			Document:   document,
		})
	}

	return batch, nil
}
