package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/swipe-attendance/backend/internal/ingest"
	"github.com/swipe-attendance/backend/internal/models"
)

const tableSheet = "Attendance"

// TableStore persists the attendance table as a single xlsx workbook.
// Every mutation reads the whole table and rewrites the whole file.
type TableStore struct {
	mu     sync.Mutex
	path   string
	logger *zap.Logger
}

// NewTableStore creates a TableStore backed by the workbook at path.
// The file itself is created on the first save.
func NewTableStore(path string, logger *zap.Logger) (*TableStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("creating table directory: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TableStore{path: path, logger: logger}, nil
}

// Path returns the workbook location.
func (s *TableStore) Path() string {
	return s.path
}

// Load reads every persisted record. A missing file is an empty table.
func (s *TableStore) Load() ([]models.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

// Save replaces the persisted table with records.
func (s *TableStore) Save(records []models.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.save(records)
}

// Update runs a read-modify-write cycle while holding the table lock.
// Nothing is written when fn returns an error.
func (s *TableStore) Update(fn func([]models.Record) ([]models.Record, error)) ([]models.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, err := s.load()
	if err != nil {
		return nil, err
	}

	next, err := fn(current)
	if err != nil {
		return nil, err
	}

	if err := s.save(next); err != nil {
		return nil, err
	}
	return next, nil
}

func (s *TableStore) load() ([]models.Record, error) {
	if _, err := os.Stat(s.path); errors.Is(err, os.ErrNotExist) {
		return []models.Record{}, nil
	}

	f, err := excelize.OpenFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("opening table %s: %w", s.path, err)
	}
	defer func() { _ = f.Close() }()

	rows, err := f.GetRows(f.GetSheetName(0), excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("reading table %s: %w", s.path, err)
	}
	if len(rows) == 0 {
		return []models.Record{}, nil
	}

	index := make(map[string]int, len(models.TableColumns))
	for i, name := range rows[0] {
		if _, dup := index[name]; !dup {
			index[name] = i
		}
	}
	for _, name := range models.TableColumns {
		if _, ok := index[name]; !ok {
			return nil, fmt.Errorf("table %s: missing column %q", s.path, name)
		}
	}

	cell := func(row []string, column string) string {
		i := index[column]
		if i >= len(row) {
			return ""
		}
		return row[i]
	}

	records := make([]models.Record, 0, len(rows)-1)
	for _, row := range rows[1:] {
		if len(row) == 0 {
			continue
		}
		records = append(records, models.Record{
			Employee:   cell(row, models.ColumnEmployee),
			Date:       ingest.ParseDate(cell(row, models.ColumnDate)),
			Time:       ingest.ParseTime(cell(row, models.ColumnTime)),
			CardNumber: cell(row, models.ColumnCardNumber),
			Document:   cell(row, models.ColumnDocument),
		})
	}
	return records, nil
}

func (s *TableStore) save(records []models.Record) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName(f.GetSheetName(0), tableSheet); err != nil {
		return fmt.Errorf("naming sheet: %w", err)
	}

	header := make([]interface{}, len(models.TableColumns))
	for i, name := range models.TableColumns {
		header[i] = name
	}
	if err := f.SetSheetRow(tableSheet, "A1", &header); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	if style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}}); err == nil {
		_ = f.SetCellStyle(tableSheet, "A1", "E1", style)
	}
	_ = f.SetColWidth(tableSheet, "A", "A", 32)
	_ = f.SetColWidth(tableSheet, "B", "D", 14)
	_ = f.SetColWidth(tableSheet, "E", "E", 40)

	for i, r := range records {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := []interface{}{r.Employee, nullable(r.Date.String()), nullable(r.Time.String()), r.CardNumber, r.Document}
		if err := f.SetSheetRow(tableSheet, cell, &row); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}

	// Write next to the target and rename so readers never see a partial file.
	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".attendance-*.xlsx")
	if err != nil {
		return fmt.Errorf("creating temp table: %w", err)
	}
	tmpPath := tmp.Name()
	if err := f.Write(tmp); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("writing table: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("closing temp table: %w", err)
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("replacing table: %w", err)
	}

	s.logger.Debug("table saved", zap.String("path", s.path), zap.Int("rows", len(records)))
	return nil
}

func nullable(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
