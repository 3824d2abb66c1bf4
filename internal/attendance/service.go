// Package attendance ties ingestion, the persisted table and reporting together.
package attendance

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/swipe-attendance/backend/internal/calendar"
	"github.com/swipe-attendance/backend/internal/ingest"
	"github.com/swipe-attendance/backend/internal/metrics"
	"github.com/swipe-attendance/backend/internal/models"
	"github.com/swipe-attendance/backend/internal/report"
	"github.com/swipe-attendance/backend/internal/storage"
)

// ErrUnsupportedFile is returned for uploads whose extension is not allowed.
var ErrUnsupportedFile = errors.New("unsupported file type")

// Report outcomes recorded in metrics.
const (
	outcomeOK     = "ok"
	outcomeNoData = "no_data"
	outcomeError  = "error"
)

// Config holds the collaborators of a Service. Archive and Metrics are optional.
type Config struct {
	Table        *storage.TableStore
	Archive      *storage.Archive
	Grouper      report.Grouper
	Calendar     calendar.Calendar
	Ingest       ingest.Options
	AllowedTypes []string
	Metrics      *metrics.Metrics
	Logger       *zap.Logger
}

// Service implements the dashboard operations.
type Service struct {
	table   *storage.TableStore
	archive *storage.Archive
	grouper report.Grouper
	cal     calendar.Calendar
	opts    ingest.Options
	allowed map[string]struct{}
	metrics *metrics.Metrics
	logger  *zap.Logger
}

// New validates cfg and builds a Service.
func New(cfg Config) (*Service, error) {
	if cfg.Table == nil {
		return nil, errors.New("attendance: table store is required")
	}
	if cfg.Calendar == nil {
		return nil, errors.New("attendance: calendar is required")
	}
	if cfg.Grouper == nil {
		cfg.Grouper = report.MemoryGrouper{}
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	var allowed map[string]struct{}
	if len(cfg.AllowedTypes) > 0 {
		allowed = make(map[string]struct{}, len(cfg.AllowedTypes))
		for _, ext := range cfg.AllowedTypes {
			allowed[strings.ToLower(ext)] = struct{}{}
		}
	}

	return &Service{
		table:   cfg.Table,
		archive: cfg.Archive,
		grouper: cfg.Grouper,
		cal:     cfg.Calendar,
		opts:    cfg.Ingest,
		allowed: allowed,
		metrics: cfg.Metrics,
		logger:  cfg.Logger.Named("attendance"),
	}, nil
}

// ImportResult summarizes one accepted upload.
type ImportResult struct {
	Document     string `json:"document"`
	HeaderRow    int    `json:"headerRow"`
	Parsed       int    `json:"parsed"`
	Added        int    `json:"added"`
	Total        int    `json:"total"`
	SkippedRows  int    `json:"skippedRows"`
	InvalidDates int    `json:"invalidDates"`
	InvalidTimes int    `json:"invalidTimes"`
}

// Import reads an uploaded spreadsheet, merges it into the table and archives
// the original. The document name is the base name of filename. A rejected
// file leaves the table untouched.
func (s *Service) Import(ctx context.Context, filename string, r io.Reader) (*ImportResult, error) {
	document := filepath.Base(filename)
	if !s.isAllowed(document) {
		s.countImport(metrics.ResultRejected)
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFile, filepath.Ext(document))
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := io.ReadAll(r)
	if err != nil {
		s.countImport(metrics.ResultUnreadable)
		return nil, &ingest.ReadError{Filename: document, Err: err}
	}

	batch, err := ingest.ReadFile(document, bytes.NewReader(data), document, s.opts)
	if err != nil {
		if ingest.IsStructural(err) {
			s.countImport(metrics.ResultRejected)
		} else {
			s.countImport(metrics.ResultUnreadable)
		}
		s.logger.Warn("import rejected", zap.String("document", document), zap.Error(err))
		return nil, err
	}

	var before int
	stored, err := s.table.Update(func(existing []models.Record) ([]models.Record, error) {
		before = len(existing)
		return storage.Merge(existing, batch.Records), nil
	})
	if err != nil {
		s.countImport(metrics.ResultStoreFailed)
		return nil, fmt.Errorf("storing %s: %w", document, err)
	}

	if s.archive != nil {
		if _, err := s.archive.Save(document, bytes.NewReader(data)); err != nil {
			// The table is already written; losing the copy only affects downloads.
			s.logger.Error("archiving upload failed", zap.String("document", document), zap.Error(err))
		}
	}

	res := &ImportResult{
		Document:     document,
		HeaderRow:    batch.Header.Row,
		Parsed:       len(batch.Records),
		Added:        len(stored) - before,
		Total:        len(stored),
		SkippedRows:  batch.SkippedRows,
		InvalidDates: batch.InvalidDates,
		InvalidTimes: batch.InvalidTimes,
	}

	s.countImport(metrics.ResultOK)
	if s.metrics != nil {
		s.metrics.RecordsImported.Add(float64(res.Added))
		s.metrics.StoredRows.Set(float64(res.Total))
	}
	s.logger.Info("document imported",
		zap.String("document", document),
		zap.Int("header_row", res.HeaderRow),
		zap.Int("parsed", res.Parsed),
		zap.Int("added", res.Added),
		zap.Int("total", res.Total),
		zap.Int("invalid_dates", res.InvalidDates),
		zap.Int("invalid_times", res.InvalidTimes))

	return res, nil
}

// DeleteDocument removes every row of document and its archived uploads.
// It returns the number of rows removed.
func (s *Service) DeleteDocument(ctx context.Context, document string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	var removed int
	stored, err := s.table.Update(func(existing []models.Record) ([]models.Record, error) {
		var rest []models.Record
		rest, removed = storage.RemoveDocument(existing, document)
		if removed == 0 {
			return nil, fmt.Errorf("%w: %s", storage.ErrDocumentNotFound, document)
		}
		return rest, nil
	})
	if err != nil {
		return 0, err
	}

	if s.archive != nil {
		if _, err := s.archive.DeleteDocument(document); err != nil {
			s.logger.Error("removing archived uploads failed", zap.String("document", document), zap.Error(err))
		}
	}

	if s.metrics != nil {
		s.metrics.DocumentsDeleted.Inc()
		s.metrics.StoredRows.Set(float64(len(stored)))
	}
	s.logger.Info("document deleted", zap.String("document", document), zap.Int("rows", removed))
	return removed, nil
}

// Records returns the whole persisted table.
func (s *Service) Records(ctx context.Context) ([]models.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	records, err := s.table.Load()
	if err != nil {
		return nil, err
	}
	if s.metrics != nil {
		s.metrics.StoredRows.Set(float64(len(records)))
	}
	return records, nil
}

// Documents lists the imported documents with their row counts.
func (s *Service) Documents(ctx context.Context) ([]models.DocumentInfo, error) {
	records, err := s.Records(ctx)
	if err != nil {
		return nil, err
	}
	return storage.Documents(records), nil
}

// Month is a selectable month.
type Month struct {
	Number int    `json:"number"`
	Name   string `json:"name"`
}

// Filters are the values offered by the report selectors.
type Filters struct {
	Employees []string `json:"employees"`
	Years     []int    `json:"years"`
	Months    []Month  `json:"months"`
}

// Filters collects employees and years present in the table.
func (s *Service) Filters(ctx context.Context) (*Filters, error) {
	daily, err := s.daily(ctx)
	if err != nil {
		return nil, err
	}

	f := &Filters{
		Employees: report.Employees(daily),
		Years:     report.Years(daily),
		Months:    make([]Month, 0, 12),
	}
	if f.Employees == nil {
		f.Employees = []string{}
	}
	if f.Years == nil {
		f.Years = []int{}
	}
	for m := time.January; m <= time.December; m++ {
		f.Months = append(f.Months, Month{Number: int(m), Name: report.MonthNames[m]})
	}
	return f, nil
}

// Report builds the monthly report of one employee.
// report.ErrNoData is returned when the period is empty.
func (s *Service) Report(ctx context.Context, employee string, year int, month time.Month) (*models.MonthlyReport, error) {
	daily, err := s.daily(ctx)
	if err != nil {
		s.countReport(outcomeError)
		return nil, err
	}

	rep, err := report.Build(daily, employee, year, month, s.cal)
	switch {
	case errors.Is(err, report.ErrNoData):
		s.countReport(outcomeNoData)
		return nil, err
	case err != nil:
		s.countReport(outcomeError)
		return nil, err
	}

	s.countReport(outcomeOK)
	return rep, nil
}

// SourceFile returns the newest archived upload of document and its path on disk.
func (s *Service) SourceFile(document string) (*models.SourceFile, string, error) {
	if s.archive == nil {
		return nil, "", storage.ErrSourceNotFound
	}
	info, err := s.archive.Latest(document)
	if err != nil {
		return nil, "", err
	}
	path, err := s.archive.GetFilePath(info.ID)
	if err != nil {
		return nil, "", err
	}
	return info, path, nil
}

func (s *Service) daily(ctx context.Context) ([]models.DailySummary, error) {
	records, err := s.Records(ctx)
	if err != nil {
		return nil, err
	}
	return s.grouper.GroupDaily(ctx, records)
}

func (s *Service) isAllowed(filename string) bool {
	if s.allowed == nil {
		return true
	}
	_, ok := s.allowed[strings.ToLower(filepath.Ext(filename))]
	return ok
}

func (s *Service) countImport(result string) {
	if s.metrics != nil {
		s.metrics.Imports.WithLabelValues(result).Inc()
	}
}

func (s *Service) countReport(outcome string) {
	if s.metrics != nil {
		s.metrics.Reports.WithLabelValues(outcome).Inc()
	}
}
