package attendance

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/swipe-attendance/backend/internal/calendar"
	"github.com/swipe-attendance/backend/internal/ingest"
	"github.com/swipe-attendance/backend/internal/metrics"
	"github.com/swipe-attendance/backend/internal/report"
	"github.com/swipe-attendance/backend/internal/storage"
	fixtures "github.com/swipe-attendance/backend/internal/testutil"
)

type env struct {
	svc     *Service
	table   *storage.TableStore
	archive *storage.Archive
	metrics *metrics.Metrics
}

func newEnv(t *testing.T) *env {
	t.Helper()
	dir := t.TempDir()

	table, err := storage.NewTableStore(filepath.Join(dir, "attendance_data.xlsx"), nil)
	require.NoError(t, err)
	archive, err := storage.NewArchive(filepath.Join(dir, "uploads"))
	require.NoError(t, err)
	cal, err := calendar.New("RU", nil)
	require.NoError(t, err)
	m := metrics.New()

	svc, err := New(Config{
		Table:        table,
		Archive:      archive,
		Calendar:     cal,
		AllowedTypes: []string{".xlsx", ".xls", ".csv"},
		Metrics:      m,
	})
	require.NoError(t, err)
	return &env{svc: svc, table: table, archive: archive, metrics: m}
}

func TestNew_RequiresCollaborators(t *testing.T) {
	_, err := New(Config{})
	assert.Error(t, err)
}

func TestImport(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	res, err := e.svc.Import(ctx, "/tmp/march.xlsx", bytes.NewReader(fixtures.SwipeExport(t)))
	require.NoError(t, err)

	assert.Equal(t, "march.xlsx", res.Document)
	assert.Equal(t, 2, res.HeaderRow)
	assert.Equal(t, 2, res.Parsed)
	assert.Equal(t, 2, res.Added)
	assert.Equal(t, 2, res.Total)

	records, err := e.svc.Records(ctx)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "Иванов И.И.", records[0].Employee)
	assert.Equal(t, "2024-03-05", records[0].Date.String())
	assert.Equal(t, "08:58:00", records[0].Time.String())
	assert.Equal(t, "march.xlsx", records[0].Document)

	src, path, err := e.svc.SourceFile("march.xlsx")
	require.NoError(t, err)
	assert.Equal(t, "march.xlsx", src.Document)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, fixtures.SwipeExport(t)[:4], data[:4])

	assert.Equal(t, 1.0, testutil.ToFloat64(e.metrics.Imports.WithLabelValues(metrics.ResultOK)))
	assert.Equal(t, 2.0, testutil.ToFloat64(e.metrics.StoredRows))
}

func TestImport_Idempotent(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	_, err := e.svc.Import(ctx, "march.xlsx", bytes.NewReader(fixtures.SwipeExport(t)))
	require.NoError(t, err)
	res, err := e.svc.Import(ctx, "march.xlsx", bytes.NewReader(fixtures.SwipeExport(t)))
	require.NoError(t, err)

	assert.Equal(t, 0, res.Added)
	assert.Equal(t, 2, res.Total)
}

func TestImport_SameRowsOtherDocument(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	_, err := e.svc.Import(ctx, "march.xlsx", bytes.NewReader(fixtures.SwipeExport(t)))
	require.NoError(t, err)
	res, err := e.svc.Import(ctx, "march-copy.xlsx", bytes.NewReader(fixtures.SwipeExport(t)))
	require.NoError(t, err)

	// Document is part of row identity.
	assert.Equal(t, 2, res.Added)
	assert.Equal(t, 4, res.Total)
}

func TestImport_RejectsLayoutWithoutWriting(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	_, err := e.svc.Import(ctx, "march.xlsx", bytes.NewReader(fixtures.SwipeExport(t)))
	require.NoError(t, err)

	bad := fixtures.WorkbookBytes(t, [][]interface{}{
		{"Name", "Day", "Clock"},
		{"Петров", "05.03.2024", "09:00"},
	})
	_, err = e.svc.Import(ctx, "bad.xlsx", bytes.NewReader(bad))
	require.Error(t, err)
	assert.True(t, ingest.IsStructural(err))

	var headerErr *ingest.HeaderError
	assert.ErrorAs(t, err, &headerErr)

	records, err := e.svc.Records(ctx)
	require.NoError(t, err)
	assert.Len(t, records, 2)
	_, _, err = e.svc.SourceFile("bad.xlsx")
	assert.ErrorIs(t, err, storage.ErrSourceNotFound)

	assert.Equal(t, 1.0, testutil.ToFloat64(e.metrics.Imports.WithLabelValues(metrics.ResultRejected)))
}

func TestImport_UnsupportedAndUnreadable(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	_, err := e.svc.Import(ctx, "notes.pdf", bytes.NewReader([]byte("%PDF")))
	assert.ErrorIs(t, err, ErrUnsupportedFile)

	_, err = e.svc.Import(ctx, "broken.xlsx", bytes.NewReader([]byte("not a zip")))
	var readErr *ingest.ReadError
	assert.ErrorAs(t, err, &readErr)
	assert.False(t, ingest.IsStructural(err))

	_, err = os.Stat(e.table.Path())
	assert.True(t, os.IsNotExist(err), "nothing persisted")
}

func TestDeleteDocument(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	_, err := e.svc.Import(ctx, "march.xlsx", bytes.NewReader(fixtures.SwipeExport(t)))
	require.NoError(t, err)
	april := fixtures.WorkbookBytes(t, [][]interface{}{
		{"Сотрудник", "Дата", "Время", "Карта"},
		{"Петров П.П.", "01.04.2024", "09:00", "77"},
	})
	_, err = e.svc.Import(ctx, "april.xlsx", bytes.NewReader(april))
	require.NoError(t, err)

	removed, err := e.svc.DeleteDocument(ctx, "march.xlsx")
	require.NoError(t, err)
	assert.Equal(t, 2, removed)

	docs, err := e.svc.Documents(ctx)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "april.xlsx", docs[0].Name)
	assert.Equal(t, 1, docs[0].Rows)

	assert.Empty(t, e.archive.ForDocument("march.xlsx"))
	assert.Len(t, e.archive.ForDocument("april.xlsx"), 1)

	_, err = e.svc.DeleteDocument(ctx, "march.xlsx")
	assert.ErrorIs(t, err, storage.ErrDocumentNotFound)
}

func TestFiltersAndReport(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	f, err := e.svc.Filters(ctx)
	require.NoError(t, err)
	assert.Empty(t, f.Employees)
	assert.Len(t, f.Months, 12)

	_, err = e.svc.Import(ctx, "march.xlsx", bytes.NewReader(fixtures.SwipeExport(t)))
	require.NoError(t, err)

	f, err = e.svc.Filters(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Иванов И.И."}, f.Employees)
	assert.Equal(t, []int{2024}, f.Years)
	assert.Equal(t, Month{Number: 3, Name: "Март"}, f.Months[2])

	rep, err := e.svc.Report(ctx, "Иванов И.И.", 2024, time.March)
	require.NoError(t, err)
	assert.Equal(t, "0012345", rep.CardNumber)
	assert.Equal(t, 514, rep.TotalMinutes)
	assert.Equal(t, "8 часов 34 минут", rep.TotalTime)
	assert.Equal(t, 1, rep.DaysPresent)
	assert.Equal(t, 20, rep.WorkingDays)

	_, err = e.svc.Report(ctx, "Иванов И.И.", 2024, time.April)
	assert.ErrorIs(t, err, report.ErrNoData)
	assert.Equal(t, 1.0, testutil.ToFloat64(e.metrics.Reports.WithLabelValues(outcomeNoData)))
}

