// interfaces.go - Handler interface definitions for clean separation of concerns
package api

import (
	"context"
	"io"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/swipe-attendance/backend/internal/attendance"
	"github.com/swipe-attendance/backend/internal/models"
)

// HealthHandler handles health check operations
type HealthHandler interface {
	HandleHealth(c echo.Context) error
}

// DocumentHandler handles the persisted table and its source documents
type DocumentHandler interface {
	HandleGetRecords(c echo.Context) error
	HandleListDocuments(c echo.Context) error
	HandleUploadDocument(c echo.Context) error
	HandleDeleteDocument(c echo.Context) error
	HandleGetDocumentSource(c echo.Context) error
}

// ReportHandler handles filters and monthly reports
type ReportHandler interface {
	HandleGetFilters(c echo.Context) error
	HandleGetReport(c echo.Context) error
	HandleGetReportMsgpack(c echo.Context) error
	HandleExportReport(c echo.Context) error
}

// AttendanceService is the domain surface used by the handlers.
// *attendance.Service implements it.
type AttendanceService interface {
	Import(ctx context.Context, filename string, r io.Reader) (*attendance.ImportResult, error)
	DeleteDocument(ctx context.Context, document string) (int, error)
	Records(ctx context.Context) ([]models.Record, error)
	Documents(ctx context.Context) ([]models.DocumentInfo, error)
	Filters(ctx context.Context) (*attendance.Filters, error)
	Report(ctx context.Context, employee string, year int, month time.Month) (*models.MonthlyReport, error)
	SourceFile(document string) (*models.SourceFile, string, error)
}

var _ AttendanceService = (*attendance.Service)(nil)
