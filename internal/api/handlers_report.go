// handlers_report.go - Report filters, JSON/msgpack reports and xlsx export
package api

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/swipe-attendance/backend/internal/models"
	"github.com/swipe-attendance/backend/internal/report"
)

const (
	mimeMsgpack = "application/msgpack"
	mimeXLSX    = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

const noDataMessage = "no attendance data for the selected employee and period"

// ReportHandlerImpl implements the ReportHandler interface
type ReportHandlerImpl struct {
	svc AttendanceService
}

// NewReportHandler creates a new report handler instance
func NewReportHandler(svc AttendanceService) ReportHandler {
	return &ReportHandlerImpl{svc: svc}
}

// reportQuery holds the selector values of a report request
type reportQuery struct {
	Employee string
	Year     int
	Month    time.Month
}

func parseReportQuery(c echo.Context) (reportQuery, error) {
	q := reportQuery{Employee: strings.TrimSpace(c.QueryParam("employee"))}
	if q.Employee == "" {
		return q, NewValidationError("employee")
	}

	year, err := strconv.Atoi(c.QueryParam("year"))
	if err != nil || year < 1 {
		return q, NewValidationError("year")
	}
	q.Year = year

	month, err := strconv.Atoi(c.QueryParam("month"))
	if err != nil || month < 1 || month > 12 {
		return q, NewValidationError("month")
	}
	q.Month = time.Month(month)

	return q, nil
}

// HandleGetFilters returns employees, years and months available for selection
func (h *ReportHandlerImpl) HandleGetFilters(c echo.Context) error {
	f, err := h.svc.Filters(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, f)
}

// build runs the report; a nil report with nil error means the period is empty.
func (h *ReportHandlerImpl) build(c echo.Context) (*models.MonthlyReport, error) {
	q, err := parseReportQuery(c)
	if err != nil {
		return nil, err
	}

	rep, err := h.svc.Report(c.Request().Context(), q.Employee, q.Year, q.Month)
	if errors.Is(err, report.ErrNoData) {
		return nil, nil
	}
	return rep, err
}

// HandleGetReport returns the monthly report as JSON
func (h *ReportHandlerImpl) HandleGetReport(c echo.Context) error {
	rep, err := h.build(c)
	if err != nil {
		return err
	}
	if rep == nil {
		return c.JSON(http.StatusOK, noData(noDataMessage))
	}
	return c.JSON(http.StatusOK, rep)
}

// HandleGetReportMsgpack returns the monthly report encoded with msgpack
func (h *ReportHandlerImpl) HandleGetReportMsgpack(c echo.Context) error {
	rep, err := h.build(c)
	if err != nil {
		return err
	}

	var payload interface{} = rep
	if rep == nil {
		payload = noData(noDataMessage)
	}

	data, err := msgpack.Marshal(payload)
	if err != nil {
		return NewInternalError("failed to encode msgpack", err)
	}
	return c.Blob(http.StatusOK, mimeMsgpack, data)
}

// HandleExportReport returns the monthly report as an xlsx workbook
func (h *ReportHandlerImpl) HandleExportReport(c echo.Context) error {
	rep, err := h.build(c)
	if err != nil {
		return err
	}
	if rep == nil {
		return c.JSON(http.StatusOK, noData(noDataMessage))
	}

	var buf bytes.Buffer
	if err := report.WriteXLSX(&buf, rep); err != nil {
		return NewInternalError("failed to build workbook", err)
	}

	filename := fmt.Sprintf("attendance_%d_%02d.xlsx", rep.Year, rep.Month)
	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", filename))
	return c.Blob(http.StatusOK, mimeXLSX, buf.Bytes())
}
