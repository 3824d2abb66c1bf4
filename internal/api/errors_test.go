package api

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"

	"github.com/swipe-attendance/backend/internal/attendance"
	"github.com/swipe-attendance/backend/internal/ingest"
	"github.com/swipe-attendance/backend/internal/storage"
)

func TestToAPIError(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"header", &ingest.HeaderError{Reason: ingest.ReasonNoHeaderRow, Scanned: 5}, http.StatusUnprocessableEntity, "INGEST_FAILED"},
		{"missing columns", &ingest.MissingColumnsError{Missing: []string{ingest.Time}}, http.StatusUnprocessableEntity, "INGEST_FAILED"},
		{"read", &ingest.ReadError{Filename: "x.xlsx", Err: errors.New("zip: not a valid zip file")}, http.StatusBadRequest, "UNREADABLE_FILE"},
		{"unsupported", fmt.Errorf("%w: .pdf", attendance.ErrUnsupportedFile), http.StatusBadRequest, "UNSUPPORTED_FILE"},
		{"document", fmt.Errorf("%w: a.xlsx", storage.ErrDocumentNotFound), http.StatusNotFound, "NOT_FOUND"},
		{"echo", echo.NewHTTPError(http.StatusMethodNotAllowed, "nope"), http.StatusMethodNotAllowed, "HTTP_ERROR"},
		{"api", NewValidationError("year"), http.StatusBadRequest, "VALIDATION_ERROR"},
		{"unknown", errors.New("disk on fire"), http.StatusInternalServerError, "INTERNAL_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := toAPIError(tt.err)
			assert.Equal(t, tt.status, got.Status)
			assert.Equal(t, tt.code, got.Code)
		})
	}
}

func TestErrorHandler_WritesJSON(t *testing.T) {
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)

	ErrorHandler(nil)(NewNotFoundError("document", "a.xlsx"), c)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"code":"NOT_FOUND","message":"document not found: a.xlsx"}`, rec.Body.String())
}
