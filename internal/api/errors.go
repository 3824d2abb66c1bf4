// errors.go - Structured error handling for API responses
package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/swipe-attendance/backend/internal/attendance"
	"github.com/swipe-attendance/backend/internal/ingest"
	"github.com/swipe-attendance/backend/internal/storage"
)

// APIError represents a structured API error response
type APIError struct {
	Status  int    `json:"-"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

// Error implements the error interface
func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewBadRequestError creates a 400 Bad Request error
func NewBadRequestError(message string, cause error) *APIError {
	err := &APIError{
		Status:  http.StatusBadRequest,
		Code:    "BAD_REQUEST",
		Message: message,
	}
	if cause != nil {
		err.Details = cause.Error()
	}
	return err
}

// NewValidationError creates a 400 validation error for a specific field
func NewValidationError(field string) *APIError {
	return &APIError{
		Status:  http.StatusBadRequest,
		Code:    "VALIDATION_ERROR",
		Message: fmt.Sprintf("validation failed for field: %s", field),
	}
}

// NewNotFoundError creates a 404 Not Found error
func NewNotFoundError(resource string, id string) *APIError {
	return &APIError{
		Status:  http.StatusNotFound,
		Code:    "NOT_FOUND",
		Message: fmt.Sprintf("%s not found: %s", resource, id),
	}
}

// NewIngestError creates a 422 error for a file whose layout was rejected
func NewIngestError(message string, cause error) *APIError {
	err := &APIError{
		Status:  http.StatusUnprocessableEntity,
		Code:    "INGEST_FAILED",
		Message: message,
	}
	if cause != nil {
		err.Details = cause.Error()
	}
	return err
}

// NewInternalError creates a 500 Internal Server Error
func NewInternalError(message string, cause error) *APIError {
	err := &APIError{
		Status:  http.StatusInternalServerError,
		Code:    "INTERNAL_ERROR",
		Message: message,
	}
	if cause != nil {
		err.Details = cause.Error()
	}
	return err
}

// toAPIError maps domain errors to their HTTP representation.
func toAPIError(err error) *APIError {
	var (
		apiErr     *APIError
		httpErr    *echo.HTTPError
		headerErr  *ingest.HeaderError
		missingErr *ingest.MissingColumnsError
		readErr    *ingest.ReadError
	)

	switch {
	case errors.As(err, &apiErr):
		return apiErr
	case errors.As(err, &headerErr):
		return NewIngestError("no header row found", err)
	case errors.As(err, &missingErr):
		return NewIngestError("required columns missing", err)
	case errors.Is(err, attendance.ErrUnsupportedFile):
		return &APIError{
			Status:  http.StatusBadRequest,
			Code:    "UNSUPPORTED_FILE",
			Message: "file type is not allowed",
			Details: err.Error(),
		}
	case errors.As(err, &readErr):
		return &APIError{
			Status:  http.StatusBadRequest,
			Code:    "UNREADABLE_FILE",
			Message: "file could not be read",
			Details: err.Error(),
		}
	case errors.Is(err, storage.ErrDocumentNotFound):
		return &APIError{Status: http.StatusNotFound, Code: "NOT_FOUND", Message: err.Error()}
	case errors.Is(err, storage.ErrSourceNotFound):
		return &APIError{Status: http.StatusNotFound, Code: "NOT_FOUND", Message: err.Error()}
	case errors.As(err, &httpErr):
		return &APIError{
			Status:  httpErr.Code,
			Code:    "HTTP_ERROR",
			Message: fmt.Sprintf("%v", httpErr.Message),
		}
	default:
		return NewInternalError("an unexpected error occurred", err)
	}
}

// ErrorHandler returns the echo error handler writing APIError bodies.
// Usage: e.HTTPErrorHandler = api.ErrorHandler(logger)
func ErrorHandler(logger *zap.Logger) echo.HTTPErrorHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		apiErr := toAPIError(err)
		if apiErr.Status >= http.StatusInternalServerError {
			logger.Error("request failed",
				zap.String("method", c.Request().Method),
				zap.String("uri", c.Request().RequestURI),
				zap.Error(err))
		}

		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(apiErr.Status)
			return
		}
		_ = c.JSON(apiErr.Status, apiErr)
	}
}
