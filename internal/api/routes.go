// routes.go - Route registration helpers
package api

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// Dependencies holds all handler dependencies
type Dependencies struct {
	Service AttendanceService
	Version string
	Engine  string
	Logger  *zap.Logger
	// Metrics is served at /metrics when set.
	Metrics http.Handler
	// AllowDeletion exposes DELETE /api/documents/:name.
	AllowDeletion bool
}

// Handlers holds all handler instances
type Handlers struct {
	Health   HealthHandler
	Document DocumentHandler
	Report   ReportHandler
}

// NewHandlers creates all handler instances
func NewHandlers(deps *Dependencies) *Handlers {
	return &Handlers{
		Health:   NewHealthHandler(deps.Version, deps.Engine),
		Document: NewDocumentHandler(deps.Service),
		Report:   NewReportHandler(deps.Service),
	}
}

// RegisterRoutes registers all API routes with the Echo instance
func RegisterRoutes(e *echo.Echo, deps *Dependencies) *Handlers {
	handlers := NewHandlers(deps)
	e.HTTPErrorHandler = ErrorHandler(deps.Logger)

	apiGroup := e.Group("/api")
	apiGroup.GET("/health", handlers.Health.HandleHealth)

	apiGroup.GET("/records", handlers.Document.HandleGetRecords)
	apiGroup.GET("/documents", handlers.Document.HandleListDocuments)
	apiGroup.POST("/documents", handlers.Document.HandleUploadDocument)
	apiGroup.GET("/documents/:name/source", handlers.Document.HandleGetDocumentSource)
	if deps.AllowDeletion {
		apiGroup.DELETE("/documents/:name", handlers.Document.HandleDeleteDocument)
	}

	apiGroup.GET("/filters", handlers.Report.HandleGetFilters)
	apiGroup.GET("/report", handlers.Report.HandleGetReport)
	apiGroup.GET("/report/msgpack", handlers.Report.HandleGetReportMsgpack)
	apiGroup.GET("/report/export", handlers.Report.HandleExportReport)

	if deps.Metrics != nil {
		e.GET("/metrics", echo.WrapHandler(deps.Metrics))
	}

	return handlers
}
