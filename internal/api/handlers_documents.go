// handlers_documents.go - Upload, listing and deletion of imported documents
package api

import (
	"net/http"
	"net/url"
	"path/filepath"

	"github.com/labstack/echo/v4"
)

// DocumentHandlerImpl implements the DocumentHandler interface
type DocumentHandlerImpl struct {
	svc AttendanceService
}

// NewDocumentHandler creates a new document handler instance
func NewDocumentHandler(svc AttendanceService) DocumentHandler {
	return &DocumentHandlerImpl{svc: svc}
}

// HandleGetRecords returns the whole persisted table
func (h *DocumentHandlerImpl) HandleGetRecords(c echo.Context) error {
	records, err := h.svc.Records(c.Request().Context())
	if err != nil {
		return err
	}
	if len(records) == 0 {
		return c.JSON(http.StatusOK, noData("no records have been imported yet"))
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"records": records,
		"total":   len(records),
	})
}

// HandleListDocuments returns the imported documents with row counts
func (h *DocumentHandlerImpl) HandleListDocuments(c echo.Context) error {
	docs, err := h.svc.Documents(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"documents": docs,
	})
}

// HandleUploadDocument accepts a multipart "file" and imports it
func (h *DocumentHandlerImpl) HandleUploadDocument(c echo.Context) error {
	file, err := c.FormFile("file")
	if err != nil {
		return NewBadRequestError("no file provided", err)
	}

	src, err := file.Open()
	if err != nil {
		return NewBadRequestError("failed to open uploaded file", err)
	}
	defer src.Close()

	res, err := h.svc.Import(c.Request().Context(), filepath.Base(file.Filename), src)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, res)
}

// HandleDeleteDocument removes every row of a document
func (h *DocumentHandlerImpl) HandleDeleteDocument(c echo.Context) error {
	name, err := documentParam(c)
	if err != nil {
		return err
	}

	removed, err := h.svc.DeleteDocument(c.Request().Context(), name)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"document": name,
		"removed":  removed,
	})
}

// HandleGetDocumentSource downloads the newest archived upload of a document
func (h *DocumentHandlerImpl) HandleGetDocumentSource(c echo.Context) error {
	name, err := documentParam(c)
	if err != nil {
		return err
	}

	info, path, err := h.svc.SourceFile(name)
	if err != nil {
		return err
	}
	return c.Attachment(path, info.Document)
}

func documentParam(c echo.Context) (string, error) {
	raw := c.Param("name")
	name, err := url.PathUnescape(raw)
	if err != nil || name == "" {
		return "", NewValidationError("name")
	}
	return name, nil
}

func noData(message string) map[string]interface{} {
	return map[string]interface{}{
		"noData":  true,
		"message": message,
	}
}
