// Package storage persists the attendance table and archives uploaded source files.
package storage

import (
	"errors"

	"github.com/swipe-attendance/backend/internal/models"
)

// ErrDocumentNotFound is returned when no stored row belongs to a document.
var ErrDocumentNotFound = errors.New("document not found")

// Merge appends batch to existing and drops rows equal to an earlier row.
// The first occurrence of each row is kept, in order.
func Merge(existing, batch []models.Record) []models.Record {
	combined := make([]models.Record, 0, len(existing)+len(batch))
	combined = append(combined, existing...)
	combined = append(combined, batch...)
	return Dedupe(combined)
}

// Dedupe removes full-row duplicates, keeping the first occurrence.
func Dedupe(records []models.Record) []models.Record {
	seen := make(map[string]struct{}, len(records))
	out := make([]models.Record, 0, len(records))
	for _, r := range records {
		key := r.Key()
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, r)
	}
	return out
}

// RemoveDocument returns records without the rows of document and how many were removed.
func RemoveDocument(records []models.Record, document string) ([]models.Record, int) {
	out := make([]models.Record, 0, len(records))
	for _, r := range records {
		if r.Document != document {
			out = append(out, r)
		}
	}
	return out, len(records) - len(out)
}

// Documents lists the imported documents in order of first appearance.
func Documents(records []models.Record) []models.DocumentInfo {
	index := make(map[string]int)
	var docs []models.DocumentInfo
	for _, r := range records {
		i, ok := index[r.Document]
		if !ok {
			i = len(docs)
			index[r.Document] = i
			docs = append(docs, models.DocumentInfo{Name: r.Document})
		}
		docs[i].Rows++
	}
	return docs
}
