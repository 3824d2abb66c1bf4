package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/swipe-attendance/backend/internal/models"
)

const archiveIndexFile = "index.json"

// ErrSourceNotFound is returned when no archived upload exists for a document.
var ErrSourceNotFound = errors.New("source file not found")

// Archive keeps the original uploaded files, keyed by document name.
type Archive struct {
	mu        sync.RWMutex
	uploadDir string
	files     map[string]*models.SourceFile
}

// NewArchive creates an Archive in uploadDir and loads its index.
func NewArchive(uploadDir string) (*Archive, error) {
	if err := os.MkdirAll(uploadDir, 0755); err != nil {
		return nil, fmt.Errorf("creating upload directory: %w", err)
	}

	a := &Archive{
		uploadDir: uploadDir,
		files:     make(map[string]*models.SourceFile),
	}
	if err := a.loadIndex(); err != nil {
		return nil, err
	}
	return a, nil
}

// Save stores an uploaded file for document.
func (a *Archive) Save(document string, r io.Reader) (*models.SourceFile, error) {
	id := uuid.New().String()
	path := filepath.Join(a.uploadDir, id)

	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("creating file: %w", err)
	}
	defer f.Close()

	size, err := io.Copy(f, r)
	if err != nil {
		os.Remove(path)
		return nil, fmt.Errorf("writing file: %w", err)
	}

	info := &models.SourceFile{
		ID:         id,
		Document:   document,
		Size:       size,
		UploadedAt: time.Now(),
		Status:     "imported",
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	a.files[id] = info

	if err := a.saveIndex(); err != nil {
		delete(a.files, id)
		os.Remove(path)
		return nil, err
	}
	return info, nil
}

// Latest returns the most recent upload of document.
func (a *Archive) Latest(document string) (*models.SourceFile, error) {
	list := a.ForDocument(document)
	if len(list) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrSourceNotFound, document)
	}
	return list[0], nil
}

// ForDocument returns the uploads of document, newest first.
func (a *Archive) ForDocument(document string) []*models.SourceFile {
	a.mu.RLock()
	defer a.mu.RUnlock()

	var list []*models.SourceFile
	for _, info := range a.files {
		if info.Document == document {
			list = append(list, info)
		}
	}

	sort.Slice(list, func(i, j int) bool {
		return list[i].UploadedAt.After(list[j].UploadedAt)
	})
	return list
}

// GetFilePath returns the absolute path to an archived file.
func (a *Archive) GetFilePath(id string) (string, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	if _, ok := a.files[id]; !ok {
		return "", fmt.Errorf("file not found: %s", id)
	}
	return filepath.Join(a.uploadDir, id), nil
}

// DeleteDocument removes every archived upload of document and returns how many were removed.
func (a *Archive) DeleteDocument(document string) (int, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	removed := 0
	for id, info := range a.files {
		if info.Document != document {
			continue
		}
		path := filepath.Join(a.uploadDir, id)
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return removed, fmt.Errorf("deleting file: %w", err)
		}
		delete(a.files, id)
		removed++
	}

	if removed == 0 {
		return 0, nil
	}
	return removed, a.saveIndex()
}

func (a *Archive) loadIndex() error {
	data, err := os.ReadFile(filepath.Join(a.uploadDir, archiveIndexFile))
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("reading archive index: %w", err)
	}

	var list []*models.SourceFile
	if err := json.Unmarshal(data, &list); err != nil {
		return fmt.Errorf("parsing archive index: %w", err)
	}
	for _, info := range list {
		a.files[info.ID] = info
	}
	return nil
}

// saveIndex must be called with the write lock held.
func (a *Archive) saveIndex() error {
	list := make([]*models.SourceFile, 0, len(a.files))
	for _, info := range a.files {
		list = append(list, info)
	}
	sort.Slice(list, func(i, j int) bool {
		return list[i].UploadedAt.Before(list[j].UploadedAt)
	})

	data, err := json.MarshalIndent(list, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding archive index: %w", err)
	}
	if err := os.WriteFile(filepath.Join(a.uploadDir, archiveIndexFile), data, 0644); err != nil {
		return fmt.Errorf("writing archive index: %w", err)
	}
	return nil
}
