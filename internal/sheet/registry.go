package sheet

import (
	"fmt"
	"io"
	"strings"
)

// Registry holds all available readers and picks one by file name.
type Registry struct {
	readers []Reader
}

// Global registry instance
var globalRegistry = NewRegistry()

func NewRegistry() *Registry {
	return &Registry{
		readers: []Reader{
			NewXLSXReader(),
			NewXLSReader(),
			NewCSVReader(),
		},
	}
}

// GetGlobalRegistry returns the singleton registry.
func GetGlobalRegistry() *Registry {
	return globalRegistry
}

// Register adds a new reader to the registry.
func (r *Registry) Register(rd Reader) {
	r.readers = append(r.readers, rd)
}

// FindReader returns the first reader that accepts filename.
func (r *Registry) FindReader(filename string) (Reader, error) {
	for _, rd := range r.readers {
		if rd.CanRead(filename) {
			return rd, nil
		}
	}
	return nil, fmt.Errorf("no suitable reader found for file: %s", filename)
}

// GetReaderByName returns a reader by its name.
func (r *Registry) GetReaderByName(name string) (Reader, error) {
	name = strings.ToLower(name)
	for _, rd := range r.readers {
		if strings.ToLower(rd.Name()) == name {
			return rd, nil
		}
	}
	return nil, fmt.Errorf("reader not found: %s", name)
}

// ReadFile picks a reader for filename and reads r with it.
func (r *Registry) ReadFile(filename string, src io.Reader) (*Table, error) {
	rd, err := r.FindReader(filename)
	if err != nil {
		return nil, err
	}
	return rd.Read(src)
}
