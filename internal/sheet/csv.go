package sheet

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"path/filepath"
	"strings"
)

// CSVReader handles delimited text exports.
// The delimiter is sniffed from the first line: ';' or '\t' when present, ',' otherwise.
type CSVReader struct{}

func NewCSVReader() *CSVReader {
	return &CSVReader{}
}

func (p *CSVReader) Name() string {
	return "csv"
}

func (p *CSVReader) CanRead(filename string) bool {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv", ".txt":
		return true
	}
	return false
}

func (p *CSVReader) Read(r io.Reader) (*Table, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	// Strip UTF-8 BOM written by spreadsheet exports
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))

	cr := csv.NewReader(bytes.NewReader(data))
	cr.Comma = sniffDelimiter(data)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	rows, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading csv: %w", err)
	}
	return &Table{Rows: rows}, nil
}

func sniffDelimiter(data []byte) rune {
	line, _ := bufio.NewReader(bytes.NewReader(data)).ReadString('\n')
	switch {
	case strings.Count(line, ";") > strings.Count(line, ","):
		return ';'
	case strings.Contains(line, "\t"):
		return '\t'
	}
	return ','
}
