package sheet

import (
	"bytes"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/extrame/xls"
)

// maxXLSRows bounds how many rows are read from a legacy workbook.
const maxXLSRows = 100000

// XLSReader handles legacy BIFF (.xls) workbooks.
type XLSReader struct {
	charset string
}

func NewXLSReader() *XLSReader {
	return &XLSReader{charset: "utf-8"}
}

func (p *XLSReader) Name() string { return "xls" }

func (p *XLSReader) CanRead(filename string) bool {
	return strings.ToLower(filepath.Ext(filename)) == ".xls"
}

// Read loads the first worksheet only. Number formats are reset before any
// cell is rendered, so dates and times come back as raw serials.
func (p *XLSReader) Read(r io.Reader) (*Table, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	workbook, err := xls.OpenReader(bytes.NewReader(data), p.charset)
	if err != nil {
		return nil, fmt.Errorf("opening workbook: %w", err)
	}
	if workbook == nil || workbook.NumSheets() == 0 {
		return nil, fmt.Errorf("no worksheet found")
	}

	ws := workbook.GetSheet(0)
	if ws == nil {
		return nil, fmt.Errorf("no worksheet found")
	}
	rawNumberFormats(workbook)

	return &Table{Rows: readSheet(ws)}, nil
}

// rawNumberFormats points every cell style at the General format. The
// library renders date-formatted cells as "2006.01" or RFC3339 text, which
// loses the day and the time of day.
func rawNumberFormats(wb *xls.WorkBook) {
	for _, xf := range wb.Xfs {
		switch x := xf.(type) {
		case *xls.Xf8:
			x.Format = 0
		case *xls.Xf5:
			x.Format = 0
		}
	}
}

func readSheet(ws *xls.WorkSheet) [][]string {
	last := int(ws.MaxRow)
	if last >= maxXLSRows {
		last = maxXLSRows - 1
	}

	rows := make([][]string, 0, last+1)
	for i := 0; i <= last; i++ {
		row := sheetRow(ws, i)
		if row == nil {
			rows = append(rows, nil)
			continue
		}
		cells := make([]string, 0, row.LastCol()+1)
		for c := 0; c <= row.LastCol(); c++ {
			cells = append(cells, row.Col(c))
		}
		for len(cells) > 0 && strings.TrimSpace(cells[len(cells)-1]) == "" {
			cells = cells[:len(cells)-1]
		}
		rows = append(rows, cells)
	}
	return rows
}

// sheetRow returns nil for rows the workbook has no record for;
// WorkSheet.Row dereferences a missing row and panics.
func sheetRow(ws *xls.WorkSheet, i int) (row *xls.Row) {
	defer func() {
		if recover() != nil {
			row = nil
		}
	}()
	return ws.Row(i)
}
