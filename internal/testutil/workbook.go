// Package testutil provides fixtures shared by package tests.
package testutil

import (
	"bytes"
	"mime/multipart"
	"testing"

	"github.com/xuri/excelize/v2"
)

// WorkbookBytes builds a single-sheet xlsx workbook from rows.
// Numeric values are written as numbers, everything else as text.
func WorkbookBytes(t testing.TB, rows [][]interface{}) []byte {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			t.Fatalf("cell name: %v", err)
		}
		r := row
		if err := f.SetSheetRow(sheet, cell, &r); err != nil {
			t.Fatalf("set row %d: %v", i, err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatalf("write workbook: %v", err)
	}
	return buf.Bytes()
}

// SwipeExport returns a typical access-control export: a title row, a blank
// row, the header on the third row, then two swipes of one employee.
func SwipeExport(t testing.TB) []byte {
	t.Helper()
	return WorkbookBytes(t, [][]interface{}{
		{"Отчёт о проходах за март 2024"},
		{},
		{"№", "Сотрудник", "Дата события", "Время события", "Карта №", "Точка доступа"},
		{1, "Иванов И.И.", "05.03.2024", "08:58", "0012345", "Турникет 1"},
		{2, "Иванов И.И.", "05.03.2024", "17:32:00", "0012345", "Турникет 1"},
	})
}

// MultipartFile builds a multipart body with a single "file" part.
// It returns the body and its content type.
func MultipartFile(t testing.TB, filename string, data []byte) (*bytes.Buffer, string) {
	t.Helper()

	body := new(bytes.Buffer)
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := part.Write(data); err != nil {
		t.Fatalf("write form file: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close multipart writer: %v", err)
	}
	return body, writer.FormDataContentType()
}
