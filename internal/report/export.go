package report

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/swipe-attendance/backend/internal/models"
)

const exportSheet = "Отчёт"

// WriteXLSX writes the report as a workbook: a summary block followed by the detail table.
func WriteXLSX(w io.Writer, rep *models.MonthlyReport) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName(f.GetSheetName(0), exportSheet); err != nil {
		return fmt.Errorf("naming sheet: %w", err)
	}

	titleStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 14},
	})
	if err != nil {
		return fmt.Errorf("creating title style: %w", err)
	}
	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "#FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return fmt.Errorf("creating header style: %w", err)
	}

	if err := f.SetCellValue(exportSheet, "A1", rep.Employee); err != nil {
		return fmt.Errorf("writing title: %w", err)
	}
	if err := f.SetCellValue(exportSheet, "A2", fmt.Sprintf("%s %d", rep.MonthName, rep.Year)); err != nil {
		return fmt.Errorf("writing period: %w", err)
	}
	if err := f.SetCellStyle(exportSheet, "A1", "A1", titleStyle); err != nil {
		return fmt.Errorf("styling title: %w", err)
	}

	summary := [][]interface{}{
		{"Номер карты", rep.CardNumber},
		{"Рабочих дней", fmt.Sprintf("%d из %d", rep.DaysPresent, rep.WorkingDays)},
		{"Общее время на работе", rep.TotalTime},
		{"Среднее время прихода", rep.AverageArrival},
		{"Среднее время ухода", rep.AverageDeparture},
		{"Среднее время нахождения в день", rep.AverageDaily},
	}
	row := 4
	for _, kv := range summary {
		if err := writeRow(f, row, kv); err != nil {
			return fmt.Errorf("writing summary: %w", err)
		}
		row++
	}

	row++
	if err := writeRow(f, row, []interface{}{"Дата", "Вход", "Выход", "Время на работе"}); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	if err := f.SetCellStyle(exportSheet, fmt.Sprintf("A%d", row), fmt.Sprintf("D%d", row), headerStyle); err != nil {
		return fmt.Errorf("styling header: %w", err)
	}

	for _, d := range rep.Days {
		row++
		if err := writeRow(f, row, []interface{}{d.Date, d.Arrival, d.Departure, d.Duration}); err != nil {
			return fmt.Errorf("writing day %s: %w", d.Date, err)
		}
	}

	if err := f.SetColWidth(exportSheet, "A", "A", 34); err != nil {
		return err
	}
	if err := f.SetColWidth(exportSheet, "B", "D", 18); err != nil {
		return err
	}

	return f.Write(w)
}

func writeRow(f *excelize.File, row int, values []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	return f.SetSheetRow(exportSheet, cell, &values)
}
