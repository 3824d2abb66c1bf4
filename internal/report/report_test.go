package report

import (
	"bytes"
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/swipe-attendance/backend/internal/calendar"
	"github.com/swipe-attendance/backend/internal/models"
)

func swipe(employee string, y int, m time.Month, d, hh, mm int, card string) models.Record {
	return models.Record{
		Employee:   employee,
		Date:       models.NewDate(y, m, d),
		Time:       models.NewTimeOfDay(hh, mm, 0),
		CardNumber: card,
		Document:   "march.xlsx",
	}
}

func ruCalendar(t *testing.T) calendar.Calendar {
	t.Helper()
	cal, err := calendar.New("RU", nil)
	require.NoError(t, err)
	return cal
}

func TestMemoryGrouper_GroupDaily(t *testing.T) {
	records := []models.Record{
		swipe("Петров", 2024, 3, 5, 9, 15, "2"),
		swipe("Иванов", 2024, 3, 5, 17, 32, "1"),
		swipe("Иванов", 2024, 3, 5, 8, 58, "1b"),
		swipe("Иванов", 2024, 3, 4, 12, 0, "1"),
		{Employee: "Иванов", Date: models.NewDate(2024, 3, 5), CardNumber: "1"},
		{Employee: "Иванов", Date: models.NullDate{}, Time: models.NewTimeOfDay(7, 0, 0)},
		{Employee: "", Date: models.NewDate(2024, 3, 5), Time: models.NewTimeOfDay(7, 0, 0)},
	}

	daily, err := MemoryGrouper{}.GroupDaily(context.Background(), records)
	require.NoError(t, err)
	require.Len(t, daily, 3)

	assert.Equal(t, "Иванов", daily[0].Employee)
	assert.Equal(t, 4, daily[0].Date.Day())
	assert.Equal(t, "12:00:00", daily[0].Arrival.String())
	assert.Equal(t, "12:00:00", daily[0].Departure.String())

	assert.Equal(t, 5, daily[1].Date.Day())
	assert.Equal(t, "08:58:00", daily[1].Arrival.String())
	assert.Equal(t, "17:32:00", daily[1].Departure.String())
	assert.Equal(t, "1", daily[1].CardNumber, "first card encountered")

	assert.Equal(t, "Петров", daily[2].Employee)
}

func TestMemoryGrouper_AllTimesMissing(t *testing.T) {
	records := []models.Record{
		{Employee: "Иванов", Date: models.NewDate(2024, 3, 5), CardNumber: ""},
		{Employee: "Иванов", Date: models.NewDate(2024, 3, 5), CardNumber: "7"},
	}

	daily, err := MemoryGrouper{}.GroupDaily(context.Background(), records)
	require.NoError(t, err)
	require.Len(t, daily, 1)
	assert.False(t, daily[0].Arrival.Valid)
	assert.False(t, daily[0].Departure.Valid)
	assert.Equal(t, "7", daily[0].CardNumber)
}

func TestMemoryGrouper_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := MemoryGrouper{}.GroupDaily(ctx, []models.Record{swipe("A", 2024, 3, 5, 8, 0, "1")})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestBuild_SingleDay(t *testing.T) {
	records := []models.Record{
		swipe("Иванов", 2024, 3, 5, 8, 58, "0012345"),
		swipe("Иванов", 2024, 3, 5, 17, 32, "0012345"),
	}
	daily, err := MemoryGrouper{}.GroupDaily(context.Background(), records)
	require.NoError(t, err)

	rep, err := Build(daily, "Иванов", 2024, time.March, ruCalendar(t))
	require.NoError(t, err)

	assert.Equal(t, "0012345", rep.CardNumber)
	assert.Equal(t, 1, rep.DaysPresent)
	assert.Equal(t, 20, rep.WorkingDays)
	assert.Equal(t, 514, rep.TotalMinutes)
	assert.Equal(t, "8 часов 34 минут", rep.TotalTime)
	assert.Equal(t, "08:58", rep.AverageArrival)
	assert.Equal(t, "17:32", rep.AverageDeparture)
	assert.Equal(t, "8 часов 34 минут", rep.AverageDaily)
	assert.Equal(t, "Март", rep.MonthName)

	require.Len(t, rep.Days, 1)
	day := rep.Days[0]
	assert.Equal(t, "05-03-2024", day.Date)
	assert.Equal(t, "08:58:00", day.Arrival)
	assert.Equal(t, "17:32:00", day.Departure)
	require.NotNil(t, day.DurationMinutes)
	assert.InDelta(t, 514.0, *day.DurationMinutes, 1e-9)
	assert.Equal(t, "8 часов 34 минут", day.Duration)
	assert.Empty(t, day.Anomaly)
}

func TestBuild_Averages(t *testing.T) {
	records := []models.Record{
		swipe("Иванов", 2024, 3, 4, 9, 0, "1"),
		swipe("Иванов", 2024, 3, 4, 18, 0, "1"),
		swipe("Иванов", 2024, 3, 5, 8, 31, "1"),
		swipe("Иванов", 2024, 3, 5, 17, 0, "1"),
		// Single swipe: zero-length day
		swipe("Иванов", 2024, 3, 6, 10, 0, "1"),
		// Other month and other employee are filtered out
		swipe("Иванов", 2024, 4, 1, 8, 0, "1"),
		swipe("Петров", 2024, 3, 4, 6, 0, "2"),
	}
	daily, err := MemoryGrouper{}.GroupDaily(context.Background(), records)
	require.NoError(t, err)

	rep, err := Build(daily, "Иванов", 2024, time.March, ruCalendar(t))
	require.NoError(t, err)

	assert.Equal(t, 3, rep.DaysPresent)
	// 540 + 509 + 0
	assert.Equal(t, 1049, rep.TotalMinutes)
	assert.Equal(t, "17 часов 29 минут", rep.TotalTime)
	// (540 + 511 + 600) / 3 minutes past midnight = 09:10:20
	assert.Equal(t, "09:10", rep.AverageArrival)
	// (1080 + 1020 + 600) / 3 = 900 = 15:00
	assert.Equal(t, "15:00", rep.AverageDeparture)
	// 1049 / 3 = 349.67
	assert.Equal(t, "5 часов 49 минут", rep.AverageDaily)
}

func TestBuild_MissingSwipes(t *testing.T) {
	daily := []models.DailySummary{
		{Employee: "Иванов", Date: time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC), CardNumber: "1"},
	}

	rep, err := Build(daily, "Иванов", 2024, time.March, ruCalendar(t))
	require.NoError(t, err)

	assert.Equal(t, 1, rep.DaysPresent)
	assert.Equal(t, 0, rep.TotalMinutes)
	assert.Equal(t, NotAvailable, rep.AverageArrival)
	assert.Equal(t, NotAvailable, rep.AverageDeparture)
	assert.Equal(t, NotAvailable, rep.AverageDaily)
	assert.Nil(t, rep.AverageDailyMinutes)
	assert.Equal(t, models.AnomalyMissingSwipe, rep.Days[0].Anomaly)
	assert.Nil(t, rep.Days[0].DurationMinutes)
}

func TestBuild_NegativeDurationPropagates(t *testing.T) {
	daily := []models.DailySummary{
		{
			Employee:  "Иванов",
			Date:      time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC),
			Arrival:   models.NewTimeOfDay(9, 0, 0),
			Departure: models.NewTimeOfDay(8, 50, 0),
		},
		{
			Employee:  "Иванов",
			Date:      time.Date(2024, 3, 6, 0, 0, 0, 0, time.UTC),
			Arrival:   models.NewTimeOfDay(9, 0, 0),
			Departure: models.NewTimeOfDay(10, 0, 0),
		},
	}

	rep, err := Build(daily, "Иванов", 2024, time.March, ruCalendar(t))
	require.NoError(t, err)

	assert.Equal(t, 50, rep.TotalMinutes)
	assert.Equal(t, "-1 часов 50 минут", rep.Days[0].Duration)
	assert.Equal(t, models.AnomalyDepartureBeforeArrival, rep.Days[0].Anomaly)
	assert.Empty(t, rep.Days[1].Anomaly)
}

func TestBuild_NoData(t *testing.T) {
	daily, err := MemoryGrouper{}.GroupDaily(context.Background(), []models.Record{
		swipe("Иванов", 2024, 3, 5, 8, 58, "1"),
	})
	require.NoError(t, err)

	_, err = Build(daily, "Иванов", 2024, time.February, ruCalendar(t))
	assert.ErrorIs(t, err, ErrNoData)

	_, err = Build(daily, "Сидоров", 2024, time.March, ruCalendar(t))
	assert.ErrorIs(t, err, ErrNoData)

	_, err = Build(nil, "Иванов", 2024, time.March, ruCalendar(t))
	assert.ErrorIs(t, err, ErrNoData)
}

func TestFilters(t *testing.T) {
	daily, err := MemoryGrouper{}.GroupDaily(context.Background(), []models.Record{
		swipe("Петров", 2023, 12, 29, 9, 0, "2"),
		swipe("Иванов", 2024, 3, 5, 8, 58, "1"),
		swipe("Иванов", 2024, 1, 9, 8, 58, "1"),
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"Иванов", "Петров"}, Employees(daily))
	assert.Equal(t, []int{2024, 2023}, Years(daily))
	assert.Len(t, Filter(daily, "Иванов", 2024, time.January), 1)
	assert.Empty(t, Filter(daily, "Петров", 2024, time.December))
	assert.Len(t, MonthNames, 12)
}

func TestFormatMinutes(t *testing.T) {
	assert.Equal(t, "0 часов 0 минут", FormatMinutes(0))
	assert.Equal(t, "8 часов 34 минут", FormatMinutes(514))
	assert.Equal(t, "-1 часов 50 минут", FormatMinutes(-10))
	assert.Equal(t, "-2 часов 0 минут", FormatMinutes(-120))
}

func TestWriteXLSX(t *testing.T) {
	daily, err := MemoryGrouper{}.GroupDaily(context.Background(), []models.Record{
		swipe("Иванов", 2024, 3, 5, 8, 58, "0012345"),
		swipe("Иванов", 2024, 3, 5, 17, 32, "0012345"),
	})
	require.NoError(t, err)
	rep, err := Build(daily, "Иванов", 2024, time.March, ruCalendar(t))
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WriteXLSX(&buf, rep))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(exportSheet)
	require.NoError(t, err)
	assert.Equal(t, "Иванов", rows[0][0])
	assert.Equal(t, "Март 2024", rows[1][0])
	assert.Equal(t, []string{"Рабочих дней", "1 из 20"}, rows[4])
	assert.Equal(t, []string{"Дата", "Вход", "Выход", "Время на работе"}, rows[len(rows)-2])
	last := rows[len(rows)-1]
	assert.Equal(t, []string{"05-03-2024", "08:58:00", "17:32:00", "8 часов 34 минут"}, last)

	titleStyle, err := f.GetCellStyle(exportSheet, "A1")
	require.NoError(t, err)
	assert.NotZero(t, titleStyle)
	headerStyle, err := f.GetCellStyle(exportSheet, fmt.Sprintf("D%d", len(rows)-1))
	require.NoError(t, err)
	assert.NotZero(t, headerStyle)
	width, err := f.GetColWidth(exportSheet, "A")
	require.NoError(t, err)
	assert.Equal(t, 34.0, width)
}
