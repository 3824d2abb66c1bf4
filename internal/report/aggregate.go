package report

import (
	"errors"
	"math"
	"time"

	"github.com/swipe-attendance/backend/internal/calendar"
	"github.com/swipe-attendance/backend/internal/models"
)

// ErrNoData is returned when the selected period holds no attendance.
var ErrNoData = errors.New("no data for period")

// DisplayDateLayout is the date format of report rows.
const DisplayDateLayout = "02-01-2006"

// Build computes the monthly report of employee from all daily summaries.
// Days with a missing swipe count as present but add no time.
// A departure before the arrival contributes its negative duration and is flagged.
func Build(daily []models.DailySummary, employee string, year int, month time.Month, cal calendar.Calendar) (*models.MonthlyReport, error) {
	days := Filter(daily, employee, year, month)
	if len(days) == 0 {
		return nil, ErrNoData
	}

	rep := &models.MonthlyReport{
		Employee:    employee,
		Year:        year,
		Month:       int(month),
		MonthName:   MonthNames[month],
		CardNumber:  days[0].CardNumber,
		DaysPresent: len(days),
		WorkingDays: calendar.WorkingDays(cal, year, month),
		Days:        make([]models.ReportDay, 0, len(days)),
	}

	var (
		sumMinutes float64
		timed      int
		arrivals   = make([]models.NullTime, 0, len(days))
		departures = make([]models.NullTime, 0, len(days))
	)

	for _, d := range days {
		arrivals = append(arrivals, d.Arrival)
		departures = append(departures, d.Departure)

		row := models.ReportDay{
			Date:      d.Date.Format(DisplayDateLayout),
			Arrival:   d.Arrival.String(),
			Departure: d.Departure.String(),
			Duration:  NotAvailable,
		}

		if dur, ok := d.Duration(); ok {
			minutes := dur.Minutes()
			row.DurationMinutes = &minutes
			row.Duration = FormatMinutes(int(math.Floor(minutes)))
			if dur < 0 {
				row.Anomaly = models.AnomalyDepartureBeforeArrival
			}
			sumMinutes += minutes
			timed++
		} else {
			row.Anomaly = models.AnomalyMissingSwipe
		}

		rep.Days = append(rep.Days, row)
	}

	rep.TotalMinutes = int(sumMinutes)
	rep.TotalTime = FormatMinutes(rep.TotalMinutes)
	rep.AverageArrival = meanTime(arrivals)
	rep.AverageDeparture = meanTime(departures)

	if timed > 0 {
		avg := sumMinutes / float64(timed)
		rep.AverageDailyMinutes = &avg
		rep.AverageDaily = FormatMinutes(int(avg))
	} else {
		rep.AverageDaily = NotAvailable
	}

	return rep, nil
}
