package models

import "time"

// DailySummary is one employee's first and last swipe of a day.
// It is derived from records on every report and never persisted.
type DailySummary struct {
	Employee   string    `json:"employee"`
	Date       time.Time `json:"date"`
	Arrival    NullTime  `json:"arrival"`
	Departure  NullTime  `json:"departure"`
	CardNumber string    `json:"cardNumber"`
}

// Duration returns departure minus arrival. ok is false when either swipe is missing.
// A departure before the arrival yields a negative duration.
func (d DailySummary) Duration() (dur time.Duration, ok bool) {
	if !d.Arrival.Valid || !d.Departure.Valid {
		return 0, false
	}
	return d.Departure.Sub(d.Arrival), true
}

// Anomaly flags attached to report rows.
const (
	AnomalyDepartureBeforeArrival = "departure_before_arrival"
	AnomalyMissingSwipe           = "missing_swipe"
)

// ReportDay is a row of the monthly detail table.
type ReportDay struct {
	Date            string   `json:"date" msgpack:"date"` // DD-MM-YYYY
	Arrival         string   `json:"arrival" msgpack:"arrival"`
	Departure       string   `json:"departure" msgpack:"departure"`
	DurationMinutes *float64 `json:"durationMinutes" msgpack:"durationMinutes"`
	Duration        string   `json:"duration" msgpack:"duration"`
	Anomaly         string   `json:"anomaly,omitempty" msgpack:"anomaly,omitempty"`
}

// MonthlyReport summarizes one employee's attendance for a calendar month.
type MonthlyReport struct {
	Employee            string      `json:"employee" msgpack:"employee"`
	Year                int         `json:"year" msgpack:"year"`
	Month               int         `json:"month" msgpack:"month"`
	MonthName           string      `json:"monthName" msgpack:"monthName"`
	CardNumber          string      `json:"cardNumber" msgpack:"cardNumber"`
	DaysPresent         int         `json:"daysPresent" msgpack:"daysPresent"`
	WorkingDays         int         `json:"workingDays" msgpack:"workingDays"`
	TotalMinutes        int         `json:"totalMinutes" msgpack:"totalMinutes"`
	TotalTime           string      `json:"totalTime" msgpack:"totalTime"`
	AverageArrival      string      `json:"averageArrival" msgpack:"averageArrival"`
	AverageDeparture    string      `json:"averageDeparture" msgpack:"averageDeparture"`
	AverageDailyMinutes *float64    `json:"averageDailyMinutes" msgpack:"averageDailyMinutes"`
	AverageDaily        string      `json:"averageDaily" msgpack:"averageDaily"`
	Days                []ReportDay `json:"days" msgpack:"days"`
}
