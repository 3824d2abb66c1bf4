package report

import (
	"sort"
	"time"

	"github.com/swipe-attendance/backend/internal/models"
)

// MonthNames are the month labels shown in period selectors.
var MonthNames = map[time.Month]string{
	time.January:   "Январь",
	time.February:  "Февраль",
	time.March:     "Март",
	time.April:     "Апрель",
	time.May:       "Май",
	time.June:      "Июнь",
	time.July:      "Июль",
	time.August:    "Август",
	time.September: "Сентябрь",
	time.October:   "Октябрь",
	time.November:  "Ноябрь",
	time.December:  "Декабрь",
}

// Employees returns the distinct employees in sorted order.
func Employees(daily []models.DailySummary) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, d := range daily {
		if _, ok := seen[d.Employee]; ok {
			continue
		}
		seen[d.Employee] = struct{}{}
		out = append(out, d.Employee)
	}
	sort.Strings(out)
	return out
}

// Years returns the distinct years, newest first.
func Years(daily []models.DailySummary) []int {
	seen := make(map[int]struct{})
	var out []int
	for _, d := range daily {
		y := d.Date.Year()
		if _, ok := seen[y]; ok {
			continue
		}
		seen[y] = struct{}{}
		out = append(out, y)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(out)))
	return out
}

// Filter keeps the summaries of one employee in one calendar month.
func Filter(daily []models.DailySummary, employee string, year int, month time.Month) []models.DailySummary {
	var out []models.DailySummary
	for _, d := range daily {
		if d.Employee == employee && d.Date.Year() == year && d.Date.Month() == month {
			out = append(out, d)
		}
	}
	return out
}
