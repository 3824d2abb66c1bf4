// Package report builds per-employee monthly attendance reports from swipe records.
package report

import (
	"context"
	"sort"

	"github.com/swipe-attendance/backend/internal/models"
)

// Grouper collapses swipe records into one summary per employee and day.
type Grouper interface {
	GroupDaily(ctx context.Context, records []models.Record) ([]models.DailySummary, error)
}

// MemoryGrouper groups records in memory.
type MemoryGrouper struct{}

// GroupDaily takes the earliest and latest time of each (employee, date) and
// the first non-empty card number seen. Records without a date or an employee
// are not grouped. The result is ordered by employee, then date.
func (MemoryGrouper) GroupDaily(ctx context.Context, records []models.Record) ([]models.DailySummary, error) {
	type key struct {
		employee string
		date     string
	}

	index := make(map[key]int)
	var out []models.DailySummary

	for i, r := range records {
		if i%4096 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		if !r.Date.Valid || r.Employee == "" {
			continue
		}

		k := key{r.Employee, r.Date.String()}
		j, ok := index[k]
		if !ok {
			j = len(out)
			index[k] = j
			out = append(out, models.DailySummary{
				Employee:   r.Employee,
				Date:       r.Date.Time,
				CardNumber: r.CardNumber,
			})
		}

		d := &out[j]
		if d.CardNumber == "" {
			d.CardNumber = r.CardNumber
		}
		if !r.Time.Valid {
			continue
		}
		if !d.Arrival.Valid || r.Time.Seconds < d.Arrival.Seconds {
			d.Arrival = r.Time
		}
		if !d.Departure.Valid || r.Time.Seconds > d.Departure.Seconds {
			d.Departure = r.Time
		}
	}

	SortDaily(out)
	return out, nil
}

// SortDaily orders summaries by employee, then date.
func SortDaily(daily []models.DailySummary) {
	sort.SliceStable(daily, func(i, j int) bool {
		if daily[i].Employee != daily[j].Employee {
			return daily[i].Employee < daily[j].Employee
		}
		return daily[i].Date.Before(daily[j].Date)
	})
}
