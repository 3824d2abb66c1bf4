package report

import (
	"fmt"
	"math"

	"github.com/swipe-attendance/backend/internal/models"
)

// NotAvailable marks a value that cannot be computed.
const NotAvailable = "N/A"

// FormatMinutes renders whole minutes as "H часов M минут".
// Negative values split with floor division, so -10 becomes "-1 часов 50 минут".
func FormatMinutes(total int) string {
	h := floorDiv(total, 60)
	m := total - h*60
	return fmt.Sprintf("%d часов %d минут", h, m)
}

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

// meanTime averages valid times of day and truncates to HH:MM.
func meanTime(times []models.NullTime) string {
	sum, n := 0, 0
	for _, t := range times {
		if t.Valid {
			sum += t.Seconds
			n++
		}
	}
	if n == 0 {
		return NotAvailable
	}
	return models.TimeFromSeconds(int(math.Floor(float64(sum) / float64(n)))).Short()
}
