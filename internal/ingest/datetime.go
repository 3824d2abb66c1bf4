package ingest

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/swipe-attendance/backend/internal/models"
)

// Day-first text layouts, tried in order. Single-digit layout elements
// accept zero-padded input too.
var dateLayouts = []string{
	"2.1.2006",
	"2/1/2006",
	"2-1-2006",
	"2006-1-2",
	"2006/1/2",
	"2.1.06",
	"2/1/06",
}

// Suffixes a date cell may carry when exported as a timestamp.
var dateTimeSuffixes = []string{"", " 15:04:05", " 15:04", "T15:04:05"}

var timeLayouts = []string{"15:04:05", "15:04", time.RFC3339}

// yearMonth matches the "2006.01" rendering some readers give date-formatted
// cells. It parses as a number but carries no day.
var yearMonth = regexp.MustCompile(`^\d{4}\.\d{2}$`)

// ParseDate interprets a date cell day-first. Numeric cells are Excel date
// serials. Anything unparsable yields an absent date.
func ParseDate(raw string) models.NullDate {
	s := strings.TrimSpace(raw)
	if s == "" {
		return models.NullDate{}
	}

	if yearMonth.MatchString(s) {
		return models.NullDate{}
	}

	if f, ok := parseNumber(s); ok {
		if f < 1 {
			return models.NullDate{}
		}
		t, err := excelize.ExcelDateToTime(f, false)
		if err != nil {
			return models.NullDate{}
		}
		return models.DateOf(t)
	}

	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return models.DateOf(t)
	}

	for _, layout := range dateLayouts {
		for _, suffix := range dateTimeSuffixes {
			if t, err := time.Parse(layout+suffix, s); err == nil {
				return models.DateOf(t)
			}
		}
	}
	return models.NullDate{}
}

// ParseTime interprets a time cell. Numeric cells are fractions of a 24-hour
// day; text is tried as HH:MM:SS and then HH:MM. Anything else yields an
// absent time.
func ParseTime(raw string) models.NullTime {
	s := strings.TrimSpace(raw)
	if s == "" {
		return models.NullTime{}
	}

	if f, ok := parseNumber(s); ok {
		return timeFromDayFraction(f)
	}

	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return models.NewTimeOfDay(t.Hour(), t.Minute(), t.Second())
		}
	}
	return models.NullTime{}
}

// timeFromDayFraction rounds to the microsecond, then truncates to whole
// seconds. The integer part (a date serial) is discarded.
func timeFromDayFraction(f float64) models.NullTime {
	micros := math.Round(f * 86400 * 1e6)
	seconds := math.Floor(micros / 1e6)
	return models.TimeFromSeconds(int(math.Mod(seconds, 86400)))
}

func parseNumber(s string) (float64, bool) {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}
