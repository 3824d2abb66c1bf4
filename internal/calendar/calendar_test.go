package calendar

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestFixedCalendar_IsWorkingDay(t *testing.T) {
	cal, err := New("ru", nil)
	require.NoError(t, err)

	assert.True(t, cal.IsWorkingDay(day(2024, time.March, 5)))   // Tuesday
	assert.False(t, cal.IsWorkingDay(day(2024, time.March, 9)))  // Saturday
	assert.False(t, cal.IsWorkingDay(day(2024, time.March, 10))) // Sunday
	assert.False(t, cal.IsWorkingDay(day(2024, time.March, 8)))  // Friday, holiday
	assert.False(t, cal.IsWorkingDay(day(2024, time.June, 12)))
	assert.Equal(t, "RU", cal.Country())
}

func TestWorkingDays(t *testing.T) {
	cal, err := New("RU", nil)
	require.NoError(t, err)

	// March 2024: 21 weekdays, March 8 is a Friday.
	assert.Equal(t, 20, WorkingDays(cal, 2024, time.March))
	// April 2024: 22 weekdays, no holidays.
	assert.Equal(t, 22, WorkingDays(cal, 2024, time.April))
	// February 2024: 21 weekdays, Feb 23 is a Friday.
	assert.Equal(t, 20, WorkingDays(cal, 2024, time.February))
}

func TestWorkingDays_WeekendsOnly(t *testing.T) {
	cal, err := New("XX", nil)
	require.NoError(t, err)

	// March 2024 has 21 weekdays.
	assert.Equal(t, 21, WorkingDays(cal, 2024, time.March))
}

func TestOverrides(t *testing.T) {
	doc := `
holidays:
  - 2024-04-29
  - 2024-04-30
working_days:
  - 2024-04-27
`
	o, err := ParseOverrides(strings.NewReader(doc))
	require.NoError(t, err)

	cal, err := New("RU", o)
	require.NoError(t, err)

	assert.True(t, cal.IsWorkingDay(day(2024, time.April, 27)))
	assert.False(t, cal.IsWorkingDay(day(2024, time.April, 29)))
	// 22 weekdays - 2 bridge days + 1 working Saturday
	assert.Equal(t, 21, WorkingDays(cal, 2024, time.April))
}

func TestOverrides_InvalidDate(t *testing.T) {
	_, err := New("RU", &Overrides{Holidays: []string{"29.04.2024"}})
	assert.Error(t, err)
}

func TestLoadOverrides(t *testing.T) {
	o, err := LoadOverrides("")
	require.NoError(t, err)
	assert.Nil(t, o)

	path := filepath.Join(t.TempDir(), "holidays.yaml")
	require.NoError(t, os.WriteFile(path, []byte("holidays: [2025-01-09]\n"), 0644))

	o, err = LoadOverrides(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"2025-01-09"}, o.Holidays)

	_, err = LoadOverrides(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
