// Package calendar decides which calendar days are working days.
package calendar

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Calendar reports whether a day is a working day.
type Calendar interface {
	IsWorkingDay(day time.Time) bool
}

type monthDay struct {
	month time.Month
	day   int
}

// Fixed-date public holidays per country.
var countryHolidays = map[string][]monthDay{
	"RU": {
		{time.January, 1}, {time.January, 2}, {time.January, 3}, {time.January, 4},
		{time.January, 5}, {time.January, 6}, {time.January, 7}, {time.January, 8},
		{time.February, 23},
		{time.March, 8},
		{time.May, 1},
		{time.May, 9},
		{time.June, 12},
		{time.November, 4},
	},
}

// Overrides adjusts the fixed calendar for a specific year, for example
// bridge days off and the Saturdays worked in exchange.
type Overrides struct {
	Holidays    []string `yaml:"holidays"`
	WorkingDays []string `yaml:"working_days"`
}

// FixedCalendar treats Saturdays, Sundays and fixed public holidays as days off.
type FixedCalendar struct {
	country  string
	holidays map[monthDay]struct{}
	extraOff map[string]struct{}
	extraOn  map[string]struct{}
}

// New creates a calendar for country. An unknown country has weekends only.
func New(country string, overrides *Overrides) (*FixedCalendar, error) {
	c := &FixedCalendar{
		country:  strings.ToUpper(country),
		holidays: make(map[monthDay]struct{}),
		extraOff: make(map[string]struct{}),
		extraOn:  make(map[string]struct{}),
	}
	for _, md := range countryHolidays[c.country] {
		c.holidays[md] = struct{}{}
	}

	if overrides != nil {
		for _, s := range overrides.Holidays {
			key, err := dateKey(s)
			if err != nil {
				return nil, fmt.Errorf("holidays: %w", err)
			}
			c.extraOff[key] = struct{}{}
		}
		for _, s := range overrides.WorkingDays {
			key, err := dateKey(s)
			if err != nil {
				return nil, fmt.Errorf("working_days: %w", err)
			}
			c.extraOn[key] = struct{}{}
		}
	}
	return c, nil
}

// Country returns the ISO code the calendar was built for.
func (c *FixedCalendar) Country() string {
	return c.country
}

func (c *FixedCalendar) IsWorkingDay(day time.Time) bool {
	key := day.Format("2006-01-02")
	if _, ok := c.extraOn[key]; ok {
		return true
	}
	if _, ok := c.extraOff[key]; ok {
		return false
	}
	if wd := day.Weekday(); wd == time.Saturday || wd == time.Sunday {
		return false
	}
	_, holiday := c.holidays[monthDay{day.Month(), day.Day()}]
	return !holiday
}

// WorkingDays counts the working days of a calendar month.
func WorkingDays(cal Calendar, year int, month time.Month) int {
	n := 0
	for d := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC); d.Month() == month; d = d.AddDate(0, 0, 1) {
		if cal.IsWorkingDay(d) {
			n++
		}
	}
	return n
}

// ParseOverrides parses a YAML overrides document.
func ParseOverrides(r io.Reader) (*Overrides, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	var o Overrides
	if err := yaml.Unmarshal(data, &o); err != nil {
		return nil, err
	}
	return &o, nil
}

// LoadOverrides reads overrides from a YAML file. An empty path yields no overrides.
func LoadOverrides(path string) (*Overrides, error) {
	if path == "" {
		return nil, nil
	}
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	return ParseOverrides(file)
}

func dateKey(s string) (string, error) {
	t, err := time.Parse("2006-01-02", strings.TrimSpace(s))
	if err != nil {
		return "", fmt.Errorf("invalid date %q", s)
	}
	return t.Format("2006-01-02"), nil
}
