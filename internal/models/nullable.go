package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// DateLayout is the canonical text form of a calendar date.
const DateLayout = "2006-01-02"

// NullDate is a calendar date that may be absent.
type NullDate struct {
	Time  time.Time
	Valid bool
}

// NewDate returns a valid NullDate at midnight UTC of the given day.
func NewDate(year int, month time.Month, day int) NullDate {
	return NullDate{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC), Valid: true}
}

// DateOf truncates t to its calendar day.
func DateOf(t time.Time) NullDate {
	return NewDate(t.Year(), t.Month(), t.Day())
}

// String returns the date as YYYY-MM-DD, or "" when absent.
func (d NullDate) String() string {
	if !d.Valid {
		return ""
	}
	return d.Time.Format(DateLayout)
}

func (d NullDate) MarshalJSON() ([]byte, error) {
	if !d.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(d.String())
}

func (d *NullDate) UnmarshalJSON(data []byte) error {
	var s *string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if s == nil || *s == "" {
		*d = NullDate{}
		return nil
	}
	t, err := time.Parse(DateLayout, *s)
	if err != nil {
		return fmt.Errorf("invalid date %q: %w", *s, err)
	}
	*d = DateOf(t)
	return nil
}

// TimeLayout is the canonical text form of a time of day.
const TimeLayout = "15:04:05"

const secondsPerDay = 24 * 60 * 60

// NullTime is a time of day, stored as seconds since midnight, that may be absent.
type NullTime struct {
	Seconds int
	Valid   bool
}

// NewTimeOfDay returns a valid NullTime. Values outside a day wrap around.
func NewTimeOfDay(hour, minute, second int) NullTime {
	return TimeFromSeconds(hour*3600 + minute*60 + second)
}

// TimeFromSeconds returns a valid NullTime for the given seconds since midnight.
func TimeFromSeconds(sec int) NullTime {
	sec %= secondsPerDay
	if sec < 0 {
		sec += secondsPerDay
	}
	return NullTime{Seconds: sec, Valid: true}
}

// Hour, Minute and Second split the time of day.
func (t NullTime) Hour() int   { return t.Seconds / 3600 }
func (t NullTime) Minute() int { return t.Seconds % 3600 / 60 }
func (t NullTime) Second() int { return t.Seconds % 60 }

// String returns HH:MM:SS, or "" when absent.
func (t NullTime) String() string {
	if !t.Valid {
		return ""
	}
	return fmt.Sprintf("%02d:%02d:%02d", t.Hour(), t.Minute(), t.Second())
}

// Short returns HH:MM, or "" when absent.
func (t NullTime) Short() string {
	if !t.Valid {
		return ""
	}
	return fmt.Sprintf("%02d:%02d", t.Hour(), t.Minute())
}

// Sub returns t-u. Both values must be valid.
func (t NullTime) Sub(u NullTime) time.Duration {
	return time.Duration(t.Seconds-u.Seconds) * time.Second
}

func (t NullTime) MarshalJSON() ([]byte, error) {
	if !t.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(t.String())
}

func (t *NullTime) UnmarshalJSON(data []byte) error {
	var s *string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if s == nil || *s == "" {
		*t = NullTime{}
		return nil
	}
	parsed, err := time.Parse(TimeLayout, *s)
	if err != nil {
		return fmt.Errorf("invalid time %q: %w", *s, err)
	}
	*t = NewTimeOfDay(parsed.Hour(), parsed.Minute(), parsed.Second())
	return nil
}
