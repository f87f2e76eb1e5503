package core

import (
	"bytes"
	"fmt"
	"strings"
	"time"
)

const (
	DateLayout  = "2006-01-02"
	MonthLayout = "2006-01"
)

// Date is a calendar day in UTC.
type Date struct {
	time.Time
}

// Month identifies a calendar month as "YYYY-MM".
type Month string

// NewDate creates a new Date from year, month, day
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates t to its calendar day, keeping t's own year/month/day.
func DateOf(t time.Time) Date {
	return NewDate(t.Year(), int(t.Month()), t.Day())
}

// ParseDate accepts YYYY-MM-DD or an RFC3339 timestamp.
func ParseDate(s string) (Date, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(DateLayout, s); err == nil {
		return DateOf(t), nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return Date{}, fmt.Errorf("%w: invalid date %q", ErrValidation, s)
	}
	return DateOf(t), nil
}

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(DateLayout)
}

func (d Date) Month() Month {
	return MonthOf(d.Time)
}

func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return []byte(`"` + d.String() + `"`), nil
}

func (d *Date) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) || bytes.Equal(data, []byte(`""`)) {
		*d = Date{}
		return nil
	}
	parsed, err := ParseDate(string(bytes.Trim(data, `"`)))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// MonthOf returns the month containing t.
func MonthOf(t time.Time) Month {
	return Month(t.Format(MonthLayout))
}

// ParseMonth validates s as YYYY-MM.
func ParseMonth(s string) (Month, error) {
	m := Month(strings.TrimSpace(s))
	if !m.Valid() {
		return "", ErrInvalidMonth
	}
	return m, nil
}

func (m Month) Valid() bool {
	_, err := time.Parse(MonthLayout, string(m))
	return err == nil
}

// Start is midnight UTC of the first day of the month.
func (m Month) Start() time.Time {
	t, err := time.Parse(MonthLayout, string(m))
	if err != nil {
		return time.Time{}
	}
	return t
}

// End is the last instant of the month.
func (m Month) End() time.Time {
	return m.Start().AddDate(0, 1, 0).Add(-time.Nanosecond)
}

// Contains reports whether d falls inside the month, both ends inclusive.
func (m Month) Contains(d Date) bool {
	if d.IsZero() || !m.Valid() {
		return false
	}
	return !d.Before(m.Start()) && !d.After(m.End())
}

// AddMonths shifts the month by n (negative goes back).
func (m Month) AddMonths(n int) Month {
	return MonthOf(m.Start().AddDate(0, n, 0))
}

// SubMonths goes back n calendar months from t's day, clamping the day to
// the last day of the target month.
func SubMonths(t time.Time, n int) Date {
	target := MonthOf(t).AddMonths(-n).Start()
	last := target.AddDate(0, 1, -1).Day()
	return NewDate(target.Year(), int(target.Month()), min(t.Day(), last))
}

// FirstDay renders the month as its first calendar day, YYYY-MM-01.
func (m Month) FirstDay() string {
	return m.Start().Format(DateLayout)
}

// Label renders the month as "January 2025".
func (m Month) Label() string {
	return m.Start().Format("January 2006")
}
