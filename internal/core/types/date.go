package types

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// DateLayout is the wire format for all business dates.
const DateLayout = "2006-01-02"

// Date is a calendar date without a time-of-day component.
// Serialized as "YYYY-MM-DD"; also accepts RFC3339 input and truncates it.
type Date struct {
	t time.Time
}

// NewDate creates a Date from year, month and day.
func NewDate(year int, month time.Month, day int) Date {
	return Date{t: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates a time.Time to its calendar date.
func DateOf(t time.Time) Date {
	return NewDate(t.Year(), t.Month(), t.Day())
}

// ParseDate parses "YYYY-MM-DD" (or RFC3339, truncated).
func ParseDate(s string) (Date, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(DateLayout, s); err == nil {
		return DateOf(t), nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return Date{}, fmt.Errorf("parse date %q: %w", s, err)
	}
	return DateOf(t), nil
}

// MustDate parses a date, panicking on error. Use only for constants and tests.
func MustDate(s string) Date {
	d, err := ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

func (d Date) IsZero() bool         { return d.t.IsZero() }
func (d Date) Year() int            { return d.t.Year() }
func (d Date) Month() time.Month    { return d.t.Month() }
func (d Date) Day() int             { return d.t.Day() }
func (d Date) Time() time.Time      { return d.t }
func (d Date) Before(o Date) bool   { return d.t.Before(o.t) }
func (d Date) After(o Date) bool    { return d.t.After(o.t) }
func (d Date) Equal(o Date) bool    { return d.t.Equal(o.t) }
func (d Date) AddDays(n int) Date   { return DateOf(d.t.AddDate(0, 0, n)) }
func (d Date) AddMonths(n int) Date { return DateOf(d.t.AddDate(0, n, 0)) }

// Compare returns -1, 0 or 1.
func (d Date) Compare(o Date) int {
	switch {
	case d.t.Before(o.t):
		return -1
	case d.t.After(o.t):
		return 1
	default:
		return 0
	}
}

// String returns the wire format.
func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.t.Format(DateLayout)
}

// MarshalJSON encodes as "YYYY-MM-DD" (null when zero).
func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(d.String())
}

// UnmarshalJSON accepts "YYYY-MM-DD", RFC3339 strings, empty string or null.
func (d *Date) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*d = Date{}
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if strings.TrimSpace(s) == "" {
		*d = Date{}
		return nil
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Shift is the half-day collection shift. AM orders before PM within a day.
type Shift string

const (
	ShiftAM Shift = "AM"
	ShiftPM Shift = "PM"
)

// ParseShift normalizes the shift literals used upstream. "Morning" and
// "Evening" are accepted as ordering-level aliases for AM and PM.
func ParseShift(s string) (Shift, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "AM", "MORNING":
		return ShiftAM, nil
	case "PM", "EVENING":
		return ShiftPM, nil
	default:
		return "", fmt.Errorf("invalid shift %q", s)
	}
}

// Order returns 0 for AM, 1 for PM. Unknown shifts sort first.
func (s Shift) Order() int {
	if s == ShiftPM {
		return 1
	}
	return 0
}

// UnmarshalJSON accepts the alias literals too.
func (s *Shift) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if strings.TrimSpace(raw) == "" {
		*s = ""
		return nil
	}
	parsed, err := ParseShift(raw)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// DateShift is a shift-aware point on the calendar: a date plus the AM/PM
// half it belongs to. Used for slab validity windows and period boundaries.
type DateShift struct {
	Date  Date  `json:"date"`
	Shift Shift `json:"shift"`
}

// At builds a DateShift.
func At(d Date, s Shift) DateShift {
	return DateShift{Date: d, Shift: s}
}

// IsZero reports whether the bound is unset (open-ended window side).
func (ds DateShift) IsZero() bool {
	return ds.Date.IsZero()
}

// Compare orders two shift-aware points: by date, then AM before PM.
func (ds DateShift) Compare(o DateShift) int {
	if c := ds.Date.Compare(o.Date); c != 0 {
		return c
	}
	switch {
	case ds.Shift.Order() < o.Shift.Order():
		return -1
	case ds.Shift.Order() > o.Shift.Order():
		return 1
	default:
		return 0
	}
}

func (ds DateShift) String() string {
	return ds.Date.String() + " " + string(ds.Shift)
}
