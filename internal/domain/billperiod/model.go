// Package billperiod maps calendar dates to recurring accounting periods.
// A definition is a day-of-month pattern; an instance is that pattern
// expanded for one concrete month and year, possibly spanning into the
// following month.
package billperiod

import (
	"fmt"
	"time"

	"milkbill/internal/core/types"
)

// Definition is a recurring day-of-month pattern. EndDay 31 means "last day
// of the month" regardless of month length. A StartDay numerically larger
// than EndDay spans the period into the next month (e.g. 26th through 10th).
type Definition struct {
	Name       string      `json:"name,omitempty"`
	StartDay   int         `json:"startDay"`
	StartShift types.Shift `json:"startShift"`
	EndDay     int         `json:"endDay"`
	EndShift   types.Shift `json:"endShift"`
}

// Validate checks the day bounds.
func (d Definition) Validate() error {
	if d.StartDay < 1 || d.StartDay > 31 {
		return fmt.Errorf("startDay %d out of range", d.StartDay)
	}
	if d.EndDay < 1 || d.EndDay > 31 {
		return fmt.Errorf("endDay %d out of range", d.EndDay)
	}
	return nil
}

// InstanceID is the composite key identifying one expanded period:
// the definition's day bounds plus the anchor month and year.
func (d Definition) InstanceID(month time.Month, year int) string {
	return fmt.Sprintf("%d-%d-%02d-%d", d.StartDay, d.EndDay, int(month), year)
}

// Instance is a definition expanded for one specific month+year, with
// absolute shift-aware start and end bounds.
type Instance struct {
	ID         string      `json:"id"`
	Definition Definition  `json:"definition"`
	Month      time.Month  `json:"monthIndex"`
	Year       int         `json:"year"`
	Start      types.DateShift `json:"start"`
	End        types.DateShift `json:"end"`
	Locked     bool        `json:"locked"`
}

// Contains reports whether a shift-aware date falls inside the instance,
// bounds inclusive. The shift gates inclusion only on the boundary days.
func (i Instance) Contains(at types.DateShift) bool {
	return at.Compare(i.Start) >= 0 && at.Compare(i.End) <= 0
}

// lastDayOfMonth resolves the true calendar length of a month.
func lastDayOfMonth(year int, month time.Month) int {
	// Day 0 of the next month is the last day of this one.
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// clampDay caps a configured day to the month's real length, so EndDay 31
// resolves to Feb 28/29 and a 30-day month's 30th.
func clampDay(day, year int, month time.Month) int {
	if last := lastDayOfMonth(year, month); day > last {
		return last
	}
	return day
}
