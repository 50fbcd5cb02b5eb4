package billperiod

import (
	"time"

	"milkbill/internal/core/types"
)

// DefaultWindowMonths is the rolling expansion window: the last 24 months
// through the current month.
const DefaultWindowMonths = 24

// Expand builds the concrete instance of a definition anchored at month+year.
// The anchor month carries the start day; a start day numerically larger
// than the end day pushes the end into the following month.
func Expand(def Definition, month time.Month, year int, locked bool) Instance {
	startDay := clampDay(def.StartDay, year, month)
	start := types.NewDate(year, month, startDay)

	endMonth, endYear := month, year
	if def.StartDay > def.EndDay {
		endMonth++
		if endMonth > time.December {
			endMonth = time.January
			endYear++
		}
	}
	endDay := clampDay(def.EndDay, endYear, endMonth)
	end := types.NewDate(endYear, endMonth, endDay)

	startShift := def.StartShift
	if startShift == "" {
		startShift = types.ShiftAM
	}
	endShift := def.EndShift
	if endShift == "" {
		endShift = types.ShiftPM
	}

	return Instance{
		ID:         def.InstanceID(month, year),
		Definition: def,
		Month:      month,
		Year:       year,
		Start:      types.At(start, startShift),
		End:        types.At(end, endShift),
		Locked:     locked,
	}
}

// GenerateInstances expands every definition into one instance per month over
// a rolling window ending at ref's month. Instances whose composite key
// appears in lockedKeys are flagged locked.
func GenerateInstances(defs []Definition, lockedKeys []string, ref types.Date, windowMonths int) []Instance {
	if windowMonths <= 0 {
		windowMonths = DefaultWindowMonths
	}

	locked := make(map[string]bool, len(lockedKeys))
	for _, k := range lockedKeys {
		locked[k] = true
	}

	instances := make([]Instance, 0, len(defs)*windowMonths)
	anchor := types.NewDate(ref.Year(), ref.Month(), 1).AddMonths(-(windowMonths - 1))
	for m := 0; m < windowMonths; m++ {
		at := anchor.AddMonths(m)
		for _, def := range defs {
			inst := Expand(def, at.Month(), at.Year(), false)
			inst.Locked = locked[inst.ID]
			instances = append(instances, inst)
		}
	}
	return instances
}

// ResolvePeriodForDate finds the period instance containing the shift-aware
// date. Returns ok=false when no definition covers it; callers must exclude
// such records from period-scoped aggregates, never assign them to the
// nearest period. Spanning definitions are checked against both the date's
// own month and the previous month's anchor.
func ResolvePeriodForDate(at types.DateShift, defs []Definition) (string, bool) {
	date := at.Date
	for _, def := range defs {
		inst := Expand(def, date.Month(), date.Year(), false)
		if inst.Contains(at) {
			return inst.ID, true
		}

		prev := types.NewDate(date.Year(), date.Month(), 1).AddMonths(-1)
		inst = Expand(def, prev.Month(), prev.Year(), false)
		if inst.Contains(at) {
			return inst.ID, true
		}
	}
	return "", false
}

// LockRegistry answers whether a period instance is closed for postings.
type LockRegistry struct {
	keys map[string]bool
}

// NewLockRegistry builds a registry from the locked composite keys.
func NewLockRegistry(lockedKeys []string) *LockRegistry {
	keys := make(map[string]bool, len(lockedKeys))
	for _, k := range lockedKeys {
		keys[k] = true
	}
	return &LockRegistry{keys: keys}
}

// IsLocked reports whether the instance id is locked.
func (r *LockRegistry) IsLocked(instanceID string) bool {
	return r.keys[instanceID]
}
