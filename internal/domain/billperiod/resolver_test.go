package billperiod

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"milkbill/internal/core/types"
)

var (
	firstHalf = Definition{StartDay: 1, StartShift: types.ShiftAM, EndDay: 15, EndShift: types.ShiftPM}
	// EndDay 31 resolves to the true last day of the month.
	secondHalf = Definition{StartDay: 16, StartShift: types.ShiftAM, EndDay: 31, EndShift: types.ShiftPM}
	// Spans the month boundary: 26th through the 10th of the next month.
	spanning = Definition{StartDay: 26, StartShift: types.ShiftAM, EndDay: 10, EndShift: types.ShiftPM}
)

func at(date string, shift types.Shift) types.DateShift {
	return types.At(types.MustDate(date), shift)
}

func TestExpand_LastDayOfMonth(t *testing.T) {
	inst := Expand(secondHalf, time.February, 2025, false)
	assert.Equal(t, "2025-02-16", inst.Start.Date.String())
	assert.Equal(t, "2025-02-28", inst.End.Date.String())

	inst = Expand(secondHalf, time.February, 2024, false) // leap year
	assert.Equal(t, "2024-02-29", inst.End.Date.String())

	inst = Expand(secondHalf, time.April, 2025, false)
	assert.Equal(t, "2025-04-30", inst.End.Date.String())
}

func TestExpand_SpanningMonth(t *testing.T) {
	inst := Expand(spanning, time.June, 2025, false)
	assert.Equal(t, "2025-06-26", inst.Start.Date.String())
	assert.Equal(t, "2025-07-10", inst.End.Date.String())

	// December spans into January of the next year.
	inst = Expand(spanning, time.December, 2025, false)
	assert.Equal(t, "2025-12-26", inst.Start.Date.String())
	assert.Equal(t, "2026-01-10", inst.End.Date.String())
}

func TestGenerateInstances(t *testing.T) {
	defs := []Definition{firstHalf, secondHalf}
	ref := types.MustDate("2025-06-20")

	instances := GenerateInstances(defs, nil, ref, 24)
	require.Len(t, instances, 48)

	// Window ends at the reference month.
	last := instances[len(instances)-1]
	assert.Equal(t, time.June, last.Month)
	assert.Equal(t, 2025, last.Year)

	// And starts 23 months earlier.
	first := instances[0]
	assert.Equal(t, time.July, first.Month)
	assert.Equal(t, 2023, first.Year)
}

func TestGenerateInstances_LockedKeys(t *testing.T) {
	defs := []Definition{firstHalf}
	lockedID := firstHalf.InstanceID(time.May, 2025)

	instances := GenerateInstances(defs, []string{lockedID}, types.MustDate("2025-06-20"), 3)
	require.Len(t, instances, 3)

	var lockedCount int
	for _, inst := range instances {
		if inst.Locked {
			lockedCount++
			assert.Equal(t, lockedID, inst.ID)
		}
	}
	assert.Equal(t, 1, lockedCount)
}

func TestResolvePeriodForDate(t *testing.T) {
	defs := []Definition{firstHalf, secondHalf}

	id, ok := ResolvePeriodForDate(at("2025-06-10", types.ShiftAM), defs)
	require.True(t, ok)
	assert.Equal(t, firstHalf.InstanceID(time.June, 2025), id)

	id, ok = ResolvePeriodForDate(at("2025-06-16", types.ShiftAM), defs)
	require.True(t, ok)
	assert.Equal(t, secondHalf.InstanceID(time.June, 2025), id)

	// Last day of the month belongs to the second half via EndDay=31.
	id, ok = ResolvePeriodForDate(at("2025-06-30", types.ShiftPM), defs)
	require.True(t, ok)
	assert.Equal(t, secondHalf.InstanceID(time.June, 2025), id)
}

func TestResolvePeriodForDate_Spanning(t *testing.T) {
	defs := []Definition{spanning}

	// July 5 belongs to the instance anchored at June.
	id, ok := ResolvePeriodForDate(at("2025-07-05", types.ShiftAM), defs)
	require.True(t, ok)
	assert.Equal(t, spanning.InstanceID(time.June, 2025), id)

	// June 26 belongs to the same instance.
	id2, ok := ResolvePeriodForDate(at("2025-06-26", types.ShiftAM), defs)
	require.True(t, ok)
	assert.Equal(t, id, id2)
}

func TestResolvePeriodForDate_ShiftBoundary(t *testing.T) {
	// Period starts on the 16th PM: the 16th AM is outside it.
	pmStart := Definition{StartDay: 16, StartShift: types.ShiftPM, EndDay: 31, EndShift: types.ShiftPM}
	defs := []Definition{pmStart}

	_, ok := ResolvePeriodForDate(at("2025-06-16", types.ShiftAM), defs)
	assert.False(t, ok)

	_, ok = ResolvePeriodForDate(at("2025-06-16", types.ShiftPM), defs)
	assert.True(t, ok)
}

func TestResolvePeriodForDate_Uncovered(t *testing.T) {
	// Definitions covering only days 1-10 leave the rest of the month unassigned.
	defs := []Definition{{StartDay: 1, EndDay: 10}}

	_, ok := ResolvePeriodForDate(at("2025-06-20", types.ShiftAM), defs)
	assert.False(t, ok)
}

func TestResolvePeriodForDate_Deterministic(t *testing.T) {
	// Non-overlapping definitions: every covered date maps to exactly one id.
	defs := []Definition{firstHalf, secondHalf}
	d := types.MustDate("2025-03-01")
	for i := 0; i < 31; i++ {
		for _, shift := range []types.Shift{types.ShiftAM, types.ShiftPM} {
			point := types.At(d.AddDays(i), shift)
			id1, ok1 := ResolvePeriodForDate(point, defs)
			id2, ok2 := ResolvePeriodForDate(point, defs)
			assert.Equal(t, ok1, ok2)
			assert.Equal(t, id1, id2)
		}
	}
}

func TestLockRegistry(t *testing.T) {
	reg := NewLockRegistry([]string{"1-15-05-2025"})
	assert.True(t, reg.IsLocked("1-15-05-2025"))
	assert.False(t, reg.IsLocked("1-15-06-2025"))
}
