package billing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"milkbill/internal/core/types"
	"milkbill/internal/domain/billperiod"
	"milkbill/internal/domain/collection"
)

var defs = []billperiod.Definition{
	{StartDay: 1, StartShift: types.ShiftAM, EndDay: 15, EndShift: types.ShiftPM},
	{StartDay: 16, StartShift: types.ShiftAM, EndDay: 31, EndShift: types.ShiftPM},
}

func dec(s string) types.Decimal {
	return types.NewDecimal(types.MustMoney(s))
}

func record(farmerID, date string, shift types.Shift) collection.Record {
	return collection.Record{
		ID:        farmerID + "-" + date + "-" + string(shift),
		FarmerID:  farmerID,
		Date:      types.MustDate(date),
		Shift:     shift,
		QtyKg:     dec("100"),
		QtyLiters: dec("97.09"),
		Fat:       dec("6.5"),
		SNF:       dec("8.73"),
		MilkValue: dec("45.50"),

		FatIncentive: dec("3.25"),
		SNFDeduction: dec("1.10"),
		Cartage:      dec("9.71"),
	}
}

func TestBuildBill(t *testing.T) {
	periodID := defs[0].InstanceID(6, 2025)
	collections := []collection.Record{
		record("F-001", "2025-06-10", types.ShiftPM),
		record("F-001", "2025-06-10", types.ShiftAM),
		record("F-001", "2025-06-20", types.ShiftAM), // second half, excluded
		record("F-002", "2025-06-10", types.ShiftAM), // other farmer, excluded
	}
	adjustments := []MasterAdjustment{
		{FarmerID: "F-001", PeriodID: periodID, AccountHead: "Festival bonus", Type: AdjustmentAddition, Amount: dec("250")},
		{FarmerID: "F-001", PeriodID: periodID, AccountHead: "Feed advance", Type: AdjustmentDeduction, Amount: dec("500")},
		{FarmerID: "F-001", PeriodID: "1-15-05-2025", Type: AdjustmentDeduction, Amount: dec("999")},
	}

	stmt := BuildBill("F-001", periodID, defs, collections, adjustments)
	require.NotNil(t, stmt)

	require.Len(t, stmt.Collections, 2)
	// Ordered by date then shift, AM before PM.
	assert.Equal(t, types.ShiftAM, stmt.Collections[0].Shift)
	assert.Equal(t, types.ShiftPM, stmt.Collections[1].Shift)

	assert.Equal(t, "200", stmt.TotalQtyKg.String())
	assert.Equal(t, "13", stmt.TotalFatKg.String())
	assert.Equal(t, "17.46", stmt.TotalSNFKg.String())
	assert.Equal(t, "91", stmt.MilkValue.String())
	assert.Equal(t, "6.5", stmt.FatIncentive.String())
	assert.Equal(t, "2.2", stmt.SNFDeduction.String())
	assert.Equal(t, "19.42", stmt.Cartage.String())

	assert.Equal(t, "250", stmt.TotalAdditions.String())
	assert.Equal(t, "500", stmt.TotalMasterDeducted.String())

	// 91 + 6.5 + 19.42 + 250 = 366.92 earned; 2.2 + 500 = 502.2 deducted.
	assert.Equal(t, "366.92", stmt.TotalEarnings.String())
	assert.Equal(t, "502.2", stmt.TotalDeductions.String())
	assert.Equal(t, "-135", stmt.NetPayable.String())
}

func TestBuildBill_Idempotent(t *testing.T) {
	periodID := defs[0].InstanceID(6, 2025)
	collections := []collection.Record{record("F-001", "2025-06-05", types.ShiftAM)}

	first := BuildBill("F-001", periodID, defs, collections, nil)
	second := BuildBill("F-001", periodID, defs, collections, nil)
	require.NotNil(t, first)
	require.NotNil(t, second)
	assert.Equal(t, first.NetPayable.String(), second.NetPayable.String())
	assert.Equal(t, first.TotalEarnings.String(), second.TotalEarnings.String())
}

func TestBuildBill_NoActivityMeansAbsentBill(t *testing.T) {
	periodID := defs[0].InstanceID(6, 2025)

	stmt := BuildBill("F-009", periodID, defs, nil, nil)
	assert.Nil(t, stmt)

	// Adjustments alone still produce a bill.
	adjustments := []MasterAdjustment{
		{FarmerID: "F-009", PeriodID: periodID, Type: AdjustmentDeduction, Amount: dec("100")},
	}
	stmt = BuildBill("F-009", periodID, defs, nil, adjustments)
	require.NotNil(t, stmt)
	assert.Equal(t, "-100", stmt.NetPayable.String())
}

func TestBuildBill_UnresolvableDateExcluded(t *testing.T) {
	// Definitions covering only days 1-10 leave the 20th outside every period.
	partial := []billperiod.Definition{{StartDay: 1, EndDay: 10}}
	periodID := partial[0].InstanceID(6, 2025)

	collections := []collection.Record{record("F-001", "2025-06-20", types.ShiftAM)}
	stmt := BuildBill("F-001", periodID, partial, collections, nil)
	assert.Nil(t, stmt)
}

func TestBuildBill_NetPayableRounding(t *testing.T) {
	periodID := defs[0].InstanceID(6, 2025)
	rec := record("F-001", "2025-06-05", types.ShiftAM)
	rec.FatIncentive = dec("0")
	rec.SNFDeduction = dec("0")
	rec.Cartage = dec("0")
	rec.MilkValue = dec("45.50")

	stmt := BuildBill("F-001", periodID, defs, []collection.Record{rec}, nil)
	require.NotNil(t, stmt)
	// 45.50 rounds half away from zero to 46.
	assert.Equal(t, "46", stmt.NetPayable.String())
	assert.Equal(t, "45.5", stmt.TotalEarnings.String())
}
