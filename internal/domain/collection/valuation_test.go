package collection

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"milkbill/internal/core/types"
	"milkbill/internal/domain/rates"
)

func dec(s string) types.Decimal {
	return types.NewDecimal(types.MustMoney(s))
}

func baseInput() Input {
	return Input{
		ID:       "rec-1",
		FarmerID: "F-001",
		Date:     types.MustDate("2025-06-10"),
		Shift:    types.ShiftAM,
		QtyKg:    dec("100"),
		Fat:      dec("6.5"),
		CLR:      dec("28"),
		BaseRate: dec("7"),
	}
}

func TestValuate_KgFatMethod(t *testing.T) {
	farmer := rates.FarmerRateConfig{
		FarmerID:   "F-001",
		RateMethod: rates.RateMethodKgFat,
		FatIncentive: rates.CategoryConfig{
			Slabs: []rates.Slab{
				{MinBound: dec("6"), MaxBound: dec("7"), Rate: dec("0.5"), Basis: rates.BasisKgFat},
			},
		},
		Cartage: &rates.SingleRule{Rate: dec("0.10"), Basis: rates.BasisLiter},
	}
	common := rates.CommonRateConfig{
		SNFIncentive: rates.CategoryConfig{
			Flat: &rates.FlatRule{Threshold: dec("8"), Rate: dec("0.30"), Basis: rates.BasisKgSNF},
		},
	}

	rec := Valuate(baseInput(), farmer, common)

	assert.Equal(t, "97.09", rec.QtyLiters.String())
	assert.Equal(t, "8.73", rec.SNF.String())

	// 7.00 per kg fat on 6.5 kg fat.
	assert.Equal(t, "45.5", rec.MilkValue.String())
	// 0.50 per kg fat.
	assert.Equal(t, "3.25", rec.FatIncentive.String())
	// Common flat rule: 0.30 per kg SNF on 8.73 kg.
	assert.Equal(t, "2.62", rec.SNFIncentive.String())
	// 0.10 per liter on 97.09 liters.
	assert.Equal(t, "9.71", rec.Cartage.String())

	assert.True(t, rec.FatDeduction.IsZero())
	assert.True(t, rec.SNFDeduction.IsZero())
	assert.True(t, rec.QtyIncentive.IsZero())
	assert.True(t, rec.ExtraRate.IsZero())
}

func TestValuate_LiterMethod(t *testing.T) {
	in := baseInput()
	in.BaseRate = dec("40")
	farmer := rates.FarmerRateConfig{FarmerID: "F-001", RateMethod: rates.RateMethodLiter}

	rec := Valuate(in, farmer, rates.CommonRateConfig{})

	// 40.00 per liter on 97.09 liters.
	assert.Equal(t, "3883.6", rec.MilkValue.String())
}

func TestValuate_FarmerOverridesCommon(t *testing.T) {
	farmer := rates.FarmerRateConfig{
		RateMethod: rates.RateMethodKgFat,
		FatIncentive: rates.CategoryConfig{
			Slabs: []rates.Slab{
				{MinBound: dec("6"), MaxBound: dec("7"), Rate: dec("1.00"), Basis: rates.BasisKgFat},
			},
		},
	}
	common := rates.CommonRateConfig{
		FatIncentive: rates.CategoryConfig{
			Slabs: []rates.Slab{
				{MinBound: dec("6"), MaxBound: dec("7"), Rate: dec("0.25"), Basis: rates.BasisKgFat},
			},
		},
	}

	rec := Valuate(baseInput(), farmer, common)
	assert.Equal(t, "6.5", rec.FatIncentive.String())
}

func TestValuate_CommonFallback(t *testing.T) {
	farmer := rates.FarmerRateConfig{RateMethod: rates.RateMethodKgFat}
	common := rates.CommonRateConfig{
		FatDeduction: rates.CategoryConfig{
			Slabs: []rates.Slab{
				{MinBound: dec("0"), MaxBound: dec("7"), Rate: dec("0.20"), Basis: rates.BasisKgFat},
			},
		},
	}

	rec := Valuate(baseInput(), farmer, common)
	// Deductions come back as positive magnitudes.
	assert.Equal(t, "1.3", rec.FatDeduction.String())
	assert.True(t, rec.FatDeduction.IsPositive())
}

func TestValuate_NegativeRateClampsToZero(t *testing.T) {
	farmer := rates.FarmerRateConfig{
		RateMethod: rates.RateMethodKgFat,
		QtyIncentive: rates.CategoryConfig{
			Slabs: []rates.Slab{
				{MinBound: dec("0"), MaxBound: dec("1000"), Rate: dec("-0.50"), Basis: rates.BasisLiter},
			},
		},
	}

	rec := Valuate(baseInput(), farmer, rates.CommonRateConfig{})
	assert.True(t, rec.QtyIncentive.IsZero())
}

func TestValuate_PartialReading(t *testing.T) {
	in := baseInput()
	in.CLR = types.Decimal{}

	rec := Valuate(in, rates.FarmerRateConfig{RateMethod: rates.RateMethodKgFat}, rates.CommonRateConfig{})

	// No CLR means no derived SNF and no SNF-driven amounts.
	assert.True(t, rec.SNF.IsZero())
	assert.True(t, rec.SNFIncentive.IsZero())
	assert.True(t, rec.SNFDeduction.IsZero())
}

func TestValuate_ValidityWindowGatesSlab(t *testing.T) {
	// Slab only valid from 2025-07-01 AM; a June record misses it.
	farmer := rates.FarmerRateConfig{
		RateMethod: rates.RateMethodKgFat,
		FatIncentive: rates.CategoryConfig{
			Slabs: []rates.Slab{
				{
					MinBound:  dec("0"),
					MaxBound:  dec("10"),
					Rate:      dec("0.50"),
					Basis:     rates.BasisKgFat,
					ValidFrom: types.At(types.MustDate("2025-07-01"), types.ShiftAM),
				},
			},
		},
	}

	rec := Valuate(baseInput(), farmer, rates.CommonRateConfig{})
	assert.True(t, rec.FatIncentive.IsZero())
}
