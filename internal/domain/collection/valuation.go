package collection

import (
	"github.com/shopspring/decimal"

	"milkbill/internal/core/types"
	"milkbill/internal/domain/quality"
	"milkbill/internal/domain/rates"
)

var hundred = decimal.NewFromInt(100)

// Valuate is the pure valuation function: it derives SNF and liters from the
// snapshot, then independently resolves each incentive and deduction
// category through the precedence chain (farmer slabs, farmer flat override,
// common configuration). All sub-amounts are additive and non-negative;
// deduction categories yield positive magnitudes in their own fields.
func Valuate(in Input, farmer rates.FarmerRateConfig, common rates.CommonRateConfig) Record {
	rec := Record{
		ID:       in.ID,
		FarmerID: in.FarmerID,
		Date:     in.Date,
		Shift:    in.Shift,
		QtyKg:    in.QtyKg,
		Fat:      in.Fat,
		CLR:      in.CLR,
	}

	qtyKg := in.QtyKg.Decimal
	liters := quality.LitersFromKg(qtyKg)
	rec.QtyLiters = types.NewDecimal(liters)

	snf := decimal.Zero
	if derived, ok := quality.DeriveSNF(in.Fat.Decimal, in.CLR.Decimal); ok {
		snf = derived
	}
	rec.SNF = types.NewDecimal(snf)

	fatKg := types.Round2(qtyKg.Mul(in.Fat.Decimal).Div(hundred))
	snfKg := types.Round2(qtyKg.Mul(snf).Div(hundred))

	// Base milk value on the farmer's pricing method.
	baseQty := liters
	if farmer.RateMethod == rates.RateMethodKgFat {
		baseQty = fatKg
	}
	rec.MilkValue = types.NewDecimal(amount(in.BaseRate.Decimal, baseQty))

	at := types.At(in.Date, in.Shift)
	basisQty := func(basis rates.BasisMethod) decimal.Decimal {
		switch basis {
		case rates.BasisKgFat:
			return fatKg
		case rates.BasisKgSNF:
			return snfKg
		default:
			return liters
		}
	}
	categoryAmount := func(farmerCat, commonCat rates.CategoryConfig, value decimal.Decimal) types.Decimal {
		res := rates.ResolveLayered(farmerCat, commonCat, value, at)
		if !res.Matched {
			return types.Decimal{}
		}
		return types.NewDecimal(amount(res.Rate, basisQty(res.Basis)))
	}

	rec.FatIncentive = categoryAmount(farmer.FatIncentive, common.FatIncentive, in.Fat.Decimal)
	rec.FatDeduction = categoryAmount(farmer.FatDeduction, common.FatDeduction, in.Fat.Decimal)
	rec.SNFIncentive = categoryAmount(farmer.SNFIncentive, common.SNFIncentive, snf)
	rec.SNFDeduction = categoryAmount(farmer.SNFDeduction, common.SNFDeduction, snf)
	rec.QtyIncentive = categoryAmount(farmer.QtyIncentive, common.QtyIncentive, qtyKg)

	rec.ExtraRate = types.NewDecimal(singleRuleAmount(farmer.ExtraRate, common.ExtraRate, at, basisQty))
	rec.Cartage = types.NewDecimal(singleRuleAmount(farmer.Cartage, common.Cartage, at, basisQty))

	return rec
}

// amount multiplies rate by quantity, rounds to 2 decimals, and clamps at
// zero: no category may contribute a negative sub-amount.
func amount(rate, qty decimal.Decimal) decimal.Decimal {
	v := types.Round2(rate.Mul(qty))
	if v.IsNegative() {
		return decimal.Zero
	}
	return v
}

// singleRuleAmount applies the first active extra-rate/cartage rule in
// farmer-then-common precedence.
func singleRuleAmount(farmerRule, commonRule *rates.SingleRule, at types.DateShift, basisQty func(rates.BasisMethod) decimal.Decimal) decimal.Decimal {
	for _, rule := range []*rates.SingleRule{farmerRule, commonRule} {
		if rule == nil || !rule.Active(at) {
			continue
		}
		return amount(rule.Rate.Decimal, basisQty(rule.Basis))
	}
	return decimal.Zero
}
