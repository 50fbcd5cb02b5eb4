// Package quality derives milk quality figures from raw readings: SNF from
// Fat and CLR, weighted blends of two physical readings, and the fixed
// kg-to-liter conversion.
package quality

import (
	"github.com/shopspring/decimal"

	"milkbill/internal/core/types"
)

// Milk density constant: liters = kg / 1.03.
var kgPerLiter = types.MustMoney("1.03")

var (
	four        = decimal.NewFromInt(4)
	fatFactor   = types.MustMoney("0.21")
	snfConstant = types.MustMoney("0.36")
)

// DeriveSNF computes SNF% from Fat% and CLR using the dairy formula
//
//	snf = clr/4 + 0.21*fat + 0.36
//
// rounded to 2 decimals. Returns ok=false when either input is non-positive:
// a partial reading must never fabricate a quality figure.
func DeriveSNF(fat, clr decimal.Decimal) (decimal.Decimal, bool) {
	if !fat.IsPositive() || !clr.IsPositive() {
		return decimal.Zero, false
	}
	snf := clr.Div(four).Add(fatFactor.Mul(fat)).Add(snfConstant)
	return types.Round2(snf), true
}

// WeightedAverage blends two quantity-weighted readings:
//
//	(qty1*val1 + qty2*val2) / (qty1 + qty2)
//
// rounded to 2 decimals. Returns ok=false when the combined quantity is zero,
// so a zero division never propagates into totals.
func WeightedAverage(qty1, val1, qty2, val2 decimal.Decimal) (decimal.Decimal, bool) {
	total := qty1.Add(qty2)
	if total.IsZero() {
		return decimal.Zero, false
	}
	avg := qty1.Mul(val1).Add(qty2.Mul(val2)).Div(total)
	return types.Round2(avg), true
}

// Reading is one physical measurement: a tanker compartment or one side of a
// dispatch/receipt pair.
type Reading struct {
	QtyKg decimal.Decimal
	Fat   decimal.Decimal
	CLR   decimal.Decimal
}

// Blended is the combined total of two readings. SNF is recomputed from the
// blended Fat and CLR rather than averaged directly: the SNF formula is not
// linear in its inputs.
type Blended struct {
	QtyKg decimal.Decimal
	Fat   decimal.Decimal
	CLR   decimal.Decimal
	SNF   decimal.Decimal
}

// Blend combines a front and back reading into one total.
func Blend(front, back Reading) Blended {
	out := Blended{QtyKg: front.QtyKg.Add(back.QtyKg)}

	if fat, ok := WeightedAverage(front.QtyKg, front.Fat, back.QtyKg, back.Fat); ok {
		out.Fat = fat
	}
	if clr, ok := WeightedAverage(front.QtyKg, front.CLR, back.QtyKg, back.CLR); ok {
		out.CLR = clr
	}
	if snf, ok := DeriveSNF(out.Fat, out.CLR); ok {
		out.SNF = snf
	}

	return out
}

// LitersFromKg converts a kg total to liters at fixed density, rounded to
// 2 decimals. Zero or negative input yields zero.
func LitersFromKg(kg decimal.Decimal) decimal.Decimal {
	if !kg.IsPositive() {
		return decimal.Zero
	}
	return types.Round2(kg.Div(kgPerLiter))
}
