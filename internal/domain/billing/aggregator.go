package billing

import (
	"sort"

	"github.com/shopspring/decimal"

	"milkbill/internal/core/types"
	"milkbill/internal/domain/billperiod"
	"milkbill/internal/domain/collection"
)

var hundred = decimal.NewFromInt(100)

// BuildBill aggregates one farmer's records for one period instance into a
// settlement statement. Collections whose date resolves to a different
// period, or to no period at all, are excluded. Returns nil when the farmer
// has neither collections nor adjustments in the period: no activity yields
// an absent bill, not a zero-value one.
func BuildBill(farmerID, periodID string, defs []billperiod.Definition, collections []collection.Record, adjustments []MasterAdjustment) *FarmerBillStatement {
	var recs []collection.Record
	for _, rec := range collections {
		if rec.FarmerID != farmerID {
			continue
		}
		id, ok := billperiod.ResolvePeriodForDate(rec.When(), defs)
		if !ok || id != periodID {
			continue
		}
		recs = append(recs, rec)
	}
	sort.SliceStable(recs, func(i, j int) bool {
		return recs[i].When().Compare(recs[j].When()) < 0
	})

	var additions, deductions []MasterAdjustment
	for _, adj := range adjustments {
		if adj.FarmerID != farmerID || adj.PeriodID != periodID {
			continue
		}
		if adj.Type == AdjustmentDeduction {
			deductions = append(deductions, adj)
		} else {
			additions = append(additions, adj)
		}
	}

	if len(recs) == 0 && len(additions) == 0 && len(deductions) == 0 {
		return nil
	}

	stmt := &FarmerBillStatement{
		FarmerID:    farmerID,
		PeriodID:    periodID,
		Collections: recs,
		Additions:   additions,
		Deductions:  deductions,
	}

	qty, liters, fatKg, snfKg := decimal.Zero, decimal.Zero, decimal.Zero, decimal.Zero
	milk, fatInc, fatDed, snfInc, snfDed := decimal.Zero, decimal.Zero, decimal.Zero, decimal.Zero, decimal.Zero
	qtyInc, extra, cartage := decimal.Zero, decimal.Zero, decimal.Zero
	for _, rec := range recs {
		qty = qty.Add(rec.QtyKg.Decimal)
		liters = liters.Add(rec.QtyLiters.Decimal)
		fatKg = fatKg.Add(types.Round2(rec.QtyKg.Decimal.Mul(rec.Fat.Decimal).Div(hundred)))
		snfKg = snfKg.Add(types.Round2(rec.QtyKg.Decimal.Mul(rec.SNF.Decimal).Div(hundred)))

		milk = milk.Add(rec.MilkValue.Decimal)
		fatInc = fatInc.Add(rec.FatIncentive.Decimal)
		fatDed = fatDed.Add(rec.FatDeduction.Decimal)
		snfInc = snfInc.Add(rec.SNFIncentive.Decimal)
		snfDed = snfDed.Add(rec.SNFDeduction.Decimal)
		qtyInc = qtyInc.Add(rec.QtyIncentive.Decimal)
		extra = extra.Add(rec.ExtraRate.Decimal)
		cartage = cartage.Add(rec.Cartage.Decimal)
	}

	added, deducted := decimal.Zero, decimal.Zero
	for _, adj := range additions {
		added = added.Add(adj.Amount.Decimal)
	}
	for _, adj := range deductions {
		deducted = deducted.Add(adj.Amount.Decimal)
	}

	stmt.TotalQtyKg = types.NewDecimal(qty)
	stmt.TotalQtyLiters = types.NewDecimal(liters)
	stmt.TotalFatKg = types.NewDecimal(fatKg)
	stmt.TotalSNFKg = types.NewDecimal(snfKg)

	stmt.MilkValue = types.NewDecimal(milk)
	stmt.FatIncentive = types.NewDecimal(fatInc)
	stmt.FatDeduction = types.NewDecimal(fatDed)
	stmt.SNFIncentive = types.NewDecimal(snfInc)
	stmt.SNFDeduction = types.NewDecimal(snfDed)
	stmt.QtyIncentive = types.NewDecimal(qtyInc)
	stmt.ExtraRate = types.NewDecimal(extra)
	stmt.Cartage = types.NewDecimal(cartage)

	stmt.TotalAdditions = types.NewDecimal(added)
	stmt.TotalMasterDeducted = types.NewDecimal(deducted)

	earnings := milk.Add(fatInc).Add(snfInc).Add(qtyInc).Add(extra).Add(cartage).Add(added)
	totalDed := fatDed.Add(snfDed).Add(deducted)

	stmt.TotalEarnings = types.NewDecimal(earnings)
	stmt.TotalDeductions = types.NewDecimal(totalDed)
	stmt.NetPayable = types.NewDecimal(types.RoundRupee(earnings.Sub(totalDed)))

	return stmt
}
