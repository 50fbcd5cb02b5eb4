package dispatch

import (
	"milkbill/internal/core/id"
	"milkbill/internal/core/types"
)

// Variance is the per-parameter difference between what the destination
// received and what the source dispatched. Negative values are shrinkage in
// transit, positive values are gains (usually measurement spread).
type Variance struct {
	QtyKg types.Decimal `json:"qtyKg"`
	Fat   types.Decimal `json:"fat"`
	CLR   types.Decimal `json:"clr"`
	SNF   types.Decimal `json:"snf"`
}

// VarianceRow is one dispatch in the variance report.
type VarianceRow struct {
	DispatchID        id.ID      `json:"dispatchId"`
	DCNumber          string     `json:"dcNumber"`
	Date              types.Date `json:"date"`
	SourceUnitID      id.ID      `json:"sourceUnitId"`
	DestinationUnitID id.ID      `json:"destinationUnitId"`
	InTransit         bool       `json:"isInTransit"`

	// Variance is nil while the dispatch is in transit: there is nothing to
	// compare yet and rendering a zero would read as "no loss".
	Variance *Variance `json:"variance,omitempty"`
}

// ComputeVariance returns the destination-minus-dispatch differences, or
// ok=false while the dispatch is still in transit.
func ComputeVariance(d *Dispatch) (Variance, bool) {
	if d.InTransit {
		return Variance{}, false
	}
	return Variance{
		QtyKg: types.NewDecimal(d.DestQtyKg.Decimal.Sub(d.QtyKg.Decimal)),
		Fat:   types.NewDecimal(d.DestFat.Decimal.Sub(d.Fat.Decimal)),
		CLR:   types.NewDecimal(d.DestCLR.Decimal.Sub(d.CLR.Decimal)),
		SNF:   types.NewDecimal(d.DestSNF.Decimal.Sub(d.SNF.Decimal)),
	}, true
}

// VarianceReport maps dispatches to report rows, suppressing the variance on
// in-transit rows.
func VarianceReport(dispatches []*Dispatch) []VarianceRow {
	rows := make([]VarianceRow, 0, len(dispatches))
	for _, d := range dispatches {
		row := VarianceRow{
			DispatchID:        d.ID,
			DCNumber:          d.DCNumber,
			Date:              d.Date,
			SourceUnitID:      d.BranchID,
			DestinationUnitID: d.DestinationUnitID,
			InTransit:         d.InTransit,
		}
		if v, ok := ComputeVariance(d); ok {
			row.Variance = &v
		}
		rows = append(rows, row)
	}
	return rows
}
