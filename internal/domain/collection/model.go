// Package collection models one shift's milk intake from one farmer and the
// pure valuation that turns its readings into money.
package collection

import (
	"milkbill/internal/core/types"
)

// Record is one farmer/date/shift milk intake with its monetary breakdown.
// Created by collection entry in the back office; the engine consumes it
// read-only. An edit triggers a full recompute through Valuate, never a
// delta adjustment.
type Record struct {
	ID       string      `json:"id"`
	FarmerID string      `json:"farmerId"`
	Date     types.Date  `json:"date"`
	Shift    types.Shift `json:"shift"`

	QtyKg     types.Decimal `json:"qtyKg"`
	QtyLiters types.Decimal `json:"qtyLiters"`
	Fat       types.Decimal `json:"fat"`
	CLR       types.Decimal `json:"clr"`
	SNF       types.Decimal `json:"snf"`

	// Monetary breakdown. Deductions are positive magnitudes; they are
	// subtracted at aggregation time, never stored as negative credits.
	MilkValue    types.Decimal `json:"milkValue"`
	FatIncentive types.Decimal `json:"fatIncentive"`
	FatDeduction types.Decimal `json:"fatDeduction"`
	SNFIncentive types.Decimal `json:"snfIncentive"`
	SNFDeduction types.Decimal `json:"snfDeduction"`
	QtyIncentive types.Decimal `json:"qtyIncentiveAmount"`
	ExtraRate    types.Decimal `json:"extraRateAmount"`
	Cartage      types.Decimal `json:"cartageAmount"`
}

// When returns the record's shift-aware point on the calendar.
func (r Record) When() types.DateShift {
	return types.At(r.Date, r.Shift)
}

// Input is the complete snapshot a valuation runs on. Nothing outside this
// struct feeds the computation: the entry screen submits the whole snapshot
// and receives the full derived record back.
type Input struct {
	ID       string      `json:"id,omitempty"`
	FarmerID string      `json:"farmerId"`
	Date     types.Date  `json:"date"`
	Shift    types.Shift `json:"shift"`

	QtyKg types.Decimal `json:"qtyKg"`
	Fat   types.Decimal `json:"fat"`
	CLR   types.Decimal `json:"clr"`

	// BaseRate is the effective common/flat rate for the date, supplied by
	// the external rate master.
	BaseRate types.Decimal `json:"baseRate"`
}
