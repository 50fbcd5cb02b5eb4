// Package billing aggregates a farmer's valued collections and master
// adjustments into one settlement statement per bill period.
package billing

import (
	"milkbill/internal/core/types"
	"milkbill/internal/domain/collection"
)

// AdjustmentType classifies a master adjustment as money added to or
// subtracted from the farmer's settlement.
type AdjustmentType string

const (
	AdjustmentAddition  AdjustmentType = "ADDITION"
	AdjustmentDeduction AdjustmentType = "DEDUCTION"
)

// MasterAdjustment is a manual period-level entry against a farmer:
// loan recovery, feed advance, festival bonus and similar account heads.
// Amounts are positive magnitudes regardless of type.
type MasterAdjustment struct {
	ID          string         `json:"id"`
	FarmerID    string         `json:"farmerId"`
	PeriodID    string         `json:"billPeriodId"`
	AccountHead string         `json:"accountHead"`
	Type        AdjustmentType `json:"type"`
	Amount      types.Decimal  `json:"amount"`
}

// FarmerBillStatement is one farmer's settlement for one bill period.
type FarmerBillStatement struct {
	FarmerID string `json:"farmerId"`
	PeriodID string `json:"billPeriodId"`

	Collections []collection.Record `json:"collections"`

	TotalQtyKg     types.Decimal `json:"totalQtyKg"`
	TotalQtyLiters types.Decimal `json:"totalQtyLiters"`
	TotalFatKg     types.Decimal `json:"totalFatKg"`
	TotalSNFKg     types.Decimal `json:"totalSnfKg"`

	MilkValue    types.Decimal `json:"milkValue"`
	FatIncentive types.Decimal `json:"fatIncentive"`
	FatDeduction types.Decimal `json:"fatDeduction"`
	SNFIncentive types.Decimal `json:"snfIncentive"`
	SNFDeduction types.Decimal `json:"snfDeduction"`
	QtyIncentive types.Decimal `json:"qtyIncentiveAmount"`
	ExtraRate    types.Decimal `json:"extraRateAmount"`
	Cartage      types.Decimal `json:"cartageAmount"`

	Additions  []MasterAdjustment `json:"additions"`
	Deductions []MasterAdjustment `json:"deductions"`

	TotalAdditions      types.Decimal `json:"totalAdditions"`
	TotalMasterDeducted types.Decimal `json:"totalMasterDeductions"`

	TotalEarnings   types.Decimal `json:"totalEarnings"`
	TotalDeductions types.Decimal `json:"totalDeductions"`

	// NetPayable is rounded to the whole currency unit; all other totals
	// keep 2-decimal precision.
	NetPayable types.Decimal `json:"netPayable"`
}
