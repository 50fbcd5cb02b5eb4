// Package dispatch provides the milk dispatch and milk receipt documents and
// the reconciliation between them. A dispatch leaves a source unit in
// transit; saving the matching receipt settles it by copying the received
// totals back onto the dispatch and closing the transit state.
package dispatch

import (
	"context"

	"milkbill/internal/core/apperror"
	"milkbill/internal/core/entity"
	"milkbill/internal/core/id"
	"milkbill/internal/core/types"
	"milkbill/internal/domain/quality"
)

// Compartment is one physical tanker compartment reading.
type Compartment struct {
	QtyKg types.Decimal `db:"qty_kg" json:"qtyKg"`
	Fat   types.Decimal `db:"fat" json:"fat"`
	CLR   types.Decimal `db:"clr" json:"clr"`
}

func (c Compartment) reading() quality.Reading {
	return quality.Reading{
		QtyKg: c.QtyKg.Decimal,
		Fat:   c.Fat.Decimal,
		CLR:   c.CLR.Decimal,
	}
}

// Dispatch represents a milk dispatch document. BranchID on the embedded
// Document is the source unit; totals are blended from the front and back
// compartments at save time.
type Dispatch struct {
	entity.Document

	// DCNumber is the delivery challan number: {unitShortCode}/{seq}/{FY}
	DCNumber string `db:"dc_number" json:"dcNumber"`

	DestinationUnitID id.ID `db:"destination_unit_id" json:"destinationUnitId"`
	RouteID           id.ID `db:"route_id" json:"routeId,omitempty"`
	VehicleNumber     string `db:"vehicle_number" json:"vehicleNumber,omitempty"`

	// Compartments are stored as jsonb
	Front Compartment `db:"front" json:"front"`
	Back  Compartment `db:"back" json:"back"`

	// Blended dispatch totals
	QtyKg     types.Decimal `db:"qty_kg" json:"qtyKg"`
	QtyLiters types.Decimal `db:"qty_liters" json:"qtyLiters"`
	Fat       types.Decimal `db:"fat" json:"fat"`
	CLR       types.Decimal `db:"clr" json:"clr"`
	SNF       types.Decimal `db:"snf" json:"snf"`

	// Destination totals, written back from the linked receipt (or supplied
	// directly on the bulk import path)
	DestQtyKg     types.Decimal `db:"dest_qty_kg" json:"destQtyKg"`
	DestQtyLiters types.Decimal `db:"dest_qty_liters" json:"destQtyLiters"`
	DestFat       types.Decimal `db:"dest_fat" json:"destFat"`
	DestCLR       types.Decimal `db:"dest_clr" json:"destClr"`
	DestSNF       types.Decimal `db:"dest_snf" json:"destSnf"`

	InTransit bool  `db:"in_transit" json:"isInTransit"`
	ReceiptID id.ID `db:"receipt_id" json:"receiptId,omitempty"`
}

// NewDispatch creates a dispatch document for a source unit.
func NewDispatch(sourceUnitID, destinationUnitID id.ID, date types.Date) *Dispatch {
	return &Dispatch{
		Document:          entity.NewDocument(sourceUnitID, date),
		DestinationUnitID: destinationUnitID,
		InTransit:         true,
	}
}

// RecalcTotals blends the two compartments into the dispatch totals.
func (d *Dispatch) RecalcTotals() {
	b := quality.Blend(d.Front.reading(), d.Back.reading())
	d.QtyKg = types.NewDecimal(b.QtyKg)
	d.QtyLiters = types.NewDecimal(quality.LitersFromKg(b.QtyKg))
	d.Fat = types.NewDecimal(b.Fat)
	d.CLR = types.NewDecimal(b.CLR)
	d.SNF = types.NewDecimal(b.SNF)
}

// HasDestinationTotals reports whether destination quantities were supplied,
// which happens on the bulk import path where both sides arrive together.
func (d *Dispatch) HasDestinationTotals() bool {
	return d.DestQtyKg.Decimal.IsPositive()
}

// ApplyReceipt writes the receipt's blended totals onto the dispatch and
// closes the transit state. The dispatch save that follows must be
// version-checked; Version stays untouched here because the repository
// compares it against the stored row and increments it on write.
func (d *Dispatch) ApplyReceipt(rc *Receipt) {
	d.DestQtyKg = rc.QtyKg
	d.DestQtyLiters = rc.QtyLiters
	d.DestFat = rc.Fat
	d.DestCLR = rc.CLR
	d.DestSNF = rc.SNF
	d.ReceiptID = rc.ID
	d.InTransit = false
}

// Validate implements entity.Validatable.
func (d *Dispatch) Validate(ctx context.Context) error {
	if err := d.Document.Validate(ctx); err != nil {
		return err
	}

	if id.IsNil(d.DestinationUnitID) {
		return apperror.NewValidation("destination unit is required").
			WithDetail("field", "destinationUnitId")
	}

	if d.DestinationUnitID == d.BranchID {
		return apperror.NewValidation("destination unit must differ from source unit").
			WithDetail("field", "destinationUnitId")
	}

	if !d.Front.QtyKg.Decimal.IsPositive() && !d.Back.QtyKg.Decimal.IsPositive() {
		return apperror.NewValidation("at least one compartment must carry quantity").
			WithDetail("field", "front.qtyKg")
	}

	return nil
}

// Receipt represents a milk receipt document. BranchID on the embedded
// Document is the receiving unit.
type Receipt struct {
	entity.Document

	SourceUnitID id.ID `db:"source_unit_id" json:"sourceUnitId"`

	// DispatchID links the settled dispatch; nil until linked.
	DispatchID id.ID `db:"dispatch_id" json:"dispatchId,omitempty"`

	Front Compartment `db:"front" json:"front"`
	Back  Compartment `db:"back" json:"back"`

	QtyKg     types.Decimal `db:"qty_kg" json:"qtyKg"`
	QtyLiters types.Decimal `db:"qty_liters" json:"qtyLiters"`
	Fat       types.Decimal `db:"fat" json:"fat"`
	CLR       types.Decimal `db:"clr" json:"clr"`
	SNF       types.Decimal `db:"snf" json:"snf"`
}

// NewReceipt creates a receipt document for a receiving unit.
func NewReceipt(receivingUnitID, sourceUnitID id.ID, date types.Date) *Receipt {
	return &Receipt{
		Document:     entity.NewDocument(receivingUnitID, date),
		SourceUnitID: sourceUnitID,
	}
}

// RecalcTotals blends the two compartments into the receipt totals.
func (r *Receipt) RecalcTotals() {
	b := quality.Blend(r.Front.reading(), r.Back.reading())
	r.QtyKg = types.NewDecimal(b.QtyKg)
	r.QtyLiters = types.NewDecimal(quality.LitersFromKg(b.QtyKg))
	r.Fat = types.NewDecimal(b.Fat)
	r.CLR = types.NewDecimal(b.CLR)
	r.SNF = types.NewDecimal(b.SNF)
}

// Validate implements entity.Validatable.
func (r *Receipt) Validate(ctx context.Context) error {
	if err := r.Document.Validate(ctx); err != nil {
		return err
	}

	if id.IsNil(r.SourceUnitID) {
		return apperror.NewValidation("source unit is required").
			WithDetail("field", "sourceUnitId")
	}

	if r.SourceUnitID == r.BranchID {
		return apperror.NewValidation("source unit must differ from receiving unit").
			WithDetail("field", "sourceUnitId")
	}

	if !r.Front.QtyKg.Decimal.IsPositive() && !r.Back.QtyKg.Decimal.IsPositive() {
		return apperror.NewValidation("at least one compartment must carry quantity").
			WithDetail("field", "front.qtyKg")
	}

	return nil
}
