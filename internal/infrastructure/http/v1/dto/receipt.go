package dto

import (
	"time"

	"milkbill/internal/core/id"
	"milkbill/internal/core/types"
	"milkbill/internal/domain/dispatch"
)

// --- Request DTOs ---

// CreateReceiptRequest represents a request to create a milk receipt. When
// DispatchID is empty the engine locates the oldest pending dispatch for the
// unit pair on its own.
type CreateReceiptRequest struct {
	Date            types.Date         `json:"date" binding:"required"`
	ReceivingUnitID string             `json:"receivingUnitId" binding:"required"`
	SourceUnitID    string             `json:"sourceUnitId" binding:"required"`
	DispatchID      string             `json:"dispatchId,omitempty"`
	Comment         string             `json:"comment,omitempty"`
	Front           CompartmentRequest `json:"front"`
	Back            CompartmentRequest `json:"back"`
}

// ToEntity converts request to domain entity.
func (r *CreateReceiptRequest) ToEntity() *dispatch.Receipt {
	receivingID, _ := id.Parse(r.ReceivingUnitID)
	sourceID, _ := id.Parse(r.SourceUnitID)

	doc := dispatch.NewReceipt(receivingID, sourceID, r.Date)
	doc.Comment = r.Comment
	doc.Front = r.Front.toCompartment()
	doc.Back = r.Back.toCompartment()

	if r.DispatchID != "" {
		dispatchID, _ := id.Parse(r.DispatchID)
		doc.DispatchID = dispatchID
	}

	return doc
}

// UpdateReceiptRequest represents a correction to a receipt's readings.
type UpdateReceiptRequest struct {
	Date    *types.Date         `json:"date,omitempty"`
	Comment *string             `json:"comment,omitempty"`
	Front   *CompartmentRequest `json:"front,omitempty"`
	Back    *CompartmentRequest `json:"back,omitempty"`
	Version int                 `json:"version" binding:"required,min=1"`
}

// ApplyTo applies updates to an existing entity.
func (r *UpdateReceiptRequest) ApplyTo(doc *dispatch.Receipt) {
	if r.Date != nil {
		doc.Date = *r.Date
	}
	if r.Comment != nil {
		doc.Comment = *r.Comment
	}
	if r.Front != nil {
		doc.Front = r.Front.toCompartment()
	}
	if r.Back != nil {
		doc.Back = r.Back.toCompartment()
	}
	doc.Version = r.Version
}

// --- Response DTOs ---

// ReceiptResponse represents a milk receipt in API responses.
type ReceiptResponse struct {
	ID              string              `json:"id"`
	Number          string              `json:"number"`
	Date            types.Date          `json:"date"`
	ReceivingUnitID string              `json:"receivingUnitId"`
	SourceUnitID    string              `json:"sourceUnitId"`
	DispatchID      string              `json:"dispatchId,omitempty"`
	Front           CompartmentResponse `json:"front"`
	Back            CompartmentResponse `json:"back"`

	QtyKg     types.Decimal `json:"qtyKg"`
	QtyLiters types.Decimal `json:"qtyLiters"`
	Fat       types.Decimal `json:"fat"`
	CLR       types.Decimal `json:"clr"`
	SNF       types.Decimal `json:"snf"`

	Comment      string    `json:"comment,omitempty"`
	DeletionMark bool      `json:"deletionMark,omitempty"`
	Version      int       `json:"version"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// FromReceipt converts domain entity to response DTO.
func FromReceipt(doc *dispatch.Receipt) *ReceiptResponse {
	resp := &ReceiptResponse{
		ID:              doc.ID.String(),
		Number:          doc.Number,
		Date:            doc.Date,
		ReceivingUnitID: doc.BranchID.String(),
		SourceUnitID:    doc.SourceUnitID.String(),
		Front:           fromCompartment(doc.Front),
		Back:            fromCompartment(doc.Back),
		QtyKg:           doc.QtyKg,
		QtyLiters:       doc.QtyLiters,
		Fat:             doc.Fat,
		CLR:             doc.CLR,
		SNF:             doc.SNF,
		Comment:         doc.Comment,
		DeletionMark:    doc.DeletionMark,
		Version:         doc.Version,
		CreatedAt:       doc.CreatedAt,
		UpdatedAt:       doc.UpdatedAt,
	}

	if !id.IsNil(doc.DispatchID) {
		resp.DispatchID = doc.DispatchID.String()
	}

	return resp
}

// ReceiptListResponse represents a list of receipts.
type ReceiptListResponse struct {
	Items      []*ReceiptResponse `json:"items"`
	TotalCount int                `json:"totalCount"`
	Limit      int                `json:"limit"`
	Offset     int                `json:"offset"`
}
