package dto

import (
	"time"

	"milkbill/internal/core/id"
	"milkbill/internal/core/types"
	"milkbill/internal/domain/dispatch"
	"milkbill/internal/domain/quality"
)

// --- Request DTOs ---

// CompartmentRequest is one tanker compartment reading.
type CompartmentRequest struct {
	QtyKg types.Decimal `json:"qtyKg"`
	Fat   types.Decimal `json:"fat"`
	CLR   types.Decimal `json:"clr"`
}

func (r CompartmentRequest) toCompartment() dispatch.Compartment {
	return dispatch.Compartment{QtyKg: r.QtyKg, Fat: r.Fat, CLR: r.CLR}
}

// CreateDispatchRequest represents a request to create a milk dispatch.
// Destination readings are only supplied on the bulk import path, where both
// sides of a historical movement arrive together.
type CreateDispatchRequest struct {
	Date              types.Date         `json:"date" binding:"required"`
	SourceUnitID      string             `json:"sourceUnitId" binding:"required"`
	DestinationUnitID string             `json:"destinationUnitId" binding:"required"`
	RouteID           string             `json:"routeId,omitempty"`
	VehicleNumber     string             `json:"vehicleNumber,omitempty"`
	DCNumber          string             `json:"dcNumber,omitempty"`
	Comment           string             `json:"comment,omitempty"`
	Front             CompartmentRequest `json:"front"`
	Back              CompartmentRequest `json:"back"`

	DestQtyKg types.Decimal `json:"destQtyKg,omitempty"`
	DestFat   types.Decimal `json:"destFat,omitempty"`
	DestCLR   types.Decimal `json:"destClr,omitempty"`
}

// ToEntity converts request to domain entity.
func (r *CreateDispatchRequest) ToEntity() *dispatch.Dispatch {
	sourceID, _ := id.Parse(r.SourceUnitID)
	destID, _ := id.Parse(r.DestinationUnitID)

	doc := dispatch.NewDispatch(sourceID, destID, r.Date)
	doc.DCNumber = r.DCNumber
	doc.VehicleNumber = r.VehicleNumber
	doc.Comment = r.Comment
	doc.Front = r.Front.toCompartment()
	doc.Back = r.Back.toCompartment()

	if r.RouteID != "" {
		routeID, _ := id.Parse(r.RouteID)
		doc.RouteID = routeID
	}

	if r.DestQtyKg.Decimal.IsPositive() {
		doc.DestQtyKg = r.DestQtyKg
		doc.DestQtyLiters = types.NewDecimal(quality.LitersFromKg(r.DestQtyKg.Decimal))
		doc.DestFat = r.DestFat
		doc.DestCLR = r.DestCLR
		if snf, ok := quality.DeriveSNF(r.DestFat.Decimal, r.DestCLR.Decimal); ok {
			doc.DestSNF = types.NewDecimal(snf)
		}
	}

	return doc
}

// ImportDispatchesRequest carries a batch of historical dispatches.
type ImportDispatchesRequest struct {
	Items []CreateDispatchRequest `json:"items" binding:"required,min=1,dive"`
}

// UpdateDispatchRequest represents a correction to an in-transit dispatch.
type UpdateDispatchRequest struct {
	Date              *types.Date         `json:"date,omitempty"`
	DestinationUnitID *string             `json:"destinationUnitId,omitempty"`
	RouteID           *string             `json:"routeId,omitempty"`
	VehicleNumber     *string             `json:"vehicleNumber,omitempty"`
	Comment           *string             `json:"comment,omitempty"`
	Front             *CompartmentRequest `json:"front,omitempty"`
	Back              *CompartmentRequest `json:"back,omitempty"`
	Version           int                 `json:"version" binding:"required,min=1"`
}

// ApplyTo applies updates to an existing entity.
func (r *UpdateDispatchRequest) ApplyTo(doc *dispatch.Dispatch) {
	if r.Date != nil {
		doc.Date = *r.Date
	}
	if r.DestinationUnitID != nil {
		destID, _ := id.Parse(*r.DestinationUnitID)
		doc.DestinationUnitID = destID
	}
	if r.RouteID != nil {
		routeID, _ := id.Parse(*r.RouteID)
		doc.RouteID = routeID
	}
	if r.VehicleNumber != nil {
		doc.VehicleNumber = *r.VehicleNumber
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

// CompartmentResponse is one compartment reading in API responses.
type CompartmentResponse struct {
	QtyKg types.Decimal `json:"qtyKg"`
	Fat   types.Decimal `json:"fat"`
	CLR   types.Decimal `json:"clr"`
}

func fromCompartment(c dispatch.Compartment) CompartmentResponse {
	return CompartmentResponse{QtyKg: c.QtyKg, Fat: c.Fat, CLR: c.CLR}
}

// DispatchResponse represents a milk dispatch in API responses.
type DispatchResponse struct {
	ID                string              `json:"id"`
	DCNumber          string              `json:"dcNumber"`
	Date              types.Date          `json:"date"`
	SourceUnitID      string              `json:"sourceUnitId"`
	DestinationUnitID string              `json:"destinationUnitId"`
	RouteID           string              `json:"routeId,omitempty"`
	VehicleNumber     string              `json:"vehicleNumber,omitempty"`
	Front             CompartmentResponse `json:"front"`
	Back              CompartmentResponse `json:"back"`

	QtyKg     types.Decimal `json:"qtyKg"`
	QtyLiters types.Decimal `json:"qtyLiters"`
	Fat       types.Decimal `json:"fat"`
	CLR       types.Decimal `json:"clr"`
	SNF       types.Decimal `json:"snf"`

	DestQtyKg     types.Decimal `json:"destQtyKg"`
	DestQtyLiters types.Decimal `json:"destQtyLiters"`
	DestFat       types.Decimal `json:"destFat"`
	DestCLR       types.Decimal `json:"destClr"`
	DestSNF       types.Decimal `json:"destSnf"`

	InTransit bool   `json:"isInTransit"`
	ReceiptID string `json:"receiptId,omitempty"`

	Comment      string    `json:"comment,omitempty"`
	DeletionMark bool      `json:"deletionMark,omitempty"`
	Version      int       `json:"version"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// FromDispatch converts domain entity to response DTO.
func FromDispatch(doc *dispatch.Dispatch) *DispatchResponse {
	resp := &DispatchResponse{
		ID:                doc.ID.String(),
		DCNumber:          doc.DCNumber,
		Date:              doc.Date,
		SourceUnitID:      doc.BranchID.String(),
		DestinationUnitID: doc.DestinationUnitID.String(),
		VehicleNumber:     doc.VehicleNumber,
		Front:             fromCompartment(doc.Front),
		Back:              fromCompartment(doc.Back),
		QtyKg:             doc.QtyKg,
		QtyLiters:         doc.QtyLiters,
		Fat:               doc.Fat,
		CLR:               doc.CLR,
		SNF:               doc.SNF,
		DestQtyKg:         doc.DestQtyKg,
		DestQtyLiters:     doc.DestQtyLiters,
		DestFat:           doc.DestFat,
		DestCLR:           doc.DestCLR,
		DestSNF:           doc.DestSNF,
		InTransit:         doc.InTransit,
		Comment:           doc.Comment,
		DeletionMark:      doc.DeletionMark,
		Version:           doc.Version,
		CreatedAt:         doc.CreatedAt,
		UpdatedAt:         doc.UpdatedAt,
	}

	if !id.IsNil(doc.RouteID) {
		resp.RouteID = doc.RouteID.String()
	}
	if !id.IsNil(doc.ReceiptID) {
		resp.ReceiptID = doc.ReceiptID.String()
	}

	return resp
}

// DispatchListResponse represents a list of dispatches.
type DispatchListResponse struct {
	Items      []*DispatchResponse `json:"items"`
	TotalCount int                 `json:"totalCount"`
	Limit      int                 `json:"limit"`
	Offset     int                 `json:"offset"`
}
