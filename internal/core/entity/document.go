package entity

import (
	"context"

	"milkbill/internal/core/apperror"
	"milkbill/internal/core/id"
	"milkbill/internal/core/types"
)

// Document is the base type for dated business documents
// (milk dispatches, milk receipts).
type Document struct {
	BaseDocument

	// Number is the document number (auto-generated, unique within type+period)
	Number string `db:"number" json:"number"`

	// Date is the business date of the document
	Date types.Date `db:"date" json:"date"`

	// BranchID is the owning branch/unit
	BranchID id.ID `db:"branch_id" json:"branchId"`

	// Comment is an optional user comment
	Comment string `db:"comment" json:"comment,omitempty"`
}

// NewDocument creates a new Document with generated ID.
func NewDocument(branchID id.ID, date types.Date) Document {
	return Document{
		BaseDocument: NewBaseDocument(),
		Date:         date,
		BranchID:     branchID,
	}
}

// Validate implements Validatable interface.
func (d *Document) Validate(ctx context.Context) error {
	if id.IsNil(d.BranchID) {
		return apperror.NewValidation("branch is required").
			WithDetail("field", "branchId")
	}

	if d.Date.IsZero() {
		return apperror.NewValidation("date is required").
			WithDetail("field", "date")
	}

	return nil
}
