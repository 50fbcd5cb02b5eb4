package dispatch

import (
	"context"
	"time"

	"milkbill/internal/core/id"
	"milkbill/internal/domain"
)

// Repository defines persistence operations for dispatch documents.
type Repository interface {
	Create(ctx context.Context, doc *Dispatch) error

	// CreateBatch inserts many dispatches at once. Used by the historical
	// import, where thousands of already-settled movements arrive together.
	CreateBatch(ctx context.Context, docs []*Dispatch) error

	GetByID(ctx context.Context, docID id.ID) (*Dispatch, error)
	GetByDCNumber(ctx context.Context, dcNumber string) (*Dispatch, error)
	Update(ctx context.Context, doc *Dispatch) error
	Delete(ctx context.Context, docID id.ID) error

	List(ctx context.Context, filter ListFilter) (domain.ListResult[*Dispatch], error)

	// FindPending returns the oldest in-transit dispatch for a
	// source/destination unit pair, or a not-found error.
	FindPending(ctx context.Context, sourceUnitID, destinationUnitID id.ID) (*Dispatch, error)

	// MaxSequence scans existing DC numbers for the highest sequence issued
	// to a unit within a financial year. Used to seed the atomic counter.
	MaxSequence(ctx context.Context, unitCode, financialYear string) (int, error)
}

// ReceiptRepository defines persistence operations for receipt documents.
type ReceiptRepository interface {
	Create(ctx context.Context, doc *Receipt) error
	GetByID(ctx context.Context, docID id.ID) (*Receipt, error)
	Update(ctx context.Context, doc *Receipt) error

	List(ctx context.Context, filter ListFilter) (domain.ListResult[*Receipt], error)
}

// ListFilter for filtering dispatch and receipt lists.
type ListFilter struct {
	domain.ListFilter

	SourceUnitID      *id.ID
	DestinationUnitID *id.ID
	InTransit         *bool
	DateFrom          *time.Time
	DateTo            *time.Time
}
