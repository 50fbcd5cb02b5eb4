package dispatch

import (
	"context"
	"fmt"
	"time"

	"milkbill/internal/core/apperror"
	"milkbill/internal/core/id"
	"milkbill/internal/core/tx"
	"milkbill/internal/domain"
	"milkbill/pkg/logger"
)

// NumberGenerator issues the next DC number for a unit. Implementations must
// be safe under concurrent dispatch creation for the same unit and
// financial year.
type NumberGenerator interface {
	Next(ctx context.Context, unitShortCode string, at time.Time) (string, error)
}

// UnitDirectory resolves a unit id to its short code used in DC numbers.
type UnitDirectory interface {
	ShortCode(ctx context.Context, unitID id.ID) (string, error)
}

// Service provides business operations for dispatch and receipt documents.
type Service struct {
	dispatches Repository
	receipts   ReceiptRepository
	numbers    NumberGenerator
	units      UnitDirectory
	txManager  tx.Manager
	hooks      *domain.HookRegistry[*Dispatch]
}

// NewService creates the dispatch service.
func NewService(
	dispatches Repository,
	receipts ReceiptRepository,
	numbers NumberGenerator,
	units UnitDirectory,
	txManager tx.Manager,
) *Service {
	return &Service{
		dispatches: dispatches,
		receipts:   receipts,
		numbers:    numbers,
		units:      units,
		txManager:  txManager,
		hooks:      domain.NewHookRegistry[*Dispatch](),
	}
}

// Hooks returns the hook registry for registering callbacks.
func (s *Service) Hooks() *domain.HookRegistry[*Dispatch] {
	return s.hooks
}

// Create creates a new dispatch document. Compartments are blended into
// totals and a DC number is issued unless one was supplied. On the bulk
// import path destination totals may arrive with the dispatch itself, in
// which case the document is created already settled.
func (s *Service) Create(ctx context.Context, doc *Dispatch) error {
	if err := s.hooks.RunBeforeCreate(ctx, doc); err != nil {
		return err
	}

	if err := doc.Validate(ctx); err != nil {
		return err
	}

	doc.RecalcTotals()
	doc.InTransit = !doc.HasDestinationTotals()

	if doc.DCNumber == "" {
		shortCode, err := s.units.ShortCode(ctx, doc.BranchID)
		if err != nil {
			return fmt.Errorf("resolve unit short code: %w", err)
		}
		number, err := s.numbers.Next(ctx, shortCode, doc.Date.Time())
		if err != nil {
			return fmt.Errorf("generate dc number: %w", err)
		}
		doc.DCNumber = number
	}
	doc.Number = doc.DCNumber

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		return s.dispatches.Create(ctx, doc)
	})
	if err != nil {
		return err
	}

	if err := s.hooks.RunAfterCreate(ctx, doc); err != nil {
		logger.Warn(ctx, "after-create hook failed", "error", err)
	}

	logger.Info(ctx, "dispatch created",
		"id", doc.ID,
		"dcNumber", doc.DCNumber,
		"inTransit", doc.InTransit)

	return nil
}

// BulkImport validates and inserts a batch of historical dispatches in one
// transaction. Most imported rows already carry destination totals and land
// settled; DC numbers from the legacy system are kept as supplied.
func (s *Service) BulkImport(ctx context.Context, docs []*Dispatch) error {
	for _, doc := range docs {
		if err := doc.Validate(ctx); err != nil {
			return err
		}
		doc.RecalcTotals()
		doc.InTransit = !doc.HasDestinationTotals()

		if doc.DCNumber == "" {
			shortCode, err := s.units.ShortCode(ctx, doc.BranchID)
			if err != nil {
				return fmt.Errorf("resolve unit short code: %w", err)
			}
			number, err := s.numbers.Next(ctx, shortCode, doc.Date.Time())
			if err != nil {
				return fmt.Errorf("generate dc number: %w", err)
			}
			doc.DCNumber = number
		}
		doc.Number = doc.DCNumber
	}

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		return s.dispatches.CreateBatch(ctx, docs)
	})
	if err != nil {
		return err
	}

	logger.Info(ctx, "dispatches imported", "count", len(docs))
	return nil
}

// GetByID retrieves a dispatch.
func (s *Service) GetByID(ctx context.Context, docID id.ID) (*Dispatch, error) {
	return s.dispatches.GetByID(ctx, docID)
}

// Update applies a correction to a dispatch still in transit. A settled
// dispatch is terminal.
func (s *Service) Update(ctx context.Context, doc *Dispatch) error {
	if err := s.hooks.RunBeforeUpdate(ctx, doc); err != nil {
		return err
	}

	current, err := s.dispatches.GetByID(ctx, doc.ID)
	if err != nil {
		return err
	}
	if !current.InTransit {
		return apperror.NewNotInTransit(doc.ID)
	}

	if err := doc.Validate(ctx); err != nil {
		return err
	}
	doc.RecalcTotals()
	doc.InTransit = true

	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		return s.dispatches.Update(ctx, doc)
	})
	if err != nil {
		return err
	}

	if err := s.hooks.RunAfterUpdate(ctx, doc); err != nil {
		logger.Warn(ctx, "after-update hook failed", "error", err)
	}

	return nil
}

// Delete soft-deletes a dispatch still in transit.
func (s *Service) Delete(ctx context.Context, docID id.ID) error {
	doc, err := s.dispatches.GetByID(ctx, docID)
	if err != nil {
		return err
	}
	if !doc.InTransit {
		return apperror.NewNotInTransit(docID)
	}

	return s.dispatches.Delete(ctx, docID)
}

// List retrieves dispatches with filtering.
func (s *Service) List(ctx context.Context, filter ListFilter) (domain.ListResult[*Dispatch], error) {
	return s.dispatches.List(ctx, filter)
}

// FindPendingDispatch locates the in-transit dispatch a new receipt should
// settle, by source and destination unit.
func (s *Service) FindPendingDispatch(ctx context.Context, sourceUnitID, destinationUnitID id.ID) (*Dispatch, error) {
	return s.dispatches.FindPending(ctx, sourceUnitID, destinationUnitID)
}

// ReceiptDefaults prefills a receipt from the pending dispatch's compartment
// readings. The actual readings stay independently editable on the entry
// screen.
func (s *Service) ReceiptDefaults(ctx context.Context, sourceUnitID, destinationUnitID id.ID) (*Receipt, error) {
	pending, err := s.dispatches.FindPending(ctx, sourceUnitID, destinationUnitID)
	if err != nil {
		return nil, err
	}

	rc := NewReceipt(destinationUnitID, sourceUnitID, pending.Date)
	rc.DispatchID = pending.ID
	rc.Front = pending.Front
	rc.Back = pending.Back
	rc.RecalcTotals()
	return rc, nil
}

// CreateReceipt saves a receipt and settles the linked dispatch in one
// transaction: the receipt totals become the dispatch's destination totals
// and the dispatch leaves transit. The dispatch update is version-checked,
// so two concurrent receipts against the same dispatch cannot both win.
func (s *Service) CreateReceipt(ctx context.Context, rc *Receipt) error {
	if err := rc.Validate(ctx); err != nil {
		return err
	}
	rc.RecalcTotals()

	var linked *Dispatch
	var err error
	if !id.IsNil(rc.DispatchID) {
		linked, err = s.dispatches.GetByID(ctx, rc.DispatchID)
		if err != nil {
			return err
		}
	} else {
		linked, err = s.dispatches.FindPending(ctx, rc.SourceUnitID, rc.BranchID)
		if err != nil && !apperror.IsNotFound(err) {
			return err
		}
	}

	if linked != nil {
		if !id.IsNil(linked.ReceiptID) {
			return apperror.NewReceiptAlreadyLinked(linked.ID)
		}
		if !linked.InTransit {
			return apperror.NewNotInTransit(linked.ID)
		}
		rc.DispatchID = linked.ID
	}

	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.receipts.Create(ctx, rc); err != nil {
			return fmt.Errorf("create receipt: %w", err)
		}

		if linked == nil {
			return nil
		}

		linked.ApplyReceipt(rc)
		if err := s.dispatches.Update(ctx, linked); err != nil {
			return fmt.Errorf("settle dispatch: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	if linked != nil {
		if err := s.hooks.RunAfterUpdate(ctx, linked); err != nil {
			logger.Warn(ctx, "after-update hook failed", "error", err)
		}
		logger.Info(ctx, "receipt linked to dispatch",
			"receiptId", rc.ID,
			"dispatchId", linked.ID,
			"dcNumber", linked.DCNumber)
	} else {
		logger.Warn(ctx, "receipt saved without a pending dispatch",
			"receiptId", rc.ID,
			"sourceUnitId", rc.SourceUnitID)
	}

	return nil
}

// UpdateReceipt applies a correction to a receipt. When the receipt settled
// a dispatch, the corrected totals are written back onto the dispatch in the
// same transaction so both sides of the movement stay consistent.
func (s *Service) UpdateReceipt(ctx context.Context, rc *Receipt) error {
	if err := rc.Validate(ctx); err != nil {
		return err
	}
	rc.RecalcTotals()

	var linked *Dispatch
	if !id.IsNil(rc.DispatchID) {
		var err error
		linked, err = s.dispatches.GetByID(ctx, rc.DispatchID)
		if err != nil {
			return err
		}
	}

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.receipts.Update(ctx, rc); err != nil {
			return fmt.Errorf("update receipt: %w", err)
		}
		if linked == nil {
			return nil
		}
		linked.ApplyReceipt(rc)
		if err := s.dispatches.Update(ctx, linked); err != nil {
			return fmt.Errorf("restate dispatch totals: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	if linked != nil {
		if err := s.hooks.RunAfterUpdate(ctx, linked); err != nil {
			logger.Warn(ctx, "after-update hook failed", "error", err)
		}
	}

	logger.Info(ctx, "receipt corrected", "receiptId", rc.ID, "dispatchId", rc.DispatchID)
	return nil
}

// GetReceipt retrieves a receipt.
func (s *Service) GetReceipt(ctx context.Context, docID id.ID) (*Receipt, error) {
	return s.receipts.GetByID(ctx, docID)
}

// ListReceipts retrieves receipts with filtering.
func (s *Service) ListReceipts(ctx context.Context, filter ListFilter) (domain.ListResult[*Receipt], error) {
	return s.receipts.List(ctx, filter)
}

// VarianceReport builds the read-only dispatch variance view for the given
// filter. In-transit rows carry no variance.
func (s *Service) VarianceReport(ctx context.Context, filter ListFilter) ([]VarianceRow, error) {
	result, err := s.dispatches.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	return VarianceReport(result.Items), nil
}
