package billing

import (
	"context"
	"time"

	"milkbill/internal/core/apperror"
	"milkbill/internal/core/types"
	"milkbill/internal/domain/billperiod"
	"milkbill/internal/domain/collection"
	"milkbill/internal/domain/rates"
	"milkbill/pkg/logger"
)

// MasterData is the slice of the back-office master data service the
// settlement run depends on. Every fetch error surfaces as an upstream
// failure; a bill is never rendered from partial data.
type MasterData interface {
	BillPeriods(ctx context.Context) ([]billperiod.Definition, error)
	LockedPeriods(ctx context.Context) ([]string, error)
	Collections(ctx context.Context, params CollectionQuery) ([]collection.Record, error)
	Adjustments(ctx context.Context, farmerID, periodID string) ([]MasterAdjustment, error)
	FarmerRates(ctx context.Context, farmerID string) (rates.FarmerRateConfig, error)
	CommonRates(ctx context.Context) (rates.CommonRateConfig, error)
}

// CollectionQuery narrows a collection fetch.
type CollectionQuery struct {
	FarmerID string
	DateFrom string
	DateTo   string
}

// Service orchestrates settlement reads: it pulls master data in full, runs
// the pure aggregation and hands back the statement.
type Service struct {
	master MasterData
}

// NewService creates the billing service.
func NewService(master MasterData) *Service {
	return &Service{master: master}
}

// FarmerBill builds the settlement statement for one farmer and one period
// instance. Returns a NotFound error when the farmer had no activity in the
// period: the bill is absent, not zero-valued.
func (s *Service) FarmerBill(ctx context.Context, farmerID, periodID string) (*FarmerBillStatement, error) {
	defs, err := s.master.BillPeriods(ctx)
	if err != nil {
		return nil, err
	}

	inst, ok := s.findInstance(defs, periodID)
	if !ok {
		return nil, apperror.NewNotFound("bill period", periodID)
	}

	records, err := s.master.Collections(ctx, CollectionQuery{
		FarmerID: farmerID,
		DateFrom: inst.Start.Date.String(),
		DateTo:   inst.End.Date.String(),
	})
	if err != nil {
		return nil, err
	}

	adjustments, err := s.master.Adjustments(ctx, farmerID, periodID)
	if err != nil {
		return nil, err
	}

	stmt := BuildBill(farmerID, periodID, defs, records, adjustments)
	if stmt == nil {
		return nil, apperror.NewNotFound("farmer bill", farmerID).
			WithDetail("periodId", periodID)
	}

	if excluded := len(records) - len(stmt.Collections); excluded > 0 {
		logger.Warn(ctx, "collections excluded from bill",
			"farmerId", farmerID,
			"periodId", periodID,
			"excluded", excluded)
	}

	logger.Info(ctx, "farmer bill built",
		"farmerId", farmerID,
		"periodId", periodID,
		"collections", len(stmt.Collections),
		"netPayable", stmt.NetPayable.String())

	return stmt, nil
}

// PeriodInstances expands the period definitions over a rolling window
// ending at ref, flagging locked instances.
func (s *Service) PeriodInstances(ctx context.Context, ref types.Date, windowMonths int) ([]billperiod.Instance, error) {
	defs, err := s.master.BillPeriods(ctx)
	if err != nil {
		return nil, err
	}
	lockedKeys, err := s.master.LockedPeriods(ctx)
	if err != nil {
		return nil, err
	}
	if ref.IsZero() {
		ref = types.DateOf(time.Now())
	}
	return billperiod.GenerateInstances(defs, lockedKeys, ref, windowMonths), nil
}

// PreviewValuation runs the pure valuation for an entry-screen snapshot
// against the farmer's effective rate configuration. Nothing is persisted.
func (s *Service) PreviewValuation(ctx context.Context, in collection.Input) (collection.Record, error) {
	farmerCfg, err := s.master.FarmerRates(ctx, in.FarmerID)
	if err != nil {
		if !apperror.IsNotFound(err) {
			return collection.Record{}, err
		}
		farmerCfg = rates.FarmerRateConfig{}
	}

	commonCfg, err := s.master.CommonRates(ctx)
	if err != nil {
		return collection.Record{}, err
	}

	return collection.Valuate(in, farmerCfg, commonCfg), nil
}

// GuardPeriodUnlocked rejects postings whose date falls inside a locked
// period instance. Dates outside every definition pass: they belong to no
// period and cannot be locked.
func (s *Service) GuardPeriodUnlocked(ctx context.Context, at types.DateShift) error {
	defs, err := s.master.BillPeriods(ctx)
	if err != nil {
		return err
	}

	periodID, ok := billperiod.ResolvePeriodForDate(at, defs)
	if !ok {
		return nil
	}

	lockedKeys, err := s.master.LockedPeriods(ctx)
	if err != nil {
		return err
	}
	if billperiod.NewLockRegistry(lockedKeys).IsLocked(periodID) {
		return apperror.NewPeriodLocked(periodID)
	}
	return nil
}

func (s *Service) findInstance(defs []billperiod.Definition, periodID string) (billperiod.Instance, bool) {
	now := types.DateOf(time.Now())
	for _, inst := range billperiod.GenerateInstances(defs, nil, now, billperiod.DefaultWindowMonths) {
		if inst.ID == periodID {
			return inst, true
		}
	}
	return billperiod.Instance{}, false
}
