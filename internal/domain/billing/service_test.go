package billing

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"milkbill/internal/core/apperror"
	"milkbill/internal/core/types"
	"milkbill/internal/domain/billperiod"
	"milkbill/internal/domain/collection"
	"milkbill/internal/domain/rates"
)

type fakeMasterData struct {
	defs        []billperiod.Definition
	lockedKeys  []string
	records     []collection.Record
	adjustments []MasterAdjustment
	farmerRates map[string]rates.FarmerRateConfig
	commonRates rates.CommonRateConfig

	fetchErr error
}

func (f *fakeMasterData) BillPeriods(context.Context) ([]billperiod.Definition, error) {
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	return f.defs, nil
}

func (f *fakeMasterData) LockedPeriods(context.Context) ([]string, error) {
	return f.lockedKeys, nil
}

func (f *fakeMasterData) Collections(context.Context, CollectionQuery) ([]collection.Record, error) {
	return f.records, nil
}

func (f *fakeMasterData) Adjustments(context.Context, string, string) ([]MasterAdjustment, error) {
	return f.adjustments, nil
}

func (f *fakeMasterData) FarmerRates(_ context.Context, farmerID string) (rates.FarmerRateConfig, error) {
	cfg, ok := f.farmerRates[farmerID]
	if !ok {
		return rates.FarmerRateConfig{}, apperror.NewNotFound("rate config", farmerID)
	}
	return cfg, nil
}

func (f *fakeMasterData) CommonRates(context.Context) (rates.CommonRateConfig, error) {
	return f.commonRates, nil
}

// currentPeriod anchors a first-half-of-month definition at today's month so
// the instance always falls inside the rolling expansion window.
func currentPeriod() (billperiod.Definition, string, types.Date) {
	def := billperiod.Definition{StartDay: 1, EndDay: 15}
	now := time.Now()
	inside := types.NewDate(now.Year(), now.Month(), 5)
	return def, def.InstanceID(now.Month(), now.Year()), inside
}

func periodRecord(farmerID string, date types.Date, qty string) collection.Record {
	return collection.Record{
		ID:        farmerID + "-" + date.String(),
		FarmerID:  farmerID,
		Date:      date,
		Shift:     types.ShiftAM,
		QtyKg:     dec(qty),
		Fat:       dec("6.5"),
		SNF:       dec("8.73"),
		MilkValue: dec("45.5"),
	}
}

func TestService_FarmerBill(t *testing.T) {
	def, periodID, inside := currentPeriod()
	master := &fakeMasterData{
		defs:    []billperiod.Definition{def},
		records: []collection.Record{periodRecord("F1", inside, "100")},
		adjustments: []MasterAdjustment{
			{ID: "a1", FarmerID: "F1", PeriodID: periodID, AccountHead: "Loan Recovery", Type: AdjustmentDeduction, Amount: dec("20")},
		},
	}
	svc := NewService(master)

	stmt, err := svc.FarmerBill(context.Background(), "F1", periodID)
	require.NoError(t, err)
	assert.Equal(t, periodID, stmt.PeriodID)
	assert.Equal(t, "100", stmt.TotalQtyKg.String())
	assert.Equal(t, "20", stmt.TotalMasterDeducted.String())
	// 45.50 earned minus 20 deducted, rounded to the rupee.
	assert.Equal(t, "26", stmt.NetPayable.String())
}

func TestService_FarmerBill_NoActivity(t *testing.T) {
	def, periodID, _ := currentPeriod()
	svc := NewService(&fakeMasterData{defs: []billperiod.Definition{def}})

	_, err := svc.FarmerBill(context.Background(), "F1", periodID)
	require.Error(t, err)
	assert.True(t, apperror.IsNotFound(err))
}

func TestService_FarmerBill_UnknownPeriod(t *testing.T) {
	def, _, _ := currentPeriod()
	svc := NewService(&fakeMasterData{defs: []billperiod.Definition{def}})

	_, err := svc.FarmerBill(context.Background(), "F1", "16-31-01-1990")
	require.Error(t, err)
	assert.True(t, apperror.IsNotFound(err))
}

func TestService_FarmerBill_UpstreamFailure(t *testing.T) {
	svc := NewService(&fakeMasterData{
		fetchErr: apperror.NewUpstream("/bill-periods", assert.AnError),
	})

	_, err := svc.FarmerBill(context.Background(), "F1", "1-15-06-2025")
	require.Error(t, err)
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeUpstream, appErr.Code)
}

func TestService_PeriodInstances_FlagsLocked(t *testing.T) {
	def, periodID, _ := currentPeriod()
	svc := NewService(&fakeMasterData{
		defs:       []billperiod.Definition{def},
		lockedKeys: []string{periodID},
	})

	instances, err := svc.PeriodInstances(context.Background(), types.Date{}, 3)
	require.NoError(t, err)
	require.Len(t, instances, 3)

	var found bool
	for _, inst := range instances {
		if inst.ID == periodID {
			found = true
			assert.True(t, inst.Locked)
		} else {
			assert.False(t, inst.Locked)
		}
	}
	assert.True(t, found)
}

func TestService_GuardPeriodUnlocked(t *testing.T) {
	def, periodID, inside := currentPeriod()
	svc := NewService(&fakeMasterData{
		defs:       []billperiod.Definition{def},
		lockedKeys: []string{periodID},
	})

	err := svc.GuardPeriodUnlocked(context.Background(), types.At(inside, types.ShiftAM))
	require.Error(t, err)
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodePeriodLocked, appErr.Code)

	// A date outside every definition belongs to no period.
	outside := types.NewDate(inside.Year(), inside.Month(), 20)
	assert.NoError(t, svc.GuardPeriodUnlocked(context.Background(), types.At(outside, types.ShiftAM)))
}

func TestService_PreviewValuation_FallsBackToCommonRates(t *testing.T) {
	_, _, inside := currentPeriod()
	svc := NewService(&fakeMasterData{
		farmerRates: map[string]rates.FarmerRateConfig{},
		commonRates: rates.CommonRateConfig{},
	})

	rec, err := svc.PreviewValuation(context.Background(), collection.Input{
		FarmerID: "F1",
		Date:     inside,
		Shift:    types.ShiftAM,
		QtyKg:    dec("100"),
		Fat:      dec("6.5"),
		CLR:      dec("28"),
		BaseRate: dec("7"),
	})
	require.NoError(t, err)

	// Per-liter pricing by default: 100 kg is 97.09 L at the base rate of 7.
	assert.Equal(t, "679.63", rec.MilkValue.String())
	assert.Equal(t, "0", rec.FatIncentive.String())
	assert.Equal(t, "97.09", rec.QtyLiters.String())
}
