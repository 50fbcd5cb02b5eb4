package dispatch

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"milkbill/internal/core/apperror"
	"milkbill/internal/core/id"
	"milkbill/internal/core/types"
	"milkbill/internal/domain"
)

// --- fakes ---

type fakeDispatchRepo struct {
	docs map[id.ID]*Dispatch
}

func newFakeDispatchRepo() *fakeDispatchRepo {
	return &fakeDispatchRepo{docs: make(map[id.ID]*Dispatch)}
}

func (r *fakeDispatchRepo) Create(_ context.Context, doc *Dispatch) error {
	stored := *doc
	r.docs[doc.ID] = &stored
	return nil
}

func (r *fakeDispatchRepo) CreateBatch(_ context.Context, docs []*Dispatch) error {
	for _, doc := range docs {
		stored := *doc
		r.docs[doc.ID] = &stored
	}
	return nil
}

func (r *fakeDispatchRepo) GetByID(_ context.Context, docID id.ID) (*Dispatch, error) {
	doc, ok := r.docs[docID]
	if !ok {
		return nil, apperror.NewNotFound("dispatch", docID.String())
	}
	cp := *doc
	return &cp, nil
}

func (r *fakeDispatchRepo) GetByDCNumber(_ context.Context, dcNumber string) (*Dispatch, error) {
	for _, doc := range r.docs {
		if doc.DCNumber == dcNumber {
			cp := *doc
			return &cp, nil
		}
	}
	return nil, apperror.NewNotFound("dispatch", dcNumber)
}

func (r *fakeDispatchRepo) Update(_ context.Context, doc *Dispatch) error {
	stored, ok := r.docs[doc.ID]
	if !ok {
		return apperror.NewNotFound("dispatch", doc.ID.String())
	}
	if stored.Version != doc.Version {
		return apperror.NewConcurrentModification("dispatch", doc.ID.String())
	}
	cp := *doc
	cp.Version = stored.Version + 1
	r.docs[doc.ID] = &cp
	doc.SetVersion(cp.Version)
	return nil
}

func (r *fakeDispatchRepo) Delete(_ context.Context, docID id.ID) error {
	doc, ok := r.docs[docID]
	if !ok {
		return apperror.NewNotFound("dispatch", docID.String())
	}
	doc.DeletionMark = true
	return nil
}

func (r *fakeDispatchRepo) List(_ context.Context, _ ListFilter) (domain.ListResult[*Dispatch], error) {
	var items []*Dispatch
	for _, doc := range r.docs {
		cp := *doc
		items = append(items, &cp)
	}
	return domain.ListResult[*Dispatch]{Items: items, TotalCount: int64(len(items))}, nil
}

func (r *fakeDispatchRepo) FindPending(_ context.Context, sourceUnitID, destinationUnitID id.ID) (*Dispatch, error) {
	var oldest *Dispatch
	for _, doc := range r.docs {
		if doc.DeletionMark || !doc.InTransit {
			continue
		}
		if doc.BranchID != sourceUnitID || doc.DestinationUnitID != destinationUnitID {
			continue
		}
		if oldest == nil || doc.Date.Before(oldest.Date) {
			oldest = doc
		}
	}
	if oldest == nil {
		return nil, apperror.NewNotFound("pending dispatch", sourceUnitID.String())
	}
	cp := *oldest
	return &cp, nil
}

func (r *fakeDispatchRepo) MaxSequence(_ context.Context, _, _ string) (int, error) {
	return 0, nil
}

type fakeReceiptRepo struct {
	docs map[id.ID]*Receipt
}

func newFakeReceiptRepo() *fakeReceiptRepo {
	return &fakeReceiptRepo{docs: make(map[id.ID]*Receipt)}
}

func (r *fakeReceiptRepo) Create(_ context.Context, doc *Receipt) error {
	stored := *doc
	r.docs[doc.ID] = &stored
	return nil
}

func (r *fakeReceiptRepo) GetByID(_ context.Context, docID id.ID) (*Receipt, error) {
	doc, ok := r.docs[docID]
	if !ok {
		return nil, apperror.NewNotFound("receipt", docID.String())
	}
	cp := *doc
	return &cp, nil
}

func (r *fakeReceiptRepo) Update(_ context.Context, doc *Receipt) error {
	cp := *doc
	r.docs[doc.ID] = &cp
	return nil
}

func (r *fakeReceiptRepo) List(_ context.Context, _ ListFilter) (domain.ListResult[*Receipt], error) {
	var items []*Receipt
	for _, doc := range r.docs {
		cp := *doc
		items = append(items, &cp)
	}
	return domain.ListResult[*Receipt]{Items: items, TotalCount: int64(len(items))}, nil
}

type fakeNumbers struct {
	seq int
}

func (n *fakeNumbers) Next(_ context.Context, unitShortCode string, _ time.Time) (string, error) {
	n.seq++
	return fmt.Sprintf("%s/%d/2025-26", unitShortCode, n.seq), nil
}

type fakeUnits map[id.ID]string

func (u fakeUnits) ShortCode(_ context.Context, unitID id.ID) (string, error) {
	code, ok := u[unitID]
	if !ok {
		return "", apperror.NewNotFound("branch", unitID.String())
	}
	return code, nil
}

type fakeTxManager struct{}

func (fakeTxManager) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// --- helpers ---

func dec(s string) types.Decimal {
	return types.NewDecimal(types.MustMoney(s))
}

func testService(t *testing.T) (*Service, *fakeDispatchRepo, *fakeReceiptRepo, id.ID, id.ID) {
	t.Helper()
	source := id.New()
	dest := id.New()
	dispatches := newFakeDispatchRepo()
	receipts := newFakeReceiptRepo()
	units := fakeUnits{source: "BRN", dest: "CTY"}
	svc := NewService(dispatches, receipts, &fakeNumbers{}, units, fakeTxManager{})
	return svc, dispatches, receipts, source, dest
}

func newTestDispatch(source, dest id.ID) *Dispatch {
	doc := NewDispatch(source, dest, types.MustDate("2025-06-10"))
	doc.Front = Compartment{QtyKg: dec("500"), Fat: dec("6.5"), CLR: dec("28")}
	doc.Back = Compartment{QtyKg: dec("500"), Fat: dec("6.3"), CLR: dec("27.6")}
	return doc
}

// --- tests ---

func TestService_Create_BlendsAndNumbers(t *testing.T) {
	svc, _, _, source, dest := testService(t)
	doc := newTestDispatch(source, dest)

	require.NoError(t, svc.Create(context.Background(), doc))

	assert.Equal(t, "BRN/1/2025-26", doc.DCNumber)
	assert.True(t, doc.InTransit)
	assert.Equal(t, "1000", doc.QtyKg.String())
	assert.Equal(t, "6.4", doc.Fat.String())
	assert.Equal(t, "27.8", doc.CLR.String())
	// SNF recomputed from blended fat and CLR: 27.8/4 + 0.21*6.4 + 0.36.
	assert.Equal(t, "8.65", doc.SNF.String())
}

func TestService_Create_BulkImportWithDestinationTotals(t *testing.T) {
	svc, _, _, source, dest := testService(t)
	doc := newTestDispatch(source, dest)
	doc.DestQtyKg = dec("995")

	require.NoError(t, svc.Create(context.Background(), doc))
	assert.False(t, doc.InTransit)
}

func TestService_BulkImport(t *testing.T) {
	svc, repo, _, source, dest := testService(t)

	settled := newTestDispatch(source, dest)
	settled.DCNumber = "BRN/7/2024-25"
	settled.DestQtyKg = dec("995")

	pending := newTestDispatch(source, dest)
	pending.Date = types.MustDate("2025-06-12")

	require.NoError(t, svc.BulkImport(context.Background(), []*Dispatch{settled, pending}))
	require.Len(t, repo.docs, 2)

	// Legacy numbers are kept; rows without one are issued fresh.
	assert.Equal(t, "BRN/7/2024-25", repo.docs[settled.ID].DCNumber)
	assert.False(t, repo.docs[settled.ID].InTransit)
	assert.Equal(t, "BRN/1/2025-26", repo.docs[pending.ID].DCNumber)
	assert.True(t, repo.docs[pending.ID].InTransit)
}

func TestService_Create_ValidationFailures(t *testing.T) {
	svc, _, _, source, dest := testService(t)

	doc := newTestDispatch(source, source)
	err := svc.Create(context.Background(), doc)
	require.Error(t, err)
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeValidation, appErr.Code)

	doc = NewDispatch(source, dest, types.MustDate("2025-06-10"))
	err = svc.Create(context.Background(), doc)
	require.Error(t, err)
}

func TestService_Update_OnlyWhileInTransit(t *testing.T) {
	svc, repo, _, source, dest := testService(t)
	doc := newTestDispatch(source, dest)
	require.NoError(t, svc.Create(context.Background(), doc))

	// Settle it directly.
	stored := repo.docs[doc.ID]
	stored.InTransit = false

	doc.Front.QtyKg = dec("400")
	err := svc.Update(context.Background(), doc)
	require.Error(t, err)
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeNotInTransit, appErr.Code)
}

func TestService_CreateReceipt_LinksAndSettles(t *testing.T) {
	svc, repo, _, source, dest := testService(t)
	doc := newTestDispatch(source, dest)
	require.NoError(t, svc.Create(context.Background(), doc))

	rc := NewReceipt(dest, source, types.MustDate("2025-06-11"))
	rc.Front = Compartment{QtyKg: dec("495"), Fat: dec("6.4"), CLR: dec("27.9")}
	rc.Back = Compartment{QtyKg: dec("498"), Fat: dec("6.3"), CLR: dec("27.7")}

	require.NoError(t, svc.CreateReceipt(context.Background(), rc))
	assert.Equal(t, doc.ID, rc.DispatchID)

	settled := repo.docs[doc.ID]
	assert.False(t, settled.InTransit)
	assert.Equal(t, rc.ID, settled.ReceiptID)
	assert.Equal(t, "993", settled.DestQtyKg.String())
	// The settle bumped the stored version.
	assert.Equal(t, doc.Version+1, settled.Version)
}

func TestService_CreateReceipt_SecondReceiptRejected(t *testing.T) {
	svc, _, _, source, dest := testService(t)
	doc := newTestDispatch(source, dest)
	require.NoError(t, svc.Create(context.Background(), doc))

	first := NewReceipt(dest, source, types.MustDate("2025-06-11"))
	first.Front = Compartment{QtyKg: dec("990"), Fat: dec("6.4"), CLR: dec("27.8")}
	require.NoError(t, svc.CreateReceipt(context.Background(), first))

	second := NewReceipt(dest, source, types.MustDate("2025-06-11"))
	second.Front = Compartment{QtyKg: dec("990"), Fat: dec("6.4"), CLR: dec("27.8")}
	second.DispatchID = doc.ID

	err := svc.CreateReceipt(context.Background(), second)
	require.Error(t, err)
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeReceiptAlreadyLinked, appErr.Code)
}

// racingDispatchRepo lets another writer win between our read and our settle.
type racingDispatchRepo struct {
	*fakeDispatchRepo
	raced bool
}

func (r *racingDispatchRepo) Update(ctx context.Context, doc *Dispatch) error {
	if !r.raced {
		r.raced = true
		r.docs[doc.ID].Version++
	}
	return r.fakeDispatchRepo.Update(ctx, doc)
}

func TestService_CreateReceipt_StaleDispatchVersion(t *testing.T) {
	source, dest := id.New(), id.New()
	dispatches := &racingDispatchRepo{fakeDispatchRepo: newFakeDispatchRepo()}
	units := fakeUnits{source: "BRN", dest: "CTY"}
	svc := NewService(dispatches, newFakeReceiptRepo(), &fakeNumbers{}, units, fakeTxManager{})

	doc := newTestDispatch(source, dest)
	require.NoError(t, svc.Create(context.Background(), doc))

	rc := NewReceipt(dest, source, types.MustDate("2025-06-11"))
	rc.Front = Compartment{QtyKg: dec("990"), Fat: dec("6.4"), CLR: dec("27.8")}
	rc.DispatchID = doc.ID

	err := svc.CreateReceipt(context.Background(), rc)
	require.Error(t, err)
	assert.True(t, apperror.IsConcurrentModification(err))
}

func TestService_CreateReceipt_NoPendingDispatch(t *testing.T) {
	svc, _, receipts, source, dest := testService(t)

	rc := NewReceipt(dest, source, types.MustDate("2025-06-11"))
	rc.Front = Compartment{QtyKg: dec("990"), Fat: dec("6.4"), CLR: dec("27.8")}

	// Saved unlinked when nothing is in transit for the unit pair.
	require.NoError(t, svc.CreateReceipt(context.Background(), rc))
	assert.True(t, id.IsNil(rc.DispatchID))
	assert.Len(t, receipts.docs, 1)
}

func TestService_UpdateReceipt_RestatesDispatchTotals(t *testing.T) {
	svc, repo, receipts, source, dest := testService(t)
	doc := newTestDispatch(source, dest)
	require.NoError(t, svc.Create(context.Background(), doc))

	rc := NewReceipt(dest, source, types.MustDate("2025-06-11"))
	rc.Front = Compartment{QtyKg: dec("495"), Fat: dec("6.4"), CLR: dec("27.9")}
	rc.Back = Compartment{QtyKg: dec("498"), Fat: dec("6.3"), CLR: dec("27.7")}
	require.NoError(t, svc.CreateReceipt(context.Background(), rc))

	// Correct a misread front compartment.
	rc.Front.QtyKg = dec("490")
	require.NoError(t, svc.UpdateReceipt(context.Background(), rc))

	assert.Equal(t, "988", receipts.docs[rc.ID].QtyKg.String())

	settled := repo.docs[doc.ID]
	assert.Equal(t, "988", settled.DestQtyKg.String())
	assert.False(t, settled.InTransit)
	assert.Equal(t, rc.ID, settled.ReceiptID)
}

func TestService_ReceiptDefaults(t *testing.T) {
	svc, _, _, source, dest := testService(t)
	doc := newTestDispatch(source, dest)
	require.NoError(t, svc.Create(context.Background(), doc))

	rc, err := svc.ReceiptDefaults(context.Background(), source, dest)
	require.NoError(t, err)
	assert.Equal(t, doc.ID, rc.DispatchID)
	assert.Equal(t, doc.Front, rc.Front)
	assert.Equal(t, doc.Back, rc.Back)
	assert.Equal(t, "1000", rc.QtyKg.String())
}

func TestVariance_SuppressedWhileInTransit(t *testing.T) {
	svc, _, _, source, dest := testService(t)
	doc := newTestDispatch(source, dest)
	require.NoError(t, svc.Create(context.Background(), doc))

	rows, err := svc.VarianceReport(context.Background(), ListFilter{})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.True(t, rows[0].InTransit)
	assert.Nil(t, rows[0].Variance)
}

func TestVariance_AfterSettlement(t *testing.T) {
	svc, _, _, source, dest := testService(t)
	doc := newTestDispatch(source, dest)
	require.NoError(t, svc.Create(context.Background(), doc))

	rc := NewReceipt(dest, source, types.MustDate("2025-06-11"))
	rc.Front = Compartment{QtyKg: dec("495"), Fat: dec("6.4"), CLR: dec("27.9")}
	rc.Back = Compartment{QtyKg: dec("498"), Fat: dec("6.3"), CLR: dec("27.7")}
	require.NoError(t, svc.CreateReceipt(context.Background(), rc))

	rows, err := svc.VarianceReport(context.Background(), ListFilter{})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.NotNil(t, rows[0].Variance)

	// 993 received against 1000 dispatched: shrinkage is negative.
	assert.Equal(t, "-7", rows[0].Variance.QtyKg.String())
	assert.True(t, rows[0].Variance.QtyKg.IsNegative())
}
