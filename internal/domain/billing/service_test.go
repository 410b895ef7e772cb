package billing

import (
	"context"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shoptill/internal/core/apperror"
	"shoptill/internal/core/id"
	"shoptill/internal/core/types"
	"shoptill/internal/domain/catalog"
)

// --- In-memory doubles ---

// fakeStore backs both the item and bill fakes so the transaction
// manager can snapshot and restore the whole state on rollback.
type fakeStore struct {
	items map[id.ID]*catalog.Item
	bills []*Bill
	lines map[id.ID][]Line
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		items: make(map[id.ID]*catalog.Item),
		lines: make(map[id.ID][]Line),
	}
}

func (s *fakeStore) snapshot() *fakeStore {
	cp := newFakeStore()
	for k, v := range s.items {
		item := *v
		cp.items[k] = &item
	}
	cp.bills = append([]*Bill(nil), s.bills...)
	for k, v := range s.lines {
		cp.lines[k] = append([]Line(nil), v...)
	}
	return cp
}

func (s *fakeStore) restore(from *fakeStore) {
	s.items = from.items
	s.bills = from.bills
	s.lines = from.lines
}

// fakeTxManager mimics transactional semantics: state mutated by fn is
// rolled back when fn fails.
type fakeTxManager struct {
	store *fakeStore
}

func (m *fakeTxManager) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	before := m.store.snapshot()
	if err := fn(ctx); err != nil {
		m.store.restore(before)
		return err
	}
	return nil
}

type fakeItemRepo struct {
	store *fakeStore
}

func (r *fakeItemRepo) Create(ctx context.Context, item *catalog.Item) error {
	cp := *item
	r.store.items[item.ID] = &cp
	return nil
}

func (r *fakeItemRepo) Update(ctx context.Context, item *catalog.Item) error {
	cp := *item
	r.store.items[item.ID] = &cp
	return nil
}

func (r *fakeItemRepo) GetByID(ctx context.Context, itemID id.ID) (*catalog.Item, error) {
	item, ok := r.store.items[itemID]
	if !ok {
		return nil, apperror.NewNotFound("item", itemID.String())
	}
	cp := *item
	return &cp, nil
}

func (r *fakeItemRepo) List(ctx context.Context) ([]catalog.Item, error) {
	var out []catalog.Item
	for _, item := range r.store.items {
		out = append(out, *item)
	}
	return out, nil
}

func (r *fakeItemRepo) SoftDelete(ctx context.Context, itemID id.ID) error {
	if item, ok := r.store.items[itemID]; ok {
		item.DeletionMark = true
	}
	return nil
}

func (r *fakeItemRepo) DecrementStock(ctx context.Context, itemID id.ID, qty int64) (int64, error) {
	item, ok := r.store.items[itemID]
	if !ok {
		return 0, apperror.NewNotFound("item", itemID.String())
	}
	if item.StockQuantity < qty {
		return 0, apperror.NewInsufficientStock(itemID.String(), qty, item.StockQuantity)
	}
	item.StockQuantity -= qty
	return item.StockQuantity, nil
}

func (r *fakeItemRepo) AddStock(ctx context.Context, itemID id.ID, qty int64) (int64, error) {
	item, ok := r.store.items[itemID]
	if !ok {
		return 0, apperror.NewNotFound("item", itemID.String())
	}
	item.StockQuantity += qty
	return item.StockQuantity, nil
}

func (r *fakeItemRepo) FindLowStock(ctx context.Context) ([]catalog.Item, error) {
	var out []catalog.Item
	for _, item := range r.store.items {
		if !item.DeletionMark && item.LowStock() {
			out = append(out, *item)
		}
	}
	return out, nil
}

type fakeBillRepo struct {
	store *fakeStore

	// duplicatesToInject forces Create to report a number collision
	duplicatesToInject int
}

func (r *fakeBillRepo) Create(ctx context.Context, bill *Bill) error {
	if r.duplicatesToInject > 0 {
		r.duplicatesToInject--
		return apperror.NewDuplicate("bill", "bill_number", bill.Number)
	}
	for _, existing := range r.store.bills {
		if existing.Number == bill.Number {
			return apperror.NewDuplicate("bill", "bill_number", bill.Number)
		}
	}
	cp := *bill
	cp.Lines = nil
	r.store.bills = append(r.store.bills, &cp)
	r.store.lines[bill.ID] = append([]Line(nil), bill.Lines...)
	return nil
}

func (r *fakeBillRepo) GetByNumber(ctx context.Context, number string) (*Bill, error) {
	for _, bill := range r.store.bills {
		if bill.Number == number {
			cp := *bill
			cp.Lines = append([]Line(nil), r.store.lines[bill.ID]...)
			return &cp, nil
		}
	}
	return nil, apperror.NewNotFound("bill", number)
}

func (r *fakeBillRepo) LastNumber(ctx context.Context) (string, error) {
	if len(r.store.bills) == 0 {
		return "", nil
	}
	return r.store.bills[len(r.store.bills)-1].Number, nil
}

func (r *fakeBillRepo) ListUnsettled(ctx context.Context) ([]*Bill, error) {
	var out []*Bill
	for _, bill := range r.store.bills {
		if !bill.Quotation && bill.CashTendered.LessThan(bill.NetTotal) {
			cp := *bill
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].IssuedAt.Before(out[j].IssuedAt) })
	return out, nil
}

func (r *fakeBillRepo) UpdateSettlement(ctx context.Context, billID id.ID, cash, balance types.Money, version int) error {
	for _, bill := range r.store.bills {
		if bill.ID == billID {
			bill.CashTendered = cash
			bill.Balance = balance
			bill.Version++
			return nil
		}
	}
	return apperror.NewNotFound("bill", billID.String())
}

func (r *fakeBillRepo) Delete(ctx context.Context, billID id.ID) error {
	for i, bill := range r.store.bills {
		if bill.ID == billID {
			r.store.bills = append(r.store.bills[:i], r.store.bills[i+1:]...)
			delete(r.store.lines, billID)
			return nil
		}
	}
	return apperror.NewNotFound("bill", billID.String())
}

type recordingAudit struct {
	entries []AuditEntry
}

func (a *recordingAudit) Record(ctx context.Context, entry AuditEntry) error {
	a.entries = append(a.entries, entry)
	return nil
}

type harness struct {
	store   *fakeStore
	items   *fakeItemRepo
	bills   *fakeBillRepo
	audit   *recordingAudit
	service *Service
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	store := newFakeStore()
	items := &fakeItemRepo{store: store}
	bills := &fakeBillRepo{store: store}
	audit := &recordingAudit{}
	svc := NewService(bills, items, &fakeTxManager{store: store}, audit, nil)
	return &harness{store: store, items: items, bills: bills, audit: audit, service: svc}
}

func (h *harness) addItem(t *testing.T, name, price string, stock int64) catalog.Item {
	t.Helper()
	item := catalog.NewItem(name, types.MustMoney(price), stock, 0)
	require.NoError(t, h.items.Create(context.Background(), item))
	return *item
}

func (h *harness) stock(t *testing.T, itemID id.ID) int64 {
	t.Helper()
	item, err := h.items.GetByID(context.Background(), itemID)
	require.NoError(t, err)
	return item.StockQuantity
}

// --- Finalization pipeline ---

func TestFinalizeNumbersDecrementsAndPersists(t *testing.T) {
	h := newHarness(t)
	soap := h.addItem(t, "Soap", "250.00", 10)
	ctx := context.Background()

	draft, _ := NewDraft().AddItem(soap, 4)
	draft, _ = draft.SetCashTendered(types.MustMoney("1000"))

	bill, err := h.service.Finalize(ctx, draft, false)
	require.NoError(t, err)

	assert.Equal(t, "A0001", bill.Number)
	assert.True(t, bill.GrossTotal.Equal(types.MustMoney("1000")))
	assert.True(t, bill.Balance.IsZero())
	assert.Equal(t, StatusSettled, bill.Status())
	assert.Equal(t, int64(6), h.stock(t, soap.ID))

	stored, err := h.service.FindByNumber(ctx, "A0001")
	require.NoError(t, err)
	require.Len(t, stored.Lines, 1)
	assert.Equal(t, soap.ID, stored.Lines[0].ItemID)

	require.Len(t, h.audit.entries, 1)
	assert.Equal(t, "finalize", h.audit.entries[0].Action)
}

func TestFinalizeSequencesNumbers(t *testing.T) {
	h := newHarness(t)
	soap := h.addItem(t, "Soap", "10", 100)
	ctx := context.Background()

	for _, want := range []string{"A0001", "A0002", "A0003"} {
		draft, _ := NewDraft().AddItem(soap, 1)
		bill, err := h.service.Finalize(ctx, draft, false)
		require.NoError(t, err)
		assert.Equal(t, want, bill.Number)
	}
}

func TestFinalizeEmptyDraft(t *testing.T) {
	h := newHarness(t)
	_, err := h.service.Finalize(context.Background(), NewDraft(), false)
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeEmptyBill, appErr.Code)
	assert.Empty(t, h.store.bills)
}

func TestFinalizeInsufficientStockIsAllOrNothing(t *testing.T) {
	h := newHarness(t)
	x := h.addItem(t, "X", "100", 5)
	y := h.addItem(t, "Y", "100", 2)
	ctx := context.Background()

	draft, _ := NewDraft().AddItem(x, 3)
	draft, _ = draft.AddItem(y, 3)

	_, err := h.service.Finalize(ctx, draft, false)
	require.Error(t, err)
	require.True(t, apperror.IsInsufficientStock(err))

	appErr, _ := apperror.AsAppError(err)
	assert.Equal(t, y.ID.String(), appErr.Details["item_id"])
	assert.Equal(t, int64(3), appErr.Details["requested"])
	assert.Equal(t, int64(2), appErr.Details["available"])

	// No partial decrement: X must still be at 5.
	assert.Equal(t, int64(5), h.stock(t, x.ID))
	assert.Equal(t, int64(2), h.stock(t, y.ID))
	assert.Empty(t, h.store.bills)
}

func TestFinalizeQuotationNeverTouchesStock(t *testing.T) {
	h := newHarness(t)
	soap := h.addItem(t, "Soap", "250.00", 2)
	ctx := context.Background()

	// Requested quantity exceeds stock, but quotations skip stock entirely.
	draft, _ := NewDraft().AddItem(soap, 50)

	bill, err := h.service.Finalize(ctx, draft, true)
	require.NoError(t, err)
	assert.True(t, bill.Quotation)
	assert.Equal(t, int64(2), h.stock(t, soap.ID))
}

func TestFinalizeRetriesOnNumberCollision(t *testing.T) {
	h := newHarness(t)
	soap := h.addItem(t, "Soap", "10", 100)
	h.bills.duplicatesToInject = 1
	ctx := context.Background()

	draft, _ := NewDraft().AddItem(soap, 1)
	bill, err := h.service.Finalize(ctx, draft, false)
	require.NoError(t, err)
	assert.Equal(t, "A0001", bill.Number)
	// Exactly one decrement despite the retried transaction.
	assert.Equal(t, int64(99), h.stock(t, soap.ID))
}

func TestFinalizeGivesUpAfterRepeatedCollisions(t *testing.T) {
	h := newHarness(t)
	soap := h.addItem(t, "Soap", "10", 100)
	h.bills.duplicatesToInject = maxNumberAttempts
	ctx := context.Background()

	draft, _ := NewDraft().AddItem(soap, 1)
	_, err := h.service.Finalize(ctx, draft, false)
	require.Error(t, err)
	assert.True(t, apperror.IsDuplicate(err))
	assert.Equal(t, int64(100), h.stock(t, soap.ID))
}

// --- Query service ---

func TestListUnsettledFiltersAndOrders(t *testing.T) {
	h := newHarness(t)
	soap := h.addItem(t, "Soap", "500", 100)
	ctx := context.Background()

	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	step := 0
	h.service.WithClock(func() time.Time {
		step++
		return base.Add(time.Duration(step) * time.Hour)
	})

	// cash 0 against net 500: credit.
	credit1, _ := NewDraft().AddItem(soap, 1)
	_, err := h.service.Finalize(ctx, credit1, false)
	require.NoError(t, err)

	// cash 500 against net 500: settled.
	settled, _ := NewDraft().AddItem(soap, 1)
	settled, _ = settled.SetCashTendered(types.MustMoney("500"))
	_, err = h.service.Finalize(ctx, settled, false)
	require.NoError(t, err)

	// partial payment: still credit.
	credit2, _ := NewDraft().AddItem(soap, 1)
	credit2, _ = credit2.SetCashTendered(types.MustMoney("200"))
	_, err = h.service.Finalize(ctx, credit2, false)
	require.NoError(t, err)

	unsettled, err := h.service.ListUnsettled(ctx)
	require.NoError(t, err)
	require.Len(t, unsettled, 2)
	assert.Equal(t, "A0001", unsettled[0].Number)
	assert.Equal(t, "A0003", unsettled[1].Number)
	assert.True(t, unsettled[0].IssuedAt.Before(unsettled[1].IssuedAt))
	for _, bill := range unsettled {
		assert.Equal(t, StatusCredit, bill.Status())
	}
}

func TestFullyPaidBillExcludedFromCreditList(t *testing.T) {
	h := newHarness(t)
	soap := h.addItem(t, "Soap", "900", 10)
	ctx := context.Background()

	draft, _ := NewDraft().AddItem(soap, 1)
	draft, _ = draft.SetCashTendered(types.MustMoney("900"))
	_, err := h.service.Finalize(ctx, draft, false)
	require.NoError(t, err)

	unsettled, err := h.service.ListUnsettled(ctx)
	require.NoError(t, err)
	assert.Empty(t, unsettled)
}

func TestSettleAmendsCashAndBalanceOnly(t *testing.T) {
	h := newHarness(t)
	soap := h.addItem(t, "Soap", "500", 10)
	ctx := context.Background()

	draft, _ := NewDraft().AddItem(soap, 1)
	bill, err := h.service.Finalize(ctx, draft, false)
	require.NoError(t, err)
	require.Equal(t, StatusCredit, bill.Status())

	settled, err := h.service.Settle(ctx, bill.Number, types.MustMoney("500"))
	require.NoError(t, err)

	assert.Equal(t, bill.Number, settled.Number)
	assert.True(t, settled.NetTotal.Equal(bill.NetTotal))
	assert.True(t, settled.CashTendered.Equal(types.MustMoney("500")))
	assert.True(t, settled.Balance.IsZero())
	assert.Equal(t, StatusSettled, settled.Status())

	// Settlement is audited.
	require.Len(t, h.audit.entries, 2)
	assert.Equal(t, "settle", h.audit.entries[1].Action)

	// A settled bill cannot be amended again.
	_, err = h.service.Settle(ctx, bill.Number, types.MustMoney("600"))
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeBillSettled, appErr.Code)
}

func TestSettleRejectsNegativeCash(t *testing.T) {
	h := newHarness(t)
	_, err := h.service.Settle(context.Background(), "A0001", types.MustMoney("-1"))
	require.Error(t, err)
	appErr, _ := apperror.AsAppError(err)
	assert.Equal(t, apperror.CodeValidation, appErr.Code)
}

func TestVoidRemovesBill(t *testing.T) {
	h := newHarness(t)
	soap := h.addItem(t, "Soap", "100", 10)
	ctx := context.Background()

	draft, _ := NewDraft().AddItem(soap, 1)
	bill, err := h.service.Finalize(ctx, draft, false)
	require.NoError(t, err)

	require.NoError(t, h.service.Void(ctx, bill.Number))

	_, err = h.service.FindByNumber(ctx, bill.Number)
	assert.True(t, apperror.IsNotFound(err))

	require.Len(t, h.audit.entries, 2)
	assert.Equal(t, "void", h.audit.entries[1].Action)
}

func TestFindByNumberRejectsMalformed(t *testing.T) {
	h := newHarness(t)
	_, err := h.service.FindByNumber(context.Background(), "not-a-number")
	require.Error(t, err)
	appErr, _ := apperror.AsAppError(err)
	assert.Equal(t, apperror.CodeValidation, appErr.Code)
}
