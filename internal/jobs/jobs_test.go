package jobs

import (
	"context"
	"testing"
	"time"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shoptill/internal/core/id"
	"shoptill/internal/core/types"
	"shoptill/internal/domain/billing"
	"shoptill/internal/domain/catalog"
)

type stubItemRepo struct {
	catalog.Repository
	low []catalog.Item
	err error
}

func (r *stubItemRepo) FindLowStock(ctx context.Context) ([]catalog.Item, error) {
	return r.low, r.err
}

func TestLowStockScanHandlesEmptyAndFlagged(t *testing.T) {
	ctx := context.Background()

	task, err := NewLowStockScanTask(LowStockScanPayload{})
	require.NoError(t, err)

	clean := NewLowStockScanJob(&stubItemRepo{})
	assert.NoError(t, clean.Handle(ctx, task))

	soap := catalog.NewItem("Soap", types.MustMoney("250"), 2, 5)
	flagged := NewLowStockScanJob(&stubItemRepo{low: []catalog.Item{*soap}})
	assert.NoError(t, flagged.Handle(ctx, task))
}

func TestLowStockScanSkipsRetryOnBadPayload(t *testing.T) {
	job := NewLowStockScanJob(&stubItemRepo{})
	task := asynq.NewTask(TaskLowStockScan, []byte("{broken"))
	err := job.Handle(context.Background(), task)
	assert.ErrorIs(t, err, asynq.SkipRetry)
}

type stubUnsettledLister struct {
	bills []*billing.Bill
}

func (l *stubUnsettledLister) ListUnsettled(ctx context.Context) ([]*billing.Bill, error) {
	return l.bills, nil
}

func TestCreditReminderCountsOverdueOnly(t *testing.T) {
	now := time.Date(2026, 3, 20, 9, 0, 0, 0, time.UTC)

	old := &billing.Bill{
		ID:       id.New(),
		Number:   "A0001",
		NetTotal: types.MustMoney("500"),
		IssuedAt: now.AddDate(0, 0, -10),
	}
	fresh := &billing.Bill{
		ID:       id.New(),
		Number:   "A0002",
		NetTotal: types.MustMoney("300"),
		IssuedAt: now.AddDate(0, 0, -2),
	}

	job := NewCreditReminderJob(&stubUnsettledLister{bills: []*billing.Bill{old, fresh}})
	job.clock = func() time.Time { return now }

	task, err := NewCreditReminderTask(CreditReminderPayload{MinAgeDays: 7})
	require.NoError(t, err)
	assert.NoError(t, job.Handle(context.Background(), task))
}
