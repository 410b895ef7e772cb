package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/hibiken/asynq"

	"shoptill/internal/domain/billing"
	"shoptill/pkg/logger"
)

// UnsettledLister is the slice of the billing service the reminder needs.
type UnsettledLister interface {
	ListUnsettled(ctx context.Context) ([]*billing.Bill, error)
}

// CreditReminderJob reports outstanding credit bills so the owner can
// chase payment. Bills younger than the cutoff are left alone.
type CreditReminderJob struct {
	bills UnsettledLister
	clock func() time.Time
}

// NewCreditReminderJob initialises the credit reminder handler.
func NewCreditReminderJob(bills UnsettledLister) *CreditReminderJob {
	return &CreditReminderJob{
		bills: bills,
		clock: func() time.Time { return time.Now().UTC() },
	}
}

// Handle executes one reminder run.
func (j *CreditReminderJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.bills == nil {
		return errors.New("credit reminder: handler not configured")
	}
	var payload CreditReminderPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	if payload.MinAgeDays <= 0 {
		payload.MinAgeDays = 7
	}

	unsettled, err := j.bills.ListUnsettled(ctx)
	if err != nil {
		return err
	}

	cutoff := j.clock().AddDate(0, 0, -payload.MinAgeDays)
	overdue := 0
	for _, bill := range unsettled {
		if bill.IssuedAt.After(cutoff) {
			continue
		}
		overdue++
		logger.Warn(ctx, "credit bill overdue",
			"number", bill.Number,
			"issued_at", bill.IssuedAt,
			"outstanding", bill.NetTotal.Sub(bill.CashTendered),
		)
	}
	logger.Info(ctx, "credit reminder complete",
		"unsettled", len(unsettled),
		"overdue", overdue,
	)
	return nil
}
