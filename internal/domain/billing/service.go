package billing

import (
	"context"
	"fmt"
	"time"

	"shoptill/internal/core/apperror"
	appctx "shoptill/internal/core/context"
	"shoptill/internal/core/tx"
	"shoptill/internal/core/types"
	"shoptill/internal/domain/catalog"
	"shoptill/pkg/billnum"
	"shoptill/pkg/logger"
)

// maxNumberAttempts bounds retries when two finalizations derive the
// same next bill number from a stale last-bill read.
const maxNumberAttempts = 3

// Service is the finalization pipeline and bill query service.
// Dependencies are injected explicitly so tests can substitute doubles.
type Service struct {
	bills     Repository
	items     catalog.Repository
	txManager tx.Manager
	audit     AuditLog
	pub       catalog.Publisher

	// now is the single clock capture point for bill timestamps
	now func() time.Time
}

// NewService creates a billing service. audit and pub may be nil.
func NewService(
	bills Repository,
	items catalog.Repository,
	txManager tx.Manager,
	audit AuditLog,
	pub catalog.Publisher,
) *Service {
	return &Service{
		bills:     bills,
		items:     items,
		txManager: txManager,
		audit:     audit,
		pub:       pub,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// WithClock overrides the service clock. Used by tests.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Finalize turns a draft into a persisted, numbered bill. Stock checks
// and decrements, bill numbering and bill persistence happen inside one
// transaction, so the decrement is all-or-nothing across lines and the
// stock-written-but-bill-missing window cannot occur. When quotation is
// true stock is not touched at all.
//
// EMPTY_BILL and INSUFFICIENT_STOCK leave the draft and the catalog
// unchanged; the operator can correct the draft and retry.
func (s *Service) Finalize(ctx context.Context, draft Draft, quotation bool) (*Bill, error) {
	if draft.Empty() {
		return nil, apperror.NewEmptyBill()
	}

	var bill *Bill
	for attempt := 1; ; attempt++ {
		err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
			last, err := s.bills.LastNumber(ctx)
			if err != nil {
				return fmt.Errorf("read last bill number: %w", err)
			}
			number, err := billnum.Next(last)
			if err != nil {
				return fmt.Errorf("derive bill number after %q: %w", last, err)
			}

			if !quotation {
				for _, line := range draft.Lines() {
					if _, err := s.items.DecrementStock(ctx, line.ItemID, line.Quantity); err != nil {
						return err
					}
				}
			}

			b := NewBill(number, draft, quotation, s.now())
			if err := s.bills.Create(ctx, b); err != nil {
				return err
			}

			if s.audit != nil {
				entry := AuditEntry{
					Action:   "finalize",
					BillID:   b.ID,
					Number:   b.Number,
					Operator: appctx.GetOperatorID(ctx),
					Changes:  b,
				}
				if err := s.audit.Record(ctx, entry); err != nil {
					return fmt.Errorf("audit finalize: %w", err)
				}
			}

			bill = b
			return nil
		})
		if err == nil {
			break
		}
		if apperror.IsDuplicate(err) && attempt < maxNumberAttempts {
			logger.Warn(ctx, "bill number collision, retrying", "attempt", attempt)
			continue
		}
		return nil, err
	}

	if s.pub != nil && !quotation {
		if pubErr := s.pub.PublishChanged(ctx); pubErr != nil {
			logger.Warn(ctx, "catalog change notification failed", "error", pubErr)
		}
	}

	logger.Info(ctx, "bill finalized",
		"number", bill.Number,
		"net_total", bill.NetTotal,
		"status", bill.Status(),
		"quotation", quotation,
	)
	return bill, nil
}

// FindByNumber retrieves a historical bill by its exact number.
func (s *Service) FindByNumber(ctx context.Context, number string) (*Bill, error) {
	if !billnum.Valid(number) {
		return nil, apperror.NewValidation("malformed bill number").
			WithDetail("bill_number", number)
	}
	return s.bills.GetByNumber(ctx, number)
}

// ListUnsettled returns every credit bill, oldest first, for cash
// reconciliation.
func (s *Service) ListUnsettled(ctx context.Context) ([]*Bill, error) {
	return s.bills.ListUnsettled(ctx)
}

// Settle amends a credit bill with corrected cash tendered and a
// recomputed balance. Number, lines and net total never change. The
// amendment is audited; settling an already-settled bill is rejected.
func (s *Service) Settle(ctx context.Context, number string, cash types.Money) (*Bill, error) {
	if cash.IsNegative() {
		return nil, apperror.NewValidation("cash tendered cannot be negative").
			WithDetail("field", "cashTendered")
	}

	var settled *Bill
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		bill, err := s.bills.GetByNumber(ctx, number)
		if err != nil {
			return err
		}
		if bill.Settled() {
			return apperror.NewBillSettled(number)
		}

		previous := bill.CashTendered
		balance := cash.Sub(bill.NetTotal)
		if err := s.bills.UpdateSettlement(ctx, bill.ID, cash, balance, bill.Version); err != nil {
			return err
		}

		bill.CashTendered = cash
		bill.Balance = balance
		bill.Version++

		if s.audit != nil {
			entry := AuditEntry{
				Action:   "settle",
				BillID:   bill.ID,
				Number:   bill.Number,
				Operator: appctx.GetOperatorID(ctx),
				Changes: map[string]any{
					"cash_tendered_before": previous,
					"cash_tendered_after":  cash,
					"balance_after":        balance,
				},
			}
			if err := s.audit.Record(ctx, entry); err != nil {
				return fmt.Errorf("audit settle: %w", err)
			}
		}

		settled = bill
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "bill settled",
		"number", settled.Number,
		"cash_tendered", settled.CashTendered,
		"balance", settled.Balance,
	)
	return settled, nil
}

// Void removes a bill entirely. This is the only deletion path and it
// is an explicit, audited administrative action.
func (s *Service) Void(ctx context.Context, number string) error {
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		bill, err := s.bills.GetByNumber(ctx, number)
		if err != nil {
			return err
		}
		if err := s.bills.Delete(ctx, bill.ID); err != nil {
			return err
		}
		if s.audit != nil {
			entry := AuditEntry{
				Action:   "void",
				BillID:   bill.ID,
				Number:   bill.Number,
				Operator: appctx.GetOperatorID(ctx),
				Changes:  bill,
			}
			if err := s.audit.Record(ctx, entry); err != nil {
				return fmt.Errorf("audit void: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	logger.Info(ctx, "bill voided", "number", number)
	return nil
}
