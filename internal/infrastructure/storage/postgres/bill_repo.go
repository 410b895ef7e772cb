package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5"

	"shoptill/internal/core/apperror"
	"shoptill/internal/core/id"
	"shoptill/internal/core/types"
	"shoptill/internal/domain/billing"
)

const (
	billsTable     = "bills"
	billLinesTable = "bill_lines"
)

var billColumns = []string{
	"id", "bill_number", "gross_total", "discount_percent", "discount_amount",
	"net_total", "cash_tendered", "balance", "quotation",
	"issued_at", "created_at", "version",
}

var _ billing.Repository = (*BillRepo)(nil)

// BillRepo implements billing.Repository.
type BillRepo struct {
	txm     *TxManager
	builder squirrel.StatementBuilderType
}

// NewBillRepo creates a new bill repository.
func NewBillRepo(txm *TxManager) *BillRepo {
	return &BillRepo{
		txm:     txm,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

func (r *BillRepo) baseSelect() squirrel.SelectBuilder {
	return r.builder.Select(billColumns...).From(billsTable)
}

// Create inserts the bill header and lines. The unique index on
// bill_number turns a concurrent numbering race into DUPLICATE_ENTRY.
func (r *BillRepo) Create(ctx context.Context, bill *billing.Bill) error {
	q := r.builder.Insert(billsTable).
		Columns(billColumns...).
		Values(
			bill.ID, bill.Number, bill.GrossTotal, bill.DiscountPercent,
			bill.DiscountAmount, bill.NetTotal, bill.CashTendered,
			bill.Balance, bill.Quotation, bill.IssuedAt, bill.CreatedAt,
			bill.Version,
		)

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build bill insert: %w", err)
	}
	querier := r.txm.GetQuerier(ctx)
	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		if isUniqueViolation(err) {
			return apperror.NewDuplicate("bill", "bill_number", bill.Number)
		}
		return apperror.NewPersistence("create bill", err)
	}

	if len(bill.Lines) == 0 {
		return nil
	}
	lq := r.builder.Insert(billLinesTable).
		Columns("bill_id", "position", "item_id", "name", "unit_price", "quantity")
	for i, line := range bill.Lines {
		lq = lq.Values(bill.ID, i, line.ItemID, line.Name, line.UnitPrice, line.Quantity)
	}
	sql, args, err = lq.ToSql()
	if err != nil {
		return fmt.Errorf("build bill lines insert: %w", err)
	}
	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		return apperror.NewPersistence("create bill lines", err)
	}
	return nil
}

// GetByNumber retrieves a bill with its lines.
func (r *BillRepo) GetByNumber(ctx context.Context, number string) (*billing.Bill, error) {
	sql, args, err := r.baseSelect().Where(squirrel.Eq{"bill_number": number}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build bill select: %w", err)
	}

	querier := r.txm.GetQuerier(ctx)
	var bill billing.Bill
	if err := pgxscan.Get(ctx, querier, &bill, sql, args...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.NewNotFound("bill", number)
		}
		return nil, apperror.NewPersistence("get bill", err)
	}

	sql, args, err = r.builder.
		Select("item_id", "name", "unit_price", "quantity").
		From(billLinesTable).
		Where(squirrel.Eq{"bill_id": bill.ID}).
		OrderBy("position ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build bill lines select: %w", err)
	}
	if err := pgxscan.Select(ctx, querier, &bill.Lines, sql, args...); err != nil {
		return nil, apperror.NewPersistence("get bill lines", err)
	}
	return &bill, nil
}

// LastNumber returns the most recently created bill number, or empty.
func (r *BillRepo) LastNumber(ctx context.Context) (string, error) {
	sql, args, err := r.builder.
		Select("bill_number").
		From(billsTable).
		OrderBy("created_at DESC", "bill_number DESC").
		Limit(1).
		ToSql()
	if err != nil {
		return "", fmt.Errorf("build last number select: %w", err)
	}

	var number string
	err = r.txm.GetQuerier(ctx).QueryRow(ctx, sql, args...).Scan(&number)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", apperror.NewPersistence("last bill number", err)
	}
	return number, nil
}

// ListUnsettled returns credit bills oldest first.
func (r *BillRepo) ListUnsettled(ctx context.Context) ([]*billing.Bill, error) {
	sql, args, err := r.baseSelect().
		Where(squirrel.Eq{"quotation": false}).
		Where("cash_tendered < net_total").
		OrderBy("issued_at ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build unsettled select: %w", err)
	}

	var bills []*billing.Bill
	if err := pgxscan.Select(ctx, r.txm.GetQuerier(ctx), &bills, sql, args...); err != nil {
		return nil, apperror.NewPersistence("list unsettled bills", err)
	}
	return bills, nil
}

// UpdateSettlement amends cash tendered and balance under optimistic
// version check. Everything else on the bill stays untouched.
func (r *BillRepo) UpdateSettlement(ctx context.Context, billID id.ID, cash, balance types.Money, version int) error {
	q := r.builder.Update(billsTable).
		Set("cash_tendered", cash).
		Set("balance", balance).
		Set("version", version+1).
		Where(squirrel.Eq{"id": billID, "version": version})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build settlement update: %w", err)
	}
	tag, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return apperror.NewPersistence("update settlement", err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewConflict("bill was modified concurrently").
			WithDetail("bill_id", billID)
	}
	return nil
}

// Delete removes a bill and its lines.
func (r *BillRepo) Delete(ctx context.Context, billID id.ID) error {
	querier := r.txm.GetQuerier(ctx)

	sql, args, err := r.builder.Delete(billLinesTable).
		Where(squirrel.Eq{"bill_id": billID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build lines delete: %w", err)
	}
	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		return apperror.NewPersistence("delete bill lines", err)
	}

	sql, args, err = r.builder.Delete(billsTable).
		Where(squirrel.Eq{"id": billID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build bill delete: %w", err)
	}
	tag, err := querier.Exec(ctx, sql, args...)
	if err != nil {
		return apperror.NewPersistence("delete bill", err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewNotFound("bill", billID)
	}
	return nil
}
