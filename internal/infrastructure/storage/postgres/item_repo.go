package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5"

	"shoptill/internal/core/apperror"
	"shoptill/internal/core/id"
	"shoptill/internal/domain/catalog"
)

const itemsTable = "items"

var itemColumns = []string{
	"id", "name", "unit_price", "stock_quantity", "reorder_threshold",
	"deletion_mark", "version", "created_at", "updated_at",
}

var _ catalog.Repository = (*ItemRepo)(nil)

// ItemRepo implements catalog.Repository.
type ItemRepo struct {
	txm     *TxManager
	builder squirrel.StatementBuilderType
}

// NewItemRepo creates a new item repository.
func NewItemRepo(txm *TxManager) *ItemRepo {
	return &ItemRepo{
		txm:     txm,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

func (r *ItemRepo) baseSelect() squirrel.SelectBuilder {
	return r.builder.Select(itemColumns...).From(itemsTable)
}

// Create inserts a new item.
func (r *ItemRepo) Create(ctx context.Context, item *catalog.Item) error {
	q := r.builder.Insert(itemsTable).
		Columns(itemColumns...).
		Values(
			item.ID, item.Name, item.UnitPrice, item.StockQuantity,
			item.ReorderThreshold, item.DeletionMark, item.Version,
			item.CreatedAt, item.UpdatedAt,
		)

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build item insert: %w", err)
	}
	if _, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		if isUniqueViolation(err) {
			return apperror.NewDuplicate("item", "name", item.Name)
		}
		return apperror.NewPersistence("create item", err)
	}
	return nil
}

// Update saves item fields with optimistic version check.
func (r *ItemRepo) Update(ctx context.Context, item *catalog.Item) error {
	q := r.builder.Update(itemsTable).
		Set("name", item.Name).
		Set("unit_price", item.UnitPrice).
		Set("stock_quantity", item.StockQuantity).
		Set("reorder_threshold", item.ReorderThreshold).
		Set("deletion_mark", item.DeletionMark).
		Set("version", item.Version+1).
		Set("updated_at", time.Now().UTC()).
		Where(squirrel.Eq{"id": item.ID, "version": item.Version})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build item update: %w", err)
	}
	tag, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return apperror.NewPersistence("update item", err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewConflict("item was modified concurrently").
			WithDetail("item_id", item.ID)
	}
	item.Version++
	return nil
}

// GetByID retrieves an item by ID, deleted or not.
func (r *ItemRepo) GetByID(ctx context.Context, itemID id.ID) (*catalog.Item, error) {
	sql, args, err := r.baseSelect().Where(squirrel.Eq{"id": itemID}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build item select: %w", err)
	}

	var item catalog.Item
	if err := pgxscan.Get(ctx, r.txm.GetQuerier(ctx), &item, sql, args...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.NewNotFound("item", itemID)
		}
		return nil, apperror.NewPersistence("get item", err)
	}
	return &item, nil
}

// List retrieves all non-deleted items ordered by name.
func (r *ItemRepo) List(ctx context.Context) ([]catalog.Item, error) {
	sql, args, err := r.baseSelect().
		Where(squirrel.Eq{"deletion_mark": false}).
		OrderBy("name ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build item list: %w", err)
	}

	var items []catalog.Item
	if err := pgxscan.Select(ctx, r.txm.GetQuerier(ctx), &items, sql, args...); err != nil {
		return nil, apperror.NewPersistence("list items", err)
	}
	return items, nil
}

// SoftDelete marks an item as deleted without losing bill history.
func (r *ItemRepo) SoftDelete(ctx context.Context, itemID id.ID) error {
	q := r.builder.Update(itemsTable).
		Set("deletion_mark", true).
		Set("updated_at", time.Now().UTC()).
		Where(squirrel.Eq{"id": itemID})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build item delete: %w", err)
	}
	tag, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return apperror.NewPersistence("delete item", err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewNotFound("item", itemID)
	}
	return nil
}

// DecrementStock atomically subtracts qty, failing when stock would go
// negative. The availability check and the write are one statement, so
// concurrent sales cannot both pass a stale check.
func (r *ItemRepo) DecrementStock(ctx context.Context, itemID id.ID, qty int64) (int64, error) {
	const sql = `
		UPDATE items
		SET stock_quantity = stock_quantity - $2, updated_at = now()
		WHERE id = $1 AND deletion_mark = FALSE AND stock_quantity >= $2
		RETURNING stock_quantity
	`

	var remaining int64
	err := r.txm.GetQuerier(ctx).QueryRow(ctx, sql, itemID, qty).Scan(&remaining)
	if err == nil {
		return remaining, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return 0, apperror.NewPersistence("decrement stock", err)
	}

	// Zero rows: either unknown item or not enough stock. Read the
	// current quantity so the error names what is actually available.
	item, getErr := r.GetByID(ctx, itemID)
	if getErr != nil {
		return 0, getErr
	}
	return 0, apperror.NewInsufficientStock(itemID.String(), qty, item.StockQuantity)
}

// AddStock atomically adds qty to an item's stock.
func (r *ItemRepo) AddStock(ctx context.Context, itemID id.ID, qty int64) (int64, error) {
	const sql = `
		UPDATE items
		SET stock_quantity = stock_quantity + $2, updated_at = now()
		WHERE id = $1
		RETURNING stock_quantity
	`

	var remaining int64
	err := r.txm.GetQuerier(ctx).QueryRow(ctx, sql, itemID, qty).Scan(&remaining)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, apperror.NewNotFound("item", itemID)
	}
	if err != nil {
		return 0, apperror.NewPersistence("add stock", err)
	}
	return remaining, nil
}

// FindLowStock retrieves items at or below their reorder threshold.
func (r *ItemRepo) FindLowStock(ctx context.Context) ([]catalog.Item, error) {
	sql, args, err := r.baseSelect().
		Where(squirrel.Eq{"deletion_mark": false}).
		Where("stock_quantity <= reorder_threshold").
		Where(squirrel.Gt{"reorder_threshold": 0}).
		OrderBy("name ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build low stock select: %w", err)
	}

	var items []catalog.Item
	if err := pgxscan.Select(ctx, r.txm.GetQuerier(ctx), &items, sql, args...); err != nil {
		return nil, apperror.NewPersistence("find low stock", err)
	}
	return items, nil
}
