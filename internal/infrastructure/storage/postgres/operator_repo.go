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
	"shoptill/internal/domain/auth"
)

const operatorsTable = "operators"

var operatorColumns = []string{
	"id", "code", "name", "pin_hash", "is_active", "is_manager",
	"last_login_at", "failed_login_attempts", "locked_until",
	"created_at", "updated_at", "version",
}

var _ auth.Repository = (*OperatorRepo)(nil)

// OperatorRepo implements auth.Repository.
type OperatorRepo struct {
	txm     *TxManager
	builder squirrel.StatementBuilderType
}

// NewOperatorRepo creates a new operator repository.
func NewOperatorRepo(txm *TxManager) *OperatorRepo {
	return &OperatorRepo{
		txm:     txm,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

func (r *OperatorRepo) baseSelect() squirrel.SelectBuilder {
	return r.builder.Select(operatorColumns...).From(operatorsTable)
}

// Create inserts a new operator.
func (r *OperatorRepo) Create(ctx context.Context, op *auth.Operator) error {
	q := r.builder.Insert(operatorsTable).
		Columns(operatorColumns...).
		Values(
			op.ID, op.Code, op.Name, op.PINHash, op.IsActive, op.IsManager,
			op.LastLoginAt, op.FailedLoginAttempts, op.LockedUntil,
			op.CreatedAt, op.UpdatedAt, op.Version,
		)

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build operator insert: %w", err)
	}
	if _, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		if isUniqueViolation(err) {
			return apperror.NewDuplicate("operator", "code", op.Code)
		}
		return apperror.NewPersistence("create operator", err)
	}
	return nil
}

// GetByID retrieves an operator by ID.
func (r *OperatorRepo) GetByID(ctx context.Context, operatorID id.ID) (*auth.Operator, error) {
	sql, args, err := r.baseSelect().Where(squirrel.Eq{"id": operatorID}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build operator select: %w", err)
	}

	var op auth.Operator
	if err := pgxscan.Get(ctx, r.txm.GetQuerier(ctx), &op, sql, args...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.NewNotFound("operator", operatorID)
		}
		return nil, apperror.NewPersistence("get operator", err)
	}
	return &op, nil
}

// GetByCode retrieves an operator by sign-in code.
func (r *OperatorRepo) GetByCode(ctx context.Context, code string) (*auth.Operator, error) {
	sql, args, err := r.baseSelect().Where(squirrel.Eq{"code": code}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build operator select: %w", err)
	}

	var op auth.Operator
	if err := pgxscan.Get(ctx, r.txm.GetQuerier(ctx), &op, sql, args...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.NewNotFound("operator", code)
		}
		return nil, apperror.NewPersistence("get operator", err)
	}
	return &op, nil
}

// Update saves operator fields.
func (r *OperatorRepo) Update(ctx context.Context, op *auth.Operator) error {
	q := r.builder.Update(operatorsTable).
		Set("name", op.Name).
		Set("pin_hash", op.PINHash).
		Set("is_active", op.IsActive).
		Set("is_manager", op.IsManager).
		Set("last_login_at", op.LastLoginAt).
		Set("failed_login_attempts", op.FailedLoginAttempts).
		Set("locked_until", op.LockedUntil).
		Set("updated_at", op.UpdatedAt).
		Set("version", op.Version+1).
		Where(squirrel.Eq{"id": op.ID})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build operator update: %w", err)
	}
	tag, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return apperror.NewPersistence("update operator", err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewNotFound("operator", op.ID)
	}
	op.Version++
	return nil
}

// List retrieves all operators ordered by code.
func (r *OperatorRepo) List(ctx context.Context) ([]auth.Operator, error) {
	sql, args, err := r.baseSelect().OrderBy("code ASC").ToSql()
	if err != nil {
		return nil, fmt.Errorf("build operator list: %w", err)
	}

	var ops []auth.Operator
	if err := pgxscan.Select(ctx, r.txm.GetQuerier(ctx), &ops, sql, args...); err != nil {
		return nil, apperror.NewPersistence("list operators", err)
	}
	return ops, nil
}
