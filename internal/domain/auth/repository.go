package auth

import (
	"context"

	"shoptill/internal/core/id"
)

// Repository defines operator storage operations.
type Repository interface {
	// Create creates a new operator. Returns DUPLICATE_ENTRY when the
	// code is taken.
	Create(ctx context.Context, op *Operator) error

	// GetByID retrieves an operator by ID.
	GetByID(ctx context.Context, operatorID id.ID) (*Operator, error)

	// GetByCode retrieves an operator by sign-in code.
	GetByCode(ctx context.Context, code string) (*Operator, error)

	// Update updates operator data.
	Update(ctx context.Context, op *Operator) error

	// List retrieves all operators.
	List(ctx context.Context) ([]Operator, error)
}
