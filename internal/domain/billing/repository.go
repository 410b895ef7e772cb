package billing

import (
	"context"

	"shoptill/internal/core/id"
	"shoptill/internal/core/types"
)

// Repository defines the interface for bill persistence. The store is
// append-only apart from settlement amendments and explicit voids.
type Repository interface {
	// Create inserts a bill and its lines. A bill number collision
	// (concurrent finalization derived the same next number) returns a
	// DUPLICATE_ENTRY error so the caller can retry with a fresh read.
	Create(ctx context.Context, bill *Bill) error

	// GetByNumber retrieves a bill with lines by its exact bill number.
	GetByNumber(ctx context.Context, number string) (*Bill, error)

	// LastNumber returns the number of the most recently created bill,
	// or empty when no bill exists yet.
	LastNumber(ctx context.Context) (string, error)

	// ListUnsettled returns non-quotation bills whose cash tendered is
	// below their net total, ordered by issue date ascending.
	ListUnsettled(ctx context.Context) ([]*Bill, error)

	// UpdateSettlement amends cash tendered and balance only. Number,
	// lines and net total are immutable.
	UpdateSettlement(ctx context.Context, billID id.ID, cash, balance types.Money, version int) error

	// Delete removes a bill and its lines (the administrative void).
	Delete(ctx context.Context, billID id.ID) error
}

// AuditEntry records an audited billing action for later reconciliation.
type AuditEntry struct {
	Action   string
	BillID   id.ID
	Number   string
	Operator string
	Changes  any
}

// AuditLog persists audit entries. Implementations join the ambient
// transaction when one is active.
type AuditLog interface {
	Record(ctx context.Context, entry AuditEntry) error
}
