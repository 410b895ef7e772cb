package catalog

import (
	"context"

	"shoptill/internal/core/id"
)

// Repository defines the interface for item persistence.
type Repository interface {
	// Create inserts a new item. Duplicate names are rejected.
	Create(ctx context.Context, item *Item) error

	// Update saves item fields with optimistic locking.
	Update(ctx context.Context, item *Item) error

	// GetByID retrieves an item.
	GetByID(ctx context.Context, itemID id.ID) (*Item, error)

	// List returns all non-deleted items.
	List(ctx context.Context) ([]Item, error)

	// SoftDelete marks an item deleted without touching historical bills.
	SoftDelete(ctx context.Context, itemID id.ID) error

	// DecrementStock conditionally subtracts qty from stock. The guard
	// stock_quantity >= qty is evaluated at write time; when it fails
	// no row is changed and an INSUFFICIENT_STOCK error carrying the
	// currently available quantity is returned.
	DecrementStock(ctx context.Context, itemID id.ID, qty int64) (remaining int64, err error)

	// AddStock increases stock on hand (restock flow).
	AddStock(ctx context.Context, itemID id.ID, qty int64) (remaining int64, err error)

	// FindLowStock returns non-deleted items at or below their reorder threshold.
	FindLowStock(ctx context.Context) ([]Item, error)
}

// Feed delivers catalog change notifications. Subscribe blocks until the
// context is cancelled, invoking fn once per upstream change.
type Feed interface {
	Subscribe(ctx context.Context, fn func(ctx context.Context)) error
}

// Publisher announces that the catalog changed. Implementations fan the
// notification out to every subscribed Feed.
type Publisher interface {
	PublishChanged(ctx context.Context) error
}
