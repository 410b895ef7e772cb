// Package catalog provides the item catalog: the products the shop
// sells, their prices, stock on hand and reorder thresholds.
package catalog

import (
	"context"
	"time"

	"shoptill/internal/core/apperror"
	"shoptill/internal/core/id"
	"shoptill/internal/core/types"
)

// Item is a catalog entry. Stock is tracked in whole units.
type Item struct {
	ID id.ID `db:"id" json:"id"`

	// Name is the display name, unique among non-deleted items
	Name string `db:"name" json:"name"`

	// UnitPrice is the current selling price
	UnitPrice types.Money `db:"unit_price" json:"unitPrice"`

	// StockQuantity is units on hand
	StockQuantity int64 `db:"stock_quantity" json:"stockQuantity"`

	// ReorderThreshold marks the low-stock warning level
	ReorderThreshold int64 `db:"reorder_threshold" json:"reorderThreshold"`

	// DeletionMark indicates a soft-deleted item
	DeletionMark bool `db:"deletion_mark" json:"deletionMark"`

	// Version for optimistic locking
	Version int `db:"version" json:"version"`

	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

// NewItem creates a new Item with a generated ID.
func NewItem(name string, unitPrice types.Money, stock, reorderThreshold int64) *Item {
	now := time.Now().UTC()
	return &Item{
		ID:               id.New(),
		Name:             name,
		UnitPrice:        unitPrice,
		StockQuantity:    stock,
		ReorderThreshold: reorderThreshold,
		Version:          1,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
}

// Validate checks item invariants.
func (i *Item) Validate(ctx context.Context) error {
	if i.Name == "" {
		return apperror.NewValidation("name is required").
			WithDetail("field", "name")
	}
	if i.UnitPrice.IsNegative() {
		return apperror.NewValidation("unit price cannot be negative").
			WithDetail("field", "unitPrice")
	}
	if i.StockQuantity < 0 {
		return apperror.NewValidation("stock quantity cannot be negative").
			WithDetail("field", "stockQuantity")
	}
	if i.ReorderThreshold < 0 {
		return apperror.NewValidation("reorder threshold cannot be negative").
			WithDetail("field", "reorderThreshold")
	}
	return nil
}

// LowStock reports whether the item is at or below its reorder threshold.
func (i *Item) LowStock() bool {
	return i.StockQuantity <= i.ReorderThreshold
}
