package catalog

import (
	"context"
	"time"

	"shoptill/internal/core/apperror"
	"shoptill/internal/core/id"
	"shoptill/internal/core/types"
	"shoptill/pkg/logger"
)

// Service provides the item-management flow: creating, repricing,
// restocking and retiring catalog items. Every successful write is
// announced on the change feed so mirrors refresh.
type Service struct {
	repo Repository
	pub  Publisher
}

// NewService creates a new catalog service.
func NewService(repo Repository, pub Publisher) *Service {
	return &Service{repo: repo, pub: pub}
}

// Create adds a new item to the catalog.
func (s *Service) Create(ctx context.Context, item *Item) error {
	if err := item.Validate(ctx); err != nil {
		return err
	}
	if err := s.repo.Create(ctx, item); err != nil {
		return err
	}
	s.notify(ctx)
	logger.Info(ctx, "item created", "id", item.ID, "name", item.Name)
	return nil
}

// Update saves changed item fields.
func (s *Service) Update(ctx context.Context, item *Item) error {
	if err := item.Validate(ctx); err != nil {
		return err
	}
	item.UpdatedAt = time.Now().UTC()
	if err := s.repo.Update(ctx, item); err != nil {
		return err
	}
	s.notify(ctx)
	return nil
}

// GetByID retrieves a single item.
func (s *Service) GetByID(ctx context.Context, itemID id.ID) (*Item, error) {
	return s.repo.GetByID(ctx, itemID)
}

// List returns all non-deleted items.
func (s *Service) List(ctx context.Context) ([]Item, error) {
	return s.repo.List(ctx)
}

// Delete soft-deletes an item. Historical bills keep their snapshots.
func (s *Service) Delete(ctx context.Context, itemID id.ID) error {
	if err := s.repo.SoftDelete(ctx, itemID); err != nil {
		return err
	}
	s.notify(ctx)
	logger.Info(ctx, "item deleted", "id", itemID)
	return nil
}

// Restock adds qty units to an item's stock.
func (s *Service) Restock(ctx context.Context, itemID id.ID, qty int64) (int64, error) {
	if qty <= 0 {
		return 0, apperror.NewValidation("restock quantity must be positive").
			WithDetail("field", "quantity")
	}
	remaining, err := s.repo.AddStock(ctx, itemID, qty)
	if err != nil {
		return 0, err
	}
	s.notify(ctx)
	logger.Info(ctx, "item restocked", "id", itemID, "added", qty, "on_hand", remaining)
	return remaining, nil
}

// Reprice updates an item's selling price. Existing bill lines keep the
// price snapshotted when they were added.
func (s *Service) Reprice(ctx context.Context, itemID id.ID, price types.Money) (*Item, error) {
	item, err := s.repo.GetByID(ctx, itemID)
	if err != nil {
		return nil, err
	}
	item.UnitPrice = price
	if err := s.Update(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

// LowStock returns items at or below their reorder threshold.
func (s *Service) LowStock(ctx context.Context) ([]Item, error) {
	return s.repo.FindLowStock(ctx)
}

func (s *Service) notify(ctx context.Context) {
	if s.pub == nil {
		return
	}
	if err := s.pub.PublishChanged(ctx); err != nil {
		logger.Warn(ctx, "catalog change notification failed", "error", err)
	}
}
