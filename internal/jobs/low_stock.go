package jobs

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/hibiken/asynq"

	"shoptill/internal/domain/catalog"
	"shoptill/pkg/logger"
)

// LowStockScanJob flags items that have fallen to their reorder
// threshold so the owner restocks before a sale bounces on
// insufficient stock.
type LowStockScanJob struct {
	items catalog.Repository
}

// NewLowStockScanJob initialises the low-stock handler.
func NewLowStockScanJob(items catalog.Repository) *LowStockScanJob {
	return &LowStockScanJob{items: items}
}

// Handle executes one sweep.
func (j *LowStockScanJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.items == nil {
		return errors.New("low stock scan: handler not configured")
	}
	var payload LowStockScanPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	if payload.NotifyThreshold <= 0 {
		payload.NotifyThreshold = 50
	}

	items, err := j.items.FindLowStock(ctx)
	if err != nil {
		return err
	}
	if len(items) == 0 {
		logger.Info(ctx, "low stock scan clean")
		return nil
	}

	for i, item := range items {
		if i >= payload.NotifyThreshold {
			break
		}
		logger.Warn(ctx, "item low on stock",
			"item_id", item.ID,
			"name", item.Name,
			"stock", item.StockQuantity,
			"threshold", item.ReorderThreshold,
		)
	}
	logger.Info(ctx, "low stock scan complete", "flagged", len(items))
	return nil
}
