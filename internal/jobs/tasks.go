// Package jobs runs the scheduled background work of the shop: the
// low-stock sweep and the credit reminder report.
package jobs

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"

	// TaskLowStockScan sweeps the catalog for items at or below their
	// reorder threshold.
	TaskLowStockScan = "catalog:low_stock_scan"

	// TaskCreditReminder reports unsettled credit bills older than a
	// cutoff.
	TaskCreditReminder = "billing:credit_reminder"
)

// LowStockScanPayload configures one low-stock sweep.
type LowStockScanPayload struct {
	// NotifyThreshold caps how many items get logged individually.
	NotifyThreshold int `json:"notifyThreshold,omitempty"`
}

// NewLowStockScanTask constructs a low-stock sweep task.
func NewLowStockScanTask(payload LowStockScanPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskLowStockScan, data), nil
}

// CreditReminderPayload configures one credit reminder run.
type CreditReminderPayload struct {
	// MinAgeDays skips freshly issued credit bills.
	MinAgeDays int `json:"minAgeDays,omitempty"`
}

// NewCreditReminderTask constructs a credit reminder task.
func NewCreditReminderTask(payload CreditReminderPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskCreditReminder, data), nil
}
