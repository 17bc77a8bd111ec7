// Package jobs hosts the background task definitions and the Asynq worker
// that runs them.
package jobs

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskDashboardWarmup rebuilds the cached dashboard payload.
	TaskDashboardWarmup = "dashboard:warmup"
	// TaskLowStockScan reports products at or below the low stock threshold.
	TaskLowStockScan = "inventory:low_stock_scan"
)

// DashboardWarmupPayload configures a dashboard warmup run.
type DashboardWarmupPayload struct {
	Reason string `json:"reason,omitempty"`
}

// NewDashboardWarmupTask constructs a dashboard warmup task.
func NewDashboardWarmupTask(payload DashboardWarmupPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskDashboardWarmup, data), nil
}

// LowStockScanPayload configures a low stock scan run.
type LowStockScanPayload struct {
	Reason string `json:"reason,omitempty"`
}

// NewLowStockScanTask constructs a low stock scan task.
func NewLowStockScanTask(payload LowStockScanPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskLowStockScan, data), nil
}
