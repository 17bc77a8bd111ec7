package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/andino-pos/andino-pos/internal/dashboard"
	jobmetrics "github.com/andino-pos/andino-pos/internal/jobs"
)

// LowStockScanJob logs every product at or below the low stock threshold and
// records the count in metrics.
type LowStockScanJob struct {
	Repo    dashboard.Repository
	Logger  *slog.Logger
	Metrics *jobmetrics.Metrics
}

// NewLowStockScanJob wires dependencies for the scan handler.
func NewLowStockScanJob(repo dashboard.Repository, logger *slog.Logger, metrics *jobmetrics.Metrics) *LowStockScanJob {
	return &LowStockScanJob{Repo: repo, Logger: logger, Metrics: metrics}
}

// Handle processes low stock scan tasks.
func (j *LowStockScanJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.Repo == nil {
		return errors.New("low stock scan: handler not configured")
	}
	var payload LowStockScanPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}

	tracker := j.metrics().Track(TaskLowStockScan)
	var resultErr error
	defer func() {
		resultErr = tracker.End(resultErr)
	}()

	logger := j.logger()
	jobCtx, cancel := context.WithTimeout(ctx, 20*time.Second)
	defer cancel()

	alerts, err := j.Repo.LowStockProducts(jobCtx)
	if err != nil {
		resultErr = err
		logger.Error("scan low stock", slog.Any("error", err))
		return resultErr
	}

	j.metrics().SetLowStockCount(len(alerts))
	for _, alert := range alerts {
		logger.Warn("low stock",
			slog.Int64("product_id", alert.ProductID),
			slog.String("name", alert.Name),
			slog.Int("stock", alert.Stock))
	}
	logger.Info("completed low stock scan", slog.Int("alerts", len(alerts)))
	return resultErr
}

func (j *LowStockScanJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger.With(slog.String("job", TaskLowStockScan))
	}
	return slog.Default().With(slog.String("job", TaskLowStockScan))
}

func (j *LowStockScanJob) metrics() *jobmetrics.Metrics {
	if j.Metrics != nil {
		return j.Metrics
	}
	return defaultJobMetrics
}
