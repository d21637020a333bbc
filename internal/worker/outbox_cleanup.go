package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/jwalitptl/careline-api/internal/repository"
	"github.com/jwalitptl/careline-api/pkg/logger"
	"github.com/jwalitptl/careline-api/pkg/metrics"
)

// OutboxCleanupWorker purges published outbox events past their retention.
type OutboxCleanupWorker struct {
	repo            repository.OutboxRepository
	retention       time.Duration
	cleanupInterval time.Duration
	logger          *logger.Logger
	metrics         *metrics.Metrics
	now             func() time.Time
}

func NewOutboxCleanupWorker(
	repo repository.OutboxRepository,
	retention, cleanupInterval time.Duration,
	logger *logger.Logger,
	metrics *metrics.Metrics,
) *OutboxCleanupWorker {
	return &OutboxCleanupWorker{
		repo:            repo,
		retention:       retention,
		cleanupInterval: cleanupInterval,
		logger:          logger.With("outbox_cleanup"),
		metrics:         metrics,
		now:             time.Now,
	}
}

func (w *OutboxCleanupWorker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := w.Cleanup(ctx); err != nil {
				w.logger.Error(err, "outbox cleanup failed")
			}
		}
	}
}

// Cleanup deletes processed events older than the retention window.
func (w *OutboxCleanupWorker) Cleanup(ctx context.Context) (int64, error) {
	cutoff := w.now().Add(-w.retention)

	rows, err := w.repo.DeleteProcessedBefore(ctx, cutoff)
	if err != nil {
		w.metrics.DatabaseOperations.WithLabelValues("purge_processed", "error").Inc()
		return 0, fmt.Errorf("failed to clean up outbox events: %w", err)
	}
	w.metrics.DatabaseOperations.WithLabelValues("purge_processed", "success").Inc()
	w.metrics.OutboxEventsPurged.Add(float64(rows))

	if rows > 0 {
		w.logger.Info("purged outbox events", "rows", rows, "cutoff", cutoff)
	}
	return rows, nil
}
