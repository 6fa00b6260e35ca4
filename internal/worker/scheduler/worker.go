package scheduler

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/spf13/viper"
)

// service is the sync entry point the scheduler drives.
type service interface {
	RunIncrementalSync(ctx context.Context) error
}

// Worker triggers an incremental sync pass on a fixed interval. A
// process-local atomic flag keeps at most one pass in flight: a tick
// that fires while a pass is still running is skipped entirely, not
// queued. The guard does not survive restarts and does not coordinate
// across instances; single-instance deployment is assumed.
type Worker struct {
	service  service
	interval time.Duration
	running  atomic.Bool
	stopCh   chan struct{}
}

// NewWorker creates a new sync scheduler worker.
func NewWorker(svc service) *Worker {
	interval := viper.GetDuration("scheduler.sync_interval")
	if interval == 0 {
		interval = 5 * time.Minute
	}

	return &Worker{
		service:  svc,
		interval: interval,
		stopCh:   make(chan struct{}),
	}
}

// Start begins triggering sync passes until the context is cancelled or
// Stop is called.
func (w *Worker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	slog.Info("Sync scheduler started", "interval", w.interval)

	for {
		select {
		case <-ctx.Done():
			slog.Info("Sync scheduler shutting down")

			return
		case <-w.stopCh:
			slog.Info("Sync scheduler stopped")

			return
		case <-ticker.C:
			w.trigger(ctx)
		}
	}
}

// Stop stops the worker.
func (w *Worker) Stop() {
	close(w.stopCh)
}

func (w *Worker) trigger(ctx context.Context) {
	if !w.running.CompareAndSwap(false, true) {
		slog.Info("Previous sync pass still running, skipping this tick")

		return
	}
	defer w.running.Store(false)

	if err := w.service.RunIncrementalSync(ctx); err != nil {
		slog.Error("Scheduled sync pass failed", "error", err)
	}
}
