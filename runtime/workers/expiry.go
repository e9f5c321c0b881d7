package workers

import (
	"context"
	"log/slog"
	"time"

	"chatsphere/lifecycle"
)

// ExpiryWorker periodically removes rooms whose host has gone away. The
// sweep itself lives in the lifecycle manager; this worker only drives
// the clock.
type ExpiryWorker struct {
	manager  *lifecycle.Manager
	interval time.Duration
	log      *slog.Logger
}

func NewExpiryWorker(manager *lifecycle.Manager, interval time.Duration, log *slog.Logger) *ExpiryWorker {
	return &ExpiryWorker{manager: manager, interval: interval, log: log}
}

func (w *ExpiryWorker) Run(ctx context.Context) error {
	w.log.Info("Starting room expiry worker", "interval", w.interval)
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Debug("Context done, stopping room expiry sweeps")
			return nil
		case <-ticker.C:
			deleted, err := w.manager.SweepExpired()
			if err != nil {
				w.log.Error("Room expiry sweep failed", "error", err)
				continue
			}
			if deleted > 0 {
				w.log.Info("Room expiry sweep finished", "deleted", deleted)
			}
		}
	}
}
