package workers

import (
	"context"
	"log/slog"
	"time"

	"chatsphere/repositories"
)

// RetentionWorker ages supplemental messages out of the permanent rooms.
// Messages older than the retention period are dropped on every tick.
type RetentionWorker struct {
	store     repositories.IRoomRepository
	retention time.Duration
	interval  time.Duration
	log       *slog.Logger
	now       func() time.Time
}

func NewRetentionWorker(
	store repositories.IRoomRepository,
	retention, interval time.Duration,
	log *slog.Logger,
) *RetentionWorker {
	return &RetentionWorker{
		store:     store,
		retention: retention,
		interval:  interval,
		log:       log,
		now:       time.Now,
	}
}

func (w *RetentionWorker) Run(ctx context.Context) error {
	w.log.Info("Starting message retention worker",
		"retention", w.retention, "interval", w.interval)
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Debug("Context done, stopping retention sweeps")
			return nil
		case <-ticker.C:
			cutoff := w.now().Add(-w.retention)
			pruned, err := w.store.PruneSupplementalBefore(cutoff)
			if err != nil {
				w.log.Error("Message retention sweep failed", "error", err)
				continue
			}
			if pruned > 0 {
				w.log.Info("Message retention sweep finished", "pruned", pruned, "cutoff", cutoff)
			}
		}
	}
}
