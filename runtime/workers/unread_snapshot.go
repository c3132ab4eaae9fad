package workers

import (
	"context"
	"log/slog"
	"time"

	"realtime-lab/contract"
	"realtime-lab/domain"
)

// snapshotter is the part of the ledger this worker needs.
type snapshotter interface {
	Snapshot() map[domain.UserID]map[string]domain.UnreadCounter
}

// UnreadSnapshotWorker periodically persists the ledger so a restarted
// process resumes from the last known counters instead of zero. One
// final snapshot is taken on shutdown.
type UnreadSnapshotWorker struct {
	log        *slog.Logger
	ledger     snapshotter
	repository contract.IUnreadSnapshotRepository
	interval   time.Duration
}

func NewUnreadSnapshotWorker(log *slog.Logger, ledger snapshotter,
	repository contract.IUnreadSnapshotRepository, interval time.Duration) *UnreadSnapshotWorker {
	return &UnreadSnapshotWorker{
		log:        log,
		ledger:     ledger,
		repository: repository,
		interval:   interval,
	}
}

func (w *UnreadSnapshotWorker) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.persist()
			w.log.Debug("Context done, final unread snapshot stored")
			return nil
		case <-ticker.C:
			w.persist()
		}
	}
}

func (w *UnreadSnapshotWorker) persist() {
	counters := w.ledger.Snapshot()
	if len(counters) == 0 {
		return
	}
	if err := w.repository.SaveAll(counters); err != nil {
		w.log.Error("Unread snapshot persist failed", "error", err)
	}
}
