package runtime

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"realtime-lab/contract"
	"realtime-lab/ledger"
	"realtime-lab/runtime/workers"
)

// Orchestrator wires the realtime core together: it rehydrates the
// ledger, binds the registry's change callback to the presence tracker,
// and places the long-lived workers under supervision. It owns no
// business rules of its own.
type Orchestrator struct {
	log              *slog.Logger
	supervisor       contract.ISupervisor
	registry         *Registry
	ledger           *ledger.Ledger
	tracker          *workers.PresenceTracker
	unreadRepo       contract.IUnreadSnapshotRepository
	snapshotInterval time.Duration
}

func NewOrchestrator(log *slog.Logger, supervisor contract.ISupervisor,
	registry *Registry, unreadLedger *ledger.Ledger,
	tracker *workers.PresenceTracker,
	unreadRepo contract.IUnreadSnapshotRepository,
	snapshotInterval time.Duration) *Orchestrator {
	return &Orchestrator{
		log:              log,
		supervisor:       supervisor,
		registry:         registry,
		ledger:           unreadLedger,
		tracker:          tracker,
		unreadRepo:       unreadRepo,
		snapshotInterval: snapshotInterval,
	}
}

// Start rehydrates state and launches the supervised workers. The
// supervisor loop runs in its own goroutine; Start returns once wiring
// is done.
func (o *Orchestrator) Start(ctx context.Context) error {
	counters, err := o.unreadRepo.LoadAll()
	if err != nil {
		return fmt.Errorf("loading unread snapshot: %w", err)
	}
	if len(counters) > 0 {
		o.ledger.Rehydrate(counters)
	}

	o.registry.OnConnectionChange(o.tracker.OnConnectionChange)

	o.supervisor.Add(o.tracker)
	o.supervisor.Add(workers.NewUnreadSnapshotWorker(o.log, o.ledger, o.unreadRepo, o.snapshotInterval))

	o.log.Info("Starting orchestrator and all supervised workers")
	go o.supervisor.Run(ctx)
	return nil
}

// Stop initiates a graceful shutdown: workers observe the cancellation
// and drain, the snapshot worker persists one last time on its way out.
func (o *Orchestrator) Stop() {
	o.log.Info("Requesting orchestrator shutdown")
	o.supervisor.Stop()
}
