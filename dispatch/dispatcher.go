// Package dispatch is the single entry point collaborators use to fan an
// event out to live connections. Delivery is best effort: one attempt
// per connection, offline recipients are the store's job on reconnect.
package dispatch

import (
	"context"
	"fmt"
	"log/slog"

	"realtime-lab/contract"
	"realtime-lab/domain"
	"realtime-lab/errors"
	"realtime-lab/observability"
)

type Dispatcher struct {
	log       *slog.Logger
	router    contract.IRouter
	transport contract.Transport
	metrics   *observability.Metrics
}

func NewDispatcher(log *slog.Logger, router contract.IRouter,
	transport contract.Transport, metrics *observability.Metrics) *Dispatcher {
	return &Dispatcher{log: log, router: router, transport: transport, metrics: metrics}
}

// Publish resolves the target, emits the event to every resolved
// connection, and returns how many were actually reached. Nobody online
// is a valid zero, not an error; ErrDispatchFailed is returned only when
// every resolved connection refused the emit. Partial failures are
// logged and skipped, never retried.
func (d *Dispatcher) Publish(ctx context.Context, target domain.Target, eventName string, payload any) (int, error) {
	d.metrics.Published()

	// Snapshot of the resolved set; connections disconnecting after this
	// point are simply skipped by their failing emit.
	conns := d.router.Resolve(target)
	if len(conns) == 0 {
		d.log.Debug("Nobody listening", "event", eventName, "class", target.Class())
		return 0, nil
	}

	delivered := 0
	for _, connID := range conns {
		if err := d.transport.Emit(ctx, connID, eventName, payload); err != nil {
			d.metrics.DeliveryFailed()
			d.log.Warn("Emit failed, skipping connection",
				"event", eventName, "conn", connID, "error", err)
			continue
		}
		delivered++
	}
	d.metrics.DeliveredN(delivered)

	if delivered == 0 {
		return 0, fmt.Errorf("%w: %q to %d connections",
			errors.ErrDispatchFailed, eventName, len(conns))
	}
	return delivered, nil
}
