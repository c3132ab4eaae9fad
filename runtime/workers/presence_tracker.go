package workers

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"time"

	"realtime-lab/contract"
	"realtime-lab/domain"
	"realtime-lab/domain/event"
	"realtime-lab/observability"
)

// PresenceTracker aggregates registry membership changes into the
// broadcast "who is online" view. Boundary flips are debounced: a
// disconnect immediately followed by a reconnect (network blip, page
// reload) collapses into a single final-state emission, and when the
// final state equals the last broadcast state nothing is emitted at all.
//
// State machine per user: Offline -> Online on the first connection,
// -> Offline on the last removal, with the interim state suppressed when
// a counter-flip lands inside the debounce window.
type PresenceTracker struct {
	mu         sync.Mutex
	log        *slog.Logger
	registry   contract.IRegistry
	dispatcher contract.IDispatcher
	metrics    *observability.Metrics
	debounce   time.Duration

	known   map[domain.UserID]bool
	pending map[domain.UserID]*time.Timer
}

func NewPresenceTracker(log *slog.Logger, registry contract.IRegistry,
	dispatcher contract.IDispatcher, metrics *observability.Metrics,
	debounce time.Duration) *PresenceTracker {
	return &PresenceTracker{
		log:        log,
		registry:   registry,
		dispatcher: dispatcher,
		metrics:    metrics,
		debounce:   debounce,
		known:      make(map[domain.UserID]bool),
		pending:    make(map[domain.UserID]*time.Timer),
	}
}

// OnConnectionChange is called by the registry after every add/remove
// affecting the user. It must stay cheap: it only compares the current
// online state with the last broadcast one and arms a timer on a flip.
// A secondary device connecting or disconnecting flips nothing.
func (t *PresenceTracker) OnConnectionChange(userID domain.UserID) {
	t.mu.Lock()
	defer t.mu.Unlock()

	online := t.registry.IsOnline(userID)
	if _, armed := t.pending[userID]; armed {
		// A flip is already scheduled; the final state is re-read when
		// the timer fires, so nothing to do here.
		return
	}
	if online == t.known[userID] {
		return
	}
	t.pending[userID] = time.AfterFunc(t.debounce, func() {
		t.flush(userID)
	})
}

// flush re-reads the live state once the debounce window elapsed and
// emits only if the boundary actually moved since the last broadcast.
// The registry read happens under the lock: a flip landing while flush
// runs must either be seen here or find pending disarmed and schedule
// its own timer, never both misses at once.
func (t *PresenceTracker) flush(userID domain.UserID) {
	t.mu.Lock()
	online := t.registry.IsOnline(userID)
	delete(t.pending, userID)
	if online == t.known[userID] {
		// Counter-flip landed inside the window: suppress entirely.
		t.mu.Unlock()
		return
	}
	t.known[userID] = online
	t.mu.Unlock()

	evt := event.PresenceChanged{UserID: userID, Online: online, At: time.Now().UTC()}
	if _, err := t.dispatcher.Publish(context.Background(), evt.Target(), evt.EventName(), evt); err != nil {
		t.log.Warn("Presence broadcast failed", "user", userID, "error", err)
		return
	}
	t.metrics.PresenceEmitted()
	t.log.Debug("Presence changed", "user", userID, "online", online)
}

// Snapshot recomputes the online view from registry state. Never
// persisted; the view is rebuilt from empty on process start.
func (t *PresenceTracker) Snapshot() domain.PresenceSnapshot {
	online := t.registry.OnlineUsers()
	sort.Slice(online, func(i, j int) bool { return online[i] < online[j] })
	return domain.PresenceSnapshot{Online: online, At: time.Now().UTC()}
}

// Run blocks until shutdown, then disarms every pending timer so no
// broadcast escapes after the transport is gone.
func (t *PresenceTracker) Run(ctx context.Context) error {
	<-ctx.Done()

	t.mu.Lock()
	defer t.mu.Unlock()
	for userID, timer := range t.pending {
		timer.Stop()
		delete(t.pending, userID)
	}
	t.log.Debug("Context done, presence timers disarmed")
	return nil
}
