// Package ledger tracks per-(user, scope) unread counters for the
// realtime layer. Counters live in memory for the process lifetime;
// periodic snapshots make restarts start warm, the durable records in
// the store remain the source of truth.
package ledger

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"realtime-lab/domain"
	"realtime-lab/errors"
)

type key struct {
	user  domain.UserID
	scope string
}

// Ledger serializes every mutation of a counter behind one mutex, which
// makes increment and reset on the same key linearizable: two concurrent
// increments are both reflected, and a reset racing an increment lands
// on either 0 or the increment value, never anything corrupted.
type Ledger struct {
	mu       sync.Mutex
	log      *slog.Logger
	counters map[key]*domain.UnreadCounter
}

func NewLedger(log *slog.Logger) *Ledger {
	return &Ledger{
		log:      log,
		counters: make(map[key]*domain.UnreadCounter),
	}
}

// Increment atomically adds to the counter, creating it at the given
// value if absent.
func (l *Ledger) Increment(userID domain.UserID, scope domain.Scope, by int) error {
	if err := validate(userID, scope); err != nil {
		return err
	}
	if by <= 0 {
		return fmt.Errorf("%w: increment by %d", errors.ErrInvalidScope, by)
	}

	k := key{user: userID, scope: scope.Key()}
	l.mu.Lock()
	defer l.mu.Unlock()

	counter, ok := l.counters[k]
	if !ok {
		counter = &domain.UnreadCounter{}
		l.counters[k] = counter
	}
	counter.Count += by
	return nil
}

// Reset atomically zeroes the counter and stamps the last-read time.
// It returns the pre-reset value so callers can skip no-op emissions.
func (l *Ledger) Reset(userID domain.UserID, scope domain.Scope) (int, error) {
	if err := validate(userID, scope); err != nil {
		return 0, err
	}

	k := key{user: userID, scope: scope.Key()}
	l.mu.Lock()
	defer l.mu.Unlock()

	counter, ok := l.counters[k]
	if !ok {
		counter = &domain.UnreadCounter{}
		l.counters[k] = counter
	}
	previous := counter.Count
	counter.Count = 0
	counter.LastRead = time.Now().UTC()
	return previous, nil
}

func (l *Ledger) Get(userID domain.UserID, scope domain.Scope) int {
	k := key{user: userID, scope: scope.Key()}
	l.mu.Lock()
	defer l.mu.Unlock()

	if counter, ok := l.counters[k]; ok {
		return counter.Count
	}
	return 0
}

// TotalFor sums across all scopes for the user, for the global badge.
func (l *Ledger) TotalFor(userID domain.UserID) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	total := 0
	for k, counter := range l.counters {
		if k.user == userID {
			total += counter.Count
		}
	}
	return total
}

// SummaryFor builds the badge view: total, notifications bucket, and
// per-chat counts sorted by chat id for stable output.
func (l *Ledger) SummaryFor(userID domain.UserID) domain.UnreadSummary {
	l.mu.Lock()
	defer l.mu.Unlock()

	summary := domain.UnreadSummary{}
	notifKey := domain.NotificationScope().Key()
	for k, counter := range l.counters {
		if k.user != userID || counter.Count == 0 {
			continue
		}
		summary.Total += counter.Count
		if k.scope == notifKey {
			summary.Notifications = counter.Count
			continue
		}
		summary.Chats = append(summary.Chats, domain.ChatUnread{
			ChatID: k.scope[len("chat:"):],
			Count:  counter.Count,
		})
	}
	sort.Slice(summary.Chats, func(i, j int) bool {
		return summary.Chats[i].ChatID < summary.Chats[j].ChatID
	})
	return summary
}

// Snapshot copies the current counters, grouped by user, for the
// snapshot worker. Zeroed counters are kept so their LastRead survives.
func (l *Ledger) Snapshot() map[domain.UserID]map[string]domain.UnreadCounter {
	l.mu.Lock()
	defer l.mu.Unlock()

	result := make(map[domain.UserID]map[string]domain.UnreadCounter)
	for k, counter := range l.counters {
		if result[k.user] == nil {
			result[k.user] = make(map[string]domain.UnreadCounter)
		}
		result[k.user][k.scope] = *counter
	}
	return result
}

// Rehydrate loads counters from a snapshot. Meant for startup, before
// any traffic; existing keys are overwritten.
func (l *Ledger) Rehydrate(counters map[domain.UserID]map[string]domain.UnreadCounter) {
	l.mu.Lock()
	defer l.mu.Unlock()

	loaded := 0
	for user, scopes := range counters {
		for scope, counter := range scopes {
			c := counter
			l.counters[key{user: user, scope: scope}] = &c
			loaded++
		}
	}
	l.log.Info("Ledger rehydrated from snapshot", "counters", loaded)
}

func validate(userID domain.UserID, scope domain.Scope) error {
	if userID == "" {
		return fmt.Errorf("%w: empty user id", errors.ErrInvalidScope)
	}
	if strings.Contains(string(userID), ":") {
		// The colon is the key separator in storage and summary maps.
		return fmt.Errorf("%w: user id %q", errors.ErrInvalidScope, userID)
	}
	if !scope.Validate() {
		return fmt.Errorf("%w: %q", errors.ErrInvalidScope, scope.Key())
	}
	return nil
}
