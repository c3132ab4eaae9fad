package ledger

import (
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"realtime-lab/domain"
	"realtime-lab/errors"
)

func TestLedger_IncrementAndGet(t *testing.T) {
	req := require.New(t)
	l := NewLedger(slog.Default())

	req.NoError(l.Increment("alice", domain.NotificationScope(), 1))
	req.NoError(l.Increment("alice", domain.NotificationScope(), 2))
	req.NoError(l.Increment("alice", domain.ChatScope("support"), 1))

	req.Equal(3, l.Get("alice", domain.NotificationScope()))
	req.Equal(1, l.Get("alice", domain.ChatScope("support")))
	req.Equal(4, l.TotalFor("alice"))
	req.Equal(0, l.Get("bob", domain.NotificationScope()))
}

func TestLedger_Increment_RejectsInvalidInput(t *testing.T) {
	req := require.New(t)
	l := NewLedger(slog.Default())

	req.ErrorIs(l.Increment("", domain.NotificationScope(), 1), errors.ErrInvalidScope)
	req.ErrorIs(l.Increment("a:b", domain.NotificationScope(), 1), errors.ErrInvalidScope)
	req.ErrorIs(l.Increment("alice", domain.ChatScope(""), 1), errors.ErrInvalidScope)
	req.ErrorIs(l.Increment("alice", domain.ChatScope("a:b"), 1), errors.ErrInvalidScope)
	req.ErrorIs(l.Increment("alice", domain.NotificationScope(), 0), errors.ErrInvalidScope)
	req.ErrorIs(l.Increment("alice", domain.NotificationScope(), -3), errors.ErrInvalidScope)

	// Nothing leaked into the counters
	req.Equal(0, l.TotalFor("alice"))
}

func TestLedger_Reset_ReturnsPreviousValue(t *testing.T) {
	req := require.New(t)
	l := NewLedger(slog.Default())

	req.NoError(l.Increment("alice", domain.ChatScope("support"), 5))

	previous, err := l.Reset("alice", domain.ChatScope("support"))
	req.NoError(err)
	req.Equal(5, previous)
	req.Equal(0, l.Get("alice", domain.ChatScope("support")))

	// A second reset reports zero, letting callers skip the emission
	previous, err = l.Reset("alice", domain.ChatScope("support"))
	req.NoError(err)
	req.Equal(0, previous)
}

func TestLedger_SummaryFor_SkipsZeroCounters(t *testing.T) {
	req := require.New(t)
	l := NewLedger(slog.Default())

	req.NoError(l.Increment("alice", domain.NotificationScope(), 2))
	req.NoError(l.Increment("alice", domain.ChatScope("zeta"), 1))
	req.NoError(l.Increment("alice", domain.ChatScope("alpha"), 4))
	req.NoError(l.Increment("alice", domain.ChatScope("emptied"), 1))
	_, err := l.Reset("alice", domain.ChatScope("emptied"))
	req.NoError(err)
	req.NoError(l.Increment("bob", domain.NotificationScope(), 9))

	summary := l.SummaryFor("alice")
	req.Equal(7, summary.Total)
	req.Equal(2, summary.Notifications)
	req.Equal([]domain.ChatUnread{
		{ChatID: "alpha", Count: 4},
		{ChatID: "zeta", Count: 1},
	}, summary.Chats)
}

func TestLedger_ConcurrentIncrements_NoneLost(t *testing.T) {
	req := require.New(t)
	l := NewLedger(slog.Default())

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			req.NoError(l.Increment("alice", domain.NotificationScope(), 1))
		}()
	}
	wg.Wait()

	req.Equal(100, l.Get("alice", domain.NotificationScope()))
}

func TestLedger_SnapshotAndRehydrate(t *testing.T) {
	req := require.New(t)
	l := NewLedger(slog.Default())

	req.NoError(l.Increment("alice", domain.NotificationScope(), 3))
	req.NoError(l.Increment("alice", domain.ChatScope("support"), 1))

	snapshot := l.Snapshot()

	// Mutating the ledger afterwards must not alter the snapshot copy
	req.NoError(l.Increment("alice", domain.NotificationScope(), 10))
	req.Equal(3, snapshot["alice"]["notifications"].Count)

	restarted := NewLedger(slog.Default())
	restarted.Rehydrate(snapshot)
	req.Equal(3, restarted.Get("alice", domain.NotificationScope()))
	req.Equal(1, restarted.Get("alice", domain.ChatScope("support")))
	req.Equal(4, restarted.TotalFor("alice"))
}
