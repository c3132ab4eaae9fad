package workers_test

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"realtime-lab/domain"
	"realtime-lab/domain/event"
	"realtime-lab/mocks"
	"realtime-lab/observability"
	"realtime-lab/runtime"
	"realtime-lab/runtime/workers"
)

const testDebounce = 50 * time.Millisecond

func newTrackedRegistry(t *testing.T, dispatcher *mocks.MockIDispatcher) (*runtime.Registry, *workers.PresenceTracker) {
	registry := runtime.NewRegistry(slog.Default())
	tracker := workers.NewPresenceTracker(slog.Default(), registry, dispatcher,
		observability.NewMetrics(), testDebounce)
	registry.OnConnectionChange(tracker.OnConnectionChange)
	return registry, tracker
}

func TestPresenceTracker_EmitsOnlineAfterDebounce(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	dispatcher := mocks.NewMockIDispatcher(ctrl)
	registry, _ := newTrackedRegistry(t, dispatcher)

	done := make(chan event.PresenceChanged, 1)
	dispatcher.EXPECT().
		Publish(gomock.Any(), gomock.Any(), "presence-changed", gomock.Any()).
		DoAndReturn(func(ctx context.Context, target domain.Target, name string, payload any) (int, error) {
			done <- payload.(event.PresenceChanged)
			return 1, nil
		}).Times(1)

	// When the user's first connection arrives
	_, err := registry.Add("alice", nil, domain.ConnectionID(uuid.NewString()))
	req.NoError(err)

	// Then exactly one online emission follows once the window elapsed
	select {
	case evt := <-done:
		req.Equal(domain.UserID("alice"), evt.UserID)
		req.True(evt.Online)
	case <-time.After(1 * time.Second):
		req.Fail("No presence emission within the deadline")
	}
}

func TestPresenceTracker_FlapInsideWindowIsSuppressed(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	dispatcher := mocks.NewMockIDispatcher(ctrl)
	registry, _ := newTrackedRegistry(t, dispatcher)

	// No Publish expectation: any emission fails the test.

	// When a page reload connects and disconnects inside the window
	connID := domain.ConnectionID(uuid.NewString())
	_, err := registry.Add("alice", nil, connID)
	req.NoError(err)
	registry.Remove(connID)

	// Then nothing is broadcast after the window elapsed
	time.Sleep(3 * testDebounce)
}

func TestPresenceTracker_ReconnectInsideWindowEmitsOnlineOnce(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	dispatcher := mocks.NewMockIDispatcher(ctrl)
	registry, _ := newTrackedRegistry(t, dispatcher)

	emissions := make(chan event.PresenceChanged, 4)
	dispatcher.EXPECT().
		Publish(gomock.Any(), gomock.Any(), "presence-changed", gomock.Any()).
		DoAndReturn(func(ctx context.Context, target domain.Target, name string, payload any) (int, error) {
			emissions <- payload.(event.PresenceChanged)
			return 1, nil
		}).Times(1)

	// When a page reload disconnects and reconnects inside the window
	first := domain.ConnectionID(uuid.NewString())
	_, err := registry.Add("alice", nil, first)
	req.NoError(err)
	registry.Remove(first)
	_, err = registry.Add("alice", nil, domain.ConnectionID(uuid.NewString()))
	req.NoError(err)

	// Then a single online emission follows, with no interim offline
	select {
	case evt := <-emissions:
		req.True(evt.Online)
	case <-time.After(1 * time.Second):
		req.Fail("No presence emission within the deadline")
	}
	time.Sleep(3 * testDebounce)
	req.Empty(emissions)
}

func TestPresenceTracker_DisconnectDuringFlushIsNotLost(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	registry := mocks.NewMockIRegistry(ctrl)
	dispatcher := mocks.NewMockIDispatcher(ctrl)
	tracker := workers.NewPresenceTracker(slog.Default(), registry, dispatcher,
		observability.NewMetrics(), testDebounce)

	flushEntered := make(chan struct{})
	release := make(chan struct{})
	gomock.InOrder(
		// First connection observed by the change callback.
		registry.EXPECT().IsOnline(domain.UserID("alice")).Return(true),
		// The flush read, held open so the disconnect can land meanwhile.
		registry.EXPECT().IsOnline(domain.UserID("alice")).DoAndReturn(func(domain.UserID) bool {
			close(flushEntered)
			<-release
			return true
		}),
		// The user is offline from here on.
		registry.EXPECT().IsOnline(domain.UserID("alice")).Return(false).Times(2),
	)

	emissions := make(chan event.PresenceChanged, 2)
	dispatcher.EXPECT().
		Publish(gomock.Any(), gomock.Any(), "presence-changed", gomock.Any()).
		DoAndReturn(func(ctx context.Context, target domain.Target, name string, payload any) (int, error) {
			emissions <- payload.(event.PresenceChanged)
			return 1, nil
		}).Times(2)

	// Given the first connection armed an online broadcast
	tracker.OnConnectionChange("alice")
	<-flushEntered

	// When the last disconnect lands while that broadcast is flushing
	disconnectSeen := make(chan struct{})
	go func() {
		tracker.OnConnectionChange("alice")
		close(disconnectSeen)
	}()
	close(release)

	// Then the offline flip is never lost: a corrective broadcast follows
	online := <-emissions
	req.True(online.Online)
	<-disconnectSeen
	select {
	case offline := <-emissions:
		req.False(offline.Online)
	case <-time.After(1 * time.Second):
		req.Fail("Offline flip was dropped")
	}
}

func TestPresenceTracker_SecondDeviceFlipsNothing(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	dispatcher := mocks.NewMockIDispatcher(ctrl)
	registry, _ := newTrackedRegistry(t, dispatcher)

	emissions := make(chan event.PresenceChanged, 4)
	dispatcher.EXPECT().
		Publish(gomock.Any(), gomock.Any(), "presence-changed", gomock.Any()).
		DoAndReturn(func(ctx context.Context, target domain.Target, name string, payload any) (int, error) {
			emissions <- payload.(event.PresenceChanged)
			return 1, nil
		}).Times(1)

	laptop := domain.ConnectionID(uuid.NewString())
	phone := domain.ConnectionID(uuid.NewString())

	// Given the first device already broadcast online
	_, err := registry.Add("alice", nil, laptop)
	req.NoError(err)
	req.Eventually(func() bool { return len(emissions) == 1 },
		1*time.Second, 10*time.Millisecond)

	// When a second device joins and leaves
	_, err = registry.Add("alice", nil, phone)
	req.NoError(err)
	registry.Remove(phone)

	// Then the boundary never moved, so nothing else is emitted
	time.Sleep(3 * testDebounce)
	req.Len(emissions, 1)
}

func TestPresenceTracker_OfflineAfterLastDisconnect(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	dispatcher := mocks.NewMockIDispatcher(ctrl)
	registry, _ := newTrackedRegistry(t, dispatcher)

	emissions := make(chan event.PresenceChanged, 4)
	dispatcher.EXPECT().
		Publish(gomock.Any(), gomock.Any(), "presence-changed", gomock.Any()).
		DoAndReturn(func(ctx context.Context, target domain.Target, name string, payload any) (int, error) {
			emissions <- payload.(event.PresenceChanged)
			return 1, nil
		}).Times(2)

	connID := domain.ConnectionID(uuid.NewString())
	_, err := registry.Add("alice", nil, connID)
	req.NoError(err)

	online := <-emissions
	req.True(online.Online)

	registry.Remove(connID)

	select {
	case offline := <-emissions:
		req.False(offline.Online)
	case <-time.After(1 * time.Second):
		req.Fail("No offline emission within the deadline")
	}
}

func TestPresenceTracker_Snapshot_SortedUsers(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	dispatcher := mocks.NewMockIDispatcher(ctrl)
	dispatcher.EXPECT().
		Publish(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return(1, nil).AnyTimes()
	registry, tracker := newTrackedRegistry(t, dispatcher)

	for _, user := range []domain.UserID{"zoe", "alice", "bob"} {
		_, err := registry.Add(user, nil, domain.ConnectionID(uuid.NewString()))
		req.NoError(err)
	}

	snapshot := tracker.Snapshot()
	req.Equal([]domain.UserID{"alice", "bob", "zoe"}, snapshot.Online)
}

func TestPresenceTracker_ShutdownDisarmsPendingTimers(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	dispatcher := mocks.NewMockIDispatcher(ctrl)
	registry, tracker := newTrackedRegistry(t, dispatcher)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		req.NoError(tracker.Run(ctx))
		close(done)
	}()

	// Given a flip waiting inside the debounce window
	_, err := registry.Add("alice", nil, domain.ConnectionID(uuid.NewString()))
	req.NoError(err)

	// When shutdown lands before the window elapsed
	cancel()
	select {
	case <-done:
	case <-time.After(1 * time.Second):
		req.Fail("Run did not return on cancellation")
	}

	// Then the armed timer never fires
	time.Sleep(3 * testDebounce)
}
