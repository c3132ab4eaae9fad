package runtime

import (
	"log/slog"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"realtime-lab/domain"
	"realtime-lab/errors"
)

func TestRegistry_Add_AutoJoinsIdentityRooms(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry(slog.Default())
	connID := domain.ConnectionID(uuid.NewString())

	// Given a developer connecting
	conn, err := registry.Add("alice", []domain.Role{domain.RoleDeveloper}, connID)
	req.NoError(err)
	req.Equal(domain.UserID("alice"), conn.UserID)

	// Then the connection sits in its personal room and its role room
	req.Contains(registry.MembersOf(domain.UserRoom("alice")), connID)
	req.Contains(registry.MembersOf(domain.RoleRoom(domain.RoleDeveloper)), connID)
	req.Empty(registry.MembersOf(domain.RoleRoom(domain.RoleAdmin)))
	req.True(registry.IsOnline("alice"))
}

func TestRegistry_Add_DuplicateConnectionID(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry(slog.Default())
	connID := domain.ConnectionID(uuid.NewString())

	// Given a live connection
	_, err := registry.Add("alice", nil, connID)
	req.NoError(err)

	// When the same id is registered again
	_, err = registry.Add("bob", nil, connID)

	// Then the prior registration is untouched
	req.ErrorIs(err, errors.ErrDuplicateConnection)
	req.Contains(registry.MembersOf(domain.UserRoom("alice")), connID)
	req.False(registry.IsOnline("bob"))
}

func TestRegistry_Remove_CleansEveryMembership(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry(slog.Default())
	connID := domain.ConnectionID(uuid.NewString())

	_, err := registry.Add("alice", []domain.Role{domain.RoleAdmin}, connID)
	req.NoError(err)
	req.NoError(registry.JoinRoom(connID, domain.ChatRoom("support")))

	registry.Remove(connID)

	req.Empty(registry.MembersOf(domain.UserRoom("alice")))
	req.Empty(registry.MembersOf(domain.RoleRoom(domain.RoleAdmin)))
	req.Empty(registry.MembersOf(domain.ChatRoom("support")))
	req.False(registry.IsOnline("alice"))
	req.Empty(registry.Connections())

	// Removing twice is a no-op
	registry.Remove(connID)
}

func TestRegistry_JoinRoom_UnknownConnection(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry(slog.Default())

	err := registry.JoinRoom("ghost", domain.ChatRoom("support"))
	req.ErrorIs(err, errors.ErrUnknownConnection)

	err = registry.LeaveRoom("ghost", domain.ChatRoom("support"))
	req.ErrorIs(err, errors.ErrUnknownConnection)
}

func TestRegistry_LeaveRoom_UserRoomIsReserved(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry(slog.Default())
	connID := domain.ConnectionID(uuid.NewString())

	_, err := registry.Add("alice", nil, connID)
	req.NoError(err)

	// The user room carries the connection until Remove
	err = registry.LeaveRoom(connID, domain.UserRoom("alice"))
	req.ErrorIs(err, errors.ErrReservedRoom)
	req.Len(registry.MembersOf(domain.UserRoom("alice")), 1)
}

func TestRegistry_IsOnline_MultiDevice(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry(slog.Default())
	laptop := domain.ConnectionID(uuid.NewString())
	phone := domain.ConnectionID(uuid.NewString())

	// Given the same user on two devices
	_, err := registry.Add("alice", nil, laptop)
	req.NoError(err)
	_, err = registry.Add("alice", nil, phone)
	req.NoError(err)

	// When one device disconnects
	registry.Remove(laptop)

	// Then the user stays online until the last one goes
	req.True(registry.IsOnline("alice"))
	registry.Remove(phone)
	req.False(registry.IsOnline("alice"))
}

func TestRegistry_OnConnectionChange_FiredOutsideTheLock(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry(slog.Default())

	var mu sync.Mutex
	var seen []domain.UserID
	registry.OnConnectionChange(func(userID domain.UserID) {
		// Re-entering the registry here must not deadlock
		registry.IsOnline(userID)
		mu.Lock()
		seen = append(seen, userID)
		mu.Unlock()
	})

	connID := domain.ConnectionID(uuid.NewString())
	_, err := registry.Add("alice", nil, connID)
	req.NoError(err)
	registry.Remove(connID)

	mu.Lock()
	defer mu.Unlock()
	req.Equal([]domain.UserID{"alice", "alice"}, seen)
}

func TestRegistry_ConcurrentChurn(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry(slog.Default())
	registry.OnConnectionChange(func(domain.UserID) {})

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			connID := domain.ConnectionID(uuid.NewString())
			_, err := registry.Add("alice", []domain.Role{domain.RoleReporter}, connID)
			req.NoError(err)
			req.NoError(registry.JoinRoom(connID, domain.ChatRoom("load")))
			registry.Remove(connID)
		}()
	}
	wg.Wait()

	req.Empty(registry.Connections())
	req.Empty(registry.MembersOf(domain.ChatRoom("load")))
	req.False(registry.IsOnline("alice"))
}
