// Package runtime handles connection tracking, routing, and wiring of
// the realtime core. It orchestrates the system without containing
// business logic or domain rules.
package runtime

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"realtime-lab/domain"
	"realtime-lab/errors"
)

// connState couples a connection with the rooms it joined. Owned by the
// registry; never leaves the lock.
type connState struct {
	conn  domain.Connection
	rooms map[string]domain.Room
}

// Registry maps authenticated identities to their live connections and
// room memberships. Every mutation runs under the write lock, so each
// operation is atomic; cross-operation sequences are not (a connection
// may vanish between a lookup and a later publish, callers skip it).
type Registry struct {
	mu     sync.RWMutex
	log    *slog.Logger
	conns  map[domain.ConnectionID]*connState
	rooms  map[string]map[domain.ConnectionID]struct{}
	byUser map[domain.UserID]map[domain.ConnectionID]struct{}

	// onChange is invoked after every add/remove affecting a user,
	// outside the lock. Wired to the presence tracker.
	onChange func(domain.UserID)
}

func NewRegistry(log *slog.Logger) *Registry {
	return &Registry{
		log:    log,
		conns:  make(map[domain.ConnectionID]*connState),
		rooms:  make(map[string]map[domain.ConnectionID]struct{}),
		byUser: make(map[domain.UserID]map[domain.ConnectionID]struct{}),
	}
}

// OnConnectionChange registers the membership-change callback. Must be
// called before the first Add; not safe to swap while connections churn.
func (r *Registry) OnConnectionChange(fn func(domain.UserID)) {
	r.onChange = fn
}

// Add registers a new live session and auto-joins its personal room plus
// one role room per carried role. Fails only if the id is reused while
// still live, which the transport layer's unique ids should prevent.
func (r *Registry) Add(userID domain.UserID, roles []domain.Role, connID domain.ConnectionID) (domain.Connection, error) {
	r.mu.Lock()
	if _, ok := r.conns[connID]; ok {
		r.mu.Unlock()
		return domain.Connection{}, fmt.Errorf("%w: %s", errors.ErrDuplicateConnection, connID)
	}

	conn := domain.Connection{
		ID:        connID,
		UserID:    userID,
		Roles:     roles,
		CreatedAt: time.Now().UTC(),
	}
	state := &connState{conn: conn, rooms: make(map[string]domain.Room)}
	r.conns[connID] = state

	if r.byUser[userID] == nil {
		r.byUser[userID] = make(map[domain.ConnectionID]struct{})
	}
	r.byUser[userID][connID] = struct{}{}

	r.joinLocked(state, domain.UserRoom(userID))
	for _, role := range roles {
		r.joinLocked(state, domain.RoleRoom(role))
	}
	r.mu.Unlock()

	r.log.Debug("Connection registered", "user", userID, "conn", connID, "roles", roles)
	r.notify(userID)
	return conn, nil
}

// Remove destroys the connection and all its memberships. Idempotent: a
// second remove for the same id is a no-op.
func (r *Registry) Remove(connID domain.ConnectionID) {
	r.mu.Lock()
	state, ok := r.conns[connID]
	if !ok {
		r.mu.Unlock()
		return
	}
	userID := state.conn.UserID

	for _, room := range state.rooms {
		r.leaveLocked(connID, room)
	}
	delete(r.conns, connID)

	if conns, ok := r.byUser[userID]; ok {
		delete(conns, connID)
		if len(conns) == 0 {
			delete(r.byUser, userID)
		}
	}
	r.mu.Unlock()

	r.log.Debug("Connection removed", "user", userID, "conn", connID)
	r.notify(userID)
}

// JoinRoom adds the connection to a room. Chat room membership is
// explicit and does not survive a reconnect.
func (r *Registry) JoinRoom(connID domain.ConnectionID, room domain.Room) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	state, ok := r.conns[connID]
	if !ok {
		return fmt.Errorf("%w: %s", errors.ErrUnknownConnection, connID)
	}
	r.joinLocked(state, room)
	return nil
}

// LeaveRoom removes the connection from a room. The user room is
// off-limits: a connection belongs to it for as long as it is
// registered, only Remove detaches it.
func (r *Registry) LeaveRoom(connID domain.ConnectionID, room domain.Room) error {
	if room.Kind() == domain.RoomUser {
		return fmt.Errorf("%w: %s", errors.ErrReservedRoom, room.Key())
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	state, ok := r.conns[connID]
	if !ok {
		return fmt.Errorf("%w: %s", errors.ErrUnknownConnection, connID)
	}
	delete(state.rooms, room.Key())
	r.leaveLocked(connID, room)
	return nil
}

// MembersOf returns the connection ids currently in the room. An empty
// result is a valid outcome, not an error.
func (r *Registry) MembersOf(room domain.Room) []domain.ConnectionID {
	r.mu.RLock()
	defer r.mu.RUnlock()

	members := r.rooms[room.Key()]
	if len(members) == 0 {
		return nil
	}
	result := make([]domain.ConnectionID, 0, len(members))
	for id := range members {
		result = append(result, id)
	}
	return result
}

// Connections returns every live connection id.
func (r *Registry) Connections() []domain.ConnectionID {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]domain.ConnectionID, 0, len(r.conns))
	for id := range r.conns {
		result = append(result, id)
	}
	return result
}

// IsOnline reports whether at least one live connection exists for the user.
func (r *Registry) IsOnline(userID domain.UserID) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byUser[userID]) > 0
}

func (r *Registry) OnlineUsers() []domain.UserID {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]domain.UserID, 0, len(r.byUser))
	for id := range r.byUser {
		result = append(result, id)
	}
	return result
}

func (r *Registry) joinLocked(state *connState, room domain.Room) {
	key := room.Key()
	state.rooms[key] = room
	if r.rooms[key] == nil {
		r.rooms[key] = make(map[domain.ConnectionID]struct{})
	}
	r.rooms[key][state.conn.ID] = struct{}{}
}

func (r *Registry) leaveLocked(connID domain.ConnectionID, room domain.Room) {
	key := room.Key()
	if members, ok := r.rooms[key]; ok {
		delete(members, connID)
		// If no one is left in the room, remove the room entry entirely
		if len(members) == 0 {
			delete(r.rooms, key)
		}
	}
}

func (r *Registry) notify(userID domain.UserID) {
	if r.onChange != nil {
		r.onChange(userID)
	}
}
