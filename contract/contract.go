//go:generate go run go.uber.org/mock/mockgen -source=contract.go -destination=../mocks/mock_contract.go -package=mocks
package contract

import (
	"context"
	"reflect"

	"github.com/google/uuid"

	"realtime-lab/domain"
)

type ISupervisor interface {
	Add(worker ...Worker) ISupervisor
	Run(ctx context.Context)
	Start(ctx context.Context, worker Worker)
	Stop()
}

type WorkerName string

// Worker doesn't protect itself
// Can be silly, focused
type Worker interface {
	Run(ctx context.Context) error
}

// GetWorkerName uses reflection to retrieve the type name of the worker.
// This is used for logging and supervision purposes during worker initialization
// or lifecycle events, avoiding the need for manual naming in the Worker interface.
func GetWorkerName(w Worker) string {
	if w == nil {
		return "NilWorker"
	}
	t := reflect.TypeOf(w)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.Name()
}

// Transport abstracts the live-connection send primitive. Emit performs
// a single non-blocking enqueue; a full buffer or a vanished connection
// is an error for that connection only.
type Transport interface {
	Emit(ctx context.Context, connID domain.ConnectionID, eventName string, payload any) error
}

// IRegistry is the source of truth for which connections are live and
// which rooms they joined. All mutations are serialized internally;
// reads observe consistent snapshots.
type IRegistry interface {
	Add(userID domain.UserID, roles []domain.Role, connID domain.ConnectionID) (domain.Connection, error)
	Remove(connID domain.ConnectionID)
	JoinRoom(connID domain.ConnectionID, room domain.Room) error
	LeaveRoom(connID domain.ConnectionID, room domain.Room) error
	MembersOf(room domain.Room) []domain.ConnectionID
	Connections() []domain.ConnectionID
	IsOnline(userID domain.UserID) bool
	OnlineUsers() []domain.UserID
}

// IRouter resolves a logical target to the concrete connection set.
// Pure function over registry state at call time.
type IRouter interface {
	Resolve(target domain.Target) []domain.ConnectionID
}

// IDispatcher fans an event out to every connection the target resolves
// to. Returns the count of connections actually reached. One attempt
// per connection, no retries.
type IDispatcher interface {
	Publish(ctx context.Context, target domain.Target, eventName string, payload any) (int, error)
}

// ILedger tracks per-(user, scope) unread counters. Increment and Reset
// on the same key are linearizable.
type ILedger interface {
	Increment(userID domain.UserID, scope domain.Scope, by int) error
	Reset(userID domain.UserID, scope domain.Scope) (int, error)
	Get(userID domain.UserID, scope domain.Scope) int
	TotalFor(userID domain.UserID) int
	SummaryFor(userID domain.UserID) domain.UnreadSummary
}

// IPresence aggregates registry membership changes into the online view.
type IPresence interface {
	OnConnectionChange(userID domain.UserID)
	Snapshot() domain.PresenceSnapshot
}

type INotificationRepository interface {
	Store(n domain.Notification) error
	List(userID domain.UserID) ([]domain.Notification, error)
	MarkRead(userID domain.UserID, id uuid.UUID) (int, error)
	MarkAllRead(userID domain.UserID) (int, error)
}

type IMembershipRepository interface {
	AddMember(chatID string, userID domain.UserID) error
	RemoveMember(chatID string, userID domain.UserID) error
	Members(chatID string) ([]domain.UserID, error)
}

// IUserDirectory answers "which users carry this role", used by the
// admin-broadcast notification policy. Backed by the external store.
type IUserDirectory interface {
	UsersWithRoles(roles ...domain.Role) ([]domain.User, error)
}

// IUnreadSnapshotRepository persists periodic snapshots of the ledger so
// a restarted process starts from the last known counters instead of
// zero. The snapshot is an optimization, not the source of truth.
type IUnreadSnapshotRepository interface {
	SaveAll(counters map[domain.UserID]map[string]domain.UnreadCounter) error
	LoadAll() (map[domain.UserID]map[string]domain.UnreadCounter, error)
}
