package domain

import "github.com/samber/lo"

// DeliveryClass determines which rooms a publish resolves against.
type DeliveryClass string

const (
	ClassDirect    DeliveryClass = "direct"
	ClassBroadcast DeliveryClass = "broadcast"
	ClassChat      DeliveryClass = "chat"
	ClassGlobal    DeliveryClass = "global"
)

// Target is a logical delivery destination: a single user, a role group,
// a chat, or every live connection. The router resolves it against the
// registry at call time; resolution never fails, an empty result just
// means nobody is currently listening.
type Target struct {
	class DeliveryClass
	rooms []Room
}

func ToUser(id UserID) Target {
	return Target{class: ClassDirect, rooms: []Room{UserRoom(id)}}
}

func ToRoles(roles ...Role) Target {
	return Target{
		class: ClassBroadcast,
		rooms: lo.Map(roles, func(r Role, _ int) Room { return RoleRoom(r) }),
	}
}

func ToChat(chatID string) Target {
	return Target{class: ClassChat, rooms: []Room{ChatRoom(chatID)}}
}

// ToEveryone resolves to all live connections regardless of rooms.
// Used for the connected-users / presence broadcast.
func ToEveryone() Target {
	return Target{class: ClassGlobal}
}

func (t Target) Class() DeliveryClass { return t.class }

func (t Target) Rooms() []Room { return t.rooms }
