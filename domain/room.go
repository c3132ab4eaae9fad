package domain

import "fmt"

type RoomKind int

const (
	RoomUser RoomKind = iota
	RoomRole
	RoomChat
)

// Room is a logical delivery scope grouping zero or more live connections.
// It carries no storage of its own: the registry derives membership from it.
// The tagged form replaces ad-hoc string keys so that a typo in a room name
// cannot silently route events nowhere.
type Room struct {
	kind RoomKind
	id   string
}

func UserRoom(id UserID) Room {
	return Room{kind: RoomUser, id: string(id)}
}

func RoleRoom(role Role) Room {
	return Room{kind: RoomRole, id: string(role)}
}

func ChatRoom(chatID string) Room {
	return Room{kind: RoomChat, id: chatID}
}

func (r Room) Kind() RoomKind { return r.kind }

// Key is the single formatting point for the wire-level room name.
func (r Room) Key() string {
	switch r.kind {
	case RoomUser:
		return "user:" + r.id
	case RoomRole:
		return "role:" + r.id
	case RoomChat:
		return "chat:" + r.id
	}
	return fmt.Sprintf("unknown:%s", r.id)
}
