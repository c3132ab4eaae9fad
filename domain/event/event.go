package event

import (
	"time"

	"realtime-lab/domain"
)

// DomainEvent is anything the core can emit to connected clients.
// EventName is the wire-level event name; Target tells the dispatcher
// which rooms the event resolves against.
type DomainEvent interface {
	EventName() string
	Target() domain.Target
}

type PresenceChanged struct {
	UserID domain.UserID `json:"userId"`
	Online bool          `json:"isOnline"`
	At     time.Time     `json:"at"`
}

func (e PresenceChanged) EventName() string { return "presence-changed" }

func (e PresenceChanged) Target() domain.Target { return domain.ToEveryone() }

type UnreadChanged struct {
	UserID domain.UserID `json:"userId"`
	Scope  string        `json:"scope"`
	Count  int           `json:"count"`
}

func (e UnreadChanged) EventName() string { return "unread-changed" }

func (e UnreadChanged) Target() domain.Target { return domain.ToUser(e.UserID) }

type NotificationCreated struct {
	Notification domain.Notification `json:"notification"`
}

func (e NotificationCreated) EventName() string { return "new-notification" }

func (e NotificationCreated) Target() domain.Target {
	return domain.ToUser(e.Notification.UserID)
}

type MessageSent struct {
	Message domain.ChatMessage `json:"message"`
	ChatID  string             `json:"chatId"`
}

func (e MessageSent) EventName() string { return "new-message" }

func (e MessageSent) Target() domain.Target { return domain.ToChat(e.ChatID) }
