package domain

import (
	"strings"
	"time"
)

type ScopeKind int

const (
	ScopeNotifications ScopeKind = iota
	ScopeChat
)

// Scope is the granularity an unread counter is tracked at: a chat id,
// or the global notifications bucket. The zero value is the
// notifications bucket.
type Scope struct {
	kind   ScopeKind
	chatID string
}

func NotificationScope() Scope {
	return Scope{kind: ScopeNotifications}
}

func ChatScope(chatID string) Scope {
	return Scope{kind: ScopeChat, chatID: chatID}
}

func (s Scope) Kind() ScopeKind { return s.kind }

func (s Scope) ChatID() string { return s.chatID }

// Key is the storage and map key for the scope.
func (s Scope) Key() string {
	if s.kind == ScopeNotifications {
		return "notifications"
	}
	return "chat:" + s.chatID
}

// Validate rejects scopes that cannot form a well-defined counter key.
// The colon is reserved as the key separator in storage.
func (s Scope) Validate() bool {
	if s.kind == ScopeChat {
		return s.chatID != "" && !strings.Contains(s.chatID, ":")
	}
	return s.chatID == ""
}

// UnreadCounter is the value tracked per (user, scope) key.
// Count is monotonically non-decreasing between resets; a reset sets it
// to zero and stamps LastRead.
type UnreadCounter struct {
	Count    int       `json:"count"`
	LastRead time.Time `json:"lastRead"`
}

type ChatUnread struct {
	ChatID string `json:"chatId"`
	Count  int    `json:"unreadCount"`
}

// UnreadSummary is the global badge view: total across all scopes plus
// the per-chat breakdown.
type UnreadSummary struct {
	Total         int          `json:"totalUnread"`
	Notifications int          `json:"notifications"`
	Chats         []ChatUnread `json:"chatCounts"`
}
