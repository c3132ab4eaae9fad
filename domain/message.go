// This file defines chat messages as seen by the realtime layer.
// Messages are immutable once created.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// ChatMessage is the payload broadcast to a chat room on send.
type ChatMessage struct {
	ID        uuid.UUID `json:"id"`
	ChatID    string    `json:"chatId"`
	SenderID  UserID    `json:"senderId"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
}

// User is the identity record held by the user directory. The realtime
// layer trusts it as-is: verification happened upstream.
type User struct {
	ID    UserID `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Roles []Role `json:"roles"`
}
