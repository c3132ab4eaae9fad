// Package domain contains core concepts of the realtime layer.
// This file defines live connections and user identity.
// No transport, storage, or UI logic should be added here.
package domain

import (
	"time"
)

type UserID string

type ConnectionID string

type Role string

const (
	RoleAdmin     Role = "admin"
	RoleDeveloper Role = "developer"
	RoleReporter  Role = "reporter"
)

// Connection represents one authenticated live transport session.
// A user may hold several connections at once (multi-device).
// Connections are owned exclusively by the registry: created on
// successful authentication, destroyed on disconnect.
type Connection struct {
	ID        ConnectionID
	UserID    UserID
	Roles     []Role
	CreatedAt time.Time
}
