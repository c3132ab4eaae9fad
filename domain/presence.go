package domain

import "time"

// PresenceSnapshot is the ephemeral "who is online" view. It is
// recomputed from registry state, never persisted, and rebuilt from
// empty on process start.
type PresenceSnapshot struct {
	Online []UserID  `json:"online"`
	At     time.Time `json:"at"`
}
