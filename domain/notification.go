package domain

import (
	"time"

	"github.com/google/uuid"
)

type NotificationType string

const (
	IssueCreation     NotificationType = "issue_creation"
	IssueApproved     NotificationType = "issue_approved"
	IssueRejected     NotificationType = "issue_rejected"
	IssueStatusChange NotificationType = "issue_status_change"
	IssueAssignment   NotificationType = "issue_assignment"
	IssueMention      NotificationType = "issue_mention"
	IssueComment      NotificationType = "comment"
	RoleChange        NotificationType = "role_change"
)

// Notification is a durable per-user notification record.
// The realtime layer only routes it; the repository owns durability.
type Notification struct {
	ID        uuid.UUID        `json:"id"`
	UserID    UserID           `json:"userId"`
	SenderID  UserID           `json:"senderId"`
	IssueID   *int64           `json:"issueId"`
	Title     string           `json:"title"`
	Message   string           `json:"message"`
	Type      NotificationType `json:"type"`
	Read      bool             `json:"read"`
	CreatedAt time.Time        `json:"createdAt"`
}
