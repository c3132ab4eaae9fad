//go:generate go run go.uber.org/mock/mockgen -source=notification_service.go -destination=../mocks/mock_notification_service.go -package=mocks
package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"realtime-lab/contract"
	"realtime-lab/domain"
	"realtime-lab/domain/event"
	"realtime-lab/errors"
)

// Historical type-to-target policy carried over from the previous
// implementation for caller compatibility. The core itself is
// target-agnostic: this mapping lives here, at the call site.
var (
	adminNotifiedTypes = map[domain.NotificationType]bool{
		domain.IssueCreation:     true,
		domain.IssueApproved:     true,
		domain.IssueRejected:     true,
		domain.IssueStatusChange: true,
	}
	directNotifiedTypes = map[domain.NotificationType]bool{
		domain.IssueAssignment: true,
		domain.IssueMention:    true,
		domain.IssueComment:    true,
		domain.RoleChange:      true,
	}
)

type CreateNotificationCommand struct {
	Type     domain.NotificationType
	UserID   domain.UserID
	SenderID domain.UserID
	IssueID  *int64
	Title    string
	Message  string
}

type INotificationService interface {
	Create(ctx context.Context, cmd CreateNotificationCommand) ([]domain.Notification, error)
	List(userID domain.UserID) ([]domain.Notification, error)
	MarkRead(userID domain.UserID, id uuid.UUID) (bool, error)
	MarkAllRead(ctx context.Context, userID domain.UserID) (int, error)
}

type NotificationService struct {
	log        *slog.Logger
	repository contract.INotificationRepository
	directory  contract.IUserDirectory
	ledger     contract.ILedger
	dispatcher contract.IDispatcher
}

func NewNotificationService(log *slog.Logger,
	repository contract.INotificationRepository,
	directory contract.IUserDirectory,
	ledger contract.ILedger,
	dispatcher contract.IDispatcher) *NotificationService {
	return &NotificationService{
		log:        log,
		repository: repository,
		directory:  directory,
		ledger:     ledger,
		dispatcher: dispatcher,
	}
}

// Create stores one notification per recipient, bumps each recipient's
// unread counter, then pushes the live event. The order matters: the
// record is durable before any publish, so a missed live event costs
// immediacy, never data. Offline recipients are reached on their next
// fetch; the core never replays missed events.
func (s *NotificationService) Create(ctx context.Context, cmd CreateNotificationCommand) ([]domain.Notification, error) {
	recipients, err := s.resolveRecipients(cmd)
	if err != nil {
		return nil, err
	}

	notifications := make([]domain.Notification, 0, len(recipients))
	for _, userID := range recipients {
		n := domain.Notification{
			ID:        uuid.New(),
			UserID:    userID,
			SenderID:  cmd.SenderID,
			IssueID:   cmd.IssueID,
			Title:     cmd.Title,
			Message:   cmd.Message,
			Type:      cmd.Type,
			CreatedAt: time.Now().UTC(),
		}
		if err := s.repository.Store(n); err != nil {
			return notifications, fmt.Errorf("storing notification for %s: %w", userID, err)
		}
		if err := s.ledger.Increment(userID, domain.NotificationScope(), 1); err != nil {
			return notifications, err
		}

		evt := event.NotificationCreated{Notification: n}
		if _, err := s.dispatcher.Publish(ctx, evt.Target(), evt.EventName(), evt); err != nil {
			// The record is already durable; the recipient sees it on
			// the next fetch.
			s.log.Warn("Live notification delivery failed", "user", userID, "error", err)
		}
		notifications = append(notifications, n)
	}
	return notifications, nil
}

// resolveRecipients applies the type policy: direct types go to the
// addressed user, admin types fan out to every admin and developer. A
// type in neither list with no addressed user has nowhere to go.
func (s *NotificationService) resolveRecipients(cmd CreateNotificationCommand) ([]domain.UserID, error) {
	if directNotifiedTypes[cmd.Type] && cmd.UserID != "" {
		return []domain.UserID{cmd.UserID}, nil
	}
	if adminNotifiedTypes[cmd.Type] {
		users, err := s.directory.UsersWithRoles(domain.RoleAdmin, domain.RoleDeveloper)
		if err != nil {
			return nil, fmt.Errorf("resolving admin recipients: %w", err)
		}
		recipients := make([]domain.UserID, 0, len(users))
		for _, user := range users {
			recipients = append(recipients, user.ID)
		}
		return recipients, nil
	}
	return nil, fmt.Errorf("%w: %q", errors.ErrNoNotificationTarget, cmd.Type)
}

func (s *NotificationService) List(userID domain.UserID) ([]domain.Notification, error) {
	return s.repository.List(userID)
}

// MarkRead flips one record; an unknown or foreign id flips nothing and
// reports false without raising.
func (s *NotificationService) MarkRead(userID domain.UserID, id uuid.UUID) (bool, error) {
	changed, err := s.repository.MarkRead(userID, id)
	if err != nil {
		return false, err
	}
	return changed > 0, nil
}

// MarkAllRead flips every unread record, resets the notifications
// counter, and tells the user's other connections that the badge
// changed. A reset that was already at zero emits nothing.
func (s *NotificationService) MarkAllRead(ctx context.Context, userID domain.UserID) (int, error) {
	changed, err := s.repository.MarkAllRead(userID)
	if err != nil {
		return 0, err
	}

	previous, err := s.ledger.Reset(userID, domain.NotificationScope())
	if err != nil {
		return changed, err
	}
	if previous > 0 {
		evt := event.UnreadChanged{UserID: userID, Scope: domain.NotificationScope().Key(), Count: 0}
		if _, err := s.dispatcher.Publish(ctx, evt.Target(), evt.EventName(), evt); err != nil {
			s.log.Warn("Unread badge update delivery failed", "user", userID, "error", err)
		}
	}
	return changed, nil
}
