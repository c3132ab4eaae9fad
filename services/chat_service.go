//go:generate go run go.uber.org/mock/mockgen -source=chat_service.go -destination=../mocks/mock_chat_service.go -package=mocks
package services

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/google/uuid"

	"realtime-lab/contract"
	"realtime-lab/domain"
	"realtime-lab/domain/event"
)

type IChatService interface {
	SendMessage(ctx context.Context, senderID domain.UserID, chatID, content string) (domain.ChatMessage, error)
	JoinChat(connID domain.ConnectionID, userID domain.UserID, chatID string) error
	LeaveChat(connID domain.ConnectionID, userID domain.UserID, chatID string) error
	MarkChatRead(ctx context.Context, userID domain.UserID, chatID string) (int, error)
	UnreadSummary(userID domain.UserID) domain.UnreadSummary
}

type ChatService struct {
	log        *slog.Logger
	registry   contract.IRegistry
	membership contract.IMembershipRepository
	ledger     contract.ILedger
	dispatcher contract.IDispatcher
}

func NewChatService(log *slog.Logger, registry contract.IRegistry,
	membership contract.IMembershipRepository, ledger contract.ILedger,
	dispatcher contract.IDispatcher) *ChatService {
	return &ChatService{
		log:        log,
		registry:   registry,
		membership: membership,
		ledger:     ledger,
		dispatcher: dispatcher,
	}
}

// SendMessage bumps the unread counter of every chat member except the
// sender, online or not, then broadcasts to the chat room. Counting
// before publishing keeps the badge correct even when the live push
// reaches nobody.
func (s *ChatService) SendMessage(ctx context.Context, senderID domain.UserID, chatID, content string) (domain.ChatMessage, error) {
	members, err := s.membership.Members(chatID)
	if err != nil {
		return domain.ChatMessage{}, fmt.Errorf("resolving members of chat %s: %w", chatID, err)
	}
	if !slices.Contains(members, senderID) {
		return domain.ChatMessage{}, fmt.Errorf("sender %s is not a member of chat %s", senderID, chatID)
	}

	msg := domain.ChatMessage{
		ID:        uuid.New(),
		ChatID:    chatID,
		SenderID:  senderID,
		Content:   content,
		CreatedAt: time.Now().UTC(),
	}

	for _, member := range members {
		if member == senderID {
			continue
		}
		if err := s.ledger.Increment(member, domain.ChatScope(chatID), 1); err != nil {
			return domain.ChatMessage{}, err
		}
	}

	evt := event.MessageSent{Message: msg, ChatID: chatID}
	if _, err := s.dispatcher.Publish(ctx, evt.Target(), evt.EventName(), evt); err != nil {
		// Counters are already updated; recipients catch up on fetch.
		s.log.Warn("Live message delivery failed", "chat", chatID, "error", err)
	}
	return msg, nil
}

// JoinChat records durable membership and subscribes the live
// connection to the chat room. Room subscriptions die with the
// connection, so clients re-join after every reconnect.
func (s *ChatService) JoinChat(connID domain.ConnectionID, userID domain.UserID, chatID string) error {
	if err := s.membership.AddMember(chatID, userID); err != nil {
		return err
	}
	return s.registry.JoinRoom(connID, domain.ChatRoom(chatID))
}

func (s *ChatService) LeaveChat(connID domain.ConnectionID, userID domain.UserID, chatID string) error {
	if err := s.membership.RemoveMember(chatID, userID); err != nil {
		return err
	}
	return s.registry.LeaveRoom(connID, domain.ChatRoom(chatID))
}

// MarkChatRead resets the (user, chat) counter and, when the pre-reset
// count was non-zero, notifies the user's own connections so every
// device agrees on the badge. Returns the pre-reset count.
func (s *ChatService) MarkChatRead(ctx context.Context, userID domain.UserID, chatID string) (int, error) {
	previous, err := s.ledger.Reset(userID, domain.ChatScope(chatID))
	if err != nil {
		return 0, err
	}
	if previous > 0 {
		evt := event.UnreadChanged{UserID: userID, Scope: domain.ChatScope(chatID).Key(), Count: 0}
		if _, err := s.dispatcher.Publish(ctx, evt.Target(), evt.EventName(), evt); err != nil {
			s.log.Warn("Unread badge update delivery failed", "user", userID, "error", err)
		}
	}
	return previous, nil
}

func (s *ChatService) UnreadSummary(userID domain.UserID) domain.UnreadSummary {
	return s.ledger.SummaryFor(userID)
}
