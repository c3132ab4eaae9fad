package services_test

import (
	"context"
	"fmt"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"realtime-lab/domain"
	"realtime-lab/domain/event"
	"realtime-lab/errors"
	"realtime-lab/mocks"
	"realtime-lab/services"
)

type chatServiceMocks struct {
	registry   *mocks.MockIRegistry
	membership *mocks.MockIMembershipRepository
	ledger     *mocks.MockILedger
	dispatcher *mocks.MockIDispatcher
}

func newChatService(ctrl *gomock.Controller) (*services.ChatService, chatServiceMocks) {
	m := chatServiceMocks{
		registry:   mocks.NewMockIRegistry(ctrl),
		membership: mocks.NewMockIMembershipRepository(ctrl),
		ledger:     mocks.NewMockILedger(ctrl),
		dispatcher: mocks.NewMockIDispatcher(ctrl),
	}
	service := services.NewChatService(slog.Default(), m.registry, m.membership, m.ledger, m.dispatcher)
	return service, m
}

func TestChatService_SendMessage_CountsEveryMemberButSender(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	service, m := newChatService(ctrl)

	// Given a chat with three members, one of them offline
	m.membership.EXPECT().Members("support").
		Return([]domain.UserID{"alice", "bob", "clara"}, nil).Times(1)
	m.ledger.EXPECT().Increment(domain.UserID("bob"), domain.ChatScope("support"), 1).
		Return(nil).Times(1)
	m.ledger.EXPECT().Increment(domain.UserID("clara"), domain.ChatScope("support"), 1).
		Return(nil).Times(1)
	m.dispatcher.EXPECT().
		Publish(gomock.Any(), gomock.Any(), "new-message", gomock.Any()).
		DoAndReturn(func(ctx context.Context, target domain.Target, name string, payload any) (int, error) {
			evt := payload.(event.MessageSent)
			req.Equal("support", evt.ChatID)
			req.Equal(domain.UserID("alice"), evt.Message.SenderID)
			return 2, nil
		}).Times(1)

	// When alice sends a message
	msg, err := service.SendMessage(context.Background(), "alice", "support", "hello")

	// Then counters moved for everybody but her
	req.NoError(err)
	req.Equal("hello", msg.Content)
	req.NotEqual(uuid.Nil, msg.ID)
}

func TestChatService_SendMessage_SenderMustBeMember(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	service, m := newChatService(ctrl)

	m.membership.EXPECT().Members("support").
		Return([]domain.UserID{"bob"}, nil).Times(1)

	_, err := service.SendMessage(context.Background(), "intruder", "support", "hello")
	req.ErrorContains(err, "not a member")
}

func TestChatService_SendMessage_PublishFailureIsNotFatal(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	service, m := newChatService(ctrl)

	m.membership.EXPECT().Members("support").
		Return([]domain.UserID{"alice", "bob"}, nil).Times(1)
	m.ledger.EXPECT().Increment(domain.UserID("bob"), domain.ChatScope("support"), 1).
		Return(nil).Times(1)
	m.dispatcher.EXPECT().
		Publish(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return(0, fmt.Errorf("%w: everyone gone", errors.ErrDispatchFailed)).Times(1)

	// Counters are already moved; the message is still considered sent
	msg, err := service.SendMessage(context.Background(), "alice", "support", "hello")
	req.NoError(err)
	req.Equal("hello", msg.Content)
}

func TestChatService_JoinChat_DurableThenLive(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	service, m := newChatService(ctrl)

	connID := domain.ConnectionID(uuid.NewString())
	gomock.InOrder(
		m.membership.EXPECT().AddMember("support", domain.UserID("alice")).Return(nil),
		m.registry.EXPECT().JoinRoom(connID, domain.ChatRoom("support")).Return(nil),
	)

	req.NoError(service.JoinChat(connID, "alice", "support"))
}

func TestChatService_LeaveChat(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	service, m := newChatService(ctrl)

	connID := domain.ConnectionID(uuid.NewString())
	gomock.InOrder(
		m.membership.EXPECT().RemoveMember("support", domain.UserID("alice")).Return(nil),
		m.registry.EXPECT().LeaveRoom(connID, domain.ChatRoom("support")).Return(nil),
	)

	req.NoError(service.LeaveChat(connID, "alice", "support"))
}

func TestChatService_MarkChatRead_EmitsOnlyWhenSomethingWasUnread(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	service, m := newChatService(ctrl)

	// First read: three unread, the badge event goes out
	m.ledger.EXPECT().Reset(domain.UserID("alice"), domain.ChatScope("support")).Return(3, nil)
	m.dispatcher.EXPECT().
		Publish(gomock.Any(), gomock.Any(), "unread-changed", gomock.Any()).
		Return(1, nil).Times(1)

	previous, err := service.MarkChatRead(context.Background(), "alice", "support")
	req.NoError(err)
	req.Equal(3, previous)

	// Second read: already zero, nothing is emitted
	m.ledger.EXPECT().Reset(domain.UserID("alice"), domain.ChatScope("support")).Return(0, nil)

	previous, err = service.MarkChatRead(context.Background(), "alice", "support")
	req.NoError(err)
	req.Zero(previous)
}

func TestChatService_UnreadSummary(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	service, m := newChatService(ctrl)

	m.ledger.EXPECT().SummaryFor(domain.UserID("alice")).
		Return(domain.UnreadSummary{Total: 5, Notifications: 2,
			Chats: []domain.ChatUnread{{ChatID: "support", Count: 3}}})

	summary := service.UnreadSummary("alice")
	req.Equal(5, summary.Total)
	req.Equal(2, summary.Notifications)
	req.Len(summary.Chats, 1)
}
