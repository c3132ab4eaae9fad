package ws

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"realtime-lab/domain"
	apperrors "realtime-lab/errors"
	"realtime-lab/services"
)

var validate = validator.New()

// clientFrame is one inbound request. Action-specific required fields
// are checked per action; the validator catches structural abuse early.
type clientFrame struct {
	ID             string `json:"id,omitempty"`
	Action         string `json:"action" validate:"required,oneof=join-chat leave-chat send-message mark-chat-read get-notifications send-notification mark-as-read mark-all-read get-unread-count get-connected-users"`
	ChatID         string `json:"chatId,omitempty" validate:"max=128"`
	Content        string `json:"content,omitempty" validate:"max=4000"`
	NotificationID string `json:"notificationId,omitempty" validate:"max=64"`
	Type           string `json:"type,omitempty" validate:"max=64"`
	UserID         string `json:"userId,omitempty" validate:"max=128"`
	Title          string `json:"title,omitempty" validate:"max=256"`
	Message        string `json:"message,omitempty" validate:"max=4000"`
}

// ack mirrors the callback responses of the previous implementation as
// an explicit typed frame on the response path.
type ack struct {
	RequestID string `json:"requestId,omitempty"`
	Success   bool   `json:"success"`
	Error     string `json:"error,omitempty"`
	Data      any    `json:"data,omitempty"`
}

func (g *Gate) readLoop(ctx context.Context, c *conn) {
	c.socket.SetReadLimit(maxMessageSize)
	_ = c.socket.SetReadDeadline(time.Now().Add(pongWait))
	c.socket.SetPongHandler(func(string) error {
		return c.socket.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		var frame clientFrame
		if err := c.socket.ReadJSON(&frame); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				g.log.Debug("Read loop ended", "conn", c.id, "error", err)
			}
			return
		}
		if err := validate.Struct(frame); err != nil {
			g.metrics.FrameReject()
			c.enqueue(Frame{Event: "ack", Payload: ack{RequestID: frame.ID, Error: "malformed frame"}})
			continue
		}
		c.enqueue(Frame{Event: "ack", Payload: g.handle(ctx, c, frame)})
	}
}

// handle executes one client request. "Not found" outcomes stay
// successful with empty data; only hard failures flip Success off.
func (g *Gate) handle(ctx context.Context, c *conn, frame clientFrame) ack {
	reply := func(data any, err error) ack {
		if err != nil {
			g.log.Warn("Request failed", "action", frame.Action, "user", c.userID, "error", err)
			return ack{RequestID: frame.ID, Error: err.Error()}
		}
		return ack{RequestID: frame.ID, Success: true, Data: data}
	}

	switch frame.Action {
	case "join-chat":
		if frame.ChatID == "" {
			return reply(nil, fmt.Errorf("chatId is required"))
		}
		return reply(nil, benign(g.chats.JoinChat(c.id, c.userID, frame.ChatID)))

	case "leave-chat":
		if frame.ChatID == "" {
			return reply(nil, fmt.Errorf("chatId is required"))
		}
		return reply(nil, benign(g.chats.LeaveChat(c.id, c.userID, frame.ChatID)))

	case "send-message":
		if frame.ChatID == "" || frame.Content == "" {
			return reply(nil, fmt.Errorf("chatId and content are required"))
		}
		msg, err := g.chats.SendMessage(ctx, c.userID, frame.ChatID, frame.Content)
		return reply(msg, err)

	case "mark-chat-read":
		if frame.ChatID == "" {
			return reply(nil, fmt.Errorf("chatId is required"))
		}
		previous, err := g.chats.MarkChatRead(ctx, c.userID, frame.ChatID)
		return reply(map[string]int{"previousCount": previous}, err)

	case "get-unread-count":
		return reply(g.chats.UnreadSummary(c.userID), nil)

	case "get-notifications":
		notifications, err := g.notifications.List(c.userID)
		return reply(notifications, err)

	case "send-notification":
		created, err := g.notifications.Create(ctx, services.CreateNotificationCommand{
			Type:     domain.NotificationType(frame.Type),
			UserID:   domain.UserID(frame.UserID),
			SenderID: c.userID,
			Title:    frame.Title,
			Message:  frame.Message,
		})
		return reply(created, err)

	case "mark-as-read":
		id, err := uuid.Parse(frame.NotificationID)
		if err != nil {
			return reply(nil, fmt.Errorf("invalid notification id"))
		}
		found, err := g.notifications.MarkRead(c.userID, id)
		return reply(map[string]bool{"found": found}, err)

	case "mark-all-read":
		changed, err := g.notifications.MarkAllRead(ctx, c.userID)
		return reply(map[string]int{"changed": changed}, err)

	case "get-connected-users":
		return reply(g.presence.Snapshot(), nil)
	}

	return reply(nil, fmt.Errorf("unknown action %q", frame.Action))
}

// benign swallows the unknown-connection race: a room operation arriving
// while the disconnect is being processed means the connection is
// already gone, which is not an error worth surfacing to the user.
func benign(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, apperrors.ErrUnknownConnection) {
		return nil
	}
	return err
}
