package ws

import (
	"log/slog"
	"time"

	"github.com/gorilla/websocket"

	"realtime-lab/domain"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
)

// conn couples one websocket with its identity and outbound buffer.
// The write pump is the only goroutine writing to the socket.
type conn struct {
	id     domain.ConnectionID
	userID domain.UserID
	socket *websocket.Conn
	send   chan Frame
	quit   chan struct{}
	log    *slog.Logger
}

func newConn(log *slog.Logger, socket *websocket.Conn,
	id domain.ConnectionID, userID domain.UserID, bufferSize int) *conn {
	return &conn{
		id:     id,
		userID: userID,
		socket: socket,
		send:   make(chan Frame, bufferSize),
		quit:   make(chan struct{}),
		log:    log,
	}
}

// enqueue is the local, loss-less counterpart of Transport.Emit, used
// for handshake and ack frames addressed to this very connection.
func (c *conn) enqueue(frame Frame) {
	select {
	case c.send <- frame:
	case <-c.quit:
	}
}

// writePump drains the send buffer onto the socket and keeps the
// connection alive with pings. It exits when the gate signals quit or a
// write fails; the read side notices through the broken socket.
func (c *conn) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.socket.Close()
	}()

	for {
		select {
		case <-c.quit:
			_ = c.socket.SetWriteDeadline(time.Now().Add(writeWait))
			_ = c.socket.WriteMessage(websocket.CloseMessage, []byte{})
			return
		case frame := <-c.send:
			_ = c.socket.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.socket.WriteJSON(frame); err != nil {
				c.log.Debug("Write failed, closing connection", "conn", c.id, "error", err)
				return
			}
		case <-ticker.C:
			_ = c.socket.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.socket.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
