// Package ws is the websocket transport layer: it upgrades and
// authenticates connections, pumps frames in both directions, and
// implements the emit primitive the dispatcher delivers through.
package ws

import (
	"context"
	"fmt"
	"sync"

	"realtime-lab/domain"
	"realtime-lab/errors"
)

// Frame is the wire envelope for server-to-client events.
type Frame struct {
	Event   string `json:"event"`
	Payload any    `json:"payload"`
}

// Transport routes emits to the send buffer of the owning connection.
// Emit is a single non-blocking enqueue: it never waits on a slow
// consumer and never blocks a caller holding registry state.
type Transport struct {
	mu    sync.RWMutex
	conns map[domain.ConnectionID]chan Frame
}

func NewTransport() *Transport {
	return &Transport{conns: make(map[domain.ConnectionID]chan Frame)}
}

func (t *Transport) Register(connID domain.ConnectionID, send chan Frame) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.conns[connID] = send
}

func (t *Transport) Unregister(connID domain.ConnectionID) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.conns, connID)
}

// Emit enqueues one frame for the connection. A vanished connection or
// a full buffer is an error for this connection only; the dispatcher
// logs and skips it.
func (t *Transport) Emit(_ context.Context, connID domain.ConnectionID, eventName string, payload any) error {
	t.mu.RLock()
	send, ok := t.conns[connID]
	t.mu.RUnlock()

	if !ok {
		return fmt.Errorf("%w: %s", errors.ErrUnknownConnection, connID)
	}
	select {
	case send <- Frame{Event: eventName, Payload: payload}:
		return nil
	default:
		return fmt.Errorf("%w: %s", errors.ErrSlowConsumer, connID)
	}
}
