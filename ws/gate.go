package ws

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"realtime-lab/auth"
	"realtime-lab/contract"
	"realtime-lab/observability"
	"realtime-lab/services"

	"realtime-lab/domain"
)

// Gate is the websocket endpoint. It authenticates the handshake, hands
// the identity to the registry, and runs the connection's read loop
// until disconnect. All verification happened upstream at token
// issuance; the gate only validates the signature.
type Gate struct {
	log           *slog.Logger
	upgrader      websocket.Upgrader
	transport     *Transport
	registry      contract.IRegistry
	presence      contract.IPresence
	notifications services.INotificationService
	chats         services.IChatService
	metrics       *observability.Metrics
	secret        []byte
	bufferSize    int
}

func NewGate(log *slog.Logger, transport *Transport,
	registry contract.IRegistry, presence contract.IPresence,
	notifications services.INotificationService, chats services.IChatService,
	metrics *observability.Metrics, secret []byte, bufferSize int) *Gate {
	return &Gate{
		log:       log,
		upgrader:  websocket.Upgrader{ReadBufferSize: 1024, WriteBufferSize: 1024},
		transport: transport,
		registry:      registry,
		presence:      presence,
		notifications: notifications,
		chats:         chats,
		metrics:       metrics,
		secret:        secret,
		bufferSize:    bufferSize,
	}
}

func (g *Gate) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	token := bearerToken(r)
	if token == "" {
		http.Error(w, "missing token", http.StatusUnauthorized)
		return
	}
	userID, roles, err := auth.ValidateToken(g.secret, token)
	if err != nil {
		g.log.Warn("Handshake rejected", "error", err)
		http.Error(w, "invalid token", http.StatusUnauthorized)
		return
	}

	socket, err := g.upgrader.Upgrade(w, r, nil)
	if err != nil {
		g.log.Warn("Upgrade failed", "error", err)
		return
	}

	connID := domain.ConnectionID(uuid.NewString())
	c := newConn(g.log, socket, connID, userID, g.bufferSize)

	if _, err := g.registry.Add(userID, roles, connID); err != nil {
		g.log.Error("Registration failed", "conn", connID, "error", err)
		_ = socket.Close()
		return
	}
	g.transport.Register(connID, c.send)
	g.metrics.ConnOpened()
	g.log.Info("User connected", "user", userID, "conn", connID)

	go c.writePump()
	c.enqueue(Frame{Event: "connected", Payload: map[string]any{
		"connectionId": connID,
		"userId":       userID,
	}})

	g.readLoop(r.Context(), c)

	// Teardown order matters: stop accepting emits before the registry
	// forgets the connection, then release the write pump.
	g.transport.Unregister(connID)
	g.registry.Remove(connID)
	close(c.quit)
	g.metrics.ConnClosed()
	g.log.Info("User disconnected", "user", userID, "conn", connID)
}

func bearerToken(r *http.Request) string {
	if token := r.URL.Query().Get("token"); token != "" {
		return token
	}
	header := r.Header.Get("Authorization")
	return strings.TrimPrefix(header, "Bearer ")
}
