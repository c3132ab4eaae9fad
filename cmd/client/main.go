package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"log"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/Netflix/go-env"
	"github.com/google/uuid"
	"github.com/gookit/color"
	"github.com/gorilla/websocket"
	"github.com/joho/godotenv"

	"realtime-lab/auth"
	"realtime-lab/domain"
)

// Config drives the interactive test client. When TOKEN is empty a
// short-lived one is signed locally with TOKEN_SECRET, which keeps the
// loop fast during development.
type Config struct {
	ServerAddr  string `env:"SERVER_ADDR,default=localhost:8080"`
	Token       string `env:"TOKEN"`
	TokenSecret string `env:"TOKEN_SECRET,default=dev-secret"`
	UserID      string `env:"USER_ID,default=tester"`
	Roles       string `env:"ROLES,default=developer"`
	ChatID      string `env:"CHAT_ID,default=demo"`
}

type frame struct {
	ID             string `json:"id,omitempty"`
	Action         string `json:"action,omitempty"`
	ChatID         string `json:"chatId,omitempty"`
	Content        string `json:"content,omitempty"`
	NotificationID string `json:"notificationId,omitempty"`
}

func main() {
	// 1. Load config
	_ = godotenv.Load()
	var config Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		log.Fatalf("Config error: %v", err)
	}

	// 2. Token (provided or locally signed)
	token := config.Token
	if token == "" {
		var roles []domain.Role
		for _, r := range strings.Split(config.Roles, ",") {
			roles = append(roles, domain.Role(strings.TrimSpace(r)))
		}
		var err error
		token, err = auth.GenerateToken([]byte(config.TokenSecret),
			domain.UserID(config.UserID), roles, time.Hour)
		if err != nil {
			log.Fatalf("Token signing failed: %v", err)
		}
	}

	// 3. Connect
	u := url.URL{Scheme: "ws", Host: config.ServerAddr, Path: "/ws",
		RawQuery: "token=" + url.QueryEscape(token)}
	socket, _, err := websocket.DefaultDialer.Dial(u.String(), nil)
	if err != nil {
		log.Fatalf("Impossible to connect to %s: %v", u.String(), err)
	}
	defer socket.Close()

	color.Green.Printf("Connected as %s (chat %q)\n", config.UserID, config.ChatID)
	color.Gray.Println("Type a message and press Enter. Commands: /unread /notifs /who /quit")

	// 4. Print every inbound frame as it arrives
	go func() {
		for {
			var incoming map[string]any
			if err := socket.ReadJSON(&incoming); err != nil {
				color.Red.Printf("Connection closed: %v\n", err)
				os.Exit(1)
			}
			pretty, _ := json.Marshal(incoming)
			color.Cyan.Printf("<< %s\n", pretty)
		}
	}()

	// 5. Join the chat room then loop on stdin
	send(socket, frame{ID: uuid.NewString(), Action: "join-chat", ChatID: config.ChatID})

	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		switch {
		case line == "":
			continue
		case line == "/quit":
			send(socket, frame{ID: uuid.NewString(), Action: "leave-chat", ChatID: config.ChatID})
			return
		case line == "/unread":
			send(socket, frame{ID: uuid.NewString(), Action: "get-unread-count"})
		case line == "/notifs":
			send(socket, frame{ID: uuid.NewString(), Action: "get-notifications"})
		case line == "/who":
			send(socket, frame{ID: uuid.NewString(), Action: "get-connected-users"})
		default:
			send(socket, frame{
				ID:      uuid.NewString(),
				Action:  "send-message",
				ChatID:  config.ChatID,
				Content: line,
			})
		}
	}
}

func send(socket *websocket.Conn, f frame) {
	if err := socket.WriteJSON(f); err != nil {
		log.Fatalf("Write failed: %v", err)
	}
	fmt.Printf(">> %s %s\n", f.Action, f.Content)
}
