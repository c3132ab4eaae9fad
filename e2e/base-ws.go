package e2e

import (
	"encoding/json"
	"fmt"
	"net/url"
	"testing"
	"time"

	"github.com/gookit/color"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/suite"

	"realtime-lab/auth"
	"realtime-lab/domain"
)

type BaseWsSuite struct {
	suite.Suite
	Config Config
}

// SetupSuite loads the environment configuration before running tests
// and skips the suite when no server address is configured.
func (s *BaseWsSuite) SetupSuite() {
	var err error
	s.Config, err = LoadConfig()
	s.Require().NoError(err)
	if s.Config.ServerAddr == "" {
		s.T().Skip("E2E_SERVER_ADDR not set, skipping end to end suite")
	}
}

// WsConn opens an authenticated websocket against the gate, with a
// colorized header in the logs and the handshake frame consumed.
func (s *BaseWsSuite) WsConn(t *testing.T, name string, userID domain.UserID, roles ...domain.Role) *WsClient {
	header := fmt.Sprintf("  ====== %s ======", name)
	if s.Config.Colours {
		header = color.New(color.BgBlack, color.FgGreen).Render(header)
	}
	t.Log(header)

	token, err := auth.GenerateToken([]byte(s.Config.TokenSecret), userID, roles, time.Hour)
	s.Require().NoError(err)

	u := url.URL{Scheme: "ws", Host: s.Config.ServerAddr, Path: "/ws",
		RawQuery: "token=" + url.QueryEscape(token)}
	conn, _, err := websocket.DefaultDialer.Dial(u.String(), nil)
	s.Require().NoError(err, "Failed to connect to gate at "+s.Config.ServerAddr)

	client := &WsClient{s: s, t: t, conn: conn, userID: userID}
	client.Expect("connected")
	return client
}

type WsClient struct {
	s      *BaseWsSuite
	t      *testing.T
	conn   *websocket.Conn
	userID domain.UserID
	seq    int
}

func (c *WsClient) Close() {
	_ = c.conn.Close()
}

// Expect reads frames until the named event arrives, skipping unrelated
// broadcasts. Every skipped and matched frame can be dumped as JSON via
// E2E_DEBUG_JSON.
func (c *WsClient) Expect(event string) json.RawMessage {
	deadline := time.Now().Add(10 * time.Second)
	for {
		c.s.Require().NoError(c.conn.SetReadDeadline(deadline))
		var frame struct {
			Event   string          `json:"event"`
			Payload json.RawMessage `json:"payload"`
		}
		c.s.Require().NoError(c.conn.ReadJSON(&frame),
			"Waiting for %q on %s", event, c.userID)
		if c.s.Config.DebugJSON {
			c.t.Logf("[%s] %s %s", c.userID, frame.Event, frame.Payload)
		}
		if frame.Event == event {
			return frame.Payload
		}
	}
}

// Request sends one action frame and returns the matching ack body.
func (c *WsClient) Request(action string, fields map[string]any) map[string]any {
	c.seq++
	frame := map[string]any{"id": fmt.Sprintf("%s-%d", c.userID, c.seq), "action": action}
	for k, v := range fields {
		frame[k] = v
	}
	c.s.Require().NoError(c.conn.WriteJSON(frame))

	var reply map[string]any
	c.s.Require().NoError(json.Unmarshal(c.Expect("ack"), &reply))
	c.s.Require().Equal(frame["id"], reply["requestId"])
	return reply
}

// MustSucceed asserts the ack reports success and returns its data.
func (c *WsClient) MustSucceed(action string, fields map[string]any) any {
	reply := c.Request(action, fields)
	c.s.Require().Equal(true, reply["success"], "Action %q failed: %v", action, reply["error"])
	return reply["data"]
}
