package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/matrixforge/ledhost/internal/input"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		// Panels sit on trusted LANs; remotes connect from anywhere.
		return true
	},
}

// streamMessage is one client-to-server websocket message.
type streamMessage struct {
	Type    string `json:"type"`
	Action  string `json:"action,omitempty"`
	Pressed bool   `json:"pressed,omitempty"`
}

// handleStream upgrades the connection and treats it as a remote
// gamepad. Each connection carries its own rate limiter so one noisy
// remote cannot starve the rest.
func (s *Server) handleStream(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.log.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	s.metrics.WSConnections.Inc()
	defer s.metrics.WSConnections.Dec()

	limiter := rate.NewLimiter(rate.Limit(s.cfg.EventsPerSecond), s.cfg.EventBurst)
	s.send(conn, gin.H{"type": "system", "message": "gamepad connected"})

	for {
		var msg streamMessage
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.log.Warn("websocket read error", zap.Error(err))
			}
			return
		}

		switch msg.Type {
		case "input":
			if !limiter.Allow() {
				s.metrics.InputDropped.Inc()
				continue
			}
			action := input.ParseAction(msg.Action)
			if action == input.ActionNone {
				s.send(conn, gin.H{"type": "error", "message": "unknown action: " + msg.Action})
				continue
			}
			s.input.Push(input.Event{
				Action:  action,
				Pressed: msg.Pressed,
				Time:    time.Now(),
				Source:  "ws",
			})
			s.metrics.RecordInput("ws")
		case "ping":
			s.send(conn, gin.H{"type": "pong"})
		default:
			s.send(conn, gin.H{"type": "error", "message": "unknown message type"})
		}
	}
}

func (s *Server) send(conn *websocket.Conn, v any) {
	if err := conn.WriteJSON(v); err != nil {
		s.log.Warn("websocket write failed", zap.Error(err))
	}
}
