package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/careerlens/careerlens-api/internal/practice"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

const (
	feedWriteWait  = 10 * time.Second
	feedPongWait   = 60 * time.Second
	feedPingPeriod = feedPongWait * 9 / 10
)

// FeedMessage is one frame on a session websocket
type FeedMessage struct {
	Type string `json:"type"`
	Data any    `json:"data,omitempty"`
}

// handleTestFeed streams countdown ticks and the submit event of a practice test
func (s *Server) handleTestFeed(w http.ResponseWriter, r *http.Request) {
	session, ok := s.testSession(w, r)
	if !ok {
		return
	}
	events, cancel := session.Subscribe()
	defer cancel()

	s.serveFeed(w, r, session.ID, session.View(), events)
}

// handleInterviewFeed streams the per-question countdown of a mock interview
func (s *Server) handleInterviewFeed(w http.ResponseWriter, r *http.Request) {
	session, ok := s.interviewSession(w, r)
	if !ok {
		return
	}
	events, cancel := session.Subscribe()
	defer cancel()

	s.serveFeed(w, r, session.ID, session.View(), events)
}

// serveFeed sends a snapshot, then relays events until the session closes
// the feed or the client disconnects
func (s *Server) serveFeed(w http.ResponseWriter, r *http.Request, sessionID string, snapshot any, events <-chan practice.Event) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Error("failed to upgrade to websocket", "error", err)
		return
	}
	defer conn.Close()

	slog.Info("session feed connected", "session_id", sessionID)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Reader: handles pongs and notices the client going away
	go func() {
		defer cancel()
		conn.SetReadLimit(512)
		conn.SetReadDeadline(time.Now().Add(feedPongWait))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(feedPongWait))
		})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
					slog.Debug("websocket read error", "error", err)
				}
				return
			}
		}
	}()

	if err := sendFeedMessage(conn, FeedMessage{Type: "snapshot", Data: snapshot}); err != nil {
		return
	}

	ping := time.NewTicker(feedPingPeriod)
	defer ping.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("session feed disconnected", "session_id", sessionID)
			return
		case ev, ok := <-events:
			if !ok {
				conn.SetWriteDeadline(time.Now().Add(feedWriteWait))
				conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, "session closed"))
				return
			}
			if err := sendFeedEvent(conn, ev); err != nil {
				return
			}
		case <-ping.C:
			conn.SetWriteDeadline(time.Now().Add(feedWriteWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func sendFeedEvent(conn *websocket.Conn, ev practice.Event) error {
	conn.SetWriteDeadline(time.Now().Add(feedWriteWait))
	if err := conn.WriteJSON(ev); err != nil {
		slog.Debug("failed to send feed event", "error", err)
		return err
	}
	return nil
}

func sendFeedMessage(conn *websocket.Conn, msg FeedMessage) error {
	conn.SetWriteDeadline(time.Now().Add(feedWriteWait))
	if err := conn.WriteJSON(msg); err != nil {
		slog.Debug("failed to send feed message", "error", err)
		return err
	}
	return nil
}
