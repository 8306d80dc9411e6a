package server

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"

	"github.com/jtary/think-first-ai/agent"
)

// envelope is the wire format for all websocket messages, both directions.
// Server to client carries agent events plus the session greeting and error
// notices; client to server carries generate requests.
type envelope struct {
	Type      string          `json:"type"`
	SessionID string          `json:"session_id,omitempty"`
	Prompt    string          `json:"prompt,omitempty"`
	Content   string          `json:"content,omitempty"`
	Tool      string          `json:"tool,omitempty"`
	Arguments json.RawMessage `json:"arguments,omitempty"`
	Result    string          `json:"result,omitempty"`
	Error     string          `json:"error,omitempty"`
	Duration  float64         `json:"duration,omitempty"`
	Timestamp string          `json:"timestamp,omitempty"`
}

func eventEnvelope(e agent.Event) envelope {
	return envelope{
		Type:      string(e.Kind),
		Content:   e.Content,
		Tool:      e.Tool,
		Arguments: e.Arguments,
		Result:    e.Result,
		Error:     e.Error,
		Duration:  e.Duration,
		Timestamp: e.Timestamp.Format(time.RFC3339Nano),
	}
}

func errorEnvelope(message string) envelope {
	return envelope{Type: "error", Error: message}
}

// wsConn serializes writes: the event pump and the read loop both send.
type wsConn struct {
	mu sync.Mutex
	c  *websocket.Conn
}

func (w *wsConn) send(ctx context.Context, env envelope) error {
	data, err := json.Marshal(env)
	if err != nil {
		return err
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	return w.c.Write(ctx, websocket.MessageText, data)
}

// handleWS returns the handler for one channel's websocket endpoint.
//
// The connection subscribes to the channel for its whole lifetime and may
// submit generate requests; events stream out as they are published. The
// session comes from the "session" query parameter, or a fresh one is
// created, and its ID is announced in the first message either way.
func (s *Server) handleWS(channel agent.Channel) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			InsecureSkipVerify: true, // CORS handled by middleware
		})
		if err != nil {
			s.log.Error("websocket accept failed", "error", err)
			return
		}
		defer c.Close(websocket.StatusInternalError, "")

		id := r.URL.Query().Get("session")
		if id == "" {
			id = uuid.NewString()
		}

		sess, err := s.manager.Acquire(r.Context(), id)
		if err != nil {
			s.log.Error("failed to acquire session", "session", id, "error", err)
			c.Close(websocket.StatusInternalError, "session unavailable")
			return
		}
		defer s.manager.Release(sess)

		ctx, cancel := context.WithCancel(r.Context())
		defer cancel()

		sub := sess.Subscribe(channel)
		defer sess.Unsubscribe(sub)

		s.log.Info("websocket connected", "channel", channel, "session", id, "remote", r.RemoteAddr)

		conn := &wsConn{c: c}
		if err := conn.send(ctx, envelope{Type: "session", SessionID: id}); err != nil {
			return
		}

		// Event pump. A write failure means the client is gone; cancelling
		// the context unblocks the read loop below.
		go func() {
			for e := range sub.Events() {
				if err := conn.send(ctx, eventEnvelope(e)); err != nil {
					cancel()
					return
				}
			}
		}()

		for {
			_, data, err := c.Read(ctx)
			if err != nil {
				s.log.Info("websocket disconnected", "channel", channel, "session", id)
				return
			}

			var msg envelope
			if err := json.Unmarshal(data, &msg); err != nil {
				_ = conn.send(ctx, errorEnvelope("invalid message"))
				continue
			}

			switch msg.Type {
			case "generate":
				if err := sess.Generate(msg.Prompt); err != nil {
					_ = conn.send(ctx, errorEnvelope(err.Error()))
				}
			default:
				_ = conn.send(ctx, errorEnvelope("unknown message type: "+msg.Type))
			}
		}
	}
}
