package server

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const writeWait = 10 * time.Second

// Event is one message on the progress stream.
type Event struct {
	Type    string    `json:"type"`
	Stage   string    `json:"stage,omitempty"`
	Result  *Response `json:"result,omitempty"`
	Status  int       `json:"status,omitempty"`
	Message string    `json:"message,omitempty"`
}

// Event types.
const (
	EventStatus = "status"
	EventResult = "result"
	EventError  = "error"
)

// safeConn serializes writes to a WebSocket connection.
type safeConn struct {
	conn    *websocket.Conn
	writeMu sync.Mutex
}

func (sc *safeConn) send(ev Event) error {
	sc.writeMu.Lock()
	defer sc.writeMu.Unlock()
	_ = sc.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return sc.conn.WriteJSON(ev)
}

func (s *Server) upgrader() *websocket.Upgrader {
	return &websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			return origin == "" || s.allowedOrigin(origin)
		},
	}
}

// handleWebSocket streams pipeline progress, then one result or error event,
// then closes.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	req, apiErr := s.parseRequest(r)
	if apiErr != nil {
		writeError(w, apiErr)
		return
	}

	conn, err := s.upgrader().Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warning("WebSocket upgrade failed: %v", err)
		return
	}
	defer conn.Close()
	sc := &safeConn{conn: conn}

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	// The client never sends anything we need; reading only detects a close.
	go func() {
		defer cancel()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	req.status = func(stage string) error {
		return sc.send(Event{Type: EventStatus, Stage: stage})
	}

	s.logger.Step("Streaming explanation for %s", req.repo.FullName())
	resp, apiErr := s.explain(ctx, req)
	if apiErr != nil {
		_ = sc.send(Event{Type: EventError, Status: apiErr.Status, Message: apiErr.Message})
	} else {
		_ = sc.send(Event{Type: EventResult, Result: resp})
	}

	sc.writeMu.Lock()
	_ = conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(writeWait))
	sc.writeMu.Unlock()
}
