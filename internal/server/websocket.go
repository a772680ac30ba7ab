package server

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/toolwire/sqlbridge/internal/logging"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = 54 * time.Second
	maxMessageSize = 1 << 20
)

// WebSocketConfig holds connection policy for the WebSocket transport.
type WebSocketConfig struct {
	// AllowedOrigins lists accepted Origin values. "*" accepts any origin;
	// "*.example.com" accepts subdomains.
	AllowedOrigins []string
}

// DefaultWebSocketConfig accepts any origin. Override AllowedOrigins when
// exposing the endpoint beyond localhost.
func DefaultWebSocketConfig() WebSocketConfig {
	return WebSocketConfig{AllowedOrigins: []string{"*"}}
}

// isOriginAllowed checks origin against the allowed list. An absent Origin
// header is denied; browsers always send one for WebSocket.
func isOriginAllowed(origin string, allowed []string) bool {
	if origin == "" {
		return false
	}
	for _, pattern := range allowed {
		if pattern == "*" || pattern == origin {
			return true
		}
		if strings.HasPrefix(pattern, "*.") && strings.HasSuffix(origin, pattern[2:]) {
			return true
		}
	}
	return false
}

// wsClient is one WebSocket connection. Requests are dispatched on their
// own goroutines; responses funnel through send so only writePump touches
// the connection for writes.
type wsClient struct {
	conn *websocket.Conn
	send chan []byte
}

// WebSocketHandler upgrades connections and serves tool calls over them.
// The wire shape matches the stdio transport: one Request in, one Response
// out, correlated by id.
func (s *Server) WebSocketHandler(cfg WebSocketConfig) http.Handler {
	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			ok := isOriginAllowed(origin, cfg.AllowedOrigins)
			if !ok {
				logging.SecurityEvent("origin_rejected", "websocket", "origin", origin)
			}
			return ok
		},
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logging.Error("websocket upgrade failed", "error", err)
			return
		}

		client := &wsClient{
			conn: conn,
			send: make(chan []byte, 256),
		}
		logging.WebSocketEvent("client_connected", 1)

		go client.writePump()
		client.readPump(r.Context(), s)
	})
}

// readPump reads requests until the connection drops, dispatching each on
// its own goroutine. Closing send stops writePump.
func (c *wsClient) readPump(ctx context.Context, s *Server) {
	var wg sync.WaitGroup
	defer func() {
		wg.Wait()
		close(c.send)
		c.conn.Close()
		logging.WebSocketEvent("client_disconnected", 0)
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logging.Error("websocket unexpected close", "error", err)
			}
			return
		}

		var req Request
		if err := json.Unmarshal(data, &req); err != nil {
			c.respond(&Response{Status: StatusError, Error: "malformed request: " + err.Error()})
			continue
		}

		wg.Add(1)
		go func(req Request) {
			defer wg.Done()
			c.respond(s.Dispatch(ctx, &req))
		}(req)
	}
}

// respond queues a response. A full send buffer means the client stopped
// reading; every queued response carries a caller waiting on its id, so
// the connection is closed rather than a response silently dropped.
func (c *wsClient) respond(resp *Response) {
	data, err := json.Marshal(resp)
	if err != nil {
		logging.Error("failed to marshal response", "error", err)
		return
	}
	select {
	case c.send <- data:
	default:
		logging.Error("websocket send buffer full, closing connection")
		c.conn.Close()
	}
}

// writePump writes queued responses and keepalive pings. Exits when send
// closes or a write fails.
func (c *wsClient) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
