package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/toolwire/sqlbridge/core/store"
)

func dialTestServer(t *testing.T, handler http.Handler, header http.Header) *websocket.Conn {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, header)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestWebSocketRoundTrip(t *testing.T) {
	fake := &fakeExecer{execRes: store.ExecResult{LastInsertID: 7}}
	s := newTestServer(fake)

	header := http.Header{"Origin": {"http://example.com"}}
	conn := dialTestServer(t, s.WebSocketHandler(DefaultWebSocketConfig()), header)

	// Two in-flight requests; each response carries the caller's id, so
	// arrival order does not matter.
	requests := []string{
		`{"id":1,"tool":"sqlite_insert","args":{"table":"t","values":{"a":1}}}`,
		`{"id":2,"tool":"sqlite_delete","args":{"table":"t"}}`,
	}
	for _, req := range requests {
		if err := conn.WriteMessage(websocket.TextMessage, []byte(req)); err != nil {
			t.Fatalf("write: %v", err)
		}
	}

	byID := map[string]Response{}
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	for i := 0; i < len(requests); i++ {
		_, data, err := conn.ReadMessage()
		if err != nil {
			t.Fatalf("read: %v", err)
		}
		var resp Response
		if err := json.Unmarshal(data, &resp); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		byID[string(resp.ID)] = resp
	}

	if resp, ok := byID["1"]; !ok || resp.Status != StatusOK {
		t.Errorf("response 1 = %+v", resp)
	}
	if resp, ok := byID["2"]; !ok || resp.Status != StatusOK {
		t.Errorf("response 2 = %+v", resp)
	}

	var insert struct {
		LastInsertRowID int64 `json:"last_insert_rowid"`
	}
	raw, _ := json.Marshal(byID["1"].Result)
	if err := json.Unmarshal(raw, &insert); err != nil {
		t.Fatalf("unmarshal result: %v", err)
	}
	if insert.LastInsertRowID != 7 {
		t.Errorf("last_insert_rowid = %d, want 7", insert.LastInsertRowID)
	}
}

func TestWebSocketMalformedFrame(t *testing.T) {
	s := newTestServer(&fakeExecer{})

	header := http.Header{"Origin": {"http://example.com"}}
	conn := dialTestServer(t, s.WebSocketHandler(DefaultWebSocketConfig()), header)

	if err := conn.WriteMessage(websocket.TextMessage, []byte(`{"tool": nope}`)); err != nil {
		t.Fatalf("write: %v", err)
	}

	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	var resp Response
	if err := json.Unmarshal(data, &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp.Status != StatusError {
		t.Errorf("status = %q", resp.Status)
	}

	// A malformed frame must not kill the connection.
	if err := conn.WriteMessage(websocket.TextMessage, []byte(`{"id":9,"tool":"sqlite_delete","args":{"table":"t"}}`)); err != nil {
		t.Fatalf("write after error: %v", err)
	}
	_, data, err = conn.ReadMessage()
	if err != nil {
		t.Fatalf("read after error: %v", err)
	}
	if err := json.Unmarshal(data, &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if string(resp.ID) != "9" || resp.Status != StatusOK {
		t.Errorf("response = %+v", resp)
	}
}

func TestWebSocketRejectsDisallowedOrigin(t *testing.T) {
	s := newTestServer(&fakeExecer{})
	cfg := WebSocketConfig{AllowedOrigins: []string{"https://example.com"}}

	server := httptest.NewServer(s.WebSocketHandler(cfg))
	defer server.Close()

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http")
	header := http.Header{"Origin": {"https://evil.com"}}
	conn, resp, err := websocket.DefaultDialer.Dial(wsURL, header)
	if err == nil {
		conn.Close()
		t.Fatal("handshake succeeded for rejected origin")
	}
	if resp != nil && resp.StatusCode != http.StatusForbidden {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusForbidden)
	}
}

func TestRespondBufferFullClosesConnection(t *testing.T) {
	upgrader := websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool { return true },
	}
	conns := make(chan *websocket.Conn, 1)
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		conns <- conn
	})

	dialTestServer(t, handler, nil)

	var serverSide *websocket.Conn
	select {
	case serverSide = <-conns:
	case <-time.After(5 * time.Second):
		t.Fatal("server connection not established")
	}
	defer serverSide.Close()

	c := &wsClient{conn: serverSide, send: make(chan []byte, 1)}
	c.send <- []byte("queued")

	// A response with no buffer space closes the connection so the caller
	// sees a failure instead of waiting forever.
	c.respond(&Response{Status: StatusOK})

	if err := serverSide.WriteMessage(websocket.TextMessage, []byte("x")); err == nil {
		t.Fatal("connection still writable after overflow")
	}
}
