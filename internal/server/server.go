// Package server is the transport glue around the core data-access layer.
//
// It dispatches JSON tool-call requests to handlers over stdio or
// WebSocket. The wire shape is one Request per call and one Response per
// Request; calls are independent, each handled on its own goroutine with
// no ordering guarantee between them.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/toolwire/sqlbridge/core/sqlbuild"
	"github.com/toolwire/sqlbridge/core/store"
	"github.com/toolwire/sqlbridge/internal/logging"
	"github.com/toolwire/sqlbridge/internal/tools/notebook"
	"github.com/toolwire/sqlbridge/internal/tools/registry"
)

// Request is one inbound tool call. The optional ID is echoed verbatim in
// the Response so concurrent callers can correlate replies.
type Request struct {
	ID   json.RawMessage `json:"id,omitempty"`
	Tool string          `json:"tool"`
	Args json.RawMessage `json:"args,omitempty"`
}

// Response statuses.
const (
	StatusOK    = "ok"
	StatusError = "error"
)

// Response is the outcome of one tool call.
type Response struct {
	ID     json.RawMessage `json:"id,omitempty"`
	Status string          `json:"status"`
	Result any             `json:"result,omitempty"`
	Error  string          `json:"error,omitempty"`
}

// Handler executes one tool call. A returned error becomes an error
// Response; it never tears down the serving process.
type Handler func(ctx context.Context, args json.RawMessage) (any, error)

// Execer is the store surface the dynamic CRUD handlers need. *store.Store
// implements it; tests inject recording fakes.
type Execer interface {
	Exec(ctx context.Context, stmt *sqlbuild.Statement) (store.ExecResult, error)
	Query(ctx context.Context, stmt *sqlbuild.Statement) ([]store.Row, error)
}

// Server routes tool calls to handlers.
type Server struct {
	exec  Execer
	tools map[string]Handler
}

// New builds a Server over st with the full tool set registered: the four
// dynamic CRUD tools plus the fixed-schema registry and notebook tools.
func New(st *store.Store) *Server {
	s := &Server{
		exec:  st,
		tools: make(map[string]Handler),
	}
	s.registerCRUD()
	s.registerFixed(registry.New(st.DB()), notebook.New(st.DB()))
	return s
}

// Register adds or replaces a tool handler.
func (s *Server) Register(name string, h Handler) {
	s.tools[name] = h
}

// Tools returns the registered tool names, sorted.
func (s *Server) Tools() []string {
	names := make([]string, 0, len(s.tools))
	for name := range s.tools {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Dispatch runs one tool call and always produces a Response. Every call
// gets its own request ID for log correlation. Failures abort only this
// call.
func (s *Server) Dispatch(ctx context.Context, req *Request) *Response {
	ctx = logging.WithRequestID(ctx, uuid.New().String())

	h, ok := s.tools[req.Tool]
	if !ok {
		err := fmt.Errorf("unknown tool: %s", req.Tool)
		logging.ToolError(ctx, req.Tool, err)
		return &Response{ID: req.ID, Status: StatusError, Error: err.Error()}
	}

	start := time.Now()
	result, err := h(ctx, req.Args)
	if err != nil {
		logging.ToolError(ctx, req.Tool, err)
		return &Response{ID: req.ID, Status: StatusError, Error: err.Error()}
	}

	logging.ToolCall(ctx, req.Tool, time.Since(start))
	return &Response{ID: req.ID, Status: StatusOK, Result: result}
}
