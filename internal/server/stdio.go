package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"sync"

	"github.com/toolwire/sqlbridge/internal/logging"
)

// ServeStdio reads a stream of JSON requests from r and writes one JSON
// response per request to w. Each request runs on its own goroutine, so
// responses may interleave out of order; callers correlate by echoed id.
// Returns nil when r reaches EOF. A malformed request poisons the stream
// framing, so it produces one error response and ends the loop.
func (s *Server) ServeStdio(ctx context.Context, r io.Reader, w io.Writer) error {
	dec := json.NewDecoder(r)

	var mu sync.Mutex
	enc := json.NewEncoder(w)
	respond := func(resp *Response) {
		mu.Lock()
		defer mu.Unlock()
		if err := enc.Encode(resp); err != nil {
			logging.Error("failed to write response", "error", err)
		}
	}

	var wg sync.WaitGroup
	defer wg.Wait()

	for {
		var req Request
		if err := dec.Decode(&req); err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			respond(&Response{Status: StatusError, Error: "malformed request: " + err.Error()})
			return err
		}

		wg.Add(1)
		go func(req Request) {
			defer wg.Done()
			respond(s.Dispatch(ctx, &req))
		}(req)
	}
}
