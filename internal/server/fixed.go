package server

import (
	"context"
	"encoding/json"

	bridgeerrors "github.com/toolwire/sqlbridge/core/errors"
	"github.com/toolwire/sqlbridge/internal/tools/notebook"
	"github.com/toolwire/sqlbridge/internal/tools/registry"
)

// registerFixed wires the fixed-schema management tools. These bypass the
// dynamic statement builder: their SQL is constant and fully trusted.
func (s *Server) registerFixed(reg *registry.Registry, nbs *notebook.Notebooks) {
	s.Register("mcp_register_server", func(ctx context.Context, args json.RawMessage) (any, error) {
		var in serverUUIDInput
		if err := json.Unmarshal(args, &in); err != nil {
			return nil, &bridgeerrors.ParseError{Format: "JSON", Message: "invalid register arguments", Err: err}
		}
		n, err := reg.Register(ctx, in.ServerUUID)
		if err != nil {
			return nil, err
		}
		return rowsAffectedResult{RowsAffected: n}, nil
	})

	s.Register("mcp_unregister_server", func(ctx context.Context, args json.RawMessage) (any, error) {
		var in serverUUIDInput
		if err := json.Unmarshal(args, &in); err != nil {
			return nil, &bridgeerrors.ParseError{Format: "JSON", Message: "invalid unregister arguments", Err: err}
		}
		n, err := reg.Unregister(ctx, in.ServerUUID)
		if err != nil {
			return nil, err
		}
		return rowsAffectedResult{RowsAffected: n}, nil
	})

	s.Register("mcp_set_env", func(ctx context.Context, args json.RawMessage) (any, error) {
		var in setEnvInput
		if err := json.Unmarshal(args, &in); err != nil {
			return nil, &bridgeerrors.ParseError{Format: "JSON", Message: "invalid set_env arguments", Err: err}
		}
		n, err := reg.SetEnv(ctx, in.ServerUUID, in.Env)
		if err != nil {
			return nil, err
		}
		return rowsAffectedResult{RowsAffected: n}, nil
	})

	s.Register("mcp_get_env", func(ctx context.Context, args json.RawMessage) (any, error) {
		var in serverUUIDInput
		if err := json.Unmarshal(args, &in); err != nil {
			return nil, &bridgeerrors.ParseError{Format: "JSON", Message: "invalid get_env arguments", Err: err}
		}
		env, err := reg.GetEnv(ctx, in.ServerUUID)
		if err != nil {
			return nil, err
		}
		return envResult{Env: env}, nil
	})

	s.Register("notebook_create", func(ctx context.Context, args json.RawMessage) (any, error) {
		var in notebookCreateInput
		if err := json.Unmarshal(args, &in); err != nil {
			return nil, &bridgeerrors.ParseError{Format: "JSON", Message: "invalid create arguments", Err: err}
		}
		id, err := nbs.Create(ctx, in.Title, in.Body)
		if err != nil {
			return nil, err
		}
		return idResult{ID: id}, nil
	})

	s.Register("notebook_append", func(ctx context.Context, args json.RawMessage) (any, error) {
		var in notebookAppendInput
		if err := json.Unmarshal(args, &in); err != nil {
			return nil, &bridgeerrors.ParseError{Format: "JSON", Message: "invalid append arguments", Err: err}
		}
		n, err := nbs.Append(ctx, in.ID, in.Delta)
		if err != nil {
			return nil, err
		}
		return rowsAffectedResult{RowsAffected: n}, nil
	})

	s.Register("notebook_delete", func(ctx context.Context, args json.RawMessage) (any, error) {
		var in notebookIDInput
		if err := json.Unmarshal(args, &in); err != nil {
			return nil, &bridgeerrors.ParseError{Format: "JSON", Message: "invalid delete arguments", Err: err}
		}
		n, err := nbs.Delete(ctx, in.ID)
		if err != nil {
			return nil, err
		}
		return rowsAffectedResult{RowsAffected: n}, nil
	})

	s.Register("notebook_list", func(ctx context.Context, args json.RawMessage) (any, error) {
		in := notebookListInput{Limit: notebook.DefaultListLimit}
		if len(args) > 0 {
			if err := json.Unmarshal(args, &in); err != nil {
				return nil, &bridgeerrors.ParseError{Format: "JSON", Message: "invalid list arguments", Err: err}
			}
		}
		items, err := nbs.List(ctx, in.Query, in.Limit, in.Offset)
		if err != nil {
			return nil, err
		}
		return itemsResult{Items: items}, nil
	})

	s.Register("notebook_get", func(ctx context.Context, args json.RawMessage) (any, error) {
		var in notebookIDInput
		if err := json.Unmarshal(args, &in); err != nil {
			return nil, &bridgeerrors.ParseError{Format: "JSON", Message: "invalid get arguments", Err: err}
		}
		nb, err := nbs.Get(ctx, in.ID)
		if bridgeerrors.Is(err, bridgeerrors.ErrNotFound) {
			return struct{}{}, nil
		}
		if err != nil {
			return nil, err
		}
		return nb, nil
	})
}

type serverUUIDInput struct {
	ServerUUID string `json:"mcp_server_uuid"`
}

type setEnvInput struct {
	ServerUUID string          `json:"mcp_server_uuid"`
	Env        json.RawMessage `json:"env"`
}

type notebookCreateInput struct {
	Title string `json:"title,omitempty"`
	Body  string `json:"body"`
}

type notebookAppendInput struct {
	ID    int64  `json:"id"`
	Delta string `json:"delta"`
}

type notebookIDInput struct {
	ID int64 `json:"id"`
}

type notebookListInput struct {
	Query  string `json:"query,omitempty"`
	Limit  int64  `json:"limit,omitempty"`
	Offset int64  `json:"offset,omitempty"`
}

type rowsAffectedResult struct {
	RowsAffected int64 `json:"rows_affected"`
}

type idResult struct {
	ID int64 `json:"id"`
}

type itemsResult struct {
	Items []notebook.Item `json:"items"`
}

type envResult struct {
	Env json.RawMessage `json:"env"`
}
