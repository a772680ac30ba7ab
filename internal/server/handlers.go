package server

import (
	"context"
	"encoding/json"

	"github.com/toolwire/sqlbridge/core/dynval"
	bridgeerrors "github.com/toolwire/sqlbridge/core/errors"
	"github.com/toolwire/sqlbridge/core/sqlbuild"
	"github.com/toolwire/sqlbridge/core/store"
)

func (s *Server) registerCRUD() {
	s.Register("sqlite_insert", s.handleInsert)
	s.Register("sqlite_select", s.handleSelect)
	s.Register("sqlite_update", s.handleUpdate)
	s.Register("sqlite_delete", s.handleDelete)
}

type insertInput struct {
	Table  string          `json:"table"`
	Values json.RawMessage `json:"values"`
}

type insertResult struct {
	LastInsertRowID int64 `json:"last_insert_rowid"`
}

func (s *Server) handleInsert(ctx context.Context, args json.RawMessage) (any, error) {
	var in insertInput
	if err := json.Unmarshal(args, &in); err != nil {
		return nil, &bridgeerrors.ParseError{Format: "JSON", Message: "invalid insert arguments", Err: err}
	}
	values, err := dynval.DecodeFields(in.Values)
	if err != nil {
		return nil, &bridgeerrors.ParseError{Format: "JSON", Message: "invalid insert values", Err: err}
	}
	stmt, err := sqlbuild.Insert(in.Table, values)
	if err != nil {
		return nil, err
	}
	res, err := s.exec.Exec(ctx, stmt)
	if err != nil {
		return nil, err
	}
	return insertResult{LastInsertRowID: res.LastInsertID}, nil
}

type selectInput struct {
	Table   string          `json:"table"`
	Columns []string        `json:"columns,omitempty"`
	Where   string          `json:"where,omitempty"`
	Params  json.RawMessage `json:"params,omitempty"`
	OrderBy string          `json:"order_by,omitempty"`
	Limit   *int64          `json:"limit,omitempty"`
	Offset  *int64          `json:"offset,omitempty"`
}

type rowsResult struct {
	Rows []store.Row `json:"rows"`
}

func (s *Server) handleSelect(ctx context.Context, args json.RawMessage) (any, error) {
	var in selectInput
	if err := json.Unmarshal(args, &in); err != nil {
		return nil, &bridgeerrors.ParseError{Format: "JSON", Message: "invalid select arguments", Err: err}
	}
	params, err := decodeParams(in.Params)
	if err != nil {
		return nil, err
	}
	stmt, err := sqlbuild.Select(in.Table, in.Columns, in.Where, params, in.OrderBy, in.Limit, in.Offset)
	if err != nil {
		return nil, err
	}
	rows, err := s.exec.Query(ctx, stmt)
	if err != nil {
		return nil, err
	}
	if rows == nil {
		rows = []store.Row{}
	}
	return rowsResult{Rows: rows}, nil
}

type updateInput struct {
	Table  string          `json:"table"`
	Set    json.RawMessage `json:"set"`
	Where  string          `json:"where,omitempty"`
	Params json.RawMessage `json:"params,omitempty"`
}

type affectedResult struct {
	AffectedRowCount int64 `json:"affected_row_count"`
}

func (s *Server) handleUpdate(ctx context.Context, args json.RawMessage) (any, error) {
	var in updateInput
	if err := json.Unmarshal(args, &in); err != nil {
		return nil, &bridgeerrors.ParseError{Format: "JSON", Message: "invalid update arguments", Err: err}
	}
	set, err := dynval.DecodeFields(in.Set)
	if err != nil {
		return nil, &bridgeerrors.ParseError{Format: "JSON", Message: "invalid update assignments", Err: err}
	}
	params, err := decodeParams(in.Params)
	if err != nil {
		return nil, err
	}
	stmt, err := sqlbuild.Update(in.Table, set, in.Where, params)
	if err != nil {
		return nil, err
	}
	res, err := s.exec.Exec(ctx, stmt)
	if err != nil {
		return nil, err
	}
	return affectedResult{AffectedRowCount: res.RowsAffected}, nil
}

type deleteInput struct {
	Table  string          `json:"table"`
	Where  string          `json:"where,omitempty"`
	Params json.RawMessage `json:"params,omitempty"`
}

func (s *Server) handleDelete(ctx context.Context, args json.RawMessage) (any, error) {
	var in deleteInput
	if err := json.Unmarshal(args, &in); err != nil {
		return nil, &bridgeerrors.ParseError{Format: "JSON", Message: "invalid delete arguments", Err: err}
	}
	params, err := decodeParams(in.Params)
	if err != nil {
		return nil, err
	}
	stmt, err := sqlbuild.Delete(in.Table, in.Where, params)
	if err != nil {
		return nil, err
	}
	res, err := s.exec.Exec(ctx, stmt)
	if err != nil {
		return nil, err
	}
	return affectedResult{AffectedRowCount: res.RowsAffected}, nil
}

func decodeParams(raw json.RawMessage) ([]dynval.Value, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	params, err := dynval.DecodeList(raw)
	if err != nil {
		return nil, &bridgeerrors.ParseError{Format: "JSON", Message: "invalid parameter list", Err: err}
	}
	return params, nil
}
