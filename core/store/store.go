// Package store executes bound statements against the SQLite store and
// marshals result rows back into the dynamic value model.
//
// A Store owns the pooled connection handle for the process. It performs no
// retries and no transaction management: each operation is a single
// statement, atomic per the store's own guarantees, and store failures are
// surfaced verbatim as ExecutionError.
package store

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/toolwire/sqlbridge/core/dynval"
	"github.com/toolwire/sqlbridge/core/errors"
	"github.com/toolwire/sqlbridge/core/sqlbuild"
	"github.com/toolwire/sqlbridge/core/sqlite"
)

// Options configures the connection pool.
type Options struct {
	// MaxConns caps the number of open connections. Zero keeps the
	// driver default.
	MaxConns int
}

// Store is the pooled store handle. It is safe for concurrent use; the
// underlying *sql.DB does the connection scoping, acquiring a connection
// per statement and releasing it on every exit path.
type Store struct {
	db *sql.DB
}

// Open opens the SQLite database at dsn and returns a Store around it.
// Journal mode is switched to WAL on a best-effort basis; a store that
// cannot honor the pragma still works.
func Open(dsn string, opts Options) (*Store, error) {
	db, err := sqlite.Open(dsn)
	if err != nil {
		return nil, errors.Wrap(err, "open database")
	}
	if opts.MaxConns > 0 {
		db.SetMaxOpenConns(opts.MaxConns)
	}

	// Best-effort WAL
	_, _ = db.Exec("PRAGMA journal_mode = WAL")

	return &Store{db: db}, nil
}

// New wraps an existing database handle. Useful for tests that want to
// inject a prepared database.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// DB exposes the underlying handle for fixed-schema callers that issue
// hand-written statements against known tables.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Close closes the connection pool.
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping verifies the store is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// ExecResult reports the outcome of a write statement.
type ExecResult struct {
	LastInsertID int64
	RowsAffected int64
}

// Exec runs a write statement. A failure aborts only this operation; the
// pool stays live for subsequent calls.
func (s *Store) Exec(ctx context.Context, stmt *sqlbuild.Statement) (ExecResult, error) {
	args, err := bindArgs(stmt.Args)
	if err != nil {
		return ExecResult{}, err
	}

	res, err := s.db.ExecContext(ctx, stmt.SQL, args...)
	if err != nil {
		return ExecResult{}, errors.NewExecution(stmt.SQL, err)
	}

	var out ExecResult
	if id, err := res.LastInsertId(); err == nil {
		out.LastInsertID = id
	}
	if n, err := res.RowsAffected(); err == nil {
		out.RowsAffected = n
	}
	return out, nil
}

// Query runs a read statement and marshals every column of every row into
// the dynamic value model. Column names come from the store and are not
// identifier-validated.
func (s *Store) Query(ctx context.Context, stmt *sqlbuild.Statement) ([]Row, error) {
	args, err := bindArgs(stmt.Args)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, stmt.SQL, args...)
	if err != nil {
		return nil, errors.NewExecution(stmt.SQL, err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, errors.NewExecution(stmt.SQL, err)
	}

	var out []Row
	for rows.Next() {
		raw := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range raw {
			ptrs[i] = &raw[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, errors.NewExecution(stmt.SQL, err)
		}

		vals := make([]dynval.Value, len(cols))
		for i, rv := range raw {
			vals[i] = MarshalColumn(rv)
		}
		out = append(out, Row{Columns: cols, Values: vals})
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewExecution(stmt.SQL, err)
	}
	return out, nil
}

// Row is one result row: an ordered mapping from store-supplied column
// name to dynamic value.
type Row struct {
	Columns []string
	Values  []dynval.Value
}

// Get returns the value for a column name, scanning in column order.
func (r Row) Get(name string) (dynval.Value, bool) {
	for i, c := range r.Columns {
		if c == name {
			return r.Values[i], true
		}
	}
	return dynval.Null(), false
}

// MarshalJSON encodes the row as a JSON object, preserving the store's
// column order rather than Go's sorted-map order.
func (r Row) MarshalJSON() ([]byte, error) {
	buf := []byte{'{'}
	for i, col := range r.Columns {
		if i > 0 {
			buf = append(buf, ',')
		}
		key, err := json.Marshal(col)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(r.Values[i])
		if err != nil {
			return nil, err
		}
		buf = append(buf, key...)
		buf = append(buf, ':')
		buf = append(buf, val...)
	}
	return append(buf, '}'), nil
}
