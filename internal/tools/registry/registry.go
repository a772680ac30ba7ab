// Package registry tracks active MCP server registrations and their
// per-server environment variables in two fixed tables.
package registry

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"

	bridgeerrors "github.com/toolwire/sqlbridge/core/errors"
)

const schema = `
CREATE TABLE IF NOT EXISTS active_mcp_servers (
	mcp_server_uuid TEXT PRIMARY KEY
);
CREATE TABLE IF NOT EXISTS mcp_environment_variables (
	mcp_server_uuid TEXT PRIMARY KEY,
	environment_variables TEXT NOT NULL
);
`

// Registry persists server registrations.
type Registry struct {
	db *sql.DB
}

// New wraps db. Call EnsureSchema before first use on a fresh database.
func New(db *sql.DB) *Registry {
	return &Registry{db: db}
}

// EnsureSchema creates the backing tables when missing.
func (r *Registry) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, schema); err != nil {
		return bridgeerrors.NewExecution("create registry schema", err)
	}
	return nil
}

// Register records a server UUID. Registering an already-known UUID is a
// no-op and reports zero affected rows.
func (r *Registry) Register(ctx context.Context, serverUUID string) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		"INSERT OR IGNORE INTO active_mcp_servers (mcp_server_uuid) VALUES (?)", serverUUID)
	if err != nil {
		return 0, bridgeerrors.NewExecution("register server", err)
	}
	return res.RowsAffected()
}

// Unregister removes a server UUID.
func (r *Registry) Unregister(ctx context.Context, serverUUID string) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		"DELETE FROM active_mcp_servers WHERE mcp_server_uuid = ?", serverUUID)
	if err != nil {
		return 0, bridgeerrors.NewExecution("unregister server", err)
	}
	return res.RowsAffected()
}

// SetEnv stores an environment value for a server UUID as compact JSON
// text, replacing any previous value. Any JSON value is accepted, not
// just string maps.
func (r *Registry) SetEnv(ctx context.Context, serverUUID string, env json.RawMessage) (int64, error) {
	var buf bytes.Buffer
	if err := json.Compact(&buf, env); err != nil {
		return 0, bridgeerrors.NewParse("JSON", "invalid environment value")
	}
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO mcp_environment_variables (mcp_server_uuid, environment_variables) VALUES (?, ?)
		 ON CONFLICT(mcp_server_uuid) DO UPDATE SET environment_variables=excluded.environment_variables`,
		serverUUID, buf.String())
	if err != nil {
		return 0, bridgeerrors.NewExecution("set environment variables", err)
	}
	return res.RowsAffected()
}

// GetEnv returns the stored environment JSON for a server UUID. An unknown
// UUID or unparseable stored text yields a JSON null rather than an error.
func (r *Registry) GetEnv(ctx context.Context, serverUUID string) (json.RawMessage, error) {
	var text string
	err := r.db.QueryRowContext(ctx,
		"SELECT environment_variables FROM mcp_environment_variables WHERE mcp_server_uuid = ?",
		serverUUID).Scan(&text)
	switch {
	case err == sql.ErrNoRows:
		return json.RawMessage("null"), nil
	case err != nil:
		return nil, bridgeerrors.NewExecution("get environment variables", err)
	}
	if !json.Valid([]byte(text)) {
		return json.RawMessage("null"), nil
	}
	return json.RawMessage(text), nil
}
