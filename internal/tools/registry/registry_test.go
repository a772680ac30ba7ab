package registry

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	bridgeerrors "github.com/toolwire/sqlbridge/core/errors"
	"github.com/toolwire/sqlbridge/core/sqlite"
)

func openTestRegistry(t *testing.T) *Registry {
	t.Helper()
	db, err := sqlite.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	r := New(db)
	if err := r.EnsureSchema(context.Background()); err != nil {
		t.Fatalf("ensure schema: %v", err)
	}
	return r
}

func TestRegisterIdempotent(t *testing.T) {
	r := openTestRegistry(t)
	ctx := context.Background()

	n, err := r.Register(ctx, "srv-1")
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if n != 1 {
		t.Errorf("first register affected %d rows, want 1", n)
	}

	n, err = r.Register(ctx, "srv-1")
	if err != nil {
		t.Fatalf("second register: %v", err)
	}
	if n != 0 {
		t.Errorf("duplicate register affected %d rows, want 0", n)
	}
}

func TestUnregister(t *testing.T) {
	r := openTestRegistry(t)
	ctx := context.Background()

	if _, err := r.Register(ctx, "srv-1"); err != nil {
		t.Fatalf("register: %v", err)
	}

	n, err := r.Unregister(ctx, "srv-1")
	if err != nil {
		t.Fatalf("unregister: %v", err)
	}
	if n != 1 {
		t.Errorf("unregister affected %d rows, want 1", n)
	}

	n, err = r.Unregister(ctx, "srv-unknown")
	if err != nil {
		t.Fatalf("unregister unknown: %v", err)
	}
	if n != 0 {
		t.Errorf("unknown unregister affected %d rows, want 0", n)
	}
}

func TestSetEnvUpsert(t *testing.T) {
	r := openTestRegistry(t)
	ctx := context.Background()

	if _, err := r.SetEnv(ctx, "srv-1", json.RawMessage(`{"PATH":"/bin"}`)); err != nil {
		t.Fatalf("set env: %v", err)
	}
	if _, err := r.SetEnv(ctx, "srv-1", json.RawMessage(`{"HOME":"/root"}`)); err != nil {
		t.Fatalf("overwrite env: %v", err)
	}

	raw, err := r.GetEnv(ctx, "srv-1")
	if err != nil {
		t.Fatalf("get env: %v", err)
	}
	var env map[string]string
	if err := json.Unmarshal(raw, &env); err != nil {
		t.Fatalf("unmarshal env: %v", err)
	}
	if len(env) != 1 || env["HOME"] != "/root" {
		t.Errorf("env = %v, want only HOME=/root", env)
	}
}

func TestSetEnvArbitraryValues(t *testing.T) {
	r := openTestRegistry(t)
	ctx := context.Background()

	// Values are not limited to strings: booleans, numbers, and nested
	// objects store as-is.
	in := json.RawMessage(`{"DEBUG": true, "PORT": 8080, "NESTED": {"a": 1}}`)
	if _, err := r.SetEnv(ctx, "srv-1", in); err != nil {
		t.Fatalf("set env: %v", err)
	}

	raw, err := r.GetEnv(ctx, "srv-1")
	if err != nil {
		t.Fatalf("get env: %v", err)
	}
	if string(raw) != `{"DEBUG":true,"PORT":8080,"NESTED":{"a":1}}` {
		t.Errorf("stored env = %s", raw)
	}

	// A bare scalar is a valid environment value too.
	if _, err := r.SetEnv(ctx, "srv-2", json.RawMessage(`"standalone"`)); err != nil {
		t.Fatalf("set scalar env: %v", err)
	}
	raw, err = r.GetEnv(ctx, "srv-2")
	if err != nil {
		t.Fatalf("get scalar env: %v", err)
	}
	if string(raw) != `"standalone"` {
		t.Errorf("stored env = %s", raw)
	}
}

func TestSetEnvRejectsInvalidJSON(t *testing.T) {
	r := openTestRegistry(t)

	_, err := r.SetEnv(context.Background(), "srv-1", json.RawMessage(`{not json`))
	if !bridgeerrors.Is(err, bridgeerrors.ErrInvalidInput) {
		t.Fatalf("err = %v, want invalid-input", err)
	}
}

func TestGetEnvUnknown(t *testing.T) {
	r := openTestRegistry(t)

	raw, err := r.GetEnv(context.Background(), "srv-missing")
	if err != nil {
		t.Fatalf("get env: %v", err)
	}
	if string(raw) != "null" {
		t.Errorf("got %s, want null", raw)
	}
}

func TestGetEnvCorruptText(t *testing.T) {
	r := openTestRegistry(t)
	ctx := context.Background()

	if _, err := r.db.ExecContext(ctx,
		"INSERT INTO mcp_environment_variables (mcp_server_uuid, environment_variables) VALUES (?, ?)",
		"srv-1", "{not json"); err != nil {
		t.Fatalf("seed corrupt row: %v", err)
	}

	raw, err := r.GetEnv(ctx, "srv-1")
	if err != nil {
		t.Fatalf("get env: %v", err)
	}
	if string(raw) != "null" {
		t.Errorf("got %s, want null", raw)
	}
}

func TestEnsureSchemaIdempotent(t *testing.T) {
	r := openTestRegistry(t)
	if err := r.EnsureSchema(context.Background()); err != nil {
		t.Fatalf("second ensure: %v", err)
	}
}
