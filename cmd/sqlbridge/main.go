// Command sqlbridge exposes SQLite CRUD as remotely invokable tools.
// It serves the tool set over stdio (the default) or WebSocket.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"

	"github.com/alecthomas/kong"

	"github.com/toolwire/sqlbridge/core/sqlite"
	"github.com/toolwire/sqlbridge/core/store"
	"github.com/toolwire/sqlbridge/internal/config"
	"github.com/toolwire/sqlbridge/internal/logging"
	"github.com/toolwire/sqlbridge/internal/server"
	"github.com/toolwire/sqlbridge/internal/tools/notebook"
	"github.com/toolwire/sqlbridge/internal/tools/registry"
)

const version = "0.1.0"

// CLI defines the command-line interface for sqlbridge.
var CLI struct {
	Config string `help:"Path to config file (TOML)" short:"c" type:"path"`

	Serve   ServeCmd   `cmd:"" default:"1" help:"Serve tools over stdio"`
	Listen  ListenCmd  `cmd:"" help:"Serve tools over WebSocket"`
	Info    InfoCmd    `cmd:"" help:"Print driver and database information"`
	Version VersionCmd `cmd:"" help:"Print version information"`
}

// setup loads configuration, initializes logging, and opens the store
// with the management-tool schema in place.
func setup() (*config.Config, *store.Store, error) {
	cfg, err := config.Load(CLI.Config)
	if err != nil {
		return nil, nil, err
	}
	logging.InitLogger(logging.ParseLevel(cfg.Log.Level), logging.ParseFormat(cfg.Log.Format))

	st, err := store.Open(cfg.DSN(), store.Options{MaxConns: cfg.Database.MaxConns})
	if err != nil {
		return nil, nil, err
	}

	ctx := context.Background()
	if err := registry.New(st.DB()).EnsureSchema(ctx); err != nil {
		st.Close()
		return nil, nil, err
	}
	if err := notebook.New(st.DB()).EnsureSchema(ctx); err != nil {
		st.Close()
		return nil, nil, err
	}
	return cfg, st, nil
}

// ServeCmd serves the tool set over stdio.
type ServeCmd struct{}

func (c *ServeCmd) Run() error {
	_, st, err := setup()
	if err != nil {
		return err
	}
	defer st.Close()

	srv := server.New(st)
	logging.ServerStartup("sqlbridge", "stdio", "tools", len(srv.Tools()))
	return srv.ServeStdio(context.Background(), os.Stdin, os.Stdout)
}

// ListenCmd serves the tool set over a WebSocket endpoint.
type ListenCmd struct {
	Port    int      `help:"HTTP server port" default:"8080"`
	Path    string   `help:"WebSocket endpoint path" default:"/ws"`
	Origins []string `help:"Allowed WebSocket origins" default:"*"`
}

func (c *ListenCmd) Run() error {
	_, st, err := setup()
	if err != nil {
		return err
	}
	defer st.Close()

	srv := server.New(st)
	wsCfg := server.WebSocketConfig{AllowedOrigins: c.Origins}

	mux := http.NewServeMux()
	mux.Handle(c.Path, logging.CombinedMiddleware(srv.WebSocketHandler(wsCfg)))

	addr := fmt.Sprintf(":%d", c.Port)
	logging.ServerStartup("sqlbridge", "websocket", "addr", addr, "path", c.Path)
	return http.ListenAndServe(addr, mux)
}

// InfoCmd prints the active driver configuration and resolved database path.
type InfoCmd struct{}

func (c *InfoCmd) Run() error {
	cfg, err := config.Load(CLI.Config)
	if err != nil {
		return err
	}

	out := struct {
		Version  string      `json:"version"`
		Driver   sqlite.Info `json:"driver"`
		Database string      `json:"database"`
	}{
		Version:  version,
		Driver:   sqlite.GetInfo(),
		Database: cfg.DSN(),
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

type VersionCmd struct{}

func (c *VersionCmd) Run() error {
	fmt.Printf("sqlbridge version %s\n", version)
	return nil
}

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name("sqlbridge"),
		kong.Description("SQLite CRUD tool server"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
	)
	err := ctx.Run(ctx)
	ctx.FatalIfErrorf(err)
}
