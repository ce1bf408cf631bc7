// Command mcp-server is a standalone HTTP tool server for gocalc.
//
// Exposes gocalc tools as an HTTP endpoint for AI agent frameworks.
//
// Usage:
//
//	go run ./cmd/mcp-server -port 8080 -config gocalc.yaml
//
// Tool call endpoint: POST /tool
// Schema endpoint:    GET  /schema
// Health endpoint:    GET  /health
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	gocalc "github.com/njchilds90/gocalc"
	"github.com/njchilds90/gocalc/internal/config"
	"github.com/njchilds90/gocalc/internal/logging"
	"github.com/njchilds90/gocalc/internal/server"
)

func main() {
	port := flag.Int("port", 0, "Port to listen on (overrides server.addr)")
	confPath := flag.String("config", "", "Path to a YAML config file")
	flag.Parse()

	conf, err := config.Load(*confPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(2)
	}
	if *port > 0 {
		conf.Server.Addr = fmt.Sprintf(":%d", *port)
	}

	logger := logging.Init(conf.Log, os.Stderr)
	in := gocalc.NewIntegrator(gocalc.WithMaxDepth(conf.MaxDepth), gocalc.WithLogger(logger))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := server.New(conf.Server, in, logger).Run(ctx); err != nil {
		slog.Error("server stopped", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
