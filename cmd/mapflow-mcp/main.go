// Command mapflow-mcp serves the module graph editor over MCP on stdio.
//
// Usage:
//
//	mapflow-mcp [-db path] [-log-level level]
//
// Modules are loaded from the project database at startup and written back
// by the save tool. Logs go to stderr so they never mix with the protocol.
package main

import (
	"context"
	"flag"
	"log"
	"os"

	"github.com/mark3labs/mcp-go/server"

	"github.com/MrLongNight/MapFlow-sub000/flow/eval"
	"github.com/MrLongNight/MapFlow-sub000/internal/config"
	"github.com/MrLongNight/MapFlow-sub000/internal/mcpserver"
	"github.com/MrLongNight/MapFlow-sub000/internal/store"
)

func main() {
	dbFlag := flag.String("db", config.DBPath(), "project database path")
	levelFlag := flag.String("log-level", config.LogLevel(), "log level")
	flag.Parse()

	logger, err := config.NewLogger(os.Stderr, *levelFlag)
	if err != nil {
		log.Fatalf("mapflow-mcp: %v", err)
	}

	path, err := config.ExpandHome(*dbFlag)
	if err != nil {
		log.Fatalf("mapflow-mcp: %v", err)
	}

	st, err := store.Open(path, store.WithLogger(logger))
	if err != nil {
		log.Fatalf("mapflow-mcp: %v", err)
	}
	defer st.Close()

	manager, err := st.LoadAll(context.Background())
	if err != nil {
		log.Fatalf("mapflow-mcp: %v", err)
	}

	logger.Info("project loaded", "path", path, "modules", len(manager.Modules()))

	srv := mcpserver.New(
		mcpserver.WithManager(manager),
		mcpserver.WithStore(st),
		mcpserver.WithLogger(logger),
		mcpserver.WithEvalOptions(eval.WithLogger(logger)),
	)

	err = server.ServeStdio(srv.NewMCPServer("mapflow-mcp", "0.1.0"))
	if err != nil {
		logger.Error("serve", "err", err)
		os.Exit(1)
	}
}
