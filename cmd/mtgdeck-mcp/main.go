package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/mark3labs/mcp-go/server"

	"github.com/peterkuimelis/mtgdeck/internal/config"
	"github.com/peterkuimelis/mtgdeck/internal/deckstore"
	"github.com/peterkuimelis/mtgdeck/internal/fetch"
	"github.com/peterkuimelis/mtgdeck/internal/log"
	mtgmcp "github.com/peterkuimelis/mtgdeck/internal/mcp"
	"github.com/peterkuimelis/mtgdeck/internal/sites"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	decks := flag.String("decks", cfg.DecksFile, "path to a YAML deck library to preload")
	transport := flag.String("transport", cfg.Transport, "transport: stdio or http")
	port := flag.Int("port", cfg.Port, "HTTP port for the http transport")
	level := flag.String("log-level", cfg.LogLevel, "log level (debug, info, warn, error)")
	flag.Parse()

	cfg.DecksFile, cfg.Transport, cfg.Port, cfg.LogLevel = *decks, *transport, *port, *level
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	// stdout carries the protocol on stdio
	logger := log.Setup(cfg.LogLevel, os.Stderr)

	client := fetch.New(cfg.FetchOptions())
	ts := &mtgmcp.Toolset{
		Store:    deckstore.New(log.NewSlogLogger(logger)),
		Registry: sites.NewRegistry(client).WithLogger(logger),
		Client:   client,
	}
	if cfg.DecksFile != "" {
		names, err := ts.Store.LoadLibrary(cfg.DecksFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		logger.Info("deck library loaded", slog.String("path", cfg.DecksFile), slog.Int("decks", len(names)))
	}

	s := server.NewMCPServer("mtgdeck", "1.0.0")
	mtgmcp.RegisterTools(s, ts)

	switch cfg.Transport {
	case "http":
		addr := fmt.Sprintf(":%d", cfg.Port)
		logger.Info("mtgdeck MCP server listening", slog.String("addr", addr))
		err = server.NewStreamableHTTPServer(s).Start(addr)
	default:
		err = server.ServeStdio(s)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
