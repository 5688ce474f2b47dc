package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/peterkuimelis/mtgdeck/internal/config"
	"github.com/peterkuimelis/mtgdeck/internal/deckstore"
	"github.com/peterkuimelis/mtgdeck/internal/fetch"
	"github.com/peterkuimelis/mtgdeck/internal/log"
	"github.com/peterkuimelis/mtgdeck/internal/sites"
	"github.com/peterkuimelis/mtgdeck/internal/web"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	addr := flag.String("addr", cfg.WebAddr, "HTTP address to listen on")
	decksFile := flag.String("decks", cfg.DecksFile, "path to a YAML deck library to preload")
	flag.Parse()

	logger := log.Setup(cfg.LogLevel, os.Stderr)

	store := deckstore.New(log.NewSlogLogger(logger))
	if *decksFile != "" {
		if _, err := store.LoadLibrary(*decksFile); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	}
	registry := sites.NewRegistry(fetch.New(cfg.FetchOptions())).WithLogger(logger)

	srv := web.NewServer(store, registry, logger)
	logger.Info("mtgdeck web UI listening", slog.String("addr", *addr))
	if err := srv.ListenAndServe(*addr); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
