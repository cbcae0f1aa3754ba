package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/munaray/idealo/internal/database"
	"github.com/munaray/idealo/internal/server"
	"github.com/munaray/idealo/pkg/config"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	cfg, err := config.LoadConfig("config.yml")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	repo, err := database.Open(ctx, cfg.Store)
	if err != nil {
		log.Fatalf("Failed to open %s store: %v", cfg.Store.Driver, err)
	}
	defer repo.Close()

	log.Println("Starting products API server...")
	if err := server.Start(ctx, repo, cfg.Server); err != nil {
		log.Printf("Server stopped: %v", err)
	}
}
