package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/munaray/idealo/internal/app"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	configPath := flag.String("config", "config.yml", "Path to the YAML config file")
	task := flag.String("task", "scrape", "Task to run: scrape or list")
	seedPath := flag.String("seed", "", "Seed workbook, overrides idealo.seed_path")
	limit := flag.Int("limit", 0, "Products to print for -task list, 0 for all")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	application, err := app.New(ctx, *configPath)
	if err != nil {
		log.Fatalf("Startup failed: %v", err)
	}
	defer application.Close()

	log.Printf("Running task: %s", *task)

	switch *task {
	case "scrape":
		if _, err := application.RunScraper(ctx, *seedPath); err != nil {
			application.Close()
			log.Fatalf("Scrape task failed: %v", err)
		}

	case "list":
		if err := application.ListProducts(ctx, os.Stdout, *limit); err != nil {
			application.Close()
			log.Fatalf("List task failed: %v", err)
		}

	default:
		application.Close()
		log.Fatalf("Unknown task: %s.", *task)
	}
}
