package app

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"

	"github.com/munaray/idealo/internal/browser"
	"github.com/munaray/idealo/internal/database"
	"github.com/munaray/idealo/internal/ingest"
	"github.com/munaray/idealo/internal/models"
	"github.com/munaray/idealo/internal/scraper"
	"github.com/munaray/idealo/internal/scraper/idealo"
	"github.com/munaray/idealo/internal/seed"
	"github.com/munaray/idealo/internal/static"
	"github.com/munaray/idealo/pkg/config"
	"github.com/munaray/idealo/utils"
)

// App is the main application structure holding all dependencies.
type App struct {
	Config *config.Config
	Repo   database.Repository
	Sink   ingest.Sink
}

// New loads configPath and connects to the configured store.
func New(ctx context.Context, configPath string) (*App, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return NewWithConfig(ctx, cfg)
}

func NewWithConfig(ctx context.Context, cfg *config.Config) (*App, error) {
	repo, err := database.Open(ctx, cfg.Store)
	if err != nil {
		return nil, fmt.Errorf("open %s store: %w", cfg.Store.Driver, err)
	}
	return &App{Config: cfg, Repo: repo, Sink: ingest.LogSink{}}, nil
}

func (a *App) Close() error {
	return a.Repo.Close()
}

// RunScraper crawls every category of the seed workbook and upserts the offers
// it finds. seedPath overrides idealo.seed_path when set. Only startup
// failures are returned; per-product failures are counted in the summary.
func (a *App) RunScraper(ctx context.Context, seedPath string) (ingest.Summary, error) {
	log.Println("--- Starting Offer Scraping Task ---")

	if seedPath == "" {
		seedPath = a.Config.Idealo.SeedPath
	}
	seeds, err := seed.LoadSeedURLs(seedPath)
	if err != nil {
		return ingest.Summary{}, err
	}
	for i, s := range seeds {
		seeds[i] = scraper.ResolveURL(a.Config.Idealo.BaseURL, s)
	}
	seeds = utils.UniqueStrings(seeds)
	log.Printf("Loaded %d category URLs from %s", len(seeds), seedPath)

	fetcher, closeFetcher, err := a.newFetcher()
	if err != nil {
		return ingest.Summary{}, err
	}
	defer closeFetcher()

	idealoScraper := idealo.New(fetcher, a.Config.Scraper, a.Config.Idealo)
	numWorkers := utils.WorkerCount(a.Config.Scraper.Workers)
	log.Printf("Using %s engine with %d product workers and %d category workers",
		a.Config.Scraper.Engine, numWorkers, a.Config.Scraper.CategoryWorkers)

	coordinator := ingest.NewCoordinator(idealoScraper, idealoScraper, a.Repo, a.Sink, ingest.Options{
		ProductWorkers:  numWorkers,
		CategoryWorkers: a.Config.Scraper.CategoryWorkers,
		Retry: scraper.RetryPolicy{
			MaxAttempts:  a.Config.Scraper.Retry.MaxAttempts,
			InitialDelay: a.Config.Scraper.Retry.InitialDelay(),
		},
		OverwriteEmpty: a.Config.Scraper.OverwriteEmpty,
	})
	summary := coordinator.Run(ctx, seeds)

	log.Println("--- Offer Scraping Task Finished ---")
	return summary, nil
}

// newFetcher builds the configured engine. The returned func releases it.
func (a *App) newFetcher() (scraper.PageFetcher, func(), error) {
	conf := a.Config.Scraper
	identity := scraper.NewRandomUserAgent(conf.UserAgents)

	switch conf.Engine {
	case "static":
		return static.NewFetcher(identity, conf.NavigationTimeout()), func() {}, nil
	default:
		b, err := browser.Launch(conf.Headless)
		if err != nil {
			return nil, nil, err
		}
		closeBrowser := func() {
			if err := b.Close(); err != nil {
				log.Printf("Failed to close browser: %v", err)
			}
		}
		return browser.NewFetcher(b, identity, conf.NavigationTimeout()), closeBrowser, nil
	}
}

// ListProducts writes one JSON line per stored product, newest first.
// A limit below 1 lists everything.
func (a *App) ListProducts(ctx context.Context, w io.Writer, limit int) error {
	products, err := a.Repo.List(ctx, models.ProductFilters{Limit: limit})
	if err != nil {
		return err
	}
	enc := json.NewEncoder(w)
	for _, p := range products {
		if err := enc.Encode(p); err != nil {
			return err
		}
	}
	total, err := a.Repo.Count(ctx)
	if err != nil {
		return err
	}
	log.Printf("Listed %d of %d stored products", len(products), total)
	return nil
}
