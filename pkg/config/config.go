package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Validation errors.
var (
	ErrInvalidEngine         = errors.New("scraper.engine must be 'browser' or 'static'")
	ErrInvalidStoreDriver    = errors.New("store.driver must be 'sqlite', 'mongo' or 'postgres'")
	ErrInvalidNavTimeout     = errors.New("scraper.navigation_timeout_ms must be at least 1")
	ErrInvalidSelectorWait   = errors.New("scraper.selector_timeout_ms must be at least 1")
	ErrInvalidMaxAttempts    = errors.New("scraper.retry.max_attempts must be between 1 and 10")
	ErrInvalidInitialDelay   = errors.New("scraper.retry.initial_delay_ms must be non-negative")
	ErrInvalidCategoryWorker = errors.New("scraper.category_workers must be at least 1")
	ErrMissingBaseURL        = errors.New("idealo.base_url is required")
	ErrMissingSeedPath       = errors.New("idealo.seed_path is required")
	ErrMissingSelectors      = errors.New("idealo.selectors.listing_item, next_page and offer are required")
	ErrMissingMongoURI       = errors.New("store.mongo_uri is required for the mongo driver")
	ErrMissingPostgresDSN    = errors.New("store.postgres_dsn is required for the postgres driver")
)

const maxRetryAttempts = 10

// RetryConfig controls retries of transient page failures.
type RetryConfig struct {
	MaxAttempts    int `yaml:"max_attempts"`
	InitialDelayMs int `yaml:"initial_delay_ms"`
}

// InitialDelay is the wait before the first retry; later waits double.
func (r RetryConfig) InitialDelay() time.Duration {
	return time.Duration(r.InitialDelayMs) * time.Millisecond
}

// ScraperConfig holds general scraper settings.
type ScraperConfig struct {
	Engine              string      `yaml:"engine"`
	Workers             string      `yaml:"workers"`
	CategoryWorkers     int         `yaml:"category_workers"`
	Headless            bool        `yaml:"headless"`
	NavigationTimeoutMs int         `yaml:"navigation_timeout_ms"`
	SelectorTimeoutMs   int         `yaml:"selector_timeout_ms"`
	UserAgents          []string    `yaml:"user_agents"`
	OverwriteEmpty      bool        `yaml:"overwrite_empty_offers"`
	Retry               RetryConfig `yaml:"retry"`
}

// NavigationTimeout bounds a single page load.
func (s ScraperConfig) NavigationTimeout() time.Duration {
	return time.Duration(s.NavigationTimeoutMs) * time.Millisecond
}

// SelectorTimeout bounds the wait for offers on a product page.
func (s ScraperConfig) SelectorTimeout() time.Duration {
	return time.Duration(s.SelectorTimeoutMs) * time.Millisecond
}

// SelectorConfig holds the CSS selectors of the idealo markup.
type SelectorConfig struct {
	ListingItem string `yaml:"listing_item"`
	NextPage    string `yaml:"next_page"`
	Offer       string `yaml:"offer"`
}

// IdealoConfig holds settings specific to idealo.
type IdealoConfig struct {
	BaseURL        string         `yaml:"base_url"`
	SeedPath       string         `yaml:"seed_path"`
	CurrencySymbol string         `yaml:"currency_symbol"`
	Selectors      SelectorConfig `yaml:"selectors"`
}

// StoreConfig selects and configures the product store.
type StoreConfig struct {
	Driver          string `yaml:"driver"`
	SQLitePath      string `yaml:"sqlite_path"`
	MongoURI        string `yaml:"mongo_uri"`
	MongoDatabase   string `yaml:"mongo_database"`
	MongoCollection string `yaml:"mongo_collection"`
	PostgresDSN     string `yaml:"postgres_dsn"`
	PostgresTable   string `yaml:"postgres_table"`
}

// ServerConfig configures the products API.
type ServerConfig struct {
	Port string `yaml:"port"`
}

// Config is the complete structure for the config.yml file.
type Config struct {
	Scraper ScraperConfig `yaml:"scraper"`
	Idealo  IdealoConfig  `yaml:"idealo"`
	Store   StoreConfig   `yaml:"store"`
	Server  ServerConfig  `yaml:"server"`
}

// Default returns the configuration used when config.yml leaves a value out.
func Default() *Config {
	return &Config{
		Scraper: ScraperConfig{
			Engine:              "browser",
			Workers:             "1",
			CategoryWorkers:     1,
			Headless:            true,
			NavigationTimeoutMs: 60000,
			SelectorTimeoutMs:   10000,
			Retry: RetryConfig{
				MaxAttempts:    3,
				InitialDelayMs: 1000,
			},
		},
		Idealo: IdealoConfig{
			BaseURL:        "https://www.idealo.co.uk",
			SeedPath:       "./Idealo Scrape UK.xlsx",
			CurrencySymbol: "£",
			Selectors: SelectorConfig{
				ListingItem: `div[data-testid="resultItem"] a[data-testid]`,
				NextPage:    `a[aria-label="next page"]`,
				Offer:       "a.productOffers-listItemOfferLink",
			},
		},
		Store: StoreConfig{
			Driver:          "sqlite",
			SQLitePath:      "products.db",
			MongoDatabase:   "idealo_scraper",
			MongoCollection: "products",
			PostgresTable:   "products",
		},
		Server: ServerConfig{Port: "8080"},
	}
}

// LoadConfig reads filepath over the defaults, applies environment overrides
// (including a .env file when present) and validates the result.
// A missing file is not an error.
func LoadConfig(filepath string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(filepath)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("error unmarshalling config YAML: %w", err)
		}
	case errors.Is(err, os.ErrNotExist):
	default:
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	// load .env if present but don't error if not present
	_ = godotenv.Load()
	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	setString := func(dst *string, key string) {
		if v := strings.TrimSpace(os.Getenv(key)); v != "" {
			*dst = v
		}
	}
	setString(&c.Idealo.SeedPath, "SEED_PATH")
	setString(&c.Scraper.Workers, "SCRAPER_WORKERS")
	setString(&c.Scraper.Engine, "SCRAPER_ENGINE")
	setString(&c.Store.Driver, "STORE_DRIVER")
	setString(&c.Store.SQLitePath, "SQLITE_PATH")
	setString(&c.Store.MongoURI, "MONGODB_URI")
	setString(&c.Store.MongoDatabase, "MONGO_DB_NAME")
	setString(&c.Store.PostgresDSN, "POSTGRES_DSN")
	setString(&c.Server.Port, "PORT")

	if v := os.Getenv("SELECTOR_TIMEOUT_MS"); v != "" {
		if ms, err := strconv.Atoi(v); err == nil {
			c.Scraper.SelectorTimeoutMs = ms
		}
	}
}

// Validate checks the configuration for values the scraper cannot run with.
func (c *Config) Validate() error {
	switch c.Scraper.Engine {
	case "browser", "static":
	default:
		return ErrInvalidEngine
	}
	if c.Scraper.NavigationTimeoutMs < 1 {
		return ErrInvalidNavTimeout
	}
	if c.Scraper.SelectorTimeoutMs < 1 {
		return ErrInvalidSelectorWait
	}
	if c.Scraper.Retry.MaxAttempts < 1 || c.Scraper.Retry.MaxAttempts > maxRetryAttempts {
		return ErrInvalidMaxAttempts
	}
	if c.Scraper.Retry.InitialDelayMs < 0 {
		return ErrInvalidInitialDelay
	}
	if c.Scraper.CategoryWorkers < 1 {
		return ErrInvalidCategoryWorker
	}
	if c.Idealo.BaseURL == "" {
		return ErrMissingBaseURL
	}
	if c.Idealo.SeedPath == "" {
		return ErrMissingSeedPath
	}
	s := c.Idealo.Selectors
	if s.ListingItem == "" || s.NextPage == "" || s.Offer == "" {
		return ErrMissingSelectors
	}
	switch c.Store.Driver {
	case "sqlite":
	case "mongo":
		if c.Store.MongoURI == "" {
			return ErrMissingMongoURI
		}
	case "postgres":
		if c.Store.PostgresDSN == "" {
			return ErrMissingPostgresDSN
		}
	default:
		return ErrInvalidStoreDriver
	}
	return nil
}
