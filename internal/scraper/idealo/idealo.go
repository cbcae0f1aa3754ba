package idealo

import (
	"time"

	"github.com/munaray/idealo/internal/scraper"
	"github.com/munaray/idealo/pkg/config"
)

const notAvailable = "N/A"

// IdealoScraper walks idealo category listings and reads offer tables from
// product pages through a PageFetcher.
type IdealoScraper struct {
	Fetcher         scraper.PageFetcher
	Selectors       config.SelectorConfig
	CurrencySymbol  string
	SelectorTimeout time.Duration
	ListingRetry    scraper.RetryPolicy
}

// New builds a scraper from the idealo and scraper sections of the config.
func New(fetcher scraper.PageFetcher, scraperConf config.ScraperConfig, idealoConf config.IdealoConfig) *IdealoScraper {
	return &IdealoScraper{
		Fetcher:         fetcher,
		Selectors:       idealoConf.Selectors,
		CurrencySymbol:  idealoConf.CurrencySymbol,
		SelectorTimeout: scraperConf.SelectorTimeout(),
		ListingRetry: scraper.RetryPolicy{
			MaxAttempts:  scraperConf.Retry.MaxAttempts,
			InitialDelay: scraperConf.Retry.InitialDelay(),
		},
	}
}
