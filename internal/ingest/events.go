package ingest

import (
	"fmt"
	"log"
	"time"

	"github.com/munaray/idealo/internal/database"
)

type EventType string

const (
	CategoryStarted  EventType = "category_started"
	ProductScraped   EventType = "product_scraped"
	ProductSkipped   EventType = "product_skipped"
	ProductFailed    EventType = "product_failed"
	ProductStored    EventType = "product_stored"
	ListingFailed    EventType = "listing_failed"
	CategoryFinished EventType = "category_finished"
	RunCompleted     EventType = "run_completed"
)

// Event is one observable step of a run. Fields not relevant to Type are zero.
type Event struct {
	Type       EventType
	RunID      string
	Time       time.Time
	Category   string
	ProductURL string
	PageURL    string
	Offers     int
	Attempts   int
	Products   int
	Result     database.UpsertResult
	Stage      string
	Err        error
	Summary    *Summary
}

// Sink receives events. The coordinator never calls Emit concurrently.
type Sink interface {
	Emit(Event)
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(Event)

func (f SinkFunc) Emit(e Event) { f(e) }

// MultiSink fans every event out in order.
type MultiSink []Sink

func (m MultiSink) Emit(e Event) {
	for _, s := range m {
		s.Emit(e)
	}
}

// LogSink writes one line per event.
type LogSink struct {
	Logger *log.Logger
}

func (s LogSink) Emit(e Event) {
	l := s.Logger
	if l == nil {
		l = log.Default()
	}
	switch e.Type {
	case CategoryStarted:
		l.Printf("Scraping category: %s", e.Category)
	case ProductScraped:
		l.Printf("Found %d offers on %s (attempts: %d)", e.Offers, e.ProductURL, e.Attempts)
	case ProductSkipped:
		l.Printf("Skipping %s: %v", e.ProductURL, e.Err)
	case ProductFailed:
		l.Printf("Failed to %s %s after %d attempt(s): %v", e.Stage, e.ProductURL, e.Attempts, e.Err)
	case ProductStored:
		l.Printf("Saved offers for %s (%s)", e.ProductURL, e.Result)
	case ListingFailed:
		l.Printf("Listing of %s ended at %s after %d product links: %v", e.Category, e.PageURL, e.Products, e.Err)
	case CategoryFinished:
		l.Printf("Finished category %s: %d product links", e.Category, e.Products)
	case RunCompleted:
		if e.Summary != nil {
			l.Printf("Run completed: %s", e.Summary)
		}
	default:
		l.Printf("%s: %+v", e.Type, e)
	}
}

// Summary counts the outcomes of one run. Failed counts failed products and
// failed listing pages; ListingsFailed counts the latter alone.
type Summary struct {
	RunID          string
	Categories     int
	Products       int
	Created        int
	Updated        int
	Skipped        int
	Failed         int
	ListingsFailed int
	Duration       time.Duration
}

func (s Summary) String() string {
	return fmt.Sprintf("run %s: %d categories, %d products (%d created, %d updated, %d skipped, %d failed, %d listing pages failed) in %s",
		s.RunID, s.Categories, s.Products, s.Created, s.Updated, s.Skipped, s.Failed, s.ListingsFailed, s.Duration.Round(time.Millisecond))
}

// Emit tallies e. Summary can be used as a Sink on its own.
func (s *Summary) Emit(e Event) {
	switch e.Type {
	case CategoryFinished:
		s.Categories++
		s.Products += e.Products
	case ProductSkipped:
		s.Skipped++
	case ProductFailed:
		s.Failed++
	case ListingFailed:
		s.Failed++
		s.ListingsFailed++
	case ProductStored:
		switch e.Result {
		case database.Created:
			s.Created++
		case database.Updated:
			s.Updated++
		}
	}
}
