// Package ingest drives a crawl: categories are traversed, every product link
// is handed to a worker pool that extracts offers and upserts them.
package ingest

import (
	"context"
	"errors"
	"iter"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/munaray/idealo/internal/database"
	"github.com/munaray/idealo/internal/models"
	"github.com/munaray/idealo/internal/scraper"
	"golang.org/x/sync/errgroup"
)

// Traverser lists the product links of a category. The returned func reports,
// once the sequence is exhausted, the listing failure that ended it early.
type Traverser interface {
	TraverseListing(ctx context.Context, startURL string) (iter.Seq[string], func() error)
}

type Extractor interface {
	ExtractOffers(ctx context.Context, productURL string) ([]models.Offer, error)
}

type ProductStore interface {
	Upsert(ctx context.Context, productURL string, offers []models.Offer) (database.UpsertResult, error)
}

type Options struct {
	// ProductWorkers is the number of products processed at once per category.
	ProductWorkers int
	// CategoryWorkers is the number of categories traversed at once.
	CategoryWorkers int
	Retry           scraper.RetryPolicy
	// OverwriteEmpty stores an empty offer list when a page has no offers
	// instead of leaving the previous record alone.
	OverwriteEmpty bool
}

type Coordinator struct {
	traverser Traverser
	extractor Extractor
	store     ProductStore
	sink      Sink
	opts      Options

	mu      sync.Mutex
	summary Summary
}

func NewCoordinator(traverser Traverser, extractor Extractor, store ProductStore, sink Sink, opts Options) *Coordinator {
	if sink == nil {
		sink = LogSink{}
	}
	return &Coordinator{
		traverser: traverser,
		extractor: extractor,
		store:     store,
		sink:      sink,
		opts:      opts,
	}
}

// Run crawls every seed and returns what happened. Individual failures are
// reported through the sink and counted; they never stop the run. When ctx is
// cancelled no new category, listing page or product is started.
func (c *Coordinator) Run(ctx context.Context, seedURLs []string) Summary {
	start := time.Now()
	runID := uuid.NewString()

	c.mu.Lock()
	c.summary = Summary{RunID: runID}
	c.mu.Unlock()

	g := new(errgroup.Group)
	g.SetLimit(max(c.opts.CategoryWorkers, 1))
	for _, seed := range seedURLs {
		if ctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}
			c.runCategory(ctx, runID, seed)
			return nil
		})
	}
	_ = g.Wait()

	c.mu.Lock()
	c.summary.Duration = time.Since(start)
	summary := c.summary
	c.mu.Unlock()

	c.emit(Event{Type: RunCompleted, RunID: runID, Summary: &summary})
	return summary
}

func (c *Coordinator) runCategory(ctx context.Context, runID, category string) {
	c.emit(Event{Type: CategoryStarted, RunID: runID, Category: category})

	jobs := make(chan string)
	var wg sync.WaitGroup
	for i := 0; i < max(c.opts.ProductWorkers, 1); i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for productURL := range jobs {
				if ctx.Err() != nil {
					continue
				}
				c.processProduct(ctx, runID, category, productURL)
			}
		}()
	}

	found := 0
	links, listingErr := c.traverser.TraverseListing(ctx, category)
	for productURL := range links {
		if ctx.Err() != nil {
			break
		}
		found++
		jobs <- productURL
	}
	close(jobs)
	wg.Wait()

	if err := listingErr(); err != nil {
		e := Event{Type: ListingFailed, RunID: runID, Category: category, Products: found, Err: err}
		var le *scraper.ListingError
		if errors.As(err, &le) {
			e.PageURL, e.Attempts = le.PageURL, le.Attempts
		}
		c.emit(e)
	}

	c.emit(Event{Type: CategoryFinished, RunID: runID, Category: category, Products: found})
}

func (c *Coordinator) processProduct(ctx context.Context, runID, category, productURL string) {
	base := Event{RunID: runID, Category: category, ProductURL: productURL}

	offers, attempts, err := c.extract(ctx, productURL)
	base.Attempts = attempts
	switch {
	case errors.Is(err, scraper.ErrNoOffersFound) && !c.opts.OverwriteEmpty:
		c.emit(with(base, ProductSkipped, func(e *Event) { e.Err = err }))
		return
	case errors.Is(err, scraper.ErrNoOffersFound):
		offers = nil
		c.emit(with(base, ProductScraped, nil))
	case err != nil:
		c.emit(with(base, ProductFailed, func(e *Event) { e.Stage, e.Err = "scrape", err }))
		return
	default:
		c.emit(with(base, ProductScraped, func(e *Event) { e.Offers = len(offers) }))
	}

	res, err := c.store.Upsert(context.WithoutCancel(ctx), productURL, offers)
	if err != nil {
		c.emit(with(base, ProductFailed, func(e *Event) { e.Stage, e.Err = "store", err }))
		return
	}
	c.emit(with(base, ProductStored, func(e *Event) { e.Offers, e.Result = len(offers), res }))
}

func with(base Event, t EventType, set func(*Event)) Event {
	base.Type = t
	if set != nil {
		set(&base)
	}
	return base
}

func (c *Coordinator) emit(e Event) {
	if e.Time.IsZero() {
		e.Time = time.Now()
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if e.Type != RunCompleted {
		c.summary.Emit(e)
	}
	c.sink.Emit(e)
}
