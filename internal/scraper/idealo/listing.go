package idealo

import (
	"context"
	"fmt"
	"iter"
	"log"

	"github.com/munaray/idealo/internal/scraper"
)

// listingPage is what one listing page contributes to the frontier.
type listingPage struct {
	productLinks []string
	nextPage     string
}

// TraverseListing yields the product links of startURL and of every page
// reached through its "next page" links, in document and page order.
// Each listing page is retried under ListingRetry. A page that still fails
// ends the traversal of this category; once the sequence is exhausted the
// returned func reports that failure as a *scraper.ListingError, or nil.
func (s *IdealoScraper) TraverseListing(ctx context.Context, startURL string) (iter.Seq[string], func() error) {
	var failure error
	links := func(yield func(string) bool) {
		next := startURL
		for pageNum := 1; next != ""; pageNum++ {
			if ctx.Err() != nil {
				log.Printf("Listing traversal of %s stopped before page %d: %v", startURL, pageNum, ctx.Err())
				return
			}

			var page listingPage
			attempts, err := s.ListingRetry.Do(ctx, next, func(ctx context.Context) error {
				var err error
				page, err = s.scrapeListingPage(ctx, next)
				return err
			})
			if err != nil {
				failure = &scraper.ListingError{PageURL: next, Page: pageNum, Attempts: attempts, Err: err}
				log.Printf("Error scraping listing page for %s: %v", next, failure)
				return
			}
			log.Printf("Listing page %d (%s): %d product links", pageNum, next, len(page.productLinks))

			for _, link := range page.productLinks {
				if !yield(link) {
					return
				}
			}
			next = page.nextPage
		}
	}
	return links, func() error { return failure }
}

// scrapeListingPage loads one listing page and collects its links.
func (s *IdealoScraper) scrapeListingPage(ctx context.Context, pageURL string) (listingPage, error) {
	page, err := s.Fetcher.Fetch(ctx, scraper.FetchRequest{URL: pageURL})
	if err != nil {
		return listingPage{}, err
	}
	defer page.Close()

	origin := scraper.Origin(page.URL())
	if origin == "" {
		origin = scraper.Origin(pageURL)
	}

	items, err := page.Elements(s.Selectors.ListingItem)
	if err != nil {
		return listingPage{}, fmt.Errorf("could not query product links: %w", err)
	}
	var result listingPage
	for _, item := range items {
		href, ok := item.Href()
		if !ok || href == "" {
			continue
		}
		result.productLinks = append(result.productLinks, scraper.ResolveURL(origin, href))
	}

	nextButton, found, err := page.Element(s.Selectors.NextPage)
	if err != nil {
		return listingPage{}, fmt.Errorf("could not query next page link: %w", err)
	}
	if found {
		if href, ok := nextButton.Href(); ok && href != "" {
			result.nextPage = scraper.ResolveURL(origin, href)
		}
	}
	return result, nil
}
