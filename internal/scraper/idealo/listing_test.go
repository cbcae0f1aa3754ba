package idealo

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"testing"

	"github.com/munaray/idealo/internal/scraper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func listingHTML(next string, productPaths ...string) string {
	var b strings.Builder
	b.WriteString("<html><body><section>")
	for _, p := range productPaths {
		fmt.Fprintf(&b, `<div data-testid="resultItem"><a data-testid="productLink" href="%s">item</a></div>`, p)
	}
	// anchors outside result items are not product links
	b.WriteString(`<a href="/help.html">help</a>`)
	if next != "" {
		fmt.Fprintf(&b, `<a aria-label="next page" href="%s">&gt;</a>`, next)
	}
	b.WriteString("</section></body></html>")
	return b.String()
}

// collect drains a traversal and returns its links and terminal failure.
func collect(ctx context.Context, s *IdealoScraper, startURL string) ([]string, error) {
	links, failure := s.TraverseListing(ctx, startURL)
	return slices.Collect(links), failure()
}

const (
	page1 = "https://www.idealo.co.uk/cat/3751/phones.html"
	page2 = "https://www.idealo.co.uk/cat/3751I16-15/phones.html"
	page3 = "https://www.idealo.co.uk/cat/3751I16-30/phones.html"
)

func TestTraverseListingFollowsPagination(t *testing.T) {
	f := newFakeFetcher()
	f.pages[page1] = listingHTML("/cat/3751I16-15/phones.html", "/compare/1/a.html", "/compare/2/b.html")
	f.pages[page2] = listingHTML(page3, "/compare/3/c.html")
	f.pages[page3] = listingHTML("", "/compare/4/d.html", "/compare/1/a.html")

	links, err := collect(context.Background(), newTestScraper(f), page1)
	require.NoError(t, err)

	assert.Equal(t, []string{
		"https://www.idealo.co.uk/compare/1/a.html",
		"https://www.idealo.co.uk/compare/2/b.html",
		"https://www.idealo.co.uk/compare/3/c.html",
		"https://www.idealo.co.uk/compare/4/d.html",
		"https://www.idealo.co.uk/compare/1/a.html",
	}, links)
	// exactly three listing fetches, no fourth attempt
	assert.Equal(t, []string{page1, page2, page3}, f.fetchedURLs())
	assert.Zero(t, f.openPages())
}

func TestTraverseListingIsLazy(t *testing.T) {
	f := newFakeFetcher()
	f.pages[page1] = listingHTML("/cat/3751I16-15/phones.html", "/compare/1/a.html", "/compare/2/b.html")
	f.pages[page2] = listingHTML("", "/compare/3/c.html")

	var first string
	links, _ := newTestScraper(f).TraverseListing(context.Background(), page1)
	for link := range links {
		first = link
		break
	}

	assert.Equal(t, "https://www.idealo.co.uk/compare/1/a.html", first)
	assert.Equal(t, []string{page1}, f.fetchedURLs())
}

func TestTraverseListingStopsOnBrokenPage(t *testing.T) {
	f := newFakeFetcher()
	f.pages[page1] = listingHTML("/cat/3751I16-15/phones.html", "/compare/1/a.html")
	f.errs[page2] = fmt.Errorf("load %s: %w", page2, scraper.ErrNavigation)

	links, err := collect(context.Background(), newTestScraper(f), page1)

	assert.Equal(t, []string{"https://www.idealo.co.uk/compare/1/a.html"}, links)
	// page 2 is tried three times before the category is given up
	assert.Equal(t, []string{page1, page2, page2, page2}, f.fetchedURLs())

	var listingErr *scraper.ListingError
	require.ErrorAs(t, err, &listingErr)
	assert.Equal(t, page2, listingErr.PageURL)
	assert.Equal(t, 2, listingErr.Page)
	assert.Equal(t, 3, listingErr.Attempts)
	assert.ErrorIs(t, err, scraper.ErrNavigation)
}

func TestTraverseListingRetriesTransientFailure(t *testing.T) {
	f := newFakeFetcher()
	f.pages[page1] = listingHTML("/cat/3751I16-15/phones.html", "/compare/1/a.html")
	f.pages[page2] = listingHTML("", "/compare/2/b.html")
	f.flaky[page1] = 2

	links, err := collect(context.Background(), newTestScraper(f), page1)
	require.NoError(t, err)

	assert.Equal(t, []string{
		"https://www.idealo.co.uk/compare/1/a.html",
		"https://www.idealo.co.uk/compare/2/b.html",
	}, links)
	assert.Equal(t, []string{page1, page1, page1, page2}, f.fetchedURLs())
}

func TestTraverseListingFirstPageFails(t *testing.T) {
	f := newFakeFetcher()

	s := newTestScraper(f)
	s.ListingRetry.MaxAttempts = 1

	links, err := collect(context.Background(), s, page1)

	assert.Empty(t, links)
	assert.Equal(t, []string{page1}, f.fetchedURLs())
	assert.ErrorIs(t, err, scraper.ErrNavigation)
}

func TestTraverseListingBadSelectorEndsCategory(t *testing.T) {
	f := newFakeFetcher()
	f.pages[page1] = listingHTML("", "/compare/1/a.html")
	s := newTestScraper(f)
	s.Selectors.ListingItem = "div["

	links, err := collect(context.Background(), s, page1)

	assert.Empty(t, links)
	assert.Zero(t, f.openPages())
	// a bad selector is not transient, so the page is fetched once
	assert.Equal(t, []string{page1}, f.fetchedURLs())
	assert.Error(t, err)
}

func TestTraverseListingHonoursCancellation(t *testing.T) {
	f := newFakeFetcher()
	f.pages[page1] = listingHTML("", "/compare/1/a.html")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	links, err := collect(ctx, newTestScraper(f), page1)

	assert.Empty(t, links)
	require.Empty(t, f.fetchedURLs())
	assert.NoError(t, err)
}
