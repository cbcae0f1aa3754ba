package scraper

import (
	"context"
	"time"
)

// FetchRequest describes one page load. WaitSelector is optional; when set the
// fetch only succeeds once an element matching it exists, or fails with
// ErrFetchTimeout after WaitTimeout.
type FetchRequest struct {
	URL          string
	WaitSelector string
	WaitTimeout  time.Duration
}

// PageFetcher renders a URL into a queryable document.
// On error the fetcher has already released the page. On success the caller
// owns the returned page and must Close it.
type PageFetcher interface {
	Fetch(ctx context.Context, req FetchRequest) (RenderedPage, error)
}

// RenderedPage is a loaded document. Queries are evaluated against the page
// itself, so for the browser engine they see the client-rendered DOM.
type RenderedPage interface {
	URL() string
	// Elements returns all matches in document order.
	Elements(selector string) ([]Element, error)
	// Element returns the first match, if any.
	Element(selector string) (Element, bool, error)
	Close() error
}

// Element is a single matched node.
type Element interface {
	// Attr returns the raw attribute value as written in the markup.
	Attr(name string) (string, bool)
	// Href returns the resolved absolute link of an anchor.
	Href() (string, bool)
}
