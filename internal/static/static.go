// Package static fetches pages over plain HTTP with colly and parses them
// without running scripts. Offer lists that idealo renders client-side will
// not be present; the engine is for server-rendered pages and tests.
package static

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/gocolly/colly/v2"
	"github.com/munaray/idealo/internal/htmldoc"
	"github.com/munaray/idealo/internal/scraper"
)

type Fetcher struct {
	Identity scraper.IdentityProvider
	Timeout  time.Duration
}

func NewFetcher(identity scraper.IdentityProvider, timeout time.Duration) *Fetcher {
	return &Fetcher{Identity: identity, Timeout: timeout}
}

// Fetch downloads req.URL. A wait selector missing from the downloaded
// document is reported as a timeout since nothing further will render.
func (f *Fetcher) Fetch(ctx context.Context, req scraper.FetchRequest) (scraper.RenderedPage, error) {
	var headers map[string]string
	if f.Identity != nil {
		headers = f.Identity.Next()
	}

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("load %s: %w: %w", req.URL, scraper.ErrNavigation, err)
	}

	opts := []colly.CollectorOption{colly.AllowURLRevisit()}
	for name, value := range headers {
		if strings.EqualFold(name, "User-Agent") {
			opts = append(opts, colly.UserAgent(value))
		}
	}
	c := colly.NewCollector(opts...)
	if f.Timeout > 0 {
		c.SetRequestTimeout(f.Timeout)
	}

	c.OnRequest(func(r *colly.Request) {
		for name, value := range headers {
			r.Headers.Set(name, value)
		}
	})

	var (
		body     []byte
		finalURL string
		fetchErr error
	)
	c.OnResponse(func(r *colly.Response) {
		body = r.Body
		finalURL = r.Request.URL.String()
	})
	c.OnError(func(r *colly.Response, err error) {
		fetchErr = fmt.Errorf("status %d: %w", r.StatusCode, err)
	})

	if err := c.Visit(req.URL); err != nil && fetchErr == nil {
		fetchErr = err
	}
	if fetchErr != nil {
		return nil, fmt.Errorf("load %s: %w: %w", req.URL, scraper.ErrNavigation, fetchErr)
	}

	doc, err := htmldoc.Parse(finalURL, body)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w: %w", req.URL, scraper.ErrNavigation, err)
	}

	if req.WaitSelector != "" && !doc.Has(req.WaitSelector) {
		return nil, fmt.Errorf("%q not present on %s: %w", req.WaitSelector, req.URL, scraper.ErrFetchTimeout)
	}
	return doc, nil
}
