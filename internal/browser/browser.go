// Package browser renders pages in headless Chrome through go-rod.
package browser

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"
	"github.com/munaray/idealo/internal/scraper"
)

// Launch starts a local browser and connects to it.
func Launch(headless bool) (*rod.Browser, error) {
	u, err := launcher.New().Headless(headless).Launch()
	if err != nil {
		return nil, fmt.Errorf("could not launch browser: %w", err)
	}
	browser := rod.New().ControlURL(u)
	if err := browser.Connect(); err != nil {
		return nil, fmt.Errorf("could not connect to browser: %w", err)
	}
	return browser, nil
}

// Fetcher opens one stealth tab per request on a shared browser.
type Fetcher struct {
	Browser           *rod.Browser
	Identity          scraper.IdentityProvider
	NavigationTimeout time.Duration
}

// NewFetcher wraps browser.
func NewFetcher(browser *rod.Browser, identity scraper.IdentityProvider, navigationTimeout time.Duration) *Fetcher {
	return &Fetcher{Browser: browser, Identity: identity, NavigationTimeout: navigationTimeout}
}

// Fetch navigates a fresh tab to req.URL, waits for DOMContentLoaded and then,
// if requested, for req.WaitSelector to render.
func (f *Fetcher) Fetch(ctx context.Context, req scraper.FetchRequest) (scraper.RenderedPage, error) {
	tab, err := stealth.Page(f.Browser)
	if err != nil {
		return nil, fmt.Errorf("could not open tab for %s: %w: %w", req.URL, scraper.ErrNavigation, err)
	}
	keep := false
	defer func() {
		if !keep {
			if err := tab.Close(); err != nil {
				log.Printf("Failed to close tab for %s: %v", req.URL, err)
			}
		}
	}()

	page := tab.Context(ctx)
	if f.Identity != nil {
		if err := applyIdentity(page, f.Identity.Next()); err != nil {
			return nil, fmt.Errorf("could not set request identity for %s: %w: %w", req.URL, scraper.ErrNavigation, err)
		}
	}

	if err := f.navigate(page, req.URL); err != nil {
		return nil, err
	}

	if req.WaitSelector != "" {
		if err := waitFor(page, req.WaitSelector, req.WaitTimeout); err != nil {
			if errors.Is(err, context.DeadlineExceeded) {
				return nil, fmt.Errorf("%q did not appear on %s within %s: %w", req.WaitSelector, req.URL, req.WaitTimeout, scraper.ErrFetchTimeout)
			}
			return nil, fmt.Errorf("waiting for %q on %s: %w: %w", req.WaitSelector, req.URL, scraper.ErrNavigation, err)
		}
	}

	keep = true
	return &Page{page: page, url: req.URL}, nil
}

func (f *Fetcher) navigate(page *rod.Page, url string) error {
	nav := page
	if f.NavigationTimeout > 0 {
		nav = page.Timeout(f.NavigationTimeout)
		defer nav.CancelTimeout()
	}

	wait := nav.WaitNavigation(proto.PageLifecycleEventNameDOMContentLoaded)
	if err := nav.Navigate(url); err != nil {
		return fmt.Errorf("load %s: %w: %w", url, scraper.ErrNavigation, err)
	}
	wait()

	if err := nav.GetContext().Err(); err != nil {
		return fmt.Errorf("load %s: DOMContentLoaded not reached: %w: %w", url, scraper.ErrNavigation, err)
	}
	return nil
}

func waitFor(page *rod.Page, selector string, bound time.Duration) error {
	if bound <= 0 {
		_, err := page.Element(selector)
		return err
	}
	_, err := page.Timeout(bound).Element(selector)
	return err
}

// applyIdentity sends the user agent through the emulation override, so
// navigator.userAgent agrees with the header, and everything else as extra headers.
func applyIdentity(page *rod.Page, headers map[string]string) error {
	var extra []string
	for name, value := range headers {
		if strings.EqualFold(name, "User-Agent") {
			if err := page.SetUserAgent(&proto.NetworkSetUserAgentOverride{UserAgent: value}); err != nil {
				return err
			}
			continue
		}
		extra = append(extra, name, value)
	}
	if len(extra) > 0 {
		if _, err := page.SetExtraHeaders(extra); err != nil {
			return err
		}
	}
	return nil
}
