// Package htmldoc exposes static HTML as a scraper.RenderedPage.
package htmldoc

import (
	"bytes"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
	"github.com/munaray/idealo/internal/scraper"
	"golang.org/x/net/html"
)

// Document is a parsed HTML page. Links are resolved against its URL the same
// way a browser resolves the href property.
type Document struct {
	base *url.URL
	doc  *goquery.Document
}

// Parse builds a Document from raw HTML served at pageURL.
func Parse(pageURL string, body []byte) (*Document, error) {
	base, err := url.Parse(pageURL)
	if err != nil {
		return nil, fmt.Errorf("invalid page url %q: %w", pageURL, err)
	}
	root, err := html.Parse(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("could not parse html: %w", err)
	}
	doc := goquery.NewDocumentFromNode(root)
	doc.Url = base

	// A <base href> changes link resolution for the whole document.
	if href, ok := doc.Find("base[href]").First().Attr("href"); ok {
		if u, err := base.Parse(strings.TrimSpace(href)); err == nil {
			base = u
		}
	}
	return &Document{base: base, doc: doc}, nil
}

// ParseString is Parse for string bodies.
func ParseString(pageURL, body string) (*Document, error) {
	return Parse(pageURL, []byte(body))
}

func (d *Document) URL() string {
	return d.doc.Url.String()
}

func (d *Document) Elements(selector string) ([]scraper.Element, error) {
	// goquery silently matches nothing on a bad selector
	if _, err := cascadia.Compile(selector); err != nil {
		return nil, fmt.Errorf("invalid selector %q: %w", selector, err)
	}
	var els []scraper.Element
	d.doc.Find(selector).Each(func(_ int, s *goquery.Selection) {
		els = append(els, &element{sel: s, base: d.base})
	})
	return els, nil
}

func (d *Document) Element(selector string) (scraper.Element, bool, error) {
	els, err := d.Elements(selector)
	if err != nil || len(els) == 0 {
		return nil, false, err
	}
	return els[0], true, nil
}

// Has reports whether selector matches anything.
func (d *Document) Has(selector string) bool {
	els, err := d.Elements(selector)
	return err == nil && len(els) > 0
}

func (d *Document) Close() error { return nil }

type element struct {
	sel  *goquery.Selection
	base *url.URL
}

func (e *element) Attr(name string) (string, bool) {
	return e.sel.Attr(name)
}

func (e *element) Href() (string, bool) {
	raw, ok := e.sel.Attr("href")
	if !ok {
		return "", false
	}
	u, err := e.base.Parse(strings.TrimSpace(raw))
	if err != nil {
		return "", false
	}
	return u.String(), true
}
