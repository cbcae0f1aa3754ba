package browser

import (
	"fmt"

	"github.com/go-rod/rod"
	"github.com/munaray/idealo/internal/scraper"
)

// Page is a live browser tab. Queries run inside the tab.
type Page struct {
	page *rod.Page
	url  string
}

func (p *Page) URL() string {
	if info, err := p.page.Info(); err == nil && info.URL != "" {
		return info.URL
	}
	return p.url
}

func (p *Page) Elements(selector string) ([]scraper.Element, error) {
	found, err := p.page.Elements(selector)
	if err != nil {
		return nil, fmt.Errorf("query %q: %w", selector, err)
	}
	els := make([]scraper.Element, 0, len(found))
	for _, el := range found {
		els = append(els, &element{el: el})
	}
	return els, nil
}

// Element does not wait; the page is already rendered as far as the fetch asked for.
func (p *Page) Element(selector string) (scraper.Element, bool, error) {
	has, el, err := p.page.Has(selector)
	if err != nil {
		return nil, false, fmt.Errorf("query %q: %w", selector, err)
	}
	if !has {
		return nil, false, nil
	}
	return &element{el: el}, true, nil
}

func (p *Page) Close() error {
	return p.page.Close()
}

type element struct {
	el *rod.Element
}

func (e *element) Attr(name string) (string, bool) {
	v, err := e.el.Attribute(name)
	if err != nil || v == nil {
		return "", false
	}
	return *v, true
}

// Href reads the href property, which the browser has already made absolute.
func (e *element) Href() (string, bool) {
	prop, err := e.el.Property("href")
	if err != nil || prop.Nil() {
		return "", false
	}
	href := prop.Str()
	return href, href != ""
}
