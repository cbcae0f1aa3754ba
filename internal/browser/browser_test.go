package browser

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/go-rod/rod/lib/launcher"
	"github.com/munaray/idealo/internal/scraper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Offers are injected by script after a delay, the way idealo renders them.
const clientRenderedPage = `<!DOCTYPE html>
<html><body>
<ul id="offers"></ul>
<a aria-label="next page" href="/page/2">next</a>
<script>
setTimeout(function () {
	var a = document.createElement("a");
	a.className = "productOffers-listItemOfferLink";
	a.setAttribute("data-shop-name", "Argos.co.uk");
	a.setAttribute("href", "/relocate?price=19.99");
	document.getElementById("offers").appendChild(a);
}, 200);
</script>
</body></html>`

func newTestFetcher(t *testing.T) *Fetcher {
	t.Helper()
	if _, ok := launcher.LookPath(); !ok {
		t.Skip("no local Chrome/Chromium available")
	}
	b, err := Launch(true)
	require.NoError(t, err)
	t.Cleanup(func() { _ = b.Close() })
	return NewFetcher(b, scraper.FixedIdentity{"User-Agent": "idealo-test-agent", "Accept-Language": "en-GB"}, 20*time.Second)
}

func TestFetchWaitsForClientRenderedOffers(t *testing.T) {
	var mu sync.Mutex
	var gotUA, gotLang string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/product" {
			mu.Lock()
			gotUA, gotLang = r.UserAgent(), r.Header.Get("Accept-Language")
			mu.Unlock()
		}
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(clientRenderedPage))
	}))
	defer ts.Close()

	f := newTestFetcher(t)
	page, err := f.Fetch(context.Background(), scraper.FetchRequest{
		URL:          ts.URL + "/product",
		WaitSelector: "a.productOffers-listItemOfferLink",
		WaitTimeout:  5 * time.Second,
	})
	require.NoError(t, err)
	defer page.Close()

	els, err := page.Elements("a.productOffers-listItemOfferLink")
	require.NoError(t, err)
	require.Len(t, els, 1)

	name, ok := els[0].Attr("data-shop-name")
	assert.True(t, ok)
	assert.Equal(t, "Argos.co.uk", name)

	raw, _ := els[0].Attr("href")
	assert.Equal(t, "/relocate?price=19.99", raw)
	href, ok := els[0].Href()
	assert.True(t, ok)
	assert.Equal(t, ts.URL+"/relocate?price=19.99", href)

	next, found, err := page.Element(`a[aria-label="next page"]`)
	require.NoError(t, err)
	require.True(t, found)
	nextHref, _ := next.Href()
	assert.Equal(t, ts.URL+"/page/2", nextHref)

	mu.Lock()
	assert.Equal(t, "idealo-test-agent", gotUA)
	assert.Equal(t, "en-GB", gotLang)
	mu.Unlock()
}

func TestFetchSelectorTimeout(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte("<html><body>nothing here</body></html>"))
	}))
	defer ts.Close()

	f := newTestFetcher(t)
	_, err := f.Fetch(context.Background(), scraper.FetchRequest{
		URL:          ts.URL,
		WaitSelector: "a.productOffers-listItemOfferLink",
		WaitTimeout:  300 * time.Millisecond,
	})
	assert.ErrorIs(t, err, scraper.ErrFetchTimeout)
}

func TestFetchNavigationError(t *testing.T) {
	f := newTestFetcher(t)
	_, err := f.Fetch(context.Background(), scraper.FetchRequest{URL: "http://127.0.0.1:1/unreachable"})
	assert.ErrorIs(t, err, scraper.ErrNavigation)
}
