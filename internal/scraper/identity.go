package scraper

import (
	"math/rand"
	"sync"
	"time"
)

// IdentityProvider supplies the request headers for the next fetch.
type IdentityProvider interface {
	Next() map[string]string
}

// DefaultUserAgents is used when the configuration does not list any.
var DefaultUserAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/121.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36",
	"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/90.0.4430.212 Safari/537.36",
	"Mozilla/5.0 (iPhone; CPU iPhone OS 14_6 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/14.1.1 Mobile/15E148 Safari/604.1",
}

// RandomUserAgent picks a user agent uniformly at random from its pool for every request.
type RandomUserAgent struct {
	mu   sync.Mutex
	pool []string
	rng  *rand.Rand
}

// NewRandomUserAgent builds a provider over pool, falling back to DefaultUserAgents.
func NewRandomUserAgent(pool []string) *RandomUserAgent {
	if len(pool) == 0 {
		pool = DefaultUserAgents
	}
	return &RandomUserAgent{
		pool: append([]string(nil), pool...),
		rng:  rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (r *RandomUserAgent) Next() map[string]string {
	r.mu.Lock()
	ua := r.pool[r.rng.Intn(len(r.pool))]
	r.mu.Unlock()
	return map[string]string{"User-Agent": ua}
}

// FixedIdentity always returns the same headers.
type FixedIdentity map[string]string

func (f FixedIdentity) Next() map[string]string {
	out := make(map[string]string, len(f))
	for k, v := range f {
		out[k] = v
	}
	return out
}
