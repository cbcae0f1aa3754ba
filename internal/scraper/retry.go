package scraper

import (
	"context"
	"log"
	"math/rand/v2"
	"time"
)

// MaxBackoff caps the wait between two attempts.
const MaxBackoff = 2 * time.Minute

// RetryPolicy bounds retries of navigation and fetch-timeout failures.
type RetryPolicy struct {
	MaxAttempts  int
	InitialDelay time.Duration
}

// Backoff is the wait after the given failed attempt: the initial delay
// doubled per attempt, capped at MaxBackoff, plus up to half of it as jitter.
func (p RetryPolicy) Backoff(attempt int) time.Duration {
	if p.InitialDelay <= 0 {
		return 0
	}
	d := min(p.InitialDelay, MaxBackoff)
	for i := 1; i < attempt && d < MaxBackoff; i++ {
		d *= 2
	}
	d = min(d, MaxBackoff)
	return d + rand.N(d/2+1)
}

// Do runs fn until it succeeds, fails with a non-retryable error or the
// attempts run out, and reports how many attempts it made. Every attempt runs
// detached from ctx so a page being loaded is finished; cancellation only
// stops further attempts.
func (p RetryPolicy) Do(ctx context.Context, label string, fn func(context.Context) error) (int, error) {
	maxAttempts := max(p.MaxAttempts, 1)
	for attempt := 1; ; attempt++ {
		err := fn(context.WithoutCancel(ctx))
		if err == nil || !Retryable(err) || attempt >= maxAttempts || ctx.Err() != nil {
			return attempt, err
		}

		wait := p.Backoff(attempt)
		log.Printf("Attempt %d for %s failed: %v. Retrying in %s", attempt, label, err, wait)
		select {
		case <-time.After(wait):
		case <-ctx.Done():
			return attempt, err
		}
	}
}
