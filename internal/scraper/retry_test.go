package scraper

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBackoffIsBounded(t *testing.T) {
	p := RetryPolicy{MaxAttempts: 100, InitialDelay: time.Second}

	tests := []struct {
		attempt int
		min     time.Duration
		max     time.Duration
	}{
		{1, time.Second, 1500 * time.Millisecond},
		{2, 2 * time.Second, 3 * time.Second},
		{8, MaxBackoff, MaxBackoff * 3 / 2},
		{40, MaxBackoff, MaxBackoff * 3 / 2},
		{1000, MaxBackoff, MaxBackoff * 3 / 2},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("attempt %d", tt.attempt), func(t *testing.T) {
			d := p.Backoff(tt.attempt)
			assert.GreaterOrEqual(t, d, tt.min)
			assert.LessOrEqual(t, d, tt.max)
		})
	}

	assert.Zero(t, RetryPolicy{}.Backoff(3))
}

var errBadSelector = errors.New("bad selector")

func TestDoRetriesTransientFailures(t *testing.T) {
	p := RetryPolicy{MaxAttempts: 3, InitialDelay: time.Millisecond}

	tests := []struct {
		name         string
		failures     int
		err          error
		wantAttempts int
		wantFail     bool
	}{
		{"Succeeds First Time", 0, nil, 1, false},
		{"Recovers From Navigation Error", 2, ErrNavigation, 3, false},
		{"Gives Up After Max Attempts", 5, ErrFetchTimeout, 3, true},
		{"Does Not Retry Other Errors", 5, errBadSelector, 1, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			attempts, err := p.Do(context.Background(), "page", func(context.Context) error {
				calls++
				if calls <= tt.failures {
					return tt.err
				}
				return nil
			})
			assert.Equal(t, tt.wantAttempts, attempts)
			assert.Equal(t, tt.wantAttempts, calls)
			if tt.wantFail {
				assert.ErrorIs(t, err, tt.err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestDoStopsRetryingOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	p := RetryPolicy{MaxAttempts: 5, InitialDelay: time.Hour}

	attempts, err := p.Do(ctx, "page", func(attemptCtx context.Context) error {
		cancel()
		assert.NoError(t, attemptCtx.Err())
		return ErrNavigation
	})

	assert.Equal(t, 1, attempts)
	assert.ErrorIs(t, err, ErrNavigation)
}
