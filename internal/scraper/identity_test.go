package scraper

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRandomUserAgentDrawsFromPool(t *testing.T) {
	pool := []string{"agent-a", "agent-b", "agent-c"}
	provider := NewRandomUserAgent(pool)

	seen := make(map[string]bool)
	for i := 0; i < 300; i++ {
		headers := provider.Next()
		require.Contains(t, pool, headers["User-Agent"])
		seen[headers["User-Agent"]] = true
	}
	assert.Len(t, seen, len(pool))
}

func TestRandomUserAgentDefaultsPool(t *testing.T) {
	provider := NewRandomUserAgent(nil)
	assert.Contains(t, DefaultUserAgents, provider.Next()["User-Agent"])
}

func TestFixedIdentityReturnsCopy(t *testing.T) {
	id := FixedIdentity{"User-Agent": "test-agent"}
	headers := id.Next()
	headers["User-Agent"] = "mutated"
	assert.Equal(t, "test-agent", id.Next()["User-Agent"])
}

func TestRetryable(t *testing.T) {
	assert.True(t, Retryable(fmt.Errorf("load %s: %w", "u", ErrNavigation)))
	assert.True(t, Retryable(fmt.Errorf("wait: %w", ErrFetchTimeout)))
	assert.False(t, Retryable(ErrNoOffersFound))
	assert.False(t, Retryable(errors.New("boom")))
}
