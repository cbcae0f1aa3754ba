package scraper

import (
	"errors"
	"fmt"
)

var (
	// ErrNavigation covers network, DNS, HTTP and navigation deadline failures.
	ErrNavigation = errors.New("navigation failed")
	// ErrFetchTimeout means the awaited selector never appeared within its bound.
	ErrFetchTimeout = errors.New("timed out waiting for selector")
	// ErrNoOffersFound means the product page loaded without any offer element.
	ErrNoOffersFound = errors.New("no offers found")
)

// Retryable reports whether err is worth another attempt.
func Retryable(err error) bool {
	return errors.Is(err, ErrNavigation) || errors.Is(err, ErrFetchTimeout)
}

// ListingError reports the listing page that ended a category traversal.
type ListingError struct {
	PageURL  string
	Page     int
	Attempts int
	Err      error
}

func (e *ListingError) Error() string {
	return fmt.Sprintf("listing page %d (%s) failed after %d attempt(s): %v", e.Page, e.PageURL, e.Attempts, e.Err)
}

func (e *ListingError) Unwrap() error { return e.Err }
