package ingest

import (
	"context"

	"github.com/munaray/idealo/internal/models"
)

// extract runs the extractor under the retry policy.
func (c *Coordinator) extract(ctx context.Context, productURL string) ([]models.Offer, int, error) {
	var offers []models.Offer
	attempts, err := c.opts.Retry.Do(ctx, productURL, func(ctx context.Context) error {
		var err error
		offers, err = c.extractor.ExtractOffers(ctx, productURL)
		return err
	})
	return offers, attempts, err
}
