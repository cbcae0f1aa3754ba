package idealo

import (
	"context"
	"errors"
	"fmt"

	"github.com/munaray/idealo/internal/models"
	"github.com/munaray/idealo/internal/scraper"
	"github.com/munaray/idealo/utils"
)

// ExtractOffers loads productURL, waits for the offer list and returns the
// normalized offers in document order.
// A page whose offer list never appears yields ErrNoOffersFound, which also
// matches ErrFetchTimeout when the wait bound was what ran out.
func (s *IdealoScraper) ExtractOffers(ctx context.Context, productURL string) ([]models.Offer, error) {
	page, err := s.Fetcher.Fetch(ctx, scraper.FetchRequest{
		URL:          productURL,
		WaitSelector: s.Selectors.Offer,
		WaitTimeout:  s.SelectorTimeout,
	})
	if err != nil {
		if errors.Is(err, scraper.ErrFetchTimeout) {
			return nil, fmt.Errorf("%w: %w", scraper.ErrNoOffersFound, err)
		}
		return nil, err
	}
	defer page.Close()

	elements, err := page.Elements(s.Selectors.Offer)
	if err != nil {
		return nil, fmt.Errorf("could not query offers on %s: %w", productURL, err)
	}
	if len(elements) == 0 {
		return nil, fmt.Errorf("%s: %w", productURL, scraper.ErrNoOffersFound)
	}

	offers := make([]models.Offer, 0, len(elements))
	for _, el := range elements {
		offers = append(offers, s.offerFromElement(el))
	}
	return offers, nil
}

func (s *IdealoScraper) offerFromElement(el scraper.Element) models.Offer {
	shopNameRaw, ok := el.Attr("data-shop-name")
	if !ok || shopNameRaw == "" {
		shopNameRaw = notAvailable
	}

	rawHref, _ := el.Attr("href")

	shopLink, ok := el.Href()
	if !ok || shopLink == "" {
		shopLink = notAvailable
	}

	return models.Offer{
		ShopName: NormalizeShopName(shopNameRaw),
		Price:    utils.FormatPrice(rawHref, s.CurrencySymbol, notAvailable),
		ShopLink: shopLink,
	}
}

// NormalizeShopName turns a data-shop-name value such as "Amazon.co.uk" into
// the stored shop name ("Amazon").
func NormalizeShopName(raw string) string {
	return utils.CleanShopName(raw)
}
