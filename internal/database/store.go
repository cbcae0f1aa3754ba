package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/munaray/idealo/internal/models"
	"github.com/munaray/idealo/pkg/config"
)

var (
	// ErrStore wraps every failure of the underlying database.
	ErrStore = errors.New("store operation failed")
	// ErrNotFound is returned by Get when no record has the product URL.
	ErrNotFound = errors.New("product not found")
)

// UpsertResult tells whether an upsert created the record or replaced its offers.
type UpsertResult int

const (
	Created UpsertResult = iota + 1
	Updated
)

func (r UpsertResult) String() string {
	switch r {
	case Created:
		return "created"
	case Updated:
		return "updated"
	default:
		return "unknown"
	}
}

// Repository is a product store keyed by product URL. Upsert replaces the
// offer list wholesale and never creates a second record for the same URL.
type Repository interface {
	Upsert(ctx context.Context, productURL string, offers []models.Offer) (UpsertResult, error)
	Get(ctx context.Context, productURL string) (*models.Product, error)
	List(ctx context.Context, filters models.ProductFilters) ([]models.Product, error)
	Count(ctx context.Context) (int, error)
	Close() error
}

// Open connects to the store selected by cfg.Driver.
func Open(ctx context.Context, cfg config.StoreConfig) (Repository, error) {
	switch cfg.Driver {
	case "sqlite":
		return InitDB(cfg.SQLitePath)
	case "mongo":
		return ConnectMongo(ctx, cfg.MongoURI, cfg.MongoDatabase, cfg.MongoCollection)
	case "postgres":
		return ConnectPostgres(ctx, cfg.PostgresDSN, cfg.PostgresTable)
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Driver)
	}
}

func storeErr(op, productURL string, err error) error {
	if productURL == "" {
		return fmt.Errorf("%s: %w: %w", op, ErrStore, err)
	}
	return fmt.Errorf("%s %s: %w: %w", op, productURL, ErrStore, err)
}

func nonNil(offers []models.Offer) models.Offers {
	if offers == nil {
		return models.Offers{}
	}
	return offers
}
