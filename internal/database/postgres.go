package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/munaray/idealo/internal/models"
)

// PostgresRepository keeps products in one table with the offers as JSONB.
type PostgresRepository struct {
	pool  *pgxpool.Pool
	table string
}

// ConnectPostgres opens a pool on dsn and creates the table if needed.
func ConnectPostgres(ctx context.Context, dsn, table string) (*PostgresRepository, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres connect: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres ping: %w", err)
	}

	repo := &PostgresRepository{pool: pool, table: pgx.Identifier{table}.Sanitize()}
	_, err = pool.Exec(ctx, `
	CREATE TABLE IF NOT EXISTS `+repo.table+` (
		id BIGSERIAL PRIMARY KEY,
		product_url TEXT NOT NULL UNIQUE,
		offers JSONB NOT NULL DEFAULT '[]'::jsonb,
		last_updated TIMESTAMPTZ NOT NULL,
		created_at TIMESTAMPTZ NOT NULL
	)`)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("create %s: %w", repo.table, err)
	}
	return repo, nil
}

func (r *PostgresRepository) Close() error {
	r.pool.Close()
	return nil
}

// Upsert relies on xmax being zero only for rows the statement inserted.
func (r *PostgresRepository) Upsert(ctx context.Context, productURL string, offers []models.Offer) (UpsertResult, error) {
	query := `
	INSERT INTO ` + r.table + ` (product_url, offers, last_updated, created_at)
	VALUES ($1, $2, $3, $3)
	ON CONFLICT (product_url) DO UPDATE SET
		offers = EXCLUDED.offers,
		last_updated = EXCLUDED.last_updated
	RETURNING (xmax = 0)`

	var inserted bool
	err := r.pool.QueryRow(ctx, query, productURL, nonNil(offers), time.Now().UTC()).Scan(&inserted)
	if err != nil {
		return 0, storeErr("upsert", productURL, err)
	}
	if inserted {
		return Created, nil
	}
	return Updated, nil
}

func (r *PostgresRepository) Get(ctx context.Context, productURL string) (*models.Product, error) {
	var p models.Product
	err := r.pool.QueryRow(ctx, `
		SELECT id, product_url, offers, last_updated, created_at
		FROM `+r.table+` WHERE product_url = $1`, productURL).
		Scan(&p.ID, &p.ProductURL, &p.Offers, &p.LastUpdated, &p.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", productURL, ErrNotFound)
	}
	if err != nil {
		return nil, storeErr("get", productURL, err)
	}
	return &p, nil
}

func (r *PostgresRepository) List(ctx context.Context, filters models.ProductFilters) ([]models.Product, error) {
	var limit any
	if filters.Limit > 0 {
		limit = filters.Limit
	}
	rows, err := r.pool.Query(ctx, `
		SELECT id, product_url, offers, last_updated, created_at
		FROM `+r.table+`
		ORDER BY last_updated DESC, id ASC
		LIMIT $1 OFFSET $2`, limit, max(filters.Offset, 0))
	if err != nil {
		return nil, storeErr("list", "", err)
	}
	defer rows.Close()

	var products []models.Product
	for rows.Next() {
		var p models.Product
		if err := rows.Scan(&p.ID, &p.ProductURL, &p.Offers, &p.LastUpdated, &p.CreatedAt); err != nil {
			return nil, storeErr("list", "", err)
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("list", "", err)
	}
	return products, nil
}

func (r *PostgresRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM "+r.table).Scan(&n); err != nil {
		return 0, storeErr("count", "", err)
	}
	return n, nil
}
