package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/munaray/idealo/internal/models"

	_ "modernc.org/sqlite"
)

// SQLiteRepository keeps products in a single SQLite file.
type SQLiteRepository struct {
	DB *sql.DB
}

// InitDB opens the database file and creates the products table.
// Writes go through one connection, so upserts of the same URL are serialized.
func InitDB(filepath string) (*SQLiteRepository, error) {
	db, err := sql.Open("sqlite", filepath)
	if err != nil {
		return nil, fmt.Errorf("error opening database: %w", err)
	}
	db.SetMaxOpenConns(1)
	if err = db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("error pinging database: %w", err)
	}

	createProductsTableSQL := `
	CREATE TABLE IF NOT EXISTS products (
		"id" INTEGER NOT NULL PRIMARY KEY AUTOINCREMENT,
		"product_url" TEXT NOT NULL UNIQUE,
		"offers" TEXT NOT NULL DEFAULT '[]',
		"last_updated" DATETIME NOT NULL,
		"created_at" DATETIME NOT NULL
	);`

	if _, err = db.Exec(createProductsTableSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("error creating products table: %w", err)
	}

	log.Printf("Database %s initialized successfully.", filepath)
	return &SQLiteRepository{DB: db}, nil
}

func (repo *SQLiteRepository) Close() error {
	return repo.DB.Close()
}

// Upsert creates the record for productURL or replaces its offers.
func (repo *SQLiteRepository) Upsert(ctx context.Context, productURL string, offers []models.Offer) (UpsertResult, error) {
	tx, err := repo.DB.BeginTx(ctx, nil)
	if err != nil {
		return 0, storeErr("begin upsert", productURL, err)
	}
	defer tx.Rollback()

	result := Updated
	var one int
	err = tx.QueryRowContext(ctx, "SELECT 1 FROM products WHERE product_url = ?", productURL).Scan(&one)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		result = Created
	case err != nil:
		return 0, storeErr("check existing", productURL, err)
	}

	query := `
	INSERT INTO products (product_url, offers, last_updated, created_at)
	VALUES (?, ?, ?, ?)
	ON CONFLICT(product_url) DO UPDATE SET
		offers=excluded.offers,
		last_updated=excluded.last_updated;
	`
	now := time.Now().UTC()
	if _, err := tx.ExecContext(ctx, query, productURL, nonNil(offers), now, now); err != nil {
		return 0, storeErr("upsert", productURL, err)
	}
	if err := tx.Commit(); err != nil {
		return 0, storeErr("commit upsert", productURL, err)
	}
	return result, nil
}

// Get returns the record stored for productURL.
func (repo *SQLiteRepository) Get(ctx context.Context, productURL string) (*models.Product, error) {
	row := repo.DB.QueryRowContext(ctx, `
		SELECT id, product_url, offers, last_updated, created_at
		FROM products
		WHERE product_url = ?`, productURL)

	var p models.Product
	err := row.Scan(&p.ID, &p.ProductURL, &p.Offers, &p.LastUpdated, &p.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", productURL, ErrNotFound)
	}
	if err != nil {
		return nil, storeErr("get", productURL, err)
	}
	return &p, nil
}

// List returns products, most recently updated first.
func (repo *SQLiteRepository) List(ctx context.Context, filters models.ProductFilters) ([]models.Product, error) {
	var args []interface{}
	query := `SELECT id, product_url, offers, last_updated, created_at
	          FROM products ORDER BY last_updated DESC, id ASC`
	if filters.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filters.Limit)
		if filters.Offset > 0 {
			query += " OFFSET ?"
			args = append(args, filters.Offset)
		}
	}

	rows, err := repo.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, storeErr("list", "", err)
	}
	defer rows.Close()

	var products []models.Product
	for rows.Next() {
		var p models.Product
		if err := rows.Scan(&p.ID, &p.ProductURL, &p.Offers, &p.LastUpdated, &p.CreatedAt); err != nil {
			log.Printf("Error scanning product row: %v", err)
			continue
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("list", "", err)
	}
	return products, nil
}

func (repo *SQLiteRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := repo.DB.QueryRowContext(ctx, "SELECT COUNT(*) FROM products").Scan(&n); err != nil {
		return 0, storeErr("count", "", err)
	}
	return n, nil
}
