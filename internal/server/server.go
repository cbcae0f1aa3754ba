package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/munaray/idealo/internal/database"
	"github.com/munaray/idealo/internal/models"
	"github.com/munaray/idealo/pkg/config"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

// ProductReader is the read side of a product store.
type ProductReader interface {
	Get(ctx context.Context, productURL string) (*models.Product, error)
	List(ctx context.Context, filters models.ProductFilters) ([]models.Product, error)
	Count(ctx context.Context) (int, error)
}

// NewHandler routes the products API.
func NewHandler(repo ProductReader) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /products", productsHandler(repo))
	mux.HandleFunc("GET /products/lookup", lookupHandler(repo))
	return mux
}

// Start serves the products API until ctx is cancelled or the listener fails.
func Start(ctx context.Context, repo ProductReader, cfg config.ServerConfig) error {
	srv := &http.Server{Addr: ":" + cfg.Port, Handler: NewHandler(repo)}
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Printf("Starting API server on port %s", cfg.Port)
		log.Printf("Endpoint available at http://localhost:%s/products", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen on :%s: %w", cfg.Port, err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(gctx), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

func productsHandler(repo ProductReader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		queryParams := r.URL.Query()
		page, _ := strconv.Atoi(queryParams.Get("page"))
		if page < 1 {
			page = 1
		}
		limit, _ := strconv.Atoi(queryParams.Get("limit"))
		if limit < 1 {
			limit = 20
		}
		offset := (page - 1) * limit

		filters := models.ProductFilters{Limit: limit, Offset: offset}

		totalProducts, err := repo.Count(r.Context())
		if err != nil {
			log.Printf("Failed to count products: %v", err)
			http.Error(w, "Failed to count products", http.StatusInternalServerError)
			return
		}
		totalPages := int(math.Ceil(float64(totalProducts) / float64(limit)))

		products, err := repo.List(r.Context(), filters)
		if err != nil {
			log.Printf("Failed to list products: %v", err)
			http.Error(w, "Failed to get products", http.StatusInternalServerError)
			return
		}
		if products == nil {
			products = []models.Product{}
		}

		writeJSON(w, models.ProductsResponse{
			Data: products,
			Pagination: models.Pagination{
				TotalPages:  totalPages,
				CurrentPage: page,
				Total:       totalProducts,
			},
		})
	}
}

func lookupHandler(repo ProductReader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		productURL := r.URL.Query().Get("url")
		if productURL == "" {
			http.Error(w, "Missing url parameter", http.StatusBadRequest)
			return
		}

		product, err := repo.Get(r.Context(), productURL)
		if errors.Is(err, database.ErrNotFound) {
			http.Error(w, "Product not found", http.StatusNotFound)
			return
		}
		if err != nil {
			log.Printf("Failed to get product %s: %v", productURL, err)
			http.Error(w, "Failed to get product", http.StatusInternalServerError)
			return
		}
		writeJSON(w, product)
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}
