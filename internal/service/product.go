// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/olegiv/inventory-go/internal/cache"
	"github.com/olegiv/inventory-go/internal/model"
	"github.com/olegiv/inventory-go/internal/store"
)

// cacheKeyDashboardStats is the cache key for dashboard statistics.
const cacheKeyDashboardStats = "stats:dashboard"

// DefaultLowStockThreshold marks products as low stock at or below this level.
const DefaultLowStockThreshold = 10

// Stats summarizes the inventory for the dashboard.
type Stats struct {
	TotalProducts int64 `json:"total_products"`
	LowStockCount int64 `json:"low_stock_count"`
	TotalItems    int64 `json:"total_items"`
}

// ProductService provides product management and inventory statistics.
type ProductService struct {
	queries           *store.Queries
	cache             cache.Cacher
	events            *EventService
	lowStockThreshold int64
}

// NewProductService creates a new ProductService.
func NewProductService(db *sql.DB, c cache.Cacher, events *EventService, lowStockThreshold int64) *ProductService {
	if lowStockThreshold <= 0 {
		lowStockThreshold = DefaultLowStockThreshold
	}
	return &ProductService{
		queries:           store.New(db),
		cache:             c,
		events:            events,
		lowStockThreshold: lowStockThreshold,
	}
}

// LowStockThreshold returns the configured threshold.
func (s *ProductService) LowStockThreshold() int64 {
	return s.lowStockThreshold
}

// List returns products newest-first. A non-empty search term filters by
// case-insensitive substring match on name or description.
func (s *ProductService) List(ctx context.Context, search string) ([]store.ProductWithCategory, error) {
	search = strings.TrimSpace(search)

	var (
		products []store.ProductWithCategory
		err      error
	)
	if search != "" {
		products, err = s.queries.SearchProducts(ctx, search)
	} else {
		products, err = s.queries.ListProducts(ctx)
	}
	if err != nil {
		return nil, fmt.Errorf("listing products: %w", err)
	}
	return products, nil
}

// Get returns a single product by ID.
func (s *ProductService) Get(ctx context.Context, id int64) (store.ProductWithCategory, error) {
	product, err := s.queries.GetProductByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return store.ProductWithCategory{}, ErrNotFound
		}
		return store.ProductWithCategory{}, fmt.Errorf("looking up product: %w", err)
	}
	return product, nil
}

// ProductParams holds the input for Create and Update.
type ProductParams struct {
	Name        string
	Description string
	Price       decimal.Decimal
	Stock       int64
	CategoryID  *int64
}

// validate checks field constraints shared by create and update.
func (p *ProductParams) validate() error {
	verr := &ValidationError{}
	if strings.TrimSpace(p.Name) == "" {
		verr.AddField("name", "Name is required")
	}
	if p.Price.IsNegative() {
		verr.AddField("price", "Price must not be negative")
	}
	if p.Stock < 0 {
		verr.AddField("stock", "Stock must not be negative")
	}
	if verr.HasErrors() {
		return verr
	}
	return nil
}

// categoryID converts the optional pointer into a nullable column value.
func (p *ProductParams) categoryID() sql.NullInt64 {
	if p.CategoryID == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *p.CategoryID, Valid: true}
}

// Create adds a new product.
func (s *ProductService) Create(ctx context.Context, arg ProductParams, userID *int64) (store.ProductWithCategory, error) {
	if err := arg.validate(); err != nil {
		return store.ProductWithCategory{}, err
	}

	now := time.Now()
	product, err := s.queries.CreateProduct(ctx, store.CreateProductParams{
		Name:        strings.TrimSpace(arg.Name),
		Description: strings.TrimSpace(arg.Description),
		Price:       arg.Price,
		Stock:       arg.Stock,
		CategoryID:  arg.categoryID(),
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	if err != nil {
		if store.IsForeignKeyError(err) {
			return store.ProductWithCategory{}, NewValidationError("category_id", "Category does not exist")
		}
		return store.ProductWithCategory{}, fmt.Errorf("creating product: %w", err)
	}

	s.invalidate(ctx)
	_ = s.events.LogProductEvent(ctx, model.EventLevelInfo, "Product created",
		userID, "", map[string]any{"product_id": product.ID, "name": product.Name})

	return product, nil
}

// Update replaces all mutable fields of a product.
func (s *ProductService) Update(ctx context.Context, id int64, arg ProductParams, userID *int64) (store.ProductWithCategory, error) {
	if err := arg.validate(); err != nil {
		return store.ProductWithCategory{}, err
	}

	product, err := s.queries.UpdateProduct(ctx, store.UpdateProductParams{
		Name:        strings.TrimSpace(arg.Name),
		Description: strings.TrimSpace(arg.Description),
		Price:       arg.Price,
		Stock:       arg.Stock,
		CategoryID:  arg.categoryID(),
		UpdatedAt:   time.Now(),
		ID:          id,
	})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return store.ProductWithCategory{}, ErrNotFound
		}
		if store.IsForeignKeyError(err) {
			return store.ProductWithCategory{}, NewValidationError("category_id", "Category does not exist")
		}
		return store.ProductWithCategory{}, fmt.Errorf("updating product: %w", err)
	}

	s.invalidate(ctx)
	_ = s.events.LogProductEvent(ctx, model.EventLevelInfo, "Product updated",
		userID, "", map[string]any{"product_id": product.ID, "name": product.Name})

	return product, nil
}

// Delete removes a product.
func (s *ProductService) Delete(ctx context.Context, id int64, userID *int64) error {
	if err := s.queries.DeleteProduct(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		return fmt.Errorf("deleting product: %w", err)
	}

	s.invalidate(ctx)
	_ = s.events.LogProductEvent(ctx, model.EventLevelInfo, "Product deleted",
		userID, "", map[string]any{"product_id": id})

	return nil
}

// LowStock returns products at or below the threshold, lowest stock first.
func (s *ProductService) LowStock(ctx context.Context) ([]store.ProductWithCategory, error) {
	products, err := s.queries.ListLowStockProducts(ctx, s.lowStockThreshold)
	if err != nil {
		return nil, fmt.Errorf("listing low stock products: %w", err)
	}
	return products, nil
}

// Stats returns inventory statistics, served from cache when warm.
func (s *ProductService) Stats(ctx context.Context) (Stats, error) {
	if s.cache != nil {
		if data, err := s.cache.Get(ctx, cacheKeyDashboardStats); err == nil {
			var cached Stats
			if err := json.Unmarshal(data, &cached); err == nil {
				return cached, nil
			}
		}
	}

	var stats Stats
	var err error

	if stats.TotalProducts, err = s.queries.CountProducts(ctx); err != nil {
		return Stats{}, fmt.Errorf("counting products: %w", err)
	}
	if stats.LowStockCount, err = s.queries.CountLowStockProducts(ctx, s.lowStockThreshold); err != nil {
		return Stats{}, fmt.Errorf("counting low stock products: %w", err)
	}
	if stats.TotalItems, err = s.queries.SumProductStock(ctx); err != nil {
		return Stats{}, fmt.Errorf("summing stock: %w", err)
	}

	if s.cache != nil {
		if data, err := json.Marshal(stats); err == nil {
			if err := s.cache.Set(ctx, cacheKeyDashboardStats, data, 0); err != nil {
				slog.Debug("failed to cache stats", "error", err)
			}
		}
	}

	return stats, nil
}

// invalidate drops cached statistics after a write.
func (s *ProductService) invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, cacheKeyDashboardStats); err != nil {
		slog.Debug("failed to invalidate stats cache", "error", err)
	}
	// Product counts appear in the category listing too.
	if err := s.cache.Delete(ctx, cacheKeyCategoryList); err != nil {
		slog.Debug("failed to invalidate category cache", "error", err)
	}
}
