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

	"github.com/olegiv/inventory-go/internal/cache"
	"github.com/olegiv/inventory-go/internal/model"
	"github.com/olegiv/inventory-go/internal/store"
	"github.com/olegiv/inventory-go/internal/util"
)

// cacheKeyCategoryList is the cache key for the category listing.
const cacheKeyCategoryList = "categories:list"

// CategoryService provides category management with slug generation and
// read-through caching of the listing.
type CategoryService struct {
	db      *sql.DB
	queries *store.Queries
	cache   cache.Cacher
	events  *EventService
}

// NewCategoryService creates a new CategoryService.
func NewCategoryService(db *sql.DB, c cache.Cacher, events *EventService) *CategoryService {
	return &CategoryService{
		db:      db,
		queries: store.New(db),
		cache:   c,
		events:  events,
	}
}

// List returns all categories with their product counts, ordered by name.
func (s *CategoryService) List(ctx context.Context) ([]store.CategoryWithCount, error) {
	if s.cache != nil {
		if data, err := s.cache.Get(ctx, cacheKeyCategoryList); err == nil {
			var cached []store.CategoryWithCount
			if err := json.Unmarshal(data, &cached); err == nil {
				return cached, nil
			}
		}
	}

	categories, err := s.queries.ListCategoriesWithProductCount(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing categories: %w", err)
	}

	if s.cache != nil {
		if data, err := json.Marshal(categories); err == nil {
			if err := s.cache.Set(ctx, cacheKeyCategoryList, data, 0); err != nil {
				slog.Debug("failed to cache category list", "error", err)
			}
		}
	}

	return categories, nil
}

// Get returns a single category by ID.
func (s *CategoryService) Get(ctx context.Context, id int64) (model.Category, error) {
	category, err := s.queries.GetCategoryByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Category{}, ErrNotFound
		}
		return model.Category{}, fmt.Errorf("looking up category: %w", err)
	}
	return category, nil
}

// Create adds a new category. The slug is derived from the name; a name
// that reduces to an empty slug is rejected.
func (s *CategoryService) Create(ctx context.Context, name string, userID *int64) (model.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return model.Category{}, NewValidationError("name", "Name is required")
	}

	slug := util.Slugify(name)
	if slug == "" {
		return model.Category{}, NewValidationError("name", "Name must contain at least one letter or number")
	}

	now := time.Now()
	category, err := s.queries.CreateCategory(ctx, store.CreateCategoryParams{
		Name:      name,
		Slug:      slug,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		if store.IsUniqueConstraintError(err) {
			return model.Category{}, ErrDuplicateCategory
		}
		return model.Category{}, fmt.Errorf("creating category: %w", err)
	}

	s.invalidate(ctx)
	_ = s.events.LogCategoryEvent(ctx, model.EventLevelInfo, "Category created",
		userID, "", map[string]any{"category_id": category.ID, "name": category.Name})

	return category, nil
}

// Update renames a category. The slug is recomputed only when the name
// actually changed, so existing links keep working after no-op saves.
func (s *CategoryService) Update(ctx context.Context, id int64, name string, userID *int64) (model.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return model.Category{}, NewValidationError("name", "Name is required")
	}

	current, err := s.queries.GetCategoryByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Category{}, ErrNotFound
		}
		return model.Category{}, fmt.Errorf("looking up category: %w", err)
	}

	slug := current.Slug
	if name != current.Name {
		slug = util.Slugify(name)
		if slug == "" {
			return model.Category{}, NewValidationError("name", "Name must contain at least one letter or number")
		}
	}

	category, err := s.queries.UpdateCategory(ctx, store.UpdateCategoryParams{
		Name:      name,
		Slug:      slug,
		UpdatedAt: time.Now(),
		ID:        id,
	})
	if err != nil {
		if store.IsUniqueConstraintError(err) {
			return model.Category{}, ErrDuplicateCategory
		}
		return model.Category{}, fmt.Errorf("updating category: %w", err)
	}

	s.invalidate(ctx)
	_ = s.events.LogCategoryEvent(ctx, model.EventLevelInfo, "Category updated",
		userID, "", map[string]any{"category_id": category.ID, "name": category.Name})

	return category, nil
}

// Delete removes a category. A category that still has products assigned
// is rejected with ErrCategoryInUse. The product count check and the
// delete run in one transaction so a concurrent assignment cannot slip
// between them.
func (s *CategoryService) Delete(ctx context.Context, id int64, userID *int64) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	qtx := s.queries.WithTx(tx)

	count, err := qtx.CountProductsInCategory(ctx, id)
	if err != nil {
		return fmt.Errorf("counting products: %w", err)
	}
	if count > 0 {
		return ErrCategoryInUse
	}

	if err := qtx.DeleteCategory(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		if store.IsForeignKeyError(err) {
			return ErrCategoryInUse
		}
		return fmt.Errorf("deleting category: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing delete: %w", err)
	}

	s.invalidate(ctx)
	_ = s.events.LogCategoryEvent(ctx, model.EventLevelInfo, "Category deleted",
		userID, "", map[string]any{"category_id": id})

	return nil
}

// invalidate drops cached listings and dashboard statistics.
func (s *CategoryService) invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, cacheKeyCategoryList); err != nil {
		slog.Debug("failed to invalidate category cache", "error", err)
	}
	if err := s.cache.Delete(ctx, cacheKeyDashboardStats); err != nil {
		slog.Debug("failed to invalidate stats cache", "error", err)
	}
}
