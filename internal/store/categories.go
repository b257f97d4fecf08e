// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/olegiv/inventory-go/internal/model"
)

const categoryColumns = `id, name, slug, created_at, updated_at`

func scanCategory(row *sql.Row) (model.Category, error) {
	var c model.Category
	err := row.Scan(&c.ID, &c.Name, &c.Slug, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}

// CategoryWithCount is a category row annotated with its product count.
type CategoryWithCount struct {
	model.Category
	ProductCount int64 `json:"product_count"`
}

// CreateCategoryParams holds the fields for CreateCategory.
type CreateCategoryParams struct {
	Name      string
	Slug      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// CreateCategory inserts a new category. A duplicate name or slug
// surfaces as a unique constraint error.
func (q *Queries) CreateCategory(ctx context.Context, arg CreateCategoryParams) (model.Category, error) {
	row := q.db.QueryRowContext(ctx, `
		INSERT INTO categories (name, slug, created_at, updated_at)
		VALUES (?, ?, ?, ?)
		RETURNING `+categoryColumns,
		arg.Name, arg.Slug, arg.CreatedAt, arg.UpdatedAt)
	return scanCategory(row)
}

// GetCategoryByID returns the category with the given ID.
func (q *Queries) GetCategoryByID(ctx context.Context, id int64) (model.Category, error) {
	row := q.db.QueryRowContext(ctx,
		`SELECT `+categoryColumns+` FROM categories WHERE id = ?`, id)
	return scanCategory(row)
}

// ListCategoriesWithProductCount returns all categories ordered by name
// ascending, each annotated with its current product count.
func (q *Queries) ListCategoriesWithProductCount(ctx context.Context) ([]CategoryWithCount, error) {
	rows, err := q.db.QueryContext(ctx, `
		SELECT c.id, c.name, c.slug, c.created_at, c.updated_at,
		       COUNT(p.id) AS product_count
		FROM categories c
		LEFT JOIN products p ON p.category_id = c.id
		GROUP BY c.id
		ORDER BY c.name ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []CategoryWithCount
	for rows.Next() {
		var c CategoryWithCount
		if err := rows.Scan(&c.ID, &c.Name, &c.Slug, &c.CreatedAt, &c.UpdatedAt, &c.ProductCount); err != nil {
			return nil, err
		}
		result = append(result, c)
	}
	return result, rows.Err()
}

// UpdateCategoryParams holds the fields for UpdateCategory.
type UpdateCategoryParams struct {
	Name      string
	Slug      string
	UpdatedAt time.Time
	ID        int64
}

// UpdateCategory updates name and slug for a category.
func (q *Queries) UpdateCategory(ctx context.Context, arg UpdateCategoryParams) (model.Category, error) {
	row := q.db.QueryRowContext(ctx, `
		UPDATE categories SET name = ?, slug = ?, updated_at = ?
		WHERE id = ?
		RETURNING `+categoryColumns,
		arg.Name, arg.Slug, arg.UpdatedAt, arg.ID)
	return scanCategory(row)
}

// DeleteCategory removes a category. The foreign key constraint on
// products rejects the delete while any product still references it.
func (q *Queries) DeleteCategory(ctx context.Context, id int64) error {
	result, err := q.db.ExecContext(ctx, `DELETE FROM categories WHERE id = ?`, id)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// CountCategories returns the total number of categories.
func (q *Queries) CountCategories(ctx context.Context) (int64, error) {
	var count int64
	err := q.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM categories`).Scan(&count)
	return count, err
}

// CountProductsInCategory returns how many products reference a category.
func (q *Queries) CountProductsInCategory(ctx context.Context, categoryID int64) (int64, error) {
	var count int64
	err := q.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM products WHERE category_id = ?`, categoryID).Scan(&count)
	return count, err
}
