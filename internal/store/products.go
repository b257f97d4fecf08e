// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/olegiv/inventory-go/internal/model"
)

// ProductWithCategory is a product row annotated with the name of its
// category, when it has one.
type ProductWithCategory struct {
	model.Product
	CategoryName sql.NullString `json:"-"`
}

const productJoinQuery = `
	SELECT p.id, p.name, p.description, p.price, p.stock, p.category_id,
	       p.created_at, p.updated_at, c.name AS category_name
	FROM products p
	LEFT JOIN categories c ON c.id = p.category_id`

func scanProductRow(scan func(dest ...any) error) (ProductWithCategory, error) {
	var (
		p        ProductWithCategory
		priceStr string
	)
	if err := scan(&p.ID, &p.Name, &p.Description, &priceStr, &p.Stock,
		&p.CategoryID, &p.CreatedAt, &p.UpdatedAt, &p.CategoryName); err != nil {
		return ProductWithCategory{}, err
	}
	price, err := decimal.NewFromString(priceStr)
	if err != nil {
		return ProductWithCategory{}, fmt.Errorf("parsing stored price %q: %w", priceStr, err)
	}
	p.Price = price
	return p, nil
}

func (q *Queries) queryProducts(ctx context.Context, query string, args ...any) ([]ProductWithCategory, error) {
	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []ProductWithCategory
	for rows.Next() {
		p, err := scanProductRow(rows.Scan)
		if err != nil {
			return nil, err
		}
		result = append(result, p)
	}
	return result, rows.Err()
}

// CreateProductParams holds the fields for CreateProduct.
type CreateProductParams struct {
	Name        string
	Description string
	Price       decimal.Decimal
	Stock       int64
	CategoryID  sql.NullInt64
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// CreateProduct inserts a new product. An unknown category surfaces as a
// foreign key constraint error.
func (q *Queries) CreateProduct(ctx context.Context, arg CreateProductParams) (ProductWithCategory, error) {
	var id int64
	err := q.db.QueryRowContext(ctx, `
		INSERT INTO products (name, description, price, stock, category_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		RETURNING id`,
		arg.Name, arg.Description, arg.Price.String(), arg.Stock, arg.CategoryID,
		arg.CreatedAt, arg.UpdatedAt).Scan(&id)
	if err != nil {
		return ProductWithCategory{}, err
	}
	return q.GetProductByID(ctx, id)
}

// GetProductByID returns the product with the given ID, including its
// category name when set.
func (q *Queries) GetProductByID(ctx context.Context, id int64) (ProductWithCategory, error) {
	row := q.db.QueryRowContext(ctx, productJoinQuery+` WHERE p.id = ?`, id)
	return scanProductRow(row.Scan)
}

// ListProducts returns all products newest-first by creation time.
func (q *Queries) ListProducts(ctx context.Context) ([]ProductWithCategory, error) {
	return q.queryProducts(ctx, productJoinQuery+` ORDER BY p.created_at DESC, p.id DESC`)
}

// SearchProducts returns products whose name or description contains the
// term, case-insensitively, newest-first by creation time.
func (q *Queries) SearchProducts(ctx context.Context, term string) ([]ProductWithCategory, error) {
	pattern := "%" + escapeLike(term) + "%"
	return q.queryProducts(ctx, productJoinQuery+`
		WHERE LOWER(p.name) LIKE LOWER(?) ESCAPE '\'
		   OR LOWER(p.description) LIKE LOWER(?) ESCAPE '\'
		ORDER BY p.created_at DESC, p.id DESC`,
		pattern, pattern)
}

// ListLowStockProducts returns products with stock at or below the
// threshold, ascending by stock.
func (q *Queries) ListLowStockProducts(ctx context.Context, threshold int64) ([]ProductWithCategory, error) {
	return q.queryProducts(ctx, productJoinQuery+`
		WHERE p.stock <= ?
		ORDER BY p.stock ASC, p.id ASC`, threshold)
}

// UpdateProductParams holds the fields for UpdateProduct.
type UpdateProductParams struct {
	Name        string
	Description string
	Price       decimal.Decimal
	Stock       int64
	CategoryID  sql.NullInt64
	UpdatedAt   time.Time
	ID          int64
}

// UpdateProduct replaces all mutable fields of a product.
func (q *Queries) UpdateProduct(ctx context.Context, arg UpdateProductParams) (ProductWithCategory, error) {
	result, err := q.db.ExecContext(ctx, `
		UPDATE products SET name = ?, description = ?, price = ?, stock = ?,
		       category_id = ?, updated_at = ?
		WHERE id = ?`,
		arg.Name, arg.Description, arg.Price.String(), arg.Stock, arg.CategoryID,
		arg.UpdatedAt, arg.ID)
	if err != nil {
		return ProductWithCategory{}, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return ProductWithCategory{}, err
	}
	if affected == 0 {
		return ProductWithCategory{}, sql.ErrNoRows
	}
	return q.GetProductByID(ctx, arg.ID)
}

// DeleteProduct removes a product.
func (q *Queries) DeleteProduct(ctx context.Context, id int64) error {
	result, err := q.db.ExecContext(ctx, `DELETE FROM products WHERE id = ?`, id)
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

// CountProducts returns the total number of products.
func (q *Queries) CountProducts(ctx context.Context) (int64, error) {
	var count int64
	err := q.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM products`).Scan(&count)
	return count, err
}

// CountLowStockProducts returns how many products have stock at or below
// the threshold.
func (q *Queries) CountLowStockProducts(ctx context.Context, threshold int64) (int64, error) {
	var count int64
	err := q.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM products WHERE stock <= ?`, threshold).Scan(&count)
	return count, err
}

// SumProductStock returns the total number of items in stock across all
// products.
func (q *Queries) SumProductStock(ctx context.Context) (int64, error) {
	var total int64
	err := q.db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(stock), 0) FROM products`).Scan(&total)
	return total, err
}

// escapeLike escapes LIKE wildcards in a user-supplied search term.
func escapeLike(s string) string {
	out := make([]rune, 0, len(s))
	for _, r := range s {
		switch r {
		case '%', '_', '\\':
			out = append(out, '\\')
		}
		out = append(out, r)
	}
	return string(out)
}
