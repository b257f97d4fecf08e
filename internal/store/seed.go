// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/olegiv/inventory-go/internal/auth"
	"github.com/olegiv/inventory-go/internal/model"
	"github.com/olegiv/inventory-go/internal/util"
)

// Default admin credentials
const (
	DefaultAdminEmail    = "admin@example.com"
	DefaultAdminPassword = "changeme"
	DefaultAdminName     = "Admin User"
)

// seedProduct describes one sample catalog entry.
type seedProduct struct {
	name        string
	description string
	price       string
	stock       int64
	category    string
}

var seedCategories = []string{"Electronics", "Furniture", "Clothing"}

var seedProducts = []seedProduct{
	{"Laptop", "High-performance laptop for professionals", "1299.99", 15, "Electronics"},
	{"Office Chair", "Ergonomic office chair with lumbar support", "349.99", 8, "Furniture"},
	{"T-Shirt", "Cotton casual t-shirt", "29.99", 50, "Clothing"},
	{"Wireless Mouse", "Bluetooth wireless mouse with rechargeable battery", "49.99", 25, "Electronics"},
	{"Desk Lamp", "LED desk lamp with adjustable brightness", "39.99", 12, "Furniture"},
}

// Seed creates the default admin user and a small sample catalog.
// It is idempotent: when the admin user already exists nothing is done.
func Seed(ctx context.Context, db *sql.DB) error {
	queries := New(db)

	_, err := queries.GetUserByEmail(ctx, DefaultAdminEmail)
	if err == nil {
		slog.Info("admin user already exists, skipping seed")
		return nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("checking for admin user: %w", err)
	}

	passwordHash, err := auth.HashPassword(DefaultAdminPassword)
	if err != nil {
		return fmt.Errorf("hashing password: %w", err)
	}

	now := time.Now()
	user, err := queries.CreateUser(ctx, CreateUserParams{
		Email:        DefaultAdminEmail,
		PasswordHash: passwordHash,
		Role:         model.RoleAdmin,
		Name:         DefaultAdminName,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		return fmt.Errorf("creating admin user: %w", err)
	}

	slog.Info("created default admin user",
		"id", user.ID,
		"email", user.Email,
		"password", DefaultAdminPassword,
	)

	if err := seedCatalog(ctx, queries, now); err != nil {
		return err
	}

	return nil
}

// seedCatalog inserts the sample categories and products.
func seedCatalog(ctx context.Context, queries *Queries, now time.Time) error {
	categoryIDs := make(map[string]int64, len(seedCategories))
	for _, name := range seedCategories {
		category, err := queries.CreateCategory(ctx, CreateCategoryParams{
			Name:      name,
			Slug:      util.Slugify(name),
			CreatedAt: now,
			UpdatedAt: now,
		})
		if err != nil {
			return fmt.Errorf("creating category %q: %w", name, err)
		}
		categoryIDs[name] = category.ID
	}

	for _, p := range seedProducts {
		price, err := decimal.NewFromString(p.price)
		if err != nil {
			return fmt.Errorf("parsing seed price %q: %w", p.price, err)
		}
		_, err = queries.CreateProduct(ctx, CreateProductParams{
			Name:        p.name,
			Description: p.description,
			Price:       price,
			Stock:       p.stock,
			CategoryID:  sql.NullInt64{Int64: categoryIDs[p.category], Valid: true},
			CreatedAt:   now,
			UpdatedAt:   now,
		})
		if err != nil {
			return fmt.Errorf("creating product %q: %w", p.name, err)
		}
	}

	slog.Info("seeded sample catalog",
		"categories", len(seedCategories),
		"products", len(seedProducts),
	)
	return nil
}
