// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/olegiv/inventory-go/internal/cache"
	"github.com/olegiv/inventory-go/internal/testutil"
)

type testServices struct {
	db       *sql.DB
	account  *AccountService
	category *CategoryService
	product  *ProductService
}

func newTestServices(t *testing.T) *testServices {
	t.Helper()

	db := testutil.TestDB(t)
	events := NewEventService(db)

	c := cache.NewMemoryCache(cache.MemoryCacheOptions{DefaultTTL: time.Minute})
	t.Cleanup(func() { _ = c.Close() })

	return &testServices{
		db:       db,
		account:  NewAccountService(db, events),
		category: NewCategoryService(db, c, events),
		product:  NewProductService(db, c, events, 10),
	}
}

func TestRegisterAndAuthenticate(t *testing.T) {
	s := newTestServices(t)
	ctx := context.Background()

	user, err := s.account.Register(ctx, RegisterParams{
		Email:           "Alice@Example.com",
		Password:        "password123",
		ConfirmPassword: "password123",
		Name:            "Alice",
	})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if user.Email != "alice@example.com" {
		t.Errorf("email should be lowercased, got %q", user.Email)
	}

	got, err := s.account.Authenticate(ctx, "alice@example.com", "password123")
	if err != nil {
		t.Fatalf("Authenticate: %v", err)
	}
	if got.ID != user.ID {
		t.Errorf("authenticated user ID = %d, want %d", got.ID, user.ID)
	}
	if !got.LastLoginAt.Valid {
		t.Error("LastLoginAt should be set after login")
	}
}

func TestRegisterValidationOrder(t *testing.T) {
	s := newTestServices(t)
	ctx := context.Background()

	// Bad email reported before short password
	_, err := s.account.Register(ctx, RegisterParams{
		Email: "not-an-email", Password: "short", ConfirmPassword: "short",
	})
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Errorf("bad email should yield ValidationError, got %v", err)
	}

	// Short password reported before mismatch
	_, err = s.account.Register(ctx, RegisterParams{
		Email: "a@example.com", Password: "short", ConfirmPassword: "different",
	})
	if !errors.Is(err, ErrPasswordTooShort) {
		t.Errorf("expected ErrPasswordTooShort, got %v", err)
	}

	// Mismatch
	_, err = s.account.Register(ctx, RegisterParams{
		Email: "a@example.com", Password: "password123", ConfirmPassword: "password124",
	})
	if !errors.Is(err, ErrPasswordMismatch) {
		t.Errorf("expected ErrPasswordMismatch, got %v", err)
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	s := newTestServices(t)
	ctx := context.Background()

	params := RegisterParams{
		Email: "dup@example.com", Password: "password123", ConfirmPassword: "password123",
	}
	if _, err := s.account.Register(ctx, params); err != nil {
		t.Fatalf("first Register: %v", err)
	}

	_, err := s.account.Register(ctx, params)
	if !errors.Is(err, ErrDuplicateEmail) {
		t.Errorf("expected ErrDuplicateEmail, got %v", err)
	}
}

func TestAuthenticateInvalidCredentials(t *testing.T) {
	s := newTestServices(t)
	ctx := context.Background()

	_, _ = s.account.Register(ctx, RegisterParams{
		Email: "bob@example.com", Password: "password123", ConfirmPassword: "password123",
	})

	// Wrong password and unknown email return the same error
	_, err := s.account.Authenticate(ctx, "bob@example.com", "wrong-password")
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("wrong password: expected ErrInvalidCredentials, got %v", err)
	}

	_, err = s.account.Authenticate(ctx, "nobody@example.com", "password123")
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("unknown email: expected ErrInvalidCredentials, got %v", err)
	}
}

func TestChangePassword(t *testing.T) {
	s := newTestServices(t)
	ctx := context.Background()

	user, err := s.account.Register(ctx, RegisterParams{
		Email: "carol@example.com", Password: "password123", ConfirmPassword: "password123",
	})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	// Wrong current password is checked first and leaves the hash intact
	err = s.account.ChangePassword(ctx, ChangePasswordParams{
		UserID: user.ID, CurrentPassword: "wrong",
		NewPassword: "short", ConfirmPassword: "different",
	})
	if !errors.Is(err, ErrInvalidCurrentPassword) {
		t.Errorf("expected ErrInvalidCurrentPassword, got %v", err)
	}
	if _, err := s.account.Authenticate(ctx, "carol@example.com", "password123"); err != nil {
		t.Errorf("old password should still work after failed change: %v", err)
	}

	// Mismatch before length
	err = s.account.ChangePassword(ctx, ChangePasswordParams{
		UserID: user.ID, CurrentPassword: "password123",
		NewPassword: "short", ConfirmPassword: "different",
	})
	if !errors.Is(err, ErrPasswordMismatch) {
		t.Errorf("expected ErrPasswordMismatch, got %v", err)
	}

	// Length
	err = s.account.ChangePassword(ctx, ChangePasswordParams{
		UserID: user.ID, CurrentPassword: "password123",
		NewPassword: "short", ConfirmPassword: "short",
	})
	if !errors.Is(err, ErrPasswordTooShort) {
		t.Errorf("expected ErrPasswordTooShort, got %v", err)
	}

	// Success
	err = s.account.ChangePassword(ctx, ChangePasswordParams{
		UserID: user.ID, CurrentPassword: "password123",
		NewPassword: "newpassword456", ConfirmPassword: "newpassword456",
	})
	if err != nil {
		t.Fatalf("ChangePassword: %v", err)
	}
	if _, err := s.account.Authenticate(ctx, "carol@example.com", "newpassword456"); err != nil {
		t.Errorf("new password should work: %v", err)
	}
	if _, err := s.account.Authenticate(ctx, "carol@example.com", "password123"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("old password should be rejected, got %v", err)
	}
}

func TestUpdateProfileEmailChange(t *testing.T) {
	s := newTestServices(t)
	ctx := context.Background()

	user, _ := s.account.Register(ctx, RegisterParams{
		Email: "dave@example.com", Password: "password123", ConfirmPassword: "password123",
	})
	other, _ := s.account.Register(ctx, RegisterParams{
		Email: "taken@example.com", Password: "password123", ConfirmPassword: "password123",
	})
	_ = other

	// Same email reports no change
	_, changed, err := s.account.UpdateProfile(ctx, UpdateProfileParams{
		UserID: user.ID, Name: "Dave", Email: "dave@example.com",
	})
	if err != nil {
		t.Fatalf("UpdateProfile: %v", err)
	}
	if changed {
		t.Error("emailChanged should be false for unchanged email")
	}

	// Taken email is rejected
	_, _, err = s.account.UpdateProfile(ctx, UpdateProfileParams{
		UserID: user.ID, Name: "Dave", Email: "taken@example.com",
	})
	if !errors.Is(err, ErrDuplicateEmail) {
		t.Errorf("expected ErrDuplicateEmail, got %v", err)
	}

	// New email reports a change
	updated, changed, err := s.account.UpdateProfile(ctx, UpdateProfileParams{
		UserID: user.ID, Name: "Dave", Email: "dave2@example.com",
	})
	if err != nil {
		t.Fatalf("UpdateProfile: %v", err)
	}
	if !changed {
		t.Error("emailChanged should be true for a new email")
	}
	if updated.Email != "dave2@example.com" {
		t.Errorf("Email = %q, want dave2@example.com", updated.Email)
	}
}

func TestCategorySlugGeneration(t *testing.T) {
	s := newTestServices(t)
	ctx := context.Background()

	category, err := s.category.Create(ctx, "  Home & Garden  ", nil)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if category.Name != "Home & Garden" {
		t.Errorf("Name = %q, want trimmed name", category.Name)
	}
	if category.Slug != "home-garden" {
		t.Errorf("Slug = %q, want home-garden", category.Slug)
	}

	// A name with no slug-safe characters is rejected
	_, err = s.category.Create(ctx, "!!!", nil)
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Errorf("expected ValidationError for unsluggable name, got %v", err)
	}
}

func TestCategorySlugRecomputedOnlyOnRename(t *testing.T) {
	s := newTestServices(t)
	ctx := context.Background()

	category, err := s.category.Create(ctx, "Electronics", nil)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	// Saving with the same name keeps the slug
	same, err := s.category.Update(ctx, category.ID, "Electronics", nil)
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if same.Slug != "electronics" {
		t.Errorf("Slug = %q, want electronics", same.Slug)
	}

	// Renaming recomputes the slug
	renamed, err := s.category.Update(ctx, category.ID, "Gadgets & Gear", nil)
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if renamed.Slug != "gadgets-gear" {
		t.Errorf("Slug = %q, want gadgets-gear", renamed.Slug)
	}
}

func TestCategoryDeleteGuard(t *testing.T) {
	s := newTestServices(t)
	ctx := context.Background()

	category, err := s.category.Create(ctx, "Electronics", nil)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	_, err = s.product.Create(ctx, ProductParams{
		Name:       "Laptop",
		Price:      decimal.RequireFromString("1299.99"),
		Stock:      15,
		CategoryID: &category.ID,
	}, nil)
	if err != nil {
		t.Fatalf("Create product: %v", err)
	}

	if err := s.category.Delete(ctx, category.ID, nil); !errors.Is(err, ErrCategoryInUse) {
		t.Errorf("expected ErrCategoryInUse, got %v", err)
	}

	// After removing the product, the delete succeeds
	products, _ := s.product.List(ctx, "")
	if err := s.product.Delete(ctx, products[0].ID, nil); err != nil {
		t.Fatalf("Delete product: %v", err)
	}
	if err := s.category.Delete(ctx, category.ID, nil); err != nil {
		t.Errorf("Delete after emptying: %v", err)
	}
}

func TestCategoryDuplicateName(t *testing.T) {
	s := newTestServices(t)
	ctx := context.Background()

	if _, err := s.category.Create(ctx, "Books", nil); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := s.category.Create(ctx, "Books", nil); !errors.Is(err, ErrDuplicateCategory) {
		t.Errorf("expected ErrDuplicateCategory, got %v", err)
	}
}

func TestCategoryListCacheInvalidation(t *testing.T) {
	s := newTestServices(t)
	ctx := context.Background()

	if _, err := s.category.Create(ctx, "Alpha", nil); err != nil {
		t.Fatalf("Create: %v", err)
	}

	// Warm the cache
	list, err := s.category.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("len = %d, want 1", len(list))
	}

	// A write must invalidate the cached listing
	if _, err := s.category.Create(ctx, "Bravo", nil); err != nil {
		t.Fatalf("Create: %v", err)
	}
	list, err = s.category.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list) != 2 {
		t.Errorf("len after second create = %d, want 2 (stale cache?)", len(list))
	}
}

func TestProductValidation(t *testing.T) {
	s := newTestServices(t)
	ctx := context.Background()

	tests := []struct {
		name   string
		params ProductParams
		field  string
	}{
		{"missing_name", ProductParams{Price: decimal.New(1, 0), Stock: 1}, "name"},
		{"negative_price", ProductParams{Name: "X", Price: decimal.RequireFromString("-0.01"), Stock: 1}, "price"},
		{"negative_stock", ProductParams{Name: "X", Price: decimal.New(1, 0), Stock: -1}, "stock"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.product.Create(ctx, tt.params, nil)
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if _, ok := verr.Fields[tt.field]; !ok {
				t.Errorf("expected error on field %q, got %v", tt.field, verr.Fields)
			}
		})
	}

	// Unknown category surfaces as a field error too
	badID := int64(9999)
	_, err := s.product.Create(ctx, ProductParams{
		Name: "Orphan", Price: decimal.New(1, 0), Stock: 1, CategoryID: &badID,
	}, nil)
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError for unknown category, got %v", err)
	}
	if _, ok := verr.Fields["category_id"]; !ok {
		t.Errorf("expected error on category_id, got %v", verr.Fields)
	}
}

func TestProductZeroPriceAllowed(t *testing.T) {
	s := newTestServices(t)

	product, err := s.product.Create(context.Background(), ProductParams{
		Name: "Freebie", Price: decimal.Zero, Stock: 0,
	}, nil)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if !product.Price.IsZero() {
		t.Errorf("Price = %s, want 0", product.Price)
	}
}

func TestProductSearch(t *testing.T) {
	s := newTestServices(t)
	ctx := context.Background()

	_, _ = s.product.Create(ctx, ProductParams{
		Name: "Laptop", Description: "High-performance machine",
		Price: decimal.RequireFromString("1299.99"), Stock: 15,
	}, nil)
	_, _ = s.product.Create(ctx, ProductParams{
		Name: "Desk Lamp", Price: decimal.RequireFromString("39.99"), Stock: 12,
	}, nil)

	results, err := s.product.List(ctx, "LAPTOP")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(results) != 1 || results[0].Name != "Laptop" {
		t.Errorf("search LAPTOP returned %d results", len(results))
	}

	results, err = s.product.List(ctx, "machine")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(results) != 1 {
		t.Errorf("description search returned %d results, want 1", len(results))
	}
}

func TestLowStockBoundary(t *testing.T) {
	s := newTestServices(t)
	ctx := context.Background()

	_, _ = s.product.Create(ctx, ProductParams{Name: "At", Price: decimal.New(1, 0), Stock: 10}, nil)
	_, _ = s.product.Create(ctx, ProductParams{Name: "Above", Price: decimal.New(1, 0), Stock: 11}, nil)

	low, err := s.product.LowStock(ctx)
	if err != nil {
		t.Fatalf("LowStock: %v", err)
	}
	if len(low) != 1 || low[0].Name != "At" {
		t.Errorf("low stock should include 10 and exclude 11, got %d products", len(low))
	}
}

func TestStatsAndInvalidation(t *testing.T) {
	s := newTestServices(t)
	ctx := context.Background()

	_, _ = s.product.Create(ctx, ProductParams{Name: "A", Price: decimal.New(1, 0), Stock: 5}, nil)
	_, _ = s.product.Create(ctx, ProductParams{Name: "B", Price: decimal.New(1, 0), Stock: 40}, nil)

	stats, err := s.product.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if stats.TotalProducts != 2 {
		t.Errorf("TotalProducts = %d, want 2", stats.TotalProducts)
	}
	if stats.LowStockCount != 1 {
		t.Errorf("LowStockCount = %d, want 1", stats.LowStockCount)
	}
	if stats.TotalItems != 45 {
		t.Errorf("TotalItems = %d, want 45", stats.TotalItems)
	}

	// A write invalidates the cached stats
	_, _ = s.product.Create(ctx, ProductParams{Name: "C", Price: decimal.New(1, 0), Stock: 1}, nil)
	stats, err = s.product.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if stats.TotalProducts != 3 {
		t.Errorf("TotalProducts after create = %d, want 3 (stale cache?)", stats.TotalProducts)
	}
	if stats.TotalItems != 46 {
		t.Errorf("TotalItems after create = %d, want 46", stats.TotalItems)
	}
}

func TestProductUpdateNotFound(t *testing.T) {
	s := newTestServices(t)

	_, err := s.product.Update(context.Background(), 9999, ProductParams{
		Name: "Ghost", Price: decimal.New(1, 0), Stock: 1,
	}, nil)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}
