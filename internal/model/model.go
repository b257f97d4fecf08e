// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package model defines domain models and types used throughout the
// application including User, Category, Product, and event log structures.
package model

import (
	"database/sql"
	"time"

	"github.com/shopspring/decimal"
)

// User roles.
const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// User represents an application user.
type User struct {
	ID           int64        `json:"id"`
	Email        string       `json:"email"`
	PasswordHash string       `json:"-"` // Never expose in JSON
	Role         string       `json:"role"`
	Name         string       `json:"name"`
	CreatedAt    time.Time    `json:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at"`
	LastLoginAt  sql.NullTime `json:"last_login_at,omitempty"`
}

// IsAdmin returns true if the user has admin role.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// Category represents a product category. Slug is derived from Name at
// creation time and recomputed on update only when the name changed.
type Category struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Slug      string    `json:"slug"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Product represents an inventory item. Price uses exact decimal
// arithmetic since it represents currency; CategoryID is optional.
type Product struct {
	ID          int64           `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Price       decimal.Decimal `json:"price"`
	Stock       int64           `json:"stock"`
	CategoryID  sql.NullInt64   `json:"-"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// Event log levels.
const (
	EventLevelInfo    = "info"
	EventLevelWarning = "warning"
	EventLevelError   = "error"
)

// Event log categories.
const (
	EventCategoryAuth     = "auth"
	EventCategoryUser     = "user"
	EventCategoryCategory = "category"
	EventCategoryProduct  = "product"
	EventCategorySystem   = "system"
)

// Event represents an entry in the database-backed event log.
type Event struct {
	ID        int64         `json:"id"`
	Level     string        `json:"level"`
	Category  string        `json:"category"`
	Message   string        `json:"message"`
	UserID    sql.NullInt64 `json:"user_id,omitempty"`
	IPAddress string        `json:"ip_address,omitempty"`
	Metadata  string        `json:"metadata"`
	CreatedAt time.Time     `json:"created_at"`
}
