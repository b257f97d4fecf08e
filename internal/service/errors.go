// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package service provides business logic for accounts, categories,
// products, and event logging.
package service

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors returned by the service layer. Handlers translate
// these into HTTP status codes.
var (
	// ErrNotFound indicates the requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidCredentials indicates a failed login. It deliberately does
	// not distinguish between an unknown email and a wrong password.
	ErrInvalidCredentials = errors.New("invalid email or password")

	// ErrDuplicateEmail indicates the email is already registered.
	ErrDuplicateEmail = errors.New("email already in use")

	// ErrDuplicateCategory indicates a category with the same name or slug exists.
	ErrDuplicateCategory = errors.New("category already exists")

	// ErrCategoryInUse indicates a category still has products assigned.
	ErrCategoryInUse = errors.New("category has associated products")

	// ErrInvalidCurrentPassword indicates the current password check failed.
	ErrInvalidCurrentPassword = errors.New("current password is incorrect")

	// ErrPasswordMismatch indicates the password confirmation did not match.
	ErrPasswordMismatch = errors.New("passwords do not match")

	// ErrPasswordTooShort indicates the new password is below the minimum length.
	ErrPasswordTooShort = errors.New("password must be at least 8 characters")
)

// ValidationError carries per-field validation messages.
type ValidationError struct {
	Fields map[string]string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return "validation failed"
	}
	var parts []string
	for field, msg := range e.Fields {
		parts = append(parts, fmt.Sprintf("%s: %s", field, msg))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// NewValidationError creates a ValidationError with a single field message.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: message}}
}

// AddField adds a field message, initializing the map if needed.
func (e *ValidationError) AddField(field, message string) {
	if e.Fields == nil {
		e.Fields = make(map[string]string)
	}
	e.Fields[field] = message
}

// HasErrors reports whether any field messages were recorded.
func (e *ValidationError) HasErrors() bool {
	return len(e.Fields) > 0
}
