// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"errors"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// IsUniqueConstraintError reports whether err is a SQLite unique (or
// primary key) constraint violation. Uniqueness races between concurrent
// inserts surface here rather than through pre-checks.
func IsUniqueConstraintError(err error) bool {
	var se *sqlite.Error
	if !errors.As(err, &se) {
		return false
	}
	switch se.Code() {
	case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
		return true
	}
	return false
}

// IsForeignKeyError reports whether err is a SQLite foreign key
// constraint violation, e.g. deleting a category that products still
// reference, or inserting a product with an unknown category.
func IsForeignKeyError(err error) bool {
	var se *sqlite.Error
	if !errors.As(err, &se) {
		return false
	}
	switch se.Code() {
	case sqlite3.SQLITE_CONSTRAINT_FOREIGNKEY, sqlite3.SQLITE_CONSTRAINT_TRIGGER:
		return true
	}
	return false
}

// IsCheckConstraintError reports whether err is a SQLite CHECK constraint
// violation (e.g. negative stock slipping past validation).
func IsCheckConstraintError(err error) bool {
	var se *sqlite.Error
	if !errors.As(err, &se) {
		return false
	}
	return se.Code() == sqlite3.SQLITE_CONSTRAINT_CHECK
}
