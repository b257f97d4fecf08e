// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/olegiv/inventory-go/internal/model"
)

const userColumns = `id, email, password_hash, role, name, created_at, updated_at, last_login_at`

func scanUser(row *sql.Row) (model.User, error) {
	var u model.User
	err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Role, &u.Name,
		&u.CreatedAt, &u.UpdatedAt, &u.LastLoginAt)
	return u, err
}

// CreateUserParams holds the fields for CreateUser.
type CreateUserParams struct {
	Email        string
	PasswordHash string
	Role         string
	Name         string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// CreateUser inserts a new user and returns the stored row. A duplicate
// email surfaces as a unique constraint error.
func (q *Queries) CreateUser(ctx context.Context, arg CreateUserParams) (model.User, error) {
	row := q.db.QueryRowContext(ctx, `
		INSERT INTO users (email, password_hash, role, name, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		RETURNING `+userColumns,
		arg.Email, arg.PasswordHash, arg.Role, arg.Name, arg.CreatedAt, arg.UpdatedAt)
	return scanUser(row)
}

// GetUserByID returns the user with the given ID.
func (q *Queries) GetUserByID(ctx context.Context, id int64) (model.User, error) {
	row := q.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id)
	return scanUser(row)
}

// GetUserByEmail returns the user with the given email.
func (q *Queries) GetUserByEmail(ctx context.Context, email string) (model.User, error) {
	row := q.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE email = ?`, email)
	return scanUser(row)
}

// EmailTakenByOtherUser reports how many users other than id already use
// the given email.
func (q *Queries) EmailTakenByOtherUser(ctx context.Context, email string, id int64) (int64, error) {
	var count int64
	err := q.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM users WHERE email = ? AND id != ?`, email, id).Scan(&count)
	return count, err
}

// UpdateUserProfileParams holds the fields for UpdateUserProfile.
type UpdateUserProfileParams struct {
	Name      string
	Email     string
	UpdatedAt time.Time
	ID        int64
}

// UpdateUserProfile updates name and email for a user.
func (q *Queries) UpdateUserProfile(ctx context.Context, arg UpdateUserProfileParams) (model.User, error) {
	row := q.db.QueryRowContext(ctx, `
		UPDATE users SET name = ?, email = ?, updated_at = ?
		WHERE id = ?
		RETURNING `+userColumns,
		arg.Name, arg.Email, arg.UpdatedAt, arg.ID)
	return scanUser(row)
}

// UpdateUserPasswordParams holds the fields for UpdateUserPassword.
type UpdateUserPasswordParams struct {
	PasswordHash string
	UpdatedAt    time.Time
	ID           int64
}

// UpdateUserPassword replaces the stored password hash for a user.
func (q *Queries) UpdateUserPassword(ctx context.Context, arg UpdateUserPasswordParams) error {
	_, err := q.db.ExecContext(ctx,
		`UPDATE users SET password_hash = ?, updated_at = ? WHERE id = ?`,
		arg.PasswordHash, arg.UpdatedAt, arg.ID)
	return err
}

// UpdateUserLastLoginParams holds the fields for UpdateUserLastLogin.
type UpdateUserLastLoginParams struct {
	LastLoginAt sql.NullTime
	ID          int64
}

// UpdateUserLastLogin records the most recent successful login.
func (q *Queries) UpdateUserLastLogin(ctx context.Context, arg UpdateUserLastLoginParams) error {
	_, err := q.db.ExecContext(ctx,
		`UPDATE users SET last_login_at = ? WHERE id = ?`, arg.LastLoginAt, arg.ID)
	return err
}

// CountUsers returns the total number of users.
func (q *Queries) CountUsers(ctx context.Context) (int64, error) {
	var count int64
	err := q.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&count)
	return count, err
}
