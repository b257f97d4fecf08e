// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"
	"time"

	"github.com/olegiv/inventory-go/internal/auth"
	"github.com/olegiv/inventory-go/internal/model"
	"github.com/olegiv/inventory-go/internal/store"
)

// MinPasswordLength is the minimum accepted password length.
const MinPasswordLength = 8

// AccountService provides registration, authentication, and profile management.
type AccountService struct {
	queries *store.Queries
	events  *EventService
}

// NewAccountService creates a new AccountService.
func NewAccountService(db *sql.DB, events *EventService) *AccountService {
	return &AccountService{
		queries: store.New(db),
		events:  events,
	}
}

// RegisterParams holds the input for Register.
type RegisterParams struct {
	Email           string
	Password        string
	ConfirmPassword string
	Name            string
}

// Register creates a new user account. Validation runs in a fixed order:
// email shape, password length, password confirmation, email availability.
func (s *AccountService) Register(ctx context.Context, arg RegisterParams) (model.User, error) {
	email := strings.ToLower(strings.TrimSpace(arg.Email))

	if _, err := mail.ParseAddress(email); err != nil {
		return model.User{}, NewValidationError("email", "Invalid email address")
	}
	if len(arg.Password) < MinPasswordLength {
		return model.User{}, ErrPasswordTooShort
	}
	if arg.Password != arg.ConfirmPassword {
		return model.User{}, ErrPasswordMismatch
	}

	hash, err := auth.HashPassword(arg.Password)
	if err != nil {
		return model.User{}, fmt.Errorf("hashing password: %w", err)
	}

	now := time.Now()
	user, err := s.queries.CreateUser(ctx, store.CreateUserParams{
		Email:        email,
		PasswordHash: hash,
		Role:         model.RoleUser,
		Name:         strings.TrimSpace(arg.Name),
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		if store.IsUniqueConstraintError(err) {
			return model.User{}, ErrDuplicateEmail
		}
		return model.User{}, fmt.Errorf("creating user: %w", err)
	}

	_ = s.events.LogAuthEvent(ctx, model.EventLevelInfo, "User registered",
		&user.ID, "", map[string]any{"email": user.Email})

	return user, nil
}

// Authenticate verifies credentials and returns the user on success.
// A wrong email and a wrong password both return ErrInvalidCredentials.
func (s *AccountService) Authenticate(ctx context.Context, email, password string) (model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	user, err := s.queries.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			// Burn a hash check so response timing does not reveal
			// whether the email exists.
			_, _ = auth.CheckPassword(password, auth.DummyHash)
			return model.User{}, ErrInvalidCredentials
		}
		return model.User{}, fmt.Errorf("looking up user: %w", err)
	}

	ok, err := auth.CheckPassword(password, user.PasswordHash)
	if err != nil || !ok {
		return model.User{}, ErrInvalidCredentials
	}

	// Upgrade the stored hash when parameters have changed.
	if auth.NeedsRehash(user.PasswordHash) {
		if newHash, err := auth.HashPassword(password); err == nil {
			_ = s.queries.UpdateUserPassword(ctx, store.UpdateUserPasswordParams{
				PasswordHash: newHash,
				UpdatedAt:    time.Now(),
				ID:           user.ID,
			})
		}
	}

	now := time.Now()
	if err := s.queries.UpdateUserLastLogin(ctx, store.UpdateUserLastLoginParams{
		LastLoginAt: sql.NullTime{Time: now, Valid: true},
		ID:          user.ID,
	}); err != nil {
		slog.Warn("failed to record last login", "user_id", user.ID, "error", err)
	}
	user.LastLoginAt = sql.NullTime{Time: now, Valid: true}

	return user, nil
}

// CurrentUser returns the user with the given ID.
func (s *AccountService) CurrentUser(ctx context.Context, id int64) (model.User, error) {
	user, err := s.queries.GetUserByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.User{}, ErrNotFound
		}
		return model.User{}, fmt.Errorf("looking up user: %w", err)
	}
	return user, nil
}

// UpdateProfileParams holds the input for UpdateProfile.
type UpdateProfileParams struct {
	UserID int64
	Name   string
	Email  string
}

// UpdateProfile updates name and email. It returns the updated user and
// whether the email changed, so the caller can refresh the session.
func (s *AccountService) UpdateProfile(ctx context.Context, arg UpdateProfileParams) (model.User, bool, error) {
	email := strings.ToLower(strings.TrimSpace(arg.Email))

	if _, err := mail.ParseAddress(email); err != nil {
		return model.User{}, false, NewValidationError("email", "Invalid email address")
	}

	current, err := s.queries.GetUserByID(ctx, arg.UserID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.User{}, false, ErrNotFound
		}
		return model.User{}, false, fmt.Errorf("looking up user: %w", err)
	}

	emailChanged := current.Email != email

	if emailChanged {
		taken, err := s.queries.EmailTakenByOtherUser(ctx, email, arg.UserID)
		if err != nil {
			return model.User{}, false, fmt.Errorf("checking email availability: %w", err)
		}
		if taken > 0 {
			return model.User{}, false, ErrDuplicateEmail
		}
	}

	user, err := s.queries.UpdateUserProfile(ctx, store.UpdateUserProfileParams{
		Name:      strings.TrimSpace(arg.Name),
		Email:     email,
		UpdatedAt: time.Now(),
		ID:        arg.UserID,
	})
	if err != nil {
		if store.IsUniqueConstraintError(err) {
			return model.User{}, false, ErrDuplicateEmail
		}
		return model.User{}, false, fmt.Errorf("updating profile: %w", err)
	}

	_ = s.events.LogUserEvent(ctx, model.EventLevelInfo, "Profile updated",
		&user.ID, "", map[string]any{"email_changed": emailChanged})

	return user, emailChanged, nil
}

// ChangePasswordParams holds the input for ChangePassword.
type ChangePasswordParams struct {
	UserID          int64
	CurrentPassword string
	NewPassword     string
	ConfirmPassword string
}

// ChangePassword verifies the current password and stores a new hash.
// Checks run in a fixed order: current password, confirmation, length.
func (s *AccountService) ChangePassword(ctx context.Context, arg ChangePasswordParams) error {
	user, err := s.queries.GetUserByID(ctx, arg.UserID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		return fmt.Errorf("looking up user: %w", err)
	}

	ok, err := auth.CheckPassword(arg.CurrentPassword, user.PasswordHash)
	if err != nil || !ok {
		return ErrInvalidCurrentPassword
	}
	if arg.NewPassword != arg.ConfirmPassword {
		return ErrPasswordMismatch
	}
	if len(arg.NewPassword) < MinPasswordLength {
		return ErrPasswordTooShort
	}

	hash, err := auth.HashPassword(arg.NewPassword)
	if err != nil {
		return fmt.Errorf("hashing password: %w", err)
	}

	if err := s.queries.UpdateUserPassword(ctx, store.UpdateUserPasswordParams{
		PasswordHash: hash,
		UpdatedAt:    time.Now(),
		ID:           user.ID,
	}); err != nil {
		return fmt.Errorf("updating password: %w", err)
	}

	_ = s.events.LogUserEvent(ctx, model.EventLevelInfo, "Password changed",
		&user.ID, "", nil)

	return nil
}
