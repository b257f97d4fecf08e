// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/alexedwards/scs/v2"

	"github.com/olegiv/inventory-go/internal/middleware"
	"github.com/olegiv/inventory-go/internal/model"
	"github.com/olegiv/inventory-go/internal/service"
)

// AuthHandler handles login, logout, and registration.
type AuthHandler struct {
	account         *service.AccountService
	events          *service.EventService
	sessionManager  *scs.SessionManager
	loginProtection *middleware.LoginProtection
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(account *service.AccountService, events *service.EventService, sm *scs.SessionManager, lp *middleware.LoginProtection) *AuthHandler {
	return &AuthHandler{
		account:         account,
		events:          events,
		sessionManager:  sm,
		loginProtection: lp,
	}
}

// LoginForm handles GET /login. Authenticated users never reach this
// handler; the RedirectIfAuthenticated middleware sends them to the
// dashboard first.
func (h *AuthHandler) LoginForm(w http.ResponseWriter, _ *http.Request) {
	WriteSuccess(w, map[string]string{
		"message": "Submit credentials via POST /login",
	}, nil)
}

// loginRequest is the POST /login body.
type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login handles POST /login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := DecodeJSON(r, &req); err != nil {
		WriteBadRequest(w, "Invalid request body", nil)
		return
	}
	if req.Email == "" || req.Password == "" {
		WriteBadRequest(w, "Email and password are required", nil)
		return
	}

	clientIP := middleware.ClientIP(r)

	// Check if account is locked
	if h.loginProtection != nil {
		if locked, remaining := h.loginProtection.IsAccountLocked(req.Email); locked {
			_ = h.events.LogAuthEvent(r.Context(), model.EventLevelWarning,
				"Login attempt on locked account", nil, clientIP, map[string]any{"email": req.Email})
			WriteError(w, http.StatusTooManyRequests, "account_locked",
				fmt.Sprintf("Account locked. Try again in %s.", formatDuration(remaining)), nil)
			return
		}
	}

	user, err := h.account.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			metadata := map[string]any{"email": req.Email}
			// Record failed attempt even for non-existent users to prevent enumeration
			if h.loginProtection != nil {
				if locked, lockDuration := h.loginProtection.RecordFailedAttempt(req.Email); locked {
					_ = h.events.LogAuthEvent(r.Context(), model.EventLevelWarning,
						"Account locked due to failed attempts", nil, clientIP,
						map[string]any{"email": req.Email, "duration": lockDuration.String()})
					WriteError(w, http.StatusTooManyRequests, "account_locked",
						fmt.Sprintf("Too many failed attempts. Try again in %s.", formatDuration(lockDuration)), nil)
					return
				}
				metadata["attempts_remaining"] = h.loginProtection.GetRemainingAttempts(req.Email)
			}
			_ = h.events.LogAuthEvent(r.Context(), model.EventLevelWarning,
				"Login failed", nil, clientIP, metadata)
			WriteUnauthorized(w, "Invalid email or password")
			return
		}
		WriteServiceError(w, err)
		return
	}

	// Clear failed attempts on successful login
	if h.loginProtection != nil {
		h.loginProtection.RecordSuccessfulLogin(req.Email)
	}

	// Regenerate session ID to prevent session fixation
	if err := h.sessionManager.RenewToken(r.Context()); err != nil {
		slog.Error("session renewal error", "error", err)
		WriteInternalError(w, "Failed to establish session")
		return
	}

	h.sessionManager.Put(r.Context(), middleware.SessionKeyUserID, user.ID)
	h.sessionManager.Put(r.Context(), middleware.SessionKeyUserEmail, user.Email)

	slog.Info("user logged in", "user_id", user.ID, "email", user.Email)
	_ = h.events.LogAuthEvent(r.Context(), model.EventLevelInfo, "User logged in",
		&user.ID, clientIP, map[string]any{"email": user.Email})

	WriteSuccess(w, user, nil)
}

// registerRequest is the POST /register body.
type registerRequest struct {
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
	Name            string `json:"name"`
}

// Register handles POST /register.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := DecodeJSON(r, &req); err != nil {
		WriteBadRequest(w, "Invalid request body", nil)
		return
	}

	user, err := h.account.Register(r.Context(), service.RegisterParams{
		Email:           req.Email,
		Password:        req.Password,
		ConfirmPassword: req.ConfirmPassword,
		Name:            req.Name,
	})
	if err != nil {
		WriteServiceError(w, err)
		return
	}

	// Registration signs the user in immediately. Renew the token so the
	// authenticated session never shares an ID with the anonymous one.
	if err := h.sessionManager.RenewToken(r.Context()); err != nil {
		slog.Error("session renewal error", "error", err)
		WriteInternalError(w, "Failed to establish session")
		return
	}

	h.sessionManager.Put(r.Context(), middleware.SessionKeyUserID, user.ID)
	h.sessionManager.Put(r.Context(), middleware.SessionKeyUserEmail, user.Email)

	slog.Info("user registered", "user_id", user.ID, "email", user.Email)
	WriteCreated(w, user)
}

// Logout handles POST /logout.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	// Get user ID for logging before destroying session
	userID := h.sessionManager.GetInt64(r.Context(), middleware.SessionKeyUserID)

	if userID > 0 {
		_ = h.events.LogAuthEvent(r.Context(), model.EventLevelInfo, "User logged out",
			&userID, middleware.ClientIP(r), nil)
	}

	if err := h.sessionManager.Destroy(r.Context()); err != nil {
		slog.Error("session destroy error", "error", err)
		WriteInternalError(w, "Failed to destroy session")
		return
	}

	slog.Info("user logged out", "user_id", userID)
	WriteSuccess(w, map[string]string{"message": "Logged out"}, nil)
}

// formatDuration renders a lockout duration in whole minutes or seconds.
func formatDuration(d time.Duration) string {
	if d >= time.Minute {
		return fmt.Sprintf("%d minutes", int(d.Round(time.Minute).Minutes()))
	}
	return fmt.Sprintf("%d seconds", int(d.Round(time.Second).Seconds()))
}
