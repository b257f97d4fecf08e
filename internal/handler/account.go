// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"net/http"

	"github.com/alexedwards/scs/v2"

	"github.com/olegiv/inventory-go/internal/middleware"
	"github.com/olegiv/inventory-go/internal/service"
)

// AccountHandler handles profile and password settings.
type AccountHandler struct {
	account        *service.AccountService
	sessionManager *scs.SessionManager
}

// NewAccountHandler creates a new AccountHandler.
func NewAccountHandler(account *service.AccountService, sm *scs.SessionManager) *AccountHandler {
	return &AccountHandler{
		account:        account,
		sessionManager: sm,
	}
}

// Me handles GET /dashboard/settings. Returns the current user's profile.
func (h *AccountHandler) Me(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r)
	if user == nil {
		WriteUnauthorized(w, "Not authenticated")
		return
	}
	WriteSuccess(w, user, nil)
}

// updateProfileRequest is the PUT /dashboard/settings/profile body.
type updateProfileRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// UpdateProfile handles PUT /dashboard/settings/profile.
func (h *AccountHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r)
	if userID == 0 {
		WriteUnauthorized(w, "Not authenticated")
		return
	}

	var req updateProfileRequest
	if err := DecodeJSON(r, &req); err != nil {
		WriteBadRequest(w, "Invalid request body", nil)
		return
	}

	user, emailChanged, err := h.account.UpdateProfile(r.Context(), service.UpdateProfileParams{
		UserID: userID,
		Name:   req.Name,
		Email:  req.Email,
	})
	if err != nil {
		WriteServiceError(w, err)
		return
	}

	// An email change invalidates the cached session identity, so rotate
	// the token and re-store the fresh values.
	if emailChanged {
		if err := h.sessionManager.RenewToken(r.Context()); err == nil {
			h.sessionManager.Put(r.Context(), middleware.SessionKeyUserID, user.ID)
			h.sessionManager.Put(r.Context(), middleware.SessionKeyUserEmail, user.Email)
		}
	}

	WriteSuccess(w, user, nil)
}

// changePasswordRequest is the PUT /dashboard/settings/password body.
type changePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
	ConfirmPassword string `json:"confirm_password"`
}

// ChangePassword handles PUT /dashboard/settings/password.
func (h *AccountHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r)
	if userID == 0 {
		WriteUnauthorized(w, "Not authenticated")
		return
	}

	var req changePasswordRequest
	if err := DecodeJSON(r, &req); err != nil {
		WriteBadRequest(w, "Invalid request body", nil)
		return
	}

	err := h.account.ChangePassword(r.Context(), service.ChangePasswordParams{
		UserID:          userID,
		CurrentPassword: req.CurrentPassword,
		NewPassword:     req.NewPassword,
		ConfirmPassword: req.ConfirmPassword,
	})
	if err != nil {
		WriteServiceError(w, err)
		return
	}

	WriteSuccess(w, map[string]string{"message": "Password updated"}, nil)
}
