// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"net/http"

	"github.com/olegiv/inventory-go/internal/middleware"
	"github.com/olegiv/inventory-go/internal/service"
)

// CategoriesHandler handles category management endpoints.
type CategoriesHandler struct {
	categories *service.CategoryService
}

// NewCategoriesHandler creates a new CategoriesHandler.
func NewCategoriesHandler(categories *service.CategoryService) *CategoriesHandler {
	return &CategoriesHandler{categories: categories}
}

// List handles GET /dashboard/categories.
func (h *CategoriesHandler) List(w http.ResponseWriter, r *http.Request) {
	categories, err := h.categories.List(r.Context())
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	WriteSuccess(w, categories, &Meta{Total: int64(len(categories))})
}

// Get handles GET /dashboard/categories/{id}.
func (h *CategoriesHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := ParseIDParam(r)
	if err != nil {
		WriteBadRequest(w, "Invalid category ID", nil)
		return
	}

	category, err := h.categories.Get(r.Context(), id)
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	WriteSuccess(w, category, nil)
}

// categoryRequest is the create/update body.
type categoryRequest struct {
	Name string `json:"name"`
}

// Create handles POST /dashboard/categories.
func (h *CategoriesHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req categoryRequest
	if err := DecodeJSON(r, &req); err != nil {
		WriteBadRequest(w, "Invalid request body", nil)
		return
	}

	category, err := h.categories.Create(r.Context(), req.Name, middleware.GetUserIDPtr(r))
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	WriteCreated(w, category)
}

// Update handles PUT /dashboard/categories/{id}.
func (h *CategoriesHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := ParseIDParam(r)
	if err != nil {
		WriteBadRequest(w, "Invalid category ID", nil)
		return
	}

	var req categoryRequest
	if err := DecodeJSON(r, &req); err != nil {
		WriteBadRequest(w, "Invalid request body", nil)
		return
	}

	category, err := h.categories.Update(r.Context(), id, req.Name, middleware.GetUserIDPtr(r))
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	WriteSuccess(w, category, nil)
}

// Delete handles DELETE /dashboard/categories/{id}.
func (h *CategoriesHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := ParseIDParam(r)
	if err != nil {
		WriteBadRequest(w, "Invalid category ID", nil)
		return
	}

	if err := h.categories.Delete(r.Context(), id, middleware.GetUserIDPtr(r)); err != nil {
		WriteServiceError(w, err)
		return
	}
	WriteSuccess(w, map[string]string{"message": "Category deleted"}, nil)
}
