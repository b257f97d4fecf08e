// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package handler provides HTTP handlers for the inventory API.
package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/olegiv/inventory-go/internal/service"
)

// Response is the standard API response wrapper.
type Response struct {
	Data any   `json:"data,omitempty"`
	Meta *Meta `json:"meta,omitempty"`
}

// Meta contains listing metadata.
type Meta struct {
	Total int64 `json:"total,omitempty"`
}

// ErrorResponse is the standard API error response.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail contains error information.
type ErrorDetail struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Details map[string]string `json:"details,omitempty"`
}

// WriteJSON writes a JSON response with the given status code.
func WriteJSON(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(data)
}

// WriteSuccess writes a successful JSON response.
func WriteSuccess(w http.ResponseWriter, data any, meta *Meta) {
	WriteJSON(w, http.StatusOK, Response{Data: data, Meta: meta})
}

// WriteCreated writes a 201 Created JSON response.
func WriteCreated(w http.ResponseWriter, data any) {
	WriteJSON(w, http.StatusCreated, Response{Data: data})
}

// WriteError writes an error JSON response.
func WriteError(w http.ResponseWriter, statusCode int, code, message string, details map[string]string) {
	WriteJSON(w, statusCode, ErrorResponse{
		Error: ErrorDetail{
			Code:    code,
			Message: message,
			Details: details,
		},
	})
}

// WriteBadRequest writes a 400 Bad Request response.
func WriteBadRequest(w http.ResponseWriter, message string, details map[string]string) {
	WriteError(w, http.StatusBadRequest, "bad_request", message, details)
}

// WriteNotFound writes a 404 Not Found response.
func WriteNotFound(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusNotFound, "not_found", message, nil)
}

// WriteUnauthorized writes a 401 Unauthorized response.
func WriteUnauthorized(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusUnauthorized, "unauthorized", message, nil)
}

// WriteConflict writes a 409 Conflict response.
func WriteConflict(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusConflict, "conflict", message, nil)
}

// WriteInternalError writes a 500 Internal Server Error response.
func WriteInternalError(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusInternalServerError, "internal_error", message, nil)
}

// WriteValidationError writes a 422 Unprocessable Entity response with field errors.
func WriteValidationError(w http.ResponseWriter, fieldErrors map[string]string) {
	WriteError(w, http.StatusUnprocessableEntity, "validation_error", "Validation failed", fieldErrors)
}

// WriteServiceError translates a service-layer error into an HTTP response.
func WriteServiceError(w http.ResponseWriter, err error) {
	var verr *service.ValidationError
	switch {
	case errors.Is(err, service.ErrNotFound):
		WriteNotFound(w, "Not found")
	case errors.Is(err, service.ErrInvalidCredentials):
		WriteUnauthorized(w, "Invalid email or password")
	case errors.Is(err, service.ErrDuplicateEmail):
		WriteConflict(w, "Email already in use")
	case errors.Is(err, service.ErrDuplicateCategory):
		WriteConflict(w, "A category with this name already exists")
	case errors.Is(err, service.ErrCategoryInUse):
		WriteConflict(w, "Category has associated products; remove them first")
	case errors.Is(err, service.ErrInvalidCurrentPassword):
		WriteValidationError(w, map[string]string{"current_password": "Current password is incorrect"})
	case errors.Is(err, service.ErrPasswordMismatch):
		WriteValidationError(w, map[string]string{"confirm_password": "Passwords do not match"})
	case errors.Is(err, service.ErrPasswordTooShort):
		WriteValidationError(w, map[string]string{"password": "Password must be at least 8 characters"})
	case errors.As(err, &verr):
		WriteValidationError(w, verr.Fields)
	default:
		slog.Error("request failed", "error", err)
		WriteInternalError(w, "Internal server error")
	}
}
