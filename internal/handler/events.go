// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"net/http"
	"strconv"

	"github.com/olegiv/inventory-go/internal/service"
)

// EventsHandler serves the audit event log.
type EventsHandler struct {
	events *service.EventService
}

// NewEventsHandler creates a new EventsHandler.
func NewEventsHandler(events *service.EventService) *EventsHandler {
	return &EventsHandler{events: events}
}

// List handles GET /dashboard/events, restricted to admin users by the
// RequireAdmin middleware. The optional limit parameter caps the number
// of entries returned (default 50, max 500).
func (h *EventsHandler) List(w http.ResponseWriter, r *http.Request) {
	var limit int64
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || parsed < 1 {
			WriteBadRequest(w, "Invalid limit", nil)
			return
		}
		limit = min(parsed, 500)
	}

	events, err := h.events.RecentEvents(r.Context(), limit)
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	WriteSuccess(w, events, &Meta{Total: int64(len(events))})
}
