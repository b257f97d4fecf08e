// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/olegiv/inventory-go/internal/model"
)

func TestEventsList(t *testing.T) {
	env := newTestEnv(t)
	srv := httptest.NewServer(env.router())
	defer srv.Close()
	client := env.loginClient(t, srv)
	env.promoteToAdmin(t, "admin@example.com")

	// Registration and login already produced auth events.
	resp, err := client.Get(srv.URL + "/dashboard/events")
	if err != nil {
		t.Fatalf("events request failed: %v", err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status 200, got %d", resp.StatusCode)
	}

	events, meta := unmarshalData[[]model.Event](t, readBody(t, resp))
	if len(events) == 0 {
		t.Fatal("expected auth events after register and login")
	}
	if meta == nil || meta.Total != int64(len(events)) {
		t.Errorf("expected meta total %d, got %+v", len(events), meta)
	}

	var sawLogin bool
	for _, e := range events {
		if e.Category == model.EventCategoryAuth && e.Message == "User logged in" {
			sawLogin = true
		}
	}
	if !sawLogin {
		t.Error("expected a login event in the list")
	}
}

func TestEventsListLimit(t *testing.T) {
	env := newTestEnv(t)
	srv := httptest.NewServer(env.router())
	defer srv.Close()
	client := env.loginClient(t, srv)
	env.promoteToAdmin(t, "admin@example.com")

	resp, err := client.Get(srv.URL + "/dashboard/events?limit=1")
	if err != nil {
		t.Fatalf("events request failed: %v", err)
	}
	defer func() { _ = resp.Body.Close() }()

	events, _ := unmarshalData[[]model.Event](t, readBody(t, resp))
	if len(events) != 1 {
		t.Fatalf("expected 1 event with limit=1, got %d", len(events))
	}

	bad, err := client.Get(srv.URL + "/dashboard/events?limit=0")
	if err != nil {
		t.Fatalf("events request failed: %v", err)
	}
	_ = bad.Body.Close()
	if bad.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected status 400 for limit=0, got %d", bad.StatusCode)
	}
}

func TestEventsListRequiresAdmin(t *testing.T) {
	env := newTestEnv(t)
	srv := httptest.NewServer(env.router())
	defer srv.Close()
	client := env.loginClient(t, srv)

	resp, err := client.Get(srv.URL + "/dashboard/events")
	if err != nil {
		t.Fatalf("events request failed: %v", err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("expected status 403 for non-admin user, got %d", resp.StatusCode)
	}

	detail := unmarshalError(t, readBody(t, resp))
	if detail.Code != "forbidden" {
		t.Errorf("expected error code forbidden, got %q", detail.Code)
	}
}
