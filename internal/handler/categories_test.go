// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/olegiv/inventory-go/internal/model"
	"github.com/olegiv/inventory-go/internal/store"
)

func TestCategoriesCreate(t *testing.T) {
	env := newTestEnv(t)
	srv := httptest.NewServer(env.router())
	defer srv.Close()
	client := env.loginClient(t, srv)

	resp := postJSON(t, client, srv.URL+"/dashboard/categories", `{"name":"  Home & Garden  "}`)
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected status 201, got %d", resp.StatusCode)
	}

	cat, _ := unmarshalData[model.Category](t, readBody(t, resp))
	if cat.Name != "Home & Garden" {
		t.Errorf("expected trimmed name, got %q", cat.Name)
	}
	if cat.Slug != "home-garden" {
		t.Errorf("expected slug home-garden, got %q", cat.Slug)
	}
}

func TestCategoriesCreateValidation(t *testing.T) {
	env := newTestEnv(t)
	srv := httptest.NewServer(env.router())
	defer srv.Close()
	client := env.loginClient(t, srv)

	tests := []struct {
		name       string
		body       string
		wantStatus int
	}{
		{"empty name", `{"name":""}`, http.StatusUnprocessableEntity},
		{"punctuation only", `{"name":"!!!"}`, http.StatusUnprocessableEntity},
		{"malformed body", `{"name":`, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := postJSON(t, client, srv.URL+"/dashboard/categories", tt.body)
			defer func() { _ = resp.Body.Close() }()
			if resp.StatusCode != tt.wantStatus {
				t.Fatalf("expected status %d, got %d", tt.wantStatus, resp.StatusCode)
			}
		})
	}
}

func TestCategoriesDuplicateName(t *testing.T) {
	env := newTestEnv(t)
	srv := httptest.NewServer(env.router())
	defer srv.Close()
	client := env.loginClient(t, srv)

	resp := postJSON(t, client, srv.URL+"/dashboard/categories", `{"name":"Electronics"}`)
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("first create failed with status %d", resp.StatusCode)
	}

	dup := postJSON(t, client, srv.URL+"/dashboard/categories", `{"name":"Electronics"}`)
	defer func() { _ = dup.Body.Close() }()
	if dup.StatusCode != http.StatusConflict {
		t.Fatalf("expected status 409 for duplicate, got %d", dup.StatusCode)
	}
}

func TestCategoriesListWithProductCounts(t *testing.T) {
	env := newTestEnv(t)
	srv := httptest.NewServer(env.router())
	defer srv.Close()
	client := env.loginClient(t, srv)

	for _, name := range []string{"Electronics", "Books"} {
		resp := postJSON(t, client, srv.URL+"/dashboard/categories",
			fmt.Sprintf(`{"name":%q}`, name))
		_ = resp.Body.Close()
		if resp.StatusCode != http.StatusCreated {
			t.Fatalf("create %s failed with status %d", name, resp.StatusCode)
		}
	}

	listResp, err := client.Get(srv.URL + "/dashboard/categories")
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	defer func() { _ = listResp.Body.Close() }()

	cats, meta := unmarshalData[[]store.CategoryWithCount](t, readBody(t, listResp))
	if len(cats) != 2 {
		t.Fatalf("expected 2 categories, got %d", len(cats))
	}
	if meta == nil || meta.Total != 2 {
		t.Errorf("expected meta total 2, got %+v", meta)
	}
	// Ordered by name.
	if cats[0].Name != "Books" || cats[1].Name != "Electronics" {
		t.Errorf("expected name ordering, got %q then %q", cats[0].Name, cats[1].Name)
	}
}

func TestCategoriesUpdateSlug(t *testing.T) {
	env := newTestEnv(t)
	srv := httptest.NewServer(env.router())
	defer srv.Close()
	client := env.loginClient(t, srv)

	resp := postJSON(t, client, srv.URL+"/dashboard/categories", `{"name":"Gadgets"}`)
	cat, _ := unmarshalData[model.Category](t, readBody(t, resp))
	_ = resp.Body.Close()

	update := doJSON(t, client, http.MethodPut,
		fmt.Sprintf("%s/dashboard/categories/%d", srv.URL, cat.ID), `{"name":"Gadgets & Gear"}`)
	defer func() { _ = update.Body.Close() }()
	if update.StatusCode != http.StatusOK {
		t.Fatalf("expected status 200, got %d", update.StatusCode)
	}

	updated, _ := unmarshalData[model.Category](t, readBody(t, update))
	if updated.Slug != "gadgets-gear" {
		t.Errorf("expected slug recomputed to gadgets-gear, got %q", updated.Slug)
	}
}

func TestCategoriesDeleteGuard(t *testing.T) {
	env := newTestEnv(t)
	srv := httptest.NewServer(env.router())
	defer srv.Close()
	client := env.loginClient(t, srv)

	resp := postJSON(t, client, srv.URL+"/dashboard/categories", `{"name":"Electronics"}`)
	cat, _ := unmarshalData[model.Category](t, readBody(t, resp))
	_ = resp.Body.Close()

	prodResp := postJSON(t, client, srv.URL+"/dashboard/products",
		fmt.Sprintf(`{"name":"Laptop","price":"999.99","stock":5,"category_id":%d}`, cat.ID))
	_ = prodResp.Body.Close()
	if prodResp.StatusCode != http.StatusCreated {
		t.Fatalf("product create failed with status %d", prodResp.StatusCode)
	}

	del := doJSON(t, client, http.MethodDelete,
		fmt.Sprintf("%s/dashboard/categories/%d", srv.URL, cat.ID), ``)
	defer func() { _ = del.Body.Close() }()
	if del.StatusCode != http.StatusConflict {
		t.Fatalf("expected status 409 for category in use, got %d", del.StatusCode)
	}
	detail := unmarshalError(t, readBody(t, del))
	if detail.Code != "conflict" {
		t.Errorf("expected code conflict, got %q", detail.Code)
	}
}

func TestCategoriesDeleteEmpty(t *testing.T) {
	env := newTestEnv(t)
	srv := httptest.NewServer(env.router())
	defer srv.Close()
	client := env.loginClient(t, srv)

	resp := postJSON(t, client, srv.URL+"/dashboard/categories", `{"name":"Ephemeral"}`)
	cat, _ := unmarshalData[model.Category](t, readBody(t, resp))
	_ = resp.Body.Close()

	del := doJSON(t, client, http.MethodDelete,
		fmt.Sprintf("%s/dashboard/categories/%d", srv.URL, cat.ID), ``)
	_ = del.Body.Close()
	if del.StatusCode != http.StatusOK {
		t.Fatalf("expected status 200, got %d", del.StatusCode)
	}

	get, err := client.Get(fmt.Sprintf("%s/dashboard/categories/%d", srv.URL, cat.ID))
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	defer func() { _ = get.Body.Close() }()
	if get.StatusCode != http.StatusNotFound {
		t.Fatalf("expected status 404 after delete, got %d", get.StatusCode)
	}
}

func TestCategoriesInvalidID(t *testing.T) {
	env := newTestEnv(t)

	user := env.registerUser(t, "unit@example.com", "password123", "Unit")
	req := withUser(newJSONRequest(t, http.MethodGet, "/dashboard/categories/abc", "",
		map[string]string{"id": "abc"}), user)

	w := executeHandler(env.categoriesHandler.Get, req)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", w.Code)
	}
}
