// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"net/http"
	"strings"
	"testing"
)

func TestParseIDParam(t *testing.T) {
	tests := []struct {
		name    string
		id      string
		want    int64
		wantErr bool
	}{
		{"valid", "42", 42, false},
		{"one", "1", 1, false},
		{"zero", "0", 0, true},
		{"negative", "-5", 0, true},
		{"non numeric", "abc", 0, true},
		{"empty", "", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := newJSONRequest(t, http.MethodGet, "/items/"+tt.id, "",
				map[string]string{"id": tt.id})
			got, err := ParseIDParam(req)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error for %q", tt.id)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("expected %d, got %d", tt.want, got)
			}
		})
	}
}

func TestDecodeJSON(t *testing.T) {
	type payload struct {
		Name string `json:"name"`
	}

	tests := []struct {
		name    string
		body    string
		wantErr bool
	}{
		{"valid", `{"name":"x"}`, false},
		{"malformed", `{"name":`, true},
		{"unknown field", `{"name":"x","bogus":true}`, true},
		{"trailing data", `{"name":"x"}{"name":"y"}`, true},
		{"empty body", ``, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := newJSONRequest(t, http.MethodPost, "/items", tt.body, nil)
			var p payload
			err := DecodeJSON(req, &p)
			if tt.wantErr && err == nil {
				t.Fatal("expected error")
			}
			if !tt.wantErr && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestDecodeJSONBodyLimit(t *testing.T) {
	type payload struct {
		Name string `json:"name"`
	}

	big := `{"name":"` + strings.Repeat("a", 2<<20) + `"}`
	req := newJSONRequest(t, http.MethodPost, "/items", big, nil)
	var p payload
	if err := DecodeJSON(req, &p); err == nil {
		t.Fatal("expected error for oversized body")
	}
}
