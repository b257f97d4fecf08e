// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package util

import "testing"

func TestSlugify(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"simple", "Electronics", "electronics"},
		{"spaces", "Office Supplies", "office-supplies"},
		{"surrounding whitespace and ampersand", "  Home & Garden  ", "home-garden"},
		{"accents stripped", "Café!!", "caf"},
		{"multiple hyphens collapsed", "a -- b", "a-b"},
		{"underscores kept", "snake_case name", "snake_case-name"},
		{"digits", "Top 10 Picks", "top-10-picks"},
		{"tabs and newlines", "one\ttwo\nthree", "one-two-three"},
		{"only punctuation", "!!!", ""},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Slugify(tt.input); got != tt.want {
				t.Errorf("Slugify(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestSlugifyIdempotent(t *testing.T) {
	inputs := []string{
		"Electronics",
		"  Home & Garden  ",
		"Café!!",
		"Top 10 Picks",
		"a -- b",
	}

	for _, input := range inputs {
		once := Slugify(input)
		twice := Slugify(once)
		if once != twice {
			t.Errorf("Slugify not idempotent for %q: first %q, second %q", input, once, twice)
		}
	}
}

func TestIsValidSlug(t *testing.T) {
	tests := []struct {
		slug string
		want bool
	}{
		{"electronics", true},
		{"home-garden", true},
		{"top-10-picks", true},
		{"snake_case", true},
		{"", false},
		{"-leading", false},
		{"trailing-", false},
		{"double--hyphen", false},
		{"Upper", false},
		{"with space", false},
	}

	for _, tt := range tests {
		if got := IsValidSlug(tt.slug); got != tt.want {
			t.Errorf("IsValidSlug(%q) = %v, want %v", tt.slug, got, tt.want)
		}
	}
}
