// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package util provides general-purpose utility functions including
// URL slug generation and currency formatting.
package util

import (
	"regexp"
	"strings"
)

var (
	// whitespaceRuns matches one or more consecutive whitespace characters
	whitespaceRuns = regexp.MustCompile(`\s+`)
	// nonWordChars matches characters outside [a-z0-9_-] after lowercasing
	nonWordChars = regexp.MustCompile(`[^a-z0-9_-]+`)
	// multipleHyphens matches multiple consecutive hyphens
	multipleHyphens = regexp.MustCompile(`-{2,}`)
)

// Slugify converts a category name to a URL-friendly slug.
// The pipeline is: lowercase, replace whitespace runs with hyphens, strip
// non-word characters, collapse repeated hyphens, trim leading and trailing
// hyphens. Accented letters are stripped, not transliterated, so the result
// is stable under repeated application.
func Slugify(s string) string {
	result := strings.ToLower(s)
	result = whitespaceRuns.ReplaceAllString(result, "-")
	result = nonWordChars.ReplaceAllString(result, "")
	result = multipleHyphens.ReplaceAllString(result, "-")
	return strings.Trim(result, "-")
}

// IsValidSlug checks if a string is a valid slug format.
func IsValidSlug(s string) bool {
	if s == "" {
		return false
	}

	for _, r := range s {
		if !((r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '-' || r == '_') {
			return false
		}
	}

	// No leading/trailing or consecutive hyphens
	if s[0] == '-' || s[len(s)-1] == '-' {
		return false
	}
	return !strings.Contains(s, "--")
}
