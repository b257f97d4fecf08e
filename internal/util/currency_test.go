// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package util

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestFormatCurrency(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"typical price", "1299.99", "$1,299.99"},
		{"no fraction", "42", "$42.00"},
		{"sub-dollar", "0.5", "$0.50"},
		{"zero", "0", "$0.00"},
		{"million", "1234567.89", "$1,234,567.89"},
		{"negative", "-9.99", "-$9.99"},
		{"rounds half up", "19.995", "$20.00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			amount, err := decimal.NewFromString(tt.input)
			if err != nil {
				t.Fatalf("NewFromString(%q): %v", tt.input, err)
			}
			if got := FormatCurrency(amount); got != tt.want {
				t.Errorf("FormatCurrency(%s) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
