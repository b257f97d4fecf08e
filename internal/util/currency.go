// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package util

import (
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// currencyPrinter groups the integer part with en-US thousands separators.
var currencyPrinter = message.NewPrinter(language.AmericanEnglish)

// FormatCurrency renders a decimal amount as a US dollar string with
// thousands grouping and exactly two decimal places, e.g. "$1,299.99".
// The fractional part is taken from the decimal value directly, so no
// binary floating-point rounding is involved.
func FormatCurrency(amount decimal.Decimal) string {
	amount = amount.Round(2)

	sign := ""
	if amount.IsNegative() {
		sign = "-"
		amount = amount.Abs()
	}

	units := amount.Truncate(0)
	cents := amount.Sub(units).StringFixed(2) // "0.99"

	return sign + "$" + currencyPrinter.Sprintf("%d", units.IntPart()) + cents[1:]
}
