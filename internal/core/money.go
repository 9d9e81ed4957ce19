// Package core provides money parsing and handling utilities.
//
// This file contains the statement amount parser and the display formatter.
// Amounts keep full decimal precision; rounding to cents happens only when
// formatting for display.
package core

import (
	"strings"

	"github.com/shopspring/decimal"
)

// ParseAmount parses a statement amount, stripping thousands separators.
//
// Examples:
//
//	ParseAmount("1,234.50") -> 1234.50, nil
//	ParseAmount(" 4.5 ")    -> 4.5, nil
//	ParseAmount("abc")      -> 0, ErrInvalidAmount
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", ""))
	if s == "" {
		return decimal.Zero, ErrInvalidAmount
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, ErrInvalidAmount
	}
	return d, nil
}

// FormatAmount renders d with two decimals and comma thousands separators,
// followed by the currency code when one is given: "1,234.50 CAD".
func FormatAmount(d decimal.Decimal, currency string) string {
	s := d.StringFixed(2)
	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")

	intPart, frac, _ := strings.Cut(s, ".")
	var b strings.Builder
	if neg {
		b.WriteByte('-')
	}
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	b.WriteByte('.')
	b.WriteString(frac)
	if currency != "" {
		b.WriteByte(' ')
		b.WriteString(currency)
	}
	return b.String()
}
