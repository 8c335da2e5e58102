// Package core holds the canonical transaction model and amount parsing.
package core

import (
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
)

// currency symbols stripped before numeric parsing
var currencyRunes = "₩$€£¥"

// ParseAmount converts a signed decimal string into a decimal value.
//
// It accepts an optional leading sign, common currency symbols, and both
// dot (12.34) and comma (12,34) decimal separators. Thousands separators
// are stripped: when both ',' and '.' appear the commas are treated as
// grouping, and a lone comma followed by exactly three digits per group
// (2,500,000) is treated as grouping too.
//
// Examples:
//
//	ParseAmount("-4500")      -> -4500
//	ParseAmount("2,500,000")  -> 2500000
//	ParseAmount("12,34")      -> 12.34
//	ParseAmount("₩-75,000")   -> -75000
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	for _, r := range currencyRunes {
		s = strings.ReplaceAll(s, string(r), "")
	}
	s = strings.ReplaceAll(s, " ", "")
	if s == "" {
		return decimal.Zero, ErrInvalidAmount
	}

	neg := false
	switch s[0] {
	case '-':
		neg = true
		s = s[1:]
	case '+':
		s = s[1:]
	}
	if s == "" {
		return decimal.Zero, ErrInvalidAmount
	}

	s = normalizeSeparators(s)

	for _, r := range s {
		if !unicode.IsDigit(r) && r != '.' {
			return decimal.Zero, ErrInvalidAmount
		}
	}
	if strings.Count(s, ".") > 1 {
		return decimal.Zero, ErrInvalidAmount
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, ErrInvalidAmount
	}
	if neg {
		d = d.Neg()
	}
	return d, nil
}

// normalizeSeparators rewrites the unsigned numeric body so that '.' is
// the only decimal separator and grouping commas are gone.
func normalizeSeparators(s string) string {
	hasComma := strings.Contains(s, ",")
	hasDot := strings.Contains(s, ".")

	switch {
	case hasComma && hasDot:
		// 1,234.56 style: commas are grouping
		return strings.ReplaceAll(s, ",", "")
	case hasComma:
		if isGrouped(s) {
			return strings.ReplaceAll(s, ",", "")
		}
		// decimal comma: 12,34
		return strings.ReplaceAll(s, ",", ".")
	default:
		return s
	}
}

// isGrouped reports whether every comma-separated group after the first
// has exactly three digits, i.e. the commas are thousands grouping.
func isGrouped(s string) bool {
	parts := strings.Split(s, ",")
	if len(parts) < 2 {
		return false
	}
	for i, p := range parts {
		if i == 0 {
			if len(p) == 0 || len(p) > 3 {
				return false
			}
			continue
		}
		if len(p) != 3 {
			return false
		}
	}
	return true
}
