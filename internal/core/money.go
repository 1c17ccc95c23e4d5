// Package core holds the domain types shared by storage, services and the
// report engine: calendar dates, recurrence periods, expenses and budgets.
//
// Monetary amounts are fixed-point decimals (shopspring/decimal). Floats are
// only produced at the JSON edge, never used for arithmetic.
package core

import (
	"strings"

	"github.com/shopspring/decimal"
)

// ParseAmount converts a decimal string to an amount. It accepts both dot
// (12.34) and comma (12,34) separators and rejects empty or signed input;
// amounts in this system are always non-negative magnitudes.
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, ErrInvalidAmount
	}
	s = strings.ReplaceAll(s, ",", ".")
	if strings.HasPrefix(s, "+") || strings.HasPrefix(s, "-") {
		return decimal.Zero, ErrInvalidAmount
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, ErrInvalidAmount
	}
	return d, nil
}
