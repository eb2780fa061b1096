// Package types provides common type aliases and utilities.
package types

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Money represents a monetary value with full precision.
// Uses decimal.Decimal to avoid floating-point errors.
type Money = decimal.Decimal

// NewMoneyFromString creates a Money value from a string.
// This is the preferred method for monetary values.
func NewMoneyFromString(s string) (Money, error) {
	return decimal.NewFromString(s)
}

// MustMoney creates a Money value from a string, panics on error.
// Use only for constants and tests.
func MustMoney(s string) Money {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

// Zero returns zero Money value.
func Zero() Money {
	return decimal.Zero
}

// Hundred is the percent divisor. Money math never divides by anything
// else, so decimal arithmetic cannot produce NaN or Infinity here.
var Hundred = decimal.NewFromInt(100)

// ParseDecimalOrZero converts form-field input to a decimal.
// Empty, whitespace-only or malformed input coerces to zero instead of
// failing. Invoice forms feed raw strings; the zero-on-invalid policy is
// centralized in this single function and applied at every input boundary.
func ParseDecimalOrZero(s string) Money {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// ParsePercentOrZero parses a percentage field with the same coercion
// policy. Out-of-range values are kept as parsed; range enforcement is a
// validation concern, not a parsing one.
func ParsePercentOrZero(s string) Money {
	return ParseDecimalOrZero(s)
}
