// Package domain provides core domain types for the exchange connector.
// All financial values use decimal arithmetic via cockroachdb/apd for precision.
package domain

import (
	"fmt"

	"github.com/cockroachdb/apd/v3"
)

// Decimal is a type alias for apd.Decimal pointer, providing ergonomic decimal arithmetic.
// Using a pointer alias allows nil checks and avoids copying large structs.
type Decimal = *apd.Decimal

// decimalContext is the default context for decimal operations with 34-digit precision.
var decimalContext = apd.BaseContext.WithPrecision(34)

// NewDecimal creates a new Decimal from a string representation.
// Returns an error if the string cannot be parsed.
//
// Example:
//
//	price, err := domain.NewDecimal("50000.12345678")
func NewDecimal(s string) (Decimal, error) {
	d, _, err := apd.NewFromString(s)
	if err != nil {
		return nil, fmt.Errorf("invalid decimal string %q: %w", s, err)
	}
	return d, nil
}

// NewDecimalFromInt creates a new Decimal from an int64 value.
//
// Example:
//
//	quantity := domain.NewDecimalFromInt(100)
func NewDecimalFromInt(i int64) Decimal {
	return apd.New(i, 0)
}

// Zero returns a Decimal representing zero (0).
func Zero() Decimal {
	return apd.New(0, 0)
}

// Add returns the sum of two Decimals (a + b).
// Returns a new Decimal, does not modify inputs.
func Add(a, b Decimal) Decimal {
	result := apd.New(0, 0)
	_, err := decimalContext.Add(result, a, b)
	if err != nil {
		panic(fmt.Sprintf("decimal add error: %v", err))
	}
	return result
}

// Sub returns the difference of two Decimals (a - b).
// Returns a new Decimal, does not modify inputs.
func Sub(a, b Decimal) Decimal {
	result := apd.New(0, 0)
	_, err := decimalContext.Sub(result, a, b)
	if err != nil {
		panic(fmt.Sprintf("decimal sub error: %v", err))
	}
	return result
}

// Mul returns the product of two Decimals (a * b).
// Returns a new Decimal, does not modify inputs.
func Mul(a, b Decimal) Decimal {
	result := apd.New(0, 0)
	_, err := decimalContext.Mul(result, a, b)
	if err != nil {
		panic(fmt.Sprintf("decimal mul error: %v", err))
	}
	return result
}

// Div returns the quotient of two Decimals (a / b).
// Returns a new Decimal, does not modify inputs.
// Panics if b is zero.
func Div(a, b Decimal) Decimal {
	if IsZero(b) {
		panic("decimal division by zero")
	}
	result := apd.New(0, 0)
	_, err := decimalContext.Quo(result, a, b)
	if err != nil {
		panic(fmt.Sprintf("decimal div error: %v", err))
	}
	return result
}

// Cmp compares two Decimals and returns:
//
//	-1 if a < b
//	 0 if a == b
//	+1 if a > b
func Cmp(a, b Decimal) int {
	return a.Cmp(b)
}

// IsZero returns true if the Decimal equals zero.
func IsZero(d Decimal) bool {
	return d.IsZero()
}

// IsNegative returns true if the Decimal is less than zero.
func IsNegative(d Decimal) bool {
	return Cmp(d, Zero()) < 0
}
