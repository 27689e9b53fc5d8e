package money

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Cents is an amount in integer minor units. All persisted monetary values
// use this representation; decimals appear only at rounding boundaries.
type Cents = int64

// PercentOf returns pct percent of amount, rounded half-up to a whole cent.
func PercentOf(amount Cents, pct decimal.Decimal) Cents {
	if amount <= 0 || pct.Sign() <= 0 {
		return 0
	}
	// Round ties away from zero, matching how the storefront displays totals.
	result := decimal.NewFromInt(amount).
		Mul(pct).
		Div(decimal.NewFromInt(100)).
		Round(0)
	return result.IntPart()
}

// Clamp bounds amount to [0, max]. A max of zero or less means no upper bound.
func Clamp(amount, max Cents) Cents {
	if amount < 0 {
		return 0
	}
	if max > 0 && amount > max {
		return max
	}
	return amount
}

// Min returns the smaller of two amounts.
func Min(a, b Cents) Cents {
	if a < b {
		return a
	}
	return b
}

// FormatAmount renders cents as a fixed two-decimal major-unit string, the
// shape payment gateways expect ("1234" -> "12.34").
func FormatAmount(amount Cents) string {
	return decimal.NewFromInt(amount).Div(decimal.NewFromInt(100)).StringFixed(2)
}

// ParseAmount converts a two-decimal major-unit string back to cents.
func ParseAmount(value string) (Cents, error) {
	dec, err := decimal.NewFromString(value)
	if err != nil {
		return 0, fmt.Errorf("parse amount %q: %w", value, err)
	}
	return dec.Mul(decimal.NewFromInt(100)).Round(0).IntPart(), nil
}
