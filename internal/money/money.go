// Package money normalizes monetary amounts and quantities to their fixed scales.
package money

import (
	"errors"

	"github.com/shopspring/decimal"
)

const (
	// Scale is the number of fractional digits kept for monetary amounts.
	Scale = 2
	// QuantityScale is the maximum number of fractional digits for quantities.
	QuantityScale = 3
	// RateScale is the number of fractional digits kept for percentages.
	RateScale = 4
	// RatioScale is used for intermediate proration ratios.
	RatioScale = 8
	// DivisionScale is used for intermediate divisions before final rounding.
	DivisionScale = 6
)

var (
	ErrAmountRequired      = errors.New("money: amount is required")
	ErrNegativeAmount      = errors.New("money: amount must not be negative")
	ErrNonPositiveAmount   = errors.New("money: amount must be positive")
	ErrNonPositiveQuantity = errors.New("money: quantity must be positive")
	ErrQuantityScale       = errors.New("money: quantity has too many decimal places")
	ErrRateOutOfRange      = errors.New("money: rate must be between 0 and 100")
)

var hundred = decimal.NewFromInt(100)

// Hundred is the constant 100 used for percentage arithmetic.
func Hundred() decimal.Decimal { return hundred }

// Round rounds to the monetary scale, half away from zero.
func Round(amount decimal.Decimal) decimal.Decimal {
	return amount.Round(Scale)
}

// Normalize rounds a caller-provided amount and rejects negatives.
func Normalize(amount decimal.Decimal) (decimal.Decimal, error) {
	if amount.IsNegative() {
		return decimal.Decimal{}, ErrNegativeAmount
	}
	return Round(amount), nil
}

// NormalizePtr is Normalize for optional inputs; nil is reported as missing.
func NormalizePtr(amount *decimal.Decimal) (decimal.Decimal, error) {
	if amount == nil {
		return decimal.Decimal{}, ErrAmountRequired
	}
	return Normalize(*amount)
}

// Positive normalizes an amount that must be strictly greater than zero.
func Positive(amount decimal.Decimal) (decimal.Decimal, error) {
	rounded, err := Normalize(amount)
	if err != nil {
		return decimal.Decimal{}, err
	}
	if !rounded.IsPositive() {
		return decimal.Decimal{}, ErrNonPositiveAmount
	}
	return rounded, nil
}

// Quantity validates a quantity and strips trailing zeros.
func Quantity(qty decimal.Decimal) (decimal.Decimal, error) {
	if !qty.IsPositive() {
		return decimal.Decimal{}, ErrNonPositiveQuantity
	}
	if !qty.Equal(qty.Truncate(QuantityScale)) {
		return decimal.Decimal{}, ErrQuantityScale
	}
	return StripZeros(qty), nil
}

// StripZeros returns qty with the smallest exponent that represents it exactly.
func StripZeros(qty decimal.Decimal) decimal.Decimal {
	return decimal.RequireFromString(qty.String())
}

// Rate validates a percentage in [0, 100] and rounds it to RateScale.
func Rate(pct decimal.Decimal) (decimal.Decimal, error) {
	if pct.IsNegative() || pct.GreaterThan(hundred) {
		return decimal.Decimal{}, ErrRateOutOfRange
	}
	return pct.Round(RateScale), nil
}

// PercentOf returns pct percent of amount at monetary scale.
func PercentOf(amount, pct decimal.Decimal) decimal.Decimal {
	return Round(amount.Mul(pct.DivRound(hundred, DivisionScale)))
}

// Extend multiplies a unit price by a quantity at monetary scale.
func Extend(qty, unitPrice decimal.Decimal) decimal.Decimal {
	return Round(qty.Mul(unitPrice))
}

// Sum adds amounts without intermediate rounding.
func Sum(amounts ...decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, a := range amounts {
		total = total.Add(a)
	}
	return total
}

// Min returns the smaller of a and b.
func Min(a, b decimal.Decimal) decimal.Decimal {
	if a.LessThan(b) {
		return a
	}
	return b
}

// Format renders an amount with exactly two fractional digits.
func Format(amount decimal.Decimal) string {
	return amount.StringFixed(Scale)
}

// FormatQuantity renders a quantity without trailing zeros.
func FormatQuantity(qty decimal.Decimal) string {
	return qty.String()
}

// FormatRate renders a percentage without trailing zeros.
func FormatRate(pct decimal.Decimal) string {
	return pct.String()
}
