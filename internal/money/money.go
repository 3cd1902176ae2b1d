// Package money holds the fixed-point arithmetic rules shared by the
// derivation and KPI layers: currency amounts round half-up to 2 decimal
// places, intermediate ratios to 4 before the final x100.
package money

import "github.com/shopspring/decimal"

// Decimal scales used across all financial math.
const (
	ScaleMoney int32 = 2
	ScaleRatio int32 = 4
)

// Hundred is the percentage base.
var Hundred = decimal.NewFromInt(100)

// RoundMoney rounds to currency scale, half away from zero on ties.
func RoundMoney(d decimal.Decimal) decimal.Decimal {
	return d.Round(ScaleMoney)
}

// SafeDiv divides at currency scale, half-up. A zero divisor yields zero;
// this is the defined fallback, not an error.
func SafeDiv(num, den decimal.Decimal) decimal.Decimal {
	if den.IsZero() {
		return decimal.Zero
	}
	return num.DivRound(den, ScaleMoney)
}

// SafeDivRatio divides at ratio scale, half-up, with the same zero-divisor
// fallback as SafeDiv.
func SafeDivRatio(num, den decimal.Decimal) decimal.Decimal {
	if den.IsZero() {
		return decimal.Zero
	}
	return num.DivRound(den, ScaleRatio)
}

// Percent computes (part / whole) x 100 at ratio scale. Zero whole yields
// zero.
func Percent(part, whole decimal.Decimal) decimal.Decimal {
	return SafeDivRatio(part, whole).Mul(Hundred)
}

// PercentOf computes amount x rate / 100 at currency scale, half-up.
func PercentOf(amount, rate decimal.Decimal) decimal.Decimal {
	return RoundMoney(amount.Mul(rate).Div(Hundred))
}
