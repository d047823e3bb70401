// Package money holds small helpers for monetary arithmetic. All amounts
// in the system are decimals with two fractional digits (the currency's
// minor unit).
package money

import "github.com/shopspring/decimal"

var hundred = decimal.NewFromInt(100)

// Round normalizes an amount to the currency's minor unit. decimal.Round
// rounds half away from zero, which for the non-negative amounts used
// here is round-half-up.
func Round(amount decimal.Decimal) decimal.Decimal {
	return amount.Round(2)
}

// Percent returns ratePercent% of amount, rounded to the minor unit.
func Percent(amount, ratePercent decimal.Decimal) decimal.Decimal {
	return Round(amount.Mul(ratePercent).Div(hundred))
}
