// Package decutil provides small decimal helpers shared by the engines.
package decutil

import "github.com/shopspring/decimal"

// RoundMoney rounds to 2 decimal places, half away from zero. All monetary
// amounts in this module are non-negative, so this matches the IRS
// round-half-up convention. Applied at each documented calculation step;
// later steps consume rounded results, not unrounded intermediates.
func RoundMoney(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// Clamp bounds d to [min, max].
func Clamp(d, min, max decimal.Decimal) decimal.Decimal {
	if d.LessThan(min) {
		return min
	}
	if d.GreaterThan(max) {
		return max
	}
	return d
}

// Mean returns the arithmetic mean of values, or zero for an empty slice.
func Mean(values []decimal.Decimal) decimal.Decimal {
	if len(values) == 0 {
		return decimal.Zero
	}
	sum := decimal.Zero
	for _, v := range values {
		sum = sum.Add(v)
	}
	return sum.Div(decimal.NewFromInt(int64(len(values))))
}

// Pct converts a 0-100 percentage to a 0-1 fraction.
func Pct(d decimal.Decimal) decimal.Decimal {
	return d.Div(decimal.NewFromInt(100))
}
