// README: Money helpers; amounts are rounded to the currency minor unit.
package types

import "math"

// MinorUnitDigits is the number of decimals prices are rounded to.
const MinorUnitDigits = 2

type Money struct {
	Amount   int64  `json:"amount"` // minor units
	Currency string `json:"currency"`
}

// RoundMinor rounds v half away from zero to MinorUnitDigits decimals.
func RoundMinor(v float64) float64 {
	scale := math.Pow10(MinorUnitDigits)
	return math.Round(v*scale) / scale
}

// MoneyFromFloat converts a decimal amount to minor units.
func MoneyFromFloat(v float64, currency string) Money {
	return Money{Amount: int64(math.Round(v * math.Pow10(MinorUnitDigits))), Currency: currency}
}
