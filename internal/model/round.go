package model

import "github.com/shopspring/decimal"

// Round2 rounds v half away from zero to 2 decimal places (paise precision).
func Round2(v float64) float64 {
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}

// Floor2 rounds v down to paise.
func Floor2(v float64) float64 {
	return decimal.NewFromFloat(v).RoundFloor(2).InexactFloat64()
}

// Ceil2 rounds v up to paise.
func Ceil2(v float64) float64 {
	return decimal.NewFromFloat(v).RoundCeil(2).InexactFloat64()
}
