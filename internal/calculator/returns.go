package calculator

import (
	"math"

	"TacticalSentinel/internal/model"
)

// TradingDaysPerYear converts annualized yields into daily returns.
const TradingDaysPerYear = 252

// LastChange returns the fractional change between the last two entries,
// or NaN when either is undefined or the prior price is zero.
func LastChange(prices []float64) float64 {
	n := len(prices)
	if n < 2 {
		return math.NaN()
	}
	prev, cur := prices[n-2], prices[n-1]
	if !model.Defined(prev) || !model.Defined(cur) || prev == 0 {
		return math.NaN()
	}
	return cur/prev - 1
}

// DailyReturnFromYield converts an annualized percentage quote (e.g. 4.5 for 4.5%)
// into the return earned over one trading day.
func DailyReturnFromYield(annualPct float64) float64 {
	if !model.Defined(annualPct) {
		return math.NaN()
	}
	return math.Pow(1+annualPct/100, 1.0/TradingDaysPerYear) - 1
}
