package strategy

import (
	"math"

	"TacticalSentinel/internal/calculator"
	"TacticalSentinel/internal/model"
)

// BuildTacticalBond splices the two bond series by regime: the rising-rate bond
// where rising[i] holds, the falling-rate bond otherwise. Both inputs are
// forward-filled first. When the selected bond has no observation yet, the other
// bond's value is used, so a date is undefined only if both are.
func BuildTacticalBond(risingBond, fallingBond []float64, rising []bool) []float64 {
	r := calculator.ForwardFill(risingBond)
	f := calculator.ForwardFill(fallingBond)
	out := make([]float64, len(rising))
	for i := range out {
		primary, fallback := f, r
		if rising[i] {
			primary, fallback = r, f
		}
		switch {
		case i < len(primary) && model.Defined(primary[i]):
			out[i] = primary[i]
		case i < len(fallback) && model.Defined(fallback[i]):
			out[i] = fallback[i]
		default:
			out[i] = math.NaN()
		}
	}
	return out
}

// BuildCashReturns converts a forward-filled annualized yield quote into daily returns.
func BuildCashReturns(yieldQuote []float64) []float64 {
	filled := calculator.ForwardFill(yieldQuote)
	out := make([]float64, len(filled))
	for i, y := range filled {
		out[i] = calculator.DailyReturnFromYield(y)
	}
	return out
}
