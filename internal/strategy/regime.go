package strategy

import "TacticalSentinel/internal/calculator"

// ClassifyRegime flags each date as rising when the forward-filled rate sits
// strictly above its trailing window-day average. Dates without a full window
// are reported as falling. The returned averages are NaN on those dates.
func ClassifyRegime(rate []float64, window int) (rising []bool, ma []float64) {
	filled := calculator.ForwardFill(rate)
	ma = calculator.RollingSMA(filled, window)
	rising = make([]bool, len(filled))
	for i := range filled {
		// NaN comparisons are false, so undefined averages fall through as "not rising".
		rising[i] = filled[i] > ma[i]
	}
	return rising, ma
}
